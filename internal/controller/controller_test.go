package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"edu_content_backend/internal/config"
	"edu_content_backend/internal/middleware"
	"edu_content_backend/internal/model"
	"edu_content_backend/internal/repository"
	"edu_content_backend/internal/service"
	"edu_content_backend/pkg/database"
	"edu_content_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbSeq int64

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// testEnv wires the whole HTTP surface against sqlite and fake external
// services, mirroring the production route table.
type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestEnv(t *testing.T, parserURL, modelURL string) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:ctl_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:     "test-secret-used-only-in-unit-tests",
			ExpireTime: time.Hour,
		},
		Storage: config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		Parser:  config.ParserConfig{BaseURL: parserURL},
		AI:      config.AIConfig{BaseURL: modelURL, Model: "test-model"},
		Pipeline: config.PipelineConfig{
			MaxRetries:     2,
			RetryBackoff:   time.Millisecond,
			RequestTimeout: 10 * time.Second,
		},
	}

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	keywordRepo := repository.NewKeywordRepository(db)
	testRepo := repository.NewTestRepository(db)
	questionRepo := repository.NewQuestionRepository(db)

	auth := service.NewAuthService(userRepo, service.NewMemorySessionStore(), cfg)
	storage, err := service.NewStorageService(cfg)
	require.NoError(t, err)

	prompts := service.NewPromptProvider(&config.PromptSet{
		Versions: map[string]config.PromptTemplate{
			"v1": {System: "Extract keywords for {course}.", User: "Course {course}: {message}"},
		},
	}, "v1")

	keywordSvc := service.NewKeywordService(keywordRepo, db)
	pipeline := service.NewPipelineService(
		service.NewDocParseService(cfg.Parser),
		service.NewAIService(cfg.AI),
		keywordSvc, prompts, cfg.Pipeline,
	)
	courseSvc := service.NewCourseService(courseRepo, userRepo, storage, pipeline)
	testSvc := service.NewTestService(testRepo, questionRepo, courseRepo, userRepo)

	authCtl := NewAuthController(auth)
	courseCtl := NewCourseController(courseSvc)
	materialCtl := NewMaterialController(courseSvc)
	keywordCtl := NewKeywordController(keywordSvc)
	testCtl := NewTestController(testSvc)

	router := gin.New()

	public := router.Group("/api")
	{
		public.POST("/register", authCtl.Register)
		public.POST("/login", authCtl.Login)
		public.POST("/logout", authCtl.Logout)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(auth))
	{
		authGroup.GET("/courses", courseCtl.List)
		authGroup.GET("/courses/:id", courseCtl.Get)
		authGroup.GET("/courses/:id/materials", materialCtl.ListForCourse)
		authGroup.GET("/materials/:id", materialCtl.Get)
		authGroup.GET("/hierarchy/:id", keywordCtl.GetHierarchy)
		authGroup.GET("/hierarchy/:id/keywords", keywordCtl.GetHierarchyKeywords)
		authGroup.GET("/courses/:id/tests", testCtl.ListForCourse)
		authGroup.GET("/tests/:id", testCtl.Get)

		professor := authGroup.Group("/")
		professor.Use(middleware.RoleMiddleware(model.Professor))
		{
			professor.POST("/courses", courseCtl.Create)
			professor.POST("/courses/:id/upload-material", materialCtl.Upload)
			professor.PUT("/keywords/:id", keywordCtl.Update)
			professor.POST("/courses/:id/tests", testCtl.Create)
			professor.POST("/tests/:id/questions", testCtl.AddQuestion)
			professor.DELETE("/questions/:id", testCtl.DeleteQuestion)
		}

		student := authGroup.Group("/")
		student.Use(middleware.RoleMiddleware(model.Student))
		{
			student.POST("/courses/:id/signup", courseCtl.Signup)
			student.POST("/courses/:id/remove", courseCtl.Remove)
			student.POST("/tests/:id/take", testCtl.Take)
		}
	}

	return &testEnv{router: router, db: db}
}

func happyParser(text string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"sections": []map[string]string{{"text": text}},
		})
	}))
}

func happyModel(reply string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}))
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) uploadFile(t *testing.T, path, token, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func (e *testEnv) registerUser(t *testing.T, email, role string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/register", "", gin.H{
		"email":    email,
		"password": "password123",
		"name":     "Test",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token, _ := decodeData(t, w)["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t, "", "")

	w := env.do(t, http.MethodPost, "/api/register", "", gin.H{
		"email": "not-an-email", "password": "password123", "name": "X", "role": "student",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/register", "", gin.H{
		"email": "a@b.edu", "password": "short", "name": "X", "role": "student",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.registerUser(t, "dup@uni.edu", "student")
	w = env.do(t, http.MethodPost, "/api/register", "", gin.H{
		"email": "dup@uni.edu", "password": "password123", "name": "X", "role": "student",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthGate(t *testing.T) {
	env := newTestEnv(t, "", "")

	// No token at all.
	w := env.do(t, http.MethodGet, "/api/courses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Student hitting a professor-only route.
	student := env.registerUser(t, "kid@uni.edu", "student")
	w = env.do(t, http.MethodPost, "/api/courses", student, gin.H{"name": "Biology"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Professor hitting a student-only route.
	prof := env.registerUser(t, "prof@uni.edu", "professor")
	w = env.do(t, http.MethodPost, "/api/courses/1/signup", prof, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	env := newTestEnv(t, "", "")
	token := env.registerUser(t, "kid@uni.edu", "student")

	w := env.do(t, http.MethodGet, "/api/courses", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/courses", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Revoking again is still a 200; the token decodes fine.
	w = env.do(t, http.MethodPost, "/api/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEnrollmentFlow(t *testing.T) {
	env := newTestEnv(t, "", "")
	prof := env.registerUser(t, "prof@uni.edu", "professor")
	student := env.registerUser(t, "kid@uni.edu", "student")

	w := env.do(t, http.MethodPost, "/api/courses", prof, gin.H{"name": "Biology"})
	require.Equal(t, http.StatusCreated, w.Code)
	courseID := uint(decodeData(t, w)["id"].(float64))

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/courses/%d/signup", courseID), student, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var mine struct {
		Data []model.Course `json:"data"`
	}
	w = env.do(t, http.MethodGet, "/api/courses?mine=1", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	require.Len(t, mine.Data, 1)
	assert.Equal(t, "Biology", mine.Data[0].Name)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/courses/%d/remove", courseID), student, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/courses?mine=1", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine.Data = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	assert.Empty(t, mine.Data)

	w = env.do(t, http.MethodPost, "/api/courses/999/signup", student, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadMaterialBuildsHierarchy(t *testing.T) {
	parser := happyParser("Cells have nuclei.")
	defer parser.Close()
	llm := happyModel(`[{"name": "Cell", "definition": "Unit of life", "children": [{"name": "Nucleus", "definition": "Control center", "children": []}]}]`)
	defer llm.Close()

	env := newTestEnv(t, parser.URL, llm.URL)
	prof := env.registerUser(t, "prof@uni.edu", "professor")

	w := env.do(t, http.MethodPost, "/api/courses", prof, gin.H{"name": "Biology"})
	require.Equal(t, http.StatusCreated, w.Code)
	courseID := uint(decodeData(t, w)["id"].(float64))

	w = env.uploadFile(t, fmt.Sprintf("/api/courses/%d/upload-material", courseID), prof, "intro.pdf", "%PDF fake content")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result struct {
		Data struct {
			Material struct {
				ID    uint   `json:"id"`
				Title string `json:"title"`
			} `json:"material"`
			Keywords []struct {
				Name string `json:"name"`
			} `json:"keywords"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "intro.pdf", result.Data.Material.Title)
	require.Len(t, result.Data.Keywords, 3)
	assert.Equal(t, "Biology", result.Data.Keywords[0].Name)

	// The course now exposes its hierarchy, traversable in pre-order.
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/courses/%d", courseID), prof, nil)
	require.Equal(t, http.StatusOK, w.Code)
	hierarchyID := uint(decodeData(t, w)["keywordHierarchyId"].(float64))

	var tree struct {
		Data []struct {
			Name     string `json:"name"`
			ParentID *uint  `json:"parentId"`
		} `json:"data"`
	}
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/hierarchy/%d/keywords", hierarchyID), prof, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tree))
	require.Len(t, tree.Data, 3)
	assert.Equal(t, "Biology", tree.Data[0].Name)
	assert.Nil(t, tree.Data[0].ParentID)
	assert.Equal(t, "Cell", tree.Data[1].Name)
	assert.Equal(t, "Nucleus", tree.Data[2].Name)

	// The material is listed under the course.
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/courses/%d/materials", courseID), prof, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUploadMaterialParserDown(t *testing.T) {
	parser := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer parser.Close()
	llm := happyModel(`[]`)
	defer llm.Close()

	env := newTestEnv(t, parser.URL, llm.URL)
	prof := env.registerUser(t, "prof@uni.edu", "professor")

	w := env.do(t, http.MethodPost, "/api/courses", prof, gin.H{"name": "Biology"})
	require.Equal(t, http.StatusCreated, w.Code)
	courseID := uint(decodeData(t, w)["id"].(float64))

	w = env.uploadFile(t, fmt.Sprintf("/api/courses/%d/upload-material", courseID), prof, "intro.pdf", "doc")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestUploadMaterialUnusableReply(t *testing.T) {
	parser := happyParser("Some text.")
	defer parser.Close()
	llm := happyModel("I am sorry, I cannot produce JSON today.")
	defer llm.Close()

	env := newTestEnv(t, parser.URL, llm.URL)
	prof := env.registerUser(t, "prof@uni.edu", "professor")

	w := env.do(t, http.MethodPost, "/api/courses", prof, gin.H{"name": "Biology"})
	require.Equal(t, http.StatusCreated, w.Code)
	courseID := uint(decodeData(t, w)["id"].(float64))

	w = env.uploadFile(t, fmt.Sprintf("/api/courses/%d/upload-material", courseID), prof, "intro.pdf", "doc")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestTestLifecycle(t *testing.T) {
	env := newTestEnv(t, "", "")
	prof := env.registerUser(t, "prof@uni.edu", "professor")
	student := env.registerUser(t, "kid@uni.edu", "student")

	w := env.do(t, http.MethodPost, "/api/courses", prof, gin.H{"name": "Biology"})
	require.Equal(t, http.StatusCreated, w.Code)
	courseID := uint(decodeData(t, w)["id"].(float64))

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/courses/%d/tests", courseID), prof, gin.H{"title": "Midterm"})
	require.Equal(t, http.StatusCreated, w.Code)
	testID := uint(decodeData(t, w)["id"].(float64))

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/tests/%d/questions", testID), prof, gin.H{
		"text":           "Organelle with DNA?",
		"correct_answer": "Nucleus",
		"choices":        []string{"Nucleus", "Ribosome"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	questionID := uint(decodeData(t, w)["id"].(float64))

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/tests/%d/take", testID), student, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/tests/%d/take", testID), student, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var test struct {
		Data struct {
			Questions []struct {
				Text    string   `json:"text"`
				Choices []string `json:"choices"`
			} `json:"questions"`
		} `json:"data"`
	}
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/tests/%d", testID), student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &test))
	require.Len(t, test.Data.Questions, 1)
	assert.Equal(t, []string{"Nucleus", "Ribosome"}, test.Data.Questions[0].Choices)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/questions/%d", questionID), prof, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/questions/%d", questionID), prof, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateKeywordEndpoint(t *testing.T) {
	parser := happyParser("Cells.")
	defer parser.Close()
	llm := happyModel(`[{"name": "Cell", "definition": "Unit of life", "children": []}]`)
	defer llm.Close()

	env := newTestEnv(t, parser.URL, llm.URL)
	prof := env.registerUser(t, "prof@uni.edu", "professor")

	w := env.do(t, http.MethodPost, "/api/courses", prof, gin.H{"name": "Biology"})
	require.Equal(t, http.StatusCreated, w.Code)
	courseID := uint(decodeData(t, w)["id"].(float64))

	w = env.uploadFile(t, fmt.Sprintf("/api/courses/%d/upload-material", courseID), prof, "intro.pdf", "doc")
	require.Equal(t, http.StatusCreated, w.Code)

	var uploaded struct {
		Data struct {
			Keywords []struct {
				ID   uint   `json:"id"`
				Name string `json:"name"`
			} `json:"keywords"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))
	require.Len(t, uploaded.Data.Keywords, 2)
	cellID := uploaded.Data.Keywords[1].ID

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/keywords/%d", cellID), prof, gin.H{
		"definition": "The basic structural unit of organisms",
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "Cell", data["name"])
	assert.Equal(t, "The basic structural unit of organisms", data["definition"])

	w = env.do(t, http.MethodPut, "/api/keywords/9999", prof, gin.H{"name": "Ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
