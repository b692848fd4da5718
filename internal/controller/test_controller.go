package controller

import (
	"errors"

	"edu_content_backend/internal/service"
	"edu_content_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	TestService *service.TestService
}

func NewTestController(testService *service.TestService) *TestController {
	return &TestController{TestService: testService}
}

type CreateTestRequest struct {
	Title      string `json:"title" binding:"required"`
	KeywordIDs []uint `json:"keyword_ids"`
}

func (c *TestController) Create(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))

	var req CreateTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	test, err := c.TestService.CreateTest(courseID, claims.Email, req.Title, req.KeywordIDs)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx, "Course not found")
		case errors.Is(err, util.ErrKeywordNotFound):
			util.NotFound(ctx, "Keyword not found")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, test)
}

func (c *TestController) Get(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	test, err := c.TestService.GetTest(id)
	if err != nil {
		if errors.Is(err, util.ErrTestNotFound) {
			util.NotFound(ctx, "Test not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, test)
}

func (c *TestController) ListForCourse(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))

	tests, err := c.TestService.ListTestsForCourse(courseID)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, "Course not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, tests)
}

type AddQuestionRequest struct {
	Text          string   `json:"text" binding:"required"`
	CorrectAnswer string   `json:"correct_answer" binding:"required"`
	Choices       []string `json:"choices"`
}

func (c *TestController) AddQuestion(ctx *gin.Context) {
	testID := util.MustParseUint(ctx.Param("id"))

	var req AddQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.TestService.AddQuestion(testID, req.Text, req.CorrectAnswer, req.Choices)
	if err != nil {
		if errors.Is(err, util.ErrTestNotFound) {
			util.NotFound(ctx, "Test not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, question)
}

func (c *TestController) DeleteQuestion(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	if err := c.TestService.DeleteQuestion(id); err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx, "Question not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"deleted": id})
}

// Take records that the caller has taken the test. Repeating the call is
// a no-op.
func (c *TestController) Take(ctx *gin.Context) {
	testID := util.MustParseUint(ctx.Param("id"))

	claims := util.GetUserFromContext(ctx)
	if err := c.TestService.TakeTest(testID, claims.Email); err != nil {
		switch {
		case errors.Is(err, util.ErrTestNotFound):
			util.NotFound(ctx, "Test not found")
		case errors.Is(err, util.ErrUserNotFound):
			util.NotFound(ctx, "User not found")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"test_id": testID})
}
