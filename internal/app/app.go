package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edu_content_backend/internal/config"
	"edu_content_backend/internal/controller"
	"edu_content_backend/internal/repository"
	"edu_content_backend/internal/service"
	"edu_content_backend/pkg/configwatcher"
	"edu_content_backend/pkg/database"
	"edu_content_backend/pkg/logger"
	"edu_content_backend/pkg/monitoring"
	"edu_content_backend/pkg/security"
	"edu_content_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	user     *repository.UserRepository
	course   *repository.CourseRepository
	keyword  *repository.KeywordRepository
	test     *repository.TestRepository
	question *repository.QuestionRepository
}

type services struct {
	sessions service.SessionStore
	auth     *service.AuthService
	storage  *service.StorageService
	prompts  *service.PromptProvider
	parser   *service.DocParseService
	ai       *service.AIService
	keyword  *service.KeywordService
	pipeline *service.PipelineService
	course   *service.CourseService
	test     *service.TestService
}

type controllers struct {
	auth     *controller.AuthController
	course   *controller.CourseController
	material *controller.MaterialController
	keyword  *controller.KeywordController
	test     *controller.TestController
	health   *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		course:   repository.NewCourseRepository(db),
		keyword:  repository.NewKeywordRepository(db),
		test:     repository.NewTestRepository(db),
		question: repository.NewQuestionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*services, error) {
	s := &services{}

	if rdb != nil {
		s.sessions = service.NewRedisSessionStore(rdb, cfg.JWT.ExpireTime)
	} else {
		s.sessions = service.NewMemorySessionStore()
	}
	s.auth = service.NewAuthService(repos.user, s.sessions, cfg)

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	s.storage = storage

	promptSet, err := config.LoadPrompts(cfg.Prompts.File)
	if err != nil {
		return nil, err
	}
	s.prompts = service.NewPromptProvider(promptSet, cfg.Prompts.Version)

	s.parser = service.NewDocParseService(cfg.Parser)
	s.ai = service.NewAIService(cfg.AI)
	s.keyword = service.NewKeywordService(repos.keyword, db)
	s.pipeline = service.NewPipelineService(s.parser, s.ai, s.keyword, s.prompts, cfg.Pipeline)
	s.course = service.NewCourseService(repos.course, repos.user, s.storage, s.pipeline)
	s.test = service.NewTestService(repos.test, repos.question, repos.course, repos.user)

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		course:   controller.NewCourseController(s.course),
		material: controller.NewMaterialController(s.course),
		keyword:  controller.NewKeywordController(s.keyword),
		test:     controller.NewTestController(s.test),
		health:   controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized")

	gin.SetMode(ginMode(cfg.Server.Mode))

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, cfg.ForceMigrate)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			return nil, err
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	svcs, err := app.initServices(repos, cfg, db, rdb)
	if err != nil {
		return nil, err
	}
	app.services = svcs
	controllers := app.initControllers(svcs, db)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("edu-content-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			return nil, err
		}
	}

	app.registerRoutes(router, controllers, svcs)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	go configwatcher.Watch(cfg.Prompts.File, svcs.prompts.Reload)

	return app, nil
}

func ginMode(mode string) string {
	switch mode {
	case "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Active sessions are invalidated on shutdown so restarted instances
	// start from a clean slate.
	if a.services != nil && a.services.sessions != nil {
		if err := a.services.sessions.Clear(ctx); err != nil {
			logger.Log.Error("Failed to clear sessions on shutdown", zap.Error(err))
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
