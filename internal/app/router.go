package app

import (
	"edu_content_backend/internal/middleware"
	"edu_content_backend/internal/model"
	"edu_content_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.Check)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.POST("/logout", c.auth.Logout)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(s.auth))
	{
		authGroup.GET("/courses", c.course.List)
		authGroup.GET("/courses/:id", c.course.Get)
		authGroup.GET("/courses/:id/materials", c.material.ListForCourse)
		authGroup.GET("/materials/:id", c.material.Get)
		authGroup.GET("/hierarchy/:id", c.keyword.GetHierarchy)
		authGroup.GET("/hierarchy/:id/keywords", c.keyword.GetHierarchyKeywords)
		authGroup.GET("/keywords/:id", c.keyword.Get)
		authGroup.GET("/courses/:id/tests", c.test.ListForCourse)
		authGroup.GET("/tests/:id", c.test.Get)

		professor := authGroup.Group("/")
		professor.Use(middleware.RoleMiddleware(model.Professor))
		{
			professor.POST("/courses", c.course.Create)
			professor.POST("/courses/:id/upload-material", c.material.Upload)
			professor.PUT("/keywords/:id", c.keyword.Update)
			professor.POST("/courses/:id/tests", c.test.Create)
			professor.POST("/tests/:id/questions", c.test.AddQuestion)
			professor.DELETE("/questions/:id", c.test.DeleteQuestion)
		}

		student := authGroup.Group("/")
		student.Use(middleware.RoleMiddleware(model.Student))
		{
			student.POST("/courses/:id/signup", c.course.Signup)
			student.POST("/courses/:id/remove", c.course.Remove)
			student.POST("/tests/:id/take", c.test.Take)
		}
	}
}
