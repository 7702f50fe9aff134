package app

import (
	"dating_scan_backend/docs"
	"dating_scan_backend/internal/config"
	"dating_scan_backend/internal/middleware"
	"dating_scan_backend/internal/model"
	"dating_scan_backend/pkg/monitoring"
	"dating_scan_backend/pkg/security"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// public
	router.GET("/api/health", c.health.HealthCheck)

	// authenticated
	authGroup := router.Group("/api")
	authGroup.Use(
		middleware.AuthMiddleware(cfg),
		security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute),
	)
	{
		registerAssessmentRoutes(authGroup, c)

		// admin only
		admin := authGroup.Group("/admin")
		admin.Use(middleware.RoleMiddleware(model.Admin))
		{
			admin.POST("/definitions/:id/invalidate", c.assessment.InvalidateBank)
			admin.GET("/definitions/:id/stats", c.assessment.DefinitionStats)
			admin.POST("/assessments/abandon-stale", c.assessment.AbandonStale)
		}
	}
}

func registerAssessmentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/definitions", c.assessment.ListDefinitions)
	rg.GET("/definitions/:id/questions", c.assessment.QuestionSheet)

	assessments := rg.Group("/assessments")
	{
		assessments.GET("/retake-status", c.assessment.RetakeStatus)
		assessments.GET("", c.assessment.History)
		assessments.POST("", c.assessment.Start)
		assessments.GET("/:id", c.assessment.Progress)
		assessments.PUT("/:id/responses/:questionId", c.assessment.SubmitResponse)
		assessments.POST("/:id/finalize", c.assessment.Finalize)
		assessments.POST("/:id/preview", c.assessment.Preview)
		assessments.GET("/:id/classification", c.assessment.Classification)
		assessments.GET("/:id/blindspots", c.assessment.Blindspots)
		assessments.GET("/:id/result", c.assessment.Result)
		assessments.GET("/:id/narrative", c.assessment.Narrative)
	}
}
