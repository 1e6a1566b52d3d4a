package http

import (
	"github.com/gin-gonic/gin"

	"github.com/trendlens/backend/config"
	"github.com/trendlens/backend/internal/platform/logger"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, log *logger.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(log))
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(log))

	router.GET("/health", handler.HealthCheck)

	// Functions host timer invocation, named after the function directory
	router.POST("/TrendSync", handler.TimerTrigger)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", handler.ListProducts)
		v1.POST("/runs", handler.TriggerRun)
	}

	return router
}
