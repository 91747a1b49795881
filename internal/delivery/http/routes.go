package http

import (
	"github.com/gin-gonic/gin"
	"github.com/quevendi/backend/config"
	"github.com/rs/zerolog"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger zerolog.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))
	{
		voice := v1.Group("/voice")
		{
			voice.POST("/parse", handler.ParseCommand)
			voice.POST("/disambiguate", handler.Disambiguate)
		}

		stores := v1.Group("/stores/:store_id")
		{
			stores.POST("/voice/interpret", handler.Interpret)
			stores.GET("/products/search", handler.SearchProducts)
		}
	}

	return router
}
