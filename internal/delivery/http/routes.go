package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sana-a-khan/fabrix/config"
	"github.com/sana-a-khan/fabrix/internal/domain"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, users domain.UserStore, logger zerolog.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	generalLimiter := NewIPRateLimiter(cfg.RateLimit.PerIP, cfg.RateLimit.Window)
	analyzeLimiter := NewIPRateLimiter(cfg.RateLimit.Analyze, cfg.RateLimit.Window)
	auth := AuthMiddleware([]byte(cfg.Auth.JWTSecret), users, logger)

	// Global middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(BodyLimitMiddleware(cfg.Server.MaxBodyBytes))
	router.Use(RateLimitMiddleware(generalLimiter, "Too many requests from this IP, please try again later."))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/analyze",
			RateLimitMiddleware(analyzeLimiter, "Too many analysis requests, please try again later."),
			auth,
			handler.Analyze,
		)
		v1.POST("/products", handler.SaveProduct)
		v1.POST("/candidates", handler.SelectCandidates)
		v1.GET("/auth/me", auth, handler.Me)
	}

	return router
}
