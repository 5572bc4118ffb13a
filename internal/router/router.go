package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mealscan/internal/config"
	"mealscan/internal/handler"
	"mealscan/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	analysisH *handler.AnalysisHandler,
	foodH *handler.FoodHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks and metrics
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	meals := v1.Group("/meals")
	meals.POST("/analyze", analysisH.Analyze)

	foods := v1.Group("/foods")
	foods.GET("/search", foodH.Search)
	foods.GET("/:code", foodH.GetByCode)

	return r
}
