package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/grokmeetu/meetu-backend/internal/handlers"
	"github.com/grokmeetu/meetu-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName           string
	AllowOrigins          []string
	RecommendationHandler *handlers.RecommendationHandler
	ModelHandler          *handlers.ModelHandler
}

type AdminRouterConfig struct {
	ServiceName    string
	AllowOrigins   []string
	AuthMiddleware *middleware.AdminAuthMiddleware
	AdminHandler   *handlers.AdminHandler
	EventsHandler  *handlers.EventsHandler
}

// NewRouter serves the public recommendation API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(cors.New(corsConfig(cfg.AllowOrigins)))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/recommendations", cfg.RecommendationHandler.Create)
		api.POST("/recommendations/batch", cfg.RecommendationHandler.BatchCreate)
		api.GET("/recommendations/:user_id", cfg.RecommendationHandler.Get)
		api.PUT("/recommendations/:user_id", cfg.RecommendationHandler.Update)
		api.DELETE("/recommendations/:user_id", cfg.RecommendationHandler.Delete)

		api.GET("/model-info", cfg.ModelHandler.GetInfo)
	}

	return router
}

// NewAdminRouter serves the training and model-management API. Everything
// except the healthcheck requires an admin token.
func NewAdminRouter(cfg AdminRouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(cors.New(corsConfig(cfg.AllowOrigins)))

	router.GET("/healthcheck", handlers.HealthCheck)

	admin := router.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAdmin())
	{
		admin.POST("/train", cfg.AdminHandler.Train)
		admin.GET("/models", cfg.AdminHandler.ListModels)
		admin.DELETE("/models/:key", cfg.AdminHandler.DeleteModel)
		admin.POST("/models/:key/activate", cfg.AdminHandler.ActivateModel)
		admin.GET("/events", cfg.EventsHandler.Stream)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}
}
