package app

import (
	"github.com/gin-gonic/gin"

	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/middleware"
	"github.com/grokmeetu/meetu-backend/internal/server"
)

const serviceName = "meetu-recommendation"

func wireRouter(cfg Config, handlerset Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		ServiceName:           serviceName,
		AllowOrigins:          cfg.AllowOrigins,
		RecommendationHandler: handlerset.Recommendation,
		ModelHandler:          handlerset.Model,
	})
}

func wireAdminRouter(cfg Config, log *logger.Logger, handlerset Handlers) *gin.Engine {
	return server.NewAdminRouter(server.AdminRouterConfig{
		ServiceName:    serviceName + "-admin",
		AllowOrigins:   cfg.AllowOrigins,
		AuthMiddleware: middleware.NewAdminAuthMiddleware(log, cfg.JWTSecretKey),
		AdminHandler:   handlerset.Admin,
		EventsHandler:  handlerset.Events,
	})
}
