package app

import (
	"github.com/grokmeetu/meetu-backend/internal/handlers"
	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/sse"
)

type Handlers struct {
	Recommendation *handlers.RecommendationHandler
	Model          *handlers.ModelHandler
	Admin          *handlers.AdminHandler
	Events         *handlers.EventsHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, hub *sse.Hub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Recommendation: handlers.NewRecommendationHandler(log, serviceset.Recommendation),
		Model:          handlers.NewModelHandler(log, serviceset.ModelManager),
		Admin:          handlers.NewAdminHandler(log, serviceset.Trainer, serviceset.Store),
		Events:         handlers.NewEventsHandler(log, hub),
	}
}
