package app

import (
	"os"

	"github.com/grokmeetu/meetu-backend/internal/clients/redis"
	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/modelstore"
	"github.com/grokmeetu/meetu-backend/internal/services"
	"github.com/grokmeetu/meetu-backend/internal/sse"
)

type Services struct {
	Notifier       *services.ModelNotifier
	Audit          *services.PredictionLog
	ModelManager   services.ModelManager
	Candidates     services.CandidateGenerator
	Evaluator      services.FeatureEvaluator
	Recommendation services.RecommendationService
	Trainer        services.TrainingService
	Store          modelstore.Store
	EventBus       redis.EventBus
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos, hub *sse.Hub) (Services, error) {
	log.Info("Wiring services...")

	store, err := modelstore.New(cfg.ModelDir, log)
	if err != nil {
		return Services{}, err
	}

	// The Redis bridge is optional; a single-process deployment runs fine on
	// the in-process hub alone.
	var bus redis.EventBus
	if os.Getenv("REDIS_ADDR") != "" {
		bus, err = redis.NewEventBus(log)
		if err != nil {
			return Services{}, err
		}
	}

	notifier := services.NewModelNotifier(log, hub, bus)
	audit := services.NewPredictionLog(cfg.ModelDir, log)
	modelManager := services.NewModelManager(store, log, notifier, audit)
	candidates := services.NewCandidateGenerator(log, reposet.User, reposet.Chatroom, reposet.Interaction)
	evaluator := services.NewFeatureEvaluator(log, modelManager)
	recommendation := services.NewRecommendationService(
		log,
		reposet.User,
		reposet.Chatroom,
		candidates,
		evaluator,
		modelManager,
		notifier,
		cfg.Thresholds,
	)
	trainer := services.NewTrainingService(log, reposet.Interaction, store, notifier)

	return Services{
		Notifier:       notifier,
		Audit:          audit,
		ModelManager:   modelManager,
		Candidates:     candidates,
		Evaluator:      evaluator,
		Recommendation: recommendation,
		Trainer:        trainer,
		Store:          store,
		EventBus:       bus,
	}, nil
}
