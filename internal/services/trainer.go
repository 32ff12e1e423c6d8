package services

import (
	"context"
	"fmt"
	"time"

	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/modelstore"
	"github.com/grokmeetu/meetu-backend/internal/predictor"
	"github.com/grokmeetu/meetu-backend/internal/recerr"
	"github.com/grokmeetu/meetu-backend/internal/repos"
	"github.com/grokmeetu/meetu-backend/internal/types"
	"github.com/grokmeetu/meetu-backend/internal/utils"
)

const (
	defaultTestSize  = 0.2
	defaultQueueSize = 8
)

type TrainRequest struct {
	TestSize float64           `json:"test_size"`
	Force    bool              `json:"force"`
	Params   *predictor.Params `json:"parameters,omitempty"`
}

// TrainingService fits a new predictor on the interaction history and saves
// it to the model store. One artifact per calendar day: a same-day retrain
// is refused unless forced.
type TrainingService interface {
	Train(ctx context.Context, req TrainRequest) (types.ModelVersionInfo, error)
	Enqueue(req TrainRequest) error
	StartWorker(ctx context.Context)
}

type trainingService struct {
	log          *logger.Logger
	interactions repos.InteractionRepo
	store        modelstore.Store
	notifier     *ModelNotifier

	queue chan TrainRequest
	now   func() time.Time
	seed  func() int64
}

func NewTrainingService(baseLog *logger.Logger, interactions repos.InteractionRepo, store modelstore.Store, notifier *ModelNotifier) TrainingService {
	queueSize := utils.GetEnvAsInt("TRAIN_QUEUE_SIZE", defaultQueueSize, baseLog)
	if queueSize < 1 {
		queueSize = defaultQueueSize
	}
	return &trainingService{
		log:          baseLog.With("service", "TrainingService"),
		interactions: interactions,
		store:        store,
		notifier:     notifier,
		queue:        make(chan TrainRequest, queueSize),
		now:          time.Now,
		seed:         func() int64 { return time.Now().UnixNano() },
	}
}

func (s *trainingService) Train(ctx context.Context, req TrainRequest) (types.ModelVersionInfo, error) {
	path := s.store.LatestPath()
	if s.store.Exists(path) && !req.Force {
		return types.ModelVersionInfo{}, fmt.Errorf("%w at %s; pass force to retrain", recerr.ErrModelExists, path)
	}

	rows, err := s.interactions.ListAll(ctx, nil)
	if err != nil {
		return types.ModelVersionInfo{}, fmt.Errorf("load interactions: %w", err)
	}
	if len(rows) == 0 {
		return types.ModelVersionInfo{}, fmt.Errorf("no interactions to train on")
	}

	testSize := req.TestSize
	if testSize <= 0 || testSize >= 1 {
		testSize = defaultTestSize
	}
	params := predictor.DefaultParams()
	if req.Params != nil {
		params = *req.Params
	}

	ratings := make([]predictor.Rating, 0, len(rows))
	for _, row := range rows {
		ratings = append(ratings, predictor.Rating{
			UserID: row.UserID,
			ItemID: row.ChatroomID,
			Score:  row.SatisfactionScore,
		})
	}

	s.log.Info("Training new model", "interactions", len(ratings), "test_size", testSize)
	s.notifier.TrainingStarted(testSize)

	seed := s.seed()
	train, test := predictor.TrainTestSplit(ratings, testSize, seed)
	model := predictor.Fit(train, params, seed)
	metrics := predictor.Evaluate(model, test)

	info := types.ModelVersionInfo{
		Timestamp: s.now().Format(time.RFC3339Nano),
		TestSize:  testSize,
		Parameters: map[string]any{
			"n_factors": params.NFactors,
			"n_epochs":  params.NEpochs,
			"lr_all":    params.LRAll,
			"reg_all":   params.RegAll,
		},
		Metrics: types.ModelMetrics{RMSE: metrics.RMSE, MAE: metrics.MAE},
	}

	if err := s.store.Save(path, model, info); err != nil {
		s.notifier.TrainingFailed(err)
		return types.ModelVersionInfo{}, fmt.Errorf("save model: %w", err)
	}

	s.log.Info("Model trained and saved", "path", path, "version", info.Timestamp, "rmse", metrics.RMSE, "mae", metrics.MAE)
	s.notifier.TrainingCompleted(info)
	return info, nil
}

// Enqueue hands a request to the background worker; it never blocks the
// caller.
func (s *trainingService) Enqueue(req TrainRequest) error {
	select {
	case s.queue <- req:
		return nil
	default:
		return fmt.Errorf("training queue full")
	}
}

func (s *trainingService) StartWorker(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case req := <-s.queue:
				if _, err := s.Train(ctx, req); err != nil {
					s.log.Error("Background training failed", "error", err)
				}
			}
		}
	}()
}
