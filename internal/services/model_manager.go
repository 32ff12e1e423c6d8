package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/modelstore"
	"github.com/grokmeetu/meetu-backend/internal/predictor"
	"github.com/grokmeetu/meetu-backend/internal/recerr"
	"github.com/grokmeetu/meetu-backend/internal/types"
)

// ModelManager owns the currently loaded predictor and its version stamp.
// Every entry point that scores goes through EnsureCurrent, which compares
// the store's latest on-disk version against the loaded one and reloads on
// drift. The (artifact, stamp) pair is swapped together behind one pointer,
// so a reader mid-scoring sees either the fully-old or fully-new pair.
type ModelManager interface {
	EnsureCurrent(ctx context.Context) (*predictor.Model, types.ModelVersionInfo, error)
	Predict(ctx context.Context, userID, chatroomID string) (float64, error)
	Info(ctx context.Context) (types.ModelVersionInfo, error)
	LoadedVersion() string
}

type loadedModel struct {
	model *predictor.Model
	info  types.ModelVersionInfo
}

type modelManager struct {
	store    modelstore.Store
	log      *logger.Logger
	notifier *ModelNotifier
	audit    *PredictionLog

	// swapMu serializes reloads only; readers go through the atomic pointer
	// and never block on a reload in progress.
	swapMu  sync.Mutex
	current atomic.Pointer[loadedModel]
}

func NewModelManager(store modelstore.Store, baseLog *logger.Logger, notifier *ModelNotifier, audit *PredictionLog) ModelManager {
	return &modelManager{
		store:    store,
		log:      baseLog.With("service", "ModelManager"),
		notifier: notifier,
		audit:    audit,
	}
}

func (m *modelManager) EnsureCurrent(ctx context.Context) (*predictor.Model, types.ModelVersionInfo, error) {
	cur := m.current.Load()

	latest := m.store.LatestPath()
	if !m.store.Exists(latest) {
		// No artifact for today: keep serving the loaded one if any.
		if cur != nil {
			return cur.model, cur.info, nil
		}
		return nil, types.ModelVersionInfo{}, fmt.Errorf("%w at %s", recerr.ErrModelNotFound, latest)
	}

	info, err := m.store.ReadInfo(latest)
	if err != nil {
		if cur != nil {
			m.log.Warn("Could not read latest version info; serving loaded model", "error", err)
			return cur.model, cur.info, nil
		}
		return nil, types.ModelVersionInfo{}, err
	}

	if cur != nil && cur.info.Timestamp == info.Timestamp {
		return cur.model, cur.info, nil
	}

	m.swapMu.Lock()
	defer m.swapMu.Unlock()

	// Another request may have finished the same reload while we waited.
	cur = m.current.Load()
	if cur != nil && cur.info.Timestamp == info.Timestamp {
		return cur.model, cur.info, nil
	}

	previous := ""
	if cur != nil {
		previous = cur.info.Timestamp
	}
	m.log.Info("Model versions differ, reloading latest model", "loaded_version", previous, "latest_version", info.Timestamp)

	model, loadedInfo, err := m.store.Load(latest)
	if err != nil {
		return nil, types.ModelVersionInfo{}, err
	}

	m.current.Store(&loadedModel{model: model, info: loadedInfo})
	m.log.Info("Model reloaded", "previous_version", previous, "version", loadedInfo.Timestamp)
	m.notifier.ModelReloaded(loadedInfo)

	return model, loadedInfo, nil
}

func (m *modelManager) Predict(ctx context.Context, userID, chatroomID string) (float64, error) {
	model, info, err := m.EnsureCurrent(ctx)
	if err != nil {
		if m.current.Load() == nil {
			return 0, fmt.Errorf("%w: %w", recerr.ErrModelNotLoaded, err)
		}
		return 0, err
	}

	score := model.Predict(userID, chatroomID)
	m.audit.Record(info.Timestamp, userID, chatroomID, score)
	return score, nil
}

func (m *modelManager) Info(ctx context.Context) (types.ModelVersionInfo, error) {
	_, info, err := m.EnsureCurrent(ctx)
	return info, err
}

func (m *modelManager) LoadedVersion() string {
	cur := m.current.Load()
	if cur == nil {
		return ""
	}
	return cur.info.Timestamp
}
