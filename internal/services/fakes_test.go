package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/modelstore"
	"github.com/grokmeetu/meetu-backend/internal/predictor"
	"github.com/grokmeetu/meetu-backend/internal/recerr"
	"github.com/grokmeetu/meetu-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

type fakeUserRepo struct {
	users map[string]*types.User
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	for _, u := range users {
		f.users[u.UserID] = u
	}
	return users, nil
}

func (f *fakeUserRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*types.User, error) {
	return f.users[userID], nil
}

func (f *fakeUserRepo) Exists(ctx context.Context, tx *gorm.DB, userID string) (bool, error) {
	_, ok := f.users[userID]
	return ok, nil
}

type fakeChatroomRepo struct {
	rooms []*types.Chatroom
}

func (f *fakeChatroomRepo) Create(ctx context.Context, tx *gorm.DB, chatrooms []*types.Chatroom) ([]*types.Chatroom, error) {
	f.rooms = append(f.rooms, chatrooms...)
	return chatrooms, nil
}

func (f *fakeChatroomRepo) GetByChatroomID(ctx context.Context, tx *gorm.DB, chatroomID string) (*types.Chatroom, error) {
	for _, r := range f.rooms {
		if r.ChatroomID == chatroomID {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeChatroomRepo) GetByChatroomIDs(ctx context.Context, tx *gorm.DB, chatroomIDs []string) ([]*types.Chatroom, error) {
	want := make(map[string]bool, len(chatroomIDs))
	for _, id := range chatroomIDs {
		want[id] = true
	}
	var out []*types.Chatroom
	for _, r := range f.rooms {
		if want[r.ChatroomID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeChatroomRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Chatroom, error) {
	return f.rooms, nil
}

type fakeInteractionRepo struct {
	interactions []*types.Interaction
}

func (f *fakeInteractionRepo) Create(ctx context.Context, tx *gorm.DB, interactions []*types.Interaction) ([]*types.Interaction, error) {
	f.interactions = append(f.interactions, interactions...)
	return interactions, nil
}

func (f *fakeInteractionRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Interaction, error) {
	var out []*types.Interaction
	for _, i := range f.interactions {
		if i.UserID == userID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeInteractionRepo) ListJoinedChatroomIDs(ctx context.Context, tx *gorm.DB, userID string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, i := range f.interactions {
		if i.UserID == userID && !seen[i.ChatroomID] {
			seen[i.ChatroomID] = true
			out = append(out, i.ChatroomID)
		}
	}
	return out, nil
}

func (f *fakeInteractionRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Interaction, error) {
	return f.interactions, nil
}

// fakeStore keeps artifacts in memory and counts loads so drift tests can
// assert on exactly how many reloads happened.
type fakeStore struct {
	latest    string
	artifacts map[string]*predictor.Model
	infos     map[string]types.ModelVersionInfo
	loadCount int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		latest:    "model_latest.gob",
		artifacts: make(map[string]*predictor.Model),
		infos:     make(map[string]types.ModelVersionInfo),
	}
}

func (f *fakeStore) LatestPath() string            { return f.latest }
func (f *fakeStore) PathFor(t time.Time) string    { return f.latest }
func (f *fakeStore) Exists(path string) bool       { _, ok := f.artifacts[path]; return ok }
func (f *fakeStore) List() ([]modelstore.Version, error) { return nil, nil }
func (f *fakeStore) Delete(key string) error       { return nil }

func (f *fakeStore) ReadInfo(path string) (types.ModelVersionInfo, error) {
	info, ok := f.infos[path]
	if !ok {
		return types.ModelVersionInfo{}, fmt.Errorf("%w at %s", recerr.ErrModelNotFound, path)
	}
	return info, nil
}

func (f *fakeStore) Load(path string) (*predictor.Model, types.ModelVersionInfo, error) {
	m, ok := f.artifacts[path]
	if !ok {
		return nil, types.ModelVersionInfo{}, fmt.Errorf("%w at %s", recerr.ErrModelNotFound, path)
	}
	f.loadCount++
	return m, f.infos[path], nil
}

func (f *fakeStore) Save(path string, m *predictor.Model, info types.ModelVersionInfo) error {
	f.artifacts[path] = m
	f.infos[path] = info
	return nil
}

func (f *fakeStore) Activate(key string) (types.ModelVersionInfo, error) {
	return types.ModelVersionInfo{}, nil
}

func (f *fakeStore) putLatest(m *predictor.Model, timestamp string) {
	f.artifacts[f.latest] = m
	f.infos[f.latest] = types.ModelVersionInfo{Timestamp: timestamp}
}

// fakeModelManager serves fixed scores and can fail specific chatrooms.
type fakeModelManager struct {
	version string
	scores  map[string]float64
	failing map[string]bool
}

func (f *fakeModelManager) EnsureCurrent(ctx context.Context) (*predictor.Model, types.ModelVersionInfo, error) {
	return nil, types.ModelVersionInfo{Timestamp: f.version}, nil
}

func (f *fakeModelManager) Predict(ctx context.Context, userID, chatroomID string) (float64, error) {
	if f.failing[chatroomID] {
		return 0, fmt.Errorf("predictor unavailable for %s", chatroomID)
	}
	if score, ok := f.scores[chatroomID]; ok {
		return score, nil
	}
	return 3.0, nil
}

func (f *fakeModelManager) Info(ctx context.Context) (types.ModelVersionInfo, error) {
	return types.ModelVersionInfo{Timestamp: f.version}, nil
}

func (f *fakeModelManager) LoadedVersion() string { return f.version }

func simpleModel(t *testing.T) *predictor.Model {
	t.Helper()
	return predictor.Fit([]predictor.Rating{
		{UserID: "U1", ItemID: "C1", Score: 5},
		{UserID: "U2", ItemID: "C2", Score: 4},
		{UserID: "U3", ItemID: "C3", Score: 5},
	}, predictor.Params{NFactors: 4, NEpochs: 5, LRAll: 0.005, RegAll: 0.02}, 1)
}
