package modelstore

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/predictor"
	"github.com/grokmeetu/meetu-backend/internal/recerr"
	"github.com/grokmeetu/meetu-backend/internal/types"
)

func testStore(t *testing.T) *FileStore {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	s, err := New(t.TempDir(), log)
	if err != nil {
		t.Fatalf("modelstore.New: %v", err)
	}
	s.Now = func() time.Time {
		return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	}
	return s
}

func testModel() *predictor.Model {
	return predictor.Fit([]predictor.Rating{
		{UserID: "U1", ItemID: "C1", Score: 5},
		{UserID: "U2", ItemID: "C2", Score: 4},
		{UserID: "U3", ItemID: "C3", Score: 5},
	}, predictor.Params{NFactors: 4, NEpochs: 5, LRAll: 0.005, RegAll: 0.02}, 1)
}

func TestLatestPathIsDateKeyed(t *testing.T) {
	s := testStore(t)

	got := filepath.Base(s.LatestPath())
	if got != "model_20260831.gob" {
		t.Fatalf("LatestPath base=%q, want model_20260831.gob", got)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	s := testStore(t)
	m := testModel()
	info := types.ModelVersionInfo{
		Timestamp:  "2026-08-31T12:00:00Z",
		TestSize:   0.2,
		Parameters: map[string]any{"n_factors": float64(4)},
		Metrics:    types.ModelMetrics{RMSE: 0.5, MAE: 0.4},
	}

	path := s.LatestPath()
	if err := s.Save(path, m, info); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, loadedInfo, err := s.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loadedInfo.Timestamp != info.Timestamp {
		t.Fatalf("loaded timestamp=%q, want %q", loadedInfo.Timestamp, info.Timestamp)
	}
	if loadedInfo.Metrics != info.Metrics {
		t.Fatalf("loaded metrics=%+v, want %+v", loadedInfo.Metrics, info.Metrics)
	}

	want := m.Predict("U1", "C2")
	if got := loaded.Predict("U1", "C2"); got != want {
		t.Fatalf("loaded model prediction=%v, want %v", got, want)
	}
}

func TestLoadMissingArtifact(t *testing.T) {
	s := testStore(t)

	_, _, err := s.Load(s.LatestPath())
	if !errors.Is(err, recerr.ErrModelNotFound) {
		t.Fatalf("Load on empty store err=%v, want ErrModelNotFound", err)
	}
}

func TestListAndDelete(t *testing.T) {
	s := testStore(t)
	m := testModel()

	days := []time.Time{
		time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	}
	for _, day := range days {
		info := types.ModelVersionInfo{Timestamp: day.Format(time.RFC3339)}
		if err := s.Save(s.PathFor(day), m, info); err != nil {
			t.Fatalf("Save %v: %v", day, err)
		}
	}

	versions, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(versions) != 3 {
		t.Fatalf("len(versions)=%d, want 3", len(versions))
	}
	if versions[0].Key != "20260829" || versions[2].Key != "20260831" {
		t.Fatalf("versions out of order: %+v", versions)
	}

	if err := s.Delete("20260830"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	versions, err = s.List()
	if err != nil {
		t.Fatalf("List after delete: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("len(versions) after delete=%d, want 2", len(versions))
	}

	if err := s.Delete("20260830"); !errors.Is(err, recerr.ErrModelNotFound) {
		t.Fatalf("double delete err=%v, want ErrModelNotFound", err)
	}
}

func TestActivateCopiesToLatestWithNewStamp(t *testing.T) {
	s := testStore(t)
	m := testModel()

	old := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	oldInfo := types.ModelVersionInfo{Timestamp: old.Format(time.RFC3339)}
	if err := s.Save(s.PathFor(old), m, oldInfo); err != nil {
		t.Fatalf("Save old: %v", err)
	}

	info, err := s.Activate("20260825")
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if info.Timestamp == oldInfo.Timestamp {
		t.Fatalf("Activate kept the old version stamp %q", info.Timestamp)
	}

	latestInfo, err := s.ReadInfo(s.LatestPath())
	if err != nil {
		t.Fatalf("ReadInfo latest: %v", err)
	}
	if latestInfo.Timestamp != info.Timestamp {
		t.Fatalf("latest stamp=%q, want %q", latestInfo.Timestamp, info.Timestamp)
	}
}
