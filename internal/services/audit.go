package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/grokmeetu/meetu-backend/internal/logger"
)

// PredictionLog appends every served prediction to a JSONL audit file next
// to the model artifacts. Writes are best-effort: a failed append is logged
// and never surfaces to the request.
type PredictionLog struct {
	mu   sync.Mutex
	path string
	log  *logger.Logger
}

type predictionEntry struct {
	Timestamp    string  `json:"timestamp"`
	ModelVersion string  `json:"model_version"`
	UserID       string  `json:"user_id"`
	ChatroomID   string  `json:"chatroom_id"`
	Prediction   float64 `json:"prediction"`
}

func NewPredictionLog(dir string, baseLog *logger.Logger) *PredictionLog {
	return &PredictionLog{
		path: filepath.Join(dir, "predictions.jsonl"),
		log:  baseLog.With("service", "PredictionLog"),
	}
}

func (p *PredictionLog) Record(modelVersion, userID, chatroomID string, prediction float64) {
	if p == nil {
		return
	}

	entry := predictionEntry{
		Timestamp:    time.Now().Format(time.RFC3339Nano),
		ModelVersion: modelVersion,
		UserID:       userID,
		ChatroomID:   chatroomID,
		Prediction:   prediction,
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		p.log.Warn("Failed to marshal prediction entry", "error", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.OpenFile(p.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		p.log.Warn("Failed to open prediction log", "path", p.path, "error", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(raw, '\n')); err != nil {
		p.log.Warn("Failed to append prediction entry", "path", p.path, "error", err)
	}
}
