// Package modelstore persists trained predictor artifacts to durable storage.
// Artifacts are date-keyed (one per calendar day): the artifact itself is a
// gob file and its version info lives in a sidecar JSON next to it.
package modelstore

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/predictor"
	"github.com/grokmeetu/meetu-backend/internal/recerr"
	"github.com/grokmeetu/meetu-backend/internal/types"
)

const (
	artifactPrefix = "model_"
	artifactExt    = ".gob"
	versionSuffix  = ".version.json"
)

type Version struct {
	Key  string                 `json:"key"`
	Info types.ModelVersionInfo `json:"info"`
}

type Store interface {
	LatestPath() string
	PathFor(t time.Time) string
	Exists(path string) bool
	ReadInfo(path string) (types.ModelVersionInfo, error)
	Load(path string) (*predictor.Model, types.ModelVersionInfo, error)
	Save(path string, m *predictor.Model, info types.ModelVersionInfo) error
	List() ([]Version, error)
	Delete(key string) error
	Activate(key string) (types.ModelVersionInfo, error)
}

type FileStore struct {
	dir string
	log *logger.Logger

	// Now is swappable so tests can pin the calendar day.
	Now func() time.Time
}

func New(dir string, baseLog *logger.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create model dir %s: %w", dir, err)
	}
	return &FileStore{
		dir: dir,
		log: baseLog.With("service", "ModelStore"),
		Now: time.Now,
	}, nil
}

// LatestPath is the path of today's artifact, whether or not it exists yet.
func (s *FileStore) LatestPath() string {
	return s.PathFor(s.Now())
}

func (s *FileStore) PathFor(t time.Time) string {
	return filepath.Join(s.dir, artifactPrefix+t.Format("20060102")+artifactExt)
}

func (s *FileStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func versionPath(artifactPath string) string {
	return strings.TrimSuffix(artifactPath, artifactExt) + versionSuffix
}

func keyFromPath(artifactPath string) string {
	base := filepath.Base(artifactPath)
	base = strings.TrimSuffix(base, artifactExt)
	return strings.TrimPrefix(base, artifactPrefix)
}

func (s *FileStore) ReadInfo(path string) (types.ModelVersionInfo, error) {
	var info types.ModelVersionInfo

	raw, err := os.ReadFile(versionPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return info, fmt.Errorf("%w: no version info at %s", recerr.ErrModelNotFound, versionPath(path))
		}
		return info, fmt.Errorf("read version info: %w", err)
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return info, fmt.Errorf("parse version info %s: %w", versionPath(path), err)
	}
	return info, nil
}

func (s *FileStore) Load(path string) (*predictor.Model, types.ModelVersionInfo, error) {
	if !s.Exists(path) {
		return nil, types.ModelVersionInfo{}, fmt.Errorf("%w at %s", recerr.ErrModelNotFound, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, types.ModelVersionInfo{}, fmt.Errorf("open artifact %s: %w", path, err)
	}
	defer f.Close()

	var m predictor.Model
	if err := gob.NewDecoder(f).Decode(&m); err != nil {
		return nil, types.ModelVersionInfo{}, fmt.Errorf("decode artifact %s: %w", path, err)
	}

	info, err := s.ReadInfo(path)
	if err != nil {
		return nil, types.ModelVersionInfo{}, err
	}

	s.log.Info("Loaded model artifact", "path", path, "version", info.Timestamp)
	return &m, info, nil
}

// Save writes the artifact and its version sidecar. The artifact is written
// to a temp file first and renamed so readers never see a partial artifact.
func (s *FileStore) Save(path string, m *predictor.Model, info types.ModelVersionInfo) error {
	tmp, err := os.CreateTemp(s.dir, "model-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if err := gob.NewEncoder(tmp).Encode(m); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename artifact into place: %w", err)
	}

	raw, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal version info: %w", err)
	}
	if err := os.WriteFile(versionPath(path), raw, 0o644); err != nil {
		return fmt.Errorf("write version info: %w", err)
	}

	s.log.Info("Saved model artifact", "path", path, "version", info.Timestamp)
	return nil
}

func (s *FileStore) List() ([]Version, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, artifactPrefix+"*"+artifactExt))
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	sort.Strings(matches)

	versions := make([]Version, 0, len(matches))
	for _, path := range matches {
		info, err := s.ReadInfo(path)
		if err != nil {
			s.log.Warn("Skipping artifact without readable version info", "path", path, "error", err)
			continue
		}
		versions = append(versions, Version{Key: keyFromPath(path), Info: info})
	}
	return versions, nil
}

func (s *FileStore) Delete(key string) error {
	path := filepath.Join(s.dir, artifactPrefix+key+artifactExt)
	if !s.Exists(path) {
		return fmt.Errorf("%w: version %s", recerr.ErrModelNotFound, key)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete artifact %s: %w", path, err)
	}
	if err := os.Remove(versionPath(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete version info for %s: %w", key, err)
	}
	s.log.Info("Deleted model artifact", "key", key)
	return nil
}

// Activate copies an older artifact onto today's latest path with a fresh
// version timestamp, which makes every serving process reload it on the next
// drift check.
func (s *FileStore) Activate(key string) (types.ModelVersionInfo, error) {
	src := filepath.Join(s.dir, artifactPrefix+key+artifactExt)
	m, info, err := s.Load(src)
	if err != nil {
		return types.ModelVersionInfo{}, err
	}

	info.Timestamp = s.Now().Format(time.RFC3339Nano)
	if err := s.Save(s.LatestPath(), m, info); err != nil {
		return types.ModelVersionInfo{}, err
	}

	s.log.Info("Activated model version", "key", key, "new_version", info.Timestamp)
	return info, nil
}
