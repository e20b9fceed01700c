package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/VoxDroid/devflow/internal/models"
)

// JSONStore keeps all automations in one pretty-printed JSON array. A missing
// or corrupt document is treated as empty; any other read failure is
// returned as a *StorageError.
type JSONStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewJSONStore returns a store backed by the file at path. The file and its
// directory are created on first write.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path, logger: slog.Default()}
}

// Path returns the backing file location.
func (s *JSONStore) Path() string { return s.path }

func (s *JSONStore) load() ([]models.Automation, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &StorageError{Op: "read", Path: s.path, Err: err}
	}
	var out []models.Automation
	if err := json.Unmarshal(b, &out); err != nil {
		s.logger.Warn("automation store is corrupt, treating as empty", "path", s.path, "err", err)
		return nil, nil
	}
	return out, nil
}

func (s *JSONStore) write(all []models.Automation) error {
	if all == nil {
		all = []models.Automation{}
	}
	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return &StorageError{Op: "encode", Path: s.path, Err: err}
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StorageError{Op: "mkdir", Path: dir, Err: err}
	}
	tmp, err := os.CreateTemp(dir, ".automations-*.json")
	if err != nil {
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(append(b, '\n')); err != nil {
		_ = tmp.Close()
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return &StorageError{Op: "rename", Path: s.path, Err: err}
	}
	return nil
}

func (s *JSONStore) List(ctx context.Context) ([]models.Automation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *JSONStore) Get(ctx context.Context, id string) (*models.Automation, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range all {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, nil
}

func (s *JSONStore) Save(ctx context.Context, a models.Automation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load()
	if err != nil {
		return err
	}
	replaced := false
	for i := range all {
		if all[i].ID == a.ID {
			all[i] = a.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, a.Clone())
	}
	return s.write(all)
}

func (s *JSONStore) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load()
	if err != nil {
		return false, err
	}
	for i := range all {
		if all[i].ID == id {
			all = append(all[:i], all[i+1:]...)
			return true, s.write(all)
		}
	}
	return false, nil
}

func (s *JSONStore) Search(ctx context.Context, query string) ([]models.Automation, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filter(all, query), nil
}

// Close is a no-op; every operation opens and closes the file.
func (s *JSONStore) Close() error { return nil }
