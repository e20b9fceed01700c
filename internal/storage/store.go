// Package storage persists automations. Two backends are provided: a JSON
// document and a SQLite database.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/VoxDroid/devflow/internal/config"
	"github.com/VoxDroid/devflow/internal/models"
)

// Store persists automations. Implementations are safe for concurrent use.
type Store interface {
	// List returns every automation in storage order.
	List(ctx context.Context) ([]models.Automation, error)
	// Get returns the automation with id, or nil when there is none.
	Get(ctx context.Context, id string) (*models.Automation, error)
	// Save inserts a or replaces the record with the same id in place.
	Save(ctx context.Context, a models.Automation) error
	// Delete removes the automation with id and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)
	// Search returns automations whose name, description or tags contain query.
	Search(ctx context.Context, query string) ([]models.Automation, error)
	Close() error
}

// StorageError wraps an I/O failure with the operation and location.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Matches reports whether a's name, description or any tag contains query,
// ignoring case. An empty query matches everything.
func Matches(a models.Automation, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(a.Name), q) || strings.Contains(strings.ToLower(a.Description), q) {
		return true
	}
	for _, t := range a.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func filter(all []models.Automation, query string) []models.Automation {
	out := make([]models.Automation, 0, len(all))
	for _, a := range all {
		if Matches(a, query) {
			out = append(out, a)
		}
	}
	return out
}

// Open returns the store selected by s.Backend at s.StorePath().
func Open(s config.Settings) (Store, error) {
	path, err := s.StorePath()
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	switch s.Backend {
	case config.BackendSQLite:
		return OpenSQLite(path)
	case config.BackendJSON, "":
		return NewJSONStore(path), nil
	}
	return nil, &StorageError{Op: "open", Path: path, Err: fmt.Errorf("unknown backend %q", s.Backend)}
}
