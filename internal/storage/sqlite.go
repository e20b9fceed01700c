package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/VoxDroid/devflow/internal/db"
	"github.com/VoxDroid/devflow/internal/models"
)

// SQLiteStore keeps one row per automation. The full record lives in the
// data column; the remaining columns mirror it for querying.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (and migrates) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := db.InitDB(path)
	if err != nil {
		return nil, &StorageError{Op: "open", Path: path, Err: err}
	}
	return NewSQLiteStore(conn, path), nil
}

// NewSQLiteStore wraps an already migrated connection.
func NewSQLiteStore(conn *sql.DB, path string) *SQLiteStore {
	return &SQLiteStore{db: conn, path: path}
}

func (s *SQLiteStore) fail(op string, err error) error {
	return &StorageError{Op: op, Path: s.path, Err: err}
}

func scanAutomations(rows *sql.Rows) ([]models.Automation, error) {
	defer func() { _ = rows.Close() }()
	var out []models.Automation
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var a models.Automation
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			return nil, fmt.Errorf("decode automation: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) List(ctx context.Context) ([]models.Automation, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT data FROM automations ORDER BY rowid")
	if err != nil {
		return nil, s.fail("list", err)
	}
	out, err := scanAutomations(rows)
	if err != nil {
		return nil, s.fail("list", err)
	}
	return out, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.Automation, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT data FROM automations WHERE id = ?", id)
	if err != nil {
		return nil, s.fail("get", err)
	}
	out, err := scanAutomations(rows)
	if err != nil {
		return nil, s.fail("get", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

func (s *SQLiteStore) Save(ctx context.Context, a models.Automation) error {
	data, err := json.Marshal(a)
	if err != nil {
		return s.fail("encode", err)
	}
	var lastRun any
	if a.LastRun != nil {
		lastRun = a.LastRun.UTC().Format(time.RFC3339Nano)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx, `INSERT INTO automations (id, name, description, tags, data, created_at, updated_at, last_run, run_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			tags = excluded.tags,
			data = excluded.data,
			updated_at = excluded.updated_at,
			last_run = excluded.last_run,
			run_count = excluded.run_count`,
		a.ID, a.Name, a.Description, strings.Join(a.Tags, ","), string(data),
		a.CreatedAt.UTC().Format(time.RFC3339Nano), now, lastRun, a.RunCount)
	if err != nil {
		return s.fail("save", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM automations WHERE id = ?", id)
	if err != nil {
		return false, s.fail("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, s.fail("delete", err)
	}
	return n > 0, nil
}

// Search narrows candidates in SQL and applies Matches for exact semantics.
func (s *SQLiteStore) Search(ctx context.Context, query string) ([]models.Automation, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM automations
		WHERE lower(name) LIKE ? OR lower(description) LIKE ? OR lower(tags) LIKE ?
		ORDER BY rowid`, like, like, like)
	if err != nil {
		return nil, s.fail("search", err)
	}
	out, err := scanAutomations(rows)
	if err != nil {
		return nil, s.fail("search", err)
	}
	return filter(out, query), nil
}

// Close closes the underlying DB connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
