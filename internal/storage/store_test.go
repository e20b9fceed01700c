package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VoxDroid/devflow/internal/config"
	"github.com/VoxDroid/devflow/internal/models"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	sq, err := OpenSQLite(filepath.Join(dir, "devflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })
	return map[string]Store{
		"json":   NewJSONStore(filepath.Join(dir, "automations.json")),
		"sqlite": sq,
	}
}

func sample(name string, tags ...string) models.Automation {
	a := models.NewAutomation(name, models.NewCommand("echo "+name))
	a.Description = "builds " + name
	a.Tags = tags
	return a
}

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			all, err := s.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)

			a := sample("deploy", "prod")
			b := sample("backup")
			require.NoError(t, s.Save(ctx, a))
			require.NoError(t, s.Save(ctx, b))

			got, err := s.Get(ctx, a.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "deploy", got.Name)
			assert.Equal(t, a.Commands, got.Commands)
			assert.True(t, a.CreatedAt.Equal(got.CreatedAt))

			missing, err := s.Get(ctx, "nope")
			require.NoError(t, err)
			assert.Nil(t, missing)

			// upsert keeps position
			a.Name = "deploy-v2"
			require.NoError(t, s.Save(ctx, a))
			all, err = s.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "deploy-v2", all[0].Name)
			assert.Equal(t, "backup", all[1].Name)

			ok, err := s.Delete(ctx, a.ID)
			require.NoError(t, err)
			assert.True(t, ok)
			ok, err = s.Delete(ctx, a.ID)
			require.NoError(t, err)
			assert.False(t, ok)

			all, err = s.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 1)
		})
	}
}

func TestStoreSearch(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Save(ctx, sample("Deploy", "prod")))
			require.NoError(t, s.Save(ctx, sample("backup", "nightly")))
			require.NoError(t, s.Save(ctx, sample("lint")))

			res, err := s.Search(ctx, "deploy")
			require.NoError(t, err)
			require.Len(t, res, 1)
			assert.Equal(t, "Deploy", res[0].Name)

			res, err = s.Search(ctx, "NIGHT")
			require.NoError(t, err)
			require.Len(t, res, 1)
			assert.Equal(t, "backup", res[0].Name)

			// description matches
			res, err = s.Search(ctx, "builds")
			require.NoError(t, err)
			assert.Len(t, res, 3)

			res, err = s.Search(ctx, "zzz")
			require.NoError(t, err)
			assert.Empty(t, res)
		})
	}
}

func TestStoreRoundTripsRunBookkeeping(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a := sample("cron")
			def := "world"
			a.Parameters = []models.Parameter{{Name: "who", Type: models.Text, DefaultValue: &def, Required: true}}
			a = a.WithRun(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
			require.NoError(t, s.Save(ctx, a))

			got, err := s.Get(ctx, a.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, 1, got.RunCount)
			require.NotNil(t, got.LastRun)
			assert.True(t, a.LastRun.Equal(*got.LastRun))
			require.Len(t, got.Parameters, 1)
			assert.Equal(t, "world", *got.Parameters[0].DefaultValue)
		})
	}
}

func TestJSONStoreMissingAndCorruptFileReadsEmpty(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "sub", "automations.json")
	s := NewJSONStore(p)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("{not json"), 0o644))
	all, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	// a write replaces the corrupt document
	require.NoError(t, s.Save(ctx, sample("fresh")))
	all, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestJSONStoreWritesArray(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "automations.json")
	s := NewJSONStore(p)
	a := sample("x")
	require.NoError(t, s.Save(ctx, a))
	_, err := s.Delete(ctx, a.ID)
	require.NoError(t, err)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(b))
}

func TestJSONStoreUnreadableFileFails(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "automations.json")
	require.NoError(t, os.Mkdir(p, 0o755))
	s := NewJSONStore(p)

	all, err := s.List(ctx)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "read", se.Op)
	assert.Nil(t, all)

	got, err := s.Get(ctx, "any")
	require.ErrorAs(t, err, &se)
	assert.Nil(t, got)

	_, err = s.Search(ctx, "x")
	require.ErrorAs(t, err, &se)

	err = s.Save(ctx, sample("x"))
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "read", se.Op)

	_, err = s.Delete(ctx, "any")
	require.ErrorAs(t, err, &se)

	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "the unreadable path must be left untouched")
}

func TestStorageErrorUnwraps(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	s := NewJSONStore(filepath.Join(blocker, "automations.json"))
	err := s.Save(context.Background(), sample("x"))
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.NotEmpty(t, se.Op)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestOpenSelectsBackend(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(config.Settings{Backend: config.BackendJSON, Store: filepath.Join(dir, "a.json")})
	require.NoError(t, err)
	assert.IsType(t, &JSONStore{}, s)

	s, err = Open(config.Settings{Backend: config.BackendSQLite, Store: filepath.Join(dir, "a.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(config.Settings{Backend: "mongo", Store: filepath.Join(dir, "x")})
	assert.Error(t, err)
}

func TestMatches(t *testing.T) {
	a := sample("Release", "CI")
	assert.True(t, Matches(a, ""))
	assert.True(t, Matches(a, "rel"))
	assert.True(t, Matches(a, "ci"))
	assert.False(t, Matches(a, "deploy"))
}
