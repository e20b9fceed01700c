package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"HOME", "STORE", "BACKEND", "SHELL", "WORKDIR", "LOG_LEVEL", "LOG_FORMAT", "KILL_GRACE"} {
		t.Setenv("DEVFLOW_"+k, "")
		_ = os.Unsetenv("DEVFLOW_" + k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendJSON, s.Backend)
	assert.Equal(t, "warn", s.LogLevel)
	assert.Equal(t, "text", s.LogFormat)
	assert.Equal(t, 2*time.Second, s.KillGrace)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEVFLOW_BACKEND", "sqlite")
	t.Setenv("DEVFLOW_SHELL", "bash")
	t.Setenv("DEVFLOW_LOG_LEVEL", "debug")
	t.Setenv("DEVFLOW_KILL_GRACE", "500ms")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, s.Backend)
	assert.Equal(t, "bash", s.Shell)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, 500*time.Millisecond, s.KillGrace)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEVFLOW_BACKEND", "postgres")
	_, err := Load()
	assert.ErrorContains(t, err, "invalid backend")

	clearEnv(t)
	t.Setenv("DEVFLOW_LOG_FORMAT", "xml")
	_, err = Load()
	assert.ErrorContains(t, err, "invalid log format")

	clearEnv(t)
	t.Setenv("DEVFLOW_KILL_GRACE", "soon")
	_, err = Load()
	assert.Error(t, err)
}

func TestSettingsStorePath(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv(EnvDevflowHome, home)

	s := Settings{Backend: BackendSQLite}
	p, err := s.StorePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "devflow.db"), p)

	s.Store = "/tmp/explicit.json"
	p, err = s.StorePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/explicit.json", p)
}
