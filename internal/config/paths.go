package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables that override the default locations.
const (
	EnvDevflowHome  = "DEVFLOW_HOME"
	EnvDevflowStore = "DEVFLOW_STORE"
)

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// DataDir returns the directory used to store devflow data.
func DataDir() (string, error) {
	if d := os.Getenv(EnvDevflowHome); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	// Use a dot-directory in the user's home on all platforms
	return filepath.Join(home, ".devflow"), nil
}

// EnsureDataDir creates the data directory if needed and returns its path.
func EnsureDataDir() (string, error) {
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(d, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return d, nil
}

// StorePath returns the full path to the automation store for backend.
func StorePath(backend string) (string, error) {
	if p := os.Getenv(EnvDevflowStore); p != "" {
		return p, nil
	}
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	if backend == BackendSQLite {
		return filepath.Join(d, "devflow.db"), nil
	}
	return filepath.Join(d, "automations.json"), nil
}
