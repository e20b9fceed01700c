package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings holds the environment-driven configuration. CLI flags override
// individual fields after Load.
type Settings struct {
	Home      string        `env:"HOME"`
	Store     string        `env:"STORE"`
	Backend   string        `env:"BACKEND" envDefault:"json"`
	Shell     string        `env:"SHELL"`
	WorkDir   string        `env:"WORKDIR"`
	LogLevel  string        `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat string        `env:"LOG_FORMAT" envDefault:"text"`
	KillGrace time.Duration `env:"KILL_GRACE" envDefault:"2s"`
}

// Load reads DEVFLOW_* variables into Settings and validates them.
func Load() (Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, env.Options{Prefix: "DEVFLOW_"}); err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the enumerated fields.
func (s Settings) Validate() error {
	switch s.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("invalid backend %q (want json or sqlite)", s.Backend)
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", s.LogLevel)
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", s.LogFormat)
	}
	if s.KillGrace < 0 {
		return fmt.Errorf("kill grace must not be negative")
	}
	return nil
}

// StorePath resolves the store location: an explicit Store wins, then the
// per-backend default inside the data directory.
func (s Settings) StorePath() (string, error) {
	if s.Store != "" {
		return s.Store, nil
	}
	return StorePath(s.Backend)
}
