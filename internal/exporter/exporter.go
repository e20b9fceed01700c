// Package exporter writes automation bundles in JSON, YAML or SQLite form.
package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/VoxDroid/devflow/internal/models"
	"github.com/VoxDroid/devflow/internal/storage"
)

// BundleVersion is the current bundle schema version.
const BundleVersion = 1

// Bundle is the portable envelope around exported automations.
type Bundle struct {
	Version     int                 `json:"version" yaml:"version"`
	Automations []models.Automation `json:"automations" yaml:"automations"`
}

// Format identifies a bundle encoding.
type Format string

// Supported formats.
const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

// ParseFormat accepts json, yaml/yml and sqlite/db, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "sqlite", "db":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("unknown format %q (want json, yaml or sqlite)", s)
}

// FormatFromPath picks a format from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if f, err := ParseFormat(ext); err == nil {
		return f
	}
	return FormatJSON
}

// Encode writes automations to w as a JSON or YAML bundle.
func Encode(w io.Writer, format Format, automations []models.Automation) error {
	b := Bundle{Version: BundleVersion, Automations: automations}
	if b.Automations == nil {
		b.Automations = []models.Automation{}
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(b); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("format %q cannot be streamed", format)
}

// ExportFile writes automations to path in format. The sqlite format creates
// a standalone database that the sqlite backend can open directly.
func ExportFile(ctx context.Context, path string, format Format, automations []models.Automation) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dst dir: %w", err)
	}
	if format == FormatSQLite {
		return exportSQLite(ctx, path, automations)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := Encode(out, format, automations); err != nil {
		_ = out.Close()
		return fmt.Errorf("encode bundle: %w", err)
	}
	return out.Close()
}

func exportSQLite(ctx context.Context, path string, automations []models.Automation) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("export: %s already exists", path)
	}
	s, err := storage.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	for _, a := range automations {
		if err := s.Save(ctx, a); err != nil {
			return fmt.Errorf("export %s: %w", a.Name, err)
		}
	}
	return nil
}
