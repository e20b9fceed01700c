// Package importer reads automation bundles and merges them into a store.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/VoxDroid/devflow/internal/exporter"
	"github.com/VoxDroid/devflow/internal/models"
	"github.com/VoxDroid/devflow/internal/nameutil"
	"github.com/VoxDroid/devflow/internal/storage"
)

// Policy decides what happens when an incoming automation collides with a
// stored one by id or by name.
type Policy string

// Conflict policies.
const (
	Skip      Policy = "skip"
	Overwrite Policy = "overwrite"
	Rename    Policy = "rename"
)

// ParsePolicy parses skip|overwrite|rename; empty means Skip.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case Skip, Overwrite, Rename:
		return p, nil
	case "":
		return Skip, nil
	}
	return "", fmt.Errorf("invalid conflict policy %q (want skip, overwrite or rename)", s)
}

// Target is where imported automations land.
type Target interface {
	List(ctx context.Context) ([]models.Automation, error)
	Add(ctx context.Context, a models.Automation) error
}

// RenamedAutomation records an automation stored under a new name.
type RenamedAutomation struct {
	From, To string
}

// Summary reports what an import did, by automation name.
type Summary struct {
	Added       []string
	Overwritten []string
	Renamed     []RenamedAutomation
	Skipped     []string
}

// Decode parses a JSON or YAML bundle. A bare array of automations is also
// accepted for JSON, which is how the automations.json store is laid out.
func Decode(data []byte, format exporter.Format) ([]models.Automation, error) {
	var b exporter.Bundle
	switch format {
	case exporter.FormatJSON:
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &b.Automations); err != nil {
				return nil, fmt.Errorf("decode automations: %w", err)
			}
			return b.Automations, nil
		}
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return nil, fmt.Errorf("decode bundle: %w", err)
		}
	case exporter.FormatYAML:
		if err := yaml.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("decode bundle: %w", err)
		}
	default:
		return nil, fmt.Errorf("format %q cannot be decoded from bytes", format)
	}
	if b.Version > exporter.BundleVersion {
		return nil, fmt.Errorf("bundle version %d is newer than supported version %d", b.Version, exporter.BundleVersion)
	}
	return b.Automations, nil
}

// ReadFile loads automations from path in format.
func ReadFile(ctx context.Context, path string, format exporter.Format) ([]models.Automation, error) {
	if format == exporter.FormatSQLite {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("open source: %w", err)
		}
		s, err := storage.OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = s.Close() }()
		return s.List(ctx)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	return Decode(data, format)
}

// Import merges incoming into dst according to policy.
func Import(ctx context.Context, dst Target, incoming []models.Automation, policy Policy) (Summary, error) {
	var sum Summary
	existing, err := dst.List(ctx)
	if err != nil {
		return sum, err
	}
	byID := map[string]models.Automation{}
	byName := map[string]models.Automation{}
	for _, a := range existing {
		byID[a.ID] = a
		byName[strings.ToLower(a.Name)] = a
	}
	taken := func(n string) bool {
		_, ok := byName[strings.ToLower(n)]
		return ok
	}

	for _, in := range incoming {
		a := in.Clone()
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		clean, err := nameutil.Normalize(a.Name)
		if err != nil {
			return sum, fmt.Errorf("import %q: %w", a.Name, err)
		}
		a.Name = clean

		prev, conflict := byID[a.ID]
		if !conflict {
			prev, conflict = byName[strings.ToLower(a.Name)]
		}
		if conflict {
			switch policy {
			case Overwrite:
				a.ID = prev.ID
				delete(byName, strings.ToLower(prev.Name))
				sum.Overwritten = append(sum.Overwritten, a.Name)
			case Rename:
				a.ID = uuid.NewString()
				name := nameutil.UniqueName(a.Name, "import", taken)
				sum.Renamed = append(sum.Renamed, RenamedAutomation{From: a.Name, To: name})
				a.Name = name
			default:
				sum.Skipped = append(sum.Skipped, a.Name)
				continue
			}
		} else {
			sum.Added = append(sum.Added, a.Name)
		}
		if err := dst.Add(ctx, a); err != nil {
			return sum, fmt.Errorf("import %q: %w", a.Name, err)
		}
		byID[a.ID] = a
		byName[strings.ToLower(a.Name)] = a
	}
	return sum, nil
}
