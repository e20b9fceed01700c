// Package service implements automation management on top of a Store.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/VoxDroid/devflow/internal/models"
	"github.com/VoxDroid/devflow/internal/nameutil"
	"github.com/VoxDroid/devflow/internal/storage"
)

// ErrNotFound is matched by every *NotFoundError.
var ErrNotFound = errors.New("automation not found")

// NotFoundError names the id or name that did not resolve.
type NotFoundError struct {
	Ref string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotFound.Error(), e.Ref)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AutomationService provides CRUD and run bookkeeping for automations.
type AutomationService struct {
	store storage.Store
	now   func() time.Time
}

// New returns a service persisting through store.
func New(store storage.Store) *AutomationService {
	return &AutomationService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Store returns the underlying store.
func (s *AutomationService) Store() storage.Store { return s.store }

// Create validates name and persists a new automation with a fresh id.
func (s *AutomationService) Create(ctx context.Context, name, description string, commands []models.Command, params []models.Parameter, tags []string) (models.Automation, error) {
	clean, err := nameutil.Normalize(name)
	if err != nil {
		return models.Automation{}, err
	}
	if len(commands) == 0 {
		return models.Automation{}, fmt.Errorf("automation %q needs at least one command", clean)
	}
	a := models.NewAutomation(clean, commands...)
	a.Description = strings.TrimSpace(description)
	a.Parameters = params
	a.Tags = normalizeTags(tags)
	a.CreatedAt = s.now()
	a = a.Clone()
	if err := s.store.Save(ctx, a); err != nil {
		return models.Automation{}, fmt.Errorf("create automation: %w", err)
	}
	return a, nil
}

// Add persists a fully formed automation as-is, after validating its name.
func (s *AutomationService) Add(ctx context.Context, a models.Automation) error {
	clean, err := nameutil.Normalize(a.Name)
	if err != nil {
		return err
	}
	a.Name = clean
	if err := s.store.Save(ctx, a); err != nil {
		return fmt.Errorf("save automation: %w", err)
	}
	return nil
}

// Get returns the automation with id or a *NotFoundError.
func (s *AutomationService) Get(ctx context.Context, id string) (models.Automation, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Automation{}, err
	}
	if a == nil {
		return models.Automation{}, &NotFoundError{Ref: id}
	}
	return *a, nil
}

// FindByName returns the first automation whose name matches, ignoring case.
func (s *AutomationService) FindByName(ctx context.Context, name string) (models.Automation, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return models.Automation{}, err
	}
	want := strings.TrimSpace(name)
	for _, a := range all {
		if strings.EqualFold(a.Name, want) {
			return a, nil
		}
	}
	return models.Automation{}, &NotFoundError{Ref: name}
}

// Resolve looks ref up as an id first, then as a name.
func (s *AutomationService) Resolve(ctx context.Context, ref string) (models.Automation, error) {
	a, err := s.Get(ctx, ref)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return a, err
	}
	return s.FindByName(ctx, ref)
}

// Update replaces the stored record with a. The automation must exist.
func (s *AutomationService) Update(ctx context.Context, a models.Automation) error {
	if _, err := s.Get(ctx, a.ID); err != nil {
		return err
	}
	return s.Add(ctx, a)
}

// Delete removes the automation with id.
func (s *AutomationService) Delete(ctx context.Context, id string) error {
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete automation: %w", err)
	}
	if !ok {
		return &NotFoundError{Ref: id}
	}
	return nil
}

// List returns every automation in storage order.
func (s *AutomationService) List(ctx context.Context) ([]models.Automation, error) {
	return s.store.List(ctx)
}

// ListByTag returns the automations carrying tag.
func (s *AutomationService) ListByTag(ctx context.Context, tag string) ([]models.Automation, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Automation
	for _, a := range all {
		if a.HasTag(tag) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Search returns automations whose name, description or tags contain query.
func (s *AutomationService) Search(ctx context.Context, query string) ([]models.Automation, error) {
	return s.store.Search(ctx, query)
}

// RecordRun bumps the run count and last-run time of the automation with id.
func (s *AutomationService) RecordRun(ctx context.Context, id string, at time.Time) (models.Automation, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return models.Automation{}, err
	}
	updated := a.WithRun(at.UTC())
	if err := s.store.Save(ctx, updated); err != nil {
		return models.Automation{}, fmt.Errorf("record run: %w", err)
	}
	return updated, nil
}

// searchable is what Rank matches against: name, tags, description and commands.
func searchable(a models.Automation) string {
	parts := []string{a.Name}
	parts = append(parts, a.Tags...)
	parts = append(parts, a.Description)
	for _, c := range a.Commands {
		parts = append(parts, c.Command)
	}
	return strings.Join(parts, " ")
}

type automationSource []models.Automation

func (s automationSource) String(i int) string { return searchable(s[i]) }
func (s automationSource) Len() int            { return len(s) }

// Rank orders automations by fuzzy match quality against query, dropping
// those that do not match at all. An empty query returns all unchanged.
func Rank(all []models.Automation, query string) []models.Automation {
	if strings.TrimSpace(query) == "" {
		return all
	}
	matches := fuzzy.FindFrom(query, automationSource(all))
	out := make([]models.Automation, 0, len(matches))
	for _, m := range matches {
		out = append(out, all[m.Index])
	}
	return out
}

func normalizeTags(tags []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	return out
}
