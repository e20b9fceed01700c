// Package model holds the TUI state that does not depend on Bubble Tea:
// the cached automation list and the single in-flight run.
package model

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/VoxDroid/devflow/internal/executor"
	"github.com/VoxDroid/devflow/internal/models"
	"github.com/VoxDroid/devflow/internal/security"
)

// Source is the subset of the automation service the TUI reads and updates.
type Source interface {
	List(ctx context.Context) ([]models.Automation, error)
	Resolve(ctx context.Context, ref string) (models.Automation, error)
	RecordRun(ctx context.Context, id string, at time.Time) (models.Automation, error)
}

// UIModel is a framework-agnostic model for the list and run screens.
type UIModel struct {
	source Source
	exec   *executor.Executor
	relay  *relay

	cache []models.Automation

	mu     sync.Mutex
	active *RunHandle
}

// New constructs a UIModel that runs commands through runner.
func New(source Source, runner executor.Runner, opts executor.RunOptions) *UIModel {
	r := &relay{}
	return &UIModel{
		source: source,
		relay:  r,
		exec: executor.NewExecutor(runner,
			executor.WithRunOptions(opts),
			executor.WithObserver(r),
			executor.WithLogger(slog.Default().With("component", "tui")),
		),
	}
}

// RefreshList reloads the automation list into the cache.
func (m *UIModel) RefreshList(ctx context.Context) error {
	all, err := m.source.List(ctx)
	if err != nil {
		return err
	}
	m.cache = all
	return nil
}

// ListCached returns the automations loaded by the last RefreshList.
func (m *UIModel) ListCached() []models.Automation { return m.cache }

// Get fetches the current copy of an automation by id or name.
func (m *UIModel) Get(ctx context.Context, ref string) (models.Automation, error) {
	return m.source.Resolve(ctx, ref)
}

// Status reports the executor state.
func (m *UIModel) Status() executor.Status { return m.exec.Status() }

// Run starts the referenced automation in the background and returns a
// handle for its event stream. Automations that need parameter values or
// contain blocked commands are refused, and so is a second concurrent run.
func (m *UIModel) Run(ctx context.Context, ref string) (*RunHandle, error) {
	a, err := m.source.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := a.CheckParameters(nil); err != nil {
		return nil, err
	}
	if err := security.CheckAutomation(a); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		return nil, &executor.ConflictError{Running: m.active.Name}
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &RunHandle{
		Name:     a.Name,
		events:   make(chan executor.Event, 64),
		abandon:  make(chan struct{}),
		finished: make(chan struct{}),
		cancel:   cancel,
		exec:     m.exec,
	}
	m.active = h
	m.relay.set(executor.ChannelObserver{Events: h.events, Done: h.abandon})

	go func() {
		defer cancel()
		rep, err := m.exec.Execute(ctx, a, nil)
		if err == nil {
			if _, rerr := m.source.RecordRun(context.WithoutCancel(ctx), a.ID, time.Now()); rerr != nil {
				slog.Warn("failed to record run", "automation", a.Name, "err", rerr)
			}
		}
		m.mu.Lock()
		m.relay.set(nil)
		m.active = nil
		m.mu.Unlock()

		h.report, h.err = rep, err
		close(h.events)
		close(h.finished)
	}()
	return h, nil
}

// RunHandle controls one background run.
type RunHandle struct {
	Name string

	events   chan executor.Event
	abandon  chan struct{}
	finished chan struct{}
	once     sync.Once
	cancel   context.CancelFunc
	exec     *executor.Executor

	report executor.Report
	err    error
}

// Events streams executor events; it is closed when the run ends.
func (h *RunHandle) Events() <-chan executor.Event { return h.events }

// Stop lets the current command finish and prevents the next one.
func (h *RunHandle) Stop() { h.exec.Stop() }

// Cancel terminates the in-flight command and ends the run. Events not yet
// received may be dropped.
func (h *RunHandle) Cancel() {
	h.once.Do(func() { close(h.abandon) })
	h.cancel()
}

// Wait blocks until the run ends and returns its report.
func (h *RunHandle) Wait() (executor.Report, error) {
	<-h.finished
	return h.report, h.err
}

// relay forwards executor hooks to the observer of the current run.
type relay struct {
	mu     sync.Mutex
	target executor.Observer
}

func (r *relay) set(o executor.Observer) {
	r.mu.Lock()
	r.target = o
	r.mu.Unlock()
}

func (r *relay) get() executor.Observer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.target == nil {
		return executor.NopObserver{}
	}
	return r.target
}

func (r *relay) OnAutomationStart(a models.Automation) { r.get().OnAutomationStart(a) }

func (r *relay) OnCommandStart(command string) { r.get().OnCommandStart(command) }

func (r *relay) OnCommandComplete(command string, res models.ExecutionResult) {
	r.get().OnCommandComplete(command, res)
}

func (r *relay) OnAutomationStopped(a models.Automation, index int, res models.ExecutionResult) {
	r.get().OnAutomationStopped(a, index, res)
}

func (r *relay) OnAutomationComplete(a models.Automation, results []models.ExecutionResult) {
	r.get().OnAutomationComplete(a, results)
}
