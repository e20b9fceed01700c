package executor

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/VoxDroid/devflow/internal/models"
)

// Executor drives automations through a Runner one command at a time,
// applying each command's on_error policy. An Executor runs at most one
// automation at a time: Execute fails fast with a *ConflictError instead of
// queueing.
type Executor struct {
	runner Runner
	opts   RunOptions
	logger *slog.Logger

	running       atomic.Bool
	stopRequested atomic.Bool

	mu        sync.Mutex
	observers []Observer
	current   string // id of the in-flight automation
	name      string
	index     int
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for diagnostics and observer failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithRunOptions sets the default directory and environment overrides
// passed to the Runner for every command.
func WithRunOptions(o RunOptions) Option {
	return func(e *Executor) { e.opts = o }
}

// WithObserver registers an observer at construction time.
func WithObserver(o Observer) Option {
	return func(e *Executor) { e.observers = append(e.observers, o) }
}

// NewExecutor returns an Executor that runs commands through r.
func NewExecutor(r Runner, opts ...Option) *Executor {
	e := &Executor{runner: r, index: -1}
	for _, o := range opts {
		o(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// AddObserver registers o. Observers are notified in registration order.
func (e *Executor) AddObserver(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// Status is a point-in-time view of the executor's run state.
type Status struct {
	Running        bool
	AutomationID   string
	AutomationName string
	CommandIndex   int // -1 when idle
}

// Status returns a snapshot that is safe to read from any goroutine.
func (e *Executor) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		Running:        e.running.Load(),
		AutomationID:   e.current,
		AutomationName: e.name,
		CommandIndex:   e.index,
	}
}

// IsRunning reports whether a run is in progress.
func (e *Executor) IsRunning() bool { return e.running.Load() }

// Stop asks the in-flight run not to start any further command. The command
// currently executing is left to finish; cancel the context passed to
// Execute to terminate it as well. Stop is a no-op when idle.
func (e *Executor) Stop() {
	if e.running.Load() {
		e.stopRequested.Store(true)
	}
}

// Report is the outcome of one Execute call.
type Report struct {
	// Automation is the parameter-substituted copy that was run.
	Automation models.Automation
	// Results holds every attempt in execution order; a RETRY attempt
	// directly follows the failure it retried.
	Results []models.ExecutionResult
	// Indexes[i] is the command index that produced Results[i].
	Indexes []int
	// Halted is set when a STOP policy ended the run at HaltIndex.
	Halted    bool
	HaltIndex int
	// Cancelled is set when Stop or context cancellation ended the run early.
	Cancelled bool
	StartedAt time.Time
	Duration  time.Duration
}

// Succeeded reports whether every command ran and its final attempt succeeded.
func (r Report) Succeeded() bool {
	if r.Halted || r.Cancelled {
		return false
	}
	final := map[int]bool{}
	for i, res := range r.Results {
		final[r.Indexes[i]] = res.Success
	}
	if len(final) != len(r.Automation.Commands) {
		return false
	}
	for _, ok := range final {
		if !ok {
			return false
		}
	}
	return true
}

// Failures returns the failed attempts.
func (r Report) Failures() []models.ExecutionResult {
	var out []models.ExecutionResult
	for _, res := range r.Results {
		if !res.Success {
			out = append(out, res)
		}
	}
	return out
}

// Err returns an *ExecutionError for the command that halted the run, or nil.
func (r Report) Err() error {
	if !r.Halted || len(r.Results) == 0 {
		return nil
	}
	return ResultError(r.Results[len(r.Results)-1])
}

func (e *Executor) snapshotObservers() []Observer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.observers)
}

// notify calls fn for every observer. A panicking hook is logged and
// skipped; it never aborts the run or the remaining observers.
func (e *Executor) notify(hook string, fn func(Observer)) {
	for _, o := range e.snapshotObservers() {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("observer hook failed", "hook", hook, "panic", r)
				}
			}()
			fn(o)
		}()
	}
}

func (e *Executor) setIndex(i int) {
	e.mu.Lock()
	e.index = i
	e.mu.Unlock()
}

// RunCommand executes a single command through the Runner, emitting the
// command start and complete hooks around it.
func (e *Executor) RunCommand(ctx context.Context, c models.Command) models.ExecutionResult {
	e.notify("OnCommandStart", func(o Observer) { o.OnCommandStart(c.Command) })
	res := e.runner.Run(ctx, c, e.opts)
	e.notify("OnCommandComplete", func(o Observer) { o.OnCommandComplete(c.Command, res) })
	return res
}

// Execute runs automation a with params substituted into its commands.
// Command failures are reported through the Report, never as an error; the
// only error is a *ConflictError when another run is already in progress.
// Cancelling ctx terminates the in-flight command and ends the run.
func (e *Executor) Execute(ctx context.Context, a models.Automation, params map[string]string) (Report, error) {
	e.mu.Lock()
	if !e.running.CompareAndSwap(false, true) {
		running := e.name
		e.mu.Unlock()
		return Report{}, &ConflictError{Running: running}
	}
	// a Stop that raced the previous run's cleanup must not end this one
	e.stopRequested.Store(false)
	e.current, e.name, e.index = a.ID, a.Name, 0
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.current, e.name, e.index = "", "", -1
		e.stopRequested.Store(false)
		e.running.Store(false)
		e.mu.Unlock()
	}()

	run := a.SubstituteParameters(params)
	rep := Report{Automation: run, HaltIndex: -1, StartedAt: time.Now()}
	log := e.logger.With("automation", run.Name, "id", run.ID)
	log.Debug("run started", "commands", len(run.Commands))

	e.notify("OnAutomationStart", func(o Observer) { o.OnAutomationStart(run.Clone()) })

	record := func(i int, res models.ExecutionResult) {
		rep.Results = append(rep.Results, res)
		rep.Indexes = append(rep.Indexes, i)
	}

	for i, c := range run.Commands {
		if e.stopRequested.Load() || ctx.Err() != nil {
			rep.Cancelled = true
			break
		}
		e.setIndex(i)

		res := e.RunCommand(ctx, c)
		record(i, res)
		if res.Success {
			continue
		}

		switch c.Policy() {
		case models.Stop:
			rep.Halted, rep.HaltIndex = true, i
			e.notify("OnAutomationStopped", func(o Observer) { o.OnAutomationStopped(run.Clone(), i, res) })
		case models.Retry:
			if ctx.Err() != nil {
				break
			}
			log.Debug("retrying command", "index", i)
			record(i, e.RunCommand(ctx, c))
			// the run continues whatever the retry's outcome
		case models.Skip, models.Continue:
		}
		if rep.Halted {
			break
		}
	}
	if ctx.Err() != nil {
		rep.Cancelled = true
	}
	rep.Duration = time.Since(rep.StartedAt)

	results := slices.Clone(rep.Results)
	e.notify("OnAutomationComplete", func(o Observer) { o.OnAutomationComplete(run.Clone(), results) })
	log.Debug("run finished", "results", len(rep.Results), "halted", rep.Halted, "cancelled", rep.Cancelled)
	return rep, nil
}
