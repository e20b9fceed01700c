package executor

import (
	"log/slog"

	"github.com/VoxDroid/devflow/internal/models"
)

// Observer receives lifecycle notifications from an Executor. Hooks are
// called synchronously, in registration order, on the goroutine running the
// automation. Values passed in are copies and must be treated as read-only.
// Embed NopObserver to implement only the hooks you need.
type Observer interface {
	OnAutomationStart(a models.Automation)
	OnCommandStart(command string)
	OnCommandComplete(command string, result models.ExecutionResult)
	// OnAutomationStopped fires when a STOP policy ends the run at index.
	OnAutomationStopped(a models.Automation, index int, result models.ExecutionResult)
	OnAutomationComplete(a models.Automation, results []models.ExecutionResult)
}

// NopObserver implements Observer with no-op hooks.
type NopObserver struct{}

func (NopObserver) OnAutomationStart(models.Automation)                                {}
func (NopObserver) OnCommandStart(string)                                              {}
func (NopObserver) OnCommandComplete(string, models.ExecutionResult)                   {}
func (NopObserver) OnAutomationStopped(models.Automation, int, models.ExecutionResult) {}
func (NopObserver) OnAutomationComplete(models.Automation, []models.ExecutionResult)   {}

// ObserverFuncs adapts optional callbacks to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	AutomationStart    func(a models.Automation)
	CommandStart       func(command string)
	CommandComplete    func(command string, result models.ExecutionResult)
	AutomationStopped  func(a models.Automation, index int, result models.ExecutionResult)
	AutomationComplete func(a models.Automation, results []models.ExecutionResult)
}

func (f ObserverFuncs) OnAutomationStart(a models.Automation) {
	if f.AutomationStart != nil {
		f.AutomationStart(a)
	}
}

func (f ObserverFuncs) OnCommandStart(command string) {
	if f.CommandStart != nil {
		f.CommandStart(command)
	}
}

func (f ObserverFuncs) OnCommandComplete(command string, result models.ExecutionResult) {
	if f.CommandComplete != nil {
		f.CommandComplete(command, result)
	}
}

func (f ObserverFuncs) OnAutomationStopped(a models.Automation, index int, result models.ExecutionResult) {
	if f.AutomationStopped != nil {
		f.AutomationStopped(a, index, result)
	}
}

func (f ObserverFuncs) OnAutomationComplete(a models.Automation, results []models.ExecutionResult) {
	if f.AutomationComplete != nil {
		f.AutomationComplete(a, results)
	}
}

// LogObserver writes lifecycle events to a structured logger.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) log() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o LogObserver) OnAutomationStart(a models.Automation) {
	o.log().Info("automation started", "id", a.ID, "name", a.Name, "commands", len(a.Commands))
}

func (o LogObserver) OnCommandStart(command string) {
	o.log().Info("command started", "command", command)
}

func (o LogObserver) OnCommandComplete(command string, r models.ExecutionResult) {
	o.log().Info("command finished", "command", command, "success", r.Success, "exit_code", r.ExitCode, "elapsed", r.ExecutionTime)
}

func (o LogObserver) OnAutomationStopped(a models.Automation, index int, r models.ExecutionResult) {
	o.log().Warn("automation halted", "name", a.Name, "index", index, "command", r.Command, "exit_code", r.ExitCode)
}

func (o LogObserver) OnAutomationComplete(a models.Automation, results []models.ExecutionResult) {
	o.log().Info("automation finished", "name", a.Name, "results", len(results))
}

// EventKind identifies which hook produced an Event.
type EventKind int

// Event kinds.
const (
	AutomationStarted EventKind = iota
	CommandStarted
	CommandFinished
	AutomationHalted
	AutomationFinished
)

// Event is the channel form of an Observer notification.
type Event struct {
	Kind       EventKind
	Automation models.Automation
	Command    string
	Index      int
	Result     models.ExecutionResult
	Results    []models.ExecutionResult
}

// ChannelObserver forwards notifications to a channel. Sends give up once
// Done is closed so an abandoned consumer cannot wedge a run.
type ChannelObserver struct {
	Events chan<- Event
	Done   <-chan struct{}
}

func (o ChannelObserver) send(ev Event) {
	select {
	case o.Events <- ev:
	case <-o.Done:
	}
}

func (o ChannelObserver) OnAutomationStart(a models.Automation) {
	o.send(Event{Kind: AutomationStarted, Automation: a, Index: -1})
}

func (o ChannelObserver) OnCommandStart(command string) {
	o.send(Event{Kind: CommandStarted, Command: command, Index: -1})
}

func (o ChannelObserver) OnCommandComplete(command string, r models.ExecutionResult) {
	o.send(Event{Kind: CommandFinished, Command: command, Result: r, Index: -1})
}

func (o ChannelObserver) OnAutomationStopped(a models.Automation, index int, r models.ExecutionResult) {
	o.send(Event{Kind: AutomationHalted, Automation: a, Index: index, Command: r.Command, Result: r})
}

func (o ChannelObserver) OnAutomationComplete(a models.Automation, results []models.ExecutionResult) {
	o.send(Event{Kind: AutomationFinished, Automation: a, Results: results, Index: -1})
}
