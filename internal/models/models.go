// Package models defines the automation data model shared by the engine,
// storage backends and user interfaces.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout is applied to commands that do not declare a timeout.
const DefaultTimeout = 30 * time.Second

// Parameter declares a value an automation expects at run time.
type Parameter struct {
	Name         string        `json:"name" yaml:"name"`
	Type         ParameterType `json:"type" yaml:"type"`
	Description  string        `json:"description,omitempty" yaml:"description,omitempty"`
	DefaultValue *string       `json:"default_value" yaml:"default_value,omitempty"`
	Required     bool          `json:"required" yaml:"required"`
	Choices      []string      `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// Command is a single shell invocation within an Automation together with
// its timeout and failure policy.
type Command struct {
	Command          string            `json:"command" yaml:"command"`
	Description      string            `json:"description,omitempty" yaml:"description,omitempty"`
	Timeout          int               `json:"timeout" yaml:"timeout,omitempty"` // seconds
	OnError          ErrorAction       `json:"on_error" yaml:"on_error,omitempty"`
	WorkingDirectory string            `json:"working_directory,omitempty" yaml:"working_directory,omitempty"`
	EnvironmentVars  map[string]string `json:"environment_vars,omitempty" yaml:"environment_vars,omitempty"`
}

// Automation represents a named, ordered workflow of commands.
type Automation struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Commands    []Command   `json:"commands" yaml:"commands"`
	Parameters  []Parameter `json:"parameters" yaml:"parameters,omitempty"`
	Tags        []string    `json:"tags" yaml:"tags,omitempty"`
	CreatedAt   time.Time   `json:"created_at" yaml:"created_at"`
	LastRun     *time.Time  `json:"last_run" yaml:"last_run,omitempty"`
	RunCount    int         `json:"run_count" yaml:"run_count"`
}

// NewCommand returns a command with the default timeout and STOP policy.
func NewCommand(line string) Command {
	return Command{Command: line, Timeout: int(DefaultTimeout / time.Second), OnError: Stop}
}

// NewAutomation creates an automation with a freshly generated id.
func NewAutomation(name string, commands ...Command) Automation {
	return Automation{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Commands:  commands,
		CreatedAt: time.Now().UTC(),
	}
}

// TimeoutDuration returns the command timeout, falling back to DefaultTimeout.
func (c Command) TimeoutDuration() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.Timeout) * time.Second
}

// Policy returns the command's error action, STOP when unset.
func (c Command) Policy() ErrorAction {
	if c.OnError == "" {
		return Stop
	}
	return c.OnError
}

// Clone returns a deep copy of the command.
func (c Command) Clone() Command {
	out := c
	if c.EnvironmentVars != nil {
		out.EnvironmentVars = make(map[string]string, len(c.EnvironmentVars))
		for k, v := range c.EnvironmentVars {
			out.EnvironmentVars[k] = v
		}
	}
	return out
}

// Clone returns a deep copy of the parameter.
func (p Parameter) Clone() Parameter {
	out := p
	if p.DefaultValue != nil {
		v := *p.DefaultValue
		out.DefaultValue = &v
	}
	out.Choices = append([]string(nil), p.Choices...)
	return out
}

// Clone returns a deep copy of the automation so callers can hand it to
// other goroutines without sharing slices or maps.
func (a Automation) Clone() Automation {
	out := a
	if a.Commands != nil {
		out.Commands = make([]Command, len(a.Commands))
		for i, c := range a.Commands {
			out.Commands[i] = c.Clone()
		}
	}
	if a.Parameters != nil {
		out.Parameters = make([]Parameter, len(a.Parameters))
		for i, p := range a.Parameters {
			out.Parameters[i] = p.Clone()
		}
	}
	out.Tags = append([]string(nil), a.Tags...)
	if a.LastRun != nil {
		t := *a.LastRun
		out.LastRun = &t
	}
	return out
}

// Parameter looks up a declared parameter by name.
func (a Automation) Parameter(name string) (Parameter, bool) {
	for _, p := range a.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// HasTag reports whether the automation carries tag (case-insensitive).
func (a Automation) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// WithRun returns a copy with the run counter incremented and LastRun set.
func (a Automation) WithRun(at time.Time) Automation {
	out := a.Clone()
	at = at.UTC()
	out.LastRun = &at
	out.RunCount++
	return out
}
