package executor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/VoxDroid/devflow/internal/models"
)

// ErrAlreadyRunning is returned when Execute is called while another run is
// in progress on the same Executor.
var ErrAlreadyRunning = errors.New("another automation is already running")

// ConflictError names the automation that holds the executor.
type ConflictError struct {
	Running string
}

func (e *ConflictError) Error() string {
	if e.Running == "" {
		return ErrAlreadyRunning.Error()
	}
	return fmt.Sprintf("%s: %s", ErrAlreadyRunning.Error(), e.Running)
}

func (e *ConflictError) Unwrap() error { return ErrAlreadyRunning }

// ExecutionError describes a command that did not succeed.
type ExecutionError struct {
	Command  string
	ExitCode int
	Message  string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("command %q failed (exit code %d): %s", e.Command, e.ExitCode, e.Message)
}

// ResultError converts a failed result into an *ExecutionError. It returns
// nil for successful results.
func ResultError(r models.ExecutionResult) error {
	if r.Success {
		return nil
	}
	msg := strings.TrimSpace(r.Stderr)
	if msg == "" {
		msg = fmt.Sprintf("exit status %d", r.ExitCode)
	}
	return &ExecutionError{Command: r.Command, ExitCode: r.ExitCode, Message: msg}
}
