// Package executor runs automations: a Runner executes single shell
// commands and an Executor drives a whole automation through it.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/VoxDroid/devflow/internal/models"
)

// DefaultKillGrace is how long a timed-out process gets between SIGTERM and SIGKILL.
const DefaultKillGrace = 2 * time.Second

// RunOptions carries caller-level settings applied to every command.
type RunOptions struct {
	// Dir is used when a command has no working directory of its own.
	Dir string
	// Env overrides both the inherited environment and the command's own variables.
	Env map[string]string
}

// Runner is an interface for executing commands. It allows tests to inject
// fake implementations without running real shell commands. Run always
// returns a result; failures are reported through it, never as a panic.
type Runner interface {
	Run(ctx context.Context, cmd models.Command, opts RunOptions) models.ExecutionResult
}

// ShellRunner runs commands through an OS-appropriate shell.
type ShellRunner struct {
	DryRun    bool
	Shell     string // optional override (e.g., "pwsh", "bash")
	KillGrace time.Duration
}

// New returns a Runner backed by the real shell implementation.
func New(shell string, dry bool) *ShellRunner {
	return &ShellRunner{Shell: shell, DryRun: dry, KillGrace: DefaultKillGrace}
}

func failed(line, msg string, start time.Time) models.ExecutionResult {
	return models.ExecutionResult{
		Success:       false,
		ExitCode:      -1,
		Stderr:        msg,
		ExecutionTime: time.Since(start),
		Command:       line,
	}
}

// Run executes cmd and classifies the outcome. The command's timeout is
// enforced on top of ctx; cancelling ctx terminates the process as well.
func (s *ShellRunner) Run(ctx context.Context, c models.Command, opts RunOptions) (res models.ExecutionResult) {
	start := time.Now()
	line := c.Command
	defer func() {
		if r := recover(); r != nil {
			res = failed(line, fmt.Sprintf("execution error: %v", r), start)
		}
	}()

	if err := ValidateCommand(line); err != nil {
		return failed(line, fmt.Sprintf("execution error: %v", err), start)
	}
	if s.DryRun {
		return models.ExecutionResult{
			Success:       true,
			Stdout:        "dry-run: " + line + "\n",
			ExecutionTime: time.Since(start),
			Command:       line,
		}
	}

	dir, err := resolveDir(c.WorkingDirectory, opts.Dir)
	if err != nil {
		return failed(line, fmt.Sprintf("execution error: working directory: %v", err), start)
	}

	timeout := c.TimeoutDuration()
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	shell, args := shellInvocation(line, s.Shell)
	cmd := exec.CommandContext(runCtx, shell, args...)
	cmd.Dir = dir
	cmd.Env = mergeEnv(os.Environ(), c.EnvironmentVars, opts.Env)
	var bout, berr bytes.Buffer
	cmd.Stdout = &bout
	cmd.Stderr = &berr

	grace := s.KillGrace
	if grace <= 0 {
		grace = DefaultKillGrace
	}
	configureProcess(cmd, grace)

	runErr := cmd.Run()
	elapsed := time.Since(start)

	if runCtx.Err() != nil && cmd.Process != nil {
		reapGroup(cmd)
	}

	switch {
	case runErr == nil:
	case ctx.Err() != nil:
		return models.ExecutionResult{
			ExitCode:      -1,
			Stderr:        fmt.Sprintf("command cancelled: %v", ctx.Err()),
			ExecutionTime: elapsed,
			Command:       line,
		}
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return models.ExecutionResult{
			ExitCode:      -1,
			Stderr:        fmt.Sprintf("command timed out after %v", timeout),
			ExecutionTime: elapsed,
			Command:       line,
		}
	}

	res = models.ExecutionResult{
		Stdout:        decodeOutput(bout.Bytes()),
		Stderr:        decodeOutput(berr.Bytes()),
		ExecutionTime: elapsed,
		Command:       line,
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return failed(line, fmt.Sprintf("execution error: %v", runErr), start)
		}
		// ExitCode is -1 when the process was killed by a signal
		res.ExitCode = exitErr.ExitCode()
		return res
	}
	res.Success = true
	return res
}
