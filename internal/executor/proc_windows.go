//go:build windows

package executor

import (
	"os/exec"
	"time"
)

// configureProcess keeps the default Kill-on-cancel behaviour; Windows has
// no process groups reachable through os/exec.
func configureProcess(cmd *exec.Cmd, grace time.Duration) {
	cmd.WaitDelay = grace
}

func reapGroup(_ *exec.Cmd) {}
