// Package security flags shell commands that look destructive.
package security

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/VoxDroid/devflow/internal/models"
)

// ErrUnsafe is matched by every *BlockedError.
var ErrUnsafe = errors.New("command appears destructive or unsafe")

var dangerousPatterns = []*regexp.Regexp{
	// Destructive filesystem ops
	regexp.MustCompile(`(?i)\brm\s+-(rf|fr)\s+/?$`),
	regexp.MustCompile(`(?i)\brm\s+-(rf|fr)\s+(/|~/?\s*$|\*\s*$)`),
	regexp.MustCompile(`(?i)\bmkfs(\.\w+)?\b`),
	regexp.MustCompile(`(?i)\bdd\s+if=`),
	regexp.MustCompile(`(?i)>\s*/dev/(sd|nvme|hd)\w*`),
	regexp.MustCompile(`(?i)\bchmod\s+-R\s+0?777\s+/(\s|$)`),
	// fork bombs (e.g. :(){ :|:& };:)
	regexp.MustCompile(`:\(\)\s*\{`),
	// package managers removing packages
	regexp.MustCompile(`(?i)\bapt(-get)?\s+(remove|purge)\s+`),
	regexp.MustCompile(`(?i)\byum\s+remove\s+`),
	// wipe disk
	regexp.MustCompile(`(?i)\bwipefs\b`),
	// piping a download straight into a shell
	regexp.MustCompile(`(?i)\b(curl|wget)\b[^|]*\|\s*(sudo\s+)?(ba|z)?sh\b`),
}

// BlockedError names the command that tripped a pattern.
type BlockedError struct {
	Command string
	Index   int // position within the automation, -1 for a lone command
}

func (e *BlockedError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: command %d: %q", ErrUnsafe.Error(), e.Index+1, e.Command)
	}
	return fmt.Sprintf("%s: %q", ErrUnsafe.Error(), e.Command)
}

func (e *BlockedError) Unwrap() error { return ErrUnsafe }

// CheckAllowed returns nil if the command is allowed to run, or an error
// describing why it's blocked. Checking is conservative and not exhaustive.
// A blank command is allowed; the shell runs it as a no-op.
func CheckAllowed(command string) error {
	cmd := strings.TrimSpace(command)
	for _, re := range dangerousPatterns {
		if re.MatchString(cmd) {
			return &BlockedError{Command: cmd, Index: -1}
		}
	}
	return nil
}

// CheckAutomation runs CheckAllowed over every command of a, which should
// already have its parameters substituted.
func CheckAutomation(a models.Automation) error {
	for i, c := range a.Commands {
		if err := CheckAllowed(c.Command); err != nil {
			var be *BlockedError
			if errors.As(err, &be) {
				be.Index = i
			}
			return err
		}
	}
	return nil
}
