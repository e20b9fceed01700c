package executor

import (
	"errors"
	"os/exec"
	"runtime"
	"strings"
)

// Sanitize replaces the smart quotes and invisible spaces that editors and
// chat clients paste into commands with their ASCII forms. It is applied
// when commands are saved; the Runner executes text exactly as stored.
func Sanitize(s string) string {
	return strings.NewReplacer(
		"\u2018", "'", // left single quote
		"\u2019", "'", // right single quote
		"\u201C", "\"", // left double quote
		"\u201D", "\"", // right double quote
		"\u00A0", " ", // NO-BREAK SPACE
		"\u200B", "", // zero width space
		"\u200E", "", // left-to-right mark
		"\u200F", "", // right-to-left mark
		"\x00", "",
	).Replace(s)
}

func isBadControl(r rune) bool {
	return r == 0 || (r < 32 && r != '\t' && r != '\n' && r != '\r') || r == 0x7f
}

// ValidateCommand checks for characters that will cause command execution
// to fail and returns an error describing the problem if one is found.
// Newlines are allowed since the command is handed to a shell as a script;
// a blank command is handed over too and exits 0.
func ValidateCommand(s string) error {
	if strings.IndexFunc(s, isBadControl) != -1 {
		return errors.New("invalid command: contains control characters; remove non-printable characters")
	}
	return nil
}

// shellInvocation returns the shell executable and arguments for the platform.
// Optional `override` lets callers request an alternate shell (e.g., pwsh).
func shellInvocation(command string, overrideShell string) (string, []string) {
	if overrideShell != "" {
		switch overrideShell {
		case "pwsh":
			return "pwsh", []string{"-NoProfile", "-Command", command}
		case "powershell":
			if runtime.GOOS == "windows" {
				if p, err := exec.LookPath("powershell"); err == nil {
					return p, []string{"-NoProfile", "-Command", command}
				}
				if p, err := exec.LookPath("pwsh"); err == nil {
					return p, []string{"-NoProfile", "-Command", command}
				}
				return "powershell", []string{"-NoProfile", "-Command", command}
			}
			return "pwsh", []string{"-NoProfile", "-Command", command}
		case "cmd":
			return "cmd", []string{"/C", command}
		default:
			return overrideShell, []string{"-c", command}
		}
	}

	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C", command}
	}
	return "sh", []string{"-c", command}
}
