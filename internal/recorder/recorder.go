// Package recorder turns typed or piped lines into automation commands.
package recorder

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/VoxDroid/devflow/internal/models"
)

// sentinels end a recording when typed alone on a line.
var sentinels = map[string]bool{":end": true, ":save": true, ":quit": true}

// eofMarkers are treated as end of input wherever they appear: a raw Ctrl+Z
// byte and its caret spelling, as some Windows consoles deliver them.
var eofMarkers = []string{"\x1A", "^Z"}

// RecordCommands reads lines from r until EOF, a sentinel line or an EOF
// marker, and returns the non-empty, non-comment lines. Lines starting with
// '#' are comments.
func RecordCommands(r io.Reader) ([]string, error) {
	s := bufio.NewScanner(r)
	var out []string
	for s.Scan() {
		line := s.Text()
		stop := false
		for _, m := range eofMarkers {
			if i := strings.Index(line, m); i >= 0 {
				line = line[:i]
				stop = true
			}
		}
		line = strings.TrimSpace(line)
		if sentinels[line] {
			break
		}
		if line != "" && !strings.HasPrefix(line, "#") {
			out = append(out, line)
		}
		if stop {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("read commands: %w", err)
	}
	return out, nil
}

// ToCommands builds one Command per line, copying policy, timeout, working
// directory and environment from tmpl.
func ToCommands(lines []string, tmpl models.Command) []models.Command {
	out := make([]models.Command, 0, len(lines))
	for _, l := range lines {
		c := tmpl.Clone()
		c.Command = l
		out = append(out, c)
	}
	return out
}

// Record reads lines from r and converts them with ToCommands.
func Record(r io.Reader, tmpl models.Command) ([]models.Command, error) {
	lines, err := RecordCommands(r)
	if err != nil {
		return nil, err
	}
	return ToCommands(lines, tmpl), nil
}
