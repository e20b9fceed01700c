// Package sanitize cleans captured command output before it is drawn in the
// TUI. Colour (SGR) sequences survive; sequences that move the cursor, switch
// screens or set window titles do not.
package sanitize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	oscRe = regexp.MustCompile(`\x1b\][^\x07\x1b]*(\x07|\x1b\\)`)
	csiRe = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
	// any remaining C0 control except tab and newline
	ctlRe = regexp.MustCompile(`[\x00-\x08\x0b-\x1a\x1c-\x1f\x7f]`)
)

// Output prepares multi-line command output for a viewport. Line endings are
// normalised to LF, OSC sequences are dropped, SGR colour codes are kept and
// horizontal cursor moves become spaces so column layouts stay readable.
func Output(in string) string {
	out := strings.ReplaceAll(in, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\r", "\n")
	out = oscRe.ReplaceAllString(out, "")
	out = csiRe.ReplaceAllStringFunc(out, rewriteCSI)
	out = ctlRe.ReplaceAllString(out, "")
	return strings.TrimRight(out, "\n")
}

// Line reduces s to a single plain line: every escape sequence is removed
// and newlines collapse to spaces. Used for list items and status text.
func Line(s string) string {
	out := oscRe.ReplaceAllString(s, "")
	out = csiRe.ReplaceAllString(out, "")
	out = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(out)
	out = ctlRe.ReplaceAllString(out, "")
	return strings.Join(strings.Fields(out), " ")
}

func rewriteCSI(seq string) string {
	switch seq[len(seq)-1] {
	case 'm':
		return seq
	case 'C':
		return strings.Repeat(" ", csiArg(seq, 1))
	case 'G':
		// absolute column; the current column is unknown here
		return "  "
	default:
		return ""
	}
}

// csiArg returns the first numeric argument of a CSI sequence, or def.
func csiArg(seq string, def int) int {
	body := strings.TrimLeft(seq[2:len(seq)-1], "?")
	if i := strings.IndexByte(body, ';'); i >= 0 {
		body = body[:i]
	}
	if n, err := strconv.Atoi(body); err == nil && n > 0 {
		return n
	}
	return def
}
