package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/VoxDroid/devflow/internal/executor"
	"github.com/VoxDroid/devflow/internal/models"
	"github.com/VoxDroid/devflow/internal/tui/sanitize"
)

// wrapText word-wraps s to lines of at most width runes.
func wrapText(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	out := []string{}
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			if utf8.RuneCountInString(cur)+1+utf8.RuneCountInString(w) > width {
				out = append(out, cur)
				cur = w
			} else {
				cur = cur + " " + w
			}
		}
		out = append(out, cur)
	}
	return out
}

// renderTableInline renders label in a fixed column and wraps value beside it.
func renderTableInline(label, value string, labelW, valueW int) string {
	padded := label
	if n := utf8.RuneCountInString(padded); n < labelW {
		padded += strings.Repeat(" ", labelW-n)
	}
	var b strings.Builder
	for i, ln := range wrapText(value, valueW) {
		if i == 0 {
			b.WriteString(padded + " " + ln + "\n")
			continue
		}
		b.WriteString(strings.Repeat(" ", labelW) + " " + ln + "\n")
	}
	return b.String()
}

// formatDetails renders the preview pane for a.
func formatDetails(a models.Automation, width int) string {
	const labelW = 12
	valueW := width - labelW - 1
	if valueW < 10 {
		valueW = 10
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(sanitize.Line(a.Name)) + "\n\n")
	if a.Description != "" {
		b.WriteString(renderTableInline("Description:", sanitize.Line(a.Description), labelW, valueW))
	}
	if len(a.Tags) > 0 {
		b.WriteString(renderTableInline("Tags:", strings.Join(a.Tags, ", "), labelW, valueW))
	}
	last := "never"
	if a.LastRun != nil {
		last = fmt.Sprintf("%s (%s runs)", humanize.Time(*a.LastRun), humanize.Comma(int64(a.RunCount)))
	}
	b.WriteString(renderTableInline("Last run:", last, labelW, valueW))

	if len(a.Parameters) > 0 {
		b.WriteString("\nParameters:\n")
		for _, p := range a.Parameters {
			line := fmt.Sprintf("{{%s}} %s", p.Name, p.Type)
			switch {
			case p.DefaultValue != nil && p.Type != models.Password:
				line += fmt.Sprintf(" = %q", *p.DefaultValue)
			case p.Required && p.DefaultValue == nil:
				line += " (required)"
			}
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\nCommands:\n")
	for i, c := range a.Commands {
		prefix := fmt.Sprintf("%d)", i+1)
		meta := fmt.Sprintf("[%s, %ds]", c.Policy(), int(c.TimeoutDuration().Seconds()))
		b.WriteString(renderTableInline(prefix, sanitize.Line(c.Command)+" "+dimStyle.Render(meta), 4, width-5))
	}
	if len(a.Commands) == 0 {
		b.WriteString("  (none)\n")
	}
	return b.String()
}

// itemDescription is the second line of a list entry.
func itemDescription(a models.Automation) string {
	parts := []string{fmt.Sprintf("%d commands", len(a.Commands))}
	if d := sanitize.Line(a.Description); d != "" {
		parts = append([]string{d}, parts...)
	}
	if a.LastRun != nil {
		parts = append(parts, "ran "+humanize.Time(*a.LastRun))
	}
	return strings.Join(parts, " · ")
}

// eventLines converts one executor event to lines for the run pane.
func eventLines(ev executor.Event) []string {
	switch ev.Kind {
	case executor.AutomationStarted:
		return []string{titleStyle.Render("Running " + sanitize.Line(ev.Automation.Name)), ""}
	case executor.CommandStarted:
		return []string{dimStyle.Render("$ " + sanitize.Line(ev.Command))}
	case executor.CommandFinished:
		mark := okMark
		if !ev.Result.Success {
			mark = failMark
		}
		out := []string{fmt.Sprintf("%s %s (exit code: %d)", mark, sanitize.Line(ev.Command), ev.Result.ExitCode)}
		if s := sanitize.Output(ev.Result.Stdout); s != "" {
			out = append(out, s)
		}
		if s := sanitize.Output(ev.Result.Stderr); s != "" {
			out = append(out, errStyle.Render("Error: ")+s)
		}
		return out
	case executor.AutomationHalted:
		return []string{errStyle.Render(fmt.Sprintf("Stopped at command %d", ev.Index+1))}
	}
	return nil
}
