package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/VoxDroid/devflow/internal/models"
)

var describeCmd = &cobra.Command{
	Use:   "describe <name|id>",
	Short: "Show details for an automation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		a, err := svc.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		describe(cmd.OutOrStdout(), a)
		return nil
	},
}

func describe(w io.Writer, a models.Automation) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "ID: %s\n", a.ID)
	if a.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", a.Description)
	}
	if len(a.Tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(a.Tags, ", "))
	}
	fmt.Fprintf(w, "Created: %s\n", a.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Runs: %s\n", lastRunText(a))

	if len(a.Parameters) > 0 {
		fmt.Fprintln(w, "Parameters:")
		for _, p := range a.Parameters {
			fmt.Fprintf(w, "  %s (%s", p.Name, p.Type)
			if p.Required {
				fmt.Fprint(w, ", required")
			}
			if p.DefaultValue != nil && p.Type != models.Password {
				fmt.Fprintf(w, ", default %q", *p.DefaultValue)
			}
			if len(p.Choices) > 0 {
				fmt.Fprintf(w, ", one of %s", strings.Join(p.Choices, "|"))
			}
			fmt.Fprint(w, ")")
			if p.Description != "" {
				fmt.Fprintf(w, " %s", p.Description)
			}
			fmt.Fprintln(w)
		}
	}
	if ph := a.Placeholders(); len(ph) > 0 {
		fmt.Fprintf(w, "Placeholders: %s\n", strings.Join(ph, ", "))
	}

	fmt.Fprintln(w, "Commands:")
	for i, c := range a.Commands {
		fmt.Fprintf(w, "%d: %s\n", i+1, c.Command)
		fmt.Fprintf(w, "   on_error=%s timeout=%ds", c.Policy(), int(c.TimeoutDuration().Seconds()))
		if c.WorkingDirectory != "" {
			fmt.Fprintf(w, " cwd=%s", shellquote.Join(c.WorkingDirectory))
		}
		if len(c.EnvironmentVars) > 0 {
			fmt.Fprintf(w, " env: %s", envString(c.EnvironmentVars))
		}
		fmt.Fprintln(w)
	}
}

// envString renders env as shell-quoted K=V words in key order.
func envString(env map[string]string) string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	words := make([]string, 0, len(keys))
	for _, k := range keys {
		words = append(words, k+"="+env[k])
	}
	return shellquote.Join(words...)
}

func init() {
	rootCmd.AddCommand(describeCmd)
}
