package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/devflow/internal/executor"
	"github.com/VoxDroid/devflow/internal/models"
	"github.com/VoxDroid/devflow/internal/nameutil"
	"github.com/VoxDroid/devflow/internal/recorder"
	"github.com/VoxDroid/devflow/internal/utils"
)

var editCmd = &cobra.Command{
	Use:   "edit <name|id>",
	Short: "Edit an automation's commands or details",
	Long: `Edit an automation. With -c the command list is replaced directly; without
any change flags the commands are opened in $EDITOR. Commands that keep the
same text keep their on_error, timeout, working directory and environment.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lines, _ := cmd.Flags().GetStringArray("command")

		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		a, err := svc.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		changed := false
		if cmd.Flags().Changed("name") {
			n, _ := cmd.Flags().GetString("name")
			if a.Name, err = nameutil.Normalize(n); err != nil {
				return err
			}
			changed = true
		}
		if cmd.Flags().Changed("description") {
			a.Description, _ = cmd.Flags().GetString("description")
			changed = true
		}

		switch {
		case len(lines) > 0:
			a.Commands = mergeCommands(a.Commands, lines)
			changed = true
		case !changed:
			// Interactive: write commands to temp file and open editor
			var sb strings.Builder
			sb.WriteString("# One command per line. Lines starting with # are ignored.\n")
			for _, c := range a.Commands {
				sb.WriteString(c.Command + "\n")
			}
			text, err := utils.EditText(sb.String())
			if err != nil {
				return err
			}
			edited, err := recorder.RecordCommands(strings.NewReader(text))
			if err != nil {
				return err
			}
			if len(edited) == 0 {
				return fmt.Errorf("refusing to save '%s' without commands", a.Name)
			}
			a.Commands = mergeCommands(a.Commands, edited)
		}

		if err := svc.Update(cmd.Context(), a); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated '%s' with %d commands\n", a.Name, len(a.Commands))
		return nil
	},
}

// mergeCommands builds the new command list, reusing the settings of an
// existing command with identical text. Lines are sanitized first.
func mergeCommands(old []models.Command, lines []string) []models.Command {
	byText := map[string]models.Command{}
	for _, c := range old {
		key := executor.Sanitize(c.Command)
		if _, ok := byText[key]; !ok {
			byText[key] = c
		}
	}
	out := make([]models.Command, 0, len(lines))
	for _, l := range lines {
		l = executor.Sanitize(l)
		if c, ok := byText[l]; ok {
			c = c.Clone()
			c.Command = l
			out = append(out, c)
			continue
		}
		out = append(out, models.NewCommand(l))
	}
	return out
}

func init() {
	editCmd.Flags().StringArrayP("command", "c", []string{}, "Replace the commands (repeatable)")
	editCmd.Flags().String("name", "", "Rename the automation")
	editCmd.Flags().StringP("description", "d", "", "Replace the description")
	rootCmd.AddCommand(editCmd)
}
