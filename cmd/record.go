package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/devflow/internal/recorder"
	"github.com/VoxDroid/devflow/internal/service"
)

var recordCmd = &cobra.Command{
	Use:   "record <name>",
	Short: "Record commands interactively into a new automation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		desc, _ := cmd.Flags().GetString("description")
		tags, _ := cmd.Flags().GetStringSlice("tag")

		tmpl, err := commandTemplate(cmd)
		if err != nil {
			return err
		}

		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		// Use a single buffered reader for all interactive input so buffered data isn't lost
		rdr := bufio.NewReader(cmd.InOrStdin())

		// If the provided name already exists, reprompt for a different one
		// from the same input stream so tests can script it.
		for {
			_, err := svc.FindByName(cmd.Context(), name)
			if errors.Is(err, service.ErrNotFound) {
				break
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "name '%s' already exists; enter a new name: ", name)
			newNameRaw, err := rdr.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read new name: %w", err)
			}
			newName := strings.TrimSpace(newNameRaw)
			if newName == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "name cannot be empty")
				continue
			}
			name = newName
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Enter commands, one per line. Finish with :end or EOF (Ctrl-D on Unix, Ctrl-Z on Windows).")

		commands, err := recorder.Record(rdr, tmpl)
		if err != nil {
			return err
		}
		if len(commands) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no commands recorded; aborting")
			return nil
		}
		sanitizeCommands(commands)

		a, err := svc.Create(cmd.Context(), name, desc, commands, nil, tags)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved '%s' with %d commands\n", a.Name, len(a.Commands))
		return nil
	},
}

func init() {
	recordCmd.Flags().StringP("description", "d", "", "Description for the recorded automation")
	recordCmd.Flags().StringSlice("tag", nil, "Tag for the automation (repeatable)")
	addCommandTemplateFlags(recordCmd)
	rootCmd.AddCommand(recordCmd)
}
