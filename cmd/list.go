package cmd

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/VoxDroid/devflow/internal/models"
	"github.com/VoxDroid/devflow/internal/service"
	"github.com/VoxDroid/devflow/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved automations",
	Long:  "List saved automations. Example:\n  devflow list --tag prod\n  devflow list --filter dply --fuzzy",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		// check flags
		tagFilter, _ := cmd.Flags().GetString("tag")
		textFilter, _ := cmd.Flags().GetString("filter")
		fuzzyFlag, _ := cmd.Flags().GetBool("fuzzy")

		var all []models.Automation
		switch {
		case tagFilter != "":
			all, err = svc.ListByTag(cmd.Context(), tagFilter)
		case textFilter != "" && !fuzzyFlag:
			all, err = svc.Search(cmd.Context(), textFilter)
		default:
			all, err = svc.List(cmd.Context())
		}
		if err != nil {
			return err
		}
		if tagFilter != "" && textFilter != "" && !fuzzyFlag {
			all = filterText(all, textFilter)
		}
		if fuzzyFlag {
			all = service.Rank(all, textFilter)
		}

		if len(all) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no automations found")
			return nil
		}
		for _, a := range all {
			printListEntry(cmd.OutOrStdout(), a)
		}
		return nil
	},
}

func filterText(all []models.Automation, q string) []models.Automation {
	var out []models.Automation
	for _, a := range all {
		if storage.Matches(a, q) {
			out = append(out, a)
		}
	}
	return out
}

func printListEntry(w io.Writer, a models.Automation) {
	fmt.Fprintf(w, "- %s", a.Name)
	if a.Description != "" {
		fmt.Fprintf(w, ": %s", a.Description)
	}
	fmt.Fprintf(w, " (%d commands, %d parameters, %s)\n", len(a.Commands), len(a.Parameters), lastRunText(a))
}

func lastRunText(a models.Automation) string {
	if a.LastRun == nil {
		return "never run"
	}
	return fmt.Sprintf("last run %s, %s total", humanize.Time(*a.LastRun), humanize.Comma(int64(a.RunCount)))
}

func init() {
	listCmd.Flags().String("tag", "", "Filter by tag name")
	listCmd.Flags().String("filter", "", "Filter by text search")
	listCmd.Flags().Bool("fuzzy", false, "Enable fuzzy matching for text filter")
	rootCmd.AddCommand(listCmd)
}
