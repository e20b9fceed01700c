package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/devflow/internal/exporter"
	"github.com/VoxDroid/devflow/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import automations from a bundle",
	Long: `Import automations from a JSON, YAML or SQLite bundle. An automation that
matches a stored one by id or name is skipped by default; --on-conflict
overwrite replaces the stored record and rename stores it as <name>-import-N.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := args[0]
		formatFlag, _ := cmd.Flags().GetString("format")
		policyFlag, _ := cmd.Flags().GetString("on-conflict")

		policy, err := importer.ParsePolicy(policyFlag)
		if err != nil {
			return err
		}
		format := exporter.FormatFromPath(src)
		if formatFlag != "" {
			if format, err = exporter.ParseFormat(formatFlag); err != nil {
				return err
			}
		}

		incoming, err := importer.ReadFile(cmd.Context(), src, format)
		if err != nil {
			return err
		}

		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		sum, err := importer.Import(cmd.Context(), svc, incoming, policy)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, n := range sum.Added {
			fmt.Fprintf(w, "imported '%s'\n", n)
		}
		for _, n := range sum.Overwritten {
			fmt.Fprintf(w, "overwrote '%s'\n", n)
		}
		for _, r := range sum.Renamed {
			fmt.Fprintf(w, "imported '%s' as '%s'\n", r.From, r.To)
		}
		for _, n := range sum.Skipped {
			fmt.Fprintf(w, "skipped '%s' (already exists)\n", n)
		}
		fmt.Fprintf(w, "%d imported, %d skipped\n", len(sum.Added)+len(sum.Overwritten)+len(sum.Renamed), len(sum.Skipped))
		return nil
	},
}

func init() {
	importCmd.Flags().String("format", "", "Bundle format: json, yaml or sqlite (default from extension)")
	importCmd.Flags().String("on-conflict", string(importer.Skip), "Conflict policy: skip, overwrite or rename")
	rootCmd.AddCommand(importCmd)
}
