package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/devflow/internal/config"
	"github.com/VoxDroid/devflow/internal/version"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show devflow configuration and store status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := cmd.OutOrStdout()
		dataDir, err := config.DataDir()
		if err != nil {
			return err
		}
		storePath, err := settings.StorePath()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "devflow %s status:\n", version.Version)
		fmt.Fprintf(w, "- Data dir: %s\n", dataDir)
		fmt.Fprintf(w, "- Backend: %s\n", settings.Backend)
		fmt.Fprintf(w, "- Store: %s\n", storePath)
		shell := settings.Shell
		if shell == "" {
			shell = "default"
		}
		fmt.Fprintf(w, "- Shell: %s\n", shell)
		fmt.Fprintf(w, "- Kill grace: %s\n", settings.KillGrace)

		svc, closeStore, err := openService()
		if err != nil {
			fmt.Fprintf(w, "- Automations: unavailable (%v)\n", err)
			return nil
		}
		defer closeStore()
		all, err := svc.List(cmd.Context())
		if err != nil {
			fmt.Fprintf(w, "- Automations: unavailable (%v)\n", err)
			return nil
		}
		runs := 0
		for _, a := range all {
			runs += a.RunCount
		}
		fmt.Fprintf(w, "- Automations: %d (%d runs recorded)\n", len(all), runs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
