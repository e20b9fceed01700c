package cmd

import (
	"github.com/spf13/cobra"

	"github.com/VoxDroid/devflow/cmd/tui/ui"
	"github.com/VoxDroid/devflow/internal/executor"
	modelpkg "github.com/VoxDroid/devflow/internal/tui/model"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive terminal UI",
	Long: `Browse automations and run them with live output. Automations that need
parameter values must be run with 'devflow run'.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		runner := execFactory(settings.Shell, false, settings.KillGrace)
		uiModel := modelpkg.New(svc, runner, executor.RunOptions{Dir: settings.WorkDir})
		if err := uiModel.RefreshList(cmd.Context()); err != nil {
			return err
		}
		_, err = ui.NewProgram(uiModel).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
