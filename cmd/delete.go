package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/devflow/internal/utils"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <name|id>",
	Short: "Delete an automation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		a, err := svc.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !yes {
			if !interactiveFunc() {
				return fmt.Errorf("refusing to delete '%s' without confirmation (use --yes)", a.Name)
			}
			if !utils.Confirm(fmt.Sprintf("Delete '%s' permanently?", a.Name)) {
				fmt.Fprintln(cmd.OutOrStdout(), "aborted")
				return nil
			}
		}
		if err := svc.Delete(cmd.Context(), a.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted '%s'\n", a.Name)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "Delete without asking for confirmation")
	rootCmd.AddCommand(deleteCmd)
}
