package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags for automations",
	Long:  "Manage tags for automations: add, remove, list",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <name|id> <tag>",
	Short: "Add a tag to an automation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag := strings.TrimSpace(args[1])
		if tag == "" {
			return fmt.Errorf("tag cannot be empty")
		}

		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		a, err := svc.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if a.HasTag(tag) {
			fmt.Fprintf(cmd.OutOrStdout(), "'%s' already has tag '%s'\n", a.Name, tag)
			return nil
		}
		a.Tags = append(a.Tags, tag)
		if err := svc.Update(cmd.Context(), a); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added tag '%s' to '%s'\n", tag, a.Name)
		return nil
	},
}

var tagRemoveCmd = &cobra.Command{
	Use:   "remove <name|id> <tag>",
	Short: "Remove a tag from an automation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag := strings.TrimSpace(args[1])

		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		a, err := svc.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		before := len(a.Tags)
		a.Tags = slices.DeleteFunc(a.Tags, func(t string) bool { return strings.EqualFold(t, tag) })
		if len(a.Tags) == before {
			return fmt.Errorf("'%s' has no tag '%s'", a.Name, tag)
		}
		if err := svc.Update(cmd.Context(), a); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed tag '%s' from '%s'\n", tag, a.Name)
		return nil
	},
}

var tagListCmd = &cobra.Command{
	Use:   "list <name|id>",
	Short: "List tags for an automation",
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
		for _, t := range a.Tags {
			fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", t)
		}
		return nil
	},
}

func init() {
	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagRemoveCmd)
	tagCmd.AddCommand(tagListCmd)
	rootCmd.AddCommand(tagCmd)
}
