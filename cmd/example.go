package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/devflow/internal/models"
	"github.com/VoxDroid/devflow/internal/service"
)

const exampleName = "hello-world"

// exampleAutomation is the starter automation written by create-example.
func exampleAutomation() (string, string, []models.Command, []models.Parameter, []string) {
	def := "World"
	return exampleName,
		"A simple hello world example",
		[]models.Command{
			models.NewCommand("echo Hello, {{name}}!"),
			models.NewCommand("echo 'Current Directory:'"),
			models.NewCommand("pwd"),
		},
		[]models.Parameter{{
			Name:         "name",
			Type:         models.Text,
			Description:  "Name to greet",
			DefaultValue: &def,
			Required:     false,
		}},
		[]string{"example", "demo"}
}

var createExampleCmd = &cobra.Command{
	Use:   "create-example",
	Short: "Create the hello-world example automation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		if existing, err := svc.FindByName(cmd.Context(), exampleName); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "example '%s' already exists (id %s)\n", existing.Name, existing.ID)
			return nil
		} else if !errors.Is(err, service.ErrNotFound) {
			return err
		}

		name, desc, commands, params, tags := exampleAutomation()
		a, err := svc.Create(cmd.Context(), name, desc, commands, params, tags)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created example '%s' (%s)\n", a.Name, a.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "try: devflow run %s -p name=devflow\n", a.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createExampleCmd)
}
