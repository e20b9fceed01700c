package cmd

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/devflow/internal/executor"
	"github.com/VoxDroid/devflow/internal/models"
	"github.com/VoxDroid/devflow/internal/recorder"
	"github.com/VoxDroid/devflow/internal/utils"
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a named automation",
	Long: `Create a named automation. Examples:
  devflow create hello -d 'say hi' -c 'echo Hello, {{name}}!' --param name=World
  devflow create deploy --tag prod --on-error stop -c 'make build' -c 'make deploy'
  printf 'make lint\nmake test\n' | devflow create ci --from-stdin

Parameters are declared as name[:type][=default]; a trailing '?' on the name
makes it optional and choice types list their options as choice(a|b|c).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		desc, _ := cmd.Flags().GetString("description")
		lines, _ := cmd.Flags().GetStringArray("command")
		tags, _ := cmd.Flags().GetStringSlice("tag")
		paramSpecs, _ := cmd.Flags().GetStringArray("param")
		fromStdin, _ := cmd.Flags().GetBool("from-stdin")
		edit, _ := cmd.Flags().GetBool("edit")

		// A quoted command split by the shell arrives as extra positionals;
		// join them back into one command.
		if len(args) > 1 {
			joined := strings.Join(args[1:], " ")
			cmd.PrintErrf("warning: detected unquoted command tokens; using joined command: %q\n", joined)
			lines = append(lines, joined)
		}

		tmpl, err := commandTemplate(cmd)
		if err != nil {
			return err
		}
		params, err := parseParamSpecs(paramSpecs)
		if err != nil {
			return err
		}

		commands := recorder.ToCommands(lines, tmpl)
		switch {
		case fromStdin:
			recorded, err := recorder.Record(cmd.InOrStdin(), tmpl)
			if err != nil {
				return err
			}
			commands = append(commands, recorded...)
		case edit:
			text, err := utils.EditText("# One command per line. Lines starting with # are ignored.\n")
			if err != nil {
				return err
			}
			recorded, err := recorder.Record(strings.NewReader(text), tmpl)
			if err != nil {
				return err
			}
			commands = append(commands, recorded...)
		}
		if len(commands) == 0 {
			return fmt.Errorf("no commands given: use -c, --from-stdin or --edit")
		}
		sanitizeCommands(commands)

		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		if existing, err := svc.FindByName(cmd.Context(), name); err == nil {
			return fmt.Errorf("automation '%s' already exists (id %s)", existing.Name, existing.ID)
		}
		a, err := svc.Create(cmd.Context(), name, desc, commands, params, tags)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created '%s' (%s) with %d commands\n", a.Name, a.ID, len(a.Commands))
		for _, ph := range a.Placeholders() {
			if _, ok := a.Parameter(ph); !ok {
				cmd.PrintErrf("warning: placeholder {{%s}} has no declared parameter\n", ph)
			}
		}
		return nil
	},
}

// commandTemplate reads the per-command flags shared by create, record and edit.
func commandTemplate(cmd *cobra.Command) (models.Command, error) {
	tmpl := models.NewCommand("")
	if f := cmd.Flags().Lookup("on-error"); f != nil {
		policy, err := models.ParseErrorAction(f.Value.String())
		if err != nil {
			return models.Command{}, err
		}
		tmpl.OnError = policy
	}
	if f := cmd.Flags().Lookup("timeout"); f != nil {
		timeout, _ := cmd.Flags().GetInt("timeout")
		if timeout <= 0 {
			return models.Command{}, fmt.Errorf("timeout must be a positive number of seconds")
		}
		tmpl.Timeout = timeout
	}
	if f := cmd.Flags().Lookup("workdir"); f != nil {
		tmpl.WorkingDirectory = f.Value.String()
	}
	if f := cmd.Flags().Lookup("env"); f != nil {
		env, err := parseEnvAssignments(f.Value.String())
		if err != nil {
			return models.Command{}, err
		}
		tmpl.EnvironmentVars = env
	}
	return tmpl, nil
}

// parseParamSpecs parses name[?][:type][=default] declarations.
func parseParamSpecs(specs []string) ([]models.Parameter, error) {
	out := make([]models.Parameter, 0, len(specs))
	seen := map[string]bool{}
	for _, spec := range specs {
		p, err := parseParamSpec(spec)
		if err != nil {
			return nil, err
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("parameter %q declared twice", p.Name)
		}
		seen[p.Name] = true
		out = append(out, p)
	}
	return out, nil
}

func parseParamSpec(spec string) (models.Parameter, error) {
	head, def, hasDefault := strings.Cut(spec, "=")
	name, typ, _ := strings.Cut(strings.TrimSpace(head), ":")
	p := models.Parameter{Name: strings.TrimSpace(name), Type: models.Text, Required: true}
	if strings.HasSuffix(p.Name, "?") {
		p.Name = strings.TrimSuffix(p.Name, "?")
		p.Required = false
	}
	if !slices.Equal(models.FindParams(models.Placeholder(p.Name)), []string{p.Name}) {
		return models.Parameter{}, fmt.Errorf("invalid parameter name in %q", spec)
	}
	if typ = strings.TrimSpace(typ); typ != "" {
		if open := strings.Index(typ, "("); open >= 0 && strings.HasSuffix(typ, ")") {
			p.Choices = strings.Split(typ[open+1:len(typ)-1], "|")
			typ = typ[:open]
		}
		t, err := models.ParseParameterType(typ)
		if err != nil {
			return models.Parameter{}, err
		}
		p.Type = t
	}
	if hasDefault {
		d := def
		p.DefaultValue = &d
		if err := p.Validate(d); err != nil {
			return models.Parameter{}, err
		}
	}
	return p, nil
}

func addCommandTemplateFlags(c *cobra.Command) {
	c.Flags().String("on-error", string(models.Stop), "Policy when a command fails: stop, skip, retry or continue")
	c.Flags().Int("timeout", int(models.DefaultTimeout/time.Second), "Per-command timeout in seconds")
	c.Flags().String("workdir", "", "Working directory for the commands")
	c.Flags().String("env", "", "Environment for the commands, e.g. \"CI=1 TOKEN='a b'\"")
}

func init() {
	createCmd.Flags().StringP("description", "d", "", "Description for the automation")
	createCmd.Flags().StringArrayP("command", "c", []string{}, "Command to include (repeatable)")
	createCmd.Flags().StringSlice("tag", nil, "Tag for the automation (repeatable or comma separated)")
	createCmd.Flags().StringArray("param", nil, "Parameter declaration name[?][:type][=default] (repeatable)")
	createCmd.Flags().Bool("from-stdin", false, "Read commands from stdin, one per line")
	createCmd.Flags().Bool("edit", false, "Write the commands in $EDITOR")
	addCommandTemplateFlags(createCmd)
	rootCmd.AddCommand(createCmd)
}

// sanitizeCommands normalizes pasted smart quotes and invisible spaces in
// place before the commands are stored.
func sanitizeCommands(cmds []models.Command) {
	for i := range cmds {
		cmds[i].Command = executor.Sanitize(cmds[i].Command)
	}
}
