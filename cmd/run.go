package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/VoxDroid/devflow/internal/executor"
	"github.com/VoxDroid/devflow/internal/models"
	"github.com/VoxDroid/devflow/internal/security"
	"github.com/VoxDroid/devflow/internal/utils"
)

// errRunFailed marks a run that halted, was cancelled, or left a failed
// command behind. The per-command report has already been printed.
var errRunFailed = errors.New("automation run failed")

// promptFunc and secretFunc collect missing parameter values. Tests replace them.
var (
	promptFunc      = utils.Prompt
	secretFunc      = utils.PromptSecret
	interactiveFunc = utils.IsInteractive
)

var runCmd = &cobra.Command{
	Use:   "run <name|id>",
	Short: "Run an automation",
	Long: "Run an automation by name or id. Parameters are passed with -p key=value\n" +
		"(repeatable) or --params \"k=v,k2=v2\"; missing required values are prompted for.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dry, _ := cmd.Flags().GetBool("dry-run")
		confirmFlag, _ := cmd.Flags().GetBool("confirm")
		force, _ := cmd.Flags().GetBool("force")
		workdir, _ := cmd.Flags().GetString("workdir")
		jsonOut, _ := cmd.Flags().GetBool("json")
		logRun, _ := cmd.Flags().GetBool("log-run")
		pairs, _ := cmd.Flags().GetStringArray("param")
		paramList, _ := cmd.Flags().GetString("params")
		envFlag, _ := cmd.Flags().GetString("env")

		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := svc.Resolve(ctx, args[0])
		if err != nil {
			return err
		}

		values, err := collectParams(pairs, paramList)
		if err != nil {
			return err
		}
		if err := fillParameters(cmd.OutOrStdout(), a, values); err != nil {
			return err
		}
		envOverrides, err := parseEnvAssignments(envFlag)
		if err != nil {
			return err
		}

		if !force {
			if err := security.CheckAutomation(a.SubstituteParameters(values)); err != nil {
				return fmt.Errorf("refusing to run '%s': %w (use --force to override)", a.Name, err)
			}
		}
		if confirmFlag {
			if !utils.Confirm(fmt.Sprintf("Run '%s' now?", a.Name)) {
				fmt.Fprintln(cmd.OutOrStdout(), "aborted")
				return nil
			}
		}

		if workdir == "" {
			workdir = settings.WorkDir
		}
		opts := []executor.Option{
			executor.WithLogger(slog.Default()),
			executor.WithRunOptions(executor.RunOptions{Dir: workdir, Env: envOverrides}),
		}
		if !jsonOut {
			opts = append(opts, executor.WithObserver(&printObserver{w: cmd.OutOrStdout()}))
		}
		if logRun {
			opts = append(opts, executor.WithObserver(executor.LogObserver{Logger: slog.Default()}))
		}
		ex := executor.NewExecutor(execFactory(settings.Shell, dry, settings.KillGrace), opts...)

		rep, err := ex.Execute(ctx, a, values)
		if err != nil {
			return err
		}
		if !dry {
			// the run context may already be cancelled
			if _, err := svc.RecordRun(context.WithoutCancel(ctx), a.ID, time.Now()); err != nil {
				slog.Warn("recording run failed", "automation", a.Name, "err", err)
			}
		}

		if jsonOut {
			if err := writeJSONReport(cmd.OutOrStdout(), rep); err != nil {
				return err
			}
		} else {
			printSummary(cmd.OutOrStdout(), rep)
		}
		if !rep.Succeeded() {
			if halt := rep.Err(); halt != nil {
				return fmt.Errorf("%w: %w", errRunFailed, halt)
			}
			return errRunFailed
		}
		return nil
	},
}

// collectParams merges repeated -p pairs with the comma separated --params list.
func collectParams(pairs []string, list string) (map[string]string, error) {
	all := append([]string(nil), pairs...)
	for _, p := range strings.Split(list, ",") {
		if strings.TrimSpace(p) != "" {
			all = append(all, p)
		}
	}
	return models.ParseParamPairs(all)
}

// parseEnvAssignments parses shell-style "K=V K2='with space'" assignments.
func parseEnvAssignments(s string) (map[string]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	words, err := shellquote.Split(s)
	if err != nil {
		return nil, fmt.Errorf("parse --env: %w", err)
	}
	env, err := models.ParseParamPairs(words)
	if err != nil {
		return nil, fmt.Errorf("parse --env: %w", err)
	}
	return env, nil
}

// fillParameters validates supplied values and prompts for required
// parameters that have neither a value nor a default.
func fillParameters(w io.Writer, a models.Automation, values map[string]string) error {
	for name, v := range values {
		if p, ok := a.Parameter(name); ok {
			if err := p.Validate(v); err != nil {
				return err
			}
		}
	}
	missing := a.MissingParameters(values)
	if len(missing) == 0 {
		return nil
	}
	if !interactiveFunc() {
		return a.CheckParameters(values)
	}
	for _, name := range missing {
		p, _ := a.Parameter(name)
		v, err := promptParameter(w, p)
		if err != nil {
			return err
		}
		values[name] = v
	}
	return nil
}

func promptParameter(w io.Writer, p models.Parameter) (string, error) {
	label := p.Name
	if p.Description != "" {
		label = fmt.Sprintf("%s (%s)", p.Name, p.Description)
	}
	if p.Type == models.Choice && len(p.Choices) > 0 {
		label = fmt.Sprintf("%s [%s]", label, strings.Join(p.Choices, "/"))
	}
	for attempt := 0; attempt < 3; attempt++ {
		var v string
		if p.Type == models.Password {
			s, err := secretFunc(label)
			if err != nil {
				return "", err
			}
			v = s
		} else {
			v = promptFunc(label)
		}
		if v == "" {
			fmt.Fprintf(w, "%s is required\n", p.Name)
			continue
		}
		if err := p.Validate(v); err != nil {
			fmt.Fprintln(w, err)
			continue
		}
		return v, nil
	}
	return "", fmt.Errorf("no valid value for parameter %q", p.Name)
}

// printObserver streams per-command status lines while the run progresses.
type printObserver struct {
	executor.NopObserver
	w io.Writer
}

func (o *printObserver) OnAutomationStart(a models.Automation) {
	fmt.Fprintf(o.w, "Running '%s' (%d commands)\n", a.Name, len(a.Commands))
}

func (o *printObserver) OnCommandComplete(command string, r models.ExecutionResult) {
	mark := okMark
	if !r.Success {
		mark = failMark
	}
	fmt.Fprintf(o.w, "%s %s (exit code: %d)\n", mark, command, r.ExitCode)
	if out := strings.TrimRight(r.Stdout, "\n"); out != "" {
		fmt.Fprintln(o.w, out)
	}
	if !r.Success {
		if msg := strings.TrimRight(r.Stderr, "\n"); msg != "" {
			fmt.Fprintln(o.w, "Error:", msg)
		}
	}
}

func (o *printObserver) OnAutomationStopped(_ models.Automation, index int, _ models.ExecutionResult) {
	fmt.Fprintf(o.w, "Stopped at command %d (on_error: stop)\n", index+1)
}

func printSummary(w io.Writer, rep executor.Report) {
	ok := 0
	for _, r := range rep.Results {
		if r.Success {
			ok++
		}
	}
	line := fmt.Sprintf("%d/%d attempts succeeded in %s", ok, len(rep.Results), rep.Duration.Round(time.Millisecond))
	if rep.Cancelled {
		line += " (cancelled)"
	}
	fmt.Fprintln(w, dimStyle.Render(line))
}

type jsonReport struct {
	ID        string                   `json:"id"`
	Name      string                   `json:"name"`
	Success   bool                     `json:"success"`
	Halted    bool                     `json:"halted"`
	HaltIndex int                      `json:"halt_index"`
	Cancelled bool                     `json:"cancelled"`
	Duration  float64                  `json:"duration"`
	Results   []models.ExecutionResult `json:"results"`
}

func writeJSONReport(w io.Writer, rep executor.Report) error {
	results := rep.Results
	if results == nil {
		results = []models.ExecutionResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		ID:        rep.Automation.ID,
		Name:      rep.Automation.Name,
		Success:   rep.Succeeded(),
		Halted:    rep.Halted,
		HaltIndex: rep.HaltIndex,
		Cancelled: rep.Cancelled,
		Duration:  rep.Duration.Seconds(),
		Results:   results,
	})
}

func init() {
	runCmd.Flags().StringArrayP("param", "p", nil, "Parameter value as key=value (repeatable)")
	runCmd.Flags().String("params", "", "Comma separated parameter values, e.g. \"name=bob,env=dev\"")
	runCmd.Flags().String("env", "", "Extra environment for every command, e.g. \"CI=1 TOKEN='a b'\"")
	runCmd.Flags().String("workdir", "", "Default working directory for commands without their own")
	runCmd.Flags().Bool("dry-run", false, "Do not actually execute commands")
	runCmd.Flags().Bool("confirm", false, "Ask for confirmation before running")
	runCmd.Flags().Bool("force", false, "Override safety checks and force execution")
	runCmd.Flags().Bool("json", false, "Print the run report as JSON instead of progress lines")
	runCmd.Flags().Bool("log-run", false, "Also log lifecycle events to stderr")
	rootCmd.AddCommand(runCmd)
}
