package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/VoxDroid/devflow/internal/config"
	"github.com/VoxDroid/devflow/internal/executor"
	"github.com/VoxDroid/devflow/internal/logging"
	"github.com/VoxDroid/devflow/internal/service"
	"github.com/VoxDroid/devflow/internal/storage"
)

// settings is loaded from the environment before every command and then
// overridden by the persistent flags.
var settings config.Settings

// execFactory builds the Runner used by run and tui. Tests replace it.
var execFactory = func(shell string, dry bool, grace time.Duration) executor.Runner {
	r := executor.New(shell, dry)
	if grace > 0 {
		r.KillGrace = grace
	}
	return r
}

var (
	okMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("✅")
	failMark = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("❌")
	dimStyle = lipgloss.NewStyle().Faint(true)
)

var rootCmd = &cobra.Command{
	Use:           "devflow",
	Short:         "devflow runs named shell automations",
	Long:          "devflow stores named sequences of shell commands (automations) and runs them with per-command error policies",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		s, err := config.Load()
		if err != nil {
			return err
		}
		if v, _ := cmd.Flags().GetString("store"); v != "" {
			s.Store = v
		}
		if v, _ := cmd.Flags().GetString("backend"); v != "" {
			s.Backend = v
		}
		if v, _ := cmd.Flags().GetString("shell"); v != "" {
			s.Shell = v
		}
		if v, _ := cmd.Flags().GetString("log-level"); v != "" {
			s.LogLevel = v
		}
		if err := s.Validate(); err != nil {
			return err
		}
		if s.Home != "" {
			// DataDir and StorePath read the variable directly
			_ = os.Setenv(config.EnvDevflowHome, s.Home)
		}
		logger, err := logging.New(os.Stderr, s.LogLevel, s.LogFormat)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		settings = s
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "devflow: run 'devflow --help' to see available commands")
	},
}

// openService opens the configured store. The caller closes it via the
// returned function.
func openService() (*service.AutomationService, func(), error) {
	st, err := storage.Open(settings)
	if err != nil {
		return nil, nil, err
	}
	slog.Debug("store opened", "backend", settings.Backend)
	return service.New(st), func() { _ = st.Close() }, nil
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("store", "", "Path to the automation store (default $DEVFLOW_STORE or the data dir)")
	rootCmd.PersistentFlags().String("backend", "", "Storage backend: json or sqlite (default $DEVFLOW_BACKEND or json)")
	rootCmd.PersistentFlags().String("shell", "", "Shell used to run commands (default sh -c, cmd /C on Windows)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}
