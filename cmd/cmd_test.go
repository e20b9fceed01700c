package cmd

import (
	"bytes"
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// setupHome points the data dir at a fresh temporary directory and clears
// the other DEVFLOW_ variables for the duration of the test.
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("DEVFLOW_HOME", home)
	for _, k := range []string{"DEVFLOW_STORE", "DEVFLOW_BACKEND", "DEVFLOW_SHELL", "DEVFLOW_WORKDIR", "DEVFLOW_LOG_LEVEL"} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
	return home
}

// resetFlags restores every flag to its default so values from one
// Execute call do not leak into the next.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// mustExecute fails the test when the command returns an error.
func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, "", args...)
	if err != nil {
		t.Fatalf("devflow %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

// stubInteractive replaces the terminal detection and prompt for one test.
func stubInteractive(t *testing.T, interactive bool, answers ...string) {
	t.Helper()
	prevI, prevP, prevS := interactiveFunc, promptFunc, secretFunc
	t.Cleanup(func() { interactiveFunc, promptFunc, secretFunc = prevI, prevP, prevS })
	interactiveFunc = func() bool { return interactive }
	next := func() string {
		if len(answers) == 0 {
			return ""
		}
		a := answers[0]
		answers = answers[1:]
		return a
	}
	promptFunc = func(string) string { return next() }
	secretFunc = func(string) (string, error) { return next(), nil }
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX sh")
	}
}
