package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDescribeDelete(t *testing.T) {
	setupHome(t)
	out := mustExecute(t, "create", "build",
		"-d", "build the thing",
		"-c", "make",
		"-c", "make test",
		"--tag", "ci,go",
		"--param", "target?:choice(a|b)=a",
		"--on-error", "continue",
		"--timeout", "90",
		"--env", "CI=1",
	)
	assert.Contains(t, out, "created 'build'")
	assert.Contains(t, out, "with 2 commands")

	desc := mustExecute(t, "describe", "build")
	assert.Contains(t, desc, "Name: build")
	assert.Contains(t, desc, "Description: build the thing")
	assert.Contains(t, desc, "Tags: ci, go")
	assert.Contains(t, desc, `target (choice, default "a", one of a|b)`)
	assert.Contains(t, desc, "1: make\n   on_error=continue timeout=90s env: CI=1")
	assert.Contains(t, desc, "Runs: never run")

	_, err := execute(t, "", "create", "build", "-c", "echo dup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	stubInteractive(t, false)
	_, err = execute(t, "", "delete", "build")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	assert.Contains(t, mustExecute(t, "delete", "build", "--yes"), "deleted 'build'")
	_, err = execute(t, "", "describe", "build")
	require.Error(t, err)
}

func TestCreateWarnsAboutUndeclaredPlaceholder(t *testing.T) {
	setupHome(t)
	out := mustExecute(t, "create", "greet", "-c", "echo {{who}}")
	assert.Contains(t, out, "placeholder {{who}} has no declared parameter")
}

func TestCreateJoinsUnquotedTokens(t *testing.T) {
	setupHome(t)
	out := mustExecute(t, "create", "ls", "--", "ls", "-la")
	assert.Contains(t, out, `using joined command: "ls -la"`)
	assert.Contains(t, mustExecute(t, "describe", "ls"), "1: ls -la")
}

func TestCreateNormalizesPastedQuotes(t *testing.T) {
	setupHome(t)
	mustExecute(t, "create", "quoted", "-c", "echo “hi” there")
	assert.Contains(t, mustExecute(t, "describe", "quoted"), `1: echo "hi" there`)

	mustExecute(t, "edit", "quoted", "-c", "echo ‘bye’")
	assert.Contains(t, mustExecute(t, "describe", "quoted"), "1: echo 'bye'")
}

func TestCreateFromStdin(t *testing.T) {
	setupHome(t)
	out, err := execute(t, "# setup\nmake lint\n\nmake test\n:end\nignored\n", "create", "ci", "--from-stdin")
	require.NoError(t, err, out)
	desc := mustExecute(t, "describe", "ci")
	assert.Contains(t, desc, "1: make lint")
	assert.Contains(t, desc, "2: make test")
	assert.NotContains(t, desc, "ignored")
}

func TestCreateRequiresCommands(t *testing.T) {
	setupHome(t)
	_, err := execute(t, "", "create", "empty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no commands given")
}

func TestRecordRepromptsForTakenName(t *testing.T) {
	setupHome(t)
	mustExecute(t, "create", "taken", "-c", "echo a")

	out, err := execute(t, "fresh\necho one\necho two\n:end\n", "record", "taken")
	require.NoError(t, err, out)
	assert.Contains(t, out, "name 'taken' already exists")
	assert.Contains(t, out, "saved 'fresh' with 2 commands")
}

func TestListFilters(t *testing.T) {
	setupHome(t)
	mustExecute(t, "create", "deploy-prod", "-d", "ship it", "--tag", "prod", "-c", "make deploy")
	mustExecute(t, "create", "lint", "--tag", "ci", "-c", "make lint")

	all := mustExecute(t, "list")
	assert.Contains(t, all, "- deploy-prod: ship it")
	assert.Contains(t, all, "- lint")

	byTag := mustExecute(t, "list", "--tag", "ci")
	assert.Contains(t, byTag, "- lint")
	assert.NotContains(t, byTag, "deploy-prod")

	byText := mustExecute(t, "list", "--filter", "ship")
	assert.Contains(t, byText, "deploy-prod")
	assert.NotContains(t, byText, "- lint")

	fuzzy := mustExecute(t, "list", "--filter", "dply", "--fuzzy")
	assert.Contains(t, fuzzy, "deploy-prod")

	assert.Contains(t, mustExecute(t, "list", "--tag", "missing"), "no automations found")
}

func TestTagCommands(t *testing.T) {
	setupHome(t)
	mustExecute(t, "create", "build", "-c", "make")

	assert.Contains(t, mustExecute(t, "tag", "add", "build", "ci"), "added tag 'ci'")
	assert.Contains(t, mustExecute(t, "tag", "add", "build", "CI"), "already has tag")
	assert.Contains(t, mustExecute(t, "tag", "list", "build"), "- ci")
	assert.Contains(t, mustExecute(t, "tag", "remove", "build", "ci"), "removed tag 'ci'")
	_, err := execute(t, "", "tag", "remove", "build", "ci")
	require.Error(t, err)
}

func TestEditReplacesCommandsKeepingSettings(t *testing.T) {
	setupHome(t)
	mustExecute(t, "create", "build", "--on-error", "retry", "-c", "make", "-c", "make test")

	out := mustExecute(t, "edit", "build", "-c", "make", "-c", "make vet", "--name", "build-all", "-d", "new desc")
	assert.Contains(t, out, "updated 'build-all' with 2 commands")

	desc := mustExecute(t, "describe", "build-all")
	assert.Contains(t, desc, "Description: new desc")
	assert.Contains(t, desc, "1: make\n   on_error=retry")
	assert.Contains(t, desc, "2: make vet\n   on_error=stop")
	assert.NotContains(t, desc, "make test")
}

func TestCreateExampleIsIdempotent(t *testing.T) {
	setupHome(t)
	assert.Contains(t, mustExecute(t, "create-example"), "created example 'hello-world'")
	assert.Contains(t, mustExecute(t, "create-example"), "already exists")

	desc := mustExecute(t, "describe", "hello-world")
	assert.Contains(t, desc, "1: echo Hello, {{name}}!")
	assert.Contains(t, desc, "Tags: example, demo")
}

func TestExportImportRoundTrip(t *testing.T) {
	setupHome(t)
	mustExecute(t, "create", "one", "-c", "echo 1")
	mustExecute(t, "create", "two", "-c", "echo 2", "--tag", "x")

	dir := t.TempDir()
	for _, name := range []string{"bundle.json", "bundle.yaml", "bundle.db"} {
		out := mustExecute(t, "export", "--out", filepath.Join(dir, name))
		assert.Contains(t, out, "exported 2 automations")
	}
	out := mustExecute(t, "export", "two", "--out", filepath.Join(dir, "two.json"))
	assert.Contains(t, out, "exported 1 automations")

	for _, name := range []string{"bundle.json", "bundle.yaml", "bundle.db"} {
		setupHome(t)
		out := mustExecute(t, "import", filepath.Join(dir, name))
		assert.Contains(t, out, "2 imported, 0 skipped", name)
		list := mustExecute(t, "list")
		assert.Contains(t, list, "- one")
		assert.Contains(t, list, "- two")
	}

	// importing into a store that already has them
	out = mustExecute(t, "import", filepath.Join(dir, "two.json"))
	assert.Contains(t, out, "skipped 'two' (already exists)")
	out = mustExecute(t, "import", filepath.Join(dir, "two.json"), "--on-conflict", "rename")
	assert.Contains(t, out, "imported 'two' as 'two-import-1'")
	out = mustExecute(t, "import", filepath.Join(dir, "two.json"), "--on-conflict", "overwrite")
	assert.Contains(t, out, "overwrote 'two'")
}

func TestExportDefaultDestination(t *testing.T) {
	setupHome(t)
	mustExecute(t, "create", "one", "-c", "echo 1")
	wd := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(wd))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	first := mustExecute(t, "export")
	second := mustExecute(t, "export", "--format", "yaml")
	third := mustExecute(t, "export")
	assert.Contains(t, first, "devflow-")
	assert.Contains(t, second, ".yaml")
	assert.NotEqual(t, first, third)

	entries, err := os.ReadDir(wd)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestImportRejectsBadPolicy(t *testing.T) {
	setupHome(t)
	_, err := execute(t, "", "import", "whatever.json", "--on-conflict", "merge")
	require.Error(t, err)
}

func TestStatusAndVersion(t *testing.T) {
	home := setupHome(t)
	mustExecute(t, "create", "one", "-c", "echo 1")

	out := mustExecute(t, "status")
	assert.Contains(t, out, "- Data dir: "+home)
	assert.Contains(t, out, "- Backend: json")
	assert.Contains(t, out, filepath.Join(home, "automations.json"))
	assert.Contains(t, out, "- Automations: 1 (0 runs recorded)")

	assert.Contains(t, mustExecute(t, "version"), "devflow v")
}

func TestSQLiteBackend(t *testing.T) {
	home := setupHome(t)
	mustExecute(t, "--backend", "sqlite", "create", "one", "-c", "echo 1")
	assert.FileExists(t, filepath.Join(home, "devflow.db"))
	assert.Contains(t, mustExecute(t, "--backend", "sqlite", "list"), "- one")
	assert.Contains(t, mustExecute(t, "list"), "no automations found")
}
