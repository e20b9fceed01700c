package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAutomationGeneratesDistinctIDs(t *testing.T) {
	a := NewAutomation(" demo ")
	b := NewAutomation("demo")
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "demo", a.Name)
	assert.False(t, a.CreatedAt.IsZero())
}

func TestCloneIsDeep(t *testing.T) {
	a := NewAutomation("demo", Command{Command: "env", EnvironmentVars: map[string]string{"A": "1"}})
	a.Tags = []string{"x"}
	c := a.Clone()
	c.Commands[0].EnvironmentVars["A"] = "2"
	c.Tags[0] = "y"

	assert.Equal(t, "1", a.Commands[0].EnvironmentVars["A"])
	assert.Equal(t, "x", a.Tags[0])
}

func TestWithRun(t *testing.T) {
	a := NewAutomation("demo")
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b := a.WithRun(at)
	assert.Equal(t, 0, a.RunCount)
	assert.Nil(t, a.LastRun)
	assert.Equal(t, 1, b.RunCount)
	require.NotNil(t, b.LastRun)
	assert.True(t, b.LastRun.Equal(at))
}

func TestHasTagIgnoresCase(t *testing.T) {
	a := NewAutomation("demo")
	a.Tags = []string{"Deploy"}
	assert.True(t, a.HasTag("deploy"))
	assert.False(t, a.HasTag("build"))
}

func TestExecutionResultJSONSeconds(t *testing.T) {
	r := ExecutionResult{Success: true, ExitCode: 0, Stdout: "ok\n", ExecutionTime: 1500 * time.Millisecond, Command: "echo ok"}
	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"execution_time":1.5`)

	var back ExecutionResult
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, r, back)
}

func TestAutomationDecodesOriginalRecord(t *testing.T) {
	raw := `{
	  "id": "abc",
	  "name": "hello-world",
	  "description": null,
	  "commands": [{"command": "echo Hello, {{name}}!", "description": null, "timeout": 30, "on_error": "stop", "working_directory": null, "environment_vars": null}],
	  "parameters": [{"name": "name", "type": "text", "description": null, "default_value": null, "required": true, "choices": null}],
	  "tags": ["example", "demo"],
	  "created_at": "2024-05-01T10:00:00Z",
	  "last_run": null,
	  "run_count": 0
	}`
	var a Automation
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.Equal(t, "hello-world", a.Name)
	require.Len(t, a.Commands, 1)
	assert.Equal(t, Stop, a.Commands[0].OnError)
	assert.Equal(t, []string{"name"}, a.Placeholders())
	assert.Nil(t, a.LastRun)
}
