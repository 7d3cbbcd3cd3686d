package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlainTestCmd(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetContext(context.Background())
	return cmd
}

func setupWorkflowEnv(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	profiles := writeTempFile(t, dir, "profiles.yaml", `
profiles:
  keeps:
    groups:
      - name: g
        filters:
          - keyword: keep
            kind: include
  picks:
    groups:
      - name: g
        filters:
          - keyword: pick
            kind: include
`)
	workflows := writeTempFile(t, dir, "workflows.yaml", `
workflows:
  - id: triage
    name: Triage
    steps:
      - id: s1
        profile: keeps
      - id: s2
        profile: picks
`)
	viper.Set("format", "text")
	viper.Set("profiles_file", profiles)
	viper.Set("workflows_file", workflows)
	viper.Set("output_dir", dir)
	return dir
}

func TestWorkflowRunAndLast(t *testing.T) {
	dir := setupWorkflowEnv(t)
	input := writeTempFile(t, dir, "app.log",
		"line0\nline1 keep\nline2\nline3 keep pick\nline4\nline5 keep\n")

	var out bytes.Buffer
	cmd := newPlainTestCmd(&out)
	require.NoError(t, runWorkflowRun(cmd, []string{"triage", input}))

	assert.Contains(t, out.String(), "workflow triage (Triage)")
	assert.Contains(t, out.String(), "s1")
	assert.Contains(t, out.String(), "final output:")

	var lastOut bytes.Buffer
	lastCmd := newPlainTestCmd(&lastOut)
	require.NoError(t, runWorkflowLast(lastCmd, []string{"triage"}))
	assert.Contains(t, lastOut.String(), "workflow triage")
}

func TestWorkflowRunUnknownID(t *testing.T) {
	dir := setupWorkflowEnv(t)
	input := writeTempFile(t, dir, "app.log", "x\n")

	var out bytes.Buffer
	cmd := newPlainTestCmd(&out)
	err := runWorkflowRun(cmd, []string{"ghost", input})
	assert.ErrorContains(t, err, "workflow not found")
}

func TestWorkflowList(t *testing.T) {
	setupWorkflowEnv(t)

	var out bytes.Buffer
	cmd := newPlainTestCmd(&out)
	require.NoError(t, runWorkflowList(cmd, nil))

	assert.Contains(t, out.String(), "triage")
	assert.Contains(t, out.String(), "Triage")
}

func TestWorkflowListEmpty(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	viper.Set("profiles_file", filepath.Join(dir, "none.yaml"))
	viper.Set("workflows_file", filepath.Join(dir, "none.yaml"))
	viper.Set("output_dir", dir)

	var out bytes.Buffer
	cmd := newPlainTestCmd(&out)
	require.NoError(t, runWorkflowList(cmd, nil))
	assert.Contains(t, out.String(), "no workflows configured")
}

func TestWorkflowLastWithoutRuns(t *testing.T) {
	setupWorkflowEnv(t)

	var out bytes.Buffer
	cmd := newPlainTestCmd(&out)
	require.NoError(t, runWorkflowLast(cmd, []string{"triage"}))
	assert.Contains(t, out.String(), "no recorded runs")
}

func TestTraceResolvesOriginalLine(t *testing.T) {
	dir := setupWorkflowEnv(t)
	input := writeTempFile(t, dir, "app.log",
		"line0\nline1 keep\nline2\nline3 keep pick\nline4\nline5 keep\n")

	var runOut bytes.Buffer
	require.NoError(t, runWorkflowRun(newPlainTestCmd(&runOut), []string{"triage", input}))

	// The single surviving line of the final output is original line 4
	// (1-based): "line3 keep pick".
	var out bytes.Buffer
	cmd := newPlainTestCmd(&out)
	require.NoError(t, runTrace(cmd, []string{"triage", "1"}))
	assert.Contains(t, out.String(), input+":4")
}

func TestTraceLineNotPresent(t *testing.T) {
	dir := setupWorkflowEnv(t)
	input := writeTempFile(t, dir, "app.log", "line1 keep pick\n")

	var runOut bytes.Buffer
	require.NoError(t, runWorkflowRun(newPlainTestCmd(&runOut), []string{"triage", input}))

	err := runTrace(newPlainTestCmd(&bytes.Buffer{}), []string{"triage", "99"})
	assert.ErrorContains(t, err, "not present in the final output")
}

func TestTraceRejectsBadLineArg(t *testing.T) {
	setupWorkflowEnv(t)

	err := runTrace(newPlainTestCmd(&bytes.Buffer{}), []string{"triage", "zero"})
	assert.ErrorContains(t, err, "positive integer")

	err = runTrace(newPlainTestCmd(&bytes.Buffer{}), []string{"triage", "0"})
	assert.ErrorContains(t, err, "positive integer")
}

func TestTraceWithoutRuns(t *testing.T) {
	setupWorkflowEnv(t)

	err := runTrace(newPlainTestCmd(&bytes.Buffer{}), []string{"triage", "1"})
	assert.ErrorContains(t, err, "no recorded runs")
}
