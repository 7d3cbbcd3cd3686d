package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimmerbailey/sift/internal/engine"
	"github.com/bimmerbailey/sift/internal/workflow"
)

func sampleResult() *engine.Result {
	return &engine.Result{
		OutputPath:   "/tmp/out.log",
		LinesRead:    10,
		LinesMatched: 3,
		LineMap:      []engine.LineRecord{{Output: 0, Input: 1}, {Output: 1, Input: 4}, {Output: 2, Input: 9}},
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatTable, ParseFormat("table"))
	assert.Equal(t, FormatText, ParseFormat("anything else"))
}

func TestWriteFilterResultText(t *testing.T) {
	var buf bytes.Buffer
	wr := New(&buf, FormatText, ColorNever)
	require.NoError(t, wr.WriteFilterResult(sampleResult()))

	assert.Contains(t, buf.String(), "output: /tmp/out.log")
	assert.Contains(t, buf.String(), "lines read: 10, matched: 3, emitted: 3")
}

func TestWriteFilterResultJSON(t *testing.T) {
	var buf bytes.Buffer
	wr := New(&buf, FormatJSON, ColorNever)
	require.NoError(t, wr.WriteFilterResult(sampleResult()))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, float64(10), decoded["lines_read"])
}

func TestWriteFilterResultTable(t *testing.T) {
	var buf bytes.Buffer
	wr := New(&buf, FormatTable, ColorNever)
	require.NoError(t, wr.WriteFilterResult(sampleResult()))

	assert.Contains(t, buf.String(), "READ")
	assert.Contains(t, buf.String(), "/tmp/out.log")
}

func TestWriteFilterResultWarnings(t *testing.T) {
	res := sampleResult()
	res.Warnings = []engine.Warning{{Group: "g", Keyword: "(", Err: errors.New("boom")}}

	var buf bytes.Buffer
	wr := New(&buf, FormatText, ColorNever)
	require.NoError(t, wr.WriteFilterResult(res))

	assert.Contains(t, buf.String(), `warning: group "g": invalid pattern "("`)
	assert.NotContains(t, buf.String(), "\033[", "no ANSI codes with ColorNever")
}

func TestWriteFilterResultWarningsColored(t *testing.T) {
	res := sampleResult()
	res.Warnings = []engine.Warning{{Group: "g", Keyword: "(", Err: errors.New("boom")}}

	var buf bytes.Buffer
	wr := New(&buf, FormatText, ColorAlways)
	require.NoError(t, wr.WriteFilterResult(res))
	assert.Contains(t, buf.String(), colorYellow)
}

func TestErrorf(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, colorRed+"bad"+colorReset, Errorf(ColorAlways, &buf, "bad"))
	assert.Equal(t, "bad", Errorf(ColorNever, &buf, "bad"))
	assert.Equal(t, "bad", Errorf(ColorAuto, &buf, "bad"), "a buffer is not a terminal")
}

func TestWriteRunResult(t *testing.T) {
	wf := workflow.Workflow{ID: "triage", Name: "Triage", Steps: []workflow.Step{
		{ID: "s1", Profile: "quiet"},
		{ID: "s2", Profile: "errors"},
	}}
	res := &workflow.RunResult{
		WorkflowID:      "triage",
		PerStep:         []*engine.Result{sampleResult(), sampleResult()},
		FinalOutputPath: "/tmp/final.log",
		ComposedLineMap: []engine.LineRecord{{Output: 0, Input: 4}},
	}

	var buf bytes.Buffer
	wr := New(&buf, FormatText, ColorNever)
	require.NoError(t, wr.WriteRunResult(wf, res))

	out := buf.String()
	assert.Contains(t, out, "workflow triage (Triage)")
	assert.Contains(t, out, "s1")
	assert.Contains(t, out, "errors")
	assert.Contains(t, out, "final output: /tmp/final.log (1 lines)")
}
