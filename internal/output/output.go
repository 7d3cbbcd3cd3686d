// Package output provides formatted rendering of filter and workflow
// results. It supports text, JSON, and table formats.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bimmerbailey/sift/internal/engine"
	"github.com/bimmerbailey/sift/internal/workflow"
)

// Format represents an output format type.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// ParseFormat converts a string to a Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// Writer handles writing formatted output.
type Writer struct {
	w      io.Writer
	format Format
	color  ColorMode
}

// New creates a new output Writer.
func New(w io.Writer, format Format, color ColorMode) *Writer {
	return &Writer{w: w, format: format, color: color}
}

// WriteJSON outputs any value as indented JSON.
func (wr *Writer) WriteJSON(v interface{}) error {
	enc := json.NewEncoder(wr.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteFilterResult renders a single engine pass in the configured format.
func (wr *Writer) WriteFilterResult(res *engine.Result) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(res)
	case FormatTable:
		tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "READ\tMATCHED\tEMITTED\tOUTPUT")
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\n", res.LinesRead, res.LinesMatched, len(res.LineMap), res.OutputPath)
		if err := tw.Flush(); err != nil {
			return err
		}
		return wr.writeWarnings(res.Warnings)
	default:
		fmt.Fprintf(wr.w, "output: %s\n", res.OutputPath)
		fmt.Fprintf(wr.w, "lines read: %d, matched: %d, emitted: %d\n",
			res.LinesRead, res.LinesMatched, len(res.LineMap))
		return wr.writeWarnings(res.Warnings)
	}
}

// WriteRunResult renders a workflow run with its per-step statistics.
func (wr *Writer) WriteRunResult(wf workflow.Workflow, res *workflow.RunResult) error {
	if wr.format == FormatJSON {
		return wr.WriteJSON(res)
	}

	fmt.Fprintf(wr.w, "workflow %s (%s)\n", wf.ID, wf.Name)

	tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tPROFILE\tREAD\tMATCHED\tEMITTED")
	for i, step := range wf.Steps {
		if i >= len(res.PerStep) {
			break
		}
		sr := res.PerStep[i]
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n",
			step.ID, step.Profile, sr.LinesRead, sr.LinesMatched, len(sr.LineMap))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(wr.w, "final output: %s (%d lines)\n", res.FinalOutputPath, len(res.ComposedLineMap))

	for _, sr := range res.PerStep {
		if err := wr.writeWarnings(sr.Warnings); err != nil {
			return err
		}
	}
	return nil
}

func (wr *Writer) writeWarnings(warnings []engine.Warning) error {
	colorize := shouldColorize(wr.color, wr.w)
	for _, warn := range warnings {
		line := "warning: " + warn.String()
		if colorize {
			line = colorYellow + line + colorReset
		}
		if _, err := fmt.Fprintln(wr.w, line); err != nil {
			return err
		}
	}
	return nil
}
