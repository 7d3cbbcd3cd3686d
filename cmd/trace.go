package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/sift/internal/config"
	"github.com/bimmerbailey/sift/internal/workflow"
)

var traceCmd = &cobra.Command{
	Use:   "trace <workflow-id> <line>",
	Short: "Trace a final output line back to the original input line",
	Long: `Trace resolves a 1-based line number of a workflow's latest final
output through the composed line map back to the original input file.

Example:
  sift workflow run triage app.log
  sift trace triage 3`,
	Args: cobra.ExactArgs(2),
	RunE: runTrace,
}

func init() {
	rootCmd.AddCommand(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
	workflowID := args[0]
	lineNo, err := strconv.Atoi(args[1])
	if err != nil || lineNo < 1 {
		return fmt.Errorf("line must be a positive integer, got %q", args[1])
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	res, ok, err := workflow.LoadLastRun(statePath(cfg), workflowID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no recorded runs for workflow %q", workflowID)
	}

	// CLI lines are 1-based; the composed map is 0-based.
	target := lineNo - 1
	for _, rec := range res.ComposedLineMap {
		if rec.Output == target {
			fmt.Fprintf(cmd.OutOrStdout(), "%s:%d -> %s:%d\n",
				res.FinalOutputPath, lineNo, res.InputPath, rec.Input+1)
			return nil
		}
	}

	return fmt.Errorf("line %d is not present in the final output of workflow %q (%d lines)",
		lineNo, workflowID, len(res.ComposedLineMap))
}
