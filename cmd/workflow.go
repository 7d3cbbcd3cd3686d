package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/sift/internal/config"
	"github.com/bimmerbailey/sift/internal/output"
	"github.com/bimmerbailey/sift/internal/workflow"
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Run and inspect multi-step filtering workflows",
}

var workflowRunCmd = &cobra.Command{
	Use:   "run <id> <file>",
	Short: "Run a workflow against a log file",
	Long: `Run executes each step of the workflow in order, feeding every step's
output into the next, and stores the result as the workflow's latest run.

Example:
  sift workflow run triage /var/log/app.log`,
	Args: cobra.ExactArgs(2),
	RunE: runWorkflowRun,
}

var workflowListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured workflows",
	RunE:  runWorkflowList,
}

var workflowLastCmd = &cobra.Command{
	Use:   "last <id>",
	Short: "Show the latest stored run of a workflow",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkflowLast,
}

func init() {
	workflowCmd.AddCommand(workflowRunCmd)
	workflowCmd.AddCommand(workflowListCmd)
	workflowCmd.AddCommand(workflowLastCmd)
	rootCmd.AddCommand(workflowCmd)
}

func runWorkflowRun(cmd *cobra.Command, args []string) error {
	workflowID, inputPath := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.CheckFileSize(inputPath); err != nil {
		return err
	}

	store, err := newProfileStore(cfg)
	if err != nil {
		return err
	}
	o, err := newOrchestrator(cfg, store)
	if err != nil {
		return err
	}

	res, err := o.Run(cmd.Context(), workflowID, inputPath)
	if err != nil {
		return err
	}

	if err := workflow.SaveLastRun(statePath(cfg), res); err != nil {
		return err
	}

	wf, _ := o.Get(workflowID)
	writer := output.New(cmd.OutOrStdout(), output.ParseFormat(cfg.Format), output.ColorAuto)
	return writer.WriteRunResult(wf, res)
}

func runWorkflowList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := newProfileStore(cfg)
	if err != nil {
		return err
	}
	o, err := newOrchestrator(cfg, store)
	if err != nil {
		return err
	}

	workflows := o.List()
	if len(workflows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no workflows configured")
		return nil
	}

	if output.ParseFormat(cfg.Format) == output.FormatJSON {
		writer := output.New(cmd.OutOrStdout(), output.FormatJSON, output.ColorNever)
		return writer.WriteJSON(workflows)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTEPS")
	for _, wf := range workflows {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", wf.ID, wf.Name, len(wf.Steps))
	}
	return tw.Flush()
}

func runWorkflowLast(cmd *cobra.Command, args []string) error {
	workflowID := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	res, ok, err := workflow.LoadLastRun(statePath(cfg), workflowID)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(cmd.OutOrStdout(), "no recorded runs for workflow %q\n", workflowID)
		return nil
	}

	store, err := newProfileStore(cfg)
	if err != nil {
		return err
	}
	o, err := newOrchestrator(cfg, store)
	if err != nil {
		return err
	}

	wf, _ := o.Get(workflowID)
	writer := output.New(cmd.OutOrStdout(), output.ParseFormat(cfg.Format), output.ColorAuto)
	return writer.WriteRunResult(wf, res)
}
