package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/sift/internal/config"
	"github.com/bimmerbailey/sift/internal/output"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect filter profiles",
	Long: `Profiles are named collections of filter groups, edited in the
profiles file (see the profiles_file config key). The built-in "default"
profile keeps every line.`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profile names",
	RunE:  runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a profile's groups and filters",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

func init() {
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := newProfileStore(cfg)
	if err != nil {
		return err
	}

	names := store.ListNames()
	if output.ParseFormat(cfg.Format) == output.FormatJSON {
		writer := output.New(cmd.OutOrStdout(), output.FormatJSON, output.ColorNever)
		return writer.WriteJSON(names)
	}

	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := newProfileStore(cfg)
	if err != nil {
		return err
	}

	groups, err := store.Resolve(name)
	if err != nil {
		return err
	}

	if output.ParseFormat(cfg.Format) == output.FormatJSON {
		writer := output.New(cmd.OutOrStdout(), output.FormatJSON, output.ColorNever)
		return writer.WriteJSON(groups)
	}

	if len(groups) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "profile %q has no filter groups (identity pass)\n", name)
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tENABLED\tKIND\tKEYWORD\tREGEX\tFILTER ENABLED")
	for _, g := range groups {
		for _, f := range g.Filters {
			fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%t\t%t\n",
				g.Name, g.Enabled, f.Kind, f.Keyword, f.Regex, f.Enabled)
		}
		if len(g.Filters) == 0 {
			fmt.Fprintf(tw, "%s\t%t\t-\t-\t-\t-\n", g.Name, g.Enabled)
		}
	}
	return tw.Flush()
}
