package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/sift/internal/config"
	"github.com/bimmerbailey/sift/internal/engine"
	"github.com/bimmerbailey/sift/internal/output"
	"github.com/bimmerbailey/sift/internal/profile"
)

var filterCmd = &cobra.Command{
	Use:   "filter [flags] <file>...",
	Short: "Filter log files through a named profile",
	Long: `Filter streams each input file through the filter groups of a profile
and prints the kept lines, or writes them to --output.

With --watch the command stays running and repeats the filter pass every
time the profiles file changes, so a profile can be tuned against a fixed
input.

Examples:
  sift filter --profile errors /var/log/app.log
  sift filter --profile errors --context 2 app.log
  sift filter --profile noise -n -o clean.log "/var/log/*.log"
  sift filter --profile errors --watch -o errors.log app.log`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFilter,
}

func init() {
	filterCmd.Flags().StringP("profile", "p", profile.DefaultName, "filter profile to apply")
	filterCmd.Flags().IntP("context", "C", 0, "number of context lines around matches")
	filterCmd.Flags().BoolP("line-numbers", "n", false, "prepend original line numbers to kept lines")
	filterCmd.Flags().StringP("output", "o", "", "write filtered lines to this file instead of stdout")
	filterCmd.Flags().BoolP("watch", "w", false, "re-run the filter whenever the profiles file changes")

	_ = viper.BindPFlag("context", filterCmd.Flags().Lookup("context"))
	_ = viper.BindPFlag("line_numbers", filterCmd.Flags().Lookup("line-numbers"))

	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) error {
	profileName, _ := cmd.Flags().GetString("profile")
	outputPath, _ := cmd.Flags().GetString("output")
	watch, _ := cmd.Flags().GetBool("watch")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	files, err := config.ExpandGlobs(args)
	if err != nil {
		return err
	}
	if outputPath != "" && len(files) > 1 {
		return fmt.Errorf("--output requires a single input file")
	}

	store, err := newProfileStore(cfg)
	if err != nil {
		return err
	}

	for _, file := range files {
		if err := cfg.CheckFileSize(file); err != nil {
			return err
		}
	}

	if err := filterPass(cmd, cfg, store, files, profileName, outputPath); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "watching %s for profile changes\n", store.Path())
	return profile.Watch(cmd.Context(), store, func() {
		if err := filterPass(cmd, cfg, store, files, profileName, outputPath); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "error: "+err.Error())
		}
	})
}

// filterPass runs every input file through the named profile once. In watch
// mode it repeats on each profile reload, so the profile is resolved fresh
// every pass.
func filterPass(cmd *cobra.Command, cfg *config.Config, store profile.Store, files []string, profileName, outputPath string) error {
	groups, err := store.Resolve(profileName)
	if err != nil {
		return err
	}

	eng := engine.New()
	opts := defaultEngineOptions(cfg)
	opts.OutputDir = cfg.OutputDir
	opts.OutputPath = outputPath

	writer := output.New(cmd.OutOrStdout(), output.ParseFormat(cfg.Format), output.ColorAuto)

	for _, file := range files {
		res, err := eng.Process(file, groups, opts)
		if err != nil {
			return err
		}

		if outputPath != "" {
			return writer.WriteFilterResult(res)
		}

		// No explicit output: behave like grep, streaming the kept lines
		// to stdout and discarding the artifact.
		if err := streamAndRemove(cmd.OutOrStdout(), res.OutputPath); err != nil {
			return err
		}
		for _, warn := range res.Warnings {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning: "+warn.String())
		}
	}

	return nil
}

// defaultEngineOptions maps config values onto engine run options.
func defaultEngineOptions(cfg *config.Config) engine.Options {
	return engine.Options{
		PrependLineNumbers: cfg.LineNumbers,
		ContextLines:       cfg.Context,
	}
}

func streamAndRemove(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	_, copyErr := io.Copy(w, f)
	closeErr := f.Close()
	os.Remove(path)
	if copyErr != nil {
		return copyErr
	}
	return closeErr
}
