package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/sift/internal/config"
	"github.com/bimmerbailey/sift/internal/logging"
	"github.com/bimmerbailey/sift/internal/profile"
	"github.com/bimmerbailey/sift/internal/workflow"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sift",
	Short: "Filter log files through named profiles and workflows",
	Long: `Sift filters large line-oriented log files against named profiles of
include/exclude rules, chains filtering passes into workflows, and traces
every output line back to its originating input line.

Examples:
  sift filter --profile errors /var/log/app.log
  sift filter --profile errors -C 2 -o errors.log /var/log/app.log
  sift workflow run triage /var/log/app.log
  sift trace triage 14`,
	// main renders the returned error itself.
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute is called by main.main(). It runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sift.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "output format (text, json, table)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().String("log-format", "text", "log output format (text, json)")

	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".sift")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SIFT")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("format", "text")
	viper.SetDefault("verbose", false)
	viper.SetDefault("log_format", "text")
	viper.SetDefault("profiles_file", ".sift-profiles.yaml")
	viper.SetDefault("workflows_file", ".sift-workflows.yaml")
	viper.SetDefault("output_dir", "")
	viper.SetDefault("max_file_size_mb", 0)
	viper.SetDefault("line_numbers", false)
	viper.SetDefault("context", 0)

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}
	logging.Setup(cfg)
}

// newProfileStore loads the profile store from the configured file.
func newProfileStore(cfg *config.Config) (*profile.FileStore, error) {
	return profile.NewFileStore(cfg.ProfilesFile)
}

// newOrchestrator builds an orchestrator with every workflow from the
// configured workflows file registered.
func newOrchestrator(cfg *config.Config, store profile.Store) (*workflow.Orchestrator, error) {
	wfs, err := workflow.LoadFile(cfg.WorkflowsFile)
	if err != nil {
		return nil, err
	}

	o := workflow.New(store, workflow.Config{
		OutputDir: cfg.OutputDir,
		Options:   defaultEngineOptions(cfg),
	})
	for _, wf := range wfs {
		o.Register(wf)
	}
	return o, nil
}

// statePath is where the latest run per workflow id is persisted.
func statePath(cfg *config.Config) string {
	dir := cfg.OutputDir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "sift-last-runs.json")
}
