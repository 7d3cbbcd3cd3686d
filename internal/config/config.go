// Package config provides configuration types and helpers for sift.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds the application-wide configuration.
type Config struct {
	// Format selects output rendering: text, json, table.
	Format string `mapstructure:"format"`

	// Verbose enables debug-level logging.
	Verbose bool `mapstructure:"verbose"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `mapstructure:"log_format"`

	// ProfilesFile is the YAML file holding named filter profiles.
	ProfilesFile string `mapstructure:"profiles_file"`

	// WorkflowsFile is the YAML file holding workflow definitions.
	WorkflowsFile string `mapstructure:"workflows_file"`

	// OutputDir is where derived output artifacts are created.
	// Empty means the system temp dir.
	OutputDir string `mapstructure:"output_dir"`

	// MaxFileSizeMB refuses inputs larger than this many megabytes.
	// Zero disables the check.
	MaxFileSizeMB int `mapstructure:"max_file_size_mb"`

	// LineNumbers prepends the 1-based original line number to kept lines.
	LineNumbers bool `mapstructure:"line_numbers"`

	// Context is the default number of context lines around matches.
	Context int `mapstructure:"context"`
}

// Load unmarshals the current viper state into a Config.
func Load() (*Config, error) {
	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &c, nil
}

// CheckFileSize stats path and returns an error if it exceeds the configured
// maximum. The engine itself does not enforce the limit; callers gate on it
// before invoking a run.
func (c *Config) CheckFileSize(path string) error {
	if c.MaxFileSizeMB <= 0 {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	limit := int64(c.MaxFileSizeMB) * 1024 * 1024
	if info.Size() > limit {
		return fmt.Errorf("%s is %d bytes, over the %dMB limit (raise max_file_size_mb to proceed)",
			path, info.Size(), c.MaxFileSizeMB)
	}

	return nil
}
