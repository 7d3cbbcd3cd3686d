// Package logging initialises a [log/slog] logger from the application
// configuration.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/bimmerbailey/sift/internal/config"
)

// Setup creates a *slog.Logger configured according to cfg, writing to
// stderr, and installs it as the process-wide default.
func Setup(cfg *config.Config) *slog.Logger {
	return SetupWithWriter(cfg, os.Stderr)
}

// SetupWithWriter is the testable variant of Setup: it writes to w instead
// of stderr.
func SetupWithWriter(cfg *config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.LogFormat {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
