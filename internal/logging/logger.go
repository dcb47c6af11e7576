package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"captioner/internal/config"
)

// LogFileName is the JSON log written inside the configured log directory.
const LogFileName = "captioner.log"

// Options describes logger construction parameters.
type Options struct {
	// Level is the console threshold. The log file always records debug.
	Level string
	// Format selects the console rendering: "console" or "json".
	Format string
	// Console receives human-facing output. Nil disables it.
	Console io.Writer
	// File, when set, receives JSON lines appended across runs.
	File string
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	var handlers []slog.Handler

	if opts.Console != nil {
		addSource := level <= slog.LevelDebug
		switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
		case "", "console":
			handlers = append(handlers, newConsoleHandler(opts.Console, level, addSource))
		case "json":
			handlers = append(handlers, newJSONHandler(opts.Console, level, addSource))
		default:
			return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
		}
	}

	if path := strings.TrimSpace(opts.File); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		handlers = append(handlers, newJSONHandler(file, slog.LevelDebug, true))
	}

	return slog.New(newFanoutHandler(handlers...)), nil
}

// NewFromConfig creates the CLI logger. Console output goes to stderr so
// command output on stdout stays machine readable.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Console: os.Stderr})
	}
	opts := Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Console: os.Stderr,
	}
	if cfg.Paths.LogDir != "" {
		opts.File = filepath.Join(cfg.Paths.LogDir, LogFileName)
	}
	return New(opts)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
