// Package log is the process-wide leveled logger of the timeago CLI.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Verbosity levels
const (
	LevelQuiet = iota // Default: only errors and warnings
	LevelInfo         // -v: resume status, counts
	LevelDebug        // -vv: per-phrase outcomes, table loading
)

var (
	verbosity int
	logger    *slog.Logger
)

// Initialize sets up the global logger with the specified verbosity level
func Initialize(level int, w io.Writer) {
	verbosity = level

	var slogLevel slog.Level
	switch {
	case level >= LevelDebug:
		slogLevel = slog.LevelDebug
	case level >= LevelInfo:
		slogLevel = slog.LevelInfo
	default:
		slogLevel = slog.LevelWarn
	}
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevel}))
}

// Logger returns the underlying slog.Logger for packages that take one.
func Logger() *slog.Logger { return logger }

// Info logs at info level (-v)
func Info(msg string, args ...any) { logger.Info(msg, args...) }

// Debug logs at debug level (-vv)
func Debug(msg string, args ...any) { logger.Debug(msg, args...) }

// Warn logs at warn level (always visible)
func Warn(msg string, args ...any) { logger.Warn(msg, args...) }

// Error logs at error level (always visible)
func Error(msg string, args ...any) { logger.Error(msg, args...) }

// IsDebug returns true if debug-level logging is enabled
func IsDebug() bool { return verbosity >= LevelDebug }

// Verbosity returns the current verbosity level
func Verbosity() int { return verbosity }

func init() {
	Initialize(LevelQuiet, os.Stderr)
}
