// Package logger provides the process-wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Log is the global logger instance.
var Log *slog.Logger

// level is the dynamic log level, changeable at runtime via SetLevel.
// Uses slog.LevelVar, which is backed by atomic.Int64, safe for concurrent use.
var level slog.LevelVar

// Init initializes the global logger with the specified level.
//
// When stdout is a terminal, source locations are suppressed and the
// handler favors a human glancing at a scrollback buffer. When stdout is
// redirected (the common case under a process supervisor), the full
// structured text handler is used so log lines stay machine-parseable.
func Init(levelStr string) {
	SetLevel(levelStr)

	opts := &slog.HandlerOptions{Level: &level}
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		opts.AddSource = true
	}
	Log = slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// SetLevel changes the log level at runtime. Valid values: debug, info, warn, error.
// Invalid values fall back to info.
func SetLevel(levelStr string) {
	var lvl slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	level.Set(lvl)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	if Log != nil {
		Log.Debug(msg, args...)
	}
}

// Info logs an info message.
func Info(msg string, args ...any) {
	if Log != nil {
		Log.Info(msg, args...)
	}
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	if Log != nil {
		Log.Warn(msg, args...)
	}
}

// Error logs an error message.
func Error(msg string, args ...any) {
	if Log != nil {
		Log.Error(msg, args...)
	}
}

// With returns a logger with the given key/value pairs attached, falling
// back to a discard logger if the global logger has not been initialized
// (useful in tests that exercise packages without calling Init).
func With(args ...any) *slog.Logger {
	if Log == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return Log.With(args...)
}
