// Package logger provides structured logging for riskscan.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the global logger instance.
var Logger *slog.Logger

func init() {
	Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// SetupLogger configures the global logger.
func SetupLogger(debug bool, format string) {
	Logger = New(os.Stderr, debug, format)
}

// New builds a logger writing to w; format is "json" or "text".
func New(w io.Writer, debug bool, format string) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info logs an info message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// WithOrganization returns a logger with organization context.
func WithOrganization(l *slog.Logger, id, name string) *slog.Logger {
	if l == nil {
		l = Logger
	}
	return l.With("organization_id", id, "organization", name)
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
