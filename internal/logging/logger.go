// Package logging provides structured logging configuration using log/slog.
//
// Every run of the loader is identified by a run id and a scenario name;
// WithRun binds both so that all log entries of a run can be correlated
// in aggregated log storage.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// Use "json" format in production for machine parsing (ELK, CloudWatch, etc.)
// Use "text" format in development for human readability.
func Setup(level, format string) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// WithRun returns a logger bound to one loader run.
//
// All entries written through the returned logger carry run_id and
// scenario, enabling correlation of everything a single run logged.
//
// Usage:
//
//	logger := logging.WithRun(runID, "wb17")
//	logger.Info("extract started", "endpoint", url)
func WithRun(runID int64, scenario string) *slog.Logger {
	return slog.Default().With("run_id", runID, "scenario", scenario)
}

// WithFields returns a logger with additional structured fields.
//
// Useful for operation-specific loggers that carry consistent context
// through a multi-step process (for example one page of an extract).
func WithFields(args ...any) *slog.Logger {
	return slog.Default().With(args...)
}
