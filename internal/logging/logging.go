// Package logging configures the process-wide slog logger. When the process
// runs under systemd (JOURNAL_STREAM is set) records go straight to the
// journal with native priorities; otherwise they go to stderr as text.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a CLI level name onto a slog level. Unknown names fall
// back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// Setup builds the root logger and installs it as slog's default.
func Setup(level slog.Level) *slog.Logger {
	var handler slog.Handler
	if os.Getenv("JOURNAL_STREAM") != "" {
		handler = NewJournalHandler(level)
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
