package cli

import (
	"log/slog"
	"os"
)

// NewLogger creates the diagnostic logger. Logs go to stderr as plain
// text so stdout stays clean for the status lines the launcher prints.
func NewLogger(level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// ParseLogLevelOrDefault parses a log level string or returns a default level.
func ParseLogLevelOrDefault(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo // Default to info level
	}
}
