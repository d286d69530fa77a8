package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup initializes the global slog logger with JSON output to stdout and
// returns the stdout handler so it can be fanned out later.
func Setup(level string) slog.Handler {
	handler := NewJSONHandler(os.Stdout, level)
	slog.SetDefault(slog.New(handler))
	return handler
}

func NewJSONHandler(w io.Writer, level string) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
