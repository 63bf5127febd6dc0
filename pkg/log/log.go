// Package log configures the process-wide structured logger and provides
// attribute helpers shared by every orchestrator component.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

func Setup(logLevel string) {
	SetupWithWriter(os.Stderr, logLevel)
}

// SetupWithWriter installs a text handler writing to w as the default slog logger.
func SetupWithWriter(w io.Writer, logLevel string) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(logLevel),
	})))
}

func ParseLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
