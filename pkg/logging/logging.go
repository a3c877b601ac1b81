package logging

import (
	"io"
	"os"
	"strings"

	"log/slog"
)

// New creates a slog.Logger writing JSON to stderr at the provided level.
// Stderr keeps log output off the MCP stdio transport.
func New(level string) *slog.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter creates a slog.Logger writing JSON to w at the provided level.
func NewWithWriter(w io.Writer, level string) *slog.Logger {
	l := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l})
	return slog.New(handler)
}
