package cli

import (
	"io"
	"log/slog"
)

// NewLogger returns the text logger diagnostics go to. User-facing output
// does not go through it.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
