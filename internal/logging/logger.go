// Package logging builds the slog loggers shared across tessera.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a text logger on stderr at the given level. Stdout stays free
// for reports and JSON-RPC, and attribute keys are normalized so log lines
// grep the same across packages.
func New(level slog.Level) *slog.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter is New with an explicit destination, for tests.
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: normalizeAttr,
	}))
}

// NewNop returns a logger that drops everything.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// normalizeAttr shortens "error" to "err", the key the rest of the codebase
// logs errors under.
func normalizeAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}
