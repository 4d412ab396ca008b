package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKeyNormalized(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo)

	logger.Error("save failed", "error", errors.New("disk full"))

	out := buf.String()
	assert.Contains(t, out, "err=")
	assert.NotContains(t, out, "error=")
	assert.Contains(t, out, "disk full")
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo)

	logger.Debug("too quiet to hear")
	assert.Empty(t, buf.String())

	logger.Info("loud enough")
	assert.Contains(t, buf.String(), "loud enough")
}

func TestNopDiscards(t *testing.T) {
	// Mostly here to pin that NewNop never panics with attrs attached.
	NewNop().With("component", "test").Info("nothing to see")
}
