package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-io/tessera/internal/adapters/file"
	"github.com/tessera-io/tessera/pkg/ports"
	"github.com/tessera-io/tessera/pkg/runbook"
)

func TestRedactMiddlewareContract(t *testing.T) {
	// With no patterns the middleware is a transparent wrapper.
	ports.RunRunStoreContract(t, NewRedactMiddleware(nil)(file.New(t.TempDir())))
}

func TestRedactMasksSecretVars(t *testing.T) {
	ctx := context.Background()
	store := NewRedactMiddleware(DefaultSecretPatterns)(file.New(t.TempDir()))

	state := &runbook.RunState{
		ID:      "r1",
		Runbook: "release",
		Status:  runbook.StatusRunning,
		Vars: map[string]string{
			"version":      "1.2.3",
			"PYPI_TOKEN":   "pypi-abc123",
			"api_key":      "k-42",
			"release_note": "all good",
		},
	}
	require.NoError(t, store.Save(ctx, "r1", state))

	// The engine's copy keeps the real values.
	assert.Equal(t, "pypi-abc123", state.Vars["PYPI_TOKEN"])

	got, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", got.Vars["version"])
	assert.Equal(t, "all good", got.Vars["release_note"])
	assert.Equal(t, "***", got.Vars["PYPI_TOKEN"])
	assert.Equal(t, "***", got.Vars["api_key"])
}

func TestRedactLeavesPlainVarsAlone(t *testing.T) {
	ctx := context.Background()
	inner := file.New(t.TempDir())
	store := NewRedactMiddleware(DefaultSecretPatterns)(inner)

	state := &runbook.RunState{
		ID:     "r2",
		Status: runbook.StatusPassed,
		Vars:   map[string]string{"version": "2.0.0"},
	}
	require.NoError(t, store.Save(ctx, "r2", state))

	got, err := inner.Load(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, state.Vars, got.Vars)
}
