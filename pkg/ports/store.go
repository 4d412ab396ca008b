// Package ports defines the interfaces between the runbook engine and its
// infrastructure adapters, plus a reusable contract test suite.
package ports

import (
	"context"

	"github.com/tessera-io/tessera/pkg/runbook"
)

// RunStore persists run state between steps and across process restarts.
// This is what makes "Stop & Resume" of a half-finished checklist possible.
type RunStore interface {
	// Save persists the state for a given run ID.
	Save(ctx context.Context, runID string, state *runbook.RunState) error

	// Load retrieves the state for a given run ID.
	// Returns runbook.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*runbook.RunState, error)

	// Delete removes the state for a given run ID.
	Delete(ctx context.Context, runID string) error

	// List returns the known run IDs, newest first where the backend can
	// order them.
	List(ctx context.Context) ([]string, error)
}
