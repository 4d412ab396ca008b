package ports

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-io/tessera/pkg/runbook"
)

// RunRunStoreContract runs a suite of tests to verify that a RunStore
// implementation adheres to the defined interface contract.
func RunRunStoreContract(t *testing.T, store RunStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := &runbook.RunState{
			ID:       runID,
			Runbook:  "release",
			Status:   runbook.StatusRunning,
			NextStep: 2,
			Vars:     map[string]string{"version": "1.2.3"},
			Steps: []runbook.StepResult{
				{Stage: "test", Name: "unit", Status: runbook.StatusPassed, ExitCode: 0},
				{Stage: "test", Name: "lint", Status: runbook.StatusFailed, Failure: runbook.FailureScan,
					Matches: []runbook.ScanMatch{{Line: 7, Pattern: "Error", Text: "Error: nope"}}},
			},
			Started: time.Now().UTC().Truncate(time.Second),
		}

		err := store.Save(ctx, runID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.Runbook, loaded.Runbook)
		assert.Equal(t, state.NextStep, loaded.NextStep)
		assert.Equal(t, "1.2.3", loaded.Vars["version"])
		require.Len(t, loaded.Steps, 2)
		assert.Equal(t, runbook.FailureScan, loaded.Steps[1].Failure)
		require.Len(t, loaded.Steps[1].Matches, 1)
		assert.Equal(t, 7, loaded.Steps[1].Matches[0].Line)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		first := &runbook.RunState{ID: runID, Status: runbook.StatusRunning, NextStep: 1}
		require.NoError(t, store.Save(ctx, runID, first))

		second := &runbook.RunState{ID: runID, Status: runbook.StatusPassed, NextStep: 5}
		require.NoError(t, store.Save(ctx, runID, second))

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, runbook.StatusPassed, loaded.Status)
		assert.Equal(t, 5, loaded.NextStep)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, runbook.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, runID, &runbook.RunState{ID: runID}))

		err := store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, runbook.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.Save(ctx, id1, &runbook.RunState{ID: id1})
		_ = store.Save(ctx, id2, &runbook.RunState{ID: id2})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)

		// Newest first: id2 was saved after id1 and sorts after it, so it
		// must come back ahead of id1. The no-arg report relies on this.
		assert.Less(t, slices.Index(runs, id2), slices.Index(runs, id1),
			"List should return run IDs newest first")
	})
}
