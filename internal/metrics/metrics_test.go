package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-io/tessera/pkg/runbook"
)

func TestRegister(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	// Double registration is an error, not a panic.
	assert.Error(t, m.Register(reg))
}

func TestHooksFeedCollectors(t *testing.T) {
	m := New()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnStepEnd(ctx, &runbook.StepEvent{
		Stage: "test",
		Result: &runbook.StepResult{
			Status:   runbook.StatusPassed,
			Duration: 120 * time.Millisecond,
		},
	})
	hooks.OnStepEnd(ctx, &runbook.StepEvent{Stage: "test"}) // no result, ignored
	hooks.OnScanMatch(ctx, &runbook.ScanEvent{Match: runbook.ScanMatch{Pattern: "Error"}})
	hooks.OnScanMatch(ctx, &runbook.ScanEvent{Match: runbook.ScanMatch{Pattern: "Error"}})

	assert.InDelta(t, 1, testutil.ToFloat64(m.StepsTotal.WithLabelValues("test", runbook.StatusPassed)), 0.001)
	assert.InDelta(t, 2, testutil.ToFloat64(m.ScanMatches.WithLabelValues("Error")), 0.001)
}
