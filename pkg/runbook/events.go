package runbook

import (
	"context"
	"time"
)

// StageEvent marks entry into a stage.
type StageEvent struct {
	RunID     string    `json:"run_id"`
	Stage     string    `json:"stage"`
	Timestamp time.Time `json:"timestamp"`
}

// StepEvent marks the start or end of a step.
type StepEvent struct {
	RunID     string    `json:"run_id"`
	Stage     string    `json:"stage"`
	Step      string    `json:"step"`
	Timestamp time.Time `json:"timestamp"`

	// Result is set on end events only.
	Result *StepResult `json:"result,omitempty"`
}

// ScanEvent reports one fail-pattern hit as it is found.
type ScanEvent struct {
	RunID     string    `json:"run_id"`
	Stage     string    `json:"stage"`
	Step      string    `json:"step"`
	Match     ScanMatch `json:"match"`
	Timestamp time.Time `json:"timestamp"`
}

// LifecycleHooks defines callbacks for engine observability. Any field may
// be nil.
type LifecycleHooks struct {
	OnStageEnter func(context.Context, *StageEvent)
	OnStepStart  func(context.Context, *StepEvent)
	OnStepEnd    func(context.Context, *StepEvent)
	OnScanMatch  func(context.Context, *ScanEvent)
}

// Merge returns hooks that invoke both receivers in order.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStageEnter: mergeFn(h.OnStageEnter, other.OnStageEnter),
		OnStepStart:  mergeFn(h.OnStepStart, other.OnStepStart),
		OnStepEnd:    mergeFn(h.OnStepEnd, other.OnStepEnd),
		OnScanMatch:  mergeFn(h.OnScanMatch, other.OnScanMatch),
	}
}

func mergeFn[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
