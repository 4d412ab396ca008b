// Package metrics exposes prometheus collectors for the runbook engine and
// the renderer, fed through lifecycle hooks.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tessera-io/tessera/pkg/runbook"
)

// Metrics bundles the collectors. Register it once per process.
type Metrics struct {
	StepsTotal   *prometheus.CounterVec
	StepDuration *prometheus.HistogramVec
	ScanMatches  *prometheus.CounterVec
	RendersTotal prometheus.Counter
}

// New builds unregistered collectors.
func New() *Metrics {
	return &Metrics{
		StepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tessera_steps_total",
			Help: "Executed runbook steps by stage and status.",
		}, []string{"stage", "status"}),
		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tessera_step_duration_seconds",
			Help:    "Wall time per runbook step.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"stage"}),
		ScanMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tessera_scan_matches_total",
			Help: "Fail-pattern hits found in captured step output.",
		}, []string{"pattern"}),
		RendersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tessera_renders_total",
			Help: "Snapshot renders performed.",
		}),
	}
}

// Register adds the collectors to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.StepsTotal, m.StepDuration, m.ScanMatches, m.RendersTotal,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() runbook.LifecycleHooks {
	return runbook.LifecycleHooks{
		OnStepEnd: func(ctx context.Context, e *runbook.StepEvent) {
			if e.Result == nil {
				return
			}
			m.StepsTotal.WithLabelValues(e.Stage, e.Result.Status).Inc()
			m.StepDuration.WithLabelValues(e.Stage).Observe(e.Result.Duration.Seconds())
		},
		OnScanMatch: func(ctx context.Context, e *runbook.ScanEvent) {
			m.ScanMatches.WithLabelValues(e.Match.Pattern).Inc()
		},
	}
}
