package tessera

import (
	"context"
	"log/slog"

	"github.com/tessera-io/tessera/internal/runtime"
	"github.com/tessera-io/tessera/pkg/ports"
	"github.com/tessera-io/tessera/pkg/runbook"
)

// Engine is the high-level entry point for the tessera library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	rb          *runbook.Runbook
	runtime     *runtime.Engine
	runtimeOpts []runtime.Option
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithLogger(logger))
	}
}

// WithStore sets where run state is persisted. Without a store the engine
// still runs, but cannot resume.
func WithStore(store ports.RunStore) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithStore(store))
	}
}

// WithHooks registers lifecycle hooks for observability.
func WithHooks(hooks runbook.LifecycleHooks) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithHooks(hooks))
	}
}

// WithWorkDir sets the directory steps run in.
func WithWorkDir(dir string) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithWorkDir(dir))
	}
}

// WithLogDir sets where captured run logs are written.
func WithLogDir(dir string) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithLogDir(dir))
	}
}

// WithDryRun records command steps as skipped instead of executing them.
func WithDryRun(dry bool) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithDryRun(dry))
	}
}

// WithVars overrides runbook variables at start time.
func WithVars(vars map[string]string) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithVars(vars))
	}
}

// New loads a runbook from a YAML file and builds an engine for it.
func New(path string, opts ...Option) (*Engine, error) {
	rb, err := runbook.Load(path)
	if err != nil {
		return nil, err
	}
	return FromRunbook(rb, opts...)
}

// FromRunbook builds an engine from an already assembled runbook, typically
// one produced by runbook.NewBuilder.
func FromRunbook(rb *runbook.Runbook, opts ...Option) (*Engine, error) {
	e := &Engine{rb: rb}
	for _, opt := range opts {
		opt(e)
	}
	rt, err := runtime.New(rb, e.runtimeOpts...)
	if err != nil {
		return nil, err
	}
	e.runtime = rt
	return e, nil
}

// Runbook returns the definition the engine was built from.
func (e *Engine) Runbook() *runbook.Runbook {
	return e.rb
}

// Run executes the runbook from the beginning under a fresh run ID.
// The returned state is complete even when err reports step failures.
func (e *Engine) Run(ctx context.Context) (*runbook.RunState, error) {
	return e.runtime.Run(ctx)
}

// Start begins a run in the background and returns its ID immediately.
func (e *Engine) Start(ctx context.Context, vars map[string]string) string {
	return e.runtime.Start(ctx, vars)
}

// Resume loads a persisted run and continues from its next step.
func (e *Engine) Resume(ctx context.Context, runID string) (*runbook.RunState, error) {
	return e.runtime.Resume(ctx, runID)
}

// IsRunFailed reports whether err is the engine's step-failure verdict, as
// opposed to an infrastructure error.
func IsRunFailed(err error) bool {
	return runtime.IsRunFailed(err)
}
