// Package runtime executes runbooks: it runs steps in order, captures their
// output, scans it for failure patterns, persists state after every step and
// fires lifecycle hooks along the way.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tessera-io/tessera/internal/logging"
	"github.com/tessera-io/tessera/pkg/ports"
	"github.com/tessera-io/tessera/pkg/runbook"
)

// Engine executes one runbook definition, possibly many times.
type Engine struct {
	rb     *runbook.Runbook
	store  ports.RunStore
	logger *slog.Logger
	hooks  runbook.LifecycleHooks

	workDir string
	logDir  string
	dryRun  bool
	vars    map[string]string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Default is a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithStore sets where run state is persisted. Without a store the engine
// still runs, but cannot resume.
func WithStore(s ports.RunStore) Option {
	return func(e *Engine) { e.store = s }
}

// WithHooks attaches lifecycle hooks; repeated options merge.
func WithHooks(h runbook.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = e.hooks.Merge(h) }
}

// WithWorkDir sets the directory steps run in. Step dir fields are resolved
// relative to it.
func WithWorkDir(dir string) Option {
	return func(e *Engine) { e.workDir = dir }
}

// WithLogDir sets where captured run logs are written.
// Default is <workdir>/.tessera/logs.
func WithLogDir(dir string) Option {
	return func(e *Engine) { e.logDir = dir }
}

// WithDryRun makes the engine record every command step as skipped instead
// of executing it. Builtin steps still run.
func WithDryRun(dry bool) Option {
	return func(e *Engine) { e.dryRun = dry }
}

// WithVars overrides runbook variables at start time.
func WithVars(vars map[string]string) Option {
	return func(e *Engine) {
		if e.vars == nil {
			e.vars = map[string]string{}
		}
		for k, v := range vars {
			e.vars[k] = v
		}
	}
}

// New builds an engine for the given runbook.
func New(rb *runbook.Runbook, opts ...Option) (*Engine, error) {
	if rb == nil {
		return nil, fmt.Errorf("runbook cannot be nil")
	}
	if err := runbook.Validate(rb); err != nil {
		return nil, err
	}
	e := &Engine{
		rb:     rb,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workDir == "" {
		e.workDir = "."
	}
	if e.logDir == "" {
		e.logDir = filepath.Join(e.workDir, ".tessera", "logs")
	}
	return e, nil
}

// NewRunID returns a timestamp-based run identifier. Lexicographic order is
// chronological order, which the file store's listing relies on.
func NewRunID() string {
	return time.Now().UTC().Format("20060102-150405.000")
}

// Run executes the runbook from the beginning under a fresh run ID.
// The returned state is complete even when err is ErrRunFailed.
func (e *Engine) Run(ctx context.Context) (*runbook.RunState, error) {
	state := &runbook.RunState{
		ID:      NewRunID(),
		Runbook: e.rb.Name,
		Status:  runbook.StatusRunning,
		Vars:    e.seedVars(),
		Started: time.Now().UTC(),
	}
	return e.execute(ctx, state)
}

// Start begins a run in the background and returns its ID immediately. The
// run outlives ctx cancellation; callers poll the store for progress.
func (e *Engine) Start(ctx context.Context, vars map[string]string) string {
	state := &runbook.RunState{
		ID:      NewRunID(),
		Runbook: e.rb.Name,
		Status:  runbook.StatusRunning,
		Vars:    e.seedVars(),
		Started: time.Now().UTC(),
	}
	for k, v := range vars {
		state.Vars[k] = v
	}
	e.persist(ctx, state)
	go func() {
		if _, err := e.execute(context.WithoutCancel(ctx), state); err != nil && !IsRunFailed(err) {
			e.logger.Error("background run", "error", err, "run_id", state.ID)
		}
	}()
	return state.ID
}

// Resume loads a persisted run and continues from its next step. Completed
// runs come back unchanged.
func (e *Engine) Resume(ctx context.Context, runID string) (*runbook.RunState, error) {
	if e.store == nil {
		return nil, fmt.Errorf("resume requires a run store")
	}
	state, err := e.store.Load(ctx, runID)
	if err != nil {
		return nil, err
	}
	if state.Runbook != e.rb.Name {
		return nil, fmt.Errorf("run %s belongs to runbook %q, not %q", runID, state.Runbook, e.rb.Name)
	}
	if state.Status != runbook.StatusRunning && state.Status != runbook.StatusCancelled {
		return state, nil
	}
	e.logger.Info("resuming run", "run_id", runID, "next_step", state.NextStep)
	state.Status = runbook.StatusRunning
	return e.execute(ctx, state)
}

func (e *Engine) seedVars() map[string]string {
	vars := map[string]string{}
	for k, v := range e.rb.Vars {
		vars[k] = v
	}
	for k, v := range e.vars {
		vars[k] = v
	}
	return vars
}

func (e *Engine) execute(ctx context.Context, state *runbook.RunState) (*runbook.RunState, error) {
	steps := e.rb.Steps()
	scanner := runbook.NewScanner(e.rb.FailPatterns)

	logFile, err := e.openLog(state)
	if err != nil {
		return nil, err
	}
	defer logFile.Close()

	failed := false
	lastStage := ""
	if state.NextStep > 0 && state.NextStep <= len(steps) {
		lastStage = steps[state.NextStep-1].Stage
	}

	for i := state.NextStep; i < len(steps); i++ {
		as := steps[i]

		if as.Stage != lastStage {
			lastStage = as.Stage
			e.fireStageEnter(ctx, state, as.Stage)
			fmt.Fprintf(logFile, "==== stage: %s ====\n", as.Stage)
		}

		if err := ctx.Err(); err != nil {
			state.Status = runbook.StatusCancelled
			e.persist(ctx, state)
			return state, err
		}

		result := e.runStep(ctx, state, as, scanner, logFile)
		state.Steps = append(state.Steps, result)
		state.NextStep = i + 1
		e.persist(ctx, state)

		if result.Status == runbook.StatusFailed {
			if result.Failure == runbook.FailureTimeout && ctx.Err() != nil {
				// The whole run was cancelled, not just this step.
				state.Status = runbook.StatusCancelled
				e.persist(ctx, state)
				return state, ctx.Err()
			}
			failed = true
			if !as.Step.ContinueOnError {
				break
			}
		}
	}

	state.Ended = time.Now().UTC()
	if failed {
		state.Status = runbook.StatusFailed
	} else {
		state.Status = runbook.StatusPassed
	}
	e.persist(ctx, state)

	e.logger.Info("run finished",
		"run_id", state.ID, "status", state.Status,
		"steps", len(state.Steps), "matches", state.TotalMatches())

	if failed {
		return state, fmt.Errorf("%w: %d step(s) failed", runbook.ErrRunFailed, len(state.FailedSteps()))
	}
	return state, nil
}

// openLog creates (or reopens, on resume) the captured-output log.
func (e *Engine) openLog(state *runbook.RunState) (*os.File, error) {
	if err := os.MkdirAll(e.logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	path := filepath.Join(e.logDir, state.ID+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	state.LogPath = path
	return f, nil
}

// persist saves state if a store is configured. Persistence failures are
// logged, not fatal: losing resume data should not abort a healthy run.
func (e *Engine) persist(ctx context.Context, state *runbook.RunState) {
	if e.store == nil {
		return
	}
	if err := e.store.Save(context.WithoutCancel(ctx), state.ID, state); err != nil {
		e.logger.Error("persist run state", "error", err, "run_id", state.ID)
	}
}

func (e *Engine) fireStageEnter(ctx context.Context, state *runbook.RunState, stage string) {
	e.logger.Info("stage", "run_id", state.ID, "stage", stage)
	if e.hooks.OnStageEnter != nil {
		e.hooks.OnStageEnter(ctx, &runbook.StageEvent{
			RunID: state.ID, Stage: stage, Timestamp: time.Now().UTC(),
		})
	}
}

// IsRunFailed reports whether err is the engine's step-failure verdict, as
// opposed to an infrastructure error.
func IsRunFailed(err error) bool {
	return errors.Is(err, runbook.ErrRunFailed)
}

// logWriter duplicates step output into the run log with no buffering, so a
// crashed run still leaves a usable log behind.
func logWriter(logFile io.Writer, buf io.Writer) io.Writer {
	return io.MultiWriter(logFile, buf)
}
