package runtime

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-io/tessera/internal/adapters/file"
	"github.com/tessera-io/tessera/pkg/runbook"
)

func testEngine(t *testing.T, rb *runbook.Runbook, opts ...Option) *Engine {
	t.Helper()
	dir := t.TempDir()
	opts = append([]Option{WithWorkDir(dir), WithLogDir(filepath.Join(dir, "logs"))}, opts...)
	e, err := New(rb, opts...)
	require.NoError(t, err)
	return e
}

func singleStep(step runbook.Step) *runbook.Runbook {
	return &runbook.Runbook{
		Name:   "test",
		Stages: []runbook.Stage{{Name: "main", Steps: []runbook.Step{step}}},
	}
}

func TestRunPasses(t *testing.T) {
	rb := &runbook.Runbook{
		Name: "ok",
		Stages: []runbook.Stage{
			{Name: "one", Steps: []runbook.Step{
				{Name: "hello", Run: []string{"echo", "hello"}},
			}},
			{Name: "two", Steps: []runbook.Step{
				{Name: "world", Shell: "echo world"},
			}},
		},
	}
	e := testEngine(t, rb)

	state, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, runbook.StatusPassed, state.Status)
	require.Len(t, state.Steps, 2)
	assert.Equal(t, runbook.StatusPassed, state.Steps[0].Status)
	assert.Equal(t, 0, state.Steps[0].ExitCode)
	assert.True(t, state.Passed())

	// Output landed in the captured log.
	data, err := os.ReadFile(state.LogPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "==== stage: two ====")
}

func TestRunFailsOnExitCode(t *testing.T) {
	e := testEngine(t, singleStep(runbook.Step{Name: "boom", Shell: "exit 3"}))

	state, err := e.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsRunFailed(err))
	assert.Equal(t, runbook.StatusFailed, state.Status)
	require.Len(t, state.Steps, 1)
	assert.Equal(t, runbook.FailureExit, state.Steps[0].Failure)
	assert.Equal(t, 3, state.Steps[0].ExitCode)
}

func TestRunFailsOnScanMatch(t *testing.T) {
	e := testEngine(t, singleStep(runbook.Step{
		Name:  "noisy",
		Shell: "echo ok; echo 'Error: something broke'; echo done",
	}))

	state, err := e.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsRunFailed(err))

	step := state.Steps[0]
	assert.Equal(t, runbook.FailureScan, step.Failure)
	require.Len(t, step.Matches, 1)
	assert.Equal(t, 2, step.Matches[0].Line)
	assert.Equal(t, "Error", step.Matches[0].Pattern)
	// The exit code was fine; only the scan failed it.
	assert.Equal(t, 0, step.ExitCode)
}

func TestSkipScanLetsNoisyStepsPass(t *testing.T) {
	e := testEngine(t, singleStep(runbook.Step{
		Name:     "grep step",
		Shell:    "echo 'Error: expected, we are grepping for errors'",
		SkipScan: true,
	}))

	state, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, runbook.StatusPassed, state.Status)
	assert.Empty(t, state.Steps[0].Matches)
}

func TestContinueOnError(t *testing.T) {
	rb := &runbook.Runbook{
		Name: "tolerant",
		Stages: []runbook.Stage{{Name: "main", Steps: []runbook.Step{
			{Name: "fails", Shell: "exit 1", ContinueOnError: true},
			{Name: "still runs", Run: []string{"echo", "survivor"}},
		}}},
	}
	e := testEngine(t, rb)

	state, err := e.Run(context.Background())
	require.Error(t, err) // the run still reports failure overall
	require.Len(t, state.Steps, 2)
	assert.Equal(t, runbook.StatusFailed, state.Steps[0].Status)
	assert.Equal(t, runbook.StatusPassed, state.Steps[1].Status)
}

func TestStopsAtFirstFatalFailure(t *testing.T) {
	rb := &runbook.Runbook{
		Name: "strict",
		Stages: []runbook.Stage{{Name: "main", Steps: []runbook.Step{
			{Name: "fails", Shell: "exit 1"},
			{Name: "never runs", Run: []string{"echo", "unreachable"}},
		}}},
	}
	e := testEngine(t, rb)

	state, _ := e.Run(context.Background())
	require.Len(t, state.Steps, 1)
	assert.Equal(t, 1, state.NextStep)
}

func TestTimeout(t *testing.T) {
	e := testEngine(t, singleStep(runbook.Step{
		Name:    "slow",
		Shell:   "sleep 5",
		Timeout: 100 * time.Millisecond,
	}))

	start := time.Now()
	state, err := e.Run(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
	assert.Equal(t, runbook.FailureTimeout, state.Steps[0].Failure)
}

func TestVarInterpolationAndEnv(t *testing.T) {
	rb := singleStep(runbook.Step{
		Name:  "greet",
		Shell: "echo \"version=${version} env=$TESSERA_VAR_VERSION extra=$EXTRA\"",
		Env:   map[string]string{"EXTRA": "x-${version}"},
	})
	rb.Vars = map[string]string{"version": "9.9.9"}
	dir := t.TempDir()
	e, err := New(rb, WithWorkDir(dir), WithLogDir(filepath.Join(dir, "logs")))
	require.NoError(t, err)

	state, err := e.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(state.LogPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version=9.9.9 env=9.9.9 extra=x-9.9.9")
}

func TestWithVarsOverride(t *testing.T) {
	rb := singleStep(runbook.Step{Name: "v", Shell: "echo v=${version}"})
	rb.Vars = map[string]string{"version": "0.0.1"}
	e := testEngine(t, rb, WithVars(map[string]string{"version": "2.0.0"}))

	state, err := e.Run(context.Background())
	require.NoError(t, err)
	data, _ := os.ReadFile(state.LogPath)
	assert.Contains(t, string(data), "v=2.0.0")
}

func TestExtractFeedsLaterSteps(t *testing.T) {
	rb := &runbook.Runbook{
		Name: "extract",
		Stages: []runbook.Stage{{Name: "main", Steps: []runbook.Step{
			{
				Name:    "emit",
				Shell:   `echo '{"release": {"tag": "v1.4.0"}}'`,
				Extract: map[string]string{"tag": "$.release.tag"},
			},
			{Name: "use", Shell: "echo got=${tag}"},
		}}},
	}
	e := testEngine(t, rb)

	state, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1.4.0", state.Vars["tag"])

	data, _ := os.ReadFile(state.LogPath)
	assert.Contains(t, string(data), "got=v1.4.0")
}

func TestDryRunSkipsCommands(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "marker")
	e := testEngine(t, singleStep(runbook.Step{
		Name: "side effect",
		Run:  []string{"touch", marker},
	}), WithDryRun(true))

	state, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, runbook.StatusSkipped, state.Steps[0].Status)
	_, statErr := os.Stat(marker)
	assert.True(t, os.IsNotExist(statErr))
}

func TestStartFailure(t *testing.T) {
	e := testEngine(t, singleStep(runbook.Step{
		Name: "nope",
		Run:  []string{"definitely-not-a-real-binary-2026"},
	}))

	state, _ := e.Run(context.Background())
	assert.Equal(t, runbook.FailureStart, state.Steps[0].Failure)
}

func TestResume(t *testing.T) {
	dir := t.TempDir()
	store := file.New(filepath.Join(dir, "runs"))
	rb := &runbook.Runbook{
		Name: "resumable",
		Stages: []runbook.Stage{{Name: "main", Steps: []runbook.Step{
			{Name: "first", Run: []string{"echo", "one"}},
			{Name: "second", Run: []string{"echo", "two"}},
		}}},
	}
	e, err := New(rb, WithWorkDir(dir), WithLogDir(filepath.Join(dir, "logs")), WithStore(store))
	require.NoError(t, err)

	// Simulate an interrupted run: step one done, run still marked running.
	state, err := e.Run(context.Background())
	require.NoError(t, err)

	ctx := context.Background()
	saved, err := store.Load(ctx, state.ID)
	require.NoError(t, err)
	saved.Status = runbook.StatusRunning
	saved.NextStep = 1
	saved.Steps = saved.Steps[:1]
	require.NoError(t, store.Save(ctx, state.ID, saved))

	resumed, err := e.Resume(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, runbook.StatusPassed, resumed.Status)
	require.Len(t, resumed.Steps, 2)
	assert.Equal(t, "second", resumed.Steps[1].Name)
}

func TestResumeCompletedRunIsNoop(t *testing.T) {
	dir := t.TempDir()
	store := file.New(filepath.Join(dir, "runs"))
	rb := singleStep(runbook.Step{Name: "only", Run: []string{"echo", "x"}})
	e, err := New(rb, WithWorkDir(dir), WithLogDir(filepath.Join(dir, "logs")), WithStore(store))
	require.NoError(t, err)

	state, err := e.Run(context.Background())
	require.NoError(t, err)

	again, err := e.Resume(context.Background(), state.ID)
	require.NoError(t, err)
	assert.Len(t, again.Steps, 1)
}

func TestResumeWrongRunbook(t *testing.T) {
	dir := t.TempDir()
	store := file.New(filepath.Join(dir, "runs"))
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "r1", &runbook.RunState{ID: "r1", Runbook: "other", Status: runbook.StatusRunning}))

	e, err := New(singleStep(runbook.Step{Name: "a", Run: []string{"echo"}}),
		WithWorkDir(dir), WithLogDir(filepath.Join(dir, "logs")), WithStore(store))
	require.NoError(t, err)

	_, err = e.Resume(ctx, "r1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "belongs to runbook")
}

func TestHooksFire(t *testing.T) {
	var events []string
	hooks := runbook.LifecycleHooks{
		OnStageEnter: func(_ context.Context, e *runbook.StageEvent) {
			events = append(events, "stage:"+e.Stage)
		},
		OnStepStart: func(_ context.Context, e *runbook.StepEvent) {
			events = append(events, "start:"+e.Step)
		},
		OnStepEnd: func(_ context.Context, e *runbook.StepEvent) {
			events = append(events, "end:"+e.Step+":"+e.Result.Status)
		},
		OnScanMatch: func(_ context.Context, e *runbook.ScanEvent) {
			events = append(events, "match:"+e.Match.Pattern)
		},
	}
	rb := &runbook.Runbook{
		Name: "hooked",
		Stages: []runbook.Stage{{Name: "main", Steps: []runbook.Step{
			{Name: "ok", Run: []string{"echo", "fine"}},
			{Name: "bad", Shell: "echo 'Error here'", ContinueOnError: true},
		}}},
	}
	e := testEngine(t, rb, WithHooks(hooks))

	_, _ = e.Run(context.Background())
	assert.Equal(t, []string{
		"stage:main",
		"start:ok", "end:ok:passed",
		"start:bad", "match:Error", "end:bad:failed",
	}, events)
}

func TestSnapshotStep(t *testing.T) {
	dir := t.TempDir()
	rb := singleStep(runbook.Step{
		Name: "gallery",
		Kind: runbook.StepKindSnapshot,
		With: map[string]any{
			"shape": "cube", "out": "shots/cube.png",
			"width": 64, "height": 48, "color": "red",
		},
	})
	e, err := New(rb, WithWorkDir(dir), WithLogDir(filepath.Join(dir, "logs")))
	require.NoError(t, err)

	state, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, runbook.StatusPassed, state.Status)

	_, statErr := os.Stat(filepath.Join(dir, "shots", "cube.png"))
	assert.NoError(t, statErr)
}

func TestSnapshotStepBadShape(t *testing.T) {
	e := testEngine(t, singleStep(runbook.Step{
		Name: "bad",
		Kind: runbook.StepKindSnapshot,
		With: map[string]any{"shape": "teapot", "out": "x.png"},
	}))

	state, err := e.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, runbook.FailureStart, state.Steps[0].Failure)
	assert.Contains(t, state.Steps[0].Error, "teapot")
}

func TestCancelledRun(t *testing.T) {
	rb := &runbook.Runbook{
		Name: "cancel",
		Stages: []runbook.Stage{{Name: "main", Steps: []runbook.Step{
			{Name: "slow", Shell: "sleep 10"},
		}}},
	}
	e := testEngine(t, rb)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(150 * time.Millisecond)
		cancel()
	}()

	state, err := e.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, runbook.StatusCancelled, state.Status)
}

func TestInterpolateStrict(t *testing.T) {
	vars := map[string]string{"a": "1"}

	out, err := interpolate("x-${a}", vars)
	require.NoError(t, err)
	assert.Equal(t, "x-1", out)

	_, err = interpolate("${a}-${missing}", vars)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "missing"))
}
