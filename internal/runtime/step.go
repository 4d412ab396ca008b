package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/tessera-io/tessera/pkg/runbook"
)

var varPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// interpolate substitutes ${var} references from vars. Unknown references
// are an error rather than an empty string, so typos fail loudly.
func interpolate(s string, vars map[string]string) (string, error) {
	var missing []string
	out := varPattern.ReplaceAllStringFunc(s, func(m string) string {
		name := varPattern.FindStringSubmatch(m)[1]
		v, ok := vars[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("undefined variable(s): %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// runStep executes one step and returns its result. It never returns an
// error: every failure mode is encoded in the result.
func (e *Engine) runStep(ctx context.Context, state *runbook.RunState, as runbook.AddressedStep, scanner *runbook.Scanner, logFile io.Writer) runbook.StepResult {
	step := as.Step
	result := runbook.StepResult{
		Stage:   as.Stage,
		Name:    step.Name,
		Status:  runbook.StatusRunning,
		Started: time.Now().UTC(),
	}

	e.logger.Info("step start", "run_id", state.ID, "stage", as.Stage, "step", step.Name)
	if e.hooks.OnStepStart != nil {
		e.hooks.OnStepStart(ctx, &runbook.StepEvent{
			RunID: state.ID, Stage: as.Stage, Step: step.Name, Timestamp: result.Started,
		})
	}
	fmt.Fprintf(logFile, "---- step: %s ----\n", step.Name)

	switch {
	case e.dryRun && step.Kind != runbook.StepKindSnapshot:
		result.Status = runbook.StatusSkipped
		fmt.Fprintln(logFile, "(dry run, skipped)")
	case step.Kind == runbook.StepKindSnapshot:
		e.runSnapshotStep(state, step, &result, logFile)
	default:
		e.runCommandStep(ctx, state, step, scanner, &result, logFile)
	}

	result.Duration = time.Since(result.Started)

	e.logger.Info("step end",
		"run_id", state.ID, "step", step.Name,
		"status", result.Status, "duration", result.Duration)
	if e.hooks.OnStepEnd != nil {
		e.hooks.OnStepEnd(ctx, &runbook.StepEvent{
			RunID: state.ID, Stage: as.Stage, Step: step.Name,
			Timestamp: time.Now().UTC(), Result: &result,
		})
	}
	return result
}

func (e *Engine) runCommandStep(ctx context.Context, state *runbook.RunState, step runbook.Step, scanner *runbook.Scanner, result *runbook.StepResult, logFile io.Writer) {
	argv, dir, env, err := e.resolveCommand(step, state.Vars)
	if err != nil {
		result.Status = runbook.StatusFailed
		result.Failure = runbook.FailureStart
		result.Error = err.Error()
		return
	}

	runCtx := ctx
	cancel := context.CancelFunc(func() {})
	if step.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, step.Timeout)
	}
	defer cancel()

	var stdout, combined bytes.Buffer
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdout = io.MultiWriter(logWriter(logFile, &combined), &stdout)
	cmd.Stderr = logWriter(logFile, &combined)

	err = cmd.Run()
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	} else {
		result.ExitCode = -1
	}

	switch {
	case runCtx.Err() == context.DeadlineExceeded:
		result.Status = runbook.StatusFailed
		result.Failure = runbook.FailureTimeout
		result.Error = fmt.Sprintf("timed out after %s", step.Timeout)
		return
	case runCtx.Err() != nil:
		// Parent cancellation; the engine turns this into a cancelled run.
		result.Status = runbook.StatusFailed
		result.Failure = runbook.FailureTimeout
		result.Error = runCtx.Err().Error()
		return
	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.Status = runbook.StatusFailed
			result.Failure = runbook.FailureExit
			result.Error = fmt.Sprintf("exit status %d", result.ExitCode)
		} else {
			result.Status = runbook.StatusFailed
			result.Failure = runbook.FailureStart
			result.Error = err.Error()
		}
		return
	}

	// The output scan replaces the old manual `grep Error log`.
	if !step.SkipScan {
		matches := scanner.Scan(combined.String())
		result.Matches = matches
		for _, m := range matches {
			if e.hooks.OnScanMatch != nil {
				e.hooks.OnScanMatch(ctx, &runbook.ScanEvent{
					RunID: state.ID, Stage: result.Stage, Step: step.Name,
					Match: m, Timestamp: time.Now().UTC(),
				})
			}
		}
		if len(matches) > 0 {
			result.Status = runbook.StatusFailed
			result.Failure = runbook.FailureScan
			result.Error = fmt.Sprintf("output matched %d fail pattern(s)", len(matches))
			return
		}
	}

	if len(step.Extract) > 0 {
		if err := extractVars(step.Extract, stdout.Bytes(), state.Vars); err != nil {
			result.Status = runbook.StatusFailed
			result.Failure = runbook.FailureExit
			result.Error = err.Error()
			return
		}
	}

	result.Status = runbook.StatusPassed
}

// resolveCommand interpolates variables and builds argv, working directory
// and environment for a command step.
func (e *Engine) resolveCommand(step runbook.Step, vars map[string]string) (argv []string, dir string, env []string, err error) {
	if step.Shell != "" {
		line, err := interpolate(step.Shell, vars)
		if err != nil {
			return nil, "", nil, err
		}
		argv = []string{"sh", "-c", line}
	} else {
		argv = make([]string, len(step.Run))
		for i, a := range step.Run {
			argv[i], err = interpolate(a, vars)
			if err != nil {
				return nil, "", nil, err
			}
		}
	}
	if len(argv) == 0 || argv[0] == "" {
		return nil, "", nil, fmt.Errorf("empty command")
	}

	dir = e.workDir
	if step.Dir != "" {
		sub, err := interpolate(step.Dir, vars)
		if err != nil {
			return nil, "", nil, err
		}
		if filepath.IsAbs(sub) {
			dir = sub
		} else {
			dir = filepath.Join(e.workDir, sub)
		}
	}

	env = os.Environ()
	for k, v := range step.Env {
		iv, err := interpolate(v, vars)
		if err != nil {
			return nil, "", nil, err
		}
		env = append(env, k+"="+iv)
	}
	// Every runbook variable is also visible to the subprocess.
	for k, v := range vars {
		env = append(env, "TESSERA_VAR_"+strings.ToUpper(k)+"="+v)
	}
	return argv, dir, env, nil
}

// extractVars evaluates JSONPath expressions against the step's stdout and
// stores the results as runbook variables.
func extractVars(extract map[string]string, stdout []byte, vars map[string]string) error {
	var doc any
	if err := json.Unmarshal(bytes.TrimSpace(stdout), &doc); err != nil {
		return fmt.Errorf("extract: stdout is not JSON: %w", err)
	}
	for name, path := range extract {
		val, err := jsonpath.Get(path, doc)
		if err != nil {
			return fmt.Errorf("extract %q: %w", name, err)
		}
		vars[name] = fmt.Sprintf("%v", val)
	}
	return nil
}
