package runbook

import "time"

// Status values for steps and whole runs.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusPassed    = "passed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
	StatusCancelled = "cancelled"
)

// FailureKind distinguishes how a step failed.
type FailureKind string

const (
	// FailureStart means the process could not be started at all.
	FailureStart FailureKind = "start"
	// FailureExit means the process exited non-zero.
	FailureExit FailureKind = "exit"
	// FailureTimeout means the step hit its deadline.
	FailureTimeout FailureKind = "timeout"
	// FailureScan means the output matched a fail pattern.
	FailureScan FailureKind = "scan"
)

// StepResult records one executed step.
type StepResult struct {
	Stage    string        `json:"stage"`
	Name     string        `json:"name"`
	Status   string        `json:"status"`
	Failure  FailureKind   `json:"failure,omitempty"`
	ExitCode int           `json:"exit_code"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
	Matches  []ScanMatch   `json:"matches,omitempty"`
}

// RunState is the persisted snapshot of a run. It is saved after every step
// so an interrupted run can resume from NextStep.
type RunState struct {
	ID      string            `json:"id"`
	Runbook string            `json:"runbook"`
	Status  string            `json:"status"`
	Vars    map[string]string `json:"vars,omitempty"`

	// NextStep indexes into Runbook.Steps(): the first step not yet
	// completed.
	NextStep int `json:"next_step"`

	Steps   []StepResult `json:"steps"`
	LogPath string       `json:"log_path,omitempty"`

	Started time.Time `json:"started"`
	Ended   time.Time `json:"ended,omitempty"`
}

// Passed reports whether every recorded step passed or was skipped.
func (s *RunState) Passed() bool {
	if s.Status != StatusPassed {
		return false
	}
	for _, step := range s.Steps {
		if step.Status == StatusFailed {
			return false
		}
	}
	return true
}

// FailedSteps returns the failed step results.
func (s *RunState) FailedSteps() []StepResult {
	var out []StepResult
	for _, step := range s.Steps {
		if step.Status == StatusFailed {
			out = append(out, step)
		}
	}
	return out
}

// TotalMatches counts scan matches across all steps.
func (s *RunState) TotalMatches() int {
	n := 0
	for _, step := range s.Steps {
		n += len(step.Matches)
	}
	return n
}
