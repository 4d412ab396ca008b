// Package runbook defines the checklist model: a runbook is an ordered list
// of stages, each an ordered list of steps, plus the scanning and reporting
// types the engine produces while executing one.
package runbook

import "time"

// StepKind constants define what a step actually executes.
const (
	// StepKindCommand runs an argv (or a shell line) as a subprocess.
	StepKindCommand = "command"
	// StepKindSnapshot renders a mesh shape to a PNG, used for gallery
	// checks in release runbooks.
	StepKindSnapshot = "snapshot"
)

// Runbook is a named, ordered checklist.
type Runbook struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Vars seeds the interpolation environment. Steps may override values
	// via extraction; flags may override at start time.
	Vars map[string]string `json:"vars,omitempty" yaml:"vars,omitempty"`

	// FailPatterns are substrings that mark captured output as failed.
	// Empty means DefaultFailPatterns.
	FailPatterns []string `json:"fail_patterns,omitempty" yaml:"fail_patterns,omitempty"`

	Stages []Stage `json:"stages" yaml:"stages"`
}

// Stage groups related steps under a name.
type Stage struct {
	Name  string `json:"name" yaml:"name"`
	Steps []Step `json:"steps" yaml:"steps"`
}

// Step is one checklist entry.
type Step struct {
	Name string `json:"name" yaml:"name"`

	// Kind selects the executor; empty means StepKindCommand.
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`

	// Run is the argv to execute. Mutually exclusive with Shell.
	Run []string `json:"run,omitempty" yaml:"run,omitempty"`
	// Shell is a single line handed to `sh -c`.
	Shell string `json:"shell,omitempty" yaml:"shell,omitempty"`

	Dir string            `json:"dir,omitempty" yaml:"dir,omitempty"`
	Env map[string]string `json:"env,omitempty" yaml:"env,omitempty"`

	Timeout time.Duration `json:"timeout,omitempty" yaml:"-"`

	// ContinueOnError lets the run proceed past a failed step.
	ContinueOnError bool `json:"continue_on_error,omitempty" yaml:"continue_on_error,omitempty"`

	// SkipScan exempts this step's output from fail-pattern scanning,
	// for steps whose legitimate output mentions errors (e.g. grepping
	// a log for them).
	SkipScan bool `json:"skip_scan,omitempty" yaml:"skip_scan,omitempty"`

	// Extract maps variable names to JSONPath expressions evaluated
	// against the step's stdout when it parses as JSON.
	Extract map[string]string `json:"extract,omitempty" yaml:"extract,omitempty"`

	// With carries kind-specific parameters for builtin steps.
	With map[string]any `json:"with,omitempty" yaml:"with,omitempty"`
}

// Steps returns all steps in execution order, with their stage names.
func (r *Runbook) Steps() []AddressedStep {
	var out []AddressedStep
	for _, st := range r.Stages {
		for _, s := range st.Steps {
			out = append(out, AddressedStep{Stage: st.Name, Step: s})
		}
	}
	return out
}

// AddressedStep pairs a step with the stage it belongs to.
type AddressedStep struct {
	Stage string
	Step  Step
}

// NSteps returns the total step count.
func (r *Runbook) NSteps() int {
	n := 0
	for _, st := range r.Stages {
		n += len(st.Steps)
	}
	return n
}
