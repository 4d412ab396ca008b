package runbook

import "errors"

// ErrRunNotFound is returned when a run ID cannot be found in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrRunbookInvalid is returned by Validate when the definition has problems.
var ErrRunbookInvalid = errors.New("invalid runbook")

// ErrRunFailed is returned by the engine when at least one step failed and
// was not marked continue_on_error.
var ErrRunFailed = errors.New("run failed")
