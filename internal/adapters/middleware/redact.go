// Package middleware wraps run stores to add behavior, independent of the
// backend.
package middleware

import (
	"context"
	"regexp"

	"github.com/tessera-io/tessera/pkg/ports"
	"github.com/tessera-io/tessera/pkg/runbook"
)

// Middleware allows wrapping a RunStore to add behavior.
type Middleware func(ports.RunStore) ports.RunStore

// DefaultSecretPatterns match variable names that commonly hold credentials.
// Steps can extract tokens from command output into vars, and those must not
// end up in the store in the clear.
var DefaultSecretPatterns = []string{`(?i)token`, `(?i)secret`, `(?i)password`, `(?i)api_?key`}

type redactMiddleware struct {
	next     ports.RunStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks the values of variables
// whose names match the patterns before persisting. The in-memory state the
// engine keeps working with is untouched.
func NewRedactMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.RunStore) ports.RunStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactMiddleware) Save(ctx context.Context, runID string, state *runbook.RunState) error {
	if !m.hasSecrets(state.Vars) {
		return m.next.Save(ctx, runID, state)
	}

	// Clone so the engine's copy keeps the real values for interpolation.
	cloned := *state
	cloned.Vars = make(map[string]string, len(state.Vars))
	for k, v := range state.Vars {
		if m.matches(k) {
			cloned.Vars[k] = "***"
		} else {
			cloned.Vars[k] = v
		}
	}
	return m.next.Save(ctx, runID, &cloned)
}

func (m *redactMiddleware) Load(ctx context.Context, runID string) (*runbook.RunState, error) {
	return m.next.Load(ctx, runID)
}

func (m *redactMiddleware) Delete(ctx context.Context, runID string) error {
	return m.next.Delete(ctx, runID)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *redactMiddleware) hasSecrets(vars map[string]string) bool {
	for k := range vars {
		if m.matches(k) {
			return true
		}
	}
	return false
}

func (m *redactMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
