package runbook

import (
	"bufio"
	"strings"
)

// DefaultFailPatterns are the substrings release logs have always been
// grepped for: errors, tracebacks, and both "Failure"/"failure" via the
// shared suffix.
var DefaultFailPatterns = []string{"Error", "Trace", "ailure"}

// ScanMatch is one offending line in captured output.
type ScanMatch struct {
	Line    int    `json:"line"`
	Pattern string `json:"pattern"`
	Text    string `json:"text"`
}

// Scanner finds fail-pattern matches in captured output. Matching is plain
// case-sensitive substring search, like the grep it replaces.
type Scanner struct {
	patterns []string
}

// NewScanner builds a scanner; nil or empty patterns fall back to
// DefaultFailPatterns.
func NewScanner(patterns []string) *Scanner {
	if len(patterns) == 0 {
		patterns = DefaultFailPatterns
	}
	return &Scanner{patterns: patterns}
}

// Patterns returns the active pattern list.
func (s *Scanner) Patterns() []string { return s.patterns }

// Scan returns every line of output that contains one of the patterns,
// numbered from 1. A line matching several patterns is reported once, with
// the first pattern that hit.
func (s *Scanner) Scan(output string) []ScanMatch {
	var matches []ScanMatch
	sc := bufio.NewScanner(strings.NewReader(output))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		for _, p := range s.patterns {
			if strings.Contains(text, p) {
				matches = append(matches, ScanMatch{Line: line, Pattern: p, Text: text})
				break
			}
		}
	}
	return matches
}
