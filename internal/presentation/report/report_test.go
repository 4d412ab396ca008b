package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tessera-io/tessera/pkg/runbook"
)

func TestMarkdown(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	state := &runbook.RunState{
		ID:      "20260301-100000.000",
		Runbook: "release",
		Status:  runbook.StatusFailed,
		Started: started,
		Ended:   started.Add(95 * time.Second),
		LogPath: "/tmp/run.log",
		Vars:    map[string]string{"version": "1.2.3", "tag": "v1.2.3"},
		Steps: []runbook.StepResult{
			{Stage: "test", Name: "unit", Status: runbook.StatusPassed, Duration: 80 * time.Second},
			{Stage: "test", Name: "examples", Status: runbook.StatusFailed,
				Failure: runbook.FailureScan, Error: "output matched 1 fail pattern(s)",
				Matches: []runbook.ScanMatch{{Line: 12, Pattern: "Trace", Text: "Traceback (most recent call last)"}}},
		},
	}

	md := Markdown(state)
	assert.Contains(t, md, "# Run 20260301-100000.000 ❌")
	assert.Contains(t, md, "**Runbook:** release")
	assert.Contains(t, md, "**Duration:** 1m35s")
	assert.Contains(t, md, "| test | unit | ✅ passed |")
	assert.Contains(t, md, "## Scan matches (1)")
	assert.Contains(t, md, "`examples` line 12 (pattern `Trace`)")
	// Variables come out sorted.
	assert.Less(t, strings.Index(md, "`tag`"), strings.Index(md, "`version`"))
}

func TestMarkdownMinimal(t *testing.T) {
	md := Markdown(&runbook.RunState{ID: "r", Runbook: "x", Status: runbook.StatusRunning})
	assert.Contains(t, md, "⏳")
	assert.NotContains(t, md, "## Scan matches")
	assert.NotContains(t, md, "## Variables")
}
