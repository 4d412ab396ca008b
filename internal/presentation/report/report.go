// Package report turns a run state into a markdown summary, the replacement
// for eyeballing a release checklist log.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tessera-io/tessera/pkg/runbook"
)

// Markdown renders the run as a markdown document.
func Markdown(state *runbook.RunState) string {
	var sb strings.Builder

	icon := statusIcon(state.Status)
	fmt.Fprintf(&sb, "# Run %s %s\n\n", state.ID, icon)
	fmt.Fprintf(&sb, "- **Runbook:** %s\n", state.Runbook)
	fmt.Fprintf(&sb, "- **Status:** %s\n", state.Status)
	if !state.Started.IsZero() {
		fmt.Fprintf(&sb, "- **Started:** %s\n", state.Started.Format("2006-01-02 15:04:05 MST"))
	}
	if !state.Ended.IsZero() {
		fmt.Fprintf(&sb, "- **Duration:** %s\n", state.Ended.Sub(state.Started).Round(1e6))
	}
	if state.LogPath != "" {
		fmt.Fprintf(&sb, "- **Log:** %s\n", state.LogPath)
	}
	sb.WriteString("\n")

	if len(state.Steps) > 0 {
		sb.WriteString("| Stage | Step | Status | Duration | Detail |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for _, s := range state.Steps {
			detail := s.Error
			if detail == "" && len(s.Matches) > 0 {
				detail = fmt.Sprintf("%d scan match(es)", len(s.Matches))
			}
			fmt.Fprintf(&sb, "| %s | %s | %s %s | %s | %s |\n",
				s.Stage, s.Name, statusIcon(s.Status), s.Status,
				s.Duration.Round(1e6), detail)
		}
		sb.WriteString("\n")
	}

	if n := state.TotalMatches(); n > 0 {
		fmt.Fprintf(&sb, "## Scan matches (%d)\n\n", n)
		for _, s := range state.Steps {
			for _, m := range s.Matches {
				fmt.Fprintf(&sb, "- `%s` line %d (pattern `%s`): %s\n",
					s.Name, m.Line, m.Pattern, m.Text)
			}
		}
		sb.WriteString("\n")
	}

	if len(state.Vars) > 0 {
		sb.WriteString("## Variables\n\n")
		for _, k := range sortedKeys(state.Vars) {
			fmt.Fprintf(&sb, "- `%s` = `%s`\n", k, state.Vars[k])
		}
	}
	return sb.String()
}

func statusIcon(status string) string {
	switch status {
	case runbook.StatusPassed:
		return "✅"
	case runbook.StatusFailed:
		return "❌"
	case runbook.StatusRunning:
		return "⏳"
	case runbook.StatusCancelled:
		return "🛑"
	case runbook.StatusSkipped:
		return "⏭️"
	}
	return ""
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
