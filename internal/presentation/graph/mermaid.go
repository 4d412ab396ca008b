// Package graph renders a runbook as a Mermaid flowchart, optionally
// overlaying the pass/fail state of a run.
package graph

import (
	"fmt"
	"strings"

	"github.com/tessera-io/tessera/pkg/runbook"
)

// Overlay carries run results to color the graph with.
type Overlay struct {
	State *runbook.RunState
}

// GenerateMermaid produces Mermaid flowchart syntax for the runbook.
// Stages become subgraphs, steps become nodes chained in execution order.
// Snapshot steps render as subroutines. With an overlay, passed steps are
// green, failed red, skipped gray.
func GenerateMermaid(rb *runbook.Runbook, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	statuses := map[string]string{}
	if overlay != nil && overlay.State != nil {
		for _, s := range overlay.State.Steps {
			statuses[s.Stage+"/"+s.Name] = s.Status
		}
	}

	var classLines []string
	prev := ""
	for si, stage := range rb.Stages {
		sb.WriteString(fmt.Sprintf("    subgraph %s[\"%s\"]\n", sanitizeID(stage.Name), stage.Name))
		for pi, step := range stage.Steps {
			id := fmt.Sprintf("s%d_%d", si, pi)

			opener, closer := "[", "]"
			if step.Kind == runbook.StepKindSnapshot {
				opener, closer = "[[", "]]" // subroutine shape
			}
			label := step.Name
			if step.Timeout > 0 {
				label = fmt.Sprintf("%s <br/> ⏱️ %s", step.Name, step.Timeout)
			}
			sb.WriteString(fmt.Sprintf("        %s%s\"%s\"%s\n", id, opener, label, closer))

			switch statuses[stage.Name+"/"+step.Name] {
			case runbook.StatusPassed:
				classLines = append(classLines, fmt.Sprintf("    class %s passed\n", id))
			case runbook.StatusFailed:
				classLines = append(classLines, fmt.Sprintf("    class %s failed\n", id))
			case runbook.StatusSkipped:
				classLines = append(classLines, fmt.Sprintf("    class %s skipped\n", id))
			}

			if prev != "" {
				classLines = append(classLines, fmt.Sprintf("    %s --> %s\n", prev, id))
			}
			prev = id
		}
		sb.WriteString("    end\n")
	}

	for _, l := range classLines {
		sb.WriteString(l)
	}
	if len(statuses) > 0 {
		sb.WriteString("    classDef passed fill:#22c55e,color:#fff\n")
		sb.WriteString("    classDef failed fill:#ef4444,color:#fff\n")
		sb.WriteString("    classDef skipped fill:#6b7280,color:#fff\n")
	}
	return sb.String()
}

func sanitizeID(s string) string {
	var out strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out.WriteRune(r)
		default:
			out.WriteRune('_')
		}
	}
	return "stage_" + out.String()
}
