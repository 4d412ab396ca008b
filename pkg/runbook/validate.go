package runbook

import (
	"fmt"
	"regexp"
	"strings"
)

var varRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Validate runs static checks on a runbook definition. All problems are
// collected and reported together, wrapped in ErrRunbookInvalid.
func Validate(rb *Runbook) error {
	var problems []string

	if strings.TrimSpace(rb.Name) == "" {
		problems = append(problems, "runbook has no name")
	}
	if len(rb.Stages) == 0 {
		problems = append(problems, "runbook has no stages")
	}

	known := map[string]bool{}
	for k := range rb.Vars {
		known[k] = true
	}

	stageNames := map[string]bool{}
	for si, stage := range rb.Stages {
		if strings.TrimSpace(stage.Name) == "" {
			problems = append(problems, fmt.Sprintf("stage %d has no name", si))
		} else if stageNames[stage.Name] {
			problems = append(problems, fmt.Sprintf("duplicate stage name %q", stage.Name))
		}
		stageNames[stage.Name] = true

		if len(stage.Steps) == 0 {
			problems = append(problems, fmt.Sprintf("stage %q has no steps", stage.Name))
		}

		stepNames := map[string]bool{}
		for _, step := range stage.Steps {
			where := fmt.Sprintf("stage %q step %q", stage.Name, step.Name)

			if strings.TrimSpace(step.Name) == "" {
				problems = append(problems, fmt.Sprintf("stage %q has an unnamed step", stage.Name))
			} else if stepNames[step.Name] {
				problems = append(problems, fmt.Sprintf("duplicate step name %q in stage %q", step.Name, stage.Name))
			}
			stepNames[step.Name] = true

			switch step.Kind {
			case "", StepKindCommand:
				if len(step.Run) == 0 && step.Shell == "" {
					problems = append(problems, where+" has neither run nor shell")
				}
				if len(step.Run) > 0 && step.Shell != "" {
					problems = append(problems, where+" sets both run and shell")
				}
			case StepKindSnapshot:
				if len(step.Run) > 0 || step.Shell != "" {
					problems = append(problems, where+" is a snapshot step but sets run/shell")
				}
			default:
				problems = append(problems, fmt.Sprintf("%s has unknown kind %q", where, step.Kind))
			}

			// Unknown ${var} references, accounting for extraction order.
			for _, ref := range referencedVars(step) {
				if !known[ref] {
					problems = append(problems, fmt.Sprintf("%s references undefined var %q", where, ref))
				}
			}
			for name := range step.Extract {
				known[name] = true
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrRunbookInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func referencedVars(step Step) []string {
	var out []string
	scan := func(s string) {
		for _, m := range varRef.FindAllStringSubmatch(s, -1) {
			out = append(out, m[1])
		}
	}
	for _, a := range step.Run {
		scan(a)
	}
	scan(step.Shell)
	scan(step.Dir)
	for _, v := range step.Env {
		scan(v)
	}
	for _, v := range step.With {
		if s, ok := v.(string); ok {
			scan(s)
		}
	}
	return out
}
