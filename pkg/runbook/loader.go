package runbook

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// stepDoc mirrors Step for YAML, with the timeout as a duration string
// ("90s", "5m") instead of integer nanoseconds.
type stepDoc struct {
	Name            string            `yaml:"name"`
	Kind            string            `yaml:"kind,omitempty"`
	Run             []string          `yaml:"run,omitempty"`
	Shell           string            `yaml:"shell,omitempty"`
	Dir             string            `yaml:"dir,omitempty"`
	Env             map[string]string `yaml:"env,omitempty"`
	Timeout         string            `yaml:"timeout,omitempty"`
	ContinueOnError bool              `yaml:"continue_on_error,omitempty"`
	SkipScan        bool              `yaml:"skip_scan,omitempty"`
	Extract         map[string]string `yaml:"extract,omitempty"`
	With            map[string]any    `yaml:"with,omitempty"`
}

type stageDoc struct {
	Name  string    `yaml:"name"`
	Steps []stepDoc `yaml:"steps"`
}

type runbookDoc struct {
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description,omitempty"`
	Vars         map[string]string `yaml:"vars,omitempty"`
	FailPatterns []string          `yaml:"fail_patterns,omitempty"`
	Stages       []stageDoc        `yaml:"stages"`
}

// Load reads and parses a runbook YAML file, then validates it.
func Load(path string) (*Runbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read runbook: %w", err)
	}
	rb, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("runbook %s: %w", path, err)
	}
	return rb, nil
}

// Parse decodes runbook YAML and validates the result.
func Parse(data []byte) (*Runbook, error) {
	var doc runbookDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	rb := &Runbook{
		Name:         doc.Name,
		Description:  doc.Description,
		Vars:         doc.Vars,
		FailPatterns: doc.FailPatterns,
	}
	for _, sd := range doc.Stages {
		stage := Stage{Name: sd.Name}
		for _, d := range sd.Steps {
			step := Step{
				Name:            d.Name,
				Kind:            d.Kind,
				Run:             d.Run,
				Shell:           d.Shell,
				Dir:             d.Dir,
				Env:             d.Env,
				ContinueOnError: d.ContinueOnError,
				SkipScan:        d.SkipScan,
				Extract:         d.Extract,
				With:            d.With,
			}
			if d.Timeout != "" {
				t, err := time.ParseDuration(d.Timeout)
				if err != nil {
					return nil, fmt.Errorf("step %q: bad timeout %q: %w", d.Name, d.Timeout, err)
				}
				step.Timeout = t
			}
			stage.Steps = append(stage.Steps, step)
		}
		rb.Stages = append(rb.Stages, stage)
	}

	if err := Validate(rb); err != nil {
		return nil, err
	}
	return rb, nil
}
