package runbook

import "time"

// Builder assembles a runbook programmatically, for embedding tessera as a
// library. See examples/embedded.
type Builder struct {
	rb Runbook
}

// NewBuilder starts a runbook with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{rb: Runbook{Name: name}}
}

// Var seeds an interpolation variable.
func (b *Builder) Var(name, value string) *Builder {
	if b.rb.Vars == nil {
		b.rb.Vars = map[string]string{}
	}
	b.rb.Vars[name] = value
	return b
}

// FailPatterns overrides the default scan patterns.
func (b *Builder) FailPatterns(patterns ...string) *Builder {
	b.rb.FailPatterns = patterns
	return b
}

// Stage opens a new stage. Steps added afterwards land in it.
func (b *Builder) Stage(name string) *StageBuilder {
	b.rb.Stages = append(b.rb.Stages, Stage{Name: name})
	return &StageBuilder{builder: b, idx: len(b.rb.Stages) - 1}
}

// Build validates and returns the assembled runbook.
func (b *Builder) Build() (*Runbook, error) {
	rb := b.rb
	if err := Validate(&rb); err != nil {
		return nil, err
	}
	return &rb, nil
}

// StageBuilder adds steps to one stage.
type StageBuilder struct {
	builder *Builder
	idx     int
}

// Stage closes this stage and opens the next one.
func (sb *StageBuilder) Stage(name string) *StageBuilder {
	return sb.builder.Stage(name)
}

// Build delegates to the runbook builder.
func (sb *StageBuilder) Build() (*Runbook, error) {
	return sb.builder.Build()
}

func (sb *StageBuilder) add(s Step) *StageBuilder {
	st := &sb.builder.rb.Stages[sb.idx]
	st.Steps = append(st.Steps, s)
	return sb
}

// Run adds a command step from an argv.
func (sb *StageBuilder) Run(name string, argv ...string) *StageBuilder {
	return sb.add(Step{Name: name, Run: argv})
}

// Shell adds a command step run through `sh -c`.
func (sb *StageBuilder) Shell(name, line string) *StageBuilder {
	return sb.add(Step{Name: name, Shell: line})
}

// Snapshot adds a builtin snapshot step.
func (sb *StageBuilder) Snapshot(name string, with map[string]any) *StageBuilder {
	return sb.add(Step{Name: name, Kind: StepKindSnapshot, With: with})
}

// Last mutates the most recently added step, for the rarer knobs.
func (sb *StageBuilder) Last(mutate func(*Step)) *StageBuilder {
	st := &sb.builder.rb.Stages[sb.idx]
	if n := len(st.Steps); n > 0 {
		mutate(&st.Steps[n-1])
	}
	return sb
}

// Timeout sets the deadline of the most recently added step.
func (sb *StageBuilder) Timeout(d time.Duration) *StageBuilder {
	return sb.Last(func(s *Step) { s.Timeout = d })
}

// ContinueOnError marks the most recently added step as non-fatal.
func (sb *StageBuilder) ContinueOnError() *StageBuilder {
	return sb.Last(func(s *Step) { s.ContinueOnError = true })
}
