package runtime

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/mitchellh/mapstructure"

	"github.com/tessera-io/tessera/pkg/mesh"
	"github.com/tessera-io/tessera/pkg/render"
	"github.com/tessera-io/tessera/pkg/runbook"
)

// SnapshotParams are the `with:` parameters of a snapshot step.
type SnapshotParams struct {
	Shape     string `mapstructure:"shape"`
	Out       string `mapstructure:"out"`
	Width     int    `mapstructure:"width"`
	Height    int    `mapstructure:"height"`
	Color     string `mapstructure:"color"`
	Caption   string `mapstructure:"caption"`
	Wireframe bool   `mapstructure:"wireframe"`
}

// namedShades maps the color names accepted in runbooks.
var namedShades = map[string]mesh.Color{
	"red":    mesh.RGB(220, 60, 60),
	"green":  mesh.RGB(60, 180, 90),
	"blue":   mesh.RGB(70, 110, 230),
	"yellow": mesh.RGB(230, 200, 60),
	"white":  mesh.RGB(240, 240, 240),
	"gray":   mesh.RGB(128, 128, 128),
}

// runSnapshotStep renders a built-in shape to a PNG. Release runbooks use it
// as a cheap stand-in for "open the gallery and eyeball it".
func (e *Engine) runSnapshotStep(state *runbook.RunState, step runbook.Step, result *runbook.StepResult, logFile io.Writer) {
	params, err := e.snapshotParams(step, state.Vars)
	if err != nil {
		result.Status = runbook.StatusFailed
		result.Failure = runbook.FailureStart
		result.Error = err.Error()
		return
	}

	m, ok := mesh.ByName(params.Shape)
	if !ok {
		result.Status = runbook.StatusFailed
		result.Failure = runbook.FailureStart
		result.Error = fmt.Sprintf("unknown shape %q", params.Shape)
		return
	}
	if params.Color != "" {
		c, ok := namedShades[params.Color]
		if !ok {
			result.Status = runbook.StatusFailed
			result.Failure = runbook.FailureStart
			result.Error = fmt.Sprintf("unknown color %q", params.Color)
			return
		}
		m.SetColor(c)
	}

	out := params.Out
	if !filepath.IsAbs(out) {
		out = filepath.Join(e.workDir, out)
	}
	scene := render.NewScene(m)
	opts := render.SnapshotOptions{
		Width:     params.Width,
		Height:    params.Height,
		Caption:   params.Caption,
		Wireframe: params.Wireframe,
	}
	if err := render.WriteSnapshot(scene, out, opts); err != nil {
		result.Status = runbook.StatusFailed
		result.Failure = runbook.FailureExit
		result.Error = err.Error()
		return
	}

	fmt.Fprintf(logFile, "snapshot %s -> %s\n", params.Shape, out)
	result.Status = runbook.StatusPassed
}

func (e *Engine) snapshotParams(step runbook.Step, vars map[string]string) (SnapshotParams, error) {
	var params SnapshotParams
	if err := mapstructure.Decode(step.With, &params); err != nil {
		return params, fmt.Errorf("snapshot params: %w", err)
	}
	var err error
	if params.Shape, err = interpolate(params.Shape, vars); err != nil {
		return params, err
	}
	if params.Out, err = interpolate(params.Out, vars); err != nil {
		return params, err
	}
	if params.Caption, err = interpolate(params.Caption, vars); err != nil {
		return params, err
	}
	if params.Shape == "" {
		return params, fmt.Errorf("snapshot step needs a shape")
	}
	if params.Out == "" {
		return params, fmt.Errorf("snapshot step needs an output path")
	}
	return params, nil
}
