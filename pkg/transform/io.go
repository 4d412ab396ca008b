package transform

import (
	"encoding/json"
	"fmt"
	"os"
)

// linearFile is the on-disk JSON layout for a Linear transformation.
// The matrix is stored row-major as a nested 4x4 array.
type linearFile struct {
	Name          string        `json:"name"`
	Comment       string        `json:"comment"`
	Matrix        [4][4]float64 `json:"matrix"`
	NConcatenated int           `json:"n_concatenated_transforms"`
}

// Write saves the composed transformation to a JSON file.
func (lt *Linear) Write(path string) error {
	m := lt.Matrix()
	var rows [4][4]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			rows[r][c] = m.At(r, c)
		}
	}
	f := linearFile{
		Name:          lt.Name,
		Comment:       lt.Comment,
		Matrix:        rows,
		NConcatenated: lt.NConcatenated(),
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal transform: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadLinear loads a transformation previously saved with Write.
// The stack collapses to a single matrix operation.
func ReadLinear(path string) (*Linear, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transform: %w", err)
	}
	var f linearFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse transform %s: %w", path, err)
	}
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m.Set(r, c, f.Matrix[r][c])
		}
	}
	lt := FromMatrix(m)
	lt.Name = f.Name
	lt.Comment = f.Comment
	return lt, nil
}

type tpsFile struct {
	Name         string       `json:"name"`
	Comment      string       `json:"comment"`
	Mode         string       `json:"mode"`
	Sigma        float64      `json:"sigma"`
	SourcePoints [][3]float64 `json:"source_points"`
	TargetPoints [][3]float64 `json:"target_points"`
}

// Write saves the landmark set and kernel parameters to a JSON file.
func (t *ThinPlateSpline) Write(path string) error {
	f := tpsFile{
		Name:         t.Name,
		Comment:      t.Comment,
		Mode:         t.Mode,
		Sigma:        t.Sigma,
		SourcePoints: packPoints(t.Source),
		TargetPoints: packPoints(t.Target),
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal transform: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadThinPlateSpline loads a nonlinear transformation saved with Write.
func ReadThinPlateSpline(path string) (*ThinPlateSpline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transform: %w", err)
	}
	var f tpsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse transform %s: %w", path, err)
	}
	t, err := NewThinPlateSpline(unpackPoints(f.SourcePoints), unpackPoints(f.TargetPoints), f.Sigma, f.Mode)
	if err != nil {
		return nil, err
	}
	t.Name = f.Name
	t.Comment = f.Comment
	return t, nil
}

func packPoints(pts []Vec3) [][3]float64 {
	out := make([][3]float64, len(pts))
	for i, p := range pts {
		out[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return out
}

func unpackPoints(raw [][3]float64) []Vec3 {
	out := make([]Vec3, len(raw))
	for i, p := range raw {
		out[i] = Vec3{p[0], p[1], p[2]}
	}
	return out
}
