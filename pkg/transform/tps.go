package transform

import (
	"fmt"
	"math"
)

// ThinPlateSpline is a nonlinear transformation defined by two sets of
// corresponding landmarks. Points are warped so that every source landmark
// lands exactly on its target, with a smooth radial-basis interpolation in
// between.
//
// Mode selects the kernel: "3d" uses U(r)=r, "2d" uses U(r)=r^2*log(r).
// Sigma scales the kernel radius.
type ThinPlateSpline struct {
	Name    string
	Comment string
	Mode    string
	Sigma   float64

	Source []Vec3
	Target []Vec3

	// weights holds the n radial coefficients plus the 4 affine terms,
	// one column per output coordinate.
	weights [][3]float64
	inverse *ThinPlateSpline
}

// NewThinPlateSpline fits the warp carrying source landmarks onto target
// landmarks. The two sets must be the same non-zero length. mode is "2d" or
// "3d" (default "3d"); sigma defaults to 1.
func NewThinPlateSpline(source, target []Vec3, sigma float64, mode string) (*ThinPlateSpline, error) {
	if len(source) == 0 || len(source) != len(target) {
		return nil, fmt.Errorf("thin plate spline: need equal non-empty landmark sets, got %d and %d", len(source), len(target))
	}
	if sigma <= 0 {
		sigma = 1
	}
	switch mode {
	case "":
		mode = "3d"
	case "2d", "3d":
	default:
		return nil, fmt.Errorf("thin plate spline: unknown mode %q", mode)
	}
	t := &ThinPlateSpline{
		Name:   "NonLinearTransform",
		Mode:   mode,
		Sigma:  sigma,
		Source: append([]Vec3(nil), source...),
		Target: append([]Vec3(nil), target...),
	}
	if err := t.fit(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *ThinPlateSpline) kernel(r float64) float64 {
	r /= t.Sigma
	if t.Mode == "2d" {
		if r <= 0 {
			return 0
		}
		return r * r * math.Log(r)
	}
	return r
}

// fit solves the dense (n+4)x(n+4) system
//
//	| K  P | |w|   |target|
//	| Pt 0 | |a| = |  0   |
//
// for the radial weights w and the affine part a, per output coordinate.
func (t *ThinPlateSpline) fit() error {
	n := len(t.Source)
	dim := n + 4

	a := make([][]float64, dim)
	for i := range a {
		a[i] = make([]float64, dim)
	}
	b := make([][3]float64, dim)

	for i, si := range t.Source {
		for j, sj := range t.Source {
			a[i][j] = t.kernel(si.Sub(sj).Norm())
		}
		a[i][n] = 1
		a[i][n+1] = si.X
		a[i][n+2] = si.Y
		a[i][n+3] = si.Z
		a[n][i] = 1
		a[n+1][i] = si.X
		a[n+2][i] = si.Y
		a[n+3][i] = si.Z

		ti := t.Target[i]
		b[i] = [3]float64{ti.X, ti.Y, ti.Z}
	}

	w, err := solve(a, b)
	if err != nil {
		return fmt.Errorf("thin plate spline: %w", err)
	}
	t.weights = w
	t.inverse = nil
	return nil
}

// solve runs Gaussian elimination with partial pivoting on the augmented
// system a*x = b, where b carries three right-hand sides.
func solve(a [][]float64, b [][3]float64) ([][3]float64, error) {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular landmark system (duplicate landmarks?)")
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < n; r++ {
			f := a[r][col] / a[col][col]
			if f == 0 {
				continue
			}
			for c := col; c < n; c++ {
				a[r][c] -= f * a[col][c]
			}
			for k := 0; k < 3; k++ {
				b[r][k] -= f * b[col][k]
			}
		}
	}

	x := make([][3]float64, n)
	for r := n - 1; r >= 0; r-- {
		x[r] = b[r]
		for c := r + 1; c < n; c++ {
			for k := 0; k < 3; k++ {
				x[r][k] -= a[r][c] * x[c][k]
			}
		}
		for k := 0; k < 3; k++ {
			x[r][k] /= a[r][r]
		}
	}
	return x, nil
}

// ApplyPoint warps a single point.
func (t *ThinPlateSpline) ApplyPoint(p Vec3) Vec3 {
	n := len(t.Source)
	var out [3]float64

	for i, s := range t.Source {
		u := t.kernel(p.Sub(s).Norm())
		for k := 0; k < 3; k++ {
			out[k] += t.weights[i][k] * u
		}
	}
	for k := 0; k < 3; k++ {
		out[k] += t.weights[n][k] +
			t.weights[n+1][k]*p.X +
			t.weights[n+2][k]*p.Y +
			t.weights[n+3][k]*p.Z
	}
	return Vec3{out[0], out[1], out[2]}
}

// ApplyPoints warps pts in place and returns the slice.
func (t *ThinPlateSpline) ApplyPoints(pts []Vec3) []Vec3 {
	for i := range pts {
		pts[i] = t.ApplyPoint(pts[i])
	}
	return pts
}

// Inverse returns the warp fitted with the landmark sets swapped. This is an
// approximation to the true functional inverse but is exact on the landmarks
// themselves. The result is cached.
func (t *ThinPlateSpline) Inverse() (*ThinPlateSpline, error) {
	if t.inverse != nil {
		return t.inverse, nil
	}
	inv, err := NewThinPlateSpline(t.Target, t.Source, t.Sigma, t.Mode)
	if err != nil {
		return nil, err
	}
	inv.Name = t.Name
	inv.Comment = t.Comment
	t.inverse = inv
	return inv, nil
}

// Clone returns a deep copy.
func (t *ThinPlateSpline) Clone() *ThinPlateSpline {
	out := &ThinPlateSpline{
		Name:    t.Name,
		Comment: t.Comment,
		Mode:    t.Mode,
		Sigma:   t.Sigma,
		Source:  append([]Vec3(nil), t.Source...),
		Target:  append([]Vec3(nil), t.Target...),
		weights: append([][3]float64(nil), t.weights...),
	}
	return out
}
