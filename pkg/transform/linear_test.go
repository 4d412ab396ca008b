package transform

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVecNear(t *testing.T, want, got Vec3, eps float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps)
	assert.InDelta(t, want.Y, got.Y, eps)
	assert.InDelta(t, want.Z, got.Z, eps)
}

func TestLinearIdentity(t *testing.T) {
	lt := NewLinear()
	assert.True(t, lt.IsIdentity())
	assert.Equal(t, 0, lt.NConcatenated())

	p := V3(1.5, -2, 3)
	assertVecNear(t, p, lt.ApplyPoint(p), 1e-12)
}

func TestLinearTranslateAndPosition(t *testing.T) {
	lt := NewLinear().Translate(V3(1, 2, 3)).Translate(V3(-1, 0, 1))
	assert.Equal(t, 2, lt.NConcatenated())
	assertVecNear(t, V3(0, 2, 4), lt.Position(), 1e-12)

	lt.SetPosition(V3(5, 5, 5))
	assertVecNear(t, V3(5, 5, 5), lt.Position(), 1e-12)
}

func TestLinearScaleAboutPosition(t *testing.T) {
	// Scaling after a shift must not move the object position.
	lt := NewLinear().Translate(V3(2, 0, 0)).Scale(Uniform(3))
	assertVecNear(t, V3(2, 0, 0), lt.Position(), 1e-12)

	// A point one unit from the position moves three units away.
	assertVecNear(t, V3(5, 0, 0), lt.ApplyPoint(V3(1, 0, 0)), 1e-12)
}

func TestLinearRotateAboutPoint(t *testing.T) {
	// Rotate 90 degrees around z through (1,0,0): the origin lands at (1,-1,0).
	lt := NewLinear().Rotate(90, V3(0, 0, 1), V3(1, 0, 0), false)
	assertVecNear(t, V3(1, -1, 0), lt.ApplyPoint(V3(0, 0, 0)), 1e-12)
}

func TestLinearRotateXYZ(t *testing.T) {
	cases := []struct {
		name  string
		apply func(*Linear) *Linear
		in    Vec3
		want  Vec3
	}{
		{"x90", func(l *Linear) *Linear { return l.RotateX(90, false, nil) }, V3(0, 1, 0), V3(0, 0, 1)},
		{"y90", func(l *Linear) *Linear { return l.RotateY(90, false, nil) }, V3(0, 0, 1), V3(1, 0, 0)},
		{"z90", func(l *Linear) *Linear { return l.RotateZ(90, false, nil) }, V3(1, 0, 0), V3(0, 1, 0)},
		{"z-rad", func(l *Linear) *Linear { return l.RotateZ(math.Pi/2, true, nil) }, V3(1, 0, 0), V3(0, 1, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lt := tc.apply(NewLinear())
			assertVecNear(t, tc.want, lt.ApplyPoint(tc.in), 1e-12)
		})
	}
}

func TestLinearInvertRoundTrip(t *testing.T) {
	lt := NewLinear().
		RotateY(30, false, nil).
		Translate(V3(1, 2, 3)).
		Scale(Uniform(2))

	p := V3(0.3, -0.7, 1.1)
	q := lt.ApplyPoint(p)

	inv := lt.Inverse()
	assertVecNear(t, p, inv.ApplyPoint(q), 1e-9)

	// Inverting twice restores the original mapping.
	lt.Invert().Invert()
	assertVecNear(t, q, lt.ApplyPoint(p), 1e-9)
}

func TestLinearPopAndReset(t *testing.T) {
	lt := NewLinear().Translate(V3(1, 0, 0)).Translate(V3(0, 1, 0))
	lt.Pop()
	assertVecNear(t, V3(1, 0, 0), lt.Position(), 1e-12)

	lt.Reset()
	assert.True(t, lt.IsIdentity())
}

func TestLinearConcatenate(t *testing.T) {
	a := NewLinear().Translate(V3(1, 0, 0))
	b := NewLinear().RotateZ(90, false, nil)

	// Post: rotate applied after the shift, (0,0,0) -> (1,0,0) -> (0,1,0).
	post := a.Clone().Concatenate(b, false)
	assertVecNear(t, V3(0, 1, 0), post.ApplyPoint(V3(0, 0, 0)), 1e-12)

	// Pre: rotate applied before the shift, (1,0,0) -> (0,1,0) -> (1,1,0).
	pre := a.Clone().Concatenate(b, true)
	assertVecNear(t, V3(1, 1, 0), pre.ApplyPoint(V3(1, 0, 0)), 1e-12)
}

func TestLinearOrientation(t *testing.T) {
	lt := NewLinear().RotateX(25, false, nil)
	o := lt.Orientation()
	assert.InDelta(t, 25, o.X, 1e-9)
	assert.InDelta(t, 0, o.Y, 1e-9)
	assert.InDelta(t, 0, o.Z, 1e-9)

	// Scale must not disturb the decomposition.
	lt2 := NewLinear().RotateY(-40, false, nil).Scale(Uniform(2.5))
	assert.InDelta(t, -40, lt2.Orientation().Y, 1e-9)
}

func TestLinearReorient(t *testing.T) {
	lt := NewLinear().Reorient(V3(0, 0, 1), V3(1, 0, 0), Vec3{}, 0, false, false)
	assertVecNear(t, V3(1, 0, 0), lt.ApplyPoint(V3(0, 0, 1)), 1e-9)

	// Antiparallel axes still produce a valid half-turn.
	flip := NewLinear().Reorient(V3(0, 0, 1), V3(0, 0, -1), Vec3{}, 0, false, false)
	got := flip.ApplyPoint(V3(0, 0, 1))
	assert.InDelta(t, -1, got.Z, 1e-5)
}

func TestLinearApplyPoints(t *testing.T) {
	lt := NewLinear().Translate(V3(0, 0, 10))
	pts := []Vec3{V3(0, 0, 0), V3(1, 1, 1)}
	lt.ApplyPoints(pts)
	assertVecNear(t, V3(0, 0, 10), pts[0], 1e-12)
	assertVecNear(t, V3(1, 1, 11), pts[1], 1e-12)
}

func TestLinearWriteRead(t *testing.T) {
	lt := NewLinear().
		RotateZ(45, false, nil).
		Translate(V3(1, -2, 0.5)).
		Scale(Uniform(1.5))
	lt.Name = "release-check"
	lt.Comment = "round trip"

	path := filepath.Join(t.TempDir(), "lt.json")
	require.NoError(t, lt.Write(path))

	got, err := ReadLinear(path)
	require.NoError(t, err)
	assert.Equal(t, "release-check", got.Name)
	assert.Equal(t, "round trip", got.Comment)

	// The reloaded transform applies identically.
	p := V3(0.2, 0.4, -1)
	assertVecNear(t, lt.ApplyPoint(p), got.ApplyPoint(p), 1e-9)
}

func TestMat4Inverse(t *testing.T) {
	m := Mul(Translation(V3(3, -1, 2)), RotationAxis(0.7, V3(1, 2, 3)))
	inv, ok := m.Inverse()
	require.True(t, ok)
	assert.True(t, Mul(m, inv).nearIdentity(1e-9))

	_, ok = Scaling(V3(1, 0, 1)).Inverse()
	assert.False(t, ok)
}
