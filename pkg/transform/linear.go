package transform

import "math"

// Linear is an affine 4x4 transformation built from a stack of concatenated
// operations. New operations post-multiply by default: the latest operation is
// applied last, in world coordinates.
//
// A Linear can be saved to a JSON file and reloaded, see Write and ReadLinear.
type Linear struct {
	Name    string
	Comment string

	stack    []Mat4
	inverted bool
}

// NewLinear creates an empty (identity) transformation.
func NewLinear() *Linear {
	return &Linear{Name: "LinearTransform"}
}

// FromMatrix creates a transformation seeded with a single matrix.
func FromMatrix(m Mat4) *Linear {
	lt := NewLinear()
	lt.stack = append(lt.stack, m)
	return lt
}

// Matrix returns the composed 4x4 matrix of the whole stack,
// honoring inversion.
func (lt *Linear) Matrix() Mat4 {
	m := Identity()
	for _, op := range lt.stack {
		// Post-multiply semantics: later ops wrap earlier ones.
		m = Mul(op, m)
	}
	if lt.inverted {
		inv, ok := m.Inverse()
		if ok {
			return inv
		}
	}
	return m
}

// Matrix3 returns the upper-left 3x3 block of the composed matrix.
func (lt *Linear) Matrix3() [3][3]float64 {
	m := lt.Matrix()
	var out [3][3]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r][c] = m.At(r, c)
		}
	}
	return out
}

// NConcatenated returns the number of concatenated operations.
func (lt *Linear) NConcatenated() int { return len(lt.stack) }

// Concatenated returns the i-th concatenated operation (0 = first applied),
// or the identity if out of range.
func (lt *Linear) Concatenated(i int) Mat4 {
	if i < 0 || i >= len(lt.stack) {
		return Identity()
	}
	return lt.stack[i]
}

// Reset clears the transformation back to the identity.
func (lt *Linear) Reset() *Linear {
	lt.stack = lt.stack[:0]
	lt.inverted = false
	return lt
}

// Pop removes the most recent operation from the stack.
func (lt *Linear) Pop() *Linear {
	if n := len(lt.stack); n > 0 {
		lt.stack = lt.stack[:n-1]
	}
	return lt
}

// IsIdentity reports whether the composed matrix is the identity.
func (lt *Linear) IsIdentity() bool {
	return lt.Matrix().nearIdentity(1e-9)
}

// Inverted reports whether the transformation is currently inverted.
func (lt *Linear) Inverted() bool { return lt.inverted }

// Invert flips the transformation in place.
func (lt *Linear) Invert() *Linear {
	lt.inverted = !lt.inverted
	return lt
}

// Inverse returns a new, inverted copy.
func (lt *Linear) Inverse() *Linear {
	return lt.Clone().Invert()
}

// Clone returns a deep copy.
func (lt *Linear) Clone() *Linear {
	out := &Linear{
		Name:     lt.Name,
		Comment:  lt.Comment,
		inverted: lt.inverted,
		stack:    make([]Mat4, len(lt.stack)),
	}
	copy(out.stack, lt.stack)
	return out
}

// Concatenate appends another transformation. By default the argument is
// applied after the receiver (post-multiply); with pre=true it is applied
// before.
func (lt *Linear) Concatenate(other *Linear, pre bool) *Linear {
	m := other.Matrix()
	if pre {
		lt.stack = append([]Mat4{m}, lt.stack...)
		return lt
	}
	lt.stack = append(lt.stack, m)
	return lt
}

// ConcatenateMatrix appends a raw matrix operation (post-multiply).
func (lt *Linear) ConcatenateMatrix(m Mat4) *Linear {
	lt.stack = append(lt.stack, m)
	return lt
}

// Translate shifts by p.
func (lt *Linear) Translate(p Vec3) *Linear {
	return lt.ConcatenateMatrix(Translation(p))
}

// Shift is an alias of Translate.
func (lt *Linear) Shift(p Vec3) *Linear { return lt.Translate(p) }

// Scale scales by s about the current position, so that scaling does not
// move an already-placed object. Use ScaleAbout for an explicit origin.
func (lt *Linear) Scale(s Vec3) *Linear {
	p := lt.Position()
	if p.Norm() > 0 {
		return lt.ScaleAbout(s, p)
	}
	return lt.ConcatenateMatrix(Scaling(s))
}

// ScaleAbout scales by s about an arbitrary origin.
func (lt *Linear) ScaleAbout(s, origin Vec3) *Linear {
	m := Mul(Translation(origin), Mul(Scaling(s), Translation(origin.Neg())))
	return lt.ConcatenateMatrix(m)
}

// Rotate rotates by angle (degrees unless rad) around an arbitrary axis
// passing through point.
func (lt *Linear) Rotate(angle float64, axis, point Vec3, rad bool) *Linear {
	a := angle
	if !rad {
		a = angle * math.Pi / 180
	}
	r := RotationAxis(a, axis)
	m := Mul(Translation(point), Mul(r, Translation(point.Neg())))
	return lt.ConcatenateMatrix(m)
}

// RotateX rotates around the x-axis. Set rad for radians; around, when
// non-nil, defines a pivoting point.
func (lt *Linear) RotateX(angle float64, rad bool, around *Vec3) *Linear {
	return lt.rotateAxis(RotationX, angle, rad, around)
}

// RotateY rotates around the y-axis. See RotateX.
func (lt *Linear) RotateY(angle float64, rad bool, around *Vec3) *Linear {
	return lt.rotateAxis(RotationY, angle, rad, around)
}

// RotateZ rotates around the z-axis. See RotateX.
func (lt *Linear) RotateZ(angle float64, rad bool, around *Vec3) *Linear {
	return lt.rotateAxis(RotationZ, angle, rad, around)
}

func (lt *Linear) rotateAxis(rot func(float64) Mat4, angle float64, rad bool, around *Vec3) *Linear {
	a := angle
	if !rad {
		a = angle * math.Pi / 180
	}
	r := rot(a)
	if around != nil {
		r = Mul(Translation(*around), Mul(r, Translation(around.Neg())))
	}
	return lt.ConcatenateMatrix(r)
}

// Position returns the translational part of the composed matrix.
func (lt *Linear) Position() Vec3 {
	m := lt.Matrix()
	return Vec3{m[12], m[13], m[14]}
}

// SetPosition translates so that the composed position becomes p.
func (lt *Linear) SetPosition(p Vec3) *Linear {
	return lt.Translate(p.Sub(lt.Position()))
}

// Orientation returns the rotation of the composed matrix as XYZ Euler
// angles in degrees, decomposed as Rz*Rx*Ry (the convention the original
// visualization toolkit uses for GetOrientation).
func (lt *Linear) Orientation() Vec3 {
	m := lt.Matrix()

	// Strip per-axis scale before decomposing.
	sx := Vec3{m.At(0, 0), m.At(1, 0), m.At(2, 0)}.Norm()
	sy := Vec3{m.At(0, 1), m.At(1, 1), m.At(2, 1)}.Norm()
	sz := Vec3{m.At(0, 2), m.At(1, 2), m.At(2, 2)}.Norm()
	if sx == 0 || sy == 0 || sz == 0 {
		return Vec3{}
	}

	r21 := m.At(2, 1) / sy
	r20 := m.At(2, 0) / sx
	r22 := m.At(2, 2) / sz
	r01 := m.At(0, 1) / sy
	r11 := m.At(1, 1) / sy

	x := math.Asin(clamp(r21, -1, 1))
	y := math.Atan2(-r20, r22)
	z := math.Atan2(-r01, r11)

	d := 180 / math.Pi
	return Vec3{x * d, y * d, z * d}
}

// Reorient concatenates a rotation that carries initAxis onto newAxis, about
// a pivot point. rotation (degrees unless rad) adds an extra spin around
// initAxis first; xyPlane applies a final correction that keeps flat objects
// aligned with the xy-plane.
func (lt *Linear) Reorient(initAxis, newAxis, around Vec3, rotation float64, rad bool, xyPlane bool) *Linear {
	ia := initAxis.Normalized()
	na := newAxis.Normalized()

	if ia.Sub(na).Norm() < 1e-12 {
		return lt
	}
	if ia.Add(na).Norm() < 1e-12 {
		// Antiparallel axes: nudge to pick a rotation plane.
		na = na.Add(Vec3{1e-7, 2e-7, 0}).Normalized()
	}

	angle := math.Acos(clamp(Dot(ia, na), -1, 1))
	crossVec := Cross(ia, na)

	lt.Translate(around.Neg())
	if rotation != 0 {
		r := rotation
		if !rad {
			r = rotation * math.Pi / 180
		}
		lt.ConcatenateMatrix(RotationAxis(r, ia))
	}
	lt.ConcatenateMatrix(RotationAxis(angle, crossVec))
	if xyPlane {
		tilt := -lt.Orientation().X * math.Sqrt2 * math.Pi / 180
		lt.ConcatenateMatrix(RotationAxis(tilt, na))
	}
	lt.Translate(around)
	return lt
}

// Scales returns the per-axis scale factors of the composed matrix.
func (lt *Linear) Scales() Vec3 {
	m := lt.Matrix()
	return Vec3{
		X: Vec3{m.At(0, 0), m.At(1, 0), m.At(2, 0)}.Norm(),
		Y: Vec3{m.At(0, 1), m.At(1, 1), m.At(2, 1)}.Norm(),
		Z: Vec3{m.At(0, 2), m.At(1, 2), m.At(2, 2)}.Norm(),
	}
}

// ApplyPoint transforms a single point.
func (lt *Linear) ApplyPoint(p Vec3) Vec3 {
	return lt.Matrix().ApplyPoint(p)
}

// ApplyPoints transforms pts in place and returns the slice.
func (lt *Linear) ApplyPoints(pts []Vec3) []Vec3 {
	m := lt.Matrix()
	for i := range pts {
		pts[i] = m.ApplyPoint(pts[i])
	}
	return pts
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
