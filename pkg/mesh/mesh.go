// Package mesh holds triangle meshes and a few procedural generators.
package mesh

import (
	"github.com/tessera-io/tessera/pkg/transform"
)

// PointTransform is anything that can map a point, linear or not.
type PointTransform interface {
	ApplyPoint(p transform.Vec3) transform.Vec3
}

// Mesh is an indexed triangle mesh. Normals and Colors are optional and, when
// present, run parallel to Vertices.
type Mesh struct {
	Name     string
	Vertices []transform.Vec3
	Normals  []transform.Vec3
	Colors   []Color
	Indices  []uint32

	// Base is the flat color used when per-vertex colors are absent.
	Base Color
}

// NTriangles returns the triangle count.
func (m *Mesh) NTriangles() int { return len(m.Indices) / 3 }

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Name:     m.Name,
		Base:     m.Base,
		Vertices: append([]transform.Vec3(nil), m.Vertices...),
		Indices:  append([]uint32(nil), m.Indices...),
	}
	if m.Normals != nil {
		out.Normals = append([]transform.Vec3(nil), m.Normals...)
	}
	if m.Colors != nil {
		out.Colors = append([]Color(nil), m.Colors...)
	}
	return out
}

// Bounds returns the axis-aligned bounding box (min, max). An empty mesh
// returns two zero vectors.
func (m *Mesh) Bounds() (lo, hi transform.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		if v.X < lo.X {
			lo.X = v.X
		}
		if v.Y < lo.Y {
			lo.Y = v.Y
		}
		if v.Z < lo.Z {
			lo.Z = v.Z
		}
		if v.X > hi.X {
			hi.X = v.X
		}
		if v.Y > hi.Y {
			hi.Y = v.Y
		}
		if v.Z > hi.Z {
			hi.Z = v.Z
		}
	}
	return
}

// Center returns the bounding box center.
func (m *Mesh) Center() transform.Vec3 {
	lo, hi := m.Bounds()
	return lo.Add(hi).Mul(0.5)
}

// SetX shifts the mesh so its center sits at x, leaving y and z untouched.
func (m *Mesh) SetX(x float64) {
	dx := x - m.Center().X
	for i := range m.Vertices {
		m.Vertices[i].X += dx
	}
}

// SetColor sets the flat base color and clears per-vertex colors.
func (m *Mesh) SetColor(c Color) {
	m.Base = c
	m.Colors = nil
}

// Apply transforms every vertex in place and recomputes normals.
func (m *Mesh) Apply(t PointTransform) {
	for i := range m.Vertices {
		m.Vertices[i] = t.ApplyPoint(m.Vertices[i])
	}
	if m.Normals != nil {
		m.ComputeNormals()
	}
}

// ComputeNormals rebuilds per-vertex normals as the area-weighted average of
// incident face normals.
func (m *Mesh) ComputeNormals() {
	normals := make([]transform.Vec3, len(m.Vertices))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a := m.Vertices[m.Indices[i]]
		b := m.Vertices[m.Indices[i+1]]
		c := m.Vertices[m.Indices[i+2]]
		// Cross product length is twice the face area, which gives the
		// weighting for free.
		fn := transform.Cross(b.Sub(a), c.Sub(a))
		normals[m.Indices[i]] = normals[m.Indices[i]].Add(fn)
		normals[m.Indices[i+1]] = normals[m.Indices[i+1]].Add(fn)
		normals[m.Indices[i+2]] = normals[m.Indices[i+2]].Add(fn)
	}
	for i := range normals {
		normals[i] = normals[i].Normalized()
	}
	m.Normals = normals
}
