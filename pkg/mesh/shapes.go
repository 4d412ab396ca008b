package mesh

import (
	"math"

	"github.com/tessera-io/tessera/pkg/transform"
)

// Torus builds a torus with ring radius r and tube radius tube, tessellated
// into segments x rings quads. The axis of revolution is z.
func Torus(r, tube float64, segments, rings int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	if rings < 3 {
		rings = 3
	}
	m := &Mesh{Name: "torus", Base: RGB(90, 140, 255)}

	for i := 0; i < segments; i++ {
		u := 2 * math.Pi * float64(i) / float64(segments)
		cu, su := math.Cos(u), math.Sin(u)
		for j := 0; j < rings; j++ {
			v := 2 * math.Pi * float64(j) / float64(rings)
			cv, sv := math.Cos(v), math.Sin(v)
			m.Vertices = append(m.Vertices, transform.Vec3{
				X: (r + tube*cv) * cu,
				Y: (r + tube*cv) * su,
				Z: tube * sv,
			})
		}
	}
	for i := 0; i < segments; i++ {
		ni := (i + 1) % segments
		for j := 0; j < rings; j++ {
			nj := (j + 1) % rings
			a := uint32(i*rings + j)
			b := uint32(ni*rings + j)
			c := uint32(ni*rings + nj)
			d := uint32(i*rings + nj)
			m.Indices = append(m.Indices, a, b, c, a, c, d)
		}
	}
	m.ComputeNormals()
	return m
}

// Sphere builds a UV sphere of the given radius.
func Sphere(radius float64, slices, stacks int) *Mesh {
	if slices < 3 {
		slices = 3
	}
	if stacks < 2 {
		stacks = 2
	}
	m := &Mesh{Name: "sphere", Base: RGB(220, 90, 90)}

	for st := 0; st <= stacks; st++ {
		theta := math.Pi * float64(st) / float64(stacks)
		sinT, cosT := math.Sin(theta), math.Cos(theta)
		for sl := 0; sl <= slices; sl++ {
			phi := 2 * math.Pi * float64(sl) / float64(slices)
			m.Vertices = append(m.Vertices, transform.Vec3{
				X: radius * sinT * math.Cos(phi),
				Y: radius * sinT * math.Sin(phi),
				Z: radius * cosT,
			})
		}
	}
	cols := slices + 1
	for st := 0; st < stacks; st++ {
		for sl := 0; sl < slices; sl++ {
			a := uint32(st*cols + sl)
			b := uint32((st+1)*cols + sl)
			c := uint32((st+1)*cols + sl + 1)
			d := uint32(st*cols + sl + 1)
			if st > 0 {
				m.Indices = append(m.Indices, a, b, d)
			}
			if st < stacks-1 {
				m.Indices = append(m.Indices, d, b, c)
			}
		}
	}
	m.ComputeNormals()
	return m
}

// Cube builds an axis-aligned cube with the given edge length, centered on
// the origin. Faces do not share vertices so normals stay crisp.
func Cube(size float64) *Mesh {
	h := size / 2
	m := &Mesh{Name: "cube", Base: RGB(120, 200, 120)}

	quads := [][4]transform.Vec3{
		{{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h}},     // +z
		{{X: h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: -h}, {X: -h, Y: h, Z: -h}, {X: h, Y: h, Z: -h}}, // -z
		{{X: h, Y: -h, Z: h}, {X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: h, Y: h, Z: h}},     // +x
		{{X: -h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: h}, {X: -h, Y: h, Z: h}, {X: -h, Y: h, Z: -h}}, // -x
		{{X: -h, Y: h, Z: h}, {X: h, Y: h, Z: h}, {X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h}},     // +y
		{{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: -h, Z: h}, {X: -h, Y: -h, Z: h}}, // -y
	}
	for _, q := range quads {
		base := uint32(len(m.Vertices))
		m.Vertices = append(m.Vertices, q[0], q[1], q[2], q[3])
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	m.ComputeNormals()
	return m
}

// Plane builds a flat grid in the xy-plane, size x size, with res quads per
// side.
func Plane(size float64, res int) *Mesh {
	if res < 1 {
		res = 1
	}
	m := &Mesh{Name: "plane", Base: RGB(200, 200, 200)}
	h := size / 2
	step := size / float64(res)

	for j := 0; j <= res; j++ {
		for i := 0; i <= res; i++ {
			m.Vertices = append(m.Vertices, transform.Vec3{
				X: -h + float64(i)*step,
				Y: -h + float64(j)*step,
			})
		}
	}
	cols := res + 1
	for j := 0; j < res; j++ {
		for i := 0; i < res; i++ {
			a := uint32(j*cols + i)
			b := uint32(j*cols + i + 1)
			c := uint32((j+1)*cols + i + 1)
			d := uint32((j+1)*cols + i)
			m.Indices = append(m.Indices, a, b, c, a, c, d)
		}
	}
	m.ComputeNormals()
	return m
}

// ByName returns a generator result for a shape name, used by the snapshot
// step and the render command. Known names: torus, sphere, cube, plane.
func ByName(name string) (*Mesh, bool) {
	switch name {
	case "torus":
		return Torus(1, 0.35, 48, 24), true
	case "sphere":
		return Sphere(1, 48, 24), true
	case "cube":
		return Cube(1.5), true
	case "plane":
		return Plane(2, 10), true
	}
	return nil, false
}
