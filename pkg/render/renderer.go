package render

import (
	"math"

	"github.com/tessera-io/tessera/pkg/mesh"
	"github.com/tessera-io/tessera/pkg/transform"
)

// Renderer rasterizes a scene into a Target. It keeps its z-buffer between
// frames so interactive callers can reuse one instance.
type Renderer struct {
	zbuf []float64
	w, h int
}

// NewRenderer returns a renderer; buffers grow on demand.
func NewRenderer() *Renderer { return &Renderer{} }

// Draw renders the whole scene into target.
func (r *Renderer) Draw(s *Scene, target Target) {
	w, h := target.Size()
	if w <= 0 || h <= 0 {
		return
	}
	if r.w != w || r.h != h {
		r.w, r.h = w, h
		r.zbuf = make([]float64, w*h)
	}
	for i := range r.zbuf {
		r.zbuf[i] = math.Inf(1)
	}
	target.Clear(s.Background)

	cam := s.Camera
	if cam == nil {
		return
	}
	vp := transform.Mul(cam.ProjectionMatrix(float64(w)/float64(h)), cam.ViewMatrix())

	for _, m := range s.Meshes {
		if s.Mode == ModeWireframe {
			r.drawWire(m, vp, target)
		} else {
			r.drawSolid(s, m, vp, target)
		}
	}
}

// screenVert is a projected vertex: screen x/y, view depth, and shade color.
type screenVert struct {
	x, y, z float64
	c       mesh.Color
	ok      bool
}

func (r *Renderer) project(vp transform.Mat4, p transform.Vec3) (screenVert, bool) {
	// Clip coordinates by hand so w<=0 (behind the eye) can be rejected.
	cx := vp[0]*p.X + vp[4]*p.Y + vp[8]*p.Z + vp[12]
	cy := vp[1]*p.X + vp[5]*p.Y + vp[9]*p.Z + vp[13]
	cz := vp[2]*p.X + vp[6]*p.Y + vp[10]*p.Z + vp[14]
	cw := vp[3]*p.X + vp[7]*p.Y + vp[11]*p.Z + vp[15]
	if cw <= 1e-9 {
		return screenVert{}, false
	}
	inv := 1 / cw
	ndcX, ndcY, ndcZ := cx*inv, cy*inv, cz*inv
	return screenVert{
		x:  (ndcX + 1) / 2 * float64(r.w),
		y:  (1 - ndcY) / 2 * float64(r.h),
		z:  ndcZ,
		ok: true,
	}, true
}

func (r *Renderer) drawSolid(s *Scene, m *mesh.Mesh, vp transform.Mat4, target Target) {
	verts := make([]screenVert, len(m.Vertices))
	for i, p := range m.Vertices {
		v, ok := r.project(vp, p)
		if ok {
			v.c = r.shade(s, m, i)
		}
		verts[i] = v
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a := verts[m.Indices[i]]
		b := verts[m.Indices[i+1]]
		c := verts[m.Indices[i+2]]
		if !a.ok || !b.ok || !c.ok {
			continue
		}
		r.fillTriangle(a, b, c, target)
	}
}

// shade computes the lit color for vertex i of m.
func (r *Renderer) shade(s *Scene, m *mesh.Mesh, i int) mesh.Color {
	base := m.Base
	if s.Mode == ModeVertexColor && i < len(m.Colors) {
		base = m.Colors[i]
	}
	intensity := s.Light.Ambient
	if i < len(m.Normals) {
		// Light direction points towards the scene, flip for Lambert.
		d := transform.Dot(m.Normals[i], s.Light.Direction.Neg())
		if d > 0 {
			intensity += s.Light.Diffuse * d
		}
	} else {
		intensity += s.Light.Diffuse * 0.5
	}
	if intensity > 1 {
		intensity = 1
	}
	scale := func(v uint8) uint8 { return uint8(float64(v) * intensity) }
	return mesh.Color{R: scale(base.R), G: scale(base.G), B: scale(base.B), A: base.A}
}

// fillTriangle rasterizes with the edge-function method, interpolating depth
// and color barycentrically.
func (r *Renderer) fillTriangle(a, b, c screenVert, target Target) {
	minX := int(math.Floor(min3(a.x, b.x, c.x)))
	maxX := int(math.Ceil(max3(a.x, b.x, c.x)))
	minY := int(math.Floor(min3(a.y, b.y, c.y)))
	maxY := int(math.Ceil(max3(a.y, b.y, c.y)))

	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX >= r.w {
		maxX = r.w - 1
	}
	if maxY >= r.h {
		maxY = r.h - 1
	}

	area := edge(a, b, c.x, c.y)
	if area == 0 {
		return
	}
	inv := 1 / area

	for y := minY; y <= maxY; y++ {
		fy := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			fx := float64(x) + 0.5
			w0 := edge(b, c, fx, fy) * inv
			w1 := edge(c, a, fx, fy) * inv
			w2 := edge(a, b, fx, fy) * inv
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*a.z + w1*b.z + w2*c.z
			idx := y*r.w + x
			if z >= r.zbuf[idx] {
				continue
			}
			r.zbuf[idx] = z
			target.SetPixel(x, y, mesh.Color{
				R: lerp3(w0, w1, w2, a.c.R, b.c.R, c.c.R),
				G: lerp3(w0, w1, w2, a.c.G, b.c.G, c.c.G),
				B: lerp3(w0, w1, w2, a.c.B, b.c.B, c.c.B),
				A: 255,
			})
		}
	}
}

func (r *Renderer) drawWire(m *mesh.Mesh, vp transform.Mat4, target Target) {
	verts := make([]screenVert, len(m.Vertices))
	for i, p := range m.Vertices {
		verts[i], _ = r.project(vp, p)
	}
	col := m.Base
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a := verts[m.Indices[i]]
		b := verts[m.Indices[i+1]]
		c := verts[m.Indices[i+2]]
		if a.ok && b.ok {
			r.drawLine(a, b, col, target)
		}
		if b.ok && c.ok {
			r.drawLine(b, c, col, target)
		}
		if c.ok && a.ok {
			r.drawLine(c, a, col, target)
		}
	}
}

// drawLine is Bresenham with a depth test at each step.
func (r *Renderer) drawLine(a, b screenVert, col mesh.Color, target Target) {
	x0, y0 := int(a.x), int(a.y)
	x1, y1 := int(b.x), int(b.y)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	errAcc := dx + dy

	steps := abs(x1-x0) + abs(y1-y0)
	step := 0
	for {
		t := 0.0
		if steps > 0 {
			t = float64(step) / float64(steps)
		}
		z := a.z + (b.z-a.z)*t
		if x0 >= 0 && x0 < r.w && y0 >= 0 && y0 < r.h {
			idx := y0*r.w + x0
			// Slight bias so edges win against their own faces.
			if z-1e-5 <= r.zbuf[idx] {
				r.zbuf[idx] = z
				target.SetPixel(x0, y0, col)
			}
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * errAcc
		if e2 >= dy {
			errAcc += dy
			x0 += sx
		}
		if e2 <= dx {
			errAcc += dx
			y0 += sy
		}
		step++
	}
}

func edge(a, b screenVert, px, py float64) float64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

func lerp3(w0, w1, w2 float64, a, b, c uint8) uint8 {
	v := w0*float64(a) + w1*float64(b) + w2*float64(c)
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

func min3(a, b, c float64) float64 { return math.Min(a, math.Min(b, c)) }
func max3(a, b, c float64) float64 { return math.Max(a, math.Max(b, c)) }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
