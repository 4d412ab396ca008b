package render

import (
	"github.com/tessera-io/tessera/pkg/mesh"
	"github.com/tessera-io/tessera/pkg/transform"
)

// Mode selects how triangles are shaded.
type Mode int

const (
	ModeFlat Mode = iota
	ModeVertexColor
	ModeWireframe
)

// Light is a single directional light plus an ambient floor.
type Light struct {
	Direction transform.Vec3 // towards the scene
	Ambient   float64        // 0..1
	Diffuse   float64        // 0..1
}

// DefaultLight illuminates from over the viewer's left shoulder.
func DefaultLight() Light {
	return Light{
		Direction: transform.V3(-0.5, -0.3, -1).Normalized(),
		Ambient:   0.25,
		Diffuse:   0.75,
	}
}

// Scene is a list of meshes with a camera, light and background.
type Scene struct {
	Meshes     []*mesh.Mesh
	Camera     *Camera
	Light      Light
	Background mesh.Color
	Mode       Mode
}

// NewScene builds a scene with a default camera placement for the given
// meshes: the camera backs away along +x/+y until everything fits.
func NewScene(meshes ...*mesh.Mesh) *Scene {
	s := &Scene{
		Meshes:     meshes,
		Light:      DefaultLight(),
		Background: mesh.RGB(16, 16, 24),
	}
	s.Camera = NewCamera(transform.V3(3, 3, 2))
	s.FrameAll()
	return s
}

// FrameAll repositions the camera target to the combined center and backs the
// eye off to a distance proportional to the scene radius.
func (s *Scene) FrameAll() {
	if s.Camera == nil || len(s.Meshes) == 0 {
		return
	}
	lo, hi := s.Meshes[0].Bounds()
	for _, m := range s.Meshes[1:] {
		mlo, mhi := m.Bounds()
		if mlo.X < lo.X {
			lo.X = mlo.X
		}
		if mlo.Y < lo.Y {
			lo.Y = mlo.Y
		}
		if mlo.Z < lo.Z {
			lo.Z = mlo.Z
		}
		if mhi.X > hi.X {
			hi.X = mhi.X
		}
		if mhi.Y > hi.Y {
			hi.Y = mhi.Y
		}
		if mhi.Z > hi.Z {
			hi.Z = mhi.Z
		}
	}
	center := lo.Add(hi).Mul(0.5)
	radius := hi.Sub(lo).Norm() / 2
	if radius == 0 {
		radius = 1
	}
	dir := s.Camera.Eye.Sub(s.Camera.Target).Normalized()
	if dir == (transform.Vec3{}) {
		dir = transform.V3(1, 1, 0.6).Normalized()
	}
	s.Camera.Target = center
	s.Camera.Eye = center.Add(dir.Mul(radius * 3))
	s.Camera.OrthoScale = radius * 1.2
}
