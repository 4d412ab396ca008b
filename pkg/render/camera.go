// Package render is a small software renderer: z-buffered triangle
// rasterization onto any pixel target, wireframe and flat/vertex-color
// shading, PNG snapshots.
package render

import (
	"math"

	"github.com/tessera-io/tessera/pkg/transform"
)

// Projection selects the camera projection kind.
type Projection int

const (
	Perspective Projection = iota
	Orthographic
)

// Camera looks from Eye towards Target with the given Up hint.
type Camera struct {
	Eye    transform.Vec3
	Target transform.Vec3
	Up     transform.Vec3

	Projection Projection
	FovYDeg    float64 // perspective vertical field of view
	OrthoScale float64 // half-height of the ortho volume
	Near, Far  float64
}

// NewCamera returns a perspective camera at eye looking at the origin.
func NewCamera(eye transform.Vec3) *Camera {
	return &Camera{
		Eye:        eye,
		Up:         transform.V3(0, 0, 1),
		FovYDeg:    45,
		OrthoScale: 2,
		Near:       0.1,
		Far:        100,
	}
}

// ViewMatrix returns the world-to-camera matrix.
func (c *Camera) ViewMatrix() transform.Mat4 {
	up := c.Up
	if up == (transform.Vec3{}) {
		up = transform.V3(0, 0, 1)
	}
	return transform.LookAt(c.Eye, c.Target, up)
}

// ProjectionMatrix returns the camera-to-clip matrix for the given aspect.
func (c *Camera) ProjectionMatrix(aspect float64) transform.Mat4 {
	if c.Projection == Orthographic {
		h := c.OrthoScale
		w := h * aspect
		return transform.Ortho(-w, w, -h, h, c.Near, c.Far)
	}
	return transform.Perspective(c.FovYDeg*math.Pi/180, aspect, c.Near, c.Far)
}

// Orbit moves the eye around the target on a sphere, by the given azimuth and
// elevation deltas in radians. Elevation is clamped away from the poles.
func (c *Camera) Orbit(dAzimuth, dElevation float64) {
	rel := c.Eye.Sub(c.Target)
	r := rel.Norm()
	if r == 0 {
		return
	}
	azimuth := math.Atan2(rel.Y, rel.X) + dAzimuth
	elevation := math.Asin(clamp(rel.Z/r, -1, 1)) + dElevation

	const maxEl = math.Pi/2 - 0.01
	elevation = clamp(elevation, -maxEl, maxEl)

	c.Eye = c.Target.Add(transform.Vec3{
		X: r * math.Cos(elevation) * math.Cos(azimuth),
		Y: r * math.Cos(elevation) * math.Sin(azimuth),
		Z: r * math.Sin(elevation),
	})
}

// Dolly scales the eye-target distance by factor (>1 moves away).
func (c *Camera) Dolly(factor float64) {
	if factor <= 0 {
		return
	}
	rel := c.Eye.Sub(c.Target).Mul(factor)
	if rel.Norm() < c.Near*2 {
		return
	}
	c.Eye = c.Target.Add(rel)
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
