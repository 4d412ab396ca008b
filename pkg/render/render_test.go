package render

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-io/tessera/pkg/mesh"
	"github.com/tessera-io/tessera/pkg/transform"
)

func countNonBackground(t *testing.T, target *ImageTarget, bg mesh.Color) int {
	t.Helper()
	b := target.Img.Bounds()
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := target.Img.RGBAAt(x, y)
			if c.R != bg.R || c.G != bg.G || c.B != bg.B {
				n++
			}
		}
	}
	return n
}

func TestDrawSolidCoversPixels(t *testing.T) {
	s := NewScene(mesh.Sphere(1, 24, 12))
	target := NewImageTarget(120, 90)
	NewRenderer().Draw(s, target)

	covered := countNonBackground(t, target, s.Background)
	// A framed sphere should fill a decent chunk of the viewport.
	assert.Greater(t, covered, 120*90/20)
}

func TestDrawWireframeSparserThanSolid(t *testing.T) {
	m := mesh.Cube(1)
	solid := NewScene(m.Clone())
	wire := NewScene(m.Clone())
	wire.Mode = ModeWireframe

	ts := NewImageTarget(100, 100)
	tw := NewImageTarget(100, 100)
	NewRenderer().Draw(solid, ts)
	NewRenderer().Draw(wire, tw)

	ns := countNonBackground(t, ts, solid.Background)
	nw := countNonBackground(t, tw, wire.Background)
	assert.Greater(t, ns, 0)
	assert.Greater(t, nw, 0)
	assert.Less(t, nw, ns)
}

func TestVertexColorMode(t *testing.T) {
	m := mesh.Cube(1)
	m.Colors = make([]mesh.Color, len(m.Vertices))
	for i := range m.Colors {
		m.Colors[i] = mesh.RGB(255, 0, 0)
	}
	s := NewScene(m)
	s.Mode = ModeVertexColor
	s.Light = Light{Ambient: 1} // no diffuse, colors come through unscaled

	target := NewImageTarget(60, 60)
	NewRenderer().Draw(s, target)

	reds := 0
	b := target.Img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := target.Img.RGBAAt(x, y)
			if c.R > 200 && c.G == 0 && c.B == 0 {
				reds++
			}
		}
	}
	assert.Greater(t, reds, 0)
}

func TestCameraOrbitKeepsDistance(t *testing.T) {
	c := NewCamera(transform.V3(3, 0, 1))
	before := c.Eye.Sub(c.Target).Norm()
	c.Orbit(0.5, 0.2)
	after := c.Eye.Sub(c.Target).Norm()
	assert.InDelta(t, before, after, 1e-9)
}

func TestCameraDolly(t *testing.T) {
	c := NewCamera(transform.V3(4, 0, 0))
	c.Dolly(0.5)
	assert.InDelta(t, 2, c.Eye.Sub(c.Target).Norm(), 1e-9)

	// Refuses to dolly through the near plane.
	c.Dolly(1e-6)
	assert.Greater(t, c.Eye.Sub(c.Target).Norm(), c.Near)
}

func TestFrameAllCentersTarget(t *testing.T) {
	m := mesh.Cube(1)
	m.SetX(10)
	s := NewScene(m)
	assert.InDelta(t, 10, s.Camera.Target.X, 1e-9)
}

func TestWireframeImage(t *testing.T) {
	s := NewScene(mesh.Torus(1, 0.3, 16, 8))
	img := WireframeImage(s, 80, 60, 1)
	require.NotNil(t, img)

	drawn := 0
	for y := 0; y < 60; y++ {
		for x := 0; x < 80; x++ {
			c := img.RGBAAt(x, y)
			if c.R != s.Background.R || c.G != s.Background.G || c.B != s.Background.B {
				drawn++
			}
		}
	}
	assert.Greater(t, drawn, 0)
}

func TestWriteSnapshot(t *testing.T) {
	s := NewScene(mesh.Cube(1))
	path := filepath.Join(t.TempDir(), "out", "cube.png")
	require.NoError(t, WriteSnapshot(s, path, SnapshotOptions{Width: 64, Height: 48, Caption: "cube"}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())
}
