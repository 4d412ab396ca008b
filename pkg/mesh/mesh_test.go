package mesh

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-io/tessera/pkg/transform"
)

func TestCubeBoundsAndCenter(t *testing.T) {
	c := Cube(2)
	lo, hi := c.Bounds()
	assert.InDelta(t, -1, lo.X, 1e-12)
	assert.InDelta(t, 1, hi.Z, 1e-12)

	center := c.Center()
	assert.InDelta(t, 0, center.X, 1e-12)
	assert.InDelta(t, 0, center.Y, 1e-12)
	assert.InDelta(t, 0, center.Z, 1e-12)
	assert.Equal(t, 12, c.NTriangles())
}

func TestSetX(t *testing.T) {
	c := Cube(1)
	c.SetX(2.5)
	assert.InDelta(t, 2.5, c.Center().X, 1e-12)
	// y and z untouched
	assert.InDelta(t, 0, c.Center().Y, 1e-12)
	assert.InDelta(t, 0, c.Center().Z, 1e-12)

	// Setting again is idempotent in effect.
	c.SetX(2.5)
	assert.InDelta(t, 2.5, c.Center().X, 1e-12)
}

func TestApplyTransform(t *testing.T) {
	c := Cube(1)
	lt := transform.NewLinear().Translate(transform.V3(0, 0, 5))
	c.Apply(lt)
	assert.InDelta(t, 5, c.Center().Z, 1e-12)
	require.Len(t, c.Normals, len(c.Vertices))
}

func TestSphereNormalsPointOutward(t *testing.T) {
	s := Sphere(2, 16, 8)
	require.Len(t, s.Normals, len(s.Vertices))
	for i, v := range s.Vertices {
		if v.Norm() < 1e-9 {
			continue
		}
		// Normal roughly parallel to the radial direction.
		d := transform.Dot(s.Normals[i], v.Normalized())
		assert.Greater(t, d, 0.9, "vertex %d", i)
	}
}

func TestTorusVertexCount(t *testing.T) {
	tor := Torus(1, 0.3, 12, 8)
	assert.Len(t, tor.Vertices, 12*8)
	assert.Equal(t, 12*8*2, tor.NTriangles())
}

func TestCloneIsDeep(t *testing.T) {
	c := Cube(1)
	c.Colors = make([]Color, len(c.Vertices))
	cl := c.Clone()
	cl.Vertices[0].X = 99
	cl.Colors[0] = RGB(1, 2, 3)
	assert.NotEqual(t, c.Vertices[0].X, cl.Vertices[0].X)
	assert.NotEqual(t, c.Colors[0], cl.Colors[0])
}

func TestColorNameAndDescribe(t *testing.T) {
	assert.Equal(t, "red", RGB(250, 5, 5).Name())
	assert.Equal(t, "blue", RGB(10, 10, 240).Name())
	assert.Equal(t, "black", RGB(5, 5, 5).Name())
	assert.Equal(t, "white (255, 255, 255)", RGB(255, 255, 255).Describe())
}

func TestRandomColorDeterministic(t *testing.T) {
	a := Random(rand.New(rand.NewSource(7)))
	b := Random(rand.New(rand.NewSource(7)))
	assert.Equal(t, a, b)
	assert.EqualValues(t, 255, a.A)
}

func TestByName(t *testing.T) {
	for _, name := range []string{"torus", "sphere", "cube", "plane"} {
		m, ok := ByName(name)
		require.True(t, ok, name)
		assert.NotEmpty(t, m.Vertices)
	}
	_, ok := ByName("teapot")
	assert.False(t, ok)
}
