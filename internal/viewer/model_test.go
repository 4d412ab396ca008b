package viewer

import (
	"image"
	"image/color"
	"math/rand"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-io/tessera/pkg/mesh"
	"github.com/tessera-io/tessera/pkg/render"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	m := NewModel(mesh.Cube(1), rand.New(rand.NewSource(42)))
	// Small framebuffer keeps tests fast.
	m.fbW, m.fbH = 32, 24
	m.redraw()
	return m
}

func press(m *Model, k string) *Model {
	var msg tea.KeyMsg
	switch k {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, _ := m.Update(msg)
	return next.(*Model)
}

func TestButtonRandomizesColorAndDescribes(t *testing.T) {
	m := newTestModel(t)
	before := m.Subject().Base

	m = press(m, "enter")
	after := m.Subject().Base
	assert.NotEqual(t, before, after)
	assert.True(t, strings.HasPrefix(m.Status(), "color is now "), m.Status())
	assert.Contains(t, m.Status(), after.Name())
}

func TestSliderMovesMesh(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "tab") // focus slider

	m = press(m, "right")
	m = press(m, "right")
	assert.InDelta(t, 0.2, m.SliderX(), 1e-9)
	assert.InDelta(t, 0.2, m.Subject().Center().X, 1e-9)
	assert.Equal(t, "x position 0.2", m.Status())

	// Clamped at both ends.
	for i := 0; i < 50; i++ {
		m = press(m, "right")
	}
	assert.InDelta(t, 3.0, m.SliderX(), 1e-9)
	for i := 0; i < 50; i++ {
		m = press(m, "left")
	}
	assert.InDelta(t, 0.0, m.SliderX(), 1e-9)
}

func TestSliderIgnoredWhenButtonFocused(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "right")
	assert.InDelta(t, 0, m.SliderX(), 1e-9)
}

func TestEveryMutationRedraws(t *testing.T) {
	m := newTestModel(t)
	frame0 := m.frame

	m = press(m, "enter") // color change must show up immediately
	require.NotEqual(t, frame0, m.frame)

	frame1 := m.frame
	m = press(m, "tab")
	m = press(m, "right")
	assert.NotEqual(t, frame1, m.frame)
}

func TestWireframeToggle(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, render.ModeFlat, m.scene.Mode)
	m = press(m, "w")
	assert.Equal(t, render.ModeWireframe, m.scene.Mode)
	m = press(m, "w")
	assert.Equal(t, render.ModeFlat, m.scene.Mode)
}

func TestOrbitAndZoomChangeCamera(t *testing.T) {
	m := newTestModel(t)
	eye := m.scene.Camera.Eye
	m = press(m, "h")
	assert.NotEqual(t, eye, m.scene.Camera.Eye)

	dist := m.scene.Camera.Eye.Sub(m.scene.Camera.Target).Norm()
	m = press(m, "+")
	assert.Less(t, m.scene.Camera.Eye.Sub(m.scene.Camera.Target).Norm(), dist)
}

func TestQuit(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, "", next.(*Model).View())
}

func TestANSIFramebuffer(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	img.SetRGBA(1, 1, color.RGBA{0, 0, 255, 255})

	out := ANSI(img)
	// One text row for two pixel rows, two cells wide.
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Equal(t, 2, strings.Count(out, "▀"))
}
