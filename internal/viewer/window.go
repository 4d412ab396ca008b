package viewer

import (
	"fmt"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/tessera-io/tessera/pkg/mesh"
	"github.com/tessera-io/tessera/pkg/render"
)

// Window is the ebiten-backed viewer. Same widgets and bindings as the TUI:
// space randomizes the color, arrow keys slide x, h/l/j/k orbit, +/- zoom,
// w toggles wireframe.
type Window struct {
	scene    *render.Scene
	subject  *mesh.Mesh
	renderer *render.Renderer
	target   *render.ImageTarget

	sliderX float64
	status  string
	rng     *rand.Rand
	dirty   bool
}

// NewWindow builds the windowed viewer around one mesh.
func NewWindow(m *mesh.Mesh, rng *rand.Rand) *Window {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Window{
		scene:    render.NewScene(m),
		subject:  m,
		renderer: render.NewRenderer(),
		sliderX:  m.Center().X,
		status:   "space: color  arrows: x  h/l/j/k: orbit  +/-: zoom  w: wire",
		rng:      rng,
		dirty:    true,
	}
}

// Run opens the window and blocks until it is closed.
func (w *Window) Run(title string, width, height int) error {
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle(title)
	return ebiten.RunGame(w)
}

// Update implements ebiten.Game.
func (w *Window) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		c := mesh.Random(w.rng)
		w.subject.SetColor(c)
		w.status = fmt.Sprintf("color is now %s", c.Describe())
		w.dirty = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		w.slide(sliderStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		w.slide(-sliderStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyW) {
		if w.scene.Mode == render.ModeWireframe {
			w.scene.Mode = render.ModeFlat
		} else {
			w.scene.Mode = render.ModeWireframe
		}
		w.dirty = true
	}

	const d = 0.05
	if ebiten.IsKeyPressed(ebiten.KeyH) {
		w.scene.Camera.Orbit(-d, 0)
		w.dirty = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyL) {
		w.scene.Camera.Orbit(d, 0)
		w.dirty = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyJ) {
		w.scene.Camera.Orbit(0, -d)
		w.dirty = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyK) {
		w.scene.Camera.Orbit(0, d)
		w.dirty = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyEqual) {
		w.scene.Camera.Dolly(0.98)
		w.dirty = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyMinus) {
		w.scene.Camera.Dolly(1.02)
		w.dirty = true
	}
	return nil
}

func (w *Window) slide(delta float64) {
	w.sliderX += delta
	if w.sliderX < sliderMin {
		w.sliderX = sliderMin
	}
	if w.sliderX > sliderMax {
		w.sliderX = sliderMax
	}
	w.subject.SetX(w.sliderX)
	w.status = fmt.Sprintf("x position %.1f", w.sliderX)
	w.dirty = true
}

// Draw implements ebiten.Game.
func (w *Window) Draw(screen *ebiten.Image) {
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	if w.target == nil || !sameSize(w.target, sw, sh) {
		w.target = render.NewImageTarget(sw, sh)
		w.dirty = true
	}
	if w.dirty {
		w.renderer.Draw(w.scene, w.target)
		w.dirty = false
	}
	screen.WritePixels(w.target.Img.Pix)
	ebitenutil.DebugPrint(screen, w.status)
}

// Layout implements ebiten.Game.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func sameSize(t *render.ImageTarget, w, h int) bool {
	tw, th := t.Size()
	return tw == w && th == h
}
