package viewer

import (
	"fmt"
	"math/rand"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessera-io/tessera/pkg/mesh"
	"github.com/tessera-io/tessera/pkg/render"
)

// focus identifies which widget receives activation keys.
type focus int

const (
	focusButton focus = iota
	focusSlider
)

const (
	sliderMin  = 0.0
	sliderMax  = 3.0
	sliderStep = 0.1
)

// keyMap defines the viewer bindings.
type keyMap struct {
	Tab   key.Binding
	Press key.Binding
	Left  key.Binding
	Right key.Binding
	Orbit key.Binding
	Zoom  key.Binding
	Wire  key.Binding
	Quit  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Tab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch widget")),
		Press: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "press button")),
		Left:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "slide x")),
		Right: key.NewBinding(key.WithKeys("right")),
		Orbit: key.NewBinding(key.WithKeys("h", "l", "j", "k"), key.WithHelp("h/l/j/k", "orbit")),
		Zoom:  key.NewBinding(key.WithKeys("+", "-"), key.WithHelp("+/-", "zoom")),
		Wire:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "wireframe")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Press, k.Left, k.Orbit, k.Zoom, k.Wire, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// Model is the bubbletea model for the viewer. It owns the scene and
// re-renders the framebuffer after every mutation, so what is on screen
// always reflects the latest state.
type Model struct {
	scene    *render.Scene
	subject  *mesh.Mesh
	renderer *render.Renderer

	fbW, fbH int
	frame    string

	focused  focus
	sliderX  float64
	status   string
	rng      *rand.Rand
	keys     keyMap
	help     help.Model
	quitting bool
}

// NewModel builds a viewer around one mesh. The rng drives the color button;
// pass a seeded source in tests.
func NewModel(m *mesh.Mesh, rng *rand.Rand) *Model {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	mdl := &Model{
		scene:    render.NewScene(m),
		subject:  m,
		renderer: render.NewRenderer(),
		fbW:      96,
		fbH:      56,
		focused:  focusButton,
		sliderX:  m.Center().X,
		status:   "ready",
		rng:      rng,
		keys:     defaultKeyMap(),
		help:     help.New(),
	}
	mdl.redraw()
	return mdl
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Two pixels per cell row; leave space for the widget panel.
		w := msg.Width
		h := (msg.Height - 7) * 2
		if w >= 16 && h >= 16 {
			m.fbW, m.fbH = w, h
			m.redraw()
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			if m.focused == focusButton {
				m.focused = focusSlider
			} else {
				m.focused = focusButton
			}
			return m, nil
		case key.Matches(msg, m.keys.Press):
			if m.focused == focusButton {
				m.pressButton()
			}
			return m, nil
		case key.Matches(msg, m.keys.Left):
			if m.focused == focusSlider {
				m.slide(-sliderStep)
			}
			return m, nil
		case key.Matches(msg, m.keys.Right):
			if m.focused == focusSlider {
				m.slide(sliderStep)
			}
			return m, nil
		case key.Matches(msg, m.keys.Wire):
			if m.scene.Mode == render.ModeWireframe {
				m.scene.Mode = render.ModeFlat
			} else {
				m.scene.Mode = render.ModeWireframe
			}
			m.redraw()
			return m, nil
		case key.Matches(msg, m.keys.Orbit):
			const d = 0.15
			switch msg.String() {
			case "h":
				m.scene.Camera.Orbit(-d, 0)
			case "l":
				m.scene.Camera.Orbit(d, 0)
			case "j":
				m.scene.Camera.Orbit(0, -d)
			case "k":
				m.scene.Camera.Orbit(0, d)
			}
			m.redraw()
			return m, nil
		case key.Matches(msg, m.keys.Zoom):
			if msg.String() == "+" {
				m.scene.Camera.Dolly(0.9)
			} else {
				m.scene.Camera.Dolly(1.1)
			}
			m.redraw()
			return m, nil
		}
	}
	return m, nil
}

// pressButton is the notebook demo's button: pick a random color, apply it,
// and say what it looks like.
func (m *Model) pressButton() {
	c := mesh.Random(m.rng)
	m.subject.SetColor(c)
	m.status = fmt.Sprintf("color is now %s", c.Describe())
	m.redraw()
}

// slide moves the mesh along x, clamped to the slider range.
func (m *Model) slide(delta float64) {
	m.sliderX += delta
	if m.sliderX < sliderMin {
		m.sliderX = sliderMin
	}
	if m.sliderX > sliderMax {
		m.sliderX = sliderMax
	}
	m.subject.SetX(m.sliderX)
	m.status = fmt.Sprintf("x position %.1f", m.sliderX)
	m.redraw()
}

// SliderX exposes the slider value, mainly for tests.
func (m *Model) SliderX() float64 { return m.sliderX }

// Status exposes the status line, mainly for tests.
func (m *Model) Status() string { return m.status }

// Subject exposes the viewed mesh, mainly for tests.
func (m *Model) Subject() *mesh.Mesh { return m.subject }

func (m *Model) redraw() {
	target := render.NewImageTarget(m.fbW, m.fbH)
	m.renderer.Draw(m.scene, target)
	m.frame = ANSI(target.Img)
}

var (
	focusedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a78bfa")).Border(lipgloss.RoundedBorder())
	blurredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280")).Border(lipgloss.RoundedBorder())
	statusStyle  = lipgloss.NewStyle().Italic(true)
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	button := " randomize color "
	slider := fmt.Sprintf(" x: %s %.1f ", sliderBar(m.sliderX), m.sliderX)
	if m.focused == focusButton {
		button = focusedStyle.Render(button)
		slider = blurredStyle.Render(slider)
	} else {
		button = blurredStyle.Render(button)
		slider = focusedStyle.Render(slider)
	}

	widgets := lipgloss.JoinHorizontal(lipgloss.Center, button, "  ", slider)
	return m.frame + "\n" +
		widgets + "\n" +
		statusStyle.Render(m.status) + "\n" +
		m.help.View(m.keys)
}

// sliderBar draws a 16-cell track with a handle.
func sliderBar(v float64) string {
	const cells = 16
	pos := int((v - sliderMin) / (sliderMax - sliderMin) * (cells - 1))
	var sb []rune
	for i := 0; i < cells; i++ {
		if i == pos {
			sb = append(sb, '●')
		} else {
			sb = append(sb, '─')
		}
	}
	return string(sb)
}
