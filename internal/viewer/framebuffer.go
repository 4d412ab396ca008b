// Package viewer is the interactive mesh viewer: a bubbletea TUI that draws
// the software-rendered scene with half-block cells, plus an optional
// windowed mode.
package viewer

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// fbRenderer forces truecolor output. The framebuffer is an image, not text;
// degrading it to a 16-color profile would destroy it.
var fbRenderer = lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.TrueColor))

// ANSI converts an RGBA frame into terminal art. Each character cell shows
// two vertically stacked pixels via the upper half block: the foreground
// paints the top pixel, the background the bottom one.
func ANSI(img *image.RGBA) string {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var sb strings.Builder
	for y := 0; y < h-1; y += 2 {
		for x := 0; x < w; x++ {
			top := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			bot := img.RGBAAt(b.Min.X+x, b.Min.Y+y+1)
			style := fbRenderer.NewStyle().
				Foreground(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", top.R, top.G, top.B))).
				Background(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", bot.R, bot.G, bot.B)))
			sb.WriteString(style.Render("▀"))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
