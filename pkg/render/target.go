package render

import (
	"image"
	"image/color"

	"github.com/tessera-io/tessera/pkg/mesh"
)

// Target is a pixel sink the renderer can draw into.
type Target interface {
	Size() (w, h int)
	SetPixel(x, y int, c mesh.Color)
	Clear(c mesh.Color)
}

// ImageTarget renders into an in-memory RGBA image.
type ImageTarget struct {
	Img *image.RGBA
}

// NewImageTarget allocates a w x h render target.
func NewImageTarget(w, h int) *ImageTarget {
	return &ImageTarget{Img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (t *ImageTarget) Size() (int, int) {
	b := t.Img.Bounds()
	return b.Dx(), b.Dy()
}

func (t *ImageTarget) SetPixel(x, y int, c mesh.Color) {
	t.Img.SetRGBA(x, y, color.RGBA{c.R, c.G, c.B, c.A})
}

func (t *ImageTarget) Clear(c mesh.Color) {
	b := t.Img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			t.Img.SetRGBA(x, y, color.RGBA{c.R, c.G, c.B, c.A})
		}
	}
}
