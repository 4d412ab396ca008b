package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// SnapshotOptions configure WriteSnapshot.
type SnapshotOptions struct {
	Width, Height int
	Caption       string
	Wireframe     bool // use the anti-aliased line pass instead of the solid one
}

// Snapshot renders the scene to a new image. With Wireframe set it uses the
// anti-aliased vector pass, otherwise the z-buffered solid pass.
func Snapshot(s *Scene, opts SnapshotOptions) *image.RGBA {
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = 800
	}
	if h <= 0 {
		h = 600
	}
	var img *image.RGBA
	if opts.Wireframe {
		img = WireframeImage(s, w, h, 1.2)
	} else {
		target := NewImageTarget(w, h)
		NewRenderer().Draw(s, target)
		img = target.Img
	}
	if opts.Caption != "" {
		drawCaption(img, opts.Caption)
	}
	return img
}

// WriteSnapshot renders the scene and writes it as a PNG, creating parent
// directories as needed.
func WriteSnapshot(s *Scene, path string, opts SnapshotOptions) error {
	img := Snapshot(s, opts)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("snapshot dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return f.Close()
}

// drawCaption paints text in the lower-left corner over a dark strip.
func drawCaption(img *image.RGBA, text string) {
	b := img.Bounds()
	face := basicfont.Face7x13
	pad := 4
	stripH := face.Metrics().Height.Ceil() + 2*pad
	strip := image.Rect(b.Min.X, b.Max.Y-stripH, b.Max.X, b.Max.Y)
	draw.Draw(img, strip, &image.Uniform{color.RGBA{0, 0, 0, 200}}, image.Point{}, draw.Over)

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{235, 235, 235, 255}),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(b.Min.X + pad),
			Y: fixed.I(b.Max.Y - pad - face.Descent),
		},
	}
	d.DrawString(text)
}
