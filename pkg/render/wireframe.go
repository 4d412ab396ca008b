package render

import (
	"image"
	"image/color"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"github.com/tessera-io/tessera/pkg/transform"
)

// WireframeImage draws the scene's meshes as anti-aliased line work into a
// new RGBA image. Unlike the z-buffered ModeWireframe pass this draws every
// edge, which reads better for small documentation figures.
func WireframeImage(s *Scene, w, h int, strokeWidth float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	bg := color.RGBA{s.Background.R, s.Background.G, s.Background.B, 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, bg)
		}
	}
	if s.Camera == nil || strokeWidth <= 0 {
		return img
	}

	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	dasher.SetStroke(
		fixed.Int26_6(strokeWidth*64), fixed.Int26_6(4*64),
		rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap,
		rasterx.Round, nil, 0,
	)

	vp := transform.Mul(
		s.Camera.ProjectionMatrix(float64(w)/float64(h)),
		s.Camera.ViewMatrix(),
	)
	r := &Renderer{w: w, h: h}

	for _, m := range s.Meshes {
		scanner.SetColor(color.RGBA{m.Base.R, m.Base.G, m.Base.B, 255})

		verts := make([]screenVert, len(m.Vertices))
		for i, p := range m.Vertices {
			verts[i], _ = r.project(vp, p)
		}
		seen := map[[2]uint32]bool{}
		stroke := func(a, b screenVert) {
			dasher.Start(fixed.Point26_6{X: fixed.Int26_6(a.x * 64), Y: fixed.Int26_6(a.y * 64)})
			dasher.Line(fixed.Point26_6{X: fixed.Int26_6(b.x * 64), Y: fixed.Int26_6(b.y * 64)})
			dasher.Stop(false)
		}
		for i := 0; i+2 < len(m.Indices); i += 3 {
			tri := [3]uint32{m.Indices[i], m.Indices[i+1], m.Indices[i+2]}
			for e := 0; e < 3; e++ {
				i0, i1 := tri[e], tri[(e+1)%3]
				if i0 > i1 {
					i0, i1 = i1, i0
				}
				key := [2]uint32{i0, i1}
				if seen[key] || !verts[i0].ok || !verts[i1].ok {
					continue
				}
				seen[key] = true
				stroke(verts[i0], verts[i1])
			}
		}
		dasher.Draw()
		dasher.Clear()
	}
	return img
}
