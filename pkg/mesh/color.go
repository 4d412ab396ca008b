package mesh

import (
	"fmt"
	"image/color"
	"math/rand"
)

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// RGB builds an opaque color.
func RGB(r, g, b uint8) Color { return Color{r, g, b, 255} }

// RGBA implements image/color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{c.R, c.G, c.B, c.A}.RGBA()
}

// Random returns a random opaque color drawn from rng.
func Random(rng *rand.Rand) Color {
	return RGB(uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)))
}

// namedColors is a small web-ish palette used to describe colors in words.
var namedColors = []struct {
	name string
	c    Color
}{
	{"black", RGB(0, 0, 0)},
	{"white", RGB(255, 255, 255)},
	{"gray", RGB(128, 128, 128)},
	{"silver", RGB(192, 192, 192)},
	{"red", RGB(255, 0, 0)},
	{"dark red", RGB(139, 0, 0)},
	{"orange", RGB(255, 165, 0)},
	{"gold", RGB(255, 215, 0)},
	{"yellow", RGB(255, 255, 0)},
	{"olive", RGB(128, 128, 0)},
	{"green", RGB(0, 200, 0)},
	{"dark green", RGB(0, 100, 0)},
	{"lime", RGB(50, 205, 50)},
	{"teal", RGB(0, 128, 128)},
	{"cyan", RGB(0, 255, 255)},
	{"sky blue", RGB(135, 206, 235)},
	{"blue", RGB(0, 0, 255)},
	{"navy", RGB(0, 0, 128)},
	{"purple", RGB(128, 0, 128)},
	{"violet", RGB(238, 130, 238)},
	{"magenta", RGB(255, 0, 255)},
	{"pink", RGB(255, 192, 203)},
	{"brown", RGB(139, 69, 19)},
	{"tan", RGB(210, 180, 140)},
	{"coral", RGB(255, 127, 80)},
	{"salmon", RGB(250, 128, 114)},
	{"indigo", RGB(75, 0, 130)},
	{"turquoise", RGB(64, 224, 208)},
}

// Name returns the closest palette name for c.
func (c Color) Name() string {
	best := namedColors[0].name
	bestDist := 1 << 30
	for _, nc := range namedColors {
		dr := int(c.R) - int(nc.c.R)
		dg := int(c.G) - int(nc.c.G)
		db := int(c.B) - int(nc.c.B)
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			bestDist = d
			best = nc.name
		}
	}
	return best
}

// Describe returns a human sentence fragment for c, name plus RGB triple.
func (c Color) Describe() string {
	return fmt.Sprintf("%s (%d, %d, %d)", c.Name(), c.R, c.G, c.B)
}

// Lerp blends a towards b by t in [0,1].
func Lerp(a, b Color, t float64) Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t) }
	return Color{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), mix(a.A, b.A)}
}
