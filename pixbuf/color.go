package pixbuf

import (
	"image/color"

	"github.com/chewxy/math32"
)

// Color is a non-premultiplied RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

var (
	Transparent = Color{1, 1, 1, 0}
	Black       = Color{0, 0, 0, 1}
	White       = Color{1, 1, 1, 1}
)

// Clamp limits every component to [0, 1].
func (c Color) Clamp() Color {
	return Color{clamp01(c.R), clamp01(c.G), clamp01(c.B), clamp01(c.A)}
}

func (c Color) components() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

func clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}

// ColorFrom converts any color.Color, e.g. one from
// golang.org/x/image/colornames.
func ColorFrom(c color.Color) Color {
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	return Color{
		R: float32(n.R) / 0xFFFF,
		G: float32(n.G) / 0xFFFF,
		B: float32(n.B) / 0xFFFF,
		A: float32(n.A) / 0xFFFF,
	}
}
