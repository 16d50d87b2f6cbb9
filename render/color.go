package render

import (
	"image/color"

	"github.com/chewxy/math32"
	"github.com/fogleman/fauxgl"
	"gonum.org/v1/gonum/spatial/r3"
)

// Color is a linear RGBA color as stored in a floating point color buffer.
// Components are not clamped until the color is converted for output.
type Color struct {
	R, G, B, A float32
}

// ColorFrom converts c to a non-premultiplied Color.
func ColorFrom(c color.Color) Color {
	fc := fauxgl.MakeColor(c)
	if fc.A > 0 && fc.A < 1 {
		fc.R /= fc.A
		fc.G /= fc.A
		fc.B /= fc.A
	}
	return Color{R: float32(fc.R), G: float32(fc.G), B: float32(fc.B), A: float32(fc.A)}
}

// HexColor parses a color of the form "#RRGGBB".
func HexColor(hex string) Color {
	c := fauxgl.HexColor(hex)
	return Color{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: float32(c.A)}
}

// NRGBA clamps c to [0,1] and converts it to an 8 bit color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: to8(c.R),
		G: to8(c.G),
		B: to8(c.B),
		A: to8(c.A),
	}
}

func to8(v float32) uint8 {
	if math32.IsNaN(v) {
		return 0
	}
	return uint8(math32.Round(clamp(v) * 0xff))
}

func clamp(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}

// Composite overlays a lighting contribution on bg. blend is applied twice:
// the returned color is bg + blend*lighting and its alpha is blend. With
// the default blend of 0.5 the lighting is halved and the pixel is half
// transparent. Background color channels pass through unscaled.
func Composite(bg Color, lighting r3.Vec, blend float32) Color {
	return Color{
		R: bg.R + blend*float32(lighting.X),
		G: bg.G + blend*float32(lighting.Y),
		B: bg.B + blend*float32(lighting.Z),
		A: blend,
	}
}
