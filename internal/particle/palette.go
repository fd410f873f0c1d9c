package particle

import (
	"image/color"
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"
)

// Palette derives display colours and light trails from particle state.
type Palette struct {
	HueRotation float64 // hue turns per millisecond
	Saturation  float64
	TrailSpeed  float64 // minimum speed drawn as a line instead of a dot
	TrailLength float64 // tail length in ticks of velocity
}

// DefaultPalette matches the original look.
func DefaultPalette() Palette {
	return Palette{
		HueRotation: 0.0005,
		Saturation:  0.9,
		TrailSpeed:  3,
		TrailLength: 1.5,
	}
}

// DisplayHue rotates hue by elapsed time and wraps it into [0, 1).
func DisplayHue(hue float64, elapsed time.Duration, rate float64) float64 {
	h := math.Mod(hue+float64(elapsed.Milliseconds())*rate, 1)
	if h < 0 {
		h++
	}
	return h
}

// Lightness brightens fast particles.
func Lightness(speed float64) float64 {
	return math.Min(0.5+speed*0.03, 1)
}

// Color returns the RGB colour of s at the given elapsed time.
func (pal Palette) Color(s State, elapsed time.Duration) color.RGBA {
	h := DisplayHue(s.Hue, elapsed, pal.HueRotation)
	c := colorful.Hsv(h*360, pal.Saturation, Lightness(s.Speed()))
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Tail returns the far end of the light trail, or false when s is slow
// enough to be drawn as a dot.
func (pal Palette) Tail(s State) (r2.Vec, bool) {
	if s.Speed() <= pal.TrailSpeed {
		return r2.Vec{}, false
	}
	return r2.Sub(s.Pos, r2.Scale(pal.TrailLength, s.Vel)), true
}
