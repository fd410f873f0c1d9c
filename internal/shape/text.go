package shape

import (
	"fmt"
	"image"
	"math"
	"math/rand"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// maskThreshold is the alpha above which a glyph pixel counts as inside.
	maskThreshold = 127

	defaultAttemptsPerPoint = 1000
)

var boldFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(gobold.TTF)
})

// Mask is a binary occupancy mask of rendered text.
type Mask struct {
	img    *image.Alpha
	filled int
}

// RasterizeText renders text in Go Bold at the given pixel size.
func RasterizeText(text string, size float64) (*Mask, error) {
	f, err := boldFont()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	defer face.Close()

	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	width := font.MeasureString(face, text).Ceil()
	height := ascent + metrics.Descent.Ceil()

	img := image.NewAlpha(image.Rect(0, 0, width, height))
	d := font.Drawer{
		Dst:  img,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, ascent),
	}
	d.DrawString(text)

	m := &Mask{img: img}
	for _, a := range img.Pix {
		if a > maskThreshold {
			m.filled++
		}
	}
	return m, nil
}

// Bounds returns the mask rectangle, anchored at the origin.
func (m *Mask) Bounds() image.Rectangle {
	return m.img.Bounds()
}

// Contains reports whether pixel (x, y) is covered by a glyph.
func (m *Mask) Contains(x, y int) bool {
	return m.img.AlphaAt(x, y).A > maskThreshold
}

// Coverage is the fraction of mask pixels covered by glyphs.
func (m *Mask) Coverage() float64 {
	area := m.Bounds().Dx() * m.Bounds().Dy()
	if area == 0 {
		return 0
	}
	return float64(m.filled) / float64(area)
}

// Origin is the canvas position of the mask's top-left pixel when the mask
// is centered on a w x h canvas.
func (m *Mask) Origin(w, h float64) r2.Vec {
	return r2.Vec{
		X: math.Floor(w/2) - float64(m.Bounds().Dx()/2),
		Y: math.Floor(h/2) - float64(m.Bounds().Dy()/2),
	}
}

// TextOptions configures the text sampler.
type TextOptions struct {
	Text     string
	FontSize float64
	// MaxAttempts caps the rejection sampler; zero means 1000 per point.
	MaxAttempts int
}

// Text rejection-samples n points inside the rendered text, centered on a
// w x h canvas. Samples that would land outside the canvas are rejected too.
func Text(rng *rand.Rand, n int, opts TextOptions, w, h float64) (Points, error) {
	fail := func(accepted, attempts int, reason string) error {
		return &GenerationError{Text: opts.Text, Wanted: n, Accepted: accepted, Attempts: attempts, Reason: reason}
	}
	if n <= 0 {
		return nil, fail(0, 0, "no points requested")
	}

	mask, err := RasterizeText(opts.Text, opts.FontSize)
	if err != nil {
		return nil, fail(0, 0, err.Error())
	}
	if mask.filled == 0 {
		return nil, fail(0, 0, "text renders no glyph pixels")
	}
	return MaskPoints(rng, mask, n, opts, w, h)
}

// MaskPoints rejection-samples n points from an already rasterized mask.
// Only opts.MaxAttempts and opts.Text are consulted.
func MaskPoints(rng *rand.Rand, mask *Mask, n int, opts TextOptions, w, h float64) (Points, error) {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = n * defaultAttemptsPerPoint
	}

	mw, mh := mask.Bounds().Dx(), mask.Bounds().Dy()
	if mw == 0 || mh == 0 {
		return nil, &GenerationError{Text: opts.Text, Wanted: n, Reason: "empty mask"}
	}
	origin := mask.Origin(w, h)

	pts := make(Points, 0, n)
	attempts := 0
	for len(pts) < n {
		if attempts == maxAttempts {
			return nil, &GenerationError{
				Text: opts.Text, Wanted: n, Accepted: len(pts), Attempts: attempts,
				Reason: "retry budget exhausted",
			}
		}
		attempts++

		x, y := rng.Intn(mw), rng.Intn(mh)
		if !mask.Contains(x, y) {
			continue
		}
		p := r2.Vec{X: origin.X + float64(x), Y: origin.Y + float64(y)}
		if p.X < 0 || p.X > w || p.Y < 0 || p.Y > h {
			continue
		}
		pts = append(pts, p)
	}
	return pts, nil
}
