// Package shape precomputes the target point sets used by the shape modes.
//
// Every generator draws from a caller supplied *rand.Rand, so a fixed seed
// reproduces the same point set.
package shape

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrGeneration matches every *GenerationError.
var ErrGeneration = errors.New("shape generation failed")

// GenerationError reports a shape that could not be sampled.
type GenerationError struct {
	Text     string
	Wanted   int
	Accepted int
	Attempts int
	Reason   string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("shape %q: %s (accepted %d/%d after %d attempts)",
		e.Text, e.Reason, e.Accepted, e.Wanted, e.Attempts)
}

// Is makes errors.Is(err, ErrGeneration) hold.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}

// Points is an immutable target shape.
type Points []r2.Vec

// Target returns the target point for particle i.
func (p Points) Target(i int) r2.Vec {
	return p[i%len(p)]
}

// Heart samples n points on the parametric heart curve centered on a w x h
// canvas. scale is reduced when the curve would not fit the canvas.
func Heart(rng *rand.Rand, n int, scale, w, h float64) Points {
	// The curve spans x in [-16, 16] and y in about [-12, 17].
	scale = math.Min(scale, math.Min(w/2/16, h/2/17))
	pts := make(Points, n)
	for i := range pts {
		t := rng.Float64() * 2 * math.Pi
		sin := math.Sin(t)
		x := 16 * sin * sin * sin
		y := -(13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t))
		pts[i] = r2.Vec{X: w/2 + x*scale, Y: h/2 + y*scale}
	}
	return pts
}
