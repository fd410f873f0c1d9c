package input

import (
	"github.com/aquilax/go-perlin"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	noiseAlpha   = 2.0
	noiseBeta    = 2.0
	noiseOctaves = 3

	wanderSpeed = 0.004 // noise units per tick
	grabSpeed   = 0.002
	// laneOffset keeps every hand on its own noise lane, off the lattice
	// points where perlin noise is always zero.
	laneOffset = 37.5
)

// Wanderer is a Source of synthetic hands drifting along perlin noise paths.
// Each hand also opens and closes on its own noise lane.
type Wanderer struct {
	noise *perlin.Perlin
	count int
	w, h  float64
}

// NewWanderer returns a Wanderer with count hands on a w x h canvas.
func NewWanderer(seed int64, count int, w, h float64) *Wanderer {
	return &Wanderer{
		noise: perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed),
		count: count,
		w:     w,
		h:     h,
	}
}

// Hands implements Source.
func (wd *Wanderer) Hands(tick uint64) []Hand {
	t := float64(tick)
	hands := make([]Hand, wd.count)
	for i := range hands {
		lane := float64(i+1) * laneOffset
		nx := wd.noise.Noise2D(t*wanderSpeed, lane)
		ny := wd.noise.Noise2D(lane, t*wanderSpeed)
		hands[i] = Hand{
			// Noise mostly stays within [-0.5, 0.5]; Classify clamps the rest.
			Pos:      r2.Vec{X: wd.w * (0.5 + nx), Y: wd.h * (0.5 + ny)},
			Grabbing: wd.noise.Noise2D(t*grabSpeed+0.5, lane+0.5) > 0,
		}
	}
	return hands
}
