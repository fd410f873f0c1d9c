// Package particle holds per-particle kinematic and visual state.
package particle

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/olivierh59500/swirl/internal/physics"
)

const (
	resetPadding = 20.0
	resetJitter  = 2.0
	maxSize      = 3
)

// Particle is a single swirl particle.
type Particle struct {
	Pos  r2.Vec
	Vel  r2.Vec
	Hue  float64 // [0, 1)
	Size int     // [1, 3]
}

// State is the read-only view of a particle handed to renderers.
type State struct {
	Pos  r2.Vec
	Vel  r2.Vec
	Hue  float64
	Size int
}

// Speed returns the velocity magnitude.
func (s State) Speed() float64 {
	return r2.Norm(s.Vel)
}

// New returns a freshly reset particle on a w x h canvas.
func New(rng *rand.Rand, w, h float64) Particle {
	var p Particle
	p.Reset(rng, w, h)
	return p
}

// Reset scatters the particle over the padded canvas with a small random
// velocity, a random hue and a random size.
func (p *Particle) Reset(rng *rand.Rand, w, h float64) {
	p.Pos = r2.Vec{X: randomCoord(rng, w), Y: randomCoord(rng, h)}
	p.Vel = r2.Vec{
		X: (rng.Float64()*2 - 1) * resetJitter,
		Y: (rng.Float64()*2 - 1) * resetJitter,
	}
	p.Hue = rng.Float64()
	p.Size = 1 + rng.Intn(maxSize)
}

// randomCoord picks an integer coordinate in [pad, limit-pad].
func randomCoord(rng *rand.Rand, limit float64) float64 {
	pad := math.Min(resetPadding, math.Floor(limit/2))
	span := int(limit - 2*pad)
	return pad + float64(rng.Intn(span+1))
}

// Explode gives the particle a random direction and a speed in
// [force/2, force]. Position, hue and size are kept.
func (p *Particle) Explode(rng *rand.Rand, force float64) {
	angle := rng.Float64() * 2 * math.Pi
	speed := force * (0.5 + 0.5*rng.Float64())
	sin, cos := math.Sincos(angle)
	p.Vel = r2.Vec{X: cos * speed, Y: sin * speed}
}

// Update runs the force model and the integrator for one tick. target may be
// nil in FreeField mode.
func (p *Particle) Update(mode physics.Mode, f physics.Frame, target *r2.Vec, params physics.Params) error {
	b := physics.Body{Pos: p.Pos, Vel: p.Vel, Size: float64(p.Size)}
	imp, err := physics.ComputeImpulse(b, mode, f, target, params)
	if err != nil {
		return err
	}
	physics.Advance(&b, imp, params)
	p.Pos, p.Vel = b.Pos, b.Vel
	return nil
}

// State returns a copy of the particle for rendering.
func (p *Particle) State() State {
	return State{Pos: p.Pos, Vel: p.Vel, Hue: p.Hue, Size: p.Size}
}
