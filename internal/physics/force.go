package physics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Empirically tuned constants. Visual behaviour depends on these exact values.
const (
	distEpsilon = 0.1

	radialGain    = 5.0
	swirlGain     = 0.2
	nearSwirlDist = 200.0
	nearSwirlGain = 1.5
	collapseDist  = 30.0
	collapseGain  = 0.1

	repelRadiusSq = 40000.0
	repelForce    = 10000.0

	springGain    = 0.08
	springDamping = 0.85

	disturbRadiusSq = 15000.0
	disturbForce    = 2000.0
)

// Impulse is the velocity update produced by the force model for one tick.
// The integrator applies it as
//
//	v = (v + Pre) * Damping + Post
//
// and then rescales v to MaxSpeed when MaxSpeed > 0 and |v| exceeds it.
type Impulse struct {
	Pre      r2.Vec
	Damping  float64
	Post     r2.Vec
	MaxSpeed float64
}

// Apply returns v updated by the impulse, including the speed clamp.
func (imp Impulse) Apply(v r2.Vec) r2.Vec {
	v = r2.Add(r2.Scale(imp.Damping, r2.Add(v, imp.Pre)), imp.Post)
	if imp.MaxSpeed > 0 {
		if speed := r2.Norm(v); speed > imp.MaxSpeed {
			v = r2.Scale(imp.MaxSpeed/speed, v)
		}
	}
	return v
}

// Acceleration returns the net change the impulse makes to velocity v.
func (imp Impulse) Acceleration(v r2.Vec) r2.Vec {
	return r2.Sub(imp.Apply(v), v)
}

// ComputeImpulse evaluates the force policy of mode for body b. It does not
// mutate b. A shape mode requires a non-nil target.
func ComputeImpulse(b Body, mode Mode, f Frame, target *r2.Vec, p Params) (Impulse, error) {
	switch mode {
	case FreeField:
		return Impulse{
			Pre:      r2.Add(attraction(b.Pos, f.Attractors, p), repulsion(b.Pos, f.Repulsors)),
			Damping:  p.Friction,
			MaxSpeed: p.MaxSpeed,
		}, nil
	case ShapeHeart, ShapeText:
		if target == nil {
			return Impulse{}, fmt.Errorf("%w: %s mode requires a target", ErrInvalidState, mode)
		}
		disturb := disturbance(b.Pos, f.Attractors)
		disturb = r2.Add(disturb, disturbance(b.Pos, f.Repulsors))
		return Impulse{
			Pre:     r2.Scale(springGain, r2.Sub(*target, b.Pos)),
			Damping: springDamping,
			Post:    disturb,
		}, nil
	default:
		return Impulse{}, fmt.Errorf("%w: %s", ErrInvalidState, mode)
	}
}

// attraction sums the radial pull and the swirl of every attractor.
func attraction(pos r2.Vec, attractors []r2.Vec, p Params) r2.Vec {
	var sum r2.Vec
	for _, a := range attractors {
		d := r2.Sub(a, pos)
		dist := r2.Norm(d) + distEpsilon

		radial := r2.Scale(p.AttractionStrength*radialGain/dist, d)
		swirl := r2.Scale(p.SwirlStrength*swirlGain, r2.Vec{X: -d.Y, Y: d.X})
		if dist < nearSwirlDist {
			swirl = r2.Scale(nearSwirlGain, swirl)
		}
		// Keep the orbit, drop most of the pull near the core.
		if dist < collapseDist {
			radial = r2.Scale(collapseGain, radial)
		}
		sum = r2.Add(sum, r2.Add(radial, swirl))
	}
	return sum
}

// repulsion pushes away from every repulsor within its radius.
func repulsion(pos r2.Vec, repulsors []r2.Vec) r2.Vec {
	return pushAway(pos, repulsors, repelRadiusSq, repelForce)
}

// disturbance is the local scatter caused by any hand in a shape mode.
func disturbance(pos r2.Vec, hands []r2.Vec) r2.Vec {
	return pushAway(pos, hands, disturbRadiusSq, disturbForce)
}

func pushAway(pos r2.Vec, points []r2.Vec, radiusSq, strength float64) r2.Vec {
	var sum r2.Vec
	for _, q := range points {
		d := r2.Sub(q, pos)
		distSq := r2.Dot(d, d) + 1
		if distSq >= radiusSq {
			continue
		}
		force := strength / distSq
		sum = r2.Sub(sum, r2.Scale(force/math.Sqrt(distSq), d))
	}
	return sum
}
