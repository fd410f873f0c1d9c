// Package input turns hands reported by an external tracker into the
// per-frame control points consumed by the simulation.
package input

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/olivierh59500/swirl/internal/physics"
)

// Hand is one tracked hand in canvas coordinates.
type Hand struct {
	Pos      r2.Vec
	Grabbing bool
}

// Source produces the hands visible at a given tick.
type Source interface {
	Hands(tick uint64) []Hand
}

// Classify clamps hands to the canvas minus margin and splits them into
// attractors (grabbing) and repulsors (open).
func Classify(hands []Hand, w, h, margin float64) physics.Frame {
	var f physics.Frame
	for _, hand := range hands {
		p := r2.Vec{
			X: clamp(hand.Pos.X, margin, w-margin),
			Y: clamp(hand.Pos.Y, margin, h-margin),
		}
		if hand.Grabbing {
			f.Attractors = append(f.Attractors, p)
		} else {
			f.Repulsors = append(f.Repulsors, p)
		}
	}
	return f
}

// Points returns the clamped hand positions in input order.
func Points(hands []Hand, w, h, margin float64) []r2.Vec {
	pts := make([]r2.Vec, len(hands))
	for i, hand := range hands {
		pts[i] = r2.Vec{
			X: clamp(hand.Pos.X, margin, w-margin),
			Y: clamp(hand.Pos.Y, margin, h-margin),
		}
	}
	return pts
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Landmark indices of a 21 point hand model.
const (
	Wrist = 0
	// PalmCenter is the middle finger knuckle, used as the hand position.
	PalmCenter = 9
)

var (
	fingerTips     = [4]int{8, 12, 16, 20}
	fingerKnuckles = [4]int{5, 9, 13, 17}
)

// fistRatio makes the fist test trigger slightly before a full fist.
const fistRatio = 1.1

// Landmarks is a 21 point hand skeleton in normalized [0, 1] coordinates.
type Landmarks [21]r2.Vec

// Palm returns the hand position scaled to a w x h canvas.
func (l *Landmarks) Palm(w, h float64) r2.Vec {
	return r2.Vec{X: math.Trunc(l[PalmCenter].X * w), Y: math.Trunc(l[PalmCenter].Y * h)}
}

// IsFist reports whether at least three fingertips are closer to the wrist
// than 1.1 times their knuckle.
func (l *Landmarks) IsFist() bool {
	wrist := l[Wrist]
	curled := 0
	for i, tip := range fingerTips {
		tipDist := r2.Norm(r2.Sub(l[tip], wrist))
		knuckleDist := r2.Norm(r2.Sub(l[fingerKnuckles[i]], wrist))
		if tipDist < knuckleDist*fistRatio {
			curled++
		}
	}
	return curled >= 3
}

// Hand converts the skeleton into a canvas hand.
func (l *Landmarks) Hand(w, h float64) Hand {
	return Hand{Pos: l.Palm(w, h), Grabbing: l.IsFist()}
}
