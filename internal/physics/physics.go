// Package physics holds the per-particle force model and the integrator.
//
// Forces are fixed per-tick velocity impulses: the simulation runs at a fixed
// tick rate, so there is no dt scaling anywhere in this package.
package physics

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrInvalidState reports a caller bug such as a shape mode without a target.
var ErrInvalidState = errors.New("invalid simulation state")

// Mode selects the force policy applied to every particle.
type Mode int

const (
	FreeField Mode = iota
	ShapeHeart
	ShapeText
)

var modeNames = [...]string{"free", "heart", "text"}

func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m >= FreeField && m <= ShapeText
}

// IsShape reports whether m pulls particles toward a target shape.
func (m Mode) IsShape() bool {
	return m == ShapeHeart || m == ShapeText
}

// ParseMode accepts a mode name or its digit key ("0", "1", "2").
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range modeNames {
		if s == name || s == fmt.Sprint(i) {
			return Mode(i), nil
		}
	}
	return FreeField, fmt.Errorf("%w: unknown mode %q", ErrInvalidState, s)
}

// Frame is the per-frame input snapshot handed to the core.
type Frame struct {
	Attractors []r2.Vec
	Repulsors  []r2.Vec
}

// Empty reports whether the frame carries no control points.
func (f Frame) Empty() bool {
	return len(f.Attractors) == 0 && len(f.Repulsors) == 0
}

// Params are the tunables shared by the force model and the integrator.
type Params struct {
	Width, Height      float64
	AttractionStrength float64
	SwirlStrength      float64
	Friction           float64
	MaxSpeed           float64
	WallDamping        float64
}

// DefaultParams returns the hand-tuned defaults for a 1000x700 canvas.
func DefaultParams() Params {
	return Params{
		Width:              1000,
		Height:             700,
		AttractionStrength: 1.5,
		SwirlStrength:      0.3,
		Friction:           0.95,
		MaxSpeed:           40,
		WallDamping:        -0.7,
	}
}

// Body is the kinematic part of a particle.
type Body struct {
	Pos  r2.Vec
	Vel  r2.Vec
	Size float64
}
