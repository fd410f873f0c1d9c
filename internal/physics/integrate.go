package physics

import "gonum.org/v1/gonum/spatial/r2"

// Advance applies imp to b's velocity, moves b by one tick and resolves
// collisions with the canvas edges.
func Advance(b *Body, imp Impulse, p Params) {
	b.Vel = imp.Apply(b.Vel)
	b.Pos = r2.Add(b.Pos, b.Vel)
	b.Pos.X, b.Vel.X = bounce(b.Pos.X, b.Vel.X, b.Size, p.Width, p.WallDamping)
	b.Pos.Y, b.Vel.Y = bounce(b.Pos.Y, b.Vel.Y, b.Size, p.Height, p.WallDamping)
}

// bounce clamps one axis into [size, limit-size] and reflects the velocity
// component with wall damping when a wall is hit.
func bounce(pos, vel, size, limit, damping float64) (float64, float64) {
	switch {
	case pos < size:
		return size, vel * damping
	case pos > limit-size:
		return limit - size, vel * damping
	}
	return pos, vel
}
