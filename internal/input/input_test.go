package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestClassify(t *testing.T) {
	hands := []Hand{
		{Pos: r2.Vec{X: 500, Y: 300}, Grabbing: true},
		{Pos: r2.Vec{X: -40, Y: 900}},
		{Pos: r2.Vec{X: 1200, Y: 10}, Grabbing: true},
	}
	f := Classify(hands, 1000, 700, 30)

	assert.Equal(t, []r2.Vec{{X: 500, Y: 300}, {X: 970, Y: 30}}, f.Attractors)
	assert.Equal(t, []r2.Vec{{X: 30, Y: 670}}, f.Repulsors)
	assert.True(t, Classify(nil, 1000, 700, 30).Empty())
}

func TestPoints(t *testing.T) {
	pts := Points([]Hand{{Pos: r2.Vec{X: 5, Y: 5}}, {Pos: r2.Vec{X: 400, Y: 200}, Grabbing: true}}, 1000, 700, 30)
	assert.Equal(t, []r2.Vec{{X: 30, Y: 30}, {X: 400, Y: 200}}, pts)
}

// openHand lays out fingers pointing straight up from the wrist.
func openHand() Landmarks {
	var l Landmarks
	l[Wrist] = r2.Vec{X: 0.5, Y: 0.9}
	for i, tip := range fingerTips {
		x := 0.4 + float64(i)*0.05
		l[fingerKnuckles[i]] = r2.Vec{X: x, Y: 0.7}
		l[tip] = r2.Vec{X: x, Y: 0.5}
	}
	return l
}

func TestIsFist(t *testing.T) {
	open := openHand()
	assert.False(t, open.IsFist())

	fist := openHand()
	for i, tip := range fingerTips {
		fist[tip] = r2.Vec{X: fist[fingerKnuckles[i]].X, Y: 0.75}
	}
	assert.True(t, fist.IsFist())

	// Two curled fingers are not enough.
	partial := openHand()
	for _, tip := range fingerTips[:2] {
		partial[tip] = r2.Vec{X: partial[tip].X, Y: 0.8}
	}
	assert.False(t, partial.IsFist())
}

func TestLandmarksHand(t *testing.T) {
	l := openHand()
	l[PalmCenter] = r2.Vec{X: 0.25, Y: 0.5}
	hand := l.Hand(1000, 700)
	assert.Equal(t, r2.Vec{X: 250, Y: 350}, hand.Pos)
	assert.False(t, hand.Grabbing)
}

func TestWandererDeterministic(t *testing.T) {
	a := NewWanderer(7, 2, 1000, 700)
	b := NewWanderer(7, 2, 1000, 700)

	var moved bool
	first := a.Hands(1)
	for tick := uint64(0); tick < 500; tick += 25 {
		ha, hb := a.Hands(tick), b.Hands(tick)
		require.Len(t, ha, 2)
		assert.Equal(t, ha, hb)
		if ha[0].Pos != first[0].Pos {
			moved = true
		}
	}
	assert.True(t, moved)
}

func TestWandererClassifiesInsideCanvas(t *testing.T) {
	wd := NewWanderer(3, 2, 1000, 700)
	var grabs, opens int
	for tick := uint64(0); tick < 20000; tick += 10 {
		f := Classify(wd.Hands(tick), 1000, 700, 30)
		require.Equal(t, 2, len(f.Attractors)+len(f.Repulsors))
		for _, p := range append(f.Attractors, f.Repulsors...) {
			require.True(t, p.X >= 30 && p.X <= 970 && p.Y >= 30 && p.Y <= 670)
		}
		grabs += len(f.Attractors)
		opens += len(f.Repulsors)
	}
	assert.Positive(t, grabs)
	assert.Positive(t, opens)
}
