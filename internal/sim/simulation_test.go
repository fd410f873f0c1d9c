package sim

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/olivierh59500/swirl/internal/config"
	"github.com/olivierh59500/swirl/internal/particle"
	"github.com/olivierh59500/swirl/internal/physics"
	"github.com/olivierh59500/swirl/internal/shape"
)

func testConfig(particles int) *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Simulation.Particles = particles
	cfg.Simulation.Seed = 42
	return cfg
}

func newSim(t *testing.T, cfg *config.Config, opts ...Option) *Simulation {
	t.Helper()
	s, err := New(cfg, opts...)
	require.NoError(t, err)
	return s
}

func randomFrame(rng *rand.Rand, p physics.Params) physics.Frame {
	var f physics.Frame
	for i := rng.Intn(3); i > 0; i-- {
		f.Attractors = append(f.Attractors, r2.Vec{X: rng.Float64() * p.Width, Y: rng.Float64() * p.Height})
	}
	for i := rng.Intn(3); i > 0; i-- {
		f.Repulsors = append(f.Repulsors, r2.Vec{X: rng.Float64() * p.Width, Y: rng.Float64() * p.Height})
	}
	return f
}

func TestNew(t *testing.T) {
	s := newSim(t, testConfig(300))

	assert.Equal(t, 300, s.Len())
	assert.Equal(t, physics.FreeField, s.Mode())
	assert.Len(t, s.Shape(physics.ShapeHeart), 300)
	assert.Len(t, s.Shape(physics.ShapeText), 300)
	assert.Nil(t, s.Shape(physics.FreeField))
	assert.Zero(t, s.Tick())

	_, err := New(testConfig(0))
	assert.Error(t, err)
}

func TestStepInvariants(t *testing.T) {
	s := newSim(t, testConfig(400))
	p := s.Params()
	rng := rand.New(rand.NewSource(1))

	var states []particle.State
	for tick := 0; tick < 200; tick++ {
		if tick == 100 {
			s.TriggerExplosion()
		}
		require.NoError(t, s.Step(randomFrame(rng, p)))

		states = s.Snapshot(states)
		require.Len(t, states, 400)
		for _, st := range states {
			size := float64(st.Size)
			require.LessOrEqual(t, st.Speed(), p.MaxSpeed+1e-9)
			require.True(t, st.Pos.X >= size && st.Pos.X <= p.Width-size, "x=%v", st.Pos.X)
			require.True(t, st.Pos.Y >= size && st.Pos.Y <= p.Height-size, "y=%v", st.Pos.Y)
			require.True(t, st.Hue >= 0 && st.Hue < 1)
		}
	}
	assert.Equal(t, uint64(200), s.Tick())
}

func TestTriggerExplosion(t *testing.T) {
	cfg := testConfig(200)
	s := newSim(t, cfg)
	before := s.Snapshot(nil)

	s.TriggerExplosion()
	after := s.Snapshot(nil)

	force := cfg.Simulation.ExplosionForce
	for i := range after {
		assert.GreaterOrEqual(t, after[i].Speed(), force/2-1e-9)
		assert.LessOrEqual(t, after[i].Speed(), force+1e-9)
		assert.Equal(t, before[i].Pos, after[i].Pos)
		assert.Equal(t, before[i].Hue, after[i].Hue)
		assert.Equal(t, before[i].Size, after[i].Size)
	}
	assert.Zero(t, s.Tick(), "an explosion is not a step")
}

func TestModeSwitchTakesEffectNextStep(t *testing.T) {
	s := newSim(t, testConfig(50))
	require.NoError(t, s.Step(physics.Frame{}))

	require.NoError(t, s.SetMode(physics.ShapeHeart))
	before := s.Snapshot(nil)
	targets := s.Shape(physics.ShapeHeart)
	require.NoError(t, s.Step(physics.Frame{}))
	after := s.Snapshot(nil)

	for i := range after {
		pull := r2.Scale(0.08, r2.Sub(targets.Target(i), before[i].Pos))
		want := r2.Scale(0.85, r2.Add(before[i].Vel, pull))
		// Walls may reflect a component; the spring shows through everywhere else.
		if after[i].Pos.X > 5 && after[i].Pos.X < 995 {
			assert.InDelta(t, want.X, after[i].Vel.X, 1e-9, "particle %d", i)
		}
		if after[i].Pos.Y > 5 && after[i].Pos.Y < 695 {
			assert.InDelta(t, want.Y, after[i].Vel.Y, 1e-9, "particle %d", i)
		}
	}

	// Shape mode leaves speed unclamped, so the free field step may rescale.
	p := s.Params()
	require.NoError(t, s.SetMode(physics.FreeField))
	before = s.Snapshot(before)
	require.NoError(t, s.Step(physics.Frame{}))
	after = s.Snapshot(after)
	for i := range after {
		want := physics.Impulse{Damping: p.Friction, MaxSpeed: p.MaxSpeed}.Apply(before[i].Vel)
		if after[i].Pos.X > 5 && after[i].Pos.X < 995 {
			assert.InDelta(t, want.X, after[i].Vel.X, 1e-9, "particle %d", i)
		}
		if after[i].Pos.Y > 5 && after[i].Pos.Y < 695 {
			assert.InDelta(t, want.Y, after[i].Vel.Y, 1e-9, "particle %d", i)
		}
		assert.LessOrEqual(t, after[i].Speed(), p.MaxSpeed+1e-9)
	}
}

func TestFreeFieldClampsFastShapeParticles(t *testing.T) {
	s := newSim(t, testConfig(30))
	p := s.Params()
	require.NoError(t, s.SetMode(physics.ShapeHeart))
	s.TriggerExplosion()
	// Shape mode applies no speed cap.
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Step(physics.Frame{}))
	}

	require.NoError(t, s.SetMode(physics.FreeField))
	require.NoError(t, s.Step(physics.Frame{}))
	for _, st := range s.Snapshot(nil) {
		assert.LessOrEqual(t, st.Speed(), p.MaxSpeed+1e-9)
	}
}

func TestReset(t *testing.T) {
	s := newSim(t, testConfig(200))
	require.NoError(t, s.SetMode(physics.ShapeHeart))
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Step(physics.Frame{}))
	}
	s.TriggerExplosion()
	before := s.Snapshot(nil)

	s.Reset()
	after := s.Snapshot(nil)
	require.Len(t, after, 200)
	assert.NotEqual(t, before, after)
	for _, st := range after {
		assert.True(t, st.Pos.X >= 20 && st.Pos.X <= 980, "x=%v", st.Pos.X)
		assert.True(t, st.Pos.Y >= 20 && st.Pos.Y <= 680, "y=%v", st.Pos.Y)
		assert.True(t, st.Vel.X >= -2 && st.Vel.X < 2 && st.Vel.Y >= -2 && st.Vel.Y < 2)
		assert.True(t, st.Size >= 1 && st.Size <= 3)
	}
	assert.Equal(t, physics.ShapeHeart, s.Mode(), "reset keeps the mode")
	assert.Equal(t, uint64(5), s.Tick(), "reset is not a step")
}

func TestShapeModeConverges(t *testing.T) {
	s := newSim(t, testConfig(100))
	require.NoError(t, s.SetMode(physics.ShapeText))
	for i := 0; i < 300; i++ {
		require.NoError(t, s.Step(physics.Frame{}))
	}
	targets := s.Shape(physics.ShapeText)
	for i, st := range s.Snapshot(nil) {
		assert.InDelta(t, targets.Target(i).X, st.Pos.X, 0.5)
		assert.InDelta(t, targets.Target(i).Y, st.Pos.Y, 0.5)
	}
}

func TestSetModeErrors(t *testing.T) {
	cfg := testConfig(20)
	cfg.Shape.Text = "   "
	s := newSim(t, cfg)

	assert.Nil(t, s.Shape(physics.ShapeText))
	assert.ErrorIs(t, s.SetMode(physics.ShapeText), ErrShapeUnavailable)
	assert.Equal(t, physics.FreeField, s.Mode())

	assert.ErrorIs(t, s.SetMode(physics.Mode(9)), physics.ErrInvalidState)
	assert.NoError(t, s.SetMode(physics.ShapeHeart))
}

func TestStartModeFallsBack(t *testing.T) {
	cfg := testConfig(20)
	cfg.Shape.Text = ""
	cfg.Simulation.Mode = "text"
	s := newSim(t, cfg)
	assert.Equal(t, physics.FreeField, s.Mode())
}

func TestWithShape(t *testing.T) {
	line := shape.Points{{X: 100, Y: 100}, {X: 200, Y: 100}}
	s := newSim(t, testConfig(10), WithShape(physics.ShapeText, line))
	assert.Equal(t, line, s.Shape(physics.ShapeText))

	require.NoError(t, s.SetMode(physics.ShapeText))
	for i := 0; i < 300; i++ {
		require.NoError(t, s.Step(physics.Frame{}))
	}
	for i, st := range s.Snapshot(nil) {
		assert.InDelta(t, line.Target(i).X, st.Pos.X, 0.5)
	}
}

func TestShardedStepMatchesSerial(t *testing.T) {
	defer goleak.VerifyNone(t)

	serial := newSim(t, testConfig(500), WithWorkers(1))
	sharded := newSim(t, testConfig(500), WithWorkers(4))
	require.Empty(t, cmp.Diff(serial.Snapshot(nil), sharded.Snapshot(nil)))

	p := serial.Params()
	rng := rand.New(rand.NewSource(8))
	for tick := 0; tick < 60; tick++ {
		f := randomFrame(rng, p)
		if tick == 30 {
			require.NoError(t, serial.SetMode(physics.ShapeHeart))
			require.NoError(t, sharded.SetMode(physics.ShapeHeart))
		}
		require.NoError(t, serial.Step(f))
		require.NoError(t, sharded.Step(f))
	}

	diff := cmp.Diff(serial.Snapshot(nil), sharded.Snapshot(nil), cmpopts.EquateApprox(0, 1e-12))
	assert.Empty(t, diff)
}

func TestStats(t *testing.T) {
	s := newSim(t, testConfig(100))
	s.TriggerExplosion()
	st := s.Stats()
	assert.GreaterOrEqual(t, st.MeanSpeed, 15.0)
	assert.LessOrEqual(t, st.MaxSpeed, 30.0+1e-9)
	assert.LessOrEqual(t, st.MeanSpeed, st.MaxSpeed)
}
