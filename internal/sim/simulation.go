// Package sim owns the particle collection and advances it one tick at a time.
package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/olivierh59500/swirl/internal/config"
	"github.com/olivierh59500/swirl/internal/particle"
	"github.com/olivierh59500/swirl/internal/physics"
	"github.com/olivierh59500/swirl/internal/shape"
)

// ErrShapeUnavailable is returned by SetMode when the mode's target shape
// could not be generated.
var ErrShapeUnavailable = errors.New("target shape unavailable")

// Simulation holds the particles, the current mode and the target shapes.
// Step, TriggerExplosion and Reset are serialized, so the global events
// always land between two full steps.
type Simulation struct {
	mu sync.Mutex

	particles      []particle.Particle
	params         physics.Params
	explosionForce float64
	mode           physics.Mode
	shapes         map[physics.Mode]shape.Points
	workers        int
	tick           uint64
	rng            *rand.Rand
	logger         *zap.Logger
}

// Option customizes a Simulation.
type Option func(*Simulation)

// WithRand replaces the random source.
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulation) { s.rng = rng }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Simulation) { s.logger = l }
}

// WithWorkers overrides the number of goroutines a step is sharded across.
func WithWorkers(n int) Option {
	return func(s *Simulation) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithShape supplies a precomputed target shape for a shape mode, skipping
// its generation.
func WithShape(mode physics.Mode, pts shape.Points) Option {
	return func(s *Simulation) { s.shapes[mode] = pts }
}

// New creates the particles and generates the target shapes. A text shape
// that cannot be sampled is logged and leaves ShapeText unavailable.
func New(cfg *config.Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &Simulation{
		params:         cfg.Params(),
		explosionForce: cfg.Simulation.ExplosionForce,
		shapes:         make(map[physics.Mode]shape.Points),
		workers:        cfg.Simulation.Workers,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed := cfg.Simulation.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		s.rng = rand.New(rand.NewSource(seed))
	}
	s.logger = s.logger.Named("sim")

	n, w, h := cfg.Simulation.Particles, s.params.Width, s.params.Height
	s.particles = make([]particle.Particle, n)
	for i := range s.particles {
		s.particles[i] = particle.New(s.rng, w, h)
	}

	if _, ok := s.shapes[physics.ShapeHeart]; !ok {
		s.shapes[physics.ShapeHeart] = shape.Heart(s.rng, n, cfg.Shape.HeartScale, w, h)
	}
	if _, ok := s.shapes[physics.ShapeText]; !ok {
		pts, err := shape.Text(s.rng, n, cfg.TextOptions(), w, h)
		if err != nil {
			s.logger.Warn("Text shape unavailable, text mode disabled", zap.Error(err))
		} else {
			s.shapes[physics.ShapeText] = pts
		}
	}

	if err := s.SetMode(cfg.Mode()); err != nil {
		s.logger.Warn("Start mode unavailable, falling back to free field",
			zap.Stringer("mode", cfg.Mode()), zap.Error(err))
	}

	s.logger.Info("Simulation created",
		zap.Int("particles", n),
		zap.Int("workers", s.workers),
		zap.Stringer("mode", s.mode))
	return s, nil
}

// SetMode switches the force policy used from the next step on.
func (s *Simulation) SetMode(mode physics.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %s", physics.ErrInvalidState, mode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if mode.IsShape() && len(s.shapes[mode]) == 0 {
		return fmt.Errorf("%w: %s", ErrShapeUnavailable, mode)
	}
	if mode != s.mode {
		s.logger.Debug("Mode changed", zap.Stringer("from", s.mode), zap.Stringer("to", mode))
	}
	s.mode = mode
	return nil
}

// Mode returns the current mode.
func (s *Simulation) Mode() physics.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Shape returns the target points of a shape mode, or nil.
func (s *Simulation) Shape(mode physics.Mode) shape.Points {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shapes[mode]
}

// TriggerExplosion sends every particle off in a random direction.
func (s *Simulation) TriggerExplosion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.particles {
		s.particles[i].Explode(s.rng, s.explosionForce)
	}
	s.logger.Debug("Explosion", zap.Uint64("tick", s.tick))
}

// Reset reinitializes every particle: new position, jitter velocity, hue and
// size. Mode, shapes and the tick counter are kept.
func (s *Simulation) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.particles {
		s.particles[i].Reset(s.rng, s.params.Width, s.params.Height)
	}
	s.logger.Debug("Reset", zap.Uint64("tick", s.tick))
}

// Step advances every particle by one tick using f and the current mode.
func (s *Simulation) Step(f physics.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets := s.shapes[s.mode]
	if s.mode.IsShape() && len(targets) == 0 {
		return fmt.Errorf("%w: no targets for %s", physics.ErrInvalidState, s.mode)
	}

	if err := s.update(f, targets); err != nil {
		return err
	}
	s.tick++
	return nil
}

func (s *Simulation) update(f physics.Frame, targets shape.Points) error {
	if s.workers <= 1 || len(s.particles) < 2*s.workers {
		return s.updateRange(0, len(s.particles), f, targets)
	}

	// Particles only read shared inputs, so contiguous shards need no locking.
	var g errgroup.Group
	chunk := (len(s.particles) + s.workers - 1) / s.workers
	for lo := 0; lo < len(s.particles); lo += chunk {
		lo, hi := lo, min(lo+chunk, len(s.particles))
		g.Go(func() error {
			return s.updateRange(lo, hi, f, targets)
		})
	}
	return g.Wait()
}

func (s *Simulation) updateRange(lo, hi int, f physics.Frame, targets shape.Points) error {
	for i := lo; i < hi; i++ {
		var target *r2.Vec
		if len(targets) > 0 {
			t := targets.Target(i)
			target = &t
		}
		if err := s.particles[i].Update(s.mode, f, target, s.params); err != nil {
			return fmt.Errorf("particle %d: %w", i, err)
		}
	}
	return nil
}

// Snapshot appends the state of every particle to dst[:0] and returns it.
func (s *Simulation) Snapshot(dst []particle.State) []particle.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	dst = dst[:0]
	for i := range s.particles {
		dst = append(dst, s.particles[i].State())
	}
	return dst
}

// Len returns the fixed particle count.
func (s *Simulation) Len() int {
	return len(s.particles)
}

// Tick returns the number of completed steps.
func (s *Simulation) Tick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Params returns the physics parameters in use.
func (s *Simulation) Params() physics.Params {
	return s.params
}

// Stats summarizes particle speeds.
type Stats struct {
	Tick      uint64
	MeanSpeed float64
	MaxSpeed  float64
}

// Stats computes speed statistics over all particles.
func (s *Simulation) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{Tick: s.tick}
	for i := range s.particles {
		v := r2.Norm(s.particles[i].Vel)
		st.MeanSpeed += v
		st.MaxSpeed = math.Max(st.MaxSpeed, v)
	}
	if len(s.particles) > 0 {
		st.MeanSpeed /= float64(len(s.particles))
	}
	return st
}
