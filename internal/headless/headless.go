// Package headless drives a simulation without a window, for benchmarking
// tunables and for soak runs.
package headless

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/olivierh59500/swirl/internal/input"
	"github.com/olivierh59500/swirl/internal/sim"
)

// Options controls a headless run.
type Options struct {
	Frames       int
	ExplodeEvery int // 0 disables periodic explosions
	LogEvery     int // 0 logs only the summary
	Width        float64
	Height       float64
	Margin       float64
}

// Run steps s for opts.Frames ticks with hands from source, checking ctx
// between frames. It returns the statistics after the last completed step.
func Run(ctx context.Context, s *sim.Simulation, source input.Source, opts Options, logger *zap.Logger) (sim.Stats, error) {
	logger = logger.Named("headless")
	for frame := 1; frame <= opts.Frames; frame++ {
		if err := ctx.Err(); err != nil {
			return s.Stats(), err
		}
		if opts.ExplodeEvery > 0 && frame%opts.ExplodeEvery == 0 {
			s.TriggerExplosion()
		}

		hands := source.Hands(s.Tick())
		if err := s.Step(input.Classify(hands, opts.Width, opts.Height, opts.Margin)); err != nil {
			return s.Stats(), fmt.Errorf("frame %d: %w", frame, err)
		}

		if opts.LogEvery > 0 && frame%opts.LogEvery == 0 {
			st := s.Stats()
			logger.Info("Progress",
				zap.Uint64("tick", st.Tick),
				zap.Int("hands", len(hands)),
				zap.Float64("mean_speed", st.MeanSpeed),
				zap.Float64("max_speed", st.MaxSpeed))
		}
	}

	st := s.Stats()
	logger.Info("Run complete",
		zap.Uint64("ticks", st.Tick),
		zap.Stringer("mode", s.Mode()),
		zap.Float64("mean_speed", st.MeanSpeed),
		zap.Float64("max_speed", st.MaxSpeed))
	return st, nil
}
