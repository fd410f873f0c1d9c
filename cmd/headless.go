package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/olivierh59500/swirl/internal/headless"
	"github.com/olivierh59500/swirl/internal/input"
	"github.com/olivierh59500/swirl/internal/observability"
)

var (
	framesFlag       int
	explodeEveryFlag int
	logEveryFlag     int
)

var headlessCmd = &cobra.Command{
	Use:   "headless",
	Short: "Run the simulation without a window using wandering hands.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := observability.GetLogger()

		s, err := newSimulation(cfg, logger)
		if err != nil {
			return err
		}

		wd := input.NewWanderer(cfg.SeedOr(time.Now().UnixNano()), cfg.Input.Hands, cfg.Simulation.Width, cfg.Simulation.Height)

		start := time.Now()
		_, err = headless.Run(cmd.Context(), s, wd, headless.Options{
			Frames:       framesFlag,
			ExplodeEvery: explodeEveryFlag,
			LogEvery:     logEveryFlag,
			Width:        cfg.Simulation.Width,
			Height:       cfg.Simulation.Height,
			Margin:       cfg.Input.HandMargin,
		}, logger)
		logger.Info("Headless run finished", zap.Duration("elapsed", time.Since(start)))
		return err
	},
}

func init() {
	headlessCmd.Flags().IntVarP(&framesFlag, "frames", "n", 600, "number of frames to simulate")
	headlessCmd.Flags().IntVar(&explodeEveryFlag, "explode-every", 0, "trigger an explosion every N frames (0 disables)")
	headlessCmd.Flags().IntVar(&logEveryFlag, "log-every", 60, "log statistics every N frames (0 disables)")
	rootCmd.AddCommand(headlessCmd)
}
