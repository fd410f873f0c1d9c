package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/olivierh59500/swirl/internal/config"
	"github.com/olivierh59500/swirl/internal/game"
	"github.com/olivierh59500/swirl/internal/input"
	"github.com/olivierh59500/swirl/internal/observability"
	"github.com/olivierh59500/swirl/internal/physics"
	"github.com/olivierh59500/swirl/internal/sim"
)

var (
	cfgFile  string
	modeFlag string
	seedFlag int64
)

// rootCmd opens the interactive window.
var rootCmd = &cobra.Command{
	Use:   "swirl",
	Short: "Hand driven particle swirl simulation.",
	Long: `swirl renders several hundred particles pulled, spun and pushed around by hands.

Keys: 0 free field, 1 heart, 2 text, space explosion, r reset, esc quit.
With the pointer source the left mouse button is a closed hand and the right
button an open hand.`,
	SilenceUsage: true,
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

		var source input.Source
		if cfg.Input.Source == "wander" {
			source = input.NewWanderer(cfg.SeedOr(time.Now().UnixNano()), cfg.Input.Hands, cfg.Simulation.Width, cfg.Simulation.Height)
		}
		return game.Run(game.New(s, cfg, source, logger), cfg)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		observability.GetLogger().Error("Command execution failed", zap.Error(err))
		observability.Sync()
		os.Exit(1)
	}
	observability.Sync()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().StringVarP(&modeFlag, "mode", "m", "", "start mode: free, heart or text")
	rootCmd.PersistentFlags().Int64Var(&seedFlag, "seed", 0, "random seed (0 seeds from the clock)")
}

// loadConfig reads the config file, applies flag overrides and starts logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("mode") {
		if _, err := physics.ParseMode(modeFlag); err != nil {
			return nil, err
		}
		cfg.Simulation.Mode = modeFlag
	}
	if cmd.Flags().Changed("seed") {
		cfg.Simulation.Seed = seedFlag
	}
	observability.InitializeLogger(cfg.Logger)
	return cfg, nil
}

func newSimulation(cfg *config.Config, logger *zap.Logger) (*sim.Simulation, error) {
	runID := uuid.New()
	logger = logger.With(zap.String("run_id", runID.String()))

	s, err := sim.New(cfg, sim.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create simulation: %w", err)
	}
	return s, nil
}
