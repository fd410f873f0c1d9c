// Package config loads the simulation configuration through viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/olivierh59500/swirl/internal/particle"
	"github.com/olivierh59500/swirl/internal/physics"
	"github.com/olivierh59500/swirl/internal/shape"
)

// EnvPrefix prefixes environment overrides, e.g. SWIRL_SIMULATION_PARTICLES.
const EnvPrefix = "SWIRL"

// MaxHands is the most hands a tracker reports at once.
const MaxHands = 2

// Config holds the entire application configuration.
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation" yaml:"simulation"`
	Shape      ShapeConfig      `mapstructure:"shape" yaml:"shape"`
	Render     RenderConfig     `mapstructure:"render" yaml:"render"`
	Input      InputConfig      `mapstructure:"input" yaml:"input"`
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
}

// SimulationConfig holds the physics tunables.
type SimulationConfig struct {
	Width              float64 `mapstructure:"width" yaml:"width"`
	Height             float64 `mapstructure:"height" yaml:"height"`
	Particles          int     `mapstructure:"particles" yaml:"particles"`
	AttractionStrength float64 `mapstructure:"attraction_strength" yaml:"attraction_strength"`
	SwirlStrength      float64 `mapstructure:"swirl_strength" yaml:"swirl_strength"`
	Friction           float64 `mapstructure:"friction" yaml:"friction"`
	MaxSpeed           float64 `mapstructure:"max_speed" yaml:"max_speed"`
	ExplosionForce     float64 `mapstructure:"explosion_force" yaml:"explosion_force"`
	WallDamping        float64 `mapstructure:"wall_damping" yaml:"wall_damping"`
	// Workers shards each step across goroutines; 1 keeps it serial.
	Workers int `mapstructure:"workers" yaml:"workers"`
	// Seed fixes the random source; 0 seeds from the clock.
	Seed int64  `mapstructure:"seed" yaml:"seed"`
	Mode string `mapstructure:"mode" yaml:"mode"`
}

// ShapeConfig controls the precomputed target shapes.
type ShapeConfig struct {
	HeartScale  float64 `mapstructure:"heart_scale" yaml:"heart_scale"`
	Text        string  `mapstructure:"text" yaml:"text"`
	FontSize    float64 `mapstructure:"font_size" yaml:"font_size"`
	MaxAttempts int     `mapstructure:"max_attempts" yaml:"max_attempts"`
}

// RenderConfig controls the window and the particle look.
type RenderConfig struct {
	Title       string  `mapstructure:"title" yaml:"title"`
	TPS         int     `mapstructure:"tps" yaml:"tps"`
	TrailFade   uint8   `mapstructure:"trail_fade" yaml:"trail_fade"`
	HueRotation float64 `mapstructure:"hue_rotation" yaml:"hue_rotation"`
	Saturation  float64 `mapstructure:"saturation" yaml:"saturation"`
	TrailSpeed  float64 `mapstructure:"trail_speed" yaml:"trail_speed"`
	TrailLength float64 `mapstructure:"trail_length" yaml:"trail_length"`
}

// InputConfig selects where hands come from.
type InputConfig struct {
	// Source is "pointer" (mouse and touch) or "wander" (noise driven).
	Source     string  `mapstructure:"source" yaml:"source"`
	HandMargin float64 `mapstructure:"hand_margin" yaml:"hand_margin"`
	Hands      int     `mapstructure:"hands" yaml:"hands"`
}

// LoggerConfig holds the logging settings.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	// -- Simulation --
	v.SetDefault("simulation.width", 1000.0)
	v.SetDefault("simulation.height", 700.0)
	v.SetDefault("simulation.particles", 800)
	v.SetDefault("simulation.attraction_strength", 1.5)
	v.SetDefault("simulation.swirl_strength", 0.3)
	v.SetDefault("simulation.friction", 0.95)
	v.SetDefault("simulation.max_speed", 40.0)
	v.SetDefault("simulation.explosion_force", 30.0)
	v.SetDefault("simulation.wall_damping", -0.7)
	v.SetDefault("simulation.workers", 1)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.mode", physics.FreeField.String())

	// -- Shape --
	v.SetDefault("shape.heart_scale", 12.0)
	v.SetDefault("shape.text", "MAGIC")
	v.SetDefault("shape.font_size", 150.0)
	v.SetDefault("shape.max_attempts", 0)

	// -- Render --
	v.SetDefault("render.title", "God Hand Swirl")
	v.SetDefault("render.tps", 60)
	v.SetDefault("render.trail_fade", 40)
	v.SetDefault("render.hue_rotation", 0.0005)
	v.SetDefault("render.saturation", 0.9)
	v.SetDefault("render.trail_speed", 3.0)
	v.SetDefault("render.trail_length", 1.5)

	// -- Input --
	v.SetDefault("input.source", "pointer")
	v.SetDefault("input.hand_margin", 30.0)
	v.SetDefault("input.hands", 2)

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "swirl")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)
}

// NewDefaultConfig returns a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewViper returns a viper instance with defaults and SWIRL_* env overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path (if non-empty) on top of the defaults.
func Load(path string) (*Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}
	return NewConfigFromViper(v)
}

// NewConfigFromViper unmarshals and validates a configuration.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	s := c.Simulation
	var errs []error
	if s.Width < 100 || s.Height < 100 {
		errs = append(errs, fmt.Errorf("simulation.width and simulation.height must be at least 100"))
	}
	if s.Particles <= 0 {
		errs = append(errs, fmt.Errorf("simulation.particles must be a positive integer"))
	}
	if s.Friction <= 0 || s.Friction >= 1 {
		errs = append(errs, fmt.Errorf("simulation.friction must be in (0, 1)"))
	}
	if s.MaxSpeed <= 0 {
		errs = append(errs, fmt.Errorf("simulation.max_speed must be positive"))
	}
	if s.ExplosionForce <= 0 {
		errs = append(errs, fmt.Errorf("simulation.explosion_force must be positive"))
	}
	if s.WallDamping <= -1 || s.WallDamping >= 0 {
		errs = append(errs, fmt.Errorf("simulation.wall_damping must be in (-1, 0)"))
	}
	if s.Workers <= 0 {
		errs = append(errs, fmt.Errorf("simulation.workers must be a positive integer"))
	}
	if _, err := physics.ParseMode(s.Mode); err != nil {
		errs = append(errs, fmt.Errorf("simulation.mode: %w", err))
	}
	if c.Shape.FontSize <= 0 {
		errs = append(errs, fmt.Errorf("shape.font_size must be positive"))
	}
	if c.Shape.HeartScale <= 0 {
		errs = append(errs, fmt.Errorf("shape.heart_scale must be positive"))
	}
	if c.Render.TPS <= 0 {
		errs = append(errs, fmt.Errorf("render.tps must be a positive integer"))
	}
	if c.Input.Hands < 0 || c.Input.Hands > MaxHands {
		errs = append(errs, fmt.Errorf("input.hands must be in [0, %d], got %d", MaxHands, c.Input.Hands))
	}
	switch c.Input.Source {
	case "pointer", "wander":
	default:
		errs = append(errs, fmt.Errorf("input.source must be pointer or wander, got %q", c.Input.Source))
	}
	return errors.Join(errs...)
}

// Params converts the simulation section into physics parameters.
func (c *Config) Params() physics.Params {
	s := c.Simulation
	return physics.Params{
		Width:              s.Width,
		Height:             s.Height,
		AttractionStrength: s.AttractionStrength,
		SwirlStrength:      s.SwirlStrength,
		Friction:           s.Friction,
		MaxSpeed:           s.MaxSpeed,
		WallDamping:        s.WallDamping,
	}
}

// Mode returns the configured start mode. Validate has already checked it.
func (c *Config) Mode() physics.Mode {
	m, _ := physics.ParseMode(c.Simulation.Mode)
	return m
}

// TextOptions returns the text sampler options.
func (c *Config) TextOptions() shape.TextOptions {
	return shape.TextOptions{
		Text:        c.Shape.Text,
		FontSize:    c.Shape.FontSize,
		MaxAttempts: c.Shape.MaxAttempts,
	}
}

// SeedOr returns the configured seed, or fallback when it is 0.
func (c *Config) SeedOr(fallback int64) int64 {
	if c.Simulation.Seed == 0 {
		return fallback
	}
	return c.Simulation.Seed
}

// Palette returns the particle colouring settings.
func (c *Config) Palette() particle.Palette {
	return particle.Palette{
		HueRotation: c.Render.HueRotation,
		Saturation:  c.Render.Saturation,
		TrailSpeed:  c.Render.TrailSpeed,
		TrailLength: c.Render.TrailLength,
	}
}
