package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds root-finding and curve construction parameters.
type Config struct {
	// Accuracy is the absolute tolerance on each helper's quote error.
	Accuracy float64 `mapstructure:"accuracy"`

	// MaxEvaluations caps objective evaluations per Brent solve.
	MaxEvaluations int `mapstructure:"max_evaluations"`

	// MaxIterations caps global passes when the interpolation is non-local.
	MaxIterations int `mapstructure:"max_iterations"`

	// Localisation is the number of nodes solved jointly by the local bootstrap.
	Localisation int `mapstructure:"localisation"`

	// MaxRate bounds zero and forward rates searched during bootstrap.
	MaxRate float64 `mapstructure:"max_rate"`

	// AvgRate seeds the first node's guess.
	AvgRate float64 `mapstructure:"avg_rate"`

	// BracketStep is the initial half-width of the Brent bracket.
	BracketStep float64 `mapstructure:"bracket_step"`

	// GrowthFactor widens the bracket on each failed sign check.
	GrowthFactor float64 `mapstructure:"growth_factor"`

	// JacobianStep is the finite-difference step of the local bootstrap.
	JacobianStep float64 `mapstructure:"jacobian_step"`

	// MinDiscountFactor floors discount factors searched during bootstrap.
	MinDiscountFactor float64 `mapstructure:"min_discount_factor"`
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	Accuracy:          1e-12,
	MaxEvaluations:    100,
	MaxIterations:     100,
	Localisation:      2,
	MaxRate:           1.0,
	AvgRate:           0.05,
	BracketStep:       0.01,
	GrowthFactor:      1.6,
	JacobianStep:      1e-7,
	MinDiscountFactor: 1e-9,
}

// cfg is the active configuration. Defaults to DefaultConfig.
var cfg = DefaultConfig

// SetConfig replaces the active configuration.
func SetConfig(c Config) {
	cfg = c
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	return cfg
}

// Validate rejects settings the solvers cannot work with.
func (c Config) Validate() error {
	if c.Accuracy <= 0 {
		return fmt.Errorf("Validate: accuracy must be positive, got %g", c.Accuracy)
	}
	if c.MaxEvaluations < 1 {
		return fmt.Errorf("Validate: max_evaluations must be at least 1, got %d", c.MaxEvaluations)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("Validate: max_iterations must be at least 1, got %d", c.MaxIterations)
	}
	if c.Localisation < 1 {
		return fmt.Errorf("Validate: localisation must be at least 1, got %d", c.Localisation)
	}
	if c.MaxRate <= 0 {
		return fmt.Errorf("Validate: max_rate must be positive, got %g", c.MaxRate)
	}
	if c.BracketStep <= 0 {
		return fmt.Errorf("Validate: bracket_step must be positive, got %g", c.BracketStep)
	}
	if c.GrowthFactor <= 1 {
		return fmt.Errorf("Validate: growth_factor must exceed 1, got %g", c.GrowthFactor)
	}
	if c.JacobianStep <= 0 {
		return fmt.Errorf("Validate: jacobian_step must be positive, got %g", c.JacobianStep)
	}
	if c.MinDiscountFactor <= 0 || c.MinDiscountFactor >= 1 {
		return fmt.Errorf("Validate: min_discount_factor must lie in (0,1), got %g", c.MinDiscountFactor)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("accuracy", DefaultConfig.Accuracy)
	v.SetDefault("max_evaluations", DefaultConfig.MaxEvaluations)
	v.SetDefault("max_iterations", DefaultConfig.MaxIterations)
	v.SetDefault("localisation", DefaultConfig.Localisation)
	v.SetDefault("max_rate", DefaultConfig.MaxRate)
	v.SetDefault("avg_rate", DefaultConfig.AvgRate)
	v.SetDefault("bracket_step", DefaultConfig.BracketStep)
	v.SetDefault("growth_factor", DefaultConfig.GrowthFactor)
	v.SetDefault("jacobian_step", DefaultConfig.JacobianStep)
	v.SetDefault("min_discount_factor", DefaultConfig.MinDiscountFactor)
}

// Load reads a YAML, TOML or JSON file on top of DefaultConfig. Environment
// variables prefixed RATECURVE_ override file values. An empty path loads
// defaults and environment only.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("Load: failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("RATECURVE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("Load: failed to unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("Load: %w", err)
	}
	return c, nil
}
