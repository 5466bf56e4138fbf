// Package config defines process configuration and loads the simulation
// model (cast, scoring, pricing, event rates) from a config directory.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading layers defaults, an optional YAML file and CASTAWAY_ env vars.
// - Errors wrap this package's sentinels so callers can use errors.Is.
package config

import (
	"fmt"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile, when set, adds a rotating JSON log file.
	LogFile string `koanf:"log_file"`

	// Workers sets the simulation worker count. Zero means one per CPU.
	Workers int `koanf:"workers"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// ConfigDir holds contestants, scoring, pricing and probability files.
	ConfigDir string `koanf:"config_dir"`

	// OutputDir receives reports, JSON results and exports.
	OutputDir string `koanf:"output_dir"`

	Seed int64 `koanf:"seed"`

	// MetricsPath, when set, receives a Prometheus textfile dump at exit.
	MetricsPath string `koanf:"metrics_path"`

	// Run counts per driver.
	ScenarioRuns       int `koanf:"scenario_runs"`
	ExpectedRuns       int `koanf:"expected_runs"`
	PricingScenarios   int `koanf:"pricing_scenarios"`
	DynamicScenarios   int `koanf:"dynamic_scenarios"`
	FullScenarios      int `koanf:"full_scenarios"`
	RostersPerStrategy int `koanf:"rosters_per_strategy"`

	// SampleRosters, when positive, replaces strategy rosters in the pricing
	// simulation with that many unique valid rosters.
	SampleRosters int `koanf:"sample_rosters"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		QueueSize:          256,
		ConfigDir:          "configs",
		OutputDir:          "output",
		Seed:               42,
		ScenarioRuns:       200,
		ExpectedRuns:       500,
		PricingScenarios:   100,
		DynamicScenarios:   50,
		FullScenarios:      100,
		RostersPerStrategy: 10,
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.ConfigDir == "" {
		return fmt.Errorf("%w: config_dir must not be empty", ErrInvalidConfig)
	}
	if c.Workers < 0 || c.QueueSize < 1 {
		return fmt.Errorf("%w: workers must be >= 0 and queue_size >= 1", ErrInvalidConfig)
	}
	for name, v := range map[string]int{
		"scenario_runs":        c.ScenarioRuns,
		"expected_runs":        c.ExpectedRuns,
		"pricing_scenarios":    c.PricingScenarios,
		"dynamic_scenarios":    c.DynamicScenarios,
		"full_scenarios":       c.FullScenarios,
		"rosters_per_strategy": c.RostersPerStrategy,
	} {
		if v < 1 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, name)
		}
	}
	if c.SampleRosters < 0 {
		return fmt.Errorf("%w: sample_rosters must not be negative", ErrInvalidConfig)
	}
	return nil
}
