// Package config loads the tuner's YAML configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StorageConfig selects and connects to the storage control surface the
// tuner drives.
type StorageConfig struct {
	Driver string `yaml:"driver"` // "sql" or "fake"
	DSN    string `yaml:"dsn"`
}

// RoundConfig carries the round-scoped knobs: budget, timeout, and which
// plan-cache inspection mode to run.
type RoundConfig struct {
	MemoryBudgetBytes uint64        `yaml:"memory_budget_bytes"`
	Timeout           time.Duration `yaml:"timeout"`
	PlanMode          string        `yaml:"plan_mode"` // "logical" or "physical"
	Interval          time.Duration `yaml:"interval"`
}

// EvaluatorConfig mirrors tuning.EvaluatorConfig's YAML-facing shape.
type EvaluatorConfig struct {
	SelectivityLike         float64 `yaml:"selectivity_like"`
	SelectivityInDefault    float64 `yaml:"selectivity_in_default"`
	TypeProposer            string  `yaml:"type_proposer"`
	ConfidencePenaltyLambda float64 `yaml:"confidence_penalty_lambda"`
}

// PlanCacheConfig bounds the GDFS plan cache the tuner replays.
type PlanCacheConfig struct {
	Capacity int `yaml:"capacity"`
}

// MetricsConfig toggles the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// LoggingConfig carries a log level for the zap logger. The CLI sets the
// logger's verbosity from its --log-level flag and does not read this
// field.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Config is the complete configuration for one tuner process.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Round     RoundConfig     `yaml:"round"`
	Evaluator EvaluatorConfig `yaml:"evaluator"`
	PlanCache PlanCacheConfig `yaml:"plan_cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoadConfig reads and parses a YAML config file, filling in defaults for
// anything left unspecified and validating the result.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", filePath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", filePath, err)
	}

	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns a Config with every default filled in and nothing else
// - the configuration the CLI falls back to when no config file is given.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "fake"
	}

	if cfg.Round.MemoryBudgetBytes == 0 {
		cfg.Round.MemoryBudgetBytes = 64 * 1024 * 1024
	}
	if cfg.Round.Timeout == 0 {
		cfg.Round.Timeout = 30 * time.Second
	}
	if cfg.Round.PlanMode == "" {
		cfg.Round.PlanMode = "logical"
	}
	if cfg.Round.Interval == 0 {
		cfg.Round.Interval = 5 * time.Minute
	}

	if cfg.Evaluator.SelectivityLike == 0 {
		cfg.Evaluator.SelectivityLike = 0.25
	}
	if cfg.Evaluator.SelectivityInDefault == 0 {
		cfg.Evaluator.SelectivityInDefault = 0.1
	}
	if cfg.Evaluator.TypeProposer == "" {
		cfg.Evaluator.TypeProposer = "always-group-key"
	}

	if cfg.PlanCache.Capacity == 0 {
		cfg.PlanCache.Capacity = 1024
	}

	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Validate rejects configurations the tuner cannot safely run with.
func (c *Config) Validate() error {
	if c.Storage.Driver != "sql" && c.Storage.Driver != "fake" {
		return fmt.Errorf("storage.driver must be 'sql' or 'fake', got %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "sql" && c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn is required when storage.driver is 'sql'")
	}
	if c.Round.PlanMode != "logical" && c.Round.PlanMode != "physical" {
		return fmt.Errorf("round.plan_mode must be 'logical' or 'physical', got %q", c.Round.PlanMode)
	}
	if c.Round.MemoryBudgetBytes == 0 {
		return fmt.Errorf("round.memory_budget_bytes must be greater than zero")
	}
	if c.Evaluator.SelectivityLike < 0 || c.Evaluator.SelectivityLike > 1 {
		return fmt.Errorf("evaluator.selectivity_like must be between 0 and 1")
	}
	if c.Evaluator.SelectivityInDefault < 0 || c.Evaluator.SelectivityInDefault > 1 {
		return fmt.Errorf("evaluator.selectivity_in_default must be between 0 and 1")
	}
	if c.Evaluator.ConfidencePenaltyLambda < 0 {
		return fmt.Errorf("evaluator.confidence_penalty_lambda must be non-negative")
	}
	return nil
}
