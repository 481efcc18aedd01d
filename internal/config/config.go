// Package config provides unified configuration loading for evoloop.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config contains all evoloop configuration settings.
type Config struct {
	// Experiment contains the simulation parameters.
	Experiment ExperimentConfig `json:"experiment" yaml:"experiment"`

	// Detector contains the leap-detection thresholds.
	Detector DetectorConfig `json:"detector" yaml:"detector"`

	// Logging contains settings for operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Output contains destinations for persistent experiment records.
	Output OutputConfig `json:"output" yaml:"output"`
}

// ExperimentConfig holds the simulation parameters.
type ExperimentConfig struct {
	// PopulationSize is the number of organisms per generation.
	PopulationSize int `json:"population_size" yaml:"population_size"`

	// GenomeSize is the number of weights per genome. Oracle problems
	// carry two inputs, so two genes cover them.
	GenomeSize int `json:"genome_size" yaml:"genome_size"`

	// Generations is the total number of generations to run.
	Generations int `json:"generations" yaml:"generations"`

	// CyclesPerGeneration is the lifetime, in cycles, of one generation.
	CyclesPerGeneration int `json:"cycles_per_generation" yaml:"cycles_per_generation"`

	// Seed seeds the shared randomness source. 0 selects a time-derived
	// seed; the chosen seed is logged so runs can be reproduced.
	Seed uint64 `json:"seed" yaml:"seed"`
}

// DetectorConfig holds the leap-detection thresholds.
type DetectorConfig struct {
	// Window is the rolling-baseline capacity in generations.
	Window int `json:"window" yaml:"window"`

	// ZMin is the z-score threshold for a statistical leap.
	ZMin float64 `json:"z_min" yaml:"z_min"`

	// DeltaMin is the required margin over the best cohesion ever seen.
	DeltaMin float64 `json:"delta_min" yaml:"delta_min"`

	// AccFloor is the minimum accuracy for a leap to qualify.
	AccFloor float64 `json:"acc_floor" yaml:"acc_floor"`
}

// LoggingConfig configures evoloop's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	Level string `json:"level" yaml:"level"`
}

// OutputConfig configures where persistent experiment records go.
type OutputConfig struct {
	// Dir is the directory holding the generation-summary CSV, the leap
	// JSONL log, and the SQLite experiment store.
	Dir string `json:"dir" yaml:"dir"`
}

// File names within Output.Dir.
const (
	SummaryFile = "evolution_summary.csv"
	LeapLogFile = "evolutionary_leaps.jsonl"
	StoreFile   = "evoloop.db"
)

// SummaryPath returns the generation-summary CSV path.
func (c *Config) SummaryPath() string {
	return filepath.Join(c.Output.Dir, SummaryFile)
}

// LeapLogPath returns the leap-event JSONL path.
func (c *Config) LeapLogPath() string {
	return filepath.Join(c.Output.Dir, LeapLogFile)
}

// StorePath returns the SQLite experiment store path.
func (c *Config) StorePath() string {
	return filepath.Join(c.Output.Dir, StoreFile)
}

// Default returns a Config with sensible defaults. Experiment parameters
// mirror the reference homeostasis experiment: two-gene genomes against
// two-input problems over long lifetimes.
func Default() *Config {
	return &Config{
		Experiment: ExperimentConfig{
			PopulationSize:      100,
			GenomeSize:          2,
			Generations:         2000,
			CyclesPerGeneration: 150,
			Seed:                0,
		},
		Detector: DetectorConfig{
			Window:   20,
			ZMin:     2.0,
			DeltaMin: 0.08,
			AccFloor: 0.0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Output: OutputConfig{
			Dir: ".evoloop",
		},
	}
}

// Load loads configuration from the default locations and environment
// variables. Order: defaults -> ~/.evoloop/config.yaml -> environment.
func Load() (*Config, error) {
	cfg := Default()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".evoloop", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			cfg = fileConfig
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Experiment.PopulationSize <= 0 {
		return fmt.Errorf("population_size must be positive, got %d", c.Experiment.PopulationSize)
	}
	if c.Experiment.GenomeSize <= 0 {
		return fmt.Errorf("genome_size must be positive, got %d", c.Experiment.GenomeSize)
	}
	if c.Experiment.Generations <= 0 {
		return fmt.Errorf("generations must be positive, got %d", c.Experiment.Generations)
	}
	if c.Experiment.CyclesPerGeneration <= 0 {
		return fmt.Errorf("cycles_per_generation must be positive, got %d", c.Experiment.CyclesPerGeneration)
	}

	if c.Detector.Window < 2 {
		return fmt.Errorf("detector window must be at least 2, got %d", c.Detector.Window)
	}
	if c.Detector.ZMin < 0 {
		return fmt.Errorf("z_min must be non-negative, got %f", c.Detector.ZMin)
	}
	if c.Detector.DeltaMin < 0 {
		return fmt.Errorf("delta_min must be non-negative, got %f", c.Detector.DeltaMin)
	}
	if c.Detector.AccFloor < 0 || c.Detector.AccFloor > 1 {
		return fmt.Errorf("acc_floor must be between 0 and 1, got %f", c.Detector.AccFloor)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EVOLOOP_POPULATION_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Experiment.PopulationSize = n
		}
	}
	if v := os.Getenv("EVOLOOP_GENOME_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Experiment.GenomeSize = n
		}
	}
	if v := os.Getenv("EVOLOOP_GENERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Experiment.Generations = n
		}
	}
	if v := os.Getenv("EVOLOOP_CYCLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Experiment.CyclesPerGeneration = n
		}
	}
	if v := os.Getenv("EVOLOOP_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Experiment.Seed = n
		}
	}
	if v := os.Getenv("EVOLOOP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("EVOLOOP_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
}
