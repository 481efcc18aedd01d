package main

import (
	"testing"

	"github.com/nvandessel/evoloop/internal/config"
)

func TestApplyRunFlags(t *testing.T) {
	cmd := newRunCmd()
	for flag, value := range map[string]string{
		"population":  "50",
		"genome-size": "4",
		"generations": "25",
		"cycles":      "75",
		"seed":        "9",
		"out":         "/tmp/evoloop-flags",
	} {
		if err := cmd.Flags().Set(flag, value); err != nil {
			t.Fatalf("set --%s: %v", flag, err)
		}
	}

	cfg := config.Default()
	applyRunFlags(cmd, cfg)

	if cfg.Experiment.PopulationSize != 50 {
		t.Errorf("population = %d, want 50", cfg.Experiment.PopulationSize)
	}
	if cfg.Experiment.GenomeSize != 4 {
		t.Errorf("genome size = %d, want 4", cfg.Experiment.GenomeSize)
	}
	if cfg.Experiment.Generations != 25 {
		t.Errorf("generations = %d, want 25", cfg.Experiment.Generations)
	}
	if cfg.Experiment.CyclesPerGeneration != 75 {
		t.Errorf("cycles = %d, want 75", cfg.Experiment.CyclesPerGeneration)
	}
	if cfg.Experiment.Seed != 9 {
		t.Errorf("seed = %d, want 9", cfg.Experiment.Seed)
	}
	if cfg.Output.Dir != "/tmp/evoloop-flags" {
		t.Errorf("output dir = %q, want /tmp/evoloop-flags", cfg.Output.Dir)
	}
}

func TestApplyRunFlagsDefaults(t *testing.T) {
	cmd := newRunCmd()
	cfg := config.Default()
	before := *cfg

	applyRunFlags(cmd, cfg)

	if *cfg != before {
		t.Errorf("unset flags changed the config: %+v vs %+v", *cfg, before)
	}
}
