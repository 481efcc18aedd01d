// Package mcp provides an MCP (Model Context Protocol) server for evoloop.
package mcp

import (
	"github.com/nvandessel/evoloop/internal/monitor"
)

// RunInput defines the input for the evoloop_run tool. Zero values fall back
// to the server's configuration.
type RunInput struct {
	PopulationSize int    `json:"population_size,omitempty" jsonschema:"Number of organisms per generation (default from config)"`
	GenomeSize     int    `json:"genome_size,omitempty" jsonschema:"Number of weights per genome (default from config)"`
	Generations    int    `json:"generations,omitempty" jsonschema:"Number of generations to run (default from config)"`
	Cycles         int    `json:"cycles,omitempty" jsonschema:"Cycles per generation (default from config)"`
	Seed           uint64 `json:"seed,omitempty" jsonschema:"Random seed. 0 selects a time-derived seed"`
}

// RunOutput defines the output for the evoloop_run tool.
type RunOutput struct {
	RunID         int64    `json:"run_id" jsonschema:"Experiment store id of the recorded run"`
	Seed          uint64   `json:"seed" jsonschema:"Seed actually used"`
	Generations   int      `json:"generations" jsonschema:"Generations completed"`
	Leaps         int      `json:"leaps" jsonschema:"Number of evolutionary leaps detected"`
	FinalCohesion *float64 `json:"final_cohesion" jsonschema:"Cohesion mean of the final generation. Null when it had no oracle interactions"`
	FinalAccuracy float64  `json:"final_accuracy" jsonschema:"Oracle accuracy of the final generation"`
}

// HistoryInput defines the input for the evoloop_history tool.
type HistoryInput struct {
	RunID int64 `json:"run_id,omitempty" jsonschema:"Run to inspect. 0 selects the latest run"`
	Tail  int   `json:"tail,omitempty" jsonschema:"Return only the last N generations (0 returns all)"`
}

// HistoryOutput defines the output for the evoloop_history tool.
type HistoryOutput struct {
	RunID       int64                       `json:"run_id" jsonschema:"Run the history belongs to"`
	Generations []monitor.GenerationMetrics `json:"generations" jsonschema:"Per-generation metrics in generation order"`
	Count       int                         `json:"count" jsonschema:"Number of generations returned"`
}

// LeapsInput defines the input for the evoloop_leaps tool.
type LeapsInput struct {
	RunID int64 `json:"run_id,omitempty" jsonschema:"Run to inspect. 0 selects the latest run"`
}

// LeapsOutput defines the output for the evoloop_leaps tool.
type LeapsOutput struct {
	RunID int64               `json:"run_id" jsonschema:"Run the leaps belong to"`
	Leaps []monitor.LeapEvent `json:"leaps" jsonschema:"Leap events in generation order"`
	Count int                 `json:"count" jsonschema:"Number of leaps returned"`
}
