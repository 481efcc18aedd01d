// Package simulation assembles and runs complete evolutionary experiments.
// It wires the environment, the leap detector, and the persistent sinks into
// one loop so the CLI and the MCP server share identical orchestration.
package simulation

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/nvandessel/evoloop/internal/evolution"
	"github.com/nvandessel/evoloop/internal/logging"
	"github.com/nvandessel/evoloop/internal/monitor"
)

// Params are the experiment parameters.
type Params struct {
	PopulationSize int
	GenomeSize     int
	Generations    int
	Cycles         int

	// Seed seeds all randomness. 0 selects a time-derived seed; the seed
	// actually used is reported in the Result.
	Seed uint64

	Detector monitor.DetectorConfig
}

// Options attach optional sinks to an experiment. All fields may be nil.
// Sink lifetimes stay with the caller: the experiment never closes them, so
// a logger may outlive one run or be shared with other writers.
type Options struct {
	// Summary receives one CSV row per generation.
	Summary *monitor.SummaryLogger

	// LeapLog receives one JSONL record per detected leap.
	LeapLog *logging.LeapLogger

	// Recorder receives generation metrics and leap events, typically the
	// SQLite experiment store.
	Recorder evolution.Recorder

	// Logger receives operational logs.
	Logger *slog.Logger
}

// Result summarizes a completed experiment.
type Result struct {
	// Seed is the seed actually used, after time-derived resolution.
	Seed uint64

	// History holds one metrics record per completed generation.
	History []monitor.GenerationMetrics

	// Leaps is the number of generations flagged as evolutionary leaps.
	Leaps int
}

// Experiment is one assembled simulation ready to run.
type Experiment struct {
	seed   uint64
	params Params
	loop   *evolution.Loop
}

// New assembles an experiment. The organism population is not created until
// Run.
func New(params Params, opts Options) *Experiment {
	seed := params.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	env := evolution.NewEnvironment(params.PopulationSize, params.GenomeSize, rng)
	detector := monitor.NewLeapDetector(params.Detector, opts.LeapLog, opts.Logger)

	loop := evolution.NewLoop(env, detector, params.Generations, params.Cycles)
	loop.Summary = opts.Summary
	loop.Recorder = opts.Recorder
	loop.Logger = opts.Logger

	return &Experiment{
		seed:   seed,
		params: params,
		loop:   loop,
	}
}

// Seed returns the resolved seed.
func (e *Experiment) Seed() uint64 {
	return e.seed
}

// Loop returns the underlying evolutionary loop.
func (e *Experiment) Loop() *evolution.Loop {
	return e.loop
}

// Run executes the experiment to completion or context cancellation. The
// history accumulated before cancellation is returned either way.
func (e *Experiment) Run(ctx context.Context) (Result, error) {
	err := e.loop.Run(ctx)

	history := e.loop.Env().History
	leaps := 0
	for _, m := range history {
		if m.LeapFlag {
			leaps++
		}
	}
	return Result{Seed: e.seed, History: history, Leaps: leaps}, err
}
