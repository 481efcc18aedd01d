package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/evoloop/internal/monitor"
	"github.com/nvandessel/evoloop/internal/simulation"
)

// handleRun runs one simulation and records it in the experiment store.
func (s *Server) handleRun(ctx context.Context, req *sdk.CallToolRequest, args RunInput) (*sdk.CallToolResult, RunOutput, error) {
	params := simulation.Params{
		PopulationSize: s.cfg.Experiment.PopulationSize,
		GenomeSize:     s.cfg.Experiment.GenomeSize,
		Generations:    s.cfg.Experiment.Generations,
		Cycles:         s.cfg.Experiment.CyclesPerGeneration,
		Seed:           s.cfg.Experiment.Seed,
		Detector: monitor.DetectorConfig{
			Window:   s.cfg.Detector.Window,
			ZMin:     s.cfg.Detector.ZMin,
			DeltaMin: s.cfg.Detector.DeltaMin,
			AccFloor: s.cfg.Detector.AccFloor,
		},
	}
	if args.PopulationSize > 0 {
		params.PopulationSize = args.PopulationSize
	}
	if args.GenomeSize > 0 {
		params.GenomeSize = args.GenomeSize
	}
	if args.Generations > 0 {
		params.Generations = args.Generations
	}
	if args.Cycles > 0 {
		params.Cycles = args.Cycles
	}
	if args.Seed != 0 {
		params.Seed = args.Seed
	}

	// Assemble first so a zero seed is resolved before the run row is
	// written; the stored seed must replay the run exactly.
	exp := simulation.New(params, simulation.Options{})

	run, err := s.store.BeginRun(ctx, exp.Seed(), params.PopulationSize, params.GenomeSize, params.Generations)
	if err != nil {
		return nil, RunOutput{}, fmt.Errorf("failed to begin run: %w", err)
	}
	exp.Loop().Recorder = run

	result, err := exp.Run(ctx)
	if err != nil {
		return nil, RunOutput{}, fmt.Errorf("simulation failed: %w", err)
	}

	out := RunOutput{
		RunID:       run.ID(),
		Seed:        result.Seed,
		Generations: len(result.History),
		Leaps:       result.Leaps,
	}
	if n := len(result.History); n > 0 {
		final := result.History[n-1]
		out.FinalCohesion = final.CohesionMean
		out.FinalAccuracy = final.OracleAccuracy
	}
	return nil, out, nil
}

// handleHistory returns the per-generation metrics of a recorded run.
func (s *Server) handleHistory(ctx context.Context, req *sdk.CallToolRequest, args HistoryInput) (*sdk.CallToolResult, HistoryOutput, error) {
	runID, err := s.resolveRunID(ctx, args.RunID)
	if err != nil {
		return nil, HistoryOutput{}, err
	}

	history, err := s.store.RunHistory(ctx, runID)
	if err != nil {
		return nil, HistoryOutput{}, fmt.Errorf("failed to load history: %w", err)
	}
	if args.Tail > 0 && len(history) > args.Tail {
		history = history[len(history)-args.Tail:]
	}
	if history == nil {
		history = []monitor.GenerationMetrics{}
	}

	return nil, HistoryOutput{
		RunID:       runID,
		Generations: history,
		Count:       len(history),
	}, nil
}

// handleLeaps returns the leap events of a recorded run.
func (s *Server) handleLeaps(ctx context.Context, req *sdk.CallToolRequest, args LeapsInput) (*sdk.CallToolResult, LeapsOutput, error) {
	runID, err := s.resolveRunID(ctx, args.RunID)
	if err != nil {
		return nil, LeapsOutput{}, err
	}

	leaps, err := s.store.Leaps(ctx, runID)
	if err != nil {
		return nil, LeapsOutput{}, fmt.Errorf("failed to load leaps: %w", err)
	}
	if leaps == nil {
		leaps = []monitor.LeapEvent{}
	}

	return nil, LeapsOutput{
		RunID: runID,
		Leaps: leaps,
		Count: len(leaps),
	}, nil
}

// resolveRunID maps a zero run id to the latest recorded run.
func (s *Server) resolveRunID(ctx context.Context, requested int64) (int64, error) {
	if requested != 0 {
		return requested, nil
	}
	id, err := s.store.LatestRunID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve run: %w", err)
	}
	return id, nil
}
