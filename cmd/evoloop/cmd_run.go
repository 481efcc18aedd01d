package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/evoloop/internal/config"
	"github.com/nvandessel/evoloop/internal/logging"
	"github.com/nvandessel/evoloop/internal/monitor"
	"github.com/nvandessel/evoloop/internal/simulation"
	"github.com/nvandessel/evoloop/internal/store"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an evolutionary simulation",
		Long: `Run a full evolutionary simulation: each generation lives through a
lifetime of cycles under homeostatic pressure and oracle interactions,
is evaluated, and breeds the next generation from its longest-lived
members.

Every generation is appended to the summary CSV and the experiment
store; detected leaps additionally go to the leap JSONL log.

Examples:
  evoloop run
  evoloop run --generations 200 --seed 42
  evoloop run --population 50 --cycles 100 --out ./results`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyRunFlags(cmd, cfg)

			jsonOut, _ := cmd.Flags().GetBool("json")
			logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)

			experimentStore, err := store.Open(cfg.StorePath())
			if err != nil {
				return fmt.Errorf("failed to open experiment store: %w", err)
			}
			defer experimentStore.Close()

			params := simulation.Params{
				PopulationSize: cfg.Experiment.PopulationSize,
				GenomeSize:     cfg.Experiment.GenomeSize,
				Generations:    cfg.Experiment.Generations,
				Cycles:         cfg.Experiment.CyclesPerGeneration,
				Seed:           cfg.Experiment.Seed,
				Detector: monitor.DetectorConfig{
					Window:   cfg.Detector.Window,
					ZMin:     cfg.Detector.ZMin,
					DeltaMin: cfg.Detector.DeltaMin,
					AccFloor: cfg.Detector.AccFloor,
				},
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			notifySignals(sigChan)
			go func() {
				<-sigChan
				logger.Info("interrupt received, finishing current generation")
				cancel()
			}()

			leapLog := logging.NewLeapLogger(cfg.LeapLogPath())
			if leapLog == nil {
				logger.Warn("leap log unavailable, continuing without it", "path", cfg.LeapLogPath())
			}
			defer leapLog.Close()

			exp := simulation.New(params, simulation.Options{
				Summary: monitor.NewSummaryLogger(cfg.SummaryPath()),
				LeapLog: leapLog,
				Logger:  logger,
			})

			run, err := experimentStore.BeginRun(ctx, exp.Seed(),
				params.PopulationSize, params.GenomeSize, params.Generations)
			if err != nil {
				return fmt.Errorf("failed to begin run: %w", err)
			}
			exp.Loop().Recorder = run

			logger.Info("starting simulation",
				"run_id", run.ID(),
				"seed", exp.Seed(),
				"population", params.PopulationSize,
				"genome_size", params.GenomeSize,
				"generations", params.Generations,
				"cycles_per_generation", params.Cycles)

			result, runErr := exp.Run(ctx)
			if runErr != nil && runErr != context.Canceled {
				return fmt.Errorf("simulation failed: %w", runErr)
			}

			return printRunSummary(jsonOut, run.ID(), result, cfg)
		},
	}

	cmd.Flags().Int("population", 0, "Population size (overrides config)")
	cmd.Flags().Int("genome-size", 0, "Genome size (overrides config)")
	cmd.Flags().Int("generations", 0, "Number of generations (overrides config)")
	cmd.Flags().Int("cycles", 0, "Cycles per generation (overrides config)")
	cmd.Flags().Uint64("seed", 0, "Random seed, 0 selects a time-derived seed")
	cmd.Flags().String("out", "", "Output directory (overrides config)")

	return cmd
}

// applyRunFlags overlays run command flags onto the loaded config.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetInt("population"); v > 0 {
		cfg.Experiment.PopulationSize = v
	}
	if v, _ := cmd.Flags().GetInt("genome-size"); v > 0 {
		cfg.Experiment.GenomeSize = v
	}
	if v, _ := cmd.Flags().GetInt("generations"); v > 0 {
		cfg.Experiment.Generations = v
	}
	if v, _ := cmd.Flags().GetInt("cycles"); v > 0 {
		cfg.Experiment.CyclesPerGeneration = v
	}
	if v, _ := cmd.Flags().GetUint64("seed"); v != 0 {
		cfg.Experiment.Seed = v
	}
	if v, _ := cmd.Flags().GetString("out"); v != "" {
		cfg.Output.Dir = v
	}
}

// printRunSummary writes the end-of-run summary to stdout.
func printRunSummary(jsonOut bool, runID int64, result simulation.Result, cfg *config.Config) error {
	summary := map[string]any{
		"run_id":      runID,
		"seed":        result.Seed,
		"generations": len(result.History),
		"leaps":       result.Leaps,
		"summary_csv": cfg.SummaryPath(),
		"store":       cfg.StorePath(),
	}
	if n := len(result.History); n > 0 {
		final := result.History[n-1]
		summary["final_survivors"] = final.SurvivorCount
		summary["final_accuracy"] = final.OracleAccuracy
		if final.CohesionMean != nil {
			summary["final_cohesion"] = *final.CohesionMean
		}
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(summary)
	}

	fmt.Printf("Run %d complete: %d generations, %d leap(s), seed %d\n",
		runID, len(result.History), result.Leaps, result.Seed)
	if n := len(result.History); n > 0 {
		final := result.History[n-1]
		fmt.Printf("Final generation: %d survivor(s), accuracy %.3f", final.SurvivorCount, final.OracleAccuracy)
		if final.CohesionMean != nil {
			fmt.Printf(", cohesion %.3f", *final.CohesionMean)
		}
		fmt.Println()
	}
	fmt.Printf("Summary: %s\nStore:   %s\n", cfg.SummaryPath(), cfg.StorePath())
	return nil
}
