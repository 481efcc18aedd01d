package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nvandessel/evoloop/internal/monitor"
	"github.com/nvandessel/evoloop/internal/store"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the per-generation metrics of a recorded run",
		Long: `Show the per-generation metrics of a run from the experiment store.
With no --run flag the latest run is shown.

Examples:
  evoloop history
  evoloop history --run 3 --tail 25
  evoloop history --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			runID, _ := cmd.Flags().GetInt64("run")
			tail, _ := cmd.Flags().GetInt("tail")

			experimentStore, err := store.Open(cfg.StorePath())
			if err != nil {
				return fmt.Errorf("failed to open experiment store: %w", err)
			}
			defer experimentStore.Close()

			ctx := cmd.Context()
			if runID == 0 {
				runID, err = experimentStore.LatestRunID(ctx)
				if err != nil {
					return err
				}
			}

			history, err := experimentStore.RunHistory(ctx, runID)
			if err != nil {
				return err
			}
			if tail > 0 && len(history) > tail {
				history = history[len(history)-tail:]
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"run_id":      runID,
					"generations": history,
				})
			}

			printHistoryTable(runID, history)
			return nil
		},
	}

	cmd.Flags().Int64("run", 0, "Run id (default: latest run)")
	cmd.Flags().Int("tail", 0, "Show only the last N generations")

	return cmd
}

// printHistoryTable renders the history as an aligned text table.
func printHistoryTable(runID int64, history []monitor.GenerationMetrics) {
	fmt.Printf("Run %d: %d generation(s)\n\n", runID, len(history))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GEN\tAGE\tDISCREPANCY\tSURVIVORS\tCOHESION\tACCURACY\tINTERACTIONS\tLEAP")
	for _, m := range history {
		cohesion := "-"
		if m.CohesionMean != nil {
			cohesion = fmt.Sprintf("%.3f", *m.CohesionMean)
		}
		leap := ""
		if m.LeapFlag {
			leap = "*"
		}
		fmt.Fprintf(w, "%d\t%.1f\t%.1f\t%d\t%s\t%.3f\t%d\t%s\n",
			m.Generation, m.AverageAge, m.AverageDiscrepancy, m.SurvivorCount,
			cohesion, m.OracleAccuracy, m.OracleInteractions, leap)
	}
	w.Flush()
}
