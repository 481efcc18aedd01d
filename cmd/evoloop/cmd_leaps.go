package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/evoloop/internal/store"
)

func newLeapsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaps",
		Short: "List the evolutionary leaps of a recorded run",
		Long: `List the evolutionary leap events of a run from the experiment store.
With no --run flag the latest run is shown.

Examples:
  evoloop leaps
  evoloop leaps --run 3 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			runID, _ := cmd.Flags().GetInt64("run")

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

			leaps, err := experimentStore.Leaps(ctx, runID)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"run_id": runID,
					"leaps":  leaps,
				})
			}

			if len(leaps) == 0 {
				fmt.Printf("Run %d: no leaps detected\n", runID)
				return nil
			}
			fmt.Printf("Run %d: %d leap(s)\n", runID, len(leaps))
			for _, ev := range leaps {
				fmt.Printf("  gen %d: cohesion %.3f (baseline %.3f sd %.3f, z=%.2f) %s\n",
					ev.Generation, ev.Cohesion, ev.BaselineMean, ev.BaselineStd, ev.ZScore, ev.Reason)
			}
			return nil
		},
	}

	cmd.Flags().Int64("run", 0, "Run id (default: latest run)")

	return cmd
}
