package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/evoloop/internal/export"
	"github.com/nvandessel/evoloop/internal/store"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <output-file>",
		Short: "Export a run's history to an Arrow IPC or CSV file",
		Long: `Export the per-generation metrics of a recorded run for external
analysis. The Arrow format preserves null cohesion values for
generations without oracle interactions; CSV renders them as empty
fields.

Examples:
  evoloop export history.arrow
  evoloop export --format csv --run 3 history.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			runID, _ := cmd.Flags().GetInt64("run")
			format, _ := cmd.Flags().GetString("format")
			outputPath := args[0]

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

			switch format {
			case "arrow":
				err = export.WriteArrow(outputPath, history)
			case "csv":
				err = export.WriteCSV(outputPath, history)
			default:
				return fmt.Errorf("unknown format %q (valid: arrow, csv)", format)
			}
			if err != nil {
				return err
			}

			fmt.Printf("Exported %d generation(s) of run %d to %s\n", len(history), runID, outputPath)
			return nil
		},
	}

	cmd.Flags().Int64("run", 0, "Run id (default: latest run)")
	cmd.Flags().String("format", "arrow", "Output format: arrow or csv")

	return cmd
}
