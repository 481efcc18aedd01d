package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/evoloop/internal/monitor"
	"github.com/nvandessel/evoloop/internal/store"
	"github.com/nvandessel/evoloop/internal/visualization"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an interactive chart of a run's history",
		Long: `Start a local HTTP server rendering the per-generation history of a
recorded run as interactive charts. The server binds an OS-assigned
port on localhost and runs until interrupted.

Examples:
  evoloop serve
  evoloop serve --run 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			runID, _ := cmd.Flags().GetInt64("run")

			experimentStore, err := store.Open(cfg.StorePath())
			if err != nil {
				return fmt.Errorf("failed to open experiment store: %w", err)
			}
			defer experimentStore.Close()

			if runID == 0 {
				runID, err = experimentStore.LatestRunID(cmd.Context())
				if err != nil {
					return err
				}
			}
			id := runID

			server := visualization.NewServer(visualization.HistoryFunc(
				func(ctx context.Context) ([]monitor.GenerationMetrics, error) {
					return experimentStore.RunHistory(ctx, id)
				}))

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			notifySignals(sigChan)
			go func() {
				<-sigChan
				cancel()
			}()

			go func() {
				// Report the bound address once the listener is up.
				for i := 0; i < 100; i++ {
					if addr := server.Addr(); addr != "" {
						fmt.Printf("Serving run %d history at http://%s (Ctrl-C to stop)\n", id, addr)
						return
					}
					time.Sleep(10 * time.Millisecond)
				}
			}()

			return server.ListenAndServe(ctx)
		},
	}

	cmd.Flags().Int64("run", 0, "Run id (default: latest run)")

	return cmd
}
