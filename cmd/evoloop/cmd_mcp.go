package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/evoloop/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Start the MCP server (stdio transport)",
		Long: `Start an MCP (Model Context Protocol) server exposing evoloop to AI
agents over stdio. The server provides tools to run simulations and
inspect recorded runs.

Register with an MCP client, e.g.:
  claude mcp add evoloop -- evoloop mcp-server`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(&mcp.ServerConfig{
				Name:    "evoloop",
				Version: version,
			}, cfg)
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			return server.Run(cmd.Context())
		},
	}
}
