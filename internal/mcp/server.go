// Package mcp provides an MCP (Model Context Protocol) server for evoloop.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/evoloop/internal/config"
	"github.com/nvandessel/evoloop/internal/store"
)

// Server wraps the MCP SDK server and exposes evoloop experiments as tools.
type Server struct {
	server *sdk.Server
	store  *store.ExperimentStore
	cfg    *config.Config
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Name    string // Server name (e.g., "evoloop")
	Version string // Server version
}

// NewServer creates a new MCP server backed by the experiment store at the
// configured output directory.
func NewServer(sc *ServerConfig, cfg *config.Config) (*Server, error) {
	experimentStore, err := store.Open(cfg.StorePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open experiment store: %w", err)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    sc.Name,
		Version: sc.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			// Client initialized, ready to serve
		},
	})

	s := &Server{
		server: mcpServer,
		store:  experimentStore,
		cfg:    cfg,
	}

	s.registerTools()

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	err := s.server.Run(ctx, &sdk.StdioTransport{})

	s.store.Close()

	return err
}

// Close closes the server and releases resources.
func (s *Server) Close() error {
	return s.store.Close()
}

// registerTools registers all evoloop MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "evoloop_run",
		Description: "Run an evolutionary simulation and record it in the experiment store",
	}, s.handleRun)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "evoloop_history",
		Description: "Get the per-generation metrics of a recorded run (latest run by default)",
	}, s.handleHistory)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "evoloop_leaps",
		Description: "List the evolutionary leap events of a recorded run (latest run by default)",
	}, s.handleLeaps)
}
