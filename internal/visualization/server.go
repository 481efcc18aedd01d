// Package visualization serves an interactive chart of a run's generation
// history over HTTP.
package visualization

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nvandessel/evoloop/internal/monitor"
)

// HistorySource supplies the run history the server renders. The store and
// the in-memory environment history both satisfy it through small adapters.
type HistorySource interface {
	History(ctx context.Context) ([]monitor.GenerationMetrics, error)
}

// HistoryFunc adapts a function to the HistorySource interface.
type HistoryFunc func(ctx context.Context) ([]monitor.GenerationMetrics, error)

// History calls f.
func (f HistoryFunc) History(ctx context.Context) ([]monitor.GenerationMetrics, error) {
	return f(ctx)
}

// Server serves the interactive history chart and its JSON API.
type Server struct {
	source     HistorySource
	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
	addr       string
}

// NewServer creates a new history chart server.
func NewServer(source HistorySource) *Server {
	return &Server{source: source}
}

// Addr returns the address the server is listening on (e.g., "localhost:PORT").
// Returns empty string if the server hasn't started yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// ListenAndServe starts the HTTP server on an OS-assigned port and blocks
// until the context is cancelled. Returns nil on clean shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/history", s.handleHistory)

	// Let the OS pick a free port.
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{Handler: mux}
	s.mu.Unlock()

	// Graceful shutdown when context is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	err = s.httpServer.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// handleIndex serves the chart HTML page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	page, err := templates.ReadFile("templates/history.html")
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// handleHistory returns the run history as JSON. Generations without oracle
// interactions carry null cohesion fields; the chart skips those points.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.source.History(r.Context())
	if err != nil {
		http.Error(w, "history error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []monitor.GenerationMetrics{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}
