// Package inspect exposes bridge runtime diagnostics over HTTP during
// development: cache hit rates, queue depth, and pending request
// counts, as JSON a dev console can poll.
package inspect

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-ferry/ferry/pkg/bridge"
	"github.com/go-ferry/ferry/pkg/config"
)

// Server serves runtime diagnostics for one bridge runtime.
type Server struct {
	runtime *bridge.Runtime
	config  *config.Resolved

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewServer creates an inspection server for the given runtime. cfg is
// the resolved configuration the runtime was built from; it backs the
// /config endpoint and may be nil when the host wired the runtime
// without pkg/config.
func NewServer(rt *bridge.Runtime, cfg *config.Resolved) *Server {
	return &Server{runtime: rt, config: cfg}
}

// Start binds the server on the given port and begins serving.
// Returns the actual port, useful when port=0 requests an ephemeral
// one. Starting an already running server returns its current port.
func (s *Server) Start(port int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return s.listener.Addr().(*net.TCPAddr).Port, nil
	}

	// Bind first to fail fast on port conflicts.
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return 0, fmt.Errorf("inspect server listen: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/config", s.handleConfig)

	s.listener = listener
	s.server = &http.Server{Handler: mux}

	go func() {
		// ErrServerClosed is the normal shutdown path.
		_ = s.server.Serve(listener)
	}()

	return listener.Addr().(*net.TCPAddr).Port, nil
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.server = nil
	s.listener = nil
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.runtime.Stats())
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if s.config == nil {
		writeJSON(w, map[string]any{})
		return
	}
	writeJSON(w, map[string]any{
		"flushIntervalMs": s.config.FlushInterval.Milliseconds(),
		"immediateHigh":   s.config.ImmediateHigh,
		"codec":           s.config.Codec,
		"cacheCapacity":   s.config.CacheCapacity,
		"inspectEnabled":  s.config.InspectEnabled,
		"inspectPort":     s.config.InspectPort,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
