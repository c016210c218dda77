// Package debugserver exposes a live heap snapshot over HTTP/3, for external
// memory-debugger tooling to poll without stopping the mutator. Grounded on
// metrics_exporter.go's StartMetricsServer (mux + listener + shutdown closure
// shape) and netstack's HTTP3Server/GenerateSelfSignedTLS, generalized from a
// text-exposition endpoint into a JSON snapshot endpoint.
package debugserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/orizon-lang/rcimmix/internal/runtime"
	"github.com/orizon-lang/rcimmix/internal/runtime/netstack"
)

// Snapshot is the wire shape served at /snapshot. Field names are stable
// across reloads so a poller can diff successive snapshots.
type Snapshot struct {
	TakenAt   time.Time              `json:"taken_at"`
	Space     runtime.SpaceStats     `json:"space"`
	RC        runtime.RCStats        `json:"rc"`
	Allocator runtime.AllocatorStats `json:"allocator"`
}

// Server serves heap snapshots over HTTP/3. The zero value is not usable;
// construct with New.
type Server struct {
	space *runtime.ImmixSpace
	rc    *runtime.RCCollector
	alloc *runtime.BlockAllocator
	log   *slog.Logger

	http3 *netstack.HTTP3Server
}

// New builds a Server for the given heap components. logger may be nil, in
// which case slog.Default() is used.
func New(addr string, space *runtime.ImmixSpace, rc *runtime.RCCollector, alloc *runtime.BlockAllocator, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{space: space, rc: rc, alloc: alloc, log: logger}

	tlsCfg, err := netstack.GenerateSelfSignedTLS([]string{"localhost", "127.0.0.1"}, 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("debugserver: generating TLS config: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/healthz", s.handleHealthz)

	s.http3 = netstack.NewHTTP3Server(addr, tlsCfg, mux)

	return s, nil
}

// Start binds the server's UDP listener and begins serving. It returns the
// bound address, which may differ from the requested one if addr ended in
// ":0".
func (s *Server) Start() (string, error) {
	bound, err := s.http3.Start()
	if err != nil {
		return "", fmt.Errorf("debugserver: starting: %w", err)
	}

	s.log.Info("debugserver: listening", "addr", bound)

	return bound, nil
}

// Stop shuts the server down. ctx is accepted for symmetry with
// net/http.Server.Shutdown but the current implementation does not honor a
// deadline beyond the one netstack.HTTP3Server.Stop already applies.
func (s *Server) Stop(ctx context.Context) error {
	return s.http3.Stop()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := Snapshot{
		TakenAt:   time.Now(),
		Space:     s.space.Stats(),
		RC:        s.rc.Stats(),
		Allocator: s.alloc.Stats(),
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.log.Warn("debugserver: encoding snapshot", "error", err)
	}
}
