package tracker

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultPollInterval is how often the server re-reads the tracking block.
const DefaultPollInterval = 5 * time.Second

// Server polls the tracking block and serves the latest snapshot over HTTP.
type Server struct {
	reader   MemoryReader
	interval time.Duration
	logger   *slog.Logger

	mu   sync.RWMutex
	last *Snapshot
}

// ServerOption configures a tracker server.
type ServerOption func(*Server)

// WithPollInterval sets the snapshot poll interval.
func WithPollInterval(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithServerLogger sets the server logger. Default: slog.Default().
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a tracker server over the given memory reader.
func NewServer(r MemoryReader, opts ...ServerOption) *Server {
	s := &Server{
		reader:   r,
		interval: DefaultPollInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run polls the device until the context is canceled. The session behind
// the reader is half-duplex, so polling shares it with nothing else: Run
// is the sole issuer of requests while it is active.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Take one snapshot up front so the endpoints have data immediately.
	s.poll(ctx)

	for {
		select {
		case <-ticker.C:
			s.poll(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Server) poll(ctx context.Context) {
	snap, err := TakeSnapshot(ctx, s.reader)
	if err != nil {
		s.logger.Error("snapshot failed", "error", err)
		return
	}
	s.mu.Lock()
	s.last = snap
	s.mu.Unlock()
	s.logger.Debug("snapshot taken", "items", len(snap.Items))
}

// Last returns the most recent snapshot, or nil before the first poll.
func (s *Server) Last() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Handler returns the HTTP routes: tracker state, health, and Prometheus
// metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/state", s.handleState)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap := s.Last()
	if snap == nil {
		http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.logger.Error("encode state", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
