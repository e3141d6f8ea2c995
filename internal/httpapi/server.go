package httpapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rust-practice/conn-mon/internal/domain"
)

// TargetStatus is the last observed state of one target.
type TargetStatus struct {
	Name        string `json:"name"`
	State       string `json:"state"`
	LastKind    string `json:"last_kind"`
	LastRTTMS   int    `json:"last_rtt_ms,omitempty"`
	LastChecked string `json:"last_checked"`
}

// StatusStore is the read-only view the router publishes after each
// processed result. The router is the only writer; HTTP handlers read
// concurrently.
type StatusStore struct {
	mu      sync.RWMutex
	targets map[string]TargetStatus
}

func NewStatusStore() *StatusStore {
	return &StatusStore{targets: make(map[string]TargetStatus)}
}

// Record implements monitor.StatusSink.
func (s *StatusStore) Record(name, state string, resp domain.TimestampedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets[name] = TargetStatus{
		Name:        name,
		State:       state,
		LastKind:    string(resp.Response.Kind),
		LastRTTMS:   resp.Response.TimeMS,
		LastChecked: resp.Timestamp.String(),
	}
}

// Snapshot returns the current statuses sorted by name.
func (s *StatusStore) Snapshot() []TargetStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TargetStatus, 0, len(s.targets))
	for _, st := range s.targets {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Server exposes the operator surface: target statuses, a liveness probe
// and Prometheus metrics. Read-only; targets are owned by the config file.
type Server struct {
	Logger *zap.Logger
	Status *StatusStore
}

func NewServer(l *zap.Logger, status *StatusStore) *Server {
	return &Server{Logger: l, Status: status}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/api/targets", s.handleTargets)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Status.Snapshot()); err != nil {
		s.Logger.Warn("status_encode_failed", zap.Error(err))
	}
}
