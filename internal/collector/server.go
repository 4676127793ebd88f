package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/adreach/adsdk/internal/core/domain"
	"github.com/adreach/adsdk/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store is the persistence surface the ingest server needs.
type Store interface {
	InsertLogs(ctx context.Context, logs []domain.LogRecord) error
	InsertErrors(ctx context.Context, reports []domain.ErrorReport) error
}

// Server exposes the telemetry ingest endpoints plus health and metrics.
type Server struct {
	store  Store
	log    *slog.Logger
	server *http.Server
}

// NewServer creates the collector HTTP server.
func NewServer(store Store, port int, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	mux := http.NewServeMux()
	s := &Server{
		store: store,
		log:   log,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/v1/logs", s.handleLogs)
	mux.HandleFunc("/v1/errors", s.handleErrors)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

type logsEnvelope struct {
	Logs []domain.LogRecord `json:"logs"`
}

type errorsEnvelope struct {
	Errors []domain.ErrorReport `json:"errors"`
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()

	var env logsEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}
	if len(env.Logs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty batch"})
		return
	}

	if err := s.store.InsertLogs(r.Context(), env.Logs); err != nil {
		s.log.Error("failed to persist log batch", "entries", len(env.Logs), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failure"})
		return
	}

	metrics.CollectorIngested.WithLabelValues("logs").Add(float64(len(env.Logs)))
	metrics.CollectorIngestLatency.WithLabelValues("logs").Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusAccepted, map[string]int{"accepted": len(env.Logs)})
}

func (s *Server) handleErrors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()

	var env errorsEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}
	if len(env.Errors) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty batch"})
		return
	}

	if err := s.store.InsertErrors(r.Context(), env.Errors); err != nil {
		s.log.Error("failed to persist error batch", "entries", len(env.Errors), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failure"})
		return
	}

	metrics.CollectorIngested.WithLabelValues("errors").Add(float64(len(env.Errors)))
	metrics.CollectorIngestLatency.WithLabelValues("errors").Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusAccepted, map[string]int{"accepted": len(env.Errors)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
