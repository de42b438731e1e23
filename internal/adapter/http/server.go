// Package http exposes health, readiness, metrics, and read-only
// update query endpoints.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rainyindia/holiday-signal/internal/adapter/postgres"
	"github.com/rainyindia/holiday-signal/internal/domain"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// UpdateReader serves the query endpoint. *postgres.Store implements it.
type UpdateReader interface {
	ActiveUpdates(ctx context.Context, f postgres.Filter) ([]domain.Update, error)
}

// Server exposes operational endpoints plus GET /updates for clients
// that want current holiday signals.
type Server struct {
	httpServer *http.Server
	reader     UpdateReader
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// and /updates routes. reader may be nil, in which case /updates
// responds 503.
func NewServer(addr string, ready ReadinessChecker, reader UpdateReader, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		reader: reader,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /updates", s.handleUpdates)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// handleUpdates returns active updates, optionally filtered by
// ?region=, ?state=, and ?min_confidence= query parameters.
func (s *Server) handleUpdates(w http.ResponseWriter, r *http.Request) {
	if s.reader == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "update store not configured",
		})
		return
	}

	f := postgres.Filter{
		Region: r.URL.Query().Get("region"),
		State:  r.URL.Query().Get("state"),
	}
	if raw := r.URL.Query().Get("min_confidence"); raw != "" {
		min, err := strconv.Atoi(raw)
		if err != nil || min < 0 || min > 100 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "min_confidence must be an integer between 0 and 100",
			})
			return
		}
		f.MinConfidence = min
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	updates, err := s.reader.ActiveUpdates(ctx, f)
	if err != nil {
		s.logger.Error("updates query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "query failed",
		})
		return
	}
	if updates == nil {
		updates = []domain.Update{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(updates),
		"updates": updates,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
