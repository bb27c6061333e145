package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/climashield/internal/domain"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker = sharedobs.ReadinessChecker

// Assessor answers per-area risk lookups.
type Assessor interface {
	Assess(ctx context.Context, area string) domain.Assessment
	Areas() []string
}

// ForecastReader returns the most recent stored forecast for an area.
type ForecastReader interface {
	LatestForecast(ctx context.Context, area string) ([]domain.ForecastRow, error)
}

// Server exposes health, readiness, metrics, and the read-only assessment API.
type Server struct {
	httpServer *http.Server
	assessor   Assessor
	forecasts  ForecastReader
	logger     *slog.Logger
}

// NewServer creates an HTTP server. forecasts may be nil, in which case the
// forecast route answers 503.
func NewServer(addr string, ready ReadinessChecker, assessor Assessor, forecasts ForecastReader, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		assessor:  assessor,
		forecasts: forecasts,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/areas", s.handleAreas)
	mux.HandleFunc("GET /v1/areas/{area}/assessment", s.handleAssessment)
	mux.HandleFunc("GET /v1/areas/{area}/forecast", s.handleForecast)

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

func (s *Server) handleAreas(w http.ResponseWriter, _ *http.Request) {
	areas := s.assessor.Areas()
	if areas == nil {
		areas = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"areas": areas})
}

func (s *Server) handleAssessment(w http.ResponseWriter, r *http.Request) {
	area, ok := areaParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.assessor.Assess(r.Context(), area))
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	area, ok := areaParam(w, r)
	if !ok {
		return
	}
	if s.forecasts == nil {
		writeError(w, http.StatusServiceUnavailable, "forecast store is not configured")
		return
	}

	rows, err := s.forecasts.LatestForecast(r.Context(), area)
	if err != nil {
		s.logger.Error("load forecast failed", "area", area, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load forecast")
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, "no forecast for area "+area)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"area": area, "rows": rows})
}

func areaParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	area := strings.TrimSpace(r.PathValue("area"))
	if area == "" {
		writeError(w, http.StatusBadRequest, domain.ErrEmptyArea.Error())
		return "", false
	}
	return area, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
