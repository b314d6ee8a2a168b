package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/quakewatch/internal/adapter/jma"
	"github.com/couchcryptid/quakewatch/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// QuakeSource fetches the current earthquake records for the /quakes endpoint.
type QuakeSource interface {
	Fetch(ctx context.Context, opts ...jma.FetchOption) []domain.EarthquakeRecord
}

// Server exposes health, readiness, metrics, and earthquake listing endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// quakesResponse is the body of GET /quakes.
type quakesResponse struct {
	Count          int                       `json:"count"`
	AverageDepthKm float64                   `json:"average_depth_km"`
	Quakes         []domain.EarthquakeRecord `json:"quakes"`
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and /quakes routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, quakes QuakeSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /quakes", s.handleQuakes(quakes))

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

func (s *Server) handleQuakes(source QuakeSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var opts []jma.FetchOption
		if v := r.URL.Query().Get("max_depth"); v != "" {
			km, err := strconv.ParseFloat(v, 64)
			if err != nil || math.IsNaN(km) || math.IsInf(km, 0) {
				s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "max_depth must be a finite number"})
				return
			}
			opts = append(opts, jma.WithMaxDepth(km))
		}

		records := source.Fetch(r.Context(), opts...)
		s.writeJSON(w, http.StatusOK, quakesResponse{
			Count:          len(records),
			AverageDepthKm: domain.AverageDepth(records),
			Quakes:         records,
		})
	}
}

// writeJSON encodes before writing the header so an unencodable body becomes a 500.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", "error", err)
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
