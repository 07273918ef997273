package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/precip-etl/internal/report"
)

// Server exposes health, readiness, metrics and the latest run summary over
// HTTP. It doubles as a pipeline sink so /summary always serves the most
// recent completed run.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger

	mu     sync.RWMutex
	latest *report.Output
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// /summary routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /summary", s.handleSummary)

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

// Name implements pipeline.Sink.
func (s *Server) Name() string { return "http" }

// Publish stores out as the summary served from now on.
func (s *Server) Publish(_ context.Context, out *report.Output) error {
	s.mu.Lock()
	s.latest = out
	s.mu.Unlock()
	return nil
}

type summaryResponse struct {
	RunID           string            `json:"run_id"`
	FinishedAt      time.Time         `json:"finished_at"`
	FilesProcessed  int               `json:"files_processed"`
	LinesProcessed  int               `json:"lines_processed"`
	ValuesProcessed int               `json:"values_processed"`
	MissingPercent  float64           `json:"missing_percent"`
	ErrorsByKind    map[string]int    `json:"errors_by_kind"`
	Summary         *report.Summary   `json:"summary"`
	Stations        []stationResponse `json:"stations"`
}

type stationResponse struct {
	ID        string  `json:"id"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	PlaceName string  `json:"place_name,omitempty"`
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	out := s.latest
	s.mu.RUnlock()

	if out == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no completed run"})
		return
	}

	vr := out.Validation
	resp := summaryResponse{
		RunID:           vr.RunID,
		FinishedAt:      vr.FinishedAt,
		FilesProcessed:  vr.FilesProcessed,
		LinesProcessed:  vr.LinesProcessed,
		ValuesProcessed: vr.ValuesProcessed,
		MissingPercent:  vr.MissingPercentage(),
		ErrorsByKind:    make(map[string]int),
		Summary:         out.Summary,
		Stations:        make([]stationResponse, 0, len(out.Stations)),
	}
	for kind, n := range vr.CountByKind() {
		resp.ErrorsByKind[string(kind)] = n
	}
	for _, st := range out.Stations {
		resp.Stations = append(resp.Stations, stationResponse{ID: st.ID, Lat: st.Lat, Lon: st.Lon, PlaceName: st.PlaceName})
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
