// Package api implements the safety dashboard's REST API: incidents,
// incident stats and exports, the score report and the rule table.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nodesafety/safetyscore/internal/metrics"
	"github.com/nodesafety/safetyscore/internal/report"
	"github.com/nodesafety/safetyscore/pkg/incident"
	"github.com/nodesafety/safetyscore/pkg/scoring"
)

// IncidentService is the incident query side the handlers need.
type IncidentService interface {
	ForDate(ctx context.Context, date string) []incident.Record
	Range(ctx context.Context, start, end time.Time) []incident.Record
	AttachVideoURLs(ctx context.Context, records []incident.Record) []incident.Record
	Rules() *scoring.RuleTable
}

// ReportBuilder produces the score report.
type ReportBuilder interface {
	Build(ctx context.Context) report.ScoreReport
}

// Config wires a Handler.
type Config struct {
	Incidents    IncidentService
	Reports      ReportBuilder
	MaxRangeDays int                 // 0 disables the cap
	Gatherer     prometheus.Gatherer // serves /metrics when set
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	Now          func() time.Time
}

// Handler is the top-level API handler.
type Handler struct {
	incidents    IncidentService
	reports      ReportBuilder
	maxRangeDays int
	gatherer     prometheus.Gatherer
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	h := &Handler{
		incidents:    cfg.Incidents,
		reports:      cfg.Reports,
		maxRangeDays: cfg.MaxRangeDays,
		gatherer:     cfg.Gatherer,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
		now:          cfg.Now,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/api/incidents", h.handleIncidents)
	mux.HandleFunc("GET /v1/api/incidents/stats", h.handleIncidentStats)
	mux.HandleFunc("GET /v1/api/incidents/export", h.handleIncidentExport)
	mux.HandleFunc("GET /v1/api/safety-scores", h.handleSafetyScores)
	mux.HandleFunc("GET /v1/api/scoring-rules", h.handleScoringRules)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	if h.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}
}

// Routes returns the API behind the standard middleware chain.
func (h *Handler) Routes(corsOrigin string) http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return RequestID(AccessLog(h.logger, h.metrics)(CORS(corsOrigin)(mux)))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
