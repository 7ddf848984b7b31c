// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/ringside/internal/domain/benchmark"
	"github.com/okian/ringside/internal/domain/metric"
	"github.com/okian/ringside/internal/domain/trainingload"
	"github.com/okian/ringside/internal/domain/types"
	"github.com/okian/ringside/pkg/logger"
)

// AnalysisDependencies is the benchmark and z-score engine.
type AnalysisDependencies interface {
	GetBenchmarks(ctx context.Context, caller types.Caller, q benchmark.Query) (benchmark.Benchmark, error)
	GetZScore(ctx context.Context, caller types.Caller, q benchmark.ZScoreQuery) (benchmark.ZScoreResult, error)
	GetZScoresBulk(ctx context.Context, caller types.Caller, q benchmark.ZScoreQuery) (map[string]benchmark.ZScoreResult, error)
	ListAthleteMetrics(ctx context.Context, caller types.Caller, athleteID string) ([]string, error)
	ListMetricDefinitions() []metric.Definition
}

// TrainingLoadDependencies is the training load analyzer.
type TrainingLoadDependencies interface {
	AnalyzeTrainingLoad(ctx context.Context, caller types.Caller, athleteID string, windowDays int) (trainingload.Analysis, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	AnalysisDependencies
	TrainingLoadDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	analysisHandler     *AnalysisHandler
	trainingLoadHandler *TrainingLoadHandler
	limiter             *RateLimiter
	logger              logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithRateLimit limits analysis routes to perMinute requests per coach with
// the given burst. A zero rate disables limiting.
func WithRateLimit(perMinute, burst int) Option {
	return func(s *Server) {
		s.limiter = NewRateLimiter(perMinute, burst)
	}
}

// WithLogger sets a custom logger for request failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.analysisHandler = NewAnalysisHandler(deps, s.logger)
	s.trainingLoadHandler = NewTrainingLoadHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	s.guarded(mux, "GET /analysis/benchmarks", "benchmarks", s.analysisHandler.HandleGetBenchmarks)
	s.guarded(mux, "GET /analysis/metrics", "metric_definitions", s.analysisHandler.HandleListMetricDefinitions)
	s.guarded(mux, "GET /analysis/athlete/{athlete_id}/zscore", "zscore", s.analysisHandler.HandleGetZScore)
	s.guarded(mux, "GET /analysis/athlete/{athlete_id}/zscores", "zscores", s.analysisHandler.HandleGetZScoresBulk)
	s.guarded(mux, "GET /analysis/athlete/{athlete_id}/metrics", "athlete_metrics", s.analysisHandler.HandleListAthleteMetrics)
	s.guarded(mux, "GET /training/analysis/load/{athlete_id}", "training_load", s.trainingLoadHandler.HandleGetTrainingLoad)
}

// guarded registers a caller-scoped route: metrics, then identity, then the
// per-coach rate limit.
func (s *Server) guarded(mux *http.ServeMux, pattern, endpoint string, h http.HandlerFunc) {
	if s.limiter != nil {
		h = s.limiter.Middleware(h, endpoint)
	}
	mux.HandleFunc(pattern, MetricsMiddleware(CallerMiddleware(h), endpoint))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail writes err with the status its kind maps to. Server errors are
// logged and their detail hidden from the client.
func fail(ctx context.Context, l logger.Logger, w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		l.Error(ctx, "request failed", logger.Error(err))
		writeError(w, status, code, nil)
		return
	}
	writeError(w, status, code, err)
}
