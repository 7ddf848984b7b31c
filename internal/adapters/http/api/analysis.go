package api

import (
	"net/http"

	"github.com/okian/ringside/internal/domain/benchmark"
	"github.com/okian/ringside/internal/domain/types"
	"github.com/okian/ringside/pkg/logger"
)

// AnalysisHandler serves benchmark and z-score routes.
type AnalysisHandler struct {
	deps   AnalysisDependencies
	logger logger.Logger
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(deps AnalysisDependencies, l logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{deps: deps, logger: l}
}

// HandleGetBenchmarks handles GET /analysis/benchmarks.
func (h *AnalysisHandler) HandleGetBenchmarks(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_benchmarks"
	ctx := r.Context()
	caller, _ := types.CallerFrom(ctx)
	q := r.URL.Query()

	p, err := parseScopeParams(q)
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	query := benchmark.Query{Metric: p.metric, Group: p.group, Source: p.source}
	if query.Gender, err = parseGender(q); err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	if query.MassBand, err = parseMassBand(q); err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	if query.BodyMass, err = parseBodyMass(q); err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}

	b, err := h.deps.GetBenchmarks(ctx, caller, query)
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// HandleGetZScore handles GET /analysis/athlete/{athlete_id}/zscore.
func (h *AnalysisHandler) HandleGetZScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_zscore"
	ctx := r.Context()
	caller, _ := types.CallerFrom(ctx)

	zq, err := zscoreQuery(r)
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	if raw := r.URL.Query().Get("event_id"); raw != "" {
		if zq.EventID, err = parseUUID("event_id", raw); err != nil {
			fail(ctx, h.logger, w, Wrap(op, err))
			return
		}
	}

	res, err := h.deps.GetZScore(ctx, caller, zq)
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleGetZScoresBulk handles GET /analysis/athlete/{athlete_id}/zscores.
// The response maps event ids to results.
func (h *AnalysisHandler) HandleGetZScoresBulk(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_zscores_bulk"
	ctx := r.Context()
	caller, _ := types.CallerFrom(ctx)

	zq, err := zscoreQuery(r)
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	res, err := h.deps.GetZScoresBulk(ctx, caller, zq)
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleListAthleteMetrics handles GET /analysis/athlete/{athlete_id}/metrics.
func (h *AnalysisHandler) HandleListAthleteMetrics(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_athlete_metrics"
	ctx := r.Context()
	caller, _ := types.CallerFrom(ctx)

	athleteID, err := pathUUID(r, "athlete_id")
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	keys, err := h.deps.ListAthleteMetrics(ctx, caller, athleteID)
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, keys)
}

// HandleListMetricDefinitions handles GET /analysis/metrics.
func (h *AnalysisHandler) HandleListMetricDefinitions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.ListMetricDefinitions())
}

func zscoreQuery(r *http.Request) (benchmark.ZScoreQuery, error) {
	athleteID, err := pathUUID(r, "athlete_id")
	if err != nil {
		return benchmark.ZScoreQuery{}, err
	}
	p, err := parseScopeParams(r.URL.Query())
	if err != nil {
		return benchmark.ZScoreQuery{}, err
	}
	return benchmark.ZScoreQuery{
		AthleteID: athleteID,
		Metric:    p.metric,
		Group:     p.group,
		Source:    p.source,
	}, nil
}
