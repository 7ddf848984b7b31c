package api

import (
	"net/http"

	"github.com/okian/ringside/internal/domain/types"
	"github.com/okian/ringside/pkg/logger"
)

// TrainingLoadHandler serves the training load analysis route.
type TrainingLoadHandler struct {
	deps   TrainingLoadDependencies
	logger logger.Logger
}

// NewTrainingLoadHandler creates a new training load handler.
func NewTrainingLoadHandler(deps TrainingLoadDependencies, l logger.Logger) *TrainingLoadHandler {
	return &TrainingLoadHandler{deps: deps, logger: l}
}

// HandleGetTrainingLoad handles GET /training/analysis/load/{athlete_id}?days=N.
func (h *TrainingLoadHandler) HandleGetTrainingLoad(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_training_load"
	ctx := r.Context()
	caller, _ := types.CallerFrom(ctx)

	athleteID, err := pathUUID(r, "athlete_id")
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	days, err := parseDays(r.URL.Query())
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	a, err := h.deps.AnalyzeTrainingLoad(ctx, caller, athleteID, days)
	if err != nil {
		fail(ctx, h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, a)
}
