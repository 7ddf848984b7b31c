package benchmark

import (
	"errors"

	"github.com/okian/ringside/internal/domain/model"
)

// Sentinel kinds for benchmark errors.
var (
	ErrMetricRequired  = errors.New("metric required")
	ErrAthleteRequired = errors.New("athlete id required")
	// ErrNotFound is returned when the athlete, event or metric value to
	// standardize does not exist. It matches model.ErrNotFound.
	ErrNotFound = model.ErrNotFound
)
