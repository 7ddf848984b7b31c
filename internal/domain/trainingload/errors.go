package trainingload

import "errors"

// Sentinel kinds for training load errors.
var (
	ErrInvalidWindow   = errors.New("invalid analysis window")
	ErrAthleteRequired = errors.New("athlete id required")
)
