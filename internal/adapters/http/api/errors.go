package api

import (
	"errors"
	"net/http"

	"github.com/okian/ringside/internal/domain/benchmark"
	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/domain/scope"
	"github.com/okian/ringside/internal/domain/trainingload"
	"github.com/okian/ringside/internal/domain/types"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
)

// Error attaches the failing operation to an error and, optionally, a kind
// that callers match with errors.Is.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Kind != nil:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Op + ": " + e.Kind.Error()
	default:
		return e.Op
	}
}

// Unwrap exposes both the kind and the cause.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Wrap annotates err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// NewKind returns an error of the given kind for op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind annotates err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// badRequestKinds are domain validation errors reported as 400.
var badRequestKinds = []error{
	ErrBadRequest,
	scope.ErrInvalidSource,
	scope.ErrInvalidReferenceGroup,
	scope.ErrGenderRequired,
	scope.ErrInvalidMassBand,
	types.ErrInvalidGender,
	benchmark.ErrMetricRequired,
	benchmark.ErrAthleteRequired,
	trainingload.ErrInvalidWindow,
	trainingload.ErrAthleteRequired,
}

// statusFor maps an error to its HTTP status and response code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, types.ErrInvalidRole):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "not_found"
	}
	for _, kind := range badRequestKinds {
		if errors.Is(err, kind) {
			return http.StatusBadRequest, "bad_request"
		}
	}
	return http.StatusInternalServerError, "internal_error"
}
