package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/domain/scope"
	"github.com/okian/ringside/internal/domain/types"
)

// pathUUID reads a path parameter that must be a UUID.
func pathUUID(r *http.Request, name string) (string, error) {
	return parseUUID(name, r.PathValue(name))
}

func parseUUID(name, raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %s must be a UUID", ErrBadRequest, name)
	}
	return id.String(), nil
}

// scopeParams holds the population selectors shared by analysis routes.
type scopeParams struct {
	metric string
	group  scope.ReferenceGroup
	source scope.Source
}

func parseScopeParams(q url.Values) (scopeParams, error) {
	var p scopeParams
	p.metric = strings.TrimSpace(q.Get("metric"))
	if p.metric == "" {
		return p, fmt.Errorf("%w: metric is required", ErrBadRequest)
	}
	var err error
	if p.group, err = scope.ParseReferenceGroup(q.Get("reference_group")); err != nil {
		return p, err
	}
	if p.source, err = scope.ParseSource(q.Get("benchmark_source")); err != nil {
		return p, err
	}
	return p, nil
}

func parseGender(q url.Values) (types.Gender, error) {
	raw := q.Get("gender")
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return types.ParseGender(raw)
}

func parseMassBand(q url.Values) (*scope.MassBand, error) {
	raw := q.Get("mass_band")
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	b, err := scope.ParseMassBand(raw)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func parseBodyMass(q url.Values) (*float64, error) {
	raw := strings.TrimSpace(q.Get("body_mass_kg"))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 || !model.ValidBodyMass(v) {
		return nil, fmt.Errorf("%w: body_mass_kg must be a positive number within the body mass range", ErrBadRequest)
	}
	return &v, nil
}

// parseDays reads the optional window length; zero means the default.
func parseDays(q url.Values) (int, error) {
	raw := strings.TrimSpace(q.Get("days"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: days must be a positive integer", ErrBadRequest)
	}
	return n, nil
}
