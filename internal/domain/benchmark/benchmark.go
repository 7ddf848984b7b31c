// Package benchmark computes population benchmarks and z-scores on demand.
//
// Every call reads its population from the data store and recomputes the
// statistics; nothing is cached between calls. Empty populations, zero
// variance and unresolvable scopes are reported as values (null statistics,
// null z-scores, StatusUnavailable), never as errors.
package benchmark

import (
	"time"

	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/domain/sample"
	"github.com/okian/ringside/internal/domain/scope"
	"github.com/okian/ringside/internal/domain/stats"
	"github.com/okian/ringside/internal/domain/types"
)

// Status describes whether a benchmark could be computed.
type Status string

const (
	// StatusOK means at least one value was found.
	StatusOK Status = "ok"
	// StatusInsufficientData means the population had no values for the metric.
	StatusInsufficientData Status = "insufficient_data"
	// StatusUnavailable means the scope could not be resolved
	// (a mass band was requested but no body mass is known).
	StatusUnavailable Status = "unavailable"
)

// Benchmark is the summary of one metric over one population.
type Benchmark struct {
	Metric         string       `json:"metric"`
	ReferenceGroup string       `json:"reference_group"`
	Source         scope.Source `json:"benchmark_source"`
	Status         Status       `json:"status"`
	stats.Summary
}

// ZScoreResult is one athlete value standardized against a benchmark.
type ZScoreResult struct {
	AthleteID string    `json:"athlete_id"`
	EventID   string    `json:"event_id"`
	EventDate time.Time `json:"event_date"`
	Metric    string    `json:"metric"`
	Value     float64   `json:"value"`
	// ZScore is nil when the benchmark has no spread or is unavailable.
	ZScore    *float64  `json:"z_score"`
	Benchmark Benchmark `json:"benchmark"`
}

// Query selects a benchmark population.
type Query struct {
	Metric string
	Group  scope.ReferenceGroup
	// Gender is required for the gender group.
	Gender types.Gender
	// MassBand or BodyMass resolve the band for the mass-band group;
	// MassBand wins when both are set.
	MassBand *scope.MassBand
	BodyMass *float64
	// Source is the explicit benchmark source; empty applies the role default.
	Source scope.Source
}

// ZScoreQuery selects an athlete value and its reference population.
type ZScoreQuery struct {
	AthleteID string
	Metric    string
	// EventID pins a specific event; empty selects the latest event
	// carrying the metric.
	EventID string
	Group   scope.ReferenceGroup
	Source  scope.Source
}

// unavailable returns the benchmark for an unresolvable scope.
func unavailable(metric string, sc scope.Scope) Benchmark {
	return Benchmark{
		Metric:         metric,
		ReferenceGroup: sc.Label(),
		Source:         sc.Source,
		Status:         StatusUnavailable,
	}
}

// compute summarizes metric over the events admitted by f.
// The store has already applied f; it is re-applied so every code path
// summarizes exactly the same records.
func compute(metric string, sc scope.Scope, f scope.Filter, population []model.Event) Benchmark {
	admitted := make([]model.Event, 0, len(population))
	for _, e := range population {
		if f.Admits(e) {
			admitted = append(admitted, e)
		}
	}
	s := sample.Extract(admitted, metric)

	b := Benchmark{
		Metric:         metric,
		ReferenceGroup: sc.Label(),
		Source:         sc.Source,
		Status:         StatusOK,
		Summary:        stats.Summarize(s.Values()),
	}
	if b.Empty() {
		b.Status = StatusInsufficientData
	}
	return b
}
