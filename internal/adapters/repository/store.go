// Package repository provides the read-side data store used by the analysis
// engine: population events, athletes and training sessions.
package repository

import (
	"context"
	"time"

	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/domain/scope"
	"github.com/okian/ringside/pkg/metrics"
)

// Counts holds record totals per kind.
type Counts struct {
	Coaches  int `json:"coaches" db:"coaches"`
	Athletes int `json:"athletes" db:"athletes"`
	Events   int `json:"events" db:"events"`
	Sessions int `json:"sessions" db:"sessions"`
}

// Store provides read access to athlete testing and training data.
// Implementations never mutate records on behalf of the engine.
type Store interface {
	// ListPopulation returns the events matching the filter, ordered by
	// event date then id (both ascending).
	ListPopulation(ctx context.Context, f scope.Filter) ([]model.Event, error)

	// GetAthlete returns an athlete owned by coachID.
	// Returns ErrNotFound when the athlete is unknown or owned by another coach.
	GetAthlete(ctx context.Context, coachID, athleteID string) (model.Athlete, error)

	// ListAthleteEvents returns an athlete's events, latest first
	// (event date desc, then id desc).
	ListAthleteEvents(ctx context.Context, athleteID string) ([]model.Event, error)

	// GetEvent returns one of the athlete's events.
	// Returns ErrNotFound when the event does not exist for that athlete.
	GetEvent(ctx context.Context, athleteID, eventID string) (model.Event, error)

	// ListSessions returns the athlete's sessions dated within [from, to]
	// (calendar days, inclusive), ordered by date.
	ListSessions(ctx context.Context, athleteID string, from, to time.Time) ([]model.Session, error)

	// Counts returns record totals.
	Counts(ctx context.Context) (Counts, error)

	Close() error
}

// Store operation names used for metrics labels.
const (
	opListPopulation    = "list_population"
	opGetAthlete        = "get_athlete"
	opListAthleteEvents = "list_athlete_events"
	opGetEvent          = "get_event"
	opListSessions      = "list_sessions"
	opCounts            = "counts"
)

// observe records the latency of a store operation started at start.
func observe(op string, start time.Time) {
	metrics.RecordStoreQueryLatency(op, float64(time.Since(start).Microseconds())/1000)
}

// publishCounts mirrors record totals into the store gauges.
func publishCounts(c Counts) {
	metrics.UpdateStoreRecords("coaches", c.Coaches)
	metrics.UpdateStoreRecords("athletes", c.Athletes)
	metrics.UpdateStoreRecords("events", c.Events)
	metrics.UpdateStoreRecords("sessions", c.Sessions)
}
