package repository

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib" // registers the "pgx" database/sql driver
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/domain/scope"
	"github.com/okian/ringside/internal/domain/types"
	"github.com/okian/ringside/pkg/logger"
	"github.com/okian/ringside/pkg/metrics"
)

const pgxDriver = "pgx"

// Schema creates the tables read by PostgresStore.
const Schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id   UUID PRIMARY KEY,
	role TEXT NOT NULL DEFAULT 'coach' CHECK (role IN ('coach', 'admin'))
);
CREATE TABLE IF NOT EXISTS coach_consents (
	coach_id             UUID PRIMARY KEY REFERENCES profiles(id),
	data_sharing_enabled BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE IF NOT EXISTS athletes (
	id            UUID PRIMARY KEY,
	coach_id      UUID NOT NULL REFERENCES profiles(id),
	name          TEXT NOT NULL,
	gender        TEXT NOT NULL CHECK (gender IN ('male', 'female')),
	date_of_birth DATE
);
CREATE TABLE IF NOT EXISTS performance_events (
	id         UUID PRIMARY KEY,
	athlete_id UUID NOT NULL REFERENCES athletes(id),
	event_date DATE NOT NULL,
	metrics    JSONB NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS performance_events_athlete_idx ON performance_events (athlete_id, event_date DESC);
CREATE TABLE IF NOT EXISTS training_sessions (
	id               UUID PRIMARY KEY,
	athlete_id       UUID NOT NULL REFERENCES athletes(id),
	session_date     DATE NOT NULL,
	training_type    TEXT NOT NULL DEFAULT '',
	duration_minutes INTEGER NOT NULL CHECK (duration_minutes BETWEEN 1 AND 600),
	rpe              INTEGER NOT NULL CHECK (rpe BETWEEN 1 AND 10),
	srpe             INTEGER
);
CREATE INDEX IF NOT EXISTS training_sessions_athlete_idx ON training_sessions (athlete_id, session_date);
`

// bandSlack widens the SQL mass band prefilter in kg so decimal rounding in
// the database never drops a row that Filter.Admits would keep.
const bandSlack = 1

const eventColumns = `e.id, e.athlete_id, a.coach_id, a.gender, e.event_date, e.metrics`

// PostgresStore is a Store backed by PostgreSQL through sqlx and the pgx driver.
type PostgresStore struct {
	db              *sqlx.DB
	maxOpenConns    int
	connMaxLifetime time.Duration
	logger          logger.Logger
}

// OpenPostgres connects to dsn and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string, opts ...PostgresOption) (*PostgresStore, error) {
	s := &PostgresStore{
		maxOpenConns:    10,
		connMaxLifetime: 30 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	db, err := sqlx.ConnectContext(ctx, pgxDriver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}
	db.SetMaxOpenConns(s.maxOpenConns)
	db.SetConnMaxLifetime(s.connMaxLifetime)
	s.db = db

	s.logger.Info(ctx, "postgres store connected", logger.Int("maxOpenConns", s.maxOpenConns))
	return s, nil
}

// Migrate creates missing tables.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return errors.Wrap(err, "migrate schema")
	}
	return nil
}

// eventRow is the scan target for event queries.
type eventRow struct {
	ID        string    `db:"id"`
	AthleteID string    `db:"athlete_id"`
	CoachID   string    `db:"coach_id"`
	Gender    string    `db:"gender"`
	EventDate time.Time `db:"event_date"`
	Metrics   []byte    `db:"metrics"`
}

func (r eventRow) toModel() (model.Event, error) {
	m := model.Metrics{}
	if len(r.Metrics) > 0 {
		dec := json.NewDecoder(bytes.NewReader(r.Metrics))
		dec.UseNumber()
		if err := dec.Decode(&m); err != nil {
			return model.Event{}, errors.Wrapf(err, "decode metrics of event %s", r.ID)
		}
	}
	return model.Event{
		ID:        r.ID,
		AthleteID: r.AthleteID,
		CoachID:   r.CoachID,
		Gender:    types.Gender(r.Gender),
		EventDate: r.EventDate.UTC(),
		Metrics:   m,
	}, nil
}

func toEvents(rows []eventRow) ([]model.Event, error) {
	out := make([]model.Event, 0, len(rows))
	for _, r := range rows {
		e, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// buildPopulationQuery renders the population query for f.
// Tenant selection joins profiles and consents; gender is pushed down and the
// mass band is prefiltered. ListPopulation applies Filter.Admits to the rows,
// so both stores admit exactly the same events.
func buildPopulationQuery(f scope.Filter) (string, []any, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch f.Source {
	case scope.SourceOwn:
		if f.CoachID == "" {
			return "", nil, fmt.Errorf("%w: own source without coach", ErrInvalidFilter)
		}
		where = append(where, "a.coach_id = "+arg(f.CoachID))
	case scope.SourceHouse:
		where = append(where, "p.role = "+arg(string(types.RoleAdmin)))
	case scope.SourceSharedPool:
		where = append(where,
			"p.role <> "+arg(string(types.RoleAdmin)),
			"COALESCE(c.data_sharing_enabled, FALSE)")
	default:
		return "", nil, fmt.Errorf("%w: source %q", ErrInvalidFilter, f.Source)
	}

	if f.Gender != "" {
		where = append(where, "a.gender = "+arg(string(f.Gender)))
	}
	if f.Band != nil {
		// Coarse band prefilter. String masses pass through and the exact
		// band is decided by Filter.Admits after decoding.
		low := arg(f.Band.Low - bandSlack)
		high := arg(f.Band.Low + 5 + bandSlack)
		where = append(where, `CASE jsonb_typeof(e.metrics->'body_mass_kg')
	WHEN 'number' THEN (e.metrics->>'body_mass_kg')::numeric >= `+low+
			` AND (e.metrics->>'body_mass_kg')::numeric < `+high+`
	WHEN 'string' THEN TRUE
	ELSE FALSE END`)
	}

	q := `SELECT ` + eventColumns + `
FROM performance_events e
JOIN athletes a ON a.id = e.athlete_id
JOIN profiles p ON p.id = a.coach_id
LEFT JOIN coach_consents c ON c.coach_id = a.coach_id
WHERE ` + strings.Join(where, " AND ") + `
ORDER BY e.event_date, e.id`
	return q, args, nil
}

// ListPopulation implements Store.ListPopulation.
func (s *PostgresStore) ListPopulation(ctx context.Context, f scope.Filter) ([]model.Event, error) {
	defer observe(opListPopulation, time.Now())
	q, args, err := buildPopulationQuery(f)
	if err != nil {
		return nil, err
	}
	var rows []eventRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		metrics.RecordStoreError(opListPopulation)
		return nil, errors.Wrap(err, "list population")
	}
	events, err := toEvents(rows)
	if err != nil {
		return nil, err
	}
	return admitted(f, events), nil
}

// admitted keeps the events f admits, in order.
func admitted(f scope.Filter, events []model.Event) []model.Event {
	out := events[:0]
	for _, e := range events {
		if f.Admits(e) {
			out = append(out, e)
		}
	}
	return out
}

// GetAthlete implements Store.GetAthlete.
func (s *PostgresStore) GetAthlete(ctx context.Context, coachID, athleteID string) (model.Athlete, error) {
	defer observe(opGetAthlete, time.Now())
	var row struct {
		ID          string     `db:"id"`
		CoachID     string     `db:"coach_id"`
		Name        string     `db:"name"`
		Gender      string     `db:"gender"`
		DateOfBirth *time.Time `db:"date_of_birth"`
	}
	err := s.db.GetContext(ctx, &row,
		`SELECT id, coach_id, name, gender, date_of_birth FROM athletes WHERE id = $1 AND coach_id = $2`,
		athleteID, coachID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Athlete{}, errors.Wrapf(ErrNotFound, "athlete %s", athleteID)
	}
	if err != nil {
		metrics.RecordStoreError(opGetAthlete)
		return model.Athlete{}, errors.Wrap(err, "get athlete")
	}
	return model.Athlete{
		ID:          row.ID,
		CoachID:     row.CoachID,
		Name:        row.Name,
		Gender:      types.Gender(row.Gender),
		DateOfBirth: row.DateOfBirth,
	}, nil
}

// ListAthleteEvents implements Store.ListAthleteEvents.
func (s *PostgresStore) ListAthleteEvents(ctx context.Context, athleteID string) ([]model.Event, error) {
	defer observe(opListAthleteEvents, time.Now())
	var rows []eventRow
	err := s.db.SelectContext(ctx, &rows, `SELECT `+eventColumns+`
FROM performance_events e
JOIN athletes a ON a.id = e.athlete_id
WHERE e.athlete_id = $1
ORDER BY e.event_date DESC, e.id DESC`, athleteID)
	if err != nil {
		metrics.RecordStoreError(opListAthleteEvents)
		return nil, errors.Wrap(err, "list athlete events")
	}
	return toEvents(rows)
}

// GetEvent implements Store.GetEvent.
func (s *PostgresStore) GetEvent(ctx context.Context, athleteID, eventID string) (model.Event, error) {
	defer observe(opGetEvent, time.Now())
	var row eventRow
	err := s.db.GetContext(ctx, &row, `SELECT `+eventColumns+`
FROM performance_events e
JOIN athletes a ON a.id = e.athlete_id
WHERE e.id = $1 AND e.athlete_id = $2`, eventID, athleteID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, errors.Wrapf(ErrNotFound, "event %s", eventID)
	}
	if err != nil {
		metrics.RecordStoreError(opGetEvent)
		return model.Event{}, errors.Wrap(err, "get event")
	}
	return row.toModel()
}

// ListSessions implements Store.ListSessions.
func (s *PostgresStore) ListSessions(ctx context.Context, athleteID string, from, to time.Time) ([]model.Session, error) {
	defer observe(opListSessions, time.Now())
	var rows []struct {
		ID              string    `db:"id"`
		AthleteID       string    `db:"athlete_id"`
		SessionDate     time.Time `db:"session_date"`
		TrainingType    string    `db:"training_type"`
		DurationMinutes int       `db:"duration_minutes"`
		RPE             int       `db:"rpe"`
		SRPE            *int      `db:"srpe"`
	}
	err := s.db.SelectContext(ctx, &rows, `SELECT id, athlete_id, session_date, training_type, duration_minutes, rpe, srpe
FROM training_sessions
WHERE athlete_id = $1 AND session_date BETWEEN $2 AND $3
ORDER BY session_date, id`, athleteID, model.Day(from), model.Day(to))
	if err != nil {
		metrics.RecordStoreError(opListSessions)
		return nil, errors.Wrap(err, "list sessions")
	}
	out := make([]model.Session, len(rows))
	for i, r := range rows {
		out[i] = model.Session{
			ID:              r.ID,
			AthleteID:       r.AthleteID,
			SessionDate:     model.Day(r.SessionDate),
			TrainingType:    r.TrainingType,
			DurationMinutes: r.DurationMinutes,
			RPE:             r.RPE,
			SRPE:            r.SRPE,
		}
	}
	return out, nil
}

// Counts implements Store.Counts.
func (s *PostgresStore) Counts(ctx context.Context) (Counts, error) {
	defer observe(opCounts, time.Now())
	var c Counts
	err := s.db.GetContext(ctx, &c, `SELECT
	(SELECT count(*) FROM profiles) AS coaches,
	(SELECT count(*) FROM athletes) AS athletes,
	(SELECT count(*) FROM performance_events) AS events,
	(SELECT count(*) FROM training_sessions) AS sessions`)
	if err != nil {
		metrics.RecordStoreError(opCounts)
		return Counts{}, errors.Wrap(err, "count records")
	}
	publishCounts(c)
	return c, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, "close postgres")
	}
	return nil
}
