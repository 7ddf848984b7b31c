package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/domain/scope"
	"github.com/okian/ringside/internal/domain/types"
)

// MemStore is an in-memory Store. It is safe for concurrent use.
//
// Events carry the owning athlete's coach and gender; PutEvent copies them
// from the athlete so filters always see the current owner.
type MemStore struct {
	mu       sync.RWMutex
	closed   bool
	coaches  map[string]model.Coach
	athletes map[string]model.Athlete
	events   map[string]model.Event
	sessions map[string]model.Session
}

// NewMemStore constructs an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		coaches:  make(map[string]model.Coach),
		athletes: make(map[string]model.Athlete),
		events:   make(map[string]model.Event),
		sessions: make(map[string]model.Session),
	}
}

// PutCoach inserts or replaces a coach.
func (s *MemStore) PutCoach(c model.Coach) error {
	if c.ID == "" {
		return fmt.Errorf("%w: coach id required", ErrInvalidRecord)
	}
	if _, err := types.ParseRole(string(c.Role)); err != nil {
		return fmt.Errorf("%w: coach %s: %w", ErrInvalidRecord, c.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.coaches[c.ID] = c
	return nil
}

// PutAthlete inserts or replaces an athlete. Its coach must exist.
func (s *MemStore) PutAthlete(a model.Athlete) error {
	if a.ID == "" {
		return fmt.Errorf("%w: athlete id required", ErrInvalidRecord)
	}
	if _, err := types.ParseGender(string(a.Gender)); err != nil {
		return fmt.Errorf("%w: athlete %s: %w", ErrInvalidRecord, a.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if _, ok := s.coaches[a.CoachID]; !ok {
		return fmt.Errorf("%w: coach %s for athlete %s", ErrNotFound, a.CoachID, a.ID)
	}
	s.athletes[a.ID] = a
	return nil
}

// PutEvent inserts or replaces an event. Its athlete must exist.
func (s *MemStore) PutEvent(e model.Event) error {
	if e.ID == "" {
		return fmt.Errorf("%w: event id required", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	a, ok := s.athletes[e.AthleteID]
	if !ok {
		return fmt.Errorf("%w: athlete %s for event %s", ErrNotFound, e.AthleteID, e.ID)
	}
	e.CoachID = a.CoachID
	e.Gender = a.Gender
	if e.Metrics == nil {
		e.Metrics = model.Metrics{}
	}
	s.events[e.ID] = e
	return nil
}

// PutSession inserts or replaces a training session. Its athlete must exist.
func (s *MemStore) PutSession(ts model.Session) error {
	if ts.ID == "" {
		return fmt.Errorf("%w: session id required", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if _, ok := s.athletes[ts.AthleteID]; !ok {
		return fmt.Errorf("%w: athlete %s for session %s", ErrNotFound, ts.AthleteID, ts.ID)
	}
	s.sessions[ts.ID] = ts
	return nil
}

// Load inserts every record of a fixture, parents first.
func (s *MemStore) Load(f Fixture) error {
	for _, c := range f.Coaches {
		if err := s.PutCoach(c); err != nil {
			return err
		}
	}
	for _, a := range f.Athletes {
		if err := s.PutAthlete(a); err != nil {
			return err
		}
	}
	for _, e := range f.Events {
		if err := s.PutEvent(e); err != nil {
			return err
		}
	}
	for _, ts := range f.Sessions {
		if err := s.PutSession(ts); err != nil {
			return err
		}
	}
	return nil
}

// ListPopulation implements Store.ListPopulation.
func (s *MemStore) ListPopulation(ctx context.Context, f scope.Filter) ([]model.Event, error) {
	defer observe(opListPopulation, time.Now())
	if f.Source == scope.SourceOwn && f.CoachID == "" {
		return nil, fmt.Errorf("%w: own source without coach", ErrInvalidFilter)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	out := make([]model.Event, 0)
	for _, e := range s.events {
		if !s.inSource(f, e.CoachID) || !f.Admits(e) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[j].NewerThan(out[i]) })
	return out, nil
}

// inSource reports whether events of coachID belong to the filter's source.
func (s *MemStore) inSource(f scope.Filter, coachID string) bool {
	c, ok := s.coaches[coachID]
	if !ok {
		return false
	}
	switch f.Source {
	case scope.SourceOwn:
		return coachID == f.CoachID
	case scope.SourceHouse:
		return c.Role == types.RoleAdmin
	case scope.SourceSharedPool:
		return c.Role != types.RoleAdmin && c.DataSharingEnabled
	default:
		return false
	}
}

// GetAthlete implements Store.GetAthlete.
func (s *MemStore) GetAthlete(ctx context.Context, coachID, athleteID string) (model.Athlete, error) {
	defer observe(opGetAthlete, time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.Athlete{}, ErrStoreClosed
	}
	a, ok := s.athletes[athleteID]
	if !ok || a.CoachID != coachID {
		return model.Athlete{}, fmt.Errorf("%w: athlete %s", ErrNotFound, athleteID)
	}
	return a, nil
}

// ListAthleteEvents implements Store.ListAthleteEvents.
func (s *MemStore) ListAthleteEvents(ctx context.Context, athleteID string) ([]model.Event, error) {
	defer observe(opListAthleteEvents, time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	out := make([]model.Event, 0)
	for _, e := range s.events {
		if e.AthleteID == athleteID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NewerThan(out[j]) })
	return out, nil
}

// GetEvent implements Store.GetEvent.
func (s *MemStore) GetEvent(ctx context.Context, athleteID, eventID string) (model.Event, error) {
	defer observe(opGetEvent, time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.Event{}, ErrStoreClosed
	}
	e, ok := s.events[eventID]
	if !ok || e.AthleteID != athleteID {
		return model.Event{}, fmt.Errorf("%w: event %s", ErrNotFound, eventID)
	}
	return e, nil
}

// ListSessions implements Store.ListSessions.
func (s *MemStore) ListSessions(ctx context.Context, athleteID string, from, to time.Time) ([]model.Session, error) {
	defer observe(opListSessions, time.Now())
	from, to = model.Day(from), model.Day(to)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	out := make([]model.Session, 0)
	for _, ts := range s.sessions {
		if ts.AthleteID != athleteID {
			continue
		}
		d := model.Day(ts.SessionDate)
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SessionDate.Equal(out[j].SessionDate) {
			return out[i].SessionDate.Before(out[j].SessionDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Counts implements Store.Counts.
func (s *MemStore) Counts(ctx context.Context) (Counts, error) {
	defer observe(opCounts, time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Counts{}, ErrStoreClosed
	}
	c := Counts{
		Coaches:  len(s.coaches),
		Athletes: len(s.athletes),
		Events:   len(s.events),
		Sessions: len(s.sessions),
	}
	publishCounts(c)
	return c, nil
}

// Close marks the store closed. Subsequent calls return ErrStoreClosed.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
