package benchmark

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/ringside/internal/domain/metric"
	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/domain/scope"
	"github.com/okian/ringside/internal/domain/scoring"
	"github.com/okian/ringside/internal/domain/stats"
	"github.com/okian/ringside/internal/domain/types"
	"github.com/okian/ringside/pkg/logger"
	"github.com/okian/ringside/pkg/metrics"
)

// Store is the data the benchmark service reads.
type Store interface {
	ListPopulation(ctx context.Context, f scope.Filter) ([]model.Event, error)
	GetAthlete(ctx context.Context, coachID, athleteID string) (model.Athlete, error)
	ListAthleteEvents(ctx context.Context, athleteID string) ([]model.Event, error)
	GetEvent(ctx context.Context, athleteID, eventID string) (model.Event, error)
}

// Service computes benchmarks and z-scores. It holds no mutable state and is
// safe for concurrent use.
type Service struct {
	store  Store
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService constructs a benchmark service over store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// GetBenchmarks summarizes q.Metric over the population selected by q.
func (s *Service) GetBenchmarks(ctx context.Context, caller types.Caller, q Query) (Benchmark, error) {
	defer observe("benchmark", time.Now())
	if q.Metric == "" {
		return Benchmark{}, ErrMetricRequired
	}

	src := scope.ResolveSource(q.Source, caller)
	var sc scope.Scope
	switch q.Group {
	case scope.GroupGender:
		sc = scope.ByGender(src, q.Gender)
	case scope.GroupMassBand:
		sc = scope.Scope{Source: src, Group: scope.GroupMassBand}
		switch {
		case q.MassBand != nil:
			sc = scope.ByMassBand(src, *q.MassBand)
		case q.BodyMass != nil && model.ValidBodyMass(*q.BodyMass):
			sc = scope.ByMassBand(src, scope.MassBandFor(*q.BodyMass))
		}
	case scope.GroupCohort, "":
		sc = scope.Cohort(src)
	default:
		return Benchmark{}, fmt.Errorf("%w: %q", scope.ErrInvalidReferenceGroup, q.Group)
	}
	if err := sc.Validate(); err != nil {
		return Benchmark{}, err
	}
	return s.benchmark(ctx, caller, q.Metric, sc)
}

// GetZScore standardizes one of the athlete's values. Without an event id the
// latest event carrying the metric is used. The athlete's own record is part
// of its reference population.
func (s *Service) GetZScore(ctx context.Context, caller types.Caller, q ZScoreQuery) (ZScoreResult, error) {
	defer observe("zscore", time.Now())
	if err := validateZScoreQuery(q); err != nil {
		return ZScoreResult{}, err
	}

	athlete, err := s.store.GetAthlete(ctx, caller.CoachID, q.AthleteID)
	if err != nil {
		return ZScoreResult{}, err
	}

	event, value, err := s.subjectEvent(ctx, q)
	if err != nil {
		return ZScoreResult{}, err
	}

	sc := eventScope(scope.ResolveSource(q.Source, caller), q.Group, athlete, event)
	if err := sc.Validate(); err != nil {
		return ZScoreResult{}, err
	}
	b, err := s.benchmark(ctx, caller, q.Metric, sc)
	if err != nil {
		return ZScoreResult{}, err
	}
	return standardize(event, q.Metric, value, b), nil
}

// GetZScoresBulk standardizes every athlete event carrying the metric.
// The population is fetched once and each distinct benchmark is computed
// once, then reused across events. Results are keyed by event id.
func (s *Service) GetZScoresBulk(ctx context.Context, caller types.Caller, q ZScoreQuery) (map[string]ZScoreResult, error) {
	defer observe("zscores_bulk", time.Now())
	q.EventID = ""
	if err := validateZScoreQuery(q); err != nil {
		return nil, err
	}

	athlete, err := s.store.GetAthlete(ctx, caller.CoachID, q.AthleteID)
	if err != nil {
		return nil, err
	}
	events, err := s.store.ListAthleteEvents(ctx, q.AthleteID)
	if err != nil {
		return nil, err
	}

	src := scope.ResolveSource(q.Source, caller)
	type subject struct {
		event model.Event
		value float64
		scope scope.Scope
	}
	subjects := make([]subject, 0, len(events))
	resolvable := false
	for _, e := range events {
		v, ok := e.Metrics.Lookup(q.Metric)
		if !ok {
			continue
		}
		sc := eventScope(src, q.Group, athlete, e)
		if err := sc.Validate(); err != nil {
			return nil, err
		}
		resolvable = resolvable || sc.Resolved()
		subjects = append(subjects, subject{event: e, value: v, scope: sc})
	}

	out := make(map[string]ZScoreResult, len(subjects))
	if len(subjects) == 0 {
		return out, nil
	}

	var population []model.Event
	if resolvable {
		// Band restrictions differ per event; fetch without them and let
		// each benchmark apply its own band.
		f := subjects[0].scope.Filter(caller).WithoutBand()
		population, err = s.store.ListPopulation(ctx, f)
		if err != nil {
			return nil, err
		}
	}

	benchmarks := make(map[string]Benchmark)
	for _, sub := range subjects {
		label := sub.scope.Label()
		b, ok := benchmarks[label]
		if !ok {
			if sub.scope.Resolved() {
				b = compute(q.Metric, sub.scope, sub.scope.Filter(caller), population)
			} else {
				b = unavailable(q.Metric, sub.scope)
			}
			s.record(ctx, b)
			benchmarks[label] = b
		}
		out[sub.event.ID] = standardize(sub.event, q.Metric, sub.value, b)
	}

	s.logger.Debug(ctx, "bulk z-scores computed",
		logger.String("athleteID", q.AthleteID),
		logger.String("metric", q.Metric),
		logger.Int("events", len(out)),
		logger.Int("benchmarks", len(benchmarks)),
		logger.Int("population", len(population)),
	)
	return out, nil
}

// ListAthleteMetrics returns the benchmarkable metric keys recorded for the
// athlete, sorted.
func (s *Service) ListAthleteMetrics(ctx context.Context, caller types.Caller, athleteID string) ([]string, error) {
	if athleteID == "" {
		return nil, ErrAthleteRequired
	}
	if _, err := s.store.GetAthlete(ctx, caller.CoachID, athleteID); err != nil {
		return nil, err
	}
	events, err := s.store.ListAthleteEvents(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range events {
		for k := range e.Metrics {
			if e.Metrics.Has(k) {
				keys = append(keys, k)
			}
		}
	}
	return metric.Keys(keys), nil
}

// ListMetricDefinitions returns the registry's benchmarkable metrics.
func (s *Service) ListMetricDefinitions() []metric.Definition {
	return metric.Benchmarkable()
}

// benchmark fetches the population for sc and summarizes it.
func (s *Service) benchmark(ctx context.Context, caller types.Caller, metricKey string, sc scope.Scope) (Benchmark, error) {
	if !sc.Resolved() {
		b := unavailable(metricKey, sc)
		s.logger.Warn(ctx, "benchmark unavailable: no body mass for mass band",
			logger.String("metric", metricKey),
			logger.String("source", string(sc.Source)),
		)
		s.record(ctx, b)
		return b, nil
	}

	f := sc.Filter(caller)
	population, err := s.store.ListPopulation(ctx, f)
	if err != nil {
		return Benchmark{}, err
	}
	b := compute(metricKey, sc, f, population)
	s.record(ctx, b)
	return b, nil
}

// subjectEvent loads the event holding the value to standardize.
func (s *Service) subjectEvent(ctx context.Context, q ZScoreQuery) (model.Event, float64, error) {
	if q.EventID != "" {
		e, err := s.store.GetEvent(ctx, q.AthleteID, q.EventID)
		if err != nil {
			return model.Event{}, 0, err
		}
		v, ok := e.Metrics.Lookup(q.Metric)
		if !ok {
			return model.Event{}, 0, fmt.Errorf("%w: metric %s not recorded in event %s", ErrNotFound, q.Metric, q.EventID)
		}
		return e, v, nil
	}

	events, err := s.store.ListAthleteEvents(ctx, q.AthleteID)
	if err != nil {
		return model.Event{}, 0, err
	}
	for _, e := range events {
		if v, ok := e.Metrics.Lookup(q.Metric); ok {
			return e, v, nil
		}
	}
	return model.Event{}, 0, fmt.Errorf("%w: athlete %s has no %s event", ErrNotFound, q.AthleteID, q.Metric)
}

func (s *Service) record(ctx context.Context, b Benchmark) {
	metrics.RecordBenchmark(b.ReferenceGroup, string(b.Source), string(b.Status), b.Count)
	s.logger.Debug(ctx, "benchmark computed",
		logger.String("metric", b.Metric),
		logger.String("referenceGroup", b.ReferenceGroup),
		logger.String("source", string(b.Source)),
		logger.String("status", string(b.Status)),
		logger.Int("count", b.Count),
	)
}

// eventScope builds the reference scope for one of the athlete's events:
// gender from the athlete, mass band from the event's body mass.
func eventScope(src scope.Source, group scope.ReferenceGroup, athlete model.Athlete, e model.Event) scope.Scope {
	switch group {
	case scope.GroupGender:
		return scope.ByGender(src, athlete.Gender)
	case scope.GroupMassBand:
		if mass, ok := e.BodyMass(); ok {
			return scope.ByMassBand(src, scope.MassBandFor(mass))
		}
		return scope.Scope{Source: src, Group: scope.GroupMassBand}
	default:
		return scope.Cohort(src)
	}
}

func standardize(e model.Event, metricKey string, value float64, b Benchmark) ZScoreResult {
	z := scoring.Against(value, b.Summary)
	metrics.RecordZScore(z != nil)
	return ZScoreResult{
		AthleteID: e.AthleteID,
		EventID:   e.ID,
		EventDate: e.EventDate,
		Metric:    metricKey,
		Value:     stats.Round(value),
		ZScore:    z,
		Benchmark: b,
	}
}

func validateZScoreQuery(q ZScoreQuery) error {
	if q.AthleteID == "" {
		return ErrAthleteRequired
	}
	if q.Metric == "" {
		return ErrMetricRequired
	}
	switch q.Group {
	case "", scope.GroupCohort, scope.GroupGender, scope.GroupMassBand:
		return nil
	default:
		return fmt.Errorf("%w: %q", scope.ErrInvalidReferenceGroup, q.Group)
	}
}

func observe(op string, start time.Time) {
	metrics.RecordComputeLatency(op, float64(time.Since(start).Microseconds())/1000)
}
