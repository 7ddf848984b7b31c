package benchmark_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/ringside/internal/adapters/repository"
	"github.com/okian/ringside/internal/domain/benchmark"
	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/domain/scope"
	"github.com/okian/ringside/internal/domain/types"
	"github.com/okian/ringside/pkg/logger"
)

var (
	coach = types.Caller{CoachID: "c1", Role: types.RoleCoach}
	admin = types.Caller{CoachID: "adm", Role: types.RoleAdmin}
)

func date(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func fixture() repository.Fixture {
	return repository.Fixture{
		Coaches: []model.Coach{
			{ID: "c1", Role: types.RoleCoach},
			{ID: "adm", Role: types.RoleAdmin},
			{ID: "s1", Role: types.RoleCoach, DataSharingEnabled: true},
		},
		Athletes: []model.Athlete{
			{ID: "sub", CoachID: "c1", Gender: types.GenderMale},
			{ID: "other", CoachID: "c1", Gender: types.GenderFemale},
			{ID: "empty", CoachID: "c1", Gender: types.GenderMale},
			{ID: "h1", CoachID: "adm", Gender: types.GenderMale},
			{ID: "sp1", CoachID: "s1", Gender: types.GenderFemale},
		},
		Events: []model.Event{
			{ID: "ev1", AthleteID: "sub", EventDate: date(1), Metrics: model.Metrics{"height_cm": 40.0, "body_mass_kg": 72.3}},
			{ID: "ev2", AthleteID: "sub", EventDate: date(8), Metrics: model.Metrics{"height_cm": 42.5, "body_mass_kg": 74.0}},
			{ID: "ev3", AthleteID: "sub", EventDate: date(15), Metrics: model.Metrics{"height_cm": 45.0, "body_mass_kg": 75.0}},
			{ID: "ev4", AthleteID: "sub", EventDate: date(22), Metrics: model.Metrics{"height_cm": 45.0}},
			{ID: "ev5", AthleteID: "sub", EventDate: date(29), Metrics: model.Metrics{"height_cm": 50.0, "body_mass_kg": 76.1, "test_type": "CMJ"}},
			{ID: "ev6", AthleteID: "sub", EventDate: date(30), Metrics: model.Metrics{"rsi": 2.1}},
			{ID: "ov1", AthleteID: "other", EventDate: date(3), Metrics: model.Metrics{"height_cm": 30.0, "body_mass_kg": 70.0}},
			{ID: "ov2", AthleteID: "other", EventDate: date(10), Metrics: model.Metrics{"height_cm": 33.0, "body_mass_kg": 61.0}},
			{ID: "hv1", AthleteID: "h1", EventDate: date(2), Metrics: model.Metrics{"height_cm": 60.0}},
			{ID: "hv2", AthleteID: "h1", EventDate: date(4), Metrics: model.Metrics{"height_cm": 60.0}},
			{ID: "sv1", AthleteID: "sp1", EventDate: date(5), Metrics: model.Metrics{"height_cm": 55.0}},
		},
	}
}

func newService(t *testing.T) (*benchmark.Service, *repository.MemStore) {
	t.Helper()
	store := repository.NewMemStore()
	if err := store.Load(fixture()); err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return benchmark.NewService(store, benchmark.WithLogger(logger.New(logger.WithWriter(io.Discard)))), store
}

// countingStore counts population fetches made through it.
type countingStore struct {
	benchmark.Store
	populationCalls int
}

func (c *countingStore) ListPopulation(ctx context.Context, f scope.Filter) ([]model.Event, error) {
	c.populationCalls++
	return c.Store.ListPopulation(ctx, f)
}

func val(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func TestGetBenchmarks(t *testing.T) {
	Convey("Given a populated store", t, func() {
		ctx := context.Background()
		svc, store := newService(t)

		Convey("When benchmarking the male population of the caller", func() {
			b, err := svc.GetBenchmarks(ctx, coach, benchmark.Query{
				Metric: "height_cm",
				Group:  scope.GroupGender,
				Gender: types.GenderMale,
				Source: scope.SourceOwn,
			})
			So(err, ShouldBeNil)

			Convey("Then the summary should follow the sample formulas", func() {
				So(b.Status, ShouldEqual, benchmark.StatusOK)
				So(b.ReferenceGroup, ShouldEqual, "gender:male")
				So(b.Source, ShouldEqual, scope.SourceOwn)
				So(b.Count, ShouldEqual, 5)
				So(val(b.Mean), ShouldEqual, 44.5)
				So(val(b.Mode), ShouldEqual, 45.0)
				So(val(b.StdDev), ShouldEqual, 3.71)
				So(val(b.CILower), ShouldEqual, 41.25)
				So(val(b.CIUpper), ShouldEqual, 47.75)
			})
		})

		Convey("When the caller's role picks the source", func() {
			b, err := svc.GetBenchmarks(ctx, coach, benchmark.Query{Metric: "height_cm"})
			So(err, ShouldBeNil)
			So(b.Source, ShouldEqual, scope.SourceHouse)
			So(b.Count, ShouldEqual, 2)
			So(val(b.Mean), ShouldEqual, 60.0)

			b, err = svc.GetBenchmarks(ctx, admin, benchmark.Query{Metric: "height_cm"})
			So(err, ShouldBeNil)
			So(b.Source, ShouldEqual, scope.SourceOwn)
			So(b.Count, ShouldEqual, 2)
		})

		Convey("When an explicit source is given it should win over the role", func() {
			b, err := svc.GetBenchmarks(ctx, admin, benchmark.Query{Metric: "height_cm", Source: scope.SourceSharedPool})
			So(err, ShouldBeNil)
			So(b.Source, ShouldEqual, scope.SourceSharedPool)
			So(b.Count, ShouldEqual, 1)
			So(val(b.Mean), ShouldEqual, 55.0)
			So(b.StdDev, ShouldBeNil)
			So(b.CILower, ShouldBeNil)
			So(b.CIUpper, ShouldBeNil)
			So(b.Mode, ShouldBeNil)
		})

		Convey("When the band comes from a mass band or a body mass", func() {
			band := scope.MassBand{Low: 70}
			byBand, err := svc.GetBenchmarks(ctx, coach, benchmark.Query{
				Metric: "height_cm", Group: scope.GroupMassBand, MassBand: &band, Source: scope.SourceOwn,
			})
			So(err, ShouldBeNil)
			So(byBand.ReferenceGroup, ShouldEqual, "mass_band:70-74.9")
			So(byBand.Count, ShouldEqual, 3)

			mass := 72.3
			byMass, err := svc.GetBenchmarks(ctx, coach, benchmark.Query{
				Metric: "height_cm", Group: scope.GroupMassBand, BodyMass: &mass, Source: scope.SourceOwn,
			})
			So(err, ShouldBeNil)
			So(cmp.Diff(byBand, byMass), ShouldBeEmpty)
		})

		Convey("When the body mass is outside the registry range", func() {
			mass := 1e19
			b, err := svc.GetBenchmarks(ctx, coach, benchmark.Query{
				Metric: "height_cm", Group: scope.GroupMassBand, BodyMass: &mass, Source: scope.SourceOwn,
			})
			So(err, ShouldBeNil)
			So(b.Status, ShouldEqual, benchmark.StatusUnavailable)
			So(b.ReferenceGroup, ShouldEqual, "mass_band")
		})

		Convey("When the mass band cannot be resolved", func() {
			b, err := svc.GetBenchmarks(ctx, coach, benchmark.Query{Metric: "height_cm", Group: scope.GroupMassBand})
			So(err, ShouldBeNil)
			So(b.Status, ShouldEqual, benchmark.StatusUnavailable)
			So(b.ReferenceGroup, ShouldEqual, "mass_band")
			So(b.Count, ShouldEqual, 0)
			So(b.Mean, ShouldBeNil)
		})

		Convey("When no record carries the metric", func() {
			b, err := svc.GetBenchmarks(ctx, coach, benchmark.Query{Metric: "eur_cm", Source: scope.SourceOwn})
			So(err, ShouldBeNil)
			So(b.Status, ShouldEqual, benchmark.StatusInsufficientData)
			So(b.Count, ShouldEqual, 0)

			raw, err := json.Marshal(b)
			So(err, ShouldBeNil)
			for _, field := range []string{`"mean":null`, `"mode":null`, `"std_dev":null`, `"ci_lower":null`, `"ci_upper":null`, `"count":0`} {
				So(string(raw), ShouldContainSubstring, field)
			}
		})

		Convey("When the whole population has the same value", func() {
			b, err := svc.GetBenchmarks(ctx, admin, benchmark.Query{Metric: "height_cm"})
			So(err, ShouldBeNil)
			So(val(b.StdDev), ShouldEqual, 0.0)
			So(val(b.CILower), ShouldEqual, 60.0)
			So(val(b.CIUpper), ShouldEqual, 60.0)
		})

		Convey("When called twice on unchanged data", func() {
			q := benchmark.Query{Metric: "height_cm", Source: scope.SourceOwn}
			first, err := svc.GetBenchmarks(ctx, coach, q)
			So(err, ShouldBeNil)
			second, err := svc.GetBenchmarks(ctx, coach, q)
			So(err, ShouldBeNil)

			a, _ := json.Marshal(first)
			b, _ := json.Marshal(second)
			So(string(a), ShouldEqual, string(b))
		})

		Convey("When parameters are invalid", func() {
			_, err := svc.GetBenchmarks(ctx, coach, benchmark.Query{})
			So(errors.Is(err, benchmark.ErrMetricRequired), ShouldBeTrue)

			_, err = svc.GetBenchmarks(ctx, coach, benchmark.Query{Metric: "height_cm", Group: scope.GroupGender})
			So(errors.Is(err, scope.ErrGenderRequired), ShouldBeTrue)

			_, err = svc.GetBenchmarks(ctx, coach, benchmark.Query{Metric: "height_cm", Group: "age"})
			So(errors.Is(err, scope.ErrInvalidReferenceGroup), ShouldBeTrue)
		})

		Convey("When the store fails the error should propagate", func() {
			So(store.Close(), ShouldBeNil)
			_, err := svc.GetBenchmarks(ctx, coach, benchmark.Query{Metric: "height_cm"})
			So(errors.Is(err, repository.ErrStoreClosed), ShouldBeTrue)
		})
	})
}

func TestGetZScore(t *testing.T) {
	Convey("Given a populated store", t, func() {
		ctx := context.Background()
		svc, _ := newService(t)

		Convey("When standardizing a pinned event against its gender", func() {
			r, err := svc.GetZScore(ctx, coach, benchmark.ZScoreQuery{
				AthleteID: "sub", Metric: "height_cm", EventID: "ev3",
				Group: scope.GroupGender, Source: scope.SourceOwn,
			})
			So(err, ShouldBeNil)
			So(r.EventID, ShouldEqual, "ev3")
			So(r.Value, ShouldEqual, 45.0)
			So(val(r.ZScore), ShouldEqual, 0.13)
			So(r.Benchmark.Count, ShouldEqual, 5)
			So(r.Benchmark.ReferenceGroup, ShouldEqual, "gender:male")
		})

		Convey("When no event is pinned the latest event with the metric is used", func() {
			r, err := svc.GetZScore(ctx, coach, benchmark.ZScoreQuery{
				AthleteID: "sub", Metric: "height_cm", Group: scope.GroupGender, Source: scope.SourceOwn,
			})
			So(err, ShouldBeNil)
			So(r.EventID, ShouldEqual, "ev5")
			So(r.Value, ShouldEqual, 50.0)
		})

		Convey("When the value equals the mean", func() {
			r, err := svc.GetZScore(ctx, admin, benchmark.ZScoreQuery{AthleteID: "h1", Metric: "height_cm"})
			So(err, ShouldBeNil)
			// zero variance
			So(r.ZScore, ShouldBeNil)
			So(r.Benchmark.Status, ShouldEqual, benchmark.StatusOK)
		})

		Convey("When the event has no body mass for a mass band", func() {
			r, err := svc.GetZScore(ctx, coach, benchmark.ZScoreQuery{
				AthleteID: "sub", Metric: "height_cm", EventID: "ev4", Group: scope.GroupMassBand, Source: scope.SourceOwn,
			})
			So(err, ShouldBeNil)
			So(r.Benchmark.Status, ShouldEqual, benchmark.StatusUnavailable)
			So(r.ZScore, ShouldBeNil)
			So(r.Value, ShouldEqual, 45.0)
		})

		Convey("When the subject cannot be found", func() {
			_, err := svc.GetZScore(ctx, admin, benchmark.ZScoreQuery{AthleteID: "sub", Metric: "height_cm"})
			So(errors.Is(err, benchmark.ErrNotFound), ShouldBeTrue)

			_, err = svc.GetZScore(ctx, coach, benchmark.ZScoreQuery{AthleteID: "sub", Metric: "height_cm", EventID: "ov1"})
			So(errors.Is(err, benchmark.ErrNotFound), ShouldBeTrue)

			_, err = svc.GetZScore(ctx, coach, benchmark.ZScoreQuery{AthleteID: "sub", Metric: "height_cm", EventID: "ev6"})
			So(errors.Is(err, benchmark.ErrNotFound), ShouldBeTrue)

			_, err = svc.GetZScore(ctx, coach, benchmark.ZScoreQuery{AthleteID: "empty", Metric: "height_cm"})
			So(errors.Is(err, benchmark.ErrNotFound), ShouldBeTrue)
		})

		Convey("When parameters are missing", func() {
			_, err := svc.GetZScore(ctx, coach, benchmark.ZScoreQuery{Metric: "height_cm"})
			So(errors.Is(err, benchmark.ErrAthleteRequired), ShouldBeTrue)
			_, err = svc.GetZScore(ctx, coach, benchmark.ZScoreQuery{AthleteID: "sub"})
			So(errors.Is(err, benchmark.ErrMetricRequired), ShouldBeTrue)
		})
	})
}

func TestGetZScoresBulk(t *testing.T) {
	Convey("Given an athlete with five qualifying events", t, func() {
		ctx := context.Background()
		svc, _ := newService(t)

		for _, group := range []scope.ReferenceGroup{scope.GroupCohort, scope.GroupGender, scope.GroupMassBand} {
			group := group
			Convey("When computing bulk z-scores for the "+string(group)+" group", func() {
				q := benchmark.ZScoreQuery{AthleteID: "sub", Metric: "height_cm", Group: group, Source: scope.SourceOwn}
				bulk, err := svc.GetZScoresBulk(ctx, coach, q)
				So(err, ShouldBeNil)
				So(len(bulk), ShouldEqual, 5)
				_, hasRSIOnly := bulk["ev6"]
				So(hasRSIOnly, ShouldBeFalse)

				Convey("Then each result should equal the single-event result", func() {
					for id, got := range bulk {
						q.EventID = id
						single, err := svc.GetZScore(ctx, coach, q)
						So(err, ShouldBeNil)
						So(cmp.Diff(single, got), ShouldBeEmpty)
					}
				})
			})
		}

		Convey("When counting population fetches", func() {
			_, store := newService(t)
			counter := &countingStore{Store: store}
			counted := benchmark.NewService(counter, benchmark.WithLogger(logger.New(logger.WithWriter(io.Discard))))

			Convey("Then each bulk call fetches the population exactly once", func() {
				for _, group := range []scope.ReferenceGroup{scope.GroupCohort, scope.GroupGender, scope.GroupMassBand} {
					counter.populationCalls = 0
					bulk, err := counted.GetZScoresBulk(ctx, coach, benchmark.ZScoreQuery{
						AthleteID: "sub", Metric: "height_cm", Group: group, Source: scope.SourceOwn,
					})
					So(err, ShouldBeNil)
					So(bulk, ShouldHaveLength, 5)
					So(counter.populationCalls, ShouldEqual, 1)
				}
			})
		})

		Convey("When computing mass-band z-scores", func() {
			bulk, err := svc.GetZScoresBulk(ctx, coach, benchmark.ZScoreQuery{
				AthleteID: "sub", Metric: "height_cm", Group: scope.GroupMassBand, Source: scope.SourceOwn,
			})
			So(err, ShouldBeNil)
			So(bulk["ev1"].Benchmark.ReferenceGroup, ShouldEqual, "mass_band:70-74.9")
			So(bulk["ev1"].Benchmark.Count, ShouldEqual, 3)
			So(bulk["ev3"].Benchmark.ReferenceGroup, ShouldEqual, "mass_band:75-79.9")
			So(bulk["ev4"].Benchmark.Status, ShouldEqual, benchmark.StatusUnavailable)
			So(bulk["ev4"].ZScore, ShouldBeNil)
		})

		Convey("When the athlete has no event with the metric", func() {
			bulk, err := svc.GetZScoresBulk(ctx, coach, benchmark.ZScoreQuery{AthleteID: "empty", Metric: "height_cm"})
			So(err, ShouldBeNil)
			So(bulk, ShouldBeEmpty)
		})

		Convey("When the athlete belongs to another coach", func() {
			_, err := svc.GetZScoresBulk(ctx, admin, benchmark.ZScoreQuery{AthleteID: "sub", Metric: "height_cm"})
			So(errors.Is(err, benchmark.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestListings(t *testing.T) {
	Convey("Given a populated store", t, func() {
		ctx := context.Background()
		svc, _ := newService(t)

		Convey("When listing an athlete's metrics", func() {
			keys, err := svc.ListAthleteMetrics(ctx, coach, "sub")
			So(err, ShouldBeNil)
			So(keys, ShouldResemble, []string{"height_cm", "rsi"})

			keys, err = svc.ListAthleteMetrics(ctx, coach, "empty")
			So(err, ShouldBeNil)
			So(keys, ShouldBeEmpty)

			_, err = svc.ListAthleteMetrics(ctx, admin, "sub")
			So(errors.Is(err, benchmark.ErrNotFound), ShouldBeTrue)
		})

		Convey("When listing metric definitions", func() {
			defs := svc.ListMetricDefinitions()
			So(len(defs), ShouldEqual, 6)
			for _, d := range defs {
				So(d.Metadata, ShouldBeFalse)
			}
		})
	})
}
