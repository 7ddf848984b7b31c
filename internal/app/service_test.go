package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	service "github.com/okian/ringside/internal/app"
	"github.com/okian/ringside/internal/adapters/repository"
	"github.com/okian/ringside/internal/config"
	"github.com/okian/ringside/internal/domain/benchmark"
	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/domain/types"
	"github.com/okian/ringside/internal/seed"
	"github.com/okian/ringside/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var (
	now   = time.Date(2024, 6, 30, 10, 0, 0, 0, time.UTC)
	coach = types.Caller{CoachID: "c1", Role: types.RoleCoach}
)

func smallFixture() repository.Fixture {
	srpe := 400
	return repository.Fixture{
		Coaches:  []model.Coach{{ID: "c1", Role: types.RoleCoach}},
		Athletes: []model.Athlete{{ID: "a1", CoachID: "c1", Gender: types.GenderMale}},
		Events: []model.Event{
			{ID: "e1", AthleteID: "a1", EventDate: now.AddDate(0, 0, -7), Metrics: model.Metrics{"height_cm": 40.0}},
			{ID: "e2", AthleteID: "a1", EventDate: now, Metrics: model.Metrics{"height_cm": 44.0}},
		},
		Sessions: []model.Session{
			{ID: "s1", AthleteID: "a1", SessionDate: now, SRPE: &srpe},
		},
	}
}

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	fh, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fh.Close()
	if err := repository.WriteFixture(fh, smallFixture()); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.MaxLoadWindow(), ShouldEqual, 90)
		})
	})

	Convey("Given options built from config", t, func() {
		cfg := config.New()
		cfg.MaxLoadWindowDays = 56
		svc := service.New(service.FromConfig(cfg)...)

		Convey("Then the load window follows the config", func() {
			So(svc.MaxLoadWindow(), ShouldEqual, 56)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service over a fixture file", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithFixture(writeFixture(t)),
			service.WithClock(func() time.Time { return now }),
		)

		Convey("When calling it before Start", func() {
			_, err := svc.GetBenchmarks(ctx, coach, benchmark.Query{Metric: "height_cm"})

			Convey("Then it reports it is not started", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(svc.GetStats(ctx)["started"], ShouldEqual, false)
				So(svc.ListMetricDefinitions(), ShouldBeNil)
			})
		})

		Convey("When started", func() {
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then stats report the loaded records", func() {
				stats := svc.GetStats(ctx)
				So(stats["started"], ShouldEqual, true)
				So(stats["store"], ShouldEqual, config.StoreMemory)
				So(stats["athletes"], ShouldEqual, 1)
				So(stats["events"], ShouldEqual, 2)
				So(stats["sessions"], ShouldEqual, 1)
			})

			Convey("Then benchmarks are computed over the own cohort", func() {
				b, err := svc.GetBenchmarks(ctx, coach, benchmark.Query{Metric: "height_cm", Source: "own"})
				So(err, ShouldBeNil)
				So(b.Count, ShouldEqual, 2)
				So(*b.Mean, ShouldEqual, 42.0)
			})

			Convey("Then z-scores and metrics resolve for the athlete", func() {
				z, err := svc.GetZScore(ctx, coach, benchmark.ZScoreQuery{AthleteID: "a1", Metric: "height_cm", Source: "own"})
				So(err, ShouldBeNil)
				So(z.EventID, ShouldEqual, "e2")

				bulk, err := svc.GetZScoresBulk(ctx, coach, benchmark.ZScoreQuery{AthleteID: "a1", Metric: "height_cm", Source: "own"})
				So(err, ShouldBeNil)
				So(bulk, ShouldHaveLength, 2)

				keys, err := svc.ListAthleteMetrics(ctx, coach, "a1")
				So(err, ShouldBeNil)
				So(keys, ShouldResemble, []string{"height_cm"})
				defs := svc.ListMetricDefinitions()
				So(defs, ShouldNotBeEmpty)
				for _, d := range defs {
					So(d.Metadata, ShouldBeFalse)
				}
			})

			Convey("Then training load uses the injected clock", func() {
				a, err := svc.AnalyzeTrainingLoad(ctx, coach, "a1", 7)
				So(err, ShouldBeNil)
				So(a.EndDate, ShouldEqual, "2024-06-30")
				So(*a.WeeklyLoad, ShouldEqual, 400)
			})

			Convey("Then Start is idempotent", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})

		Convey("When stopped after starting", func() {
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()

			Convey("Then it is marked as stopped", func() {
				So(svc.GetStats(ctx)["started"], ShouldEqual, false)
				_, err := svc.AnalyzeTrainingLoad(ctx, coach, "a1", 7)
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service with a missing fixture", t, func() {
		svc := service.New(service.WithFixture(filepath.Join(t.TempDir(), "missing.yaml")))

		Convey("Then Start fails", func() {
			So(svc.Start(context.Background()), ShouldNotBeNil)
		})
	})
}

func TestService_Seeded(t *testing.T) {
	Convey("Given a service seeded with a generated dataset", t, func() {
		ctx := context.Background()
		cfg := seed.Config{Coaches: 2, AthletesPerCoach: 3, EventsPerAthlete: 2, SessionDays: 5, Seed: 3, Today: now}
		svc := service.New(service.WithSeed(cfg))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then the generated records are visible", func() {
			stats := svc.GetStats(ctx)
			So(stats["coaches"], ShouldEqual, 2)
			So(stats["athletes"], ShouldEqual, 6)
			So(stats["events"], ShouldEqual, 12)
		})
	})
}

func TestService_InjectedStore(t *testing.T) {
	Convey("Given a service over an injected store", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		So(store.Load(smallFixture()), ShouldBeNil)
		svc := service.New(service.WithStore(store))
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When the service stops", func() {
			svc.Stop()

			Convey("Then the store stays open", func() {
				_, err := store.Counts(ctx)
				So(err, ShouldBeNil)
			})
		})
	})
}
