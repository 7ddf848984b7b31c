package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func familyNames(t *testing.T, g prometheus.Gatherer) map[string]bool {
	t.Helper()
	mfs, err := g.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := make(map[string]bool, len(mfs))
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	return names
}

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			So(m, ShouldNotBeNil)
			So(m.namespace, ShouldEqual, "test")
			So(m.subsystem, ShouldEqual, "unit")
			So(m.histogramBuckets, ShouldResemble, []float64{1, 5, 10})

			Convey("Then unlabelled series should be exported under the namespace", func() {
				m.zscoresComputed.Inc()
				m.populationSize.Observe(3)
				names := familyNames(t, registry)
				So(names["test_unit_zscores_computed_total"], ShouldBeTrue)
				So(names["test_unit_population_size"], ShouldBeTrue)
			})
		})

		Convey("When empty options are given", func() {
			m := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)
			Convey("Then defaults should be kept", func() {
				So(m.namespace, ShouldEqual, "ringside")
				So(m.subsystem, ShouldEqual, "analysis")
				So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording engine metrics", func() {
			So(func() {
				RecordBenchmark("cohort", "own", "ok", 5)
				RecordBenchmark("mass_band", "boxing_science", "unavailable", 0)
				RecordZScore(true)
				RecordZScore(false)
				RecordTrainingLoadAnalysis("optimal")
				RecordTrainingLoadAnalysis("")
				RecordComputeLatency("benchmark", 1.5)
			}, ShouldNotPanic)
		})

		Convey("When recording store and HTTP metrics", func() {
			So(func() {
				RecordStoreQueryLatency("list_population", 2)
				RecordStoreError("get_athlete")
				UpdateStoreRecords("events", 10)
				RecordHTTPRequest("/analysis/benchmarks", "GET", "200")
				RecordHTTPRequestDuration("/analysis/benchmarks", "GET", "200", 3)
				RecordErrorByEndpoint("/analysis/benchmarks", "GET", "bad_request")
				RecordRateLimited("/analysis/benchmarks")
			}, ShouldNotPanic)
		})

		Convey("When recording system metrics", func() {
			So(func() {
				UpdateSystemMemoryUsage(1024 * 1024)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.5)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry should expose the series", func() {
			RecordBenchmark("cohort", "own", "ok", 1)
			RecordTrainingLoadAnalysis("caution")
			names := familyNames(t, GetRegistry())
			So(names["ringside_analysis_benchmarks_computed_total"], ShouldBeTrue)
			So(names["ringside_analysis_training_load_analyses_total"], ShouldBeTrue)
			So(names["ringside_analysis_population_size"], ShouldBeTrue)
		})
	})
}
