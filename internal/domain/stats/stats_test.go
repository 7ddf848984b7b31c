package stats_test

import (
	"math"
	"testing"

	"github.com/okian/ringside/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSummarize(t *testing.T) {
	Convey("Given an empty sample", t, func() {
		s := stats.Summarize(nil)

		Convey("Then every statistic should be nil", func() {
			So(s.Count, ShouldEqual, 0)
			So(s.Empty(), ShouldBeTrue)
			So(s.Mean, ShouldBeNil)
			So(s.Mode, ShouldBeNil)
			So(s.StdDev, ShouldBeNil)
			So(s.CILower, ShouldBeNil)
			So(s.CIUpper, ShouldBeNil)
		})
	})

	Convey("Given a single value", t, func() {
		s := stats.Summarize([]float64{42})

		Convey("Then mean should be defined", func() {
			So(s.Count, ShouldEqual, 1)
			So(*s.Mean, ShouldEqual, 42.0)
		})

		Convey("And dispersion should be undefined rather than zero", func() {
			So(s.StdDev, ShouldBeNil)
			So(s.CILower, ShouldBeNil)
			So(s.CIUpper, ShouldBeNil)
		})

		Convey("And mode should be nil because nothing repeats", func() {
			So(s.Mode, ShouldBeNil)
		})
	})

	Convey("Given the jump height population", t, func() {
		s := stats.Summarize([]float64{40.0, 42.5, 45.0, 45.0, 50.0})

		Convey("Then the summary should match hand-computed values", func() {
			So(s.Count, ShouldEqual, 5)
			So(*s.Mean, ShouldEqual, 44.5)
			So(*s.Mode, ShouldEqual, 45.0)
			// sqrt(55/4) = 3.7081
			So(*s.StdDev, ShouldEqual, 3.71)
			// 44.5 -/+ 1.96 * 3.7081 / sqrt(5)
			So(*s.CILower, ShouldEqual, 41.25)
			So(*s.CIUpper, ShouldEqual, 47.75)
		})
	})

	Convey("Given identical values", t, func() {
		s := stats.Summarize([]float64{5, 5, 5, 5})

		Convey("Then std_dev should be a true zero and the CI collapses on the mean", func() {
			So(*s.StdDev, ShouldEqual, 0.0)
			So(*s.CILower, ShouldEqual, 5.0)
			So(*s.CIUpper, ShouldEqual, 5.0)
			So(*s.Mode, ShouldEqual, 5.0)
		})
	})

	Convey("Given samples of every size from 1 to 10", t, func() {
		Convey("Then std_dev and CI are nil exactly when count < 2", func() {
			for n := 1; n <= 10; n++ {
				values := make([]float64, n)
				for i := range values {
					values[i] = float64(i) * 1.5
				}
				s := stats.Summarize(values)
				So(s.StdDev == nil, ShouldEqual, n < 2)
				So(s.CILower == nil, ShouldEqual, n < 2)
				So(s.CIUpper == nil, ShouldEqual, n < 2)
			}
		})
	})

	Convey("Given values needing rounding", t, func() {
		s := stats.Summarize([]float64{1.111, 2.222, 3.333})

		Convey("Then the mean should be rounded to two decimals", func() {
			So(*s.Mean, ShouldEqual, 2.22)
		})
	})
}

func TestMode(t *testing.T) {
	Convey("Given samples for mode", t, func() {
		Convey("When all values are distinct", func() {
			So(stats.Mode([]float64{1, 2, 3, 4.5}), ShouldBeNil)
		})

		Convey("When one value repeats most", func() {
			So(*stats.Mode([]float64{1, 2, 2, 3, 3, 3, 4}), ShouldEqual, 3.0)
		})

		Convey("When two values tie", func() {
			So(*stats.Mode([]float64{2, 2, 1, 1}), ShouldEqual, 1.0)
		})

		Convey("When the tie includes negatives", func() {
			So(*stats.Mode([]float64{3, -1, 3, -1, 7}), ShouldEqual, -1.0)
		})

		Convey("When the sample is empty", func() {
			So(stats.Mode(nil), ShouldBeNil)
		})
	})
}

func TestHelpers(t *testing.T) {
	Convey("Given helper functions", t, func() {
		Convey("Then Mean should report emptiness", func() {
			_, ok := stats.Mean(nil)
			So(ok, ShouldBeFalse)
			m, ok := stats.Mean([]float64{1, 2})
			So(ok, ShouldBeTrue)
			So(m, ShouldEqual, 1.5)
		})

		Convey("Then PopulationStdDev should divide by n", func() {
			sd, ok := stats.PopulationStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
			So(ok, ShouldBeTrue)
			So(sd, ShouldAlmostEqual, 2.0, 1e-12)

			_, ok = stats.PopulationStdDev(nil)
			So(ok, ShouldBeFalse)
		})

		Convey("Then Sum should add values", func() {
			So(stats.Sum([]float64{1, 2, 3.5}), ShouldEqual, 6.5)
		})

		Convey("Then Round should not emit negative zero", func() {
			r := stats.Round(-0.001)
			So(r, ShouldEqual, 0.0)
			So(math.Signbit(r), ShouldBeFalse)
			So(stats.Round(2.346), ShouldEqual, 2.35)
		})
	})
}
