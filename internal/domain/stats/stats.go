// Package stats computes descriptive statistics over finite samples.
//
// All reported figures are rounded to Precision decimal places; internal
// arithmetic runs at full precision and rounds only on output. Statistics
// that are undefined for a sample size are reported as nil, never as zero.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"
)

const (
	// Precision is the number of decimal places of every reported figure.
	Precision = 2

	// ZCritical95 is the two-sided 95% normal critical value. It is used for
	// every sample size (no t-distribution), so intervals for small samples
	// are slightly narrower than a t-based interval would be.
	ZCritical95 = 1.96

	minDispersionCount = 2
	minModeFrequency   = 2
)

// Summary holds the descriptive statistics of one sample.
type Summary struct {
	Count   int      `json:"count"`
	Mean    *float64 `json:"mean"`
	Mode    *float64 `json:"mode"`
	StdDev  *float64 `json:"std_dev"`
	CILower *float64 `json:"ci_lower"`
	CIUpper *float64 `json:"ci_upper"`
}

// Empty reports whether the summary was computed over no values.
func (s Summary) Empty() bool { return s.Count == 0 }

// Summarize computes count, mean, mode, sample standard deviation and the
// 95% confidence interval of the mean.
//
//   - count == 0: every statistic is nil.
//   - count == 1: mean and mode-policy apply; std_dev and CI are nil.
//   - mode is nil when no value occurs more than once.
func Summarize(values []float64) Summary {
	n := len(values)
	s := Summary{Count: n}
	if n == 0 {
		return s
	}

	mean := stat.Mean(values, nil)
	s.Mean = Ptr(Round(mean))
	s.Mode = Mode(values)

	if n < minDispersionCount {
		return s
	}

	// Unbiased (n-1) estimator.
	sd := stat.StdDev(values, nil)
	margin := ZCritical95 * sd / math.Sqrt(float64(n))
	s.StdDev = Ptr(Round(sd))
	s.CILower = Ptr(Round(mean - margin))
	s.CIUpper = Ptr(Round(mean + margin))
	return s
}

// Mode returns the most frequent value, breaking ties toward the smallest
// value. It returns nil when the sample is empty or all values are distinct.
// Values are compared with exact float equality.
func Mode(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	counts := make(map[float64]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	keys := make([]float64, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	best, bestCount := 0.0, 0
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	if bestCount < minModeFrequency {
		return nil
	}
	return Ptr(Round(best))
}

// Mean returns the arithmetic mean at full precision, or false for an empty sample.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return stat.Mean(values, nil), true
}

// PopulationStdDev returns the population (n) standard deviation at full
// precision, or false for an empty sample.
func PopulationStdDev(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	_, sd := stat.PopMeanStdDev(values, nil)
	return sd, true
}

// Sum returns the sum of values.
func Sum(values []float64) float64 {
	return floats.Sum(values)
}

// Round rounds x half away from zero to Precision decimal places.
// Negative zero is normalised to zero.
func Round(x float64) float64 {
	r := scalar.Round(x, Precision)
	if r == 0 {
		return 0
	}
	return r
}

// Ptr returns a pointer to v.
func Ptr(v float64) *float64 { return &v }
