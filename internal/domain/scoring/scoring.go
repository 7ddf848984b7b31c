// Package scoring standardizes individual values against a population.
package scoring

import (
	"github.com/okian/ringside/internal/domain/stats"
)

// ZScore returns (value - mean) / stdDev rounded to stats.Precision places.
//
// The result is nil when stdDev is nil or zero: a population without spread
// cannot standardize anything. A positive score means value is above the mean;
// no metric-direction inversion is applied.
func ZScore(value, mean float64, stdDev *float64) *float64 {
	if stdDev == nil || *stdDev == 0 {
		return nil
	}
	return stats.Ptr(stats.Round((value - mean) / *stdDev))
}

// Against standardizes value against a summary. It is nil when the summary
// has no mean or no usable standard deviation.
func Against(value float64, s stats.Summary) *float64 {
	if s.Mean == nil {
		return nil
	}
	return ZScore(value, *s.Mean, s.StdDev)
}
