// Package sample extracts the numeric values of one metric from a set of
// candidate records.
package sample

import "github.com/okian/ringside/internal/domain/model"

// Point is one extracted (record, value) pair.
type Point struct {
	RecordID string  `json:"record_id"`
	Value    float64 `json:"value"`
}

// Sample is an ordered sequence of points for one metric.
// Every value is finite; records without the metric are not represented.
type Sample struct {
	Metric string
	Points []Point
}

// Extract reads metric from each record in input order. Records where the
// metric is missing, null or not numeric are skipped.
func Extract(records []model.Event, metric string) Sample {
	s := Sample{Metric: metric, Points: make([]Point, 0, len(records))}
	for _, r := range records {
		v, ok := r.Metrics.Lookup(metric)
		if !ok {
			continue
		}
		s.Points = append(s.Points, Point{RecordID: r.ID, Value: v})
	}
	return s
}

// Len returns the number of points.
func (s Sample) Len() int { return len(s.Points) }

// Values returns the values in sample order.
func (s Sample) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}
