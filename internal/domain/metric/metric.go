// Package metric holds the registry of known performance-test metrics.
//
// The benchmark engine accepts any metric key; the registry only drives
// listings, range checks and the metadata keys that are never benchmarked.
package metric

import "sort"

// Domain groups metrics by product area.
type Domain string

const (
	DomainTesting Domain = "testing"
)

// Range is an inclusive validation range.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Definition describes one metric key.
type Definition struct {
	Key            string `json:"key"`
	Label          string `json:"label"`
	Unit           string `json:"unit"`
	Domain         Domain `json:"domain"`
	Range          *Range `json:"range"`
	HigherIsBetter bool   `json:"higher_is_better"`
	// Metadata keys describe the test rather than measure it.
	Metadata bool `json:"metadata"`
}

var definitions = []Definition{
	{Key: "height_cm", Label: "CMJ Height (cm)", Unit: "cm", Domain: DomainTesting, Range: &Range{0, 200}, HigherIsBetter: true},
	{Key: "sj_height_cm", Label: "SJ Height (cm)", Unit: "cm", Domain: DomainTesting, Range: &Range{0, 200}, HigherIsBetter: true},
	{Key: "eur_cm", Label: "Eccentric Utilisation Ratio (cm)", Unit: "cm", Domain: DomainTesting, Range: &Range{-100, 200}, HigherIsBetter: true},
	{Key: "rsi", Label: "Reactive Strength Index", Domain: DomainTesting, Range: &Range{0, 50}, HigherIsBetter: true},
	{Key: "flight_time_ms", Label: "Flight Time (ms)", Unit: "ms", Domain: DomainTesting, Range: &Range{0, 2000}, HigherIsBetter: true},
	{Key: "contraction_time_ms", Label: "Contact Time (ms)", Unit: "ms", Domain: DomainTesting, Range: &Range{0, 2000}},
	{Key: "body_mass_kg", Label: "Body Mass (kg)", Unit: "kg", Domain: DomainTesting, Range: &Range{0, 500}, Metadata: true},
	{Key: "test_type", Label: "Test Type", Domain: DomainTesting, Metadata: true},
}

var byKey = func() map[string]Definition {
	m := make(map[string]Definition, len(definitions))
	for _, d := range definitions {
		m[d.Key] = d
	}
	return m
}()

// Definitions returns every registered definition, metadata included.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Benchmarkable returns the definitions offered as benchmark metrics.
func Benchmarkable() []Definition {
	out := make([]Definition, 0, len(definitions))
	for _, d := range definitions {
		if !d.Metadata {
			out = append(out, d)
		}
	}
	return out
}

// Lookup returns the definition for key.
func Lookup(key string) (Definition, bool) {
	d, ok := byKey[key]
	return d, ok
}

// IsMetadata reports whether key is a metadata key (body mass, test type).
func IsMetadata(key string) bool {
	d, ok := byKey[key]
	return ok && d.Metadata
}

// InRange reports whether v is inside the definition's range.
// Definitions without a range accept nothing numeric.
func (d Definition) InRange(v float64) bool {
	if d.Range == nil {
		return false
	}
	return v >= d.Range.Min && v <= d.Range.Max
}

// Keys returns the sorted, de-duplicated benchmarkable keys from keys.
// Metadata keys are dropped; unknown keys are kept.
func Keys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if IsMetadata(k) {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
