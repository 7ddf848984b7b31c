// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/ringside/internal/domain/metric"
	"github.com/okian/ringside/internal/domain/types"
)

// BodyMassKey is the metrics key holding body mass in kilograms.
const BodyMassKey = "body_mass_kg"

// Metrics is the free-form metrics map recorded with a test event,
// e.g. {"test_type": "CMJ", "height_cm": 45.5, "body_mass_kg": 72.3}.
// Values are kept as decoded; numeric access goes through Lookup.
type Metrics map[string]any

// Lookup returns the value under key coerced to float64.
// The second result is false when the key is missing, null, non-numeric
// or not finite. Absent values are never reported as zero.
func (m Metrics) Lookup(key string) (float64, bool) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return 0, false
	}
	var v float64
	switch x := raw.(type) {
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int32:
		v = float64(x)
	case int64:
		v = float64(x)
	case uint:
		v = float64(x)
	case uint64:
		v = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Has reports whether key carries a usable numeric value.
func (m Metrics) Has(key string) bool {
	_, ok := m.Lookup(key)
	return ok
}

// Event is a performance test event (one row of athlete testing).
// CoachID and Gender are copied from the owning athlete so population
// filters can run on events alone.
type Event struct {
	ID        string       `json:"id" yaml:"id"`
	AthleteID string       `json:"athlete_id" yaml:"athlete_id"`
	CoachID   string       `json:"coach_id" yaml:"coach_id"`
	Gender    types.Gender `json:"gender" yaml:"gender"`
	EventDate time.Time    `json:"event_date" yaml:"event_date"`
	Metrics   Metrics      `json:"metrics" yaml:"metrics"`
}

// BodyMass returns the body mass recorded with the event, if any.
// Masses outside the registry range are treated as absent.
func (e Event) BodyMass() (float64, bool) {
	v, ok := e.Metrics.Lookup(BodyMassKey)
	if !ok || !ValidBodyMass(v) {
		return 0, false
	}
	return v, true
}

// ValidBodyMass reports whether v is inside the registered body mass range.
func ValidBodyMass(v float64) bool {
	d, ok := metric.Lookup(BodyMassKey)
	return ok && d.InRange(v)
}

// NewerThan orders events latest first: event date desc, then id desc.
func (e Event) NewerThan(o Event) bool {
	if !e.EventDate.Equal(o.EventDate) {
		return e.EventDate.After(o.EventDate)
	}
	return e.ID > o.ID
}
