package scope

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	massBandWidth = 5.0
	massBandSpan  = 4.9
)

// MassBand is a 5 kg body-mass bucket identified by its lower bound,
// e.g. Low 70 covers 70 to 74.9 kg.
type MassBand struct {
	Low int
}

// MassBandFor derives the band containing mass. The lower bound is inclusive.
func MassBandFor(mass float64) MassBand {
	return MassBand{Low: int(math.Floor(mass/massBandWidth) * massBandWidth)}
}

// High returns the upper label bound (Low + 4.9).
func (b MassBand) High() float64 {
	return float64(b.Low) + massBandSpan
}

// Contains reports whether mass falls in the band.
func (b MassBand) Contains(mass float64) bool {
	return MassBandFor(mass) == b
}

// String renders the band label, e.g. "70-74.9".
func (b MassBand) String() string {
	return fmt.Sprintf("%d-%s", b.Low, strconv.FormatFloat(b.High(), 'f', 1, 64))
}

// ParseMassBand parses a band label. A trailing "kg" is accepted.
// The lower bound must be a multiple of 5 and the upper bound must match it.
func ParseMassBand(s string) (MassBand, error) {
	label := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "kg")
	// Split on the last '-' so negative lower bounds are rejected below.
	idx := strings.LastIndex(label, "-")
	if idx <= 0 {
		return MassBand{}, fmt.Errorf("%w: %q", ErrInvalidMassBand, s)
	}
	low, err := strconv.Atoi(strings.TrimSpace(label[:idx]))
	if err != nil || low < 0 || low%int(massBandWidth) != 0 {
		return MassBand{}, fmt.Errorf("%w: %q", ErrInvalidMassBand, s)
	}
	high, err := strconv.ParseFloat(strings.TrimSpace(label[idx+1:]), 64)
	b := MassBand{Low: low}
	if err != nil || math.Abs(high-b.High()) > 1e-9 {
		return MassBand{}, fmt.Errorf("%w: %q", ErrInvalidMassBand, s)
	}
	return b, nil
}
