// Package scope describes which records qualify for a benchmark population.
//
// A Scope combines a benchmark source with a reference group (cohort, gender
// or mass band) and its discriminator. Scopes resolve into a Filter that the
// data store evaluates, and into a Label that tags the resulting benchmark.
package scope

import (
	"fmt"
	"strings"

	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/domain/types"
)

// ReferenceGroup is the population-restriction dimension.
type ReferenceGroup string

const (
	GroupCohort   ReferenceGroup = "cohort"
	GroupGender   ReferenceGroup = "gender"
	GroupMassBand ReferenceGroup = "mass_band"
)

// ParseReferenceGroup parses a reference group; empty defaults to cohort.
func ParseReferenceGroup(s string) (ReferenceGroup, error) {
	switch g := ReferenceGroup(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return GroupCohort, nil
	case GroupCohort, GroupGender, GroupMassBand:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidReferenceGroup, s)
	}
}

// Scope is a fully resolved population descriptor.
type Scope struct {
	Source Source
	Group  ReferenceGroup
	// Gender is set when Group is GroupGender.
	Gender types.Gender
	// Band is set when Group is GroupMassBand.
	Band *MassBand
}

// Cohort returns a whole-cohort scope.
func Cohort(src Source) Scope {
	return Scope{Source: src, Group: GroupCohort}
}

// ByGender returns a gender-restricted scope.
func ByGender(src Source, g types.Gender) Scope {
	return Scope{Source: src, Group: GroupGender, Gender: g}
}

// ByMassBand returns a mass-band-restricted scope.
func ByMassBand(src Source, b MassBand) Scope {
	return Scope{Source: src, Group: GroupMassBand, Band: &b}
}

// Validate checks that the discriminator required by the group is present.
// A mass-band scope without a band is valid but unresolved (see Resolved).
func (s Scope) Validate() error {
	switch s.Source {
	case SourceOwn, SourceHouse, SourceSharedPool:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSource, s.Source)
	}
	switch s.Group {
	case GroupCohort, GroupMassBand:
	case GroupGender:
		if s.Gender == "" {
			return ErrGenderRequired
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidReferenceGroup, s.Group)
	}
	return nil
}

// Resolved reports whether the scope can be evaluated. Only a mass-band
// scope without a band is unresolved.
func (s Scope) Resolved() bool {
	return s.Group != GroupMassBand || s.Band != nil
}

// Label names the reference group, e.g. "cohort", "gender:male",
// "mass_band:70-74.9".
func (s Scope) Label() string {
	switch s.Group {
	case GroupGender:
		return string(GroupGender) + ":" + string(s.Gender)
	case GroupMassBand:
		if s.Band == nil {
			return string(GroupMassBand)
		}
		return string(GroupMassBand) + ":" + s.Band.String()
	default:
		return string(GroupCohort)
	}
}

// Filter builds the store filter for a caller.
func (s Scope) Filter(caller types.Caller) Filter {
	f := Filter{Source: s.Source, Band: s.Band}
	if s.Source == SourceOwn {
		f.CoachID = caller.CoachID
	}
	if s.Group == GroupGender {
		f.Gender = s.Gender
	}
	return f
}

// WithoutBand returns the filter with the mass-band restriction removed.
func (f Filter) WithoutBand() Filter {
	f.Band = nil
	return f
}

// Filter is what a data store needs to select population records.
// Tenant-level selection (Source, CoachID) is resolved by the store since it
// depends on coach roles and sharing consent.
type Filter struct {
	Source  Source
	CoachID string       // set for SourceOwn
	Gender  types.Gender // empty means any
	Band    *MassBand    // nil means any
}

// Admits evaluates the record-level parts of the filter (gender, mass band)
// against an event. Tenant selection is not re-checked here.
func (f Filter) Admits(e model.Event) bool {
	if f.Gender != "" && e.Gender != f.Gender {
		return false
	}
	if f.Band != nil {
		mass, ok := e.BodyMass()
		if !ok || !f.Band.Contains(mass) {
			return false
		}
	}
	return true
}
