// Package types contains common types used across the application
package types

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for type parsing.
var (
	ErrInvalidGender = errors.New("invalid gender")
	ErrInvalidRole   = errors.New("invalid role")
)

// Gender of an athlete.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender parses a gender value (case-insensitive).
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case GenderMale, GenderFemale:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGender, s)
	}
}

// Role of an authenticated account.
type Role string

const (
	// RoleCoach is an ordinary tenant.
	RoleCoach Role = "coach"
	// RoleAdmin owns the house dataset.
	RoleAdmin Role = "admin"
)

// ParseRole parses a role value (case-insensitive).
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleCoach, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// Caller identifies who is asking: the tenant (coach) and its role.
// It is passed explicitly to every operation that depends on it.
type Caller struct {
	CoachID string `json:"coach_id"`
	Role    Role   `json:"role"`
}

// IsAdmin reports whether the caller owns the house dataset.
func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }

type callerKey struct{}

// WithCaller returns a context carrying the caller.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom extracts the caller stored by WithCaller.
func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}
