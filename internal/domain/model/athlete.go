package model

import (
	"time"

	"github.com/okian/ringside/internal/domain/types"
)

// Coach is a tenant account.
type Coach struct {
	ID                 string     `json:"id" yaml:"id"`
	Role               types.Role `json:"role" yaml:"role"`
	DataSharingEnabled bool       `json:"data_sharing_enabled" yaml:"data_sharing_enabled"`
}

// Athlete belongs to exactly one coach.
type Athlete struct {
	ID          string       `json:"id" yaml:"id"`
	CoachID     string       `json:"coach_id" yaml:"coach_id"`
	Name        string       `json:"name" yaml:"name"`
	Gender      types.Gender `json:"gender" yaml:"gender"`
	DateOfBirth *time.Time   `json:"date_of_birth,omitempty" yaml:"date_of_birth,omitempty"`
}
