package model

import "time"

// Session is one training session. Load is session RPE (sRPE):
// duration in minutes times the rating of perceived exertion.
type Session struct {
	ID              string    `json:"id" yaml:"id"`
	AthleteID       string    `json:"athlete_id" yaml:"athlete_id"`
	SessionDate     time.Time `json:"session_date" yaml:"session_date"`
	TrainingType    string    `json:"training_type" yaml:"training_type"`
	DurationMinutes int       `json:"duration_minutes" yaml:"duration_minutes"`
	RPE             int       `json:"rpe" yaml:"rpe"`
	// SRPE is the stored load; when nil it is derived from duration and RPE.
	SRPE *int `json:"srpe,omitempty" yaml:"srpe,omitempty"`
}

// Load returns the session's sRPE.
func (s Session) Load() int {
	if s.SRPE != nil {
		return *s.SRPE
	}
	return s.DurationMinutes * s.RPE
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
