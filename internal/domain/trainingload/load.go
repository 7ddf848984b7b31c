// Package trainingload derives acute and chronic workload, ACWR, monotony and
// strain from training sessions.
//
// Daily loads cover every calendar day of the window; days without sessions
// count as zero load. Undefined figures are nil, never zero.
package trainingload

import (
	"encoding/json"
	"time"

	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/domain/stats"
)

const (
	// AcuteDays is the short rolling window.
	AcuteDays = 7
	// ChronicDays is the long rolling window.
	ChronicDays = 28
	// DefaultWindowDays is the analysis window when none is given.
	DefaultWindowDays = 28

	dateLayout = time.DateOnly
)

// DailyLoad is the aggregated load of one calendar day.
type DailyLoad struct {
	Date         time.Time
	TotalSRPE    int
	SessionCount int
}

// MarshalJSON renders the date without a time component.
func (d DailyLoad) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date         string `json:"date"`
		TotalSRPE    int    `json:"total_srpe"`
		SessionCount int    `json:"session_count"`
	}{d.Date.Format(dateLayout), d.TotalSRPE, d.SessionCount})
}

// Analysis is the training load picture at the end of a window.
type Analysis struct {
	AthleteID  string      `json:"athlete_id"`
	WindowDays int         `json:"window_days"`
	StartDate  string      `json:"start_date"`
	EndDate    string      `json:"end_date"`
	DailyLoads []DailyLoad `json:"daily_loads"`

	AcuteLoad   *float64 `json:"acute_load"`
	ChronicLoad *float64 `json:"chronic_load"`
	ACWR        *float64 `json:"acwr"`
	WeeklyLoad  *int     `json:"weekly_load"`
	Monotony    *float64 `json:"monotony"`
	Strain      *float64 `json:"strain"`
	Zone        Zone     `json:"acwr_zone"`
}

// DailyLoads aggregates sessions into one entry per day in [start, end].
// Sessions outside the range are ignored.
func DailyLoads(sessions []model.Session, start, end time.Time) []DailyLoad {
	start, end = model.Day(start), model.Day(end)
	if end.Before(start) {
		return []DailyLoad{}
	}
	days := int(end.Sub(start).Hours()/24) + 1
	out := make([]DailyLoad, days)
	for i := range out {
		out[i].Date = start.AddDate(0, 0, i)
	}
	for _, s := range sessions {
		d := model.Day(s.SessionDate)
		if d.Before(start) || d.After(end) {
			continue
		}
		i := int(d.Sub(start).Hours() / 24)
		out[i].TotalSRPE += s.Load()
		out[i].SessionCount++
	}
	return out
}

// Compute analyzes the windowDays days ending on today (inclusive).
func Compute(sessions []model.Session, windowDays int, today time.Time) Analysis {
	end := model.Day(today)
	start := end.AddDate(0, 0, -(windowDays - 1))
	daily := DailyLoads(sessions, start, end)

	a := Analysis{
		WindowDays: windowDays,
		StartDate:  start.Format(dateLayout),
		EndDate:    end.Format(dateLayout),
		DailyLoads: daily,
	}

	totals := make([]float64, len(daily))
	for i, d := range daily {
		totals[i] = float64(d.TotalSRPE)
	}

	var acuteMean, chronicMean float64
	if len(totals) >= AcuteDays {
		week := totals[len(totals)-AcuteDays:]
		acuteMean, _ = stats.Mean(week)
		a.AcuteLoad = stats.Ptr(stats.Round(acuteMean))

		weekly := int(stats.Sum(week))
		a.WeeklyLoad = &weekly

		// Population SD over the fixed 7-day week.
		if sd, _ := stats.PopulationStdDev(week); sd > 0 {
			a.Monotony = stats.Ptr(stats.Round(acuteMean / sd))
			a.Strain = stats.Ptr(stats.Round(float64(weekly) * *a.Monotony))
		}
	}
	if len(totals) >= ChronicDays {
		chronicMean, _ = stats.Mean(totals[len(totals)-ChronicDays:])
		a.ChronicLoad = stats.Ptr(stats.Round(chronicMean))
	}
	if a.AcuteLoad != nil && a.ChronicLoad != nil && chronicMean != 0 {
		a.ACWR = stats.Ptr(stats.Round(acuteMean / chronicMean))
	}
	a.Zone = ZoneFor(a.ACWR)
	return a
}
