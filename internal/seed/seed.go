// Package seed generates deterministic synthetic datasets: coaches,
// athletes, jump test events and training sessions.
package seed

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/ringside/internal/adapters/repository"
	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/domain/types"
	"github.com/okian/ringside/pkg/logger"
)

// Config sizes a generated dataset.
type Config struct {
	Coaches          int
	AthletesPerCoach int
	EventsPerAthlete int
	// SessionDays is the number of days of training history per athlete.
	SessionDays int
	Seed        int64
	// Today anchors event and session dates.
	Today time.Time
}

// DefaultConfig returns a small dataset anchored on today.
func DefaultConfig() Config {
	return Config{
		Coaches:          3,
		AthletesPerCoach: 8,
		EventsPerAthlete: 6,
		SessionDays:      42,
		Seed:             1,
		Today:            time.Now(),
	}
}

// Validate checks the dataset sizes.
func (c Config) Validate() error {
	if c.Coaches < 1 || c.AthletesPerCoach < 0 || c.EventsPerAthlete < 0 || c.SessionDays < 0 {
		return fmt.Errorf("%w: coaches=%d athletes=%d events=%d days=%d",
			ErrInvalidConfig, c.Coaches, c.AthletesPerCoach, c.EventsPerAthlete, c.SessionDays)
	}
	return nil
}

// Ability tiers, drawn one per athlete.
const (
	tierAverage = iota
	tierHigh
	tierLow
	tierElite
	tierVeryLow
	tierMidHigh
	tierMidLow
	tierWide
	tierCount
)

const (
	gravity          = 9.81
	sessionChance    = 0.7
	eventSpacingDays = 7
)

var trainingTypes = []string{"strength", "conditioning", "sparring", "technical", "recovery"}

// Generate builds the dataset. The first coach is the house (admin) account;
// every other odd coach shares data. Output depends only on cfg.
func Generate(ctx context.Context, cfg Config) (repository.Fixture, error) {
	if err := cfg.Validate(); err != nil {
		return repository.Fixture{}, err
	}
	today := model.Day(cfg.Today)

	parts := make([]repository.Fixture, cfg.Coaches)
	g, ctx := errgroup.WithContext(ctx)
	for i := range parts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))
			parts[i] = generateCoach(rng, i, cfg, today)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return repository.Fixture{}, fmt.Errorf("generate dataset: %w", err)
	}

	var out repository.Fixture
	for _, p := range parts {
		out.Coaches = append(out.Coaches, p.Coaches...)
		out.Athletes = append(out.Athletes, p.Athletes...)
		out.Events = append(out.Events, p.Events...)
		out.Sessions = append(out.Sessions, p.Sessions...)
	}
	logger.Get().Info(ctx, "generated dataset",
		logger.Int("coaches", len(out.Coaches)),
		logger.Int("athletes", len(out.Athletes)),
		logger.Int("events", len(out.Events)),
		logger.Int("sessions", len(out.Sessions)),
	)
	return out, nil
}

// Write generates a dataset and encodes it as a YAML fixture.
func Write(ctx context.Context, w io.Writer, cfg Config) error {
	f, err := Generate(ctx, cfg)
	if err != nil {
		return err
	}
	return repository.WriteFixture(w, f)
}

func generateCoach(rng *rand.Rand, index int, cfg Config, today time.Time) repository.Fixture {
	coach := model.Coach{ID: newID(rng), Role: types.RoleCoach, DataSharingEnabled: index%2 == 1}
	if index == 0 {
		coach.Role = types.RoleAdmin
	}
	f := repository.Fixture{Coaches: []model.Coach{coach}}

	for a := 0; a < cfg.AthletesPerCoach; a++ {
		gender := types.GenderMale
		if rng.Intn(2) == 0 {
			gender = types.GenderFemale
		}
		dob := today.AddDate(-(16 + rng.Intn(20)), -rng.Intn(12), -rng.Intn(28))
		athlete := model.Athlete{
			ID:          newID(rng),
			CoachID:     coach.ID,
			Name:        fmt.Sprintf("Athlete %d-%d", index+1, a+1),
			Gender:      gender,
			DateOfBirth: &dob,
		}
		f.Athletes = append(f.Athletes, athlete)

		ability := abilityFor(rng)
		mass := 55 + rng.Float64()*40
		if gender == types.GenderFemale {
			mass -= 8
			ability *= 0.85
		}
		for e := 0; e < cfg.EventsPerAthlete; e++ {
			date := today.AddDate(0, 0, -eventSpacingDays*(cfg.EventsPerAthlete-e))
			f.Events = append(f.Events, model.Event{
				ID:        newID(rng),
				AthleteID: athlete.ID,
				EventDate: date,
				Metrics:   jumpMetrics(rng, ability, mass),
			})
		}
		for d := cfg.SessionDays - 1; d >= 0; d-- {
			if rng.Float64() > sessionChance {
				continue
			}
			f.Sessions = append(f.Sessions, model.Session{
				ID:              newID(rng),
				AthleteID:       athlete.ID,
				SessionDate:     today.AddDate(0, 0, -d),
				TrainingType:    trainingTypes[rng.Intn(len(trainingTypes))],
				DurationMinutes: 30 + 5*rng.Intn(19),
				RPE:             3 + rng.Intn(7),
			})
		}
	}
	return f
}

// abilityFor draws a countermovement jump height in centimetres.
func abilityFor(rng *rand.Rand) float64 {
	u := rng.Float64()
	switch rng.Intn(tierCount) {
	case tierAverage:
		return 35 + u*10
	case tierHigh:
		return 45 + u*7
	case tierLow:
		return 25 + u*10
	case tierElite:
		return 52 + u*8
	case tierVeryLow:
		return 20 + u*5
	case tierMidHigh:
		return 42 + u*6
	case tierMidLow:
		return 30 + u*6
	default:
		return 20 + u*40
	}
}

func jumpMetrics(rng *rand.Rand, ability, mass float64) model.Metrics {
	height := ability + rng.NormFloat64()*1.5
	sj := height * (0.85 + rng.Float64()*0.1)
	flight := 2 * math.Sqrt(2*(height/100)/gravity) * 1000
	contraction := 650 + rng.NormFloat64()*60
	return model.Metrics{
		"test_type":           "CMJ",
		"height_cm":           round1(height),
		"sj_height_cm":        round1(sj),
		"eur_cm":              round1(height - sj),
		"flight_time_ms":      math.Round(flight),
		"contraction_time_ms": math.Round(contraction),
		"rsi":                 math.Round(height/100/(contraction/1000)*100) / 100,
		"body_mass_kg":        round1(mass + rng.NormFloat64()*0.8),
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func newID(rng *rand.Rand) string {
	// rand.Rand.Read never fails.
	id, _ := uuid.NewRandomFromReader(rng)
	return id.String()
}
