package trainingload

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/domain/types"
	"github.com/okian/ringside/pkg/logger"
	"github.com/okian/ringside/pkg/metrics"
)

// Store is the data the analyzer reads.
type Store interface {
	GetAthlete(ctx context.Context, coachID, athleteID string) (model.Athlete, error)
	ListSessions(ctx context.Context, athleteID string, from, to time.Time) ([]model.Session, error)
}

// Analyzer runs training load analyses against a store.
type Analyzer struct {
	store         Store
	now           func() time.Time
	defaultWindow int
	maxWindow     int
	logger        logger.Logger
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithClock sets the time source used to pick "today".
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// WithDefaultWindow sets the window used when a caller passes zero.
func WithDefaultWindow(days int) Option {
	return func(a *Analyzer) {
		if days > 0 {
			a.defaultWindow = days
		}
	}
}

// WithMaxWindow bounds the analysis window.
func WithMaxWindow(days int) Option {
	return func(a *Analyzer) {
		if days > 0 {
			a.maxWindow = days
		}
	}
}

// WithLogger sets a custom logger for the analyzer.
func WithLogger(l logger.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAnalyzer constructs an analyzer over store.
func NewAnalyzer(store Store, opts ...Option) *Analyzer {
	a := &Analyzer{
		store:         store,
		now:           time.Now,
		defaultWindow: DefaultWindowDays,
		maxWindow:     90,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get()
	}
	return a
}

// Analyze computes the athlete's training load over the windowDays days
// ending today (UTC). Zero selects the default window.
func (a *Analyzer) Analyze(ctx context.Context, caller types.Caller, athleteID string, windowDays int) (Analysis, error) {
	start := time.Now()
	defer func() {
		metrics.RecordComputeLatency("training_load", float64(time.Since(start).Microseconds())/1000)
	}()

	if athleteID == "" {
		return Analysis{}, ErrAthleteRequired
	}
	if windowDays == 0 {
		windowDays = a.defaultWindow
	}
	if windowDays < 1 || windowDays > a.maxWindow {
		return Analysis{}, fmt.Errorf("%w: %d days (allowed 1..%d)", ErrInvalidWindow, windowDays, a.maxWindow)
	}

	if _, err := a.store.GetAthlete(ctx, caller.CoachID, athleteID); err != nil {
		return Analysis{}, err
	}

	today := model.Day(a.now())
	from := today.AddDate(0, 0, -(windowDays - 1))
	sessions, err := a.store.ListSessions(ctx, athleteID, from, today)
	if err != nil {
		return Analysis{}, err
	}

	res := Compute(sessions, windowDays, today)
	res.AthleteID = athleteID

	metrics.RecordTrainingLoadAnalysis(string(res.Zone))
	a.logger.Debug(ctx, "training load analyzed",
		logger.String("athleteID", athleteID),
		logger.Int("windowDays", windowDays),
		logger.Int("sessions", len(sessions)),
		logger.String("zone", string(res.Zone)),
	)
	return res, nil
}
