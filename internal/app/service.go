// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/ringside/internal/adapters/repository"
	"github.com/okian/ringside/internal/config"
	"github.com/okian/ringside/internal/domain/benchmark"
	"github.com/okian/ringside/internal/domain/metric"
	"github.com/okian/ringside/internal/domain/trainingload"
	"github.com/okian/ringside/internal/domain/types"
	"github.com/okian/ringside/internal/seed"
	"github.com/okian/ringside/pkg/logger"
)

// Service implements the API dependencies for the analysis engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	benchmarks *benchmark.Service
	analyzer   *trainingload.Analyzer

	// Configuration
	storeKind     string
	postgresDSN   string
	maxOpenConns  int
	connLifetime  time.Duration
	fixturePath   string
	seedConfig    *seed.Config
	defaultWindow int
	maxWindow     int
	now           func() time.Time

	// State
	started   bool
	ownsStore bool
	injected  bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects a ready store. The service does not close it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
			s.injected = true
		}
	}
}

// WithPostgres selects the postgres store.
func WithPostgres(dsn string, maxOpenConns int) Option {
	return func(s *Service) {
		s.storeKind = config.StorePostgres
		s.postgresDSN = dsn
		if maxOpenConns > 0 {
			s.maxOpenConns = maxOpenConns
		}
	}
}

// WithConnMaxLifetime bounds how long a pooled postgres connection is reused.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(s *Service) {
		s.connLifetime = d
	}
}

// WithFixture loads a YAML fixture into the memory store on Start.
func WithFixture(path string) Option {
	return func(s *Service) {
		s.fixturePath = path
	}
}

// WithSeed fills an empty memory store with a generated dataset on Start.
func WithSeed(cfg seed.Config) Option {
	return func(s *Service) {
		s.seedConfig = &cfg
	}
}

// WithLoadWindow sets the default and maximum training load windows.
func WithLoadWindow(defaultDays, maxDays int) Option {
	return func(s *Service) {
		if defaultDays > 0 {
			s.defaultWindow = defaultDays
		}
		if maxDays > 0 {
			s.maxWindow = maxDays
		}
	}
}

// WithClock sets the time source for training load analysis.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// FromConfig translates process configuration into service options.
func FromConfig(cfg *config.Config) []Option {
	opts := []Option{
		WithLoadWindow(cfg.DefaultLoadWindowDays, cfg.MaxLoadWindowDays),
	}
	if cfg.Store == config.StorePostgres {
		opts = append(opts,
			WithPostgres(cfg.PostgresDSN, cfg.PostgresMaxOpenConns),
			WithConnMaxLifetime(cfg.PostgresConnMaxLifetime),
		)
	}
	if cfg.FixturePath != "" {
		opts = append(opts, WithFixture(cfg.FixturePath))
	}
	if cfg.SeedCoaches > 0 {
		sc := seed.DefaultConfig()
		sc.Coaches = cfg.SeedCoaches
		sc.AthletesPerCoach = cfg.SeedAthletes
		sc.Seed = cfg.Seed
		opts = append(opts, WithSeed(sc))
	}
	return opts
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storeKind:     config.StoreMemory,
		maxOpenConns:  10,
		defaultWindow: trainingload.DefaultWindowDays,
		maxWindow:     90,
		now:           time.Now,
		logger:        nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store and builds the engine components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting analysis service...")

	if !s.injected {
		store, err := s.openStore(ctx)
		if err != nil {
			return err
		}
		s.store = store
		s.ownsStore = true
	}

	s.benchmarks = benchmark.NewService(s.store, benchmark.WithLogger(s.logger.Named("benchmark")))
	s.analyzer = trainingload.NewAnalyzer(s.store,
		trainingload.WithClock(s.now),
		trainingload.WithDefaultWindow(s.defaultWindow),
		trainingload.WithMaxWindow(s.maxWindow),
		trainingload.WithLogger(s.logger.Named("trainingload")),
	)

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.String("store", s.storeKind),
		logger.Int("defaultWindowDays", s.defaultWindow),
		logger.Int("maxWindowDays", s.maxWindow),
	)
	return nil
}

func (s *Service) openStore(ctx context.Context) (repository.Store, error) {
	if s.storeKind == config.StorePostgres {
		pg, err := repository.OpenPostgres(ctx, s.postgresDSN,
			repository.WithMaxOpenConns(s.maxOpenConns),
			repository.WithConnMaxLifetime(s.connLifetime),
			repository.WithLogger(s.logger.Named("postgres")),
		)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
		return pg, nil
	}

	mem := repository.NewMemStore()
	if s.fixturePath != "" {
		f, err := repository.LoadFixture(s.fixturePath)
		if err != nil {
			return nil, err
		}
		if err := mem.Load(f); err != nil {
			return nil, fmt.Errorf("load fixture %s: %w", s.fixturePath, err)
		}
		s.logger.Info(ctx, "fixture loaded", logger.String("path", s.fixturePath))
	} else if s.seedConfig != nil {
		f, err := seed.Generate(ctx, *s.seedConfig)
		if err != nil {
			return nil, err
		}
		if err := mem.Load(f); err != nil {
			return nil, fmt.Errorf("load generated dataset: %w", err)
		}
	}
	return mem, nil
}

// Stop closes the store if the service opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping analysis service...")

	if s.ownsStore && s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "close store", logger.Error(err))
		}
		s.store = nil
		s.ownsStore = false
	}

	s.started = false
	s.logger.Info(context.Background(), "analysis service stopped")
}

// components returns the engine under the read lock.
func (s *Service) components() (*benchmark.Service, *trainingload.Analyzer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.benchmarks, s.analyzer, nil
}

// GetBenchmarks computes the statistics of a reference population.
func (s *Service) GetBenchmarks(ctx context.Context, caller types.Caller, q benchmark.Query) (benchmark.Benchmark, error) {
	b, _, err := s.components()
	if err != nil {
		return benchmark.Benchmark{}, err
	}
	return b.GetBenchmarks(ctx, caller, q)
}

// GetZScore standardizes one athlete event against its reference population.
func (s *Service) GetZScore(ctx context.Context, caller types.Caller, q benchmark.ZScoreQuery) (benchmark.ZScoreResult, error) {
	b, _, err := s.components()
	if err != nil {
		return benchmark.ZScoreResult{}, err
	}
	return b.GetZScore(ctx, caller, q)
}

// GetZScoresBulk standardizes every athlete event carrying the metric.
func (s *Service) GetZScoresBulk(ctx context.Context, caller types.Caller, q benchmark.ZScoreQuery) (map[string]benchmark.ZScoreResult, error) {
	b, _, err := s.components()
	if err != nil {
		return nil, err
	}
	return b.GetZScoresBulk(ctx, caller, q)
}

// ListAthleteMetrics lists the benchmarkable metrics an athlete has recorded.
func (s *Service) ListAthleteMetrics(ctx context.Context, caller types.Caller, athleteID string) ([]string, error) {
	b, _, err := s.components()
	if err != nil {
		return nil, err
	}
	return b.ListAthleteMetrics(ctx, caller, athleteID)
}

// ListMetricDefinitions returns the benchmarkable metrics, or nil before
// Start.
func (s *Service) ListMetricDefinitions() []metric.Definition {
	b, _, err := s.components()
	if err != nil {
		return nil
	}
	return b.ListMetricDefinitions()
}

// AnalyzeTrainingLoad runs the training load analysis for an athlete.
func (s *Service) AnalyzeTrainingLoad(ctx context.Context, caller types.Caller, athleteID string, windowDays int) (trainingload.Analysis, error) {
	_, a, err := s.components()
	if err != nil {
		return trainingload.Analysis{}, err
	}
	return a.Analyze(ctx, caller, athleteID, windowDays)
}

// MaxLoadWindow returns the largest accepted training load window.
func (s *Service) MaxLoadWindow() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxWindow
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
		"store":   s.storeKind,
	}

	if s.started {
		counts, err := s.store.Counts(ctx)
		if err != nil {
			s.logger.Warn(ctx, "store counts unavailable", logger.Error(err))
			stats["error"] = err.Error()
			return stats
		}
		stats["coaches"] = counts.Coaches
		stats["athletes"] = counts.Athletes
		stats["events"] = counts.Events
		stats["sessions"] = counts.Sessions
	}

	return stats
}
