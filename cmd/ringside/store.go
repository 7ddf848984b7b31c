package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	app "github.com/okian/ringside/internal/app"
	"github.com/okian/ringside/internal/domain/scope"
	"github.com/okian/ringside/internal/domain/types"
	"github.com/okian/ringside/pkg/logger"
)

// startService builds and starts the analysis service from configuration.
// Callers must Stop it.
func startService(ctx context.Context, o *rootOptions) (*app.Service, error) {
	opts := append(app.FromConfig(o.cfg), app.WithLogger(o.log))
	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("start service: %w", err)
	}
	return svc, nil
}

// callerFlags identify the coach a one-shot command runs as.
type callerFlags struct {
	coachID string
	role    string
}

func (c *callerFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&c.coachID, "coach", "", "coach id to run as (required)")
	fs.StringVar(&c.role, "role", string(types.RoleCoach), "coach role: coach or admin")
}

func (c *callerFlags) caller() (types.Caller, error) {
	if strings.TrimSpace(c.coachID) == "" {
		return types.Caller{}, fmt.Errorf("--coach is required")
	}
	role, err := types.ParseRole(c.role)
	if err != nil {
		return types.Caller{}, err
	}
	return types.Caller{CoachID: strings.TrimSpace(c.coachID), Role: role}, nil
}

// scopeFlags select the reference population.
type scopeFlags struct {
	metric string
	group  string
	source string
}

func (s *scopeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&s.metric, "metric", "", "metric key, e.g. height_cm (required)")
	fs.StringVar(&s.group, "group", string(scope.GroupCohort), "reference group: cohort, gender or mass_band")
	fs.StringVar(&s.source, "source", "", "benchmark source: own, boxing_science or shared_pool (default by role)")
}

func (s *scopeFlags) parse() (scope.ReferenceGroup, scope.Source, error) {
	group, err := scope.ParseReferenceGroup(s.group)
	if err != nil {
		return "", "", err
	}
	src, err := scope.ParseSource(s.source)
	if err != nil {
		return "", "", err
	}
	return group, src, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// stopService stops svc and flushes logs.
func stopService(svc *app.Service) {
	svc.Stop()
	_ = logger.Sync()
}
