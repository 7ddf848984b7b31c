package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/ringside/internal/config"
	"github.com/okian/ringside/pkg/logger"
)

// rootOptions carries the resolved configuration to subcommands.
type rootOptions struct {
	configPath  string
	logLevel    string
	logFormat   string
	store       string
	fixturePath string
	postgresDSN string

	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "ringside",
		Short: "Athlete benchmark, z-score and training load analysis",
		Long: `Ringside computes population benchmarks and z-scores for athlete test
metrics and acute:chronic training load figures from session RPE.

Configuration is layered: defaults, then the YAML file named by --config or
RINGSIDE_CONFIG, then RINGSIDE_* environment variables, then flags.

Examples:
  # Serve the HTTP API over a generated dataset
  RINGSIDE_SEED_COACHES=3 ringside serve

  # Write a dataset and benchmark it
  ringside seed --output fixture.yaml
  ringside benchmark --fixture fixture.yaml --coach <id> --metric height_cm`,
		SilenceUsage:      true,
		PersistentPreRunE: opts.load,
	}

	fs := cmd.PersistentFlags()
	fs.StringVarP(&opts.configPath, "config", "c", "", "YAML config file (default $"+config.EnvConfigPath+")")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&opts.logFormat, "log-format", "", "log format: text or json")
	fs.StringVar(&opts.store, "store", "", "data store: memory or postgres")
	fs.StringVar(&opts.fixturePath, "fixture", "", "YAML fixture loaded into the memory store")
	fs.StringVar(&opts.postgresDSN, "dsn", "", "postgres connection string")

	cmd.AddCommand(
		newServeCmd(opts),
		newBenchmarkCmd(opts),
		newZScoreCmd(opts),
		newLoadCmd(opts),
		newSeedCmd(opts),
	)
	return cmd
}

// load resolves configuration and initializes logging for every subcommand.
func (o *rootOptions) load(cmd *cobra.Command, _ []string) error {
	path := o.configPath
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	cfg, err := config.LoadFile(cmd.Context(), path)
	if err != nil {
		return err
	}

	fs := cmd.Flags()
	if fs.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if fs.Changed("store") {
		cfg.Store = o.store
	}
	if fs.Changed("fixture") {
		cfg.FixturePath = o.fixturePath
	}
	if fs.Changed("dsn") {
		cfg.PostgresDSN = o.postgresDSN
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	format, err := logger.ParseFormat(cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	// Logs go to stderr so command output stays machine readable.
	if err := logger.Init(logger.WithFormat(format), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return err
	}
	o.log = logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		o.log.Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	o.cfg = cfg
	return nil
}
