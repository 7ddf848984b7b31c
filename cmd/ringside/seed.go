package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/ringside/internal/seed"
)

func newSeedCmd(o *rootOptions) *cobra.Command {
	cfg := seed.DefaultConfig()
	var (
		output string
		today  string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a deterministic synthetic dataset as a YAML fixture",
		Long: `Generate coaches, athletes, jump test events and training sessions.
The first coach is the admin (house) account and every second coach shares
data. The same flags always produce the same fixture.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if today != "" {
				t, err := time.Parse(time.DateOnly, today)
				if err != nil {
					return fmt.Errorf("invalid --today: %w", err)
				}
				cfg.Today = t
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				fh, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer fh.Close()
				w = fh
			}
			if err := seed.Write(cmd.Context(), w, cfg); err != nil {
				return err
			}
			if output != "" && output != "-" {
				o.log.Info(cmd.Context(), "fixture written")
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.IntVar(&cfg.Coaches, "coaches", cfg.Coaches, "number of coaches")
	fs.IntVar(&cfg.AthletesPerCoach, "athletes", cfg.AthletesPerCoach, "athletes per coach")
	fs.IntVar(&cfg.EventsPerAthlete, "events", cfg.EventsPerAthlete, "test events per athlete")
	fs.IntVar(&cfg.SessionDays, "days", cfg.SessionDays, "days of training history per athlete")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	fs.StringVar(&today, "today", "", "anchor date YYYY-MM-DD (default today)")
	fs.StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
