package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/ringside/internal/domain/benchmark"
	"github.com/okian/ringside/internal/domain/scope"
	"github.com/okian/ringside/internal/domain/types"
)

func newBenchmarkCmd(o *rootOptions) *cobra.Command {
	var (
		who      callerFlags
		sel      scopeFlags
		gender   string
		massBand string
		bodyMass float64
	)
	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Print the benchmark of a metric over a reference population",
		Long: `Print count, mean, mode, standard deviation and 95% confidence interval
of a metric over the population selected by --group and --source.

Examples:
  ringside benchmark --coach <id> --metric height_cm
  ringside benchmark --coach <id> --metric rsi --group gender --gender female
  ringside benchmark --coach <id> --metric height_cm --group mass_band --body-mass 72.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			caller, err := who.caller()
			if err != nil {
				return err
			}
			group, src, err := sel.parse()
			if err != nil {
				return err
			}
			q := benchmark.Query{Metric: sel.metric, Group: group, Source: src}
			if gender != "" {
				if q.Gender, err = types.ParseGender(gender); err != nil {
					return err
				}
			}
			if massBand != "" {
				b, err := scope.ParseMassBand(massBand)
				if err != nil {
					return err
				}
				q.MassBand = &b
			}
			if cmd.Flags().Changed("body-mass") {
				q.BodyMass = &bodyMass
			}

			svc, err := startService(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer stopService(svc)

			b, err := svc.GetBenchmarks(cmd.Context(), caller, q)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), b)
		},
	}
	fs := cmd.Flags()
	who.register(fs)
	sel.register(fs)
	fs.StringVar(&gender, "gender", "", "gender for the gender group: male or female")
	fs.StringVar(&massBand, "mass-band", "", "mass band label, e.g. 70-74.9")
	fs.Float64Var(&bodyMass, "body-mass", 0, "body mass in kg; resolves the mass band")
	return cmd
}
