package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/ringside/internal/domain/benchmark"
)

func newZScoreCmd(o *rootOptions) *cobra.Command {
	var (
		who       callerFlags
		sel       scopeFlags
		athleteID string
		eventID   string
		all       bool
	)
	cmd := &cobra.Command{
		Use:   "zscore",
		Short: "Print an athlete's z-score against a reference population",
		Long: `Standardize an athlete's value against its reference population.
Without --event the latest event carrying the metric is used; --all prints
every event keyed by event id.`,
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
			q := benchmark.ZScoreQuery{
				AthleteID: athleteID,
				Metric:    sel.metric,
				EventID:   eventID,
				Group:     group,
				Source:    src,
			}

			svc, err := startService(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer stopService(svc)

			if all {
				res, err := svc.GetZScoresBulk(cmd.Context(), caller, q)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			}
			res, err := svc.GetZScore(cmd.Context(), caller, q)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	fs := cmd.Flags()
	who.register(fs)
	sel.register(fs)
	fs.StringVar(&athleteID, "athlete", "", "athlete id (required)")
	fs.StringVar(&eventID, "event", "", "event id (default latest)")
	fs.BoolVar(&all, "all", false, "standardize every event of the athlete")
	cmd.MarkFlagsMutuallyExclusive("event", "all")
	return cmd
}
