package main

import (
	"github.com/spf13/cobra"
)

func newLoadCmd(o *rootOptions) *cobra.Command {
	var (
		who       callerFlags
		athleteID string
		days      int
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Print an athlete's training load analysis",
		Long: `Print daily loads, acute and chronic load, ACWR, monotony and strain
over the window of --days days ending today (UTC).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			caller, err := who.caller()
			if err != nil {
				return err
			}
			svc, err := startService(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer stopService(svc)

			a, err := svc.AnalyzeTrainingLoad(cmd.Context(), caller, athleteID, days)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), a)
		},
	}
	fs := cmd.Flags()
	who.register(fs)
	fs.StringVar(&athleteID, "athlete", "", "athlete id (required)")
	fs.IntVar(&days, "days", 0, "window length in days (default from config)")
	return cmd
}
