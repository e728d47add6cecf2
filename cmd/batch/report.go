package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/fatflowers/hubreport/pkg/dateutil"
)

func newReportCommand() *cobra.Command {
	var month, from, to, hub string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate monthly member reports from the ledger",
		Long: `Recomputes the new, retained and leaving counters with their revenue for
every hub plan and month, for one month (--month) or an inclusive range
(--from, --to). Re-running a month overwrites its reports.`,
		Example: `  hubreport-batch report --month 2016-03
  hubreport-batch report --from 2016-01 --to 2016-06 --hub berlin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if month == "" && from == "" {
				return errors.New("either --month or --from/--to is required")
			}
			if month != "" {
				from, to = month, month
			}
			start, err := dateutil.ParseMonth(from)
			if err != nil {
				return err
			}
			end, err := dateutil.ParseMonth(to)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, d drivers) (any, error) {
				return d.reports.AggregateRange(ctx, start, end, hub)
			})
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month to aggregate, YYYY-MM")
	cmd.Flags().StringVar(&from, "from", "", "First month of the range, YYYY-MM")
	cmd.Flags().StringVar(&to, "to", "", "Last month of the range, YYYY-MM")
	cmd.Flags().StringVar(&hub, "hub", "", "Hub name (default: every hub)")
	cmd.MarkFlagsMutuallyExclusive("month", "from")
	cmd.MarkFlagsMutuallyExclusive("month", "to")
	cmd.MarkFlagsRequiredTogether("from", "to")
	return cmd
}
