package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/fatflowers/hubreport/pkg/dateutil"
)

func newCrawlCommand() *cobra.Command {
	var date, from, to, hub string
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Fetch membership snapshots and apply them to the ledger",
		Long: `Fetches the Cobot membership list of each hub for one day (--date) or for
every day of an inclusive range (--from, --to) and applies it to the plan
ledger. A hub and date that cannot be fetched is recorded and skipped.`,
		Example: `  hubreport-batch crawl --date 2016-03-01
  hubreport-batch crawl --from 2016-01-01 --to 2016-03-31 --hub berlin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" && from == "" {
				return errors.New("either --date or --from/--to is required")
			}
			if date != "" {
				from, to = date, date
			}
			start, err := dateutil.ParseDate(from)
			if err != nil {
				return err
			}
			end, err := dateutil.ParseDate(to)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, d drivers) (any, error) {
				return d.crawler.ProcessRange(ctx, start, end, hub)
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Day to crawl, YYYY-MM-DD")
	cmd.Flags().StringVar(&from, "from", "", "First day of the range, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "Last day of the range, YYYY-MM-DD")
	cmd.Flags().StringVar(&hub, "hub", "", "Hub name (default: every hub)")
	cmd.MarkFlagsMutuallyExclusive("date", "from")
	cmd.MarkFlagsMutuallyExclusive("date", "to")
	cmd.MarkFlagsRequiredTogether("from", "to")
	return cmd
}
