package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/fatflowers/hubreport/internal/app"
	"github.com/fatflowers/hubreport/internal/app/service/crawl"
	"github.com/fatflowers/hubreport/internal/app/service/report"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:          "hubreport-batch",
		Short:        "Crawl hub memberships and build monthly reports",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				return os.Setenv("APP_CONFIG_FILE", configFile)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (default: ./config.yaml)")

	rootCmd.AddCommand(
		newCrawlCommand(),
		newReportCommand(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// drivers is what a batch command runs against.
type drivers struct {
	crawler *crawl.Service
	reports *report.Service
}

// withApp builds the graph without the HTTP server, runs fn and prints its
// result as JSON. The graph is stopped whatever fn returns.
func withApp(ctx context.Context, fn func(ctx context.Context, d drivers) (any, error)) (err error) {
	var d drivers
	a := fx.New(app.Core, fx.Populate(&d.crawler, &d.reports))
	if err := a.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, app.DefaultStartTimeout)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), app.DefaultStopTimeout)
		defer cancel()
		if stopErr := a.Stop(stopCtx); stopErr != nil && err == nil {
			err = stopErr
		}
	}()

	res, err := fn(ctx, d)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
