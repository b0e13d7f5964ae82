package commands

import (
	"time"

	"github.com/K0NGR3SS/dailycheck/internal/config"
	"github.com/K0NGR3SS/dailycheck/internal/daemon"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daily check on a schedule and expose Prometheus metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()

		d, err := daemon.New(a.orchestrator, daemon.Config{
			Interval:    cfg.Interval,
			MetricsAddr: cfg.MetricsAddr,
			Metrics:     a.metrics.Handler(),
			Logger:      logger,
		})
		if err != nil {
			return err
		}

		logger.Info().Dur("interval", cfg.Interval).Str("metrics_addr", cfg.MetricsAddr).Msg("dailycheck serving")
		return d.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().Duration("interval", 24*time.Hour, "Time between daily checks")
	serveCmd.Flags().String("metrics-addr", config.DefaultMetricsAddr, "Listen address for /metrics and /healthz (empty disables)")
	rootCmd.AddCommand(serveCmd)
}
