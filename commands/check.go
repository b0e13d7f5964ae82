package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/K0NGR3SS/dailycheck/internal/ui"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the daily check once",
	Long: `Lists every EC2 instance and key pair in the region concurrently, posts a card
for each anomaly, waits for both scans and posts the completion card. Exits
non-zero when a scan failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if !quiet {
			ui.PrintBanner(Version)
		}

		a, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()

		report, err := a.orchestrator.RunDailyCheck(ctx)
		if !quiet {
			ui.PrintReport(report)
		}
		return err
	},
}

func init() {
	checkCmd.Flags().BoolP("quiet", "q", false, "Skip the banner and summary table")
	rootCmd.AddCommand(checkCmd)
}
