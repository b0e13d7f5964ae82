package commands

import (
	"os"
	"time"

	"github.com/K0NGR3SS/dailycheck/internal/config"
	"github.com/K0NGR3SS/dailycheck/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dailycheck",
	Short: "dailycheck reports stopped EC2 instances and duplicate key pairs",
	Long: `dailycheck inspects an AWS account's EC2 instances and key pairs and posts a
card to an incoming webhook for every instance that is not running and every
key pair name registered more than once, followed by a final completion card.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err = logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
		return err
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	addConfigFlags(rootCmd.PersistentFlags())
}

func addConfigFlags(flags *pflag.FlagSet) {
	flags.StringP("config", "c", "", "Path to a YAML config file")
	flags.StringP("region", "r", config.DefaultRegion, "AWS Region to check")
	flags.StringP("profile", "p", "", "Shared config profile to use")
	flags.String("webhook-url", "", "Incoming webhook URL (overrides config and environment)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "pretty", "Log format (pretty, json)")
	flags.Duration("task-timeout", 5*time.Minute, "Upper bound for each scan task")
	flags.String("key-check-mode", "grouped", "Key pair check: grouped (duplicates by name) or legacy (every key)")
	flags.Bool("admin-audit", false, "Also audit IAM users holding AdministratorAccess")
}

// loadConfig layers defaults, the config file, the environment and finally
// any flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	c, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if flags.Changed("region") {
		c.Region, _ = flags.GetString("region")
	}
	if flags.Changed("profile") {
		c.Profile, _ = flags.GetString("profile")
	}
	if flags.Changed("webhook-url") {
		c.Webhook.URL, _ = flags.GetString("webhook-url")
	}
	if flags.Changed("log-level") {
		c.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		c.Log.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("task-timeout") {
		c.TaskTimeout, _ = flags.GetDuration("task-timeout")
	}
	if flags.Changed("key-check-mode") {
		c.KeyCheckMode, _ = flags.GetString("key-check-mode")
	}
	if flags.Changed("admin-audit") {
		c.AdminAudit, _ = flags.GetBool("admin-audit")
	}
	if flags.Lookup("interval") != nil && flags.Changed("interval") {
		c.Interval, _ = flags.GetDuration("interval")
	}
	if flags.Lookup("metrics-addr") != nil && flags.Changed("metrics-addr") {
		c.MetricsAddr, _ = flags.GetString("metrics-addr")
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
