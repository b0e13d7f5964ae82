package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRegion      = "us-east-1"
	DefaultMetricsAddr = ":9102"
)

var ErrMissingWebhook = errors.New("webhook url is not configured: set webhook.url, webhook.url_parameter or DAILYCHECK_WEBHOOK_URL")

type Config struct {
	Region       string        `yaml:"region"`
	Profile      string        `yaml:"profile"`
	Webhook      WebhookConfig `yaml:"webhook"`
	TaskTimeout  time.Duration `yaml:"task_timeout"`
	KeyCheckMode string        `yaml:"key_check_mode"`
	AdminAudit   bool          `yaml:"admin_audit"`
	Interval     time.Duration `yaml:"interval"`
	MetricsAddr  string        `yaml:"metrics_addr"`
	Log          LogConfig     `yaml:"log"`
}

type WebhookConfig struct {
	URL string `yaml:"url"`
	// URLParameter names an SSM parameter holding the URL; read when URL is empty.
	URLParameter string        `yaml:"url_parameter"`
	ImageURL     string        `yaml:"image_url"`
	Timeout      time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		Region:       DefaultRegion,
		TaskTimeout:  5 * time.Minute,
		KeyCheckMode: "grouped",
		Interval:     24 * time.Hour,
		MetricsAddr:  DefaultMetricsAddr,
		Webhook:      WebhookConfig{Timeout: 30 * time.Second},
		Log:          LogConfig{Level: "info", Format: "pretty"},
	}
}

// LoadConfig reads a YAML file on top of the defaults. An empty path only
// returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overlays the environment. lookup is os.LookupEnv outside tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("DAILYCHECK_WEBHOOK_URL"); ok && v != "" {
		c.Webhook.URL = v
	}
	if v, ok := lookup("DAILYCHECK_WEBHOOK_PARAMETER"); ok && v != "" {
		c.Webhook.URLParameter = v
	}
	if v, ok := lookup("DAILYCHECK_REGION"); ok && v != "" {
		c.Region = v
	} else if v, ok := lookup("AWS_REGION"); ok && v != "" && c.Region == DefaultRegion {
		c.Region = v
	}
	if v, ok := lookup("AWS_PROFILE"); ok && v != "" && c.Profile == "" {
		c.Profile = v
	}
	if v, ok := lookup("DAILYCHECK_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("DAILYCHECK_TASK_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid DAILYCHECK_TASK_TIMEOUT: %w", err)
		}
		c.TaskTimeout = d
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}
	if c.KeyCheckMode != "" && c.KeyCheckMode != "grouped" && c.KeyCheckMode != "legacy" {
		return fmt.Errorf("invalid key_check_mode: %s", c.KeyCheckMode)
	}
	if c.Log.Format != "" && c.Log.Format != "pretty" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log.format: %s", c.Log.Format)
	}
	if c.TaskTimeout < 0 {
		return fmt.Errorf("task_timeout must not be negative")
	}
	if c.Webhook.Timeout < 0 {
		return fmt.Errorf("webhook.timeout must not be negative")
	}
	return nil
}

// RequireWebhook fails fast when no webhook source is configured at all.
func (c *Config) RequireWebhook() error {
	if c.Webhook.URL == "" && c.Webhook.URLParameter == "" {
		return ErrMissingWebhook
	}
	return nil
}
