package commands

import (
	"context"
	"fmt"
	"net/http"

	awsclient "github.com/K0NGR3SS/dailycheck/internal/aws"
	"github.com/K0NGR3SS/dailycheck/internal/config"
	"github.com/K0NGR3SS/dailycheck/internal/metrics"
	"github.com/K0NGR3SS/dailycheck/internal/models"
	"github.com/K0NGR3SS/dailycheck/internal/notifications"
	"github.com/K0NGR3SS/dailycheck/internal/orchestrator"
	"github.com/K0NGR3SS/dailycheck/internal/scanner"
	"github.com/rs/zerolog"
)

type app struct {
	orchestrator *orchestrator.Orchestrator
	metrics      *metrics.Metrics
	close        func()
}

// buildApp resolves AWS credentials and the webhook URL, then assembles the
// orchestrator. The returned close func must run on every exit path.
func buildApp(ctx context.Context, c *config.Config, log zerolog.Logger) (*app, error) {
	if err := c.RequireWebhook(); err != nil {
		return nil, err
	}

	awsClient, err := awsclient.NewClient(ctx, c.Region, c.Profile)
	if err != nil {
		return nil, err
	}

	webhookURL := c.Webhook.URL
	if webhookURL == "" {
		webhookURL, err = awsclient.ReadParameter(ctx, awsClient.SSM, c.Webhook.URLParameter)
		if err != nil {
			return nil, fmt.Errorf("resolve webhook url: %w", err)
		}
	}

	log.Debug().Str("region", awsClient.Region).Str("profile", c.Profile).Msg("aws client ready")

	httpClient := &http.Client{Timeout: c.Webhook.Timeout}
	m := metrics.New()
	notifier := notifications.WithObserver(
		notifications.NewWebhookNotifier(webhookURL, httpClient),
		m.ObserveNotification,
	)

	o, err := newOrchestrator(c, awsClient.EC2, awsClient.IAM, notifier, log, m)
	if err != nil {
		return nil, err
	}

	return &app{
		orchestrator: o,
		metrics:      m,
		close:        httpClient.CloseIdleConnections,
	}, nil
}

func newOrchestrator(c *config.Config, ec2API scanner.EC2API, iamAPI scanner.IAMAPI, notifier notifications.Notifier, log zerolog.Logger, m *metrics.Metrics) (*orchestrator.Orchestrator, error) {
	mode, err := scanner.ParseKeyCheckMode(c.KeyCheckMode)
	if err != nil {
		return nil, err
	}

	cards := notifications.Cards{ImageURL: c.Webhook.ImageURL}
	tasks := []orchestrator.Task{
		{
			Name: "instances",
			Kind: models.AnomalyInstanceState,
			Run:  scanner.NewInstanceScanner(ec2API, notifier, cards, log).ScanInstances,
		},
		{
			Name: "keypairs",
			Kind: models.AnomalyKeyPair,
			Run:  scanner.NewKeyScanner(ec2API, notifier, cards, mode, log).ScanKeyPairs,
		},
	}
	if c.AdminAudit {
		tasks = append(tasks, orchestrator.Task{
			Name: "admins",
			Kind: models.AnomalyAdmin,
			Run:  scanner.NewAdminAuditor(iamAPI, notifier, cards, log).Audit,
		})
	}

	return orchestrator.New(orchestrator.Config{
		Tasks:       tasks,
		Notifier:    notifier,
		Cards:       cards,
		TaskTimeout: c.TaskTimeout,
		Logger:      log,
		Metrics:     m,
	}), nil
}
