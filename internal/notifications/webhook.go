package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type Notifier interface {
	Notify(ctx context.Context, card MessageCard) error
}

// WebhookNotifier posts cards to a single incoming-webhook URL. It never
// retries; callers decide what a failed delivery means.
type WebhookNotifier struct {
	WebhookURL string
	client     *http.Client
}

func NewWebhookNotifier(webhookURL string, client *http.Client) *WebhookNotifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookNotifier{
		WebhookURL: webhookURL,
		client:     client,
	}
}

func (w *WebhookNotifier) Notify(ctx context.Context, card MessageCard) error {
	jsonData, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("failed to marshal message card: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message card: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned non-2xx status: %d", resp.StatusCode)
	}

	return nil
}

type observedNotifier struct {
	next    Notifier
	observe func(error)
}

// WithObserver reports the outcome of every delivery to observe.
func WithObserver(n Notifier, observe func(error)) Notifier {
	return &observedNotifier{next: n, observe: observe}
}

func (o *observedNotifier) Notify(ctx context.Context, card MessageCard) error {
	err := o.next.Notify(ctx, card)
	o.observe(err)
	return err
}
