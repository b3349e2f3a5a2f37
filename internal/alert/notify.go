package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// Notifier delivers a triggered alert to an external channel.
type Notifier interface {
	Send(ctx context.Context, a Alert) error
}

// WebhookNotifier POSTs alerts as JSON to a webhook URL.
type WebhookNotifier struct {
	http   *resty.Client
	url    string
	logger *slog.Logger
}

// NewWebhookNotifier creates a webhook notifier with the given delivery
// timeout.
func NewWebhookNotifier(url string, timeout time.Duration, logger *slog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		http:   resty.New().SetTimeout(timeout),
		url:    url,
		logger: logger,
	}
}

func (w *WebhookNotifier) Send(ctx context.Context, a Alert) error {
	resp, err := w.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(a).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook post: status %d", resp.StatusCode())
	}
	w.logger.Info("webhook alert sent", "rule", a.RuleName, "url", w.url)
	return nil
}

// EmailNotifier is a stub that logs the email it would send. A production
// deployment would plug an SMTP or provider-API implementation in behind
// the same interface.
type EmailNotifier struct {
	recipient string
	logger    *slog.Logger
}

// NewEmailNotifier creates an email notifier stub for the given recipient.
func NewEmailNotifier(recipient string, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{recipient: recipient, logger: logger}
}

func (e *EmailNotifier) Send(_ context.Context, a Alert) error {
	e.logger.Info("email alert",
		"to", e.recipient,
		"subject", "[SeismoAlert] "+a.RuleName,
		"body", a.Message,
	)
	return nil
}
