package alert

import (
	"context"
	"fmt"

	"LagScalper/internal/domain/models"
	phttp "LagScalper/pkg/http"
)

// DiscordConfig holds the webhook endpoint.
type DiscordConfig struct {
	WebhookURL string
}

// Discord delivers alerts through a Discord webhook.
type Discord struct {
	cfg    DiscordConfig
	client *phttp.Client
}

// NewDiscord creates a new Discord notifier.
func NewDiscord(cfg DiscordConfig, client *phttp.Client) *Discord {
	return &Discord{cfg: cfg, client: client}
}

func (d *Discord) Name() string { return "discord" }

// Send posts the formatted signal to the webhook.
func (d *Discord) Send(ctx context.Context, ev *models.SignalEvent) error {
	return d.SendText(ctx, FormatDiscord(ev))
}

// SendText posts raw message content, used for lifecycle notices.
func (d *Discord) SendText(ctx context.Context, text string) error {
	opts := &phttp.RequestOptions{
		Method: phttp.MethodPost,
		URL:    d.cfg.WebhookURL,
		Body: map[string]interface{}{
			"content": text,
		},
	}
	if err := d.client.SendAndParse(ctx, opts, nil); err != nil {
		return fmt.Errorf("discord send: %w", err)
	}
	return nil
}
