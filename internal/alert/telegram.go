package alert

import (
	"context"
	"fmt"

	"LagScalper/internal/domain/models"
	phttp "LagScalper/pkg/http"
)

// TelegramConfig holds bot API credentials and target chat.
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// Telegram delivers alerts through the Telegram bot API.
type Telegram struct {
	cfg    TelegramConfig
	client *phttp.Client
}

// NewTelegram creates a new Telegram notifier.
func NewTelegram(cfg TelegramConfig, client *phttp.Client) *Telegram {
	return &Telegram{cfg: cfg, client: client}
}

func (t *Telegram) Name() string { return "telegram" }

// Send posts the formatted signal to the configured chat.
func (t *Telegram) Send(ctx context.Context, ev *models.SignalEvent) error {
	return t.SendText(ctx, FormatTelegram(ev))
}

// SendText posts a raw Markdown message, used for lifecycle notices.
func (t *Telegram) SendText(ctx context.Context, text string) error {
	opts := &phttp.RequestOptions{
		Method: phttp.MethodPost,
		URL:    fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.cfg.BotToken),
		Body: map[string]interface{}{
			"chat_id":    t.cfg.ChatID,
			"text":       text,
			"parse_mode": "Markdown",
		},
	}
	if err := t.client.SendAndParse(ctx, opts, nil); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
