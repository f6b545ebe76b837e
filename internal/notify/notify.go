// Package notify delivers human-readable alerts through configured providers.
// Delivery is fire-and-forget from the caller's perspective: the rest of the
// system only needs dispatch(title, message) to exist, not to succeed.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// TelegramConfig is the provider config for Telegram bots.
type TelegramConfig struct {
	BotToken string `json:"bot_token"`
	ChatID   string `json:"chat_id"`
}

// EmailConfig is the provider config for SMTP delivery.
type EmailConfig struct {
	SmtpHost string `json:"smtp_host"`
	SmtpPort int    `json:"smtp_port"`
	SmtpUser string `json:"smtp_user"`
	SmtpPass string `json:"smtp_pass"`
	FromAddr string `json:"from_addr"`
	ToAddr   string `json:"to_addr"`
}

// WebhookConfig is the provider config for generic HTTP callbacks.
type WebhookConfig struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
}

type Dispatcher struct {
	client *http.Client

	// telegramAPI is overridable for tests.
	telegramAPI string
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		client:      &http.Client{Timeout: 10 * time.Second},
		telegramAPI: "https://api.telegram.org",
	}
}

// Send dispatches one notification through the named provider.
func (d *Dispatcher) Send(ctx context.Context, provider string, config json.RawMessage, title, message string) error {
	switch provider {
	case "telegram":
		var cfg TelegramConfig
		if err := json.Unmarshal(config, &cfg); err != nil {
			return fmt.Errorf("telegram config: %w", err)
		}
		return d.sendTelegram(ctx, cfg, title, message)
	case "email":
		var cfg EmailConfig
		if err := json.Unmarshal(config, &cfg); err != nil {
			return fmt.Errorf("email config: %w", err)
		}
		return d.sendEmail(ctx, cfg, title, message)
	case "webhook":
		var cfg WebhookConfig
		if err := json.Unmarshal(config, &cfg); err != nil {
			return fmt.Errorf("webhook config: %w", err)
		}
		return d.sendWebhook(ctx, cfg, title, message)
	default:
		return fmt.Errorf("unknown notification provider: %s", provider)
	}
}

func (d *Dispatcher) sendTelegram(ctx context.Context, cfg TelegramConfig, title, message string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", d.telegramAPI, cfg.BotToken)

	body, err := json.Marshal(map[string]string{
		"chat_id":    cfg.ChatID,
		"text":       fmt.Sprintf("*%s*\n\n%s", title, message),
		"parse_mode": "Markdown",
	})
	if err != nil {
		return err
	}

	return d.post(ctx, url, nil, body)
}

// sendEmail is a stub until an SMTP sender is wired in.
// TODO: deliver via SMTP once the settings UI exposes server credentials.
func (d *Dispatcher) sendEmail(_ context.Context, cfg EmailConfig, title, _ string) error {
	slog.Info("Email notification logged only", "to", cfg.ToAddr, "title", title)
	return nil
}

func (d *Dispatcher) sendWebhook(ctx context.Context, cfg WebhookConfig, title, message string) error {
	body, err := json.Marshal(map[string]string{
		"title":     title,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	return d.post(ctx, cfg.URL, cfg.Headers, body)
}

func (d *Dispatcher) post(ctx context.Context, url string, headers map[string]string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned %s", resp.Status)
	}
	return nil
}
