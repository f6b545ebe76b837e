package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendUnknownProvider(t *testing.T) {
	d := NewDispatcher()

	err := d.Send(context.Background(), "carrier-pigeon", json.RawMessage(`{}`), "t", "m")
	assert.ErrorContains(t, err, "unknown notification provider")
}

func TestSendInvalidConfig(t *testing.T) {
	d := NewDispatcher()

	err := d.Send(context.Background(), "telegram", json.RawMessage(`not json`), "t", "m")
	assert.ErrorContains(t, err, "telegram config")
}

func TestSendWebhook(t *testing.T) {
	var gotBody map[string]string
	var gotHeader string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Custom")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	config, _ := json.Marshal(WebhookConfig{
		URL:     srv.URL,
		Headers: map[string]string{"X-Custom": "abc"},
	})

	d := NewDispatcher()
	err := d.Send(context.Background(), "webhook", config, "Server Offline", "node-1 went offline.")
	require.NoError(t, err)

	assert.Equal(t, "abc", gotHeader)
	assert.Equal(t, "Server Offline", gotBody["title"])
	assert.Equal(t, "node-1 went offline.", gotBody["message"])
	assert.NotEmpty(t, gotBody["timestamp"])
}

func TestSendWebhookNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	config, _ := json.Marshal(WebhookConfig{URL: srv.URL})

	d := NewDispatcher()
	err := d.Send(context.Background(), "webhook", config, "t", "m")
	assert.ErrorContains(t, err, "502")
}

func TestSendTelegram(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	d := NewDispatcher()
	d.telegramAPI = srv.URL

	config, _ := json.Marshal(TelegramConfig{BotToken: "123:abc", ChatID: "42"})
	err := d.Send(context.Background(), "telegram", config, "Server Offline", "node-1 went offline.")
	require.NoError(t, err)

	assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
	assert.Equal(t, "42", gotBody["chat_id"])
	assert.Equal(t, "Markdown", gotBody["parse_mode"])
	assert.Contains(t, gotBody["text"], "Server Offline")
	assert.Contains(t, gotBody["text"], "node-1 went offline.")
}

func TestSendEmailIsLogOnly(t *testing.T) {
	d := NewDispatcher()

	config, _ := json.Marshal(EmailConfig{ToAddr: "ops@example.com"})
	err := d.Send(context.Background(), "email", config, "t", "m")
	assert.NoError(t, err)
}
