package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	pingInterval     = 30 * time.Second
	writeTimeout     = 10 * time.Second
	maxReconnectWait = 2 * time.Minute
)

// Reporter owns the persistent stream to the server. It reconnects with
// exponential backoff for as long as its context lives.
type Reporter struct {
	baseURL   string
	token     string
	collector *Collector
	interval  time.Duration
}

func NewReporter(baseURL, token string, collector *Collector, interval time.Duration) *Reporter {
	return &Reporter{
		baseURL:   baseURL,
		token:     token,
		collector: collector,
		interval:  interval,
	}
}

// Run blocks until ctx is cancelled.
func (r *Reporter) Run(ctx context.Context) {
	wait := time.Second
	for {
		if err := r.session(ctx); err != nil {
			slog.Warn("Stream session ended", "error", err, "retry_in", wait)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		wait *= 2
		if wait > maxReconnectWait {
			wait = maxReconnectWait
		}
	}
}

// session dials once and pushes samples until the connection dies.
func (r *Reporter) session(ctx context.Context) error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+r.token)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, r.streamURL(), header)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return err
	}
	defer func() { _ = conn.Close() }()

	slog.Info("Connected to server", "url", r.streamURL())

	// The server only sends control frames, but a read loop still has to
	// run for them to be processed.
	readErr := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				readErr <- err
				return
			}
		}
	}()

	sampleTicker := time.NewTicker(r.interval)
	defer sampleTicker.Stop()
	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeTimeout))
			return ctx.Err()
		case err := <-readErr:
			return err
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return err
			}
		case <-sampleTicker.C:
			data, err := json.Marshal(r.collector.Sample())
			if err != nil {
				slog.Error("Failed to marshal sample", "error", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return err
			}
		}
	}
}

func (r *Reporter) streamURL() string {
	url := r.baseURL
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return url + "/api/agent/ws"
}
