package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vanmoi/vanmoi/internal/store"
)

const (
	readWait       = 90 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 8192
)

// Serve runs the receive loop for one authenticated agent stream. It blocks
// until the connection dies and guarantees the offline transition on every
// exit path. Messages are processed strictly in receive order; streams of
// different agents run in their own goroutines and never block each other.
func (h *Hub) Serve(ctx context.Context, client store.Client, conn *websocket.Conn) {
	h.register(client.ID, conn)

	// Connect itself is a liveness pulse, before any sample arrives.
	h.presence.MarkOnline(ctx, client.ID)

	defer func() {
		h.unregister(client.ID, conn)
		_ = conn.Close()

		// Unconditional: clean close, protocol error, and server shutdown
		// all land here. The request context may already be cancelled at
		// this point, so the offline write gets a detached one.
		cleanupCtx := context.WithoutCancel(ctx)
		h.presence.MarkOffline(cleanupCtx, client.ID)

		if h.offline != nil {
			h.offline(cleanupCtx, client)
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.Error("Agent stream error", "client_id", client.ID, "name", client.Name, "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readWait))

		if msgType != websocket.TextMessage {
			continue
		}

		var rec store.RecordInput
		if err := json.Unmarshal(data, &rec); err != nil {
			// One bad frame never drops a long-lived connection.
			slog.Warn("Invalid record data on agent stream", "client_id", client.ID, "name", client.Name, "error", err)
			continue
		}

		if err := h.records.InsertRecord(ctx, client.ID, rec); err != nil {
			slog.Error("Failed to insert record", "client_id", client.ID, "error", err)
		}
		h.presence.MarkOnline(ctx, client.ID)
	}
}
