// Package ws carries the persistent telemetry channel between agents and the
// server. Each connection is authenticated once at upgrade time and then owns
// the online flag of its client for as long as it lives.
package ws

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vanmoi/vanmoi/internal/store"
)

// SampleStore persists parsed measurement samples.
type SampleStore interface {
	InsertRecord(ctx context.Context, clientID uuid.UUID, rec store.RecordInput) error
}

// Presence drives the liveness transitions tied to the connection lifecycle.
type Presence interface {
	MarkOnline(ctx context.Context, id uuid.UUID)
	MarkOffline(ctx context.Context, id uuid.UUID)
}

// OfflineFunc is invoked after a client's stream ends and it has been marked
// offline. Fire-and-forget: errors stay inside the hook.
type OfflineFunc func(ctx context.Context, client store.Client)

type Hub struct {
	records  SampleStore
	presence Presence
	offline  OfflineFunc

	mu    sync.RWMutex
	conns map[uuid.UUID]*websocket.Conn
}

func NewHub(records SampleStore, presence Presence, offline OfflineFunc) *Hub {
	return &Hub{
		records:  records,
		presence: presence,
		offline:  offline,
		conns:    make(map[uuid.UUID]*websocket.Conn),
	}
}

func (h *Hub) register(id uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.conns[id]; ok {
		slog.Warn("Agent already connected, replacing connection", "client_id", id)
		_ = existing.Close()
	}
	h.conns[id] = conn

	slog.Info("Agent stream opened", "client_id", id, "total_connections", len(h.conns))
}

// unregister drops the connection from the registry, unless a reconnect has
// already replaced it with a newer one.
func (h *Hub) unregister(id uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.conns[id]; ok && current == conn {
		delete(h.conns, id)
	}

	slog.Info("Agent stream closed", "client_id", id, "total_connections", len(h.conns))
}

// Count returns the number of live agent streams.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Connected reports whether the given client currently has a live stream.
func (h *Hub) Connected(id uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[id]
	return ok
}

// Shutdown closes every live stream. Each receive loop unwinds through its
// cleanup path, so all connected clients end up offline deterministically.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for _, conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}

	slog.Info("All agent streams closed", "count", len(conns))
}
