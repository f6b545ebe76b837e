// Package liveness owns the online/offline projection for every client.
//
// Any ingestion event (HTTP report, streaming frame, streaming connect) pulses
// a client online; only a streaming disconnect or an admin action takes it
// offline. There is deliberately no background sweep demoting stale HTTP-only
// reporters: consumers that need a staleness guarantee must compare
// last_seen_at against their own threshold.
package liveness

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// StatusStore is the single storage operation behind every transition. The
// implementation must be a per-row atomic update; last-writer-wins on the
// timestamp is fine because concurrent writers assert the same fact.
type StatusStore interface {
	SetClientOnline(ctx context.Context, id uuid.UUID, online bool) error
}

type Tracker struct {
	store StatusStore
}

func NewTracker(store StatusStore) *Tracker {
	return &Tracker{store: store}
}

// MarkOnline records a liveness pulse. Failures are logged and swallowed:
// status bookkeeping is best-effort and must never abort the ingestion that
// triggered it.
func (t *Tracker) MarkOnline(ctx context.Context, id uuid.UUID) {
	if err := t.store.SetClientOnline(ctx, id, true); err != nil {
		slog.Error("Failed to update client online status", "client_id", id, "error", err)
	}
}

// MarkOffline records a disconnect. Same best-effort contract as MarkOnline.
func (t *Tracker) MarkOffline(ctx context.Context, id uuid.UUID) {
	if err := t.store.SetClientOnline(ctx, id, false); err != nil {
		slog.Error("Failed to update client offline status", "client_id", id, "error", err)
	}
}
