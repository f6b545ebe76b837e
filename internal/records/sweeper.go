// Package records holds background maintenance over the sample table.
package records

import (
	"context"
	"log/slog"
	"time"
)

const sweepInterval = time.Hour

type Purger interface {
	DeleteOldRecords(ctx context.Context, days int32) (int64, error)
}

// Sweeper deletes samples older than the configured retention window. It is
// the only retention mechanism; there is no compaction.
type Sweeper struct {
	store         Purger
	retentionDays int32
}

func NewSweeper(store Purger, retentionDays int32) *Sweeper {
	return &Sweeper{store: store, retentionDays: retentionDays}
}

// Run blocks until ctx is cancelled. A retention of zero or less disables the
// sweep entirely.
func (s *Sweeper) Run(ctx context.Context) {
	if s.retentionDays <= 0 {
		slog.Info("Record retention sweep disabled")
		return
	}

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	deleted, err := s.store.DeleteOldRecords(ctx, s.retentionDays)
	if err != nil {
		slog.Error("Record retention sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("Purged old records", "deleted", deleted, "retention_days", s.retentionDays)
	}
}
