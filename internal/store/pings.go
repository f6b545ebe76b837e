package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (s *Store) CreatePingTask(ctx context.Context, name, target string, intervalSeconds, timeoutSeconds int32) (PingTask, error) {
	rows, err := s.pool.Query(ctx,
		`INSERT INTO ping_tasks (name, target, interval_seconds, timeout_seconds)
		 VALUES ($1, $2, $3, $4)
		 RETURNING *`,
		name, target, intervalSeconds, timeoutSeconds)
	if err != nil {
		return PingTask{}, fmt.Errorf("create ping task: %w", err)
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[PingTask])
}

func (s *Store) AllPingTasks(ctx context.Context) ([]PingTask, error) {
	rows, err := s.pool.Query(ctx, `SELECT * FROM ping_tasks ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query ping tasks: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[PingTask])
}

func (s *Store) EnabledPingTasks(ctx context.Context) ([]PingTask, error) {
	rows, err := s.pool.Query(ctx, `SELECT * FROM ping_tasks WHERE enabled = TRUE ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query ping tasks: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[PingTask])
}

func (s *Store) DeletePingTask(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM ping_tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete ping task: %w", err)
	}
	return nil
}

func (s *Store) InsertPingRecord(ctx context.Context, taskID uuid.UUID, clientID *uuid.UUID, latencyMs *float32, success bool) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO ping_records (task_id, client_id, latency_ms, success) VALUES ($1, $2, $3, $4)`,
		taskID, clientID, latencyMs, success)
	if err != nil {
		return fmt.Errorf("insert ping record: %w", err)
	}
	return nil
}

func (s *Store) RecentPingRecords(ctx context.Context, taskID uuid.UUID, limit int32) ([]PingRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT * FROM ping_records WHERE task_id = $1 ORDER BY time DESC LIMIT $2`,
		taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("query ping records: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[PingRecord])
}
