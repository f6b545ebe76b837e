package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (s *Store) InsertRecord(ctx context.Context, clientID uuid.UUID, rec RecordInput) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO records (
			client_id, cpu, gpu, ram, ram_total, swap, swap_total,
			load, temp, disk, disk_total, net_in, net_out,
			net_total_up, net_total_down, process, connections, connections_udp, uptime
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		clientID, rec.Cpu, rec.Gpu, rec.Ram, rec.RamTotal, rec.Swap, rec.SwapTotal,
		rec.Load, rec.Temp, rec.Disk, rec.DiskTotal, rec.NetIn, rec.NetOut,
		rec.NetTotalUp, rec.NetTotalDown, rec.Process, rec.Connections, rec.ConnectionsUdp, rec.Uptime)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (s *Store) RecentRecords(ctx context.Context, clientID uuid.UUID, limit int32) ([]Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT * FROM records WHERE client_id = $1 ORDER BY time DESC LIMIT $2`,
		clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[Record])
}

func (s *Store) LatestRecord(ctx context.Context, clientID uuid.UUID) (Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT * FROM records WHERE client_id = $1 ORDER BY time DESC LIMIT 1`,
		clientID)
	if err != nil {
		return Record{}, fmt.Errorf("query record: %w", err)
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[Record])
}

// DeleteOldRecords purges samples older than the given number of days and
// returns how many rows went away.
func (s *Store) DeleteOldRecords(ctx context.Context, days int32) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM records WHERE time < NOW() - INTERVAL '1 day' * $1::integer`, days)
	if err != nil {
		return 0, fmt.Errorf("delete old records: %w", err)
	}
	return tag.RowsAffected(), nil
}
