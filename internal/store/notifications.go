package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateNotification(ctx context.Context, name, provider string, config json.RawMessage) (Notification, error) {
	rows, err := s.pool.Query(ctx,
		`INSERT INTO notifications (name, provider, config) VALUES ($1, $2, $3) RETURNING *`,
		name, provider, config)
	if err != nil {
		return Notification{}, fmt.Errorf("create notification: %w", err)
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[Notification])
}

func (s *Store) AllNotifications(ctx context.Context) ([]Notification, error) {
	rows, err := s.pool.Query(ctx, `SELECT * FROM notifications ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[Notification])
}

func (s *Store) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

// OfflineNotificationsForClient returns the enabled providers that should fire
// when the given client drops offline.
func (s *Store) OfflineNotificationsForClient(ctx context.Context, clientID uuid.UUID) ([]Notification, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT n.* FROM notifications n
		 JOIN offline_notifications o ON o.notification_id = n.id
		 WHERE o.client_id = $1 AND o.enabled = TRUE AND n.enabled = TRUE`,
		clientID)
	if err != nil {
		return nil, fmt.Errorf("query offline notifications: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[Notification])
}
