package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateSession(ctx context.Context, userID uuid.UUID, token string, userAgent, ipAddress *string, ttl time.Duration) (Session, error) {
	expiresAt := time.Now().Add(ttl)

	rows, err := s.pool.Query(ctx,
		`INSERT INTO sessions (user_id, token, user_agent, ip_address, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING *`,
		userID, token, userAgent, ipAddress, expiresAt)
	if err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[Session])
}

// FindSessionByToken only returns live sessions. The expiry check lives in the
// query: an expired row still present in storage is invisible to callers.
func (s *Store) FindSessionByToken(ctx context.Context, token string) (Session, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT * FROM sessions WHERE token = $1 AND expires_at > NOW()`, token)
	if err != nil {
		return Session{}, fmt.Errorf("query session: %w", err)
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[Session])
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Store) SessionsForUser(ctx context.Context, userID uuid.UUID) ([]Session, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT * FROM sessions WHERE user_id = $1 AND expires_at > NOW() ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[Session])
}
