package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (User, error) {
	rows, err := s.pool.Query(ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING *`,
		username, passwordHash)
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[User])
}

// FindUserByUsername returns pgx.ErrNoRows when no such user exists.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (User, error) {
	rows, err := s.pool.Query(ctx, `SELECT * FROM users WHERE username = $1`, username)
	if err != nil {
		return User{}, fmt.Errorf("query user: %w", err)
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[User])
}

func (s *Store) FindUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	rows, err := s.pool.Query(ctx, `SELECT * FROM users WHERE id = $1`, id)
	if err != nil {
		return User{}, fmt.Errorf("query user: %w", err)
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[User])
}

func (s *Store) UpdateUserPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *Store) HasUsers(ctx context.Context) (bool, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}
