// Package store holds all SQL issued by the server. Every operation is scoped
// to a single row or a single client, so distinct agents never contend on the
// same statement.
package store

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
