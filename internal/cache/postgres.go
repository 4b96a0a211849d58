package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the Postgres store needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres persists entries in the fetch_cache table. It relies on the
// cache_get and cache_put prepared statements registered by package db.
type Postgres struct {
	q Querier
}

// NewPostgres creates a Postgres-backed store.
func NewPostgres(q Querier) *Postgres {
	return &Postgres{q: q}
}

// Get implements Store.
func (p *Postgres) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	var payload []byte
	err := p.q.QueryRow(ctx, "cache_get", string(key.Kind), key.String()).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return payload, true, nil
}

// Put implements Store. Existing rows are overwritten.
func (p *Postgres) Put(ctx context.Context, key Key, data []byte) error {
	if _, err := p.q.Exec(ctx, "cache_put", string(key.Kind), key.String(), data); err != nil {
		return fmt.Errorf("cache put %s: %w", key, err)
	}
	return nil
}
