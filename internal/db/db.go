// Package db provides a pgxpool-based connection pool with prepared statement
// registration, health checking, and the cache table schema.
package db

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/hoopscore/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// Migrate creates the cache table if it does not exist. It runs over a plain
// connection so it works before the prepared statements can be registered.
func Migrate(ctx context.Context, databaseURL string) error {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Statements returns the prepared statements registered on every connection.
func Statements() map[string]string {
	return map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Cache Store
		"cache_get": "SELECT payload FROM fetch_cache WHERE kind = $1 AND cache_key = $2",
		"cache_put": `INSERT INTO fetch_cache (kind, cache_key, payload, fetched_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (kind, cache_key) DO UPDATE SET
				payload = EXCLUDED.payload,
				fetched_at = EXCLUDED.fetched_at`,
		"cache_count": "SELECT kind, count(*) FROM fetch_cache GROUP BY kind ORDER BY kind",
	}
}

// registerPreparedStatements prepares every statement the cache and health
// checks use.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	for name, sql := range Statements() {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}

// CacheCounts returns the number of cached entries per data kind.
func (p *Pool) CacheCounts(ctx context.Context) (map[string]int, error) {
	rows, err := p.Query(ctx, "cache_count")
	if err != nil {
		return nil, fmt.Errorf("count cache rows: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan cache count: %w", err)
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}
