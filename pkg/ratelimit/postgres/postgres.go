// Package postgres provides a PostgreSQL implementation of ratelimit.Store,
// so counters survive restarts and are shared between server processes.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vango-dev/fsroute/pkg/ratelimit"
)

// hitSQL applies the window policy in one statement. The conditional
// update skips rejected requests, which then return no row.
const hitSQL = `
INSERT INTO rate_limits AS rl (window_name, ip, requests, last_req)
VALUES ($1, $2, 1, $3)
ON CONFLICT (window_name, ip) DO UPDATE
SET requests = CASE WHEN $3 - rl.last_req < $4 THEN rl.requests + 1 ELSE 1 END,
    last_req = $3
WHERE $3 - rl.last_req >= $4 OR rl.requests < $5
RETURNING requests`

// Store is a PostgreSQL-backed ratelimit.Store.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ ratelimit.Store = (*Store)(nil)

// New connects to PostgreSQL. If MigrateOnStart is set, the schema is
// created or upgraded before New returns.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{
		pool:   pool,
		logger: slog.Default().With("component", "ratelimit_postgres"),
	}
	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}
	return s, nil
}

// Hit implements ratelimit.Store.
func (s *Store) Hit(ctx context.Context, w ratelimit.Window, key string, now time.Time) (bool, error) {
	var requests int
	err := s.pool.QueryRow(ctx, hitSQL,
		w.Name, key, now.UnixMilli(), w.Interval.Milliseconds(), w.Maximum,
	).Scan(&requests)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("recording request: %w", err)
	}
	return true, nil
}

// Count returns the stored counter for key in window, 0 if none.
func (s *Store) Count(ctx context.Context, window, key string) (int, error) {
	var requests int
	err := s.pool.QueryRow(ctx,
		"SELECT requests FROM rate_limits WHERE window_name = $1 AND ip = $2",
		window, key,
	).Scan(&requests)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading counter: %w", err)
	}
	return requests, nil
}

// Prune deletes counters whose last allowed request is older than before.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM rate_limits WHERE last_req < $1", before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("pruning counters: %w", err)
	}
	return tag.RowsAffected(), nil
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
