// Package store provides PostgreSQL persistence for postings and acquisition
// run audit records.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Store wraps a PostgreSQL connection pool plus an optional Redis client
// used as a best-effort seen-ID cache by the deduplication gate.
type Store struct {
	pool  *pgxpool.Pool
	cache *redis.Client
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// WithCache attaches a Redis client. The cache only short-circuits duplicate
// checks; correctness always rests on the database uniqueness constraint.
func (s *Store) WithCache(client *redis.Client) *Store {
	s.cache = client
	return s
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables and indexes if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS postings (
    id               BIGSERIAL PRIMARY KEY,
    external_id      TEXT NOT NULL UNIQUE,
    title            TEXT NOT NULL,
    company          TEXT NOT NULL,
    location         TEXT NOT NULL DEFAULT '',
    description      TEXT NOT NULL DEFAULT '',
    employment_type  TEXT,
    seniority_level  TEXT,
    salary_range     TEXT,
    source_url       TEXT NOT NULL DEFAULT '',
    posted_at        TIMESTAMPTZ NOT NULL,
    requires_english BOOLEAN NOT NULL DEFAULT FALSE,
    acquired_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_postings_posted_at ON postings (posted_at DESC);
CREATE INDEX IF NOT EXISTS idx_postings_company ON postings (company);
CREATE INDEX IF NOT EXISTS idx_postings_requires_english ON postings (requires_english);

CREATE TABLE IF NOT EXISTS acquisition_runs (
    id             UUID PRIMARY KEY,
    query_term     TEXT NOT NULL,
    query_location TEXT NOT NULL DEFAULT '',
    max_results    INTEGER NOT NULL DEFAULT 0,
    found_count    INTEGER NOT NULL DEFAULT 0,
    saved_count    INTEGER NOT NULL DEFAULT 0,
    succeeded      BOOLEAN NOT NULL DEFAULT FALSE,
    error_detail   TEXT,
    started_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    completed_at   TIMESTAMPTZ
);
`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
