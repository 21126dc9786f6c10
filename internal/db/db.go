// Package db provides PostgreSQL data access for the CareerDesk API.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is wrapped by lookups that target a specific record by ID.
var ErrNotFound = errors.New("not found")

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool

	// PublicBaseURL is prepended to logo paths when building stored logo
	// URLs. Set by the caller after Connect.
	PublicBaseURL string
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
    id               UUID PRIMARY KEY,
    title            TEXT NOT NULL,
    company          TEXT NOT NULL,
    city             TEXT NOT NULL DEFAULT '',
    country          TEXT NOT NULL DEFAULT '',
    description      TEXT NOT NULL,
    employment_type  TEXT NOT NULL,
    category         TEXT NOT NULL,
    experience_level TEXT NOT NULL,
    remote           BOOLEAN NOT NULL DEFAULT FALSE,
    salary_min       DOUBLE PRECISION NOT NULL DEFAULT 0,
    salary_max       DOUBLE PRECISION NOT NULL DEFAULT 0,
    salary_currency  TEXT NOT NULL DEFAULT 'USD',
    highlights       JSONB NOT NULL DEFAULT '{}'::jsonb,
    tags             JSONB,
    coordinates      JSONB,
    apply_link       TEXT NOT NULL,
    external_link    TEXT,
    logo_url         TEXT,
    expiry_date      TIMESTAMPTZ NOT NULL,
    posted_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    posted_by        TEXT NOT NULL DEFAULT '',
    applications     INTEGER NOT NULL DEFAULT 0,
    views            INTEGER NOT NULL DEFAULT 0,
    popularity       INTEGER NOT NULL DEFAULT 0,
    is_popular       BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_jobs_posted_at ON jobs (posted_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_jobs_expiry_date ON jobs (expiry_date);

CREATE TABLE IF NOT EXISTS counselors (
    id               UUID PRIMARY KEY,
    name             TEXT NOT NULL,
    email            TEXT NOT NULL UNIQUE,
    password_hash    TEXT NOT NULL,
    photo_url        TEXT NOT NULL DEFAULT '',
    specialty        TEXT NOT NULL DEFAULT '',
    bio              TEXT NOT NULL DEFAULT '',
    experience_years INTEGER NOT NULL DEFAULT 0,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS job_logos (
    job_id       UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
    filename     TEXT NOT NULL,
    content_type TEXT NOT NULL DEFAULT 'application/octet-stream',
    data         BYTEA NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (job_id, filename)
);
`

// Migrate applies the embedded schema. All statements are idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
