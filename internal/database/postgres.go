package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// DB represents a PostgreSQL database connection pool
type DB struct {
	Pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	username      TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	is_active     BOOLEAN NOT NULL DEFAULT FALSE,
	email         TEXT NOT NULL DEFAULT '',
	custom_otp    TEXT NOT NULL DEFAULT '',
	fake_email    TEXT NOT NULL DEFAULT '',
	fake_otp      TEXT NOT NULL DEFAULT '',
	user_token    TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL,
	last_login    TIMESTAMPTZ,
	session_id    TEXT,
	features      JSONB NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS tokens (
	username   TEXT PRIMARY KEY REFERENCES users(username),
	token      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);`

// New creates a new database connection pool using the provided connection URL
// and ensures the account tables exist.
func New(ctx context.Context, dbURL string) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing database URL: %v", err)
	}

	// Set some reasonable pool limits
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5

	pool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %v", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to create schema: %v", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}
