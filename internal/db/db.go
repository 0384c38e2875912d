// Package db persists fence state in PostgreSQL.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Options tune the connection pool. Zero values keep the pgx defaults.
type Options struct {
	MaxConns        int32
	HealthCheck     time.Duration
	ConnectTimeout  time.Duration
	ApplyMigrations bool
}

// DB owns the connection pool and hands out repositories.
type DB struct {
	pool *pgxpool.Pool
}

// Open connects to PostgreSQL, verifies the connection and optionally
// brings the schema up to date.
func Open(ctx context.Context, dsn string, opts Options) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database dsn: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.HealthCheck > 0 {
		cfg.HealthCheckPeriod = opts.HealthCheck
	}
	if opts.ConnectTimeout > 0 {
		cfg.ConnConfig.ConnectTimeout = opts.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if opts.ApplyMigrations {
		if err := RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Ping checks that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Fences returns a fence repository over this pool.
func (d *DB) Fences() *FenceRepository {
	return NewFenceRepository(d.pool)
}
