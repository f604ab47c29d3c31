package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOptions bounds the connection pool.
type PoolOptions struct {
	MaxConns       int32
	MinConns       int32
	MaxIdleTime    time.Duration
	ConnectTimeout time.Duration
}

// DefaultPoolOptions mirrors the sizing the office API has always run with.
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxConns:       20,
		MaxIdleTime:    30 * time.Second,
		ConnectTimeout: 2 * time.Second,
	}
}

// New creates a new PostgreSQL connection pool. The pool connects lazily;
// reachability is established separately by Probe.
func New(ctx context.Context, dsn string, opts PoolOptions) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("platform/db: parse config: %w", err)
	}
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	if opts.MaxIdleTime > 0 {
		config.MaxConnIdleTime = opts.MaxIdleTime
	}
	if opts.ConnectTimeout > 0 {
		config.ConnConfig.ConnectTimeout = opts.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("platform/db: new pool: %w", err)
	}
	return pool, nil
}
