// Package storage opens the shared PostgreSQL pool.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pool sizing; the server and CLI tools use different limits
type PoolOptions struct {
	MaxConns int32
	MinConns int32
}

var (
	ServerPool = PoolOptions{MaxConns: 5, MinConns: 1}
	WorkerPool = PoolOptions{MaxConns: 3, MinConns: 0}
)

// parses the connection string and returns a pinged pool
func NewPool(ctx context.Context, connString string, opts PoolOptions) (*pgxpool.Pool, error) {
	poolConfig, err := NewPoolConfig(connString, opts)
	if err != nil {
		return nil, err
	}

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// builds a pool config safe for the supabase pooler
func NewPoolConfig(connString string, opts PoolOptions) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// the pooler only offers a handful of connections, keep ours small
	poolConfig.MaxConns = opts.MaxConns
	poolConfig.MinConns = opts.MinConns
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// pgbouncer in transaction mode doesn't support prepared statements,
	// which causes connections to hang on subsequent queries
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	return poolConfig, nil
}
