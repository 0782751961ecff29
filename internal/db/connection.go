// Package db provides database connection management, schema and metadata
// for pgedge-salesdash.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-salesdash/internal/logging"
)

// DB is an interface that both *pgxpool.Pool and pgx.Tx satisfy.
// This allows the query and ingestion layers to run against a pool, a
// dedicated transaction or a test double.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PoolOptions holds connection pool settings.
type PoolOptions struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// DefaultPoolOptions returns default connection pool settings.
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxConns:          20,
		MinConns:          2,
		MaxConnLifetime:   30 * time.Minute,
		MaxConnIdleTime:   5 * time.Minute,
		HealthCheckPeriod: 30 * time.Second,
	}
}

// Connect establishes a connection pool with default settings.
func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	return ConnectWithOptions(ctx, connString, DefaultPoolOptions())
}

// ConnectWithOptions establishes a connection pool to the PostgreSQL
// database. Zero-valued options fall back to the defaults.
func ConnectWithOptions(ctx context.Context, connString string, opts PoolOptions) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	defaults := DefaultPoolOptions()
	config.MaxConns = orDefault(opts.MaxConns, defaults.MaxConns)
	config.MinConns = min(orDefault(opts.MinConns, defaults.MinConns), config.MaxConns)
	config.MaxConnLifetime = orDefault(opts.MaxConnLifetime, defaults.MaxConnLifetime)
	config.MaxConnIdleTime = orDefault(opts.MaxConnIdleTime, defaults.MaxConnIdleTime)
	config.HealthCheckPeriod = orDefault(opts.HealthCheckPeriod, defaults.HealthCheckPeriod)

	logging.Debug().
		Str("host", config.ConnConfig.Host).
		Uint16("port", config.ConnConfig.Port).
		Str("database", config.ConnConfig.Database).
		Int32("max_conns", config.MaxConns).
		Msg("Connecting to database")

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.Info().
		Str("host", config.ConnConfig.Host).
		Str("database", config.ConnConfig.Database).
		Int32("max_conns", config.MaxConns).
		Msg("Connected to database")

	return pool, nil
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
