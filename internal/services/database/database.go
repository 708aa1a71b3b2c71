// Package database persists builders and leads in PostgreSQL.
package database

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"stand-lead-engine/internal/config"
	"stand-lead-engine/internal/metrics"
)

//go:embed schema.sql
var Schema string

const connectTimeout = 10 * time.Second

// DB wraps the pgx pool. Every statement is timed under an operation label.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to the configured database and pings it.
func New(ctx context.Context, cfg *config.Config) (*DB, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.DBName, err)
	}

	return &DB{pool: pool}, nil
}

// poolConfig sizes the pool. A Lambda instance handles one event at a time
// and keeps a single idle connection.
func poolConfig(cfg *config.Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pc.MaxConns = int32(cfg.DBMaxConns)
	if pc.MaxConns <= 0 {
		pc.MaxConns = 10
	}
	pc.MinConns = 2
	if cfg.InLambda() {
		pc.MaxConns = min(pc.MaxConns, 2)
		pc.MinConns = 1
	}
	pc.MaxConnLifetime = time.Hour
	pc.MaxConnIdleTime = 30 * time.Minute
	pc.HealthCheckPeriod = time.Minute
	return pc, nil
}

// Close closes the pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// HealthCheck verifies database connectivity.
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

func observe(op string, start time.Time) {
	metrics.DBQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (db *DB) exec(ctx context.Context, op, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	defer observe(op, time.Now())
	return db.pool.Exec(ctx, sql, args...)
}

// queryRow is timed up to the point the row is returned; Scan errors
// surface to the caller.
func (db *DB) queryRow(ctx context.Context, op, sql string, args ...interface{}) pgx.Row {
	defer observe(op, time.Now())
	return db.pool.QueryRow(ctx, sql, args...)
}

func (db *DB) query(ctx context.Context, op, sql string, args ...interface{}) (pgx.Rows, error) {
	defer observe(op, time.Now())
	return db.pool.Query(ctx, sql, args...)
}

// WithTransaction runs fn inside a transaction, committing when it returns nil.
func (db *DB) WithTransaction(ctx context.Context, op string, fn func(tx pgx.Tx) error) (err error) {
	defer observe(op, time.Now())

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Migrate creates the builders and leads tables when they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.exec(ctx, "migrate", Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
