package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// ErrSchemaMissing is returned when the feeding tables are not present.
var ErrSchemaMissing = errors.New("feeding schema missing")

const pingTimeout = 5 * time.Second

// PoolOptions sizes the connection pool.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultPoolOptions fits the notifier's load: one scan query per minute from
// cron plus rate-limited on-demand checks and short CLI runs.
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute, // idle between minute scans is fine
	}
}

// NewPostgresConnection opens the feeding database with DefaultPoolOptions and pings it.
func NewPostgresConnection(dataSourceName string) (*sql.DB, error) {
	return OpenPostgres(dataSourceName, DefaultPoolOptions())
}

func OpenPostgres(dataSourceName string, opts PoolOptions) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	applyPool(db, opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func applyPool(db *sql.DB, opts PoolOptions) {
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
}

const schemaCheckQuery = `SELECT to_regclass('public.feeding_records') IS NOT NULL, to_regclass('public.users') IS NOT NULL`

// VerifySchema checks that the tables the scan joins exist, so a fresh database
// fails at startup instead of on every scan.
func VerifySchema(ctx context.Context, db *sql.DB) error {
	var hasFeeding, hasUsers bool
	if err := db.QueryRowContext(ctx, schemaCheckQuery).Scan(&hasFeeding, &hasUsers); err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	switch {
	case !hasFeeding:
		return fmt.Errorf("%w: table feeding_records not found", ErrSchemaMissing)
	case !hasUsers:
		return fmt.Errorf("%w: table users not found", ErrSchemaMissing)
	}
	return nil
}
