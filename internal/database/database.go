// Package database centralises sqlx connection helpers.  Three drivers are
// registered so operators can point the service at whichever managed
// database hosts the waitlist table:
//
//	pgx       – jackc/pgx stdlib adapter (default, Postgres)
//	postgres  – lib/pq (Postgres, for environments that pin it)
//	mysql     – go-sql-driver/mysql (MySQL, MariaDB)
//
// Public entry points:
//
//	Open(ctx, driver, dsn)              – conservative pool sizes.
//	OpenWithOptions(ctx, driver, dsn, opts) – fine-grained control.
//
// Both helpers Ping the database before returning so callers can fail fast
// during bootstrap.  Callers should Close() the returned *sqlx.DB.
package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Supported driver names.
const (
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Options tunes the pool returned by OpenWithOptions.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Retries         int           // extra Ping attempts after the first
	RetryBackoff    time.Duration // sleep between Ping attempts
}

// DefaultOptions returns 15 max open, 5 idle, and a 30-minute lifetime.
func DefaultOptions() Options {
	return Options{
		MaxOpenConns:    15,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		Retries:         2,
		RetryBackoff:    500 * time.Millisecond,
	}
}

// Open returns a *sqlx.DB using DefaultOptions.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(ctx, driver, dsn, DefaultOptions())
}

// OpenWithOptions opens a pool for driver and pings it, retrying per opts.
func OpenWithOptions(ctx context.Context, driver, dsn string, opts Options) (*sqlx.DB, error) {
	if !Supported(driver) {
		return nil, fmt.Errorf("database: unsupported driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", driver, err)
	}

	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	for attempt := 0; ; attempt++ {
		err = db.PingContext(ctx)
		if err == nil {
			return db, nil
		}
		if attempt >= opts.Retries {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(opts.RetryBackoff):
		}
	}
	_ = db.Close()
	return nil, fmt.Errorf("database: ping %s: %w", driver, err)
}

// Supported reports whether driver is one of the registered names.
func Supported(driver string) bool {
	switch driver {
	case DriverPgx, DriverPostgres, DriverMySQL:
		return true
	}
	return false
}

// Dialect maps a driver name to its SQL dialect: "postgres" or "mysql".
func Dialect(driver string) string {
	if driver == DriverMySQL {
		return "mysql"
	}
	return "postgres"
}
