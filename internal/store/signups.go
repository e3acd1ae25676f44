// internal/store/signups.go
//
// SQL persistence for waitlist signups.
//
// Context
// -------
// The `waitlist_signups` table is owned by the migrations package:
//
//	waitlist_signups (id PK, first_name, last_name, email UNIQUE,
//	                  who_are_you, created_at)
//
// Signups satisfies signup.Store and signup.Counter.  Queries are written
// with `?` placeholders and rebound once for the pool's driver, so the same
// code runs against Postgres (pgx, lib/pq) and MySQL.
//
// Driver errors are wrapped in *signup.BackendError whose Code is the
// SQLSTATE extracted by database.SQLState.  The coordinator relies on that
// code alone to tell duplicates from everything else.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/waitlist/internal/database"
	"github.com/yanizio/waitlist/internal/signup"
)

// Table is the signups table name.
const Table = "waitlist_signups"

const (
	insertSQL = `INSERT INTO ` + Table + ` (first_name, last_name, email, who_are_you)
	             VALUES (?, ?, ?, ?)`
	countSQL = `SELECT COUNT(*) FROM ` + Table
)

// Compile-time assertions.
var (
	_ signup.Store   = (*Signups)(nil)
	_ signup.Counter = (*Signups)(nil)
)

// Signups reads and writes the signups table.
type Signups struct {
	db      *sqlx.DB
	insertQ string
	countQ  string
}

// NewSignups binds the queries to db's placeholder style.
func NewSignups(db *sqlx.DB) *Signups {
	return &Signups{
		db:      db,
		insertQ: db.Rebind(insertSQL),
		countQ:  db.Rebind(countSQL),
	}
}

// Insert stores one validated signup.
func (s *Signups) Insert(ctx context.Context, req signup.Request) error {
	_, err := s.db.ExecContext(ctx, s.insertQ,
		req.FirstName, req.LastName, req.Email, string(req.Category))
	if err != nil {
		return &signup.BackendError{Code: database.SQLState(err), Err: err}
	}
	return nil
}

// Count returns the number of stored signups.
func (s *Signups) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.countQ); err != nil {
		return 0, &signup.BackendError{Code: database.SQLState(err), Err: err}
	}
	return n, nil
}
