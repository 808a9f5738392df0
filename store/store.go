// Package store persists posts and users in the relational database.
//
// Queries use $N placeholders and RETURNING clauses, which both the
// sqlite and the postgres drivers accept.
package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

type Option func(*base)

// WithClock replaces the time source used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		b.now = now
	}
}

type base struct {
	db  *sql.DB
	now func() time.Time
}

func newBase(db *sql.DB, opts []Option) base {
	b := base{db: db, now: time.Now}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// timestamp is the current time as stored: UTC, microsecond precision.
func (b base) timestamp() time.Time {
	return b.now().UTC().Truncate(time.Microsecond)
}

func isUniqueViolation(err error) bool {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
		}
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
