// Package db opens the relational store and keeps its schema current.
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// DefaultSQLiteDSN is used when no DB_URL is configured.
const DefaultSQLiteDSN = "./postapi.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

//go:embed migrations
var migrations embed.FS

// Open connects to the database behind driver and checks it is reachable.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}
	case DriverPostgres:
		if dsn == "" {
			return nil, errors.New("postgres requires a DB_URL")
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening %s database: %w", driver, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error reaching %s database: %w", driver, err)
	}
	return sqlDB, nil
}

// Migrate applies every pending up migration for driver. An already
// current schema is reported as migrate.ErrNoChange.
func Migrate(sqlDB *sql.DB, driver string) error {
	var (
		dbDriver database.Driver
		dialect  string
		err      error
	)
	switch driver {
	case DriverSQLite:
		dialect = "sqlite"
		dbDriver, err = sqlite.WithInstance(sqlDB, &sqlite.Config{})
	case DriverPostgres:
		dialect = "postgres"
		dbDriver, err = migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return fmt.Errorf("error preparing migration driver: %w", err)
	}

	src, err := iofs.New(migrations, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("error reading embedded migrations: %w", err)
	}
	defer src.Close()

	m, err := migrate.NewWithInstance("iofs", src, driver, dbDriver)
	if err != nil {
		return err
	}
	return m.Up()
}
