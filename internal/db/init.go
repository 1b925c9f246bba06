// Package db opens the SQL database backing the key-value store and creates its schema.
package db

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverPostgres is the lib/pq driver name.
	DriverPostgres = "postgres"
	// DriverSQLite is the go-sqlite3 driver name.
	DriverSQLite = "sqlite3"
)

// ErrUnknownDriver is returned by Open for drivers other than postgres and sqlite3.
var ErrUnknownDriver = errors.New("unsupported driver")

// Schema is shared by both drivers; the upsert in storage.SQLStore relies on
// the primary key.
const Schema = `
CREATE TABLE IF NOT EXISTS kv_store (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// Open connects to the database with the given driver, checks the
// connection and creates the key-value table.
func Open(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if err := Init(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Init pings db and creates the schema.
func Init(db *sql.DB) error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
