package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLStore keeps values in the kv_store table created by db.Init. The
// queries work unchanged on Postgres and SQLite.
type SQLStore struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewSQLStore creates a SQLStore on top of an initialized database.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

// Get reads the value for key. sql.ErrNoRows is reported as an absent key.
func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Set inserts the value or replaces the existing one.
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO kv_store (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}
