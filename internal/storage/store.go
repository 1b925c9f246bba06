// Package storage provides the string key-value stores that hold the
// persisted note snapshot: in memory, in a JSON file, or in a SQL table.
package storage

import "context"

// Store is a synchronous string key-value store.
type Store interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set overwrites the value stored under key.
	Set(ctx context.Context, key, value string) error
}
