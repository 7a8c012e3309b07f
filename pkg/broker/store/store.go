// Package store provides the key/value persistence layer backing the
// broker's token records.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no value exists for a key.
var ErrNotFound = errors.New("not found")

// Store is an atomic key/value mapping. Keys are `<user>_<provider>_token`,
// values are TokenRecord JSON. Implementations must be safe for concurrent
// use; concurrent writers to the same key are resolved last-write-wins.
type Store interface {
	// Get returns the value for a key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores a value under a key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes the value for a key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error

	// List returns all stored keys.
	List(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}
