// Package storage provides the key-value stores backing the SDK's local state.
package storage

import "errors"

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("key not found")

// DB is the interface for key-value storage.
type DB interface {
	// Get returns ErrNotFound for a missing key.
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	// ForEach calls fn for every key with the given prefix. fn receives
	// copies and may stop the walk by returning an error.
	ForEach(prefix []byte, fn func(key, value []byte) error) error
	// NewBatch starts a write set that is applied atomically on Commit.
	NewBatch() Batch
	Close() error
}

// Batch collects writes and applies them together on Commit.
type Batch interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	Commit() error
}
