// Package store defines the key-value persistence contract consumed by the
// API handlers, plus the shared key scheme and an in-memory implementation.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no item exists for the given key.
var ErrNotFound = errors.New("item not found")

// ErrConditionFailed is returned by a conditional Put when the key already
// holds an item.
var ErrConditionFailed = errors.New("conditional write failed")

// KV is the key-value store contract. Implementations must make Put with
// ifAbsent atomic so concurrent creates on the same key cannot both succeed.
type KV interface {
	// Get returns the item stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores item under key. With ifAbsent it fails with
	// ErrConditionFailed instead of overwriting an existing item.
	Put(ctx context.Context, key string, item []byte, ifAbsent bool) error
	// Delete removes the item under key, or returns ErrNotFound.
	Delete(ctx context.Context, key string) error
	// Query returns every item whose key starts with prefix, ordered by key.
	Query(ctx context.Context, prefix string) ([][]byte, error)
}
