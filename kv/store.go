// Package kv provides the key-value persistence contract shared by the
// credential store and the session store, together with its Redis
// implementation. All mutating primitives are atomic on the server side,
// which is what the registration and session invariants rely on.
package kv

import (
	"context"
	"errors"
	"time"
)

// Store errors
var (
	// ErrNotFound is returned when a key is absent.
	ErrNotFound = errors.New("key not found")

	// ErrKeyExists is returned by SetIfAbsent when the key is already present.
	ErrKeyExists = errors.New("key already exists")

	// ErrUnavailable is returned when the backing store cannot be reached.
	// The core never retries; retry policy belongs to the caller.
	ErrUnavailable = errors.New("key-value store unavailable")
)

// Store defines the key-value operations the authentication core depends on.
// Implementations must guarantee that SetIfAbsent, Delete and Incr are atomic
// with respect to concurrent callers.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// SetIfAbsent stores value under key only if the key does not exist.
	// A ttl of zero means no expiry. Returns ErrKeyExists if the key is
	// already present.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Returns ErrNotFound if the key was absent.
	Delete(ctx context.Context, key string) error

	// Incr atomically increments the named counter and returns the new
	// value. Counters start at zero, so the first call returns 1.
	Incr(ctx context.Context, name string) (int64, error)

	// Close releases the underlying connection.
	Close() error
}
