package cache

import (
	"context"
	"time"
)

// Store defines the key-value operations the bonus engine relies on.
// This abstraction allows swapping between memory store (development)
// and Redis store (production) without changing business logic.
type Store interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if the key does not
	// exist; any other error means the store could not be reached.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value with the given TTL, unconditionally.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// SetIfAbsent stores a value with the given TTL only when the key does not
	// already exist. Returns true when the write landed. This is the
	// serialization point for the claim transaction.
	SetIfAbsent(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error
}

// StoreError is a sentinel error type for store outcomes.
type StoreError string

func (e StoreError) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found. A miss is a normal
	// outcome, distinct from the store being unreachable.
	ErrCacheMiss StoreError = "cache miss"

	// ErrUnavailable indicates the store could not be reached or returned a
	// protocol-level error. Wrapped around the underlying driver error.
	ErrUnavailable StoreError = "cache unavailable"
)
