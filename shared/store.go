package shared

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store.Get for missing or expired keys.
var ErrNotFound = errors.New("shared: not found")

// Store is a string-keyed byte store with per-key expiry shared by every
// process that uses it. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value; ttl <= 0 means the value never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Locker is a mutual-exclusion primitive scoped to a key. A lock is held by
// the owner token that took it until it is released or expires.
type Locker interface {
	// TakeLock reports whether the lock was free (or expired) and is now
	// held by token.
	TakeLock(ctx context.Context, key, token string, expiry time.Duration) (bool, error)
	// ReleaseLock reports whether token held the lock and released it.
	ReleaseLock(ctx context.Context, key, token string) (bool, error)
}
