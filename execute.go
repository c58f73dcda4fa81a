package antidup

import (
	"context"
	"time"
)

// Execute returns the cached value for key, calling factory at most once per
// missing or expired generation of key among concurrent callers. Callers
// waiting on the same generation receive the same value, or the same error
// if factory fails. Errors are not cached.
//
// A zero key, or a cache configured with MaxCount 0 or TTL 0, calls factory
// directly.
func (c *Cache[K, V]) Execute(key K, factory func() (V, error)) (V, error) {
	return c.ExecuteContext(context.Background(), key, factory)
}

// ExecuteTimeout is Execute with every lock wait bounded by timeout. A wait
// that expires returns an error wrapping ErrLockTimeout.
func (c *Cache[K, V]) ExecuteTimeout(key K, timeout time.Duration, factory func() (V, error)) (V, error) {
	return c.ExecuteContext(WithLockTimeout(context.Background(), timeout), key, factory)
}

// ExecuteContext is Execute with lock waits bound to ctx. Cancelling ctx
// abandons a pending wait; it does not interrupt a running factory.
func (c *Cache[K, V]) ExecuteContext(ctx context.Context, key K, factory func() (V, error)) (V, error) {
	if c.bypass(key) {
		return factory()
	}

	// Fast path: already cached.
	v, ok, snapshot := c.store.lookup(key)
	if ok {
		c.emit(EventHit, key)
		return v, nil
	}

	// Slow path: register on the key lock unless a concurrent caller has
	// stored the value since the snapshot.
	hold, hit, err := c.locks.lock(ctx, key, func() bool {
		v, ok = c.store.changedSince(key, snapshot)
		return ok
	})
	if err != nil {
		var zero V
		return zero, err
	}
	if hit {
		c.emit(EventDedup, key)
		return v, nil
	}
	defer hold.unlock()

	// Double-check: the previous holder may have stored it while we waited.
	if v, ok := c.store.get(key); ok {
		c.emit(EventDedup, key)
		return v, nil
	}
	if err := hold.failure(); err != nil {
		var zero V
		return zero, err
	}

	c.emit(EventMiss, key)
	v, err = factory()
	if err != nil {
		hold.fail(err)
		c.emit(EventError, key)
		var zero V
		return zero, err
	}
	c.put(key, v)
	return v, nil
}

// ExecuteAsync runs ExecuteContext on its own goroutine.
func (c *Cache[K, V]) ExecuteAsync(ctx context.Context, key K, factory func() (V, error)) *Future[V] {
	return Go(func() (V, error) {
		return c.ExecuteContext(ctx, key, factory)
	})
}

// lockKey registers on key's lock and waits for it. It does not consult the
// store; callers recheck under the lock.
func (c *Cache[K, V]) lockKey(ctx context.Context, key K) (*keyHold[K], error) {
	hold, _, err := c.locks.lock(ctx, key, nil)
	return hold, err
}
