package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/probablyarth/antidup-go"
)

// ErrLockBusy is returned, together with the zero value, when the key's
// shared lock is held by someone else. Execute does not retry or wait.
var ErrLockBusy = errors.New("shared: lock busy")

const lockPrefix = "lock."

// Logger receives best-effort failures that Execute and Clear cannot return.
type Logger interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// Options configures a Cache.
type Options struct {
	// Prefix is prepended to every key written to the store.
	Prefix string
	// TTL is how long computed values stay in the store. 0 disables caching;
	// a negative TTL stores values without expiry.
	TTL time.Duration
	// LockExpiry bounds how long a crashed holder can keep a key locked.
	// Defaults to 2*TTL, or 30s when TTL is negative.
	LockExpiry time.Duration
	// Logger receives best-effort failures such as a lost lock release.
	// Nil discards them.
	Logger Logger
}

// Cache implements antidup.Executor over a Store and Locker shared between
// processes. Values cross the store as JSON.
//
// Concurrent callers in this process are coalesced before touching the
// store; callers in other processes are excluded by the shared lock.
type Cache[K comparable, V any] struct {
	store  Store
	locker Locker
	opts   Options
	group  singleflight.Group
}

var _ antidup.Executor[string, any] = (*Cache[string, any])(nil)

// New returns a Cache backed by store and locker.
func New[K comparable, V any](store Store, locker Locker, opts Options) *Cache[K, V] {
	if opts.LockExpiry <= 0 {
		if opts.TTL > 0 {
			opts.LockExpiry = 2 * opts.TTL
		} else {
			opts.LockExpiry = 30 * time.Second
		}
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	return &Cache[K, V]{store: store, locker: locker, opts: opts}
}

func (c *Cache[K, V]) storeKey(key K) string {
	return c.opts.Prefix + antidup.KeyString(key)
}

// Execute returns the stored value for key, or computes, stores and returns
// it while holding the key's shared lock. If the lock is held elsewhere it
// returns the zero value and ErrLockBusy.
func (c *Cache[K, V]) Execute(key K, factory func() (V, error)) (V, error) {
	return c.execute(context.Background(), key, c.opts.LockExpiry, factory)
}

// ExecuteTimeout is Execute with the shared lock expiring after timeout.
func (c *Cache[K, V]) ExecuteTimeout(key K, timeout time.Duration, factory func() (V, error)) (V, error) {
	if timeout <= 0 {
		timeout = c.opts.LockExpiry
	}
	return c.execute(context.Background(), key, timeout, factory)
}

// ExecuteContext is Execute for a caller that can give up: a ctx that is
// already done returns ctx.Err() without touching the store. Once the call
// has started, store calls run detached from ctx, since other callers in
// this process may be coalesced onto the same load.
func (c *Cache[K, V]) ExecuteContext(ctx context.Context, key K, factory func() (V, error)) (V, error) {
	return c.execute(ctx, key, c.opts.LockExpiry, factory)
}

// ExecuteAsync runs ExecuteContext on its own goroutine.
func (c *Cache[K, V]) ExecuteAsync(ctx context.Context, key K, factory func() (V, error)) *antidup.Future[V] {
	return antidup.Go(func() (V, error) { return c.ExecuteContext(ctx, key, factory) })
}

func (c *Cache[K, V]) execute(ctx context.Context, key K, expiry time.Duration, factory func() (V, error)) (V, error) {
	var zero V
	var nullKey K
	if key == nullKey || c.opts.TTL == 0 {
		return factory()
	}

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	k := c.storeKey(key)
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(k, func() (any, error) {
		return c.load(flightCtx, k, expiry, factory)
	})
	if err != nil {
		return zero, err
	}
	out, _ := v.(V)
	return out, nil
}

func (c *Cache[K, V]) load(ctx context.Context, k string, expiry time.Duration, factory func() (V, error)) (V, error) {
	var zero V
	if v, ok, err := c.get(ctx, k); err != nil || ok {
		return v, err
	}

	token := uuid.NewString()
	taken, err := c.locker.TakeLock(ctx, lockPrefix+k, token, expiry)
	if err != nil {
		return zero, fmt.Errorf("shared: take lock %q: %w", k, err)
	}
	if !taken {
		return zero, ErrLockBusy
	}
	defer c.release(ctx, k, token)

	// Double-check: the previous holder may have stored it.
	if v, ok, err := c.get(ctx, k); err != nil || ok {
		return v, err
	}

	v, err := factory()
	if err != nil {
		return zero, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return zero, fmt.Errorf("shared: encode %q: %w", k, err)
	}
	ttl := c.opts.TTL
	if ttl < 0 {
		ttl = 0
	}
	if err := c.store.Set(ctx, k, data, ttl); err != nil {
		return zero, fmt.Errorf("shared: set %q: %w", k, err)
	}
	return v, nil
}

func (c *Cache[K, V]) get(ctx context.Context, k string) (V, bool, error) {
	var v V
	data, err := c.store.Get(ctx, k)
	if errors.Is(err, ErrNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, fmt.Errorf("shared: get %q: %w", k, err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fmt.Errorf("shared: decode %q: %w", k, err)
	}
	return v, true, nil
}

func (c *Cache[K, V]) release(ctx context.Context, k, token string) {
	released, err := c.locker.ReleaseLock(ctx, lockPrefix+k, token)
	if err != nil {
		c.opts.Logger.Warnf("shared: release lock %q: %v", k, err)
		return
	}
	if !released {
		c.opts.Logger.Warnf("shared: lock %q expired before release", k)
	}
}

// Remove deletes key from the store.
func (c *Cache[K, V]) Remove(ctx context.Context, key K) error {
	if err := c.store.Delete(ctx, c.storeKey(key)); err != nil {
		return fmt.Errorf("shared: delete: %w", err)
	}
	return nil
}

// Clear deletes every value under the cache's prefix. Failures are logged.
func (c *Cache[K, V]) Clear() {
	if err := c.store.DeletePrefix(context.Background(), c.opts.Prefix); err != nil {
		c.opts.Logger.Errorf("shared: clear %q: %v", c.opts.Prefix, err)
	}
}
