package antidup

import (
	"context"
	"time"
)

// Executor is the single-flight accessor contract shared by the in-process
// Cache and store-backed implementations such as shared.Cache.
type Executor[K comparable, V any] interface {
	Execute(key K, factory func() (V, error)) (V, error)
	ExecuteTimeout(key K, timeout time.Duration, factory func() (V, error)) (V, error)
	ExecuteContext(ctx context.Context, key K, factory func() (V, error)) (V, error)
	ExecuteAsync(ctx context.Context, key K, factory func() (V, error)) *Future[V]
	Remove(ctx context.Context, key K) error
	Clear()
}

// ConcurrentMap is the value- and factory-based map surface layered on the
// same per-key locking protocol as Execute.
type ConcurrentMap[K comparable, V any] interface {
	Count() int
	IsEmpty() bool
	TryGetValue(key K) (V, bool)
	ContainsKey(key K) bool

	GetOrAdd(ctx context.Context, key K, value V) (V, error)
	GetOrAddFunc(ctx context.Context, key K, factory func() (V, error)) (V, error)
	SetValue(ctx context.Context, key K, value V) error
	SetValueFunc(ctx context.Context, key K, factory func() (V, error)) (V, error)
	AddOrUpdate(ctx context.Context, key K, add, update V) (V, error)
	AddOrUpdateFunc(ctx context.Context, key K, add func() (V, error), update func(old V) (V, error)) (V, error)
	TryAdd(ctx context.Context, key K, value V) (bool, error)
	TryAddFunc(ctx context.Context, key K, factory func() (V, error)) (bool, error)
	TryUpdate(ctx context.Context, key K, value V) (bool, error)
	TryUpdateFunc(ctx context.Context, key K, factory func() (V, error)) (bool, error)
	TryUpdateIf(ctx context.Context, key K, value, comparison V) (bool, error)
	TryUpdateFuncIf(ctx context.Context, key K, factory func() (V, error), comparison V) (bool, error)
	TryUpdateFuncIfFunc(ctx context.Context, key K, factory, comparison func() (V, error)) (bool, error)
	TryRemove(ctx context.Context, key K) (V, bool, error)
	Remove(ctx context.Context, key K) error
	Clear()

	GetOrAddAsync(ctx context.Context, key K, factory func() (V, error)) *Future[V]
	SetValueAsync(ctx context.Context, key K, factory func() (V, error)) *Future[V]
	AddOrUpdateAsync(ctx context.Context, key K, add func() (V, error), update func(old V) (V, error)) *Future[V]
	TryAddAsync(ctx context.Context, key K, factory func() (V, error)) *Future[bool]
	TryUpdateAsync(ctx context.Context, key K, factory func() (V, error)) *Future[bool]
	TryUpdateIfAsync(ctx context.Context, key K, factory func() (V, error), comparison V) *Future[bool]
	TryUpdateIfFuncAsync(ctx context.Context, key K, factory, comparison func() (V, error)) *Future[bool]
}

var (
	_ Executor[string, any]      = (*Cache[string, any])(nil)
	_ ConcurrentMap[string, any] = (*Cache[string, any])(nil)
)
