package antidup

import "context"

// TryGetValue returns the valid value stored for key.
func (c *Cache[K, V]) TryGetValue(key K) (V, bool) {
	if c.bypass(key) {
		var zero V
		return zero, false
	}
	v, ok := c.store.get(key)
	if ok {
		c.emit(EventHit, key)
	}
	return v, ok
}

// ContainsKey reports whether a valid value is stored for key.
func (c *Cache[K, V]) ContainsKey(key K) bool {
	if c.bypass(key) {
		return false
	}
	_, ok := c.store.get(key)
	return ok
}

// GetOrAdd returns the value stored for key, storing value first if there
// is none.
func (c *Cache[K, V]) GetOrAdd(ctx context.Context, key K, value V) (V, error) {
	return c.ExecuteContext(ctx, key, func() (V, error) { return value, nil })
}

// GetOrAddFunc is ExecuteContext under the concurrent-map name.
func (c *Cache[K, V]) GetOrAddFunc(ctx context.Context, key K, factory func() (V, error)) (V, error) {
	return c.ExecuteContext(ctx, key, factory)
}

// SetValue stores value under key, replacing any previous value.
func (c *Cache[K, V]) SetValue(ctx context.Context, key K, value V) error {
	_, err := c.SetValueFunc(ctx, key, func() (V, error) { return value, nil })
	return err
}

// SetValueFunc stores the result of factory under key, replacing any previous
// value. Calls for the same key run one at a time; each runs its factory.
func (c *Cache[K, V]) SetValueFunc(ctx context.Context, key K, factory func() (V, error)) (V, error) {
	if c.bypass(key) {
		return factory()
	}
	hold, err := c.lockKey(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}
	defer hold.unlock()

	return c.compute(key, factory)
}

// AddOrUpdate stores add when key has no valid value, otherwise stores update.
// It returns the value now stored.
func (c *Cache[K, V]) AddOrUpdate(ctx context.Context, key K, add, update V) (V, error) {
	return c.AddOrUpdateFunc(ctx, key,
		func() (V, error) { return add, nil },
		func(V) (V, error) { return update, nil },
	)
}

// AddOrUpdateFunc stores the result of add when key has no valid value,
// otherwise the result of update applied to the current value.
func (c *Cache[K, V]) AddOrUpdateFunc(ctx context.Context, key K, add func() (V, error), update func(old V) (V, error)) (V, error) {
	if c.bypass(key) {
		return add()
	}
	hold, err := c.lockKey(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}
	defer hold.unlock()

	if old, ok := c.store.get(key); ok {
		return c.compute(key, func() (V, error) { return update(old) })
	}
	return c.compute(key, add)
}

// TryAdd stores value if key has no valid value. It reports whether value
// was stored.
func (c *Cache[K, V]) TryAdd(ctx context.Context, key K, value V) (bool, error) {
	return c.TryAddFunc(ctx, key, func() (V, error) { return value, nil })
}

// TryAddFunc stores the result of factory if key has no valid value. factory
// is not called when a value is present.
func (c *Cache[K, V]) TryAddFunc(ctx context.Context, key K, factory func() (V, error)) (bool, error) {
	if c.bypass(key) {
		return false, nil
	}
	if c.ContainsKey(key) {
		return false, nil
	}
	hold, err := c.lockKey(ctx, key)
	if err != nil {
		return false, err
	}
	defer hold.unlock()

	if _, ok := c.store.get(key); ok {
		return false, nil
	}
	if _, err := c.compute(key, factory); err != nil {
		return false, err
	}
	return true, nil
}

// TryUpdate replaces the value stored for key. It reports false, storing
// nothing, when key has no valid value.
func (c *Cache[K, V]) TryUpdate(ctx context.Context, key K, value V) (bool, error) {
	return c.TryUpdateFunc(ctx, key, func() (V, error) { return value, nil })
}

// TryUpdateFunc replaces the value stored for key with the result of
// factory. factory is not called when key has no valid value.
func (c *Cache[K, V]) TryUpdateFunc(ctx context.Context, key K, factory func() (V, error)) (bool, error) {
	return c.tryUpdate(ctx, key, factory, func(V) (bool, error) { return true, nil })
}

// TryUpdateIf replaces the value stored for key only if it equals comparison.
func (c *Cache[K, V]) TryUpdateIf(ctx context.Context, key K, value, comparison V) (bool, error) {
	return c.TryUpdateFuncIf(ctx, key, func() (V, error) { return value, nil }, comparison)
}

// TryUpdateFuncIf replaces the value stored for key with the result of
// factory only if the current value equals comparison.
func (c *Cache[K, V]) TryUpdateFuncIf(ctx context.Context, key K, factory func() (V, error), comparison V) (bool, error) {
	return c.tryUpdate(ctx, key, factory, func(cur V) (bool, error) {
		return c.equal(cur, comparison), nil
	})
}

// TryUpdateFuncIfFunc is TryUpdateFuncIf with the comparison value produced
// by comparison. Both functions run under key's lock, comparison first, and
// only while key holds a valid value.
func (c *Cache[K, V]) TryUpdateFuncIfFunc(ctx context.Context, key K, factory, comparison func() (V, error)) (bool, error) {
	return c.tryUpdate(ctx, key, factory, func(cur V) (bool, error) {
		want, err := comparison()
		if err != nil {
			return false, err
		}
		return c.equal(cur, want), nil
	})
}

func (c *Cache[K, V]) tryUpdate(ctx context.Context, key K, factory func() (V, error), match func(V) (bool, error)) (bool, error) {
	if c.bypass(key) {
		return false, nil
	}
	if !c.ContainsKey(key) {
		return false, nil
	}
	hold, err := c.lockKey(ctx, key)
	if err != nil {
		return false, err
	}
	defer hold.unlock()

	cur, ok := c.store.get(key)
	if !ok {
		return false, nil
	}
	if matched, err := match(cur); err != nil || !matched {
		return false, err
	}
	if _, err := c.compute(key, factory); err != nil {
		return false, err
	}
	return true, nil
}

// TryRemove removes key and returns the value it held, if it was valid.
func (c *Cache[K, V]) TryRemove(ctx context.Context, key K) (V, bool, error) {
	var zero V
	if c.bypass(key) {
		return zero, false, nil
	}
	if !c.ContainsKey(key) {
		return zero, false, nil
	}
	hold, err := c.lockKey(ctx, key)
	if err != nil {
		return zero, false, err
	}
	defer hold.unlock()

	v, ok := c.store.remove(key)
	if ok {
		c.emit(EventRemove, key)
	}
	return v, ok, nil
}

// Remove deletes key, expired or not.
func (c *Cache[K, V]) Remove(ctx context.Context, key K) error {
	if c.bypass(key) {
		return nil
	}
	hold, err := c.lockKey(ctx, key)
	if err != nil {
		return err
	}
	defer hold.unlock()

	if _, ok := c.store.remove(key); ok {
		c.emit(EventRemove, key)
	}
	return nil
}

// compute runs factory and stores its result. The caller holds key's lock.
func (c *Cache[K, V]) compute(key K, factory func() (V, error)) (V, error) {
	c.emit(EventMiss, key)
	v, err := factory()
	if err != nil {
		c.emit(EventError, key)
		var zero V
		return zero, err
	}
	c.put(key, v)
	return v, nil
}

// GetOrAddAsync runs GetOrAddFunc on its own goroutine.
func (c *Cache[K, V]) GetOrAddAsync(ctx context.Context, key K, factory func() (V, error)) *Future[V] {
	return c.ExecuteAsync(ctx, key, factory)
}

// SetValueAsync runs SetValueFunc on its own goroutine.
func (c *Cache[K, V]) SetValueAsync(ctx context.Context, key K, factory func() (V, error)) *Future[V] {
	return Go(func() (V, error) { return c.SetValueFunc(ctx, key, factory) })
}

// AddOrUpdateAsync runs AddOrUpdateFunc on its own goroutine.
func (c *Cache[K, V]) AddOrUpdateAsync(ctx context.Context, key K, add func() (V, error), update func(old V) (V, error)) *Future[V] {
	return Go(func() (V, error) { return c.AddOrUpdateFunc(ctx, key, add, update) })
}

// TryAddAsync runs TryAddFunc on its own goroutine.
func (c *Cache[K, V]) TryAddAsync(ctx context.Context, key K, factory func() (V, error)) *Future[bool] {
	return Go(func() (bool, error) { return c.TryAddFunc(ctx, key, factory) })
}

// TryUpdateAsync runs TryUpdateFunc on its own goroutine.
func (c *Cache[K, V]) TryUpdateAsync(ctx context.Context, key K, factory func() (V, error)) *Future[bool] {
	return Go(func() (bool, error) { return c.TryUpdateFunc(ctx, key, factory) })
}

// TryUpdateIfAsync runs TryUpdateFuncIf on its own goroutine.
func (c *Cache[K, V]) TryUpdateIfAsync(ctx context.Context, key K, factory func() (V, error), comparison V) *Future[bool] {
	return Go(func() (bool, error) { return c.TryUpdateFuncIf(ctx, key, factory, comparison) })
}

// TryUpdateIfFuncAsync runs TryUpdateFuncIfFunc on its own goroutine.
func (c *Cache[K, V]) TryUpdateIfFuncAsync(ctx context.Context, key K, factory, comparison func() (V, error)) *Future[bool] {
	return Go(func() (bool, error) { return c.TryUpdateFuncIfFunc(ctx, key, factory, comparison) })
}
