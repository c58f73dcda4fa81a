package antidup

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// keyLock serializes callers for one key. refs counts callers that have
// registered and not yet released; the table drops the lock when it hits zero.
type keyLock struct {
	sem  *semaphore.Weighted
	refs int

	// failSeq is bumped each time a factory run under this lock fails, so
	// callers that registered before the failure can pick up failErr.
	failSeq uint64
	failErr error
}

// keyLockTable is a reference-counted arena of per-key locks.
//
// Registration goes through gate, which plays the part of an upgradeable
// read lock: the holder may recheck the store and then escalate to mu for
// the find-or-create. mu guards locks and the counters inside each keyLock.
type keyLockTable[K comparable] struct {
	gate  *semaphore.Weighted
	mu    sync.RWMutex
	locks map[K]*keyLock
}

func newKeyLockTable[K comparable]() *keyLockTable[K] {
	return &keyLockTable[K]{
		gate:  semaphore.NewWeighted(1),
		locks: make(map[K]*keyLock),
	}
}

// keyHold is a held key lock. unlock must be called exactly once.
type keyHold[K comparable] struct {
	table *keyLockTable[K]
	key   K
	lock  *keyLock
	seq   uint64
}

// lock registers interest in key and waits for its lock. resolved is called
// while holding the gate; when it returns true the caller no longer needs the
// lock and lock returns (nil, true, nil).
func (t *keyLockTable[K]) lock(ctx context.Context, key K, resolved func() bool) (*keyHold[K], bool, error) {
	if err := acquire(ctx, t.gate); err != nil {
		return nil, false, err
	}
	if resolved != nil && resolved() {
		t.gate.Release(1)
		return nil, true, nil
	}

	t.mu.Lock()
	kl, ok := t.locks[key]
	if !ok {
		kl = &keyLock{sem: semaphore.NewWeighted(1)}
		t.locks[key] = kl
	}
	kl.refs++
	seq := kl.failSeq
	t.mu.Unlock()
	t.gate.Release(1)

	if err := acquire(ctx, kl.sem); err != nil {
		t.release(key, kl)
		return nil, false, err
	}
	return &keyHold[K]{table: t, key: key, lock: kl, seq: seq}, false, nil
}

func (t *keyLockTable[K]) release(key K, kl *keyLock) {
	t.mu.Lock()
	defer t.mu.Unlock()
	kl.refs--
	if kl.refs > 0 {
		return
	}
	if cur, ok := t.locks[key]; ok && cur == kl {
		delete(t.locks, key)
	}
}

func (t *keyLockTable[K]) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.locks)
}

func (t *keyLockTable[K]) refs(key K) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if kl, ok := t.locks[key]; ok {
		return kl.refs
	}
	return 0
}

func (h *keyHold[K]) unlock() {
	h.lock.sem.Release(1)
	h.table.release(h.key, h.lock)
}

// fail records err for every caller currently registered on the lock.
func (h *keyHold[K]) fail(err error) {
	h.table.mu.Lock()
	h.lock.failSeq++
	h.lock.failErr = err
	h.table.mu.Unlock()
}

// failure returns the error of a factory run that failed after this caller
// registered, or nil.
func (h *keyHold[K]) failure() error {
	h.table.mu.RLock()
	defer h.table.mu.RUnlock()
	if h.lock.failSeq != h.seq {
		return h.lock.failErr
	}
	return nil
}
