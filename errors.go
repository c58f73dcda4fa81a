package antidup

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrLockTimeout is returned when a bounded lock wait (see WithLockTimeout)
// expires before the lock is acquired. The operation is abandoned: nothing
// is computed or stored.
var ErrLockTimeout = errors.New("antidup: lock wait timed out")

// PanicError carries a panic recovered from a factory run asynchronously.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("antidup: factory panicked: %v\n\n%s", e.Value, e.Stack)
}

type lockTimeoutKey struct{}

// WithLockTimeout returns a child context under which every individual lock
// wait of a cache operation is bounded by d. It bounds each wait, not the
// operation as a whole. A non-positive d means wait without bound, which is
// also the behavior for contexts that carry no timeout.
func WithLockTimeout(ctx context.Context, d time.Duration) context.Context {
	return context.WithValue(ctx, lockTimeoutKey{}, d)
}

// LockTimeoutFrom returns the per-wait timeout carried by ctx, or 0.
func LockTimeoutFrom(ctx context.Context) time.Duration {
	d, _ := ctx.Value(lockTimeoutKey{}).(time.Duration)
	return d
}

// acquire takes one unit of sem, honoring the per-wait timeout in ctx and
// ctx's own cancellation.
func acquire(ctx context.Context, sem *semaphore.Weighted) error {
	if sem.TryAcquire(1) {
		return nil
	}
	if d := LockTimeoutFrom(ctx); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	if err := sem.Acquire(ctx, 1); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("antidup: key lock wait: %w: %w", ErrLockTimeout, err)
		}
		return fmt.Errorf("antidup: key lock wait: %w", err)
	}
	return nil
}

func newPanicError(v any) *PanicError {
	return &PanicError{Value: v, Stack: debug.Stack()}
}
