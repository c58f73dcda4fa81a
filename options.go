package antidup

import (
	"reflect"
	"time"
)

// Option configures a Cache created by New and its variant constructors.
type Option func(*settings)

type settings struct {
	observer     Observer
	now          func() time.Time
	equal        func(a, b any) bool
	cleanupEvery time.Duration
}

func defaultSettings() settings {
	return settings{
		now:   time.Now,
		equal: reflect.DeepEqual,
	}
}

// WithObserver attaches an Observer that receives hit, miss, dedup, evict,
// expire, remove and error events for the lifetime of the cache.
func WithObserver(o Observer) Option {
	return func(s *settings) {
		s.observer = o
	}
}

// WithClock replaces time.Now as the source of entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEqual sets the comparison used by TryUpdateIf and TryUpdateFuncIf.
// The default is reflect.DeepEqual.
func WithEqual(equal func(a, b any) bool) Option {
	return func(s *settings) {
		if equal != nil {
			s.equal = equal
		}
	}
}

// WithCleanupInterval starts a background goroutine that purges expired
// entries every d. It has no effect on caches whose entries never expire.
// Call Close to stop it.
func WithCleanupInterval(d time.Duration) Option {
	return func(s *settings) {
		s.cleanupEvery = d
	}
}
