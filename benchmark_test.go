package antidup_test

import (
	"fmt"
	"sync"
	"testing"

	"golang.org/x/sync/singleflight"

	"github.com/probablyarth/antidup-go"
)

func value() (string, error) { return "v", nil }

// ---------------------------------------------------------------------------
// Single-goroutine benchmarks: measure per-call latency.
// ---------------------------------------------------------------------------

// How fast is a cache hit (RLock + map lookup)?
func BenchmarkCacheHit(b *testing.B) {
	c := antidup.NewTTLCache[string, string](100, 60)
	c.Execute("1", value)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Execute("1", value)
	}
}

// How fast is a cache miss (key lock + write + FIFO eviction)?
func BenchmarkCacheMiss(b *testing.B) {
	ids := make([]string, b.N)
	for i := range ids {
		ids[i] = fmt.Sprintf("%d", i)
	}

	c := antidup.NewQueueCache[string, string](1024)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Execute(ids[i], value)
	}
}

// Overhead of a passthrough cache.
func BenchmarkPassthrough(b *testing.B) {
	c := antidup.New[string, string](antidup.Config{MaxCount: 0, TTL: -1})
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c.Execute("1", value)
	}
}

// ---------------------------------------------------------------------------
// Concurrent benchmarks: measure throughput under contention.
// ---------------------------------------------------------------------------

// 1000 goroutines all requesting the same key.
// Only one call executes; the rest wait and share the result.
func BenchmarkConcurrent_SameKey(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c := antidup.NewDictCache[string, string]()
		var wg sync.WaitGroup
		wg.Add(1000)
		for j := 0; j < 1000; j++ {
			go func() {
				defer wg.Done()
				c.Execute("1", value)
			}()
		}
		wg.Wait()
	}
}

// 1000 goroutines each requesting a unique key. No dedup, pure write contention.
func BenchmarkConcurrent_UniqueKeys(b *testing.B) {
	ids := make([]string, 1000)
	for i := range ids {
		ids[i] = fmt.Sprintf("%d", i)
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c := antidup.NewDictCache[string, string]()
		var wg sync.WaitGroup
		wg.Add(1000)
		for j := 0; j < 1000; j++ {
			go func(j int) {
				defer wg.Done()
				c.Execute(ids[j], value)
			}(j)
		}
		wg.Wait()
	}
}

// b.RunParallel: cache hit under true parallel reader contention.
func BenchmarkParallel_CacheHit(b *testing.B) {
	c := antidup.NewDictCache[string, string]()
	c.Execute("1", value)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			c.Execute("1", value)
		}
	})
}

// ---------------------------------------------------------------------------
// Singleflight comparison: same scenario, raw singleflight (no caching).
// ---------------------------------------------------------------------------

// singleflight alone: 1000 goroutines, same key.
// Result is NOT cached, so every iteration goes through Do() again.
func BenchmarkSingleflight_SameKey(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var g singleflight.Group
		var wg sync.WaitGroup
		wg.Add(1000)
		for j := 0; j < 1000; j++ {
			go func() {
				defer wg.Done()
				g.Do("k", func() (any, error) { return "v", nil })
			}()
		}
		wg.Wait()
	}
}
