package antidup_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/probablyarth/antidup-go"
)

func TestExecuteAsyncSharesResult(t *testing.T) {
	ctx := context.Background()
	c := antidup.NewDictCache[string, int]()
	var calls atomic.Int32
	fn := func() (int, error) {
		time.Sleep(10 * time.Millisecond)
		return int(calls.Add(1)), nil
	}

	futures := make([]*antidup.Future[int], 10)
	for i := range futures {
		futures[i] = c.ExecuteAsync(ctx, "k", fn)
	}
	for i, f := range futures {
		v, err := f.Wait(ctx)
		if err != nil {
			t.Fatalf("future %d: %v", i, err)
		}
		if v != 1 {
			t.Fatalf("future %d: got %d, want 1", i, v)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("fn called %d times, want 1", n)
	}
}

func TestAsyncAccessors(t *testing.T) {
	ctx := context.Background()
	c := antidup.NewDictCache[string, int]()

	if v, err := c.GetOrAddAsync(ctx, "k", func() (int, error) { return 1, nil }).Wait(ctx); err != nil || v != 1 {
		t.Fatalf("GetOrAddAsync: got %d, %v", v, err)
	}
	if v, err := c.SetValueAsync(ctx, "k", func() (int, error) { return 2, nil }).Wait(ctx); err != nil || v != 2 {
		t.Fatalf("SetValueAsync: got %d, %v", v, err)
	}
	v, err := c.AddOrUpdateAsync(ctx, "k",
		func() (int, error) { return 0, nil },
		func(old int) (int, error) { return old * 10, nil },
	).Wait(ctx)
	if err != nil || v != 20 {
		t.Fatalf("AddOrUpdateAsync: got %d, %v", v, err)
	}
	if ok, _ := c.TryAddAsync(ctx, "k", func() (int, error) { return 3, nil }).Wait(ctx); ok {
		t.Fatal("TryAddAsync added over a present key")
	}
	if ok, _ := c.TryUpdateAsync(ctx, "k", func() (int, error) { return 4, nil }).Wait(ctx); !ok {
		t.Fatal("TryUpdateAsync failed for a present key")
	}
	if ok, _ := c.TryUpdateIfAsync(ctx, "k", func() (int, error) { return 5, nil }, 4).Wait(ctx); !ok {
		t.Fatal("TryUpdateIfAsync failed for a matching value")
	}
	if v, _ := c.TryGetValue("k"); v != 5 {
		t.Fatalf("got %d, want 5", v)
	}
}

func TestFuturePanicBecomesError(t *testing.T) {
	f := antidup.Go(func() (int, error) { panic("kaboom") })
	_, err := f.Wait(context.Background())
	var pe *antidup.PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("got err=%v, want *PanicError", err)
	}
	if pe.Value != "kaboom" {
		t.Fatalf("got panic value %v, want kaboom", pe.Value)
	}
}

func TestFutureWaitHonorsContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	f := antidup.Go(func() (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := f.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got err=%v, want DeadlineExceeded", err)
	}
	select {
	case <-f.Done():
		t.Fatal("future finished before its function returned")
	default:
	}
}
