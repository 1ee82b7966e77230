package browser

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakePage is a minimal Page for pool tests.
type fakePage struct {
	closed atomic.Bool
}

func (f *fakePage) Navigate(context.Context, string) (*NavigationInfo, error) {
	return &NavigationInfo{}, nil
}
func (f *fakePage) Requests() []Request                  { return nil }
func (f *fakePage) EvalInt(context.Context, string) (int, error) { return 0, nil }
func (f *fakePage) Close() error {
	f.closed.Store(true)
	return nil
}

// TestPoolAcquireRelease tests the basic slot cycle.
func TestPoolAcquireRelease(t *testing.T) {
	t.Parallel()

	pool := NewPool(2, func(context.Context) (Page, error) {
		return &fakePage{}, nil
	})

	page, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	fp, ok := page.(*fakePage)
	if !ok {
		t.Fatal("expected fakePage")
	}

	pool.Release(page)
	if !fp.closed.Load() {
		t.Error("Release must close the page")
	}
}

// TestPoolBoundsConcurrency tests that the pool never exceeds its size.
func TestPoolBoundsConcurrency(t *testing.T) {
	t.Parallel()

	const size = 3
	var (
		current atomic.Int32
		peak    atomic.Int32
	)

	pool := NewPool(size, func(context.Context) (Page, error) {
		return &fakePage{}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			page, err := pool.Acquire(context.Background())
			if err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}

			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			current.Add(-1)
			pool.Release(page)
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > size {
		t.Errorf("pool exceeded size: peak %d > %d", got, size)
	}
}

// TestPoolAcquireCancellation tests that a blocked Acquire honors the
// context.
func TestPoolAcquireCancellation(t *testing.T) {
	t.Parallel()

	pool := NewPool(1, func(context.Context) (Page, error) {
		return &fakePage{}, nil
	})

	held, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer pool.Release(held)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := pool.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

// TestPoolFactoryError tests that a failing factory returns the slot.
func TestPoolFactoryError(t *testing.T) {
	t.Parallel()

	boom := errors.New("chrome missing")
	calls := 0
	pool := NewPool(1, func(context.Context) (Page, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return &fakePage{}, nil
	})

	if _, err := pool.Acquire(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected factory error, got %v", err)
	}

	// The slot must be free again.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	page, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("slot was not returned after factory failure: %v", err)
	}
	pool.Release(page)
}

// TestPoolClose tests that a closed pool rejects new acquisitions.
func TestPoolClose(t *testing.T) {
	t.Parallel()

	pool := NewPool(1, func(context.Context) (Page, error) {
		return &fakePage{}, nil
	})
	pool.Close()

	if _, err := pool.Acquire(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
}
