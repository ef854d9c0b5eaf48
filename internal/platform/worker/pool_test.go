package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
)

func TestPool_BoundsConcurrency(t *testing.T) {
	pool, err := NewPool(2, 8)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	defer pool.Close()

	var running, peak atomic.Int32
	var wg conc.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Go(func() {
			err := pool.Do(context.Background(), func(context.Context) error {
				now := running.Add(1)
				for {
					old := peak.Load()
					if now <= old || peak.CompareAndSwap(old, now) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				running.Add(-1)
				return nil
			})
			if err != nil {
				t.Errorf("do: %v", err)
			}
		})
	}
	wg.Wait()

	if got := peak.Load(); got > 2 {
		t.Fatalf("expected at most 2 concurrent tasks, got %d", got)
	}
}

func TestPool_ReturnsTaskError(t *testing.T) {
	pool, err := NewPool(1, 1)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	defer pool.Close()

	errTask := errors.New("task failed")
	if err := pool.Do(context.Background(), func(context.Context) error { return errTask }); !errors.Is(err, errTask) {
		t.Fatalf("expected task error, got %v", err)
	}
}

func TestPool_RecoversPanic(t *testing.T) {
	pool, err := NewPool(1, 1)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	defer pool.Close()

	err = pool.Do(context.Background(), func(context.Context) error { panic("boom") })
	if err == nil {
		t.Fatalf("expected panic to surface as error")
	}
}

func TestPool_CancelledContext(t *testing.T) {
	pool, err := NewPool(1, 1)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err = pool.Do(ctx, func(context.Context) error { called = true; return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Fatalf("task should not run on a cancelled context")
	}
}

func TestPool_NilRunsInline(t *testing.T) {
	var pool *Pool
	ran := false
	if err := pool.Do(context.Background(), func(context.Context) error { ran = true; return nil }); err != nil {
		t.Fatalf("nil pool do: %v", err)
	}
	if !ran {
		t.Fatalf("expected inline execution")
	}
	if err := pool.Close(); err != nil {
		t.Fatalf("nil pool close: %v", err)
	}
}

func TestNewPool_RejectsZeroSize(t *testing.T) {
	if _, err := NewPool(0, 1); err == nil {
		t.Fatalf("expected error for zero size")
	}
}
