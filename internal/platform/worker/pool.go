package worker

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
)

const releaseTimeout = 5 * time.Second

var ErrPoolOverloaded = crerr.New("worker pool overloaded")

// Pool runs blocking calls on a bounded set of goroutines. A nil *Pool runs
// every call inline on the caller's goroutine.
type Pool struct {
	pool *ants.Pool
}

// NewPool creates a pool of size workers. At most size*maxQueuedPerWorker
// callers wait for a free worker and the rest fail with ErrPoolOverloaded.
// Zero leaves the wait queue unbounded.
func NewPool(size, maxQueuedPerWorker int) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("worker pool size must be > 0, got %d", size)
	}
	if maxQueuedPerWorker < 0 {
		maxQueuedPerWorker = 0
	}

	pool, err := ants.NewPool(size, ants.WithMaxBlockingTasks(size*maxQueuedPerWorker))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Pool{pool: pool}, nil
}

// Do runs fn on a worker and waits for it. When ctx ends first Do returns
// ctx.Err(); fn keeps running with the same, now done, context. A panic in fn
// is returned as an error.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if p == nil || p.pool == nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	submitErr := p.pool.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				done <- crerr.Newf("worker task panicked: %v", r)
			}
		}()
		done <- fn(ctx)
	})
	if submitErr != nil {
		if crerr.Is(submitErr, ants.ErrPoolOverload) {
			return crerr.WithStack(ErrPoolOverloaded)
		}
		return fmt.Errorf("submit worker task: %w", submitErr)
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) Running() int {
	if p == nil || p.pool == nil {
		return 0
	}
	return p.pool.Running()
}

// Close waits up to a few seconds for running tasks before releasing the
// workers.
func (p *Pool) Close() error {
	if p == nil || p.pool == nil {
		return nil
	}
	if err := p.pool.ReleaseTimeout(releaseTimeout); err != nil {
		return fmt.Errorf("release worker pool: %w", err)
	}
	return nil
}
