package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/matchlist/internal/domain/matchlist"
	"github.com/riskibarqy/matchlist/internal/infrastructure/repository/memory"
	matchlistmock "github.com/riskibarqy/matchlist/internal/mocks/domain/matchlist"
	"github.com/riskibarqy/matchlist/internal/platform/worker"
)

func TestExpirySweeper_RunOnce_RemovesExpiredFixtures(t *testing.T) {
	t.Parallel()

	now := time.Unix(200, 0)
	repo := memory.NewMatchListRepository(
		matchlist.ScheduledMatch{StartTime: 250, TeamAID: 1, TeamBID: 2, ScheduledAt: 10, ScheduledBy: 9},
		matchlist.ScheduledMatch{StartTime: 50, TeamAID: 3, TeamBID: 4, ScheduledAt: 10, ScheduledBy: 9},
		matchlist.ScheduledMatch{StartTime: 150, TeamAID: 5, TeamBID: 6, ScheduledAt: 10, ScheduledBy: 9},
	)

	sweeper := NewExpirySweeper(repo, nil, ExpirySweeperConfig{}, nil)
	sweeper.now = func() time.Time { return now }
	sweeper.newRunID = func() string { return "run-1" }

	result, err := sweeper.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if result.RunID != "run-1" {
		t.Fatalf("unexpected run id: %s", result.RunID)
	}
	if !result.Cutoff.Equal(now) {
		t.Fatalf("unexpected cutoff: got=%s want=%s", result.Cutoff, now)
	}
	if len(result.Removed) != 2 || result.Removed[0].StartTime != 50 || result.Removed[1].StartTime != 150 {
		t.Fatalf("unexpected removed rows: %+v", result.Removed)
	}

	again, err := sweeper.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if again.Removed == nil || len(again.Removed) != 0 {
		t.Fatalf("expected empty second sweep, got %#v", again.Removed)
	}

	left, err := repo.ListUpcoming(context.Background(), 0, matchlist.Page{})
	if err != nil {
		t.Fatalf("list remaining: %v", err)
	}
	if len(left) != 1 || left[0].StartTime != 250 {
		t.Fatalf("unexpected remaining rows: %+v", left)
	}
}

func TestExpirySweeper_RunOnce_StorageFailure(t *testing.T) {
	t.Parallel()

	repo := matchlistmock.NewRepository(t)
	repo.
		On("PurgeExpired", mock.Anything, int64(300)).
		Return(nil, matchlist.StorageFailure(errors.New("database is locked"), "purge")).
		Once()

	sweeper := NewExpirySweeper(repo, nil, ExpirySweeperConfig{}, nil)
	sweeper.now = func() time.Time { return time.Unix(300, 0) }

	_, err := sweeper.RunOnce(context.Background())
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestExpirySweeper_RunOnce_CollapsesConcurrentCalls(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	entered := make(chan struct{})
	var calls atomic.Int32

	repo := matchlistmock.NewRepository(t)
	repo.
		On("PurgeExpired", mock.Anything, int64(300)).
		Run(func(mock.Arguments) {
			calls.Add(1)
			close(entered)
			<-release
		}).
		Return([]matchlist.ScheduledMatch{{StartTime: 100, TeamAID: 1, TeamBID: 2, ScheduledAt: 1, ScheduledBy: 1}}, nil).
		Once()

	sweeper := NewExpirySweeper(repo, nil, ExpirySweeperConfig{}, nil)
	sweeper.now = func() time.Time { return time.Unix(300, 0) }

	results := make([]SweepResult, 2)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = sweeper.RunOnce(context.Background())
	}()
	<-entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = sweeper.RunOnce(context.Background())
	}()
	// let the second caller join the flight before the purge finishes
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected one purge, got %d", calls.Load())
	}
	if results[0].RunID != results[1].RunID || len(results[1].Removed) != 1 {
		t.Fatalf("expected shared result, got %+v and %+v", results[0], results[1])
	}
}

func TestExpirySweeper_RunOnce_OutlivesCallerCancel(t *testing.T) {
	t.Parallel()

	repo := memory.NewMatchListRepository(
		matchlist.ScheduledMatch{StartTime: 50, TeamAID: 1, TeamBID: 2, ScheduledAt: 10, ScheduledBy: 9},
	)
	sweeper := NewExpirySweeper(repo, nil, ExpirySweeperConfig{}, nil)
	sweeper.now = func() time.Time { return time.Unix(200, 0) }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sweeper.RunOnce(ctx)
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(result.Removed) != 1 {
		t.Fatalf("expected one removed fixture, got %+v", result.Removed)
	}
	rows, err := repo.ListUpcoming(context.Background(), 0, matchlist.Page{Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty store, got %+v", rows)
	}
}

func TestExpirySweeper_RunOnce_TimeoutIsStorageFailure(t *testing.T) {
	t.Parallel()

	pool, err := worker.NewPool(1, 1)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	release := make(chan struct{})
	t.Cleanup(func() {
		close(release)
		_ = pool.Close()
	})

	repo := matchlistmock.NewRepository(t)
	repo.
		On("PurgeExpired", mock.Anything, int64(300)).
		Run(func(mock.Arguments) { <-release }).
		Return(nil, nil).
		Once()

	sweeper := NewExpirySweeper(repo, pool, ExpirySweeperConfig{Timeout: 20 * time.Millisecond}, nil)
	sweeper.now = func() time.Time { return time.Unix(300, 0) }

	_, err = sweeper.RunOnce(context.Background())
	if !errors.Is(err, ErrDependencyUnavailable) || !errors.Is(err, matchlist.ErrStorageUnavailable) {
		t.Fatalf("expected storage failure, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the sweep deadline as cause, got %v", err)
	}
}

func TestExpirySweeper_Run_StopsOnCancel(t *testing.T) {
	t.Parallel()

	repo := memory.NewMatchListRepository()
	sweeper := NewExpirySweeper(repo, nil, ExpirySweeperConfig{Interval: 5 * time.Millisecond}, nil)

	var runs atomic.Int32
	sweeper.newRunID = func() string {
		runs.Add(1)
		return "tick"
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sweeper.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("sweeper did not tick, runs=%d", runs.Load())
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("sweeper did not stop")
	}
}
