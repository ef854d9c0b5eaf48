// Package matchlisttest holds the behaviour suite every matchlist.Repository
// implementation must pass.
package matchlisttest

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/matchlist/internal/domain/matchlist"
)

// Factory returns an empty repository. It should register its own cleanup.
type Factory func(t *testing.T) matchlist.Repository

var errScopeAborted = errors.New("scope aborted")

func RunRepositorySuite(t *testing.T, newRepo Factory) {
	t.Helper()

	t.Run("schedule stores canonical row", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		got, err := repo.Schedule(ctx, matchlist.ScheduleRequest{
			TeamA: 5, TeamB: 3, StartTime: 1700000000, Actor: 9, Now: 1690000000,
		})
		require.NoError(t, err)
		require.Equal(t, matchlist.ScheduledMatch{
			StartTime: 1700000000, TeamAID: 3, TeamBID: 5, ScheduledAt: 1690000000, ScheduledBy: 9,
		}, got)
	})

	t.Run("lookup is symmetric", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		mustSchedule(t, repo, 7, 3, 500)

		forward, ok, err := repo.FindByPair(ctx, 3, 7)
		require.NoError(t, err)
		require.True(t, ok)

		reverse, ok, err := repo.FindByPair(ctx, 7, 3)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, forward, reverse)
		require.Equal(t, matchlist.Pair{TeamAID: 3, TeamBID: 7}, forward.Pair())
	})

	t.Run("find missing pair", func(t *testing.T) {
		repo := newRepo(t)

		got, ok, err := repo.FindByPair(context.Background(), 1, 2)
		require.NoError(t, err)
		require.False(t, ok)
		require.Zero(t, got)
	})

	t.Run("duplicate pair rejected regardless of order and time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		first := mustSchedule(t, repo, 5, 3, 1700000000)

		_, err := repo.Schedule(ctx, matchlist.ScheduleRequest{
			TeamA: 3, TeamB: 5, StartTime: 1800000000, Actor: 1, Now: 1690000100,
		})
		require.ErrorIs(t, err, matchlist.ErrDuplicateFixture)

		stored, ok, err := repo.FindByPair(ctx, 5, 3)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, first, stored)
	})

	t.Run("same team pair is allowed at storage level", func(t *testing.T) {
		repo := newRepo(t)

		got := mustSchedule(t, repo, 4, 4, 900)
		require.Equal(t, int64(4), got.TeamAID)
		require.Equal(t, int64(4), got.TeamBID)
	})

	t.Run("non positive times rejected", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Schedule(ctx, matchlist.ScheduleRequest{TeamA: 1, TeamB: 2, StartTime: 0, Now: 10})
		require.ErrorIs(t, err, matchlist.ErrInvalidFixture)

		_, err = repo.Schedule(ctx, matchlist.ScheduleRequest{TeamA: 1, TeamB: 2, StartTime: 10, Now: 0})
		require.ErrorIs(t, err, matchlist.ErrInvalidFixture)
	})

	t.Run("cancel round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		scheduled := mustSchedule(t, repo, 5, 3, 1700000000)

		cancelled, err := repo.Cancel(ctx, 5, 3)
		require.NoError(t, err)
		require.Equal(t, scheduled, cancelled)

		_, err = repo.Cancel(ctx, 5, 3)
		require.ErrorIs(t, err, matchlist.ErrFixtureNotFound)

		_, ok, err := repo.FindByPair(ctx, 3, 5)
		require.NoError(t, err)
		require.False(t, ok)

		again := mustSchedule(t, repo, 3, 5, 1700000500)
		require.Equal(t, int64(1700000500), again.StartTime)
	})

	t.Run("purge removes expired rows once", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		mustSchedule(t, repo, 1, 2, 250)
		mustSchedule(t, repo, 3, 4, 50)
		mustSchedule(t, repo, 5, 6, 150)

		removed, err := repo.PurgeExpired(ctx, 100)
		require.NoError(t, err)
		require.Len(t, removed, 1)
		require.Equal(t, int64(50), removed[0].StartTime)

		again, err := repo.PurgeExpired(ctx, 100)
		require.NoError(t, err)
		require.Empty(t, again)

		upcoming, err := repo.ListUpcoming(ctx, 0, matchlist.Page{})
		require.NoError(t, err)
		require.Equal(t, []int64{150, 250}, startTimes(upcoming))
	})

	t.Run("purge includes cutoff and orders by start", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		mustSchedule(t, repo, 1, 2, 300)
		mustSchedule(t, repo, 3, 4, 200)
		mustSchedule(t, repo, 5, 6, 100)

		removed, err := repo.PurgeExpired(ctx, 200)
		require.NoError(t, err)
		require.Equal(t, []int64{100, 200}, startTimes(removed))

		upcoming, err := repo.ListUpcoming(ctx, 0, matchlist.Page{})
		require.NoError(t, err)
		require.Equal(t, []int64{300}, startTimes(upcoming))
	})

	t.Run("list upcoming excludes not before and pages in order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		for i := int64(0); i < 25; i++ {
			// insert out of order on purpose
			start := 1000 + ((i * 7) % 25)
			mustSchedule(t, repo, 100+i, 200+i, start)
		}

		var seen []int64
		for offset := 0; offset < 30; offset += 10 {
			page, err := repo.ListUpcoming(ctx, 1000, matchlist.Page{Limit: 10, Offset: offset})
			require.NoError(t, err)
			seen = append(seen, startTimes(page)...)
		}

		require.Len(t, seen, 24)
		for i := 1; i < len(seen); i++ {
			require.Less(t, seen[i-1], seen[i])
		}
		require.Equal(t, int64(1001), seen[0])

		beyond, err := repo.ListUpcoming(ctx, 0, matchlist.Page{Limit: 10, Offset: 100})
		require.NoError(t, err)
		require.NotNil(t, beyond)
		require.Empty(t, beyond)
	})

	t.Run("list upcoming page defaults", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		for i := int64(0); i < 12; i++ {
			mustSchedule(t, repo, 10+i, 50+i, 500+i)
		}

		defaulted, err := repo.ListUpcoming(ctx, 0, matchlist.Page{Limit: 0, Offset: -3})
		require.NoError(t, err)
		require.Len(t, defaulted, matchlist.DefaultPageSize)
		require.Equal(t, int64(500), defaulted[0].StartTime)

		capped, err := repo.ListUpcoming(ctx, 0, matchlist.Page{Limit: 1000})
		require.NoError(t, err)
		require.Len(t, capped, 12)
	})

	t.Run("list upcoming breaks start time ties by pair", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		mustSchedule(t, repo, 9, 8, 700)
		mustSchedule(t, repo, 2, 1, 700)
		mustSchedule(t, repo, 5, 4, 700)

		got, err := repo.ListUpcoming(ctx, 0, matchlist.Page{})
		require.NoError(t, err)
		require.Equal(t, []matchlist.Pair{
			{TeamAID: 1, TeamBID: 2},
			{TeamAID: 4, TeamBID: 5},
			{TeamAID: 8, TeamBID: 9},
		}, pairs(got))
	})

	t.Run("racing schedules admit exactly one", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var (
			wg         conc.WaitGroup
			succeeded  atomic.Int32
			duplicates atomic.Int32
		)
		for i := int64(0); i < 8; i++ {
			wg.Go(func() {
				a, b := int64(11), int64(22)
				if i%2 == 1 {
					a, b = b, a
				}
				_, err := repo.Schedule(ctx, matchlist.ScheduleRequest{
					TeamA: a, TeamB: b, StartTime: 5000 + i, Actor: i, Now: 1,
				})
				switch {
				case err == nil:
					succeeded.Add(1)
				case errors.Is(err, matchlist.ErrDuplicateFixture):
					duplicates.Add(1)
				default:
					t.Errorf("unexpected schedule error: %v", err)
				}
			})
		}
		wg.Wait()

		require.Equal(t, int32(1), succeeded.Load())
		require.Equal(t, int32(7), duplicates.Load())
	})

	t.Run("scope commits on success", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.WithinScope(ctx, func(ctx context.Context, scope matchlist.Store) error {
			if _, err := scope.Schedule(ctx, request(1, 2, 100)); err != nil {
				return err
			}
			if _, err := scope.Schedule(ctx, request(3, 4, 200)); err != nil {
				return err
			}
			_, ok, err := scope.FindByPair(ctx, 2, 1)
			if err != nil {
				return err
			}
			require.True(t, ok, "scope should see its own writes")
			return nil
		})
		require.NoError(t, err)

		upcoming, err := repo.ListUpcoming(ctx, 0, matchlist.Page{})
		require.NoError(t, err)
		require.Equal(t, []int64{100, 200}, startTimes(upcoming))
	})

	t.Run("scope rolls back on error", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		mustSchedule(t, repo, 1, 2, 100)

		err := repo.WithinScope(ctx, func(ctx context.Context, scope matchlist.Store) error {
			if _, err := scope.Cancel(ctx, 1, 2); err != nil {
				return err
			}
			if _, err := scope.Schedule(ctx, request(5, 6, 300)); err != nil {
				return err
			}
			return errScopeAborted
		})
		require.ErrorIs(t, err, errScopeAborted)

		upcoming, err := repo.ListUpcoming(ctx, 0, matchlist.Page{})
		require.NoError(t, err)
		require.Equal(t, []int64{100}, startTimes(upcoming))
	})

	t.Run("scope rolls back when a statement fails", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		original := mustSchedule(t, repo, 1, 2, 100)
		mustSchedule(t, repo, 3, 4, 200)

		err := repo.WithinScope(ctx, func(ctx context.Context, scope matchlist.Store) error {
			if _, err := scope.Cancel(ctx, 2, 1); err != nil {
				return err
			}
			_, err := scope.Schedule(ctx, request(4, 3, 400))
			return err
		})
		require.ErrorIs(t, err, matchlist.ErrDuplicateFixture)

		restored, ok, err := repo.FindByPair(ctx, 1, 2)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, original, restored)
	})

	t.Run("scope rolls back on panic", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		require.PanicsWithValue(t, "scope exploded", func() {
			_ = repo.WithinScope(ctx, func(ctx context.Context, scope matchlist.Store) error {
				if _, err := scope.Schedule(ctx, request(1, 2, 100)); err != nil {
					return err
				}
				panic("scope exploded")
			})
		})

		_, ok, err := repo.FindByPair(ctx, 1, 2)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("cancelled context reports storage unavailable", func(t *testing.T) {
		repo := newRepo(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := repo.Schedule(ctx, request(1, 2, 100))
		require.ErrorIs(t, err, matchlist.ErrStorageUnavailable)

		_, err = repo.ListUpcoming(ctx, 0, matchlist.Page{})
		require.ErrorIs(t, err, matchlist.ErrStorageUnavailable)
	})
}

func request(teamA, teamB, start int64) matchlist.ScheduleRequest {
	return matchlist.ScheduleRequest{TeamA: teamA, TeamB: teamB, StartTime: start, Actor: 42, Now: 1}
}

func mustSchedule(t *testing.T, repo matchlist.Repository, teamA, teamB, start int64) matchlist.ScheduledMatch {
	t.Helper()
	got, err := repo.Schedule(context.Background(), request(teamA, teamB, start))
	require.NoError(t, err)
	return got
}

func startTimes(rows []matchlist.ScheduledMatch) []int64 {
	out := make([]int64, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.StartTime)
	}
	return out
}

func pairs(rows []matchlist.ScheduledMatch) []matchlist.Pair {
	out := make([]matchlist.Pair, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Pair())
	}
	return out
}
