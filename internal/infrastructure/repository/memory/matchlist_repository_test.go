package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/matchlist/internal/domain/matchlist"
	"github.com/riskibarqy/matchlist/internal/domain/matchlist/matchlisttest"
)

func TestMatchListRepository(t *testing.T) {
	matchlisttest.RunRepositorySuite(t, func(t *testing.T) matchlist.Repository {
		repo := NewMatchListRepository()
		t.Cleanup(func() { _ = repo.Close() })
		return repo
	})
}

func TestMatchListRepository_SeedIsCanonicalized(t *testing.T) {
	repo := NewMatchListRepository(matchlist.ScheduledMatch{
		StartTime: 100, TeamAID: 9, TeamBID: 2, ScheduledAt: 1, ScheduledBy: 3,
	})

	got, ok, err := repo.FindByPair(context.Background(), 2, 9)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, matchlist.Pair{TeamAID: 2, TeamBID: 9}, got.Pair())
}

func TestMatchListRepository_ClosedRejectsCalls(t *testing.T) {
	repo := NewMatchListRepository()
	require.NoError(t, repo.Close())

	_, err := repo.ListUpcoming(context.Background(), 0, matchlist.Page{})
	require.ErrorIs(t, err, matchlist.ErrStorageUnavailable)
}

func TestMatchListRepository_ReturnedRowsAreCopies(t *testing.T) {
	repo := NewMatchListRepository()
	ctx := context.Background()
	_, err := repo.Schedule(ctx, matchlist.ScheduleRequest{TeamA: 1, TeamB: 2, StartTime: 100, Now: 1})
	require.NoError(t, err)

	rows, err := repo.ListUpcoming(ctx, 0, matchlist.Page{})
	require.NoError(t, err)
	rows[0].StartTime = 999

	again, err := repo.ListUpcoming(ctx, 0, matchlist.Page{})
	require.NoError(t, err)
	require.Equal(t, int64(100), again[0].StartTime)
}
