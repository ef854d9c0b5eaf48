package sqldb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/matchlist/internal/domain/matchlist"
	"github.com/riskibarqy/matchlist/internal/domain/matchlist/matchlisttest"
)

func newSQLiteRepository(t *testing.T, location string, opts ...Option) *MatchListRepository {
	t.Helper()
	repo, err := NewMatchListRepository(context.Background(), location, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestMatchListRepository_SQLiteFile(t *testing.T) {
	matchlisttest.RunRepositorySuite(t, func(t *testing.T) matchlist.Repository {
		return newSQLiteRepository(t, filepath.Join(t.TempDir(), "matches.db"))
	})
}

func TestMatchListRepository_SQLiteInMemory(t *testing.T) {
	matchlisttest.RunRepositorySuite(t, func(t *testing.T) matchlist.Repository {
		return newSQLiteRepository(t, ":memory:")
	})
}

func TestMatchListRepository_ReopenKeepsSchemaAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.db")
	ctx := context.Background()

	first, err := NewMatchListRepository(ctx, "sqlite://"+path)
	require.NoError(t, err)
	_, err = first.Schedule(ctx, matchlist.ScheduleRequest{TeamA: 5, TeamB: 3, StartTime: 1700000000, Actor: 9, Now: 1690000000})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := newSQLiteRepository(t, "file:"+path)
	got, ok, err := second.FindByPair(ctx, 3, 5)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(9), got.ScheduledBy)
}

func TestMatchListRepository_ExpiredDeadline(t *testing.T) {
	repo := newSQLiteRepository(t, filepath.Join(t.TempDir(), "matches.db"))

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := repo.PurgeExpired(ctx, 100)
	require.ErrorIs(t, err, matchlist.ErrStorageUnavailable)

	err = repo.WithinScope(ctx, func(ctx context.Context, scope matchlist.Store) error {
		t.Fatalf("scope must not run with an expired deadline")
		return nil
	})
	require.ErrorIs(t, err, matchlist.ErrStorageUnavailable)
}

func TestMatchListRepository_ScopeObservesOperationTimeout(t *testing.T) {
	repo := newSQLiteRepository(t, filepath.Join(t.TempDir(), "matches.db"), WithOperationTimeout(50*time.Millisecond))

	err := repo.WithinScope(context.Background(), func(ctx context.Context, scope matchlist.Store) error {
		<-ctx.Done()
		_, err := scope.Schedule(ctx, matchlist.ScheduleRequest{TeamA: 1, TeamB: 2, StartTime: 10, Now: 1})
		return err
	})
	require.ErrorIs(t, err, matchlist.ErrStorageUnavailable)

	_, ok, err := repo.FindByPair(context.Background(), 1, 2)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNewMatchListRepository_BadLocation(t *testing.T) {
	_, err := NewMatchListRepository(context.Background(), "  ")
	require.ErrorIs(t, err, matchlist.ErrStorageUnavailable)

	_, err = NewMatchListRepository(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "matches.db"))
	require.ErrorIs(t, err, matchlist.ErrStorageUnavailable)
}

func TestNewMatchListRepository_RefusesDirtySchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.db")
	ctx := context.Background()

	first, err := NewMatchListRepository(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// leave the schema as a failed migration would
	loc, err := resolveLocation(path, false)
	require.NoError(t, err)
	db, err := openDB(ctx, loc, defaultOptions())
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `DROP TABLE scheduled_matches`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `UPDATE schema_migrations SET dirty = 1`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = NewMatchListRepository(ctx, path)
	require.ErrorIs(t, err, matchlist.ErrStorageUnavailable)
	require.ErrorIs(t, err, ErrDirtySchema)

	// the broken table is not recreated behind the operator's back
	db, err = openDB(ctx, loc, defaultOptions())
	require.NoError(t, err)
	defer db.Close()
	var tables int
	require.NoError(t, db.GetContext(ctx, &tables, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'scheduled_matches'`))
	require.Zero(t, tables)
}
