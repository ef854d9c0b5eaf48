package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/matchlist/internal/domain/matchlist"
)

var errRepositoryClosed = crerr.New("match list repository is closed")

var _ matchlist.Repository = (*MatchListRepository)(nil)

// MatchListRepository keeps fixtures in process memory. Scopes hold the write
// lock for their whole duration and work on a copy that replaces the live
// table only when the scope succeeds, so calling the repository itself from
// inside a scope deadlocks; use the scope Store instead.
type MatchListRepository struct {
	mu     sync.RWMutex
	items  fixtureTable
	closed bool
}

func NewMatchListRepository(seed ...matchlist.ScheduledMatch) *MatchListRepository {
	items := make(fixtureTable, len(seed))
	for _, row := range seed {
		pair := matchlist.CanonicalPair(row.TeamAID, row.TeamBID)
		row.TeamAID, row.TeamBID = pair.TeamAID, pair.TeamBID
		items[pair] = row
	}
	return &MatchListRepository{items: items}
}

func (r *MatchListRepository) Schedule(ctx context.Context, req matchlist.ScheduleRequest) (matchlist.ScheduledMatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.usable(ctx, "schedule match"); err != nil {
		return matchlist.ScheduledMatch{}, err
	}
	return r.items.schedule(req)
}

func (r *MatchListRepository) Cancel(ctx context.Context, teamA, teamB int64) (matchlist.ScheduledMatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.usable(ctx, "cancel match"); err != nil {
		return matchlist.ScheduledMatch{}, err
	}
	return r.items.cancel(teamA, teamB)
}

func (r *MatchListRepository) FindByPair(ctx context.Context, teamA, teamB int64) (matchlist.ScheduledMatch, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.usable(ctx, "find match"); err != nil {
		return matchlist.ScheduledMatch{}, false, err
	}
	row, ok := r.items.find(teamA, teamB)
	return row, ok, nil
}

func (r *MatchListRepository) ListUpcoming(ctx context.Context, notBefore int64, page matchlist.Page) ([]matchlist.ScheduledMatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.usable(ctx, "list upcoming matches"); err != nil {
		return nil, err
	}
	return r.items.listUpcoming(notBefore, page), nil
}

func (r *MatchListRepository) PurgeExpired(ctx context.Context, cutoff int64) ([]matchlist.ScheduledMatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.usable(ctx, "purge expired matches"); err != nil {
		return nil, err
	}
	return r.items.purgeExpired(cutoff), nil
}

func (r *MatchListRepository) WithinScope(ctx context.Context, fn matchlist.ScopeFunc) error {
	if fn == nil {
		return fmt.Errorf("scope func is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.usable(ctx, "match list scope"); err != nil {
		return err
	}

	scope := &scopeStore{items: maps.Clone(r.items)}
	if err := fn(ctx, scope); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return matchlist.StorageFailure(err, "match list scope: commit")
	}

	r.items = scope.items
	return nil
}

func (r *MatchListRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	return nil
}

func (r *MatchListRepository) usable(ctx context.Context, op string) error {
	if r.closed {
		return matchlist.StorageFailure(errRepositoryClosed, op)
	}
	if err := ctx.Err(); err != nil {
		return matchlist.StorageFailure(err, op)
	}
	return nil
}

// scopeStore works on a private copy of the table. It is only used by the
// goroutine running the scope, which already holds the repository lock.
type scopeStore struct {
	items fixtureTable
}

func (s *scopeStore) Schedule(ctx context.Context, req matchlist.ScheduleRequest) (matchlist.ScheduledMatch, error) {
	if err := ctx.Err(); err != nil {
		return matchlist.ScheduledMatch{}, matchlist.StorageFailure(err, "schedule match")
	}
	return s.items.schedule(req)
}

func (s *scopeStore) Cancel(ctx context.Context, teamA, teamB int64) (matchlist.ScheduledMatch, error) {
	if err := ctx.Err(); err != nil {
		return matchlist.ScheduledMatch{}, matchlist.StorageFailure(err, "cancel match")
	}
	return s.items.cancel(teamA, teamB)
}

func (s *scopeStore) FindByPair(ctx context.Context, teamA, teamB int64) (matchlist.ScheduledMatch, bool, error) {
	if err := ctx.Err(); err != nil {
		return matchlist.ScheduledMatch{}, false, matchlist.StorageFailure(err, "find match")
	}
	row, ok := s.items.find(teamA, teamB)
	return row, ok, nil
}

func (s *scopeStore) ListUpcoming(ctx context.Context, notBefore int64, page matchlist.Page) ([]matchlist.ScheduledMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, matchlist.StorageFailure(err, "list upcoming matches")
	}
	return s.items.listUpcoming(notBefore, page), nil
}

func (s *scopeStore) PurgeExpired(ctx context.Context, cutoff int64) ([]matchlist.ScheduledMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, matchlist.StorageFailure(err, "purge expired matches")
	}
	return s.items.purgeExpired(cutoff), nil
}

type fixtureTable map[matchlist.Pair]matchlist.ScheduledMatch

func (t fixtureTable) schedule(req matchlist.ScheduleRequest) (matchlist.ScheduledMatch, error) {
	if err := matchlist.ValidateScheduleRequest(req); err != nil {
		return matchlist.ScheduledMatch{}, err
	}

	pair := matchlist.CanonicalPair(req.TeamA, req.TeamB)
	if _, exists := t[pair]; exists {
		return matchlist.ScheduledMatch{}, crerr.Wrapf(matchlist.ErrDuplicateFixture, "teams %d and %d", pair.TeamAID, pair.TeamBID)
	}

	row := matchlist.ScheduledMatch{
		StartTime:   req.StartTime,
		TeamAID:     pair.TeamAID,
		TeamBID:     pair.TeamBID,
		ScheduledAt: req.Now,
		ScheduledBy: req.Actor,
	}
	t[pair] = row
	return row, nil
}

func (t fixtureTable) cancel(teamA, teamB int64) (matchlist.ScheduledMatch, error) {
	pair := matchlist.CanonicalPair(teamA, teamB)
	row, ok := t[pair]
	if !ok {
		return matchlist.ScheduledMatch{}, crerr.Wrapf(matchlist.ErrFixtureNotFound, "teams %d and %d", pair.TeamAID, pair.TeamBID)
	}
	delete(t, pair)
	return row, nil
}

func (t fixtureTable) find(teamA, teamB int64) (matchlist.ScheduledMatch, bool) {
	row, ok := t[matchlist.CanonicalPair(teamA, teamB)]
	return row, ok
}

func (t fixtureTable) listUpcoming(notBefore int64, page matchlist.Page) []matchlist.ScheduledMatch {
	page = page.Normalize()

	upcoming := make([]matchlist.ScheduledMatch, 0, len(t))
	for _, row := range t {
		if row.StartTime > notBefore {
			upcoming = append(upcoming, row)
		}
	}
	slices.SortFunc(upcoming, matchlist.CompareByStart)

	if page.Offset >= len(upcoming) {
		return []matchlist.ScheduledMatch{}
	}
	end := min(page.Offset+page.Limit, len(upcoming))
	return slices.Clone(upcoming[page.Offset:end])
}

func (t fixtureTable) purgeExpired(cutoff int64) []matchlist.ScheduledMatch {
	removed := make([]matchlist.ScheduledMatch, 0)
	for pair, row := range t {
		if row.StartTime <= cutoff {
			removed = append(removed, row)
			delete(t, pair)
		}
	}
	slices.SortFunc(removed, matchlist.CompareByStart)
	return removed
}
