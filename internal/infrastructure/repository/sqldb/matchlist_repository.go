package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/matchlist/internal/domain/matchlist"
	qb "github.com/riskibarqy/matchlist/internal/platform/querybuilder"
)

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	Rebind(query string) string
}

var _ matchlist.Repository = (*MatchListRepository)(nil)

// MatchListRepository stores scheduled fixtures in sqlite or postgres. Every
// method runs in its own transaction.
type MatchListRepository struct {
	db   *sqlx.DB
	opts options
}

// NewMatchListRepository opens rawLocation and brings its schema up to date.
// Postgres URLs and key=value DSNs select postgres; anything else is treated
// as a sqlite path.
func NewMatchListRepository(ctx context.Context, rawLocation string, opts ...Option) (*MatchListRepository, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	loc, err := resolveLocation(rawLocation, cfg.disablePreparedBinaryResult)
	if err != nil {
		return nil, matchlist.StorageFailure(err, "resolve match list storage")
	}

	db, err := openDB(ctx, loc, cfg)
	if err != nil {
		return nil, matchlist.StorageFailure(err, "open match list storage")
	}

	if err := migrateSchema(ctx, db, loc, cfg.logger); err != nil {
		_ = db.Close()
		return nil, matchlist.StorageFailure(err, "migrate match list schema")
	}

	cfg.logger.InfoContext(ctx, "match list storage ready", "dialect", string(loc.dialect), "database", loc.dbName)

	return newMatchListRepository(db, cfg), nil
}

func newMatchListRepository(db *sqlx.DB, opts options) *MatchListRepository {
	return &MatchListRepository{db: db, opts: opts}
}

func (r *MatchListRepository) Schedule(ctx context.Context, req matchlist.ScheduleRequest) (matchlist.ScheduledMatch, error) {
	if err := matchlist.ValidateScheduleRequest(req); err != nil {
		return matchlist.ScheduledMatch{}, err
	}

	var out matchlist.ScheduledMatch
	err := r.inTx(ctx, false, "schedule match", func(ctx context.Context, store *txStore) error {
		var err error
		out, err = store.Schedule(ctx, req)
		return err
	})
	return out, err
}

func (r *MatchListRepository) Cancel(ctx context.Context, teamA, teamB int64) (matchlist.ScheduledMatch, error) {
	var out matchlist.ScheduledMatch
	err := r.inTx(ctx, false, "cancel match", func(ctx context.Context, store *txStore) error {
		var err error
		out, err = store.Cancel(ctx, teamA, teamB)
		return err
	})
	return out, err
}

func (r *MatchListRepository) FindByPair(ctx context.Context, teamA, teamB int64) (matchlist.ScheduledMatch, bool, error) {
	var (
		out   matchlist.ScheduledMatch
		found bool
	)
	err := r.inTx(ctx, true, "find match", func(ctx context.Context, store *txStore) error {
		var err error
		out, found, err = store.FindByPair(ctx, teamA, teamB)
		return err
	})
	return out, found, err
}

func (r *MatchListRepository) ListUpcoming(ctx context.Context, notBefore int64, page matchlist.Page) ([]matchlist.ScheduledMatch, error) {
	var out []matchlist.ScheduledMatch
	err := r.inTx(ctx, true, "list upcoming matches", func(ctx context.Context, store *txStore) error {
		var err error
		out, err = store.ListUpcoming(ctx, notBefore, page)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MatchListRepository) PurgeExpired(ctx context.Context, cutoff int64) ([]matchlist.ScheduledMatch, error) {
	var out []matchlist.ScheduledMatch
	err := r.inTx(ctx, false, "purge expired matches", func(ctx context.Context, store *txStore) error {
		var err error
		out, err = store.PurgeExpired(ctx, cutoff)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WithinScope runs fn in a single transaction. It commits when fn returns nil
// and rolls back when fn returns an error or panics; the panic is not
// recovered.
func (r *MatchListRepository) WithinScope(ctx context.Context, fn matchlist.ScopeFunc) error {
	if fn == nil {
		return fmt.Errorf("scope func is nil")
	}
	return r.inTx(ctx, false, "match list scope", func(ctx context.Context, store *txStore) error {
		return fn(ctx, store)
	})
}

func (r *MatchListRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return matchlist.StorageFailure(err, "close match list storage")
	}
	return nil
}

func (r *MatchListRepository) inTx(ctx context.Context, readOnly bool, op string, fn func(ctx context.Context, store *txStore) error) error {
	ctx, cancel := r.opts.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: readOnly})
	if err != nil {
		return storageFailure(err, op+": begin tx")
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			r.opts.logger.WarnContext(ctx, "rollback match list tx failed", "operation", op, "error", rbErr)
		}
	}()

	if err := fn(ctx, &txStore{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageFailure(err, op+": commit tx")
	}
	committed = true

	return nil
}

// txStore runs the match list statements on one queryer.
type txStore struct {
	q queryer
}

func (s *txStore) Schedule(ctx context.Context, req matchlist.ScheduleRequest) (matchlist.ScheduledMatch, error) {
	if err := matchlist.ValidateScheduleRequest(req); err != nil {
		return matchlist.ScheduledMatch{}, err
	}

	pair := matchlist.CanonicalPair(req.TeamA, req.TeamB)
	query, args, err := qb.InsertModel(scheduledMatchesTable, scheduledMatchTableModel{
		StartTime:   req.StartTime,
		TeamAID:     pair.TeamAID,
		TeamBID:     pair.TeamBID,
		ScheduledAt: req.Now,
		ScheduledBy: req.Actor,
	}, returningScheduledMatch)
	if err != nil {
		return matchlist.ScheduledMatch{}, fmt.Errorf("build insert scheduled match query: %w", err)
	}

	var row scheduledMatchTableModel
	if err := s.q.GetContext(ctx, &row, s.q.Rebind(query), args...); err != nil {
		if isUniqueViolation(err) {
			return matchlist.ScheduledMatch{}, crerr.Wrapf(matchlist.ErrDuplicateFixture, "teams %d and %d", pair.TeamAID, pair.TeamBID)
		}
		return matchlist.ScheduledMatch{}, storageFailure(err, "insert scheduled match")
	}

	return row.toDomain(), nil
}

func (s *txStore) Cancel(ctx context.Context, teamA, teamB int64) (matchlist.ScheduledMatch, error) {
	pair := matchlist.CanonicalPair(teamA, teamB)
	query, args, err := qb.DeleteFrom(scheduledMatchesTable).
		Where(
			qb.Eq("team_a_id", pair.TeamAID),
			qb.Eq("team_b_id", pair.TeamBID),
		).
		Suffix(returningScheduledMatch).
		ToSQL()
	if err != nil {
		return matchlist.ScheduledMatch{}, fmt.Errorf("build delete scheduled match query: %w", err)
	}

	var row scheduledMatchTableModel
	if err := s.q.GetContext(ctx, &row, s.q.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return matchlist.ScheduledMatch{}, crerr.Wrapf(matchlist.ErrFixtureNotFound, "teams %d and %d", pair.TeamAID, pair.TeamBID)
		}
		return matchlist.ScheduledMatch{}, storageFailure(err, "delete scheduled match")
	}

	return row.toDomain(), nil
}

func (s *txStore) FindByPair(ctx context.Context, teamA, teamB int64) (matchlist.ScheduledMatch, bool, error) {
	pair := matchlist.CanonicalPair(teamA, teamB)
	query, args, err := qb.Select(scheduledMatchColumns...).
		From(scheduledMatchesTable).
		Where(
			qb.Eq("team_a_id", pair.TeamAID),
			qb.Eq("team_b_id", pair.TeamBID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return matchlist.ScheduledMatch{}, false, fmt.Errorf("build select scheduled match query: %w", err)
	}

	var row scheduledMatchTableModel
	if err := s.q.GetContext(ctx, &row, s.q.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return matchlist.ScheduledMatch{}, false, nil
		}
		return matchlist.ScheduledMatch{}, false, storageFailure(err, "select scheduled match")
	}

	return row.toDomain(), true, nil
}

func (s *txStore) ListUpcoming(ctx context.Context, notBefore int64, page matchlist.Page) ([]matchlist.ScheduledMatch, error) {
	page = page.Normalize()
	query, args, err := qb.Select(scheduledMatchColumns...).
		From(scheduledMatchesTable).
		Where(qb.Gt("start_time", notBefore)).
		OrderBy("start_time ASC", "team_a_id ASC", "team_b_id ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select upcoming matches query: %w", err)
	}

	var rows []scheduledMatchTableModel
	if err := s.q.SelectContext(ctx, &rows, s.q.Rebind(query), args...); err != nil {
		return nil, storageFailure(err, "select upcoming matches")
	}

	return toDomainMatches(rows), nil
}

func (s *txStore) PurgeExpired(ctx context.Context, cutoff int64) ([]matchlist.ScheduledMatch, error) {
	query, args, err := qb.DeleteFrom(scheduledMatchesTable).
		Where(qb.Lte("start_time", cutoff)).
		Suffix(returningScheduledMatch).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build purge expired matches query: %w", err)
	}

	var rows []scheduledMatchTableModel
	if err := s.q.SelectContext(ctx, &rows, s.q.Rebind(query), args...); err != nil {
		return nil, storageFailure(err, "purge expired matches")
	}

	// RETURNING gives no ordering guarantee
	out := toDomainMatches(rows)
	slices.SortFunc(out, matchlist.CompareByStart)
	return out, nil
}

func storageFailure(err error, op string) error {
	if matchlist.IsTimeout(err) {
		return matchlist.StorageFailure(err, op+": timed out")
	}
	return matchlist.StorageFailure(err, op)
}
