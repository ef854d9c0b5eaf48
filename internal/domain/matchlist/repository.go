package matchlist

import "context"

// Store is the set of match list operations. The repository implements it
// with one transaction per call; a scope implements it inside a shared one.
type Store interface {
	Schedule(ctx context.Context, req ScheduleRequest) (ScheduledMatch, error)
	Cancel(ctx context.Context, teamA, teamB int64) (ScheduledMatch, error)
	FindByPair(ctx context.Context, teamA, teamB int64) (ScheduledMatch, bool, error)
	ListUpcoming(ctx context.Context, notBefore int64, page Page) ([]ScheduledMatch, error)
	PurgeExpired(ctx context.Context, cutoff int64) ([]ScheduledMatch, error)
}

// ScopeFunc runs inside one transaction. Returning an error rolls it back.
type ScopeFunc func(ctx context.Context, scope Store) error

// Repository is the sole gateway to the scheduled fixture table.
type Repository interface {
	Store
	WithinScope(ctx context.Context, fn ScopeFunc) error
	Close() error
}
