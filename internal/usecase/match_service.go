package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/matchlist/internal/domain/matchlist"
	"github.com/riskibarqy/matchlist/internal/platform/logging"
	"github.com/riskibarqy/matchlist/internal/platform/resilience"
	"github.com/riskibarqy/matchlist/internal/platform/worker"
)

const defaultMatchMaxLead = 90 * 24 * time.Hour

type MatchServiceConfig struct {
	// MaxLead is how far ahead of now a fixture may be scheduled.
	MaxLead        time.Duration
	PageSize       int
	CircuitBreaker resilience.CircuitBreakerConfig
}

type ScheduleInput struct {
	TeamA     int64
	TeamB     int64
	StartTime time.Time
	Actor     int64
}

type RescheduleInput struct {
	TeamA     int64
	TeamB     int64
	StartTime time.Time
	Actor     int64
}

type MatchService struct {
	repo    matchlist.Repository
	pool    *worker.Pool
	breaker *resilience.CircuitBreaker
	cfg     MatchServiceConfig
	logger  *logging.Logger
	now     func() time.Time
}

func NewMatchService(repo matchlist.Repository, pool *worker.Pool, cfg MatchServiceConfig, logger *logging.Logger) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxLead <= 0 {
		cfg.MaxLead = defaultMatchMaxLead
	}
	if cfg.PageSize <= 0 || cfg.PageSize > matchlist.MaxPageSize {
		cfg.PageSize = matchlist.DefaultPageSize
	}

	logger.Debug("storage circuit configured", cfg.CircuitBreaker.LogAttrs()...)
	breaker := resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("storage circuit state changed", "from", string(from), "to", string(to))
	})

	return &MatchService{
		repo:    repo,
		pool:    pool,
		breaker: breaker,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *MatchService) Schedule(ctx context.Context, input ScheduleInput) (matchlist.ScheduledMatch, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Schedule", fixtureAttrs(input.TeamA, input.TeamB)...)
	defer span.End()

	now := s.now().UTC()
	if err := s.validateFixture(input.TeamA, input.TeamB, input.StartTime, input.Actor, now); err != nil {
		return matchlist.ScheduledMatch{}, err
	}

	var out matchlist.ScheduledMatch
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.repo.Schedule(ctx, matchlist.ScheduleRequest{
			TeamA:     input.TeamA,
			TeamB:     input.TeamB,
			StartTime: input.StartTime.Unix(),
			Actor:     input.Actor,
			Now:       now.Unix(),
		})
		return err
	})
	if err != nil {
		return matchlist.ScheduledMatch{}, s.translate(ctx, err, "schedule match")
	}

	s.logger.InfoContext(ctx, "match scheduled",
		"team_a_id", out.TeamAID,
		"team_b_id", out.TeamBID,
		"start_time", out.StartTime,
		"scheduled_by", out.ScheduledBy,
	)
	return out, nil
}

func (s *MatchService) Cancel(ctx context.Context, teamA, teamB int64) (matchlist.ScheduledMatch, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Cancel", fixtureAttrs(teamA, teamB)...)
	defer span.End()

	if err := validateTeamIDs(teamA, teamB); err != nil {
		return matchlist.ScheduledMatch{}, err
	}

	var out matchlist.ScheduledMatch
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.repo.Cancel(ctx, teamA, teamB)
		return err
	})
	if err != nil {
		return matchlist.ScheduledMatch{}, s.translate(ctx, err, "cancel match")
	}

	s.logger.InfoContext(ctx, "match cancelled", "team_a_id", out.TeamAID, "team_b_id", out.TeamBID, "start_time", out.StartTime)
	return out, nil
}

func (s *MatchService) Get(ctx context.Context, teamA, teamB int64) (matchlist.ScheduledMatch, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Get", fixtureAttrs(teamA, teamB)...)
	defer span.End()

	if err := validateTeamIDs(teamA, teamB); err != nil {
		return matchlist.ScheduledMatch{}, err
	}

	var (
		out   matchlist.ScheduledMatch
		found bool
	)
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		out, found, err = s.repo.FindByPair(ctx, teamA, teamB)
		return err
	})
	if err != nil {
		return matchlist.ScheduledMatch{}, s.translate(ctx, err, "find match")
	}
	if !found {
		pair := matchlist.CanonicalPair(teamA, teamB)
		return matchlist.ScheduledMatch{}, fmt.Errorf("%w: match between teams %d and %d", ErrNotFound, pair.TeamAID, pair.TeamBID)
	}

	return out, nil
}

// ListUpcoming returns fixtures starting strictly after notBefore. A zero
// notBefore means now.
func (s *MatchService) ListUpcoming(ctx context.Context, notBefore time.Time, page matchlist.Page) ([]matchlist.ScheduledMatch, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListUpcoming")
	defer span.End()

	if notBefore.IsZero() {
		notBefore = s.now()
	}
	if page.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must be >= 0", ErrInvalidInput)
	}
	if page.Limit <= 0 {
		page.Limit = s.cfg.PageSize
	}

	var out []matchlist.ScheduledMatch
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.repo.ListUpcoming(ctx, notBefore.Unix(), page)
		return err
	})
	if err != nil {
		return nil, s.translate(ctx, err, "list upcoming matches")
	}
	if out == nil {
		out = []matchlist.ScheduledMatch{}
	}

	return out, nil
}

// Reschedule moves an existing fixture to a new start time. The old row is
// removed and the new one inserted in one scope, so a failed insert keeps the
// old fixture.
func (s *MatchService) Reschedule(ctx context.Context, input RescheduleInput) (matchlist.ScheduledMatch, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Reschedule", fixtureAttrs(input.TeamA, input.TeamB)...)
	defer span.End()

	now := s.now().UTC()
	if err := s.validateFixture(input.TeamA, input.TeamB, input.StartTime, input.Actor, now); err != nil {
		return matchlist.ScheduledMatch{}, err
	}

	var (
		previous matchlist.ScheduledMatch
		out      matchlist.ScheduledMatch
	)
	err := s.call(ctx, func(ctx context.Context) error {
		return s.repo.WithinScope(ctx, func(ctx context.Context, scope matchlist.Store) error {
			var err error
			previous, err = scope.Cancel(ctx, input.TeamA, input.TeamB)
			if err != nil {
				return err
			}
			out, err = scope.Schedule(ctx, matchlist.ScheduleRequest{
				TeamA:     input.TeamA,
				TeamB:     input.TeamB,
				StartTime: input.StartTime.Unix(),
				Actor:     input.Actor,
				Now:       now.Unix(),
			})
			return err
		})
	})
	if err != nil {
		return matchlist.ScheduledMatch{}, s.translate(ctx, err, "reschedule match")
	}

	s.logger.InfoContext(ctx, "match rescheduled",
		"team_a_id", out.TeamAID,
		"team_b_id", out.TeamBID,
		"previous_start_time", previous.StartTime,
		"start_time", out.StartTime,
		"scheduled_by", out.ScheduledBy,
	)
	return out, nil
}

func (s *MatchService) CircuitState() resilience.CircuitState {
	return s.breaker.State()
}

func (s *MatchService) call(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.breaker.Execute(func() error {
		return storageTimeout(s.pool.Do(ctx, fn), "match storage call")
	}, isStorageFailure)
}

func (s *MatchService) validateFixture(teamA, teamB int64, startTime time.Time, actor int64, now time.Time) error {
	if err := validateTeamIDs(teamA, teamB); err != nil {
		return err
	}
	if teamA == teamB {
		return fmt.Errorf("%w: a team cannot play against itself", ErrInvalidInput)
	}
	if actor <= 0 {
		return fmt.Errorf("%w: scheduled_by must be > 0", ErrInvalidInput)
	}
	if startTime.IsZero() {
		return fmt.Errorf("%w: start time is required", ErrInvalidInput)
	}
	// Storage keeps whole seconds.
	startTime = startTime.Truncate(time.Second)
	if !startTime.After(now) {
		return fmt.Errorf("%w: start time %s is not in the future", ErrInvalidInput, startTime.UTC().Format(time.RFC3339))
	}
	if startTime.Sub(now) > s.cfg.MaxLead {
		return fmt.Errorf("%w: start time %s is more than %s ahead", ErrInvalidInput, startTime.UTC().Format(time.RFC3339), s.cfg.MaxLead)
	}
	return nil
}

func validateTeamIDs(teamA, teamB int64) error {
	if teamA <= 0 || teamB <= 0 {
		return fmt.Errorf("%w: team ids must be > 0", ErrInvalidInput)
	}
	return nil
}

func isStorageFailure(err error) bool {
	return errors.Is(err, matchlist.ErrStorageUnavailable)
}

// storageTimeout reports a deadline or cancellation that ended a storage
// call, including one hit while waiting on the worker pool, as a storage
// failure.
func storageTimeout(err error, msg string) error {
	if err == nil || isStorageFailure(err) || !matchlist.IsTimeout(err) {
		return err
	}
	return matchlist.StorageFailure(err, msg)
}

func (s *MatchService) translate(ctx context.Context, err error, op string) error {
	switch {
	case errors.Is(err, matchlist.ErrInvalidFixture):
		return fmt.Errorf("%w: %s: %w", ErrInvalidInput, op, err)
	case errors.Is(err, matchlist.ErrDuplicateFixture):
		return fmt.Errorf("%w: %s: %w", ErrConflict, op, err)
	case errors.Is(err, matchlist.ErrFixtureNotFound):
		return fmt.Errorf("%w: %s: %w", ErrNotFound, op, err)
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, worker.ErrPoolOverloaded):
		s.logger.WarnContext(ctx, "match storage call rejected", "operation", op, "error", err)
		return fmt.Errorf("%w: %s: %w", ErrDependencyUnavailable, op, err)
	case isStorageFailure(err):
		s.logger.ErrorContext(ctx, "match storage failure", "operation", op, "error", err)
		return fmt.Errorf("%w: %s: %w", ErrDependencyUnavailable, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
