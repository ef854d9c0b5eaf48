package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/riskibarqy/matchlist/internal/domain/matchlist"
	"github.com/riskibarqy/matchlist/internal/platform/logging"
	"github.com/riskibarqy/matchlist/internal/platform/resilience"
	"github.com/riskibarqy/matchlist/internal/platform/worker"
)

const (
	defaultSweepInterval = time.Minute
	defaultSweepTimeout  = 30 * time.Second
	sweepFlightKey       = "purge-expired"
)

type ExpirySweeperConfig struct {
	Interval time.Duration
	// Timeout bounds one purge independently of the callers' contexts.
	Timeout time.Duration
}

type SweepResult struct {
	RunID   string                     `json:"run_id"`
	Cutoff  time.Time                  `json:"cutoff"`
	Removed []matchlist.ScheduledMatch `json:"removed"`
}

// ExpirySweeper periodically removes fixtures whose start time has passed.
type ExpirySweeper struct {
	repo     matchlist.Repository
	pool     *worker.Pool
	cfg      ExpirySweeperConfig
	logger   *logging.Logger
	now      func() time.Time
	newRunID func() string
	flight   resilience.SingleFlight[SweepResult]
}

func NewExpirySweeper(repo matchlist.Repository, pool *worker.Pool, cfg ExpirySweeperConfig, logger *logging.Logger) *ExpirySweeper {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultSweepInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSweepTimeout
	}

	return &ExpirySweeper{
		repo:     repo,
		pool:     pool,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
}

// RunOnce purges every fixture that started at or before now. Overlapping
// calls share one purge.
func (s *ExpirySweeper) RunOnce(ctx context.Context) (SweepResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ExpirySweeper.RunOnce")
	defer span.End()

	result, err, shared := s.flight.Do(sweepFlightKey, func() (SweepResult, error) {
		sweepCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Timeout)
		defer cancel()
		return s.sweep(sweepCtx)
	})
	if err != nil {
		return SweepResult{}, err
	}
	if shared {
		s.logger.DebugContext(ctx, "joined running expiry sweep", "run_id", result.RunID)
	}
	return result, nil
}

func (s *ExpirySweeper) sweep(ctx context.Context) (SweepResult, error) {
	result := SweepResult{
		RunID:  s.newRunID(),
		Cutoff: s.now().UTC().Truncate(time.Second),
	}

	err := s.pool.Do(ctx, func(ctx context.Context) error {
		removed, err := s.repo.PurgeExpired(ctx, result.Cutoff.Unix())
		if err != nil {
			return err
		}
		result.Removed = removed
		return nil
	})
	err = storageTimeout(err, "purge expired matches")
	if err != nil {
		if isStorageFailure(err) {
			return SweepResult{}, fmt.Errorf("%w: purge expired matches: %w", ErrDependencyUnavailable, err)
		}
		return SweepResult{}, fmt.Errorf("purge expired matches: %w", err)
	}
	if result.Removed == nil {
		result.Removed = []matchlist.ScheduledMatch{}
	}

	for _, row := range result.Removed {
		s.logger.InfoContext(ctx, "expired match removed",
			"run_id", result.RunID,
			"team_a_id", row.TeamAID,
			"team_b_id", row.TeamBID,
			"start_time", row.StartTime,
			"scheduled_by", row.ScheduledBy,
		)
	}
	if len(result.Removed) > 0 {
		s.logger.InfoContext(ctx, "expiry sweep finished",
			"run_id", result.RunID,
			"cutoff", result.Cutoff.Unix(),
			"removed", len(result.Removed),
		)
	}

	return result, nil
}

// Run sweeps immediately and then on every interval until ctx is done.
// Failed sweeps are logged and retried on the next tick.
func (s *ExpirySweeper) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "expiry sweeper started", "interval", s.cfg.Interval.String())

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.logger.WarnContext(ctx, "expiry sweep failed", "error", err)
		}

		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "expiry sweeper stopped")
			return nil
		case <-ticker.C:
		}
	}
}
