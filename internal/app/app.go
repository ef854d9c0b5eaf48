package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/matchlist/internal/config"
	"github.com/riskibarqy/matchlist/internal/domain/matchlist"
	"github.com/riskibarqy/matchlist/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchlist/internal/infrastructure/repository/sqldb"
	"github.com/riskibarqy/matchlist/internal/interfaces/httpapi"
	"github.com/riskibarqy/matchlist/internal/platform/logging"
	"github.com/riskibarqy/matchlist/internal/platform/resilience"
	"github.com/riskibarqy/matchlist/internal/platform/worker"
	"github.com/riskibarqy/matchlist/internal/usecase"
)

const memoryLocationPrefix = "memory://"

// App holds the HTTP server and the background sweeper sharing one store.
type App struct {
	Server  *http.Server
	Sweeper *usecase.ExpirySweeper

	repo matchlist.Repository
	pool *worker.Pool
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	repo, err := OpenRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	pool, err := worker.NewPool(cfg.WorkerPoolSize, cfg.WorkerQueuePerWorker)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	matchSvc := usecase.NewMatchService(repo, pool, usecase.MatchServiceConfig{
		MaxLead:  cfg.MatchMaxLead,
		PageSize: cfg.MatchPageSize,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.StorageCircuitEnabled,
			FailureThreshold: cfg.StorageCircuitFailureCount,
			OpenTimeout:      cfg.StorageCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.StorageCircuitHalfOpenMaxReq,
		},
	}, logger)
	sweeper := usecase.NewExpirySweeper(repo, pool, usecase.ExpirySweeperConfig{
		Interval: cfg.SweepInterval,
	}, logger)

	handler := httpapi.NewHandler(matchSvc, sweeper, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	return &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		Sweeper: sweeper,
		repo:    repo,
		pool:    pool,
	}, nil
}

// OpenRepository picks the in-memory store for memory:// locations and the
// sql store for everything else.
func OpenRepository(ctx context.Context, cfg config.Config, logger *logging.Logger) (matchlist.Repository, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.HasPrefix(cfg.DBURL, memoryLocationPrefix) {
		logger.InfoContext(ctx, "match list storage ready", "dialect", "memory")
		return memory.NewMatchListRepository(), nil
	}

	return sqldb.NewMatchListRepository(ctx, cfg.DBURL,
		sqldb.WithOperationTimeout(cfg.DBOperationTimeout),
		sqldb.WithMaxOpenConns(cfg.DBMaxOpenConns),
		sqldb.WithDisablePreparedBinaryResult(cfg.DBDisablePreparedBinary),
		sqldb.WithLogger(logger),
	)
}

// Close releases the worker pool and then the store.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if err := a.pool.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := a.repo.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
