package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/matchlist/internal/config"
	"github.com/riskibarqy/matchlist/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchlist/internal/infrastructure/repository/sqldb"
)

func testConfig(dbURL string) config.Config {
	return config.Config{
		AppEnv:                config.EnvDev,
		HTTPAddr:              ":0",
		ReadTimeout:           time.Second,
		WriteTimeout:          time.Second,
		CORSAllowedOrigins:    []string{"*"},
		DBURL:                 dbURL,
		DBOperationTimeout:    time.Second,
		DBMaxOpenConns:        1,
		MatchMaxLead:          time.Hour,
		MatchPageSize:         10,
		SweepInterval:         time.Minute,
		WorkerPoolSize:        2,
		WorkerQueuePerWorker:  4,
		StorageCircuitEnabled: true,
	}
}

func TestNew_MemoryStorage(t *testing.T) {
	application, err := New(context.Background(), testConfig("memory://"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	assert.IsType(t, &memory.MatchListRepository{}, application.repo)
	assert.NotNil(t, application.Sweeper)

	rec := httptest.NewRecorder()
	application.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNew_SQLiteStorage(t *testing.T) {
	location := "file:" + filepath.Join(t.TempDir(), "app.db")

	application, err := New(context.Background(), testConfig(location), nil)
	require.NoError(t, err)

	assert.IsType(t, &sqldb.MatchListRepository{}, application.repo)
	require.NoError(t, application.Close())
}

func TestNew_RejectsEmptyAddr(t *testing.T) {
	cfg := testConfig("memory://")
	cfg.HTTPAddr = " "

	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}
