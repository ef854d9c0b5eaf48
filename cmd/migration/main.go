package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"

	"github.com/riskibarqy/matchlist/internal/infrastructure/repository/sqldb"
	"github.com/riskibarqy/matchlist/internal/platform/logging"
)

const connectTimeout = 30 * time.Second

func main() {
	logger := logging.NewJSON(logging.LevelInfo).Zap()
	defer func() { _ = logger.Sync() }()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		logger.Fatal("DB_URL is required")
	}
	if strings.HasPrefix(dbURL, "memory://") {
		logger.Fatal("memory:// storage has no schema to migrate")
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	m, err := sqldb.NewMigrator(ctx, dbURL, envBool("DB_DISABLE_PREPARED_BINARY_RESULT"))
	if err != nil {
		logger.Fatal("create migrator", zap.Error(err))
	}
	defer closeMigrator(logger, m)

	cmd := strings.ToLower(strings.TrimSpace(os.Args[1]))
	switch cmd {
	case "up":
		handleMigrationErr(logger, m.Up())
		logger.Info("migrations applied")
	case "down":
		steps, parseErr := parseSteps(os.Args[2:])
		if parseErr != nil {
			logger.Fatal("parse down steps", zap.Error(parseErr))
		}
		handleMigrationErr(logger, m.Steps(-steps))
		logger.Info("migrations rolled back", zap.Int("steps", steps))
	case "version":
		version, dirty, versionErr := m.Version()
		if errors.Is(versionErr, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			fmt.Println("dirty: false")
			return
		}
		if versionErr != nil {
			logger.Fatal("read version", zap.Error(versionErr))
		}
		fmt.Printf("version: %d\n", version)
		fmt.Printf("dirty: %t\n", dirty)
	case "force":
		if len(os.Args) < 3 {
			logger.Fatal("force requires a version argument")
		}
		version, parseErr := parseVersion(os.Args[2])
		if parseErr != nil {
			logger.Fatal("parse version", zap.Error(parseErr))
		}
		if err := m.Force(version); err != nil {
			logger.Fatal("force version", zap.Int("version", version), zap.Error(err))
		}
		logger.Info("forced migration version", zap.Int("version", version))
	default:
		printUsage()
		os.Exit(2)
	}
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}

	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}

	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}

	return value, nil
}

func handleMigrationErr(logger *zap.Logger, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return
	}
	logger.Fatal("migration failed", zap.Error(err))
}

func closeMigrator(logger *zap.Logger, m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("close migration source", zap.Error(srcErr))
	}
	if dbErr != nil {
		logger.Warn("close migration db", zap.Error(dbErr))
	}
}

func envBool(key string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && value
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <up|down|version|force> [args]\n", name)
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintf(os.Stderr, "  DB_URL=file:matchlist.db %s up\n", name)
	fmt.Fprintf(os.Stderr, "  %s down 1\n", name)
	fmt.Fprintf(os.Stderr, "  %s version\n", name)
	fmt.Fprintf(os.Stderr, "  %s force 1\n", name)
}
