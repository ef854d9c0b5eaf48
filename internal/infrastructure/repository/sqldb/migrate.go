package sqldb

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/matchlist/internal/platform/logging"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

// ErrDirtySchema means a previous migration failed half way. It is never
// repaired automatically.
var ErrDirtySchema = errors.New("match list schema is dirty")

// migrateSchema applies pending migrations on an already open database.
// The database handle stays open afterwards.
func migrateSchema(ctx context.Context, db *sqlx.DB, loc location, logger *logging.Logger) error {
	source, err := iofs.New(migrationFiles, migrationsDir)
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	defer source.Close()

	driver, release, err := sharedSchemaDriver(ctx, db, loc)
	if err != nil {
		return fmt.Errorf("create %s migration driver: %w", loc.dialect, err)
	}
	defer func() {
		if err := release(); err != nil {
			logger.WarnContext(ctx, "release migration driver failed", "error", err)
		}
	}()

	// m.Close is not called: for sqlite it would close the shared handle.
	m, err := migrate.NewWithInstance("iofs", source, loc.driverName(), driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}

	if dirty {
		logger.ErrorContext(ctx, "schema is dirty, refusing to open", "version", version)
		return fmt.Errorf("%w: version %d, repair with `migration force <version>`", ErrDirtySchema, version)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.DebugContext(ctx, "schema is up to date", "version", version)
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	newVersion, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	logger.InfoContext(ctx, "schema migrated", "from_version", version, "to_version", newVersion)

	return nil
}

// sharedSchemaDriver builds a migrate driver that does not own db.
func sharedSchemaDriver(ctx context.Context, db *sqlx.DB, loc location) (database.Driver, func() error, error) {
	switch loc.dialect {
	case dialectPostgres:
		conn, err := db.Conn(ctx)
		if err != nil {
			return nil, nil, err
		}
		driver, err := migratepostgres.WithConnection(ctx, conn, &migratepostgres.Config{})
		if err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		// closes the borrowed connection only
		return driver, driver.Close, nil
	case dialectSQLite:
		driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
		if err != nil {
			return nil, nil, err
		}
		return driver, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported dialect %q", loc.dialect)
	}
}

// NewMigrator opens rawLocation and returns a migrate instance over the
// embedded migrations. Closing the migrator closes the database.
func NewMigrator(ctx context.Context, rawLocation string, disablePreparedBinaryResult bool) (*migrate.Migrate, error) {
	loc, err := resolveLocation(rawLocation, disablePreparedBinaryResult)
	if err != nil {
		return nil, err
	}

	db, err := openDB(ctx, loc, defaultOptions())
	if err != nil {
		return nil, err
	}

	var driver database.Driver
	switch loc.dialect {
	case dialectPostgres:
		driver, err = migratepostgres.WithInstance(db.DB, &migratepostgres.Config{DatabaseName: loc.dbName})
	default:
		driver, err = migratesqlite.WithInstance(db.DB, &migratesqlite.Config{DatabaseName: loc.dbName})
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create %s migration driver: %w", loc.dialect, err)
	}

	source, err := iofs.New(migrationFiles, migrationsDir)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, loc.driverName(), driver)
	if err != nil {
		_ = source.Close()
		_ = driver.Close()
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}

	return m, nil
}
