package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// VersionTable records the applied counter schema version. It is separate
// from golang-migrate's default so the counters can share a database with
// other services.
const VersionTable = "callstats_schema_migrations"

//go:embed *.sql
var MigrationFiles embed.FS

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(MigrationFiles, ".")
	if err != nil {
		return nil, fmt.Errorf("migrations: open embedded source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: VersionTable})
	if err != nil {
		return nil, fmt.Errorf("migrations: postgres driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("migrations: init: %w", err)
	}
	return m, nil
}

// RunMigrations brings the shared counter schema up to date. With autoMigrate
// false it only reports the current version.
func RunMigrations(db *sql.DB, autoMigrate bool) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	version, err := currentVersion(m)
	if err != nil {
		return err
	}

	if !autoMigrate {
		slog.Info("[Migrations] Auto-migration disabled", "version", version)
		return nil
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: apply: %w", err)
	}

	applied, err := currentVersion(m)
	if err != nil {
		return err
	}
	if applied == version {
		slog.Info("[Migrations] Counter schema up to date", "version", version)
		return nil
	}
	slog.Info("[Migrations] Counter schema migrated", "from_version", version, "to_version", applied)
	return nil
}

// currentVersion returns the applied version, 0 for an empty database. A
// dirty version is rolled back one step so Up replays the interrupted script;
// every script is IF NOT EXISTS. Versions are numbered 1, 2, 3...
func currentVersion(m *migrate.Migrate) (uint, error) {
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("migrations: read version: %w", err)
	case !dirty:
		return version, nil
	}

	previous := int(version) - 1
	slog.Warn("[Migrations] Interrupted migration found, replaying", "version", version)
	if previous < 1 {
		previous = database.NilVersion
	}
	if err := m.Force(previous); err != nil {
		return 0, fmt.Errorf("migrations: clear dirty version %d: %w", version, err)
	}
	if previous == database.NilVersion {
		return 0, nil
	}
	return uint(previous), nil
}
