// Package database provides the embedded schema migrations and the tooling
// to apply them.
package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratelite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/upb/blog-platform/config"
)

//go:embed migrations/postgres/*.sql migrations/sqlite3/*.sql
var fs embed.FS

// Migrator applies the embedded migrations to one database
type Migrator struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

// NewMigrator opens a dedicated connection for cfg and prepares the
// migrations for its dialect. Close releases the connection.
func NewMigrator(cfg config.DatabaseConfig, logger *zap.Logger) (*Migrator, error) {
	src, err := iofs.New(fs, "migrations/"+cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("no migrations for driver %q: %w", cfg.Driver, err)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var driver migratedb.Driver
	switch cfg.Driver {
	case config.DriverPostgres:
		driver, err = migratepg.WithInstance(db, &migratepg.Config{})
	case config.DriverSQLite:
		driver, err = migratelite.WithInstance(db, &migratelite.Config{})
	default:
		err = fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, cfg.Driver, driver)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return &Migrator{m: m, logger: logger}, nil
}

// Up applies every pending migration. An up-to-date schema is not an error.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	mg.logVersion()
	return nil
}

// Down reverts steps migrations, or all of them when steps is 0
func (mg *Migrator) Down(steps int) error {
	var err error
	if steps <= 0 {
		err = mg.m.Down()
	} else {
		err = mg.m.Steps(-steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	mg.logVersion()
	return nil
}

// Version returns the applied schema version. ok is false before the first migration.
func (mg *Migrator) Version() (version uint, dirty bool, ok bool, err error) {
	version, dirty, err = mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, err
	}
	return version, dirty, true, nil
}

// Close releases the migration source and database connection
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

func (mg *Migrator) logVersion() {
	version, dirty, ok, err := mg.Version()
	if err != nil || !ok {
		return
	}
	mg.logger.Info("database schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
}

// MigrateUp applies all pending migrations for cfg
func MigrateUp(cfg config.DatabaseConfig, logger *zap.Logger) error {
	mg, err := NewMigrator(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := mg.Close(); err != nil {
			logger.Warn("failed to close migrator", zap.Error(err))
		}
	}()
	return mg.Up()
}
