package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"github.com/vnkhanh/survey-hub/config"
	"github.com/vnkhanh/survey-hub/log"
)

//go:embed migrations
var dbMigrations embed.FS

// Migrate applies every pending up migration.
func Migrate(db *gorm.DB, driver string) error {
	m, release, err := newMigrator(db, driver)
	if err != nil {
		return err
	}
	defer release()
	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Debugf("database schema already up to date")
	case err != nil:
		return fmt.Errorf("migrate up: %w", err)
	default:
		log.Infof("database schema migrated")
	}
	return nil
}

// Rollback reverts the given number of migrations; steps <= 0 reverts all of them.
func Rollback(db *gorm.DB, driver string, steps int) error {
	m, release, err := newMigrator(db, driver)
	if err != nil {
		return err
	}
	defer release()
	if steps > 0 {
		err = m.Steps(-steps)
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// The migrator itself is never closed since that would close the shared
// *sql.DB; release only returns the connection borrowed for postgres.
func newMigrator(db *gorm.DB, driver string) (*migrate.Migrate, func(), error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}

	src, err := iofs.New(dbMigrations, "migrations")
	if err != nil {
		return nil, nil, err
	}

	dst, name, release, err := migrationTarget(sqlDB, driver)
	if err != nil {
		return nil, nil, err
	}

	m, err := migrate.NewWithInstance("iofs", src, name, dst)
	if err != nil {
		release()
		return nil, nil, err
	}
	return m, release, nil
}

func migrationTarget(sqlDB *sql.DB, driver string) (migratedb.Driver, string, func(), error) {
	switch driver {
	case config.DriverSQLite:
		dst, err := sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
		return dst, "sqlite3", func() {}, err
	case config.DriverPostgres:
		ctx := context.Background()
		conn, err := sqlDB.Conn(ctx)
		if err != nil {
			return nil, "", nil, err
		}
		release := func() { _ = conn.Close() }
		dst, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
		if err != nil {
			release()
			return nil, "", nil, err
		}
		return dst, "postgres", release, nil
	default:
		return nil, "", nil, fmt.Errorf("unsupported driver %q", driver)
	}
}
