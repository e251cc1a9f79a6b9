package database

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"productsapi/internal/config"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed migrations
var migrationsFS embed.FS

var logLevels = map[string]gormlogger.LogLevel{
	"silent": gormlogger.Silent,
	"error":  gormlogger.Error,
	"warn":   gormlogger.Warn,
	"info":   gormlogger.Info,
}

// Open connects to the configured database and applies the pool settings.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.URL)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	level, ok := logLevels[cfg.LogLevel]
	if !ok {
		level = gormlogger.Silent
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		// SQLite serializes writers; a single connection avoids "database is locked"
		// and keeps shared in-memory databases alive.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate applies every pending up-migration for the given driver.
func Migrate(ctx context.Context, db *gorm.DB, driver string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("could not load %s migrations: %w", driver, err)
	}

	switch driver {
	case config.DriverPostgres:
		conn, err := sqlDB.Conn(ctx)
		if err != nil {
			return fmt.Errorf("could not acquire migration connection: %w", err)
		}
		dbDriver, err := migratepostgres.WithConnection(ctx, conn, &migratepostgres.Config{})
		if err != nil {
			_ = conn.Close()
			return fmt.Errorf("could not create migration driver: %w", err)
		}
		// Closing a WithConnection driver only returns the connection to the pool.
		return run(src, "postgres", dbDriver, true)
	case config.DriverSQLite:
		dbDriver, err := migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
		if err != nil {
			return fmt.Errorf("could not create migration driver: %w", err)
		}
		// Not owned: closing the sqlite3 driver would close the shared *sql.DB.
		return run(src, "sqlite3", dbDriver, false)
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
}

var newMigrate = migrate.NewWithInstance

// run applies the migrations through dbDriver. An owned driver is closed once
// run returns, on failure as well.
func run(src source.Driver, name string, dbDriver migratedb.Driver, owned bool) error {
	m, err := newMigrate("iofs", src, name, dbDriver)
	if err != nil {
		if owned {
			_ = dbDriver.Close()
		}
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	if owned {
		defer m.Close()
	}
	return up(m)
}

func up(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}
