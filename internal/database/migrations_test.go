package database

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Path ids are parsed as int64, so every dialect must key products on a
// 64-bit column or large ids fail to bind instead of missing.
func TestMigrations_SixtyFourBitIDs(t *testing.T) {
	postgres, err := fs.ReadFile(migrationsFS, "migrations/postgres/000001_create_products_table.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(postgres), "id           BIGSERIAL PRIMARY KEY")

	// SQLite INTEGER PRIMARY KEY is always a 64-bit rowid.
	sqlite, err := fs.ReadFile(migrationsFS, "migrations/sqlite/000001_create_products_table.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(sqlite), "INTEGER PRIMARY KEY AUTOINCREMENT")
}

func TestMigrations_EveryUpHasDown(t *testing.T) {
	for _, driver := range []string{"postgres", "sqlite"} {
		entries, err := fs.ReadDir(migrationsFS, "migrations/"+driver)
		require.NoError(t, err)
		names := make(map[string]bool)
		for _, e := range entries {
			names[e.Name()] = true
		}
		for name := range names {
			if strings.HasSuffix(name, ".up.sql") {
				assert.True(t, names[strings.TrimSuffix(name, ".up.sql")+".down.sql"], "%s/%s has no down migration", driver, name)
			}
		}
	}
}

// closeRecorder is a migration driver that only records Close.
type closeRecorder struct {
	migratedb.Driver
	closed int
}

func (d *closeRecorder) Close() error {
	d.closed++
	return nil
}

func failingMigrate(t *testing.T) {
	t.Helper()
	orig := newMigrate
	newMigrate = func(string, source.Driver, string, migratedb.Driver) (*migrate.Migrate, error) {
		return nil, errors.New("bad source")
	}
	t.Cleanup(func() { newMigrate = orig })
}

func TestRun_ReleasesOwnedDriverOnError(t *testing.T) {
	failingMigrate(t)
	drv := &closeRecorder{}

	err := run(nil, "postgres", drv, true)
	assert.ErrorContains(t, err, "could not create migrate instance")
	assert.Equal(t, 1, drv.closed)
}

func TestRun_KeepsSharedDriverOnError(t *testing.T) {
	failingMigrate(t)
	drv := &closeRecorder{}

	assert.Error(t, run(nil, "sqlite3", drv, false))
	assert.Zero(t, drv.closed)
}
