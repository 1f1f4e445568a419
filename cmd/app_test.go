package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cyberguard/awareness-service/internal/config"
	"github.com/cyberguard/awareness-service/internal/repositories/sqlstore"
	"github.com/cyberguard/awareness-service/internal/utils"
)

func newTestApp() *app {
	return &app{
		cfg:    &config.Config{DBDriver: "sqlite"},
		logger: utils.NewLogger("development", "error"),
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db
}

func TestDatabaseRequired(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		opts appOptions
		want bool
	}{
		{name: "memory store", cfg: config.Config{StoreBackend: config.StoreMemory}, want: false},
		{name: "redis store", cfg: config.Config{StoreBackend: config.StoreRedis}, want: false},
		{name: "database store", cfg: config.Config{StoreBackend: config.StoreDatabase}, want: true},
		{name: "command needs accounts", cfg: config.Config{StoreBackend: config.StoreMemory}, opts: appOptions{needDatabase: true}, want: true},
		{name: "login enforced", cfg: config.Config{StoreBackend: config.StoreRedis, RequireLogin: true}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, databaseRequired(&tt.cfg, tt.opts))
		})
	}
}

func TestUseDatabase(t *testing.T) {
	migrateErr := errors.New("migration failed")
	failMigrate := func(*gorm.DB) error { return migrateErr }

	t.Run("optional database is closed when migration fails", func(t *testing.T) {
		a := newTestApp()
		db := openTestDB(t)

		require.NoError(t, a.useDatabase(db, failMigrate, false))
		assert.Nil(t, a.repos)
		assert.Empty(t, a.closers)

		sqlDB, err := db.DB()
		require.NoError(t, err)
		assert.Error(t, sqlDB.Ping())
	})

	t.Run("required database reports the migration error", func(t *testing.T) {
		a := newTestApp()
		db := openTestDB(t)

		err := a.useDatabase(db, failMigrate, true)
		assert.ErrorIs(t, err, migrateErr)
		assert.Contains(t, err.Error(), "database:")

		sqlDB, err := db.DB()
		require.NoError(t, err)
		assert.Error(t, sqlDB.Ping())
	})

	t.Run("migrated database is wired and closed on shutdown", func(t *testing.T) {
		a := newTestApp()
		db := openTestDB(t)

		require.NoError(t, a.useDatabase(db, sqlstore.AutoMigrate, true))
		require.NotNil(t, a.repos)
		assert.NotNil(t, a.repos.Progress)
		require.Len(t, a.closers, 1)

		sqlDB, err := db.DB()
		require.NoError(t, err)
		assert.NoError(t, sqlDB.Ping())

		a.close()
		assert.Error(t, sqlDB.Ping())
	})
}
