package app

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"go-community-hub/internal/core/config"
	"go-community-hub/internal/core/database"
)

func sqliteConfig(dsn string) *config.Config {
	return &config.Config{
		App: config.App{Name: "community-test"},
		JWT: config.JWT{Secret: "s", DurationDays: 1},
		DB:  config.DB{Driver: "sqlite", DSN: dsn, MaxOpenConns: 1, AutoMigrate: true, LogLevel: "silent"},
	}
}

func TestBuild(t *testing.T) {
	deps, cleanup, err := Build(sqliteConfig(filepath.Join(t.TempDir(), "hub.db")), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, cleanup)
	assert.False(t, deps.Cache.Enabled())
	assert.NotNil(t, deps.Services.Donations)

	sqlDB, err := deps.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())
	cleanup()
	assert.Error(t, sqlDB.Ping(), "cleanup closes the pool")
}

func TestMigrateFailureClosesPool(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readonly.db")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	db, err := database.NewGorm(database.Opts{Driver: "sqlite", DSN: "file:" + path + "?mode=ro", MaxOpenConns: 1, LogLevel: "silent", Writer: io.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	err = migrateOrClose(db)
	require.ErrorContains(t, err, "automigrate")
	assert.ErrorContains(t, sqlDB.Ping(), "database is closed")

	_, cleanup, err := Build(sqliteConfig("file:"+path+"?mode=ro"), zaptest.NewLogger(t))
	assert.Error(t, err)
	assert.Nil(t, cleanup)
}
