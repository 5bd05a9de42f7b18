package bootstrap

import (
	"path/filepath"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/seed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRuntimeSeedsEmptyDatabaseOnce(t *testing.T) {
	cfg := &config.Config{
		Env:        "development",
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "inkwell.db"),
	}

	db, rdb, err := InitRuntime(cfg, Options{SeedDemo: true})
	require.NoError(t, err)
	assert.Nil(t, rdb, "no REDIS_URL means no client")

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, seed.DefaultOptions().NumUsers, users)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	db, _, err = InitRuntime(cfg, Options{SeedDemo: true})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, seed.DefaultOptions().NumUsers, users)
}

func TestInitRuntimeWithoutSeeding(t *testing.T) {
	cfg := &config.Config{
		Env:        "development",
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "inkwell.db"),
	}

	db, _, err := InitRuntime(cfg, Options{})
	require.NoError(t, err)

	empty, err := seed.IsEmpty(t.Context(), db)
	require.NoError(t, err)
	assert.True(t, empty)
}
