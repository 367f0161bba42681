package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plateup-dev/plateup/internal/models"
)

func TestOpenDefaultsToMemorySQLite(t *testing.T) {
	db, err := Open(Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	require.True(t, db.Migrator().HasTable(&models.User{}))
	require.True(t, db.Migrator().HasTable(&models.VerificationToken{}))
	require.True(t, db.Migrator().HasTable(&models.Session{}))
	require.True(t, db.Migrator().HasTable(&models.Order{}))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}
