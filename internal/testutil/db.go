package testutil

import (
	"testing" // Test helpers

	"marketplace/internal/config" // Application configuration
	"marketplace/internal/db"     // Database connection and migration

	"github.com/google/uuid" // Unique in-memory database names
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// OpenTestDB returns a migrated, private in-memory SQLite database
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		DBDriver:   config.DriverSQLite,
		SQLitePath: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	gdb, err := db.Open(cfg)
	require.NoError(t, err, "Failed to open test database")

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // One connection keeps the shared-cache database free of lock contention
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(gdb), "Failed to migrate schema")
	return gdb
}
