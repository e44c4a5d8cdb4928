// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"testing"

	"recipebox/internal/config"
	"recipebox/internal/database"

	"gorm.io/gorm"
)

// Config returns the settings of a private in-memory SQLite database.
func Config() *config.Config {
	return &config.Config{
		Env:                      "test",
		DBDriver:                 "sqlite",
		DBConnMaxLifetimeMinutes: 5,
	}
}

// Open returns a migrated in-memory SQLite database that is closed when the
// test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Connect(Config())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
