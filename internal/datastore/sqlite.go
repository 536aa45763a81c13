package datastore

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bitecast/bitecast-go/internal/conf"
)

// SQLiteStore implements Interface for SQLite.
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

// Open sets up the SQLite database connection and runs migrations.
func (store *SQLiteStore) Open() error {
	path := store.Settings.Output.Database.Path
	if path == "" {
		return fmt.Errorf("sqlite database path is not configured")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: createGormLogger()})
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store.DB = db
	return performAutoMigration(db, store.Settings.Debug, "SQLite", path)
}

// Close is a no-op for SQLite; the connection pool is torn down with the
// process.
func (store *SQLiteStore) Close() error {
	return nil
}
