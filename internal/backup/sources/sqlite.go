// Package sources provides backup source implementations.
package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bitecast/bitecast-go/internal/conf"
)

// SQLiteSource snapshots the sqlite database with VACUUM INTO, which
// produces a consistent copy even while the engine keeps writing.
type SQLiteSource struct {
	settings *conf.Settings
}

// NewSQLiteSource creates a sqlite backup source.
func NewSQLiteSource(settings *conf.Settings) *SQLiteSource {
	return &SQLiteSource{settings: settings}
}

// Name returns the source name.
func (s *SQLiteSource) Name() string { return "sqlite" }

// Backup writes a snapshot into a fresh temp directory and returns its
// path. The caller removes the directory when done.
func (s *SQLiteSource) Backup(ctx context.Context) (string, error) {
	dbPath, err := s.databasePath()
	if err != nil {
		return "", err
	}

	tempDir, err := os.MkdirTemp(s.settings.Output.Database.TempDir, "bitecast-backup-*")
	if err != nil {
		return "", fmt.Errorf("create temp directory: %w", err)
	}

	stamp := time.Now().UTC().Format("20060102150405")
	snapshotPath := filepath.Join(tempDir, fmt.Sprintf("bitecast-%s.db", stamp))

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		os.RemoveAll(tempDir)
		return "", fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		os.RemoveAll(tempDir)
		return "", fmt.Errorf("database handle: %w", err)
	}
	defer sqlDB.Close()

	if err := db.WithContext(ctx).Exec("VACUUM INTO ?", snapshotPath).Error; err != nil {
		os.RemoveAll(tempDir)
		return "", fmt.Errorf("vacuum into snapshot: %w", err)
	}

	info, err := os.Stat(snapshotPath)
	if err != nil {
		os.RemoveAll(tempDir)
		return "", fmt.Errorf("snapshot not written: %w", err)
	}
	if info.Size() == 0 {
		os.RemoveAll(tempDir)
		return "", fmt.Errorf("snapshot is empty")
	}
	return snapshotPath, nil
}

// Validate checks that the configured database exists and is readable.
func (s *SQLiteSource) Validate() error {
	dbPath, err := s.databasePath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("database not accessible: %w", err)
	}
	return nil
}

func (s *SQLiteSource) databasePath() (string, error) {
	if s.settings.Output.Database.Type != "sqlite" {
		return "", fmt.Errorf("database type %q is not sqlite", s.settings.Output.Database.Type)
	}
	dbPath := s.settings.Output.Database.Path
	if dbPath == "" {
		return "", fmt.Errorf("sqlite path is not configured")
	}
	if !filepath.IsAbs(dbPath) {
		abs, err := filepath.Abs(dbPath)
		if err != nil {
			return "", fmt.Errorf("resolve database path: %w", err)
		}
		dbPath = abs
	}
	return dbPath, nil
}
