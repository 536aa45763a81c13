package datastore

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/bitecast/bitecast-go/internal/conf"
)

// MySQLStore implements Interface for MySQL.
type MySQLStore struct {
	DataStore
	Settings *conf.Settings
}

// Open sets up the MySQL database connection and runs migrations.
func (store *MySQLStore) Open() error {
	cfg := store.Settings.Output.Database
	// Times are stored in UTC; parseTime gives time.Time scanning.
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: createGormLogger()})
	if err != nil {
		return fmt.Errorf("failed to open MySQL database: %w", err)
	}

	store.DB = db
	return performAutoMigration(db, store.Settings.Debug, "MySQL", dsn)
}

// Close closes the underlying connection pool.
func (store *MySQLStore) Close() error {
	if store.DB == nil {
		return nil
	}
	sqlDB, err := store.DB.DB()
	if err != nil {
		return fmt.Errorf("getting database handle: %w", err)
	}
	return sqlDB.Close()
}
