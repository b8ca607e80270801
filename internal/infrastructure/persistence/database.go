package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/labelprint/backend/internal/infrastructure/config"
	"github.com/labelprint/backend/internal/infrastructure/logger"
)

// Database holds the relational connection used by the history store
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the database selected by storage.driver (sqlite or
// postgres) and migrates the history table.
func NewDatabase(storage *config.StorageConfig, dbCfg *config.DatabaseConfig, logLevel string, zapLogger *zap.Logger) (*Database, error) {
	var dialector gorm.Dialector
	switch storage.Driver {
	case config.DriverSQLite:
		path := storage.SQLiteFilePath()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dialector = sqlite.Open(path)
	case config.DriverPostgres:
		dialector = postgres.Open(dbCfg.DSN())
	default:
		return nil, fmt.Errorf("storage driver %q has no database", storage.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.NewGormLogger(zapLogger, logger.MapGormLogLevel(logLevel)),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if storage.Driver == config.DriverSQLite {
		// one writer at a time avoids SQLITE_BUSY under concurrent prints
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(dbCfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(dbCfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(dbCfg.ConnMaxLifetime) * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &Database{DB: db}
	if err := d.Migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// Migrate creates or updates the tables owned by this service
func (d *Database) Migrate() error {
	if err := d.DB.AutoMigrate(&PrintHistoryModel{}); err != nil {
		return fmt.Errorf("failed to migrate print history: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}
