package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelprint/backend/internal/infrastructure/config"
)

func TestNewDatabase_SQLite(t *testing.T) {
	storage := &config.StorageConfig{
		Driver:     config.DriverSQLite,
		DataDir:    t.TempDir(),
		SQLitePath: filepath.Join("db", "labelprint.db"),
	}

	db, err := NewDatabase(storage, &config.DatabaseConfig{}, "silent", nil)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping())
	assert.True(t, db.DB.Migrator().HasTable(&PrintHistoryModel{}))
	assert.FileExists(t, storage.SQLiteFilePath())
}

func TestNewDatabase_JSONDriverHasNoDatabase(t *testing.T) {
	_, err := NewDatabase(&config.StorageConfig{Driver: config.DriverJSON}, &config.DatabaseConfig{}, "warn", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no database")
}
