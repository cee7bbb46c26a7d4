package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"keyportal/internal/platform/config"
)

func testStorageConfig(t *testing.T) *config.StorageConfig {
	t.Helper()
	return &config.StorageConfig{
		URL:            "file:" + filepath.Join(t.TempDir(), "kv.db"),
		MaxConnections: 1,
	}
}

func TestRunMigrations_CreatesTable(t *testing.T) {
	db, err := NewDB(*testStorageConfig(t))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(db))

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'kv_entries'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "kv_entries", name)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db, err := NewDB(*testStorageConfig(t))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(db))
	assert.NoError(t, RunMigrations(db), "second run should be a no-op")
}

func TestNewDB_Memory(t *testing.T) {
	db, err := NewDB(config.StorageConfig{URL: ":memory:", MaxConnections: 10})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}
