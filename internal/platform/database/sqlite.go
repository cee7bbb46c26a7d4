package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"keyportal/internal/platform/config"
)

// NewDB opens the sqlite database backing the key-value store. The URL may
// carry a "file:" prefix; ":memory:" is accepted for throwaway stores.
func NewDB(cfg config.StorageConfig) (*sql.DB, error) {
	dsn := strings.TrimPrefix(cfg.URL, "file:")

	if dsn != ":memory:" {
		path, _, _ := strings.Cut(dsn, "?")
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// sqlite serialises writers anyway; a single connection also keeps
	// ":memory:" databases from splitting across connections.
	maxConns := cfg.MaxConnections
	if maxConns <= 0 || dsn == ":memory:" {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
