package storage

import (
	"database/sql"
	"errors"
	"time"
)

// SQLiteBackend keeps every origin's entries in the kv_entries table.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

func (b *SQLiteBackend) ForOrigin(origin string) KV {
	return &sqliteKV{db: b.db, origin: origin}
}

// Ping reports whether the underlying database is reachable.
func (b *SQLiteBackend) Ping() error {
	return b.db.Ping()
}

type sqliteKV struct {
	db     *sql.DB
	origin string
}

func (s *sqliteKV) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv_entries WHERE origin = ? AND key = ?`, s.origin, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *sqliteKV) Set(key, value string) error {
	query := `
		INSERT INTO kv_entries (origin, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (origin, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	_, err := s.db.Exec(query, s.origin, key, value, time.Now().Unix())
	return err
}

func (s *sqliteKV) Remove(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv_entries WHERE origin = ? AND key = ?`, s.origin, key)
	return err
}
