package storage

import (
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"keyportal/internal/platform/config"
	"keyportal/internal/platform/database"
)

func TestSQLiteKV_GetMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_entries WHERE origin = ? AND key = ?`)).
		WithArgs("o1", "user").
		WillReturnError(sql.ErrNoRows)

	kv := NewSQLiteBackend(db).ForOrigin("o1")
	value, found, err := kv.Get("user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found || value != "" {
		t.Errorf("expected missing key, got %q found=%v", value, found)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %s", err)
	}
}

func TestSQLiteKV_GetError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_entries`)).
		WillReturnError(errors.New("disk I/O error"))

	_, _, err = NewSQLiteBackend(db).ForOrigin("o1").Get("user")
	if err == nil {
		t.Error("expected error, got nil")
	}
}

func TestSQLiteKV_SetUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_entries (origin, key, value, updated_at)`)).
		WithArgs("o1", "language", "th", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := NewSQLiteBackend(db).ForOrigin("o1").Set("language", "th"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %s", err)
	}
}

func TestSQLiteKV_Remove(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv_entries WHERE origin = ? AND key = ?`)).
		WithArgs("o1", "user").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewSQLiteBackend(db).ForOrigin("o1").Remove("user"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %s", err)
	}
}

func setupSQLiteBackend(t *testing.T) *SQLiteBackend {
	t.Helper()

	db, err := database.NewDB(config.StorageConfig{
		URL:            "file:" + filepath.Join(t.TempDir(), "kv.db"),
		MaxConnections: 1,
	})
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return NewSQLiteBackend(db)
}

func TestBackends(t *testing.T) {
	backends := map[string]func(t *testing.T) Backend{
		"sqlite": func(t *testing.T) Backend { return setupSQLiteBackend(t) },
		"memory": func(t *testing.T) Backend { return NewMemoryBackend() },
	}

	for name, newBackend := range backends {
		t.Run(name, func(t *testing.T) {
			backend := newBackend(t)
			a := backend.ForOrigin("a")
			b := backend.ForOrigin("b")

			if err := a.Set("user", `{"id":"1"}`); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := a.Set("user", `{"id":"2"}`); err != nil {
				t.Fatalf("overwrite: %v", err)
			}

			value, found, err := a.Get("user")
			if err != nil || !found || value != `{"id":"2"}` {
				t.Errorf("Get = %q, %v, %v; want overwritten value", value, found, err)
			}

			if _, found, _ := b.Get("user"); found {
				t.Error("origins must not share entries")
			}

			if err := a.Remove("user"); err != nil {
				t.Fatalf("remove: %v", err)
			}
			if err := a.Remove("user"); err != nil {
				t.Fatalf("second remove: %v", err)
			}
			if _, found, _ := a.Get("user"); found {
				t.Error("expected key to be gone after Remove")
			}
		})
	}
}
