// Package sqlite persists conversations and health records in a local
// SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/samber/oops"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS appointment_reminders (
	id               TEXT PRIMARY KEY,
	user_profile_id  TEXT NOT NULL,
	appointment_name TEXT NOT NULL,
	date             TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_appointments_user ON appointment_reminders(user_profile_id);

CREATE TABLE IF NOT EXISTS medication_reminders (
	id              TEXT PRIMARY KEY,
	user_profile_id TEXT NOT NULL,
	medication_name TEXT NOT NULL,
	dosage          TEXT,
	reminder_time   TEXT NOT NULL,
	recurrence      TEXT
);
CREATE INDEX IF NOT EXISTS idx_medications_user ON medication_reminders(user_profile_id);

CREATE TABLE IF NOT EXISTS health_logs (
	seq             INTEGER PRIMARY KEY AUTOINCREMENT,
	id              TEXT NOT NULL UNIQUE,
	user_profile_id TEXT NOT NULL,
	symptom_type    TEXT,
	severity        INTEGER,
	start_date      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_health_logs_user ON health_logs(user_profile_id);
`

// DB wraps the shared connection pool.
type DB struct {
	sql  *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and applies the
// schema. ":memory:" opens a private in-memory database.
func Open(ctx context.Context, path string) (*DB, error) {
	inMemory := path == ":memory:" || strings.HasPrefix(path, "file::memory:")

	dsn := path
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, oops.In("sqlite").With("path", path).Wrapf(err, "failed to create directory")
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, oops.In("sqlite").With("path", path).Wrapf(err, "failed to open database")
	}
	if inMemory {
		// every new connection would see its own empty database
		conn.SetMaxOpenConns(1)
	}

	db := &DB{sql: conn, path: path}
	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) migrate(ctx context.Context) error {
	if _, err := db.sql.ExecContext(ctx, schema); err != nil {
		return oops.In("sqlite").With("path", db.path).Wrapf(err, "failed to apply schema")
	}
	return nil
}

// Path returns the path the database was opened with.
func (db *DB) Path() string {
	return db.path
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.sql.Close()
}
