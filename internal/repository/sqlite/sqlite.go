// Package sqlite implements the repository interfaces on an embedded SQLite
// database (modernc.org/sqlite, pure Go, no cgo). This is the production
// backend: unlike the flat-file layout it gives atomic writes, so a crash
// mid-request cannot corrupt the stored state.
//
// Document-shaped sub-structures (a job's comment thread, activity metadata,
// a user's bank info) are stored as JSON text columns. They are always read
// and written with their parent record, never queried into, so flattening
// them into relational tables would buy nothing.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	// registers the "sqlite" driver with database/sql
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface. One handle serves all entity types.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in flight; the request
	// pattern here is read-heavy with occasional writes.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return db, nil
}

// Close closes the connection pool, flushing the WAL.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL DEFAULT '',
			email      TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password   TEXT NOT NULL DEFAULT '',
			role       TEXT NOT NULL DEFAULT 'recruiter',
			status     TEXT NOT NULL DEFAULT 'Pending',
			bank_info  TEXT NOT NULL DEFAULT '',
			credit     INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS jobs (
			id                   TEXT PRIMARY KEY,
			title                TEXT NOT NULL,
			company              TEXT NOT NULL DEFAULT '',
			location             TEXT NOT NULL DEFAULT '',
			salary               TEXT NOT NULL DEFAULT '',
			bonus                REAL NOT NULL DEFAULT 0,
			reward_candidate_usd REAL NOT NULL DEFAULT 0,
			reward_interview_usd REAL NOT NULL DEFAULT 0,
			vacancies            INTEGER NOT NULL DEFAULT 0,
			applicants           INTEGER NOT NULL DEFAULT 0,
			deadline             DATETIME,
			status               TEXT NOT NULL DEFAULT 'Active',
			keywords             TEXT NOT NULL DEFAULT '[]',
			detail               TEXT NOT NULL DEFAULT '{}',
			saved_by             TEXT NOT NULL DEFAULT '[]',
			comments             TEXT NOT NULL DEFAULT '[]',
			created_at           DATETIME NOT NULL,
			updated_at           DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status)`,
		`CREATE TABLE IF NOT EXISTS referrals (
			id              TEXT PRIMARY KEY,
			recruiter       TEXT NOT NULL,
			admin           TEXT NOT NULL DEFAULT '',
			job             TEXT NOT NULL,
			candidate_name  TEXT NOT NULL,
			candidate_email TEXT NOT NULL DEFAULT '',
			candidate_phone TEXT NOT NULL DEFAULT '',
			cv_url          TEXT NOT NULL DEFAULT '',
			linkedin        TEXT NOT NULL DEFAULT '',
			portfolio       TEXT NOT NULL DEFAULT '',
			suitability     TEXT NOT NULL DEFAULT '',
			bonus           REAL NOT NULL DEFAULT 0,
			message         TEXT NOT NULL DEFAULT '',
			status          TEXT NOT NULL DEFAULT 'submitted',
			finalized       INTEGER NOT NULL DEFAULT 0,
			created_at      DATETIME NOT NULL,
			updated_at      DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_referrals_created_at ON referrals(created_at)`,
		`CREATE TABLE IF NOT EXISTS activities (
			id          TEXT PRIMARY KEY,
			type        TEXT NOT NULL,
			description TEXT NOT NULL,
			metadata    TEXT NOT NULL DEFAULT '{}',
			timestamp   DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_timestamp ON activities(timestamp)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id              TEXT PRIMARY KEY,
			participant_a   TEXT NOT NULL,
			participant_b   TEXT NOT NULL,
			last_message    TEXT NOT NULL DEFAULT '',
			last_message_at DATETIME NOT NULL,
			created_at      DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id              TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			sender_id       TEXT NOT NULL,
			recipient_id    TEXT NOT NULL,
			content         TEXT NOT NULL,
			timestamp       DATETIME NOT NULL,
			read            INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation_id ON messages(conversation_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}
	return nil
}

// encodeJSON serializes v for a JSON text column.
func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("sqlite: encoding json column: %w", err)
	}
	return string(data), nil
}

// decodeJSON fills v from a JSON text column, tolerating empty columns.
func decodeJSON(data string, v any) error {
	if data == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("sqlite: decoding json column: %w", err)
	}
	return nil
}
