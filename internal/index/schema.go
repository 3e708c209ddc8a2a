// Package index keeps a SQLite index of the vault's proof files and the
// diagnostics of their latest verification pass.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS proofs (
	path         TEXT PRIMARY KEY,
	title        TEXT NOT NULL DEFAULT '',
	system       TEXT NOT NULL DEFAULT '',
	checksum     TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'pending',
	error        TEXT NOT NULL DEFAULT '',
	lines        INTEGER NOT NULL DEFAULT 0,
	invalid      INTEGER NOT NULL DEFAULT 0,
	placeholders INTEGER NOT NULL DEFAULT 0,
	reached      INTEGER NOT NULL DEFAULT 0,
	complete     INTEGER NOT NULL DEFAULT 0,
	pass_id      TEXT NOT NULL DEFAULT '',
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	verified_at  DATETIME
);

CREATE TABLE IF NOT EXISTS diagnostics (
	path     TEXT NOT NULL REFERENCES proofs(path) ON DELETE CASCADE,
	line     INTEGER NOT NULL,
	depth    INTEGER NOT NULL DEFAULT 0,
	status   TEXT NOT NULL,
	reason   TEXT NOT NULL DEFAULT '',
	citation INTEGER NOT NULL DEFAULT -1,
	rule     TEXT NOT NULL DEFAULT '',
	detail   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (path, line)
);

CREATE INDEX IF NOT EXISTS idx_proofs_status ON proofs(status);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping() error {
	return db.conn.Ping()
}
