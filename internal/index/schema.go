// Package index provides a SQLite-backed lookup table of every chord voicing
// root, keyed by pitch-class mask, for identifying chords from selected notes.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS chords (
	chord_set TEXT    NOT NULL,
	name      TEXT    NOT NULL,
	position  INTEGER NOT NULL,
	root      INTEGER NOT NULL,
	mask      INTEGER NOT NULL,
	size      INTEGER NOT NULL,
	notes     TEXT    NOT NULL DEFAULT '[]',
	UNIQUE(chord_set, name, root)
);

CREATE INDEX IF NOT EXISTS idx_chords_mask ON chords(mask);
CREATE INDEX IF NOT EXISTS idx_chords_set ON chords(chord_set);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
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
