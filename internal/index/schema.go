// Package index provides a SQLite-backed catalog of the menu graph with
// optional FTS5 full-text search.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// schemaVersion is stored in PRAGMA user_version. The catalog is rebuilt
// from the tree on every start, so a mismatch drops the tables instead of
// migrating them.
const schemaVersion = 2

const dropSchemaSQL = `
DROP TABLE IF EXISTS menu_options;
DROP TABLE IF EXISTS menus;
DROP TABLE IF EXISTS menus_fts;
`

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS menus (
	path        TEXT PRIMARY KEY,
	parent      TEXT NOT NULL DEFAULT '',
	kind        TEXT NOT NULL DEFAULT '',
	title       TEXT,
	subtitle    TEXT,
	description TEXT,
	body        TEXT NOT NULL DEFAULT '',
	checksum    TEXT NOT NULL DEFAULT '',
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS menu_options (
	menu        TEXT NOT NULL REFERENCES menus(path) ON DELETE CASCADE,
	ordinal     INTEGER NOT NULL,
	label       TEXT NOT NULL,
	target_kind TEXT NOT NULL,
	target      TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (menu, ordinal)
);

CREATE INDEX IF NOT EXISTS idx_menus_parent ON menus(parent);
CREATE INDEX IF NOT EXISTS idx_menus_kind ON menus(kind);
CREATE INDEX IF NOT EXISTS idx_menu_options_target ON menu_options(target);
`

// DB wraps a sql.DB with catalog-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite catalog at dsn and brings its schema to
// the current version.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &DB{conn: conn}, nil
}

func migrate(conn *sql.DB) error {
	var version int
	if err := conn.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("index: read schema version: %w", err)
	}
	if version != schemaVersion {
		if _, err := conn.Exec(dropSchemaSQL); err != nil {
			return fmt.Errorf("index: drop stale schema v%d: %w", version, err)
		}
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		return fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		return fmt.Errorf("index: apply fts schema: %w", err)
	}
	if _, err := conn.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion)); err != nil {
		return fmt.Errorf("index: write schema version: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
