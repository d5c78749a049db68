//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS menus_fts USING fts5(
			path UNINDEXED,
			title,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, path, title, body string) error {
	if _, err := tx.Exec(`DELETE FROM menus_fts WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: clear fts row: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO menus_fts (path, title, body) VALUES (?, ?, ?)`, path, title, body); err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) {
	_, _ = tx.Exec(`DELETE FROM menus_fts WHERE path = ?`, path)
}

// ftsQuery turns free operator input into an FTS5 query: every word is
// quoted and prefix-matched, so characters like '-' or '(' are literal.
func ftsQuery(q string) string {
	words := strings.Fields(q)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"*`
	}
	return strings.Join(words, " ")
}

// Search ranks menus with FTS5 and highlights the match in the snippet.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}
	rows, err := db.conn.Query(`
		SELECT path,
		       title,
		       snippet(menus_fts, 2, '<b>', '</b>', '...', 16)
		FROM menus_fts
		WHERE menus_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanResults(rows)
}
