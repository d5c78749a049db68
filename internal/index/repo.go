package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/menushell/internal/apperr"
	"github.com/starford/menushell/internal/menu"
)

// MenuRow represents a row in the menus table. Nil metadata fields were
// absent from the source.
type MenuRow struct {
	Path        string
	Parent      string
	Kind        menu.Kind
	Title       *string
	Subtitle    *string
	Description *string
	Checksum    string
	UpdatedAt   time.Time
}

// OptionRow represents one numbered option of a menu.
type OptionRow struct {
	Ordinal    int
	Label      string
	TargetKind string
	Target     string
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// UpsertMenu inserts or replaces a menu, its FTS entry, and its options within
// a transaction.
func (db *DB) UpsertMenu(m MenuRow, opts []OptionRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	body := searchBody(m, opts)
	_, err = tx.Exec(`
		INSERT INTO menus (path, parent, kind, title, subtitle, description, body, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			parent      = excluded.parent,
			kind        = excluded.kind,
			title       = excluded.title,
			subtitle    = excluded.subtitle,
			description = excluded.description,
			body        = excluded.body,
			checksum    = excluded.checksum,
			updated_at  = excluded.updated_at
	`, m.Path, m.Parent, string(m.Kind), m.Title, m.Subtitle, m.Description, body, m.Checksum, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert menu: %w", err)
	}

	if err := ftsUpsert(tx, m.Path, deref(m.Title), body); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM menu_options WHERE menu = ?`, m.Path); err != nil {
		return fmt.Errorf("index: clear options: %w", err)
	}
	if len(opts) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO menu_options (menu, ordinal, label, target_kind, target) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare option insert: %w", err)
		}
		defer stmt.Close()
		for _, o := range opts {
			if _, err := stmt.Exec(m.Path, o.Ordinal, o.Label, o.TargetKind, o.Target); err != nil {
				return fmt.Errorf("index: insert option: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteMenu removes a menu, its FTS entry, and its options.
func (db *DB) DeleteMenu(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	// Options go with the menu row (ON DELETE CASCADE).
	if _, err := tx.Exec(`DELETE FROM menus WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete menu: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a menu, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM menus WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// GetMenu returns a menu and its options ordered by ordinal.
func (db *DB) GetMenu(path string) (*MenuRow, []OptionRow, error) {
	var (
		m    MenuRow
		kind string
	)
	err := db.conn.QueryRow(`
		SELECT path, parent, kind, title, subtitle, description, checksum, updated_at
		FROM menus WHERE path = ?
	`, path).Scan(&m.Path, &m.Parent, &kind, &m.Title, &m.Subtitle, &m.Description, &m.Checksum, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("index: menu %q: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("index: get menu: %w", err)
	}
	m.Kind = menu.Kind(kind)

	rows, err := db.conn.Query(`
		SELECT ordinal, label, target_kind, target
		FROM menu_options WHERE menu = ? ORDER BY ordinal
	`, path)
	if err != nil {
		return nil, nil, fmt.Errorf("index: get options: %w", err)
	}
	defer rows.Close()

	var opts []OptionRow
	for rows.Next() {
		var o OptionRow
		if err := rows.Scan(&o.Ordinal, &o.Label, &o.TargetKind, &o.Target); err != nil {
			return nil, nil, err
		}
		opts = append(opts, o)
	}
	return &m, opts, rows.Err()
}

// ListMenus returns every cataloged menu ordered by path, optionally
// restricted to one kind.
func (db *DB) ListMenus(kind menu.Kind) ([]MenuRow, error) {
	q := `SELECT path, parent, kind, title, subtitle, description, checksum, updated_at FROM menus`
	var args []any
	if kind != "" {
		q += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	q += ` ORDER BY path`

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("index: list menus: %w", err)
	}
	defer rows.Close()

	var out []MenuRow
	for rows.Next() {
		var (
			m MenuRow
			k string
		)
		if err := rows.Scan(&m.Path, &m.Parent, &k, &m.Title, &m.Subtitle, &m.Description, &m.Checksum, &m.UpdatedAt); err != nil {
			return nil, err
		}
		m.Kind = menu.Kind(k)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Children returns the keys the given menu descends into, in option order.
func (db *DB) Children(path string) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT target FROM menu_options
		WHERE menu = ? AND target_kind = ?
		ORDER BY ordinal
	`, path, menu.TargetDescend.String())
	if err != nil {
		return nil, fmt.Errorf("index: children: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AllChecksums returns the checksum of every cataloged menu keyed by path.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM menus`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// searchBody is the text matched by Search besides the title.
func searchBody(m MenuRow, opts []OptionRow) string {
	body := m.Path
	for _, s := range []*string{m.Subtitle, m.Description} {
		if s != nil {
			body += "\n" + *s
		}
	}
	for _, o := range opts {
		body += "\n" + o.Label
	}
	return body
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func scanResults(rows *sql.Rows) ([]SearchResult, error) {
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Title, &r.Snippet); err != nil {
			return nil, fmt.Errorf("index: scan search row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
