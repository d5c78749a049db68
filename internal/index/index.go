package index

import "github.com/starford/menushell/internal/menu"

// MenuIndex defines the catalog operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type MenuIndex interface {
	UpsertMenu(m MenuRow, opts []OptionRow) error
	DeleteMenu(path string) error
	GetChecksum(path string) (string, error)
	GetMenu(path string) (*MenuRow, []OptionRow, error)
	ListMenus(kind menu.Kind) ([]MenuRow, error)
	Children(path string) ([]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies MenuIndex at compile time.
var _ MenuIndex = (*DB)(nil)
