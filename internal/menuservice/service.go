// Package menuservice serves read-only views of the current menu graph to
// the browse surfaces.
package menuservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/starford/menushell/internal/apperr"
	"github.com/starford/menushell/internal/index"
	"github.com/starford/menushell/internal/menu"
	"github.com/starford/menushell/internal/metadata"
)

// OptionDetail is one numbered entry of a menu.
type OptionDetail struct {
	Ordinal int    `json:"ordinal"`
	Label   string `json:"label"`
	Target  string `json:"target"`
	Ref     string `json:"ref,omitempty"`
}

// MenuDetail is the full representation of a menu node.
type MenuDetail struct {
	Path   string `json:"path"`
	Parent string `json:"parent"`
	Kind   string `json:"kind"`
	metadata.Block
	Options []OptionDetail `json:"options"`
}

// MenuListItem is a lightweight item in a list response.
type MenuListItem struct {
	Path    string `json:"path"`
	Parent  string `json:"parent"`
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Options int    `json:"options"`
}

// SearchHit is one search result.
type SearchHit struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Service holds the current store snapshot and, optionally, the catalog.
// Readers never block a rebuild: Replace swaps the snapshot atomically.
type Service struct {
	snapshot atomic.Pointer[menu.Store]
	db       index.MenuIndex
	logger   *slog.Logger
}

// NewService creates a service over store. db may be nil when the catalog is
// disabled; search then scans the snapshot in memory.
func NewService(store *menu.Store, db index.MenuIndex, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{db: db, logger: logger}
	s.snapshot.Store(store)
	return s
}

// Store returns the current snapshot.
func (s *Service) Store() *menu.Store {
	return s.snapshot.Load()
}

// Replace installs a rebuilt store and brings the catalog in line with it.
func (s *Service) Replace(store *menu.Store) error {
	s.snapshot.Store(store)
	if s.db == nil {
		return nil
	}
	if err := index.Sync(s.db, store, s.logger); err != nil {
		return fmt.Errorf("menuservice: sync catalog: %w", err)
	}
	return nil
}

// GetMenu returns one node of the snapshot.
func (s *Service) GetMenu(_ context.Context, path string) (*MenuDetail, error) {
	n, err := s.Store().Get(path)
	if err != nil {
		return nil, fmt.Errorf("menuservice: %q: %w", path, apperr.ErrNotFound)
	}
	return detail(n), nil
}

// ListMenus returns every node of the snapshot in build order, optionally
// restricted to one kind.
func (s *Service) ListMenus(_ context.Context, kind string) ([]MenuListItem, error) {
	nodes := s.Store().Nodes()
	items := make([]MenuListItem, 0, len(nodes))
	for _, n := range nodes {
		if kind != "" && string(n.Kind) != kind {
			continue
		}
		items = append(items, MenuListItem{
			Path:    n.Path,
			Parent:  n.Parent,
			Kind:    string(n.Kind),
			Title:   metadata.Value(n.Title),
			Options: len(n.Options),
		})
	}
	return items, nil
}

// Search delegates to the catalog when present, otherwise matches the query
// case-insensitively against each node's text.
func (s *Service) Search(_ context.Context, query string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 20
	}
	if s.db != nil {
		rows, err := s.db.Search(query, limit)
		if err != nil {
			return nil, err
		}
		hits := make([]SearchHit, len(rows))
		for i, r := range rows {
			hits[i] = SearchHit{Path: r.Path, Title: r.Title, Snippet: r.Snippet}
		}
		return hits, nil
	}

	q := strings.ToLower(query)
	hits := []SearchHit{}
	for _, n := range s.Store().Nodes() {
		text := nodeText(n)
		i := strings.Index(strings.ToLower(text), q)
		if i < 0 {
			continue
		}
		hits = append(hits, SearchHit{Path: n.Path, Title: metadata.Value(n.Title), Snippet: snippet(text, i, len(query))})
		if len(hits) == limit {
			break
		}
	}
	return hits, nil
}

func detail(n *menu.Node) *MenuDetail {
	opts := make([]OptionDetail, len(n.Options))
	for i, o := range n.Options {
		opts[i] = OptionDetail{
			Ordinal: o.Ordinal,
			Label:   o.Label,
			Target:  o.Target.Kind.String(),
			Ref:     o.Target.Ref(),
		}
	}
	return &MenuDetail{
		Path:    n.Path,
		Parent:  n.Parent,
		Kind:    string(n.Kind),
		Block:   n.Block,
		Options: opts,
	}
}

func nodeText(n *menu.Node) string {
	parts := []string{n.Path}
	for _, s := range []*string{n.Title, n.Subtitle, n.Description} {
		if s != nil {
			parts = append(parts, *s)
		}
	}
	for _, o := range n.Options {
		parts = append(parts, o.Label)
	}
	return strings.Join(parts, "\n")
}

// snippet returns up to 60 bytes of context on either side of a match.
func snippet(text string, at, n int) string {
	start := max(at-60, 0)
	end := min(at+n+60, len(text))
	return strings.ReplaceAll(text[start:end], "\n", " ")
}
