package menu

import (
	"fmt"
	"slices"

	"github.com/starford/menushell/internal/apperr"
)

// Store maps identity keys to nodes. The builder fills it once; afterwards it
// is read-only and may be shared freely.
type Store struct {
	nodes map[string]*Node
	order []string
	root  string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{nodes: make(map[string]*Node)}
}

func (s *Store) put(n *Node) {
	if _, ok := s.nodes[n.Path]; !ok {
		s.order = append(s.order, n.Path)
	}
	s.nodes[n.Path] = n
}

// Get returns the node stored under key, or an error wrapping
// apperr.ErrLookupMiss.
func (s *Store) Get(key string) (*Node, error) {
	n, ok := s.nodes[key]
	if !ok {
		return nil, fmt.Errorf("menu: %q: %w", key, apperr.ErrLookupMiss)
	}
	return n, nil
}

// Has reports whether key is stored.
func (s *Store) Has(key string) bool {
	_, ok := s.nodes[key]
	return ok
}

// Root returns the key of the general root node.
func (s *Store) Root() string { return s.root }

// Len returns the number of nodes.
func (s *Store) Len() int { return len(s.nodes) }

// Keys returns node keys in build order.
func (s *Store) Keys() []string { return slices.Clone(s.order) }

// Nodes returns the nodes in build order.
func (s *Store) Nodes() []*Node {
	out := make([]*Node, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.nodes[k])
	}
	return out
}

// Validate checks the graph invariants: ordinals are dense from 1 with any
// go-back entry last, every non-special parent resolves, and every descend
// target resolves.
func (s *Store) Validate() error {
	for _, key := range s.order {
		n := s.nodes[key]
		for i, o := range n.Options {
			if o.Ordinal != i+1 {
				return fmt.Errorf("menu: %q: option %q has ordinal %d, want %d", key, o.Label, o.Ordinal, i+1)
			}
			if o.Label == GoBackLabel && i != len(n.Options)-1 {
				return fmt.Errorf("menu: %q: go-back entry is not last", key)
			}
			if o.Target.Kind == TargetDescend && !s.Has(o.Target.Node) {
				return fmt.Errorf("menu: %q: option %q targets %q: %w", key, o.Label, o.Target.Node, apperr.ErrLookupMiss)
			}
		}
		if n.Kind == KindExit {
			continue
		}
		if !s.Has(n.Parent) {
			return fmt.Errorf("menu: %q: dangling parent %q: %w", key, n.Parent, apperr.ErrLookupMiss)
		}
	}
	if s.root != "" && !s.Has(s.root) {
		return fmt.Errorf("menu: root %q: %w", s.root, apperr.ErrLookupMiss)
	}
	return nil
}
