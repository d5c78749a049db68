package action

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Loader turns a file on disk into a Unit.
type Loader interface {
	Load(path string) (Unit, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string) (Unit, error)

// Load implements Loader.
func (f LoaderFunc) Load(path string) (Unit, error) { return f(path) }

// Registry maps file extensions to loaders. It decides which files count as
// action-providing units.
type Registry struct {
	loaders map[string]Loader
}

// NewRegistry returns a registry with the built-in shell (.sh) and Go (.go)
// loaders wired to the given streams.
func NewRegistry(streams IO) *Registry {
	r := &Registry{loaders: make(map[string]Loader)}
	r.Register(".sh", NewShellLoader(streams))
	r.Register(".go", NewGoLoader(streams))
	return r
}

// NewEmptyRegistry returns a registry without loaders.
func NewEmptyRegistry() *Registry {
	return &Registry{loaders: make(map[string]Loader)}
}

// Register binds ext (with leading dot) to l, replacing any previous loader.
func (r *Registry) Register(ext string, l Loader) {
	r.loaders[strings.ToLower(ext)] = l
}

// Handles reports whether name has a registered extension.
func (r *Registry) Handles(name string) bool {
	_, ok := r.loaders[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	out := make([]string, 0, len(r.loaders))
	for ext := range r.loaders {
		out = append(out, ext)
	}
	slices.Sort(out)
	return out
}

// Load loads the unit at path with the loader registered for its extension.
func (r *Registry) Load(path string) (Unit, error) {
	l, ok := r.loaders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("action: no loader for %s", path)
	}
	u, err := l.Load(path)
	if err != nil {
		return nil, fmt.Errorf("action: load %s: %w", path, err)
	}
	return u, nil
}

// Stem returns the file name without directory and extension; it is the
// label a unit gets in its folder menu.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
