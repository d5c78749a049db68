// Package scan walks the action tree and classifies what it finds.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultSkipDirs are cache and build-artifact directory names that are never
// traversed.
var DefaultSkipDirs = []string{"__pycache__", ".git", "node_modules"}

// DefaultMetadataExt is the extension of folder metadata text files.
const DefaultMetadataExt = ".txt"

// Dir is one visited directory.
type Dir struct {
	// Path is the absolute directory path.
	Path string
	// Rel is the slash-separated path relative to the root ("." for the root).
	Rel string
	// Subdirs holds the names of immediate, non-skipped subdirectories.
	Subdirs []string
	// ActionFiles holds the names of action-providing files.
	ActionFiles []string
	// MetadataFiles holds the names of metadata text files.
	MetadataFiles []string
}

// Name returns the directory's base name.
func (d Dir) Name() string { return filepath.Base(d.Path) }

// Empty reports whether the directory holds nothing actionable for its own
// level.
func (d Dir) Empty() bool {
	return len(d.ActionFiles) == 0 && len(d.MetadataFiles) == 0
}

// MetadataFile returns the metadata file whose base name matches the
// directory name, if any.
func (d Dir) MetadataFile(ext string) (string, bool) {
	want := d.Name() + ext
	if slices.Contains(d.MetadataFiles, want) {
		return filepath.Join(d.Path, want), true
	}
	return "", false
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithSkipDirs replaces the reserved directory names.
func WithSkipDirs(names ...string) Option {
	return func(s *Scanner) {
		s.skip = make(map[string]struct{}, len(names))
		for _, n := range names {
			s.skip[n] = struct{}{}
		}
	}
}

// WithActionMatcher sets the predicate deciding which file names are
// action-providing units.
func WithActionMatcher(match func(name string) bool) Option {
	return func(s *Scanner) { s.isAction = match }
}

// WithMetadataExt sets the extension of metadata text files.
func WithMetadataExt(ext string) Option {
	return func(s *Scanner) { s.metaExt = ext }
}

// Scanner walks a root directory.
type Scanner struct {
	root     string // absolute
	skip     map[string]struct{}
	isAction func(name string) bool
	metaExt  string
}

// New creates a Scanner rooted at root. The directory must already exist.
func New(root string, opts ...Option) (*Scanner, error) {
	abs, err := resolveDir(root)
	if err != nil {
		return nil, err
	}
	s := &Scanner{
		root:     abs,
		isAction: func(string) bool { return false },
		metaExt:  DefaultMetadataExt,
	}
	WithSkipDirs(DefaultSkipDirs...)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the absolute root directory.
func (s *Scanner) Root() string { return s.root }

// Skipped reports whether a directory name is reserved.
func (s *Scanner) Skipped(name string) bool {
	_, ok := s.skip[name]
	return ok
}

// Scan walks the tree once, depth first in lexical order, and returns every
// non-skipped directory. Parents always precede their children.
func (s *Scanner) Scan() ([]Dir, error) {
	var out []Dir
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		if p != s.root && s.Skipped(d.Name()) {
			return filepath.SkipDir
		}
		dir, err := s.readDir(p)
		if err != nil {
			return err
		}
		out = append(out, dir)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan: walk %s: %w", s.root, err)
	}
	return out, nil
}

func (s *Scanner) readDir(p string) (Dir, error) {
	entries, err := os.ReadDir(p)
	if err != nil {
		return Dir{}, err
	}
	rel, err := filepath.Rel(s.root, p)
	if err != nil {
		return Dir{}, err
	}
	dir := Dir{Path: p, Rel: filepath.ToSlash(rel)}
	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir():
			if !s.Skipped(name) {
				dir.Subdirs = append(dir.Subdirs, name)
			}
		case !e.Type().IsRegular():
			// sockets, devices and symlinks are not units
		case s.isAction(name):
			dir.ActionFiles = append(dir.ActionFiles, name)
		case strings.EqualFold(filepath.Ext(name), s.metaExt):
			dir.MetadataFiles = append(dir.MetadataFiles, name)
		}
	}
	return dir, nil
}

// Projects lists the immediate subdirectories of dir in lexical order,
// excluding reserved names.
func (s *Scanner) Projects(dir string) ([]string, error) {
	abs, err := resolveDir(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("scan: read projects: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !s.Skipped(e.Name()) {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func resolveDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("scan: resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("scan: stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("scan: not a directory: %s", abs)
	}
	return abs, nil
}
