// Package testutil provides shared test helpers for building action trees,
// menu stores and catalog databases.
package testutil

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/menushell/internal/action"
	"github.com/starford/menushell/internal/index"
	"github.com/starford/menushell/internal/menu"
	"github.com/starford/menushell/internal/scan"
)

// RootName is the base name of the action tree created by Layout.
const RootName = "tools"

// WriteTree creates files under root. Keys are slash-separated relative
// paths; a key ending in "/" creates an empty directory.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			if err := os.MkdirAll(p, 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// Layout creates an action tree named RootName and a projects directory
// holding one subdirectory per project. It returns both absolute paths.
func Layout(t *testing.T, files map[string]string, projects ...string) (root, projectsDir string) {
	t.Helper()
	base := t.TempDir()
	root = filepath.Join(base, RootName)
	projectsDir = filepath.Join(base, "projects")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(projectsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	WriteTree(t, root, files)
	for _, p := range projects {
		if err := os.MkdirAll(filepath.Join(projectsDir, p), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return root, projectsDir
}

// QuietIO returns streams that read nothing and discard output.
func QuietIO() action.IO {
	return action.IO{Stdin: strings.NewReader(""), Stdout: io.Discard, Stderr: io.Discard}
}

// Builder returns a menu builder over the given layout using the built-in
// loaders with discarded streams.
func Builder(t *testing.T, root, projectsDir string) *menu.Builder {
	t.Helper()
	return BuilderWith(t, action.NewRegistry(QuietIO()), root, projectsDir)
}

// BuilderWith returns a menu builder using registry.
func BuilderWith(t *testing.T, registry *action.Registry, root, projectsDir string) *menu.Builder {
	t.Helper()
	scanner, err := scan.New(root, scan.WithActionMatcher(registry.Handles))
	if err != nil {
		t.Fatal(err)
	}
	return menu.NewBuilder(scanner, registry, projectsDir)
}

// Store lays out files and projects and builds a menu store from them.
func Store(t *testing.T, files map[string]string, projects ...string) *menu.Store {
	t.Helper()
	root, projectsDir := Layout(t, files, projects...)
	store, err := Builder(t, root, projectsDir).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return store
}

// TestDB creates a temporary catalog database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "menushell-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
