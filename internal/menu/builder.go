package menu

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"

	"github.com/starford/menushell/internal/action"
	"github.com/starford/menushell/internal/apperr"
	"github.com/starford/menushell/internal/metadata"
	"github.com/starford/menushell/internal/scan"
)

const (
	projectsTitle       = "Select a Project"
	projectsDescription = "Choose a project to load from your project directory:"
	exitTitle           = "Are you sure you want to exit?"
)

// Builder assembles a Store from the action tree.
type Builder struct {
	scanner     *scan.Scanner
	registry    *action.Registry
	projectsDir string
	metaExt     string
	logger      *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the builder's logger.
func WithLogger(l *slog.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// WithMetadataExt sets the extension of folder metadata files.
func WithMetadataExt(ext string) BuilderOption {
	return func(b *Builder) { b.metaExt = ext }
}

// NewBuilder returns a builder reading units through registry from the tree
// the scanner walks, with projects listed from projectsDir.
func NewBuilder(scanner *scan.Scanner, registry *action.Registry, projectsDir string, opts ...BuilderOption) *Builder {
	b := &Builder{
		scanner:     scanner,
		registry:    registry,
		projectsDir: projectsDir,
		metaExt:     scan.DefaultMetadataExt,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RootKey returns the identity key of the root directory node.
func (b *Builder) RootKey() string {
	return filepath.Base(b.scanner.Root())
}

// Build runs the whole build phase and returns a validated store. It fails
// with apperr.ErrNoProjects, before creating any node, when the projects
// directory has no subdirectories.
func (b *Builder) Build() (*Store, error) {
	projects, err := b.scanner.Projects(b.projectsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("menu: %s: %w", b.projectsDir, apperr.ErrNoProjects)
		}
		return nil, err
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("menu: %s: %w", b.projectsDir, apperr.ErrNoProjects)
	}

	dirs, err := b.scanner.Scan()
	if err != nil {
		return nil, err
	}

	store := NewStore()
	store.root = b.RootKey()
	store.put(projectsNode(projects))
	store.put(exitNode())

	// A directory gets a node when it holds something itself or when any
	// descendant does; otherwise its children would have no parent to go
	// back to. Children follow parents in dirs, so walk backwards.
	present := make(map[string]bool, len(dirs))
	present["."] = true
	for i := len(dirs) - 1; i >= 0; i-- {
		d := dirs[i]
		if !d.Empty() {
			present[d.Rel] = true
		}
		if present[d.Rel] && d.Rel != "." {
			present[path.Dir(d.Rel)] = true
		}
	}

	for _, d := range dirs {
		if !present[d.Rel] {
			b.logger.Debug("build: skipping empty directory", slog.String("path", d.Rel))
			continue
		}
		key := b.dirKey(d.Rel)

		var opts []Option
		for _, f := range d.ActionFiles {
			unitKey := key + "/" + f
			store.put(b.unitNode(key, unitKey, filepath.Join(d.Path, f)))
			opts = append(opts, Option{Ordinal: len(opts) + 1, Label: action.Stem(f), Target: Descend(unitKey)})
		}
		for _, sub := range d.Subdirs {
			childRel := path.Join(d.Rel, sub)
			if !present[childRel] {
				continue
			}
			opts = append(opts, Option{Ordinal: len(opts) + 1, Label: sub, Target: Descend(b.dirKey(childRel))})
		}

		parent := ProjectsKey
		if d.Rel != "." {
			parent = b.dirKey(path.Dir(d.Rel))
		}

		node := &Node{Path: key, Parent: parent, Kind: KindFolder, Options: appendGoBack(opts)}
		if mf, ok := d.MetadataFile(b.metaExt); ok {
			block, err := metadata.ExtractFile(mf)
			if err != nil {
				b.logger.Warn("build: folder metadata unreadable", slog.String("path", mf), slog.String("error", err.Error()))
			} else {
				node.Block = block
			}
		}
		store.put(node)
		b.logger.Debug("build: folder", slog.String("key", key), slog.Int("options", len(node.Options)))
	}

	if err := store.Validate(); err != nil {
		return nil, err
	}
	b.logger.Info("build: menu graph ready", slog.Int("nodes", store.Len()), slog.String("root", store.root))
	return store, nil
}

func (b *Builder) dirKey(rel string) string {
	if rel == "." || rel == "" {
		return b.RootKey()
	}
	return b.RootKey() + "/" + rel
}

func (b *Builder) unitNode(parent, key, file string) *Node {
	node := &Node{Path: key, Parent: parent, Kind: KindUnit}
	unit, err := b.registry.Load(file)
	if err != nil {
		b.logger.Warn("build: unit not loaded", slog.String("path", file), slog.String("error", err.Error()))
		node.Options = appendGoBack(nil)
		return node
	}
	var opts []Option
	for _, e := range action.Enumerate(unit) {
		opts = append(opts, Option{Ordinal: e.Ordinal, Label: e.Action.Name, Target: Invoke(e.Action.Func)})
	}
	node.Options = appendGoBack(opts)
	if doc := unit.Doc(); doc != "" {
		node.Block = metadata.Extract(doc)
	}
	return node
}

func projectsNode(projects []string) *Node {
	title, desc := projectsTitle, projectsDescription
	opts := make([]Option, 0, len(projects)+1)
	for i, p := range projects {
		opts = append(opts, Option{Ordinal: i + 1, Label: p, Target: SwitchProject(p)})
	}
	return &Node{
		Path:    ProjectsKey,
		Parent:  ExitKey,
		Kind:    KindProjects,
		Block:   metadata.Block{Title: &title, Description: &desc},
		Options: appendGoBack(opts),
	}
}

func exitNode() *Node {
	title := exitTitle
	return &Node{
		Path:   ExitKey,
		Parent: EndKey,
		Kind:   KindExit,
		Block:  metadata.Block{Title: &title},
		Options: []Option{
			{Ordinal: 1, Label: YesLabel, Target: ConfirmExit()},
			{Ordinal: 2, Label: NoLabel, Target: ReturnFromExit()},
		},
	}
}
