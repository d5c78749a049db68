// Package nav implements the navigation runtime: a cursor over a menu store
// driven by numeric selections.
package nav

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/starford/menushell/internal/apperr"
	"github.com/starford/menushell/internal/menu"
)

// Outcome describes what a selection did.
type Outcome int

const (
	// OutcomeIgnored: no option had the selected ordinal.
	OutcomeIgnored Outcome = iota
	// OutcomeMoved: the cursor changed node.
	OutcomeMoved
	// OutcomeProjectSwitched: a project was activated and the cursor is on
	// the root.
	OutcomeProjectSwitched
	// OutcomeInvoked: an action ran; the cursor did not move.
	OutcomeInvoked
	// OutcomeTerminated: the operator confirmed exit.
	OutcomeTerminated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeMoved:
		return "moved"
	case OutcomeProjectSwitched:
		return "project_switched"
	case OutcomeInvoked:
		return "invoked"
	case OutcomeTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// State is the whole mutable navigation state.
type State struct {
	// Current is the key of the node under the cursor.
	Current string
	// ActiveProject is the path of the selected project.
	ActiveProject string
	// ExitReturn is the node the exit confirmation returns to on "no".
	ExitReturn string
}

// Result reports a processed selection.
type Result struct {
	Outcome Outcome
	Label   string
	From    string
	To      string
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

// WithProjectsDir sets the directory project names are resolved against.
func WithProjectsDir(dir string) Option {
	return func(r *Runtime) { r.projectsDir = dir }
}

// Runtime owns the navigation state for one operator. It is not safe for
// concurrent use; the store it reads is.
type Runtime struct {
	store       *menu.Store
	state       State
	projectsDir string
	logger      *slog.Logger
	terminated  bool
}

// New returns a runtime with the cursor on the project-selection node.
func New(store *menu.Store, opts ...Option) (*Runtime, error) {
	r := &Runtime{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	if _, err := store.Get(menu.ProjectsKey); err != nil {
		return nil, fmt.Errorf("nav: %w", err)
	}
	r.state = State{
		Current:       menu.ProjectsKey,
		ActiveProject: r.projectsDir,
		ExitReturn:    store.Root(),
	}
	return r, nil
}

// State returns a copy of the navigation state.
func (r *Runtime) State() State { return r.state }

// Terminated reports whether exit was confirmed.
func (r *Runtime) Terminated() bool { return r.terminated }

// Current returns the node under the cursor.
func (r *Runtime) Current() (*menu.Node, error) {
	return r.store.Get(r.state.Current)
}

// Select applies the option with ordinal n of the current node. A selection
// matching no option is ignored. On error the state is unchanged.
func (r *Runtime) Select(ctx context.Context, n int) (Result, error) {
	if r.terminated {
		return Result{Outcome: OutcomeTerminated}, apperr.ErrTerminated
	}
	cur, err := r.Current()
	if err != nil {
		r.logger.Error("nav: cursor does not resolve", slog.String("key", r.state.Current), slog.String("error", err.Error()))
		return Result{}, fmt.Errorf("nav: %w", err)
	}
	opt, ok := cur.Option(n)
	if !ok {
		r.logger.Debug("nav: unmatched selection", slog.String("node", cur.Path), slog.Int("selection", n))
		return Result{Outcome: OutcomeIgnored, From: cur.Path, To: cur.Path}, nil
	}

	res := Result{Label: opt.Label, From: cur.Path, To: cur.Path}
	switch opt.Target.Kind {
	case menu.TargetDescend:
		return r.move(res, opt.Target.Node)

	case menu.TargetAscend:
		return r.move(res, cur.Parent)

	case menu.TargetRequestExit:
		return r.move(res, menu.ExitKey)

	case menu.TargetReturnFromExit:
		return r.move(res, r.state.ExitReturn)

	case menu.TargetSwitchProject:
		root := r.store.Root()
		if _, err := r.lookup(root); err != nil {
			return res, err
		}
		r.state.ActiveProject = filepath.Join(r.projectsDir, opt.Target.Project)
		r.state.Current = root
		r.logger.Info("nav: project activated", slog.String("project", r.state.ActiveProject))
		res.Outcome, res.To = OutcomeProjectSwitched, root
		return res, nil

	case menu.TargetConfirmExit:
		r.terminated = true
		res.Outcome = OutcomeTerminated
		return res, nil

	case menu.TargetInvoke:
		res.Outcome = OutcomeInvoked
		if opt.Target.Action == nil {
			return res, fmt.Errorf("nav: %s: action %q has no entry point", cur.Path, opt.Label)
		}
		r.logger.Debug("nav: invoking action", slog.String("node", cur.Path), slog.String("action", opt.Label))
		if err := opt.Target.Action(ctx); err != nil {
			return res, fmt.Errorf("nav: %s: action %q: %w", cur.Path, opt.Label, err)
		}
		return res, nil

	default:
		return res, fmt.Errorf("nav: %s: option %q has unknown target %v", cur.Path, opt.Label, opt.Target.Kind)
	}
}

// RequestExit moves the cursor to the exit confirmation, remembering the
// current node as the return point.
func (r *Runtime) RequestExit() error {
	if r.terminated {
		return apperr.ErrTerminated
	}
	_, err := r.move(Result{From: r.state.Current}, menu.ExitKey)
	return err
}

// Reload replaces the store with a freshly built snapshot. The cursor and the
// exit return point survive when their keys still exist; otherwise they fall
// back to the root.
func (r *Runtime) Reload(store *menu.Store) {
	r.store = store
	if !store.Has(r.state.Current) {
		r.logger.Warn("nav: current node vanished on reload", slog.String("key", r.state.Current))
		r.state.Current = store.Root()
	}
	if !store.Has(r.state.ExitReturn) {
		r.state.ExitReturn = store.Root()
	}
}

// move sets the cursor to key. Entering the exit node from anywhere records
// the node being left as the return point.
func (r *Runtime) move(res Result, key string) (Result, error) {
	if _, err := r.lookup(key); err != nil {
		return res, err
	}
	if key == menu.ExitKey && r.state.Current != menu.ExitKey {
		r.state.ExitReturn = r.state.Current
	}
	r.state.Current = key
	res.Outcome, res.To = OutcomeMoved, key
	return res, nil
}

func (r *Runtime) lookup(key string) (*menu.Node, error) {
	n, err := r.store.Get(key)
	if err != nil {
		r.logger.Error("nav: target does not resolve", slog.String("from", r.state.Current), slog.String("key", key))
		return nil, fmt.Errorf("nav: %w", err)
	}
	return n, nil
}
