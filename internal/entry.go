// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/starford/menushell/internal/action"
	"github.com/starford/menushell/internal/api"
	"github.com/starford/menushell/internal/apperr"
	"github.com/starford/menushell/internal/index"
	"github.com/starford/menushell/internal/mcpserver"
	"github.com/starford/menushell/internal/menu"
	"github.com/starford/menushell/internal/menuservice"
	"github.com/starford/menushell/internal/nav"
	"github.com/starford/menushell/internal/scan"
	"github.com/starford/menushell/internal/shell"
	"github.com/starford/menushell/internal/sse"
)

// NoProjectsMessage is printed when the projects directory has no projects.
const NoProjectsMessage = "No projects found. Please add them and restart the program."

// Run builds the menu graph and runs the interactive shell until the
// operator confirms exit or input ends.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger = logger.With(slog.String("session", uuid.NewString()))

	// Actions and the line prompter share one buffered reader so neither
	// swallows input meant for the other.
	in := bufio.NewReader(app.stdin)
	registry := action.NewRegistry(action.IO{Stdin: in, Stdout: app.stdout, Stderr: app.stderr})
	builder, err := app.newBuilder(registry, logger)
	if err != nil {
		return err
	}
	store, err := app.build(builder)
	if err != nil {
		return err
	}

	db, err := app.openCatalog(store, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	rt, err := nav.New(store, nav.WithLogger(logger), nav.WithProjectsDir(cfg.Tree.Projects))
	if err != nil {
		return fmt.Errorf("init navigation: %w", err)
	}

	var prompter shell.Prompter
	switch cfg.Shell.Mode {
	case ShellModeSelect:
		prompter = shell.NewSelectPrompter(in, app.stdout, cfg.Shell.Accessible)
	default:
		prompter = shell.NewLinePrompter(in, app.stdout, cfg.Shell.Prompt)
	}
	shellOpts := []shell.Option{
		shell.WithOutput(app.stdout),
		shell.WithPrompter(prompter),
		shell.WithRenderer(shell.NewRenderer(app.stdout, cfg.Shell.SeparatorWidth)),
		shell.WithLogger(logger),
	}

	g, gCtx := errgroup.WithContext(ctx)
	watchCtx, stopWatch := context.WithCancel(gCtx)
	defer stopWatch()

	if cfg.Watch.Enabled {
		reloads := make(chan *menu.Store, 1)
		shellOpts = append(shellOpts, shell.WithReloads(reloads))
		r := &reloader{builder: builder, registry: registry, logger: logger}
		r.sinks = append(r.sinks, func(next *menu.Store, _ []string) {
			if db != nil {
				if err := index.Sync(db, next, logger); err != nil {
					logger.Warn("reload: catalog sync failed", slog.String("error", err.Error()))
				}
			}
			// Keep only the newest snapshot.
			select {
			case <-reloads:
			default:
			}
			reloads <- next
		})
		g.Go(func() error {
			return r.watch(watchCtx, cfg)
		})
	}

	logger.Info("shell: session started",
		slog.String("root", cfg.Tree.Root),
		slog.String("projects", cfg.Tree.Projects),
		slog.String("mode", cfg.Shell.Mode),
		slog.Int("menus", store.Len()))

	runErr := shell.New(rt, shellOpts...).Run(ctx)
	stopWatch()
	if err := g.Wait(); err != nil {
		logger.Warn("watcher stopped with error", slog.String("error", err.Error()))
	}
	if runErr != nil {
		return runErr
	}
	logger.Info("shell: session ended")
	return nil
}

// Tree prints every menu of the graph in build order.
func Tree(_ context.Context, opts ...Option) error {
	app, logger, err := setup(opts)
	if err != nil {
		return err
	}
	store, err := app.buildQuiet(logger)
	if err != nil {
		return err
	}
	r := shell.NewRenderer(app.stdout, app.config.Shell.SeparatorWidth)
	for _, n := range store.Nodes() {
		fmt.Fprint(app.stdout, r.Node(n, nav.State{}))
	}
	return nil
}

// Search prints the menus matching query, one per line.
func Search(ctx context.Context, query string, opts ...Option) error {
	app, logger, err := setup(opts)
	if err != nil {
		return err
	}
	store, err := app.buildQuiet(logger)
	if err != nil {
		return err
	}
	db, err := app.openCatalog(store, logger)
	if err != nil {
		return err
	}
	var catalog index.MenuIndex
	if db != nil {
		defer db.Close()
		catalog = db
	}

	hits, err := menuservice.NewService(store, catalog, logger).Search(ctx, query, 50)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(hits) == 0 {
		fmt.Fprintln(app.stdout, "no matches")
		return nil
	}
	for _, h := range hits {
		fmt.Fprintf(app.stdout, "%s\t%s\t%s\n", h.Path, h.Title, h.Snippet)
	}
	return nil
}

// Serve runs the read-only HTTP browse API with live tree events.
func Serve(ctx context.Context, opts ...Option) error {
	app, logger, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	registry := app.quietRegistry()
	builder, err := app.newBuilder(registry, logger)
	if err != nil {
		return err
	}
	store, err := app.build(builder)
	if err != nil {
		return err
	}
	db, err := app.openCatalog(store, logger)
	if err != nil {
		return err
	}
	var catalog index.MenuIndex
	if db != nil {
		defer db.Close()
		catalog = db
	}

	svc := menuservice.NewService(store, catalog, logger)
	broker := sse.NewBroker(sse.WithThrottle(2 * time.Second))
	defer broker.Close()

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","menus":%d}`, svc.Store().Len())
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Watch.Enabled {
		rl := &reloader{builder: builder, registry: registry, logger: logger}
		rl.sinks = append(rl.sinks, func(next *menu.Store, changed []string) {
			if err := svc.Replace(next); err != nil {
				logger.Warn("reload: replace failed", slog.String("error", err.Error()))
			}
			broker.PublishTreeEvent(changed, next.Len())
		})
		g.Go(func() error {
			return rl.watch(gCtx, cfg)
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		// Stop the watcher too.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// ServeMCP runs the read-only MCP browse server on stdio.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, logger, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	registry := app.quietRegistry()
	builder, err := app.newBuilder(registry, logger)
	if err != nil {
		return err
	}
	store, err := app.build(builder)
	if err != nil {
		return err
	}
	db, err := app.openCatalog(store, logger)
	if err != nil {
		return err
	}
	var catalog index.MenuIndex
	if db != nil {
		defer db.Close()
		catalog = db
	}
	svc := menuservice.NewService(store, catalog, logger)

	if cfg.Watch.Enabled {
		watchCtx, stop := context.WithCancel(ctx)
		defer stop()
		rl := &reloader{builder: builder, registry: registry, logger: logger}
		rl.sinks = append(rl.sinks, func(next *menu.Store, _ []string) {
			if err := svc.Replace(next); err != nil {
				logger.Warn("reload: replace failed", slog.String("error", err.Error()))
			}
		})
		go func() {
			if err := rl.watch(watchCtx, cfg); err != nil {
				logger.Warn("watcher stopped with error", slog.String("error", err.Error()))
			}
		}()
	}

	logger.Info("mcp: serving on stdio", slog.Int("menus", store.Len()))
	return mcpserver.New(svc, app.version).ServeStdio()
}

var errShutdown = errors.New("shutdown requested")

func setup(opts []Option) (*application, *slog.Logger, error) {
	app := newApplication(opts)
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}
	logger := app.newLogger()
	slog.SetDefault(logger)
	return app, logger, nil
}

// newLogger writes to stderr so logs never interleave with the menus.
func (a *application) newLogger() *slog.Logger {
	cfg := a.config.App
	if cfg.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(a.stderr, &slog.HandlerOptions{
			Level: cfg.LogLevel,
		}))
	}
	return slog.New(charmlog.NewWithOptions(a.stderr, charmlog.Options{
		Level:           charmlog.Level(cfg.LogLevel),
		ReportTimestamp: true,
		Prefix:          "menushell",
	}))
}

func (a *application) quietRegistry() *action.Registry {
	return action.NewRegistry(action.IO{Stdin: strings.NewReader(""), Stdout: a.stderr, Stderr: a.stderr})
}

func (a *application) newBuilder(registry *action.Registry, logger *slog.Logger) (*menu.Builder, error) {
	tree := a.config.Tree
	scanner, err := scan.New(tree.Root,
		scan.WithSkipDirs(tree.SkipDirs...),
		scan.WithActionMatcher(registry.Handles),
		scan.WithMetadataExt(tree.MetadataExt),
	)
	if err != nil {
		return nil, fmt.Errorf("init scanner: %w", err)
	}
	return menu.NewBuilder(scanner, registry, tree.Projects,
		menu.WithLogger(logger),
		menu.WithMetadataExt(tree.MetadataExt),
	), nil
}

// build runs the build phase and reports an empty projects directory to the
// operator.
func (a *application) build(builder *menu.Builder) (*menu.Store, error) {
	store, err := builder.Build()
	if errors.Is(err, apperr.ErrNoProjects) {
		fmt.Fprintln(a.stdout, NoProjectsMessage)
	}
	if err != nil {
		return nil, fmt.Errorf("build menus: %w", err)
	}
	return store, nil
}

func (a *application) buildQuiet(logger *slog.Logger) (*menu.Store, error) {
	builder, err := a.newBuilder(a.quietRegistry(), logger)
	if err != nil {
		return nil, err
	}
	return a.build(builder)
}

// openCatalog opens and syncs the catalog when enabled; it returns nil
// otherwise.
func (a *application) openCatalog(store *menu.Store, logger *slog.Logger) (*index.DB, error) {
	cfg := a.config.Catalog
	if !cfg.Enabled {
		return nil, nil
	}
	db, err := index.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial catalog sync failed", slog.String("error", err.Error()))
	}
	return db, nil
}

// reloader rebuilds the graph after tree changes and hands the new store to
// each sink.
type reloader struct {
	builder  *menu.Builder
	registry *action.Registry
	logger   *slog.Logger
	sinks    []func(store *menu.Store, changed []string)
}

func (r *reloader) watch(ctx context.Context, cfg *Config) error {
	metaExt := cfg.Tree.MetadataExt
	skip := make(map[string]struct{}, len(cfg.Tree.SkipDirs))
	for _, d := range cfg.Tree.SkipDirs {
		skip[d] = struct{}{}
	}
	return index.Watch(ctx, cfg.Tree.Root, index.WatchOptions{
		Debounce: cfg.Watch.Debounce,
		Relevant: func(name string) bool {
			return r.registry.Handles(name) || strings.HasSuffix(name, metaExt)
		},
		Skip: func(name string) bool {
			_, ok := skip[name]
			return ok
		},
	}, r.logger, r.onChange)
}

func (r *reloader) onChange(changed []string) {
	store, err := r.builder.Build()
	if err != nil {
		r.logger.Warn("reload: rebuild failed, keeping current menus", slog.String("error", err.Error()))
		return
	}
	r.logger.Info("reload: menus rebuilt", slog.Int("changed", len(changed)), slog.Int("menus", store.Len()))
	for _, sink := range r.sinks {
		sink(store, changed)
	}
}
