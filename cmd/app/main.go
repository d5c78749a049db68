package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/menushell/internal"
	pkgconfig "github.com/starford/menushell/pkg/config"
)

var version = "dev"

type runFunc func(ctx context.Context, opts ...internal.Option) error

func options(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if root := cmd.String("root"); root != "" {
		cfg.Tree.Root = root
	}
	if projects := cmd.String("projects"); projects != "" {
		cfg.Tree.Projects = projects
	}

	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func action(run runFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		opts, err := options(cmd)
		if err != nil {
			return err
		}
		if err := run(ctx, opts...); err != nil {
			return fmt.Errorf("app run error: %w", err)
		}
		return nil
	}
}

func search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.Args().First()
	if query == "" {
		return fmt.Errorf("search: query argument is required")
	}
	return action(func(ctx context.Context, opts ...internal.Option) error {
		return internal.Search(ctx, query, opts...)
	})(ctx, cmd)
}

func main() {
	cmd := &cli.Command{
		Name:    "menushell",
		Usage:   "Interactive menu shell over a directory tree of shell and Go action units",
		Version: version,
		Action:  action(internal.Run),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "root",
				Usage:   "Root of the menu tree (overrides tree.root)",
				Sources: cli.EnvVars("MENUSHELL_ROOT"),
			},
			&cli.StringFlag{
				Name:    "projects",
				Usage:   "Projects directory (overrides tree.projects)",
				Sources: cli.EnvVars("MENUSHELL_PROJECTS"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "tree",
				Usage:  "Print every menu of the tree and exit",
				Action: action(internal.Tree),
			},
			{
				Name:      "search",
				Usage:     "Search menu titles, descriptions and option labels",
				ArgsUsage: "QUERY",
				Action:    search,
			},
			{
				Name:   "serve",
				Usage:  "Serve the read-only browse API over HTTP",
				Action: action(internal.Serve),
			},
			{
				Name:   "mcp",
				Usage:  "Serve the read-only browse tools over MCP stdio",
				Action: action(internal.ServeMCP),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
