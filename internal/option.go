package internal

import (
	"io"
	"os"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	version string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithIO replaces the process streams. Menus and action output go to out,
// logs to errOut.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *application) {
		a.stdin, a.stdout, a.stderr = in, out, errOut
	}
}

func newApplication(opts []Option) *application {
	app := &application{
		version: "dev",
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}
