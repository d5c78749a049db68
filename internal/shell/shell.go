// Package shell runs the read-evaluate-print loop over a navigation runtime.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/starford/menushell/internal/apperr"
	"github.com/starford/menushell/internal/menu"
	"github.com/starford/menushell/internal/nav"
)

// MalformedInputMessage is printed when a selection is not an integer.
const MalformedInputMessage = "Not a valid integer. Try again!"

// Option configures a Shell.
type Option func(*Shell)

// WithOutput sets where nodes are rendered.
func WithOutput(w io.Writer) Option {
	return func(s *Shell) { s.out = w }
}

// WithPrompter sets how selections are read.
func WithPrompter(p Prompter) Option {
	return func(s *Shell) { s.prompter = p }
}

// WithRenderer sets the node renderer.
func WithRenderer(r *Renderer) Option {
	return func(s *Shell) { s.renderer = r }
}

// WithLogger sets the shell's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Shell) { s.logger = l }
}

// WithReloads makes the shell pick up rebuilt stores between iterations.
func WithReloads(ch <-chan *menu.Store) Option {
	return func(s *Shell) { s.reloads = ch }
}

// Shell is the console surface: render, read one selection, apply it.
type Shell struct {
	rt       *nav.Runtime
	out      io.Writer
	prompter Prompter
	renderer *Renderer
	logger   *slog.Logger
	reloads  <-chan *menu.Store
}

// New returns a shell driving rt. Without options it renders to stdout and
// reads lines from stdin.
func New(rt *nav.Runtime, opts ...Option) *Shell {
	s := &Shell{rt: rt, out: os.Stdout, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		s.renderer = NewRenderer(s.out, DefaultSeparatorWidth)
	}
	if s.prompter == nil {
		s.prompter = NewLinePrompter(bufioStdin(), s.out, "> ")
	}
	return s
}

// Run loops until the operator confirms exit, input ends, or ctx is done.
// It returns an error only when the cursor no longer resolves or input fails.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info("shell: context done", slog.String("reason", err.Error()))
			return nil
		}
		s.applyReloads()

		node, err := s.rt.Current()
		if err != nil {
			s.logger.Error("shell: current menu does not resolve", slog.String("error", err.Error()))
			return fmt.Errorf("shell: %w", err)
		}
		fmt.Fprint(s.out, s.renderer.Node(node, s.rt.State()))

		n, err := s.prompter.Prompt(ctx, node)
		switch {
		case errors.Is(err, io.EOF):
			s.logger.Info("shell: input closed")
			return nil
		case errors.Is(err, apperr.ErrMalformedInput):
			fmt.Fprintln(s.out, MalformedInputMessage)
			continue
		case errors.Is(err, context.Canceled):
			return nil
		case err != nil:
			return fmt.Errorf("shell: read selection: %w", err)
		}

		res, err := s.rt.Select(ctx, n)
		if res.Label != "" {
			fmt.Fprintf(s.out, "%d %s\n", n, res.Label)
		}
		if err != nil {
			if errors.Is(err, apperr.ErrLookupMiss) {
				s.logger.Error("shell: menu connection error", slog.String("node", res.From), slog.String("error", err.Error()))
				fmt.Fprintln(s.out, s.renderer.Error("Menu connection error: "+err.Error()))
			} else {
				s.logger.Warn("shell: action failed", slog.String("node", res.From), slog.String("error", err.Error()))
				fmt.Fprintln(s.out, s.renderer.Error(err.Error()))
			}
			continue
		}
		s.logger.Debug("shell: selection applied",
			slog.Int("selection", n),
			slog.String("outcome", res.Outcome.String()),
			slog.String("from", res.From),
			slog.String("to", res.To))
		if res.Outcome == nav.OutcomeTerminated {
			return nil
		}
	}
}

func (s *Shell) applyReloads() {
	var latest *menu.Store
	for s.reloads != nil {
		select {
		case st, ok := <-s.reloads:
			if !ok {
				s.reloads = nil
				break
			}
			latest = st
			continue
		default:
		}
		break
	}
	if latest == nil {
		return
	}
	s.rt.Reload(latest)
	s.logger.Info("shell: menu tree reloaded", slog.Int("nodes", latest.Len()))
	fmt.Fprintln(s.out, "(menu tree changed on disk; reloaded)")
}

func bufioStdin() *bufio.Reader { return bufio.NewReader(os.Stdin) }
