package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/starford/menushell/internal/apperr"
	"github.com/starford/menushell/internal/menu"
	"github.com/starford/menushell/internal/metadata"
)

// Prompter reads one selection for a node. It returns io.EOF when no more
// input will arrive and an error wrapping apperr.ErrMalformedInput when the
// input is not an integer.
type Prompter interface {
	Prompt(ctx context.Context, n *menu.Node) (int, error)
}

// LinePrompter reads integers line by line.
type LinePrompter struct {
	in     *bufio.Reader
	out    io.Writer
	prompt string
}

// NewLinePrompter reads from in. Actions that read input should share the
// same *bufio.Reader so that buffered bytes are not lost between them.
func NewLinePrompter(in *bufio.Reader, out io.Writer, prompt string) *LinePrompter {
	return &LinePrompter{in: in, out: out, prompt: prompt}
}

// Prompt implements Prompter.
func (p *LinePrompter) Prompt(_ context.Context, _ *menu.Node) (int, error) {
	fmt.Fprint(p.out, p.prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return 0, err
	}
	text := strings.TrimSpace(line)
	n, convErr := strconv.Atoi(text)
	if convErr != nil {
		return 0, fmt.Errorf("%w: %q", apperr.ErrMalformedInput, text)
	}
	return n, nil
}

// SelectPrompter shows the node's options in an interactive select list.
type SelectPrompter struct {
	in         io.Reader
	out        io.Writer
	accessible bool
}

// NewSelectPrompter returns a select prompter. in and out may be nil to use
// the terminal.
func NewSelectPrompter(in io.Reader, out io.Writer, accessible bool) *SelectPrompter {
	return &SelectPrompter{in: in, out: out, accessible: accessible}
}

// Prompt implements Prompter.
func (p *SelectPrompter) Prompt(ctx context.Context, n *menu.Node) (int, error) {
	var choice int
	opts := make([]huh.Option[int], len(n.Options))
	for i, o := range n.Options {
		opts[i] = huh.NewOption(fmt.Sprintf("%d - %s", o.Ordinal, o.Label), o.Ordinal)
	}
	title := n.Path
	if n.Title != nil {
		title = *n.Title
	}
	sel := huh.NewSelect[int]().
		Title(title).
		Description(metadata.Value(n.Description)).
		Options(opts...).
		Value(&choice)

	form := huh.NewForm(huh.NewGroup(sel)).WithAccessible(p.accessible)
	if p.in != nil {
		form = form.WithInput(p.in)
	}
	if p.out != nil {
		form = form.WithOutput(p.out)
	}
	if err := form.RunWithContext(ctx); err != nil {
		return 0, selectErr(err)
	}
	return choice, nil
}

// selectErr reports an aborted form as io.EOF, which ends the session.
func selectErr(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return io.EOF
	}
	return err
}
