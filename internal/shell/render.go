package shell

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/menushell/internal/menu"
	"github.com/starford/menushell/internal/nav"
)

// DefaultSeparatorWidth is the width of the rule printed around each node.
const DefaultSeparatorWidth = 80

// Palette used for node rendering.
const (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorMuted     = lipgloss.Color("#6B7280")
	colorHighlight = lipgloss.Color("#3B82F6")
	colorError     = lipgloss.Color("#EF4444")
)

// Renderer prints a node as text. Styling degrades to plain text when the
// writer is not a terminal.
type Renderer struct {
	width int

	rule     lipgloss.Style
	key      lipgloss.Style
	title    lipgloss.Style
	subtitle lipgloss.Style
	ordinal  lipgloss.Style
	errStyle lipgloss.Style
	plain    lipgloss.Style
}

// NewRenderer returns a renderer styled for w.
func NewRenderer(w io.Writer, width int) *Renderer {
	if width <= 0 {
		width = DefaultSeparatorWidth
	}
	lr := lipgloss.NewRenderer(w)
	return &Renderer{
		width:    width,
		rule:     lr.NewStyle().Foreground(colorMuted),
		key:      lr.NewStyle().Foreground(colorMuted),
		title:    lr.NewStyle().Bold(true).Foreground(colorPrimary),
		subtitle: lr.NewStyle().Italic(true).Foreground(colorMuted),
		ordinal:  lr.NewStyle().Bold(true).Foreground(colorHighlight),
		errStyle: lr.NewStyle().Bold(true).Foreground(colorError),
		plain:    lr.NewStyle(),
	}
}

// Separator returns the horizontal rule.
func (r *Renderer) Separator() string {
	return r.rule.Render(strings.Repeat("-", r.width))
}

// Node formats n: active project, parent key, path key, then whichever of
// title, subtitle and description are present, then the numbered options.
func (r *Renderer) Node(n *menu.Node, st nav.State) string {
	var b strings.Builder
	b.WriteString(r.Separator() + "\n")
	line := func(s string, style lipgloss.Style) {
		b.WriteString("  " + style.Render(s) + "\n")
	}
	if st.ActiveProject != "" {
		line("project: "+st.ActiveProject, r.key)
	}
	line(n.Parent, r.key)
	line(n.Path, r.key)
	if n.Title != nil {
		line(*n.Title, r.title)
	}
	if n.Subtitle != nil {
		line(*n.Subtitle, r.subtitle)
	}
	if n.Description != nil {
		line(*n.Description, r.plain)
	}
	b.WriteString("\n")
	for _, o := range n.Options {
		fmt.Fprintf(&b, "  %s - %s\n", r.ordinal.Render(fmt.Sprint(o.Ordinal)), o.Label)
	}
	b.WriteString(r.Separator() + "\n")
	return b.String()
}

// Error formats an error line.
func (r *Renderer) Error(msg string) string {
	return r.errStyle.Render(msg)
}
