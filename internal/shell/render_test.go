package shell

import (
	"bytes"
	"strings"
	"testing"

	"github.com/starford/menushell/internal/menu"
	"github.com/starford/menushell/internal/metadata"
	"github.com/starford/menushell/internal/nav"
)

func TestRenderer_Node(t *testing.T) {
	title, desc := "Deploy", "Ship it"
	n := &menu.Node{
		Path:   "tools/deploy",
		Parent: "tools",
		Block:  metadata.Block{Title: &title, Description: &desc},
		Options: []menu.Option{
			{Ordinal: 1, Label: "prod"},
			{Ordinal: 2, Label: menu.GoBackLabel},
		},
	}
	r := NewRenderer(&bytes.Buffer{}, 40)
	got := r.Node(n, nav.State{ActiveProject: "/p/alpha"})

	want := strings.Join([]string{
		strings.Repeat("-", 40),
		"  project: /p/alpha",
		"  tools",
		"  tools/deploy",
		"  Deploy",
		"  Ship it",
		"",
		"  1 - prod",
		"  2 - GO_BACK",
		strings.Repeat("-", 40),
		"",
	}, "\n")
	if got != want {
		t.Errorf("Node() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderer_DefaultWidth(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, 0)
	if got := len(r.Separator()); got != DefaultSeparatorWidth {
		t.Errorf("separator width = %d", got)
	}
}
