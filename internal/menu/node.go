// Package menu builds the menu graph from the action tree and stores it.
package menu

import (
	"github.com/starford/menushell/internal/action"
	"github.com/starford/menushell/internal/metadata"
)

// Reserved node keys and labels.
const (
	ProjectsKey = "PROJECT_MENU"
	ExitKey     = "EXIT_MENU"
	// EndKey is the sentinel parent of the exit node: there is nothing
	// further back.
	EndKey = "END"

	GoBackLabel = "GO_BACK"
	YesLabel    = "yes"
	NoLabel     = "no"
)

// Kind classifies a node.
type Kind string

const (
	KindProjects Kind = "projects"
	KindExit     Kind = "exit"
	KindFolder   Kind = "folder"
	KindUnit     Kind = "unit"
)

// TargetKind tags what selecting an option does.
type TargetKind int

const (
	// TargetDescend moves the cursor to Target.Node.
	TargetDescend TargetKind = iota + 1
	// TargetAscend moves the cursor to the current node's parent.
	TargetAscend
	// TargetSwitchProject activates Target.Project and jumps to the root.
	TargetSwitchProject
	// TargetRequestExit enters the exit confirmation node.
	TargetRequestExit
	// TargetConfirmExit terminates navigation.
	TargetConfirmExit
	// TargetReturnFromExit returns to the remembered return point.
	TargetReturnFromExit
	// TargetInvoke runs Target.Action.
	TargetInvoke
)

var targetKindNames = map[TargetKind]string{
	TargetDescend:        "descend",
	TargetAscend:         "ascend",
	TargetSwitchProject:  "switch_project",
	TargetRequestExit:    "request_exit",
	TargetConfirmExit:    "confirm_exit",
	TargetReturnFromExit: "return_from_exit",
	TargetInvoke:         "invoke",
}

func (k TargetKind) String() string {
	if s, ok := targetKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Target is the tagged variant an option points at. Only the field matching
// Kind is meaningful.
type Target struct {
	Kind    TargetKind
	Node    string
	Project string
	Action  action.Func
}

// Ref returns the key-like payload of the target, used for display and
// persistence ("" for targets without one).
func (t Target) Ref() string {
	switch t.Kind {
	case TargetDescend:
		return t.Node
	case TargetSwitchProject:
		return t.Project
	default:
		return ""
	}
}

// Descend returns a target moving the cursor to node.
func Descend(node string) Target { return Target{Kind: TargetDescend, Node: node} }

// Ascend returns the go-back target.
func Ascend() Target { return Target{Kind: TargetAscend} }

// SwitchProject returns a target activating project.
func SwitchProject(project string) Target {
	return Target{Kind: TargetSwitchProject, Project: project}
}

// RequestExit returns a target entering the exit confirmation.
func RequestExit() Target { return Target{Kind: TargetRequestExit} }

// ConfirmExit returns the target terminating navigation.
func ConfirmExit() Target { return Target{Kind: TargetConfirmExit} }

// ReturnFromExit returns the target leaving the exit confirmation.
func ReturnFromExit() Target { return Target{Kind: TargetReturnFromExit} }

// Invoke returns a target running fn.
func Invoke(fn action.Func) Target { return Target{Kind: TargetInvoke, Action: fn} }

// Option is one numbered entry of a node.
type Option struct {
	Ordinal int
	Label   string
	Target  Target
}

// Node is one navigable screen.
type Node struct {
	Path   string
	Parent string
	Kind   Kind
	metadata.Block
	Options []Option
}

// Option returns the option with the given ordinal.
func (n *Node) Option(ordinal int) (Option, bool) {
	for _, o := range n.Options {
		if o.Ordinal == ordinal {
			return o, true
		}
	}
	return Option{}, false
}

// Special reports whether the node is one of the two top-level nodes whose
// parent is not a structural ancestor.
func (n *Node) Special() bool {
	return n.Kind == KindProjects || n.Kind == KindExit
}

// appendGoBack adds the go-back entry with the next free ordinal.
func appendGoBack(opts []Option) []Option {
	return append(opts, Option{Ordinal: len(opts) + 1, Label: GoBackLabel, Target: Ascend()})
}
