// Package action defines action-providing units and enumerates the
// zero-argument entry points they expose.
//
// Units are never introspected at runtime. Each loader reads a unit's
// declarations statically and reports them through the Unit interface, in
// declaration order.
package action

import (
	"context"
	"io"
	"os"
)

// Func is a zero-argument entry point. The returned error is reported to the
// operator; navigation state never depends on it.
type Func func(ctx context.Context) error

// Action is a named entry point exposed by a unit.
type Action struct {
	Name string
	Func Func
}

// Unit is an action-providing unit.
type Unit interface {
	// Doc returns the unit's free-text documentation block, or "".
	Doc() string
	// Actions returns the unit's entry points in declaration order.
	Actions() []Action
}

// Static is a unit declared directly in Go.
type Static struct {
	Documentation string
	Entries       []Action
}

// Doc implements Unit.
func (s Static) Doc() string { return s.Documentation }

// Actions implements Unit.
func (s Static) Actions() []Action { return s.Entries }

// Entry is an action with its 1-based ordinal.
type Entry struct {
	Ordinal int
	Action  Action
}

// Enumerate assigns ordinals 1..N to the unit's actions in the order the unit
// declares them. A unit without actions yields nil.
func Enumerate(u Unit) []Entry {
	actions := u.Actions()
	if len(actions) == 0 {
		return nil
	}
	out := make([]Entry, len(actions))
	for i, a := range actions {
		out[i] = Entry{Ordinal: i + 1, Action: a}
	}
	return out
}

// IO carries the streams handed to running actions.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// StdIO returns the process streams.
func StdIO() IO {
	return IO{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}
