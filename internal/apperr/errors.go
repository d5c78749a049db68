// Package apperr defines the sentinel errors shared across menushell.
package apperr

import "errors"

var (
	// ErrNoProjects aborts the build: the projects directory has no candidates.
	ErrNoProjects = errors.New("no projects found")
	// ErrLookupMiss means a node key is absent from the menu store.
	ErrLookupMiss = errors.New("menu lookup miss")
	// ErrMalformedInput is operator input that is not an integer selection.
	ErrMalformedInput = errors.New("malformed input")
	// ErrTerminated is returned once the operator confirmed exit.
	ErrTerminated = errors.New("navigation terminated")
	ErrNotFound   = errors.New("not found")
)
