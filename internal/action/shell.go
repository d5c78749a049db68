package action

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ShellLoader loads POSIX shell files. Every top-level function declaration
// becomes an action; the leading comment block is the unit's documentation.
//
// Each invocation sources the whole file in a fresh interpreter before
// calling the function, so top-level commands run again on every action.
// A file that exits at top level makes all of its actions fail.
type ShellLoader struct {
	streams IO
}

// NewShellLoader returns a loader that runs actions on the given streams.
func NewShellLoader(streams IO) *ShellLoader {
	return &ShellLoader{streams: streams}
}

// Load implements Loader.
func (l *ShellLoader) Load(path string) (Unit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	file, err := syntax.NewParser(syntax.KeepComments(true)).Parse(strings.NewReader(string(src)), path)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	u := &shellUnit{path: path, file: file, streams: l.streams}
	u.doc = leadingComments(file)
	for _, stmt := range file.Stmts {
		fd, ok := stmt.Cmd.(*syntax.FuncDecl)
		if !ok || fd.Name == nil {
			continue
		}
		u.actions = append(u.actions, Action{Name: fd.Name.Value, Func: u.call(fd.Name.Value)})
	}
	return u, nil
}

type shellUnit struct {
	path    string
	file    *syntax.File
	streams IO
	doc     string
	actions []Action
}

func (u *shellUnit) Doc() string       { return u.doc }
func (u *shellUnit) Actions() []Action { return u.actions }

// call sources the whole file in a fresh runner, then runs the function.
func (u *shellUnit) call(name string) Func {
	return func(ctx context.Context) error {
		runner, err := interp.New(
			interp.Dir(filepath.Dir(u.path)),
			interp.Env(expand.ListEnviron(os.Environ()...)),
			interp.StdIO(u.streams.Stdin, u.streams.Stdout, u.streams.Stderr),
		)
		if err != nil {
			return fmt.Errorf("action: shell runner: %w", err)
		}
		if err := runner.Run(ctx, u.file); err != nil {
			return shellError(u.path, err)
		}
		if runner.Exited() {
			return fmt.Errorf("action: %s exited at top level before %s ran", u.path, name)
		}
		invocation, err := syntax.NewParser().Parse(strings.NewReader(name), "")
		if err != nil {
			return fmt.Errorf("action: parse call %s: %w", name, err)
		}
		if err := runner.Run(ctx, invocation); err != nil {
			return shellError(name, err)
		}
		return nil
	}
}

func shellError(what string, err error) error {
	var status interp.ExitStatus
	if errors.As(err, &status) {
		return fmt.Errorf("action: %s exited with status %d", what, uint8(status))
	}
	return fmt.Errorf("action: %s: %w", what, err)
}

// leadingComments returns the comment block before the first statement,
// without the shebang line and with one leading space trimmed per line.
func leadingComments(file *syntax.File) string {
	var comments []syntax.Comment
	var before uint
	if len(file.Stmts) > 0 {
		comments = file.Stmts[0].Comments
		before = file.Stmts[0].Pos().Line()
	} else {
		comments = file.Last
	}

	var lines []string
	for _, c := range comments {
		if before > 0 && c.Hash.Line() >= before {
			break
		}
		if strings.HasPrefix(c.Text, "!") {
			continue
		}
		lines = append(lines, strings.TrimPrefix(c.Text, " "))
	}
	return strings.Join(lines, "\n")
}
