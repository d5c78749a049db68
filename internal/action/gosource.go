package action

import (
	"bytes"
	"context"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// GoLoader loads single-file Go sources. Every top-level func with no
// receiver, parameters or results (other than init and main) becomes an
// action; the package doc comment is the unit's documentation.
//
// Declarations are read with go/parser. The file is only handed to the
// interpreter the first time one of its actions runs, with any func main
// removed so that evaluating a script does not run it.
type GoLoader struct {
	streams IO
}

// NewGoLoader returns a loader that runs actions on the given streams.
func NewGoLoader(streams IO) *GoLoader {
	return &GoLoader{streams: streams}
}

// Load implements Loader.
func (l *GoLoader) Load(path string) (Unit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	u := &goUnit{
		path:    path,
		pkg:     file.Name.Name,
		doc:     file.Doc.Text(),
		streams: l.streams,
	}
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || !isEntryPoint(fd) {
			continue
		}
		u.actions = append(u.actions, Action{Name: fd.Name.Name, Func: u.call(fd.Name.Name)})
	}
	if u.src, err = evalSource(fset, file, src); err != nil {
		return nil, err
	}
	return u, nil
}

// evalSource returns src without its top-level func main and that func's
// comments. Files without one are returned unchanged.
func evalSource(fset *token.FileSet, file *ast.File, src []byte) (string, error) {
	var start, end token.Pos
	decls := file.Decls[:0:0]
	for _, decl := range file.Decls {
		if fd, ok := decl.(*ast.FuncDecl); ok && fd.Recv == nil && fd.Name.Name == "main" {
			start, end = fd.Pos(), fd.End()
			if fd.Doc != nil {
				start = fd.Doc.Pos()
			}
			continue
		}
		decls = append(decls, decl)
	}
	if !start.IsValid() {
		return string(src), nil
	}

	comments := file.Comments[:0:0]
	for _, cg := range file.Comments {
		if cg.Pos() >= start && cg.End() <= end {
			continue
		}
		comments = append(comments, cg)
	}
	file.Decls, file.Comments = decls, comments
	dropUnusedImports(file)

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return "", fmt.Errorf("strip main: %w", err)
	}
	return buf.String(), nil
}

func isEntryPoint(fd *ast.FuncDecl) bool {
	if fd.Recv != nil || fd.Type.TypeParams != nil {
		return false
	}
	switch fd.Name.Name {
	case "init", "main", "_":
		return false
	}
	return fd.Type.Params.NumFields() == 0 && fd.Type.Results.NumFields() == 0
}

type goUnit struct {
	path    string
	pkg     string
	src     string
	doc     string
	streams IO
	actions []Action

	once    sync.Once
	interp  *interp.Interpreter
	evalErr error
}

func (u *goUnit) Doc() string       { return u.doc }
func (u *goUnit) Actions() []Action { return u.actions }

func (u *goUnit) load() (*interp.Interpreter, error) {
	u.once.Do(func() {
		i := interp.New(interp.Options{
			Stdin:  u.streams.Stdin,
			Stdout: u.streams.Stdout,
			Stderr: u.streams.Stderr,
		})
		if err := i.Use(stdlib.Symbols); err != nil {
			u.evalErr = fmt.Errorf("load stdlib: %w", err)
			return
		}
		if _, err := i.Eval(u.src); err != nil {
			u.evalErr = fmt.Errorf("eval %s: %w", u.path, err)
			return
		}
		u.interp = i
	})
	return u.interp, u.evalErr
}

func (u *goUnit) call(name string) Func {
	return func(ctx context.Context) (err error) {
		i, err := u.load()
		if err != nil {
			return fmt.Errorf("action: %w", err)
		}
		v, err := i.EvalWithContext(ctx, u.pkg+"."+name)
		if err != nil {
			return fmt.Errorf("action: resolve %s: %w", name, err)
		}
		fn, ok := v.Interface().(func())
		if !ok {
			return fmt.Errorf("action: %s is not a func()", name)
		}
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("action: %s panicked: %v", name, r)
			}
		}()
		fn()
		return nil
	}
}

// dropUnusedImports removes imports no remaining selector refers to. An
// import's name is its alias or the last element of its path.
func dropUnusedImports(file *ast.File) {
	used := make(map[string]bool)
	ast.Inspect(file, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok {
				used[id.Name] = true
			}
		}
		return true
	})

	decls := file.Decls[:0]
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.IMPORT {
			decls = append(decls, decl)
			continue
		}
		specs := gd.Specs[:0]
		for _, spec := range gd.Specs {
			is := spec.(*ast.ImportSpec)
			name := path.Base(strings.Trim(is.Path.Value, "`\""))
			if is.Name != nil {
				name = is.Name.Name
			}
			if name == "_" || name == "." || used[name] {
				specs = append(specs, spec)
			}
		}
		if gd.Specs = specs; len(specs) > 0 {
			decls = append(decls, gd)
		}
	}
	file.Decls = decls
}
