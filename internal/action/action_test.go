package action

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func names(u Unit) []string {
	var out []string
	for _, a := range u.Actions() {
		out = append(out, a.Name)
	}
	return out
}

func TestEnumerate_DenseOrdinals(t *testing.T) {
	noop := func(context.Context) error { return nil }
	u := Static{Entries: []Action{{Name: "zeta", Func: noop}, {Name: "alpha", Func: noop}, {Name: "mid", Func: noop}}}

	entries := Enumerate(u)
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	for i, e := range entries {
		if e.Ordinal != i+1 {
			t.Errorf("entry %d ordinal = %d", i, e.Ordinal)
		}
	}
	// Declaration order, not sorted.
	if entries[0].Action.Name != "zeta" || entries[2].Action.Name != "mid" {
		t.Errorf("order changed: %v", names(u))
	}
}

func TestEnumerate_Empty(t *testing.T) {
	if got := Enumerate(Static{}); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestShellLoader_ActionsAndDoc(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "backup.sh", `#!/bin/sh
# Title: Backups
# Description: Snapshot helpers
snapshot() {
	echo "snap"
}
helper_var=1
restore() { echo "restore"; }
`)
	u, err := NewShellLoader(IO{}).Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"snapshot", "restore"}, names(u)); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(u.Doc(), "Title: Backups") || strings.Contains(u.Doc(), "/bin/sh") {
		t.Errorf("doc = %q", u.Doc())
	}
}

func TestShellLoader_Invoke(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "hello.sh", "greet() {\n\techo \"hello from shell\"\n}\nfail() {\n\treturn 3\n}\n")

	var out bytes.Buffer
	u, err := NewShellLoader(IO{Stdin: strings.NewReader(""), Stdout: &out, Stderr: &out}).Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	acts := u.Actions()
	if err := acts[0].Func(context.Background()); err != nil {
		t.Fatalf("greet: %v", err)
	}
	if !strings.Contains(out.String(), "hello from shell") {
		t.Errorf("output = %q", out.String())
	}
	if err := acts[1].Func(context.Background()); err == nil {
		t.Error("expected error for non-zero status")
	}
}

func TestShellLoader_TopLevelExitFails(t *testing.T) {
	p := writeFile(t, t.TempDir(), "early.sh", "exit 0\ngreet() {\n\techo greeted\n}\n")

	var out bytes.Buffer
	u, err := NewShellLoader(IO{Stdin: strings.NewReader(""), Stdout: &out, Stderr: &out}).Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"greet"}, names(u)); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}
	if err := u.Actions()[0].Func(context.Background()); err == nil {
		t.Error("expected error when the file exits before the function runs")
	}
	if strings.Contains(out.String(), "greeted") {
		t.Errorf("function ran despite top-level exit: %q", out.String())
	}
}

func TestShellLoader_NoFunctions(t *testing.T) {
	p := writeFile(t, t.TempDir(), "plain.sh", "# Title: Plain\necho hi\n")
	u, err := NewShellLoader(IO{}).Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(u.Actions()) != 0 {
		t.Errorf("actions = %v", names(u))
	}
}

func TestShellLoader_SyntaxError(t *testing.T) {
	p := writeFile(t, t.TempDir(), "broken.sh", "oops() {\n")
	if _, err := NewShellLoader(IO{}).Load(p); err == nil {
		t.Error("expected parse error")
	}
}

func TestGoLoader_Enumerates(t *testing.T) {
	p := writeFile(t, t.TempDir(), "report.go", `// Title: Reports
// Subtitle: Monthly numbers
package report

import "fmt"

type thing struct{}

func (thing) Method() {}

func Generate() { fmt.Print("generated") }

func withArg(s string) {}

func returnsValue() int { return 1 }

func init() {}

func cleanup() {}
`)
	u, err := NewGoLoader(IO{}).Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"Generate", "cleanup"}, names(u)); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(u.Doc(), "Title: Reports") {
		t.Errorf("doc = %q", u.Doc())
	}
}

func TestGoLoader_Invoke(t *testing.T) {
	p := writeFile(t, t.TempDir(), "hello.go", "package hello\n\nimport \"fmt\"\n\nfunc Hello() { fmt.Print(\"hello from go\") }\n")
	var out bytes.Buffer
	u, err := NewGoLoader(IO{Stdin: strings.NewReader(""), Stdout: &out, Stderr: &out}).Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := u.Actions()[0].Func(context.Background()); err != nil {
		t.Fatalf("Hello: %v", err)
	}
	if !strings.Contains(out.String(), "hello from go") {
		t.Errorf("output = %q", out.String())
	}
}

func TestGoLoader_ScriptWithMain(t *testing.T) {
	p := writeFile(t, t.TempDir(), "script.go", `package main

import (
	"fmt"
	"os"
)

// main is only for running the file directly.
func main() {
	fmt.Print("main ran;")
	os.Exit(1)
}

func Hi() { fmt.Print("hi") }
`)
	var out bytes.Buffer
	u, err := NewGoLoader(IO{Stdin: strings.NewReader(""), Stdout: &out, Stderr: &out}).Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"Hi"}, names(u)); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}
	if err := u.Actions()[0].Func(context.Background()); err != nil {
		t.Fatalf("Hi: %v", err)
	}
	if got := out.String(); got != "hi" {
		t.Errorf("output = %q, want %q", got, "hi")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(IO{})
	if !r.Handles("x.sh") || !r.Handles("X.GO") || r.Handles("notes.txt") {
		t.Error("unexpected Handles result")
	}
	if diff := cmp.Diff([]string{".go", ".sh"}, r.Extensions()); diff != "" {
		t.Errorf("extensions (-want +got):\n%s", diff)
	}
	if _, err := r.Load("/tmp/file.unknown"); err == nil {
		t.Error("expected error for unregistered extension")
	}

	r.Register(".act", LoaderFunc(func(string) (Unit, error) {
		return Static{Documentation: "Title: Fake"}, nil
	}))
	u, err := r.Load("dir/fake.act")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if u.Doc() != "Title: Fake" {
		t.Errorf("doc = %q", u.Doc())
	}
}

func TestStem(t *testing.T) {
	if got := Stem("a/b/deploy.sh"); got != "deploy" {
		t.Errorf("Stem = %q", got)
	}
}
