package modules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	rerrors "github.com/ruchy-lang/ruchy/pkg/ruchy/errors"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/evaluator"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/lexer"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/parser"
)

func writeModule(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	rerr, ok := err.(*rerrors.RuchyError)
	if !ok {
		t.Fatalf("expected a RuchyError, got %T: %v", err, err)
	}
	return rerr.Code
}

func TestLoadSimpleModule(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "mathx.ruchy", `
fun add(a: Int, b: Int) -> Int { a + b }
fun sub(a: Int, b: Int) -> Int { a - b }
`)

	loader := NewLoader(dir)
	mod, err := loader.LoadModule("mathx")
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	if mod.Path != filepath.Join(dir, "mathx.ruchy") {
		t.Errorf("path = %q", mod.Path)
	}
	if len(mod.AST.Expressions) != 2 {
		t.Errorf("expected 2 declarations, got %d", len(mod.AST.Expressions))
	}
	if len(mod.Dependencies) != 0 {
		t.Errorf("expected no dependencies, got %v", mod.Dependencies)
	}
}

func TestResolveModDotRuchyLayout(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, filepath.Join("geometry", "mod.ruchy"), `fun area(w, h) { w * h }`)

	loader := NewLoader(dir)
	mod, err := loader.LoadModule("geometry")
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	if filepath.Base(mod.Path) != "mod.ruchy" {
		t.Errorf("resolved %q, want the mod.ruchy layout", mod.Path)
	}
}

func TestSearchPathOrder(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeModule(t, first, "util.ruchy", `let which = "first"`)
	writeModule(t, second, "util.ruchy", `let which = "second"`)

	loader := NewLoader(first, second)
	mod, err := loader.LoadModule("util")
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	if !strings.HasPrefix(mod.Path, first) {
		t.Errorf("resolved %q, want a file under the first search path", mod.Path)
	}
}

func TestModuleNotFound(t *testing.T) {
	loader := NewLoader(t.TempDir())
	_, err := loader.LoadModule("ghost")
	if err == nil {
		t.Fatal("expected an error")
	}
	if code := errCode(t, err); code != "IMPORT-0001" {
		t.Errorf("code = %s, want IMPORT-0001", code)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("message %q should name the module", err.Error())
	}
}

func TestCircularImport(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "alpha.ruchy", `
import beta
fun a() { 1 }
`)
	writeModule(t, dir, "beta.ruchy", `
import alpha
fun b() { 2 }
`)

	loader := NewLoader(dir)
	_, err := loader.LoadModule("alpha")
	if err == nil {
		t.Fatal("expected a cycle error")
	}
	if code := errCode(t, err); code != "IMPORT-0002" {
		t.Errorf("code = %s, want IMPORT-0002", code)
	}
	if msg := err.Error(); !strings.Contains(msg, "alpha") || !strings.Contains(msg, "beta") {
		t.Errorf("cycle message %q should name both modules", msg)
	}
}

func TestSelfImportIsACycle(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "selfish.ruchy", `import selfish`)

	loader := NewLoader(dir)
	_, err := loader.LoadModule("selfish")
	if err == nil {
		t.Fatal("expected a cycle error")
	}
	if code := errCode(t, err); code != "IMPORT-0002" {
		t.Errorf("code = %s, want IMPORT-0002", code)
	}
}

func TestParseErrorCarriesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeModule(t, dir, "broken.ruchy", `fun oops( { }`)

	loader := NewLoader(dir)
	_, err := loader.LoadModule("broken")
	if err == nil {
		t.Fatal("expected a parse error")
	}
	rerr, ok := err.(*rerrors.RuchyError)
	if !ok {
		t.Fatalf("expected a RuchyError, got %T", err)
	}
	if rerr.File != path {
		t.Errorf("file = %q, want %q", rerr.File, path)
	}
}

func TestCacheReusesUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "stable.ruchy", `fun f() { 1 }`)

	loader := NewLoader(dir)
	first, err := loader.LoadModule("stable")
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	second, err := loader.LoadModule("stable")
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if first != second {
		t.Error("unchanged module should come from the cache")
	}
}

func TestCacheInvalidatesOnNewerMtime(t *testing.T) {
	dir := t.TempDir()
	path := writeModule(t, dir, "hot.ruchy", `fun f() { 1 }`)

	loader := NewLoader(dir)
	first, err := loader.LoadModule("hot")
	if err != nil {
		t.Fatalf("first load: %v", err)
	}

	if err := os.WriteFile(path, []byte(`fun f() { 2 }
fun g() { 3 }`), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	second, err := loader.LoadModule("hot")
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if first == second {
		t.Fatal("changed module should be reparsed")
	}
	if len(second.AST.Expressions) != 2 {
		t.Errorf("expected the new parse, got %d declarations", len(second.AST.Expressions))
	}
}

func TestInvalidateDropsCacheEntry(t *testing.T) {
	dir := t.TempDir()
	path := writeModule(t, dir, "inv.ruchy", `fun f() { 1 }`)

	loader := NewLoader(dir)
	first, err := loader.LoadModule("inv")
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	loader.Invalidate(path)
	second, err := loader.LoadModule("inv")
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if first == second {
		t.Error("invalidated module should be reparsed")
	}
}

func TestDependenciesAreRecorded(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "top.ruchy", `
import left
import right
import left
fun f() { 1 }
`)
	writeModule(t, dir, "left.ruchy", `fun l() { 1 }`)
	writeModule(t, dir, "right.ruchy", `fun r() { 2 }`)

	loader := NewLoader(dir)
	mod, err := loader.LoadModule("top")
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	want := []string{"left", "right"}
	if len(mod.Dependencies) != len(want) {
		t.Fatalf("dependencies = %v, want %v", mod.Dependencies, want)
	}
	for i, dep := range want {
		if mod.Dependencies[i] != dep {
			t.Errorf("dependencies[%d] = %q, want %q", i, mod.Dependencies[i], dep)
		}
	}
}

func TestImportThroughInterpreter(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "mathx.ruchy", `
fun add(a, b) { a + b }
fun scale(n) { n * 10 }
`)

	in := evaluator.New()
	in.SetLoader(NewLoader(dir))

	p := parser.New(lexer.New(`
import mathx
mathx::add(2, 3) + mathx::scale(4)
`))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}

	result := in.Eval(program, evaluator.NewEnvironment())
	if result.Inspect() != "45" {
		t.Fatalf("result = %s, want 45", result.Inspect())
	}
}

func TestSelectiveImportThroughInterpreter(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "strings2.ruchy", `
fun shout(s) { s.to_upper() }
fun whisper(s) { s.to_lower() }
`)

	in := evaluator.New()
	in.SetLoader(NewLoader(dir))

	p := parser.New(lexer.New(`
import strings2::{shout}
shout("hey")
`))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}

	result := in.Eval(program, evaluator.NewEnvironment())
	if result.Inspect() != "HEY" {
		t.Fatalf("result = %s, want HEY", result.Inspect())
	}
}
