package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ruchy-lang/ruchy/pkg/ruchy/evaluator"
)

func TestNeedsMoreInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"empty", "", false},
		{"complete expression", "1 + 2", false},
		{"open brace", "fun add(a, b) {", true},
		{"balanced braces", "fun add(a, b) { a + b }", false},
		{"open paren", "println!(", true},
		{"open bracket", "[1, 2,", true},
		{"brace in string", `let s = "{"`, false},
		{"escaped quote", `let s = "she said \"hi\" {"`, false},
		{"nested open", "match x { 1 => { ", true},
		{"multiline complete", "if x > 0 {\n  1\n} else {\n  2\n}", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := needsMoreInput(tt.input); got != tt.want {
				t.Errorf("needsMoreInput(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFilterCompletions(t *testing.T) {
	got := filterCompletions("ma")
	want := map[string]bool{"match": true, "max": true}
	if len(got) != len(want) {
		t.Fatalf("completions for 'ma' = %v", got)
	}
	for _, c := range got {
		if !want[c] {
			t.Errorf("unexpected completion %q", c)
		}
	}

	// The completed word keeps the text before it.
	got = filterCompletions("let x = prin")
	found := false
	for _, c := range got {
		if c == "let x = println" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected 'let x = println' in %v", got)
	}

	if got := filterCompletions("println "); got != nil {
		t.Errorf("trailing space should yield no completions, got %v", got)
	}
	if got := filterCompletions(""); got != nil {
		t.Errorf("empty line should yield no completions, got %v", got)
	}
}

func TestEvalLinePrintsResult(t *testing.T) {
	in := evaluator.New()
	env := evaluator.NewEnvironment()
	var out bytes.Buffer

	evalLine(in, env, "2 + 3", &out)
	if got := out.String(); got != "5\n" {
		t.Errorf("output = %q, want %q", got, "5\n")
	}
}

func TestEvalLinePersistsBindings(t *testing.T) {
	in := evaluator.New()
	env := evaluator.NewEnvironment()
	var out bytes.Buffer

	evalLine(in, env, "let x = 10", &out)
	out.Reset()
	evalLine(in, env, "x * 2", &out)
	if got := out.String(); got != "20\n" {
		t.Errorf("output = %q, want %q", got, "20\n")
	}
}

func TestEvalLineFlushesCapturedOutput(t *testing.T) {
	in := evaluator.New()
	env := evaluator.NewEnvironment()
	var out bytes.Buffer

	evalLine(in, env, `println!("hello")`, &out)
	if got := out.String(); got != "hello\n" {
		t.Errorf("output = %q, want %q", got, "hello\n")
	}
	if in.HasStdout() {
		t.Error("capture buffer should be cleared between lines")
	}
}

func TestEvalLineReportsParseErrors(t *testing.T) {
	in := evaluator.New()
	env := evaluator.NewEnvironment()
	var out bytes.Buffer

	evalLine(in, env, "let = 5", &out)
	if !strings.Contains(out.String(), "Parse error") {
		t.Errorf("expected a parse error, got %q", out.String())
	}
}

func TestEvalLineReportsRuntimeErrors(t *testing.T) {
	in := evaluator.New()
	env := evaluator.NewEnvironment()
	var out bytes.Buffer

	evalLine(in, env, "missing_name", &out)
	if !strings.Contains(out.String(), "undefined variable 'missing_name'") {
		t.Errorf("expected an undefined-name error, got %q", out.String())
	}
}

func TestHandleCommandType(t *testing.T) {
	env := evaluator.NewEnvironment()
	var out bytes.Buffer

	handleCommand(":type 1 + 2", env, &out)
	if !strings.Contains(out.String(), "Int") {
		t.Errorf(":type output = %q, want mention of Int", out.String())
	}

	out.Reset()
	handleCommand(`:type |x| x * 2`, env, &out)
	if !strings.Contains(out.String(), "->") {
		t.Errorf(":type output = %q, want a function type", out.String())
	}
}

func TestHandleCommandEnv(t *testing.T) {
	in := evaluator.New()
	env := evaluator.NewEnvironment()
	var out bytes.Buffer

	handleCommand(":env", env, &out)
	if !strings.Contains(out.String(), "no user variables") {
		t.Errorf(":env on empty scope = %q", out.String())
	}

	evalLine(in, env, "let answer = 42", &out)
	out.Reset()
	handleCommand(":env", env, &out)
	if !strings.Contains(out.String(), "answer = 42") {
		t.Errorf(":env output = %q, want 'answer = 42'", out.String())
	}

	out.Reset()
	handleCommand(":clear", env, &out)
	handleCommand(":env", env, &out)
	if !strings.Contains(out.String(), "no user variables") {
		t.Errorf(":env after :clear = %q", out.String())
	}
}

func TestHandleCommandUnknown(t *testing.T) {
	var out bytes.Buffer
	handleCommand(":nope", evaluator.NewEnvironment(), &out)
	if !strings.Contains(out.String(), "Unknown command") {
		t.Errorf("output = %q", out.String())
	}
}
