package evaluator

import (
	"strings"
	"testing"

	"github.com/ruchy-lang/ruchy/pkg/ruchy/lexer"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/parser"
)

func testEval(t *testing.T, input string) Object {
	t.Helper()
	return testEvalInterp(t, input, New())
}

func testEvalInterp(t *testing.T, input string, in *Interp) Object {
	t.Helper()
	p := parser.New(lexer.New(input))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parser error for %q: %s", input, errs[0])
	}
	return in.Eval(program, NewEnvironment())
}

func testIntegerObject(t *testing.T, obj Object, expected int64) {
	t.Helper()
	result, ok := obj.(*Integer)
	if !ok {
		t.Fatalf("expected Integer, got %T (%s)", obj, obj.Inspect())
	}
	if result.Value != expected {
		t.Errorf("expected %d, got %d", expected, result.Value)
	}
}

func testFloatObject(t *testing.T, obj Object, expected float64) {
	t.Helper()
	result, ok := obj.(*Float)
	if !ok {
		t.Fatalf("expected Float, got %T (%s)", obj, obj.Inspect())
	}
	if diff := result.Value - expected; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected %v, got %v", expected, result.Value)
	}
}

func testBooleanObject(t *testing.T, obj Object, expected bool) {
	t.Helper()
	result, ok := obj.(*Boolean)
	if !ok {
		t.Fatalf("expected Boolean, got %T (%s)", obj, obj.Inspect())
	}
	if result.Value != expected {
		t.Errorf("expected %t, got %t", expected, result.Value)
	}
}

func testStringObject(t *testing.T, obj Object, expected string) {
	t.Helper()
	result, ok := obj.(*String)
	if !ok {
		t.Fatalf("expected String, got %T (%s)", obj, obj.Inspect())
	}
	if result.Value != expected {
		t.Errorf("expected %q, got %q", expected, result.Value)
	}
}

func testErrorCode(t *testing.T, obj Object, code string) {
	t.Helper()
	result, ok := obj.(*Error)
	if !ok {
		t.Fatalf("expected Error, got %T (%s)", obj, obj.Inspect())
	}
	if result.Err == nil {
		t.Fatalf("expected error code %s, got thrown payload %s", code, result.Payload.Inspect())
	}
	if result.Err.Code != code {
		t.Errorf("expected code %s, got %s: %s", code, result.Err.Code, result.Err.Message)
	}
}

func testInspect(t *testing.T, obj Object, expected string) {
	t.Helper()
	if obj == nil {
		t.Fatalf("expected %q, got nil", expected)
	}
	if obj.Inspect() != expected {
		t.Errorf("expected %q, got %q", expected, obj.Inspect())
	}
}

func TestIntegerArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"5", 5},
		{"-5 + 10", 5},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 / 3", 3},
		{"7 % 3", 1},
		{"2 ** 10", 1024},
		{"1 << 4", 16},
		{"255 >> 4", 15},
		{"0xff & 0x0f", 15},
		{"5 | 2", 7},
		{"5 ^ 1", 4},
		{"~0", -1},
	}
	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestFloatArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"3.14", 3.14},
		{"1.5 + 2.5", 4.0},
		{"10 / 4.0", 2.5},
		{"2.0 ** 3", 8.0},
		{"-1.5 * 2", -3.0},
	}
	for _, tt := range tests {
		testFloatObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestBooleanExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"!true", false},
		{"1 < 2", true},
		{"2 >= 2", true},
		{"1 == 1.0", true},
		{"\"a\" == \"a\"", true},
		{"\"a\" != \"b\"", true},
		{"true && false", false},
		{"false && missing", false},
		{"true || missing", true},
		{"2 in [1, 2, 3]", true},
		{"5 in 1..5", false},
		{"5 in 1..=5", true},
		{"\"ell\" in \"hello\"", true},
		{"5 is Int", true},
		{"\"x\" is Int", false},
		{"3.0 is Float", true},
		{"[1] == [1]", true},
		{"(1, 2) == (1, 2)", true},
	}
	for _, tt := range tests {
		testBooleanObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestStringConcatenation(t *testing.T) {
	testStringObject(t, testEval(t, `"hello" + " " + "world"`), "hello world")
	testStringObject(t, testEval(t, `"ab" + 'c'`), "abc")
	testStringObject(t, testEval(t, `'a' + "bc"`), "abc")
}

func TestLetShadowing(t *testing.T) {
	testIntegerObject(t, testEval(t, `
let x = 10
{ let x = 20
  x } + x
`), 30)
}

func TestClosuresCaptureByReference(t *testing.T) {
	input := `
fun make_counter() {
    let mut n = 0
    |step| { n += step
             n }
}
let c = make_counter()
c(1)
c(2)
`
	testIntegerObject(t, testEval(t, input), 3)
}

func TestEmptyParamLambda(t *testing.T) {
	testIntegerObject(t, testEval(t, `
let f = || 42
f()
`), 42)
}

func TestIfExpressions(t *testing.T) {
	testIntegerObject(t, testEval(t, "if 1 < 2 { 10 } else { 20 }"), 10)
	testIntegerObject(t, testEval(t, "if false { 1 } else if true { 2 } else { 3 }"), 2)
	if obj := testEval(t, "if false { 1 }"); obj != NULL {
		t.Errorf("if without else should yield null, got %s", obj.Inspect())
	}
	testStringObject(t, testEval(t, `1 < 2 ? "yes" : "no"`), "yes")
}

func TestNullCoalescing(t *testing.T) {
	testIntegerObject(t, testEval(t, "3 ?? 5"), 3)
	testIntegerObject(t, testEval(t, `
let x = if false { 1 }
x ?? 5
`), 5)
	testIntegerObject(t, testEval(t, "None ?? 2"), 2)
}

func TestLoops(t *testing.T) {
	testIntegerObject(t, testEval(t, `
let mut total = 0
for i in 1..=5 { total += i }
total
`), 15)

	testIntegerObject(t, testEval(t, `
let mut i = 0
while i < 5 { i += 1 }
i
`), 5)

	testIntegerObject(t, testEval(t, `
let mut i = 0
loop { i += 1
       if i == 4 { break i * 10 } }
`), 40)

	testIntegerObject(t, testEval(t, `
let mut s = 0
for i in 1..=10 {
    if i % 2 == 0 { continue }
    s += i
}
s
`), 25)
}

func TestLabeledBreak(t *testing.T) {
	testIntegerObject(t, testEval(t, `
'outer: for i in 1..5 {
    for j in 1..5 {
        if i * j == 6 { break 'outer i * j * 10 }
    }
}
`), 60)
}

func TestForOverCollections(t *testing.T) {
	testStringObject(t, testEval(t, `
let mut out = ""
for ch in "abc" { out += ch }
out
`), "abc")

	testIntegerObject(t, testEval(t, `
let mut total = 0
for x in [10, 20, 30] { total += x }
total
`), 60)
}

func TestMatchExpressions(t *testing.T) {
	testStringObject(t, testEval(t, `match 3 { 1 | 2 | 3 => "small", _ => "big" }`), "small")
	testStringObject(t, testEval(t, `match 10 { n if n > 5 => "big", _ => "small" }`), "big")
	testStringObject(t, testEval(t, `match 7 { 1..=5 => "low", 6..=9 => "mid", _ => "high" }`), "mid")
	testIntegerObject(t, testEval(t, `match (1, 2) { (0, _) => 0, (x, y) => x + y }`), 3)
	testIntegerObject(t, testEval(t, `match 5 { n @ 1..=9 => n * 2, _ => 0 }`), 10)
	testIntegerObject(t, testEval(t, `match [1, 2, 3, 4] { [first, ..rest] => first + rest.len(), [] => 0 }`), 4)
	testErrorCode(t, testEval(t, "match 2 { 1 => 1 }"), "STATE-0002")
}

func TestMatchStructPattern(t *testing.T) {
	testStringObject(t, testEval(t, `
struct Point { x: Int, y: Int }
let p = Point { x: 0, y: 7 }
match p {
    Point { x: 0, y } => "on axis at " + y.to_string(),
    Point { x, y } => "elsewhere",
}
`), "on axis at 7")
}

func TestListComprehension(t *testing.T) {
	testInspect(t, testEval(t, "[x * x for x in [1, 2, 3, 4, 5] if x % 2 == 1]"), "[1, 9, 25]")
	testInspect(t, testEval(t, "[(x, y) for x in 1..=2 for y in 1..=2 if x != y]"), "[(1, 2), (2, 1)]")
}

func TestFunctions(t *testing.T) {
	testIntegerObject(t, testEval(t, `
fun fib(n) { if n < 2 { n } else { fib(n - 1) + fib(n - 2) } }
fib(10)
`), 55)

	testStringObject(t, testEval(t, `
fun greet(name, greeting = "hi") { greeting + " " + name }
greet("bob")
`), "hi bob")

	testIntegerObject(t, testEval(t, `
fun first_positive(xs) {
    for x in xs {
        if x > 0 { return x }
    }
    -1
}
first_positive([-3, 0, 7, 9])
`), 7)

	testErrorCode(t, testEval(t, `
fun two(a, b) { a + b }
two(1)
`), "ARITY-0001")
}

func TestRecursionLimit(t *testing.T) {
	testErrorCode(t, testEval(t, `
fun f() { f() }
f()
`), "STATE-0001")
}

func TestStructsAndImpl(t *testing.T) {
	testFloatObject(t, testEval(t, `
struct Point { x: Float, y: Float }
impl Point {
    fun dist(&self) -> Float { (self.x * self.x + self.y * self.y).sqrt() }
}
let p = Point { x: 3.0, y: 4.0 }
p.dist()
`), 5.0)

	testStringObject(t, testEval(t, `
struct Config { host: String = "localhost", port: Int = 8080 }
let c = Config { port: 9090 }
c.host
`), "localhost")

	testFloatObject(t, testEval(t, `
struct Point { x: Float, y: Float }
let mut p = Point { x: 1.0, y: 2.0 }
p.x = 3.5
p.x
`), 3.5)
}

func TestTraitDefaultMethods(t *testing.T) {
	testStringObject(t, testEval(t, `
trait Greeter {
    fun name(&self) -> String
    fun greet(&self) -> String { "hello, " + self.name() }
}
struct Bot { id: Int }
impl Greeter for Bot {
    fun name(&self) -> String { "bot" }
}
let b = Bot { id: 1 }
b.greet()
`), "hello, bot")
}

func TestEnums(t *testing.T) {
	testIntegerObject(t, testEval(t, `
enum Color { Red, Green = 5, Blue }
Color::Blue as Int
`), 6)

	testFloatObject(t, testEval(t, `
enum Shape { Circle(Float), Rect(Float, Float) }
let s = Shape::Circle(2.0)
match s {
    Shape::Circle(r) => r,
    Shape::Rect(w, h) => w * h,
}
`), 2.0)
}

func TestOptionAndResult(t *testing.T) {
	testIntegerObject(t, testEval(t, "Some(5).map(|x| x * 2).unwrap()"), 10)
	testIntegerObject(t, testEval(t, "None.unwrap_or(7)"), 7)
	testBooleanObject(t, testEval(t, "Some(1).is_some()"), true)
	testBooleanObject(t, testEval(t, "Ok(1).is_ok()"), true)
	testBooleanObject(t, testEval(t, `Err("bad").is_err()`), true)
	testInspect(t, testEval(t, `Ok(2).map(|x| x + 1)`), "Ok(3)")

	failed, ok := testEval(t, `Err("bad").unwrap()`).(*Error)
	if !ok {
		t.Fatal("unwrap on Err should produce a runtime error")
	}
	if failed.Payload == nil || !strings.Contains(failed.Payload.Inspect(), "bad") {
		t.Errorf("unwrap error should carry the Err payload, got %s", failed.Inspect())
	}
}

func TestTryOperator(t *testing.T) {
	input := `
fun safe_div(a, b) {
    if b == 0 { return Err("div by zero") }
    Ok(a / b)
}
fun calc(d) {
    let x = safe_div(10, d)?
    Ok(x + 1)
}
calc(2)
`
	testInspect(t, testEval(t, input), "Ok(6)")

	errPath := strings.Replace(input, "calc(2)", "calc(0)", 1)
	testInspect(t, testEval(t, errPath), `Err("div by zero")`)
}

func TestTryCatchFinally(t *testing.T) {
	testStringObject(t, testEval(t, `try { throw "boom" } catch e { e } finally { 0 }`), "boom")

	testStringObject(t, testEval(t, `try { [1][5] } catch e { e.code }`), "INDEX-0001")

	testIntegerObject(t, testEval(t, `try { throw 1 } catch e { e } finally { 99 }`), 1)

	// An unmatched catch pattern leaves the error in flight.
	obj := testEval(t, `try { throw "x" } catch 42 { 0 }`)
	failed, ok := obj.(*Error)
	if !ok {
		t.Fatalf("expected uncaught error, got %T (%s)", obj, obj.Inspect())
	}
	if failed.Payload == nil || failed.Payload.Inspect() != "x" {
		t.Errorf("error payload should survive, got %s", failed.Inspect())
	}
}

func TestFinallyRunsOnSuccess(t *testing.T) {
	in := New()
	testIntegerObject(t, testEvalInterp(t, `try { 7 } catch e { 0 } finally { println!("cleanup") }`, in), 7)
	if in.GetStdout() != "cleanup" {
		t.Errorf("finally block did not run: %q", in.GetStdout())
	}
}

func TestActors(t *testing.T) {
	testIntegerObject(t, testEval(t, `
actor Counter {
    count: Int = 0,
    receive Inc() { self.count += 1 },
    receive get() { self.count }
}
let c = spawn Counter()
c ! Inc()
c ! Inc()
c.count
`), 2)

	testIntegerObject(t, testEval(t, `
actor Counter {
    count: Int = 0,
    receive add(by: Int) { self.count += by },
    receive get() { self.count }
}
let c = spawn Counter()
c ! add(5)
c ! add(3)
c <? get()
`), 8)

	testErrorCode(t, testEval(t, `
actor Empty { value: Int = 0 }
let e = spawn Empty()
e ! missing()
`), "UNDEF-0003")
}

func TestStringInterpolation(t *testing.T) {
	testStringObject(t, testEval(t, `
let x = 3.14159
f"pi={x:.2}"
`), "pi=3.14")

	testStringObject(t, testEval(t, `
let a = 2
let b = 3
f"{a}+{b}={a + b}"
`), "2+3=5")

	testStringObject(t, testEval(t, `f"{1234567:,}"`), "1,234,567")
	testStringObject(t, testEval(t, `f"{255:x}"`), "ff")
	testStringObject(t, testEval(t, `f"[{5:04}]"`), "[0005]")
}

func TestMacros(t *testing.T) {
	testInspect(t, testEval(t, "vec![1, 2, 3]"), "[1, 2, 3]")
	if obj := testEval(t, "assert!(1 < 2)"); obj != NULL {
		t.Errorf("passing assert should yield null, got %s", obj.Inspect())
	}
	if _, ok := testEval(t, "assert!(1 > 2)").(*Error); !ok {
		t.Error("failing assert should produce an error")
	}
	if _, ok := testEval(t, `panic!("stop")`).(*Error); !ok {
		t.Error("panic should produce an error")
	}
}

func TestStdoutCapture(t *testing.T) {
	in := New()
	testEvalInterp(t, `
print!("a")
print!("b")
println!("c")
println!("done")
`, in)
	if got := in.GetStdout(); got != "abc\ndone" {
		t.Errorf("unexpected stdout %q", got)
	}
	lines := in.StdoutLines()
	if len(lines) != 2 || lines[0] != "abc" {
		t.Errorf("unexpected lines %v", lines)
	}
	in.ClearStdout()
	if in.HasStdout() {
		t.Error("ClearStdout should empty the buffer")
	}
}

func TestListMethods(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"[1, 2, 3].map(|x| x * 2)", "[2, 4, 6]"},
		{"[1, 2, 3, 4].filter(|x| x % 2 == 0)", "[2, 4]"},
		{"[1, 2, 3].reduce(0, |acc, x| acc + x)", "6"},
		{"[3, 1, 2].sorted()", "[1, 2, 3]"},
		{"[1, 2, 2, 3, 1].unique()", "[1, 2, 3]"},
		{"[1, 2, 3].reversed()", "[3, 2, 1]"},
		{"[[1, 2], [3]].flatten()", "[1, 2, 3]"},
		{"[1, 2, 3].enumerate()", "[(0, 1), (1, 2), (2, 3)]"},
		{"[1, 2].zip([\"a\", \"b\"])", `[(1, "a"), (2, "b")]`},
		{"[1, 2, 3, 4].take(2)", "[1, 2]"},
		{"[1, 2, 3, 4].skip(2)", "[3, 4]"},
		{"[1, 2, 3].sum()", "6"},
		{"[4, 1, 9].min()", "1"},
		{"[4, 1, 9].max()", "9"},
		{"[1, 2, 3].first()", "Some(1)"},
		{"[].first()", "None"},
		{"[1, 2].contains(2)", "true"},
		{"[\"a\", \"b\"].join(\"-\")", "a-b"},
		{"[1, 2, 3].any(|x| x > 2)", "true"},
		{"[1, 2, 3].all(|x| x > 0)", "true"},
		{"[0, ...[1, 2], 3]", "[0, 1, 2, 3]"},
		{"[7; 3]", "[7, 7, 7]"},
	}
	for _, tt := range tests {
		testInspect(t, testEval(t, tt.input), tt.expected)
	}
}

func TestListMutation(t *testing.T) {
	testInspect(t, testEval(t, `
let mut xs = [1, 2]
xs.push(3)
xs
`), "[1, 2, 3]")

	testIntegerObject(t, testEval(t, `
let mut stack = [1, 2, 3]
let mut total = 0
while let Some(x) = stack.pop() { total += x }
total
`), 6)
}

func TestIndexingAndSlicing(t *testing.T) {
	testIntegerObject(t, testEval(t, "[1, 2, 3][0]"), 1)
	testIntegerObject(t, testEval(t, "[1, 2, 3][-1]"), 3)
	testInspect(t, testEval(t, "[1, 2, 3, 4][1..3]"), "[2, 3]")
	testInspect(t, testEval(t, "[1, 2, 3, 4][2..]"), "[3, 4]")
	testInspect(t, testEval(t, "[1, 2, 3, 4][..2]"), "[1, 2]")
	testInspect(t, testEval(t, `"hello"[1..4]`), "ell")
	testInspect(t, testEval(t, "(10, 20).0"), "10")
	testErrorCode(t, testEval(t, "[1, 2][9]"), "INDEX-0001")
}

func TestStringMethods(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"Hello".to_upper()`, "HELLO"},
		{`"Hello".to_lower()`, "hello"},
		{`"  x  ".trim()`, "x"},
		{`"a,b,c".split(",")`, `["a", "b", "c"]`},
		{`"hello".len()`, "5"},
		{`"héllo".len()`, "5"},
		{`"hello".contains("ell")`, "true"},
		{`"hello".starts_with("he")`, "true"},
		{`"hello".replace("l", "L")`, "heLLo"},
		{`"ab".repeat(3)`, "ababab"},
		{`"42".parse_int()`, "Ok(42)"},
		{`"nope".parse_int().is_err()`, "true"},
		{`"abc".reversed()`, "cba"},
		{`"hi".chars()`, "['h', 'i']"},
	}
	for _, tt := range tests {
		testInspect(t, testEval(t, tt.input), tt.expected)
	}
}

func TestHashMaps(t *testing.T) {
	testIntegerObject(t, testEval(t, `
let m = { name: "ada", age: 36 }
m["age"]
`), 36)

	testInspect(t, testEval(t, `
let mut m = { a: 1 }
m.insert("b", 2)
m.keys()
`), `["a", "b"]`)

	testInspect(t, testEval(t, `{ a: 1 }.get("missing")`), "None")
	testBooleanObject(t, testEval(t, `{ a: 1 }.contains_key("a")`), true)
	testIntegerObject(t, testEval(t, `{ a: 1, b: 2 }.len()`), 2)
}

func TestRangeMethods(t *testing.T) {
	testInspect(t, testEval(t, "(1..4).to_list()"), "[1, 2, 3]")
	testIntegerObject(t, testEval(t, "(1..=10).sum()"), 55)
	testIntegerObject(t, testEval(t, "(1..=3).len()"), 3)
	testInspect(t, testEval(t, "(1..=3).map(|x| x * x)"), "[1, 4, 9]")
}

func TestCasts(t *testing.T) {
	testIntegerObject(t, testEval(t, `"42" as Int`), 42)
	testIntegerObject(t, testEval(t, "3.7 as Int"), 3)
	testFloatObject(t, testEval(t, "5 as Float"), 5.0)
	testStringObject(t, testEval(t, "5 as String"), "5")
	testIntegerObject(t, testEval(t, "true as Int"), 1)
	testInspect(t, testEval(t, "65 as Char"), "'A'")
	testErrorCode(t, testEval(t, `"abc" as Int`), "OP-0004")
}

func TestPipelines(t *testing.T) {
	testIntegerObject(t, testEval(t, "[1, 2, 3] |> sum"), 6)
	testIntegerObject(t, testEval(t, `
fun double(x) { x * 2 }
5 |> double |> double
`), 20)
	testInspect(t, testEval(t, `
fun add(x, y) { x + y }
1 |> add(10)
`), "11")
}

func TestIfLetAndLetElse(t *testing.T) {
	testIntegerObject(t, testEval(t, "if let Some(x) = Some(3) { x } else { 0 }"), 3)
	testIntegerObject(t, testEval(t, "if let Some(x) = None { x } else { 9 }"), 9)

	input := `
fun head_or(xs, fallback) {
    let Some(x) = xs.first() else { return fallback }
    x
}
head_or(%s, -1)
`
	testIntegerObject(t, testEval(t, strings.Replace(input, "%s", "[5, 6]", 1)), 5)
	testIntegerObject(t, testEval(t, strings.Replace(input, "%s", "[]", 1)), -1)
}

func TestDestructuringLet(t *testing.T) {
	testIntegerObject(t, testEval(t, `
let (a, b) = (1, 2)
a + b
`), 3)

	testIntegerObject(t, testEval(t, `
let [first, ..rest] = [10, 20, 30]
first + rest.len()
`), 12)
}

func TestInlineModules(t *testing.T) {
	testFloatObject(t, testEval(t, `
module geo {
    fun area(r) { 3.0 * r * r }
}
geo::area(2.0)
`), 12.0)
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"len([1, 2, 3])", "3"},
		{`len("hello")`, "5"},
		{"abs(-5)", "5"},
		{"min(3, 1, 2)", "1"},
		{"max([3, 1, 2])", "3"},
		{"sum(1..=10)", "55"},
		{`int("12")`, "12"},
		{"str(5)", "5"},
		{`type_of("x")`, "String"},
		{"type_of(1)", "Int"},
		{"range(3)", "0..3"},
		{"range(0, 10, 3)", "[0, 3, 6, 9]"},
		{"round(2.6)", "3.0"},
	}
	for _, tt := range tests {
		testInspect(t, testEval(t, tt.input), tt.expected)
	}
}

func TestJSONBuiltins(t *testing.T) {
	testInspect(t, testEval(t, `json_parse("[1, 2, true]").unwrap()`), "[1, 2, true]")
	testInspect(t, testEval(t, `json_stringify([1, 2]).unwrap()`), "[1,2]")
	testBooleanObject(t, testEval(t, `json_parse("{oops").is_err()`), true)
	testIntegerObject(t, testEval(t, `
let data = json_parse("{\"count\": 3}").unwrap()
data["count"]
`), 3)
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		input string
		code  string
	}{
		{"1 / 0", "OP-0002"},
		{"5 % 0", "OP-0003"},
		{"missing_name", "UNDEF-0001"},
		{"5(1)", "OP-0005"},
		{`"a" - "b"`, "OP-0001"},
		{"for x in 5 { x }", "TYPE-0005"},
		{"[1].no_such_method()", "TYPE-0004"},
		{`
struct P { x: Int }
P { x: 1 }.y
`, "UNDEF-0002"},
	}
	for _, tt := range tests {
		testErrorCode(t, testEval(t, tt.input), tt.code)
	}
}

func TestErrorsCarryPosition(t *testing.T) {
	obj := testEval(t, "\n\nmissing_name")
	failed, ok := obj.(*Error)
	if !ok {
		t.Fatalf("expected Error, got %T", obj)
	}
	if failed.Err.Line != 3 {
		t.Errorf("expected line 3, got %d", failed.Err.Line)
	}
}

func TestCompoundAssignOperators(t *testing.T) {
	testIntegerObject(t, testEval(t, `
let mut x = 10
x -= 3
x *= 2
x
`), 14)

	testIntegerObject(t, testEval(t, `
let mut xs = [1, 2, 3]
xs[1] += 10
xs[1]
`), 12)
}

func TestDataFrames(t *testing.T) {
	testIntegerObject(t, testEval(t, `
let d = df![age => [20, 30, 40], name => ["a", "b", "c"]]
d.rows()
`), 3)

	testFloatObject(t, testEval(t, `
let d = df![age => [20, 30, 40]]
d.col("age").mean()
`), 30.0)

	testInspect(t, testEval(t, `
let d = df![x => [3, 1, 2]]
d.sort("x").col("x").to_list()
`), "[1, 2, 3]")

	testIntegerObject(t, testEval(t, `
let d = df![x => [1, 2, 3, 4]]
d.filter(|row| row["x"] > 2).rows()
`), 2)

	testIntegerObject(t, testEval(t, `
let d = df_from_csv("x,y\n1,a\n2,b")
d.col("x").sum()
`), 3)
}

func TestExtensionBlocks(t *testing.T) {
	testIntegerObject(t, testEval(t, `
extend Int {
    fun doubled(&self) -> Int { self * 2 }
}
21.doubled()
`), 42)
}
