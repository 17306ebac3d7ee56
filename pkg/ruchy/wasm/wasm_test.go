package wasm

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/ruchy-lang/ruchy/pkg/ruchy/lexer"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/parser"
)

func compileSource(t *testing.T, input string) []byte {
	t.Helper()
	p := parser.New(lexer.New(input))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	bin, err := NewEmitter().Emit(program)
	if err != nil {
		t.Fatalf("emit error: %v", err)
	}
	return bin
}

// newRuntime instantiates the compiled module under a host that collects
// print output into out.
func newRuntime(t *testing.T, bin []byte, out *strings.Builder) (api.Module, func()) {
	t.Helper()
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)

	var staged strings.Builder
	_, err := r.NewHostModuleBuilder("env").
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, m api.Module, addr uint32) {
			lenBytes, ok := m.Memory().Read(addr, 4)
			if !ok {
				t.Fatalf("print_str: bad length read at %d", addr)
			}
			n := binary.LittleEndian.Uint32(lenBytes)
			data, ok := m.Memory().Read(addr+4, n)
			if !ok {
				t.Fatalf("print_str: bad data read at %d", addr+4)
			}
			staged.Write(data)
		}).
		Export("print_str").
		NewFunctionBuilder().
		WithFunc(func(v int32) {
			staged.WriteString(strconv.FormatInt(int64(v), 10))
		}).
		Export("print_int").
		NewFunctionBuilder().
		WithFunc(func(f float64) {
			staged.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		}).
		Export("print_float").
		NewFunctionBuilder().
		WithFunc(func() {
			out.WriteString(staged.String())
			out.WriteByte('\n')
			staged.Reset()
		}).
		Export("println").
		Instantiate(ctx)
	if err != nil {
		t.Fatalf("host module: %v", err)
	}

	mod, err := r.Instantiate(ctx, bin)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	return mod, func() { r.Close(ctx) }
}

func TestModuleHeader(t *testing.T) {
	bin := compileSource(t, `fun add(x: Int, y: Int) -> Int { x + y }`)
	want := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	if !bytes.HasPrefix(bin, want) {
		t.Fatalf("missing wasm header, got % x", bin[:8])
	}
}

func TestIntegerAddUsesI32Add(t *testing.T) {
	bin := compileSource(t, `fun add(x: Int, y: Int) -> Int { x + y }`)
	if !bytes.Contains(bin, []byte{opLocalGet, 0x00, opLocalGet, 0x01, opI32Add}) {
		t.Fatal("expected local.get/local.get/i32.add sequence in the body")
	}
}

func TestInvokeAdd(t *testing.T) {
	bin := compileSource(t, `fun add(x: Int, y: Int) -> Int { x + y }`)
	var out strings.Builder
	mod, closeFn := newRuntime(t, bin, &out)
	defer closeFn()

	res, err := mod.ExportedFunction("add").Call(context.Background(), 2, 3)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got := api.DecodeI32(res[0]); got != 5 {
		t.Fatalf("add(2, 3) = %d, want 5", got)
	}
}

func TestInvokeFloatFunction(t *testing.T) {
	bin := compileSource(t, `
fun hyp(a: Float, b: Float) -> Float {
    (a * a + b * b).sqrt()
}`)
	var out strings.Builder
	mod, closeFn := newRuntime(t, bin, &out)
	defer closeFn()

	res, err := mod.ExportedFunction("hyp").Call(context.Background(),
		api.EncodeF64(3.0), api.EncodeF64(4.0))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got := api.DecodeF64(res[0]); math.Abs(got-5.0) > 1e-12 {
		t.Fatalf("hyp(3, 4) = %v, want 5", got)
	}
}

func TestInvokeLoop(t *testing.T) {
	bin := compileSource(t, `
fun fib(n: Int) -> Int {
    let mut a = 0
    let mut b = 1
    let mut i = 0
    while i < n {
        let t = a + b
        a = b
        b = t
        i += 1
    }
    a
}`)
	var out strings.Builder
	mod, closeFn := newRuntime(t, bin, &out)
	defer closeFn()

	fib := mod.ExportedFunction("fib")
	for _, tt := range []struct{ n, want int32 }{
		{0, 0}, {1, 1}, {2, 1}, {10, 55}, {20, 6765},
	} {
		res, err := fib.Call(context.Background(), api.EncodeI32(tt.n))
		if err != nil {
			t.Fatalf("fib(%d): %v", tt.n, err)
		}
		if got := api.DecodeI32(res[0]); got != tt.want {
			t.Errorf("fib(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestInvokeForRange(t *testing.T) {
	bin := compileSource(t, `
fun sum_to(n: Int) -> Int {
    let mut total = 0
    for i in 1..=n {
        total += i
    }
    total
}`)
	var out strings.Builder
	mod, closeFn := newRuntime(t, bin, &out)
	defer closeFn()

	res, err := mod.ExportedFunction("sum_to").Call(context.Background(), 100)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got := api.DecodeI32(res[0]); got != 5050 {
		t.Fatalf("sum_to(100) = %d, want 5050", got)
	}
}

func TestInvokeMatch(t *testing.T) {
	bin := compileSource(t, `
fun grade(score: Int) -> Int {
    match score {
        90..=100 => 4,
        80..90 => 3,
        70..80 => 2,
        _ => 0,
    }
}`)
	var out strings.Builder
	mod, closeFn := newRuntime(t, bin, &out)
	defer closeFn()

	grade := mod.ExportedFunction("grade")
	for _, tt := range []struct{ score, want int32 }{
		{95, 4}, {90, 4}, {100, 4}, {85, 3}, {70, 2}, {69, 0}, {0, 0},
	} {
		res, err := grade.Call(context.Background(), api.EncodeI32(tt.score))
		if err != nil {
			t.Fatalf("grade(%d): %v", tt.score, err)
		}
		if got := api.DecodeI32(res[0]); got != tt.want {
			t.Errorf("grade(%d) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestInvokeRecursion(t *testing.T) {
	bin := compileSource(t, `
fun fact(n: Int) -> Int {
    if n <= 1 { 1 } else { n * fact(n - 1) }
}`)
	var out strings.Builder
	mod, closeFn := newRuntime(t, bin, &out)
	defer closeFn()

	res, err := mod.ExportedFunction("fact").Call(context.Background(), 10)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got := api.DecodeI32(res[0]); got != 3628800 {
		t.Fatalf("fact(10) = %d, want 3628800", got)
	}
}

func TestInvokeTupleFields(t *testing.T) {
	bin := compileSource(t, `
fun norm2(x: Int, y: Int) -> Int {
    let p = (x, y)
    p.0 * p.0 + p.1 * p.1
}`)
	var out strings.Builder
	mod, closeFn := newRuntime(t, bin, &out)
	defer closeFn()

	res, err := mod.ExportedFunction("norm2").Call(context.Background(), 3, 4)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got := api.DecodeI32(res[0]); got != 25 {
		t.Fatalf("norm2(3, 4) = %d, want 25", got)
	}
}

func TestInvokeStructFields(t *testing.T) {
	bin := compileSource(t, `
struct Point { x: Int, y: Int }

fun manhattan(a: Int, b: Int) -> Int {
    let p = Point { x: a, y: b }
    p.x + p.y
}`)
	var out strings.Builder
	mod, closeFn := newRuntime(t, bin, &out)
	defer closeFn()

	res, err := mod.ExportedFunction("manhattan").Call(context.Background(), 7, 11)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got := api.DecodeI32(res[0]); got != 18 {
		t.Fatalf("manhattan(7, 11) = %d, want 18", got)
	}
}

func TestInvokeListIndex(t *testing.T) {
	bin := compileSource(t, `
fun third() -> Int {
    let xs = [10, 20, 30, 40]
    xs[2]
}`)
	var out strings.Builder
	mod, closeFn := newRuntime(t, bin, &out)
	defer closeFn()

	res, err := mod.ExportedFunction("third").Call(context.Background())
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got := api.DecodeI32(res[0]); got != 30 {
		t.Fatalf("third() = %d, want 30", got)
	}
}

func TestInvokeCast(t *testing.T) {
	bin := compileSource(t, `
fun halve(n: Int) -> Float {
    (n as Float) / 2.0
}`)
	var out strings.Builder
	mod, closeFn := newRuntime(t, bin, &out)
	defer closeFn()

	res, err := mod.ExportedFunction("halve").Call(context.Background(), 7)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got := api.DecodeF64(res[0]); math.Abs(got-3.5) > 1e-12 {
		t.Fatalf("halve(7) = %v, want 3.5", got)
	}
}

func TestPrintlnString(t *testing.T) {
	bin := compileSource(t, `fun main() { println!("hello") }`)
	var out strings.Builder
	mod, closeFn := newRuntime(t, bin, &out)
	defer closeFn()

	if _, err := mod.ExportedFunction("main").Call(context.Background()); err != nil {
		t.Fatalf("call: %v", err)
	}
	if out.String() != "hello\n" {
		t.Fatalf("output = %q, want %q", out.String(), "hello\n")
	}
}

func TestPrintlnInterpolation(t *testing.T) {
	bin := compileSource(t, `
fun show(x: Int) {
    println!(f"x = {x}")
}`)
	var out strings.Builder
	mod, closeFn := newRuntime(t, bin, &out)
	defer closeFn()

	if _, err := mod.ExportedFunction("show").Call(context.Background(), 7); err != nil {
		t.Fatalf("call: %v", err)
	}
	if out.String() != "x = 7\n" {
		t.Fatalf("output = %q, want %q", out.String(), "x = 7\n")
	}
}

func TestLooseExpressionsBecomeMain(t *testing.T) {
	bin := compileSource(t, `
let greeting = "hi"
println!(greeting)
`)
	var out strings.Builder
	mod, closeFn := newRuntime(t, bin, &out)
	defer closeFn()

	if mod.ExportedFunction("main") == nil {
		t.Fatal("expected a synthesized main export")
	}
	if _, err := mod.ExportedFunction("main").Call(context.Background()); err != nil {
		t.Fatalf("call: %v", err)
	}
	if out.String() != "hi\n" {
		t.Fatalf("output = %q, want %q", out.String(), "hi\n")
	}
}

func TestEmitErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"nothing to compile", `struct Empty { n: Int }`},
		{"unbounded loop", `fun spin() { loop { } }`},
		{"break with value", `fun f() -> Int { while true { break 1 } 0 }`},
		{"undefined name", `fun f() -> Int { missing + 1 }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parser.New(lexer.New(tt.input))
			program := p.ParseProgram()
			if errs := p.Errors(); len(errs) > 0 {
				t.Fatalf("parse errors: %v", errs)
			}
			if _, err := NewEmitter().Emit(program); err == nil {
				t.Fatal("expected an emit error")
			}
		})
	}
}
