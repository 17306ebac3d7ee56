// Package evaluator implements the tree-walking interpreter: the runtime
// value model, lexical environments, operator semantics, pattern matching,
// actors, and the builtin library.
package evaluator

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
	rerrors "github.com/ruchy-lang/ruchy/pkg/ruchy/errors"
)

// ObjectType discriminates runtime values.
type ObjectType string

const (
	INTEGER_OBJ      = "INTEGER"
	FLOAT_OBJ        = "FLOAT"
	BOOLEAN_OBJ      = "BOOLEAN"
	STRING_OBJ       = "STRING"
	CHAR_OBJ         = "CHAR"
	BYTE_OBJ         = "BYTE"
	NULL_OBJ         = "NULL"
	ATOM_OBJ         = "ATOM"
	ARRAY_OBJ        = "ARRAY"
	TUPLE_OBJ        = "TUPLE"
	RANGE_OBJ        = "RANGE"
	RECORD_OBJ       = "RECORD"
	ACTOR_OBJ        = "ACTOR"
	FUNCTION_OBJ     = "FUNCTION"
	BUILTIN_OBJ      = "BUILTIN"
	CONSTRUCTOR_OBJ  = "CONSTRUCTOR"
	ENUM_VARIANT_OBJ = "ENUM_VARIANT"
	DATAFRAME_OBJ    = "DATAFRAME"
	SERIES_OBJ       = "SERIES"
	MODULE_OBJ       = "MODULE"
	RETURN_OBJ       = "RETURN_VALUE"
	BREAK_OBJ        = "BREAK_VALUE"
	CONTINUE_OBJ     = "CONTINUE_VALUE"
	ERROR_OBJ        = "ERROR"
)

// Object is the interface all runtime values satisfy.
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Integer is a 64-bit signed integer. Arithmetic wraps.
type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

// Float is a 64-bit floating point number.
type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string {
	s := strconv.FormatFloat(f.Value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Boolean represents true/false. Use the TRUE/FALSE singletons.
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

// String is an immutable string value.
type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// Char is a single Unicode code point.
type Char struct {
	Value rune
}

func (c *Char) Type() ObjectType { return CHAR_OBJ }
func (c *Char) Inspect() string  { return "'" + string(c.Value) + "'" }

// Byte is an unsigned 8-bit value.
type Byte struct {
	Value byte
}

func (b *Byte) Type() ObjectType { return BYTE_OBJ }
func (b *Byte) Inspect() string  { return fmt.Sprintf("b'%c'", b.Value) }

// Null represents nil/unit. Use the NULL singleton.
type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "null" }

// Atom is an interned symbolic constant like :ok.
type Atom struct {
	Value string
}

func (a *Atom) Type() ObjectType { return ATOM_OBJ }
func (a *Atom) Inspect() string  { return ":" + a.Value }

// Array is a mutable ordered collection.
type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = inspectQuoted(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Tuple is a fixed-arity heterogeneous collection.
type Tuple struct {
	Elements []Object
}

func (t *Tuple) Type() ObjectType { return TUPLE_OBJ }
func (t *Tuple) Inspect() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = inspectQuoted(e)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Range is a lazy integer interval. Iteration materializes it.
type Range struct {
	Start     int64
	End       int64
	Inclusive bool
}

func (r *Range) Type() ObjectType { return RANGE_OBJ }
func (r *Range) Inspect() string {
	op := ".."
	if r.Inclusive {
		op = "..="
	}
	return strconv.FormatInt(r.Start, 10) + op + strconv.FormatInt(r.End, 10)
}

// Length returns the number of elements the range yields.
func (r *Range) Length() int64 {
	n := r.End - r.Start
	if r.Inclusive {
		n++
	}
	if n < 0 {
		return 0
	}
	return n
}

// Record is a struct instance or anonymous object: a named field map.
// Object literals have an empty Name.
type Record struct {
	Name   string
	Fields map[string]Object
	Order  []string // field insertion order for stable printing
}

func (r *Record) Type() ObjectType { return RECORD_OBJ }
func (r *Record) Inspect() string {
	var out bytes.Buffer
	if r.Name != "" {
		out.WriteString(r.Name + " ")
	}
	out.WriteString("{ ")
	for i, name := range r.Order {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(name + ": " + inspectQuoted(r.Fields[name]))
	}
	out.WriteString(" }")
	return out.String()
}

// Set writes a field, tracking insertion order for new names.
func (r *Record) Set(name string, value Object) {
	if _, ok := r.Fields[name]; !ok {
		r.Order = append(r.Order, name)
	}
	r.Fields[name] = value
}

// Actor is a spawned actor instance: mutable state plus a handler table.
// Handlers run synchronously, one message at a time.
type Actor struct {
	Name     string
	Fields   map[string]Object
	Handlers map[string]*ast.ActorHandler
	Env      *Environment // scope the actor was defined in
}

func (a *Actor) Type() ObjectType { return ACTOR_OBJ }
func (a *Actor) Inspect() string  { return "<actor " + a.Name + ">" }

// Function is a user-defined closure.
type Function struct {
	Name    string
	Params  []*ast.Parameter
	Body    ast.Expression
	Env     *Environment
	IsAsync bool
	Self    Object // bound receiver for methods, nil otherwise
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	if f.Name != "" {
		return "<fun " + f.Name + ">"
	}
	return "<fun>"
}

// BuiltinFunction is the Go signature of a builtin.
type BuiltinFunction func(in *Interp, args ...Object) Object

// Builtin wraps a native function.
type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "<builtin " + b.Name + ">" }

// Constructor builds struct or actor instances when called. It is what a
// qualified name like Point::new resolves to.
type Constructor struct {
	StructDef *ast.StructDefinition
	ActorDef  *ast.ActorDefinition
}

func (c *Constructor) Type() ObjectType { return CONSTRUCTOR_OBJ }
func (c *Constructor) Inspect() string {
	if c.ActorDef != nil {
		return "<actor constructor " + c.ActorDef.Name + ">"
	}
	return "<constructor " + c.StructDef.Name + ">"
}

// EnumVariant is an instantiated enum case, possibly with a payload.
// Ok/Err/Some/None are represented as variants of the built-in Result and
// Option enums.
type EnumVariant struct {
	Enum         string
	Variant      string
	Values       []Object
	Discriminant int64
}

func (ev *EnumVariant) Type() ObjectType { return ENUM_VARIANT_OBJ }
func (ev *EnumVariant) Inspect() string {
	name := ev.Variant
	if ev.Enum != "" && ev.Enum != "Result" && ev.Enum != "Option" {
		name = ev.Enum + "::" + ev.Variant
	}
	if len(ev.Values) == 0 {
		return name
	}
	parts := make([]string, len(ev.Values))
	for i, v := range ev.Values {
		parts[i] = inspectQuoted(v)
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

// DataFrameColumn is one named column of a DataFrame.
type DataFrameColumn struct {
	Name   string
	Values []Object
}

// DataFrame is a columnar table.
type DataFrame struct {
	Columns []*DataFrameColumn
}

func (df *DataFrame) Type() ObjectType { return DATAFRAME_OBJ }
func (df *DataFrame) Inspect() string {
	parts := make([]string, len(df.Columns))
	for i, c := range df.Columns {
		vals := make([]string, len(c.Values))
		for j, v := range c.Values {
			vals[j] = inspectQuoted(v)
		}
		parts[i] = c.Name + ": [" + strings.Join(vals, ", ") + "]"
	}
	return "DataFrame { " + strings.Join(parts, ", ") + " }"
}

// Rows returns the row count (length of the longest column).
func (df *DataFrame) Rows() int {
	rows := 0
	for _, c := range df.Columns {
		if len(c.Values) > rows {
			rows = len(c.Values)
		}
	}
	return rows
}

// Column finds a column by name.
func (df *DataFrame) Column(name string) *DataFrameColumn {
	for _, c := range df.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Series is a single typed column, produced by col() and aggregations.
type Series struct {
	Name   string
	Values []Object
}

func (s *Series) Type() ObjectType { return SERIES_OBJ }
func (s *Series) Inspect() string {
	vals := make([]string, len(s.Values))
	for i, v := range s.Values {
		vals[i] = inspectQuoted(v)
	}
	return "Series(" + s.Name + ": [" + strings.Join(vals, ", ") + "])"
}

// Module is a loaded module's exported bindings.
type Module struct {
	Name     string
	Bindings map[string]Object
}

func (m *Module) Type() ObjectType { return MODULE_OBJ }
func (m *Module) Inspect() string  { return "<module " + m.Name + ">" }

// ReturnValue carries a return through nested evaluation until the
// enclosing call catches it.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// BreakValue unwinds loops; the value becomes the loop's value.
type BreakValue struct {
	Label string
	Value Object
}

func (bv *BreakValue) Type() ObjectType { return BREAK_OBJ }
func (bv *BreakValue) Inspect() string  { return "break" }

// ContinueValue unwinds to the next loop iteration.
type ContinueValue struct {
	Label string
}

func (cv *ContinueValue) Type() ObjectType { return CONTINUE_OBJ }
func (cv *ContinueValue) Inspect() string  { return "continue" }

// Error is a runtime error unwinding to the nearest try/catch. Thrown
// values keep their payload for catch binding.
type Error struct {
	Err     *rerrors.RuchyError
	Payload Object // non-nil for throw expressions
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string {
	if e.Payload != nil {
		return "error: " + e.Payload.Inspect()
	}
	return "error: " + e.Err.Message
}

// Singletons shared by all evaluations.
var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func nativeBool(v bool) *Boolean {
	if v {
		return TRUE
	}
	return FALSE
}

// inspectQuoted renders a value for container display: strings quoted,
// everything else as Inspect.
func inspectQuoted(obj Object) string {
	if obj == nil {
		return "null"
	}
	if s, ok := obj.(*String); ok {
		return strconv.Quote(s.Value)
	}
	return obj.Inspect()
}

// isError reports whether obj is an error carrier.
func isError(obj Object) bool {
	if obj == nil {
		return false
	}
	return obj.Type() == ERROR_OBJ
}

// isControl reports whether obj unwinds control flow (error, return,
// break, continue).
func isControl(obj Object) bool {
	if obj == nil {
		return false
	}
	switch obj.Type() {
	case ERROR_OBJ, RETURN_OBJ, BREAK_OBJ, CONTINUE_OBJ:
		return true
	}
	return false
}

// newError builds a structured runtime error from a catalog code.
func newError(code string, data map[string]any) *Error {
	return &Error{Err: rerrors.New(code, data)}
}

func newErrorAt(code string, line, column int, data map[string]any) *Error {
	return &Error{Err: rerrors.NewWithPosition(code, line, column, data)}
}

// truthy implements the language's truthiness: false and null are falsy,
// everything else (including 0 and "") is truthy.
func truthy(obj Object) bool {
	switch obj {
	case NULL:
		return false
	case TRUE:
		return true
	case FALSE:
		return false
	}
	switch o := obj.(type) {
	case *Boolean:
		return o.Value
	case *Null:
		return false
	}
	return true
}
