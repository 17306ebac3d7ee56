// Package types defines the monotypes, type schemes, and unifier used by
// Hindley-Milner inference. Function types are curried: fn(A, B) -> C is
// represented as A -> (B -> C).
package types

import (
	"sort"
	"strconv"
	"strings"
)

// Type is a monotype.
type Type interface {
	String() string
	// freeVars collects free type variable IDs into the set.
	freeVars(set map[int]bool)
	// apply substitutes type variables, returning a possibly new type.
	apply(s Subst) Type
}

// TVar is a type variable.
type TVar struct {
	ID int
}

func (t *TVar) String() string { return "t" + strconv.Itoa(t.ID) }
func (t *TVar) freeVars(set map[int]bool) {
	set[t.ID] = true
}
func (t *TVar) apply(s Subst) Type {
	if replacement, ok := s[t.ID]; ok {
		return replacement.apply(s)
	}
	return t
}

// TCon is a type constant: Int, Float, String, Bool, Char, Byte, Unit, Any.
type TCon struct {
	Name string
}

func (t *TCon) String() string        { return t.Name }
func (t *TCon) freeVars(map[int]bool) {}
func (t *TCon) apply(Subst) Type      { return t }

// The primitive constants. Atom literals type as String; null as Unit.
var (
	Int   = &TCon{Name: "Int"}
	Float = &TCon{Name: "Float"}
	Str   = &TCon{Name: "String"}
	Bool  = &TCon{Name: "Bool"}
	Char  = &TCon{Name: "Char"}
	Byte  = &TCon{Name: "Byte"}
	Unit  = &TCon{Name: "Unit"}
	Any   = &TCon{Name: "Any"}
)

// TApp is an applied type constructor: List<T>, Option<T>, Result<T, E>,
// HashMap<K, V>, Reference<T>, and user enums.
type TApp struct {
	Name string
	Args []Type
}

func (t *TApp) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return t.Name + "<" + strings.Join(parts, ", ") + ">"
}
func (t *TApp) freeVars(set map[int]bool) {
	for _, a := range t.Args {
		a.freeVars(set)
	}
}
func (t *TApp) apply(s Subst) Type {
	args := make([]Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.apply(s)
	}
	return &TApp{Name: t.Name, Args: args}
}

// List builds List<elem>.
func List(elem Type) *TApp { return &TApp{Name: "List", Args: []Type{elem}} }

// Option builds Option<inner>.
func Option(inner Type) *TApp { return &TApp{Name: "Option", Args: []Type{inner}} }

// Result builds Result<ok, err>.
func Result(ok, err Type) *TApp { return &TApp{Name: "Result", Args: []Type{ok, err}} }

// HashMap builds HashMap<key, value>.
func HashMap(key, value Type) *TApp { return &TApp{Name: "HashMap", Args: []Type{key, value}} }

// Reference builds Reference<inner>, the type of &x and &mut x.
func Reference(inner Type) *TApp { return &TApp{Name: "Reference", Args: []Type{inner}} }

// TFunc is one arrow of a curried function type.
type TFunc struct {
	Arg Type
	Ret Type
}

func (t *TFunc) String() string {
	arg := t.Arg.String()
	if _, ok := t.Arg.(*TFunc); ok {
		arg = "(" + arg + ")"
	}
	return arg + " -> " + t.Ret.String()
}
func (t *TFunc) freeVars(set map[int]bool) {
	t.Arg.freeVars(set)
	t.Ret.freeVars(set)
}
func (t *TFunc) apply(s Subst) Type {
	return &TFunc{Arg: t.Arg.apply(s), Ret: t.Ret.apply(s)}
}

// Func builds a curried function type from a parameter list and a result.
// A nullary function becomes Unit -> ret.
func Func(params []Type, ret Type) Type {
	if len(params) == 0 {
		return &TFunc{Arg: Unit, Ret: ret}
	}
	result := ret
	for i := len(params) - 1; i >= 0; i-- {
		result = &TFunc{Arg: params[i], Ret: result}
	}
	return result
}

// Uncurry splits a curried function type into its parameters and result.
func Uncurry(t Type) ([]Type, Type) {
	var params []Type
	for {
		f, ok := t.(*TFunc)
		if !ok {
			return params, t
		}
		params = append(params, f.Arg)
		t = f.Ret
	}
}

// Arity counts the arrows in a curried function chain.
func Arity(t Type) int {
	n := 0
	for {
		f, ok := t.(*TFunc)
		if !ok {
			return n
		}
		n++
		t = f.Ret
	}
}

// TTuple is a fixed-arity tuple type.
type TTuple struct {
	Elems []Type
}

func (t *TTuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t *TTuple) freeVars(set map[int]bool) {
	for _, e := range t.Elems {
		e.freeVars(set)
	}
}
func (t *TTuple) apply(s Subst) Type {
	elems := make([]Type, len(t.Elems))
	for i, e := range t.Elems {
		elems[i] = e.apply(s)
	}
	return &TTuple{Elems: elems}
}

// TRecord is a named struct type with a field map.
type TRecord struct {
	Name   string
	Fields map[string]Type
}

func (t *TRecord) String() string {
	if t.Name != "" {
		return t.Name
	}
	names := make([]string, 0, len(t.Fields))
	for name := range t.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + t.Fields[name].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (t *TRecord) freeVars(set map[int]bool) {
	for _, f := range t.Fields {
		f.freeVars(set)
	}
}
func (t *TRecord) apply(s Subst) Type {
	fields := make(map[string]Type, len(t.Fields))
	for name, f := range t.Fields {
		fields[name] = f.apply(s)
	}
	return &TRecord{Name: t.Name, Fields: fields}
}

// TDataFrame is a DataFrame with an optional column type map. A nil map
// means the columns are not statically known.
type TDataFrame struct {
	Columns map[string]Type
}

func (t *TDataFrame) String() string {
	if len(t.Columns) == 0 {
		return "DataFrame"
	}
	names := make([]string, 0, len(t.Columns))
	for name := range t.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + t.Columns[name].String()
	}
	return "DataFrame<" + strings.Join(parts, ", ") + ">"
}
func (t *TDataFrame) freeVars(set map[int]bool) {
	for _, c := range t.Columns {
		c.freeVars(set)
	}
}
func (t *TDataFrame) apply(s Subst) Type {
	if t.Columns == nil {
		return t
	}
	cols := make(map[string]Type, len(t.Columns))
	for name, c := range t.Columns {
		cols[name] = c.apply(s)
	}
	return &TDataFrame{Columns: cols}
}

// TSeries is a typed DataFrame column.
type TSeries struct {
	Elem Type
}

func (t *TSeries) String() string            { return "Series<" + t.Elem.String() + ">" }
func (t *TSeries) freeVars(set map[int]bool) { t.Elem.freeVars(set) }
func (t *TSeries) apply(s Subst) Type        { return &TSeries{Elem: t.Elem.apply(s)} }

// Subst maps type variable IDs to types.
type Subst map[int]Type

// Apply substitutes through a type.
func (s Subst) Apply(t Type) Type {
	if len(s) == 0 {
		return t
	}
	return t.apply(s)
}

// Compose produces s2 after s: applying the result equals applying s then s2.
func (s Subst) Compose(s2 Subst) Subst {
	out := make(Subst, len(s)+len(s2))
	for id, t := range s {
		out[id] = s2.Apply(t)
	}
	for id, t := range s2 {
		if _, ok := out[id]; !ok {
			out[id] = t
		}
	}
	return out
}

// FreeVars returns the free type variable IDs of t.
func FreeVars(t Type) map[int]bool {
	set := make(map[int]bool)
	t.freeVars(set)
	return set
}

// TyVarGenerator hands out fresh type variables.
type TyVarGenerator struct {
	next int
}

// Fresh returns a new, unused type variable.
func (g *TyVarGenerator) Fresh() *TVar {
	g.next++
	return &TVar{ID: g.next}
}

// TypeScheme is a polytype: forall vars. body.
type TypeScheme struct {
	Vars []int
	Body Type
}

// Mono wraps a monotype in a scheme with no quantified variables.
func Mono(t Type) *TypeScheme { return &TypeScheme{Body: t} }

// Instantiate replaces quantified variables with fresh ones.
func (s *TypeScheme) Instantiate(gen *TyVarGenerator) Type {
	if len(s.Vars) == 0 {
		return s.Body
	}
	sub := make(Subst, len(s.Vars))
	for _, id := range s.Vars {
		sub[id] = gen.Fresh()
	}
	return sub.Apply(s.Body)
}

func (s *TypeScheme) String() string {
	if len(s.Vars) == 0 {
		return s.Body.String()
	}
	parts := make([]string, len(s.Vars))
	for i, id := range s.Vars {
		parts[i] = "t" + strconv.Itoa(id)
	}
	return "forall " + strings.Join(parts, " ") + ". " + s.Body.String()
}
