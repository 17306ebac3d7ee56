package evaluator

import (
	"math"
	"sort"

	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
)

// floatEpsilon is the tolerance for float literal patterns.
const floatEpsilon = 1e-9

type binding struct {
	name  string
	value Object
}

// tryPatternMatch tests a pattern against a value and collects bindings.
// It never evaluates user code and never mutates anything, so failed arms
// leave no trace.
func tryPatternMatch(pattern ast.Pattern, value Object) ([]binding, bool) {
	switch p := pattern.(type) {
	case *ast.WildcardPattern:
		return nil, true

	case *ast.IdentifierPattern:
		if p.Name == "_" {
			return nil, true
		}
		return []binding{{p.Name, value}}, true

	case *ast.MutPattern:
		return tryPatternMatch(p.Inner, value)

	case *ast.LiteralPattern:
		lit, ok := literalValue(p.Value)
		if !ok {
			return nil, false
		}
		return nil, objectsEqual(lit, value)

	case *ast.RangePattern:
		return nil, matchRange(p, value)

	case *ast.TuplePattern:
		tup, ok := value.(*Tuple)
		if !ok || len(tup.Elements) != len(p.Elements) {
			return nil, false
		}
		return matchAll(p.Elements, tup.Elements)

	case *ast.ListPattern:
		return matchList(p, value)

	case *ast.OkPattern:
		if ev, ok := value.(*EnumVariant); ok && ev.Enum == "Result" && ev.Variant == "Ok" {
			return tryPatternMatch(p.Inner, variantPayload(ev))
		}
		return nil, false

	case *ast.ErrPattern:
		if ev, ok := value.(*EnumVariant); ok && ev.Enum == "Result" && ev.Variant == "Err" {
			return tryPatternMatch(p.Inner, variantPayload(ev))
		}
		return nil, false

	case *ast.SomePattern:
		if ev, ok := value.(*EnumVariant); ok && ev.Enum == "Option" && ev.Variant == "Some" {
			return tryPatternMatch(p.Inner, variantPayload(ev))
		}
		return nil, false

	case *ast.NonePattern:
		if ev, ok := value.(*EnumVariant); ok && ev.Enum == "Option" && ev.Variant == "None" {
			return nil, true
		}
		return nil, value == NULL

	case *ast.QualifiedNamePattern:
		return nil, matchVariantPath(p.Parts, value, 0)

	case *ast.TupleVariantPattern:
		ev, ok := value.(*EnumVariant)
		if !ok || !matchVariantPath(p.Path, value, len(p.Patterns)) {
			return nil, false
		}
		if len(ev.Values) != len(p.Patterns) {
			return nil, false
		}
		return matchAll(p.Patterns, ev.Values)

	case *ast.StructPattern:
		return matchStruct(p, value)

	case *ast.OrPattern:
		for _, alt := range p.Alternatives {
			if bindings, ok := tryPatternMatch(alt, value); ok {
				return bindings, true
			}
		}
		return nil, false

	case *ast.AtBindingPattern:
		bindings, ok := tryPatternMatch(p.Pattern, value)
		if !ok {
			return nil, false
		}
		return append(bindings, binding{p.Name, value}), true

	case *ast.WithDefaultPattern:
		if value == NULL {
			if def, ok := literalValue(p.Default); ok {
				return tryPatternMatch(p.Pattern, def)
			}
		}
		return tryPatternMatch(p.Pattern, value)

	case *ast.RestPattern:
		return nil, true

	case *ast.RestNamedPattern:
		return []binding{{p.Name, value}}, true
	}
	return nil, false
}

func matchAll(patterns []ast.Pattern, values []Object) ([]binding, bool) {
	var bindings []binding
	for i, pat := range patterns {
		bs, ok := tryPatternMatch(pat, values[i])
		if !ok {
			return nil, false
		}
		bindings = append(bindings, bs...)
	}
	return bindings, true
}

// matchList handles fixed lists and a single rest pattern anywhere in the
// element list: [a, ..rest], [first, .., last].
func matchList(p *ast.ListPattern, value Object) ([]binding, bool) {
	arr, ok := value.(*Array)
	if !ok {
		return nil, false
	}

	restIdx := -1
	for i, elem := range p.Elements {
		switch elem.(type) {
		case *ast.RestPattern, *ast.RestNamedPattern:
			restIdx = i
		}
	}

	if restIdx == -1 {
		if len(arr.Elements) != len(p.Elements) {
			return nil, false
		}
		return matchAll(p.Elements, arr.Elements)
	}

	before := p.Elements[:restIdx]
	after := p.Elements[restIdx+1:]
	if len(arr.Elements) < len(before)+len(after) {
		return nil, false
	}

	var bindings []binding
	bs, ok := matchAll(before, arr.Elements[:len(before)])
	if !ok {
		return nil, false
	}
	bindings = append(bindings, bs...)

	rest := arr.Elements[len(before) : len(arr.Elements)-len(after)]
	if named, ok := p.Elements[restIdx].(*ast.RestNamedPattern); ok {
		captured := make([]Object, len(rest))
		copy(captured, rest)
		bindings = append(bindings, binding{named.Name, &Array{Elements: captured}})
	}

	bs, ok = matchAll(after, arr.Elements[len(arr.Elements)-len(after):])
	if !ok {
		return nil, false
	}
	return append(bindings, bs...), true
}

func matchStruct(p *ast.StructPattern, value Object) ([]binding, bool) {
	rec, ok := value.(*Record)
	if !ok {
		return nil, false
	}
	if p.Name != "" && rec.Name != "" && p.Name != rec.Name {
		return nil, false
	}

	var bindings []binding
	for _, field := range p.Fields {
		fieldValue, present := rec.Fields[field.Name]
		if !present {
			return nil, false
		}
		if field.Pattern == nil {
			bindings = append(bindings, binding{field.Name, fieldValue})
			continue
		}
		bs, ok := tryPatternMatch(field.Pattern, fieldValue)
		if !ok {
			return nil, false
		}
		bindings = append(bindings, bs...)
	}
	if !p.HasRest && len(p.Fields) < len(rec.Fields) {
		return nil, false
	}
	return bindings, true
}

// matchVariantPath matches Color::Red style paths. A one-part path matches
// by variant name alone; a two-part path also checks the enum name. arity
// is the expected payload length (0 for unit-variant paths).
func matchVariantPath(path []string, value Object, arity int) bool {
	ev, ok := value.(*EnumVariant)
	if !ok {
		return false
	}
	switch len(path) {
	case 1:
		return ev.Variant == path[0] && len(ev.Values) == arity
	case 2:
		return ev.Enum == path[0] && ev.Variant == path[1]
	}
	return false
}

// variantPayload unwraps a single-value variant; multi-value payloads
// surface as a tuple.
func variantPayload(ev *EnumVariant) Object {
	switch len(ev.Values) {
	case 0:
		return NULL
	case 1:
		return ev.Values[0]
	}
	return &Tuple{Elements: ev.Values}
}

func matchRange(p *ast.RangePattern, value Object) bool {
	num, ok := value.(*Integer)
	if !ok {
		return false
	}
	start, ok1 := literalInt(p.Start)
	end, ok2 := literalInt(p.End)
	if !ok1 || !ok2 {
		return false
	}
	if p.Inclusive {
		return num.Value >= start && num.Value <= end
	}
	return num.Value >= start && num.Value < end
}

// literalValue evaluates the literal expressions a pattern may carry.
// Patterns never run arbitrary code, so anything else fails the match.
func literalValue(expr ast.Expression) (Object, bool) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return &Integer{Value: e.Value}, true
	case *ast.FloatLiteral:
		return &Float{Value: e.Value}, true
	case *ast.StringLiteral:
		return &String{Value: e.Value}, true
	case *ast.BooleanLiteral:
		return nativeBool(e.Value), true
	case *ast.CharLiteral:
		return &Char{Value: e.Value}, true
	case *ast.ByteLiteral:
		return &Byte{Value: e.Value}, true
	case *ast.AtomLiteral:
		return &Atom{Value: e.Value}, true
	case *ast.NullLiteral:
		return NULL, true
	case *ast.PrefixExpression:
		if e.Operator != "-" {
			return nil, false
		}
		inner, ok := literalValue(e.Right)
		if !ok {
			return nil, false
		}
		switch n := inner.(type) {
		case *Integer:
			return &Integer{Value: -n.Value}, true
		case *Float:
			return &Float{Value: -n.Value}, true
		}
	}
	return nil, false
}

func literalInt(expr ast.Expression) (int64, bool) {
	value, ok := literalValue(expr)
	if !ok {
		return 0, false
	}
	num, ok := value.(*Integer)
	if !ok {
		return 0, false
	}
	return num.Value, true
}

// objectsEqual is structural equality. Floats compare within epsilon.
func objectsEqual(a, b Object) bool {
	switch x := a.(type) {
	case *Integer:
		if y, ok := b.(*Integer); ok {
			return x.Value == y.Value
		}
		if y, ok := b.(*Float); ok {
			return math.Abs(float64(x.Value)-y.Value) < floatEpsilon
		}
	case *Float:
		if y, ok := b.(*Float); ok {
			return math.Abs(x.Value-y.Value) < floatEpsilon
		}
		if y, ok := b.(*Integer); ok {
			return math.Abs(x.Value-float64(y.Value)) < floatEpsilon
		}
	case *String:
		if y, ok := b.(*String); ok {
			return x.Value == y.Value
		}
	case *Boolean:
		if y, ok := b.(*Boolean); ok {
			return x.Value == y.Value
		}
	case *Char:
		if y, ok := b.(*Char); ok {
			return x.Value == y.Value
		}
	case *Byte:
		if y, ok := b.(*Byte); ok {
			return x.Value == y.Value
		}
	case *Atom:
		if y, ok := b.(*Atom); ok {
			return x.Value == y.Value
		}
	case *Null:
		_, ok := b.(*Null)
		return ok
	case *Array:
		y, ok := b.(*Array)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !objectsEqual(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	case *Tuple:
		y, ok := b.(*Tuple)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !objectsEqual(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	case *Range:
		if y, ok := b.(*Range); ok {
			return x.Start == y.Start && x.End == y.End && x.Inclusive == y.Inclusive
		}
	case *Record:
		y, ok := b.(*Record)
		if !ok || x.Name != y.Name || len(x.Fields) != len(y.Fields) {
			return false
		}
		for k, v := range x.Fields {
			w, present := y.Fields[k]
			if !present || !objectsEqual(v, w) {
				return false
			}
		}
		return true
	case *EnumVariant:
		y, ok := b.(*EnumVariant)
		if !ok || x.Enum != y.Enum || x.Variant != y.Variant || len(x.Values) != len(y.Values) {
			return false
		}
		for i := range x.Values {
			if !objectsEqual(x.Values[i], y.Values[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// iterableElements materializes the element sequence of a value for loops,
// spreads, and comprehensions. HashMaps iterate keys in sorted order so
// iteration is deterministic.
func iterableElements(value Object) ([]Object, Object) {
	switch v := value.(type) {
	case *Array:
		return v.Elements, nil
	case *Tuple:
		return v.Elements, nil
	case *Range:
		elems := make([]Object, 0, v.Length())
		if v.Inclusive {
			for i := v.Start; i <= v.End; i++ {
				elems = append(elems, &Integer{Value: i})
			}
		} else {
			for i := v.Start; i < v.End; i++ {
				elems = append(elems, &Integer{Value: i})
			}
		}
		return elems, nil
	case *String:
		runes := []rune(v.Value)
		elems := make([]Object, len(runes))
		for i, r := range runes {
			elems[i] = &Char{Value: r}
		}
		return elems, nil
	case *Record:
		keys := make([]string, 0, len(v.Fields))
		for k := range v.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		elems := make([]Object, len(keys))
		for i, k := range keys {
			elems[i] = &String{Value: k}
		}
		return elems, nil
	case *EnumVariant:
		if v.Enum == "Option" {
			if v.Variant == "Some" {
				return []Object{variantPayload(v)}, nil
			}
			return nil, nil
		}
	case *Series:
		return v.Values, nil
	case *DataFrame:
		rows := v.Rows()
		elems := make([]Object, 0, rows)
		for i := 0; i < rows; i++ {
			row := &Record{Fields: make(map[string]Object, len(v.Columns))}
			for _, c := range v.Columns {
				if i < len(c.Values) {
					row.Set(c.Name, c.Values[i])
				} else {
					row.Set(c.Name, NULL)
				}
			}
			elems = append(elems, row)
		}
		return elems, nil
	}
	return nil, newError("TYPE-0005", map[string]any{"Type": string(value.Type())})
}

// normalizeIndex maps negative indexes from the end.
func normalizeIndex(idx int64, length int) int64 {
	if idx < 0 {
		return int64(length) + idx
	}
	return idx
}
