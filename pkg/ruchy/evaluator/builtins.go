package evaluator

import (
	"math"
	"strconv"
	"strings"
)

// builtins is the global builtin function table. Identifier lookup falls
// back to it after the lexical environment, so user bindings shadow
// builtins.
var builtins = map[string]*Builtin{}

func registerBuiltin(name string, fn BuiltinFunction) {
	builtins[name] = &Builtin{Name: name, Fn: fn}
}

func builtinArity(name string, expected int, args []Object) Object {
	if len(args) == expected {
		return nil
	}
	return newError("ARITY-0001", map[string]any{"Expected": expected, "Got": len(args)})
}

func init() {
	registerBuiltin("println", func(in *Interp, args ...Object) Object {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = displayString(a)
		}
		in.pushStdout(strings.Join(parts, " "))
		return NULL
	})

	registerBuiltin("print", func(in *Interp, args ...Object) Object {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = displayString(a)
		}
		in.pushPartial(strings.Join(parts, " "))
		return NULL
	})

	registerBuiltin("eprintln", func(in *Interp, args ...Object) Object {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = displayString(a)
		}
		in.pushStdout(strings.Join(parts, " "))
		return NULL
	})

	registerBuiltin("len", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("len", 1, args); ctl != nil {
			return ctl
		}
		switch v := args[0].(type) {
		case *Array:
			return &Integer{Value: int64(len(v.Elements))}
		case *Tuple:
			return &Integer{Value: int64(len(v.Elements))}
		case *String:
			return &Integer{Value: int64(len([]rune(v.Value)))}
		case *Record:
			return &Integer{Value: int64(len(v.Fields))}
		case *Range:
			return &Integer{Value: v.Length()}
		case *Series:
			return &Integer{Value: int64(len(v.Values))}
		case *DataFrame:
			return &Integer{Value: int64(v.Rows())}
		}
		return newError("TYPE-0004", map[string]any{
			"Method": "len", "Type": string(args[0].Type()),
		})
	})

	registerBuiltin("range", func(in *Interp, args ...Object) Object {
		start, end, step := int64(0), int64(0), int64(1)
		switch len(args) {
		case 1:
			e, ok := args[0].(*Integer)
			if !ok {
				return rangeArgError(args[0])
			}
			end = e.Value
		case 2, 3:
			s, ok1 := args[0].(*Integer)
			e, ok2 := args[1].(*Integer)
			if !ok1 || !ok2 {
				return rangeArgError(args[0])
			}
			start, end = s.Value, e.Value
			if len(args) == 3 {
				st, ok := args[2].(*Integer)
				if !ok || st.Value == 0 {
					return rangeArgError(args[2])
				}
				step = st.Value
			}
		default:
			return newError("ARITY-0001", map[string]any{"Expected": 2, "Got": len(args)})
		}
		if step == 1 {
			return &Range{Start: start, End: end}
		}
		var elems []Object
		if step > 0 {
			for i := start; i < end; i += step {
				elems = append(elems, &Integer{Value: i})
			}
		} else {
			for i := start; i > end; i += step {
				elems = append(elems, &Integer{Value: i})
			}
		}
		return &Array{Elements: elems}
	})

	registerBuiltin("type_of", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("type_of", 1, args); ctl != nil {
			return ctl
		}
		return &String{Value: typeDisplayName(args[0])}
	})

	registerBuiltin("to_string", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("to_string", 1, args); ctl != nil {
			return ctl
		}
		return &String{Value: displayString(args[0])}
	})

	registerBuiltin("int", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("int", 1, args); ctl != nil {
			return ctl
		}
		switch v := args[0].(type) {
		case *Integer:
			return v
		case *Float:
			return &Integer{Value: int64(v.Value)}
		case *Boolean:
			if v.Value {
				return &Integer{Value: 1}
			}
			return &Integer{Value: 0}
		case *Char:
			return &Integer{Value: int64(v.Value)}
		case *String:
			if i, err := strconv.ParseInt(strings.TrimSpace(v.Value), 10, 64); err == nil {
				return &Integer{Value: i}
			}
		}
		return newError("OP-0004", map[string]any{"From": string(args[0].Type()), "To": "Int"})
	})

	registerBuiltin("float", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("float", 1, args); ctl != nil {
			return ctl
		}
		switch v := args[0].(type) {
		case *Float:
			return v
		case *Integer:
			return &Float{Value: float64(v.Value)}
		case *String:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64); err == nil {
				return &Float{Value: f}
			}
		}
		return newError("OP-0004", map[string]any{"From": string(args[0].Type()), "To": "Float"})
	})

	registerBuiltin("str", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("str", 1, args); ctl != nil {
			return ctl
		}
		return &String{Value: displayString(args[0])}
	})

	registerBuiltin("bool", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("bool", 1, args); ctl != nil {
			return ctl
		}
		return nativeBool(truthy(args[0]))
	})

	registerBuiltin("abs", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("abs", 1, args); ctl != nil {
			return ctl
		}
		switch v := args[0].(type) {
		case *Integer:
			if v.Value < 0 {
				return &Integer{Value: -v.Value}
			}
			return v
		case *Float:
			return &Float{Value: math.Abs(v.Value)}
		}
		return numericArgError("abs", args[0])
	})

	registerBuiltin("sqrt", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("sqrt", 1, args); ctl != nil {
			return ctl
		}
		if !isNumeric(args[0]) {
			return numericArgError("sqrt", args[0])
		}
		return &Float{Value: math.Sqrt(asFloat(args[0]))}
	})

	registerBuiltin("pow", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("pow", 2, args); ctl != nil {
			return ctl
		}
		if a, ok := args[0].(*Integer); ok {
			if b, ok := args[1].(*Integer); ok && b.Value >= 0 {
				return &Integer{Value: intPow(a.Value, b.Value)}
			}
		}
		if !isNumeric(args[0]) || !isNumeric(args[1]) {
			return numericArgError("pow", args[0])
		}
		return &Float{Value: math.Pow(asFloat(args[0]), asFloat(args[1]))}
	})

	registerBuiltin("floor", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("floor", 1, args); ctl != nil {
			return ctl
		}
		if !isNumeric(args[0]) {
			return numericArgError("floor", args[0])
		}
		return &Float{Value: math.Floor(asFloat(args[0]))}
	})

	registerBuiltin("ceil", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("ceil", 1, args); ctl != nil {
			return ctl
		}
		if !isNumeric(args[0]) {
			return numericArgError("ceil", args[0])
		}
		return &Float{Value: math.Ceil(asFloat(args[0]))}
	})

	registerBuiltin("round", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("round", 1, args); ctl != nil {
			return ctl
		}
		if !isNumeric(args[0]) {
			return numericArgError("round", args[0])
		}
		return &Float{Value: math.Round(asFloat(args[0]))}
	})

	registerBuiltin("min", func(in *Interp, args ...Object) Object {
		if len(args) == 1 {
			if arr, ok := args[0].(*Array); ok {
				return extremeObject(arr.Elements, -1)
			}
		}
		return extremeObject(args, -1)
	})

	registerBuiltin("max", func(in *Interp, args ...Object) Object {
		if len(args) == 1 {
			if arr, ok := args[0].(*Array); ok {
				return extremeObject(arr.Elements, 1)
			}
		}
		return extremeObject(args, 1)
	})

	registerBuiltin("sum", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("sum", 1, args); ctl != nil {
			return ctl
		}
		elems, errObj := iterableElements(args[0])
		if errObj != nil {
			return errObj
		}
		return sumObjects(elems)
	})

	registerBuiltin("char", func(in *Interp, args ...Object) Object {
		if ctl := builtinArity("char", 1, args); ctl != nil {
			return ctl
		}
		if n, ok := args[0].(*Integer); ok {
			return &Char{Value: rune(n.Value)}
		}
		return newError("OP-0004", map[string]any{"From": string(args[0].Type()), "To": "Char"})
	})
}

func rangeArgError(got Object) Object {
	return newError("OP-0004", map[string]any{"From": string(got.Type()), "To": "Int"})
}

func numericArgError(name string, got Object) Object {
	return newError("TYPE-0004", map[string]any{"Method": name, "Type": string(got.Type())})
}
