package evaluator

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// callBuiltinMethod dispatches built-in methods by receiver type.
func (in *Interp) callBuiltinMethod(receiver Object, method string, args []Object) Object {
	switch r := receiver.(type) {
	case *Array:
		return in.arrayMethod(r, method, args)
	case *String:
		return in.stringMethod(r, method, args)
	case *Record:
		return in.recordMethod(r, method, args)
	case *Integer:
		return in.integerMethod(r, method, args)
	case *Float:
		return in.floatMethod(r, method, args)
	case *Char:
		return charMethod(r, method)
	case *Range:
		return in.rangeMethod(r, method, args)
	case *Tuple:
		if method == "len" {
			return &Integer{Value: int64(len(r.Elements))}
		}
	case *EnumVariant:
		return in.variantMethod(r, method, args)
	case *Series:
		return in.seriesMethod(r, method, args)
	case *DataFrame:
		return in.dataFrameMethod(r, method, args)
	}
	return noMethodError(receiver, method)
}

func noMethodError(receiver Object, method string) Object {
	return newError("TYPE-0004", map[string]any{
		"Method": method, "Type": typeDisplayName(receiver),
	})
}

func methodArity(method string, expected, got int) Object {
	if got == expected {
		return nil
	}
	return newError("ARITY-0001", map[string]any{"Expected": expected, "Got": got})
}

func (in *Interp) arrayMethod(arr *Array, method string, args []Object) Object {
	switch method {
	case "len", "count":
		return &Integer{Value: int64(len(arr.Elements))}

	case "is_empty":
		return nativeBool(len(arr.Elements) == 0)

	case "push", "append":
		arr.Elements = append(arr.Elements, args...)
		return arr

	case "pop":
		if len(arr.Elements) == 0 {
			return &EnumVariant{Enum: "Option", Variant: "None"}
		}
		last := arr.Elements[len(arr.Elements)-1]
		arr.Elements = arr.Elements[:len(arr.Elements)-1]
		return &EnumVariant{Enum: "Option", Variant: "Some", Values: []Object{last}}

	case "first", "head":
		if len(arr.Elements) == 0 {
			return &EnumVariant{Enum: "Option", Variant: "None"}
		}
		return &EnumVariant{Enum: "Option", Variant: "Some", Values: []Object{arr.Elements[0]}}

	case "last":
		if len(arr.Elements) == 0 {
			return &EnumVariant{Enum: "Option", Variant: "None"}
		}
		return &EnumVariant{Enum: "Option", Variant: "Some",
			Values: []Object{arr.Elements[len(arr.Elements)-1]}}

	case "contains":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		for _, e := range arr.Elements {
			if objectsEqual(e, args[0]) {
				return TRUE
			}
		}
		return FALSE

	case "index_of":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		for i, e := range arr.Elements {
			if objectsEqual(e, args[0]) {
				return &EnumVariant{Enum: "Option", Variant: "Some",
					Values: []Object{&Integer{Value: int64(i)}}}
			}
		}
		return &EnumVariant{Enum: "Option", Variant: "None"}

	case "join":
		sep := ""
		if len(args) > 0 {
			if s, ok := args[0].(*String); ok {
				sep = s.Value
			}
		}
		parts := make([]string, len(arr.Elements))
		for i, e := range arr.Elements {
			parts[i] = displayString(e)
		}
		return &String{Value: strings.Join(parts, sep)}

	case "map":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		out := make([]Object, len(arr.Elements))
		for i, e := range arr.Elements {
			mapped := in.applyFunction(args[0], []Object{e})
			if isControl(mapped) {
				return mapped
			}
			out[i] = mapped
		}
		return &Array{Elements: out}

	case "filter":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		var out []Object
		for _, e := range arr.Elements {
			keep := in.applyFunction(args[0], []Object{e})
			if isControl(keep) {
				return keep
			}
			if truthy(keep) {
				out = append(out, e)
			}
		}
		return &Array{Elements: out}

	case "reduce", "fold":
		if len(args) != 2 {
			return methodArity(method, 2, len(args))
		}
		acc := args[0]
		for _, e := range arr.Elements {
			next := in.applyFunction(args[1], []Object{acc, e})
			if isControl(next) {
				return next
			}
			acc = next
		}
		return acc

	case "any":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		for _, e := range arr.Elements {
			pass := in.applyFunction(args[0], []Object{e})
			if isControl(pass) {
				return pass
			}
			if truthy(pass) {
				return TRUE
			}
		}
		return FALSE

	case "all":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		for _, e := range arr.Elements {
			pass := in.applyFunction(args[0], []Object{e})
			if isControl(pass) {
				return pass
			}
			if !truthy(pass) {
				return FALSE
			}
		}
		return TRUE

	case "sorted":
		out := make([]Object, len(arr.Elements))
		copy(out, arr.Elements)
		sort.SliceStable(out, func(i, j int) bool { return compareObjects(out[i], out[j]) < 0 })
		return &Array{Elements: out}

	case "reversed":
		out := make([]Object, len(arr.Elements))
		for i, e := range arr.Elements {
			out[len(arr.Elements)-1-i] = e
		}
		return &Array{Elements: out}

	case "unique":
		var out []Object
		for _, e := range arr.Elements {
			seen := false
			for _, u := range out {
				if objectsEqual(e, u) {
					seen = true
					break
				}
			}
			if !seen {
				out = append(out, e)
			}
		}
		return &Array{Elements: out}

	case "sum":
		return sumObjects(arr.Elements)

	case "min":
		return extremeObject(arr.Elements, -1)

	case "max":
		return extremeObject(arr.Elements, 1)

	case "enumerate":
		out := make([]Object, len(arr.Elements))
		for i, e := range arr.Elements {
			out[i] = &Tuple{Elements: []Object{&Integer{Value: int64(i)}, e}}
		}
		return &Array{Elements: out}

	case "zip":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		other, ok := args[0].(*Array)
		if !ok {
			return noMethodError(args[0], method)
		}
		n := len(arr.Elements)
		if len(other.Elements) < n {
			n = len(other.Elements)
		}
		out := make([]Object, n)
		for i := 0; i < n; i++ {
			out[i] = &Tuple{Elements: []Object{arr.Elements[i], other.Elements[i]}}
		}
		return &Array{Elements: out}

	case "flatten":
		var out []Object
		for _, e := range arr.Elements {
			if inner, ok := e.(*Array); ok {
				out = append(out, inner.Elements...)
			} else {
				out = append(out, e)
			}
		}
		return &Array{Elements: out}

	case "take":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		n, ok := args[0].(*Integer)
		if !ok {
			return noMethodError(args[0], method)
		}
		end := int(n.Value)
		if end > len(arr.Elements) {
			end = len(arr.Elements)
		}
		if end < 0 {
			end = 0
		}
		out := make([]Object, end)
		copy(out, arr.Elements[:end])
		return &Array{Elements: out}

	case "skip":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		n, ok := args[0].(*Integer)
		if !ok {
			return noMethodError(args[0], method)
		}
		start := int(n.Value)
		if start > len(arr.Elements) {
			start = len(arr.Elements)
		}
		if start < 0 {
			start = 0
		}
		out := make([]Object, len(arr.Elements)-start)
		copy(out, arr.Elements[start:])
		return &Array{Elements: out}

	case "to_string":
		return &String{Value: arr.Inspect()}
	}
	return noMethodError(arr, method)
}

func (in *Interp) stringMethod(s *String, method string, args []Object) Object {
	switch method {
	case "len":
		return &Integer{Value: int64(len([]rune(s.Value)))}

	case "is_empty":
		return nativeBool(s.Value == "")

	case "chars":
		runes := []rune(s.Value)
		out := make([]Object, len(runes))
		for i, r := range runes {
			out[i] = &Char{Value: r}
		}
		return &Array{Elements: out}

	case "lines":
		lines := strings.Split(strings.TrimRight(s.Value, "\n"), "\n")
		out := make([]Object, len(lines))
		for i, l := range lines {
			out[i] = &String{Value: l}
		}
		return &Array{Elements: out}

	case "trim":
		return &String{Value: strings.TrimSpace(s.Value)}

	case "trim_start":
		return &String{Value: strings.TrimLeft(s.Value, " \t\r\n")}

	case "trim_end":
		return &String{Value: strings.TrimRight(s.Value, " \t\r\n")}

	case "to_upper", "to_uppercase":
		return &String{Value: strings.ToUpper(s.Value)}

	case "to_lower", "to_lowercase":
		return &String{Value: strings.ToLower(s.Value)}

	case "split":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		sep, ok := args[0].(*String)
		if !ok {
			return noMethodError(args[0], method)
		}
		parts := strings.Split(s.Value, sep.Value)
		out := make([]Object, len(parts))
		for i, p := range parts {
			out[i] = &String{Value: p}
		}
		return &Array{Elements: out}

	case "contains":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		switch needle := args[0].(type) {
		case *String:
			return nativeBool(strings.Contains(s.Value, needle.Value))
		case *Char:
			return nativeBool(strings.ContainsRune(s.Value, needle.Value))
		}
		return FALSE

	case "starts_with":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		prefix, ok := args[0].(*String)
		if !ok {
			return FALSE
		}
		return nativeBool(strings.HasPrefix(s.Value, prefix.Value))

	case "ends_with":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		suffix, ok := args[0].(*String)
		if !ok {
			return FALSE
		}
		return nativeBool(strings.HasSuffix(s.Value, suffix.Value))

	case "replace":
		if len(args) != 2 {
			return methodArity(method, 2, len(args))
		}
		from, ok1 := args[0].(*String)
		to, ok2 := args[1].(*String)
		if !ok1 || !ok2 {
			return noMethodError(s, method)
		}
		return &String{Value: strings.ReplaceAll(s.Value, from.Value, to.Value)}

	case "repeat":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		n, ok := args[0].(*Integer)
		if !ok || n.Value < 0 {
			return noMethodError(s, method)
		}
		return &String{Value: strings.Repeat(s.Value, int(n.Value))}

	case "find":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		needle, ok := args[0].(*String)
		if !ok {
			return &EnumVariant{Enum: "Option", Variant: "None"}
		}
		idx := strings.Index(s.Value, needle.Value)
		if idx < 0 {
			return &EnumVariant{Enum: "Option", Variant: "None"}
		}
		return &EnumVariant{Enum: "Option", Variant: "Some",
			Values: []Object{&Integer{Value: int64(len([]rune(s.Value[:idx])))}}}

	case "parse_int":
		if i, err := strconv.ParseInt(strings.TrimSpace(s.Value), 10, 64); err == nil {
			return &EnumVariant{Enum: "Result", Variant: "Ok",
				Values: []Object{&Integer{Value: i}}}
		}
		return &EnumVariant{Enum: "Result", Variant: "Err",
			Values: []Object{&String{Value: "invalid integer: " + s.Value}}}

	case "parse_float":
		if f, err := strconv.ParseFloat(strings.TrimSpace(s.Value), 64); err == nil {
			return &EnumVariant{Enum: "Result", Variant: "Ok",
				Values: []Object{&Float{Value: f}}}
		}
		return &EnumVariant{Enum: "Result", Variant: "Err",
			Values: []Object{&String{Value: "invalid float: " + s.Value}}}

	case "reversed":
		runes := []rune(s.Value)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return &String{Value: string(runes)}

	case "to_string":
		return s
	}
	return noMethodError(s, method)
}

func (in *Interp) recordMethod(rec *Record, method string, args []Object) Object {
	switch method {
	case "insert", "set":
		if len(args) != 2 {
			return methodArity(method, 2, len(args))
		}
		key, ok := args[0].(*String)
		if !ok {
			return noMethodError(args[0], method)
		}
		rec.Set(key.Value, args[1])
		return rec

	case "get":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		key, ok := args[0].(*String)
		if !ok {
			return &EnumVariant{Enum: "Option", Variant: "None"}
		}
		if value, present := rec.Fields[key.Value]; present {
			return &EnumVariant{Enum: "Option", Variant: "Some", Values: []Object{value}}
		}
		return &EnumVariant{Enum: "Option", Variant: "None"}

	case "contains_key":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		key, ok := args[0].(*String)
		if !ok {
			return FALSE
		}
		_, present := rec.Fields[key.Value]
		return nativeBool(present)

	case "remove":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		key, ok := args[0].(*String)
		if !ok {
			return &EnumVariant{Enum: "Option", Variant: "None"}
		}
		value, present := rec.Fields[key.Value]
		if !present {
			return &EnumVariant{Enum: "Option", Variant: "None"}
		}
		delete(rec.Fields, key.Value)
		for i, name := range rec.Order {
			if name == key.Value {
				rec.Order = append(rec.Order[:i], rec.Order[i+1:]...)
				break
			}
		}
		return &EnumVariant{Enum: "Option", Variant: "Some", Values: []Object{value}}

	case "len":
		return &Integer{Value: int64(len(rec.Fields))}

	case "is_empty":
		return nativeBool(len(rec.Fields) == 0)

	case "keys":
		out := make([]Object, len(rec.Order))
		for i, name := range rec.Order {
			out[i] = &String{Value: name}
		}
		return &Array{Elements: out}

	case "values":
		out := make([]Object, len(rec.Order))
		for i, name := range rec.Order {
			out[i] = rec.Fields[name]
		}
		return &Array{Elements: out}

	case "entries", "items":
		out := make([]Object, len(rec.Order))
		for i, name := range rec.Order {
			out[i] = &Tuple{Elements: []Object{&String{Value: name}, rec.Fields[name]}}
		}
		return &Array{Elements: out}

	case "to_string":
		return &String{Value: rec.Inspect()}
	}
	return noMethodError(rec, method)
}

func (in *Interp) integerMethod(n *Integer, method string, args []Object) Object {
	switch method {
	case "abs":
		if n.Value < 0 {
			return &Integer{Value: -n.Value}
		}
		return n
	case "pow":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		exp, ok := args[0].(*Integer)
		if !ok {
			return noMethodError(args[0], method)
		}
		return &Integer{Value: intPow(n.Value, exp.Value)}
	case "to_float":
		return &Float{Value: float64(n.Value)}
	case "to_string":
		return &String{Value: n.Inspect()}
	}
	return noMethodError(n, method)
}

func (in *Interp) floatMethod(f *Float, method string, args []Object) Object {
	switch method {
	case "abs":
		return &Float{Value: math.Abs(f.Value)}
	case "sqrt":
		return &Float{Value: math.Sqrt(f.Value)}
	case "round":
		return &Float{Value: math.Round(f.Value)}
	case "floor":
		return &Float{Value: math.Floor(f.Value)}
	case "ceil":
		return &Float{Value: math.Ceil(f.Value)}
	case "pow":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		return &Float{Value: math.Pow(f.Value, asFloat(args[0]))}
	case "to_int":
		return &Integer{Value: int64(f.Value)}
	case "to_string":
		return &String{Value: f.Inspect()}
	}
	return noMethodError(f, method)
}

func charMethod(c *Char, method string) Object {
	switch method {
	case "to_upper", "to_uppercase":
		return &Char{Value: unicode.ToUpper(c.Value)}
	case "to_lower", "to_lowercase":
		return &Char{Value: unicode.ToLower(c.Value)}
	case "is_alpha", "is_alphabetic":
		return nativeBool(unicode.IsLetter(c.Value))
	case "is_digit", "is_numeric":
		return nativeBool(unicode.IsDigit(c.Value))
	case "is_whitespace":
		return nativeBool(unicode.IsSpace(c.Value))
	case "to_int":
		return &Integer{Value: int64(c.Value)}
	case "to_string":
		return &String{Value: string(c.Value)}
	}
	return noMethodError(c, method)
}

func (in *Interp) rangeMethod(r *Range, method string, args []Object) Object {
	switch method {
	case "len", "count":
		return &Integer{Value: r.Length()}
	case "contains":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		return evalInOperator(args[0], r)
	case "to_list", "collect":
		elems, _ := iterableElements(r)
		return &Array{Elements: elems}
	case "map", "filter", "sum", "reduce", "fold", "reversed", "any", "all", "enumerate":
		elems, _ := iterableElements(r)
		return in.arrayMethod(&Array{Elements: elems}, method, args)
	}
	return noMethodError(r, method)
}

func (in *Interp) variantMethod(ev *EnumVariant, method string, args []Object) Object {
	isSome := ev.Enum == "Option" && ev.Variant == "Some"
	isNone := ev.Enum == "Option" && ev.Variant == "None"
	isOk := ev.Enum == "Result" && ev.Variant == "Ok"
	isErr := ev.Enum == "Result" && ev.Variant == "Err"

	switch method {
	case "is_some":
		return nativeBool(isSome)
	case "is_none":
		return nativeBool(isNone)
	case "is_ok":
		return nativeBool(isOk)
	case "is_err":
		return nativeBool(isErr)

	case "unwrap":
		if isSome || isOk {
			return variantPayload(ev)
		}
		return &Error{Payload: &String{Value: "called unwrap on " + ev.Inspect()}}

	case "expect":
		if isSome || isOk {
			return variantPayload(ev)
		}
		msg := "expect failed on " + ev.Inspect()
		if len(args) > 0 {
			msg = displayString(args[0])
		}
		return &Error{Payload: &String{Value: msg}}

	case "unwrap_or":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		if isSome || isOk {
			return variantPayload(ev)
		}
		return args[0]

	case "unwrap_or_else":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		if isSome || isOk {
			return variantPayload(ev)
		}
		return in.applyFunction(args[0], nil)

	case "map":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		if isSome || isOk {
			mapped := in.applyFunction(args[0], []Object{variantPayload(ev)})
			if isControl(mapped) {
				return mapped
			}
			return &EnumVariant{Enum: ev.Enum, Variant: ev.Variant, Values: []Object{mapped}}
		}
		return ev

	case "and_then":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		if isSome || isOk {
			return in.applyFunction(args[0], []Object{variantPayload(ev)})
		}
		return ev

	case "ok":
		if isOk {
			return &EnumVariant{Enum: "Option", Variant: "Some", Values: ev.Values}
		}
		if isErr {
			return &EnumVariant{Enum: "Option", Variant: "None"}
		}

	case "err":
		if isErr {
			return &EnumVariant{Enum: "Option", Variant: "Some", Values: ev.Values}
		}
		if isOk {
			return &EnumVariant{Enum: "Option", Variant: "None"}
		}

	case "discriminant":
		return &Integer{Value: ev.Discriminant}

	case "to_string":
		return &String{Value: ev.Inspect()}
	}
	return noMethodError(ev, method)
}

// compareObjects orders comparable values for sorting: numbers, strings,
// chars, bools. Unordered pairs compare equal so sorts stay stable.
func compareObjects(a, b Object) int {
	if isNumeric(a) && isNumeric(b) {
		x, y := asFloat(a), asFloat(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	if x, ok := a.(*String); ok {
		if y, ok := b.(*String); ok {
			return strings.Compare(x.Value, y.Value)
		}
	}
	if x, ok := a.(*Char); ok {
		if y, ok := b.(*Char); ok {
			switch {
			case x.Value < y.Value:
				return -1
			case x.Value > y.Value:
				return 1
			}
			return 0
		}
	}
	if x, ok := a.(*Boolean); ok {
		if y, ok := b.(*Boolean); ok {
			switch {
			case !x.Value && y.Value:
				return -1
			case x.Value && !y.Value:
				return 1
			}
			return 0
		}
	}
	return 0
}

// sumObjects adds numeric elements; the sum is a Float when any element
// is, an Int otherwise. Empty input sums to 0.
func sumObjects(elems []Object) Object {
	intSum := int64(0)
	floatSum := 0.0
	sawFloat := false
	for _, e := range elems {
		switch v := e.(type) {
		case *Integer:
			intSum += v.Value
			floatSum += float64(v.Value)
		case *Float:
			sawFloat = true
			floatSum += v.Value
		default:
			return newError("OP-0001", map[string]any{
				"Left": string(e.Type()), "Operator": "+", "Right": "Int",
			})
		}
	}
	if sawFloat {
		return &Float{Value: floatSum}
	}
	return &Integer{Value: intSum}
}

// extremeObject picks the minimum (dir < 0) or maximum (dir > 0) element.
// Empty input yields null.
func extremeObject(elems []Object, dir int) Object {
	if len(elems) == 0 {
		return NULL
	}
	best := elems[0]
	for _, e := range elems[1:] {
		if dir < 0 && compareObjects(e, best) < 0 {
			best = e
		}
		if dir > 0 && compareObjects(e, best) > 0 {
			best = e
		}
	}
	return best
}
