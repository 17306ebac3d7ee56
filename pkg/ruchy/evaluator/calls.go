package evaluator

import (
	"strconv"
	"strings"

	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
)

func (in *Interp) evalCall(n *ast.CallExpression, env *Environment) Object {
	callee := in.evalExpr(n.Function, env)
	if isControl(callee) {
		return callee
	}
	args, errObj := in.evalExpressions(n.Arguments, env)
	if errObj != nil {
		return errObj
	}

	result := in.applyFunction(callee, args)
	if err, ok := result.(*Error); ok && err.Err != nil && err.Err.Line == 0 {
		err.Err.Line = n.Token.Line
		err.Err.Column = n.Token.Column
	}
	return result
}

// applyFunction invokes any callable: closures, builtins, constructors,
// and tuple-variant builders.
func (in *Interp) applyFunction(callee Object, args []Object) Object {
	switch fn := callee.(type) {
	case *Function:
		return in.callFunction(fn, args)

	case *Builtin:
		return fn.Fn(in, args...)

	case *Constructor:
		if fn.ActorDef != nil {
			return in.instantiateActor(fn.ActorDef, args)
		}
		return in.constructStruct(fn.StructDef, args)

	case *EnumVariant:
		// A payload-less variant used as a callee builds the tuple form.
		if len(fn.Values) == 0 {
			return &EnumVariant{
				Enum: fn.Enum, Variant: fn.Variant,
				Values: args, Discriminant: fn.Discriminant,
			}
		}
	}
	return newError("OP-0005", map[string]any{"Value": callee.Inspect()})
}

func (in *Interp) callFunction(fn *Function, args []Object) Object {
	if in.callDepth >= maxCallDepth {
		return newError("STATE-0001", map[string]any{"Limit": maxCallDepth})
	}

	scope := NewEnclosedEnvironment(fn.Env)
	if fn.Self != nil {
		scope.Set("self", fn.Self)
	}

	params := fn.Params
	if len(params) > 0 && (params[0].IsSelf || params[0].IsMutSelf) {
		params = params[1:]
	}

	required := 0
	for _, p := range params {
		if p.Default == nil {
			required++
		}
	}
	if len(args) < required || len(args) > len(params) {
		return newError("ARITY-0001", map[string]any{
			"Expected": len(params), "Got": len(args),
		})
	}

	for i, p := range params {
		if i < len(args) {
			scope.Set(p.Name, args[i])
			continue
		}
		def := in.evalExpr(p.Default, scope)
		if isControl(def) {
			return def
		}
		scope.Set(p.Name, def)
	}

	in.callDepth++
	result := in.evalExpr(fn.Body, scope)
	in.callDepth--

	if rv, ok := result.(*ReturnValue); ok {
		return rv.Value
	}
	return result
}

// constructStruct builds a struct instance from positional arguments in
// field declaration order. Trailing fields may fall back to defaults.
func (in *Interp) constructStruct(def *ast.StructDefinition, args []Object) Object {
	if len(args) > len(def.Fields) {
		return newError("ARITY-0001", map[string]any{
			"Expected": len(def.Fields), "Got": len(args),
		})
	}
	rec := &Record{Name: def.Name, Fields: make(map[string]Object, len(def.Fields))}
	for i, field := range def.Fields {
		if i < len(args) {
			rec.Set(field.Name, args[i])
			continue
		}
		if field.Default != nil {
			value := in.evalExpr(field.Default, NewEnvironment())
			if isControl(value) {
				return value
			}
			rec.Set(field.Name, value)
			continue
		}
		return newError("ARITY-0001", map[string]any{
			"Expected": len(def.Fields), "Got": len(args),
		})
	}
	return rec
}

func (in *Interp) evalQualifiedName(n *ast.QualifiedName, env *Environment) Object {
	if len(n.Parts) < 2 {
		return newErrorAt("UNDEF-0001", n.Token.Line, n.Token.Column, map[string]any{
			"Name": strings.Join(n.Parts, "::"),
		})
	}
	head, member := n.Parts[0], n.Parts[1]

	// Enum variant path: Color::Red, Shape::Circle.
	if def, ok := in.enums[head]; ok {
		if variant := enumVariantValue(def, member); variant != nil {
			return variant
		}
		return newErrorAt("UNDEF-0002", n.Token.Line, n.Token.Column, map[string]any{
			"Field": member, "Type": head,
		})
	}

	// Static method: Point::new.
	if byName, ok := in.methods[head]; ok {
		if def, ok := byName[member]; ok {
			return &Function{Name: member, Params: def.fn.Params, Body: def.fn.Body, Env: def.env}
		}
	}

	// Namespaced builtins: DataFrame::from_sql.
	if b, ok := builtins[strings.Join(n.Parts, "::")]; ok {
		return b
	}

	// Module member: math::pi.
	if obj, ok := env.Get(head); ok {
		if mod, ok := obj.(*Module); ok {
			if member, ok := mod.Bindings[n.Parts[1]]; ok {
				return member
			}
			return newErrorAt("UNDEF-0002", n.Token.Line, n.Token.Column, map[string]any{
				"Field": n.Parts[1], "Type": mod.Name,
			})
		}
	}

	return newErrorAt("UNDEF-0001", n.Token.Line, n.Token.Column, map[string]any{
		"Name": strings.Join(n.Parts, "::"),
	})
}

// enumVariantValue instantiates a unit variant or returns the variant
// value used as a tuple builder. Implicit discriminants count from the
// previous explicit value.
func enumVariantValue(def *ast.EnumDefinition, name string) Object {
	next := int64(0)
	for _, v := range def.Variants {
		disc := next
		if v.Discriminant != nil {
			disc = *v.Discriminant
		}
		next = disc + 1
		if v.Name == name {
			return &EnumVariant{Enum: def.Name, Variant: name, Discriminant: disc}
		}
	}
	return nil
}

// lookupBareVariant resolves an unqualified variant name when exactly one
// declared enum defines it.
func (in *Interp) lookupBareVariant(name string) Object {
	var found Object
	for _, def := range in.enums {
		if v := enumVariantValue(def, name); v != nil {
			if found != nil {
				return nil
			}
			found = v
		}
	}
	return found
}

func (in *Interp) evalFieldAccess(n *ast.FieldAccess, env *Environment) Object {
	obj := in.evalExpr(n.Object, env)
	if isControl(obj) {
		return obj
	}

	in.caches.recordField(n.Field, obj.Type())

	switch o := obj.(type) {
	case *Record:
		if value, ok := o.Fields[n.Field]; ok {
			return value
		}
		// A method accessed without a call binds its receiver.
		if fn := in.lookupMethod(o, n.Field); fn != nil {
			return fn
		}
	case *Actor:
		if value, ok := o.Fields[n.Field]; ok {
			return value
		}
	case *Module:
		if value, ok := o.Bindings[n.Field]; ok {
			return value
		}
	case *Tuple:
		if idx, err := strconv.Atoi(n.Field); err == nil {
			if idx < 0 || idx >= len(o.Elements) {
				return newErrorAt("INDEX-0001", n.Token.Line, n.Token.Column, map[string]any{
					"Index": idx, "Length": len(o.Elements),
				})
			}
			return o.Elements[idx]
		}
	case *DataFrame:
		if col := o.Column(n.Field); col != nil {
			return &Series{Name: col.Name, Values: col.Values}
		}
	}

	return newErrorAt("UNDEF-0002", n.Token.Line, n.Token.Column, map[string]any{
		"Field": n.Field, "Type": typeDisplayName(obj),
	})
}

// lookupMethod finds a user-defined method for a receiver and binds it.
func (in *Interp) lookupMethod(receiver Object, name string) *Function {
	for _, target := range methodTargets(receiver) {
		if byName, ok := in.methods[target]; ok {
			if def, ok := byName[name]; ok {
				return &Function{
					Name: name, Params: def.fn.Params, Body: def.fn.Body,
					Env: def.env, Self: receiver,
				}
			}
		}
	}
	return nil
}

// methodTargets lists the registry keys a receiver's methods may live
// under: the nominal type first, then the builtin type name extensions
// attach to.
func methodTargets(receiver Object) []string {
	switch r := receiver.(type) {
	case *Record:
		if r.Name != "" {
			return []string{r.Name, "HashMap"}
		}
		return []string{"HashMap"}
	case *Actor:
		return []string{r.Name}
	case *EnumVariant:
		return []string{r.Enum}
	case *Integer:
		return []string{"Int"}
	case *Float:
		return []string{"Float"}
	case *String:
		return []string{"String"}
	case *Boolean:
		return []string{"Bool"}
	case *Char:
		return []string{"Char"}
	case *Array:
		return []string{"List", "Vec"}
	case *Tuple:
		return []string{"Tuple"}
	case *DataFrame:
		return []string{"DataFrame"}
	case *Series:
		return []string{"Series"}
	}
	return nil
}

func typeDisplayName(obj Object) string {
	switch o := obj.(type) {
	case *Record:
		if o.Name != "" {
			return o.Name
		}
	case *Actor:
		return o.Name
	case *EnumVariant:
		return o.Enum
	}
	if name, ok := surfaceTypeNames[obj.Type()]; ok {
		return name
	}
	return string(obj.Type())
}

// surfaceTypeNames maps internal object types to the names scripts use.
var surfaceTypeNames = map[ObjectType]string{
	INTEGER_OBJ:   "Int",
	FLOAT_OBJ:     "Float",
	BOOLEAN_OBJ:   "Bool",
	STRING_OBJ:    "String",
	CHAR_OBJ:      "Char",
	BYTE_OBJ:      "Byte",
	NULL_OBJ:      "Null",
	ARRAY_OBJ:     "List",
	TUPLE_OBJ:     "Tuple",
	RANGE_OBJ:     "Range",
	RECORD_OBJ:    "HashMap",
	FUNCTION_OBJ:  "Function",
	BUILTIN_OBJ:   "Function",
	DATAFRAME_OBJ: "DataFrame",
	SERIES_OBJ:    "Series",
	MODULE_OBJ:    "Module",
}

func (in *Interp) evalMethodCall(n *ast.MethodCallExpression, env *Environment) Object {
	receiver := in.evalExpr(n.Receiver, env)
	if isControl(receiver) {
		return receiver
	}
	args, errObj := in.evalExpressions(n.Arguments, env)
	if errObj != nil {
		return errObj
	}

	in.caches.recordMethod(n.Method, receiver.Type())

	// User-defined methods shadow builtins for nominal types.
	if fn := in.lookupMethod(receiver, n.Method); fn != nil {
		return in.callFunction(fn, args)
	}

	result := in.callBuiltinMethod(receiver, n.Method, args)
	if err, ok := result.(*Error); ok && err.Err != nil && err.Err.Line == 0 {
		err.Err.Line = n.Token.Line
		err.Err.Column = n.Token.Column
	}
	return result
}

func (in *Interp) evalIndex(n *ast.IndexAccess, env *Environment) Object {
	obj := in.evalExpr(n.Object, env)
	if isControl(obj) {
		return obj
	}
	index := in.evalExpr(n.Index, env)
	if isControl(index) {
		return index
	}

	switch o := obj.(type) {
	case *Array:
		idx, ok := index.(*Integer)
		if !ok {
			return indexOpError(obj, index)
		}
		i := normalizeIndex(idx.Value, len(o.Elements))
		if i < 0 || i >= int64(len(o.Elements)) {
			return newErrorAt("INDEX-0001", n.Token.Line, n.Token.Column, map[string]any{
				"Index": idx.Value, "Length": len(o.Elements),
			})
		}
		return o.Elements[i]

	case *Tuple:
		idx, ok := index.(*Integer)
		if !ok {
			return indexOpError(obj, index)
		}
		i := normalizeIndex(idx.Value, len(o.Elements))
		if i < 0 || i >= int64(len(o.Elements)) {
			return newErrorAt("INDEX-0001", n.Token.Line, n.Token.Column, map[string]any{
				"Index": idx.Value, "Length": len(o.Elements),
			})
		}
		return o.Elements[i]

	case *String:
		idx, ok := index.(*Integer)
		if !ok {
			return indexOpError(obj, index)
		}
		runes := []rune(o.Value)
		i := normalizeIndex(idx.Value, len(runes))
		if i < 0 || i >= int64(len(runes)) {
			return newErrorAt("INDEX-0001", n.Token.Line, n.Token.Column, map[string]any{
				"Index": idx.Value, "Length": len(runes),
			})
		}
		return &Char{Value: runes[i]}

	case *Record:
		key, ok := index.(*String)
		if !ok {
			return indexOpError(obj, index)
		}
		if value, present := o.Fields[key.Value]; present {
			return value
		}
		return NULL

	case *Series:
		idx, ok := index.(*Integer)
		if !ok {
			return indexOpError(obj, index)
		}
		i := normalizeIndex(idx.Value, len(o.Values))
		if i < 0 || i >= int64(len(o.Values)) {
			return newErrorAt("INDEX-0001", n.Token.Line, n.Token.Column, map[string]any{
				"Index": idx.Value, "Length": len(o.Values),
			})
		}
		return o.Values[i]

	case *DataFrame:
		key, ok := index.(*String)
		if !ok {
			return indexOpError(obj, index)
		}
		if col := o.Column(key.Value); col != nil {
			return &Series{Name: col.Name, Values: col.Values}
		}
		return newErrorAt("UNDEF-0002", n.Token.Line, n.Token.Column, map[string]any{
			"Field": key.Value, "Type": "DataFrame",
		})
	}

	return indexOpError(obj, index)
}

func indexOpError(obj, index Object) Object {
	return newError("OP-0001", map[string]any{
		"Left": string(obj.Type()), "Operator": "[]", "Right": string(index.Type()),
	})
}

func (in *Interp) evalSlice(n *ast.SliceExpression, env *Environment) Object {
	obj := in.evalExpr(n.Object, env)
	if isControl(obj) {
		return obj
	}

	resolve := func(expr ast.Expression, fallback int64) (int64, Object) {
		if expr == nil {
			return fallback, nil
		}
		value := in.evalExpr(expr, env)
		if isControl(value) {
			return 0, value
		}
		num, ok := value.(*Integer)
		if !ok {
			return 0, indexOpError(obj, value)
		}
		return num.Value, nil
	}

	switch o := obj.(type) {
	case *Array:
		length := int64(len(o.Elements))
		start, ctl := resolve(n.Start, 0)
		if ctl != nil {
			return ctl
		}
		end, ctl := resolve(n.End, length)
		if ctl != nil {
			return ctl
		}
		start, end = clampSlice(normalizeIndex(start, len(o.Elements)), normalizeIndex(end, len(o.Elements)), length)
		out := make([]Object, end-start)
		copy(out, o.Elements[start:end])
		return &Array{Elements: out}

	case *String:
		runes := []rune(o.Value)
		length := int64(len(runes))
		start, ctl := resolve(n.Start, 0)
		if ctl != nil {
			return ctl
		}
		end, ctl := resolve(n.End, length)
		if ctl != nil {
			return ctl
		}
		start, end = clampSlice(normalizeIndex(start, len(runes)), normalizeIndex(end, len(runes)), length)
		return &String{Value: string(runes[start:end])}
	}

	return newError("OP-0001", map[string]any{
		"Left": string(obj.Type()), "Operator": "[..]", "Right": "Range",
	})
}

func clampSlice(start, end, length int64) (int64, int64) {
	if start < 0 {
		start = 0
	}
	if end > length {
		end = length
	}
	if start > end {
		start = end
	}
	return start, end
}

func (in *Interp) evalImplBlock(n *ast.ImplBlock, env *Environment) Object {
	for _, m := range n.Methods {
		in.registerMethod(n.ForType, m, env)
	}
	// Trait defaults apply when the impl does not override them.
	if n.Trait != "" {
		if trait, ok := in.traits[n.Trait]; ok {
			for _, m := range trait.Methods {
				if m.Body == nil {
					continue
				}
				if _, exists := in.methods[n.ForType][m.Name]; !exists {
					in.registerMethod(n.ForType, m, env)
				}
			}
		}
	}
	return NULL
}

func (in *Interp) registerMethod(target string, fn *ast.FunctionLiteral, env *Environment) {
	if in.methods[target] == nil {
		in.methods[target] = make(map[string]*methodDef)
	}
	in.methods[target][fn.Name] = &methodDef{fn: fn, env: env}
}
