package evaluator

import (
	"math"
	"strconv"
	"strings"

	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
)

func (in *Interp) evalPrefix(n *ast.PrefixExpression, env *Environment) Object {
	right := in.evalExpr(n.Right, env)
	if isControl(right) {
		return right
	}
	switch n.Operator {
	case "!":
		return nativeBool(!truthy(right))
	case "-":
		switch r := right.(type) {
		case *Integer:
			return &Integer{Value: -r.Value}
		case *Float:
			return &Float{Value: -r.Value}
		}
	case "~":
		if r, ok := right.(*Integer); ok {
			return &Integer{Value: ^r.Value}
		}
	case "*":
		// Dereference is the identity; containers share by pointer.
		return right
	case "&":
		return right
	}
	return newErrorAt("OP-0001", n.Token.Line, n.Token.Column, map[string]any{
		"Left": n.Operator, "Operator": n.Operator, "Right": string(right.Type()),
	})
}

func (in *Interp) evalInfix(n *ast.InfixExpression, env *Environment) Object {
	// Short-circuit forms decide before evaluating the right operand and
	// yield the deciding operand, not a coerced boolean.
	switch n.Operator {
	case "&&":
		left := in.evalExpr(n.Left, env)
		if isControl(left) {
			return left
		}
		if !truthy(left) {
			return left
		}
		return in.evalExpr(n.Right, env)
	case "||":
		left := in.evalExpr(n.Left, env)
		if isControl(left) {
			return left
		}
		if truthy(left) {
			return left
		}
		return in.evalExpr(n.Right, env)
	case "??":
		left := in.evalExpr(n.Left, env)
		if isControl(left) {
			return left
		}
		if isNilish(left) {
			return in.evalExpr(n.Right, env)
		}
		return left
	case "is":
		left := in.evalExpr(n.Left, env)
		if isControl(left) {
			return left
		}
		return nativeBool(matchesTypeName(left, typeNameOf(n.Right)))
	}

	left := in.evalExpr(n.Left, env)
	if isControl(left) {
		return left
	}
	right := in.evalExpr(n.Right, env)
	if isControl(right) {
		return right
	}

	result := in.applyBinaryOp(n.Operator, left, right)
	if err, ok := result.(*Error); ok && err.Err != nil && err.Err.Line == 0 {
		err.Err.Line = n.Token.Line
		err.Err.Column = n.Token.Column
	}
	return result
}

// applyBinaryOp dispatches a binary operator on evaluated operands. It is
// shared by infix expressions and compound assignment.
func (in *Interp) applyBinaryOp(op string, left, right Object) Object {
	switch op {
	case "==":
		return nativeBool(objectsEqual(left, right))
	case "!=":
		return nativeBool(!objectsEqual(left, right))
	case "in":
		return evalInOperator(left, right)
	}

	switch {
	case left.Type() == INTEGER_OBJ && right.Type() == INTEGER_OBJ:
		return intBinaryOp(op, left.(*Integer), right.(*Integer))
	case isNumeric(left) && isNumeric(right):
		return floatBinaryOp(op, asFloat(left), asFloat(right))
	case left.Type() == STRING_OBJ && right.Type() == STRING_OBJ:
		return stringBinaryOp(op, left.(*String), right.(*String))
	case left.Type() == STRING_OBJ && right.Type() == CHAR_OBJ && op == "+":
		return &String{Value: left.(*String).Value + string(right.(*Char).Value)}
	case left.Type() == CHAR_OBJ && right.Type() == STRING_OBJ && op == "+":
		return &String{Value: string(left.(*Char).Value) + right.(*String).Value}
	case left.Type() == CHAR_OBJ && right.Type() == CHAR_OBJ:
		return charBinaryOp(op, left.(*Char), right.(*Char))
	case left.Type() == ARRAY_OBJ && right.Type() == ARRAY_OBJ && op == "+":
		l := left.(*Array)
		r := right.(*Array)
		elems := make([]Object, 0, len(l.Elements)+len(r.Elements))
		elems = append(elems, l.Elements...)
		elems = append(elems, r.Elements...)
		return &Array{Elements: elems}
	case left.Type() == BOOLEAN_OBJ && right.Type() == BOOLEAN_OBJ:
		switch op {
		case "&":
			return nativeBool(left == TRUE && right == TRUE)
		case "|":
			return nativeBool(left == TRUE || right == TRUE)
		case "^":
			return nativeBool((left == TRUE) != (right == TRUE))
		}
	}

	return newError("OP-0001", map[string]any{
		"Left": string(left.Type()), "Operator": op, "Right": string(right.Type()),
	})
}

// intBinaryOp implements integer arithmetic. Overflow wraps.
func intBinaryOp(op string, left, right *Integer) Object {
	l, r := left.Value, right.Value
	switch op {
	case "+":
		return &Integer{Value: l + r}
	case "-":
		return &Integer{Value: l - r}
	case "*":
		return &Integer{Value: l * r}
	case "/":
		if r == 0 {
			return newError("OP-0002", nil)
		}
		return &Integer{Value: l / r}
	case "%":
		if r == 0 {
			return newError("OP-0003", nil)
		}
		return &Integer{Value: l % r}
	case "**":
		return &Integer{Value: intPow(l, r)}
	case "&":
		return &Integer{Value: l & r}
	case "|":
		return &Integer{Value: l | r}
	case "^":
		return &Integer{Value: l ^ r}
	case "<<":
		return &Integer{Value: l << uint64(r)}
	case ">>":
		return &Integer{Value: l >> uint64(r)}
	case "<":
		return nativeBool(l < r)
	case "<=":
		return nativeBool(l <= r)
	case ">":
		return nativeBool(l > r)
	case ">=":
		return nativeBool(l >= r)
	}
	return newError("OP-0001", map[string]any{"Left": "Int", "Operator": op, "Right": "Int"})
}

func floatBinaryOp(op string, l, r float64) Object {
	switch op {
	case "+":
		return &Float{Value: l + r}
	case "-":
		return &Float{Value: l - r}
	case "*":
		return &Float{Value: l * r}
	case "/":
		if r == 0 {
			return newError("OP-0002", nil)
		}
		return &Float{Value: l / r}
	case "%":
		if r == 0 {
			return newError("OP-0003", nil)
		}
		return &Float{Value: math.Mod(l, r)}
	case "**":
		return &Float{Value: math.Pow(l, r)}
	case "<":
		return nativeBool(l < r)
	case "<=":
		return nativeBool(l <= r)
	case ">":
		return nativeBool(l > r)
	case ">=":
		return nativeBool(l >= r)
	}
	return newError("OP-0001", map[string]any{"Left": "Float", "Operator": op, "Right": "Float"})
}

func stringBinaryOp(op string, left, right *String) Object {
	switch op {
	case "+":
		return &String{Value: left.Value + right.Value}
	case "<":
		return nativeBool(left.Value < right.Value)
	case "<=":
		return nativeBool(left.Value <= right.Value)
	case ">":
		return nativeBool(left.Value > right.Value)
	case ">=":
		return nativeBool(left.Value >= right.Value)
	}
	return newError("OP-0001", map[string]any{"Left": "String", "Operator": op, "Right": "String"})
}

func charBinaryOp(op string, left, right *Char) Object {
	switch op {
	case "+":
		return &String{Value: string(left.Value) + string(right.Value)}
	case "<":
		return nativeBool(left.Value < right.Value)
	case "<=":
		return nativeBool(left.Value <= right.Value)
	case ">":
		return nativeBool(left.Value > right.Value)
	case ">=":
		return nativeBool(left.Value >= right.Value)
	}
	return newError("OP-0001", map[string]any{"Left": "Char", "Operator": op, "Right": "Char"})
}

// evalInOperator dispatches membership on the right operand: element of a
// list or range, substring of a string, key of a map.
func evalInOperator(needle, haystack Object) Object {
	switch h := haystack.(type) {
	case *Array:
		for _, e := range h.Elements {
			if objectsEqual(needle, e) {
				return TRUE
			}
		}
		return FALSE
	case *Tuple:
		for _, e := range h.Elements {
			if objectsEqual(needle, e) {
				return TRUE
			}
		}
		return FALSE
	case *Range:
		num, ok := needle.(*Integer)
		if !ok {
			return FALSE
		}
		if h.Inclusive {
			return nativeBool(num.Value >= h.Start && num.Value <= h.End)
		}
		return nativeBool(num.Value >= h.Start && num.Value < h.End)
	case *String:
		switch n := needle.(type) {
		case *String:
			return nativeBool(strings.Contains(h.Value, n.Value))
		case *Char:
			return nativeBool(strings.ContainsRune(h.Value, n.Value))
		}
		return FALSE
	case *Record:
		key, ok := needle.(*String)
		if !ok {
			return FALSE
		}
		_, present := h.Fields[key.Value]
		return nativeBool(present)
	}
	return newError("OP-0001", map[string]any{
		"Left": string(needle.Type()), "Operator": "in", "Right": string(haystack.Type()),
	})
}

func (in *Interp) evalCast(n *ast.TypeCastExpression, env *Environment) Object {
	value := in.evalExpr(n.Value, env)
	if isControl(value) {
		return value
	}
	target := typeExprName(n.Target)

	switch target {
	case "Int", "i32", "i64":
		switch v := value.(type) {
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
		case *Byte:
			return &Integer{Value: int64(v.Value)}
		case *String:
			if i, err := strconv.ParseInt(strings.TrimSpace(v.Value), 10, 64); err == nil {
				return &Integer{Value: i}
			}
		case *EnumVariant:
			if len(v.Values) == 0 {
				return &Integer{Value: v.Discriminant}
			}
		}
	case "Float", "f32", "f64":
		switch v := value.(type) {
		case *Float:
			return v
		case *Integer:
			return &Float{Value: float64(v.Value)}
		case *String:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64); err == nil {
				return &Float{Value: f}
			}
		}
	case "String", "str":
		return &String{Value: value.Inspect()}
	case "Bool":
		return nativeBool(truthy(value))
	case "Char":
		switch v := value.(type) {
		case *Char:
			return v
		case *Integer:
			return &Char{Value: rune(v.Value)}
		case *Byte:
			return &Char{Value: rune(v.Value)}
		}
	case "Byte", "u8":
		switch v := value.(type) {
		case *Byte:
			return v
		case *Integer:
			return &Byte{Value: byte(v.Value)}
		case *Char:
			return &Byte{Value: byte(v.Value)}
		}
	}

	return newErrorAt("OP-0004", n.Token.Line, n.Token.Column, map[string]any{
		"From": string(value.Type()), "To": target,
	})
}

func typeExprName(t ast.TypeExpr) string {
	switch tt := t.(type) {
	case *ast.NamedType:
		return tt.Name
	case *ast.RefinedType:
		return typeExprName(tt.Base)
	}
	if t == nil {
		return ""
	}
	return t.String()
}

// typeNameOf extracts a type name from the right operand of `is` without
// evaluating it.
func typeNameOf(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Value
	case *ast.QualifiedName:
		return strings.Join(e.Parts, "::")
	}
	return expr.String()
}

func matchesTypeName(value Object, name string) bool {
	switch name {
	case "Int", "i32", "i64":
		return value.Type() == INTEGER_OBJ
	case "Float", "f32", "f64":
		return value.Type() == FLOAT_OBJ
	case "String", "str":
		return value.Type() == STRING_OBJ
	case "Bool":
		return value.Type() == BOOLEAN_OBJ
	case "Char":
		return value.Type() == CHAR_OBJ
	case "Byte", "u8":
		return value.Type() == BYTE_OBJ
	case "List", "Vec", "Array":
		return value.Type() == ARRAY_OBJ
	case "Tuple":
		return value.Type() == TUPLE_OBJ
	case "HashMap", "Object":
		return value.Type() == RECORD_OBJ
	case "DataFrame":
		return value.Type() == DATAFRAME_OBJ
	case "Series":
		return value.Type() == SERIES_OBJ
	case "Null", "Unit":
		return value.Type() == NULL_OBJ
	}
	switch v := value.(type) {
	case *Record:
		return v.Name == name
	case *EnumVariant:
		return v.Enum == name || v.Enum+"::"+v.Variant == name
	case *Actor:
		return v.Name == name
	}
	return false
}

// isNilish reports whether a value counts as absent for ?? coalescing.
func isNilish(obj Object) bool {
	if obj == NULL {
		return true
	}
	if ev, ok := obj.(*EnumVariant); ok {
		return ev.Enum == "Option" && ev.Variant == "None"
	}
	return false
}

func isNumeric(obj Object) bool {
	t := obj.Type()
	return t == INTEGER_OBJ || t == FLOAT_OBJ
}

func asFloat(obj Object) float64 {
	switch v := obj.(type) {
	case *Integer:
		return float64(v.Value)
	case *Float:
		return v.Value
	}
	return 0
}

// intPow is exponentiation by squaring; results wrap like other integer
// arithmetic. Negative exponents yield 0 except for base 1 and -1.
func intPow(base, exp int64) int64 {
	if exp < 0 {
		switch base {
		case 1:
			return 1
		case -1:
			if exp%2 == 0 {
				return 1
			}
			return -1
		}
		return 0
	}
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}
