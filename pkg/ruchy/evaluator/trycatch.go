package evaluator

import (
	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
)

func (in *Interp) evalTryCatch(n *ast.TryCatchExpression, env *Environment) Object {
	result := in.evalExpr(n.Body, NewEnclosedEnvironment(env))

	if err, ok := result.(*Error); ok {
		caught := false
		catchable := catchValue(err)
		for _, clause := range n.Catches {
			bindings, matched := tryPatternMatch(clause.Pattern, catchable)
			if !matched {
				continue
			}
			scope := NewEnclosedEnvironment(env)
			for _, b := range bindings {
				scope.Set(b.name, b.value)
			}
			result = in.evalExpr(clause.Body, scope)
			caught = true
			break
		}
		if !caught {
			result = err
		}
	}

	// The finally block always runs. Its own unwinding replaces the
	// pending result; otherwise the pending result stands.
	if n.Finally != nil {
		final := in.evalExpr(n.Finally, NewEnclosedEnvironment(env))
		if isControl(final) {
			return final
		}
	}
	return result
}

// catchValue is what a catch pattern sees: the thrown payload, or a
// record describing a runtime error.
func catchValue(err *Error) Object {
	if err.Payload != nil {
		return err.Payload
	}
	rec := &Record{Fields: make(map[string]Object, 2)}
	rec.Set("code", &String{Value: err.Err.Code})
	rec.Set("message", &String{Value: err.Err.Message})
	return rec
}

// evalTryOp implements postfix ?: Ok and Some unwrap in place, Err and
// None propagate to the enclosing function.
func (in *Interp) evalTryOp(n *ast.TryOpExpression, env *Environment) Object {
	value := in.evalExpr(n.Value, env)
	if isControl(value) {
		return value
	}
	ev, ok := value.(*EnumVariant)
	if !ok {
		return value
	}
	switch {
	case ev.Enum == "Result" && ev.Variant == "Ok":
		return variantPayload(ev)
	case ev.Enum == "Option" && ev.Variant == "Some":
		return variantPayload(ev)
	case ev.Enum == "Result" && ev.Variant == "Err":
		return &ReturnValue{Value: ev}
	case ev.Enum == "Option" && ev.Variant == "None":
		return &ReturnValue{Value: ev}
	}
	return value
}
