package evaluator

import (
	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
)

// instantiateActor builds an actor instance: state fields from defaults,
// overridden positionally, plus the handler table. Execution stays on the
// calling goroutine; messages run one at a time, in send order.
func (in *Interp) instantiateActor(def *ast.ActorDefinition, args []Object) Object {
	if len(args) > len(def.Fields) {
		return newError("ARITY-0001", map[string]any{
			"Expected": len(def.Fields), "Got": len(args),
		})
	}

	actor := &Actor{
		Name:     def.Name,
		Fields:   make(map[string]Object, len(def.Fields)),
		Handlers: make(map[string]*ast.ActorHandler, len(def.Handlers)),
	}
	for i, field := range def.Fields {
		if i < len(args) {
			actor.Fields[field.Name] = args[i]
			continue
		}
		if field.Default != nil {
			value := in.evalExpr(field.Default, NewEnvironment())
			if isControl(value) {
				return value
			}
			actor.Fields[field.Name] = value
			continue
		}
		actor.Fields[field.Name] = zeroValueFor(field.Type)
	}
	for _, h := range def.Handlers {
		actor.Handlers[h.Message] = h
	}
	return actor
}

// zeroValueFor picks an initial value for an unannotated actor field.
func zeroValueFor(t ast.TypeExpr) Object {
	switch typeExprName(t) {
	case "Int", "i32", "i64":
		return &Integer{Value: 0}
	case "Float", "f32", "f64":
		return &Float{Value: 0}
	case "String", "str":
		return &String{Value: ""}
	case "Bool":
		return FALSE
	}
	if _, ok := t.(*ast.ListType); ok {
		return &Array{}
	}
	return NULL
}

func (in *Interp) evalSpawn(n *ast.SpawnExpression, env *Environment) Object {
	target := in.evalExpr(n.Target, env)
	if isControl(target) {
		return target
	}
	switch t := target.(type) {
	case *Actor:
		// spawn Counter() already instantiated through the call.
		t.Env = env
		return t
	case *Constructor:
		if t.ActorDef != nil {
			instance := in.instantiateActor(t.ActorDef, nil)
			if actor, ok := instance.(*Actor); ok {
				actor.Env = env
			}
			return instance
		}
	}
	return newErrorAt("OP-0005", n.Token.Line, n.Token.Column, map[string]any{
		"Value": target.Inspect(),
	})
}

// evalSend delivers a fire-and-forget message. The handler runs before
// evalSend returns; its result is discarded.
func (in *Interp) evalSend(n *ast.SendExpression, env *Environment) Object {
	actor, result := in.deliverMessage(n.Actor, n.Message, env)
	if actor == nil {
		return result
	}
	if isError(result) {
		return result
	}
	return NULL
}

// evalAsk delivers a request message and returns the handler's value.
func (in *Interp) evalAsk(n *ast.AskExpression, env *Environment) Object {
	actor, result := in.deliverMessage(n.Actor, n.Message, env)
	if actor == nil {
		return result
	}
	return result
}

// deliverMessage resolves the target actor and runs the named handler.
// The first return is nil when the target could not be resolved.
func (in *Interp) deliverMessage(actorExpr, message ast.Expression, env *Environment) (*Actor, Object) {
	target := in.evalExpr(actorExpr, env)
	if isControl(target) {
		return nil, target
	}
	actor, ok := target.(*Actor)
	if !ok {
		return nil, newError("OP-0005", map[string]any{"Value": target.Inspect()})
	}

	name, args, errObj := in.messageParts(message, env)
	if errObj != nil {
		return nil, errObj
	}
	return actor, in.runHandler(actor, name, args)
}

// messageParts splits a message expression into a handler name and
// evaluated arguments. Bare identifiers are no-argument messages.
func (in *Interp) messageParts(message ast.Expression, env *Environment) (string, []Object, Object) {
	switch m := message.(type) {
	case *ast.Identifier:
		return m.Value, nil, nil
	case *ast.CallExpression:
		name := ""
		switch fn := m.Function.(type) {
		case *ast.Identifier:
			name = fn.Value
		default:
			name = fn.String()
		}
		args, errObj := in.evalExpressions(m.Arguments, env)
		if errObj != nil {
			return "", nil, errObj
		}
		return name, args, nil
	case *ast.AtomLiteral:
		return m.Value, nil, nil
	}
	return "", nil, newError("OP-0005", map[string]any{"Value": message.String()})
}

// runHandler executes one message handler. Handler bodies see the actor's
// fields through self, parameters bound positionally, and the defining
// scope for everything else. Field writes through self persist.
func (in *Interp) runHandler(actor *Actor, name string, args []Object) Object {
	handler, ok := actor.Handlers[name]
	if !ok {
		return newError("UNDEF-0003", map[string]any{
			"Actor": actor.Name, "Message": name,
		})
	}

	outer := actor.Env
	if outer == nil {
		outer = NewEnvironment()
	}
	scope := NewEnclosedEnvironment(outer)
	scope.Set("self", actor)

	required := 0
	for _, p := range handler.Params {
		if p.Default == nil {
			required++
		}
	}
	if len(args) < required || len(args) > len(handler.Params) {
		return newError("ARITY-0001", map[string]any{
			"Expected": len(handler.Params), "Got": len(args),
		})
	}
	for i, p := range handler.Params {
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

	if in.callDepth >= maxCallDepth {
		return newError("STATE-0001", map[string]any{"Limit": maxCallDepth})
	}
	in.callDepth++
	result := in.evalExpr(handler.Body, scope)
	in.callDepth--

	if rv, ok := result.(*ReturnValue); ok {
		return rv.Value
	}
	return result
}
