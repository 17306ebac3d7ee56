package evaluator

import (
	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
	rerrors "github.com/ruchy-lang/ruchy/pkg/ruchy/errors"
)

func (in *Interp) evalImport(n *ast.ImportExpression, env *Environment) Object {
	mod, errObj := in.loadModuleObject(n.Module)
	if errObj != nil {
		if err, ok := errObj.(*Error); ok && err.Err != nil && err.Err.Line == 0 {
			err.Err.Line = n.Token.Line
			err.Err.Column = n.Token.Column
		}
		return errObj
	}

	// Selective import binds the named members directly.
	if len(n.Items) > 0 {
		for _, item := range n.Items {
			value, ok := mod.Bindings[item]
			if !ok {
				return newErrorAt("UNDEF-0002", n.Token.Line, n.Token.Column, map[string]any{
					"Field": item, "Type": mod.Name,
				})
			}
			env.Set(item, value)
		}
		return NULL
	}

	name := n.Module
	if n.Alias != "" {
		name = n.Alias
	}
	env.Set(name, mod)
	return NULL
}

// loadModuleObject resolves, evaluates, and caches a module by name.
func (in *Interp) loadModuleObject(name string) (*Module, Object) {
	if mod, ok := in.modules[name]; ok {
		return mod, nil
	}
	if in.loader == nil {
		return nil, newError("IMPORT-0001", map[string]any{"Name": name, "Paths": "(no loader)"})
	}

	parsed, err := in.loader.LoadModule(name)
	if err != nil {
		if rerr, ok := err.(*rerrors.RuchyError); ok {
			return nil, &Error{Err: rerr}
		}
		return nil, newError("IMPORT-0003", map[string]any{"Name": name, "Cause": err.Error()})
	}

	mod, errObj := in.evalModuleProgram(name, parsed.AST)
	if errObj != nil {
		return nil, errObj
	}
	in.modules[name] = mod
	return mod, nil
}

// evalModuleProgram runs a module body in its own top-level scope and
// collects its public bindings. Explicit exports narrow the surface;
// without any, every top-level binding is public.
func (in *Interp) evalModuleProgram(name string, program *ast.Program) (*Module, Object) {
	scope := NewEnvironment()
	var exported []string

	for _, expr := range program.Expressions {
		if ex, ok := expr.(*ast.ExportExpression); ok {
			if n := declaredName(ex.Item); n != "" {
				exported = append(exported, n)
			}
		}
		result := in.evalExpr(expr, scope)
		if err, ok := result.(*Error); ok {
			return nil, newError("IMPORT-0003", map[string]any{
				"Name": name, "Cause": err.Inspect(),
			})
		}
	}

	mod := &Module{Name: name, Bindings: make(map[string]Object)}
	if len(exported) > 0 {
		for _, n := range exported {
			if value, ok := scope.Get(n); ok {
				mod.Bindings[n] = value
			}
		}
	} else {
		for n, value := range scope.store {
			mod.Bindings[n] = value
		}
	}
	return mod, nil
}

// evalModuleExpr handles inline module blocks: the body runs once in its
// own scope and the resulting bindings become a module value.
func (in *Interp) evalModuleExpr(n *ast.ModuleExpression, env *Environment) Object {
	scope := NewEnclosedEnvironment(env)

	if block, ok := n.Body.(*ast.BlockExpression); ok {
		for _, expr := range block.Expressions {
			result := in.evalExpr(expr, scope)
			if isError(result) {
				return result
			}
		}
	} else {
		result := in.evalExpr(n.Body, scope)
		if isError(result) {
			return result
		}
	}

	mod := &Module{Name: n.Name, Bindings: make(map[string]Object, len(scope.store))}
	for name, value := range scope.store {
		mod.Bindings[name] = value
	}
	env.Set(n.Name, mod)
	return NULL
}

// declaredName extracts the binding name a declaration introduces.
func declaredName(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.FunctionLiteral:
		return e.Name
	case *ast.LetExpression:
		return e.Name.Value
	case *ast.StructDefinition:
		return e.Name
	case *ast.EnumDefinition:
		return e.Name
	case *ast.ActorDefinition:
		return e.Name
	case *ast.TraitDefinition:
		return e.Name
	}
	return ""
}
