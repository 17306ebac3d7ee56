package evaluator

// Environment is one scope in the lexical chain. Closures keep a handle
// to their defining environment, so mutations through Assign are visible
// to every closure sharing the scope.
type Environment struct {
	store map[string]Object
	outer *Environment
}

// NewEnvironment creates an empty top-level scope.
func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Object)}
}

// NewEnclosedEnvironment creates a child scope.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// Get resolves a name, walking outward.
func (e *Environment) Get(name string) (Object, bool) {
	if obj, ok := e.store[name]; ok {
		return obj, true
	}
	if e.outer != nil {
		return e.outer.Get(name)
	}
	return nil, false
}

// Set binds a name in the current scope, shadowing outer bindings.
func (e *Environment) Set(name string, val Object) Object {
	e.store[name] = val
	return val
}

// Assign mutates the innermost scope that already defines the name, or
// creates the binding in the current scope when none does. This is what
// lets closures mutate captured variables.
func (e *Environment) Assign(name string, val Object) Object {
	for scope := e; scope != nil; scope = scope.outer {
		if _, ok := scope.store[name]; ok {
			scope.store[name] = val
			return val
		}
	}
	e.store[name] = val
	return val
}

// Bindings returns a copy of the names defined directly in this scope.
func (e *Environment) Bindings() map[string]Object {
	out := make(map[string]Object, len(e.store))
	for name, val := range e.store {
		out[name] = val
	}
	return out
}

// Depth counts the scopes from here to the root. Try/catch snapshots it
// to know how far an error unwound.
func (e *Environment) Depth() int {
	depth := 0
	for scope := e; scope != nil; scope = scope.outer {
		depth++
	}
	return depth
}
