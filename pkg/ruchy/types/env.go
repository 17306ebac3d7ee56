package types

// TypeEnv maps names to type schemes with lexical nesting.
type TypeEnv struct {
	bindings map[string]*TypeScheme
	outer    *TypeEnv
}

// NewTypeEnv creates an empty environment.
func NewTypeEnv() *TypeEnv {
	return &TypeEnv{bindings: make(map[string]*TypeScheme)}
}

// NewEnclosedTypeEnv creates a child scope.
func NewEnclosedTypeEnv(outer *TypeEnv) *TypeEnv {
	env := NewTypeEnv()
	env.outer = outer
	return env
}

// Get resolves a name, walking outward through enclosing scopes.
func (e *TypeEnv) Get(name string) (*TypeScheme, bool) {
	if scheme, ok := e.bindings[name]; ok {
		return scheme, true
	}
	if e.outer != nil {
		return e.outer.Get(name)
	}
	return nil, false
}

// Set binds a name in the current scope.
func (e *TypeEnv) Set(name string, scheme *TypeScheme) {
	e.bindings[name] = scheme
}

// freeVars collects the free variables of every scheme in scope.
func (e *TypeEnv) freeVars(set map[int]bool) {
	for _, scheme := range e.bindings {
		bodyVars := FreeVars(scheme.Body)
		for _, id := range scheme.Vars {
			delete(bodyVars, id)
		}
		for id := range bodyVars {
			set[id] = true
		}
	}
	if e.outer != nil {
		e.outer.freeVars(set)
	}
}

// Generalize quantifies the variables of t that are not free in the
// environment, producing a polymorphic scheme.
func (e *TypeEnv) Generalize(t Type) *TypeScheme {
	envVars := make(map[int]bool)
	e.freeVars(envVars)

	var vars []int
	for id := range FreeVars(t) {
		if !envVars[id] {
			vars = append(vars, id)
		}
	}
	return &TypeScheme{Vars: vars, Body: t}
}

// Standard returns the environment pre-bound with built-in functions.
// Polymorphic built-ins quantify negative variable IDs so they never
// collide with generator-issued ones.
func Standard() *TypeEnv {
	env := NewTypeEnv()

	a := &TVar{ID: -1}
	b := &TVar{ID: -2}

	poly := func(body Type, vars ...int) *TypeScheme {
		return &TypeScheme{Vars: vars, Body: body}
	}

	// Output
	env.Set("println", poly(Func([]Type{a}, Unit), -1))
	env.Set("print", poly(Func([]Type{a}, Unit), -1))
	env.Set("eprintln", poly(Func([]Type{a}, Unit), -1))
	env.Set("dbg", poly(Func([]Type{a}, a), -1))

	// Conversion and introspection
	env.Set("to_string", poly(Func([]Type{a}, Str), -1))
	env.Set("parse_int", Mono(Func([]Type{Str}, Result(Int, Str))))
	env.Set("parse_float", Mono(Func([]Type{Str}, Result(Float, Str))))
	env.Set("type_of", poly(Func([]Type{a}, Str), -1))
	env.Set("len", poly(Func([]Type{a}, Int), -1))

	// Numerics
	env.Set("abs", Mono(Func([]Type{Int}, Int)))
	env.Set("min", Mono(Func([]Type{Int, Int}, Int)))
	env.Set("max", Mono(Func([]Type{Int, Int}, Int)))
	env.Set("pow", Mono(Func([]Type{Float, Float}, Float)))
	env.Set("sqrt", Mono(Func([]Type{Float}, Float)))
	env.Set("floor", Mono(Func([]Type{Float}, Int)))
	env.Set("ceil", Mono(Func([]Type{Float}, Int)))
	env.Set("round", Mono(Func([]Type{Float}, Int)))
	env.Set("random", Mono(Func(nil, Float)))

	// Collections
	env.Set("range", Mono(Func([]Type{Int, Int}, List(Int))))
	env.Set("push", poly(Func([]Type{List(a), a}, List(a)), -1))
	env.Set("sorted", poly(Func([]Type{List(a)}, List(a)), -1))
	env.Set("reversed", poly(Func([]Type{List(a)}, List(a)), -1))
	env.Set("zip", poly(Func([]Type{List(a), List(b)}, List(&TTuple{Elems: []Type{a, b}})), -1, -2))
	env.Set("enumerate", poly(Func([]Type{List(a)}, List(&TTuple{Elems: []Type{Int, a}})), -1))

	// Polymorphic identities used by inference
	env.Set("identity", poly(Func([]Type{a}, a), -1))
	env.Set("assert", Mono(Func([]Type{Bool}, Unit)))
	env.Set("assert_eq", poly(Func([]Type{a, a}, Unit), -1))
	env.Set("panic", poly(Func([]Type{Str}, a), -1))

	// IO
	env.Set("input", Mono(Func(nil, Str)))
	env.Set("read_file", Mono(Func([]Type{Str}, Result(Str, Str))))
	env.Set("write_file", Mono(Func([]Type{Str, Str}, Result(Unit, Str))))

	return env
}
