package types

import (
	"testing"
)

func TestCurriedFunctionConstruction(t *testing.T) {
	ft := Func([]Type{Int, Str}, Bool)
	if ft.String() != "Int -> String -> Bool" {
		t.Errorf("unexpected curried type: %s", ft.String())
	}
	params, ret := Uncurry(ft)
	if len(params) != 2 || ret != Bool {
		t.Errorf("uncurry mismatch: %v -> %v", params, ret)
	}
	if Arity(ft) != 2 {
		t.Errorf("expected arity 2, got %d", Arity(ft))
	}
}

func TestNullaryFunction(t *testing.T) {
	ft := Func(nil, Int)
	if ft.String() != "Unit -> Int" {
		t.Errorf("unexpected nullary type: %s", ft.String())
	}
}

func TestFunctionArgParenthesized(t *testing.T) {
	higher := Func([]Type{Func([]Type{Int}, Int)}, Int)
	if higher.String() != "(Int -> Int) -> Int" {
		t.Errorf("unexpected higher-order type: %s", higher.String())
	}
}

func TestUnifyPrimitives(t *testing.T) {
	u := NewUnifier()
	if err := u.Unify(Int, Int); err != nil {
		t.Errorf("Int ~ Int failed: %v", err)
	}
	if err := u.Unify(Int, Str); err == nil {
		t.Error("Int ~ String should fail")
	}
	if err := u.Unify(Any, Str); err != nil {
		t.Errorf("Any ~ String failed: %v", err)
	}
}

func TestUnifyVariables(t *testing.T) {
	gen := &TyVarGenerator{}
	u := NewUnifier()

	v := gen.Fresh()
	if err := u.Unify(v, Int); err != nil {
		t.Fatalf("var ~ Int failed: %v", err)
	}
	if got := u.Resolve(v); got.String() != "Int" {
		t.Errorf("expected Int, got %s", got)
	}

	// Transitive binding through a second variable
	w := gen.Fresh()
	if err := u.Unify(w, v); err != nil {
		t.Fatalf("var ~ var failed: %v", err)
	}
	if got := u.Resolve(w); got.String() != "Int" {
		t.Errorf("expected Int through chain, got %s", got)
	}
}

func TestOccursCheck(t *testing.T) {
	gen := &TyVarGenerator{}
	u := NewUnifier()

	v := gen.Fresh()
	if err := u.Unify(v, List(v)); err == nil {
		t.Error("expected occurs check failure for t ~ List<t>")
	}
}

func TestUnifyStructural(t *testing.T) {
	gen := &TyVarGenerator{}
	u := NewUnifier()

	elem := gen.Fresh()
	if err := u.Unify(List(elem), List(Int)); err != nil {
		t.Fatalf("List<t> ~ List<Int> failed: %v", err)
	}
	if got := u.Resolve(elem); got.String() != "Int" {
		t.Errorf("expected elem Int, got %s", got)
	}

	if err := u.Unify(List(Int), Option(Int)); err == nil {
		t.Error("List<Int> ~ Option<Int> should fail")
	}

	a, b := gen.Fresh(), gen.Fresh()
	if err := u.Unify(Func([]Type{a}, b), Func([]Type{Int}, Bool)); err != nil {
		t.Fatalf("function unification failed: %v", err)
	}
	if u.Resolve(a).String() != "Int" || u.Resolve(b).String() != "Bool" {
		t.Errorf("function parts not bound: %s, %s", u.Resolve(a), u.Resolve(b))
	}
}

func TestUnifyTuples(t *testing.T) {
	u := NewUnifier()
	pair := &TTuple{Elems: []Type{Int, Str}}
	if err := u.Unify(pair, &TTuple{Elems: []Type{Int, Str}}); err != nil {
		t.Errorf("tuple unification failed: %v", err)
	}
	if err := u.Unify(pair, &TTuple{Elems: []Type{Int}}); err == nil {
		t.Error("tuple arity mismatch should fail")
	}
}

func TestUnifyDataFrames(t *testing.T) {
	u := NewUnifier()
	known := &TDataFrame{Columns: map[string]Type{"age": Int}}
	if err := u.Unify(known, &TDataFrame{}); err != nil {
		t.Errorf("DataFrame unification failed: %v", err)
	}
	if err := u.Unify(&TSeries{Elem: Int}, &TSeries{Elem: Float}); err == nil {
		t.Error("Series<Int> ~ Series<Float> should fail")
	}
}

func TestSubstCompose(t *testing.T) {
	gen := &TyVarGenerator{}
	v1, v2 := gen.Fresh(), gen.Fresh()

	s1 := Subst{v1.ID: v2}
	s2 := Subst{v2.ID: Int}
	composed := s1.Compose(s2)

	if got := composed.Apply(v1); got.String() != "Int" {
		t.Errorf("composed substitution: expected Int, got %s", got)
	}
}

func TestGeneralizeAndInstantiate(t *testing.T) {
	gen := &TyVarGenerator{}
	env := NewTypeEnv()

	v := gen.Fresh()
	scheme := env.Generalize(Func([]Type{v}, v))
	if len(scheme.Vars) != 1 {
		t.Fatalf("expected 1 quantified var, got %d", len(scheme.Vars))
	}

	first := scheme.Instantiate(gen)
	second := scheme.Instantiate(gen)
	if first.String() == second.String() {
		t.Error("instantiations should use distinct fresh variables")
	}

	// A variable free in the environment must not be generalized.
	free := gen.Fresh()
	env.Set("pinned", Mono(free))
	scheme = env.Generalize(Func([]Type{free}, free))
	if len(scheme.Vars) != 0 {
		t.Errorf("env-free variable was generalized: %v", scheme.Vars)
	}
}

func TestEnvScoping(t *testing.T) {
	outer := NewTypeEnv()
	outer.Set("x", Mono(Int))

	inner := NewEnclosedTypeEnv(outer)
	inner.Set("x", Mono(Str))

	if scheme, _ := inner.Get("x"); scheme.Body != Str {
		t.Error("inner binding should shadow outer")
	}
	if scheme, _ := outer.Get("x"); scheme.Body != Int {
		t.Error("outer binding should be untouched")
	}
	if _, ok := inner.Get("y"); ok {
		t.Error("unbound name should not resolve")
	}
}

func TestStandardEnv(t *testing.T) {
	env := Standard()
	gen := &TyVarGenerator{}

	for _, name := range []string{"println", "len", "range", "push", "to_string"} {
		if _, ok := env.Get(name); !ok {
			t.Errorf("standard env missing %s", name)
		}
	}

	// println is polymorphic over its argument
	scheme, _ := env.Get("println")
	ft := scheme.Instantiate(gen)
	u := NewUnifier()
	if err := u.Unify(ft, Func([]Type{Str}, Unit)); err != nil {
		t.Errorf("println should accept String: %v", err)
	}
}
