package infer

import (
	rerrors "github.com/ruchy-lang/ruchy/pkg/ruchy/errors"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/types"
)

// Constraint is a typing obligation deferred until the AST walk finishes,
// when more variables have been resolved.
type Constraint interface {
	solve(in *Inferencer) error
}

// UnifyConstraint requires two types to be equal.
type UnifyConstraint struct {
	A, B types.Type
}

func (c *UnifyConstraint) solve(in *Inferencer) error {
	return in.uni.Unify(c.A, c.B)
}

// FunctionArityConstraint requires a function type to accept exactly N
// arguments. It only fires once the callee has resolved to a concrete
// curried chain; unresolved callees stay unconstrained.
type FunctionArityConstraint struct {
	Fn types.Type
	N  int
}

func (c *FunctionArityConstraint) solve(in *Inferencer) error {
	resolved := in.uni.Resolve(c.Fn)
	if _, ok := resolved.(*types.TVar); ok {
		return nil
	}
	fn, ok := resolved.(*types.TFunc)
	if !ok {
		return nil
	}
	arity := types.Arity(fn)
	// Nullary functions carry a synthetic Unit parameter.
	params, _ := types.Uncurry(fn)
	if arity == 1 && len(params) == 1 && params[0] == types.Unit && c.N == 0 {
		return nil
	}
	// A call may supply fewer arguments than the chain has arrows when the
	// result is itself a function (partial application).
	if c.N > arity {
		return rerrors.New("TYPE-0003", map[string]any{
			"Expected": arity,
			"Got":      c.N,
		})
	}
	return nil
}

// IterableConstraint requires a collection type to yield elements of a
// given type when iterated.
type IterableConstraint struct {
	Collection types.Type
	Elem       types.Type
}

func (c *IterableConstraint) solve(in *Inferencer) error {
	coll := in.uni.Resolve(c.Collection)
	switch ct := coll.(type) {
	case *types.TVar:
		// Default an unresolved collection to a list of the element type.
		return in.uni.Unify(ct, types.List(c.Elem))
	case *types.TCon:
		if ct.Name == "String" {
			return in.uni.Unify(c.Elem, types.Char)
		}
		if ct.Name == "Any" {
			return nil
		}
	case *types.TApp:
		switch ct.Name {
		case "List":
			return in.uni.Unify(c.Elem, ct.Args[0])
		case "HashMap":
			return in.uni.Unify(c.Elem, ct.Args[0])
		case "Option":
			return in.uni.Unify(c.Elem, ct.Args[0])
		}
	case *types.TDataFrame:
		return nil
	case *types.TSeries:
		return in.uni.Unify(c.Elem, ct.Elem)
	}
	return rerrors.New("TYPE-0005", map[string]any{
		"Type": coll.String(),
	})
}

// MethodCallConstraint types receiver.method(args) against the built-in
// method tables once the receiver has resolved.
type MethodCallConstraint struct {
	Receiver types.Type
	Name     string
	Args     []types.Type
	Result   types.Type
}

func (c *MethodCallConstraint) solve(in *Inferencer) error {
	recv := in.uni.Resolve(c.Receiver)

	switch rt := recv.(type) {
	case *types.TApp:
		if rt.Name == "List" {
			return in.solveListMethod(c, rt.Args[0])
		}
		if rt.Name == "HashMap" {
			return in.solveHashMapMethod(c, rt.Args[0], rt.Args[1])
		}
	case *types.TCon:
		if rt.Name == "String" {
			return in.solveStringMethod(c)
		}
	case *types.TDataFrame:
		return in.solveDataFrameMethod(c, rt)
	case *types.TSeries:
		return in.solveSeriesMethod(c, rt.Elem)
	}
	// Unknown receivers and user-defined methods stay permissive; the
	// evaluator reports missing methods at runtime.
	return nil
}

func (in *Inferencer) solveListMethod(c *MethodCallConstraint, elem types.Type) error {
	u := in.uni
	switch c.Name {
	case "len":
		return u.Unify(c.Result, types.Int)
	case "push":
		if len(c.Args) == 1 {
			if err := u.Unify(c.Args[0], elem); err != nil {
				return err
			}
		}
		return u.Unify(c.Result, types.List(elem))
	case "pop":
		return u.Unify(c.Result, types.Option(elem))
	case "sorted", "reversed", "unique":
		return u.Unify(c.Result, types.List(elem))
	case "sum", "min", "max":
		return u.Unify(c.Result, elem)
	case "map":
		out := in.fresh()
		if len(c.Args) == 1 {
			if err := u.Unify(c.Args[0], &types.TFunc{Arg: elem, Ret: out}); err != nil {
				return err
			}
		}
		return u.Unify(c.Result, types.List(out))
	case "filter":
		if len(c.Args) == 1 {
			if err := u.Unify(c.Args[0], &types.TFunc{Arg: elem, Ret: types.Bool}); err != nil {
				return err
			}
		}
		return u.Unify(c.Result, types.List(elem))
	case "reduce":
		acc := in.fresh()
		if len(c.Args) == 2 {
			if err := u.Unify(c.Args[0], acc); err != nil {
				return err
			}
			step := &types.TFunc{Arg: acc, Ret: &types.TFunc{Arg: elem, Ret: acc}}
			if err := u.Unify(c.Args[1], step); err != nil {
				return err
			}
		}
		return u.Unify(c.Result, acc)
	}
	return nil
}

func (in *Inferencer) solveStringMethod(c *MethodCallConstraint) error {
	u := in.uni
	switch c.Name {
	case "len":
		return u.Unify(c.Result, types.Int)
	case "chars":
		return u.Unify(c.Result, types.List(types.Char))
	case "trim", "to_upper", "to_lower":
		return u.Unify(c.Result, types.Str)
	case "split":
		return u.Unify(c.Result, types.List(types.Str))
	case "contains", "starts_with", "ends_with":
		return u.Unify(c.Result, types.Bool)
	}
	return nil
}

func (in *Inferencer) solveHashMapMethod(c *MethodCallConstraint, key, value types.Type) error {
	u := in.uni
	switch c.Name {
	case "insert":
		if len(c.Args) == 2 {
			if err := u.Unify(c.Args[0], key); err != nil {
				return err
			}
			if err := u.Unify(c.Args[1], value); err != nil {
				return err
			}
		}
		return u.Unify(c.Result, types.Unit)
	case "get":
		if len(c.Args) == 1 {
			if err := u.Unify(c.Args[0], key); err != nil {
				return err
			}
		}
		return u.Unify(c.Result, types.Option(value))
	case "contains_key":
		if len(c.Args) == 1 {
			if err := u.Unify(c.Args[0], key); err != nil {
				return err
			}
		}
		return u.Unify(c.Result, types.Bool)
	case "len":
		return u.Unify(c.Result, types.Int)
	case "keys":
		return u.Unify(c.Result, types.List(key))
	case "values":
		return u.Unify(c.Result, types.List(value))
	}
	return nil
}

func (in *Inferencer) solveDataFrameMethod(c *MethodCallConstraint, df *types.TDataFrame) error {
	u := in.uni
	switch c.Name {
	case "filter", "select", "groupby", "agg", "sort", "join", "head", "tail", "limit":
		return u.Unify(c.Result, df)
	case "col":
		return u.Unify(c.Result, &types.TSeries{Elem: types.Any})
	case "rows", "count":
		return u.Unify(c.Result, types.Int)
	}
	return nil
}

func (in *Inferencer) solveSeriesMethod(c *MethodCallConstraint, elem types.Type) error {
	u := in.uni
	switch c.Name {
	case "mean", "std":
		return u.Unify(c.Result, types.Float)
	case "sum", "min", "max":
		return u.Unify(c.Result, elem)
	case "count":
		return u.Unify(c.Result, types.Int)
	}
	return nil
}
