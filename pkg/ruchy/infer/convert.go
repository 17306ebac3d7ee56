package infer

import (
	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/types"
)

// fromTypeExpr lowers a syntactic type annotation to a monotype. Unknown
// names become fresh variables so unannotated generics stay inferable.
func (in *Inferencer) fromTypeExpr(te ast.TypeExpr) types.Type {
	switch t := te.(type) {
	case *ast.NamedType:
		switch t.Name {
		case "Int", "i32", "i64":
			return types.Int
		case "Float", "f32", "f64":
			return types.Float
		case "String", "str":
			return types.Str
		case "Bool":
			return types.Bool
		case "Char":
			return types.Char
		case "Byte", "u8":
			return types.Byte
		case "Unit", "()":
			return types.Unit
		case "Any":
			return types.Any
		case "DataFrame":
			return &types.TDataFrame{}
		}
		if rec, ok := in.structs[t.Name]; ok {
			return rec
		}
		if info, ok := in.enums[t.Name]; ok {
			return &types.TApp{Name: info.name}
		}
		// Generic parameters and not-yet-declared names.
		return in.fresh()

	case *ast.GenericType:
		args := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			args[i] = in.fromTypeExpr(p)
		}
		base := t.Base
		if base == "Vec" {
			base = "List"
		}
		return &types.TApp{Name: base, Args: args}

	case *ast.OptionalType:
		return types.Option(in.fromTypeExpr(t.Inner))

	case *ast.ListType:
		return types.List(in.fromTypeExpr(t.Elem))

	case *ast.ArrayType:
		return types.List(in.fromTypeExpr(t.Elem))

	case *ast.FunctionType:
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = in.fromTypeExpr(p)
		}
		return types.Func(params, in.fromTypeExpr(t.Return))

	case *ast.TupleType:
		elems := make([]types.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = in.fromTypeExpr(e)
		}
		return &types.TTuple{Elems: elems}

	case *ast.ReferenceType:
		return types.Reference(in.fromTypeExpr(t.Inner))

	case *ast.DataFrameType:
		cols := make(map[string]types.Type, len(t.Columns))
		for _, c := range t.Columns {
			cols[c.Name] = in.fromTypeExpr(c.Type)
		}
		return &types.TDataFrame{Columns: cols}

	case *ast.SeriesType:
		return &types.TSeries{Elem: in.fromTypeExpr(t.Dtype)}

	case *ast.RefinedType:
		// Refinement predicates are not checked structurally; only the
		// base participates in unification.
		return in.fromTypeExpr(t.Base)
	}
	return in.fresh()
}

// bindPattern unifies a pattern against the type of the matched value and
// introduces the pattern's bindings into env.
func (in *Inferencer) bindPattern(pat ast.Pattern, valueT types.Type, env *types.TypeEnv) error {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return nil

	case *ast.IdentifierPattern:
		env.Set(p.Name, types.Mono(valueT))
		return nil

	case *ast.MutPattern:
		return in.bindPattern(p.Inner, valueT, env)

	case *ast.LiteralPattern:
		litT, err := in.inferExpr(p.Value, env)
		if err != nil {
			return err
		}
		return in.uni.Unify(valueT, litT)

	case *ast.RangePattern:
		return in.uni.Unify(valueT, types.Int)

	case *ast.QualifiedNamePattern:
		if len(p.Parts) == 2 {
			if info, ok := in.enums[p.Parts[0]]; ok {
				return in.uni.Unify(valueT, &types.TApp{Name: info.name})
			}
		}
		return nil

	case *ast.TupleVariantPattern:
		var fields []types.Type
		var enumName string
		if len(p.Path) == 2 {
			if info, ok := in.enums[p.Path[0]]; ok {
				enumName = info.name
				fields = info.variants[p.Path[1]]
			}
		} else if len(p.Path) == 1 {
			for _, info := range in.enums {
				if f, ok := info.variants[p.Path[0]]; ok {
					enumName = info.name
					fields = f
					break
				}
			}
		}
		if enumName != "" {
			if err := in.uni.Unify(valueT, &types.TApp{Name: enumName}); err != nil {
				return err
			}
		}
		for i, sub := range p.Patterns {
			var fieldT types.Type
			if i < len(fields) {
				fieldT = fields[i]
			} else {
				fieldT = in.fresh()
			}
			if err := in.bindPattern(sub, fieldT, env); err != nil {
				return err
			}
		}
		return nil

	case *ast.TuplePattern:
		elems := make([]types.Type, len(p.Elements))
		for i := range p.Elements {
			elems[i] = in.fresh()
		}
		if err := in.uni.Unify(valueT, &types.TTuple{Elems: elems}); err != nil {
			return err
		}
		for i, sub := range p.Elements {
			if err := in.bindPattern(sub, elems[i], env); err != nil {
				return err
			}
		}
		return nil

	case *ast.ListPattern:
		elem := in.fresh()
		if err := in.uni.Unify(valueT, types.List(elem)); err != nil {
			return err
		}
		for _, sub := range p.Elements {
			switch rest := sub.(type) {
			case *ast.RestPattern:
				continue
			case *ast.RestNamedPattern:
				env.Set(rest.Name, types.Mono(types.List(elem)))
				continue
			}
			if err := in.bindPattern(sub, elem, env); err != nil {
				return err
			}
		}
		return nil

	case *ast.StructPattern:
		rec, ok := in.structs[p.Name]
		if ok {
			if err := in.uni.Unify(valueT, rec); err != nil {
				return err
			}
		}
		for _, f := range p.Fields {
			var fieldT types.Type
			if ok {
				if ft, found := rec.Fields[f.Name]; found {
					fieldT = ft
				}
			}
			if fieldT == nil {
				fieldT = in.fresh()
			}
			if f.Pattern == nil {
				env.Set(f.Name, types.Mono(fieldT))
				continue
			}
			if err := in.bindPattern(f.Pattern, fieldT, env); err != nil {
				return err
			}
		}
		return nil

	case *ast.OkPattern:
		ok := in.fresh()
		if err := in.uni.Unify(valueT, types.Result(ok, in.fresh())); err != nil {
			return err
		}
		return in.bindPattern(p.Inner, ok, env)

	case *ast.ErrPattern:
		errT := in.fresh()
		if err := in.uni.Unify(valueT, types.Result(in.fresh(), errT)); err != nil {
			return err
		}
		return in.bindPattern(p.Inner, errT, env)

	case *ast.SomePattern:
		inner := in.fresh()
		if err := in.uni.Unify(valueT, types.Option(inner)); err != nil {
			return err
		}
		return in.bindPattern(p.Inner, inner, env)

	case *ast.NonePattern:
		return in.uni.Unify(valueT, types.Option(in.fresh()))

	case *ast.OrPattern:
		// Every alternative must match the same value type; bindings are
		// introduced by each alternative in turn.
		for _, alt := range p.Alternatives {
			if err := in.bindPattern(alt, valueT, env); err != nil {
				return err
			}
		}
		return nil

	case *ast.AtBindingPattern:
		env.Set(p.Name, types.Mono(valueT))
		return in.bindPattern(p.Pattern, valueT, env)

	case *ast.WithDefaultPattern:
		if err := in.unifyExpr(p.Default, valueT, env); err != nil {
			return err
		}
		return in.bindPattern(p.Pattern, valueT, env)

	case *ast.RestPattern:
		return nil

	case *ast.RestNamedPattern:
		env.Set(p.Name, types.Mono(valueT))
		return nil
	}
	return nil
}
