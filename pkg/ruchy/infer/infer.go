// Package infer implements Hindley-Milner type inference (Algorithm W)
// over the expression AST. Constraints that cannot be solved at the point
// they arise are queued and drained after the walk completes.
package infer

import (
	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
	rerrors "github.com/ruchy-lang/ruchy/pkg/ruchy/errors"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/types"
)

// maxDepth bounds inference recursion on pathological input.
const maxDepth = 100

// Inferencer walks the AST accumulating a substitution and a constraint
// queue, then solves the queue.
type Inferencer struct {
	gen *types.TyVarGenerator
	uni *types.Unifier

	constraints []Constraint
	varPairs    [][2]types.Type

	structs map[string]*types.TRecord
	enums   map[string]*enumInfo
	actors  map[string]bool

	depth int
}

type enumInfo struct {
	name     string
	variants map[string][]types.Type
}

// New creates an inferencer.
func New() *Inferencer {
	return &Inferencer{
		gen:     &types.TyVarGenerator{},
		uni:     types.NewUnifier(),
		structs: make(map[string]*types.TRecord),
		enums:   make(map[string]*enumInfo),
		actors:  make(map[string]bool),
	}
}

// Infer types a whole program against the standard environment and returns
// the type of its final expression.
func (in *Inferencer) Infer(program *ast.Program) (types.Type, error) {
	env := types.Standard()
	return in.InferWithEnv(program, env)
}

// InferWithEnv types a program in a caller-provided environment.
func (in *Inferencer) InferWithEnv(program *ast.Program, env *types.TypeEnv) (types.Type, error) {
	var result types.Type = types.Unit
	for _, expr := range program.Expressions {
		t, err := in.inferExpr(expr, env)
		if err != nil {
			return nil, err
		}
		result = t
	}

	if err := in.drain(); err != nil {
		return nil, err
	}
	return in.uni.Resolve(result), nil
}

// drain solves the queued variable pairs and constraints.
func (in *Inferencer) drain() error {
	for _, pair := range in.varPairs {
		if err := in.uni.Unify(pair[0], pair[1]); err != nil {
			return err
		}
	}
	in.varPairs = nil

	for len(in.constraints) > 0 {
		c := in.constraints[0]
		in.constraints = in.constraints[1:]
		if err := c.solve(in); err != nil {
			return err
		}
	}
	return nil
}

func (in *Inferencer) fresh() *types.TVar { return in.gen.Fresh() }

func (in *Inferencer) queue(c Constraint) {
	in.constraints = append(in.constraints, c)
}

// inferExpr is the per-kind dispatch of Algorithm W.
func (in *Inferencer) inferExpr(node ast.Expression, env *types.TypeEnv) (types.Type, error) {
	in.depth++
	defer func() { in.depth-- }()
	if in.depth > maxDepth {
		return nil, rerrors.New("TYPE-0006", nil)
	}

	switch n := node.(type) {
	case *ast.IntegerLiteral:
		return types.Int, nil
	case *ast.FloatLiteral:
		return types.Float, nil
	case *ast.StringLiteral:
		return types.Str, nil
	case *ast.BooleanLiteral:
		return types.Bool, nil
	case *ast.CharLiteral:
		return types.Char, nil
	case *ast.ByteLiteral:
		return types.Byte, nil
	case *ast.NullLiteral:
		return types.Unit, nil
	case *ast.AtomLiteral:
		return types.Str, nil

	case *ast.Identifier:
		return in.inferIdentifier(n, env)

	case *ast.QualifiedName:
		return in.inferQualifiedName(n, env)

	case *ast.PrefixExpression:
		return in.inferPrefix(n, env)

	case *ast.InfixExpression:
		return in.inferInfix(n, env)

	case *ast.TernaryExpression:
		if err := in.unifyExpr(n.Condition, types.Bool, env); err != nil {
			return nil, err
		}
		thenT, err := in.inferExpr(n.Then, env)
		if err != nil {
			return nil, err
		}
		elseT, err := in.inferExpr(n.Else, env)
		if err != nil {
			return nil, err
		}
		if err := in.uni.Unify(thenT, elseT); err != nil {
			return nil, err
		}
		return in.uni.Resolve(thenT), nil

	case *ast.PreIncrement:
		return in.unifyTo(n.Operand, types.Int, env)
	case *ast.PreDecrement:
		return in.unifyTo(n.Operand, types.Int, env)
	case *ast.PostIncrement:
		return in.unifyTo(n.Operand, types.Int, env)
	case *ast.PostDecrement:
		return in.unifyTo(n.Operand, types.Int, env)

	case *ast.LetExpression:
		return in.inferLet(n, env)

	case *ast.LetPatternExpression:
		return in.inferLetPattern(n, env)

	case *ast.AssignExpression:
		valueT, err := in.inferExpr(n.Value, env)
		if err != nil {
			return nil, err
		}
		targetT, err := in.inferExpr(n.Target, env)
		if err != nil {
			return nil, err
		}
		if err := in.uni.Unify(targetT, valueT); err != nil {
			return nil, err
		}
		return types.Unit, nil

	case *ast.CompoundAssignExpression:
		if _, err := in.inferExpr(n.Target, env); err != nil {
			return nil, err
		}
		if _, err := in.inferExpr(n.Value, env); err != nil {
			return nil, err
		}
		return types.Unit, nil

	case *ast.BlockExpression:
		return in.inferBlock(n, env)

	case *ast.IfExpression:
		return in.inferIf(n, env)

	case *ast.IfLetExpression:
		return in.inferIfLet(n, env)

	case *ast.WhileExpression:
		if err := in.unifyExpr(n.Condition, types.Bool, env); err != nil {
			return nil, err
		}
		if _, err := in.inferExpr(n.Body, types.NewEnclosedTypeEnv(env)); err != nil {
			return nil, err
		}
		return types.Unit, nil

	case *ast.WhileLetExpression:
		valueT, err := in.inferExpr(n.Value, env)
		if err != nil {
			return nil, err
		}
		body := types.NewEnclosedTypeEnv(env)
		if err := in.bindPattern(n.Pattern, valueT, body); err != nil {
			return nil, err
		}
		if _, err := in.inferExpr(n.Body, body); err != nil {
			return nil, err
		}
		return types.Unit, nil

	case *ast.ForExpression:
		return in.inferFor(n, env)

	case *ast.LoopExpression:
		if _, err := in.inferExpr(n.Body, types.NewEnclosedTypeEnv(env)); err != nil {
			return nil, err
		}
		return types.Unit, nil

	case *ast.MatchExpression:
		return in.inferMatch(n, env)

	case *ast.FunctionLiteral:
		return in.inferFunction(n, env)

	case *ast.LambdaLiteral:
		return in.inferLambda(n, env)

	case *ast.CallExpression:
		return in.inferCall(n, env)

	case *ast.MethodCallExpression:
		return in.inferMethodCall(n, env)

	case *ast.FieldAccess:
		return in.inferFieldAccess(n, env)

	case *ast.IndexAccess:
		return in.inferIndex(n, env)

	case *ast.SliceExpression:
		objT, err := in.inferExpr(n.Object, env)
		if err != nil {
			return nil, err
		}
		for _, bound := range []ast.Expression{n.Start, n.End} {
			if bound != nil {
				if err := in.unifyExpr(bound, types.Int, env); err != nil {
					return nil, err
				}
			}
		}
		return in.uni.Resolve(objT), nil

	case *ast.ListLiteral:
		return in.inferList(n, env)

	case *ast.TupleLiteral:
		if len(n.Elements) == 0 {
			return types.Unit, nil
		}
		elems := make([]types.Type, len(n.Elements))
		for i, e := range n.Elements {
			t, err := in.inferExpr(e, env)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return &types.TTuple{Elems: elems}, nil

	case *ast.ArrayInitLiteral:
		valueT, err := in.inferExpr(n.Value, env)
		if err != nil {
			return nil, err
		}
		if err := in.unifyExpr(n.Size, types.Int, env); err != nil {
			return nil, err
		}
		return types.List(valueT), nil

	case *ast.RangeLiteral:
		if err := in.unifyExpr(n.Start, types.Int, env); err != nil {
			return nil, err
		}
		if n.End != nil {
			if err := in.unifyExpr(n.End, types.Int, env); err != nil {
				return nil, err
			}
		}
		return types.List(types.Int), nil

	case *ast.ListComprehension:
		return in.inferComprehension(n, env)

	case *ast.StringInterpolation:
		for _, part := range n.Parts {
			if part.Expr != nil {
				if _, err := in.inferExpr(part.Expr, env); err != nil {
					return nil, err
				}
			}
		}
		return types.Str, nil

	case *ast.PipelineExpression:
		return in.inferPipeline(n, env)

	case *ast.ReturnExpression:
		if n.Value != nil {
			if _, err := in.inferExpr(n.Value, env); err != nil {
				return nil, err
			}
		}
		return in.fresh(), nil

	case *ast.BreakExpression:
		if n.Value != nil {
			if _, err := in.inferExpr(n.Value, env); err != nil {
				return nil, err
			}
		}
		return in.fresh(), nil

	case *ast.ContinueExpression:
		return in.fresh(), nil

	case *ast.ThrowExpression:
		if _, err := in.inferExpr(n.Value, env); err != nil {
			return nil, err
		}
		return in.fresh(), nil

	case *ast.AwaitExpression:
		if _, err := in.inferExpr(n.Value, env); err != nil {
			return nil, err
		}
		return in.fresh(), nil

	case *ast.AsyncBlock:
		return in.inferExpr(n.Body, env)

	case *ast.TryCatchExpression:
		return in.inferTryCatch(n, env)

	case *ast.TryOpExpression:
		return in.inferTryOp(n, env)

	case *ast.OkExpression:
		inner, err := in.inferExpr(n.Value, env)
		if err != nil {
			return nil, err
		}
		return types.Result(inner, in.fresh()), nil

	case *ast.ErrExpression:
		inner, err := in.inferExpr(n.Value, env)
		if err != nil {
			return nil, err
		}
		return types.Result(in.fresh(), inner), nil

	case *ast.SomeExpression:
		inner, err := in.inferExpr(n.Value, env)
		if err != nil {
			return nil, err
		}
		return types.Option(inner), nil

	case *ast.NoneExpression:
		return types.Option(in.fresh()), nil

	case *ast.TypeCastExpression:
		if _, err := in.inferExpr(n.Value, env); err != nil {
			return nil, err
		}
		return in.fromTypeExpr(n.Target), nil

	case *ast.MacroInvocation:
		return in.inferMacro(n, env)

	case *ast.CommandExpression:
		if _, err := in.inferExpr(n.Program, env); err != nil {
			return nil, err
		}
		for _, arg := range n.Args {
			if _, err := in.inferExpr(arg, env); err != nil {
				return nil, err
			}
		}
		return types.Result(types.Str, types.Str), nil

	case *ast.ReferenceExpression:
		inner, err := in.inferExpr(n.Value, env)
		if err != nil {
			return nil, err
		}
		return types.Reference(inner), nil

	case *ast.SpreadExpression:
		return in.inferExpr(n.Value, env)

	case *ast.SendExpression:
		if _, err := in.inferExpr(n.Actor, env); err != nil {
			return nil, err
		}
		if err := in.inferMessage(n.Message, env); err != nil {
			return nil, err
		}
		return types.Unit, nil

	case *ast.AskExpression:
		if _, err := in.inferExpr(n.Actor, env); err != nil {
			return nil, err
		}
		if err := in.inferMessage(n.Message, env); err != nil {
			return nil, err
		}
		return in.fresh(), nil

	case *ast.SpawnExpression:
		return in.inferExpr(n.Target, env)

	case *ast.StructDefinition:
		return in.declareStruct(n, env)

	case *ast.EnumDefinition:
		return in.declareEnum(n, env)

	case *ast.StructLiteral:
		return in.inferStructLiteral(n, env)

	case *ast.ObjectLiteral:
		fields := make(map[string]types.Type, len(n.Fields))
		for _, f := range n.Fields {
			t, err := in.inferExpr(f.Value, env)
			if err != nil {
				return nil, err
			}
			fields[f.Name] = t
		}
		return &types.TRecord{Fields: fields}, nil

	case *ast.ActorDefinition:
		in.actors[n.Name] = true
		env.Set(n.Name, types.Mono(&types.TRecord{Name: n.Name}))
		return types.Unit, nil

	case *ast.TraitDefinition, *ast.ImplBlock, *ast.ExtensionBlock,
		*ast.ImportExpression, *ast.ModuleExpression, *ast.TypeAliasExpression:
		// Declaration forms that carry no interesting monotype at this
		// layer; the evaluator gives them meaning.
		return types.Unit, nil

	case *ast.ExportExpression:
		return in.inferExpr(n.Item, env)

	case *ast.DataFrameLiteral:
		cols := make(map[string]types.Type, len(n.Columns))
		for _, col := range n.Columns {
			elem := types.Type(types.Any)
			if len(col.Values) > 0 {
				first, err := in.inferExpr(col.Values[0], env)
				if err != nil {
					return nil, err
				}
				elem = first
				for _, v := range col.Values[1:] {
					if err := in.unifyExpr(v, first, env); err != nil {
						return nil, err
					}
				}
			}
			cols[col.Name] = elem
		}
		return &types.TDataFrame{Columns: cols}, nil

	case *ast.DataFrameOperation:
		return in.inferDataFrameOp(n, env)
	}

	// Unknown node kinds type as a fresh variable rather than failing,
	// matching the permissive posture of method constraints.
	return in.fresh(), nil
}

// unifyExpr infers an expression and unifies it with the expected type.
func (in *Inferencer) unifyExpr(node ast.Expression, expected types.Type, env *types.TypeEnv) error {
	t, err := in.inferExpr(node, env)
	if err != nil {
		return err
	}
	return in.uni.Unify(t, expected)
}

// unifyTo is unifyExpr returning the expected type on success.
func (in *Inferencer) unifyTo(node ast.Expression, expected types.Type, env *types.TypeEnv) (types.Type, error) {
	if err := in.unifyExpr(node, expected, env); err != nil {
		return nil, err
	}
	return expected, nil
}

func (in *Inferencer) inferIdentifier(n *ast.Identifier, env *types.TypeEnv) (types.Type, error) {
	if scheme, ok := env.Get(n.Value); ok {
		return scheme.Instantiate(in.gen), nil
	}
	return nil, rerrors.NewWithPosition("UNDEF-0001", n.Token.Line, n.Token.Column, map[string]any{
		"Name": n.Value,
	})
}

// inferQualifiedName resolves enum variant constructors like Color::Red and
// Shape::Circle; unknown paths get a fresh variable (modules resolve later).
func (in *Inferencer) inferQualifiedName(n *ast.QualifiedName, env *types.TypeEnv) (types.Type, error) {
	if len(n.Parts) == 2 {
		if info, ok := in.enums[n.Parts[0]]; ok {
			if fields, ok := info.variants[n.Parts[1]]; ok {
				enumT := &types.TApp{Name: info.name}
				if len(fields) == 0 {
					return enumT, nil
				}
				return types.Func(fields, enumT), nil
			}
		}
	}
	// Module members and struct constructors resolve at evaluation time.
	return in.fresh(), nil
}

func (in *Inferencer) inferPrefix(n *ast.PrefixExpression, env *types.TypeEnv) (types.Type, error) {
	switch n.Operator {
	case "!":
		return in.unifyTo(n.Right, types.Bool, env)
	case "-", "~":
		t, err := in.inferExpr(n.Right, env)
		if err != nil {
			return nil, err
		}
		resolved := in.uni.Resolve(t)
		if con, ok := resolved.(*types.TCon); ok && con.Name == "Float" {
			return types.Float, nil
		}
		if err := in.uni.Unify(t, types.Int); err != nil {
			return nil, err
		}
		return types.Int, nil
	case "*":
		inner := in.fresh()
		if err := in.unifyExpr(n.Right, types.Reference(inner), env); err != nil {
			return nil, err
		}
		return in.uni.Resolve(inner), nil
	}
	return in.inferExpr(n.Right, env)
}

func (in *Inferencer) inferInfix(n *ast.InfixExpression, env *types.TypeEnv) (types.Type, error) {
	switch n.Operator {
	case "+":
		leftT, err := in.inferExpr(n.Left, env)
		if err != nil {
			return nil, err
		}
		rightT, err := in.inferExpr(n.Right, env)
		if err != nil {
			return nil, err
		}
		if err := in.uni.Unify(leftT, rightT); err != nil {
			return nil, err
		}
		resolved := in.uni.Resolve(leftT)
		if con, ok := resolved.(*types.TCon); ok {
			switch con.Name {
			case "String", "Float", "Int", "Any":
				return con, nil
			}
		}
		if app, ok := resolved.(*types.TApp); ok && app.Name == "List" {
			return app, nil
		}
		if err := in.uni.Unify(leftT, types.Int); err != nil {
			return nil, err
		}
		return types.Int, nil

	case "-", "*", "/", "%", "**":
		leftT, err := in.inferExpr(n.Left, env)
		if err != nil {
			return nil, err
		}
		rightT, err := in.inferExpr(n.Right, env)
		if err != nil {
			return nil, err
		}
		if err := in.uni.Unify(leftT, rightT); err != nil {
			return nil, err
		}
		resolved := in.uni.Resolve(leftT)
		if con, ok := resolved.(*types.TCon); ok && con.Name == "Float" {
			return types.Float, nil
		}
		if err := in.uni.Unify(leftT, types.Int); err != nil {
			return nil, err
		}
		return types.Int, nil

	case "==", "!=", "<", "<=", ">", ">=":
		leftT, err := in.inferExpr(n.Left, env)
		if err != nil {
			return nil, err
		}
		if err := in.unifyExpr(n.Right, leftT, env); err != nil {
			return nil, err
		}
		return types.Bool, nil

	case "&&", "||":
		if err := in.unifyExpr(n.Left, types.Bool, env); err != nil {
			return nil, err
		}
		if err := in.unifyExpr(n.Right, types.Bool, env); err != nil {
			return nil, err
		}
		return types.Bool, nil

	case "&", "|", "^", "<<", ">>":
		if err := in.unifyExpr(n.Left, types.Int, env); err != nil {
			return nil, err
		}
		if err := in.unifyExpr(n.Right, types.Int, env); err != nil {
			return nil, err
		}
		return types.Int, nil

	case "??":
		if _, err := in.inferExpr(n.Left, env); err != nil {
			return nil, err
		}
		return in.inferExpr(n.Right, env)

	case "in":
		elem, err := in.inferExpr(n.Left, env)
		if err != nil {
			return nil, err
		}
		coll, err := in.inferExpr(n.Right, env)
		if err != nil {
			return nil, err
		}
		in.queue(&IterableConstraint{Collection: coll, Elem: elem})
		return types.Bool, nil

	case "is":
		if _, err := in.inferExpr(n.Left, env); err != nil {
			return nil, err
		}
		return types.Bool, nil
	}

	return nil, rerrors.New("OP-0001", map[string]any{
		"Left":     "?",
		"Operator": n.Operator,
		"Right":    "?",
	})
}

// inferMessage types an actor message. Handler names resolve against the
// receiving actor at runtime, so only argument expressions are inspected.
func (in *Inferencer) inferMessage(msg ast.Expression, env *types.TypeEnv) error {
	switch m := msg.(type) {
	case *ast.Identifier:
		return nil
	case *ast.CallExpression:
		for _, arg := range m.Arguments {
			if _, err := in.inferExpr(arg, env); err != nil {
				return err
			}
		}
		return nil
	}
	_, err := in.inferExpr(msg, env)
	return err
}

func (in *Inferencer) inferLet(n *ast.LetExpression, env *types.TypeEnv) (types.Type, error) {
	var valueT types.Type = in.fresh()
	if n.Value != nil {
		t, err := in.inferExpr(n.Value, env)
		if err != nil {
			return nil, err
		}
		valueT = t
	}

	if n.TypeAnn != nil {
		annotated := in.fromTypeExpr(n.TypeAnn)
		if err := in.uni.Unify(valueT, annotated); err != nil {
			return nil, err
		}
	}

	if n.ElseBody != nil {
		if _, err := in.inferExpr(n.ElseBody, types.NewEnclosedTypeEnv(env)); err != nil {
			return nil, err
		}
	}

	resolved := in.uni.Resolve(valueT)
	scheme := env.Generalize(resolved)

	if n.Body != nil {
		body := types.NewEnclosedTypeEnv(env)
		body.Set(n.Name.Value, scheme)
		return in.inferExpr(n.Body, body)
	}

	env.Set(n.Name.Value, scheme)
	return types.Unit, nil
}

func (in *Inferencer) inferLetPattern(n *ast.LetPatternExpression, env *types.TypeEnv) (types.Type, error) {
	valueT, err := in.inferExpr(n.Value, env)
	if err != nil {
		return nil, err
	}
	if n.TypeAnn != nil {
		if err := in.uni.Unify(valueT, in.fromTypeExpr(n.TypeAnn)); err != nil {
			return nil, err
		}
	}

	if n.ElseBody != nil {
		if _, err := in.inferExpr(n.ElseBody, types.NewEnclosedTypeEnv(env)); err != nil {
			return nil, err
		}
	}

	if n.Body != nil {
		body := types.NewEnclosedTypeEnv(env)
		if err := in.bindPattern(n.Pattern, valueT, body); err != nil {
			return nil, err
		}
		return in.inferExpr(n.Body, body)
	}

	if err := in.bindPattern(n.Pattern, valueT, env); err != nil {
		return nil, err
	}
	return types.Unit, nil
}

func (in *Inferencer) inferBlock(n *ast.BlockExpression, env *types.TypeEnv) (types.Type, error) {
	scope := types.NewEnclosedTypeEnv(env)
	var result types.Type = types.Unit
	for _, expr := range n.Expressions {
		t, err := in.inferExpr(expr, scope)
		if err != nil {
			return nil, err
		}
		result = t
	}
	return result, nil
}

func (in *Inferencer) inferIf(n *ast.IfExpression, env *types.TypeEnv) (types.Type, error) {
	if err := in.unifyExpr(n.Condition, types.Bool, env); err != nil {
		return nil, err
	}
	thenT, err := in.inferExpr(n.Consequence, env)
	if err != nil {
		return nil, err
	}
	if n.Alternative == nil {
		if err := in.uni.Unify(thenT, types.Unit); err != nil {
			return nil, err
		}
		return types.Unit, nil
	}
	elseT, err := in.inferExpr(n.Alternative, env)
	if err != nil {
		return nil, err
	}
	if err := in.uni.Unify(thenT, elseT); err != nil {
		return nil, err
	}
	return in.uni.Resolve(thenT), nil
}

func (in *Inferencer) inferIfLet(n *ast.IfLetExpression, env *types.TypeEnv) (types.Type, error) {
	valueT, err := in.inferExpr(n.Value, env)
	if err != nil {
		return nil, err
	}
	body := types.NewEnclosedTypeEnv(env)
	if err := in.bindPattern(n.Pattern, valueT, body); err != nil {
		return nil, err
	}
	thenT, err := in.inferExpr(n.Consequence, body)
	if err != nil {
		return nil, err
	}
	if n.Alternative == nil {
		return types.Unit, nil
	}
	elseT, err := in.inferExpr(n.Alternative, env)
	if err != nil {
		return nil, err
	}
	if err := in.uni.Unify(thenT, elseT); err != nil {
		return nil, err
	}
	return in.uni.Resolve(thenT), nil
}

func (in *Inferencer) inferFor(n *ast.ForExpression, env *types.TypeEnv) (types.Type, error) {
	iterT, err := in.inferExpr(n.Iterable, env)
	if err != nil {
		return nil, err
	}
	elem := in.fresh()
	in.queue(&IterableConstraint{Collection: iterT, Elem: elem})

	body := types.NewEnclosedTypeEnv(env)
	if err := in.bindPattern(n.Pattern, elem, body); err != nil {
		return nil, err
	}
	if _, err := in.inferExpr(n.Body, body); err != nil {
		return nil, err
	}
	return types.Unit, nil
}

func (in *Inferencer) inferMatch(n *ast.MatchExpression, env *types.TypeEnv) (types.Type, error) {
	scrutT, err := in.inferExpr(n.Scrutinee, env)
	if err != nil {
		return nil, err
	}

	var result types.Type
	for _, arm := range n.Arms {
		armEnv := types.NewEnclosedTypeEnv(env)
		if err := in.bindPattern(arm.Pattern, scrutT, armEnv); err != nil {
			return nil, err
		}
		if arm.Guard != nil {
			if err := in.unifyExpr(arm.Guard, types.Bool, armEnv); err != nil {
				return nil, err
			}
		}
		bodyT, err := in.inferExpr(arm.Body, armEnv)
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = bodyT
		} else if err := in.uni.Unify(result, bodyT); err != nil {
			return nil, err
		}
	}
	return in.uni.Resolve(result), nil
}

// inferFunction binds the function name to its curried type before
// inferring the body so recursion typechecks.
func (in *Inferencer) inferFunction(n *ast.FunctionLiteral, env *types.TypeEnv) (types.Type, error) {
	paramTypes := make([]types.Type, len(n.Params))
	for i, param := range n.Params {
		if param.Type != nil {
			paramTypes[i] = in.fromTypeExpr(param.Type)
		} else {
			paramTypes[i] = in.fresh()
		}
	}

	var retT types.Type
	if n.ReturnType != nil {
		retT = in.fromTypeExpr(n.ReturnType)
	} else {
		retT = in.fresh()
	}

	fnT := types.Func(paramTypes, retT)

	bodyEnv := types.NewEnclosedTypeEnv(env)
	if n.Name != "" {
		bodyEnv.Set(n.Name, types.Mono(fnT))
	}
	for i, param := range n.Params {
		bodyEnv.Set(param.Name, types.Mono(paramTypes[i]))
		if param.Default != nil {
			if err := in.unifyExpr(param.Default, paramTypes[i], env); err != nil {
				return nil, err
			}
		}
	}

	bodyT, err := in.inferExpr(n.Body, bodyEnv)
	if err != nil {
		return nil, err
	}
	if err := in.uni.Unify(bodyT, retT); err != nil {
		return nil, err
	}

	resolved := in.uni.Resolve(fnT)
	if n.Name != "" {
		env.Set(n.Name, env.Generalize(resolved))
	}
	return resolved, nil
}

func (in *Inferencer) inferLambda(n *ast.LambdaLiteral, env *types.TypeEnv) (types.Type, error) {
	paramTypes := make([]types.Type, len(n.Params))
	bodyEnv := types.NewEnclosedTypeEnv(env)
	for i, param := range n.Params {
		if param.Type != nil {
			paramTypes[i] = in.fromTypeExpr(param.Type)
		} else {
			paramTypes[i] = in.fresh()
		}
		bodyEnv.Set(param.Name, types.Mono(paramTypes[i]))
	}

	bodyT, err := in.inferExpr(n.Body, bodyEnv)
	if err != nil {
		return nil, err
	}
	return types.Func(paramTypes, bodyT), nil
}

// inferCall builds the expected curried chain arg1 -> ... -> result and
// unifies it with the callee.
func (in *Inferencer) inferCall(n *ast.CallExpression, env *types.TypeEnv) (types.Type, error) {
	calleeT, err := in.inferExpr(n.Function, env)
	if err != nil {
		return nil, err
	}

	args := make([]types.Type, len(n.Arguments))
	for i, arg := range n.Arguments {
		t, err := in.inferExpr(arg, env)
		if err != nil {
			return nil, err
		}
		args[i] = t
	}

	// Struct and actor names used as callees are constructors.
	if rec, ok := in.uni.Resolve(calleeT).(*types.TRecord); ok {
		return rec, nil
	}

	result := in.fresh()
	expected := types.Func(args, result)
	if err := in.uni.Unify(calleeT, expected); err != nil {
		return nil, err
	}
	in.queue(&FunctionArityConstraint{Fn: calleeT, N: len(n.Arguments)})
	return in.uni.Resolve(result), nil
}

func (in *Inferencer) inferMethodCall(n *ast.MethodCallExpression, env *types.TypeEnv) (types.Type, error) {
	recvT, err := in.inferExpr(n.Receiver, env)
	if err != nil {
		return nil, err
	}
	args := make([]types.Type, len(n.Arguments))
	for i, arg := range n.Arguments {
		t, err := in.inferExpr(arg, env)
		if err != nil {
			return nil, err
		}
		args[i] = t
	}

	result := in.fresh()
	in.queue(&MethodCallConstraint{
		Receiver: recvT,
		Name:     n.Method,
		Args:     args,
		Result:   result,
	})
	return result, nil
}

func (in *Inferencer) inferFieldAccess(n *ast.FieldAccess, env *types.TypeEnv) (types.Type, error) {
	recvT, err := in.inferExpr(n.Object, env)
	if err != nil {
		return nil, err
	}
	resolved := in.uni.Resolve(recvT)

	if rec, ok := resolved.(*types.TRecord); ok {
		if named, found := in.structs[rec.Name]; found && rec.Name != "" {
			rec = named
		}
		if ft, ok := rec.Fields[n.Field]; ok {
			return ft, nil
		}
		if rec.Name != "" || len(rec.Fields) > 0 {
			return nil, rerrors.NewWithPosition("UNDEF-0002", n.Token.Line, n.Token.Column, map[string]any{
				"Field": n.Field,
				"Type":  resolved.String(),
			})
		}
	}
	if tup, ok := resolved.(*types.TTuple); ok {
		if idx := tupleIndex(n.Field); idx >= 0 && idx < len(tup.Elems) {
			return tup.Elems[idx], nil
		}
	}
	// Receiver type not yet known; stay permissive.
	return in.fresh(), nil
}

func tupleIndex(field string) int {
	idx := 0
	for _, ch := range field {
		if ch < '0' || ch > '9' {
			return -1
		}
		idx = idx*10 + int(ch-'0')
	}
	if field == "" {
		return -1
	}
	return idx
}

func (in *Inferencer) inferIndex(n *ast.IndexAccess, env *types.TypeEnv) (types.Type, error) {
	objT, err := in.inferExpr(n.Object, env)
	if err != nil {
		return nil, err
	}
	idxT, err := in.inferExpr(n.Index, env)
	if err != nil {
		return nil, err
	}

	resolved := in.uni.Resolve(objT)
	switch ot := resolved.(type) {
	case *types.TApp:
		if ot.Name == "List" {
			if err := in.uni.Unify(idxT, types.Int); err != nil {
				return nil, err
			}
			return ot.Args[0], nil
		}
		if ot.Name == "HashMap" {
			if err := in.uni.Unify(idxT, ot.Args[0]); err != nil {
				return nil, err
			}
			return ot.Args[1], nil
		}
	case *types.TCon:
		if ot.Name == "String" {
			if err := in.uni.Unify(idxT, types.Int); err != nil {
				return nil, err
			}
			return types.Char, nil
		}
	case *types.TDataFrame:
		if err := in.uni.Unify(idxT, types.Str); err != nil {
			return nil, err
		}
		return &types.TSeries{Elem: types.Any}, nil
	}

	elem := in.fresh()
	if err := in.uni.Unify(objT, types.List(elem)); err != nil {
		return nil, err
	}
	if err := in.uni.Unify(idxT, types.Int); err != nil {
		return nil, err
	}
	return in.uni.Resolve(elem), nil
}

func (in *Inferencer) inferList(n *ast.ListLiteral, env *types.TypeEnv) (types.Type, error) {
	if len(n.Elements) == 0 {
		return types.List(in.fresh()), nil
	}
	first, err := in.inferExpr(n.Elements[0], env)
	if err != nil {
		return nil, err
	}
	for _, e := range n.Elements[1:] {
		if spread, ok := e.(*ast.SpreadExpression); ok {
			if err := in.unifyExpr(spread.Value, types.List(first), env); err != nil {
				return nil, err
			}
			continue
		}
		if err := in.unifyExpr(e, first, env); err != nil {
			return nil, err
		}
	}
	return types.List(in.uni.Resolve(first)), nil
}

func (in *Inferencer) inferComprehension(n *ast.ListComprehension, env *types.TypeEnv) (types.Type, error) {
	scope := types.NewEnclosedTypeEnv(env)
	for _, clause := range n.Clauses {
		iterT, err := in.inferExpr(clause.Iterable, scope)
		if err != nil {
			return nil, err
		}
		elem := in.fresh()
		in.queue(&IterableConstraint{Collection: iterT, Elem: elem})
		if err := in.bindPattern(clause.Pattern, elem, scope); err != nil {
			return nil, err
		}
		for _, cond := range clause.Conditions {
			if err := in.unifyExpr(cond, types.Bool, scope); err != nil {
				return nil, err
			}
		}
	}
	bodyT, err := in.inferExpr(n.Body, scope)
	if err != nil {
		return nil, err
	}
	return types.List(bodyT), nil
}

// inferPipeline threads the current type through each stage's domain.
func (in *Inferencer) inferPipeline(n *ast.PipelineExpression, env *types.TypeEnv) (types.Type, error) {
	current, err := in.inferExpr(n.Expr, env)
	if err != nil {
		return nil, err
	}
	for _, stage := range n.Stages {
		stageT, err := in.inferExpr(stage, env)
		if err != nil {
			return nil, err
		}
		out := in.fresh()
		if err := in.uni.Unify(stageT, &types.TFunc{Arg: current, Ret: out}); err != nil {
			return nil, err
		}
		current = in.uni.Resolve(out)
	}
	return current, nil
}

func (in *Inferencer) inferTryCatch(n *ast.TryCatchExpression, env *types.TypeEnv) (types.Type, error) {
	bodyT, err := in.inferExpr(n.Body, env)
	if err != nil {
		return nil, err
	}
	for _, clause := range n.Catches {
		catchEnv := types.NewEnclosedTypeEnv(env)
		if clause.Pattern != nil {
			if err := in.bindPattern(clause.Pattern, types.Any, catchEnv); err != nil {
				return nil, err
			}
		}
		catchT, err := in.inferExpr(clause.Body, catchEnv)
		if err != nil {
			return nil, err
		}
		if err := in.uni.Unify(bodyT, catchT); err != nil {
			return nil, err
		}
	}
	if n.Finally != nil {
		if _, err := in.inferExpr(n.Finally, env); err != nil {
			return nil, err
		}
	}
	return in.uni.Resolve(bodyT), nil
}

// inferTryOp unwraps Result<T, E> and Option<T> to T.
func (in *Inferencer) inferTryOp(n *ast.TryOpExpression, env *types.TypeEnv) (types.Type, error) {
	valueT, err := in.inferExpr(n.Value, env)
	if err != nil {
		return nil, err
	}
	resolved := in.uni.Resolve(valueT)
	if app, ok := resolved.(*types.TApp); ok {
		switch app.Name {
		case "Result", "Option":
			return app.Args[0], nil
		}
	}
	ok := in.fresh()
	if err := in.uni.Unify(valueT, types.Result(ok, in.fresh())); err == nil {
		return in.uni.Resolve(ok), nil
	}
	return in.fresh(), nil
}

func (in *Inferencer) inferMacro(n *ast.MacroInvocation, env *types.TypeEnv) (types.Type, error) {
	for _, arg := range n.Arguments {
		if _, err := in.inferExpr(arg, env); err != nil {
			return nil, err
		}
	}
	switch n.Name {
	case "println", "print", "eprintln", "assert", "assert_eq", "panic":
		return types.Unit, nil
	case "vec":
		if len(n.Arguments) == 0 {
			return types.List(in.fresh()), nil
		}
		first, err := in.inferExpr(n.Arguments[0], env)
		if err != nil {
			return nil, err
		}
		return types.List(first), nil
	case "format":
		return types.Str, nil
	}
	return in.fresh(), nil
}

func (in *Inferencer) inferStructLiteral(n *ast.StructLiteral, env *types.TypeEnv) (types.Type, error) {
	for _, f := range n.Fields {
		t, err := in.inferExpr(f.Value, env)
		if err != nil {
			return nil, err
		}
		if rec, ok := in.structs[n.Name]; ok {
			if ft, found := rec.Fields[f.Name]; found {
				if err := in.uni.Unify(t, ft); err != nil {
					return nil, err
				}
			}
		}
	}
	if rec, ok := in.structs[n.Name]; ok {
		return rec, nil
	}
	return &types.TRecord{Name: n.Name}, nil
}

func (in *Inferencer) declareStruct(n *ast.StructDefinition, env *types.TypeEnv) (types.Type, error) {
	fields := make(map[string]types.Type, len(n.Fields))
	for _, f := range n.Fields {
		if f.Type != nil {
			fields[f.Name] = in.fromTypeExpr(f.Type)
		} else {
			fields[f.Name] = in.fresh()
		}
	}
	rec := &types.TRecord{Name: n.Name, Fields: fields}
	in.structs[n.Name] = rec
	env.Set(n.Name, types.Mono(rec))
	return types.Unit, nil
}

func (in *Inferencer) declareEnum(n *ast.EnumDefinition, env *types.TypeEnv) (types.Type, error) {
	info := &enumInfo{name: n.Name, variants: make(map[string][]types.Type, len(n.Variants))}
	for _, v := range n.Variants {
		fields := make([]types.Type, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = in.fromTypeExpr(f)
		}
		info.variants[v.Name] = fields
	}
	in.enums[n.Name] = info
	env.Set(n.Name, types.Mono(&types.TApp{Name: n.Name}))
	return types.Unit, nil
}

func (in *Inferencer) inferDataFrameOp(n *ast.DataFrameOperation, env *types.TypeEnv) (types.Type, error) {
	recvT, err := in.inferExpr(n.Receiver, env)
	if err != nil {
		return nil, err
	}
	for _, arg := range n.Arguments {
		if _, err := in.inferExpr(arg, env); err != nil {
			return nil, err
		}
	}

	switch n.Op {
	case "col":
		if df, ok := in.uni.Resolve(recvT).(*types.TDataFrame); ok && len(n.Arguments) == 1 {
			if lit, ok := n.Arguments[0].(*ast.StringLiteral); ok {
				if colT, found := df.Columns[lit.Value]; found {
					return &types.TSeries{Elem: colT}, nil
				}
			}
		}
		return &types.TSeries{Elem: types.Any}, nil
	case "mean", "std":
		return types.Float, nil
	case "sum":
		return in.fresh(), nil
	case "count":
		return types.Int, nil
	}
	// Filter, select, groupby, agg, join, sort, limit, head, tail all
	// preserve the DataFrame type.
	if err := in.uni.Unify(recvT, &types.TDataFrame{}); err != nil {
		return nil, err
	}
	return in.uni.Resolve(recvT), nil
}
