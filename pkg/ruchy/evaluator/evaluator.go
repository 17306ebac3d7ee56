package evaluator

import (
	"strings"
	"time"

	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
)

// maxCallDepth bounds user-level recursion.
const maxCallDepth = 1000

// ParsedModule is what a module loader hands back for an import.
type ParsedModule struct {
	AST          *ast.Program
	Path         string
	Dependencies []string
	LastModified time.Time
}

// ModuleLoader resolves import names to parsed modules. Search paths,
// cycle detection, and caching are the loader's concern.
type ModuleLoader interface {
	LoadModule(name string) (*ParsedModule, error)
}

// Interp is one interpreter instance: definition registries, the stdout
// capture buffer, the call-depth counter, and optional collaborators.
type Interp struct {
	structs map[string]*ast.StructDefinition
	enums   map[string]*ast.EnumDefinition
	traits  map[string]*ast.TraitDefinition
	actors  map[string]*ast.ActorDefinition
	// methods maps type name -> method name -> definition, filled by
	// impl and extend blocks.
	methods map[string]map[string]*methodDef

	loader  ModuleLoader
	modules map[string]*Module

	stdout    []string
	partial   string // print output awaiting its newline
	callDepth int

	caches *siteCaches
	selog  *SessionLog
}

type methodDef struct {
	fn  *ast.FunctionLiteral
	env *Environment
}

// New creates an interpreter with empty registries.
func New() *Interp {
	return &Interp{
		structs: make(map[string]*ast.StructDefinition),
		enums:   make(map[string]*ast.EnumDefinition),
		traits:  make(map[string]*ast.TraitDefinition),
		actors:  make(map[string]*ast.ActorDefinition),
		methods: make(map[string]map[string]*methodDef),
		modules: make(map[string]*Module),
		caches:  newSiteCaches(),
	}
}

// SetLoader installs the module loader used by import expressions.
func (in *Interp) SetLoader(l ModuleLoader) { in.loader = l }

// GetStdout returns everything printed so far, newline-joined.
func (in *Interp) GetStdout() string {
	out := strings.Join(in.stdout, "\n")
	if in.partial != "" {
		if out != "" {
			out += "\n"
		}
		out += in.partial
	}
	return out
}

// StdoutLines returns the completed captured lines.
func (in *Interp) StdoutLines() []string { return in.stdout }

// ClearStdout empties the capture buffer.
func (in *Interp) ClearStdout() {
	in.stdout = nil
	in.partial = ""
}

// HasStdout reports whether anything has been printed.
func (in *Interp) HasStdout() bool { return len(in.stdout) > 0 || in.partial != "" }

// pushStdout completes a line, folding in any pending print output.
func (in *Interp) pushStdout(line string) {
	in.stdout = append(in.stdout, in.partial+line)
	in.partial = ""
}

// pushPartial appends print output without ending the line.
func (in *Interp) pushPartial(text string) {
	in.partial += text
}

// Eval evaluates a node. Program nodes evaluate their expressions in
// order and yield the last value.
func (in *Interp) Eval(node ast.Node, env *Environment) Object {
	switch n := node.(type) {
	case *ast.Program:
		return in.evalProgram(n, env)
	case ast.Expression:
		return in.evalExpr(n, env)
	}
	return NULL
}

func (in *Interp) evalProgram(program *ast.Program, env *Environment) Object {
	var result Object = NULL
	for _, expr := range program.Expressions {
		result = in.evalExpr(expr, env)
		switch r := result.(type) {
		case *ReturnValue:
			return r.Value
		case *Error:
			return r
		}
	}
	return result
}

// evalExpr is the single evaluation dispatch.
func (in *Interp) evalExpr(node ast.Expression, env *Environment) Object {
	switch n := node.(type) {

	// Literals
	case *ast.IntegerLiteral:
		return &Integer{Value: n.Value}
	case *ast.FloatLiteral:
		return &Float{Value: n.Value}
	case *ast.StringLiteral:
		return &String{Value: n.Value}
	case *ast.BooleanLiteral:
		return nativeBool(n.Value)
	case *ast.CharLiteral:
		return &Char{Value: n.Value}
	case *ast.ByteLiteral:
		return &Byte{Value: n.Value}
	case *ast.NullLiteral:
		return NULL
	case *ast.AtomLiteral:
		return &Atom{Value: n.Value}

	case *ast.Identifier:
		return in.evalIdentifier(n, env)

	case *ast.QualifiedName:
		return in.evalQualifiedName(n, env)

	// Operators
	case *ast.PrefixExpression:
		return in.evalPrefix(n, env)

	case *ast.InfixExpression:
		return in.evalInfix(n, env)

	case *ast.TernaryExpression:
		cond := in.evalExpr(n.Condition, env)
		if isControl(cond) {
			return cond
		}
		if truthy(cond) {
			return in.evalExpr(n.Then, env)
		}
		return in.evalExpr(n.Else, env)

	case *ast.PreIncrement:
		return in.evalIncDec(n.Operand, env, 1, true)
	case *ast.PreDecrement:
		return in.evalIncDec(n.Operand, env, -1, true)
	case *ast.PostIncrement:
		return in.evalIncDec(n.Operand, env, 1, false)
	case *ast.PostDecrement:
		return in.evalIncDec(n.Operand, env, -1, false)

	// Bindings
	case *ast.LetExpression:
		return in.evalLet(n, env)

	case *ast.LetPatternExpression:
		return in.evalLetPattern(n, env)

	case *ast.AssignExpression:
		return in.evalAssign(n, env)

	case *ast.CompoundAssignExpression:
		return in.evalCompoundAssign(n, env)

	// Control flow
	case *ast.BlockExpression:
		return in.evalBlock(n, env)

	case *ast.IfExpression:
		return in.evalIf(n, env)

	case *ast.IfLetExpression:
		return in.evalIfLet(n, env)

	case *ast.WhileExpression:
		return in.evalWhile(n, env)

	case *ast.WhileLetExpression:
		return in.evalWhileLet(n, env)

	case *ast.ForExpression:
		return in.evalFor(n, env)

	case *ast.LoopExpression:
		return in.evalLoop(n, env)

	case *ast.MatchExpression:
		return in.evalMatch(n, env)

	case *ast.ReturnExpression:
		var value Object = NULL
		if n.Value != nil {
			value = in.evalExpr(n.Value, env)
			if isControl(value) {
				return value
			}
		}
		return &ReturnValue{Value: value}

	case *ast.BreakExpression:
		var value Object = NULL
		if n.Value != nil {
			value = in.evalExpr(n.Value, env)
			if isControl(value) {
				return value
			}
		}
		return &BreakValue{Label: n.Label, Value: value}

	case *ast.ContinueExpression:
		return &ContinueValue{Label: n.Label}

	// Errors and effects
	case *ast.TryCatchExpression:
		return in.evalTryCatch(n, env)

	case *ast.TryOpExpression:
		return in.evalTryOp(n, env)

	case *ast.ThrowExpression:
		value := in.evalExpr(n.Value, env)
		if isControl(value) {
			return value
		}
		return &Error{Payload: value}

	case *ast.AwaitExpression:
		// Strictly synchronous: await yields its operand's value.
		return in.evalExpr(n.Value, env)

	case *ast.AsyncBlock:
		return in.evalExpr(n.Body, env)

	case *ast.SpawnExpression:
		return in.evalSpawn(n, env)

	case *ast.SendExpression:
		return in.evalSend(n, env)

	case *ast.AskExpression:
		return in.evalAsk(n, env)

	// Functions and calls
	case *ast.FunctionLiteral:
		fn := &Function{
			Name:    n.Name,
			Params:  n.Params,
			Body:    n.Body,
			Env:     env,
			IsAsync: n.IsAsync,
		}
		if n.Name != "" {
			env.Set(n.Name, fn)
		}
		return fn

	case *ast.LambdaLiteral:
		return &Function{Params: n.Params, Body: n.Body, Env: env}

	case *ast.CallExpression:
		return in.evalCall(n, env)

	case *ast.MethodCallExpression:
		return in.evalMethodCall(n, env)

	case *ast.FieldAccess:
		return in.evalFieldAccess(n, env)

	case *ast.IndexAccess:
		return in.evalIndex(n, env)

	case *ast.SliceExpression:
		return in.evalSlice(n, env)

	// Collections
	case *ast.ListLiteral:
		return in.evalList(n, env)

	case *ast.TupleLiteral:
		if len(n.Elements) == 0 {
			return NULL
		}
		elems, errObj := in.evalExpressions(n.Elements, env)
		if errObj != nil {
			return errObj
		}
		return &Tuple{Elements: elems}

	case *ast.ArrayInitLiteral:
		return in.evalArrayInit(n, env)

	case *ast.RangeLiteral:
		return in.evalRange(n, env)

	case *ast.ListComprehension:
		return in.evalComprehension(n, env)

	case *ast.SpreadExpression:
		// Spread outside a list or call position is the value itself.
		return in.evalExpr(n.Value, env)

	case *ast.ObjectLiteral:
		return in.evalObjectLiteral(n, env)

	case *ast.StructLiteral:
		return in.evalStructLiteral(n, env)

	// Strings and pipelines
	case *ast.StringInterpolation:
		return in.evalInterpolation(n, env)

	case *ast.PipelineExpression:
		return in.evalPipeline(n, env)

	// Constructors
	case *ast.OkExpression:
		value := in.evalExpr(n.Value, env)
		if isControl(value) {
			return value
		}
		return &EnumVariant{Enum: "Result", Variant: "Ok", Values: []Object{value}}

	case *ast.ErrExpression:
		value := in.evalExpr(n.Value, env)
		if isControl(value) {
			return value
		}
		return &EnumVariant{Enum: "Result", Variant: "Err", Values: []Object{value}}

	case *ast.SomeExpression:
		value := in.evalExpr(n.Value, env)
		if isControl(value) {
			return value
		}
		return &EnumVariant{Enum: "Option", Variant: "Some", Values: []Object{value}}

	case *ast.NoneExpression:
		return &EnumVariant{Enum: "Option", Variant: "None"}

	case *ast.TypeCastExpression:
		return in.evalCast(n, env)

	case *ast.ReferenceExpression:
		// References are transparent in the tree-walker; the value model
		// already shares containers by pointer.
		return in.evalExpr(n.Value, env)

	// Macros
	case *ast.MacroInvocation:
		return in.evalMacro(n, env)

	case *ast.CommandExpression:
		return in.evalCommand(n, env)

	// DataFrames
	case *ast.DataFrameLiteral:
		return in.evalDataFrameLiteral(n, env)

	case *ast.DataFrameOperation:
		return in.evalDataFrameOp(n, env)

	// Declarations
	case *ast.StructDefinition:
		in.structs[n.Name] = n
		env.Set(n.Name, &Constructor{StructDef: n})
		return NULL

	case *ast.EnumDefinition:
		in.enums[n.Name] = n
		return NULL

	case *ast.TraitDefinition:
		in.traits[n.Name] = n
		return NULL

	case *ast.ImplBlock:
		return in.evalImplBlock(n, env)

	case *ast.ExtensionBlock:
		for _, m := range n.Methods {
			in.registerMethod(n.Target, m, env)
		}
		return NULL

	case *ast.ActorDefinition:
		in.actors[n.Name] = n
		env.Set(n.Name, &Constructor{ActorDef: n})
		return NULL

	case *ast.ImportExpression:
		return in.evalImport(n, env)

	case *ast.ExportExpression:
		return in.evalExpr(n.Item, env)

	case *ast.ModuleExpression:
		return in.evalModuleExpr(n, env)

	case *ast.TypeAliasExpression:
		// Aliases only matter to the type checker.
		return NULL
	}

	return NULL
}

// evalExpressions evaluates a slice left to right, flattening spreads.
// The second return is non-nil when evaluation unwound.
func (in *Interp) evalExpressions(exprs []ast.Expression, env *Environment) ([]Object, Object) {
	result := make([]Object, 0, len(exprs))
	for _, expr := range exprs {
		if spread, ok := expr.(*ast.SpreadExpression); ok {
			value := in.evalExpr(spread.Value, env)
			if isControl(value) {
				return nil, value
			}
			elems, errObj := iterableElements(value)
			if errObj != nil {
				return nil, errObj
			}
			result = append(result, elems...)
			continue
		}
		value := in.evalExpr(expr, env)
		if isControl(value) {
			return nil, value
		}
		result = append(result, value)
	}
	return result, nil
}

func (in *Interp) evalIdentifier(n *ast.Identifier, env *Environment) Object {
	if n.Value == "_" {
		return NULL
	}
	if obj, ok := env.Get(n.Value); ok {
		return obj
	}
	if builtin, ok := builtins[n.Value]; ok {
		return builtin
	}
	// Bare enum variant names resolve when unambiguous.
	if variant := in.lookupBareVariant(n.Value); variant != nil {
		return variant
	}
	return newErrorAt("UNDEF-0001", n.Token.Line, n.Token.Column, map[string]any{
		"Name": n.Value,
	})
}

func (in *Interp) evalBlock(block *ast.BlockExpression, env *Environment) Object {
	scope := NewEnclosedEnvironment(env)
	var result Object = NULL
	for _, expr := range block.Expressions {
		result = in.evalExpr(expr, scope)
		if isControl(result) {
			return result
		}
	}
	return result
}

func (in *Interp) evalLet(n *ast.LetExpression, env *Environment) Object {
	var value Object = NULL
	if n.Value != nil {
		value = in.evalExpr(n.Value, env)
		if isControl(value) {
			return value
		}
	}

	if n.Body != nil {
		scope := NewEnclosedEnvironment(env)
		scope.Set(n.Name.Value, value)
		return in.evalExpr(n.Body, scope)
	}

	env.Set(n.Name.Value, value)
	return NULL
}

func (in *Interp) evalLetPattern(n *ast.LetPatternExpression, env *Environment) Object {
	value := in.evalExpr(n.Value, env)
	if isControl(value) {
		return value
	}

	bindings, ok := tryPatternMatch(n.Pattern, value)
	if !ok {
		if n.ElseBody != nil {
			// let-else: the else block diverges.
			return in.evalExpr(n.ElseBody, NewEnclosedEnvironment(env))
		}
		return newError("STATE-0003", nil)
	}

	if n.Body != nil {
		scope := NewEnclosedEnvironment(env)
		for _, b := range bindings {
			scope.Set(b.name, b.value)
		}
		return in.evalExpr(n.Body, scope)
	}

	for _, b := range bindings {
		env.Set(b.name, b.value)
	}
	return NULL
}

func (in *Interp) evalAssign(n *ast.AssignExpression, env *Environment) Object {
	value := in.evalExpr(n.Value, env)
	if isControl(value) {
		return value
	}
	return in.assignTo(n.Target, value, env)
}

func (in *Interp) evalCompoundAssign(n *ast.CompoundAssignExpression, env *Environment) Object {
	current := in.evalExpr(n.Target, env)
	if isControl(current) {
		return current
	}
	operand := in.evalExpr(n.Value, env)
	if isControl(operand) {
		return operand
	}
	result := in.applyBinaryOp(n.Operator, current, operand)
	if isControl(result) {
		return result
	}
	return in.assignTo(n.Target, result, env)
}

// assignTo writes a value through an lvalue expression.
func (in *Interp) assignTo(target ast.Expression, value Object, env *Environment) Object {
	switch t := target.(type) {
	case *ast.Identifier:
		env.Assign(t.Value, value)
		return NULL

	case *ast.FieldAccess:
		obj := in.evalExpr(t.Object, env)
		if isControl(obj) {
			return obj
		}
		switch o := obj.(type) {
		case *Record:
			o.Set(t.Field, value)
			return NULL
		case *Actor:
			o.Fields[t.Field] = value
			return NULL
		}
		return newError("UNDEF-0002", map[string]any{
			"Field": t.Field,
			"Type":  string(obj.Type()),
		})

	case *ast.IndexAccess:
		obj := in.evalExpr(t.Object, env)
		if isControl(obj) {
			return obj
		}
		index := in.evalExpr(t.Index, env)
		if isControl(index) {
			return index
		}
		switch o := obj.(type) {
		case *Array:
			idx, ok := index.(*Integer)
			if !ok {
				return newError("OP-0001", map[string]any{
					"Left": string(obj.Type()), "Operator": "[]", "Right": string(index.Type()),
				})
			}
			i := normalizeIndex(idx.Value, len(o.Elements))
			if i < 0 || i >= int64(len(o.Elements)) {
				return newError("INDEX-0001", map[string]any{
					"Index": idx.Value, "Length": len(o.Elements),
				})
			}
			o.Elements[i] = value
			return NULL
		case *Record:
			key, ok := index.(*String)
			if !ok {
				return newError("OP-0001", map[string]any{
					"Left": string(obj.Type()), "Operator": "[]", "Right": string(index.Type()),
				})
			}
			o.Set(key.Value, value)
			return NULL
		}
		return newError("OP-0001", map[string]any{
			"Left": string(obj.Type()), "Operator": "[]", "Right": string(index.Type()),
		})
	}
	return newError("OP-0005", map[string]any{"Value": target.String()})
}

func (in *Interp) evalIncDec(operand ast.Expression, env *Environment, delta int64, pre bool) Object {
	current := in.evalExpr(operand, env)
	if isControl(current) {
		return current
	}
	num, ok := current.(*Integer)
	if !ok {
		return newError("OP-0001", map[string]any{
			"Left": string(current.Type()), "Operator": "++", "Right": "Int",
		})
	}
	updated := &Integer{Value: num.Value + delta}
	if result := in.assignTo(operand, updated, env); isControl(result) {
		return result
	}
	if pre {
		return updated
	}
	return num
}

func (in *Interp) evalIf(n *ast.IfExpression, env *Environment) Object {
	cond := in.evalExpr(n.Condition, env)
	if isControl(cond) {
		return cond
	}
	if truthy(cond) {
		return in.evalExpr(n.Consequence, env)
	}
	if n.Alternative != nil {
		return in.evalExpr(n.Alternative, env)
	}
	return NULL
}

func (in *Interp) evalIfLet(n *ast.IfLetExpression, env *Environment) Object {
	value := in.evalExpr(n.Value, env)
	if isControl(value) {
		return value
	}
	if bindings, ok := tryPatternMatch(n.Pattern, value); ok {
		scope := NewEnclosedEnvironment(env)
		for _, b := range bindings {
			scope.Set(b.name, b.value)
		}
		return in.evalExpr(n.Consequence, scope)
	}
	if n.Alternative != nil {
		return in.evalExpr(n.Alternative, env)
	}
	return NULL
}

// loopControl inspects a control object produced inside a loop body.
// It returns (result, done) where done means the loop should stop and
// yield result; otherwise iteration continues.
func loopControl(obj Object, label string) (Object, bool) {
	switch c := obj.(type) {
	case *BreakValue:
		if c.Label == "" || c.Label == label {
			return c.Value, true
		}
		return c, true // outer loop's break keeps unwinding
	case *ContinueValue:
		if c.Label == "" || c.Label == label {
			return nil, false
		}
		return c, true
	case *Error, *ReturnValue:
		return obj, true
	}
	return nil, false
}

func (in *Interp) evalWhile(n *ast.WhileExpression, env *Environment) Object {
	var result Object = NULL
	for {
		cond := in.evalExpr(n.Condition, env)
		if isControl(cond) {
			return cond
		}
		if !truthy(cond) {
			return result
		}
		body := in.evalExpr(n.Body, NewEnclosedEnvironment(env))
		if isControl(body) {
			if value, done := loopControl(body, n.Label); done {
				return value
			}
		}
	}
}

func (in *Interp) evalWhileLet(n *ast.WhileLetExpression, env *Environment) Object {
	var result Object = NULL
	for {
		value := in.evalExpr(n.Value, env)
		if isControl(value) {
			return value
		}
		bindings, ok := tryPatternMatch(n.Pattern, value)
		if !ok {
			return result
		}
		scope := NewEnclosedEnvironment(env)
		for _, b := range bindings {
			scope.Set(b.name, b.value)
		}
		body := in.evalExpr(n.Body, scope)
		if isControl(body) {
			if value, done := loopControl(body, n.Label); done {
				return value
			}
		}
	}
}

func (in *Interp) evalFor(n *ast.ForExpression, env *Environment) Object {
	iterable := in.evalExpr(n.Iterable, env)
	if isControl(iterable) {
		return iterable
	}
	elems, errObj := iterableElements(iterable)
	if errObj != nil {
		return errObj
	}

	var result Object = NULL
	for _, elem := range elems {
		bindings, ok := tryPatternMatch(n.Pattern, elem)
		if !ok {
			continue
		}
		scope := NewEnclosedEnvironment(env)
		for _, b := range bindings {
			scope.Set(b.name, b.value)
		}
		body := in.evalExpr(n.Body, scope)
		if isControl(body) {
			if value, done := loopControl(body, n.Label); done {
				return value
			}
		}
	}
	return result
}

func (in *Interp) evalLoop(n *ast.LoopExpression, env *Environment) Object {
	for {
		body := in.evalExpr(n.Body, NewEnclosedEnvironment(env))
		if isControl(body) {
			if value, done := loopControl(body, n.Label); done {
				return value
			}
		}
	}
}

func (in *Interp) evalMatch(n *ast.MatchExpression, env *Environment) Object {
	scrutinee := in.evalExpr(n.Scrutinee, env)
	if isControl(scrutinee) {
		return scrutinee
	}

	for _, arm := range n.Arms {
		bindings, ok := tryPatternMatch(arm.Pattern, scrutinee)
		if !ok {
			continue
		}
		scope := NewEnclosedEnvironment(env)
		for _, b := range bindings {
			scope.Set(b.name, b.value)
		}
		if arm.Guard != nil {
			guard := in.evalExpr(arm.Guard, scope)
			if isControl(guard) {
				return guard
			}
			if !truthy(guard) {
				continue
			}
		}
		return in.evalExpr(arm.Body, scope)
	}
	return newErrorAt("STATE-0002", n.Token.Line, n.Token.Column, nil)
}

func (in *Interp) evalList(n *ast.ListLiteral, env *Environment) Object {
	elems, errObj := in.evalExpressions(n.Elements, env)
	if errObj != nil {
		return errObj
	}
	return &Array{Elements: elems}
}

func (in *Interp) evalArrayInit(n *ast.ArrayInitLiteral, env *Environment) Object {
	value := in.evalExpr(n.Value, env)
	if isControl(value) {
		return value
	}
	size := in.evalExpr(n.Size, env)
	if isControl(size) {
		return size
	}
	count, ok := size.(*Integer)
	if !ok || count.Value < 0 {
		return newError("INDEX-0001", map[string]any{"Index": size.Inspect(), "Length": 0})
	}
	elems := make([]Object, count.Value)
	for i := range elems {
		elems[i] = value
	}
	return &Array{Elements: elems}
}

func (in *Interp) evalRange(n *ast.RangeLiteral, env *Environment) Object {
	start := in.evalExpr(n.Start, env)
	if isControl(start) {
		return start
	}
	if n.End == nil {
		// Open-ended ranges only have a length to borrow inside a slice.
		return newError("OP-0001", map[string]any{
			"Left": string(start.Type()), "Operator": "..", "Right": "Null",
		})
	}
	end := in.evalExpr(n.End, env)
	if isControl(end) {
		return end
	}
	s, ok1 := start.(*Integer)
	e, ok2 := end.(*Integer)
	if !ok1 || !ok2 {
		return newError("OP-0001", map[string]any{
			"Left": string(start.Type()), "Operator": "..", "Right": string(end.Type()),
		})
	}
	return &Range{Start: s.Value, End: e.Value, Inclusive: n.Inclusive}
}

func (in *Interp) evalComprehension(n *ast.ListComprehension, env *Environment) Object {
	var out []Object
	var walk func(clauseIdx int, scope *Environment) Object
	walk = func(clauseIdx int, scope *Environment) Object {
		if clauseIdx == len(n.Clauses) {
			value := in.evalExpr(n.Body, scope)
			if isControl(value) {
				return value
			}
			out = append(out, value)
			return nil
		}
		clause := n.Clauses[clauseIdx]
		iterable := in.evalExpr(clause.Iterable, scope)
		if isControl(iterable) {
			return iterable
		}
		elems, errObj := iterableElements(iterable)
		if errObj != nil {
			return errObj
		}
	next:
		for _, elem := range elems {
			bindings, ok := tryPatternMatch(clause.Pattern, elem)
			if !ok {
				continue
			}
			inner := NewEnclosedEnvironment(scope)
			for _, b := range bindings {
				inner.Set(b.name, b.value)
			}
			for _, cond := range clause.Conditions {
				pass := in.evalExpr(cond, inner)
				if isControl(pass) {
					return pass
				}
				if !truthy(pass) {
					continue next
				}
			}
			if ctl := walk(clauseIdx+1, inner); ctl != nil {
				return ctl
			}
		}
		return nil
	}
	if ctl := walk(0, env); ctl != nil {
		return ctl
	}
	return &Array{Elements: out}
}

func (in *Interp) evalObjectLiteral(n *ast.ObjectLiteral, env *Environment) Object {
	rec := &Record{Fields: make(map[string]Object, len(n.Fields))}
	for _, f := range n.Fields {
		value := in.evalExpr(f.Value, env)
		if isControl(value) {
			return value
		}
		rec.Set(f.Name, value)
	}
	return rec
}

func (in *Interp) evalStructLiteral(n *ast.StructLiteral, env *Environment) Object {
	rec := &Record{Name: n.Name, Fields: make(map[string]Object)}

	// Declared fields first, in declaration order, so defaults apply.
	if def, ok := in.structs[n.Name]; ok {
		for _, field := range def.Fields {
			if field.Default != nil {
				value := in.evalExpr(field.Default, env)
				if isControl(value) {
					return value
				}
				rec.Set(field.Name, value)
			} else {
				rec.Set(field.Name, NULL)
			}
		}
	}

	for _, f := range n.Fields {
		value := in.evalExpr(f.Value, env)
		if isControl(value) {
			return value
		}
		rec.Set(f.Name, value)
	}
	return rec
}

func (in *Interp) evalPipeline(n *ast.PipelineExpression, env *Environment) Object {
	current := in.evalExpr(n.Expr, env)
	if isControl(current) {
		return current
	}
	for _, stage := range n.Stages {
		// A call stage receives the piped value as its first argument;
		// any other stage is a unary function of the piped value.
		if call, ok := stage.(*ast.CallExpression); ok {
			callee := in.evalExpr(call.Function, env)
			if isControl(callee) {
				return callee
			}
			args, errObj := in.evalExpressions(call.Arguments, env)
			if errObj != nil {
				return errObj
			}
			current = in.applyFunction(callee, append([]Object{current}, args...))
		} else {
			fn := in.evalExpr(stage, env)
			if isControl(fn) {
				return fn
			}
			current = in.applyFunction(fn, []Object{current})
		}
		if rv, ok := current.(*ReturnValue); ok {
			current = rv.Value
		}
		if isControl(current) {
			return current
		}
	}
	return current
}
