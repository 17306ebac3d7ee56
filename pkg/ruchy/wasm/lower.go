package wasm

import (
	"bytes"
	"fmt"

	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
)

// shape records what a local holds beyond its wasm value type, so field
// accesses on struct and tuple addresses can be resolved statically.
type shape struct {
	structName string
	tupleElems []byte
}

type loopFrame struct {
	label      string
	breakLevel int
	contLevel  int
}

// builder lowers one function body to wasm bytecode.
type builder struct {
	em      *Emitter
	st      *SymbolTable
	code    bytes.Buffer
	depth   int
	loops   []loopFrame
	scratch uint32
	env     map[string]byte
	shapes  map[string]shape
	strVars map[string]bool
	err     error
}

func (em *Emitter) lowerFunction(wf *wasmFunc) ([]byte, error) {
	b := &builder{
		em:      em,
		st:      newSymbolTable(),
		env:     make(map[string]byte),
		shapes:  make(map[string]shape),
		strVars: make(map[string]bool),
	}
	for _, p := range wf.fl.Params {
		if p.IsSelf || p.IsMutSelf {
			return nil, fmt.Errorf("cannot compile method %q to WebAssembly", wf.name)
		}
		vt := typeFromAnnotation(p.Type)
		b.st.DefineParam(p.Name, vt)
		b.env[p.Name] = vt
	}
	b.scratch = b.st.Temp(typeI32)

	if _, hasResult := em.results[wf.name]; hasResult {
		b.lowerExpr(wf.fl.Body)
	} else {
		b.lowerStmt(wf.fl.Body)
	}
	b.code.WriteByte(opEnd)
	if b.err != nil {
		return nil, fmt.Errorf("function %q: %w", wf.name, b.err)
	}

	// Prefix the body with its local declarations, run-length encoded.
	var out bytes.Buffer
	locals := b.st.Locals()
	var runs [][2]int // count, type
	for _, vt := range locals {
		if len(runs) > 0 && runs[len(runs)-1][1] == int(vt) {
			runs[len(runs)-1][0]++
		} else {
			runs = append(runs, [2]int{1, int(vt)})
		}
	}
	writeULEB(&out, uint32(len(runs)))
	for _, r := range runs {
		writeULEB(&out, uint32(r[0]))
		out.WriteByte(byte(r[1]))
	}
	out.Write(b.code.Bytes())
	return out.Bytes(), nil
}

func (b *builder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf(format, args...)
	}
}

func (b *builder) op(ops ...byte)     { b.code.Write(ops) }
func (b *builder) uleb(v uint32)      { writeULEB(&b.code, v) }
func (b *builder) sleb(v int64)       { writeSLEB(&b.code, v) }
func (b *builder) constI32(v int64)   { b.op(opI32Const); b.sleb(v) }
func (b *builder) constF64(f float64) { b.op(opF64Const); writeF64(&b.code, f) }

func (b *builder) localGet(idx uint32) { b.op(opLocalGet); b.uleb(idx) }
func (b *builder) localSet(idx uint32) { b.op(opLocalSet); b.uleb(idx) }

// memory access with natural alignment
func (b *builder) load(vt byte, offset uint32) {
	if vt == typeF64 {
		b.op(opF64Load, 3)
	} else {
		b.op(opI32Load, 2)
	}
	b.uleb(offset)
}

func (b *builder) store(vt byte, offset uint32) {
	if vt == typeF64 {
		b.op(opF64Store, 3)
	} else {
		b.op(opI32Store, 2)
	}
	b.uleb(offset)
}

// alloc reserves size bytes from the bump allocator and leaves the base
// address in the scratch local.
func (b *builder) alloc(size uint32) {
	b.op(opGlobalGet)
	b.uleb(0)
	b.localSet(b.scratch)
	b.op(opGlobalGet)
	b.uleb(0)
	b.constI32(int64(size))
	b.op(opI32Add)
	b.op(opGlobalSet)
	b.uleb(0)
}

// lowerStmt lowers an expression for its effect, leaving the stack empty.
func (b *builder) lowerStmt(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.LetExpression:
		b.lowerLet(e, false)
	case *ast.AssignExpression:
		b.lowerAssign(e)
	case *ast.CompoundAssignExpression:
		b.lowerCompoundAssign(e)
	case *ast.WhileExpression:
		b.lowerWhile(e)
	case *ast.ForExpression:
		b.lowerFor(e)
	case *ast.BreakExpression:
		b.lowerBreak(e)
	case *ast.ContinueExpression:
		b.lowerContinue(e)
	case *ast.ReturnExpression:
		b.lowerReturn(e)
	case *ast.MacroInvocation:
		b.lowerMacro(e)
	case *ast.BlockExpression:
		for _, inner := range e.Expressions {
			b.lowerStmt(inner)
		}
	case *ast.IfExpression:
		b.lowerExpr(e.Condition)
		b.op(opIf, blockEmpty)
		b.depth++
		b.lowerStmt(e.Consequence)
		if e.Alternative != nil {
			b.op(opElse)
			b.lowerStmt(e.Alternative)
		}
		b.op(opEnd)
		b.depth--
	default:
		if _, has := b.staticOf(expr); has {
			b.lowerExpr(expr)
			b.op(opDrop)
			return
		}
		b.lowerExpr(expr)
	}
}

// lowerExpr lowers an expression for its value.
func (b *builder) lowerExpr(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		b.constI32(e.Value)
	case *ast.FloatLiteral:
		b.constF64(e.Value)
	case *ast.BooleanLiteral:
		if e.Value {
			b.constI32(1)
		} else {
			b.constI32(0)
		}
	case *ast.CharLiteral:
		b.constI32(int64(e.Value))
	case *ast.StringLiteral:
		b.constI32(int64(b.em.internString(e.Value)))
	case *ast.Identifier:
		idx, _, ok := b.st.Resolve(e.Value)
		if !ok {
			b.fail("undefined name %q", e.Value)
			return
		}
		b.localGet(idx)
	case *ast.PrefixExpression:
		b.lowerPrefix(e)
	case *ast.InfixExpression:
		b.lowerInfix(e)
	case *ast.TernaryExpression:
		b.lowerConditional(e.Condition, e.Then, e.Else)
	case *ast.IfExpression:
		if e.Alternative == nil {
			b.fail("if without else has no value")
			return
		}
		b.lowerConditional(e.Condition, e.Consequence, e.Alternative)
	case *ast.BlockExpression:
		b.lowerBlockValue(e)
	case *ast.LetExpression:
		b.lowerLet(e, true)
	case *ast.CallExpression:
		b.lowerCall(e)
	case *ast.MethodCallExpression:
		b.lowerMethodCall(e)
	case *ast.MatchExpression:
		b.lowerMatch(e)
	case *ast.ReturnExpression:
		b.lowerReturn(e)
	case *ast.TypeCastExpression:
		b.lowerCast(e)
	case *ast.TupleLiteral:
		b.lowerTuple(e)
	case *ast.ListLiteral:
		b.lowerList(e)
	case *ast.StructLiteral:
		b.lowerStructLiteral(e)
	case *ast.FieldAccess:
		b.lowerFieldAccess(e)
	case *ast.IndexAccess:
		b.lowerIndexAccess(e)
	case *ast.AwaitExpression:
		b.lowerExpr(e.Value)
	default:
		b.fail("cannot compile %T to WebAssembly", expr)
	}
}

func (b *builder) lowerBlockValue(block *ast.BlockExpression) {
	if len(block.Expressions) == 0 {
		b.fail("empty block has no value")
		return
	}
	for _, inner := range block.Expressions[:len(block.Expressions)-1] {
		b.lowerStmt(inner)
	}
	b.lowerExpr(block.Expressions[len(block.Expressions)-1])
}

func (b *builder) lowerLet(e *ast.LetExpression, wantValue bool) {
	vt, has := b.staticOf(e.Value)
	if !has {
		b.fail("let value has no result")
		return
	}
	b.lowerExpr(e.Value)
	idx := b.st.Define(e.Name.Value, vt)
	b.localSet(idx)
	b.env[e.Name.Value] = vt
	b.recordShape(e.Name.Value, e.Value)
	if e.Body != nil {
		if wantValue {
			b.lowerExpr(e.Body)
		} else {
			b.lowerStmt(e.Body)
		}
		return
	}
	if wantValue {
		b.fail("let binding has no value")
	}
}

func (b *builder) recordShape(name string, value ast.Expression) {
	switch v := value.(type) {
	case *ast.StructLiteral:
		b.shapes[name] = shape{structName: v.Name}
	case *ast.TupleLiteral:
		elems := make([]byte, len(v.Elements))
		for i, el := range v.Elements {
			elems[i], _ = b.staticOf(el)
		}
		b.shapes[name] = shape{tupleElems: elems}
	case *ast.StringLiteral:
		b.strVars[name] = true
	case *ast.Identifier:
		if s, ok := b.shapes[v.Value]; ok {
			b.shapes[name] = s
		}
		if b.strVars[v.Value] {
			b.strVars[name] = true
		}
	}
}

func (b *builder) lowerAssign(e *ast.AssignExpression) {
	target, ok := e.Target.(*ast.Identifier)
	if !ok {
		b.fail("cannot compile assignment to %T", e.Target)
		return
	}
	idx, _, found := b.st.Resolve(target.Value)
	if !found {
		b.fail("undefined name %q", target.Value)
		return
	}
	b.lowerExpr(e.Value)
	b.localSet(idx)
}

func (b *builder) lowerCompoundAssign(e *ast.CompoundAssignExpression) {
	target, ok := e.Target.(*ast.Identifier)
	if !ok {
		b.fail("cannot compile assignment to %T", e.Target)
		return
	}
	idx, vt, found := b.st.Resolve(target.Value)
	if !found {
		b.fail("undefined name %q", target.Value)
		return
	}
	b.localGet(idx)
	b.lowerExpr(e.Value)
	b.arith(e.Operator, vt)
	b.localSet(idx)
}

func (b *builder) lowerPrefix(e *ast.PrefixExpression) {
	vt, _ := b.staticOf(e.Right)
	switch e.Operator {
	case "-":
		if vt == typeF64 {
			b.lowerExpr(e.Right)
			b.op(opF64Neg)
			return
		}
		b.constI32(0)
		b.lowerExpr(e.Right)
		b.op(opI32Sub)
	case "!":
		b.lowerExpr(e.Right)
		b.op(opI32Eqz)
	case "~":
		b.lowerExpr(e.Right)
		b.constI32(-1)
		b.op(opI32Xor)
	default:
		b.fail("cannot compile prefix %q", e.Operator)
	}
}

func (b *builder) lowerInfix(e *ast.InfixExpression) {
	switch e.Operator {
	case "&&":
		b.lowerExpr(e.Left)
		b.op(opIf, typeI32)
		b.depth++
		b.lowerExpr(e.Right)
		b.op(opElse)
		b.constI32(0)
		b.op(opEnd)
		b.depth--
		return
	case "||":
		b.lowerExpr(e.Left)
		b.op(opIf, typeI32)
		b.depth++
		b.constI32(1)
		b.op(opElse)
		b.lowerExpr(e.Right)
		b.op(opEnd)
		b.depth--
		return
	}
	vt, _ := b.staticOf(e.Left)
	b.lowerExpr(e.Left)
	b.lowerExpr(e.Right)
	b.arith(e.Operator, vt)
}

// arith emits the operator for two operands of type vt already on the stack.
func (b *builder) arith(operator string, vt byte) {
	type ops struct{ i32, f64 byte }
	table := map[string]ops{
		"+": {opI32Add, opF64Add}, "-": {opI32Sub, opF64Sub},
		"*": {opI32Mul, opF64Mul}, "/": {opI32DivS, opF64Div},
		"%":  {opI32RemS, 0},
		"==": {opI32Eq, opF64Eq}, "!=": {opI32Ne, opF64Ne},
		"<": {opI32LtS, opF64Lt}, ">": {opI32GtS, opF64Gt},
		"<=": {opI32LeS, opF64Le}, ">=": {opI32GeS, opF64Ge},
		"&": {opI32And, 0}, "|": {opI32Or, 0}, "^": {opI32Xor, 0},
		"<<": {opI32Shl, 0}, ">>": {opI32ShrS, 0},
		"+=": {opI32Add, opF64Add}, "-=": {opI32Sub, opF64Sub},
		"*=": {opI32Mul, opF64Mul}, "/=": {opI32DivS, opF64Div},
		"%=": {opI32RemS, 0},
	}
	entry, ok := table[operator]
	if !ok {
		b.fail("cannot compile operator %q", operator)
		return
	}
	if vt == typeF64 {
		if entry.f64 == 0 {
			b.fail("operator %q is not defined for floats", operator)
			return
		}
		b.op(entry.f64)
		return
	}
	b.op(entry.i32)
}

func (b *builder) lowerConditional(cond, then, alt ast.Expression) {
	vt, has := b.staticOf(then)
	b.lowerExpr(cond)
	if has {
		b.op(opIf, vt)
	} else {
		b.op(opIf, blockEmpty)
	}
	b.depth++
	if has {
		b.lowerExpr(then)
		b.op(opElse)
		b.lowerExpr(alt)
	} else {
		b.lowerStmt(then)
		b.op(opElse)
		b.lowerStmt(alt)
	}
	b.op(opEnd)
	b.depth--
}

func (b *builder) lowerWhile(e *ast.WhileExpression) {
	b.op(opBlock, blockEmpty)
	frame := loopFrame{label: e.Label, breakLevel: b.depth}
	b.depth++
	b.op(opLoop, blockEmpty)
	frame.contLevel = b.depth
	b.depth++
	b.loops = append(b.loops, frame)

	b.lowerExpr(e.Condition)
	b.op(opI32Eqz)
	b.op(opBrIf)
	b.uleb(uint32(b.depth - 1 - frame.breakLevel))
	b.lowerStmt(e.Body)
	b.op(opBr)
	b.uleb(uint32(b.depth - 1 - frame.contLevel))

	b.op(opEnd, opEnd)
	b.depth -= 2
	b.loops = b.loops[:len(b.loops)-1]
}

func (b *builder) lowerFor(e *ast.ForExpression) {
	rng, ok := e.Iterable.(*ast.RangeLiteral)
	if !ok {
		b.fail("for loops compile only over ranges")
		return
	}
	ident, ok := e.Pattern.(*ast.IdentifierPattern)
	if !ok {
		b.fail("for loops compile only with a simple binding")
		return
	}

	iVar := b.st.Define(ident.Name, typeI32)
	b.env[ident.Name] = typeI32
	endVar := b.st.Temp(typeI32)
	b.lowerExpr(rng.Start)
	b.localSet(iVar)
	b.lowerExpr(rng.End)
	b.localSet(endVar)

	b.op(opBlock, blockEmpty)
	frame := loopFrame{label: e.Label, breakLevel: b.depth}
	b.depth++
	b.op(opLoop, blockEmpty)
	frame.contLevel = b.depth
	b.depth++
	b.loops = append(b.loops, frame)

	b.localGet(iVar)
	b.localGet(endVar)
	if rng.Inclusive {
		b.op(opI32GtS)
	} else {
		b.op(opI32GeS)
	}
	b.op(opBrIf)
	b.uleb(uint32(b.depth - 1 - frame.breakLevel))

	b.lowerStmt(e.Body)

	b.localGet(iVar)
	b.constI32(1)
	b.op(opI32Add)
	b.localSet(iVar)
	b.op(opBr)
	b.uleb(uint32(b.depth - 1 - frame.contLevel))

	b.op(opEnd, opEnd)
	b.depth -= 2
	b.loops = b.loops[:len(b.loops)-1]
}

func (b *builder) findLoop(label string) *loopFrame {
	if len(b.loops) == 0 {
		return nil
	}
	if label == "" {
		return &b.loops[len(b.loops)-1]
	}
	for i := len(b.loops) - 1; i >= 0; i-- {
		if b.loops[i].label == label {
			return &b.loops[i]
		}
	}
	return nil
}

func (b *builder) lowerBreak(e *ast.BreakExpression) {
	if e.Value != nil {
		b.fail("break with a value cannot be compiled")
		return
	}
	frame := b.findLoop(e.Label)
	if frame == nil {
		b.fail("break outside a loop")
		return
	}
	b.op(opBr)
	b.uleb(uint32(b.depth - 1 - frame.breakLevel))
}

func (b *builder) lowerContinue(e *ast.ContinueExpression) {
	frame := b.findLoop(e.Label)
	if frame == nil {
		b.fail("continue outside a loop")
		return
	}
	b.op(opBr)
	b.uleb(uint32(b.depth - 1 - frame.contLevel))
}

func (b *builder) lowerReturn(e *ast.ReturnExpression) {
	if e.Value != nil {
		b.lowerExpr(e.Value)
	}
	b.op(opReturn)
}

func (b *builder) lowerCall(e *ast.CallExpression) {
	callee, ok := e.Function.(*ast.Identifier)
	if !ok {
		b.fail("cannot compile indirect call through %T", e.Function)
		return
	}
	idx, ok := b.em.indexOf[callee.Value]
	if !ok {
		b.fail("call to unknown function %q", callee.Value)
		return
	}
	for _, arg := range e.Arguments {
		b.lowerExpr(arg)
	}
	b.op(opCall)
	b.uleb(idx)
}

func (b *builder) lowerMethodCall(e *ast.MethodCallExpression) {
	if e.Method == "sqrt" && len(e.Arguments) == 0 {
		b.lowerExpr(e.Receiver)
		b.op(opF64Sqrt)
		return
	}
	if e.Method == "abs" && len(e.Arguments) == 0 {
		if vt, _ := b.staticOf(e.Receiver); vt == typeF64 {
			b.lowerExpr(e.Receiver)
			b.op(0x99) // f64.abs
			return
		}
	}
	b.fail("cannot compile method call .%s", e.Method)
}

func (b *builder) lowerCast(e *ast.TypeCastExpression) {
	from, _ := b.staticOf(e.Value)
	to := typeFromAnnotation(e.Target)
	b.lowerExpr(e.Value)
	switch {
	case from == to:
	case from == typeI32 && to == typeF64:
		b.op(opF64ConvertI32S)
	case from == typeF64 && to == typeI32:
		b.op(opI32TruncF64S)
	default:
		b.fail("cannot compile cast")
	}
}

// lowerMatch compiles a match into a cascade of equality and bound tests.
func (b *builder) lowerMatch(e *ast.MatchExpression) {
	svt, _ := b.staticOf(e.Scrutinee)
	if svt != typeI32 {
		b.fail("match compiles only over integers")
		return
	}
	sVar := b.st.Temp(typeI32)
	b.lowerExpr(e.Scrutinee)
	b.localSet(sVar)

	rt, hasValue := b.staticOf(e.Arms[0].Body)
	b.lowerArms(e.Arms, sVar, rt, hasValue)
}

func (b *builder) lowerArms(arms []*ast.MatchArm, sVar uint32, rt byte, hasValue bool) {
	if len(arms) == 0 {
		b.op(opUnreachable)
		return
	}
	arm := arms[0]

	catchAll := false
	switch p := arm.Pattern.(type) {
	case *ast.WildcardPattern:
		catchAll = arm.Guard == nil
	case *ast.IdentifierPattern:
		idx := b.st.Define(p.Name, typeI32)
		b.env[p.Name] = typeI32
		b.localGet(sVar)
		b.localSet(idx)
		catchAll = arm.Guard == nil
	}

	if catchAll {
		if hasValue {
			b.lowerExpr(arm.Body)
		} else {
			b.lowerStmt(arm.Body)
		}
		return
	}

	b.lowerArmTest(arm, sVar)
	if hasValue {
		b.op(opIf, rt)
	} else {
		b.op(opIf, blockEmpty)
	}
	b.depth++
	if hasValue {
		b.lowerExpr(arm.Body)
	} else {
		b.lowerStmt(arm.Body)
	}
	b.op(opElse)
	b.lowerArms(arms[1:], sVar, rt, hasValue)
	b.op(opEnd)
	b.depth--
}

func (b *builder) lowerArmTest(arm *ast.MatchArm, sVar uint32) {
	b.lowerPatternTest(arm.Pattern, sVar)
	if arm.Guard != nil {
		b.lowerExpr(arm.Guard)
		b.op(opI32And)
	}
}

func (b *builder) lowerPatternTest(pattern ast.Pattern, sVar uint32) {
	switch p := pattern.(type) {
	case *ast.WildcardPattern, *ast.IdentifierPattern:
		b.constI32(1)
	case *ast.LiteralPattern:
		b.localGet(sVar)
		b.lowerExpr(p.Value)
		b.op(opI32Eq)
	case *ast.RangePattern:
		b.localGet(sVar)
		b.lowerExpr(p.Start)
		b.op(opI32GeS)
		b.localGet(sVar)
		b.lowerExpr(p.End)
		if p.Inclusive {
			b.op(opI32LeS)
		} else {
			b.op(opI32LtS)
		}
		b.op(opI32And)
	case *ast.OrPattern:
		for i, alt := range p.Alternatives {
			b.lowerPatternTest(alt, sVar)
			if i > 0 {
				b.op(opI32Or)
			}
		}
	default:
		b.fail("cannot compile pattern %T", pattern)
	}
}

// lowerMacro stages println!/print! output through the host interface.
func (b *builder) lowerMacro(e *ast.MacroInvocation) {
	switch e.Name {
	case "println", "print":
		for _, arg := range e.Arguments {
			b.stageValue(arg)
		}
		if e.Name == "println" {
			b.op(opCall)
			b.uleb(b.em.indexOf["$println"])
		}
	default:
		b.fail("cannot compile macro %s!", e.Name)
	}
}

// stageValue writes one value into the host staging buffer.
func (b *builder) stageValue(arg ast.Expression) {
	if interp, ok := arg.(*ast.StringInterpolation); ok {
		for _, part := range interp.Parts {
			if part.Expr == nil {
				b.constI32(int64(b.em.internString(part.Text)))
				b.op(opCall)
				b.uleb(b.em.indexOf["$print_str"])
				continue
			}
			b.stageValue(part.Expr)
		}
		return
	}
	vt, has := b.staticOf(arg)
	if !has {
		b.fail("cannot print a valueless expression")
		return
	}
	b.lowerExpr(arg)
	switch {
	case vt == typeF64:
		b.op(opCall)
		b.uleb(b.em.indexOf["$print_float"])
	case b.isStringValued(arg):
		b.op(opCall)
		b.uleb(b.em.indexOf["$print_str"])
	default:
		b.op(opCall)
		b.uleb(b.em.indexOf["$print_int"])
	}
}

func (b *builder) isStringValued(e ast.Expression) bool {
	switch v := e.(type) {
	case *ast.StringLiteral:
		return true
	case *ast.Identifier:
		return b.strVars[v.Value]
	}
	return false
}

func (b *builder) lowerTuple(e *ast.TupleLiteral) {
	size := uint32(len(e.Elements)) * 8
	b.alloc(size)
	for i, el := range e.Elements {
		vt, _ := b.staticOf(el)
		b.localGet(b.scratch)
		b.lowerExpr(el)
		b.store(vt, uint32(i)*8)
	}
	b.localGet(b.scratch)
}

func (b *builder) lowerList(e *ast.ListLiteral) {
	size := 4 + uint32(len(e.Elements))*4
	b.alloc(size)
	b.localGet(b.scratch)
	b.constI32(int64(len(e.Elements)))
	b.store(typeI32, 0)
	for i, el := range e.Elements {
		b.localGet(b.scratch)
		b.lowerExpr(el)
		b.store(typeI32, 4+uint32(i)*4)
	}
	b.localGet(b.scratch)
}

func (b *builder) lowerStructLiteral(e *ast.StructLiteral) {
	fields, ok := b.em.structs[e.Name]
	if !ok {
		b.fail("unknown struct %q", e.Name)
		return
	}
	b.alloc(uint32(len(fields)) * 8)
	for i, f := range fields {
		var value ast.Expression
		for _, init := range e.Fields {
			if init.Name == f.name {
				value = init.Value
				break
			}
		}
		if value == nil {
			b.fail("struct literal %s is missing field %q", e.Name, f.name)
			return
		}
		b.localGet(b.scratch)
		b.lowerExpr(value)
		b.store(f.vtype, uint32(i)*8)
	}
	b.localGet(b.scratch)
}

func (b *builder) lowerFieldAccess(e *ast.FieldAccess) {
	ident, ok := e.Object.(*ast.Identifier)
	if !ok {
		b.fail("cannot compile field access on %T", e.Object)
		return
	}
	s, ok := b.shapes[ident.Value]
	if !ok {
		b.fail("cannot resolve the layout of %q", ident.Value)
		return
	}
	idx, _, _ := b.st.Resolve(ident.Value)

	if s.structName != "" {
		for i, f := range b.em.structs[s.structName] {
			if f.name == e.Field {
				b.localGet(idx)
				b.load(f.vtype, uint32(i)*8)
				return
			}
		}
		b.fail("struct %s has no field %q", s.structName, e.Field)
		return
	}
	var n int
	if _, err := fmt.Sscanf(e.Field, "%d", &n); err != nil || n < 0 || n >= len(s.tupleElems) {
		b.fail("tuple index %q out of range", e.Field)
		return
	}
	b.localGet(idx)
	b.load(s.tupleElems[n], uint32(n)*8)
}

func (b *builder) lowerIndexAccess(e *ast.IndexAccess) {
	b.lowerExpr(e.Object)
	b.constI32(4)
	b.op(opI32Add)
	b.lowerExpr(e.Index)
	b.constI32(4)
	b.op(opI32Mul)
	b.op(opI32Add)
	b.load(typeI32, 0)
}

// staticOf resolves an expression's wasm type without emitting code. The
// second result is false for statements that leave nothing on the stack.
func (b *builder) staticOf(e ast.Expression) (byte, bool) {
	return b.em.staticTypeWith(e, b.env, b.shapes, b.stLookup)
}

func (b *builder) stLookup(name string) (byte, bool) {
	_, vt, ok := b.st.Resolve(name)
	return vt, ok
}

// staticType is the pre-lowering form used for signature inference.
func (em *Emitter) staticType(e ast.Expression, env map[string]byte, shapes map[string]shape) (byte, bool) {
	return em.staticTypeWith(e, env, shapes, nil)
}

func (em *Emitter) staticTypeWith(e ast.Expression, env map[string]byte,
	shapes map[string]shape, lookup func(string) (byte, bool)) (byte, bool) {

	recur := func(x ast.Expression) (byte, bool) {
		return em.staticTypeWith(x, env, shapes, lookup)
	}

	switch n := e.(type) {
	case *ast.IntegerLiteral, *ast.BooleanLiteral, *ast.CharLiteral,
		*ast.StringLiteral, *ast.TupleLiteral, *ast.ListLiteral,
		*ast.StructLiteral, *ast.IndexAccess, *ast.StringInterpolation:
		return typeI32, true
	case *ast.FloatLiteral:
		return typeF64, true
	case *ast.Identifier:
		if lookup != nil {
			if vt, ok := lookup(n.Value); ok {
				return vt, true
			}
		}
		if vt, ok := env[n.Value]; ok {
			return vt, true
		}
		return typeI32, true
	case *ast.PrefixExpression:
		if n.Operator == "!" {
			return typeI32, true
		}
		return recur(n.Right)
	case *ast.InfixExpression:
		switch n.Operator {
		case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
			return typeI32, true
		}
		return recur(n.Left)
	case *ast.TernaryExpression:
		return recur(n.Then)
	case *ast.IfExpression:
		if n.Alternative == nil {
			return 0, false
		}
		return recur(n.Consequence)
	case *ast.BlockExpression:
		if len(n.Expressions) == 0 {
			return 0, false
		}
		scoped := env
		for _, inner := range n.Expressions[:len(n.Expressions)-1] {
			if let, ok := inner.(*ast.LetExpression); ok && let.Body == nil {
				if scoped == nil {
					scoped = make(map[string]byte)
				}
				vt, _ := em.staticTypeWith(let.Value, scoped, shapes, lookup)
				next := make(map[string]byte, len(scoped)+1)
				for k, v := range scoped {
					next[k] = v
				}
				next[let.Name.Value] = vt
				scoped = next
			}
		}
		return em.staticTypeWith(n.Expressions[len(n.Expressions)-1], scoped, shapes, lookup)
	case *ast.LetExpression:
		if n.Body != nil {
			return recur(n.Body)
		}
		return 0, false
	case *ast.CallExpression:
		callee, ok := n.Function.(*ast.Identifier)
		if !ok {
			return 0, false
		}
		if vt, has := em.results[callee.Value]; has {
			return vt, true
		}
		return 0, false
	case *ast.MethodCallExpression:
		if n.Method == "sqrt" || n.Method == "abs" {
			return recur(n.Receiver)
		}
		return typeI32, true
	case *ast.MatchExpression:
		if len(n.Arms) == 0 {
			return 0, false
		}
		return recur(n.Arms[0].Body)
	case *ast.TypeCastExpression:
		return typeFromAnnotation(n.Target), true
	case *ast.FieldAccess:
		if shapes != nil {
			if ident, ok := n.Object.(*ast.Identifier); ok {
				if s, found := shapes[ident.Value]; found {
					if s.structName != "" {
						for _, f := range em.structs[s.structName] {
							if f.name == n.Field {
								return f.vtype, true
							}
						}
					}
					var idx int
					if _, err := fmt.Sscanf(n.Field, "%d", &idx); err == nil &&
						idx >= 0 && idx < len(s.tupleElems) {
						return s.tupleElems[idx], true
					}
				}
			}
		}
		return typeI32, true
	case *ast.AwaitExpression:
		return recur(n.Value)
	case *ast.AssignExpression, *ast.CompoundAssignExpression,
		*ast.WhileExpression, *ast.ForExpression, *ast.LoopExpression,
		*ast.BreakExpression, *ast.ContinueExpression,
		*ast.ReturnExpression, *ast.MacroInvocation:
		return 0, false
	}
	return typeI32, true
}
