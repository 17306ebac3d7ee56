// Package ast defines the node types for the Ruchy expression AST.
//
// Ruchy is expression-oriented: a program is a sequence of expressions and
// every construct, including definitions and control flow, is an Expression.
// Each node carries its introducing token; Span() returns the byte range the
// node covers, merging child spans where the node has children.
package ast

import (
	"bytes"
	"strings"

	"github.com/ruchy-lang/ruchy/pkg/ruchy/lexer"
)

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
	Span() lexer.Span
}

// Expression represents expression nodes
type Expression interface {
	Node
	expressionNode()
}

// Program represents the root node of every AST
type Program struct {
	Expressions []Expression
}

func (p *Program) TokenLiteral() string {
	if len(p.Expressions) > 0 {
		return p.Expressions[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for i, e := range p.Expressions {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(e.String())
	}
	return out.String()
}

func (p *Program) Span() lexer.Span {
	if len(p.Expressions) == 0 {
		return lexer.Span{}
	}
	return p.Expressions[0].Span().Merge(p.Expressions[len(p.Expressions)-1].Span())
}

// spanOf merges a token span with any non-nil child spans.
func spanOf(tok lexer.Token, children ...Node) lexer.Span {
	s := tok.Span
	for _, c := range children {
		if c != nil {
			s = s.Merge(c.Span())
		}
	}
	return s
}

// joinNodes renders a node slice as a comma-separated list.
func joinNodes[T Node](nodes []T, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, sep)
}

// ---------------------------------------------------------------------------
// Literals
// ---------------------------------------------------------------------------

// Identifier represents identifier expressions
type Identifier struct {
	Token lexer.Token // the lexer.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }
func (i *Identifier) Span() lexer.Span     { return i.Token.Span }

// / QualifiedName represents path expressions like Point::new or math::pi
type QualifiedName struct {
	Token lexer.Token // the first segment token
	Parts []string
}

func (q *QualifiedName) expressionNode()      {}
func (q *QualifiedName) TokenLiteral() string { return q.Token.Literal }
func (q *QualifiedName) String() string       { return strings.Join(q.Parts, "::") }
func (q *QualifiedName) Span() lexer.Span     { return q.Token.Span }

// IntegerLiteral represents integer literals
type IntegerLiteral struct {
	Token lexer.Token // the lexer.INT token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) String() string       { return il.Token.Literal }
func (il *IntegerLiteral) Span() lexer.Span     { return il.Token.Span }

// FloatLiteral represents floating-point literals
type FloatLiteral struct {
	Token lexer.Token // the lexer.FLOAT token
	Value float64
}

func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLiteral) String() string       { return fl.Token.Literal }
func (fl *FloatLiteral) Span() lexer.Span     { return fl.Token.Span }

// StringLiteral represents string literals (escapes already decoded)
type StringLiteral struct {
	Token lexer.Token // the lexer.STRING or RAW_STRING token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return `"` + sl.Value + `"` }
func (sl *StringLiteral) Span() lexer.Span     { return sl.Token.Span }

// BooleanLiteral represents true/false
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) String() string       { return bl.Token.Literal }
func (bl *BooleanLiteral) Span() lexer.Span     { return bl.Token.Span }

// CharLiteral represents character literals like 'a'
type CharLiteral struct {
	Token lexer.Token
	Value rune
}

func (cl *CharLiteral) expressionNode()      {}
func (cl *CharLiteral) TokenLiteral() string { return cl.Token.Literal }
func (cl *CharLiteral) String() string       { return "'" + string(cl.Value) + "'" }
func (cl *CharLiteral) Span() lexer.Span     { return cl.Token.Span }

// ByteLiteral represents byte literals like b'a'
type ByteLiteral struct {
	Token lexer.Token
	Value byte
}

func (bl *ByteLiteral) expressionNode()      {}
func (bl *ByteLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *ByteLiteral) String() string       { return "b'" + string(bl.Value) + "'" }
func (bl *ByteLiteral) Span() lexer.Span     { return bl.Token.Span }

// NullLiteral represents null/nil
type NullLiteral struct {
	Token lexer.Token
}

func (nl *NullLiteral) expressionNode()      {}
func (nl *NullLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NullLiteral) String() string       { return "null" }
func (nl *NullLiteral) Span() lexer.Span     { return nl.Token.Span }

// / AtomLiteral represents atom literals like :ok
type AtomLiteral struct {
	Token lexer.Token
	Value string
}

func (al *AtomLiteral) expressionNode()      {}
func (al *AtomLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *AtomLiteral) String() string       { return ":" + al.Value }
func (al *AtomLiteral) Span() lexer.Span     { return al.Token.Span }

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

// PrefixExpression represents prefix operator expressions like !x or -x
type PrefixExpression struct {
	Token    lexer.Token // the prefix token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}
func (pe *PrefixExpression) Span() lexer.Span { return spanOf(pe.Token, pe.Right) }

// InfixExpression represents binary operator expressions
type InfixExpression struct {
	Token    lexer.Token // the operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}
func (ie *InfixExpression) Span() lexer.Span { return spanOf(ie.Token, ie.Left, ie.Right) }

// TernaryExpression represents cond ? then : else
type TernaryExpression struct {
	Token     lexer.Token // the '?' token
	Condition Expression
	Then      Expression
	Else      Expression
}

func (te *TernaryExpression) expressionNode()      {}
func (te *TernaryExpression) TokenLiteral() string { return te.Token.Literal }
func (te *TernaryExpression) String() string {
	return "(" + te.Condition.String() + " ? " + te.Then.String() + " : " + te.Else.String() + ")"
}
func (te *TernaryExpression) Span() lexer.Span {
	return spanOf(te.Token, te.Condition, te.Else)
}

// PreIncrement represents ++x
type PreIncrement struct {
	Token   lexer.Token
	Operand Expression
}

func (pi *PreIncrement) expressionNode()      {}
func (pi *PreIncrement) TokenLiteral() string { return pi.Token.Literal }
func (pi *PreIncrement) String() string       { return "(++" + pi.Operand.String() + ")" }
func (pi *PreIncrement) Span() lexer.Span     { return spanOf(pi.Token, pi.Operand) }

// PreDecrement represents --x
type PreDecrement struct {
	Token   lexer.Token
	Operand Expression
}

func (pd *PreDecrement) expressionNode()      {}
func (pd *PreDecrement) TokenLiteral() string { return pd.Token.Literal }
func (pd *PreDecrement) String() string       { return "(--" + pd.Operand.String() + ")" }
func (pd *PreDecrement) Span() lexer.Span     { return spanOf(pd.Token, pd.Operand) }

// PostIncrement represents x++
type PostIncrement struct {
	Token   lexer.Token
	Operand Expression
}

func (pi *PostIncrement) expressionNode()      {}
func (pi *PostIncrement) TokenLiteral() string { return pi.Token.Literal }
func (pi *PostIncrement) String() string       { return "(" + pi.Operand.String() + "++)" }
func (pi *PostIncrement) Span() lexer.Span     { return spanOf(pi.Token, pi.Operand) }

// PostDecrement represents x--
type PostDecrement struct {
	Token   lexer.Token
	Operand Expression
}

func (pd *PostDecrement) expressionNode()      {}
func (pd *PostDecrement) TokenLiteral() string { return pd.Token.Literal }
func (pd *PostDecrement) String() string       { return "(" + pd.Operand.String() + "--)" }
func (pd *PostDecrement) Span() lexer.Span     { return spanOf(pd.Token, pd.Operand) }

// ---------------------------------------------------------------------------
// Calls and access
// ---------------------------------------------------------------------------

// CallExpression represents function calls
type CallExpression struct {
	Token     lexer.Token // the '(' token
	Function  Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	return ce.Function.String() + "(" + joinNodes(ce.Arguments, ", ") + ")"
}
func (ce *CallExpression) Span() lexer.Span { return spanOf(ce.Token, ce.Function) }

// MethodCallExpression represents receiver.method(args)
type MethodCallExpression struct {
	Token     lexer.Token // the method name token
	Receiver  Expression
	Method    string
	Arguments []Expression
}

func (mc *MethodCallExpression) expressionNode()      {}
func (mc *MethodCallExpression) TokenLiteral() string { return mc.Token.Literal }
func (mc *MethodCallExpression) String() string {
	return mc.Receiver.String() + "." + mc.Method + "(" + joinNodes(mc.Arguments, ", ") + ")"
}
func (mc *MethodCallExpression) Span() lexer.Span { return spanOf(mc.Token, mc.Receiver) }

// FieldAccess represents receiver.field
type FieldAccess struct {
	Token  lexer.Token // the field name token
	Object Expression
	Field  string
}

func (fa *FieldAccess) expressionNode()      {}
func (fa *FieldAccess) TokenLiteral() string { return fa.Token.Literal }
func (fa *FieldAccess) String() string       { return fa.Object.String() + "." + fa.Field }
func (fa *FieldAccess) Span() lexer.Span     { return spanOf(fa.Token, fa.Object) }

// IndexAccess represents receiver[index]
type IndexAccess struct {
	Token  lexer.Token // the '[' token
	Object Expression
	Index  Expression
}

func (ia *IndexAccess) expressionNode()      {}
func (ia *IndexAccess) TokenLiteral() string { return ia.Token.Literal }
func (ia *IndexAccess) String() string {
	return ia.Object.String() + "[" + ia.Index.String() + "]"
}
func (ia *IndexAccess) Span() lexer.Span { return spanOf(ia.Token, ia.Object, ia.Index) }

// SliceExpression represents receiver[start..end]
type SliceExpression struct {
	Token  lexer.Token // the '[' token
	Object Expression
	Start  Expression // nil for open start
	End    Expression // nil for open end
}

func (se *SliceExpression) expressionNode()      {}
func (se *SliceExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SliceExpression) String() string {
	var out bytes.Buffer
	out.WriteString(se.Object.String())
	out.WriteString("[")
	if se.Start != nil {
		out.WriteString(se.Start.String())
	}
	out.WriteString("..")
	if se.End != nil {
		out.WriteString(se.End.String())
	}
	out.WriteString("]")
	return out.String()
}
func (se *SliceExpression) Span() lexer.Span { return spanOf(se.Token, se.Object) }

// ---------------------------------------------------------------------------
// Bindings and assignment
// ---------------------------------------------------------------------------

// LetExpression represents let name [: Type] = value [in body] [else { ... }]
type LetExpression struct {
	Token    lexer.Token // the 'let' or 'var' token
	Name     *Identifier
	Mutable  bool
	TypeAnn  TypeExpr // optional
	Value    Expression
	Body     Expression // optional let-in body
	ElseBody Expression // optional let-else diverging block
}

func (le *LetExpression) expressionNode()      {}
func (le *LetExpression) TokenLiteral() string { return le.Token.Literal }
func (le *LetExpression) String() string {
	var out bytes.Buffer
	out.WriteString(le.TokenLiteral() + " ")
	if le.Mutable {
		out.WriteString("mut ")
	}
	out.WriteString(le.Name.String())
	if le.TypeAnn != nil {
		out.WriteString(": " + le.TypeAnn.String())
	}
	out.WriteString(" = ")
	if le.Value != nil {
		out.WriteString(le.Value.String())
	}
	if le.Body != nil {
		out.WriteString(" in " + le.Body.String())
	}
	if le.ElseBody != nil {
		out.WriteString(" else " + le.ElseBody.String())
	}
	return out.String()
}
func (le *LetExpression) Span() lexer.Span {
	return spanOf(le.Token, le.Value, le.Body, le.ElseBody)
}

// LetPatternExpression represents let with a destructuring pattern
type LetPatternExpression struct {
	Token    lexer.Token // the 'let' token
	Pattern  Pattern
	Mutable  bool
	TypeAnn  TypeExpr
	Value    Expression
	Body     Expression
	ElseBody Expression
}

func (lp *LetPatternExpression) expressionNode()      {}
func (lp *LetPatternExpression) TokenLiteral() string { return lp.Token.Literal }
func (lp *LetPatternExpression) String() string {
	var out bytes.Buffer
	out.WriteString("let ")
	if lp.Mutable {
		out.WriteString("mut ")
	}
	out.WriteString(lp.Pattern.String())
	out.WriteString(" = ")
	if lp.Value != nil {
		out.WriteString(lp.Value.String())
	}
	if lp.Body != nil {
		out.WriteString(" in " + lp.Body.String())
	}
	if lp.ElseBody != nil {
		out.WriteString(" else " + lp.ElseBody.String())
	}
	return out.String()
}
func (lp *LetPatternExpression) Span() lexer.Span {
	return spanOf(lp.Token, lp.Value, lp.Body, lp.ElseBody)
}

// AssignExpression represents target = value (no let)
type AssignExpression struct {
	Token  lexer.Token // the '=' token
	Target Expression
	Value  Expression
}

func (ae *AssignExpression) expressionNode()      {}
func (ae *AssignExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignExpression) String() string {
	return ae.Target.String() + " = " + ae.Value.String()
}
func (ae *AssignExpression) Span() lexer.Span { return spanOf(ae.Token, ae.Target, ae.Value) }

// CompoundAssignExpression represents target op= value
type CompoundAssignExpression struct {
	Token    lexer.Token // the operator token
	Target   Expression
	Operator string // the base operator, e.g. "+" for "+="
	Value    Expression
}

func (ca *CompoundAssignExpression) expressionNode()      {}
func (ca *CompoundAssignExpression) TokenLiteral() string { return ca.Token.Literal }
func (ca *CompoundAssignExpression) String() string {
	return ca.Target.String() + " " + ca.Operator + "= " + ca.Value.String()
}
func (ca *CompoundAssignExpression) Span() lexer.Span {
	return spanOf(ca.Token, ca.Target, ca.Value)
}

// ---------------------------------------------------------------------------
// Control flow
// ---------------------------------------------------------------------------

// BlockExpression represents { e1; e2; ... }; its value is the last expression
type BlockExpression struct {
	Token       lexer.Token // the '{' token
	Expressions []Expression
}

func (be *BlockExpression) expressionNode()      {}
func (be *BlockExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BlockExpression) String() string {
	return "{ " + joinNodes(be.Expressions, "; ") + " }"
}
func (be *BlockExpression) Span() lexer.Span {
	s := be.Token.Span
	if len(be.Expressions) > 0 {
		s = s.Merge(be.Expressions[len(be.Expressions)-1].Span())
	}
	return s
}

// IfExpression represents if cond { ... } [else ...]
type IfExpression struct {
	Token       lexer.Token // the 'if' token
	Condition   Expression
	Consequence Expression
	Alternative Expression // nil, *BlockExpression, or *IfExpression for else-if
}

func (ie *IfExpression) expressionNode()      {}
func (ie *IfExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IfExpression) String() string {
	var out bytes.Buffer
	out.WriteString("if " + ie.Condition.String() + " " + ie.Consequence.String())
	if ie.Alternative != nil {
		out.WriteString(" else " + ie.Alternative.String())
	}
	return out.String()
}
func (ie *IfExpression) Span() lexer.Span {
	return spanOf(ie.Token, ie.Consequence, ie.Alternative)
}

// IfLetExpression represents if let pattern = value { ... } [else ...]
type IfLetExpression struct {
	Token       lexer.Token // the 'if' token
	Pattern     Pattern
	Value       Expression
	Consequence Expression
	Alternative Expression
}

func (il *IfLetExpression) expressionNode()      {}
func (il *IfLetExpression) TokenLiteral() string { return il.Token.Literal }
func (il *IfLetExpression) String() string {
	var out bytes.Buffer
	out.WriteString("if let " + il.Pattern.String() + " = " + il.Value.String())
	out.WriteString(" " + il.Consequence.String())
	if il.Alternative != nil {
		out.WriteString(" else " + il.Alternative.String())
	}
	return out.String()
}
func (il *IfLetExpression) Span() lexer.Span {
	return spanOf(il.Token, il.Consequence, il.Alternative)
}

// WhileExpression represents [label:] while cond { ... }
type WhileExpression struct {
	Token     lexer.Token // the 'while' token
	Label     string      // optional loop label
	Condition Expression
	Body      Expression
}

func (we *WhileExpression) expressionNode()      {}
func (we *WhileExpression) TokenLiteral() string { return we.Token.Literal }
func (we *WhileExpression) String() string {
	return "while " + we.Condition.String() + " " + we.Body.String()
}
func (we *WhileExpression) Span() lexer.Span { return spanOf(we.Token, we.Body) }

// WhileLetExpression represents while let pattern = value { ... }
type WhileLetExpression struct {
	Token   lexer.Token // the 'while' token
	Label   string
	Pattern Pattern
	Value   Expression
	Body    Expression
}

func (wl *WhileLetExpression) expressionNode()      {}
func (wl *WhileLetExpression) TokenLiteral() string { return wl.Token.Literal }
func (wl *WhileLetExpression) String() string {
	return "while let " + wl.Pattern.String() + " = " + wl.Value.String() + " " + wl.Body.String()
}
func (wl *WhileLetExpression) Span() lexer.Span { return spanOf(wl.Token, wl.Body) }

// ForExpression represents [label:] for pattern in iterable { ... }
type ForExpression struct {
	Token    lexer.Token // the 'for' token
	Label    string
	Pattern  Pattern
	Iterable Expression
	Body     Expression
}

func (fe *ForExpression) expressionNode()      {}
func (fe *ForExpression) TokenLiteral() string { return fe.Token.Literal }
func (fe *ForExpression) String() string {
	return "for " + fe.Pattern.String() + " in " + fe.Iterable.String() + " " + fe.Body.String()
}
func (fe *ForExpression) Span() lexer.Span { return spanOf(fe.Token, fe.Body) }

// LoopExpression represents [label:] loop { ... }
type LoopExpression struct {
	Token lexer.Token // the 'loop' token
	Label string
	Body  Expression
}

func (le *LoopExpression) expressionNode()      {}
func (le *LoopExpression) TokenLiteral() string { return le.Token.Literal }
func (le *LoopExpression) String() string       { return "loop " + le.Body.String() }
func (le *LoopExpression) Span() lexer.Span     { return spanOf(le.Token, le.Body) }

// MatchArm is one arm of a match expression
type MatchArm struct {
	Pattern Pattern
	Guard   Expression // optional if-guard
	Body    Expression
}

func (ma *MatchArm) String() string {
	var out bytes.Buffer
	out.WriteString(ma.Pattern.String())
	if ma.Guard != nil {
		out.WriteString(" if " + ma.Guard.String())
	}
	out.WriteString(" => " + ma.Body.String())
	return out.String()
}

// MatchExpression represents match scrutinee { arms }
type MatchExpression struct {
	Token     lexer.Token // the 'match' token
	Scrutinee Expression
	Arms      []*MatchArm
}

func (me *MatchExpression) expressionNode()      {}
func (me *MatchExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MatchExpression) String() string {
	var arms []string
	for _, a := range me.Arms {
		arms = append(arms, a.String())
	}
	return "match " + me.Scrutinee.String() + " { " + strings.Join(arms, ", ") + " }"
}
func (me *MatchExpression) Span() lexer.Span { return spanOf(me.Token, me.Scrutinee) }

// ReturnExpression represents return [value]
type ReturnExpression struct {
	Token lexer.Token
	Value Expression // nil for bare return
}

func (re *ReturnExpression) expressionNode()      {}
func (re *ReturnExpression) TokenLiteral() string { return re.Token.Literal }
func (re *ReturnExpression) String() string {
	if re.Value != nil {
		return "return " + re.Value.String()
	}
	return "return"
}
func (re *ReturnExpression) Span() lexer.Span { return spanOf(re.Token, re.Value) }

// BreakExpression represents break ['label] [value]
type BreakExpression struct {
	Token lexer.Token
	Label string
	Value Expression
}

func (be *BreakExpression) expressionNode()      {}
func (be *BreakExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BreakExpression) String() string {
	var out bytes.Buffer
	out.WriteString("break")
	if be.Label != "" {
		out.WriteString(" '" + be.Label)
	}
	if be.Value != nil {
		out.WriteString(" " + be.Value.String())
	}
	return out.String()
}
func (be *BreakExpression) Span() lexer.Span { return spanOf(be.Token, be.Value) }

// ContinueExpression represents continue ['label]
type ContinueExpression struct {
	Token lexer.Token
	Label string
}

func (ce *ContinueExpression) expressionNode()      {}
func (ce *ContinueExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *ContinueExpression) String() string {
	if ce.Label != "" {
		return "continue '" + ce.Label
	}
	return "continue"
}
func (ce *ContinueExpression) Span() lexer.Span { return ce.Token.Span }

// ---------------------------------------------------------------------------
// Errors and effects
// ---------------------------------------------------------------------------

// CatchClause is one catch arm of a try expression
type CatchClause struct {
	Pattern Pattern
	Body    Expression
}

func (cc *CatchClause) String() string {
	return "catch " + cc.Pattern.String() + " " + cc.Body.String()
}

// TryCatchExpression represents try { ... } catch p { ... } [finally { ... }]
type TryCatchExpression struct {
	Token   lexer.Token // the 'try' token
	Body    Expression
	Catches []*CatchClause
	Finally Expression // nil if absent
}

func (tc *TryCatchExpression) expressionNode()      {}
func (tc *TryCatchExpression) TokenLiteral() string { return tc.Token.Literal }
func (tc *TryCatchExpression) String() string {
	var out bytes.Buffer
	out.WriteString("try " + tc.Body.String())
	for _, c := range tc.Catches {
		out.WriteString(" " + c.String())
	}
	if tc.Finally != nil {
		out.WriteString(" finally " + tc.Finally.String())
	}
	return out.String()
}
func (tc *TryCatchExpression) Span() lexer.Span {
	return spanOf(tc.Token, tc.Body, tc.Finally)
}

// TryOpExpression represents the postfix error-propagation operator: expr?.
// Err and None unwind to the caller; Ok and Some unwrap.
type TryOpExpression struct {
	Token lexer.Token // the '?' token
	Value Expression
}

func (to *TryOpExpression) expressionNode()      {}
func (to *TryOpExpression) TokenLiteral() string { return to.Token.Literal }
func (to *TryOpExpression) String() string       { return to.Value.String() + "?" }
func (to *TryOpExpression) Span() lexer.Span     { return spanOf(to.Token, to.Value) }

// ThrowExpression represents throw value
type ThrowExpression struct {
	Token lexer.Token
	Value Expression
}

func (te *ThrowExpression) expressionNode()      {}
func (te *ThrowExpression) TokenLiteral() string { return te.Token.Literal }
func (te *ThrowExpression) String() string       { return "throw " + te.Value.String() }
func (te *ThrowExpression) Span() lexer.Span     { return spanOf(te.Token, te.Value) }

// AwaitExpression represents expr.await or await expr. Evaluation is eager;
// await yields its operand's value.
type AwaitExpression struct {
	Token lexer.Token
	Value Expression
}

func (ae *AwaitExpression) expressionNode()      {}
func (ae *AwaitExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AwaitExpression) String() string       { return "await " + ae.Value.String() }
func (ae *AwaitExpression) Span() lexer.Span     { return spanOf(ae.Token, ae.Value) }

// AsyncBlock represents async { ... }
type AsyncBlock struct {
	Token lexer.Token
	Body  Expression
}

func (ab *AsyncBlock) expressionNode()      {}
func (ab *AsyncBlock) TokenLiteral() string { return ab.Token.Literal }
func (ab *AsyncBlock) String() string       { return "async " + ab.Body.String() }
func (ab *AsyncBlock) Span() lexer.Span     { return spanOf(ab.Token, ab.Body) }

// SpawnExpression represents spawn ActorName(args)
type SpawnExpression struct {
	Token  lexer.Token
	Target Expression
}

func (se *SpawnExpression) expressionNode()      {}
func (se *SpawnExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SpawnExpression) String() string       { return "spawn " + se.Target.String() }
func (se *SpawnExpression) Span() lexer.Span     { return spanOf(se.Token, se.Target) }

// SendExpression represents fire-and-forget actor sends: actor ! message
type SendExpression struct {
	Token   lexer.Token // the '!' token
	Actor   Expression
	Message Expression
}

func (se *SendExpression) expressionNode()      {}
func (se *SendExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SendExpression) String() string {
	return se.Actor.String() + " ! " + se.Message.String()
}
func (se *SendExpression) Span() lexer.Span { return spanOf(se.Token, se.Actor, se.Message) }

// AskExpression represents request/response actor sends: actor <? message.
// Timeout is parsed but currently unused.
type AskExpression struct {
	Token   lexer.Token // the '<?' token
	Actor   Expression
	Message Expression
	Timeout Expression // optional, ignored by the evaluator
}

func (ae *AskExpression) expressionNode()      {}
func (ae *AskExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AskExpression) String() string {
	return ae.Actor.String() + " <? " + ae.Message.String()
}
func (ae *AskExpression) Span() lexer.Span { return spanOf(ae.Token, ae.Actor, ae.Message) }

// ---------------------------------------------------------------------------
// Collections
// ---------------------------------------------------------------------------

// ListLiteral represents [a, b, c]
type ListLiteral struct {
	Token    lexer.Token // the '[' token
	Elements []Expression
}

func (ll *ListLiteral) expressionNode()      {}
func (ll *ListLiteral) TokenLiteral() string { return ll.Token.Literal }
func (ll *ListLiteral) String() string       { return "[" + joinNodes(ll.Elements, ", ") + "]" }
func (ll *ListLiteral) Span() lexer.Span {
	s := ll.Token.Span
	if len(ll.Elements) > 0 {
		s = s.Merge(ll.Elements[len(ll.Elements)-1].Span())
	}
	return s
}

// TupleLiteral represents (a, b, c)
type TupleLiteral struct {
	Token    lexer.Token // the '(' token
	Elements []Expression
}

func (tl *TupleLiteral) expressionNode()      {}
func (tl *TupleLiteral) TokenLiteral() string { return tl.Token.Literal }
func (tl *TupleLiteral) String() string       { return "(" + joinNodes(tl.Elements, ", ") + ")" }
func (tl *TupleLiteral) Span() lexer.Span     { return tl.Token.Span }

// ArrayInitLiteral represents [value; size]
type ArrayInitLiteral struct {
	Token lexer.Token // the '[' token
	Value Expression
	Size  Expression
}

func (ai *ArrayInitLiteral) expressionNode()      {}
func (ai *ArrayInitLiteral) TokenLiteral() string { return ai.Token.Literal }
func (ai *ArrayInitLiteral) String() string {
	return "[" + ai.Value.String() + "; " + ai.Size.String() + "]"
}
func (ai *ArrayInitLiteral) Span() lexer.Span { return spanOf(ai.Token, ai.Value, ai.Size) }

// RangeLiteral represents start..end and start..=end
type RangeLiteral struct {
	Token     lexer.Token // the '..' or '..=' token
	Start     Expression
	End       Expression
	Inclusive bool
}

func (rl *RangeLiteral) expressionNode()      {}
func (rl *RangeLiteral) TokenLiteral() string { return rl.Token.Literal }
func (rl *RangeLiteral) String() string {
	op := ".."
	if rl.Inclusive {
		op = "..="
	}
	end := ""
	if rl.End != nil {
		end = rl.End.String()
	}
	return rl.Start.String() + op + end
}
func (rl *RangeLiteral) Span() lexer.Span { return spanOf(rl.Token, rl.Start, rl.End) }

// ComprehensionClause is one `for x in iter [if cond]*` clause
type ComprehensionClause struct {
	Pattern    Pattern
	Iterable   Expression
	Conditions []Expression
}

// ListComprehension represents [body for x in iter if cond ...]
type ListComprehension struct {
	Token   lexer.Token // the '[' token
	Body    Expression
	Clauses []*ComprehensionClause
}

func (lc *ListComprehension) expressionNode()      {}
func (lc *ListComprehension) TokenLiteral() string { return lc.Token.Literal }
func (lc *ListComprehension) String() string {
	var out bytes.Buffer
	out.WriteString("[" + lc.Body.String())
	for _, c := range lc.Clauses {
		out.WriteString(" for " + c.Pattern.String() + " in " + c.Iterable.String())
		for _, cond := range c.Conditions {
			out.WriteString(" if " + cond.String())
		}
	}
	out.WriteString("]")
	return out.String()
}
func (lc *ListComprehension) Span() lexer.Span { return spanOf(lc.Token, lc.Body) }

// SpreadExpression represents ...expr in list literals and call arguments
type SpreadExpression struct {
	Token lexer.Token // the '...' token
	Value Expression
}

func (se *SpreadExpression) expressionNode()      {}
func (se *SpreadExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SpreadExpression) String() string       { return "..." + se.Value.String() }
func (se *SpreadExpression) Span() lexer.Span     { return spanOf(se.Token, se.Value) }

// FieldInit is one name: value entry in an object or struct literal
type FieldInit struct {
	Name  string
	Value Expression
}

// / ObjectLiteral represents { name: value, ... }
type ObjectLiteral struct {
	Token  lexer.Token // the '{' token
	Fields []*FieldInit
}

func (ol *ObjectLiteral) expressionNode()      {}
func (ol *ObjectLiteral) TokenLiteral() string { return ol.Token.Literal }
func (ol *ObjectLiteral) String() string {
	parts := make([]string, len(ol.Fields))
	for i, f := range ol.Fields {
		parts[i] = f.Name + ": " + f.Value.String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}
func (ol *ObjectLiteral) Span() lexer.Span { return ol.Token.Span }

// StructLiteral represents Name { field: value, ... }
type StructLiteral struct {
	Token  lexer.Token // the struct name token
	Name   string
	Fields []*FieldInit
}

func (sl *StructLiteral) expressionNode()      {}
func (sl *StructLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StructLiteral) String() string {
	parts := make([]string, len(sl.Fields))
	for i, f := range sl.Fields {
		parts[i] = f.Name + ": " + f.Value.String()
	}
	return sl.Name + " { " + strings.Join(parts, ", ") + " }"
}
func (sl *StructLiteral) Span() lexer.Span { return sl.Token.Span }

// ---------------------------------------------------------------------------
// Strings and pipelines
// ---------------------------------------------------------------------------

// InterpolationPart is one segment of an f-string: literal text, a bare
// expression, or an expression with a format spec.
type InterpolationPart struct {
	Text       string     // literal text when Expr is nil
	Expr       Expression // nil for text parts
	FormatSpec string     // optional, only with Expr
}

// StringInterpolation represents a parsed f-string
type StringInterpolation struct {
	Token lexer.Token // the FSTRING token
	Parts []*InterpolationPart
}

func (si *StringInterpolation) expressionNode()      {}
func (si *StringInterpolation) TokenLiteral() string { return si.Token.Literal }
func (si *StringInterpolation) String() string {
	var out bytes.Buffer
	out.WriteString(`f"`)
	for _, p := range si.Parts {
		if p.Expr == nil {
			out.WriteString(p.Text)
		} else if p.FormatSpec != "" {
			out.WriteString("{" + p.Expr.String() + ":" + p.FormatSpec + "}")
		} else {
			out.WriteString("{" + p.Expr.String() + "}")
		}
	}
	out.WriteString(`"`)
	return out.String()
}
func (si *StringInterpolation) Span() lexer.Span { return si.Token.Span }

// PipelineExpression represents expr |> stage |> stage
type PipelineExpression struct {
	Token  lexer.Token // the first '|>' token
	Expr   Expression
	Stages []Expression
}

func (pe *PipelineExpression) expressionNode()      {}
func (pe *PipelineExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PipelineExpression) String() string {
	var out bytes.Buffer
	out.WriteString(pe.Expr.String())
	for _, s := range pe.Stages {
		out.WriteString(" |> " + s.String())
	}
	return out.String()
}
func (pe *PipelineExpression) Span() lexer.Span {
	s := spanOf(pe.Token, pe.Expr)
	if len(pe.Stages) > 0 {
		s = s.Merge(pe.Stages[len(pe.Stages)-1].Span())
	}
	return s
}

// ---------------------------------------------------------------------------
// Constructors, casts, macros
// ---------------------------------------------------------------------------

// OkExpression represents Ok(value)
type OkExpression struct {
	Token lexer.Token
	Value Expression
}

func (oe *OkExpression) expressionNode()      {}
func (oe *OkExpression) TokenLiteral() string { return oe.Token.Literal }
func (oe *OkExpression) String() string       { return "Ok(" + oe.Value.String() + ")" }
func (oe *OkExpression) Span() lexer.Span     { return spanOf(oe.Token, oe.Value) }

// ErrExpression represents Err(value)
type ErrExpression struct {
	Token lexer.Token
	Value Expression
}

func (ee *ErrExpression) expressionNode()      {}
func (ee *ErrExpression) TokenLiteral() string { return ee.Token.Literal }
func (ee *ErrExpression) String() string       { return "Err(" + ee.Value.String() + ")" }
func (ee *ErrExpression) Span() lexer.Span     { return spanOf(ee.Token, ee.Value) }

// SomeExpression represents Some(value)
type SomeExpression struct {
	Token lexer.Token
	Value Expression
}

func (se *SomeExpression) expressionNode()      {}
func (se *SomeExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SomeExpression) String() string       { return "Some(" + se.Value.String() + ")" }
func (se *SomeExpression) Span() lexer.Span     { return spanOf(se.Token, se.Value) }

// NoneExpression represents None
type NoneExpression struct {
	Token lexer.Token
}

func (ne *NoneExpression) expressionNode()      {}
func (ne *NoneExpression) TokenLiteral() string { return ne.Token.Literal }
func (ne *NoneExpression) String() string       { return "None" }
func (ne *NoneExpression) Span() lexer.Span     { return ne.Token.Span }

// TypeCastExpression represents value as Type
type TypeCastExpression struct {
	Token  lexer.Token // the 'as' token
	Value  Expression
	Target TypeExpr
}

func (tc *TypeCastExpression) expressionNode()      {}
func (tc *TypeCastExpression) TokenLiteral() string { return tc.Token.Literal }
func (tc *TypeCastExpression) String() string {
	return tc.Value.String() + " as " + tc.Target.String()
}
func (tc *TypeCastExpression) Span() lexer.Span { return spanOf(tc.Token, tc.Value) }

// MacroInvocation represents name!(args)
type MacroInvocation struct {
	Token     lexer.Token // the macro name token
	Name      string
	Arguments []Expression
}

func (mi *MacroInvocation) expressionNode()      {}
func (mi *MacroInvocation) TokenLiteral() string { return mi.Token.Literal }
func (mi *MacroInvocation) String() string {
	return mi.Name + "!(" + joinNodes(mi.Arguments, ", ") + ")"
}
func (mi *MacroInvocation) Span() lexer.Span { return mi.Token.Span }

// CommandExpression represents a shell command invocation, lowered from the
// command!(...) macro form. Stdout is captured as a string.
type CommandExpression struct {
	Token   lexer.Token
	Program Expression
	Args    []Expression
}

func (ce *CommandExpression) expressionNode()      {}
func (ce *CommandExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CommandExpression) String() string {
	return "command!(" + ce.Program.String() + ", " + joinNodes(ce.Args, ", ") + ")"
}
func (ce *CommandExpression) Span() lexer.Span { return spanOf(ce.Token, ce.Program) }

// ReferenceExpression represents &expr and &mut expr
type ReferenceExpression struct {
	Token lexer.Token // the '&' token
	IsMut bool
	Value Expression
}

func (re *ReferenceExpression) expressionNode()      {}
func (re *ReferenceExpression) TokenLiteral() string { return re.Token.Literal }
func (re *ReferenceExpression) String() string {
	if re.IsMut {
		return "&mut " + re.Value.String()
	}
	return "&" + re.Value.String()
}
func (re *ReferenceExpression) Span() lexer.Span { return spanOf(re.Token, re.Value) }

// ---------------------------------------------------------------------------
// DataFrames
// ---------------------------------------------------------------------------

// DataFrameColumn is one named column of a dataframe literal
type DataFrameColumn struct {
	Name   string
	Values []Expression
}

// DataFrameLiteral represents df![col => [values], ...]
type DataFrameLiteral struct {
	Token   lexer.Token
	Columns []*DataFrameColumn
}

func (dl *DataFrameLiteral) expressionNode()      {}
func (dl *DataFrameLiteral) TokenLiteral() string { return dl.Token.Literal }
func (dl *DataFrameLiteral) String() string {
	parts := make([]string, len(dl.Columns))
	for i, c := range dl.Columns {
		parts[i] = c.Name + " => [" + joinNodes(c.Values, ", ") + "]"
	}
	return "df![" + strings.Join(parts, ", ") + "]"
}
func (dl *DataFrameLiteral) Span() lexer.Span { return dl.Token.Span }

// DataFrameOperation represents filter/select/groupby/... on a dataframe.
// These parse as method calls and are distinguished during lowering.
type DataFrameOperation struct {
	Token     lexer.Token
	Receiver  Expression
	Op        string
	Arguments []Expression
}

func (do *DataFrameOperation) expressionNode()      {}
func (do *DataFrameOperation) TokenLiteral() string { return do.Token.Literal }
func (do *DataFrameOperation) String() string {
	return do.Receiver.String() + "." + do.Op + "(" + joinNodes(do.Arguments, ", ") + ")"
}
func (do *DataFrameOperation) Span() lexer.Span { return spanOf(do.Token, do.Receiver) }
