package ast

import (
	"strings"

	"github.com/ruchy-lang/ruchy/pkg/ruchy/lexer"
)

// Pattern represents pattern nodes used by match arms, let destructuring,
// catch clauses, and loop variables.
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern matches anything without binding: _
type WildcardPattern struct {
	Token lexer.Token
}

func (wp *WildcardPattern) patternNode()         {}
func (wp *WildcardPattern) TokenLiteral() string { return wp.Token.Literal }
func (wp *WildcardPattern) String() string       { return "_" }
func (wp *WildcardPattern) Span() lexer.Span     { return wp.Token.Span }

// LiteralPattern matches a literal value by equality
type LiteralPattern struct {
	Token lexer.Token
	Value Expression
}

func (lp *LiteralPattern) patternNode()         {}
func (lp *LiteralPattern) TokenLiteral() string { return lp.Token.Literal }
func (lp *LiteralPattern) String() string       { return lp.Value.String() }
func (lp *LiteralPattern) Span() lexer.Span     { return spanOf(lp.Token, lp.Value) }

// IdentifierPattern binds the matched value to a name
type IdentifierPattern struct {
	Token lexer.Token
	Name  string
}

func (ip *IdentifierPattern) patternNode()         {}
func (ip *IdentifierPattern) TokenLiteral() string { return ip.Token.Literal }
func (ip *IdentifierPattern) String() string       { return ip.Name }
func (ip *IdentifierPattern) Span() lexer.Span     { return ip.Token.Span }

// QualifiedNamePattern matches an enum variant path like Color::Red
type QualifiedNamePattern struct {
	Token lexer.Token
	Parts []string
}

func (qp *QualifiedNamePattern) patternNode()         {}
func (qp *QualifiedNamePattern) TokenLiteral() string { return qp.Token.Literal }
func (qp *QualifiedNamePattern) String() string       { return strings.Join(qp.Parts, "::") }
func (qp *QualifiedNamePattern) Span() lexer.Span     { return qp.Token.Span }

// TuplePattern destructures tuples: (a, b, _)
type TuplePattern struct {
	Token    lexer.Token
	Elements []Pattern
}

func (tp *TuplePattern) patternNode()         {}
func (tp *TuplePattern) TokenLiteral() string { return tp.Token.Literal }
func (tp *TuplePattern) String() string       { return "(" + joinNodes(tp.Elements, ", ") + ")" }
func (tp *TuplePattern) Span() lexer.Span     { return tp.Token.Span }

// ListPattern destructures lists: [first, ..rest]
type ListPattern struct {
	Token    lexer.Token
	Elements []Pattern
}

func (lp *ListPattern) patternNode()         {}
func (lp *ListPattern) TokenLiteral() string { return lp.Token.Literal }
func (lp *ListPattern) String() string       { return "[" + joinNodes(lp.Elements, ", ") + "]" }
func (lp *ListPattern) Span() lexer.Span     { return lp.Token.Span }

// StructPatternField is one field: pattern entry inside a struct pattern
type StructPatternField struct {
	Name    string
	Pattern Pattern // nil for shorthand binding of the field name
}

func (f *StructPatternField) String() string {
	if f.Pattern == nil {
		return f.Name
	}
	return f.Name + ": " + f.Pattern.String()
}

// StructPattern destructures structs: Point { x, y: b, .. }
type StructPattern struct {
	Token   lexer.Token
	Name    string
	Fields  []*StructPatternField
	HasRest bool
}

func (sp *StructPattern) patternNode()         {}
func (sp *StructPattern) TokenLiteral() string { return sp.Token.Literal }
func (sp *StructPattern) String() string {
	parts := make([]string, 0, len(sp.Fields)+1)
	for _, f := range sp.Fields {
		parts = append(parts, f.String())
	}
	if sp.HasRest {
		parts = append(parts, "..")
	}
	return sp.Name + " { " + strings.Join(parts, ", ") + " }"
}
func (sp *StructPattern) Span() lexer.Span { return sp.Token.Span }

// TupleVariantPattern matches enum tuple variants: Shape::Circle(r)
type TupleVariantPattern struct {
	Token    lexer.Token
	Path     []string
	Patterns []Pattern
}

func (tv *TupleVariantPattern) patternNode()         {}
func (tv *TupleVariantPattern) TokenLiteral() string { return tv.Token.Literal }
func (tv *TupleVariantPattern) String() string {
	return strings.Join(tv.Path, "::") + "(" + joinNodes(tv.Patterns, ", ") + ")"
}
func (tv *TupleVariantPattern) Span() lexer.Span { return tv.Token.Span }

// OkPattern matches Ok(inner)
type OkPattern struct {
	Token lexer.Token
	Inner Pattern
}

func (op *OkPattern) patternNode()         {}
func (op *OkPattern) TokenLiteral() string { return op.Token.Literal }
func (op *OkPattern) String() string       { return "Ok(" + op.Inner.String() + ")" }
func (op *OkPattern) Span() lexer.Span     { return spanOf(op.Token, op.Inner) }

// ErrPattern matches Err(inner)
type ErrPattern struct {
	Token lexer.Token
	Inner Pattern
}

func (ep *ErrPattern) patternNode()         {}
func (ep *ErrPattern) TokenLiteral() string { return ep.Token.Literal }
func (ep *ErrPattern) String() string       { return "Err(" + ep.Inner.String() + ")" }
func (ep *ErrPattern) Span() lexer.Span     { return spanOf(ep.Token, ep.Inner) }

// SomePattern matches Some(inner)
type SomePattern struct {
	Token lexer.Token
	Inner Pattern
}

func (sp *SomePattern) patternNode()         {}
func (sp *SomePattern) TokenLiteral() string { return sp.Token.Literal }
func (sp *SomePattern) String() string       { return "Some(" + sp.Inner.String() + ")" }
func (sp *SomePattern) Span() lexer.Span     { return spanOf(sp.Token, sp.Inner) }

// NonePattern matches None (and nil-ish values)
type NonePattern struct {
	Token lexer.Token
}

func (np *NonePattern) patternNode()         {}
func (np *NonePattern) TokenLiteral() string { return np.Token.Literal }
func (np *NonePattern) String() string       { return "None" }
func (np *NonePattern) Span() lexer.Span     { return np.Token.Span }

// RangePattern matches numeric ranges: 1..10 and 1..=10
type RangePattern struct {
	Token     lexer.Token
	Start     Expression
	End       Expression
	Inclusive bool
}

func (rp *RangePattern) patternNode()         {}
func (rp *RangePattern) TokenLiteral() string { return rp.Token.Literal }
func (rp *RangePattern) String() string {
	op := ".."
	if rp.Inclusive {
		op = "..="
	}
	return rp.Start.String() + op + rp.End.String()
}
func (rp *RangePattern) Span() lexer.Span { return spanOf(rp.Token, rp.Start, rp.End) }

// OrPattern matches any of its alternatives, first match wins: 1 | 2 | 3
type OrPattern struct {
	Token        lexer.Token
	Alternatives []Pattern
}

func (op *OrPattern) patternNode()         {}
func (op *OrPattern) TokenLiteral() string { return op.Token.Literal }
func (op *OrPattern) String() string       { return joinNodes(op.Alternatives, " | ") }
func (op *OrPattern) Span() lexer.Span {
	s := op.Token.Span
	if len(op.Alternatives) > 0 {
		s = op.Alternatives[0].Span().Merge(op.Alternatives[len(op.Alternatives)-1].Span())
	}
	return s
}

// RestPattern absorbs remaining elements without binding: ..
type RestPattern struct {
	Token lexer.Token
}

func (rp *RestPattern) patternNode()         {}
func (rp *RestPattern) TokenLiteral() string { return rp.Token.Literal }
func (rp *RestPattern) String() string       { return ".." }
func (rp *RestPattern) Span() lexer.Span     { return rp.Token.Span }

// RestNamedPattern absorbs remaining elements into a binding: ..rest
type RestNamedPattern struct {
	Token lexer.Token
	Name  string
}

func (rn *RestNamedPattern) patternNode()         {}
func (rn *RestNamedPattern) TokenLiteral() string { return rn.Token.Literal }
func (rn *RestNamedPattern) String() string       { return ".." + rn.Name }
func (rn *RestNamedPattern) Span() lexer.Span     { return rn.Token.Span }

// AtBindingPattern binds the whole value while matching a subpattern: n @ 1..10
type AtBindingPattern struct {
	Token   lexer.Token
	Name    string
	Pattern Pattern
}

func (ab *AtBindingPattern) patternNode()         {}
func (ab *AtBindingPattern) TokenLiteral() string { return ab.Token.Literal }
func (ab *AtBindingPattern) String() string       { return ab.Name + " @ " + ab.Pattern.String() }
func (ab *AtBindingPattern) Span() lexer.Span     { return spanOf(ab.Token, ab.Pattern) }

// WithDefaultPattern matches a subpattern, substituting a default when the
// value is missing (used in destructuring with defaults).
type WithDefaultPattern struct {
	Token   lexer.Token
	Pattern Pattern
	Default Expression
}

func (wd *WithDefaultPattern) patternNode()         {}
func (wd *WithDefaultPattern) TokenLiteral() string { return wd.Token.Literal }
func (wd *WithDefaultPattern) String() string {
	return wd.Pattern.String() + " = " + wd.Default.String()
}
func (wd *WithDefaultPattern) Span() lexer.Span { return spanOf(wd.Token, wd.Pattern) }

// MutPattern marks a binding mutable: mut x
type MutPattern struct {
	Token lexer.Token
	Inner Pattern
}

func (mp *MutPattern) patternNode()         {}
func (mp *MutPattern) TokenLiteral() string { return mp.Token.Literal }
func (mp *MutPattern) String() string       { return "mut " + mp.Inner.String() }
func (mp *MutPattern) Span() lexer.Span     { return spanOf(mp.Token, mp.Inner) }
