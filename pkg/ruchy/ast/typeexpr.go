package ast

import (
	"strconv"
	"strings"

	"github.com/ruchy-lang/ruchy/pkg/ruchy/lexer"
)

// TypeExpr represents type annotation nodes.
type TypeExpr interface {
	Node
	typeNode()
}

// NamedType is a bare type name: Int, String, Point
type NamedType struct {
	Token lexer.Token
	Name  string
}

func (nt *NamedType) typeNode()            {}
func (nt *NamedType) TokenLiteral() string { return nt.Token.Literal }
func (nt *NamedType) String() string       { return nt.Name }
func (nt *NamedType) Span() lexer.Span     { return nt.Token.Span }

// GenericType is an applied type: Vec<Int>, HashMap<String, Int>
type GenericType struct {
	Token  lexer.Token
	Base   string
	Params []TypeExpr
}

func (gt *GenericType) typeNode()            {}
func (gt *GenericType) TokenLiteral() string { return gt.Token.Literal }
func (gt *GenericType) String() string {
	return gt.Base + "<" + joinNodes(gt.Params, ", ") + ">"
}
func (gt *GenericType) Span() lexer.Span { return gt.Token.Span }

// OptionalType is T?
type OptionalType struct {
	Token lexer.Token
	Inner TypeExpr
}

func (ot *OptionalType) typeNode()            {}
func (ot *OptionalType) TokenLiteral() string { return ot.Token.Literal }
func (ot *OptionalType) String() string       { return ot.Inner.String() + "?" }
func (ot *OptionalType) Span() lexer.Span     { return spanOf(ot.Token, ot.Inner) }

// ListType is [T]
type ListType struct {
	Token lexer.Token
	Elem  TypeExpr
}

func (lt *ListType) typeNode()            {}
func (lt *ListType) TokenLiteral() string { return lt.Token.Literal }
func (lt *ListType) String() string       { return "[" + lt.Elem.String() + "]" }
func (lt *ListType) Span() lexer.Span     { return spanOf(lt.Token, lt.Elem) }

// ArrayType is [T; N]
type ArrayType struct {
	Token lexer.Token
	Elem  TypeExpr
	Size  int64
}

func (at *ArrayType) typeNode()            {}
func (at *ArrayType) TokenLiteral() string { return at.Token.Literal }
func (at *ArrayType) String() string {
	return "[" + at.Elem.String() + "; " + strconv.FormatInt(at.Size, 10) + "]"
}
func (at *ArrayType) Span() lexer.Span { return spanOf(at.Token, at.Elem) }

// FunctionType is fn(A, B) -> C
type FunctionType struct {
	Token  lexer.Token
	Params []TypeExpr
	Return TypeExpr
}

func (ft *FunctionType) typeNode()            {}
func (ft *FunctionType) TokenLiteral() string { return ft.Token.Literal }
func (ft *FunctionType) String() string {
	return "fn(" + joinNodes(ft.Params, ", ") + ") -> " + ft.Return.String()
}
func (ft *FunctionType) Span() lexer.Span { return spanOf(ft.Token, ft.Return) }

// TupleType is (A, B, C)
type TupleType struct {
	Token lexer.Token
	Elems []TypeExpr
}

func (tt *TupleType) typeNode()            {}
func (tt *TupleType) TokenLiteral() string { return tt.Token.Literal }
func (tt *TupleType) String() string       { return "(" + joinNodes(tt.Elems, ", ") + ")" }
func (tt *TupleType) Span() lexer.Span     { return tt.Token.Span }

// ReferenceType is &T, &mut T, &'a T
type ReferenceType struct {
	Token    lexer.Token
	Inner    TypeExpr
	IsMut    bool
	Lifetime string // without the quote, empty if absent
}

func (rt *ReferenceType) typeNode()            {}
func (rt *ReferenceType) TokenLiteral() string { return rt.Token.Literal }
func (rt *ReferenceType) String() string {
	var sb strings.Builder
	sb.WriteString("&")
	if rt.Lifetime != "" {
		sb.WriteString("'" + rt.Lifetime + " ")
	}
	if rt.IsMut {
		sb.WriteString("mut ")
	}
	sb.WriteString(rt.Inner.String())
	return sb.String()
}
func (rt *ReferenceType) Span() lexer.Span { return spanOf(rt.Token, rt.Inner) }

// DataFrameColumnType is one name: type pair of a DataFrame type
type DataFrameColumnType struct {
	Name string
	Type TypeExpr
}

// DataFrameType is DataFrame<col1: T1, col2: T2>
type DataFrameType struct {
	Token   lexer.Token
	Columns []*DataFrameColumnType
}

func (dt *DataFrameType) typeNode()            {}
func (dt *DataFrameType) TokenLiteral() string { return dt.Token.Literal }
func (dt *DataFrameType) String() string {
	parts := make([]string, len(dt.Columns))
	for i, c := range dt.Columns {
		parts[i] = c.Name + ": " + c.Type.String()
	}
	return "DataFrame<" + strings.Join(parts, ", ") + ">"
}
func (dt *DataFrameType) Span() lexer.Span { return dt.Token.Span }

// SeriesType is Series<T>
type SeriesType struct {
	Token lexer.Token
	Dtype TypeExpr
}

func (st *SeriesType) typeNode()            {}
func (st *SeriesType) TokenLiteral() string { return st.Token.Literal }
func (st *SeriesType) String() string       { return "Series<" + st.Dtype.String() + ">" }
func (st *SeriesType) Span() lexer.Span     { return spanOf(st.Token, st.Dtype) }

// RefinedType is {base | predicate}. Structural inference uses the base;
// predicate enforcement belongs to a future proof-obligation pass.
type RefinedType struct {
	Token     lexer.Token
	Base      TypeExpr
	Predicate Expression
}

func (rt *RefinedType) typeNode()            {}
func (rt *RefinedType) TokenLiteral() string { return rt.Token.Literal }
func (rt *RefinedType) String() string {
	return "{" + rt.Base.String() + " | " + rt.Predicate.String() + "}"
}
func (rt *RefinedType) Span() lexer.Span { return spanOf(rt.Token, rt.Base) }
