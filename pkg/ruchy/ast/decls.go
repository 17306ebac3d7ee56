package ast

import (
	"bytes"
	"strings"

	"github.com/ruchy-lang/ruchy/pkg/ruchy/lexer"
)

// GenericParam is one generic parameter with optional trait bounds, T: A + B
type GenericParam struct {
	Name   string
	Bounds []string
}

func (gp *GenericParam) String() string {
	if len(gp.Bounds) == 0 {
		return gp.Name
	}
	return gp.Name + ": " + strings.Join(gp.Bounds, " + ")
}

// Parameter is one function parameter. Self receivers use IsSelf/IsMutSelf;
// ordinary parameters may carry a type annotation and a default value.
type Parameter struct {
	Name      string
	Type      TypeExpr   // nil if unannotated
	Default   Expression // nil if required
	IsMut     bool
	IsSelf    bool
	IsMutSelf bool
}

func (p *Parameter) String() string {
	var out bytes.Buffer
	if p.IsMutSelf {
		return "&mut self"
	}
	if p.IsSelf {
		return "&self"
	}
	if p.IsMut {
		out.WriteString("mut ")
	}
	out.WriteString(p.Name)
	if p.Type != nil {
		out.WriteString(": " + p.Type.String())
	}
	if p.Default != nil {
		out.WriteString(" = " + p.Default.String())
	}
	return out.String()
}

// FunctionLiteral represents fun name<T>(params) -> Type { body }.
// An empty Name makes it an anonymous function.
type FunctionLiteral struct {
	Token      lexer.Token // the 'fun'/'fn' token
	Name       string
	Generics   []*GenericParam
	Params     []*Parameter
	ReturnType TypeExpr // nil if unannotated
	Body       Expression
	IsPub      bool
	IsAsync    bool
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) String() string {
	var out bytes.Buffer
	if fl.IsPub {
		out.WriteString("pub ")
	}
	out.WriteString("fun")
	if fl.Name != "" {
		out.WriteString(" " + fl.Name)
	}
	if len(fl.Generics) > 0 {
		parts := make([]string, len(fl.Generics))
		for i, g := range fl.Generics {
			parts[i] = g.String()
		}
		out.WriteString("<" + strings.Join(parts, ", ") + ">")
	}
	params := make([]string, len(fl.Params))
	for i, p := range fl.Params {
		params[i] = p.String()
	}
	out.WriteString("(" + strings.Join(params, ", ") + ")")
	if fl.ReturnType != nil {
		out.WriteString(" -> " + fl.ReturnType.String())
	}
	out.WriteString(" " + fl.Body.String())
	return out.String()
}
func (fl *FunctionLiteral) Span() lexer.Span { return spanOf(fl.Token, fl.Body) }

// LambdaLiteral represents |x, y| body and x => body forms
type LambdaLiteral struct {
	Token  lexer.Token // the '|' or parameter token
	Params []*Parameter
	Body   Expression
}

func (ll *LambdaLiteral) expressionNode()      {}
func (ll *LambdaLiteral) TokenLiteral() string { return ll.Token.Literal }
func (ll *LambdaLiteral) String() string {
	params := make([]string, len(ll.Params))
	for i, p := range ll.Params {
		params[i] = p.String()
	}
	return "|" + strings.Join(params, ", ") + "| " + ll.Body.String()
}
func (ll *LambdaLiteral) Span() lexer.Span { return spanOf(ll.Token, ll.Body) }

// StructField is one field of a struct or actor definition
type StructField struct {
	Name    string
	Type    TypeExpr
	Default Expression // nil if required at construction
	IsPub   bool
	IsMut   bool
}

func (sf *StructField) String() string {
	var out bytes.Buffer
	if sf.IsPub {
		out.WriteString("pub ")
	}
	if sf.IsMut {
		out.WriteString("mut ")
	}
	out.WriteString(sf.Name)
	if sf.Type != nil {
		out.WriteString(": " + sf.Type.String())
	}
	if sf.Default != nil {
		out.WriteString(" = " + sf.Default.String())
	}
	return out.String()
}

// StructDefinition represents struct Name<T> { fields }
type StructDefinition struct {
	Token    lexer.Token
	Name     string
	Generics []*GenericParam
	Fields   []*StructField
	IsPub    bool
}

func (sd *StructDefinition) expressionNode()      {}
func (sd *StructDefinition) TokenLiteral() string { return sd.Token.Literal }
func (sd *StructDefinition) String() string {
	fields := make([]string, len(sd.Fields))
	for i, f := range sd.Fields {
		fields[i] = f.String()
	}
	return "struct " + sd.Name + " { " + strings.Join(fields, ", ") + " }"
}
func (sd *StructDefinition) Span() lexer.Span { return sd.Token.Span }

// EnumVariantDef is one variant of an enum: unit, tuple, or discriminant form
type EnumVariantDef struct {
	Name         string
	Fields       []TypeExpr // tuple-variant payload types
	Discriminant *int64     // explicit = N value, nil if implicit
}

func (ev *EnumVariantDef) String() string {
	if len(ev.Fields) > 0 {
		parts := make([]string, len(ev.Fields))
		for i, f := range ev.Fields {
			parts[i] = f.String()
		}
		return ev.Name + "(" + strings.Join(parts, ", ") + ")"
	}
	return ev.Name
}

// EnumDefinition represents enum Name<T> { variants }
type EnumDefinition struct {
	Token    lexer.Token
	Name     string
	Generics []*GenericParam
	Variants []*EnumVariantDef
	IsPub    bool
}

func (ed *EnumDefinition) expressionNode()      {}
func (ed *EnumDefinition) TokenLiteral() string { return ed.Token.Literal }
func (ed *EnumDefinition) String() string {
	variants := make([]string, len(ed.Variants))
	for i, v := range ed.Variants {
		variants[i] = v.String()
	}
	return "enum " + ed.Name + " { " + strings.Join(variants, ", ") + " }"
}
func (ed *EnumDefinition) Span() lexer.Span { return ed.Token.Span }

// TraitDefinition represents trait Name { method signatures and defaults }
type TraitDefinition struct {
	Token    lexer.Token
	Name     string
	Generics []*GenericParam
	Methods  []*FunctionLiteral // Body may be nil for bare signatures
	IsPub    bool
}

func (td *TraitDefinition) expressionNode()      {}
func (td *TraitDefinition) TokenLiteral() string { return td.Token.Literal }
func (td *TraitDefinition) String() string {
	methods := make([]string, len(td.Methods))
	for i, m := range td.Methods {
		methods[i] = m.String()
	}
	return "trait " + td.Name + " { " + strings.Join(methods, " ") + " }"
}
func (td *TraitDefinition) Span() lexer.Span { return td.Token.Span }

// ImplBlock represents impl [Trait for] Type { methods }
type ImplBlock struct {
	Token    lexer.Token
	Trait    string // empty for inherent impls
	ForType  string
	Generics []*GenericParam
	Methods  []*FunctionLiteral
}

func (ib *ImplBlock) expressionNode()      {}
func (ib *ImplBlock) TokenLiteral() string { return ib.Token.Literal }
func (ib *ImplBlock) String() string {
	var out bytes.Buffer
	out.WriteString("impl ")
	if ib.Trait != "" {
		out.WriteString(ib.Trait + " for ")
	}
	out.WriteString(ib.ForType + " { ")
	for i, m := range ib.Methods {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(m.String())
	}
	out.WriteString(" }")
	return out.String()
}
func (ib *ImplBlock) Span() lexer.Span { return ib.Token.Span }

// ExtensionBlock represents extend Type { methods }: methods added to an
// existing type without a trait.
type ExtensionBlock struct {
	Token   lexer.Token
	Target  string
	Methods []*FunctionLiteral
}

func (eb *ExtensionBlock) expressionNode()      {}
func (eb *ExtensionBlock) TokenLiteral() string { return eb.Token.Literal }
func (eb *ExtensionBlock) String() string {
	methods := make([]string, len(eb.Methods))
	for i, m := range eb.Methods {
		methods[i] = m.String()
	}
	return "extend " + eb.Target + " { " + strings.Join(methods, " ") + " }"
}
func (eb *ExtensionBlock) Span() lexer.Span { return eb.Token.Span }

// ActorHandler is one message handler inside an actor definition
type ActorHandler struct {
	Message string
	Params  []*Parameter
	Body    Expression
}

func (ah *ActorHandler) String() string {
	params := make([]string, len(ah.Params))
	for i, p := range ah.Params {
		params[i] = p.String()
	}
	return "receive " + ah.Message + "(" + strings.Join(params, ", ") + ") " + ah.Body.String()
}

// ActorDefinition represents actor Name { state fields and handlers }
type ActorDefinition struct {
	Token    lexer.Token
	Name     string
	Fields   []*StructField
	Handlers []*ActorHandler
	IsPub    bool
}

func (ad *ActorDefinition) expressionNode()      {}
func (ad *ActorDefinition) TokenLiteral() string { return ad.Token.Literal }
func (ad *ActorDefinition) String() string {
	var parts []string
	for _, f := range ad.Fields {
		parts = append(parts, f.String())
	}
	for _, h := range ad.Handlers {
		parts = append(parts, h.String())
	}
	return "actor " + ad.Name + " { " + strings.Join(parts, " ") + " }"
}
func (ad *ActorDefinition) Span() lexer.Span { return ad.Token.Span }

// ImportExpression represents import module / import module::{a, b} / import m as n
type ImportExpression struct {
	Token  lexer.Token
	Module string
	Items  []string // empty imports the whole module
	Alias  string
}

func (ie *ImportExpression) expressionNode()      {}
func (ie *ImportExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *ImportExpression) String() string {
	var out bytes.Buffer
	out.WriteString("import " + ie.Module)
	if len(ie.Items) > 0 {
		out.WriteString("::{" + strings.Join(ie.Items, ", ") + "}")
	}
	if ie.Alias != "" {
		out.WriteString(" as " + ie.Alias)
	}
	return out.String()
}
func (ie *ImportExpression) Span() lexer.Span { return ie.Token.Span }

// ExportExpression represents export <definition>
type ExportExpression struct {
	Token lexer.Token
	Item  Expression
}

func (ee *ExportExpression) expressionNode()      {}
func (ee *ExportExpression) TokenLiteral() string { return ee.Token.Literal }
func (ee *ExportExpression) String() string       { return "export " + ee.Item.String() }
func (ee *ExportExpression) Span() lexer.Span     { return spanOf(ee.Token, ee.Item) }

// ModuleExpression represents module Name { body }
type ModuleExpression struct {
	Token lexer.Token
	Name  string
	Body  Expression
}

func (me *ModuleExpression) expressionNode()      {}
func (me *ModuleExpression) TokenLiteral() string { return me.Token.Literal }
func (me *ModuleExpression) String() string {
	return "module " + me.Name + " " + me.Body.String()
}
func (me *ModuleExpression) Span() lexer.Span { return spanOf(me.Token, me.Body) }

// TypeAliasExpression represents type Name<T> = Target
type TypeAliasExpression struct {
	Token    lexer.Token
	Name     string
	Generics []*GenericParam
	Target   TypeExpr
}

func (ta *TypeAliasExpression) expressionNode()      {}
func (ta *TypeAliasExpression) TokenLiteral() string { return ta.Token.Literal }
func (ta *TypeAliasExpression) String() string {
	var out bytes.Buffer
	out.WriteString("type " + ta.Name)
	if len(ta.Generics) > 0 {
		parts := make([]string, len(ta.Generics))
		for i, g := range ta.Generics {
			parts[i] = g.String()
		}
		out.WriteString("<" + strings.Join(parts, ", ") + ">")
	}
	out.WriteString(" = " + ta.Target.String())
	return out.String()
}
func (ta *TypeAliasExpression) Span() lexer.Span { return ta.Token.Span }
