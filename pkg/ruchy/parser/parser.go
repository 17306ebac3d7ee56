// Package parser implements a Pratt parser for the Ruchy language.
//
// Expression parsing is driven by a prefix table (token type to prefix
// handler) and an infix precedence ladder. Statement-starting keywords are
// registered as prefix handlers so that every construct parses as an
// expression. Parsing stops at the first structured error; partial ASTs are
// never returned.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
	rerrors "github.com/ruchy-lang/ruchy/pkg/ruchy/errors"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/lexer"
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	ASSIGN_PREC   // = += -= ...
	SEND_PREC     // ! <? (actor send/ask)
	PIPELINE_PREC // |>
	TERNARY       // ?:
	NULLISH_PREC  // ??
	LOGIC_OR      // ||
	LOGIC_AND     // &&
	BIT_OR        // |
	BIT_XOR       // ^
	BIT_AND       // &
	EQUALS        // == !=
	LESSGREATER   // < <= > >= in is
	RANGE_PREC    // .. ..=
	SHIFT         // << >>
	SUM           // + -
	PRODUCT       // * / %
	POWER_PREC    // ** (right-associative)
	CAST_PREC     // as
	PREFIX        // -x !x &x *x ++x
	CALL          // f(x) a.b a[i] A::B x?
)

// precedences maps tokens to their precedence
var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:         ASSIGN_PREC,
	lexer.PLUS_ASSIGN:    ASSIGN_PREC,
	lexer.MINUS_ASSIGN:   ASSIGN_PREC,
	lexer.STAR_ASSIGN:    ASSIGN_PREC,
	lexer.SLASH_ASSIGN:   ASSIGN_PREC,
	lexer.PERCENT_ASSIGN: ASSIGN_PREC,
	lexer.POWER_ASSIGN:   ASSIGN_PREC,
	lexer.AMP_ASSIGN:     ASSIGN_PREC,
	lexer.PIPE_ASSIGN:    ASSIGN_PREC,
	lexer.CARET_ASSIGN:   ASSIGN_PREC,
	lexer.SHL_ASSIGN:     ASSIGN_PREC,
	lexer.SHR_ASSIGN:     ASSIGN_PREC,
	lexer.BANG:           SEND_PREC,
	lexer.ASK:            SEND_PREC,
	lexer.PIPELINE:       PIPELINE_PREC,
	lexer.QUESTION:       TERNARY,
	lexer.NULLISH:        NULLISH_PREC,
	lexer.OR_OR:          LOGIC_OR,
	lexer.AND_AND:        LOGIC_AND,
	lexer.PIPE:           BIT_OR,
	lexer.CARET:          BIT_XOR,
	lexer.AMP:            BIT_AND,
	lexer.EQ:             EQUALS,
	lexer.NOT_EQ:         EQUALS,
	lexer.LT:             LESSGREATER,
	lexer.LTE:            LESSGREATER,
	lexer.GT:             LESSGREATER,
	lexer.GTE:            LESSGREATER,
	lexer.IN:             LESSGREATER,
	lexer.IS:             LESSGREATER,
	lexer.RANGE:          RANGE_PREC,
	lexer.RANGE_INCL:     RANGE_PREC,
	lexer.SHL:            SHIFT,
	lexer.SHR:            SHIFT,
	lexer.PLUS:           SUM,
	lexer.MINUS:          SUM,
	lexer.ASTERISK:       PRODUCT,
	lexer.SLASH:          PRODUCT,
	lexer.PERCENT:        PRODUCT,
	lexer.POWER:          POWER_PREC,
	lexer.AS:             CAST_PREC,
	lexer.LPAREN:         CALL,
	lexer.LBRACKET:       CALL,
	lexer.DOT:            CALL,
	lexer.COLON_COLON:    CALL,
	lexer.INCREMENT:      CALL,
	lexer.DECREMENT:      CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser represents the parser
type Parser struct {
	l *lexer.Lexer

	structuredErrors []*rerrors.RuchyError

	prevToken lexer.Token
	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn

	// inLetValueContext suppresses 'in' as an infix operator while a let
	// value or comprehension clause is being parsed, so `let f = x in body`
	// and `[e for x in xs]` keep their 'in' for the enclosing construct.
	inLetValueContext bool

	// noStructLiteral suppresses `Name { ... }` struct literals while a
	// condition or scrutinee is being parsed, so `if x { ... }` does not
	// swallow the block as a struct body.
	noStructLiteral bool
}

// New creates a new parser instance
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.INT, p.parseIntegerLiteral)
	p.registerPrefix(lexer.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.RAW_STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.FSTRING, p.parseFString)
	p.registerPrefix(lexer.CHAR, p.parseCharLiteral)
	p.registerPrefix(lexer.BYTE, p.parseByteLiteral)
	p.registerPrefix(lexer.ATOM, p.parseAtomLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.NULL, p.parseNullLiteral)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.TILDE, p.parsePrefixExpression)
	p.registerPrefix(lexer.ASTERISK, p.parsePrefixExpression)
	p.registerPrefix(lexer.AMP, p.parseReferenceExpression)
	p.registerPrefix(lexer.INCREMENT, p.parsePreIncrement)
	p.registerPrefix(lexer.DECREMENT, p.parsePreDecrement)
	p.registerPrefix(lexer.ELLIPSIS, p.parseSpreadExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.LBRACKET, p.parseListLike)
	p.registerPrefix(lexer.LBRACE, p.parseBlockOrObject)
	p.registerPrefix(lexer.PIPE, p.parseLambdaLiteral)
	p.registerPrefix(lexer.OR_OR, p.parseEmptyParamLambda)
	p.registerPrefix(lexer.LIFETIME, p.parseLabeledLoop)

	p.registerPrefix(lexer.FUNCTION, p.parseFunctionLiteral)
	p.registerPrefix(lexer.LET, p.parseLetExpression)
	p.registerPrefix(lexer.VAR, p.parseLetExpression)
	p.registerPrefix(lexer.IF, p.parseIfExpression)
	p.registerPrefix(lexer.WHILE, p.parseWhileExpression)
	p.registerPrefix(lexer.FOR, p.parseForExpression)
	p.registerPrefix(lexer.LOOP, p.parseLoopExpression)
	p.registerPrefix(lexer.MATCH, p.parseMatchExpression)
	p.registerPrefix(lexer.STRUCT, p.parseStructDefinition)
	p.registerPrefix(lexer.ENUM, p.parseEnumDefinition)
	p.registerPrefix(lexer.TRAIT, p.parseTraitDefinition)
	p.registerPrefix(lexer.IMPL, p.parseImplBlock)
	p.registerPrefix(lexer.EXTEND, p.parseExtensionBlock)
	p.registerPrefix(lexer.ACTOR, p.parseActorDefinition)
	p.registerPrefix(lexer.IMPORT, p.parseImportExpression)
	p.registerPrefix(lexer.USE, p.parseImportExpression)
	p.registerPrefix(lexer.EXPORT, p.parseExportExpression)
	p.registerPrefix(lexer.PUB, p.parsePubExpression)
	p.registerPrefix(lexer.MODULE, p.parseModuleExpression)
	p.registerPrefix(lexer.FROM, p.parseFromReserved)
	p.registerPrefix(lexer.TYPE, p.parseTypeAlias)
	p.registerPrefix(lexer.RETURN, p.parseReturnExpression)
	p.registerPrefix(lexer.BREAK, p.parseBreakExpression)
	p.registerPrefix(lexer.CONTINUE, p.parseContinueExpression)
	p.registerPrefix(lexer.TRY, p.parseTryCatchExpression)
	p.registerPrefix(lexer.THROW, p.parseThrowExpression)
	p.registerPrefix(lexer.AWAIT, p.parseAwaitExpression)
	p.registerPrefix(lexer.ASYNC, p.parseAsyncBlock)
	p.registerPrefix(lexer.SPAWN, p.parseSpawnExpression)
	p.registerPrefix(lexer.SOME, p.parseSomeExpression)
	p.registerPrefix(lexer.NONE, p.parseNoneExpression)
	p.registerPrefix(lexer.OK, p.parseOkExpression)
	p.registerPrefix(lexer.ERR, p.parseErrExpression)
	p.registerPrefix(lexer.RESULT, p.parseConstructorName)
	p.registerPrefix(lexer.OPTION, p.parseConstructorName)
	p.registerPrefix(lexer.SELF, p.parseSelfExpression)
	p.registerPrefix(lexer.SELFTYPE, p.parseConstructorName)
	p.registerPrefix(lexer.DATAFRAME, p.parseConstructorName)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, tt := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.ASTERISK, lexer.SLASH, lexer.PERCENT,
		lexer.EQ, lexer.NOT_EQ, lexer.LT, lexer.LTE, lexer.GT, lexer.GTE,
		lexer.AND_AND, lexer.OR_OR, lexer.NULLISH, lexer.PIPE, lexer.CARET,
		lexer.AMP, lexer.SHL, lexer.SHR, lexer.IN, lexer.IS,
	} {
		p.registerInfix(tt, p.parseInfixExpression)
	}
	p.registerInfix(lexer.POWER, p.parsePowerExpression)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.LBRACKET, p.parseIndexOrSlice)
	p.registerInfix(lexer.DOT, p.parseDotExpression)
	p.registerInfix(lexer.COLON_COLON, p.parseQualifiedName)
	p.registerInfix(lexer.RANGE, p.parseRangeLiteral)
	p.registerInfix(lexer.RANGE_INCL, p.parseRangeLiteral)
	p.registerInfix(lexer.PIPELINE, p.parsePipelineExpression)
	p.registerInfix(lexer.QUESTION, p.parseTernaryOrTryOp)
	p.registerInfix(lexer.AS, p.parseTypeCast)
	p.registerInfix(lexer.BANG, p.parseSendExpression)
	p.registerInfix(lexer.ASK, p.parseAskExpression)
	p.registerInfix(lexer.INCREMENT, p.parsePostIncrement)
	p.registerInfix(lexer.DECREMENT, p.parsePostDecrement)
	p.registerInfix(lexer.ASSIGN, p.parseAssignExpression)
	for _, tt := range []lexer.TokenType{
		lexer.PLUS_ASSIGN, lexer.MINUS_ASSIGN, lexer.STAR_ASSIGN,
		lexer.SLASH_ASSIGN, lexer.PERCENT_ASSIGN, lexer.POWER_ASSIGN,
		lexer.AMP_ASSIGN, lexer.PIPE_ASSIGN, lexer.CARET_ASSIGN,
		lexer.SHL_ASSIGN, lexer.SHR_ASSIGN,
	} {
		p.registerInfix(tt, p.parseCompoundAssign)
	}

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns parser errors as strings (convenience method for tests).
// Prefer StructuredErrors() for production code.
func (p *Parser) Errors() []string {
	result := make([]string, len(p.structuredErrors))
	for i, err := range p.structuredErrors {
		if err.Line > 0 {
			result[i] = fmt.Sprintf("line %d, column %d: %s", err.Line, err.Column, err.Message)
		} else {
			result[i] = err.Message
		}
	}
	return result
}

// StructuredErrors returns parser errors as structured RuchyError objects.
func (p *Parser) StructuredErrors() []*rerrors.RuchyError {
	return p.structuredErrors
}

// addError adds a structured error. Only the first error is recorded -
// subsequent errors are usually cascading noise.
func (p *Parser) addError(msg string, line, column int) {
	if len(p.structuredErrors) > 0 {
		return
	}
	p.structuredErrors = append(p.structuredErrors, &rerrors.RuchyError{
		Class:   rerrors.ClassParse,
		Message: msg,
		Line:    line,
		Column:  column,
	})
}

// addCatalogError adds a structured error from the catalog.
func (p *Parser) addCatalogError(code string, line, column int, data map[string]any) {
	if len(p.structuredErrors) > 0 {
		return
	}
	p.structuredErrors = append(p.structuredErrors, rerrors.NewWithPosition(code, line, column, data))
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// nextToken advances prevToken, curToken, and peekToken
func (p *Parser) nextToken() {
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

// expectPeek advances if the peek token matches, or records an error
func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addCatalogError("PARSE-0001", p.peekToken.Line, p.peekToken.Column, map[string]any{
		"Expected": t.String(),
		"Got":      p.peekToken.Literal,
	})
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// ParseProgram parses the token stream into a Program
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.curTokenIs(lexer.EOF) {
		if p.curTokenIs(lexer.SEMICOLON) {
			p.nextToken()
			continue
		}
		expr := p.parseExpression(LOWEST)
		if len(p.structuredErrors) > 0 {
			return program
		}
		if expr != nil {
			program.Expressions = append(program.Expressions, expr)
		}
		p.nextToken()
	}

	return program
}

// parseExpression is the core of the Pratt parser
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.addCatalogError("PARSE-0003", p.curToken.Line, p.curToken.Column, map[string]any{
			"Token": p.curToken.Literal,
		})
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for !p.peekTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		if p.peekTokenIs(lexer.IN) && p.inLetValueContext {
			return leftExp
		}
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

// ---------------------------------------------------------------------------
// Literal prefix handlers
// ---------------------------------------------------------------------------

func (p *Parser) parseIdentifier() ast.Expression {
	// Arrow lambda: x => expr
	if p.peekTokenIs(lexer.FAT_ARROW) {
		return p.parseArrowLambda()
	}
	// Macro invocation: name!(...) or name![...]
	if p.peekTokenIs(lexer.BANG) {
		if after := p.peekAfterBang(); after == lexer.LPAREN || after == lexer.LBRACKET {
			return p.parseMacroInvocation()
		}
	}
	// Struct literal: Name { field: value }
	if p.peekTokenIs(lexer.LBRACE) && !p.noStructLiteral && isTypeName(p.curToken.Literal) {
		if p.looksLikeStructLiteral() {
			return p.parseStructLiteral()
		}
	}
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

// isTypeName reports whether an identifier is capitalized the way struct
// and actor names are.
func isTypeName(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

// peekAfterBang returns the token type that follows the '!' in peek
// position, by saving the lexer state through a lookahead copy. The lexer
// has one-token lookahead only, so this peeks at the raw input instead.
func (p *Parser) peekAfterBang() lexer.TokenType {
	// The parser holds curToken=name, peekToken='!'. A macro's opening
	// delimiter immediately follows the bang in the source with no
	// intervening expression, so inspect the span gap: delimiters appear
	// directly after the '!' byte.
	return p.rawTokenAfter(p.peekToken.Span.End)
}

// rawTokenAfter lexes the first token at the given byte offset of the input.
func (p *Parser) rawTokenAfter(offset int) lexer.TokenType {
	src := p.l.Source()
	if offset >= len(src) {
		return lexer.EOF
	}
	sub := lexer.New(src[offset:])
	return sub.NextToken().Type
}

// looksLikeStructLiteral distinguishes `Name { field: v }` from `Name`
// followed by a block. The struct body must start with `}` (empty),
// `ident:` or `ident,` or `ident}` (shorthand), or `..` (spread).
func (p *Parser) looksLikeStructLiteral() bool {
	src := p.l.Source()
	offset := p.peekToken.Span.End
	if offset >= len(src) {
		return false
	}
	sub := lexer.New(src[offset:])
	first := sub.NextToken()
	switch first.Type {
	case lexer.RBRACE, lexer.RANGE, lexer.ELLIPSIS:
		return true
	case lexer.IDENT:
		second := sub.NextToken()
		return second.Type == lexer.COLON || second.Type == lexer.COMMA || second.Type == lexer.RBRACE
	}
	return false
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}

	text := strings.ReplaceAll(p.curToken.Literal, "_", "")
	value, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		p.addCatalogError("PARSE-0007", p.curToken.Line, p.curToken.Column, map[string]any{
			"Kind":    "integer",
			"Literal": p.curToken.Literal,
		})
		return nil
	}
	lit.Value = value
	return lit
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	lit := &ast.FloatLiteral{Token: p.curToken}

	text := strings.ReplaceAll(p.curToken.Literal, "_", "")
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		p.addCatalogError("PARSE-0007", p.curToken.Line, p.curToken.Column, map[string]any{
			"Kind":    "float",
			"Literal": p.curToken.Literal,
		})
		return nil
	}
	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseCharLiteral() ast.Expression {
	runes := []rune(p.curToken.Literal)
	var r rune
	if len(runes) > 0 {
		r = runes[0]
	}
	return &ast.CharLiteral{Token: p.curToken, Value: r}
}

func (p *Parser) parseByteLiteral() ast.Expression {
	var b byte
	if len(p.curToken.Literal) > 0 {
		b = p.curToken.Literal[0]
	}
	return &ast.ByteLiteral{Token: p.curToken, Value: b}
}

func (p *Parser) parseAtomLiteral() ast.Expression {
	return &ast.AtomLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return &ast.NullLiteral{Token: p.curToken}
}

func (p *Parser) parseSelfExpression() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: "self"}
}

// parseFromReserved rejects 'from', which is reserved for future import
// syntax and cannot be used as a name.
func (p *Parser) parseFromReserved() ast.Expression {
	p.addCatalogError("PARSE-0004", p.curToken.Line, p.curToken.Column, nil)
	return nil
}

// parseConstructorName treats Result/Option/Self/DataFrame as identifiers
// with qualified-name support (Result::Ok, DataFrame::from_sql).
func (p *Parser) parseConstructorName() ast.Expression {
	if p.curTokenIs(lexer.DATAFRAME) && p.peekTokenIs(lexer.BANG) {
		if after := p.peekAfterBang(); after == lexer.LPAREN || after == lexer.LBRACKET {
			return p.parseMacroInvocation()
		}
	}
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

// ---------------------------------------------------------------------------
// Operator handlers
// ---------------------------------------------------------------------------

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}
	// Exponentiation binds tighter than unary minus: -2 ** 2 is -(2 ** 2).
	precedence := PREFIX
	if expression.Operator == "-" {
		precedence = POWER_PREC - 1
	}
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseReferenceExpression() ast.Expression {
	tok := p.curToken
	isMut := false
	if p.peekTokenIs(lexer.MUT) {
		p.nextToken()
		isMut = true
	}
	p.nextToken()
	value := p.parseExpression(PREFIX)
	if value == nil {
		return nil
	}
	return &ast.ReferenceExpression{Token: tok, IsMut: isMut, Value: value}
}

func (p *Parser) parsePreIncrement() ast.Expression {
	tok := p.curToken
	p.nextToken()
	operand := p.parseExpression(PREFIX)
	if operand == nil {
		return nil
	}
	return &ast.PreIncrement{Token: tok, Operand: operand}
}

func (p *Parser) parsePreDecrement() ast.Expression {
	tok := p.curToken
	p.nextToken()
	operand := p.parseExpression(PREFIX)
	if operand == nil {
		return nil
	}
	return &ast.PreDecrement{Token: tok, Operand: operand}
}

func (p *Parser) parsePostIncrement(left ast.Expression) ast.Expression {
	return &ast.PostIncrement{Token: p.curToken, Operand: left}
}

func (p *Parser) parsePostDecrement(left ast.Expression) ast.Expression {
	return &ast.PostDecrement{Token: p.curToken, Operand: left}
}

func (p *Parser) parseSpreadExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	value := p.parseExpression(PREFIX)
	if value == nil {
		return nil
	}
	return &ast.SpreadExpression{Token: tok, Value: value}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Literal,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

// parsePowerExpression parses ** right-associatively
func (p *Parser) parsePowerExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: "**",
	}
	p.nextToken()
	expression.Right = p.parseExpression(POWER_PREC - 1)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseRangeLiteral(left ast.Expression) ast.Expression {
	rl := &ast.RangeLiteral{
		Token:     p.curToken,
		Start:     left,
		Inclusive: p.curTokenIs(lexer.RANGE_INCL),
	}
	// An end closed by the surrounding delimiter is open, as in xs[2..].
	switch p.peekToken.Type {
	case lexer.RBRACKET, lexer.RPAREN, lexer.RBRACE, lexer.COMMA:
		return rl
	}
	p.nextToken()
	rl.End = p.parseExpression(RANGE_PREC)
	if rl.End == nil {
		return nil
	}
	return rl
}

func (p *Parser) parsePipelineExpression(left ast.Expression) ast.Expression {
	p.nextToken()
	stage := p.parseExpression(PIPELINE_PREC)
	if stage == nil {
		return nil
	}
	if pipe, ok := left.(*ast.PipelineExpression); ok {
		pipe.Stages = append(pipe.Stages, stage)
		return pipe
	}
	return &ast.PipelineExpression{
		Token:  p.curToken,
		Expr:   left,
		Stages: []ast.Expression{stage},
	}
}

// parseTernaryOrTryOp parses either `cond ? then : else` or the postfix
// error-propagation operator `expr?`, decided by whether an expression
// follows the question mark.
func (p *Parser) parseTernaryOrTryOp(left ast.Expression) ast.Expression {
	tok := p.curToken
	switch p.peekToken.Type {
	case lexer.SEMICOLON, lexer.COMMA, lexer.RPAREN, lexer.RBRACE, lexer.RBRACKET,
		lexer.EOF, lexer.DOT:
		return &ast.TryOpExpression{Token: tok, Value: left}
	}
	// A ternary's then-branch starts on the same line as the '?'; a token on
	// a later line begins the next expression, same newline rule as '|>'.
	if p.peekToken.Line > tok.Line {
		return &ast.TryOpExpression{Token: tok, Value: left}
	}
	p.nextToken()
	then := p.parseExpression(TERNARY)
	if then == nil {
		return nil
	}
	if !p.expectPeek(lexer.COLON) {
		return nil
	}
	p.nextToken()
	alt := p.parseExpression(TERNARY)
	if alt == nil {
		return nil
	}
	return &ast.TernaryExpression{Token: tok, Condition: left, Then: then, Else: alt}
}

func (p *Parser) parseTypeCast(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	target := p.parseTypeExpr()
	if target == nil {
		return nil
	}
	return &ast.TypeCastExpression{Token: tok, Value: left, Target: target}
}

func (p *Parser) parseSendExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	msg := p.parseExpression(SEND_PREC)
	if msg == nil {
		return nil
	}
	return &ast.SendExpression{Token: tok, Actor: left, Message: msg}
}

func (p *Parser) parseAskExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	msg := p.parseExpression(SEND_PREC)
	if msg == nil {
		return nil
	}
	return &ast.AskExpression{Token: tok, Actor: left, Message: msg}
}

func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	if !isAssignable(left) {
		p.addError("invalid assignment target", tok.Line, tok.Column)
		return nil
	}
	p.nextToken()
	value := p.parseExpression(ASSIGN_PREC - 1) // right-associative
	if value == nil {
		return nil
	}
	return &ast.AssignExpression{Token: tok, Target: left, Value: value}
}

func (p *Parser) parseCompoundAssign(left ast.Expression) ast.Expression {
	tok := p.curToken
	if !isAssignable(left) {
		p.addError("invalid assignment target", tok.Line, tok.Column)
		return nil
	}
	op := strings.TrimSuffix(tok.Literal, "=")
	p.nextToken()
	value := p.parseExpression(ASSIGN_PREC - 1)
	if value == nil {
		return nil
	}
	return &ast.CompoundAssignExpression{Token: tok, Target: left, Operator: op, Value: value}
}

func isAssignable(e ast.Expression) bool {
	switch e.(type) {
	case *ast.Identifier, *ast.FieldAccess, *ast.IndexAccess:
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Calls, access, paths
// ---------------------------------------------------------------------------

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	exp := &ast.CallExpression{Token: p.curToken, Function: function}
	exp.Arguments = p.parseExpressionList(lexer.RPAREN)
	if exp.Arguments == nil && len(p.structuredErrors) > 0 {
		return nil
	}
	return exp
}

// parseExpressionList parses a comma-separated expression list up to end.
// Trailing commas are permitted.
func (p *Parser) parseExpressionList(end lexer.TokenType) []ast.Expression {
	list := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}
	list = append(list, first)

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		if p.peekTokenIs(end) {
			break
		}
		p.nextToken()
		next := p.parseExpression(LOWEST)
		if next == nil {
			return nil
		}
		list = append(list, next)
	}

	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseIndexOrSlice(left ast.Expression) ast.Expression {
	tok := p.curToken

	// a[..end] open-start slice
	if p.peekTokenIs(lexer.RANGE) || p.peekTokenIs(lexer.RANGE_INCL) {
		p.nextToken()
		se := &ast.SliceExpression{Token: tok, Object: left}
		if !p.peekTokenIs(lexer.RBRACKET) {
			p.nextToken()
			se.End = p.parseExpression(LOWEST)
			if se.End == nil {
				return nil
			}
		}
		if !p.expectPeek(lexer.RBRACKET) {
			return nil
		}
		return se
	}

	p.nextToken()
	index := p.parseExpression(LOWEST)
	if index == nil {
		return nil
	}

	// A range index is a slice: a[1..3], or a[2..] when the end is open.
	if rl, ok := index.(*ast.RangeLiteral); ok {
		if !p.expectPeek(lexer.RBRACKET) {
			return nil
		}
		return &ast.SliceExpression{Token: tok, Object: left, Start: rl.Start, End: rl.End}
	}

	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return &ast.IndexAccess{Token: tok, Object: left, Index: index}
}

func (p *Parser) parseDotExpression(left ast.Expression) ast.Expression {
	if p.peekTokenIs(lexer.AWAIT) {
		p.nextToken()
		return &ast.AwaitExpression{Token: p.curToken, Value: left}
	}

	if p.peekTokenIs(lexer.INT) {
		// Tuple index access: t.0
		p.nextToken()
		return &ast.FieldAccess{Token: p.curToken, Object: left, Field: p.curToken.Literal}
	}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	nameTok := p.curToken
	name := p.curToken.Literal

	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		mc := &ast.MethodCallExpression{Token: nameTok, Receiver: left, Method: name}
		mc.Arguments = p.parseExpressionList(lexer.RPAREN)
		if mc.Arguments == nil && len(p.structuredErrors) > 0 {
			return nil
		}
		return mc
	}

	return &ast.FieldAccess{Token: nameTok, Object: left, Field: name}
}

// parseQualifiedName parses A::B[::C] paths. Constructor keywords on the
// right (Ok, Err, Some, None) stay part of the path.
func (p *Parser) parseQualifiedName(left ast.Expression) ast.Expression {
	var parts []string
	switch l := left.(type) {
	case *ast.Identifier:
		parts = []string{l.Value}
	case *ast.QualifiedName:
		parts = l.Parts
	default:
		p.addError("invalid path segment before '::'", p.curToken.Line, p.curToken.Column)
		return nil
	}

	switch p.peekToken.Type {
	case lexer.IDENT, lexer.SOME, lexer.NONE, lexer.OK, lexer.ERR, lexer.SELFTYPE:
		p.nextToken()
	default:
		p.addCatalogError("PARSE-0001", p.peekToken.Line, p.peekToken.Column, map[string]any{
			"Expected": "IDENT",
			"Got":      p.peekToken.Literal,
		})
		return nil
	}

	parts = append(parts, p.curToken.Literal)
	return &ast.QualifiedName{Token: p.curToken, Parts: parts}
}

// ---------------------------------------------------------------------------
// Grouping, collections, lambdas
// ---------------------------------------------------------------------------

// parseGroupedExpression parses (expr), the unit value (), tuples
// (a, b), and arrow lambdas (x, y) => body.
func (p *Parser) parseGroupedExpression() ast.Expression {
	tok := p.curToken

	// Parentheses re-enable struct literals inside condition positions.
	savedStruct := p.noStructLiteral
	p.noStructLiteral = false
	defer func() { p.noStructLiteral = savedStruct }()

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		if p.peekTokenIs(lexer.FAT_ARROW) {
			p.nextToken()
			return p.finishArrowLambda(tok, nil)
		}
		return &ast.TupleLiteral{Token: tok} // unit
	}

	p.nextToken()
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}

	if p.peekTokenIs(lexer.COMMA) {
		elements := []ast.Expression{first}
		for p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			if p.peekTokenIs(lexer.RPAREN) {
				break
			}
			p.nextToken()
			next := p.parseExpression(LOWEST)
			if next == nil {
				return nil
			}
			elements = append(elements, next)
		}
		if !p.expectPeek(lexer.RPAREN) {
			return nil
		}
		if p.peekTokenIs(lexer.FAT_ARROW) {
			params := identifiersToParams(elements)
			if params != nil {
				p.nextToken()
				return p.finishArrowLambda(tok, params)
			}
		}
		return &ast.TupleLiteral{Token: tok, Elements: elements}
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	if p.peekTokenIs(lexer.FAT_ARROW) {
		if params := identifiersToParams([]ast.Expression{first}); params != nil {
			p.nextToken()
			return p.finishArrowLambda(tok, params)
		}
	}

	return first
}

// identifiersToParams converts identifier expressions to lambda parameters,
// or returns nil if any element is not a plain identifier.
func identifiersToParams(elements []ast.Expression) []*ast.Parameter {
	params := make([]*ast.Parameter, len(elements))
	for i, e := range elements {
		id, ok := e.(*ast.Identifier)
		if !ok {
			return nil
		}
		params[i] = &ast.Parameter{Name: id.Value}
	}
	return params
}

// parseArrowLambda handles x => body; curToken is the parameter identifier.
func (p *Parser) parseArrowLambda() ast.Expression {
	tok := p.curToken
	params := []*ast.Parameter{{Name: p.curToken.Literal}}
	p.nextToken() // onto '=>'
	return p.finishArrowLambda(tok, params)
}

// finishArrowLambda parses the body; curToken is the '=>'.
func (p *Parser) finishArrowLambda(tok lexer.Token, params []*ast.Parameter) ast.Expression {
	p.nextToken()
	body := p.parseExpression(LOWEST)
	if body == nil {
		return nil
	}
	return &ast.LambdaLiteral{Token: tok, Params: params, Body: body}
}

// parseLambdaLiteral parses |params| body
func (p *Parser) parseLambdaLiteral() ast.Expression {
	tok := p.curToken
	var params []*ast.Parameter

	for !p.peekTokenIs(lexer.PIPE) {
		p.nextToken()
		param := p.parseParameter()
		if param == nil {
			return nil
		}
		params = append(params, param)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	if !p.expectPeek(lexer.PIPE) {
		return nil
	}

	p.nextToken()
	body := p.parseExpression(LOWEST)
	if body == nil {
		return nil
	}
	return &ast.LambdaLiteral{Token: tok, Params: params, Body: body}
}

// parseEmptyParamLambda parses || body
func (p *Parser) parseEmptyParamLambda() ast.Expression {
	tok := p.curToken
	p.nextToken()
	body := p.parseExpression(LOWEST)
	if body == nil {
		return nil
	}
	return &ast.LambdaLiteral{Token: tok, Body: body}
}

// parseListLike parses [a, b], [v; n], [...spread, x], and comprehensions.
func (p *Parser) parseListLike() ast.Expression {
	tok := p.curToken

	if p.peekTokenIs(lexer.RBRACKET) {
		p.nextToken()
		return &ast.ListLiteral{Token: tok, Elements: []ast.Expression{}}
	}

	savedIn := p.inLetValueContext
	p.inLetValueContext = true
	p.nextToken()
	first := p.parseExpression(LOWEST)
	p.inLetValueContext = savedIn
	if first == nil {
		return nil
	}

	// [value; size] array initialization
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		p.nextToken()
		size := p.parseExpression(LOWEST)
		if size == nil {
			return nil
		}
		if !p.expectPeek(lexer.RBRACKET) {
			return nil
		}
		return &ast.ArrayInitLiteral{Token: tok, Value: first, Size: size}
	}

	// [body for x in iter ...] comprehension
	if p.peekTokenIs(lexer.FOR) {
		return p.parseListComprehension(tok, first)
	}

	elements := []ast.Expression{first}
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		if p.peekTokenIs(lexer.RBRACKET) {
			break
		}
		p.inLetValueContext = true
		p.nextToken()
		next := p.parseExpression(LOWEST)
		p.inLetValueContext = savedIn
		if next == nil {
			return nil
		}
		elements = append(elements, next)
	}
	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return &ast.ListLiteral{Token: tok, Elements: elements}
}

// parseListComprehension parses the `for x in iter [if cond]` clauses after
// the body expression; curToken is still the body's last token.
func (p *Parser) parseListComprehension(tok lexer.Token, body ast.Expression) ast.Expression {
	lc := &ast.ListComprehension{Token: tok, Body: body}

	for p.peekTokenIs(lexer.FOR) {
		p.nextToken() // 'for'
		p.nextToken() // pattern start
		pattern := p.parsePattern()
		if pattern == nil {
			return nil
		}
		if !p.expectPeek(lexer.IN) {
			return nil
		}

		clause := &ast.ComprehensionClause{Pattern: pattern}

		p.inLetValueContext = true
		p.nextToken()
		clause.Iterable = p.parseExpression(LOWEST)
		p.inLetValueContext = false
		if clause.Iterable == nil {
			return nil
		}

		for p.peekTokenIs(lexer.IF) {
			p.nextToken()
			p.inLetValueContext = true
			p.nextToken()
			cond := p.parseExpression(LOWEST)
			p.inLetValueContext = false
			if cond == nil {
				return nil
			}
			clause.Conditions = append(clause.Conditions, cond)
		}

		lc.Clauses = append(lc.Clauses, clause)
	}

	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return lc
}

// parseBlockOrObject disambiguates { expr; ... } blocks from { key: value }
// object literals by the shape of the first entry.
func (p *Parser) parseBlockOrObject() ast.Expression {
	if p.looksLikeObjectLiteral() {
		return p.parseObjectLiteral()
	}
	return p.parseBlockExpression()
}

// looksLikeObjectLiteral checks for `{ ident: ` or `{ "string": ` openings.
func (p *Parser) looksLikeObjectLiteral() bool {
	if !p.peekTokenIs(lexer.IDENT) && !p.peekTokenIs(lexer.STRING) {
		return false
	}
	return p.rawTokenAfter(p.peekToken.Span.End) == lexer.COLON
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	ol := &ast.ObjectLiteral{Token: p.curToken}

	for !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		if !p.curTokenIs(lexer.IDENT) && !p.curTokenIs(lexer.STRING) {
			p.addCatalogError("PARSE-0001", p.curToken.Line, p.curToken.Column, map[string]any{
				"Expected": "field name",
				"Got":      p.curToken.Literal,
			})
			return nil
		}
		name := p.curToken.Literal
		if !p.expectPeek(lexer.COLON) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		ol.Fields = append(ol.Fields, &ast.FieldInit{Name: name, Value: value})
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return ol
}

// parseBlockExpression parses { e1; e2; ... }
func (p *Parser) parseBlockExpression() ast.Expression {
	block := &ast.BlockExpression{Token: p.curToken}

	savedStruct := p.noStructLiteral
	savedIn := p.inLetValueContext
	p.noStructLiteral = false
	p.inLetValueContext = false
	defer func() {
		p.noStructLiteral = savedStruct
		p.inLetValueContext = savedIn
	}()

	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		if p.curTokenIs(lexer.SEMICOLON) {
			p.nextToken()
			continue
		}
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil
		}
		block.Expressions = append(block.Expressions, expr)
		p.nextToken()
	}

	if !p.curTokenIs(lexer.RBRACE) {
		p.addCatalogError("PARSE-0001", p.curToken.Line, p.curToken.Column, map[string]any{
			"Expected": "}",
			"Got":      p.curToken.Literal,
		})
		return nil
	}
	return block
}

// parseStructLiteral parses Name { field: value, .. } with shorthand fields.
func (p *Parser) parseStructLiteral() ast.Expression {
	sl := &ast.StructLiteral{Token: p.curToken, Name: p.curToken.Literal}
	p.nextToken() // onto '{'

	for !p.peekTokenIs(lexer.RBRACE) {
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		name := p.curToken.Literal
		var value ast.Expression
		if p.peekTokenIs(lexer.COLON) {
			p.nextToken()
			p.nextToken()
			value = p.parseExpression(LOWEST)
			if value == nil {
				return nil
			}
		} else {
			// Shorthand: field name doubles as the value identifier
			value = &ast.Identifier{Token: p.curToken, Value: name}
		}
		sl.Fields = append(sl.Fields, &ast.FieldInit{Name: name, Value: value})
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return sl
}

// parseMacroInvocation parses name!(args) and name![args]; curToken is the name.
func (p *Parser) parseMacroInvocation() ast.Expression {
	tok := p.curToken
	name := p.curToken.Literal
	p.nextToken() // onto '!'

	var end lexer.TokenType
	switch p.peekToken.Type {
	case lexer.LPAREN:
		end = lexer.RPAREN
	case lexer.LBRACKET:
		end = lexer.RBRACKET
	default:
		p.addCatalogError("PARSE-0002", p.peekToken.Line, p.peekToken.Column, map[string]any{
			"Token": p.peekToken.Literal,
		})
		return nil
	}
	p.nextToken() // onto opening delimiter

	if name == "df" {
		return p.parseDataFrameMacro(tok, end)
	}

	args := p.parseExpressionList(end)
	if args == nil && len(p.structuredErrors) > 0 {
		return nil
	}

	if name == "command" && len(args) > 0 {
		return &ast.CommandExpression{Token: tok, Program: args[0], Args: args[1:]}
	}

	return &ast.MacroInvocation{Token: tok, Name: name, Arguments: args}
}

// parseDataFrameMacro parses df![col => [values], ...]
func (p *Parser) parseDataFrameMacro(tok lexer.Token, end lexer.TokenType) ast.Expression {
	dl := &ast.DataFrameLiteral{Token: tok}

	for !p.peekTokenIs(end) {
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		col := &ast.DataFrameColumn{Name: p.curToken.Literal}
		if !p.expectPeek(lexer.FAT_ARROW) {
			return nil
		}
		if !p.expectPeek(lexer.LBRACKET) {
			return nil
		}
		col.Values = p.parseExpressionList(lexer.RBRACKET)
		if col.Values == nil && len(p.structuredErrors) > 0 {
			return nil
		}
		dl.Columns = append(dl.Columns, col)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	if !p.expectPeek(end) {
		return nil
	}
	return dl
}
