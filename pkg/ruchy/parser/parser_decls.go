package parser

import (
	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/lexer"
)

// ---------------------------------------------------------------------------
// Bindings
// ---------------------------------------------------------------------------

// parseLetExpression parses let and var bindings in all their forms:
//
//	let x = 1                let mut x = 1            var x = 1
//	let x: Int = 1           let x = 1 in x + 1
//	let (a, b) = pair        let Some(v) = opt else { return }
func (p *Parser) parseLetExpression() ast.Expression {
	tok := p.curToken
	mutable := p.curTokenIs(lexer.VAR)

	if p.peekTokenIs(lexer.MUT) {
		p.nextToken()
		mutable = true
	}

	// A simple identifier binding keeps the fast path; anything else is a
	// destructuring pattern.
	if p.peekTokenIs(lexer.IDENT) && p.identBindingFollows() {
		p.nextToken()
		name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

		le := &ast.LetExpression{Token: tok, Name: name, Mutable: mutable}

		if p.peekTokenIs(lexer.COLON) {
			p.nextToken()
			p.nextToken()
			le.TypeAnn = p.parseTypeExpr()
			if le.TypeAnn == nil {
				return nil
			}
		}

		if !p.expectPeek(lexer.ASSIGN) {
			return nil
		}

		p.inLetValueContext = true
		p.nextToken()
		le.Value = p.parseExpression(LOWEST)
		p.inLetValueContext = false
		if le.Value == nil {
			return nil
		}

		return p.finishLetTail(le)
	}

	p.nextToken()
	pattern := p.parsePattern()
	if pattern == nil {
		return nil
	}

	lp := &ast.LetPatternExpression{Token: tok, Pattern: pattern, Mutable: mutable}

	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		lp.TypeAnn = p.parseTypeExpr()
		if lp.TypeAnn == nil {
			return nil
		}
	}

	if !p.expectPeek(lexer.ASSIGN) {
		return nil
	}

	p.inLetValueContext = true
	p.nextToken()
	lp.Value = p.parseExpression(LOWEST)
	p.inLetValueContext = false
	if lp.Value == nil {
		return nil
	}

	if p.peekTokenIs(lexer.IN) {
		p.nextToken()
		p.nextToken()
		lp.Body = p.parseExpression(LOWEST)
		if lp.Body == nil {
			return nil
		}
	} else if p.peekTokenIs(lexer.ELSE) {
		p.nextToken()
		if !p.expectPeek(lexer.LBRACE) {
			return nil
		}
		lp.ElseBody = p.parseBlockExpression()
		if lp.ElseBody == nil {
			return nil
		}
	}

	return lp
}

// finishLetTail parses the optional `in body` and `else { ... }` suffixes.
func (p *Parser) finishLetTail(le *ast.LetExpression) ast.Expression {
	if p.peekTokenIs(lexer.IN) {
		p.nextToken()
		p.nextToken()
		le.Body = p.parseExpression(LOWEST)
		if le.Body == nil {
			return nil
		}
	} else if p.peekTokenIs(lexer.ELSE) {
		p.nextToken()
		if !p.expectPeek(lexer.LBRACE) {
			return nil
		}
		le.ElseBody = p.parseBlockExpression()
		if le.ElseBody == nil {
			return nil
		}
	}
	return le
}

// identBindingFollows reports whether the identifier in peek position is a
// plain binding name rather than the head of a destructuring pattern like
// `let Some(x) = ...` or an at-binding.
func (p *Parser) identBindingFollows() bool {
	if isTypeName(p.peekToken.Literal) {
		// Uppercase names are variant or struct patterns when followed by
		// a pattern opener.
		switch p.rawTokenAfter(p.peekToken.Span.End) {
		case lexer.LPAREN, lexer.LBRACE, lexer.COLON_COLON:
			return false
		}
	}
	return p.rawTokenAfter(p.peekToken.Span.End) != lexer.AT
}

// ---------------------------------------------------------------------------
// Functions
// ---------------------------------------------------------------------------

// parseFunctionLiteral parses fun name<T>(params) -> Type body.
// The name is optional; the body is any expression, usually a block.
func (p *Parser) parseFunctionLiteral() ast.Expression {
	fl := &ast.FunctionLiteral{Token: p.curToken}

	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		fl.Name = p.curToken.Literal
	}

	if p.peekTokenIs(lexer.LT) {
		p.nextToken()
		fl.Generics = p.parseGenericParams()
		if fl.Generics == nil && len(p.structuredErrors) > 0 {
			return nil
		}
	}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	fl.Params = p.parseParameterList()
	if fl.Params == nil && len(p.structuredErrors) > 0 {
		return nil
	}

	if p.peekTokenIs(lexer.ARROW) {
		p.nextToken()
		p.nextToken()
		fl.ReturnType = p.parseTypeExpr()
		if fl.ReturnType == nil {
			return nil
		}
	}

	p.nextToken()
	fl.Body = p.parseExpression(LOWEST)
	if fl.Body == nil {
		return nil
	}
	return fl
}

// parseGenericParams parses <T, U: Bound + Other>; curToken is '<'.
func (p *Parser) parseGenericParams() []*ast.GenericParam {
	var params []*ast.GenericParam

	for !p.peekTokenIs(lexer.GT) {
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		gp := &ast.GenericParam{Name: p.curToken.Literal}

		if p.peekTokenIs(lexer.COLON) {
			p.nextToken()
			for {
				if !p.expectPeek(lexer.IDENT) {
					return nil
				}
				gp.Bounds = append(gp.Bounds, p.curToken.Literal)
				if !p.peekTokenIs(lexer.PLUS) {
					break
				}
				p.nextToken()
			}
		}

		params = append(params, gp)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	if !p.expectPeek(lexer.GT) {
		return nil
	}
	return params
}

// parseParameterList parses (a: Int, mut b, c = 1, &self); curToken is '('.
func (p *Parser) parseParameterList() []*ast.Parameter {
	params := []*ast.Parameter{}

	for !p.peekTokenIs(lexer.RPAREN) {
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
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return params
}

// parseParameter parses one parameter; curToken is its first token.
func (p *Parser) parseParameter() *ast.Parameter {
	param := &ast.Parameter{}

	// &self and &mut self receivers
	if p.curTokenIs(lexer.AMP) {
		if p.peekTokenIs(lexer.MUT) {
			p.nextToken()
			if !p.expectPeek(lexer.SELF) {
				return nil
			}
			param.IsMutSelf = true
			param.Name = "self"
			return param
		}
		if !p.expectPeek(lexer.SELF) {
			return nil
		}
		param.IsSelf = true
		param.Name = "self"
		return param
	}

	if p.curTokenIs(lexer.SELF) {
		param.IsSelf = true
		param.Name = "self"
		return param
	}

	if p.curTokenIs(lexer.MUT) {
		param.IsMut = true
		p.nextToken()
	}

	if p.curTokenIs(lexer.FROM) {
		p.addCatalogError("PARSE-0004", p.curToken.Line, p.curToken.Column, nil)
		return nil
	}
	if !p.curTokenIs(lexer.IDENT) {
		p.addCatalogError("PARSE-0001", p.curToken.Line, p.curToken.Column, map[string]any{
			"Expected": "parameter name",
			"Got":      p.curToken.Literal,
		})
		return nil
	}
	param.Name = p.curToken.Literal

	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		param.Type = p.parseTypeExpr()
		if param.Type == nil {
			return nil
		}
	}

	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		param.Default = p.parseExpression(LOWEST)
		if param.Default == nil {
			return nil
		}
	}

	return param
}

// ---------------------------------------------------------------------------
// Control flow
// ---------------------------------------------------------------------------

// parseIfExpression parses if cond { } [else if ... | else { }] and the
// if-let form. The condition is parsed with struct literals suppressed.
func (p *Parser) parseIfExpression() ast.Expression {
	tok := p.curToken

	if p.peekTokenIs(lexer.LET) {
		p.nextToken()
		return p.parseIfLet(tok)
	}

	savedStruct := p.noStructLiteral
	p.noStructLiteral = true
	p.nextToken()
	condition := p.parseExpression(LOWEST)
	p.noStructLiteral = savedStruct
	if condition == nil {
		return nil
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	consequence := p.parseBlockExpression()
	if consequence == nil {
		return nil
	}

	ie := &ast.IfExpression{Token: tok, Condition: condition, Consequence: consequence}

	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken()
		if p.peekTokenIs(lexer.IF) {
			p.nextToken()
			ie.Alternative = p.parseIfExpression()
		} else {
			if !p.expectPeek(lexer.LBRACE) {
				return nil
			}
			ie.Alternative = p.parseBlockExpression()
		}
		if ie.Alternative == nil {
			return nil
		}
	}

	return ie
}

// parseIfLet parses if let pattern = value { } [else ...]; curToken is 'let'.
func (p *Parser) parseIfLet(tok lexer.Token) ast.Expression {
	p.nextToken()
	pattern := p.parsePattern()
	if pattern == nil {
		return nil
	}
	if !p.expectPeek(lexer.ASSIGN) {
		return nil
	}

	savedStruct := p.noStructLiteral
	p.noStructLiteral = true
	p.nextToken()
	value := p.parseExpression(LOWEST)
	p.noStructLiteral = savedStruct
	if value == nil {
		return nil
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	consequence := p.parseBlockExpression()
	if consequence == nil {
		return nil
	}

	il := &ast.IfLetExpression{Token: tok, Pattern: pattern, Value: value, Consequence: consequence}

	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken()
		if p.peekTokenIs(lexer.IF) {
			p.nextToken()
			il.Alternative = p.parseIfExpression()
		} else {
			if !p.expectPeek(lexer.LBRACE) {
				return nil
			}
			il.Alternative = p.parseBlockExpression()
		}
		if il.Alternative == nil {
			return nil
		}
	}

	return il
}

func (p *Parser) parseWhileExpression() ast.Expression {
	return p.parseWhileWithLabel("")
}

func (p *Parser) parseWhileWithLabel(label string) ast.Expression {
	tok := p.curToken

	if p.peekTokenIs(lexer.LET) {
		p.nextToken()
		p.nextToken()
		pattern := p.parsePattern()
		if pattern == nil {
			return nil
		}
		if !p.expectPeek(lexer.ASSIGN) {
			return nil
		}

		savedStruct := p.noStructLiteral
		p.noStructLiteral = true
		p.nextToken()
		value := p.parseExpression(LOWEST)
		p.noStructLiteral = savedStruct
		if value == nil {
			return nil
		}

		if !p.expectPeek(lexer.LBRACE) {
			return nil
		}
		body := p.parseBlockExpression()
		if body == nil {
			return nil
		}
		return &ast.WhileLetExpression{Token: tok, Label: label, Pattern: pattern, Value: value, Body: body}
	}

	savedStruct := p.noStructLiteral
	p.noStructLiteral = true
	p.nextToken()
	condition := p.parseExpression(LOWEST)
	p.noStructLiteral = savedStruct
	if condition == nil {
		return nil
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlockExpression()
	if body == nil {
		return nil
	}
	return &ast.WhileExpression{Token: tok, Label: label, Condition: condition, Body: body}
}

func (p *Parser) parseForExpression() ast.Expression {
	return p.parseForWithLabel("")
}

func (p *Parser) parseForWithLabel(label string) ast.Expression {
	tok := p.curToken

	p.nextToken()
	pattern := p.parsePattern()
	if pattern == nil {
		return nil
	}

	if !p.expectPeek(lexer.IN) {
		return nil
	}

	savedStruct := p.noStructLiteral
	p.noStructLiteral = true
	p.nextToken()
	iterable := p.parseExpression(LOWEST)
	p.noStructLiteral = savedStruct
	if iterable == nil {
		return nil
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlockExpression()
	if body == nil {
		return nil
	}
	return &ast.ForExpression{Token: tok, Label: label, Pattern: pattern, Iterable: iterable, Body: body}
}

func (p *Parser) parseLoopExpression() ast.Expression {
	return p.parseLoopWithLabel("")
}

func (p *Parser) parseLoopWithLabel(label string) ast.Expression {
	tok := p.curToken
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlockExpression()
	if body == nil {
		return nil
	}
	return &ast.LoopExpression{Token: tok, Label: label, Body: body}
}

// parseLabeledLoop parses 'label: loop/while/for; curToken is the lifetime.
func (p *Parser) parseLabeledLoop() ast.Expression {
	label := p.curToken.Literal
	if !p.expectPeek(lexer.COLON) {
		return nil
	}
	p.nextToken()
	switch p.curToken.Type {
	case lexer.LOOP:
		return p.parseLoopWithLabel(label)
	case lexer.WHILE:
		return p.parseWhileWithLabel(label)
	case lexer.FOR:
		return p.parseForWithLabel(label)
	}
	p.addCatalogError("PARSE-0001", p.curToken.Line, p.curToken.Column, map[string]any{
		"Expected": "loop, while, or for",
		"Got":      p.curToken.Literal,
	})
	return nil
}

// parseMatchExpression parses match scrutinee { pattern [if guard] => body, ... }
func (p *Parser) parseMatchExpression() ast.Expression {
	me := &ast.MatchExpression{Token: p.curToken}

	savedStruct := p.noStructLiteral
	p.noStructLiteral = true
	p.nextToken()
	me.Scrutinee = p.parseExpression(LOWEST)
	p.noStructLiteral = savedStruct
	if me.Scrutinee == nil {
		return nil
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}

	for !p.peekTokenIs(lexer.RBRACE) && !p.peekTokenIs(lexer.EOF) {
		p.nextToken()
		arm := &ast.MatchArm{}

		arm.Pattern = p.parseOrPattern()
		if arm.Pattern == nil {
			return nil
		}

		if p.peekTokenIs(lexer.IF) {
			p.nextToken()
			p.nextToken()
			arm.Guard = p.parseExpression(LOWEST)
			if arm.Guard == nil {
				return nil
			}
		}

		if !p.expectPeek(lexer.FAT_ARROW) {
			return nil
		}

		p.nextToken()
		arm.Body = p.parseExpression(LOWEST)
		if arm.Body == nil {
			return nil
		}

		me.Arms = append(me.Arms, arm)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}

	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}

	if len(me.Arms) == 0 {
		p.addCatalogError("PARSE-0008", me.Token.Line, me.Token.Column, nil)
		return nil
	}
	return me
}

func (p *Parser) parseReturnExpression() ast.Expression {
	re := &ast.ReturnExpression{Token: p.curToken}

	if p.returnHasValue() {
		p.nextToken()
		re.Value = p.parseExpression(LOWEST)
		if re.Value == nil {
			return nil
		}
	}
	return re
}

// returnHasValue reports whether an expression follows return/break.
func (p *Parser) returnHasValue() bool {
	switch p.peekToken.Type {
	case lexer.SEMICOLON, lexer.RBRACE, lexer.RPAREN, lexer.RBRACKET,
		lexer.COMMA, lexer.EOF:
		return false
	}
	return true
}

func (p *Parser) parseBreakExpression() ast.Expression {
	be := &ast.BreakExpression{Token: p.curToken}

	if p.peekTokenIs(lexer.LIFETIME) {
		p.nextToken()
		be.Label = p.curToken.Literal
	}
	if p.returnHasValue() {
		p.nextToken()
		be.Value = p.parseExpression(LOWEST)
		if be.Value == nil {
			return nil
		}
	}
	return be
}

func (p *Parser) parseContinueExpression() ast.Expression {
	ce := &ast.ContinueExpression{Token: p.curToken}
	if p.peekTokenIs(lexer.LIFETIME) {
		p.nextToken()
		ce.Label = p.curToken.Literal
	}
	return ce
}

// ---------------------------------------------------------------------------
// Errors and effects
// ---------------------------------------------------------------------------

// parseTryCatchExpression parses try { } catch [pattern] { } ... [finally { }]
func (p *Parser) parseTryCatchExpression() ast.Expression {
	tc := &ast.TryCatchExpression{Token: p.curToken}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	tc.Body = p.parseBlockExpression()
	if tc.Body == nil {
		return nil
	}

	for p.peekTokenIs(lexer.CATCH) {
		p.nextToken()
		clause := &ast.CatchClause{}

		if !p.peekTokenIs(lexer.LBRACE) {
			p.nextToken()
			clause.Pattern = p.parsePattern()
			if clause.Pattern == nil {
				return nil
			}
		}

		if !p.expectPeek(lexer.LBRACE) {
			return nil
		}
		clause.Body = p.parseBlockExpression()
		if clause.Body == nil {
			return nil
		}
		tc.Catches = append(tc.Catches, clause)
	}

	if p.peekTokenIs(lexer.FINALLY) {
		p.nextToken()
		if !p.expectPeek(lexer.LBRACE) {
			return nil
		}
		tc.Finally = p.parseBlockExpression()
		if tc.Finally == nil {
			return nil
		}
	}

	if len(tc.Catches) == 0 && tc.Finally == nil {
		p.addCatalogError("PARSE-0009", tc.Token.Line, tc.Token.Column, nil)
		return nil
	}
	return tc
}

func (p *Parser) parseThrowExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	return &ast.ThrowExpression{Token: tok, Value: value}
}

func (p *Parser) parseAwaitExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	value := p.parseExpression(PREFIX)
	if value == nil {
		return nil
	}
	return &ast.AwaitExpression{Token: tok, Value: value}
}

// parseAsyncBlock parses async { } blocks and async fun definitions.
func (p *Parser) parseAsyncBlock() ast.Expression {
	tok := p.curToken

	if p.peekTokenIs(lexer.FUNCTION) {
		p.nextToken()
		fn := p.parseFunctionLiteral()
		if fn == nil {
			return nil
		}
		fn.(*ast.FunctionLiteral).IsAsync = true
		return fn
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlockExpression()
	if body == nil {
		return nil
	}
	return &ast.AsyncBlock{Token: tok, Body: body}
}

func (p *Parser) parseSpawnExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	target := p.parseExpression(LOWEST)
	if target == nil {
		return nil
	}
	return &ast.SpawnExpression{Token: tok, Target: target}
}

// ---------------------------------------------------------------------------
// Result and Option constructors
// ---------------------------------------------------------------------------

func (p *Parser) parseSomeExpression() ast.Expression {
	tok := p.curToken
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return &ast.SomeExpression{Token: tok, Value: value}
}

func (p *Parser) parseNoneExpression() ast.Expression {
	return &ast.NoneExpression{Token: p.curToken}
}

func (p *Parser) parseOkExpression() ast.Expression {
	tok := p.curToken
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return &ast.OkExpression{Token: tok, Value: value}
}

func (p *Parser) parseErrExpression() ast.Expression {
	tok := p.curToken
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return &ast.ErrExpression{Token: tok, Value: value}
}

// ---------------------------------------------------------------------------
// Type definitions
// ---------------------------------------------------------------------------

// parseStructDefinition parses struct Name<T> { [pub] [mut] field: Type [= default], ... }
// and unit structs with no body.
func (p *Parser) parseStructDefinition() ast.Expression {
	sd := &ast.StructDefinition{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	sd.Name = p.curToken.Literal

	if p.peekTokenIs(lexer.LT) {
		p.nextToken()
		sd.Generics = p.parseGenericParams()
		if sd.Generics == nil && len(p.structuredErrors) > 0 {
			return nil
		}
	}

	if !p.peekTokenIs(lexer.LBRACE) {
		return sd // unit struct
	}
	p.nextToken()

	for !p.peekTokenIs(lexer.RBRACE) {
		field := &ast.StructField{}
		if p.peekTokenIs(lexer.PUB) {
			p.nextToken()
			field.IsPub = true
		}
		if p.peekTokenIs(lexer.MUT) {
			p.nextToken()
			field.IsMut = true
		}
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		field.Name = p.curToken.Literal

		if !p.expectPeek(lexer.COLON) {
			return nil
		}
		p.nextToken()
		field.Type = p.parseTypeExpr()
		if field.Type == nil {
			return nil
		}

		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken()
			p.nextToken()
			field.Default = p.parseExpression(LOWEST)
			if field.Default == nil {
				return nil
			}
		}

		sd.Fields = append(sd.Fields, field)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return sd
}

// parseEnumDefinition parses enum Name<T> { Unit, Tuple(A, B), Disc = 5 }
func (p *Parser) parseEnumDefinition() ast.Expression {
	ed := &ast.EnumDefinition{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	ed.Name = p.curToken.Literal

	if p.peekTokenIs(lexer.LT) {
		p.nextToken()
		ed.Generics = p.parseGenericParams()
		if ed.Generics == nil && len(p.structuredErrors) > 0 {
			return nil
		}
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}

	for !p.peekTokenIs(lexer.RBRACE) {
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		variant := &ast.EnumVariantDef{Name: p.curToken.Literal}

		if p.peekTokenIs(lexer.LPAREN) {
			p.nextToken()
			for !p.peekTokenIs(lexer.RPAREN) {
				p.nextToken()
				t := p.parseTypeExpr()
				if t == nil {
					return nil
				}
				variant.Fields = append(variant.Fields, t)
				if p.peekTokenIs(lexer.COMMA) {
					p.nextToken()
				}
			}
			if !p.expectPeek(lexer.RPAREN) {
				return nil
			}
		} else if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken()
			neg := false
			if p.peekTokenIs(lexer.MINUS) {
				p.nextToken()
				neg = true
			}
			if !p.expectPeek(lexer.INT) {
				return nil
			}
			lit := p.parseIntegerLiteral()
			if lit == nil {
				return nil
			}
			v := lit.(*ast.IntegerLiteral).Value
			if neg {
				v = -v
			}
			variant.Discriminant = &v
		}

		ed.Variants = append(ed.Variants, variant)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return ed
}

// parseTraitDefinition parses trait Name { fun sig(...) -> T
// fun with_default(...) { body } }. Bodyless methods are signatures.
func (p *Parser) parseTraitDefinition() ast.Expression {
	td := &ast.TraitDefinition{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	td.Name = p.curToken.Literal

	if p.peekTokenIs(lexer.LT) {
		p.nextToken()
		td.Generics = p.parseGenericParams()
		if td.Generics == nil && len(p.structuredErrors) > 0 {
			return nil
		}
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}

	for !p.peekTokenIs(lexer.RBRACE) {
		if !p.expectPeek(lexer.FUNCTION) {
			return nil
		}
		method := p.parseTraitMethod()
		if method == nil {
			return nil
		}
		td.Methods = append(td.Methods, method)
		for p.peekTokenIs(lexer.SEMICOLON) {
			p.nextToken()
		}
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return td
}

// parseTraitMethod parses a method signature with an optional body;
// curToken is 'fun'.
func (p *Parser) parseTraitMethod() *ast.FunctionLiteral {
	fl := &ast.FunctionLiteral{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	fl.Name = p.curToken.Literal

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	fl.Params = p.parseParameterList()
	if fl.Params == nil && len(p.structuredErrors) > 0 {
		return nil
	}

	if p.peekTokenIs(lexer.ARROW) {
		p.nextToken()
		p.nextToken()
		fl.ReturnType = p.parseTypeExpr()
		if fl.ReturnType == nil {
			return nil
		}
	}

	if p.peekTokenIs(lexer.LBRACE) {
		p.nextToken()
		fl.Body = p.parseBlockExpression()
		if fl.Body == nil {
			return nil
		}
	}
	return fl
}

// parseImplBlock parses impl Type { methods } and impl Trait for Type { methods }
func (p *Parser) parseImplBlock() ast.Expression {
	ib := &ast.ImplBlock{Token: p.curToken}

	if p.peekTokenIs(lexer.LT) {
		p.nextToken()
		ib.Generics = p.parseGenericParams()
		if ib.Generics == nil && len(p.structuredErrors) > 0 {
			return nil
		}
	}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	first := p.curToken.Literal

	if p.peekTokenIs(lexer.FOR) {
		ib.Trait = first
		p.nextToken()
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		ib.ForType = p.curToken.Literal
	} else {
		ib.ForType = first
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}

	for !p.peekTokenIs(lexer.RBRACE) {
		if !p.expectPeek(lexer.FUNCTION) {
			return nil
		}
		method := p.parseTraitMethod()
		if method == nil {
			return nil
		}
		ib.Methods = append(ib.Methods, method)
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return ib
}

// parseExtensionBlock parses extend Type { methods }
func (p *Parser) parseExtensionBlock() ast.Expression {
	eb := &ast.ExtensionBlock{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	eb.Target = p.curToken.Literal

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}

	for !p.peekTokenIs(lexer.RBRACE) {
		if !p.expectPeek(lexer.FUNCTION) {
			return nil
		}
		method := p.parseTraitMethod()
		if method == nil {
			return nil
		}
		eb.Methods = append(eb.Methods, method)
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return eb
}

// parseActorDefinition parses actor Name { state fields then receive handlers }
//
//	actor Counter {
//	    count: Int = 0,
//	    receive increment(by: Int) { self.count += by }
//	}
func (p *Parser) parseActorDefinition() ast.Expression {
	ad := &ast.ActorDefinition{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	ad.Name = p.curToken.Literal

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}

	for !p.peekTokenIs(lexer.RBRACE) {
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}

		if p.curToken.Literal == "receive" {
			handler := p.parseActorHandler()
			if handler == nil {
				return nil
			}
			ad.Handlers = append(ad.Handlers, handler)
		} else {
			field := &ast.StructField{Name: p.curToken.Literal}
			if !p.expectPeek(lexer.COLON) {
				return nil
			}
			p.nextToken()
			field.Type = p.parseTypeExpr()
			if field.Type == nil {
				return nil
			}
			if p.peekTokenIs(lexer.ASSIGN) {
				p.nextToken()
				p.nextToken()
				field.Default = p.parseExpression(LOWEST)
				if field.Default == nil {
					return nil
				}
			}
			ad.Fields = append(ad.Fields, field)
		}

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return ad
}

// parseActorHandler parses receive name(params) { body }; curToken is 'receive'.
func (p *Parser) parseActorHandler() *ast.ActorHandler {
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	handler := &ast.ActorHandler{Message: p.curToken.Literal}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	handler.Params = p.parseParameterList()
	if handler.Params == nil && len(p.structuredErrors) > 0 {
		return nil
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	handler.Body = p.parseBlockExpression()
	if handler.Body == nil {
		return nil
	}
	return handler
}

// ---------------------------------------------------------------------------
// Modules and visibility
// ---------------------------------------------------------------------------

// parseImportExpression parses import math, import math::{sin, cos},
// import math as m, and use paths.
func (p *Parser) parseImportExpression() ast.Expression {
	ie := &ast.ImportExpression{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	module := p.curToken.Literal

	for p.peekTokenIs(lexer.COLON_COLON) {
		p.nextToken()
		if p.peekTokenIs(lexer.LBRACE) {
			p.nextToken()
			for !p.peekTokenIs(lexer.RBRACE) {
				if !p.expectPeek(lexer.IDENT) {
					return nil
				}
				ie.Items = append(ie.Items, p.curToken.Literal)
				if p.peekTokenIs(lexer.COMMA) {
					p.nextToken()
				}
			}
			if !p.expectPeek(lexer.RBRACE) {
				return nil
			}
			break
		}
		if p.peekTokenIs(lexer.ASTERISK) {
			p.nextToken()
			ie.Items = append(ie.Items, "*")
			break
		}
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		module += "::" + p.curToken.Literal
	}
	ie.Module = module

	if p.peekTokenIs(lexer.AS) {
		p.nextToken()
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		ie.Alias = p.curToken.Literal
	}

	return ie
}

// parseExportExpression parses export <definition>
func (p *Parser) parseExportExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	item := p.parseExpression(LOWEST)
	if item == nil {
		return nil
	}
	return &ast.ExportExpression{Token: tok, Item: item}
}

// parsePubExpression parses pub fun / pub struct / pub enum / pub trait /
// pub actor and marks the definition public.
func (p *Parser) parsePubExpression() ast.Expression {
	p.nextToken()
	item := p.parseExpression(LOWEST)
	if item == nil {
		return nil
	}
	switch it := item.(type) {
	case *ast.FunctionLiteral:
		it.IsPub = true
	case *ast.StructDefinition:
		it.IsPub = true
	case *ast.EnumDefinition:
		it.IsPub = true
	case *ast.TraitDefinition:
		it.IsPub = true
	case *ast.ActorDefinition:
		it.IsPub = true
	default:
		p.addError("pub must precede a definition", p.curToken.Line, p.curToken.Column)
		return nil
	}
	return item
}

// parseModuleExpression parses module Name { body }
func (p *Parser) parseModuleExpression() ast.Expression {
	me := &ast.ModuleExpression{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	me.Name = p.curToken.Literal

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	me.Body = p.parseBlockExpression()
	if me.Body == nil {
		return nil
	}
	return me
}

// parseTypeAlias parses type Name<T> = Target
func (p *Parser) parseTypeAlias() ast.Expression {
	ta := &ast.TypeAliasExpression{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	ta.Name = p.curToken.Literal

	if p.peekTokenIs(lexer.LT) {
		p.nextToken()
		ta.Generics = p.parseGenericParams()
		if ta.Generics == nil && len(p.structuredErrors) > 0 {
			return nil
		}
	}

	if !p.expectPeek(lexer.ASSIGN) {
		return nil
	}
	p.nextToken()
	ta.Target = p.parseTypeExpr()
	if ta.Target == nil {
		return nil
	}
	return ta
}
