package parser

import (
	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/lexer"
)

// parseOrPattern parses pattern alternatives joined by '|': 1 | 2 | 3.
// Match arms use this entry point; other positions take a single pattern.
func (p *Parser) parseOrPattern() ast.Pattern {
	first := p.parsePattern()
	if first == nil {
		return nil
	}
	if !p.peekTokenIs(lexer.PIPE) {
		return first
	}

	op := &ast.OrPattern{Token: p.curToken, Alternatives: []ast.Pattern{first}}
	for p.peekTokenIs(lexer.PIPE) {
		p.nextToken()
		p.nextToken()
		alt := p.parsePattern()
		if alt == nil {
			return nil
		}
		op.Alternatives = append(op.Alternatives, alt)
	}
	return op
}

// parsePattern parses a single pattern; curToken is its first token.
func (p *Parser) parsePattern() ast.Pattern {
	tok := p.curToken

	switch tok.Type {
	case lexer.IDENT:
		return p.parseIdentStartedPattern()

	case lexer.MUT:
		p.nextToken()
		inner := p.parsePattern()
		if inner == nil {
			return nil
		}
		return &ast.MutPattern{Token: tok, Inner: inner}

	case lexer.INT, lexer.FLOAT, lexer.CHAR, lexer.BYTE:
		return p.parseLiteralOrRangePattern()

	case lexer.MINUS:
		return p.parseLiteralOrRangePattern()

	case lexer.STRING, lexer.RAW_STRING, lexer.ATOM, lexer.TRUE, lexer.FALSE, lexer.NULL:
		value := p.parsePatternLiteralValue()
		if value == nil {
			return nil
		}
		return &ast.LiteralPattern{Token: tok, Value: value}

	case lexer.LPAREN:
		return p.parseTuplePattern()

	case lexer.LBRACKET:
		return p.parseListPattern()

	case lexer.RANGE:
		// Bare rest: .. or ..name
		if p.peekTokenIs(lexer.IDENT) {
			p.nextToken()
			return &ast.RestNamedPattern{Token: tok, Name: p.curToken.Literal}
		}
		return &ast.RestPattern{Token: tok}

	case lexer.SOME:
		if !p.expectPeek(lexer.LPAREN) {
			return nil
		}
		p.nextToken()
		inner := p.parsePattern()
		if inner == nil {
			return nil
		}
		if !p.expectPeek(lexer.RPAREN) {
			return nil
		}
		return &ast.SomePattern{Token: tok, Inner: inner}

	case lexer.NONE:
		return &ast.NonePattern{Token: tok}

	case lexer.OK:
		if !p.expectPeek(lexer.LPAREN) {
			return nil
		}
		p.nextToken()
		inner := p.parsePattern()
		if inner == nil {
			return nil
		}
		if !p.expectPeek(lexer.RPAREN) {
			return nil
		}
		return &ast.OkPattern{Token: tok, Inner: inner}

	case lexer.ERR:
		if !p.expectPeek(lexer.LPAREN) {
			return nil
		}
		p.nextToken()
		inner := p.parsePattern()
		if inner == nil {
			return nil
		}
		if !p.expectPeek(lexer.RPAREN) {
			return nil
		}
		return &ast.ErrPattern{Token: tok, Inner: inner}
	}

	p.addCatalogError("PARSE-0002", tok.Line, tok.Column, map[string]any{
		"Token": tok.Literal,
	})
	return nil
}

// parseIdentStartedPattern handles _, bindings, at-bindings, variant paths,
// tuple variants, and struct patterns; curToken is the identifier.
func (p *Parser) parseIdentStartedPattern() ast.Pattern {
	tok := p.curToken
	name := p.curToken.Literal

	if name == "_" {
		return &ast.WildcardPattern{Token: tok}
	}

	// n @ 1..10 binds the whole value while matching the subpattern
	if p.peekTokenIs(lexer.AT) {
		p.nextToken()
		p.nextToken()
		sub := p.parsePattern()
		if sub == nil {
			return nil
		}
		return &ast.AtBindingPattern{Token: tok, Name: name, Pattern: sub}
	}

	// Color::Red and Shape::Circle(r)
	if p.peekTokenIs(lexer.COLON_COLON) {
		path := []string{name}
		for p.peekTokenIs(lexer.COLON_COLON) {
			p.nextToken()
			switch p.peekToken.Type {
			case lexer.IDENT, lexer.SOME, lexer.NONE, lexer.OK, lexer.ERR:
				p.nextToken()
			default:
				p.addCatalogError("PARSE-0001", p.peekToken.Line, p.peekToken.Column, map[string]any{
					"Expected": "IDENT",
					"Got":      p.peekToken.Literal,
				})
				return nil
			}
			path = append(path, p.curToken.Literal)
		}
		if p.peekTokenIs(lexer.LPAREN) {
			return p.parseTupleVariantTail(tok, path)
		}
		return &ast.QualifiedNamePattern{Token: tok, Parts: path}
	}

	// Bare tuple variant: Circle(r)
	if p.peekTokenIs(lexer.LPAREN) && isTypeName(name) {
		return p.parseTupleVariantTail(tok, []string{name})
	}

	// Struct pattern: Point { x, y: b, .. }
	if p.peekTokenIs(lexer.LBRACE) && isTypeName(name) {
		return p.parseStructPattern(tok, name)
	}

	return &ast.IdentifierPattern{Token: tok, Name: name}
}

// parseTupleVariantTail parses the (p1, p2) payload; peekToken is '('.
func (p *Parser) parseTupleVariantTail(tok lexer.Token, path []string) ast.Pattern {
	p.nextToken() // onto '('

	tv := &ast.TupleVariantPattern{Token: tok, Path: path}
	for !p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		sub := p.parsePattern()
		if sub == nil {
			return nil
		}
		tv.Patterns = append(tv.Patterns, sub)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return tv
}

// parseStructPattern parses { field, field: pat, .. }; peekToken is '{'.
func (p *Parser) parseStructPattern(tok lexer.Token, name string) ast.Pattern {
	p.nextToken() // onto '{'

	sp := &ast.StructPattern{Token: tok, Name: name}
	for !p.peekTokenIs(lexer.RBRACE) {
		if p.peekTokenIs(lexer.RANGE) {
			p.nextToken()
			sp.HasRest = true
			break
		}
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		field := &ast.StructPatternField{Name: p.curToken.Literal}
		if p.peekTokenIs(lexer.COLON) {
			p.nextToken()
			p.nextToken()
			field.Pattern = p.parsePattern()
			if field.Pattern == nil {
				return nil
			}
		}
		sp.Fields = append(sp.Fields, field)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return sp
}

// parseTuplePattern parses (a, b, _); curToken is '('.
func (p *Parser) parseTuplePattern() ast.Pattern {
	tp := &ast.TuplePattern{Token: p.curToken}

	for !p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		sub := p.parsePattern()
		if sub == nil {
			return nil
		}
		tp.Elements = append(tp.Elements, sub)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	// (inner) with a single element and no comma is just grouping
	if len(tp.Elements) == 1 {
		return tp.Elements[0]
	}
	return tp
}

// parseListPattern parses [first, second, ..rest]; curToken is '['.
func (p *Parser) parseListPattern() ast.Pattern {
	lp := &ast.ListPattern{Token: p.curToken}

	for !p.peekTokenIs(lexer.RBRACKET) {
		p.nextToken()
		sub := p.parsePattern()
		if sub == nil {
			return nil
		}
		lp.Elements = append(lp.Elements, sub)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return lp
}

// parseLiteralOrRangePattern parses a numeric or char literal that may be
// the start of a range pattern: 1..10, 1..=10, 'a'..='z', -5..5.
func (p *Parser) parseLiteralOrRangePattern() ast.Pattern {
	tok := p.curToken

	start := p.parsePatternLiteralValue()
	if start == nil {
		return nil
	}

	if p.peekTokenIs(lexer.RANGE) || p.peekTokenIs(lexer.RANGE_INCL) {
		p.nextToken()
		inclusive := p.curTokenIs(lexer.RANGE_INCL)
		p.nextToken()
		end := p.parsePatternLiteralValue()
		if end == nil {
			return nil
		}
		return &ast.RangePattern{Token: tok, Start: start, End: end, Inclusive: inclusive}
	}

	return &ast.LiteralPattern{Token: tok, Value: start}
}

// parsePatternLiteralValue parses one literal usable inside a pattern.
func (p *Parser) parsePatternLiteralValue() ast.Expression {
	switch p.curToken.Type {
	case lexer.INT:
		return p.parseIntegerLiteral()
	case lexer.FLOAT:
		return p.parseFloatLiteral()
	case lexer.STRING, lexer.RAW_STRING:
		return p.parseStringLiteral()
	case lexer.CHAR:
		return p.parseCharLiteral()
	case lexer.BYTE:
		return p.parseByteLiteral()
	case lexer.ATOM:
		return p.parseAtomLiteral()
	case lexer.TRUE, lexer.FALSE:
		return p.parseBooleanLiteral()
	case lexer.NULL:
		return p.parseNullLiteral()
	case lexer.MINUS:
		tok := p.curToken
		p.nextToken()
		right := p.parsePatternLiteralValue()
		if right == nil {
			return nil
		}
		return &ast.PrefixExpression{Token: tok, Operator: "-", Right: right}
	}
	p.addCatalogError("PARSE-0002", p.curToken.Line, p.curToken.Column, map[string]any{
		"Token": p.curToken.Literal,
	})
	return nil
}
