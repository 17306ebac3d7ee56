package parser

import (
	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/lexer"
)

// parseTypeExpr parses a type annotation; curToken is its first token.
// A trailing '?' wraps the result in an optional.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	base := p.parseTypeExprBase()
	if base == nil {
		return nil
	}
	for p.peekTokenIs(lexer.QUESTION) {
		p.nextToken()
		base = &ast.OptionalType{Token: p.curToken, Inner: base}
	}
	return base
}

func (p *Parser) parseTypeExprBase() ast.TypeExpr {
	tok := p.curToken

	switch tok.Type {
	case lexer.IDENT:
		name := tok.Literal
		if name == "Series" && p.peekTokenIs(lexer.LT) {
			p.nextToken()
			p.nextToken()
			dtype := p.parseTypeExpr()
			if dtype == nil {
				return nil
			}
			if !p.closeGenericList() {
				return nil
			}
			return &ast.SeriesType{Token: tok, Dtype: dtype}
		}
		if p.peekTokenIs(lexer.LT) {
			return p.parseGenericType(tok, name)
		}
		return &ast.NamedType{Token: tok, Name: name}

	case lexer.RESULT, lexer.OPTION:
		if p.peekTokenIs(lexer.LT) {
			return p.parseGenericType(tok, tok.Literal)
		}
		return &ast.NamedType{Token: tok, Name: tok.Literal}

	case lexer.SELFTYPE:
		return &ast.NamedType{Token: tok, Name: "Self"}

	case lexer.DATAFRAME:
		if p.peekTokenIs(lexer.LT) {
			return p.parseDataFrameType(tok)
		}
		return &ast.NamedType{Token: tok, Name: "DataFrame"}

	case lexer.LBRACKET:
		p.nextToken()
		elem := p.parseTypeExpr()
		if elem == nil {
			return nil
		}
		if p.peekTokenIs(lexer.SEMICOLON) {
			p.nextToken()
			if !p.expectPeek(lexer.INT) {
				return nil
			}
			size := p.parseIntegerLiteral()
			if size == nil {
				return nil
			}
			if !p.expectPeek(lexer.RBRACKET) {
				return nil
			}
			return &ast.ArrayType{Token: tok, Elem: elem, Size: size.(*ast.IntegerLiteral).Value}
		}
		if !p.expectPeek(lexer.RBRACKET) {
			return nil
		}
		return &ast.ListType{Token: tok, Elem: elem}

	case lexer.LPAREN:
		tt := &ast.TupleType{Token: tok}
		for !p.peekTokenIs(lexer.RPAREN) {
			p.nextToken()
			elem := p.parseTypeExpr()
			if elem == nil {
				return nil
			}
			tt.Elems = append(tt.Elems, elem)
			if p.peekTokenIs(lexer.COMMA) {
				p.nextToken()
			}
		}
		if !p.expectPeek(lexer.RPAREN) {
			return nil
		}
		if len(tt.Elems) == 1 {
			return tt.Elems[0] // (T) is just grouping
		}
		return tt

	case lexer.FUNCTION:
		ft := &ast.FunctionType{Token: tok}
		if !p.expectPeek(lexer.LPAREN) {
			return nil
		}
		for !p.peekTokenIs(lexer.RPAREN) {
			p.nextToken()
			param := p.parseTypeExpr()
			if param == nil {
				return nil
			}
			ft.Params = append(ft.Params, param)
			if p.peekTokenIs(lexer.COMMA) {
				p.nextToken()
			}
		}
		if !p.expectPeek(lexer.RPAREN) {
			return nil
		}
		if !p.expectPeek(lexer.ARROW) {
			return nil
		}
		p.nextToken()
		ft.Return = p.parseTypeExpr()
		if ft.Return == nil {
			return nil
		}
		return ft

	case lexer.AMP:
		rt := &ast.ReferenceType{Token: tok}
		if p.peekTokenIs(lexer.LIFETIME) {
			p.nextToken()
			rt.Lifetime = p.curToken.Literal
		}
		if p.peekTokenIs(lexer.MUT) {
			p.nextToken()
			rt.IsMut = true
		}
		p.nextToken()
		rt.Inner = p.parseTypeExpr()
		if rt.Inner == nil {
			return nil
		}
		return rt

	case lexer.LBRACE:
		// Refined type: {Base | predicate}. The predicate is kept on the
		// node but only the base participates in inference.
		p.nextToken()
		base := p.parseTypeExpr()
		if base == nil {
			return nil
		}
		if !p.expectPeek(lexer.PIPE) {
			return nil
		}
		p.nextToken()
		pred := p.parseExpression(LOWEST)
		if pred == nil {
			return nil
		}
		if !p.expectPeek(lexer.RBRACE) {
			return nil
		}
		return &ast.RefinedType{Token: tok, Base: base, Predicate: pred}
	}

	p.addCatalogError("PARSE-0001", tok.Line, tok.Column, map[string]any{
		"Expected": "type",
		"Got":      tok.Literal,
	})
	return nil
}

// parseGenericType parses Base<T, U>; peekToken is '<'.
func (p *Parser) parseGenericType(tok lexer.Token, base string) ast.TypeExpr {
	p.nextToken() // onto '<'

	gt := &ast.GenericType{Token: tok, Base: base}
	for {
		p.nextToken()
		param := p.parseTypeExpr()
		if param == nil {
			return nil
		}
		gt.Params = append(gt.Params, param)
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.closeGenericList() {
		return nil
	}
	return gt
}

// parseDataFrameType parses DataFrame<col1: T1, col2: T2>; peekToken is '<'.
func (p *Parser) parseDataFrameType(tok lexer.Token) ast.TypeExpr {
	p.nextToken() // onto '<'

	dt := &ast.DataFrameType{Token: tok}
	for !p.peekTokenIs(lexer.GT) && !p.peekTokenIs(lexer.SHR) {
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		col := &ast.DataFrameColumnType{Name: p.curToken.Literal}
		if !p.expectPeek(lexer.COLON) {
			return nil
		}
		p.nextToken()
		col.Type = p.parseTypeExpr()
		if col.Type == nil {
			return nil
		}
		dt.Columns = append(dt.Columns, col)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	if !p.closeGenericList() {
		return nil
	}
	return dt
}

// closeGenericList consumes the '>' ending a generic argument list.
// Nested generics like Vec<Vec<Int>> lex the closing '>>' as a single
// shift token; the outer level splits it by rewriting the peek token to
// the remaining '>'.
func (p *Parser) closeGenericList() bool {
	if p.peekTokenIs(lexer.GT) {
		p.nextToken()
		return true
	}
	if p.peekTokenIs(lexer.SHR) {
		half := p.peekToken
		half.Type = lexer.GT
		half.Literal = ">"
		half.Span.Start++
		half.Column++
		p.peekToken = half
		return true
	}
	p.addCatalogError("PARSE-0001", p.peekToken.Line, p.peekToken.Column, map[string]any{
		"Expected": ">",
		"Got":      p.peekToken.Literal,
	})
	return false
}
