package parser

import (
	"strings"

	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/lexer"
)

// parseFString parses the body of an f-string token into literal text and
// interpolated expression parts. Doubled braces escape literal braces;
// an interpolation may carry a format spec after a top-level colon:
// f"pi is {pi:.2}".
func (p *Parser) parseFString() ast.Expression {
	tok := p.curToken
	si := &ast.StringInterpolation{Token: tok}

	body := tok.Literal
	var text strings.Builder

	for i := 0; i < len(body); i++ {
		ch := body[i]

		if ch == '{' {
			if i+1 < len(body) && body[i+1] == '{' {
				text.WriteByte('{')
				i++
				continue
			}

			if text.Len() > 0 {
				si.Parts = append(si.Parts, &ast.InterpolationPart{Text: text.String()})
				text.Reset()
			}

			end := findInterpolationEnd(body, i+1)
			if end < 0 {
				p.addError("unterminated interpolation in f-string", tok.Line, tok.Column)
				return nil
			}

			exprText, spec := splitFormatSpec(body[i+1 : end])
			if strings.TrimSpace(exprText) == "" {
				p.addError("empty interpolation in f-string", tok.Line, tok.Column)
				return nil
			}

			part := p.parseInterpolatedExpr(exprText, tok)
			if part == nil {
				return nil
			}
			si.Parts = append(si.Parts, &ast.InterpolationPart{Expr: part, FormatSpec: spec})
			i = end
			continue
		}

		if ch == '}' {
			if i+1 < len(body) && body[i+1] == '}' {
				text.WriteByte('}')
				i++
				continue
			}
			p.addError("unmatched '}' in f-string", tok.Line, tok.Column)
			return nil
		}

		text.WriteByte(ch)
	}

	if text.Len() > 0 {
		si.Parts = append(si.Parts, &ast.InterpolationPart{Text: text.String()})
	}

	return si
}

// findInterpolationEnd returns the index of the '}' closing the
// interpolation that starts at start, or -1. Nested braces are balanced so
// expressions like {if x { 1 } else { 2 }} survive.
func findInterpolationEnd(body string, start int) int {
	depth := 0
	inString := false
	for i := start; i < len(body); i++ {
		ch := body[i]
		if inString {
			if ch == '\\' {
				i++
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// splitFormatSpec separates "expr:spec" at the first top-level colon.
// Colons inside brackets, parens, strings, or path separators (::) stay
// with the expression.
func splitFormatSpec(content string) (string, string) {
	depth := 0
	inString := false
	for i := 0; i < len(content); i++ {
		ch := content[i]
		if inString {
			if ch == '\\' {
				i++
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ':':
			if depth == 0 {
				if i+1 < len(content) && content[i+1] == ':' {
					i++ // path separator
					continue
				}
				return content[:i], content[i+1:]
			}
		}
	}
	return content, ""
}

// parseInterpolatedExpr parses one interpolation expression with a fresh
// sub-parser, surfacing its first error against the f-string's position.
func (p *Parser) parseInterpolatedExpr(exprText string, tok lexer.Token) ast.Expression {
	sub := New(lexer.New(exprText))
	program := sub.ParseProgram()
	if errs := sub.StructuredErrors(); len(errs) > 0 {
		first := errs[0]
		p.addError("in f-string interpolation: "+first.Message, tok.Line, tok.Column)
		return nil
	}
	if len(program.Expressions) != 1 {
		p.addError("f-string interpolation must be a single expression", tok.Line, tok.Column)
		return nil
	}
	return program.Expressions[0]
}
