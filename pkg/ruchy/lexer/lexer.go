// Package lexer turns Ruchy source text into a stream of tokens with byte spans.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer represents the lexical analyzer
type Lexer struct {
	filename      string
	input         string
	position      int       // current position in input (points to current char)
	readPosition  int       // current reading position in input (after current char)
	ch            byte      // current char under examination (first byte)
	chRune        rune      // current character as a rune (for Unicode support)
	chSize        int       // byte size of current character (1 for ASCII, 1-4 for UTF-8)
	line          int       // current line number
	column        int       // current column number
	lastTokenType TokenType // last emitted token type, for atom/lifetime context
}

// New creates a new lexer instance
func New(input string) *Lexer {
	l := &Lexer{
		filename: "<input>",
		input:    input,
		line:     1,
		column:   0,
	}
	l.readChar()
	return l
}

// NewWithFilename creates a new lexer instance with a specific filename
func NewWithFilename(input string, filename string) *Lexer {
	l := New(input)
	l.filename = filename
	return l
}

// Filename returns the filename this lexer reads from.
func (l *Lexer) Filename() string { return l.filename }

// Source returns the full input text. Token spans index into this string.
func (l *Lexer) Source() string { return l.input }

// readChar advances to the next character in the input
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.chRune = 0
		l.chSize = 0
		l.position = l.readPosition
		return
	}
	l.position = l.readPosition
	l.ch = l.input[l.readPosition]
	if l.ch < utf8.RuneSelf {
		l.chRune = rune(l.ch)
		l.chSize = 1
	} else {
		l.chRune, l.chSize = utf8.DecodeRuneInString(l.input[l.readPosition:])
	}
	l.readPosition += l.chSize
	l.column++
}

// peekChar returns the next character without advancing
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// peekCharAt returns the character n bytes ahead of the next one
func (l *Lexer) peekCharAt(n int) byte {
	if l.readPosition+n >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition+n]
}

func isLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

// skipWhitespace skips spaces, tabs, and newlines
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// skipComment skips // line comments and /* block comments */
func (l *Lexer) skipComment() bool {
	if l.ch == '/' && l.peekChar() == '/' {
		for l.ch != '\n' && l.ch != 0 {
			l.readChar()
		}
		return true
	}
	if l.ch == '/' && l.peekChar() == '*' {
		l.readChar() // consume '/'
		l.readChar() // consume '*'
		for l.ch != 0 {
			if l.ch == '*' && l.peekChar() == '/' {
				l.readChar()
				l.readChar()
				break
			}
			l.readChar()
		}
		return true
	}
	return false
}

// NextToken reads and returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	for l.skipComment() {
		l.skipWhitespace()
	}

	start := l.position
	line, column := l.line, l.column
	var tok Token

	switch l.ch {
	case 0:
		tok = Token{Type: EOF, Literal: ""}
	case '=':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok = Token{Type: EQ, Literal: "=="}
		case '>':
			l.readChar()
			tok = Token{Type: FAT_ARROW, Literal: "=>"}
		default:
			tok = Token{Type: ASSIGN, Literal: "="}
		}
	case '+':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok = Token{Type: PLUS_ASSIGN, Literal: "+="}
		case '+':
			l.readChar()
			tok = Token{Type: INCREMENT, Literal: "++"}
		default:
			tok = Token{Type: PLUS, Literal: "+"}
		}
	case '-':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok = Token{Type: MINUS_ASSIGN, Literal: "-="}
		case '-':
			l.readChar()
			tok = Token{Type: DECREMENT, Literal: "--"}
		case '>':
			l.readChar()
			tok = Token{Type: ARROW, Literal: "->"}
		default:
			tok = Token{Type: MINUS, Literal: "-"}
		}
	case '*':
		if l.peekChar() == '*' {
			l.readChar()
			if l.peekChar() == '=' {
				l.readChar()
				tok = Token{Type: POWER_ASSIGN, Literal: "**="}
			} else {
				tok = Token{Type: POWER, Literal: "**"}
			}
		} else if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: STAR_ASSIGN, Literal: "*="}
		} else {
			tok = Token{Type: ASTERISK, Literal: "*"}
		}
	case '/':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: SLASH_ASSIGN, Literal: "/="}
		} else {
			tok = Token{Type: SLASH, Literal: "/"}
		}
	case '%':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: PERCENT_ASSIGN, Literal: "%="}
		} else {
			tok = Token{Type: PERCENT, Literal: "%"}
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: NOT_EQ, Literal: "!="}
		} else {
			tok = Token{Type: BANG, Literal: "!"}
		}
	case '~':
		tok = Token{Type: TILDE, Literal: "~"}
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok = Token{Type: LTE, Literal: "<="}
		case '<':
			l.readChar()
			if l.peekChar() == '=' {
				l.readChar()
				tok = Token{Type: SHL_ASSIGN, Literal: "<<="}
			} else {
				tok = Token{Type: SHL, Literal: "<<"}
			}
		case '?':
			l.readChar()
			tok = Token{Type: ASK, Literal: "<?"}
		default:
			tok = Token{Type: LT, Literal: "<"}
		}
	case '>':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok = Token{Type: GTE, Literal: ">="}
		case '>':
			l.readChar()
			if l.peekChar() == '=' {
				l.readChar()
				tok = Token{Type: SHR_ASSIGN, Literal: ">>="}
			} else {
				tok = Token{Type: SHR, Literal: ">>"}
			}
		default:
			tok = Token{Type: GT, Literal: ">"}
		}
	case '&':
		switch l.peekChar() {
		case '&':
			l.readChar()
			tok = Token{Type: AND_AND, Literal: "&&"}
		case '=':
			l.readChar()
			tok = Token{Type: AMP_ASSIGN, Literal: "&="}
		default:
			tok = Token{Type: AMP, Literal: "&"}
		}
	case '|':
		switch l.peekChar() {
		case '|':
			l.readChar()
			tok = Token{Type: OR_OR, Literal: "||"}
		case '=':
			l.readChar()
			tok = Token{Type: PIPE_ASSIGN, Literal: "|="}
		case '>':
			l.readChar()
			tok = Token{Type: PIPELINE, Literal: "|>"}
		default:
			tok = Token{Type: PIPE, Literal: "|"}
		}
	case '^':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: CARET_ASSIGN, Literal: "^="}
		} else {
			tok = Token{Type: CARET, Literal: "^"}
		}
	case '?':
		if l.peekChar() == '?' {
			l.readChar()
			tok = Token{Type: NULLISH, Literal: "??"}
		} else {
			tok = Token{Type: QUESTION, Literal: "?"}
		}
	case '.':
		if l.peekChar() == '.' {
			l.readChar()
			switch l.peekChar() {
			case '=':
				l.readChar()
				tok = Token{Type: RANGE_INCL, Literal: "..="}
			case '.':
				l.readChar()
				tok = Token{Type: ELLIPSIS, Literal: "..."}
			default:
				tok = Token{Type: RANGE, Literal: ".."}
			}
		} else {
			tok = Token{Type: DOT, Literal: "."}
		}
	case ':':
		if l.peekChar() == ':' {
			l.readChar()
			tok = Token{Type: COLON_COLON, Literal: "::"}
		} else if l.atomContext() && isLetter(rune(l.peekChar())) {
			return l.readAtom(start, line, column)
		} else {
			tok = Token{Type: COLON, Literal: ":"}
		}
	case '@':
		tok = Token{Type: AT, Literal: "@"}
	case ',':
		tok = Token{Type: COMMA, Literal: ","}
	case ';':
		tok = Token{Type: SEMICOLON, Literal: ";"}
	case '(':
		tok = Token{Type: LPAREN, Literal: "("}
	case ')':
		tok = Token{Type: RPAREN, Literal: ")"}
	case '{':
		tok = Token{Type: LBRACE, Literal: "{"}
	case '}':
		tok = Token{Type: RBRACE, Literal: "}"}
	case '[':
		tok = Token{Type: LBRACKET, Literal: "["}
	case ']':
		tok = Token{Type: RBRACKET, Literal: "]"}
	case '"':
		return l.readString(start, line, column)
	case '\'':
		return l.readCharOrLifetime(start, line, column)
	default:
		if l.ch == 'f' && l.peekChar() == '"' {
			return l.readFString(start, line, column)
		}
		if l.ch == 'r' && l.peekChar() == '"' {
			return l.readRawString(start, line, column)
		}
		if l.ch == 'b' && l.peekChar() == '\'' {
			return l.readByte(start, line, column)
		}
		if isLetter(l.chRune) {
			return l.readIdentifier(start, line, column)
		}
		if isDigit(l.ch) {
			return l.readNumber(start, line, column)
		}
		tok = Token{Type: ILLEGAL, Literal: string(l.chRune)}
	}

	l.readChar()
	tok.Span = Span{Start: start, End: l.position}
	tok.Line, tok.Column = line, column
	l.lastTokenType = tok.Type
	return tok
}

// atomContext reports whether a ':' in the current position starts an atom
// literal. Atoms only appear in expression position; after an identifier,
// string, or closing delimiter the ':' is an annotation or dictionary key
// separator.
func (l *Lexer) atomContext() bool {
	switch l.lastTokenType {
	case IDENT, STRING, RPAREN, RBRACKET, INT, FLOAT, SELFTYPE, SELF:
		return false
	}
	return true
}

func (l *Lexer) emit(tt TokenType, literal string, start, line, column int) Token {
	tok := Token{
		Type:    tt,
		Literal: literal,
		Span:    Span{Start: start, End: l.position},
		Line:    line,
		Column:  column,
	}
	l.lastTokenType = tt
	return tok
}

// readIdentifier reads an identifier or keyword
func (l *Lexer) readIdentifier(start, line, column int) Token {
	for isLetter(l.chRune) || isDigit(l.ch) {
		l.readChar()
	}
	literal := l.input[start:l.position]
	return l.emit(LookupIdent(literal), literal, start, line, column)
}

// readAtom reads an atom literal like :ok (the leading ':' is current)
func (l *Lexer) readAtom(start, line, column int) Token {
	l.readChar() // consume ':'
	for isLetter(l.chRune) || isDigit(l.ch) {
		l.readChar()
	}
	// Literal excludes the leading colon
	return l.emit(ATOM, l.input[start+1:l.position], start, line, column)
}

// readNumber reads an integer or float literal, with support for hex,
// binary, and octal prefixes, digit underscores, and exponents. A '.'
// followed by another '.' is a range operator, not a decimal point.
func (l *Lexer) readNumber(start, line, column int) Token {
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		return l.emit(INT, l.input[start:l.position], start, line, column)
	}
	if l.ch == '0' && (l.peekChar() == 'b' || l.peekChar() == 'B' || l.peekChar() == 'o' || l.peekChar() == 'O') {
		l.readChar()
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		return l.emit(INT, l.input[start:l.position], start, line, column)
	}

	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	isFloat := false
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekCharAt(1))) {
			isFloat = true
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	literal := l.input[start:l.position]
	if isFloat {
		return l.emit(FLOAT, literal, start, line, column)
	}
	return l.emit(INT, literal, start, line, column)
}

// decodeEscape returns the decoded escape character for c.
func decodeEscape(c byte) (byte, bool) {
	switch c {
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case '\\':
		return '\\', true
	case '\'':
		return '\'', true
	case '"':
		return '"', true
	case '0':
		return 0, true
	}
	return 0, false
}

// readString reads a double-quoted string literal, decoding escapes
func (l *Lexer) readString(start, line, column int) Token {
	var sb strings.Builder
	l.readChar() // consume opening quote
	for l.ch != '"' && l.ch != 0 {
		if l.ch == '\\' {
			if dec, ok := decodeEscape(l.peekChar()); ok {
				sb.WriteByte(dec)
				l.readChar()
				l.readChar()
				continue
			}
		}
		sb.WriteRune(l.chRune)
		l.readChar()
	}
	if l.ch == 0 {
		return l.emit(ILLEGAL, "unterminated string", start, line, column)
	}
	l.readChar() // consume closing quote
	return l.emit(STRING, sb.String(), start, line, column)
}

// readRawString reads r"..." with no escape processing
func (l *Lexer) readRawString(start, line, column int) Token {
	l.readChar() // consume 'r'
	l.readChar() // consume opening quote
	contentStart := l.position
	for l.ch != '"' && l.ch != 0 {
		l.readChar()
	}
	if l.ch == 0 {
		return l.emit(ILLEGAL, "unterminated raw string", start, line, column)
	}
	literal := l.input[contentStart:l.position]
	l.readChar() // consume closing quote
	return l.emit(RAW_STRING, literal, start, line, column)
}

// readFString reads f"..." keeping the template intact. Escapes are decoded
// here; `{expr[:spec]}` segments and `{{`/`}}` doubling are preserved for the
// parser, which re-parses interpolation bodies with a sub-parser.
func (l *Lexer) readFString(start, line, column int) Token {
	var sb strings.Builder
	l.readChar() // consume 'f'
	l.readChar() // consume opening quote
	for l.ch != '"' && l.ch != 0 {
		if l.ch == '\\' {
			if dec, ok := decodeEscape(l.peekChar()); ok {
				sb.WriteByte(dec)
				l.readChar()
				l.readChar()
				continue
			}
		}
		sb.WriteRune(l.chRune)
		l.readChar()
	}
	if l.ch == 0 {
		return l.emit(ILLEGAL, "unterminated f-string", start, line, column)
	}
	l.readChar() // consume closing quote
	return l.emit(FSTRING, sb.String(), start, line, column)
}

// readByte reads a byte literal like b'a'
func (l *Lexer) readByte(start, line, column int) Token {
	l.readChar() // consume 'b'
	l.readChar() // consume opening quote
	var value byte
	if l.ch == '\\' {
		if dec, ok := decodeEscape(l.peekChar()); ok {
			value = dec
			l.readChar()
			l.readChar()
		} else {
			return l.emit(ILLEGAL, "bad escape in byte literal", start, line, column)
		}
	} else {
		value = l.ch
		l.readChar()
	}
	if l.ch != '\'' {
		return l.emit(ILLEGAL, "unterminated byte literal", start, line, column)
	}
	l.readChar() // consume closing quote
	return l.emit(BYTE, string(value), start, line, column)
}

// readCharOrLifetime reads either a character literal 'a' or a lifetime 'a.
// A closing quote after one character (or escape) makes it a char; otherwise
// the quote introduces a lifetime name.
func (l *Lexer) readCharOrLifetime(start, line, column int) Token {
	l.readChar() // consume opening quote

	if l.ch == '\\' {
		if dec, ok := decodeEscape(l.peekChar()); ok {
			l.readChar()
			l.readChar()
			if l.ch != '\'' {
				return l.emit(ILLEGAL, "unterminated char literal", start, line, column)
			}
			l.readChar()
			return l.emit(CHAR, string(dec), start, line, column)
		}
		return l.emit(ILLEGAL, "bad escape in char literal", start, line, column)
	}

	if isLetter(l.chRune) {
		// Could be 'a' (char) or 'a (lifetime): decide by the next byte.
		r := l.chRune
		if l.peekChar() == '\'' {
			l.readChar()
			l.readChar()
			return l.emit(CHAR, string(r), start, line, column)
		}
		nameStart := l.position
		for isLetter(l.chRune) || isDigit(l.ch) {
			l.readChar()
		}
		return l.emit(LIFETIME, l.input[nameStart:l.position], start, line, column)
	}

	if l.ch != 0 && l.peekChar() == '\'' {
		r := l.chRune
		l.readChar()
		l.readChar()
		return l.emit(CHAR, string(r), start, line, column)
	}

	return l.emit(ILLEGAL, "unterminated char literal", start, line, column)
}

// Tokenize reads the whole input and returns all tokens up to and including EOF.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}
