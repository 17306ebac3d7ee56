package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `let mut count = 5;
fun add(x: Int, y: Int) -> Int { x + y }
count += 1
count == 6 && count != 7
1..10
1..=10
result |> print
m::member
`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{LET, "let"},
		{MUT, "mut"},
		{IDENT, "count"},
		{ASSIGN, "="},
		{INT, "5"},
		{SEMICOLON, ";"},
		{FUNCTION, "fun"},
		{IDENT, "add"},
		{LPAREN, "("},
		{IDENT, "x"},
		{COLON, ":"},
		{IDENT, "Int"},
		{COMMA, ","},
		{IDENT, "y"},
		{COLON, ":"},
		{IDENT, "Int"},
		{RPAREN, ")"},
		{ARROW, "->"},
		{IDENT, "Int"},
		{LBRACE, "{"},
		{IDENT, "x"},
		{PLUS, "+"},
		{IDENT, "y"},
		{RBRACE, "}"},
		{IDENT, "count"},
		{PLUS_ASSIGN, "+="},
		{INT, "1"},
		{IDENT, "count"},
		{EQ, "=="},
		{INT, "6"},
		{AND_AND, "&&"},
		{IDENT, "count"},
		{NOT_EQ, "!="},
		{INT, "7"},
		{INT, "1"},
		{RANGE, ".."},
		{INT, "10"},
		{INT, "1"},
		{RANGE_INCL, "..="},
		{INT, "10"},
		{IDENT, "result"},
		{PIPELINE, "|>"},
		{IDENT, "print"},
		{IDENT, "m"},
		{COLON_COLON, "::"},
		{IDENT, "member"},
		{EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - wrong token type. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - wrong literal. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"fun", FUNCTION},
		{"fn", FUNCTION},
		{"match", MATCH},
		{"struct", STRUCT},
		{"enum", ENUM},
		{"trait", TRAIT},
		{"impl", IMPL},
		{"extend", EXTEND},
		{"actor", ACTOR},
		{"spawn", SPAWN},
		{"try", TRY},
		{"catch", CATCH},
		{"finally", FINALLY},
		{"throw", THROW},
		{"async", ASYNC},
		{"await", AWAIT},
		{"module", MODULE},
		{"mod", MODULE},
		{"null", NULL},
		{"nil", NULL},
		{"Some", SOME},
		{"None", NONE},
		{"Ok", OK},
		{"Err", ERR},
		{"DataFrame", DATAFRAME},
		{"not_a_keyword", IDENT},
	}
	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.expected {
			t.Errorf("%q lexed as %q, want %q", tt.input, tok.Type, tt.expected)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input           string
		expectedType    TokenType
		expectedLiteral string
	}{
		{"42", INT, "42"},
		{"1_000_000", INT, "1_000_000"},
		{"0xff", INT, "0xff"},
		{"0b1010", INT, "0b1010"},
		{"0o755", INT, "0o755"},
		{"3.14159", FLOAT, "3.14159"},
		{"1e9", FLOAT, "1e9"},
		{"2.5e-3", FLOAT, "2.5e-3"},
	}
	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.expectedType || tok.Literal != tt.expectedLiteral {
			t.Errorf("%q lexed as (%q, %q), want (%q, %q)",
				tt.input, tok.Type, tok.Literal, tt.expectedType, tt.expectedLiteral)
		}
	}
}

func TestRangeIsNotADecimalPoint(t *testing.T) {
	l := New("1..5")
	types := []TokenType{INT, RANGE, INT, EOF}
	for i, want := range types {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("token %d = %q, want %q", i, tok.Type, want)
		}
	}
}

func TestStringLiterals(t *testing.T) {
	tests := []struct {
		input           string
		expectedType    TokenType
		expectedLiteral string
	}{
		{`"hello"`, STRING, "hello"},
		{`"line\nbreak"`, STRING, "line\nbreak"},
		{`"tab\there"`, STRING, "tab\there"},
		{`"quote \" inside"`, STRING, `quote " inside`},
		{`r"no \escapes"`, RAW_STRING, `no \escapes`},
		{`f"x = {x}"`, FSTRING, "x = {x}"},
		{`f"pi = {pi:.2}"`, FSTRING, "pi = {pi:.2}"},
	}
	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.expectedType || tok.Literal != tt.expectedLiteral {
			t.Errorf("%s lexed as (%q, %q), want (%q, %q)",
				tt.input, tok.Type, tok.Literal, tt.expectedType, tt.expectedLiteral)
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"never closed`)
	tok := l.NextToken()
	if tok.Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %q (%q)", tok.Type, tok.Literal)
	}
}

func TestCharAndByteLiterals(t *testing.T) {
	tests := []struct {
		input           string
		expectedType    TokenType
		expectedLiteral string
	}{
		{`'a'`, CHAR, "a"},
		{`'\n'`, CHAR, "\n"},
		{`b'x'`, BYTE, "x"},
		{`'static`, LIFETIME, "static"},
	}
	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.expectedType || tok.Literal != tt.expectedLiteral {
			t.Errorf("%s lexed as (%q, %q), want (%q, %q)",
				tt.input, tok.Type, tok.Literal, tt.expectedType, tt.expectedLiteral)
		}
	}
}

func TestAtomsAreContextSensitive(t *testing.T) {
	// Expression position: atom.
	l := New("let status = :ok")
	var tok Token
	for tok = l.NextToken(); tok.Type != ATOM && tok.Type != EOF; tok = l.NextToken() {
	}
	if tok.Type != ATOM || tok.Literal != "ok" {
		t.Fatalf("expected atom 'ok', got %q (%q)", tok.Type, tok.Literal)
	}

	// After an identifier the ':' is a type annotation, not an atom.
	l = New("x: Int")
	l.NextToken() // x
	tok = l.NextToken()
	if tok.Type != COLON {
		t.Fatalf("expected ':' after identifier, got %q", tok.Type)
	}
}

func TestComments(t *testing.T) {
	input := `1 // a line comment
/* a block
   comment */ 2`
	l := New(input)
	first := l.NextToken()
	second := l.NextToken()
	if first.Type != INT || first.Literal != "1" {
		t.Fatalf("first token = %q (%q)", first.Type, first.Literal)
	}
	if second.Type != INT || second.Literal != "2" {
		t.Fatalf("second token = %q (%q)", second.Type, second.Literal)
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	input := "let x = 1\nlet y = 2"
	l := New(input)

	var ys Token
	for tok := l.NextToken(); tok.Type != EOF; tok = l.NextToken() {
		if tok.Type == IDENT && tok.Literal == "y" {
			ys = tok
		}
	}
	if ys.Line != 2 {
		t.Errorf("y on line %d, want 2", ys.Line)
	}
	if ys.Column != 5 {
		t.Errorf("y at column %d, want 5", ys.Column)
	}
}

func TestSpansIndexIntoSource(t *testing.T) {
	input := `let answer = 42`
	l := New(input)
	for tok := l.NextToken(); tok.Type != EOF; tok = l.NextToken() {
		if tok.Type == INT {
			if got := input[tok.Span.Start:tok.Span.End]; got != "42" {
				t.Errorf("span slice = %q, want %q", got, "42")
			}
		}
	}
}

func TestUnicodeIdentifiers(t *testing.T) {
	l := New("let café = 1")
	l.NextToken() // let
	tok := l.NextToken()
	if tok.Type != IDENT || tok.Literal != "café" {
		t.Fatalf("got %q (%q)", tok.Type, tok.Literal)
	}
}

func TestTokenizeEndsWithEOF(t *testing.T) {
	tokens := New("1 + 2").Tokenize()
	if len(tokens) != 4 {
		t.Fatalf("got %d tokens, want 4", len(tokens))
	}
	if tokens[len(tokens)-1].Type != EOF {
		t.Error("last token should be EOF")
	}
}
