package lexer

import "fmt"

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF
	COMMENT // // line comment or /* block comment */

	// Identifiers and literals
	IDENT      // add, foobar, x, y, ...
	INT        // 42, 0xff, 0b1010, 1_000_000
	FLOAT      // 3.14159, 1e9
	STRING     // "foobar"
	RAW_STRING // r"no \escapes"
	FSTRING    // f"x = {x:.2}"
	CHAR       // 'a', '\n'
	BYTE       // b'a'
	ATOM       // :ok, :error
	LIFETIME   // 'a, 'static

	// Operators
	ASSIGN         // =
	PLUS           // +
	MINUS          // -
	ASTERISK       // *
	SLASH          // /
	PERCENT        // %
	POWER          // **
	EQ             // ==
	NOT_EQ         // !=
	LT             // <
	LTE            // <=
	GT             // >
	GTE            // >=
	AND_AND        // &&
	OR_OR          // ||
	BANG           // !
	TILDE          // ~
	AMP            // &
	PIPE           // |
	CARET          // ^
	SHL            // <<
	SHR            // >>
	PLUS_ASSIGN    // +=
	MINUS_ASSIGN   // -=
	STAR_ASSIGN    // *=
	SLASH_ASSIGN   // /=
	PERCENT_ASSIGN // %=
	POWER_ASSIGN   // **=
	AMP_ASSIGN     // &=
	PIPE_ASSIGN    // |=
	CARET_ASSIGN   // ^=
	SHL_ASSIGN     // <<=
	SHR_ASSIGN     // >>=
	NULLISH        // ??
	QUESTION       // ?
	ARROW          // ->
	FAT_ARROW      // =>
	PIPELINE       // |>
	RANGE          // ..
	RANGE_INCL     // ..=
	ELLIPSIS       // ...
	COLON_COLON    // ::
	COLON          // :
	ASK            // <?
	INCREMENT      // ++
	DECREMENT      // --
	AT             // @

	// Delimiters
	COMMA     // ,
	SEMICOLON // ;
	DOT       // .
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]

	// Keywords
	FUNCTION  // "fun" or "fn"
	LET       // "let"
	VAR       // "var"
	MUT       // "mut"
	IF        // "if"
	ELSE      // "else"
	FOR       // "for"
	WHILE     // "while"
	LOOP      // "loop"
	MATCH     // "match"
	STRUCT    // "struct"
	ENUM      // "enum"
	TRAIT     // "trait"
	IMPL      // "impl"
	EXTEND    // "extend"
	ACTOR     // "actor"
	IMPORT    // "import"
	EXPORT    // "export"
	USE       // "use"
	FROM      // "from"
	AS        // "as"
	IN        // "in"
	IS        // "is"
	TYPE      // "type"
	RETURN    // "return"
	BREAK     // "break"
	CONTINUE  // "continue"
	TRY       // "try"
	CATCH     // "catch"
	FINALLY   // "finally"
	THROW     // "throw"
	AWAIT     // "await"
	ASYNC     // "async"
	SPAWN     // "spawn"
	PUB       // "pub"
	DEFAULT   // "default"
	FINAL     // "final"
	SELFTYPE  // "Self"
	SELF      // "self"
	CRATE     // "crate"
	SUPER     // "super"
	TRUE      // "true"
	FALSE     // "false"
	NULL      // "null" or "nil"
	RESULT    // "Result"
	OPTION    // "Option"
	SOME      // "Some"
	NONE      // "None"
	OK        // "Ok"
	ERR       // "Err"
	DATAFRAME // "DataFrame"
	MODULE    // "module" or "mod"
)

// tokenNames maps token types to their display names
var tokenNames = map[TokenType]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", COMMENT: "COMMENT",
	IDENT: "IDENT", INT: "INT", FLOAT: "FLOAT", STRING: "STRING",
	RAW_STRING: "RAW_STRING", FSTRING: "FSTRING", CHAR: "CHAR", BYTE: "BYTE",
	ATOM: "ATOM", LIFETIME: "LIFETIME",
	ASSIGN: "=", PLUS: "+", MINUS: "-", ASTERISK: "*", SLASH: "/",
	PERCENT: "%", POWER: "**", EQ: "==", NOT_EQ: "!=", LT: "<", LTE: "<=",
	GT: ">", GTE: ">=", AND_AND: "&&", OR_OR: "||", BANG: "!", TILDE: "~",
	AMP: "&", PIPE: "|", CARET: "^", SHL: "<<", SHR: ">>",
	PLUS_ASSIGN: "+=", MINUS_ASSIGN: "-=", STAR_ASSIGN: "*=",
	SLASH_ASSIGN: "/=", PERCENT_ASSIGN: "%=", POWER_ASSIGN: "**=",
	AMP_ASSIGN: "&=", PIPE_ASSIGN: "|=", CARET_ASSIGN: "^=",
	SHL_ASSIGN: "<<=", SHR_ASSIGN: ">>=",
	NULLISH: "??", QUESTION: "?", ARROW: "->", FAT_ARROW: "=>",
	PIPELINE: "|>", RANGE: "..", RANGE_INCL: "..=", ELLIPSIS: "...",
	COLON_COLON: "::", COLON: ":", ASK: "<?", INCREMENT: "++",
	DECREMENT: "--", AT: "@",
	COMMA: ",", SEMICOLON: ";", DOT: ".", LPAREN: "(", RPAREN: ")",
	LBRACE: "{", RBRACE: "}", LBRACKET: "[", RBRACKET: "]",
	FUNCTION: "fun", LET: "let", VAR: "var", MUT: "mut", IF: "if",
	ELSE: "else", FOR: "for", WHILE: "while", LOOP: "loop", MATCH: "match",
	STRUCT: "struct", ENUM: "enum", TRAIT: "trait", IMPL: "impl",
	EXTEND: "extend", ACTOR: "actor", IMPORT: "import", EXPORT: "export", USE: "use",
	FROM: "from", AS: "as", IN: "in", IS: "is", TYPE: "type",
	RETURN: "return", BREAK: "break", CONTINUE: "continue", TRY: "try",
	CATCH: "catch", FINALLY: "finally", THROW: "throw", AWAIT: "await",
	ASYNC: "async", SPAWN: "spawn", PUB: "pub", DEFAULT: "default",
	FINAL: "final", SELFTYPE: "Self", SELF: "self", CRATE: "crate",
	SUPER: "super", TRUE: "true", FALSE: "false", NULL: "null",
	RESULT: "Result", OPTION: "Option", SOME: "Some", NONE: "None",
	OK: "Ok", ERR: "Err", DATAFRAME: "DataFrame", MODULE: "module",
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return "UNKNOWN"
}

// Span is a byte range [Start, End) identifying a source region.
type Span struct {
	Start int
	End   int
}

// Merge returns the covering range of two spans.
func (s Span) Merge(other Span) Span {
	merged := s
	if other.Start < merged.Start {
		merged.Start = other.Start
	}
	if other.End > merged.End {
		merged.End = other.End
	}
	return merged
}

// Token represents a single token
type Token struct {
	Type    TokenType
	Literal string
	Span    Span
	Line    int
	Column  int
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %q, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Line, t.Column)
}

// Keywords map for identifying language keywords
var keywords = map[string]TokenType{
	"fun":       FUNCTION,
	"fn":        FUNCTION, // alias
	"let":       LET,
	"var":       VAR,
	"mut":       MUT,
	"if":        IF,
	"else":      ELSE,
	"for":       FOR,
	"while":     WHILE,
	"loop":      LOOP,
	"match":     MATCH,
	"struct":    STRUCT,
	"enum":      ENUM,
	"trait":     TRAIT,
	"impl":      IMPL,
	"extend":    EXTEND,
	"actor":     ACTOR,
	"import":    IMPORT,
	"export":    EXPORT,
	"use":       USE,
	"from":      FROM,
	"as":        AS,
	"in":        IN,
	"is":        IS,
	"type":      TYPE,
	"return":    RETURN,
	"break":     BREAK,
	"continue":  CONTINUE,
	"try":       TRY,
	"catch":     CATCH,
	"finally":   FINALLY,
	"throw":     THROW,
	"await":     AWAIT,
	"async":     ASYNC,
	"spawn":     SPAWN,
	"pub":       PUB,
	"default":   DEFAULT,
	"final":     FINAL,
	"Self":      SELFTYPE,
	"self":      SELF,
	"crate":     CRATE,
	"super":     SUPER,
	"true":      TRUE,
	"false":     FALSE,
	"null":      NULL,
	"nil":       NULL, // alias
	"Result":    RESULT,
	"Option":    OPTION,
	"Some":      SOME,
	"None":      NONE,
	"Ok":        OK,
	"Err":       ERR,
	"DataFrame": DATAFRAME,
	"module":    MODULE,
	"mod":       MODULE, // alias
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
