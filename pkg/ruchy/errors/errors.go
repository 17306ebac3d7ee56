// Package errors provides structured error types for the Ruchy language.
//
// This package defines RuchyError, a unified error type shared by the parser,
// the type checker, and the interpreter, with rich metadata for display and
// programmatic handling.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassParse     ErrorClass = "parse"     // Parser/syntax errors
	ClassType      ErrorClass = "type"      // Type inference failures
	ClassArity     ErrorClass = "arity"     // Wrong argument count
	ClassUndefined ErrorClass = "undefined" // Not found/defined
	ClassOperator  ErrorClass = "operator"  // Invalid operations
	ClassIndex     ErrorClass = "index"     // Out of bounds
	ClassState     ErrorClass = "state"     // Invalid state (stack overflow, bad cast)
	ClassIO        ErrorClass = "io"        // File operations
	ClassImport    ErrorClass = "import"    // Module loading
	ClassFormat    ErrorClass = "format"    // Invalid format/parse
)

// RuchyError represents any error from parsing, inference, or evaluation.
type RuchyError struct {
	Class   ErrorClass     `json:"class"`           // Error category
	Code    string         `json:"code"`            // Error code (e.g., "TYPE-0001")
	Message string         `json:"message"`         // Human-readable message
	Hints   []string       `json:"hints,omitempty"` // Suggestions for fixing
	Line    int            `json:"line"`            // 1-based line (0 if unknown)
	Column  int            `json:"column"`          // 1-based column (0 if unknown)
	File    string         `json:"file,omitempty"`  // File path (if known)
	Data    map[string]any `json:"data,omitempty"`  // Template variables
}

// Error implements the error interface.
func (e *RuchyError) Error() string {
	return e.String()
}

// String returns a formatted single-line representation of the error.
func (e *RuchyError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *RuchyError) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassParse:
		sb.WriteString("Parse error")
	case ClassType:
		sb.WriteString("Type error")
	default:
		sb.WriteString("Runtime error")
	}

	if e.File != "" {
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d, column %d", e.Line, e.Column))
		}
		sb.WriteString("\n  ")
	} else if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": line %d, column %d\n  ", e.Line, e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for i, hint := range e.Hints {
		sb.WriteString("\n  ")
		if i == 0 {
			sb.WriteString("Use: ")
		} else {
			sb.WriteString(" or: ")
		}
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *RuchyError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithFile returns a copy of the error with the file path set.
func (e *RuchyError) WithFile(file string) *RuchyError {
	copy := *e
	copy.File = file
	return &copy
}

// WithPosition returns a copy of the error with line and column set.
func (e *RuchyError) WithPosition(line, column int) *RuchyError {
	copy := *e
	copy.Line = line
	copy.Column = column
	return &copy
}

// IsParseError returns true if this is a parser error.
func (e *RuchyError) IsParseError() bool {
	return e.Class == ClassParse
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass // Error category
	Template string     // Message template with {{.placeholders}}
	Hints    []string   // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Parse errors (PARSE-0xxx)
	"PARSE-0001": {
		Class:    ClassParse,
		Template: "expected {{.Expected}}, got '{{.Got}}'",
	},
	"PARSE-0002": {
		Class:    ClassParse,
		Template: "unexpected token '{{.Token}}'",
	},
	"PARSE-0003": {
		Class:    ClassParse,
		Template: "no prefix parse function for '{{.Token}}'",
	},
	"PARSE-0004": {
		Class:    ClassParse,
		Template: "'from' is reserved for import syntax and cannot be used as a parameter name",
		Hints:    []string{"rename the parameter, e.g. 'source' or 'start'"},
	},
	"PARSE-0005": {
		Class:    ClassParse,
		Template: "let-else requires a diverging else block",
		Hints:    []string{"end the else block with return, break, continue, or throw"},
	},
	"PARSE-0006": {
		Class:    ClassParse,
		Template: "unterminated f-string interpolation in {{.Template}}",
	},
	"PARSE-0007": {
		Class:    ClassParse,
		Template: "could not parse {{.Kind}} literal '{{.Literal}}'",
	},
	"PARSE-0008": {
		Class:    ClassParse,
		Template: "match expression must have at least one arm",
	},
	"PARSE-0009": {
		Class:    ClassParse,
		Template: "try expression requires a catch clause or a finally block",
	},

	// Type errors (TYPE-0xxx)
	"TYPE-0001": {
		Class:    ClassType,
		Template: "cannot unify {{.Left}} with {{.Right}}",
	},
	"TYPE-0002": {
		Class:    ClassType,
		Template: "occurs check failed: t{{.Var}} occurs in {{.Type}}",
	},
	"TYPE-0003": {
		Class:    ClassType,
		Template: "function expects {{.Expected}} arguments, got {{.Got}}",
	},
	"TYPE-0004": {
		Class:    ClassType,
		Template: "type {{.Type}} has no method '{{.Method}}'",
	},
	"TYPE-0005": {
		Class:    ClassType,
		Template: "{{.Type}} is not iterable",
	},
	"TYPE-0006": {
		Class:    ClassType,
		Template: "inference recursion limit exceeded",
	},

	// Undefined (UNDEF-0xxx)
	"UNDEF-0001": {
		Class:    ClassUndefined,
		Template: "undefined variable '{{.Name}}'",
	},
	"UNDEF-0002": {
		Class:    ClassUndefined,
		Template: "unknown field '{{.Field}}' on {{.Type}}",
	},
	"UNDEF-0003": {
		Class:    ClassUndefined,
		Template: "actor {{.Actor}} has no handler for message '{{.Message}}'",
	},

	// Arity (ARITY-0xxx)
	"ARITY-0001": {
		Class:    ClassArity,
		Template: "wrong number of arguments: expected {{.Expected}}, got {{.Got}}",
	},

	// Operators (OP-0xxx)
	"OP-0001": {
		Class:    ClassOperator,
		Template: "unknown operator: {{.Left}} {{.Operator}} {{.Right}}",
	},
	"OP-0002": {
		Class:    ClassOperator,
		Template: "division by zero",
	},
	"OP-0003": {
		Class:    ClassOperator,
		Template: "modulo by zero",
	},
	"OP-0004": {
		Class:    ClassOperator,
		Template: "cannot cast {{.From}} to {{.To}}",
	},
	"OP-0005": {
		Class:    ClassOperator,
		Template: "'{{.Value}}' is not callable",
	},

	// Index (INDEX-0xxx)
	"INDEX-0001": {
		Class:    ClassIndex,
		Template: "index {{.Index}} out of bounds for length {{.Length}}",
	},

	// State (STATE-0xxx)
	"STATE-0001": {
		Class:    ClassState,
		Template: "maximum call depth ({{.Limit}}) exceeded",
	},
	"STATE-0002": {
		Class:    ClassState,
		Template: "no pattern matched in match expression",
		Hints:    []string{"add a wildcard arm: _ => ..."},
	},
	"STATE-0003": {
		Class:    ClassState,
		Template: "let-else pattern did not match",
	},

	// Import (IMPORT-0xxx)
	"IMPORT-0001": {
		Class:    ClassImport,
		Template: "module '{{.Name}}' not found (searched {{.Paths}})",
	},
	"IMPORT-0002": {
		Class:    ClassImport,
		Template: "circular import: {{.Cycle}}",
	},
	"IMPORT-0003": {
		Class:    ClassImport,
		Template: "error in module '{{.Name}}': {{.Cause}}",
	},

	// IO (IO-0xxx)
	"IO-0001": {
		Class:    ClassIO,
		Template: "cannot read {{.Path}}: {{.Cause}}",
	},
	"IO-0002": {
		Class:    ClassIO,
		Template: "cannot write {{.Path}}: {{.Cause}}",
	},

	// Format (FORMAT-0xxx)
	"FORMAT-0001": {
		Class:    ClassFormat,
		Template: "invalid pattern '{{.Pattern}}': {{.Cause}}",
	},
}

// New creates a RuchyError from a catalog code, rendering its template with data.
func New(code string, data map[string]any) *RuchyError {
	def, ok := ErrorCatalog[code]
	if !ok {
		return &RuchyError{
			Class:   ClassState,
			Code:    code,
			Message: fmt.Sprintf("unknown error code %q", code),
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)
	hints := make([]string, 0, len(def.Hints))
	for _, h := range def.Hints {
		hints = append(hints, renderTemplate(h, data))
	}

	return &RuchyError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates a RuchyError from a catalog code with a source position.
func NewWithPosition(code string, line, column int, data map[string]any) *RuchyError {
	e := New(code, data)
	e.Line = line
	e.Column = column
	return e
}

// renderTemplate renders a message template with the given data. A template
// that fails to parse or execute falls back to the raw template text so a
// bad catalog entry never masks the underlying error.
func renderTemplate(tmpl string, data map[string]any) string {
	if !strings.Contains(tmpl, "{{") {
		return tmpl
	}
	t, err := template.New("err").Parse(tmpl)
	if err != nil {
		return tmpl
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return tmpl
	}
	return buf.String()
}
