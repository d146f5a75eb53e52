// Package errors provides structured error types for the oyster language.
//
// Every failure of an Interpret call (lexing, parsing, evaluation or process
// spawning) is reported as an *OysterError carrying a class, a catalog code,
// a human-readable message and, where known, the source position.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and display.
type ErrorClass string

const (
	ClassLex     ErrorClass = "lex"     // Unrecognized input
	ClassParse   ErrorClass = "parse"   // Grammar errors
	ClassType    ErrorClass = "type"    // Operator applied to incompatible values
	ClassProcess ErrorClass = "process" // External program could not be started
)

// OysterError represents any error from tokenizing, parsing or evaluation.
type OysterError struct {
	Class   ErrorClass     `json:"class"`           // Error category
	Code    string         `json:"code"`            // Error code (e.g., "TYPE-0001")
	Message string         `json:"message"`         // Human-readable message
	Hints   []string       `json:"hints,omitempty"` // Suggestions for fixing
	Line    int            `json:"line"`            // 1-based line (0 if unknown)
	Column  int            `json:"column"`          // 1-based column (0 if unknown)
	Data    map[string]any `json:"data,omitempty"`  // Template variables
}

// Error implements the error interface.
func (e *OysterError) Error() string {
	return e.String()
}

// String returns a single-line representation with the position prefix.
func (e *OysterError) String() string {
	var sb strings.Builder

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

// PrettyString returns a multi-line formatted string for the REPL.
func (e *OysterError) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassLex:
		sb.WriteString("Syntax error")
	case ClassParse:
		sb.WriteString("Parser error")
	case ClassProcess:
		sb.WriteString("Process error")
	default:
		sb.WriteString("Runtime error")
	}

	if e.Line > 0 {
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
func (e *OysterError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithPosition returns a copy of the error with line and column set.
func (e *OysterError) WithPosition(line, column int) *OysterError {
	copy := *e
	copy.Line = line
	copy.Column = column
	return &copy
}

// IsSyntaxError reports whether the input was rejected before evaluation.
func (e *OysterError) IsSyntaxError() bool {
	return e.Class == ClassLex || e.Class == ClassParse
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass // Error category
	Template string     // Message template with {{.placeholders}}
	Hints    []string   // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// ========================================
	// Lexical errors (LEX-0xxx)
	// ========================================
	"LEX-0001": {
		Class:    ClassLex,
		Template: "unexpected input {{.Text}}",
	},

	// ========================================
	// Parse errors (PARSE-0xxx)
	// ========================================
	"PARSE-0001": {
		Class:    ClassParse,
		Template: "expected {{.Expected}}, got '{{.Got}}'",
	},
	"PARSE-0002": {
		Class:    ClassParse,
		Template: "unexpected tokens: {{.Tokens}}",
		Hints:    []string{"separate statements with a newline or ';'"},
	},

	// ========================================
	// Type errors (TYPE-0xxx)
	// ========================================
	"TYPE-0001": {
		Class:    ClassType,
		Template: "can only add values of the same type",
	},
	"TYPE-0002": {
		Class:    ClassType,
		Template: "can only subtract numbers",
	},
	"TYPE-0003": {
		Class:    ClassType,
		Template: "can only multiply numbers",
	},
	"TYPE-0004": {
		Class:    ClassType,
		Template: "can only divide numbers",
	},
	"TYPE-0005": {
		Class:    ClassType,
		Template: "can only mod numbers",
	},

	// ========================================
	// Process errors (PROC-0xxx)
	// ========================================
	"PROC-0001": {
		Class:    ClassProcess,
		Template: "failed to run '{{.Path}}': {{.GoError}}",
	},
}

// New creates an OysterError from the catalog.
// If the code is not found, creates a generic error with the message.
func New(code string, data map[string]any) *OysterError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &OysterError{
			Class:   ClassType,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &OysterError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates an OysterError with position information.
func NewWithPosition(code string, line, column int, data map[string]any) *OysterError {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// NewSimple creates an error without using the catalog.
func NewSimple(class ErrorClass, message string) *OysterError {
	return &OysterError{
		Class:   class,
		Message: message,
	}
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}
