package evaluator

import (
	"math"
	"strconv"
	"strings"
)

// ObjectType represents the type of objects in our language
type ObjectType string

const (
	STRING_OBJ  = "STRING"
	NUMBER_OBJ  = "NUMBER"
	ARRAY_OBJ   = "ARRAY"
	PROCESS_OBJ = "PROCESS"
	VOID_OBJ    = "VOID"
)

// Object represents all values in our language. Objects are never mutated
// after creation, so the environment can hand out stored values directly.
type Object interface {
	Type() ObjectType
	Inspect() string
}

// String represents string objects
type String struct {
	Value string
}

func (s *String) Inspect() string  { return s.Value }
func (s *String) Type() ObjectType { return STRING_OBJ }

// Number represents all numeric values
type Number struct {
	Value float64
}

func (n *Number) Inspect() string  { return formatNumber(n.Value) }
func (n *Number) Type() ObjectType { return NUMBER_OBJ }

// formatNumber renders the shortest decimal that reads back as v.
func formatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Array represents array objects
type Array struct {
	Elements []Object
}

func (a *Array) Inspect() string {
	elements := make([]string, len(a.Elements))
	for i, el := range a.Elements {
		elements[i] = el.Inspect()
	}
	return "[" + strings.Join(elements, ", ") + "]"
}
func (a *Array) Type() ObjectType { return ARRAY_OBJ }

// flatten appends the leaves of a to dst, descending into nested arrays.
func (a *Array) flatten(dst []Object) []Object {
	for _, el := range a.Elements {
		if inner, ok := el.(*Array); ok {
			dst = inner.flatten(dst)
			continue
		}
		dst = append(dst, el)
	}
	return dst
}

// ProcessResult is the outcome of running an external program. Stdout is
// only populated when Captured is true.
type ProcessResult struct {
	Path     string
	Args     []string
	ExitCode int
	Stdout   string
	Captured bool
}

func (p *ProcessResult) Inspect() string {
	if p.Captured {
		return strings.TrimRight(p.Stdout, "\r\n")
	}
	return strconv.Itoa(p.ExitCode)
}
func (p *ProcessResult) Type() ObjectType { return PROCESS_OBJ }

// Void is the result of statements that produce nothing, and of reading
// an unset variable.
type Void struct{}

func (v *Void) Inspect() string  { return "" }
func (v *Void) Type() ObjectType { return VOID_OBJ }

// VOID is the shared Void value
var VOID = &Void{}
