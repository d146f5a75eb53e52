package ast

import (
	"bytes"
	"strings"

	"github.com/sambeau/oyster/pkg/oyster/lexer"
)

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement represents statement nodes
type Statement interface {
	Node
	statementNode()
}

// Expression represents expression nodes
type Expression interface {
	Node
	expressionNode()
}

// Program is a chain of statements ending in *End.
type Program interface {
	Node
	programNode()
}

// Sequence is one statement followed by the rest of the program.
type Sequence struct {
	Statement Statement
	Next      Program
}

func (s *Sequence) programNode()         {}
func (s *Sequence) TokenLiteral() string { return s.Statement.TokenLiteral() }
func (s *Sequence) String() string {
	var out bytes.Buffer

	out.WriteString(s.Statement.String())
	if _, ok := s.Next.(*End); !ok {
		out.WriteString("\n")
		out.WriteString(s.Next.String())
	}

	return out.String()
}

// End terminates a program.
type End struct{}

func (e *End) programNode()         {}
func (e *End) TokenLiteral() string { return "" }
func (e *End) String() string       { return "" }

// Statements flattens the chain, mainly for tests and tooling.
func Statements(p Program) []Statement {
	var stmts []Statement
	for {
		seq, ok := p.(*Sequence)
		if !ok {
			return stmts
		}
		stmts = append(stmts, seq.Statement)
		p = seq.Next
	}
}

// AssignStatement represents '$name = expression'
type AssignStatement struct {
	Token lexer.Token // the VAR token
	Name  string      // variable name without the sigil
	Value Expression
}

func (as *AssignStatement) statementNode()       {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignStatement) String() string {
	return "$" + as.Name + " = " + as.Value.String()
}

// ExpressionStatement wraps an expression whose value is part of the output
type ExpressionStatement struct {
	Token      lexer.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

// InfixExpression represents binary arithmetic like '1 + 2'
type InfixExpression struct {
	Token    lexer.Token // the operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")

	return out.String()
}

type NumberLiteral struct {
	Token lexer.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumberLiteral) String() string       { return nl.Token.Literal }

// StringLiteral holds the text between the quotes.
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return sl.Token.Literal }

// Variable is a '$name' reference. Name has no sigil.
type Variable struct {
	Token lexer.Token
	Name  string
}

func (v *Variable) expressionNode()      {}
func (v *Variable) TokenLiteral() string { return v.Token.Literal }
func (v *Variable) String() string       { return "$" + v.Name }

type PathLiteral struct {
	Token lexer.Token
	Value string
}

func (pl *PathLiteral) expressionNode()      {}
func (pl *PathLiteral) TokenLiteral() string { return pl.Token.Literal }
func (pl *PathLiteral) String() string       { return pl.Value }

type ParamLiteral struct {
	Token lexer.Token
	Value string
}

func (pl *ParamLiteral) expressionNode()      {}
func (pl *ParamLiteral) TokenLiteral() string { return pl.Token.Literal }
func (pl *ParamLiteral) String() string       { return pl.Value }

// CommandExpression runs an external program: 'ls -la $HOME'
type CommandExpression struct {
	Path      *PathLiteral
	Arguments []Expression
}

func (ce *CommandExpression) expressionNode()      {}
func (ce *CommandExpression) TokenLiteral() string { return ce.Path.TokenLiteral() }
func (ce *CommandExpression) String() string {
	parts := []string{ce.Path.String()}
	for _, a := range ce.Arguments {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " ")
}

// ArrayLiteral represents '[1, 2, 3]'
type ArrayLiteral struct {
	Token    lexer.Token // the '[' token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) String() string {
	elements := make([]string, 0, len(al.Elements))
	for _, el := range al.Elements {
		elements = append(elements, el.String())
	}
	return "[" + strings.Join(elements, ", ") + "]"
}
