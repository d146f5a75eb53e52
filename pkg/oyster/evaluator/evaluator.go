// Package evaluator walks an oyster program, threading a single mutable
// Environment through every statement.
package evaluator

import (
	"fmt"
	"math"
	"strings"

	"github.com/sambeau/oyster/pkg/oyster/ast"
	perrors "github.com/sambeau/oyster/pkg/oyster/errors"
	"github.com/sambeau/oyster/pkg/oyster/lexer"
)

// EvalProgram runs every statement in order and joins the displays of
// the statements that produced something, one per line.
func EvalProgram(program ast.Program, env *Environment) (string, error) {
	var out []string

	for {
		seq, ok := program.(*ast.Sequence)
		if !ok {
			break
		}
		obj, err := Eval(seq.Statement, env)
		if err != nil {
			return "", err
		}
		if obj.Type() != VOID_OBJ {
			if s := obj.Inspect(); s != "" {
				out = append(out, s)
			}
		}
		program = seq.Next
	}

	return strings.Join(out, "\n"), nil
}

// Eval evaluates a statement or expression node
func Eval(node ast.Node, env *Environment) (Object, error) {
	switch node := node.(type) {

	// Statements
	case *ast.AssignStatement:
		val, err := Eval(node.Value, env)
		if err != nil {
			return nil, err
		}
		env.Set(node.Name, val)
		return VOID, nil

	case *ast.ExpressionStatement:
		return Eval(node.Expression, env)

	// Literals
	case *ast.NumberLiteral:
		return &Number{Value: node.Value}, nil

	case *ast.StringLiteral:
		return &String{Value: node.Value}, nil

	case *ast.PathLiteral:
		return &String{Value: node.Value}, nil

	case *ast.ParamLiteral:
		return &String{Value: node.Value}, nil

	case *ast.ArrayLiteral:
		elements := make([]Object, 0, len(node.Elements))
		for _, el := range node.Elements {
			val, err := Eval(el, env)
			if err != nil {
				return nil, err
			}
			elements = append(elements, val)
		}
		return &Array{Elements: elements}, nil

	case *ast.Variable:
		if val, ok := env.Get(node.Name); ok {
			return val, nil
		}
		return VOID, nil

	// Expressions
	case *ast.InfixExpression:
		left, err := Eval(node.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := Eval(node.Right, env)
		if err != nil {
			return nil, err
		}
		return evalInfixExpression(node.Token, node.Operator, left, right)

	case *ast.CommandExpression:
		return evalCommandExpression(node, env)
	}

	return nil, perrors.NewSimple(perrors.ClassType, fmt.Sprintf("cannot evaluate %T", node))
}

func evalInfixExpression(tok lexer.Token, operator string, left, right Object) (Object, error) {
	if operator == "+" {
		return evalPlus(tok, left, right)
	}

	ln, lok := left.(*Number)
	rn, rok := right.(*Number)

	switch operator {
	case "-":
		if !lok || !rok {
			return nil, typeError("TYPE-0002", tok)
		}
		return &Number{Value: ln.Value - rn.Value}, nil
	case "*":
		if !lok || !rok {
			return nil, typeError("TYPE-0003", tok)
		}
		return &Number{Value: ln.Value * rn.Value}, nil
	case "/":
		if !lok || !rok {
			return nil, typeError("TYPE-0004", tok)
		}
		return &Number{Value: ln.Value / rn.Value}, nil
	case "%":
		if !lok || !rok {
			return nil, typeError("TYPE-0005", tok)
		}
		return &Number{Value: math.Mod(ln.Value, rn.Value)}, nil
	}

	return nil, perrors.NewSimple(perrors.ClassType, fmt.Sprintf("unknown operator: %s", operator)).
		WithPosition(tok.Line, tok.Column)
}

// evalPlus adds numbers, concatenates strings and concatenates arrays,
// flattening nested arrays into the result.
func evalPlus(tok lexer.Token, left, right Object) (Object, error) {
	switch l := left.(type) {
	case *Number:
		if r, ok := right.(*Number); ok {
			return &Number{Value: l.Value + r.Value}, nil
		}
	case *String:
		if r, ok := right.(*String); ok {
			return &String{Value: l.Value + r.Value}, nil
		}
	case *Array:
		if r, ok := right.(*Array); ok {
			elements := l.flatten(nil)
			elements = r.flatten(elements)
			return &Array{Elements: elements}, nil
		}
	}
	return nil, typeError("TYPE-0001", tok)
}

func typeError(code string, tok lexer.Token) *perrors.OysterError {
	return perrors.NewWithPosition(code, tok.Line, tok.Column, nil)
}

// evalCommandExpression stringifies the arguments, runs the program and
// records its exit status under $?.
func evalCommandExpression(node *ast.CommandExpression, env *Environment) (Object, error) {
	args := make([]string, 0, len(node.Arguments))
	for _, a := range node.Arguments {
		val, err := Eval(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val.Inspect())
	}

	path := node.Path.Value
	if env.Trace && env.Logger != nil {
		line := make([]interface{}, 0, len(args)+2)
		line = append(line, "+", path)
		for _, a := range args {
			line = append(line, a)
		}
		env.Logger.LogLine(line...)
	}

	result, err := env.Runner.Run(path, args)
	if err != nil {
		if perr, ok := err.(*perrors.OysterError); ok {
			return nil, perr.WithPosition(node.Path.Token.Line, node.Path.Token.Column)
		}
		return nil, err
	}

	env.Set(ExitStatusKey, &Number{Value: float64(result.ExitCode)})
	return result, nil
}
