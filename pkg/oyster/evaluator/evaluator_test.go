package evaluator

import (
	"errors"
	"math"
	"testing"

	"github.com/sambeau/oyster/pkg/oyster/ast"
	perrors "github.com/sambeau/oyster/pkg/oyster/errors"
	"github.com/sambeau/oyster/pkg/oyster/lexer"
	"github.com/sambeau/oyster/pkg/oyster/parser"
)

func testEnv() *Environment {
	env := NewEnvironment()
	env.Runner = &CaptureRunner{}
	return env
}

func parseProgram(t *testing.T, input string) ast.Program {
	t.Helper()
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize(%q) error = %v", input, err)
	}
	program, err := parser.Parse(tokens)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", input, err)
	}
	return program
}

func testEval(t *testing.T, env *Environment, input string) (string, error) {
	t.Helper()
	return EvalProgram(parseProgram(t, input), env)
}

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1", "1"},
		{"  1  \n ", "1"},
		{"1 + 3", "4"},
		{"2 * 3", "6"},
		{"1 / 4", "0.25"},
		{"(1 + 2)", "3"},
		{"1 + (2 + 3) + 4", "10"},
		{"1.0 / 2", "0.5"},
		{"1.0 / 2 / 2", "0.25"},
		{"1.0 / 2 / 2 / 2", "0.125"},
		{"1 - (2 + 7) + 4", "-4"},
		{"1 + 7 * (9 - 2) % 5 / 10", "1.4"},
		{"10 % 4", "2"},
		{"7.5 % 2", "1.5"},
		{"1 + 1\n2 + 2\n3 + 3", "2\n4\n6"},
		{"1; 2; 3", "1\n2\n3"},
		{`"oy" + "ster"`, "oyster"},
		{"[1, 2] + [3]", "[1, 2, 3]"},
		{"[1] + [[2, 3]]", "[1, 2, 3]"},
		{"[1, [2, 3]]", "[1, [2, 3]]"},
		{"[] + []", "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := testEval(t, testEnv(), tt.input)
			if err != nil {
				t.Fatalf("EvalProgram(%q) error = %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("EvalProgram(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDivisionByZero(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 / 0", "inf"},
		{"(0 - 1) / 0", "-inf"},
		{"0 / 0", "NaN"},
		{"5 % 0", "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := testEval(t, testEnv(), tt.input)
			if err != nil {
				t.Fatalf("EvalProgram(%q) error = %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("EvalProgram(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestVariables(t *testing.T) {
	env := testEnv()

	got, err := testEval(t, env, "$a = 1 + 2")
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("assignment displayed %q, want empty", got)
	}

	got, err = testEval(t, env, "$a")
	if err != nil {
		t.Fatal(err)
	}
	if got != "3" {
		t.Errorf("$a = %q, want 3", got)
	}

	got, err = testEval(t, env, "$undefined")
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("$undefined = %q, want empty", got)
	}

	got, err = testEval(t, env, "$b = $a * 2; $a = 0\n$a + $b")
	if err != nil {
		t.Fatal(err)
	}
	if got != "6" {
		t.Errorf("got %q, want 6", got)
	}
}

func TestVariableSharesStoredValue(t *testing.T) {
	env := testEnv()
	if _, err := testEval(t, env, "$xs = [1, 2]\n$ys = $xs + [3]"); err != nil {
		t.Fatal(err)
	}
	xs, _ := env.Get("xs")
	if xs.Inspect() != "[1, 2]" {
		t.Errorf("$xs changed to %s", xs.Inspect())
	}
}

func TestTypeErrors(t *testing.T) {
	tests := []struct {
		input   string
		code    string
		message string
	}{
		{`1 + "x"`, "TYPE-0001", "can only add values of the same type"},
		{`[1] + 1`, "TYPE-0001", "can only add values of the same type"},
		{`"a" - "b"`, "TYPE-0002", "can only subtract numbers"},
		{`"a" * 2`, "TYPE-0003", "can only multiply numbers"},
		{`[1] / 2`, "TYPE-0004", "can only divide numbers"},
		{`$nope % 2`, "TYPE-0005", "can only mod numbers"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := testEval(t, testEnv(), tt.input)
			if err == nil {
				t.Fatalf("EvalProgram(%q) expected error", tt.input)
			}
			var perr *perrors.OysterError
			if !errors.As(err, &perr) {
				t.Fatalf("error %T is not an OysterError", err)
			}
			if perr.Class != perrors.ClassType {
				t.Errorf("Class = %v, want type", perr.Class)
			}
			if perr.Code != tt.code {
				t.Errorf("Code = %q, want %q", perr.Code, tt.code)
			}
			if perr.Message != tt.message {
				t.Errorf("Message = %q, want %q", perr.Message, tt.message)
			}
			if perr.Line != 1 || perr.Column == 0 {
				t.Errorf("position = %d:%d, want the operator position", perr.Line, perr.Column)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{4, "4"},
		{0.25, "0.25"},
		{1.4, "1.4"},
		{-4, "-4"},
		{1e21, "1000000000000000000000"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "NaN"},
	}

	for _, tt := range tests {
		if got := formatNumber(tt.value); got != tt.expected {
			t.Errorf("formatNumber(%v) = %q, want %q", tt.value, got, tt.expected)
		}
	}
}

func TestProcessResultInspect(t *testing.T) {
	captured := &ProcessResult{Stdout: "a\nb\n\n", Captured: true}
	if got := captured.Inspect(); got != "a\nb" {
		t.Errorf("captured Inspect() = %q, want %q", got, "a\nb")
	}

	inherited := &ProcessResult{ExitCode: 3}
	if got := inherited.Inspect(); got != "3" {
		t.Errorf("inherited Inspect() = %q, want 3", got)
	}
}
