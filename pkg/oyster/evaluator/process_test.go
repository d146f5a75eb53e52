package evaluator

import (
	"bytes"
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"testing"

	perrors "github.com/sambeau/oyster/pkg/oyster/errors"
)

func requireTool(t *testing.T, name string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("Skipping Unix-specific test on Windows")
	}
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not found in PATH", name)
	}
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Log(values ...interface{}) {
	l.lines = append(l.lines, joinValues(values))
}

func (l *recordingLogger) LogLine(values ...interface{}) {
	l.lines = append(l.lines, joinValues(values))
}

func TestCaptureCommand(t *testing.T) {
	requireTool(t, "echo")

	tests := []struct {
		input    string
		expected string
	}{
		{"echo hello", "hello"},
		{`echo "two words" -n`, "two words -n"},
		{"echo (1 + 2)", "3"},
		{"echo [1, 2]", "[1, 2]"},
		{"$x = 4\necho $x $x", "4 4"},
		{"echo hi\n$?", "hi\n0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			env := testEnv()
			got, err := testEval(t, env, tt.input)
			if err != nil {
				t.Fatalf("EvalProgram(%q) error = %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("EvalProgram(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestProcessResultIsNotAString(t *testing.T) {
	requireTool(t, "echo")

	_, err := testEval(t, testEnv(), "$out = echo hi\n$out + \"!\"")
	var perr *perrors.OysterError
	if !errors.As(err, &perr) || perr.Code != "TYPE-0001" {
		t.Errorf("error = %v, want TYPE-0001", err)
	}
}

func TestExitStatus(t *testing.T) {
	requireTool(t, "sh")

	tests := []struct {
		input    string
		expected string
	}{
		{`sh -c "exit 3"` + "\n$?", "3"},
		{`sh -c "exit 0"` + "\n$?", "0"},
		{`sh -c "kill -9 $$"` + "\n$?", "-1"},
		{`[(sh -c "exit 2"), $?]`, "[, 2]"},
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

func TestSpawnFailure(t *testing.T) {
	env := testEnv()
	_, err := testEval(t, env, "1\ndefinitely-not-a-real-program-oyster")
	if err == nil {
		t.Fatal("expected spawn error")
	}

	var perr *perrors.OysterError
	if !errors.As(err, &perr) {
		t.Fatalf("error %T is not an OysterError", err)
	}
	if perr.Class != perrors.ClassProcess || perr.Code != "PROC-0001" {
		t.Errorf("got %s %s, want process PROC-0001", perr.Class, perr.Code)
	}
	if perr.Line != 2 || perr.Column != 1 {
		t.Errorf("position = %d:%d, want 2:1", perr.Line, perr.Column)
	}
	if !strings.Contains(perr.Message, "definitely-not-a-real-program-oyster") {
		t.Errorf("message %q should name the program", perr.Message)
	}
	if _, ok := env.Get(ExitStatusKey); ok {
		t.Error("$? should not be set when the program never ran")
	}
}

func TestInheritRunner(t *testing.T) {
	requireTool(t, "echo")

	var stdout bytes.Buffer
	env := NewEnvironment()
	env.Runner = &InheritRunner{Stdout: &stdout}

	got, err := testEval(t, env, "echo inherited")
	if err != nil {
		t.Fatal(err)
	}
	if got != "0" {
		t.Errorf("display = %q, want the exit code", got)
	}
	if stdout.String() != "inherited\n" {
		t.Errorf("stdout = %q, want %q", stdout.String(), "inherited\n")
	}
}

func TestTraceLogsCommands(t *testing.T) {
	requireTool(t, "echo")

	logger := &recordingLogger{}
	env := testEnv()
	env.Logger = logger
	env.Trace = true

	if _, err := testEval(t, env, `echo -n "a b" 2`); err != nil {
		t.Fatal(err)
	}
	if len(logger.lines) != 1 || logger.lines[0] != "+ echo -n a b 2" {
		t.Errorf("trace = %q", logger.lines)
	}
}

func TestRunnerByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"capture", StrategyCapture, false},
		{"inherit", StrategyInherit, false},
		{"pipe", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner, err := RunnerByName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RunnerByName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err == nil && runner.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", runner.Name(), tt.want)
			}
		})
	}
}
