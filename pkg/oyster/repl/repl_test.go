package repl

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/sambeau/oyster/config"
	"github.com/sambeau/oyster/pkg/oyster/evaluator"
	"github.com/sambeau/oyster/pkg/oyster/oyster"
)

func newTestRepl(t *testing.T) (*repl, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	session := oyster.NewSession(
		oyster.WithEnviron([]string{"HOME=/home/test"}),
		oyster.WithWorkDir("/src/oyster"),
		oyster.WithRunner(&evaluator.CaptureRunner{}),
	)
	cfg := config.Defaults()
	cfg.Color = false

	var out, errOut bytes.Buffer
	return newRepl(cfg, session, &out, &errOut), &out, &errOut
}

func TestPrompt(t *testing.T) {
	r, _, _ := newTestRepl(t)
	if got := r.prompt(); got != "🦪 /src/oyster>" {
		t.Errorf("prompt() = %q", got)
	}
}

func TestEvalPrintsResult(t *testing.T) {
	r, out, errOut := newTestRepl(t)

	r.eval("$a = 2")
	r.eval("$a * 21")

	if got := out.String(); got != "42\n" {
		t.Errorf("output = %q, want %q", got, "42\n")
	}
	if errOut.Len() != 0 {
		t.Errorf("unexpected error output %q", errOut.String())
	}
}

func TestEvalPrintsErrors(t *testing.T) {
	tests := []struct {
		input    string
		contains string
	}{
		{`1 + "x"`, "Runtime error"},
		{"1 +", "Parser error"},
		{"1 # 2", "Syntax error"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r, out, errOut := newTestRepl(t)
			r.eval(tt.input)
			if out.Len() != 0 {
				t.Errorf("unexpected output %q", out.String())
			}
			if !strings.Contains(errOut.String(), tt.contains) {
				t.Errorf("error output %q should contain %q", errOut.String(), tt.contains)
			}
		})
	}
}

func TestHandleCommand(t *testing.T) {
	tests := []struct {
		cmd      string
		contains []string
	}{
		{":help", []string{":env", ":status", "capture"}},
		{":env", []string{"$HOME = /home/test", "$PWD = /src/oyster"}},
		{":status", []string{"no command has run"}},
		{":bogus", []string{"Unknown command: :bogus"}},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			r, out, _ := newTestRepl(t)
			r.handleCommand(tt.cmd)
			for _, want := range tt.contains {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output %q should contain %q", out.String(), want)
				}
			}
		})
	}
}

func TestStatusAfterAssignment(t *testing.T) {
	r, out, _ := newTestRepl(t)
	r.eval("$? = 3")
	r.handleCommand(":status")
	if !strings.Contains(out.String(), "$? = 3") {
		t.Errorf("output = %q", out.String())
	}
}

func TestDrainUpdatesAppliesLatest(t *testing.T) {
	r, _, _ := newTestRepl(t)

	updates := make(chan *config.Config, 2)
	first := config.Defaults()
	first.Prompt = "first "
	second := config.Defaults()
	second.Prompt = "$ "
	second.Trace = true
	updates <- first
	updates <- second

	r.drainUpdates(updates)

	if got := r.prompt(); got != "$ /src/oyster>" {
		t.Errorf("prompt() = %q", got)
	}
	if !r.session.Tracing() {
		t.Error("trace from reloaded config was not applied")
	}

	// nothing pending must not block
	r.drainUpdates(updates)
	r.drainUpdates(nil)
}

func TestCompleteVariables(t *testing.T) {
	vars := []string{"HOME", "HOSTNAME", "PATH", "PWD"}

	tests := []struct {
		line     string
		expected []string
	}{
		{"echo $HO", []string{"echo $HOME", "echo $HOSTNAME"}},
		{"$P", []string{"$PATH", "$PWD"}},
		{"echo $", []string{"echo $HOME", "echo $HOSTNAME", "echo $PATH", "echo $PWD"}},
		{"echo $X", nil},
		{"echo hello", nil},
		{"echo $HOME ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := completeVariables(tt.line, vars)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("completeVariables(%q) = %q, want %q", tt.line, got, tt.expected)
			}
		})
	}
}

func TestNeedsMoreInput(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"1 + 2", false},
		{"(1 +", true},
		{"(1 +\n2)", false},
		{"[1, 2,", true},
		{"[1, [2, 3]]", false},
		{`echo "open`, true},
		{`echo "(" `, false},
		{"1 + 2)", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := needsMoreInput(tt.input); got != tt.expected {
				t.Errorf("needsMoreInput(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
