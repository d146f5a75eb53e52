package evaluator

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	perrors "github.com/sambeau/oyster/pkg/oyster/errors"
)

// Process strategy names accepted by RunnerByName
const (
	StrategyCapture = "capture"
	StrategyInherit = "inherit"
)

// ProcessRunner starts an external program and waits for it to exit.
// A non-zero exit status is not an error; failing to start the program is.
type ProcessRunner interface {
	Name() string
	Run(path string, args []string) (*ProcessResult, error)
}

// CaptureRunner collects the child's stdout into the result. Stdin and
// stderr are passed through.
type CaptureRunner struct {
	Stdin  io.Reader
	Stderr io.Writer
}

// NewCaptureRunner returns a CaptureRunner wired to the process's own stdin and stderr.
func NewCaptureRunner() *CaptureRunner {
	return &CaptureRunner{Stdin: os.Stdin, Stderr: os.Stderr}
}

func (r *CaptureRunner) Name() string { return StrategyCapture }

func (r *CaptureRunner) Run(path string, args []string) (*ProcessResult, error) {
	var stdout bytes.Buffer

	cmd := exec.Command(path, args...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = &stdout
	cmd.Stderr = r.Stderr

	code, err := exitStatus(cmd.Run())
	if err != nil {
		return nil, spawnError(path, err)
	}

	return &ProcessResult{
		Path:     path,
		Args:     args,
		ExitCode: code,
		Stdout:   stdout.String(),
		Captured: true,
	}, nil
}

// InheritRunner connects all three standard streams to the child, so
// interactive programs work. Output is not available to expressions.
type InheritRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewInheritRunner returns an InheritRunner wired to the process's own streams.
func NewInheritRunner() *InheritRunner {
	return &InheritRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *InheritRunner) Name() string { return StrategyInherit }

func (r *InheritRunner) Run(path string, args []string) (*ProcessResult, error) {
	cmd := exec.Command(path, args...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	code, err := exitStatus(cmd.Run())
	if err != nil {
		return nil, spawnError(path, err)
	}

	return &ProcessResult{Path: path, Args: args, ExitCode: code}, nil
}

// RunnerByName returns the runner for a strategy name.
func RunnerByName(name string) (ProcessRunner, error) {
	switch name {
	case StrategyCapture:
		return NewCaptureRunner(), nil
	case StrategyInherit:
		return NewInheritRunner(), nil
	}
	return nil, fmt.Errorf("unknown process strategy %q (want %q or %q)", name, StrategyCapture, StrategyInherit)
}

// exitStatus separates "ran and exited" from "could not run". A child
// killed by a signal reports -1.
func exitStatus(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, err
}

func spawnError(path string, err error) *perrors.OysterError {
	return perrors.New("PROC-0001", map[string]any{
		"Path":    path,
		"GoError": err.Error(),
	})
}
