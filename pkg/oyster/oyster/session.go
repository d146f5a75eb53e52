// Package oyster is the embedding API for the oyster shell language.
//
// A Session owns one environment for its whole life. Each Interpret call
// either succeeds and keeps its variable changes, or fails and leaves the
// environment exactly as it was.
//
//	s := oyster.NewSession()
//	out, err := s.Interpret("$a = 1 + 2\n$a * 2")
package oyster

import (
	"os"

	"github.com/sambeau/oyster/pkg/oyster/evaluator"
	"github.com/sambeau/oyster/pkg/oyster/lexer"
	"github.com/sambeau/oyster/pkg/oyster/parser"
)

// Option configures a Session
type Option func(*sessionConfig)

type sessionConfig struct {
	environ []string
	workDir string
	runner  evaluator.ProcessRunner
	logger  Logger
	trace   bool
}

// WithEnviron seeds the session from the given "KEY=value" pairs instead
// of the process environment.
func WithEnviron(environ []string) Option {
	return func(c *sessionConfig) { c.environ = environ }
}

// WithWorkDir sets the value of $PWD instead of the current directory.
func WithWorkDir(dir string) Option {
	return func(c *sessionConfig) { c.workDir = dir }
}

// WithRunner selects the process strategy. The default captures stdout.
func WithRunner(r evaluator.ProcessRunner) Option {
	return func(c *sessionConfig) { c.runner = r }
}

// WithLogger sets where trace lines go
func WithLogger(l Logger) Option {
	return func(c *sessionConfig) { c.logger = l }
}

// WithTrace logs each command before it runs
func WithTrace(on bool) Option {
	return func(c *sessionConfig) { c.trace = on }
}

// Session evaluates oyster programs against a persistent environment.
// It is not safe for concurrent use.
type Session struct {
	env *evaluator.Environment
}

// NewSession creates a session seeded from the host environment
func NewSession(opts ...Option) *Session {
	cfg := &sessionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.environ == nil {
		cfg.environ = os.Environ()
	}
	if cfg.workDir == "" {
		if wd, err := os.Getwd(); err == nil {
			cfg.workDir = wd
		}
	}

	env := evaluator.NewEnvironmentFrom(cfg.environ, cfg.workDir)
	if cfg.runner != nil {
		env.Runner = cfg.runner
	}
	if cfg.logger != nil {
		env.Logger = cfg.logger
	}
	env.Trace = cfg.trace

	return &Session{env: env}
}

// Interpret runs one line or block of statements and returns the displays
// of the statements that produced a value, joined by newlines.
func (s *Session) Interpret(input string) (string, error) {
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		return "", err
	}

	program, err := parser.Parse(tokens)
	if err != nil {
		return "", err
	}

	s.env.Begin()
	out, err := evaluator.EvalProgram(program, s.env)
	if err != nil {
		s.env.Rollback()
		return "", err
	}
	s.env.Commit()

	return out, nil
}

// Get returns the display of a variable (name without '$')
func (s *Session) Get(name string) (string, bool) {
	val, ok := s.env.Get(name)
	if !ok {
		return "", false
	}
	return val.Inspect(), true
}

// Vars returns the bound variable names in sorted order
func (s *Session) Vars() []string {
	return s.env.Keys()
}

// ExitStatus returns the exit code of the last command, if any has run
func (s *Session) ExitStatus() (int, bool) {
	val, ok := s.env.Get(evaluator.ExitStatusKey)
	if !ok {
		return 0, false
	}
	n, ok := val.(*evaluator.Number)
	if !ok {
		return 0, false
	}
	return int(n.Value), true
}

// WorkDir returns $PWD as seen by the session
func (s *Session) WorkDir() string {
	dir, _ := s.Get(evaluator.WorkDirKey)
	return dir
}

// Strategy names the process strategy in use
func (s *Session) Strategy() string {
	return s.env.Runner.Name()
}

// SetTrace turns command tracing on or off
func (s *Session) SetTrace(on bool) {
	s.env.Trace = on
}

// Tracing reports whether command tracing is on
func (s *Session) Tracing() bool {
	return s.env.Trace
}
