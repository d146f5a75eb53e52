package evaluator

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Reserved environment keys
const (
	ExitStatusKey = "?"   // exit code of the last command, read as $?
	WorkDirKey    = "PWD" // working directory at session start
)

// Logger interface for trace output
type Logger interface {
	Log(values ...interface{})
	LogLine(values ...interface{})
}

// defaultStderrLogger is the default logger that writes to stderr
type defaultStderrLogger struct{}

func (l *defaultStderrLogger) Log(values ...interface{}) {
	fmt.Fprint(os.Stderr, joinValues(values))
}

func (l *defaultStderrLogger) LogLine(values ...interface{}) {
	fmt.Fprintln(os.Stderr, joinValues(values))
}

func joinValues(values []interface{}) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}

// DefaultLogger is the default stderr logger
var DefaultLogger Logger = &defaultStderrLogger{}

// journalEntry remembers what a key held before the current call wrote it.
type journalEntry struct {
	value   Object
	existed bool
}

// Environment holds variable bindings for a session. Names are stored
// without the '$' sigil.
type Environment struct {
	store   map[string]Object
	journal map[string]journalEntry // nil outside Begin/Commit

	Logger Logger        // receives trace lines
	Runner ProcessRunner // how commands are executed
	Trace  bool          // log each command before running it
}

// NewEnvironment creates an empty environment that captures command output
func NewEnvironment() *Environment {
	return &Environment{
		store:  make(map[string]Object),
		Logger: DefaultLogger,
		Runner: NewCaptureRunner(),
	}
}

// NewEnvironmentFrom seeds an environment from "KEY=value" pairs (as
// returned by os.Environ) and records workDir under PWD.
func NewEnvironmentFrom(environ []string, workDir string) *Environment {
	env := NewEnvironment()
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		env.store[key] = &String{Value: value}
	}
	env.store[WorkDirKey] = &String{Value: workDir}
	return env
}

// Get retrieves a value from the environment
func (e *Environment) Get(name string) (Object, bool) {
	value, ok := e.store[name]
	return value, ok
}

// Set stores a value in the environment
func (e *Environment) Set(name string, val Object) Object {
	if e.journal != nil {
		if _, seen := e.journal[name]; !seen {
			old, existed := e.store[name]
			e.journal[name] = journalEntry{value: old, existed: existed}
		}
	}
	e.store[name] = val
	return val
}

// Keys returns the bound names in sorted order
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.store))
	for k := range e.store {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Begin starts recording writes so they can be undone with Rollback.
func (e *Environment) Begin() {
	e.journal = make(map[string]journalEntry)
}

// Commit keeps every write made since Begin.
func (e *Environment) Commit() {
	e.journal = nil
}

// Rollback restores every key written since Begin.
func (e *Environment) Rollback() {
	for name, entry := range e.journal {
		if entry.existed {
			e.store[name] = entry.value
		} else {
			delete(e.store, name)
		}
	}
	e.journal = nil
}
