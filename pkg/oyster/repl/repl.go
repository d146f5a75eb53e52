package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/sambeau/oyster/config"
	perrors "github.com/sambeau/oyster/pkg/oyster/errors"
	"github.com/sambeau/oyster/pkg/oyster/oyster"
)

const CONTINUATION_PROMPT = ".. "

const OYSTER_LOGO = `
█▀█ █▄█ █▀ ▀█▀ █▀▀ █▀█
█▄█ ░█░ ▄█ ░█░ ██▄ █▀▄ `

// Options configures a REPL run
type Options struct {
	Config  *config.Config
	Session *oyster.Session
	Updates <-chan *config.Config // reloaded configs, may be nil
	Version string
}

// repl holds the state shared by the loop and its helpers
type repl struct {
	cfg      *config.Config
	session  *oyster.Session
	out      io.Writer
	errOut   io.Writer
	errColor *color.Color
}

func newRepl(cfg *config.Config, session *oyster.Session, out, errOut io.Writer) *repl {
	r := &repl{
		session: session,
		out:     out,
		errOut:  errOut,
	}
	r.apply(cfg)
	return r
}

// apply takes prompt, trace and color from cfg. The process strategy is
// fixed for the life of the session.
func (r *repl) apply(cfg *config.Config) {
	r.cfg = cfg
	r.session.SetTrace(cfg.Trace)
	r.errColor = color.New(color.FgRed)
	if !cfg.Color {
		r.errColor.DisableColor()
	}
}

// Start runs the REPL with line editing and history until exit or Ctrl+D
func Start(out, errOut io.Writer, opts Options) {
	r := newRepl(opts.Config, opts.Session, out, errOut)

	line := liner.NewLiner()
	defer line.Close()

	// Enable Ctrl+C to abort current line
	line.SetCtrlCAborts(true)

	line.SetCompleter(func(input string) []string {
		return completeVariables(input, r.session.Vars())
	})

	historyFile := r.cfg.HistoryPath()
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintf(out, "%s", OYSTER_LOGO)
	fmt.Fprintln(out, "v", opts.Version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Type ':help' for REPL commands")
	fmt.Fprintln(out, "")

	var inputBuffer strings.Builder

	for {
		r.drainUpdates(opts.Updates)

		currentPrompt := r.prompt()
		if inputBuffer.Len() > 0 {
			currentPrompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(currentPrompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				// Ctrl+C - clear any buffered input and return to main prompt
				if inputBuffer.Len() > 0 {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				inputBuffer.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(errOut, "Error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if inputBuffer.Len() == 0 && (trimmed == "exit" || trimmed == "quit") {
			fmt.Fprintln(out, "Goodbye!")
			return
		}

		if inputBuffer.Len() == 0 && strings.HasPrefix(trimmed, ":") {
			r.handleCommand(trimmed)
			continue
		}

		if inputBuffer.Len() == 0 && trimmed == "" {
			continue
		}

		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString("\n")
		}
		inputBuffer.WriteString(input)

		fullInput := inputBuffer.String()
		if needsMoreInput(fullInput) {
			continue
		}

		line.AppendHistory(fullInput)
		r.eval(fullInput)
		inputBuffer.Reset()
	}
}

// prompt is the configured prefix followed by $PWD and ">"
func (r *repl) prompt() string {
	return r.cfg.Prompt + r.session.WorkDir() + ">"
}

// drainUpdates applies the newest reloaded config without blocking
func (r *repl) drainUpdates(updates <-chan *config.Config) {
	if updates == nil {
		return
	}
	for {
		select {
		case cfg, ok := <-updates:
			if !ok {
				return
			}
			r.apply(cfg)
		default:
			return
		}
	}
}

// eval interprets one complete input and prints the result or the error
func (r *repl) eval(input string) {
	result, err := r.session.Interpret(input)
	if err != nil {
		r.printError(err)
		return
	}
	if result != "" {
		io.WriteString(r.out, result)
		io.WriteString(r.out, "\n")
	}
}

func (r *repl) printError(err error) {
	var perr *perrors.OysterError
	if errors.As(err, &perr) {
		r.errColor.Fprintln(r.errOut, perr.PrettyString())
		return
	}
	r.errColor.Fprintln(r.errOut, err.Error())
}

// handleCommand handles REPL meta-commands that start with ':'
func (r *repl) handleCommand(cmd string) {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(r.out, "REPL Commands:")
		fmt.Fprintln(r.out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(r.out, "  :env            Show variables")
		fmt.Fprintln(r.out, "  :status         Show the exit code of the last command")
		fmt.Fprintln(r.out, "  exit, quit      Exit the REPL")
		fmt.Fprintln(r.out, "")
		fmt.Fprintln(r.out, "Statements end at a newline or ';'. Unclosed ( [ or \" continue on the next line.")
		fmt.Fprintf(r.out, "Commands run with the %q process strategy.\n", r.session.Strategy())

	case ":env":
		r.printEnvironment()

	case ":status":
		if code, ok := r.session.ExitStatus(); ok {
			fmt.Fprintf(r.out, "$? = %d\n", code)
		} else {
			fmt.Fprintln(r.out, "(no command has run)")
		}

	default:
		fmt.Fprintf(r.out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}

// printEnvironment lists every variable, truncating long values
func (r *repl) printEnvironment() {
	for _, name := range r.session.Vars() {
		value, _ := r.session.Get(name)
		if i := strings.IndexByte(value, '\n'); i >= 0 {
			value = value[:i] + " ..."
		} else if len(value) > 60 {
			value = value[:57] + "..."
		}
		fmt.Fprintf(r.out, "  $%s = %s\n", name, value)
	}
}

// completeVariables completes a trailing "$name" against the bound
// variables, returning whole candidate lines as liner expects.
func completeVariables(line string, vars []string) []string {
	i := strings.LastIndexByte(line, '$')
	if i < 0 {
		return nil
	}
	partial := line[i+1:]
	if strings.ContainsAny(partial, " \t;()[],\"") {
		return nil
	}

	var matches []string
	for _, name := range vars {
		if strings.HasPrefix(name, partial) {
			matches = append(matches, line[:i+1]+name)
		}
	}
	return matches
}

// needsMoreInput reports whether input has an unclosed parenthesis,
// bracket or string.
func needsMoreInput(input string) bool {
	parenCount := 0
	bracketCount := 0
	inString := false

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '(':
			parenCount++
		case ')':
			parenCount--
		case '[':
			bracketCount++
		case ']':
			bracketCount--
		}
	}

	return inString || parenCount > 0 || bracketCount > 0
}
