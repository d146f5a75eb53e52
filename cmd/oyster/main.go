package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"git.sr.ht/~sircmpwn/getopt"

	"github.com/sambeau/oyster/config"
	"github.com/sambeau/oyster/pkg/oyster/evaluator"
	"github.com/sambeau/oyster/pkg/oyster/oyster"
	"github.com/sambeau/oyster/pkg/oyster/repl"
)

// Version is set at build time via -ldflags
var Version = "0.1.0-dev"

// errUsage is returned after the usage text has already been printed
var errUsage = errors.New("invalid arguments")

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// options collected from the command line
type options struct {
	code       string
	hasCode    bool
	configPath string
	trace      bool
	help       bool
	version    bool
	script     string
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	argv := append([]string{"oyster"}, args...)
	opts, optind, err := getopt.Getopts(argv, "e:f:xhV")
	if err != nil {
		fmt.Fprintf(stderr, "oyster: %v\n", err)
		printUsage(stderr)
		return nil, errUsage
	}

	o := &options{}
	for _, opt := range opts {
		switch opt.Option {
		case 'e':
			o.code = opt.Value
			o.hasCode = true
		case 'f':
			o.configPath = opt.Value
		case 'x':
			o.trace = true
		case 'h':
			o.help = true
		case 'V':
			o.version = true
		}
	}

	rest := argv[optind:]
	switch {
	case len(rest) > 1:
		fmt.Fprintf(stderr, "oyster: unexpected argument %q\n", rest[1])
		printUsage(stderr)
		return nil, errUsage
	case len(rest) == 1:
		if o.hasCode {
			fmt.Fprintln(stderr, "oyster: -e cannot be combined with a script")
			printUsage(stderr)
			return nil, errUsage
		}
		o.script = rest[0]
	}
	return o, nil
}

// run is the main entry point, kept free of globals so it can be tested
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) error {
	o, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	if o.help {
		printUsage(stdout)
		return nil
	}
	if o.version {
		fmt.Fprintf(stdout, "oyster version %s\n", Version)
		return nil
	}

	cfg, err := config.Load(o.configPath, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if o.trace {
		cfg.Trace = true
	}

	switch {
	case o.hasCode:
		return runSource(o.code, cfg, stdin, stdout, stderr)
	case o.script != "":
		src, err := os.ReadFile(o.script)
		if err != nil {
			return fmt.Errorf("reading script: %w", err)
		}
		return runSource(string(src), cfg, stdin, stdout, stderr)
	default:
		return runRepl(ctx, cfg, stdout, stderr, getenv)
	}
}

// runSource interprets a whole program at once. Command output is captured
// so it reaches stdout as part of the printed result.
func runSource(src string, cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) error {
	session := oyster.NewSession(
		oyster.WithRunner(&evaluator.CaptureRunner{Stdin: stdin, Stderr: stderr}),
		oyster.WithLogger(oyster.WriterLogger(stderr)),
		oyster.WithTrace(cfg.Trace),
	)

	result, err := session.Interpret(src)
	if err != nil {
		return err
	}
	if result != "" {
		fmt.Fprintln(stdout, result)
	}
	return nil
}

func runRepl(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, getenv func(string) string) error {
	// the line editor owns the terminal, so children share the real streams
	runner, err := evaluator.RunnerByName(cfg.Process)
	if err != nil {
		return err
	}

	session := oyster.NewSession(
		oyster.WithRunner(runner),
		oyster.WithLogger(oyster.WriterLogger(stderr)),
		oyster.WithTrace(cfg.Trace),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var updates <-chan *config.Config
	if cfg.Path != "" {
		w, err := config.NewWatcher(cfg.Path, getenv, stdout, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "[WATCH ERROR] %v\n", err)
		} else {
			defer w.Close()
			if err := w.Start(ctx); err == nil {
				updates = w.Updates()
			}
		}
	}

	repl.Start(stdout, stderr, repl.Options{
		Config:  cfg,
		Session: session,
		Updates: updates,
		Version: Version,
	})
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `oyster - a small shell language

Usage:
  oyster [options]            Start the interactive REPL
  oyster [options] script     Run a script file
  oyster [options] -e code    Evaluate code and print the result

Options:
  -e code    Evaluate code, print the result, exit non-zero on error
  -f path    Path to config file (default: auto-detect)
  -x         Trace each command before it runs
  -V         Show version
  -h         Show this help

Config Resolution:
  1. -f flag
  2. OYSTER_CONFIG environment variable
  3. ./oyster.yaml
  4. ~/.config/oyster/oyster.yaml

Examples:
  oyster -e '1 + 2 * 3'
  oyster -e '$n = (ls /tmp); $n'
  oyster -x deploy.oy

`)
}
