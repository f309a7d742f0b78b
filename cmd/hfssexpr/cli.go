package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/zephyrtronium/hfssexpr"
)

// ExitError is an error carrying the process exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// config is the parsed command line.
type config struct {
	in     string
	vars   string
	design string
	given  [][2]string
	verb   string
	prec   uint
	lines  bool
	echo   bool
	expand bool
	level  slog.Level
	exprs  []string
}

// parseArgs processes command-line arguments. It reports whether the program
// should exit cleanly without doing anything.
func parseArgs(args []string, output io.Writer) (*config, bool, error) {
	var cfg config
	fs := flag.NewFlagSet("hfssexpr", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, `
hfssexpr - expand and evaluate HFSS-style parameter expressions.

Usage:
  hfssexpr [options] [EXPR ...]

Each EXPR is evaluated in turn. With no EXPR and no -in, expressions are read
from standard input.

Options:
`)
		fs.PrintDefaults()
	}

	given := func(s string) error {
		name, val, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("empty variable name in %q", s)
		}
		cfg.given = append(cfg.given, [2]string{name, strings.TrimSpace(val)})
		return nil
	}
	fs.StringVar(&cfg.in, "in", "", "input file, or - for stdin (default stdin if no args given)")
	fs.StringVar(&cfg.vars, "vars", "", "HCL file of project and design variables")
	fs.StringVar(&cfg.design, "design", "", "design in the -vars file to use (default the first)")
	fs.Func("given", "name=value variable definition (any number of times; overrides -vars)", given)
	fs.StringVar(&cfg.verb, "fmt", "%g", "result formatting string")
	prec := fs.Int("p", hfssexpr.DefaultPrec, "precision of calculations in bits")
	fs.BoolVar(&cfg.lines, "n", false, "treat separate input lines as separate expressions")
	fs.BoolVar(&cfg.echo, "echo", false, "print each expanded expression before its result")
	fs.BoolVar(&cfg.expand, "expand", false, "print expanded expressions without evaluating them")
	level := fs.String("log-level", "warn", "logging level: 'debug', 'info', 'warn', or 'error'")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if *prec <= 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("precision (%d) must be positive", *prec)}
	}
	cfg.prec = uint(*prec)
	if err := cfg.level.UnmarshalText([]byte(*level)); err != nil {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	cfg.exprs = fs.Args()
	slog.Debug("Arguments parsed successfully.", "exprs", len(cfg.exprs), "vars", cfg.vars)
	return &cfg, false, nil
}
