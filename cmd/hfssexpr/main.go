package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/zephyrtronium/hfssexpr"
	"github.com/zephyrtronium/hfssexpr/calc"
	"github.com/zephyrtronium/hfssexpr/varfile"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if err := run(os.Stdin, os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*ExitError); ok {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(stdin io.Reader, out io.Writer, args []string) error {
	cfg, exit, err := parseArgs(args, out)
	if err != nil {
		return err
	}
	if exit {
		return nil
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.level}))

	vars, err := loadVars(cfg)
	if err != nil {
		return err
	}
	srcs, err := inputs(cfg, stdin)
	if err != nil {
		return err
	}

	r := hfssexpr.NewResolver(vars,
		hfssexpr.WithLogger(log),
		hfssexpr.EvalOptions(calc.Prec(cfg.prec)),
	)
	verb := cfg.verb + "\n"
	failed := 0
	for _, src := range srcs {
		e := hfssexpr.New(src)
		if cfg.expand {
			s, err := r.Expand(e)
			if err != nil {
				fmt.Fprintln(out, err)
				failed++
				continue
			}
			fmt.Fprintln(out, s)
			continue
		}
		s, v, err := r.Resolve(e)
		if cfg.echo && s != "" {
			fmt.Fprintf(out, "%s : ", s)
		}
		if err != nil {
			fmt.Fprintln(out, err)
			failed++
			continue
		}
		fmt.Fprintf(out, verb, v)
	}
	if failed > 0 {
		return &ExitError{Code: 1, Message: fmt.Sprintf("%d of %d expressions failed", failed, len(srcs))}
	}
	return nil
}

// loadVars builds the variable namespace from the -vars file and -given
// definitions.
func loadVars(cfg *config) (*hfssexpr.Vars, error) {
	vars := new(hfssexpr.Vars)
	if cfg.vars != "" {
		f, err := varfile.ParseFile(cfg.vars)
		if err != nil {
			return nil, err
		}
		vars, err = f.Vars(cfg.design)
		if err != nil {
			return nil, err
		}
	} else if cfg.design != "" {
		return nil, &ExitError{Code: 2, Message: "-design requires -vars"}
	}
	for _, d := range cfg.given {
		vars.Set(d[0], hfssexpr.New(d[1]))
	}
	return vars, nil
}

// inputs collects the source text of each expression to evaluate.
func inputs(cfg *config, stdin io.Reader) ([]string, error) {
	var srcs []string
	var in io.Reader
	switch {
	case cfg.in != "" && cfg.in != "-":
		f, err := os.Open(cfg.in)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	case cfg.in == "-", len(cfg.exprs) == 0:
		in = stdin
	}
	if in != nil {
		if cfg.lines {
			sc := bufio.NewScanner(in)
			for sc.Scan() {
				if s := strings.TrimSpace(sc.Text()); s != "" {
					srcs = append(srcs, s)
				}
			}
			if err := sc.Err(); err != nil {
				return nil, err
			}
		} else {
			b, err := io.ReadAll(in)
			if err != nil {
				return nil, err
			}
			if s := strings.TrimSpace(string(b)); s != "" {
				srcs = append(srcs, s)
			}
		}
	}
	return append(srcs, cfg.exprs...), nil
}
