package hfssexpr

import (
	"log/slog"
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/zephyrtronium/hfssexpr/calc"
)

// DefaultMaxDepth is the default limit on nested variable definitions.
const DefaultMaxDepth = 64

// DefaultPrec is the default precision of evaluation in bits. It matches the
// float64 mantissa, so that each operation rounds the way float64 arithmetic
// does.
const DefaultPrec = 53

// constants are the builtin physical constants, which are resolved without
// consulting the Lookup.
var constants = map[string]string{
	"c0": "299792458",        // speed of light in vacuum, m/s
	"e0": "8.8541878128e-12", // vacuum permittivity, F/m
	"u0": "1.25663706212e-6", // vacuum permeability, H/m
	"pi": strconv.FormatFloat(math.Pi, 'g', -1, 64),
}

// Resolver expands and evaluates expressions against a variable namespace.
// A Resolver is safe for concurrent use if its Lookup is.
type Resolver struct {
	lookup   Lookup
	maxDepth int
	log      *slog.Logger
	consts   map[string]string
	evalopts []calc.ContextOption
}

// Option is an option for a Resolver.
type Option interface {
	resolverOption(*Resolver)
}

type (
	depthopt  int
	loggeropt struct{ l *slog.Logger }
	constopt  struct {
		name  string
		value string
	}
	evalopt []calc.ContextOption
)

func (o depthopt) resolverOption(r *Resolver)  { r.maxDepth = int(o) }
func (o loggeropt) resolverOption(r *Resolver) { r.log = o.l }
func (o constopt) resolverOption(r *Resolver)  { r.consts[o.name] = o.value }
func (o evalopt) resolverOption(r *Resolver)   { r.evalopts = append(r.evalopts, o...) }

// MaxDepth limits how deeply variable definitions may nest. Values less than
// 1 are treated as 1.
func MaxDepth(n int) Option {
	return depthopt(max(n, 1))
}

// WithLogger sets the logger which receives a debug record for each variable
// and constant the Resolver substitutes. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return loggeropt{l}
}

// WithConstant adds or overrides a builtin constant. Constants take priority
// over variables of the same name.
func WithConstant(name string, value float64) Option {
	s := strconv.FormatFloat(value, 'g', -1, 64)
	if value < 0 {
		s = "(" + s + ")"
	}
	return constopt{name, s}
}

// EvalOptions sets options for the calc contexts used to evaluate expanded
// expressions, such as precision or additional units. The default precision
// is DefaultPrec.
func EvalOptions(opts ...calc.ContextOption) Option {
	return evalopt(opts)
}

// NewResolver creates a Resolver that finds variables with lookup. If lookup
// is nil, no variables are defined.
func NewResolver(lookup Lookup, opts ...Option) *Resolver {
	if lookup == nil {
		lookup = none
	}
	r := Resolver{
		lookup:   lookup,
		maxDepth: DefaultMaxDepth,
		log:      slog.Default(),
		consts:   make(map[string]string, len(constants)),
		evalopts: []calc.ContextOption{calc.Prec(DefaultPrec)},
	}
	for k, v := range constants {
		r.consts[k] = v
	}
	for _, opt := range opts {
		if opt != nil {
			opt.resolverOption(&r)
		}
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	return &r
}

// Expand replaces every variable and constant in e with its definition,
// recursively, returning literal host expression text. Identifiers directly
// followed by an argument list are function calls and are left as they are.
// Text between identifiers is copied unchanged, so Expand returns an
// expression without identifiers exactly as given.
//
// A definition substituted inside a larger expression is parenthesized unless
// it expands to a single operand, so that it keeps its meaning wherever it
// appears. A variable that makes up the whole of e is substituted bare.
func (r *Resolver) Expand(e Expression) (string, error) {
	x := expansion{r: r, memo: make(map[string]string)}
	return x.expand(e.form)
}

// Resolve expands and evaluates e, returning both the expanded text and its
// value in SI base units. Each variable is looked up once.
func (r *Resolver) Resolve(e Expression) (string, *big.Float, error) {
	src, err := r.Expand(e)
	if err != nil {
		return "", nil, err
	}
	a, err := calc.Parse(src)
	if err != nil {
		return src, nil, &EvalError{Expr: src, Err: err}
	}
	ctx := calc.NewContext(r.evalopts...)
	v := ctx.Eval(a)
	if err := ctx.Err(); err != nil {
		return src, nil, &EvalError{Expr: src, Err: err}
	}
	return src, v, nil
}

// Value expands and evaluates e, returning its value in SI base units.
func (r *Resolver) Value(e Expression) (*big.Float, error) {
	_, v, err := r.Resolve(e)
	return v, err
}

// Evaluate expands and evaluates e, returning its value in SI base units as
// the nearest float64. A value too large or too small in magnitude for a
// float64 is an *EvalError wrapping a *calc.RangeError.
func (r *Resolver) Evaluate(e Expression) (float64, error) {
	src, v, err := r.Resolve(e)
	if err != nil {
		return 0, err
	}
	f, err := calc.ToFloat64(v)
	if err != nil {
		return f, &EvalError{Expr: src, Err: err}
	}
	return f, nil
}

// Expand is a shortcut to expand e with a new Resolver using default options.
func Expand[T Operand](e T, lookup Lookup) (string, error) {
	return NewResolver(lookup).Expand(New(e))
}

// Evaluate is a shortcut to evaluate e with a new Resolver using default
// options.
func Evaluate[T Operand](e T, lookup Lookup) (float64, error) {
	return NewResolver(lookup).Evaluate(New(e))
}

// expansion is the state of a single call to Expand.
type expansion struct {
	r *Resolver
	// memo holds the expanded definition of each variable seen so far.
	memo map[string]string
	// chain is the stack of variables being expanded.
	chain []string
}

func (x *expansion) expand(src string) (string, error) {
	ids := calc.Idents(src)
	if len(ids) == 0 {
		return src, nil
	}
	var b strings.Builder
	last := 0
	for _, id := range ids {
		if id.Call {
			continue
		}
		sub, err := x.resolve(id.Name)
		if err != nil {
			return "", err
		}
		whole := strings.TrimSpace(src[:id.Off]) == "" && strings.TrimSpace(src[id.End:]) == ""
		if !whole && !calc.Closed(sub) {
			sub = "(" + sub + ")"
		}
		b.WriteString(src[last:id.Off])
		b.WriteString(sub)
		last = id.End
	}
	b.WriteString(src[last:])
	return b.String(), nil
}

// resolve gets the substitution text for one identifier.
func (x *expansion) resolve(name string) (string, error) {
	if v, ok := x.r.consts[name]; ok {
		x.r.log.Debug("substituted constant", "name", name, "value", v)
		return v, nil
	}
	if v, ok := x.memo[name]; ok {
		return v, nil
	}
	if k := slices.Index(x.chain, name); k >= 0 {
		chain := append(slices.Clone(x.chain[k:]), name)
		return "", &CycleError{Chain: chain}
	}
	if len(x.chain) >= x.r.maxDepth {
		chain := append(slices.Clone(x.chain), name)
		return "", &CycleError{Chain: chain, Limit: x.r.maxDepth}
	}
	scope := ScopeOf(name)
	def, err := x.r.lookup.LookupVariable(name, scope)
	if err != nil {
		return "", &VariableError{Name: name, Scope: scope, Err: err}
	}
	x.chain = append(x.chain, name)
	v, err := x.expand(def)
	x.chain = x.chain[:len(x.chain)-1]
	if err != nil {
		return "", err
	}
	v = strings.TrimSpace(v)
	x.memo[name] = v
	x.r.log.Debug("resolved variable", "name", name, "scope", scope, "definition", def, "value", v)
	return v, nil
}
