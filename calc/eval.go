package calc

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Context is a context for evaluating expressions. It is not safe to use a
// Context concurrently.
type Context struct {
	stack []*big.Float
	nums  map[string]*big.Float
	names map[string]*big.Float
	units map[string]float64
	prec  uint
	err   error
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  *big.Float
	}
	varsopt map[string]*big.Float
	precopt uint
	unitopt struct {
		name  string
		scale float64
	}
	unitsopt map[string]float64
)

func (varopt) ctxOption()   {}
func (varsopt) ctxOption()  {}
func (precopt) ctxOption()  {}
func (unitopt) ctxOption()  {}
func (unitsopt) ctxOption() {}

// SetVar sets the value of a variable in the context.
func SetVar(name string, val *big.Float) ContextOption {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the context.
func SetVars(vars map[string]*big.Float) ContextOption {
	return varsopt(vars)
}

// Prec sets the precision of calculations.
func Prec(prec uint) ContextOption {
	return precopt(prec)
}

// SetUnit defines or redefines a unit suffix as scale times the SI base unit.
// Units set on a context take priority over every default unit, including
// prefixed ones.
func SetUnit(name string, scale float64) ContextOption {
	return unitopt{name, scale}
}

// SetUnits defines or redefines any number of unit suffixes.
func SetUnits(units map[string]float64) ContextOption {
	return unitsopt(units)
}

// NewContext creates a new evaluation context. If no precision is given, the
// default is 64.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{nums: make(map[string]*big.Float), prec: 64}
	return ctx.Clone(opts...)
}

// Eval evaluates an expression and returns the result. If an error occurs,
// e.g. a missing variable definition, an unknown unit, or an argument to a
// function outside the function's domain, then the result is nil and ctx.Err
// returns the error.
func (ctx *Context) Eval(e *Expr) *big.Float {
	switch len(ctx.stack) {
	case 0: // do nothing
	case 1:
		ctx.stack[0] = new(big.Float).SetPrec(ctx.prec)
		ctx.stack = ctx.stack[:0]
	default:
		panic("calc: Eval during Eval")
	}
	err := e.n.eval(ctx)
	ctx.err = err
	if err != nil {
		// Leave the context ready for another expression.
		ctx.stack = ctx.stack[:0]
		return nil
	}
	return ctx.Result()
}

// Result returns the result obtained after evaluating an expression. Panics if
// ctx has not been used to evaluate an expression. Returns nil if an error
// occurred during evaluation.
func (ctx *Context) Result() *big.Float {
	if ctx.err != nil {
		return nil
	}
	switch len(ctx.stack) {
	case 0:
		panic("calc: Context.Result called before evaluating any expression")
	case 1:
		return ctx.stack[0]
	default:
		panic("calc: inconsistent stack: " + strconv.Itoa(len(ctx.stack)) + " items (bad AST?)")
	}
}

// Err returns the error that occurred while evaluating the last expression
// with ctx, if any.
func (ctx *Context) Err() error {
	return ctx.err
}

// Set sets the value of a variable. Returns ctx for chaining. Calling Set
// while the context is being used to evaluate an expression panics.
func (ctx *Context) Set(name string, value *big.Float) *Context {
	if len(ctx.stack) > 1 {
		panic("calc: Set on in-use context")
	}
	if ctx.names == nil {
		ctx.names = make(map[string]*big.Float)
	}
	ctx.names[name] = new(big.Float).SetPrec(ctx.prec).Set(value)
	return ctx
}

// Lookup returns a copy of the value of a variable. If there is no such
// variable in the context, then the result is nil.
func (ctx *Context) Lookup(name string) *big.Float {
	v := ctx.names[name]
	if v == nil {
		return nil
	}
	return new(big.Float).Copy(v)
}

// Prec returns the precision to which values are computed in the context.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

// Unit returns the factor that converts a quantity in unit to SI base units,
// using units set on the context before the defaults.
func (ctx *Context) Unit(unit string) (float64, bool) {
	return scaleOf(ctx.units, unit)
}

// Clone creates a copy of a context and applies options to it. The returned
// context has no Result and is safe to use to evaluate an expression.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{
		stack: make([]*big.Float, 0, cap(ctx.stack)),
		nums:  make(map[string]*big.Float, len(ctx.nums)),
		names: make(map[string]*big.Float, len(ctx.names)),
		prec:  ctx.prec,
	}
	// First, check for a precision setting. Loop backward so we apply the last
	// precision.
	for i := len(opts) - 1; i >= 0; i-- {
		if p, ok := opts[i].(precopt); ok {
			n.prec = uint(p)
			break
		}
	}
	// Copy numbers only if the new precision is no higher than the old, so
	// that we always use the precision we need.
	if n.prec <= ctx.prec {
		for k, v := range ctx.nums {
			n.nums[k] = new(big.Float).SetPrec(n.prec).Set(v)
		}
	}
	// Copy variables. (We always need a copy in case of Set.) If we have the
	// same precision, we can just copy pointers.
	if n.prec == ctx.prec {
		for name, val := range ctx.names {
			n.names[name] = val
		}
	} else {
		for name, val := range ctx.names {
			n.names[name] = new(big.Float).SetPrec(n.prec).Set(val)
		}
	}
	if len(ctx.units) > 0 {
		n.units = make(map[string]float64, len(ctx.units))
		for k, v := range ctx.units {
			n.units[k] = v
		}
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			n.names[opt.name] = new(big.Float).SetPrec(n.prec).Set(opt.val)
		case varsopt:
			for k, v := range opt {
				n.names[k] = new(big.Float).SetPrec(n.prec).Set(v)
			}
		case unitopt:
			n.setUnit(opt.name, opt.scale)
		case unitsopt:
			for k, v := range opt {
				n.setUnit(k, v)
			}
		case precopt:
			// Already done. Do nothing.
		default:
			panic("calc: unknown option type")
		}
	}
	return &n
}

func (ctx *Context) setUnit(name string, scale float64) {
	if ctx.units == nil {
		ctx.units = make(map[string]float64)
	}
	ctx.units[normunit(name)] = scale
}

// push ensures a settable value on the stack.
func (ctx *Context) push() *big.Float {
	if len(ctx.stack) < cap(ctx.stack) {
		ctx.stack = ctx.stack[:len(ctx.stack)+1]
		if ctx.stack[len(ctx.stack)-1] == nil {
			ctx.stack[len(ctx.stack)-1] = new(big.Float).SetPrec(ctx.prec)
		}
	} else {
		ctx.stack = append(ctx.stack, new(big.Float).SetPrec(ctx.prec))
	}
	return ctx.stack[len(ctx.stack)-1]
}

// pop removes the top from the stack and returns it. The returned value may be
// modified by future node evaluations.
func (ctx *Context) pop() *big.Float {
	r := ctx.stack[len(ctx.stack)-1]
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	return r
}

// top is a shortcut to get the top element of the stack.
func (ctx *Context) top() *big.Float {
	return ctx.stack[len(ctx.stack)-1]
}

// num gets a possibly cached number from its text. The lexer only produces
// decimal numerals, so the only possible parse failures are overflows.
func (ctx *Context) num(s string) *big.Float {
	if r := ctx.nums[s]; r != nil {
		return r
	}
	if ctx.prec == 53 {
		// big.Float.Parse does not always round decimal input correctly.
		if f, err := strconv.ParseFloat(s, 64); err == nil && f != 0 {
			r := new(big.Float).SetPrec(ctx.prec).SetFloat64(f)
			ctx.nums[s] = r
			return r
		}
	}
	r, _, err := new(big.Float).SetPrec(ctx.prec).Parse(s, 10)
	switch {
	case err == nil: // do nothing
	case err.Error() == "exponent overflow",
		strings.HasSuffix(err.Error(), ": value out of range"):
		// There isn't realistically any better way to detect this error.
		r = new(big.Float).SetInf(false)
	default:
		panic("calc: invalid number: " + s + " (" + err.Error() + ")")
	}
	ctx.nums[s] = r
	return r
}

// quantity pushes the value of a numeral scaled to SI base units.
func (ctx *Context) quantity(n *node) error {
	v := ctx.push().Set(ctx.num(n.name))
	if n.unit == "" {
		return nil
	}
	s, ok := ctx.Unit(n.unit)
	if !ok {
		return &UnitError{Unit: n.unit, Text: n.name + n.unit}
	}
	v.Mul(v, new(big.Float).SetPrec(ctx.prec).SetFloat64(s))
	return nil
}

// eval pushes the node's value to the context's stack.
func (n *node) eval(ctx *Context) error {
	switch n.kind {
	case nodeNum:
		return ctx.quantity(n)
	case nodeName:
		v := ctx.names[n.name]
		if v == nil {
			return &NameError{Name: n.name}
		}
		ctx.push().Set(v)
	case nodeCall:
		r := ctx.push()
		k := len(ctx.stack)
		for l := n.right; l != nil; l = l.right {
			if err := l.left.eval(ctx); err != nil {
				return err
			}
		}
		f := n.fn
		invoc := ctx.stack[k:len(ctx.stack):len(ctx.stack)]
		if err := f.Call(ctx, invoc, r); err != nil {
			if de, ok := err.(*DomainError); ok && de.Func == "" {
				de.Func = n.name
			}
			return err
		}
		ctx.stack = ctx.stack[:k]
	case nodeArg:
		panic("calc: eval on nodeArg")
	case nodeList:
		return &IndexError{Len: n.args()}
	case nodeIndex:
		if n.left.kind != nodeList {
			return &IndexError{Len: -1}
		}
		if err := n.right.eval(ctx); err != nil {
			return err
		}
		k := new(big.Float).Copy(ctx.pop())
		size := n.left.args()
		i, acc := k.Int64()
		if !k.IsInt() || acc != big.Exact || i < 0 || i >= int64(size) {
			return &IndexError{Index: k, Len: size}
		}
		l := n.left.right
		for ; i > 0; i-- {
			l = l.right
		}
		return l.left.eval(ctx)
	case nodeNeg:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		v := ctx.top()
		v.Neg(v)
	case nodeAdd:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		if err := n.right.eval(ctx); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.top()
		// Guard against inf - inf.
		if l.IsInf() && r.IsInf() && l.Signbit() != r.Signbit() {
			return &DomainError{X: new(big.Float).Copy(r), Func: "+"}
		}
		l.Add(l, r)
	case nodeSub:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		if err := n.right.eval(ctx); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.top()
		if l.IsInf() && r.IsInf() && l.Signbit() == r.Signbit() {
			return &DomainError{X: new(big.Float).Copy(r), Func: "-"}
		}
		l.Sub(l, r)
	case nodeMul:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		if err := n.right.eval(ctx); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.top()
		// Guard against 0 * inf.
		if l.Sign() == 0 && r.IsInf() || l.IsInf() && r.Sign() == 0 {
			return &DomainError{X: new(big.Float).Copy(r), Func: "*"}
		}
		l.Mul(l, r)
	case nodeDiv:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		if err := n.right.eval(ctx); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.top()
		// The host rejects division by zero, and inf/inf has no value.
		if r.Sign() == 0 || l.IsInf() && r.IsInf() {
			return &DomainError{X: new(big.Float).Copy(r), Arg: 2, Func: "/"}
		}
		l.Quo(l, r)
	case nodePow:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		if err := n.right.eval(ctx); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.top()
		if err := pow(l, r); err != nil {
			return err
		}
	case nodeNop:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
	default:
		panic("calc: invalid AST node " + n.kind.String())
	}
	return nil
}

// EvalString is a shortcut to parse an expression and return its result using
// the default functions.
func EvalString(src string, opts ...ContextOption) (*big.Float, error) {
	ctx := NewContext(opts...)
	a, err := Parse(src)
	if err != nil {
		return nil, err
	}
	ctx.Eval(a)
	return ctx.Result(), ctx.Err()
}

// NameError is an error from a lookup for a variable that is missing from the
// evaluation context.
type NameError struct {
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return "undefined variable: " + strconv.Quote(err.Name)
}

// IndexError is an error from indexing a vector, or from a vector where a
// scalar is needed.
type IndexError struct {
	// Index is the index that was out of range or not an integer. It is nil
	// if there was no index at all.
	Index *big.Float
	// Len is the length of the vector, or -1 if the indexed value was not a
	// vector.
	Len int
}

func (err *IndexError) Error() string {
	switch {
	case err.Len < 0:
		return "cannot index a scalar"
	case err.Index == nil:
		return "vector of length " + strconv.Itoa(err.Len) + " used as a scalar"
	default:
		return "index " + err.Index.String() + " out of range for vector of length " + strconv.Itoa(err.Len)
	}
}

// RangeError is an error for a result that has no finite, nonzero float64
// representation.
type RangeError struct {
	// X is the exact result.
	X *big.Float
}

func (err *RangeError) Error() string {
	return err.X.Text('g', 10) + " out of float64 range"
}

// ToFloat64 returns the float64 nearest to x. If x is infinite, overflows to an
// infinity, or is nonzero and underflows to zero, the error is a *RangeError.
func ToFloat64(x *big.Float) (float64, error) {
	f, _ := x.Float64()
	if math.IsInf(f, 0) || (f == 0 && x.Sign() != 0) {
		return f, &RangeError{X: x}
	}
	return f, nil
}
