package calc

import (
	"errors"
	"math"
	"math/big"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// Func is a function from reals to reals. Functions may but generally should
// not look up variables. The function should set r to its result and should
// not use the value of r otherwise.
type Func interface {
	// Call evaluates the function. The function arguments are passed in invoc.
	// The function may but generally should not look up variables. The
	// function must set r to its result and should not use the value of r
	// otherwise. invoc has a length for which CanCall returned true. Call may
	// modify the elements of invoc.
	Call(ctx *Context, invoc []*big.Float, r *big.Float) error

	// CanCall returns whether the function can be called with n arguments.
	// The parser rejects calls with argument counts for which CanCall is
	// false. A function for which CanCall(0) is true may be written without
	// an argument list, as in "pi".
	CanCall(n int) bool
}

// globalfuncs are the functions of the host expression language that have
// no side effects.
var globalfuncs = map[string]Func{
	"exp": Monadic(bigfloat.Exp),
	"ln": Monadic(func(out, in *big.Float) *big.Float {
		if in.Sign() <= 0 {
			panic(big.ErrNaN{})
		}
		return bigfloat.Log(out, in)
	}),
	"log":  logfn{},
	"sqrt": Monadic((*big.Float).Sqrt),
	"abs":  Monadic((*big.Float).Abs),
	"sgn": Monadic(func(out, in *big.Float) *big.Float {
		return out.SetInt64(int64(in.Sign()))
	}),
	"pow": powfn{},
	"min": extremum(-1),
	"max": extremum(1),

	// trig, not yet implemented in dependencies
	"sin":   Float64(math.Sin),
	"cos":   Float64(math.Cos),
	"tan":   Float64(math.Tan),
	"asin":  Float64(math.Asin),
	"acos":  Float64(math.Acos),
	"atan":  Float64(math.Atan),
	"sinh":  Float64(math.Sinh),
	"cosh":  Float64(math.Cosh),
	"tanh":  Float64(math.Tanh),
	"atan2": atan2fn{},

	// constants
	"pi": Niladic(bigfloat.Pi),
}

type monadic struct {
	f func(out, in *big.Float) *big.Float
}

func (m monadic) Call(ctx *Context, invoc []*big.Float, r *big.Float) (err error) {
	in := invoc[0]
	x := new(big.Float).Copy(in)
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err = r.(error) // panic if not error
		if errors.As(err, new(*DomainError)) {
			return
		}
		if errors.As(err, new(big.ErrNaN)) {
			err = &DomainError{X: x, Arg: 1}
			return
		}
		panic(err)
	}()
	r.SetPrec(ctx.Prec())
	m.f(r, in)
	return nil
}

func (m monadic) CanCall(n int) bool {
	return n == 1
}

// Monadic wraps a function of one variable into a Func. f must set out to its
// result, to the precision of in; its return value is always ignored. If f is
// called on an argument outside f's domain, it should panic with an error of
// type big.ErrNaN, or that unwraps to it.
func Monadic(f func(out, in *big.Float) *big.Float) Func {
	return monadic{f}
}

type niladic struct {
	f func(out *big.Float) *big.Float
}

func (n niladic) Call(ctx *Context, invoc []*big.Float, r *big.Float) (err error) {
	r.SetPrec(ctx.Prec())
	n.f(r)
	return nil
}

func (n niladic) CanCall(k int) bool {
	return k == 0
}

// Niladic wraps a function of zero variables, generally a function which
// computes a constant, into a Func. f must set out to its result; its return
// value is always ignored. Unlike Monadic, the wrapped function is expected
// never to panic.
func Niladic(f func(out *big.Float) *big.Float) Func {
	return niladic{f}
}

type float64fn struct {
	f func(float64) float64
}

func (m float64fn) Call(ctx *Context, invoc []*big.Float, r *big.Float) error {
	x, _ := invoc[0].Float64()
	y := m.f(x)
	if math.IsNaN(y) {
		return &DomainError{X: new(big.Float).Copy(invoc[0]), Arg: 1}
	}
	r.SetPrec(ctx.Prec()).SetFloat64(y)
	return nil
}

func (m float64fn) CanCall(n int) bool {
	return n == 1
}

// Float64 wraps a function of one float64 into a Func. The argument is
// rounded to the nearest float64, so the result has at most 53 bits of
// precision regardless of the context's. A NaN result is reported as a
// DomainError.
func Float64(f func(float64) float64) Func {
	return float64fn{f}
}

// logfn is the common logarithm, or the logarithm to a given base with two
// arguments: log(8, 2) is 3.
type logfn struct{}

func (logfn) Call(ctx *Context, invoc []*big.Float, r *big.Float) error {
	prec := ctx.Prec()
	x := invoc[0]
	if x.Sign() <= 0 {
		return &DomainError{X: new(big.Float).Copy(x), Arg: 1}
	}
	b := big.NewFloat(10).SetPrec(prec)
	if len(invoc) == 2 {
		b = invoc[1]
		if b.Sign() <= 0 || b.Cmp(big.NewFloat(1)) == 0 {
			return &DomainError{X: new(big.Float).Copy(b), Arg: 2}
		}
	}
	r.SetPrec(prec)
	bigfloat.Log(r, x)
	lb := bigfloat.Log(new(big.Float).SetPrec(prec), b)
	r.Quo(r, lb)
	return nil
}

func (logfn) CanCall(n int) bool {
	return n == 1 || n == 2
}

type powfn struct{}

func (powfn) Call(ctx *Context, invoc []*big.Float, r *big.Float) error {
	r.SetPrec(ctx.Prec()).Set(invoc[0])
	return pow(r, invoc[1])
}

func (powfn) CanCall(n int) bool {
	return n == 2
}

type atan2fn struct{}

func (atan2fn) Call(ctx *Context, invoc []*big.Float, r *big.Float) error {
	y, _ := invoc[0].Float64()
	x, _ := invoc[1].Float64()
	r.SetPrec(ctx.Prec()).SetFloat64(math.Atan2(y, x))
	return nil
}

func (atan2fn) CanCall(n int) bool {
	return n == 2
}

// extremum is min when negative and max when positive. It takes any nonzero
// number of arguments.
type extremum int

func (e extremum) Call(ctx *Context, invoc []*big.Float, r *big.Float) error {
	m := invoc[0]
	for _, x := range invoc[1:] {
		if x.Cmp(m) == int(e) {
			m = x
		}
	}
	r.SetPrec(ctx.Prec()).Set(m)
	return nil
}

func (e extremum) CanCall(n int) bool {
	return n > 0
}

// maxIntPow bounds the integer exponents which pow computes by repeated
// squaring.
const maxIntPow = 1 << 20

// pow sets x to x^y. Negative bases are allowed only with integer exponents.
func pow(x, y *big.Float) error {
	if x.Sign() == 0 {
		switch y.Sign() {
		case 1:
			x.SetInt64(0)
		case 0:
			x.SetInt64(1)
		default:
			return &DomainError{X: new(big.Float).Copy(y), Arg: 2, Func: "^"}
		}
		return nil
	}
	if k, acc := y.Int64(); y.IsInt() && acc == big.Exact && -maxIntPow <= k && k <= maxIntPow {
		ipow(x, k)
		return nil
	}
	if x.Sign() < 0 {
		if !y.IsInt() {
			return &DomainError{X: new(big.Float).Copy(x), Arg: 1, Func: "^"}
		}
		k, _ := y.Int(nil)
		x.Neg(x)
		bigfloat.Pow(x, x, y)
		if k.Bit(0) == 1 {
			x.Neg(x)
		}
		return nil
	}
	bigfloat.Pow(x, x, y)
	return nil
}

// ipow sets x to x^k by repeated squaring.
func ipow(x *big.Float, k int64) {
	neg := k < 0
	if neg {
		k = -k
	}
	b := new(big.Float).SetPrec(x.Prec()).Set(x)
	x.SetInt64(1)
	for ; k > 0; k >>= 1 {
		if k&1 == 1 {
			x.Mul(x, b)
		}
		b.Mul(b, b)
	}
	if neg {
		x.Quo(new(big.Float).SetPrec(x.Prec()).SetInt64(1), x)
	}
}

// DomainError is an error returned when a function is called on arguments
// outside its domain.
type DomainError struct {
	// X is the out-of-domain argument.
	X *big.Float
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
	Func string
}

func (err *DomainError) Error() string {
	r := err.X.String() + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}
