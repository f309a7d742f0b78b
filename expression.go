package hfssexpr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zephyrtronium/hfssexpr/calc"
)

// Expression is an immutable expression in the host's variable language.
// The zero value is the empty expression.
type Expression struct {
	form string
}

// Operand is any value that can be used as an operand of an Expression
// combinator. Go numbers are raw numerals. Strings are host expressions and
// are treated the same as Expressions.
type Operand interface {
	Expression | string | int | int32 | int64 | uint | float32 | float64
}

// New creates an Expression from a number, host expression text, or another
// Expression. Copying an Expression preserves its form exactly. Floats are
// written in their shortest representation, so infinities and NaN produce
// forms which the host cannot evaluate.
func New[T Operand](v T) Expression {
	s, _ := form(v)
	return Expression{form: s}
}

// String returns the form of the expression.
func (e Expression) String() string {
	return e.form
}

// MarshalText implements encoding.TextMarshaler.
func (e Expression) MarshalText() ([]byte, error) {
	return []byte(e.form), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Any text is accepted;
// the form is checked only when it is evaluated.
func (e *Expression) UnmarshalText(text []byte) error {
	e.form = string(text)
	return nil
}

// form gets the text of an operand and whether it is a raw numeral.
func form[T Operand](v T) (string, bool) {
	switch v := any(v).(type) {
	case Expression:
		return v.form, false
	case string:
		return v, false
	case int:
		return strconv.Itoa(v), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	default:
		panic("hfssexpr: unreachable operand type")
	}
}

// binary joins two operands with an operator. The left operand is grouped
// unless it is a raw numeral and the right is not. The right operand is
// grouped unless it is a nonnegative raw numeral.
func binary[L, R Operand](l L, op string, r R) Expression {
	ls, lraw := form(l)
	rs, rraw := form(r)
	var b strings.Builder
	b.Grow(len(ls) + len(rs) + len(op) + 6)
	if lraw && !rraw {
		b.WriteString(ls)
	} else {
		b.WriteByte('(')
		b.WriteString(ls)
		b.WriteByte(')')
	}
	b.WriteByte(' ')
	b.WriteString(op)
	b.WriteByte(' ')
	if rraw && !strings.HasPrefix(rs, "-") {
		b.WriteString(rs)
	} else {
		b.WriteByte('(')
		b.WriteString(rs)
		b.WriteByte(')')
	}
	return Expression{form: b.String()}
}

// Add returns l + r.
func Add[L, R Operand](l L, r R) Expression {
	return binary(l, "+", r)
}

// Sub returns l - r.
func Sub[L, R Operand](l L, r R) Expression {
	return binary(l, "-", r)
}

// Mul returns l * r.
func Mul[L, R Operand](l L, r R) Expression {
	return binary(l, "*", r)
}

// Div returns l / r. Division is always true division.
func Div[L, R Operand](l L, r R) Expression {
	return binary(l, "/", r)
}

// FloorDiv always fails with an error wrapping errors.ErrUnsupported. The host
// language has no integer division, and approximating it would silently change
// the meaning of the expression.
func FloorDiv[L, R Operand](l L, r R) (Expression, error) {
	ls, _ := form(l)
	rs, _ := form(r)
	return Expression{}, fmt.Errorf("floor division of %q by %q: %w", ls, rs, errors.ErrUnsupported)
}

// Neg returns -(x).
func Neg[T Operand](x T) Expression {
	s, _ := form(x)
	return Expression{form: "-(" + s + ")"}
}

// Index returns x[k], selecting one element of a vector expression. x is
// grouped if it is not already a closed operand.
func Index[T, K Operand](x T, k K) Expression {
	s, _ := form(x)
	ks, _ := form(k)
	if !calc.Closed(s) {
		s = "(" + s + ")"
	}
	return Expression{form: s + "[" + ks + "]"}
}

// Concat joins the forms of a and b with nothing between them. It has no
// arithmetic meaning; Concat(30, "mil") is the quantity "30mil".
func Concat[A, B Operand](a A, b B) Expression {
	as, _ := form(a)
	bs, _ := form(b)
	return Expression{form: as + bs}
}

// List returns the vector [items...].
func List[T Operand](items ...T) Expression {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range items {
		if i > 0 {
			b.WriteByte(',')
		}
		s, _ := form(v)
		b.WriteString(s)
	}
	b.WriteByte(']')
	return Expression{form: b.String()}
}
