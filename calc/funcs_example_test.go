package calc_test

import (
	"fmt"
	"math/big"

	"github.com/zephyrtronium/hfssexpr/calc"
)

type nargin struct{}

func (nargin) CanCall(n int) bool {
	return true
}

func (nargin) Call(ctx *calc.Context, invoc []*big.Float, r *big.Float) error {
	r.SetInt64(int64(len(invoc)))
	return nil
}

func ExampleFunc() {
	ctx := calc.NewContext(calc.Prec(32))

	a, _ := calc.Parse("nargin", calc.ParseFunc("nargin", nargin{}))
	b, _ := calc.Parse("nargin(100)", calc.ParseFunc("nargin", nargin{}))
	c, _ := calc.Parse("nargin(3, 2, 1)", calc.ParseFunc("nargin", nargin{}))
	fmt.Println(ctx.Eval(a), a)
	fmt.Println(ctx.Eval(b), b)
	fmt.Println(ctx.Eval(c), c)

	// Output:
	// 0 (nargin())
	// 1 (nargin((100)))
	// 3 (nargin((3), (2), (1)))
}
