package hfssexpr_test

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/hfssexpr"
)

type X = hfssexpr.Expression

func TestNewForms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		got  X
		want string
	}{
		{"int", hfssexpr.New(5), "5"},
		{"negint", hfssexpr.New(-5), "-5"},
		{"int32", hfssexpr.New(int32(7)), "7"},
		{"int64", hfssexpr.New(int64(-3)), "-3"},
		{"uint", hfssexpr.New(uint(9)), "9"},
		{"float", hfssexpr.New(0.5), "0.5"},
		{"smallfloat", hfssexpr.New(1e-7), "1e-07"},
		{"float32", hfssexpr.New(float32(0.1)), "0.1"},
		{"string", hfssexpr.New("a + b"), "a + b"},
		{"quantity", hfssexpr.New("30mils"), "30mils"},
		{"zero", X{}, ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.got.String(), c.name)
	}
}

func TestNewCopyPreservesForm(t *testing.T) {
	t.Parallel()

	for _, src := range []string{"x", "(a) + (b)", "  spaced  ", "$p*2", ""} {
		x := hfssexpr.New(src)
		assert.Equal(t, x.String(), hfssexpr.New(x).String())
		assert.Equal(t, x, hfssexpr.New(hfssexpr.New(x)))
	}
}

func TestCombinatorForms(t *testing.T) {
	t.Parallel()

	a, b, c := hfssexpr.New("a"), hfssexpr.New("b"), hfssexpr.New("c")
	cases := []struct {
		name string
		got  X
		want string
	}{
		{"expr-raw", hfssexpr.Add(a, 3), "(a) + 3"},
		{"raw-expr", hfssexpr.Add(3, a), "3 + (a)"},
		{"expr-expr", hfssexpr.Add(a, b), "(a) + (b)"},
		{"raw-raw", hfssexpr.Add(5, 3), "(5) + 3"},
		{"new-raw", hfssexpr.Add(hfssexpr.New(5), 3), "(5) + 3"},
		{"expr-string", hfssexpr.Sub(a, "1mm"), "(a) - (1mm)"},
		{"string-expr", hfssexpr.Sub("b+c", a), "(b+c) - (a)"},
		{"expr-negraw", hfssexpr.Sub(a, -2), "(a) - (-2)"},
		{"negraw-expr", hfssexpr.Mul(-2, a), "-2 * (a)"},
		{"div", hfssexpr.Div(a, 2), "(a) / 2"},
		{"rdiv", hfssexpr.Div(2, a), "2 / (a)"},
		{"sum-times", hfssexpr.Mul(hfssexpr.Add(a, b), c), "((a) + (b)) * (c)"},
		{"times-sum", hfssexpr.Mul(c, hfssexpr.Add(a, b)), "(c) * ((a) + (b))"},
		{"neg", hfssexpr.Neg(hfssexpr.Add(a, b)), "-((a) + (b))"},
		{"negraw", hfssexpr.Neg(2.5), "-(2.5)"},
		{"index", hfssexpr.Index(hfssexpr.New("v"), 1), "v[1]"},
		{"index-expr", hfssexpr.Index(hfssexpr.New("v"), hfssexpr.Add(a, 1)), "v[(a) + 1]"},
		{"index-compound", hfssexpr.Index(hfssexpr.New("u+v"), 0), "(u+v)[0]"},
		{"index-list", hfssexpr.Index(hfssexpr.List(1, 2), 0), "[1,2][0]"},
		{"concat", hfssexpr.Concat(30, "mil"), "30mil"},
		{"rconcat", hfssexpr.Concat("$", a), "$a"},
		{"list", hfssexpr.List("1mm", "2mm", "3mm"), "[1mm,2mm,3mm]"},
		{"list-exprs", hfssexpr.List(a, hfssexpr.Add(b, 1)), "[a,(b) + 1]"},
		{"list-empty", hfssexpr.List[float64](), "[]"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.got.String(), c.name)
	}
}

func TestFloorDivUnsupported(t *testing.T) {
	t.Parallel()

	_, err := hfssexpr.FloorDiv(hfssexpr.New("a"), 2)
	require.ErrorIs(t, err, errors.ErrUnsupported)
	_, err = hfssexpr.FloorDiv(7, hfssexpr.New(2))
	require.ErrorIs(t, err, errors.ErrUnsupported)
	_, err = hfssexpr.FloorDiv(hfssexpr.New(0), hfssexpr.New(1))
	require.ErrorIs(t, err, errors.ErrUnsupported)
	_, err = hfssexpr.FloorDiv(math.Inf(1), "x")
	require.ErrorIs(t, err, errors.ErrUnsupported)
}

func TestExpressionText(t *testing.T) {
	t.Parallel()

	type params struct {
		Height X `json:"height"`
	}
	b, err := json.Marshal(params{Height: hfssexpr.Add(hfssexpr.New("h"), "1mm")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"height": "(h) + (1mm)"}`, string(b))

	var p params
	require.NoError(t, json.Unmarshal([]byte(`{"height": "30mils/2"}`), &p))
	assert.Equal(t, "30mils/2", p.Height.String())
}

// TestCompositionEvaluates checks that composed expressions evaluate to the
// same numbers as the corresponding float64 arithmetic.
func TestCompositionEvaluates(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	for range 2000 {
		v := [3]float64{rng.Float64() * 100, rng.Float64()*200 - 100, rng.Float64() * 1e-3}
		a, b, c := hfssexpr.New(v[0]), hfssexpr.New(v[1]), hfssexpr.New(v[2])

		e := hfssexpr.Mul(hfssexpr.Add(a, b), c)
		got, err := hfssexpr.Evaluate(e, nil)
		require.NoError(t, err, e.String())
		require.Equal(t, (v[0]+v[1])*v[2], got, e.String())

		e = hfssexpr.Mul(c, hfssexpr.Add(a, b))
		got, err = hfssexpr.Evaluate(e, nil)
		require.NoError(t, err, e.String())
		require.Equal(t, v[2]*(v[0]+v[1]), got, e.String())

		e = hfssexpr.Neg(hfssexpr.Add(a, b))
		got, err = hfssexpr.Evaluate(e, nil)
		require.NoError(t, err, e.String())
		require.Equal(t, -(v[0] + v[1]), got, e.String())

		e = hfssexpr.Sub(a, hfssexpr.Div(b, c))
		got, err = hfssexpr.Evaluate(e, nil)
		require.NoError(t, err, e.String())
		require.Equal(t, v[0]-v[1]/v[2], got, e.String())
	}
}

func TestOperandOrders(t *testing.T) {
	t.Parallel()

	ops := []struct {
		name string
		er   func(X, float64) X
		re   func(float64, X) X
		f    func(a, b float64) float64
	}{
		{"add", hfssexpr.Add[X, float64], hfssexpr.Add[float64, X], func(a, b float64) float64 { return a + b }},
		{"sub", hfssexpr.Sub[X, float64], hfssexpr.Sub[float64, X], func(a, b float64) float64 { return a - b }},
		{"mul", hfssexpr.Mul[X, float64], hfssexpr.Mul[float64, X], func(a, b float64) float64 { return a * b }},
		{"div", hfssexpr.Div[X, float64], hfssexpr.Div[float64, X], func(a, b float64) float64 { return a / b }},
	}
	pairs := [][2]float64{{2, 3}, {7, -0.25}, {-1.5, 4}, {-6, -8}}
	for _, op := range ops {
		for _, p := range pairs {
			// Expression on the left, raw numeral on the right.
			e := op.er(hfssexpr.New(p[0]), p[1])
			got, err := hfssexpr.Evaluate(e, nil)
			require.NoError(t, err, e.String())
			assert.Equal(t, op.f(p[0], p[1]), got, "%s: %s", op.name, e)

			// Raw numeral on the left, Expression on the right.
			e = op.re(p[0], hfssexpr.New(p[1]))
			got, err = hfssexpr.Evaluate(e, nil)
			require.NoError(t, err, e.String())
			assert.Equal(t, op.f(p[0], p[1]), got, "%s: %s", op.name, e)

			// Compound right operands keep their grouping.
			e = op.er(hfssexpr.Add(hfssexpr.New(p[0]), p[1]), p[1])
			got, err = hfssexpr.Evaluate(op.re(p[0], e), nil)
			require.NoError(t, err, e.String())
			assert.Equal(t, op.f(p[0], op.f(p[0]+p[1], p[1])), got, "%s: %s", op.name, e)
		}
	}
}
