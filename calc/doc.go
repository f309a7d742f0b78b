// Package calc implements an arbitrary-precision calculator for the
// arithmetic subset of the simulation host's expression language.
//
// The syntax is the host's: numerals may carry a unit suffix written directly
// after the digits, as in "30mils", "4GHz", or "1e-3mm", and every quantity is
// scaled to SI base units when it is evaluated. Terms are joined with the
// operators + - * / and ^, grouped with parentheses, and passed to functions
// like sqrt(x) or atan2(y, x). "[a, b, c]" is a vector, and "v[1]" selects one
// of its elements. There is no implicit multiplication: "2 x" is an error.
//
// Names other than functions are variables. They can be set on a Context, but
// calc never resolves them against the host; that is the job of the parent
// package, which expands variable references into literal text before calc
// ever sees the expression.
//
// Evaluating an expression never runs anything but arithmetic.
package calc
