// Package hfssexpr builds and resolves expressions in the variable language of
// an electromagnetic simulation host.
//
// An Expression is symbolic text, like "5*1e-3 + thicknessSubstrate/2". The
// combinators Add, Sub, Mul, Div, Neg, Index, Concat, and List compose
// Expressions and Go numbers into new Expressions without evaluating anything,
// grouping operands so that composition never changes precedence:
//
//	w := hfssexpr.New("thicknessSubstrate")
//	h := hfssexpr.Mul(hfssexpr.Add(w, "1mm"), 2) // "((thicknessSubstrate) + (1mm)) * 2"
//
// A Resolver turns an Expression into a number. It expands every variable
// reference through a Lookup, which provides the host's project variables
// (names starting with "$") and design variables (all others), then
// evaluates the literal result with package calc. Quantities with unit
// suffixes, such as "30mils" or "4GHz", evaluate in SI base units.
package hfssexpr
