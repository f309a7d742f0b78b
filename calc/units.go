package calc

import (
	"math"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// siPrefixes are the single-rune SI prefixes which may precede a base unit.
var siPrefixes = map[string]float64{
	"a": 1e-18,
	"f": 1e-15,
	"p": 1e-12,
	"n": 1e-9,
	"u": 1e-6,
	"μ": 1e-6,
	"m": 1e-3,
	"c": 1e-2,
	"d": 1e-1,
	"k": 1e3,
	"M": 1e6,
	"G": 1e9,
	"T": 1e12,
	"P": 1e15,
}

// baseUnits are the units that take SI prefixes, with their scale to SI base
// units. Derived units count as their own base.
var baseUnits = map[string]float64{
	"m":     1,
	"meter": 1,
	"g":     1e-3,
	"s":     1,
	"sec":   1,
	"Hz":    1,
	"A":     1,
	"V":     1,
	"W":     1,
	"J":     1,
	"N":     1,
	"C":     1,
	"F":     1,
	"H":     1,
	"S":     1,
	"T":     1,
	"Wb":    1,
	"Pa":    1,
	"K":     1,
	"ohm":   1,
	"Ohm":   1,
	"Ω":     1,
	"rad":   1,
	"sr":    1,
}

// nonStandardUnits are host unit spellings that the prefix rules cannot
// derive. They are matched before prefixed units, so "mil" is never
// milli-"il" and "min" is never milli-inch.
var nonStandardUnits = map[string]float64{
	"mil":    2.54e-5,
	"mils":   2.54e-5,
	"in":     0.0254,
	"inch":   0.0254,
	"inches": 0.0254,
	"ft":     0.3048,
	"min":    60,
	"hr":     3600,
	"deg":    math.Pi / 180,
	"meg":    1e6,
}

// NonStandardUnits returns a copy of the table of units which are resolved by
// name instead of by SI prefix.
func NonStandardUnits() map[string]float64 {
	m := make(map[string]float64, len(nonStandardUnits))
	for k, v := range nonStandardUnits {
		m[k] = v
	}
	return m
}

// UnitScale returns the factor that converts a quantity in unit to SI base
// units, using only the default unit tables.
func UnitScale(unit string) (float64, bool) {
	return scaleOf(nil, unit)
}

// normunit puts a unit suffix in compatibility normal form, so that e.g. the
// micro sign and the Greek letter mu are the same prefix.
func normunit(unit string) string {
	return norm.NFKC.String(unit)
}

// scaleOf resolves unit first in extra, then in the default tables. The keys
// of extra must already be normalized.
func scaleOf(extra map[string]float64, unit string) (float64, bool) {
	u := normunit(unit)
	if s, ok := extra[u]; ok {
		return s, true
	}
	if s, ok := nonStandardUnits[u]; ok {
		return s, true
	}
	if s, ok := baseUnits[u]; ok {
		return s, true
	}
	_, sz := utf8.DecodeRuneInString(u)
	if sz == 0 || sz == len(u) {
		return 0, false
	}
	p, ok := siPrefixes[u[:sz]]
	if !ok {
		return 0, false
	}
	s, ok := baseUnits[u[sz:]]
	if !ok {
		return 0, false
	}
	return p * s, true
}

// UnitError is an error indicating a quantity with a unit suffix that could
// not be converted to SI base units.
type UnitError struct {
	// Unit is the unrecognized suffix.
	Unit string
	// Text is the entire quantity token.
	Text string
}

func (err *UnitError) Error() string {
	return "unknown unit " + strconv.Quote(err.Unit) + " in " + strconv.Quote(err.Text)
}
