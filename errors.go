package hfssexpr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for error classification.
var (
	// ErrUndefined indicates a variable that is not defined in its scope.
	ErrUndefined = errors.New("undefined variable")

	// ErrCyclicDefinition indicates a variable whose definition refers back
	// to itself, or a chain of definitions nested too deeply to expand.
	ErrCyclicDefinition = errors.New("cyclic or too-deep variable definition")

	// ErrEvaluation indicates an expanded expression that could not be
	// evaluated, such as one with an unknown unit or malformed arithmetic.
	ErrEvaluation = errors.New("evaluation error")
)

// VariableError is an error looking up a variable.
type VariableError struct {
	// Name is the variable, including any sigil.
	Name string
	// Scope is the scope in which the variable was looked up.
	Scope Scope
	// Err is the error from the Lookup.
	Err error
}

func (e *VariableError) Error() string {
	return fmt.Sprintf("%v variable %q: %v", e.Scope, e.Name, e.Err)
}

// Unwrap returns the error from the Lookup.
func (e *VariableError) Unwrap() error {
	return e.Err
}

// CycleError is an error expanding a variable whose definition refers back to
// itself, directly or through other variables, or whose definitions nest more
// deeply than the Resolver allows.
type CycleError struct {
	// Chain is the sequence of variables being expanded, ending with the one
	// that closed the cycle or exceeded the limit.
	Chain []string
	// Limit is the depth limit that was exceeded, or 0 if the definitions
	// form a cycle.
	Limit int
}

func (e *CycleError) Error() string {
	chain := strings.Join(e.Chain, " -> ")
	if e.Limit > 0 {
		return fmt.Sprintf("variable definitions nested deeper than %d: %s", e.Limit, chain)
	}
	return "cyclic variable definition: " + chain
}

// Is reports whether target is ErrCyclicDefinition.
func (e *CycleError) Is(target error) bool {
	return target == ErrCyclicDefinition
}

// EvalError is an error evaluating a fully expanded expression.
type EvalError struct {
	// Expr is the expanded expression.
	Expr string
	// Err is the error from package calc. Parse errors implement
	// calc.InputError, giving the column in Expr.
	Err error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluating %q: %v", e.Expr, e.Err)
}

// Unwrap returns the underlying calc error for use with errors.Is and
// errors.As.
func (e *EvalError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrEvaluation.
func (e *EvalError) Is(target error) bool {
	return target == ErrEvaluation
}
