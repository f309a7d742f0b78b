package hfssexpr

import (
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/zephyrtronium/hfssexpr/calc"
)

// Scope is a tier of the host's variable namespace.
type Scope int8

const (
	// ScopeDesign holds variables local to one design. Their names have no
	// sigil.
	ScopeDesign Scope = iota
	// ScopeProject holds variables shared by every design in a project. Their
	// names begin with "$".
	ScopeProject
)

func (s Scope) String() string {
	switch s {
	case ScopeDesign:
		return "design"
	case ScopeProject:
		return "project"
	default:
		return "Scope(" + strconv.Itoa(int(s)) + ")"
	}
}

// ScopeOf returns the scope a variable name belongs to.
func ScopeOf(name string) Scope {
	if strings.HasPrefix(name, string(calc.ProjectSigil)) {
		return ScopeProject
	}
	return ScopeDesign
}

// Lookup provides the definitions of host variables.
type Lookup interface {
	// LookupVariable returns the definition of the named variable in the given
	// scope. Project variable names include their sigil. If the variable is
	// not defined, the error must satisfy errors.Is(err, ErrUndefined).
	LookupVariable(name string, scope Scope) (string, error)
}

// LookupFunc adapts a function to a Lookup.
type LookupFunc func(name string, scope Scope) (string, error)

// LookupVariable calls f(name, scope).
func (f LookupFunc) LookupVariable(name string, scope Scope) (string, error) {
	return f(name, scope)
}

// none is the Lookup with no variables.
var none = LookupFunc(func(string, Scope) (string, error) { return "", ErrUndefined })

// Vars is an in-memory variable namespace. The zero value is empty and ready
// to use. A Vars is safe for concurrent use.
type Vars struct {
	mu      sync.RWMutex
	project map[string]Expression
	design  map[string]Expression
}

// VarsOf creates a Vars holding the given definitions. Each name is placed in
// the scope its sigil selects.
func VarsOf(defs map[string]string) *Vars {
	v := new(Vars)
	for name, def := range defs {
		v.Set(name, New(def))
	}
	return v
}

func (v *Vars) tier(scope Scope) map[string]Expression {
	if scope == ScopeProject {
		return v.project
	}
	return v.design
}

// Set defines or redefines a variable in the scope its sigil selects.
func (v *Vars) Set(name string, value Expression) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if ScopeOf(name) == ScopeProject {
		if v.project == nil {
			v.project = make(map[string]Expression)
		}
		v.project[name] = value
		return
	}
	if v.design == nil {
		v.design = make(map[string]Expression)
	}
	v.design[name] = value
}

// Get returns the definition of a variable.
func (v *Vars) Get(name string) (Expression, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	e, ok := v.tier(ScopeOf(name))[name]
	return e, ok
}

// Delete removes a variable. It is not an error if there is no such variable.
func (v *Vars) Delete(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.tier(ScopeOf(name)), name)
}

// Names returns the sorted names of the variables in a scope.
func (v *Vars) Names(scope Scope) []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	m := v.tier(scope)
	r := make([]string, 0, len(m))
	for name := range m {
		r = append(r, name)
	}
	slices.Sort(r)
	return r
}

// LookupVariable implements Lookup. A name is only found in the scope its
// sigil selects.
func (v *Vars) LookupVariable(name string, scope Scope) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	e, ok := v.tier(scope)[name]
	if !ok {
		return "", ErrUndefined
	}
	return e.form, nil
}
