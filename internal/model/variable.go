package model

import (
	"fmt"
	"slices"
)

// Boolean domain values. Booleans are ordinary string values so that
// models loaded from CUE and models built in Go compare equal.
const (
	False = "false"
	True  = "true"
)

// Variable is a named random variable with a finite domain.
// Immutable after construction; safe to share between goroutines.
type Variable struct {
	name   string
	domain []string
	index  map[string]int
}

// NewVariable creates a variable. The domain must be non-empty and free of
// duplicates.
func NewVariable(name string, domain ...string) (*Variable, error) {
	if name == "" {
		return nil, &ValidationError{Field: "variable", Message: "name is required"}
	}
	if len(domain) == 0 {
		return nil, &ValidationError{Field: "variable." + name, Message: "domain must not be empty"}
	}
	v := &Variable{
		name:   name,
		domain: slices.Clone(domain),
		index:  make(map[string]int, len(domain)),
	}
	for i, val := range domain {
		if _, dup := v.index[val]; dup {
			return nil, &ValidationError{
				Field:   "variable." + name,
				Message: fmt.Sprintf("duplicate domain value %q", val),
			}
		}
		v.index[val] = i
	}
	return v, nil
}

// MustVariable is like NewVariable but panics on error.
// Use only in tests or example factories.
func MustVariable(name string, domain ...string) *Variable {
	v, err := NewVariable(name, domain...)
	if err != nil {
		panic(err)
	}
	return v
}

// Boolean creates a variable with domain [false, true].
func Boolean(name string) *Variable {
	return MustVariable(name, False, True)
}

// Name returns the variable name.
func (v *Variable) Name() string { return v.name }

// Domain returns a copy of the domain in declaration order.
func (v *Variable) Domain() []string { return slices.Clone(v.domain) }

// Size returns the number of domain values.
func (v *Variable) Size() int { return len(v.domain) }

// Value returns the i'th domain value.
func (v *Variable) Value(i int) string { return v.domain[i] }

// IndexOf returns the position of val in the domain.
func (v *Variable) IndexOf(val string) (int, bool) {
	i, ok := v.index[val]
	return i, ok
}

// String implements fmt.Stringer.
func (v *Variable) String() string { return v.name }

// Assignment maps variables to domain values. Used for evidence and for
// the contexts handed to factors.
type Assignment map[*Variable]string

// Extend returns a copy of a with v set to val. The receiver is unchanged.
func (a Assignment) Extend(v *Variable, val string) Assignment {
	out := make(Assignment, len(a)+1)
	for k, x := range a {
		out[k] = x
	}
	out[v] = val
	return out
}

// Validate checks that every value belongs to its variable's domain.
func (a Assignment) Validate() error {
	for v, val := range a {
		if v == nil {
			return &ValidationError{Field: "assignment", Message: "nil variable"}
		}
		if _, ok := v.IndexOf(val); !ok {
			return &ValidationError{
				Field:   "assignment." + v.name,
				Message: fmt.Sprintf("value %q not in domain %v", val, v.domain),
			}
		}
	}
	return nil
}

// SortedVariables returns the assigned variables ordered by name.
func (a Assignment) SortedVariables() []*Variable {
	vars := make([]*Variable, 0, len(a))
	for v := range a {
		vars = append(vars, v)
	}
	slices.SortFunc(vars, func(x, y *Variable) int {
		switch {
		case x.name < y.name:
			return -1
		case x.name > y.name:
			return 1
		}
		return 0
	})
	return vars
}
