package model

import (
	"fmt"
	"slices"

	"github.com/roach88/aigo/internal/ir"
)

// ValidationError reports a malformed variable, factor, or model.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Model is a graphical model: variables plus factors over them.
//
// INVARIANTS:
//   - variable names are unique
//   - every variable in a factor scope belongs to the model
//   - variable and factor order never changes after construction
type Model struct {
	name      string
	variables []*Variable
	factors   []Factor
	varIndex  map[*Variable]int
	byName    map[string]*Variable
}

// New validates and builds a model. The slices are copied.
func New(name string, variables []*Variable, factors []Factor) (*Model, error) {
	m := &Model{
		name:      name,
		variables: slices.Clone(variables),
		factors:   slices.Clone(factors),
		varIndex:  make(map[*Variable]int, len(variables)),
		byName:    make(map[string]*Variable, len(variables)),
	}
	for i, v := range m.variables {
		if v == nil {
			return nil, &ValidationError{Field: "variables", Message: fmt.Sprintf("variable %d is nil", i)}
		}
		if _, dup := m.byName[v.name]; dup {
			return nil, &ValidationError{Field: "variables", Message: fmt.Sprintf("duplicate variable name %q", v.name)}
		}
		m.varIndex[v] = i
		m.byName[v.name] = v
	}
	for i, f := range m.factors {
		if f == nil {
			return nil, &ValidationError{Field: "factors", Message: fmt.Sprintf("factor %d is nil", i)}
		}
		for _, v := range f.Scope() {
			if _, ok := m.varIndex[v]; !ok {
				return nil, &ValidationError{
					Field:   "factor." + f.Name(),
					Message: fmt.Sprintf("scope variable %s is not in the model", v.name),
				}
			}
		}
	}
	return m, nil
}

// MustNew is like New but panics on error.
// Use only in tests or example factories.
func MustNew(name string, variables []*Variable, factors []Factor) *Model {
	m, err := New(name, variables, factors)
	if err != nil {
		panic(err)
	}
	return m
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// Variables returns the variables in declaration order.
func (m *Model) Variables() []*Variable { return slices.Clone(m.variables) }

// Factors returns the factors in declaration order.
func (m *Model) Factors() []Factor { return slices.Clone(m.factors) }

// Index returns v's position in Variables().
func (m *Model) Index(v *Variable) (int, bool) {
	i, ok := m.varIndex[v]
	return i, ok
}

// Contains reports whether v belongs to the model.
func (m *Model) Contains(v *Variable) bool {
	_, ok := m.varIndex[v]
	return ok
}

// Lookup finds a variable by name.
func (m *Model) Lookup(name string) (*Variable, bool) {
	v, ok := m.byName[name]
	return v, ok
}

// MustLookup is like Lookup but panics when the variable is missing.
func (m *Model) MustLookup(name string) *Variable {
	v, ok := m.byName[name]
	if !ok {
		panic(fmt.Sprintf("model %s has no variable %q", m.name, name))
	}
	return v
}

// Canonical returns the model as an IR object suitable for canonical JSON.
// Factors that are not table factors are identified by name and scope only.
// FromCanonical reverses it for models made of table factors.
func (m *Model) Canonical() ir.IRObject {
	vars := make(ir.IRArray, len(m.variables))
	for i, v := range m.variables {
		domain := make(ir.IRArray, len(v.domain))
		for j, val := range v.domain {
			domain[j] = ir.IRString(val)
		}
		vars[i] = ir.IRObject{
			"name":   ir.IRString(v.name),
			"domain": domain,
		}
	}
	factors := make(ir.IRArray, len(m.factors))
	for i, f := range m.factors {
		scope := f.Scope()
		names := make(ir.IRArray, len(scope))
		for j, v := range scope {
			names[j] = ir.IRString(v.name)
		}
		obj := ir.IRObject{
			"name":  ir.IRString(f.Name()),
			"scope": names,
		}
		if tf, ok := f.(*TableFactor); ok {
			values := make(ir.IRArray, len(tf.values))
			for j, w := range tf.values {
				values[j] = ir.IRFloat(w)
			}
			obj["values"] = values
			if tf.child != nil {
				obj["child"] = ir.IRString(tf.child.name)
			}
		}
		factors[i] = obj
	}
	return ir.IRObject{
		"name":      ir.IRString(m.name),
		"variables": vars,
		"factors":   factors,
	}
}

// Hash returns the content-addressed identity of the model.
func (m *Model) Hash() (string, error) {
	return ir.ModelHash(m.Canonical())
}
