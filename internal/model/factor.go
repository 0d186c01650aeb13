package model

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Factor is a non-negative weight function over a fixed scope.
//
// Weight receives one domain index per scope variable, aligned with Scope().
// Implementations must be immutable and return the same weight for the same
// indices; the inference cache relies on it.
type Factor interface {
	Name() string
	Scope() []*Variable
	Weight(indices []int) float64
}

// TableFactor stores a weight for every total assignment of its scope in a
// flat row-major table: the last scope variable varies fastest.
type TableFactor struct {
	name    string
	scope   []*Variable
	strides []int
	values  []float64
	child   *Variable // set for conditional probability tables
}

// NewTable creates a table factor. len(values) must equal the product of the
// scope's domain sizes and every value must be finite and non-negative.
func NewTable(name string, scope []*Variable, values []float64) (*TableFactor, error) {
	if len(scope) == 0 {
		return nil, &ValidationError{Field: "factor." + name, Message: "scope must not be empty"}
	}
	seen := make(map[*Variable]bool, len(scope))
	strides := make([]int, len(scope))
	size := 1
	for i := len(scope) - 1; i >= 0; i-- {
		v := scope[i]
		if v == nil {
			return nil, &ValidationError{Field: "factor." + name, Message: "nil variable in scope"}
		}
		if seen[v] {
			return nil, &ValidationError{
				Field:   "factor." + name,
				Message: fmt.Sprintf("variable %s appears twice in scope", v.name),
			}
		}
		seen[v] = true
		strides[i] = size
		size *= v.Size()
	}
	if len(values) != size {
		return nil, &ValidationError{
			Field:   "factor." + name,
			Message: fmt.Sprintf("table has %d values, scope requires %d", len(values), size),
		}
	}
	for i, w := range values {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return nil, &ValidationError{
				Field:   "factor." + name,
				Message: fmt.Sprintf("value[%d] = %v: weights must be finite and non-negative", i, w),
			}
		}
	}
	return &TableFactor{
		name:    name,
		scope:   slices.Clone(scope),
		strides: strides,
		values:  slices.Clone(values),
	}, nil
}

// cptTolerance bounds how far a conditional distribution row may drift from 1.
const cptTolerance = 1e-9

// NewCPT creates the conditional probability table P(child | parents).
// The table is laid out with parents first, in order, and the child last,
// so each consecutive run of child.Size() values is one distribution.
func NewCPT(child *Variable, parents []*Variable, table []float64) (*TableFactor, error) {
	if child == nil {
		return nil, &ValidationError{Field: "cpt", Message: "child variable is required"}
	}
	scope := append(slices.Clone(parents), child)
	f, err := NewTable(cptName(child, parents), scope, table)
	if err != nil {
		return nil, err
	}
	n := child.Size()
	for row := 0; row < len(table); row += n {
		var sum float64
		for _, p := range table[row : row+n] {
			sum += p
		}
		if math.Abs(sum-1) > cptTolerance {
			return nil, &ValidationError{
				Field:   "factor." + f.name,
				Message: fmt.Sprintf("row %d sums to %v, expected 1", row/n, sum),
			}
		}
	}
	f.child = child
	return f, nil
}

// MustCPT is like NewCPT but panics on error.
// Use only in tests or example factories.
func MustCPT(child *Variable, parents []*Variable, table []float64) *TableFactor {
	f, err := NewCPT(child, parents, table)
	if err != nil {
		panic(err)
	}
	return f
}

func cptName(child *Variable, parents []*Variable) string {
	if len(parents) == 0 {
		return "P(" + child.name + ")"
	}
	names := make([]string, len(parents))
	for i, p := range parents {
		names[i] = p.name
	}
	return "P(" + child.name + "|" + strings.Join(names, ",") + ")"
}

// Name returns the factor name.
func (f *TableFactor) Name() string { return f.name }

// Scope returns a copy of the scope.
func (f *TableFactor) Scope() []*Variable { return slices.Clone(f.scope) }

// Weight implements Factor.
func (f *TableFactor) Weight(indices []int) float64 {
	off := 0
	for i, idx := range indices {
		off += idx * f.strides[i]
	}
	return f.values[off]
}

// Child returns the conditioned variable of a CPT, or nil for a plain table.
// The parents are Scope() minus the last element.
func (f *TableFactor) Child() *Variable { return f.child }

// Values returns a copy of the flat table.
func (f *TableFactor) Values() []float64 { return slices.Clone(f.values) }

// Evaluate returns the factor's weight under a, which must assign every
// scope variable.
func Evaluate(f Factor, a Assignment) (float64, error) {
	scope := f.Scope()
	indices := make([]int, len(scope))
	for i, v := range scope {
		val, ok := a[v]
		if !ok {
			return 0, fmt.Errorf("evaluate %s: variable %s is unassigned", f.Name(), v.name)
		}
		idx, ok := v.IndexOf(val)
		if !ok {
			return 0, fmt.Errorf("evaluate %s: value %q not in domain of %s", f.Name(), val, v.name)
		}
		indices[i] = idx
	}
	return f.Weight(indices), nil
}
