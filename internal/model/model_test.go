package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/aigo/internal/ir"
)

func TestNewVariable(t *testing.T) {
	v, err := NewVariable("Weather", "sun", "rain", "snow")
	require.NoError(t, err)

	assert.Equal(t, "Weather", v.Name())
	assert.Equal(t, 3, v.Size())
	assert.Equal(t, "rain", v.Value(1))
	i, ok := v.IndexOf("snow")
	assert.True(t, ok)
	assert.Equal(t, 2, i)
	_, ok = v.IndexOf("hail")
	assert.False(t, ok)

	// Domain returns a copy.
	d := v.Domain()
	d[0] = "mutated"
	assert.Equal(t, "sun", v.Value(0))
}

func TestNewVariable_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		vname  string
		domain []string
	}{
		{"empty name", "", []string{"a"}},
		{"empty domain", "X", nil},
		{"duplicate value", "X", []string{"a", "b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVariable(tt.vname, tt.domain...)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
		})
	}
	assert.Panics(t, func() { MustVariable("X") })
}

func TestAssignment_ExtendCopies(t *testing.T) {
	a, b := Boolean("A"), Boolean("B")
	base := Assignment{a: True}

	ext := base.Extend(b, False)

	assert.Len(t, base, 1)
	assert.Equal(t, Assignment{a: True, b: False}, ext)
}

func TestAssignment_Validate(t *testing.T) {
	a := Boolean("A")
	assert.NoError(t, Assignment{a: True}.Validate())
	assert.Error(t, Assignment{a: "yes"}.Validate())
	assert.Error(t, Assignment{nil: True}.Validate())
}

func TestAssignment_SortedVariables(t *testing.T) {
	c, a, b := Boolean("C"), Boolean("A"), Boolean("B")
	got := Assignment{c: True, a: True, b: False}.SortedVariables()
	assert.Equal(t, []*Variable{a, b, c}, got)
}

func TestTableFactor_RowMajor(t *testing.T) {
	x := MustVariable("X", "x0", "x1")
	y := MustVariable("Y", "y0", "y1", "y2")
	f, err := NewTable("f", []*Variable{x, y}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	assert.Equal(t, 1.0, f.Weight([]int{0, 0}))
	assert.Equal(t, 3.0, f.Weight([]int{0, 2}))
	assert.Equal(t, 4.0, f.Weight([]int{1, 0}))
	assert.Equal(t, 6.0, f.Weight([]int{1, 2}))

	w, err := Evaluate(f, Assignment{x: "x1", y: "y1"})
	require.NoError(t, err)
	assert.Equal(t, 5.0, w)

	_, err = Evaluate(f, Assignment{x: "x1"})
	assert.Error(t, err)
	_, err = Evaluate(f, Assignment{x: "x1", y: "y9"})
	assert.Error(t, err)
}

func TestNewTable_Invalid(t *testing.T) {
	x := Boolean("X")
	tests := []struct {
		name   string
		scope  []*Variable
		values []float64
	}{
		{"empty scope", nil, []float64{1}},
		{"nil variable", []*Variable{nil}, []float64{1, 1}},
		{"duplicate scope", []*Variable{x, x}, []float64{1, 1, 1, 1}},
		{"wrong size", []*Variable{x}, []float64{1}},
		{"negative", []*Variable{x}, []float64{1, -0.5}},
		{"infinite", []*Variable{x}, []float64{1, math.Inf(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable("f", tt.scope, tt.values)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
		})
	}
}

func TestNewCPT(t *testing.T) {
	a, b, c := Boolean("A"), Boolean("B"), Boolean("C")

	f, err := NewCPT(c, []*Variable{a, b}, []float64{1, 0, 0.5, 0.5, 0.2, 0.8, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, "P(C|A,B)", f.Name())
	assert.Equal(t, []*Variable{a, b, c}, f.Scope())

	root := MustCPT(a, nil, []float64{0.25, 0.75})
	assert.Equal(t, "P(A)", root.Name())

	_, err = NewCPT(c, []*Variable{a}, []float64{0.5, 0.6, 0.5, 0.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 0")

	_, err = NewCPT(nil, nil, []float64{1})
	assert.Error(t, err)
}

func TestNewModel_Invalid(t *testing.T) {
	a, b := Boolean("A"), Boolean("B")
	twin := Boolean("A")

	_, err := New("dup", []*Variable{a, twin}, nil)
	assert.Error(t, err)

	_, err = New("outside", []*Variable{a}, []Factor{MustCPT(b, []*Variable{a}, []float64{1, 0, 0, 1})})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in the model")

	_, err = New("nilvar", []*Variable{nil}, nil)
	assert.Error(t, err)

	_, err = New("nilfactor", []*Variable{a}, []Factor{nil})
	assert.Error(t, err)
}

func TestModel_Accessors(t *testing.T) {
	m := NewChain()

	assert.Equal(t, "chain", m.Name())
	require.Len(t, m.Variables(), 3)
	require.Len(t, m.Factors(), 3)

	b, ok := m.Lookup("B")
	require.True(t, ok)
	i, ok := m.Index(b)
	require.True(t, ok)
	assert.Equal(t, 1, i)
	assert.True(t, m.Contains(b))
	assert.False(t, m.Contains(Boolean("B")))

	_, ok = m.Lookup("Z")
	assert.False(t, ok)
	assert.Panics(t, func() { m.MustLookup("Z") })
}

func TestModel_HashStable(t *testing.T) {
	h1, err := NewFireAlarm().Hash()
	require.NoError(t, err)
	h2, err := NewFireAlarm().Hash()
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	h3, err := NewSprinkler().Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestModel_HashChangesWithTable(t *testing.T) {
	a := Boolean("A")
	m1 := MustNew("m", []*Variable{a}, []Factor{MustCPT(a, nil, []float64{0.5, 0.5})})
	m2 := MustNew("m", []*Variable{a}, []Factor{MustCPT(a, nil, []float64{0.4, 0.6})})

	h1, err := m1.Hash()
	require.NoError(t, err)
	h2, err := m2.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestExamples(t *testing.T) {
	examples := Examples()
	require.Len(t, examples, 3)
	for name, build := range examples {
		assert.Equal(t, name, build().Name())
	}
}

func TestTableFactor_Child(t *testing.T) {
	a, b := Boolean("A"), Boolean("B")
	cpt := MustCPT(b, []*Variable{a}, []float64{1, 0, 0, 1})
	assert.Same(t, b, cpt.Child())

	table, err := NewTable("f", []*Variable{a, b}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Nil(t, table.Child())
}

func TestFromCanonical_RoundTrip(t *testing.T) {
	for name, build := range Examples() {
		t.Run(name, func(t *testing.T) {
			m := build()
			data, err := ir.MarshalCanonical(m.Canonical())
			require.NoError(t, err)

			back, err := FromCanonical(data)
			require.NoError(t, err)

			want, err := m.Hash()
			require.NoError(t, err)
			got, err := back.Hash()
			require.NoError(t, err)
			assert.Equal(t, want, got)

			cpt, ok := back.Factors()[0].(*TableFactor)
			require.True(t, ok)
			assert.NotNil(t, cpt.Child())
		})
	}
}

func TestFromCanonical_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"unknown scope variable", `{"name":"m","variables":[{"name":"A","domain":["false","true"]}],"factors":[{"name":"f","scope":["B"],"values":[1,1]}]}`},
		{"missing values", `{"name":"m","variables":[{"name":"A","domain":["false","true"]}],"factors":[{"name":"f","scope":["A"]}]}`},
		{"child not last", `{"name":"m","variables":[{"name":"A","domain":["false","true"]},{"name":"B","domain":["false","true"]}],"factors":[{"child":"A","name":"P(A|B)","scope":["A","B"],"values":[0.5,0.5,0.5,0.5]}]}`},
		{"bad cpt row", `{"name":"m","variables":[{"name":"A","domain":["false","true"]}],"factors":[{"child":"A","name":"P(A)","scope":["A"],"values":[0.5,0.6]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromCanonical([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}
