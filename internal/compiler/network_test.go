package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/aigo/internal/model"
)

func compileString(t *testing.T, src, path string) (*model.Model, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileNetwork(v.LookupPath(cue.ParsePath(path)))
}

func TestCompileNetworkBasic(t *testing.T) {
	m, err := compileString(t, `
		network: chain: {
			variables: [{name: "A"}, {name: "B"}, {name: "C"}]
			cpts: [
				{child: "A", table: [0.4, 0.6]},
				{child: "B", parents: ["A"], table: [0.9, 0.1, 0.2, 0.8]},
				{child: "C", parents: ["B"], table: [0.6, 0.4, 0.3, 0.7]},
			]
		}
	`, "network.chain")
	require.NoError(t, err)

	assert.Equal(t, "chain", m.Name())
	require.Len(t, m.Variables(), 3)
	require.Len(t, m.Factors(), 3)
	assert.Equal(t, []string{model.False, model.True}, m.MustLookup("A").Domain())
	assert.Equal(t, "P(B|A)", m.Factors()[1].Name())

	// Same network built in Go hashes identically.
	want, err := model.NewChain().Hash()
	require.NoError(t, err)
	got, err := m.Hash()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCompileNetworkDomainsAndTables(t *testing.T) {
	m, err := compileString(t, `
		network: mixed: {
			variables: [
				{name: "Season", domain: ["summer", "winter"]},
				{name: "Rained"},
			]
			cpts: [{child: "Season", table: [1, 0]}]
			factors: [{name: "compat", scope: ["Season", "Rained"], values: [3, 1, 1, 3]}]
		}
	`, "network.mixed")
	require.NoError(t, err)

	season := m.MustLookup("Season")
	assert.Equal(t, []string{"summer", "winter"}, season.Domain())

	factors := m.Factors()
	require.Len(t, factors, 2)
	assert.Equal(t, "P(Season)", factors[0].Name())
	assert.Equal(t, "compat", factors[1].Name())
	tf := factors[1].(*model.TableFactor)
	assert.Equal(t, []float64{3, 1, 1, 3}, tf.Values())
	assert.Nil(t, tf.Child())
}

func TestCompileNetworkErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		field   string
		message string
	}{
		{
			name:    "missing variables",
			src:     `network: n: { cpts: [] }`,
			field:   "variables",
			message: "required",
		},
		{
			name:    "empty variables",
			src:     `network: n: { variables: [], cpts: [] }`,
			field:   "variables",
			message: "at least one",
		},
		{
			name:    "no factors",
			src:     `network: n: { variables: [{name: "A"}] }`,
			field:   "factors",
			message: "at least one",
		},
		{
			name:    "undeclared child",
			src:     `network: n: { variables: [{name: "A"}], cpts: [{child: "Z", table: [0.5, 0.5]}] }`,
			field:   "cpts.child",
			message: "undeclared",
		},
		{
			name:    "undeclared parent",
			src:     `network: n: { variables: [{name: "A"}], cpts: [{child: "A", parents: ["Z"], table: [0.5, 0.5]}] }`,
			field:   "cpts.parents",
			message: "undeclared",
		},
		{
			name:    "missing table",
			src:     `network: n: { variables: [{name: "A"}], cpts: [{child: "A"}] }`,
			field:   "cpts.A.table",
			message: "required",
		},
		{
			name:    "row does not sum to one",
			src:     `network: n: { variables: [{name: "A"}], cpts: [{child: "A", table: [0.5, 0.6]}] }`,
			field:   "factor.P(A)",
			message: "expected 1",
		},
		{
			name:    "wrong table size",
			src:     `network: n: { variables: [{name: "A"}], factors: [{name: "f", scope: ["A"], values: [1]}] }`,
			field:   "factor.f",
			message: "scope requires 2",
		},
		{
			name:    "non-numeric value",
			src:     `network: n: { variables: [{name: "A"}], factors: [{name: "f", scope: ["A"], values: [1, "x"]}] }`,
			field:   "number",
			message: "expected a number",
		},
		{
			name:    "duplicate variable",
			src:     `network: n: { variables: [{name: "A"}, {name: "A"}], factors: [] }`,
			field:   "variables.A",
			message: "duplicate",
		},
		{
			name:    "duplicate domain value",
			src:     `network: n: { variables: [{name: "A", domain: ["x", "x"]}], factors: [] }`,
			field:   "variable.A",
			message: "duplicate domain value",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileString(t, tt.src, "network.n")
			require.Error(t, err)

			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
			assert.Contains(t, ce.Message, tt.message)
		})
	}
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "variables", Message: "variables are required"}
	assert.Equal(t, "variables: variables are required", err.Error())
}
