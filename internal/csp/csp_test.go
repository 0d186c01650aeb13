package csp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNQueens_Solvable(t *testing.T) {
	for _, n := range []int{1, 4, 5, 6, 8} {
		t.Run(QueenVar(n), func(t *testing.T) {
			c, err := NQueens(n)
			require.NoError(t, err)

			sol, ok := Solve(c)
			require.True(t, ok)
			require.Len(t, sol, n)
			assert.True(t, c.Consistent(sol))
			assertNoAttacks(t, sol, n)
		})
	}
}

func TestNQueens_Unsolvable(t *testing.T) {
	for _, n := range []int{2, 3} {
		c, err := NQueens(n)
		require.NoError(t, err)
		sol, ok := Solve(c)
		assert.False(t, ok, "n=%d", n)
		assert.Nil(t, sol)
	}
}

func TestNQueens_Errors(t *testing.T) {
	_, err := NQueens(0)
	assert.ErrorContains(t, err, "at least one queen")
}

func TestNQueens_Deterministic(t *testing.T) {
	c, err := NQueens(6)
	require.NoError(t, err)
	first, ok := Solve(c)
	require.True(t, ok)
	for range 5 {
		again, ok := Solve(c)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestSolver_CountsSplits(t *testing.T) {
	c, err := NQueens(5)
	require.NoError(t, err)
	s := NewSolver(c, nil)
	_, ok := s.Solve()
	require.True(t, ok)
	assert.Positive(t, s.Stats.Splits)
	assert.Positive(t, s.Stats.Revisions)
}

func TestMakeArcConsistent_Prunes(t *testing.T) {
	lt := &Constraint[int]{Name: "A<B", Scope: []string{"A", "B"}, Holds: func(v []int) bool { return v[0] < v[1] }}
	c, err := New([]string{"A", "B"}, map[string][]int{"A": {1, 2, 3}, "B": {1, 2, 3}}, []*Constraint[int]{lt})
	require.NoError(t, err)

	s := NewSolver(c, nil)
	doms := s.MakeArcConsistent()
	assert.Equal(t, []int{1, 2}, doms["A"])
	assert.Equal(t, []int{2, 3}, doms["B"])
	assert.Equal(t, []int{1, 2, 3}, c.Domains["A"], "original domains are untouched")
	assert.Equal(t, 2, s.Stats.Prunings)
}

func TestSolve_NoSplitNeeded(t *testing.T) {
	eq := &Constraint[string]{Scope: []string{"X", "Y"}, Holds: func(v []string) bool { return v[0] == v[1] }}
	c, err := New([]string{"X", "Y"}, map[string][]string{"X": {"red"}, "Y": {"red", "blue"}}, []*Constraint[string]{eq})
	require.NoError(t, err)

	s := NewSolver(c, nil)
	sol, ok := s.Solve()
	require.True(t, ok)
	assert.Equal(t, map[string]string{"X": "red", "Y": "red"}, sol)
	assert.Zero(t, s.Stats.Splits)
}

func TestNew_Errors(t *testing.T) {
	holds := func([]int) bool { return true }
	tests := []struct {
		name string
		vars []string
		doms map[string][]int
		cons []*Constraint[int]
		want string
	}{
		{"no variables", nil, nil, nil, "no variables"},
		{"missing domain", []string{"A"}, map[string][]int{}, nil, "A has no domain"},
		{"duplicate", []string{"A", "A"}, map[string][]int{"A": {1}}, nil, "duplicate variable A"},
		{"unlisted domain", []string{"A"}, map[string][]int{"A": {1}, "B": {1}}, nil, "not listed"},
		{"unknown scope", []string{"A"}, map[string][]int{"A": {1}},
			[]*Constraint[int]{{Scope: []string{"A", "Z"}, Holds: holds}}, "C(A,Z): unknown variable Z"},
		{"nil condition", []string{"A"}, map[string][]int{"A": {1}},
			[]*Constraint[int]{{Name: "c1", Scope: []string{"A"}}}, "c1 has no condition"},
		{"empty scope", []string{"A"}, map[string][]int{"A": {1}},
			[]*Constraint[int]{{Name: "c2", Holds: holds}}, "c2 has an empty scope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.vars, tt.doms, tt.cons)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func assertNoAttacks(t *testing.T, sol map[string]int, n int) {
	t.Helper()
	for i := range n {
		for j := i + 1; j < n; j++ {
			ci, cj := sol[QueenVar(i)], sol[QueenVar(j)]
			assert.NotEqual(t, ci, cj, "rows %d and %d share a column", i, j)
			assert.NotEqual(t, abs(i-j), abs(ci-cj), "rows %d and %d share a diagonal", i, j)
		}
	}
}
