package csp

import (
	"fmt"
	"strconv"
)

// QueenVar names the variable holding the column of the queen in row i.
func QueenVar(i int) string { return "R" + strconv.Itoa(i) }

// NQueens builds the n-queens CSP: one variable per row whose value is the
// column of that row's queen, and one constraint per pair of rows forbidding
// a shared column or diagonal.
func NQueens(n int) (*CSP[int], error) {
	if n < 1 {
		return nil, fmt.Errorf("n-queens needs at least one queen, got %d", n)
	}
	columns := make([]int, n)
	for i := range columns {
		columns[i] = i
	}
	vars := make([]string, n)
	domains := make(map[string][]int, n)
	for i := range n {
		vars[i] = QueenVar(i)
		domains[vars[i]] = columns
	}
	var cons []*Constraint[int]
	for i := range n {
		for j := i + 1; j < n; j++ {
			cons = append(cons, &Constraint[int]{
				Name:  fmt.Sprintf("no_take(%s,%s)", vars[i], vars[j]),
				Scope: []string{vars[i], vars[j]},
				Holds: noTake(i, j),
			})
		}
	}
	return New(vars, domains, cons)
}

// noTake holds when queens at (ri, ci) and (rj, cj) cannot take each other.
func noTake(ri, rj int) func([]int) bool {
	return func(vals []int) bool {
		ci, cj := vals[0], vals[1]
		return ci != cj && abs(ri-rj) != abs(ci-cj)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
