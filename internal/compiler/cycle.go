package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/aigo/internal/model"
)

// CycleWarning represents a directed cycle among conditional probability
// tables.
//
// Cycles are warnings, not errors: inference multiplies factors and
// normalizes, so it still answers queries, but the product of cyclic CPTs is
// not the joint distribution a belief network is meant to define.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["A", "B", "A"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning"
}

// AnalyzeCycles reports every group of variables that are ancestors of
// one another through CPT parent links, with the shortest cycle through the
// group's first variable as its path.
//
// Plain table factors carry no direction and are ignored. A DAG returns an
// empty list. Groups come out in declaration order of their first variable.
func AnalyzeCycles(m *model.Model) []CycleWarning {
	g := parentGraph(m)

	reach := make(map[string]map[string]bool, len(g.order))
	for _, v := range g.order {
		reach[v] = g.reachable(v)
	}

	warnings := []CycleWarning{}
	grouped := make(map[string]bool)
	for _, v := range g.order {
		if grouped[v] || !reach[v][v] {
			continue
		}
		for _, w := range g.order {
			if reach[v][w] && reach[w][v] {
				grouped[w] = true
			}
		}
		warnings = append(warnings, cycleWarning(g.shortestCycle(v)))
	}
	return warnings
}

func cycleWarning(path []string) CycleWarning {
	msg := fmt.Sprintf("cycle among conditional probability tables: %s", strings.Join(path, " → "))
	if len(path) == 2 {
		msg = fmt.Sprintf("variable is its own parent: %s → %s", path[0], path[1])
	}
	return CycleWarning{Path: path, Message: msg, Level: "warning"}
}

// dependencyGraph holds parent → child edges between variable names.
type dependencyGraph struct {
	order    []string
	children map[string][]string
}

func parentGraph(m *model.Model) dependencyGraph {
	g := dependencyGraph{children: make(map[string][]string)}
	for _, v := range m.Variables() {
		g.order = append(g.order, v.Name())
	}
	for _, f := range m.Factors() {
		tf, ok := f.(*model.TableFactor)
		if !ok || tf.Child() == nil {
			continue
		}
		scope := tf.Scope()
		child := tf.Child().Name()
		for _, p := range scope[:len(scope)-1] {
			g.children[p.Name()] = append(g.children[p.Name()], child)
		}
	}
	return g
}

// reachable returns the names reachable from v by one or more edges, so v
// itself is included only when it lies on a cycle.
func (g dependencyGraph) reachable(v string) map[string]bool {
	seen := make(map[string]bool)
	stack := append([]string(nil), g.children[v]...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, g.children[n]...)
	}
	return seen
}

// shortestCycle returns start, the fewest intermediate nodes, and start
// again, or nil when start is on no cycle.
func (g dependencyGraph) shortestCycle(start string) []string {
	prev := make(map[string]string)
	visited := make(map[string]bool)
	queue := []string{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, c := range g.children[n] {
			if c == start {
				var back []string
				for at := n; at != start; at = prev[at] {
					back = append(back, at)
				}
				path := []string{start}
				for i := len(back) - 1; i >= 0; i-- {
					path = append(path, back[i])
				}
				return append(path, start)
			}
			if !visited[c] {
				visited[c] = true
				prev[c] = n
				queue = append(queue, c)
			}
		}
	}
	return nil
}
