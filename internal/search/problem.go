package search

import (
	"fmt"
	"strings"
)

// Node is a search graph node. Nodes with equal keys are the same node.
type Node interface {
	Key() string
}

// Arc is a directed edge labelled with the action that produces it.
type Arc[N Node] struct {
	From   N
	To     N
	Cost   float64
	Action string
}

// Problem is a search problem.
type Problem[N Node] interface {
	Start() N
	IsGoal(n N) bool
	Neighbors(n N) []Arc[N]
	// Heuristic estimates the cost from n to a goal. It must not
	// overestimate for AStar to return an optimal path.
	Heuristic(n N) float64
}

// Path is a sequence of arcs from a start node.
type Path[N Node] struct {
	start N
	arcs  []Arc[N]
	cost  float64
}

// NewPath creates the empty path at start.
func NewPath[N Node](start N) *Path[N] {
	return &Path[N]{start: start}
}

// Extend returns a new path with arc appended. The receiver is unchanged.
func (p *Path[N]) Extend(arc Arc[N]) *Path[N] {
	arcs := make([]Arc[N], len(p.arcs), len(p.arcs)+1)
	copy(arcs, p.arcs)
	return &Path[N]{
		start: p.start,
		arcs:  append(arcs, arc),
		cost:  p.cost + arc.Cost,
	}
}

// Start returns the first node.
func (p *Path[N]) Start() N { return p.start }

// End returns the last node.
func (p *Path[N]) End() N {
	if len(p.arcs) == 0 {
		return p.start
	}
	return p.arcs[len(p.arcs)-1].To
}

// Cost returns the summed arc cost.
func (p *Path[N]) Cost() float64 { return p.cost }

// Len returns the number of arcs.
func (p *Path[N]) Len() int { return len(p.arcs) }

// Arcs returns the arcs in order.
func (p *Path[N]) Arcs() []Arc[N] {
	out := make([]Arc[N], len(p.arcs))
	copy(out, p.arcs)
	return out
}

// Actions returns the arc actions in order.
func (p *Path[N]) Actions() []string {
	out := make([]string, len(p.arcs))
	for i, a := range p.arcs {
		out[i] = a.Action
	}
	return out
}

// Nodes returns every node on the path, start first.
func (p *Path[N]) Nodes() []N {
	out := make([]N, 0, len(p.arcs)+1)
	out = append(out, p.start)
	for _, a := range p.arcs {
		out = append(out, a.To)
	}
	return out
}

// contains reports whether a node with key k is on the path.
func (p *Path[N]) contains(k string) bool {
	if p.start.Key() == k {
		return true
	}
	for _, a := range p.arcs {
		if a.To.Key() == k {
			return true
		}
	}
	return false
}

func (p *Path[N]) String() string {
	var b strings.Builder
	b.WriteString(p.start.Key())
	for _, a := range p.arcs {
		if a.Action != "" {
			fmt.Fprintf(&b, " --%s--> %s", a.Action, a.To.Key())
		} else {
			fmt.Fprintf(&b, " --> %s", a.To.Key())
		}
	}
	return b.String()
}
