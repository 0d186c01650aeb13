package strips

import (
	"github.com/roach88/aigo/internal/search"
)

// ForwardProblem is the state-space search problem of a planning problem.
// Nodes are complete states.
type ForwardProblem struct {
	problem *Problem
	heur    Heuristic
}

// Forward creates the forward search problem for p. A nil heuristic is Zero.
func Forward(p *Problem, h Heuristic) *ForwardProblem {
	if h == nil {
		h = Zero
	}
	return &ForwardProblem{problem: p, heur: h}
}

var _ search.Problem[Assignment] = (*ForwardProblem)(nil)

// Start returns the initial state.
func (f *ForwardProblem) Start() Assignment { return f.problem.Initial }

// IsGoal reports whether every goal feature holds in state.
func (f *ForwardProblem) IsGoal(state Assignment) bool {
	return state.Satisfies(f.problem.Goal)
}

// Neighbors returns one arc per applicable action, in domain order.
func (f *ForwardProblem) Neighbors(state Assignment) []search.Arc[Assignment] {
	var arcs []search.Arc[Assignment]
	for _, act := range f.problem.Domain.Actions {
		if !Applicable(act, state) {
			continue
		}
		arcs = append(arcs, search.Arc[Assignment]{
			From:   state,
			To:     Apply(act, state),
			Cost:   act.Cost,
			Action: act.Name,
		})
	}
	return arcs
}

// Heuristic estimates the cost from state to the goal.
func (f *ForwardProblem) Heuristic(state Assignment) float64 {
	return f.heur(state, f.problem.Goal)
}

// Plan returns the actions of a forward solution path in execution order.
func (f *ForwardProblem) Plan(p *search.Path[Assignment]) []string {
	return p.Actions()
}
