package strips

import (
	"slices"

	"github.com/roach88/aigo/internal/search"
)

// RegressionProblem searches backwards from the goal. Nodes are subgoals;
// a subgoal is solved when it already holds in the initial state.
type RegressionProblem struct {
	problem *Problem
	heur    Heuristic
}

// Regression creates the regression search problem for p. A nil heuristic
// is Zero. The heuristic is called as h(initial, subgoal).
func Regression(p *Problem, h Heuristic) *RegressionProblem {
	if h == nil {
		h = Zero
	}
	return &RegressionProblem{problem: p, heur: h}
}

var _ search.Problem[Assignment] = (*RegressionProblem)(nil)

// Start returns the top-level goal.
func (r *RegressionProblem) Start() Assignment { return r.problem.Goal }

// IsGoal reports whether subgoal holds in the initial state.
func (r *RegressionProblem) IsGoal(subgoal Assignment) bool {
	return r.problem.Initial.Satisfies(subgoal)
}

// Neighbors returns one arc per action that can achieve part of subgoal,
// leading to that action's weakest precondition.
func (r *RegressionProblem) Neighbors(subgoal Assignment) []search.Arc[Assignment] {
	var arcs []search.Arc[Assignment]
	for _, act := range r.problem.Domain.Actions {
		if !relevant(act, subgoal) {
			continue
		}
		arcs = append(arcs, search.Arc[Assignment]{
			From:   subgoal,
			To:     weakestPrecond(act, subgoal),
			Cost:   act.Cost,
			Action: act.Name,
		})
	}
	return arcs
}

// Heuristic estimates the cost of reaching subgoal from the initial state.
func (r *RegressionProblem) Heuristic(subgoal Assignment) float64 {
	return r.heur(r.problem.Initial, subgoal)
}

// Plan returns the actions of a regression solution path in execution
// order, which is the reverse of the path order.
func (r *RegressionProblem) Plan(p *search.Path[Assignment]) []string {
	plan := p.Actions()
	slices.Reverse(plan)
	return plan
}

// relevant reports whether act can be the last step towards subgoal: it
// achieves at least one subgoal feature, undoes none, and its remaining
// preconditions agree with the subgoal.
func relevant(act Action, subgoal Assignment) bool {
	achieves := false
	for f, v := range act.Effects {
		want, ok := subgoal[f]
		if !ok {
			continue
		}
		if want != v {
			return false
		}
		achieves = true
	}
	if !achieves {
		return false
	}
	for f, v := range act.Preconds {
		if _, changed := act.Effects[f]; changed {
			continue
		}
		if want, ok := subgoal[f]; ok && want != v {
			return false
		}
	}
	return true
}

// weakestPrecond returns act's preconditions plus every subgoal feature act
// does not set.
func weakestPrecond(act Action, subgoal Assignment) Assignment {
	out := make(Assignment, len(act.Preconds)+len(subgoal))
	for f, v := range act.Preconds {
		out[f] = v
	}
	for f, v := range subgoal {
		if _, set := act.Effects[f]; !set {
			out[f] = v
		}
	}
	return out
}
