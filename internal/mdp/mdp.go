// Package mdp represents Markov decision processes and solves them by value
// iteration.
package mdp

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// MDP is a Markov decision process over states of type S with named actions.
type MDP[S comparable] interface {
	// States lists every state. The order fixes iteration and summation
	// order, so results are reproducible.
	States() []S
	// Actions lists every action. Every action is available in every state.
	Actions() []string
	// Discount is the discount factor in [0, 1].
	Discount() float64
	// Transition returns P(s' | s, a) for every s' with nonzero probability.
	Transition(s S, a string) map[S]float64
	// Reward returns the expected reward for doing a in s.
	Reward(s S, a string) float64
}

// Values is a state value function.
type Values[S comparable] map[S]float64

// QValues maps each state and action to an expected discounted return.
type QValues[S comparable] map[S]map[string]float64

// Policy maps each state to an action.
type Policy[S comparable] map[S]string

// transitionTolerance bounds how far a transition distribution may drift from 1.
const transitionTolerance = 1e-9

// Validate checks the discount, that states and actions are non-empty, and
// that every transition is a distribution over known states.
func Validate[S comparable](m MDP[S]) error {
	if d := m.Discount(); math.IsNaN(d) || d < 0 || d > 1 {
		return fmt.Errorf("discount must be in [0, 1], got %v", d)
	}
	states, actions := m.States(), m.Actions()
	if len(states) == 0 {
		return errors.New("mdp has no states")
	}
	if len(actions) == 0 {
		return errors.New("mdp has no actions")
	}
	known := make(map[S]bool, len(states))
	for _, s := range states {
		if known[s] {
			return fmt.Errorf("duplicate state %v", s)
		}
		known[s] = true
	}
	for _, s := range states {
		for _, a := range actions {
			var sum float64
			for s1, p := range m.Transition(s, a) {
				if !known[s1] {
					return fmt.Errorf("P(. | %v, %s): unknown successor %v", s, a, s1)
				}
				if p < 0 || math.IsNaN(p) {
					return fmt.Errorf("P(%v | %v, %s) = %v is not a probability", s1, s, a, p)
				}
				sum += p
			}
			if math.Abs(sum-1) > transitionTolerance {
				return fmt.Errorf("P(. | %v, %s) sums to %v, not 1", s, a, sum)
			}
		}
	}
	return nil
}

// ValueIteration runs n sweeps of value iteration from v0 (all zeros when
// nil) and returns the Q function and value function of the last sweep,
// and the greedy policy for that Q function.
func ValueIteration[S comparable](m MDP[S], n int, v0 Values[S]) (QValues[S], Values[S], Policy[S], error) {
	if n < 1 {
		return nil, nil, nil, fmt.Errorf("value iteration needs at least one iteration, got %d", n)
	}
	states, actions := m.States(), m.Actions()

	v := make(Values[S], len(states))
	for _, s := range states {
		if v0 != nil {
			val, ok := v0[s]
			if !ok {
				return nil, nil, nil, fmt.Errorf("initial values missing state %v", s)
			}
			v[s] = val
		}
	}

	var q QValues[S]
	for range n {
		q = make(QValues[S], len(states))
		for _, s := range states {
			q[s] = make(map[string]float64, len(actions))
			for _, a := range actions {
				q[s][a] = m.Reward(s, a) + m.Discount()*expected(m, states, s, a, func(s1 S) float64 { return v[s1] })
			}
		}
		next := make(Values[S], len(states))
		for _, s := range states {
			next[s] = q[s][actions[0]]
			for _, a := range actions[1:] {
				next[s] = max(next[s], q[s][a])
			}
		}
		v = next
	}
	return q, v, Greedy(m, q), nil
}

// AsyncValueIteration performs n single-entry Q updates, each on a state
// and action drawn uniformly from rng, starting from all zeros.
func AsyncValueIteration[S comparable](m MDP[S], n int, rng *rand.Rand) (QValues[S], error) {
	if n < 0 {
		return nil, fmt.Errorf("iterations must be non-negative, got %d", n)
	}
	if rng == nil {
		return nil, errors.New("async value iteration needs a random source")
	}
	states, actions := m.States(), m.Actions()

	q := make(QValues[S], len(states))
	for _, s := range states {
		q[s] = make(map[string]float64, len(actions))
		for _, a := range actions {
			q[s][a] = 0
		}
	}
	best := func(s1 S) float64 {
		b := q[s1][actions[0]]
		for _, a := range actions[1:] {
			b = max(b, q[s1][a])
		}
		return b
	}

	for range n {
		s := states[rng.IntN(len(states))]
		a := actions[rng.IntN(len(actions))]
		q[s][a] = m.Reward(s, a) + m.Discount()*expected(m, states, s, a, best)
	}
	return q, nil
}

// Greedy returns, for each state, the action with the highest Q value.
// Ties go to the action listed first in m.Actions.
func Greedy[S comparable](m MDP[S], q QValues[S]) Policy[S] {
	actions := m.Actions()
	pi := make(Policy[S], len(q))
	for _, s := range m.States() {
		qs, ok := q[s]
		if !ok {
			continue
		}
		bestA := actions[0]
		for _, a := range actions[1:] {
			if qs[a] > qs[bestA] {
				bestA = a
			}
		}
		pi[s] = bestA
	}
	return pi
}

// Values returns max_a Q(s, a) for every state in q.
func (q QValues[S]) Values() Values[S] {
	v := make(Values[S], len(q))
	for s, qs := range q {
		first := true
		for _, val := range qs {
			if first || val > v[s] {
				v[s] = val
				first = false
			}
		}
	}
	return v
}

// expected sums P(s' | s, a) * f(s') in state order.
func expected[S comparable](m MDP[S], states []S, s S, a string, f func(S) float64) float64 {
	trans := m.Transition(s, a)
	var sum float64
	for _, s1 := range states {
		if p, ok := trans[s1]; ok {
			sum += p * f(s1)
		}
	}
	return sum
}
