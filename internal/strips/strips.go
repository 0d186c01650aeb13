package strips

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Boolean feature values.
const (
	False = "false"
	True  = "true"
)

// Assignment maps features to values. It is a full state in forward
// planning and a partial subgoal in regression planning.
type Assignment map[string]string

// Key returns a canonical encoding: features sorted, "f=v" joined by ";".
func (a Assignment) Key() string {
	keys := slices.Sorted(maps.Keys(a))
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(a[k])
	}
	return b.String()
}

func (a Assignment) String() string {
	return "{" + strings.ReplaceAll(a.Key(), ";", ", ") + "}"
}

// Satisfies reports whether every feature in goal has the same value in a.
// A feature missing from a is not satisfied.
func (a Assignment) Satisfies(goal Assignment) bool {
	for f, v := range goal {
		if got, ok := a[f]; !ok || got != v {
			return false
		}
	}
	return true
}

// Action is a STRIPS action.
type Action struct {
	Name     string
	Preconds Assignment
	Effects  Assignment
	Cost     float64
}

// NewAction creates an action with cost 1.
func NewAction(name string, preconds, effects Assignment) Action {
	return Action{Name: name, Preconds: preconds, Effects: effects, Cost: 1}
}

func (a Action) String() string { return a.Name }

// Domain is a set of features with their domains and the actions over them.
type Domain struct {
	Features map[string][]string
	// Actions are tried in order when generating neighbors.
	Actions []Action
}

// Validate checks that every action names declared features and values,
// that action names are unique, and that costs are positive.
func (d *Domain) Validate() error {
	if len(d.Features) == 0 {
		return fmt.Errorf("domain has no features")
	}
	seen := make(map[string]bool, len(d.Actions))
	for _, act := range d.Actions {
		if act.Name == "" {
			return fmt.Errorf("action name is required")
		}
		if seen[act.Name] {
			return fmt.Errorf("duplicate action %q", act.Name)
		}
		seen[act.Name] = true
		if !(act.Cost > 0) {
			return fmt.Errorf("action %s: cost must be positive, got %v", act.Name, act.Cost)
		}
		if len(act.Effects) == 0 {
			return fmt.Errorf("action %s: effects are required", act.Name)
		}
		if err := d.checkAssignment(act.Preconds); err != nil {
			return fmt.Errorf("action %s preconditions: %w", act.Name, err)
		}
		if err := d.checkAssignment(act.Effects); err != nil {
			return fmt.Errorf("action %s effects: %w", act.Name, err)
		}
	}
	return nil
}

func (d *Domain) checkAssignment(a Assignment) error {
	for _, f := range slices.Sorted(maps.Keys(a)) {
		dom, ok := d.Features[f]
		if !ok {
			return fmt.Errorf("unknown feature %q", f)
		}
		if !slices.Contains(dom, a[f]) {
			return fmt.Errorf("feature %s: value %q not in %v", f, a[f], dom)
		}
	}
	return nil
}

// Action returns the named action.
func (d *Domain) Action(name string) (Action, bool) {
	for _, act := range d.Actions {
		if act.Name == name {
			return act, true
		}
	}
	return Action{}, false
}

// Problem is a planning problem: a domain, an initial state, and a goal.
type Problem struct {
	Name    string
	Domain  *Domain
	Initial Assignment
	Goal    Assignment
}

// Validate checks the domain and that the initial state and goal use
// declared features and values.
func (p *Problem) Validate() error {
	if p.Domain == nil {
		return fmt.Errorf("problem %s: domain is required", p.Name)
	}
	if err := p.Domain.Validate(); err != nil {
		return fmt.Errorf("problem %s: %w", p.Name, err)
	}
	if err := p.Domain.checkAssignment(p.Initial); err != nil {
		return fmt.Errorf("problem %s initial state: %w", p.Name, err)
	}
	if len(p.Goal) == 0 {
		return fmt.Errorf("problem %s: goal is required", p.Name)
	}
	if err := p.Domain.checkAssignment(p.Goal); err != nil {
		return fmt.Errorf("problem %s goal: %w", p.Name, err)
	}
	return nil
}

// Applicable reports whether act's preconditions hold in state.
func Applicable(act Action, state Assignment) bool {
	return state.Satisfies(act.Preconds)
}

// Apply returns the state after doing act in state. The input is unchanged.
func Apply(act Action, state Assignment) Assignment {
	next := maps.Clone(state)
	if next == nil {
		next = make(Assignment, len(act.Effects))
	}
	maps.Copy(next, act.Effects)
	return next
}

// Execute runs a plan from the initial state and returns the final state
// and the plan cost. It fails on an unknown or inapplicable action.
func (p *Problem) Execute(plan []string) (Assignment, float64, error) {
	state := maps.Clone(p.Initial)
	var cost float64
	for i, name := range plan {
		act, ok := p.Domain.Action(name)
		if !ok {
			return state, cost, fmt.Errorf("step %d: unknown action %q", i, name)
		}
		if !Applicable(act, state) {
			return state, cost, fmt.Errorf("step %d: action %s not applicable in %s", i, name, state)
		}
		state = Apply(act, state)
		cost += act.Cost
	}
	return state, cost, nil
}

// Heuristic estimates the cost of reaching goal from state. It must not
// overestimate for A* plans to be optimal.
type Heuristic func(state, goal Assignment) float64

// Zero is the trivial heuristic.
func Zero(_, _ Assignment) float64 { return 0 }
