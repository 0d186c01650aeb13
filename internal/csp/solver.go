package csp

import (
	"context"
	"io"
	"log/slog"
	"slices"
)

// Stats counts the work done by a solver.
type Stats struct {
	// Revisions counts arcs whose domain was checked for support.
	Revisions int
	// Prunings counts arcs whose domain shrank.
	Prunings int
	// Splits counts domain splits.
	Splits int
}

// Solver finds solutions with arc consistency and domain splitting.
type Solver[T comparable] struct {
	csp    *CSP[T]
	logger *slog.Logger
	byVar  map[string][]int
	Stats  Stats
}

// NewSolver creates a solver for c. A nil logger discards trace output.
func NewSolver[T comparable](c *CSP[T], logger *slog.Logger) *Solver[T] {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Solver[T]{csp: c, logger: logger, byVar: make(map[string][]int)}
	for i, con := range c.Constraints {
		for _, v := range con.Scope {
			s.byVar[v] = append(s.byVar[v], i)
		}
	}
	return s
}

type arc struct {
	variable   string
	constraint int
}

// worklist is a FIFO of arcs without duplicates.
type worklist struct {
	queue   []arc
	pending map[arc]bool
}

func (w *worklist) push(a arc) {
	if w.pending == nil {
		w.pending = make(map[arc]bool)
	}
	if w.pending[a] {
		return
	}
	w.pending[a] = true
	w.queue = append(w.queue, a)
}

func (w *worklist) pop() arc {
	a := w.queue[0]
	w.queue = w.queue[1:]
	delete(w.pending, a)
	return a
}

func (w *worklist) empty() bool { return len(w.queue) == 0 }

// MakeArcConsistent prunes the CSP's domains to generalized arc
// consistency and returns the pruned copy.
func (s *Solver[T]) MakeArcConsistent() map[string][]T {
	w := &worklist{}
	for i, con := range s.csp.Constraints {
		for _, v := range con.Scope {
			w.push(arc{v, i})
		}
	}
	return s.arcConsistent(copyDomains(s.csp.Domains), w)
}

func (s *Solver[T]) arcConsistent(domains map[string][]T, w *worklist) map[string][]T {
	for !w.empty() {
		a := w.pop()
		con := s.csp.Constraints[a.constraint]
		s.Stats.Revisions++

		pos := slices.Index(con.Scope, a.variable)
		vals := make([]T, len(con.Scope))
		var kept []T
		for _, val := range domains[a.variable] {
			vals[pos] = val
			if s.supported(domains, con, vals, pos, 0) {
				kept = append(kept, val)
			}
		}
		if len(kept) == len(domains[a.variable]) {
			continue
		}
		s.Stats.Prunings++
		if s.logger.Enabled(context.Background(), slog.LevelDebug) {
			s.logger.Debug("pruned domain",
				"variable", a.variable,
				"constraint", con.String(),
				"before", len(domains[a.variable]),
				"after", len(kept))
		}
		domains[a.variable] = kept
		s.requeue(w, a.variable, a.constraint)
	}
	return domains
}

// supported reports whether some assignment to the scope variables other
// than the one at skip, taken from domains, satisfies con.
func (s *Solver[T]) supported(domains map[string][]T, con *Constraint[T], vals []T, skip, i int) bool {
	if i == len(con.Scope) {
		return con.Holds(vals)
	}
	if i == skip {
		return s.supported(domains, con, vals, skip, i+1)
	}
	for _, val := range domains[con.Scope[i]] {
		vals[i] = val
		if s.supported(domains, con, vals, skip, i+1) {
			return true
		}
	}
	return false
}

// requeue adds the arcs that may lose support after variable's domain
// changed. except is a constraint index to leave out, or -1.
func (s *Solver[T]) requeue(w *worklist, variable string, except int) {
	for _, ci := range s.byVar[variable] {
		if ci == except {
			continue
		}
		for _, v := range s.csp.Constraints[ci].Scope {
			if v != variable {
				w.push(arc{v, ci})
			}
		}
	}
}

// Solve returns one solution, or false when the CSP has none.
func (s *Solver[T]) Solve() (map[string]T, bool) {
	w := &worklist{}
	for i, con := range s.csp.Constraints {
		for _, v := range con.Scope {
			w.push(arc{v, i})
		}
	}
	return s.solve(copyDomains(s.csp.Domains), w)
}

func (s *Solver[T]) solve(domains map[string][]T, w *worklist) (map[string]T, bool) {
	domains = s.arcConsistent(domains, w)

	split := ""
	for _, v := range s.csp.Variables {
		switch n := len(domains[v]); {
		case n == 0:
			return nil, false
		case n > 1 && split == "":
			split = v
		}
	}
	if split == "" {
		sol := make(map[string]T, len(domains))
		for v, dom := range domains {
			sol[v] = dom[0]
		}
		return sol, true
	}

	s.Stats.Splits++
	dom := domains[split]
	half := len(dom) / 2
	if s.logger.Enabled(context.Background(), slog.LevelDebug) {
		s.logger.Debug("splitting", "variable", split, "size", len(dom))
	}
	for _, part := range [][]T{dom[:half], dom[half:]} {
		next := copyDomains(domains)
		next[split] = slices.Clone(part)
		nw := &worklist{}
		s.requeue(nw, split, -1)
		if sol, ok := s.solve(next, nw); ok {
			return sol, true
		}
	}
	return nil, false
}

// Solve finds one solution of c, or reports false when there is none.
func Solve[T comparable](c *CSP[T]) (map[string]T, bool) {
	return NewSolver(c, nil).Solve()
}

func copyDomains[T comparable](d map[string][]T) map[string][]T {
	out := make(map[string][]T, len(d))
	for v, dom := range d {
		out[v] = slices.Clone(dom)
	}
	return out
}
