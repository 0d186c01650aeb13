package search

import (
	"container/heap"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
)

// Option configures a searcher.
type Option func(*options)

type options struct {
	limit  int
	logger *slog.Logger
}

// WithMaxExpansions stops the search with a LimitError after n expansions.
// Zero (the default) means unlimited.
func WithMaxExpansions(n int) Option {
	return func(o *options) {
		o.limit = n
	}
}

// WithLogger sets the logger for expansion tracing at Debug level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Result is the outcome of a search.
type Result[N Node] struct {
	// Path is the solution, or nil when the search space has no goal
	// (within the bound, for BranchAndBound).
	Path *Path[N]
	// Expanded counts nodes whose neighbors were generated or that were
	// tested as goals.
	Expanded int
}

// Found reports whether a path was found.
func (r Result[N]) Found() bool { return r.Path != nil }

// AStar runs A* search with multiple-path pruning: once a node has been
// expanded, later paths reaching the same key are discarded.
//
// Ties on f = cost + heuristic are broken first-in, first-out, so results
// are deterministic for a deterministic Neighbors order.
func AStar[N Node](p Problem[N], opts ...Option) (Result[N], error) {
	o := newOptions(opts)
	b := &budget{limit: o.limit}

	fr := &frontier[N]{}
	start := NewPath(p.Start())
	heap.Push(fr, &entry[N]{path: start, f: p.Heuristic(start.End())})
	explored := make(map[string]bool)

	for fr.Len() > 0 {
		e := heap.Pop(fr).(*entry[N])
		path := e.path
		key := path.End().Key()
		if explored[key] {
			continue
		}
		explored[key] = true

		if err := b.expand(); err != nil {
			return Result[N]{Expanded: b.expanded - 1}, err
		}
		if o.logger.Enabled(context.Background(), slog.LevelDebug) {
			o.logger.Debug("expanding", "node", key, "cost", path.Cost(), "f", e.f)
		}

		if p.IsGoal(path.End()) {
			return Result[N]{Path: path, Expanded: b.expanded}, nil
		}
		for _, arc := range p.Neighbors(path.End()) {
			if explored[arc.To.Key()] {
				continue
			}
			next := path.Extend(arc)
			fr.push(next, next.Cost()+p.Heuristic(arc.To))
		}
	}
	return Result[N]{Expanded: b.expanded}, nil
}

// BranchAndBound runs depth-first branch and bound. Only paths whose cost
// plus heuristic is strictly below the current bound are explored; each goal
// found lowers the bound to its cost. Paths that revisit a node already on
// the path are pruned.
//
// The initial bound must be positive; math.Inf(1) explores without a bound.
func BranchAndBound[N Node](p Problem[N], bound float64, opts ...Option) (Result[N], error) {
	if math.IsNaN(bound) || bound <= 0 {
		return Result[N]{}, fmt.Errorf("branch and bound: bound must be positive, got %v", bound)
	}
	o := newOptions(opts)
	b := &budget{limit: o.limit}

	var best *Path[N]
	stack := []*Path[N]{NewPath(p.Start())}
	for len(stack) > 0 {
		path := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if path.Cost()+p.Heuristic(path.End()) >= bound {
			continue
		}
		if err := b.expand(); err != nil {
			return Result[N]{Path: best, Expanded: b.expanded - 1}, err
		}

		if p.IsGoal(path.End()) {
			best = path
			bound = path.Cost()
			o.logger.Debug("new bound", "cost", bound, "path", path.String())
			continue
		}

		// Push in reverse so the first neighbor is explored first.
		neighbors := p.Neighbors(path.End())
		for i := len(neighbors) - 1; i >= 0; i-- {
			arc := neighbors[i]
			if path.contains(arc.To.Key()) {
				continue
			}
			stack = append(stack, path.Extend(arc))
		}
	}
	return Result[N]{Path: best, Expanded: b.expanded}, nil
}

// entry is a frontier element ordered by f, then insertion order.
type entry[N Node] struct {
	path *Path[N]
	f    float64
	seq  int
}

// frontier is a min-heap of entries.
type frontier[N Node] struct {
	entries []*entry[N]
	next    int
}

func (fr *frontier[N]) push(p *Path[N], f float64) {
	heap.Push(fr, &entry[N]{path: p, f: f})
}

func (fr *frontier[N]) Len() int { return len(fr.entries) }

func (fr *frontier[N]) Less(i, j int) bool {
	a, b := fr.entries[i], fr.entries[j]
	if a.f != b.f {
		return a.f < b.f
	}
	return a.seq < b.seq
}

func (fr *frontier[N]) Swap(i, j int) { fr.entries[i], fr.entries[j] = fr.entries[j], fr.entries[i] }

func (fr *frontier[N]) Push(x any) {
	e := x.(*entry[N])
	e.seq = fr.next
	fr.next++
	fr.entries = append(fr.entries, e)
}

func (fr *frontier[N]) Pop() any {
	old := fr.entries
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	fr.entries = old[:n-1]
	return e
}
