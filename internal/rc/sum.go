package rc

import (
	"golang.org/x/sync/errgroup"
)

// sum returns the sum, over assignments to the free variables of factors, of
// the product of factors evaluated under ctx extended by that assignment.
// factors must be sorted ascending; order must contain every free variable of
// factors.
func (e *Engine) sum(ctx partial, factors []int, order []int) float64 {
	key := makeKey(ctx, factors)
	if v, ok := e.lookup(key); ok {
		e.hits.Add(1)
		if e.trace {
			e.logger.Debug("rc cache hit", "factors", len(factors), "value", v)
		}
		return v
	}

	if reduced, ok := e.forget(ctx, factors); ok {
		e.forgets.Add(1)
		return e.sum(reduced, factors, order)
	}

	if ready, rest := e.partitionAssigned(ctx, factors); len(ready) > 0 {
		w := 1.0
		for _, fi := range ready {
			w *= e.evaluate(fi, ctx)
		}
		if e.trace {
			e.logger.Debug("rc evaluating factors", "count", len(ready), "weight", w)
		}
		if w == 0 {
			return 0
		}
		return w * e.sum(ctx, rest, order)
	}

	if comps := e.components(ctx, factors, order); len(comps) > 1 {
		e.splits.Add(1)
		if e.trace {
			e.logger.Debug("rc splitting into components", "components", len(comps))
		}
		return e.product(ctx, comps)
	}

	v, rest := e.nextVariable(ctx, factors, order)
	if e.trace {
		e.logger.Debug("rc branching", "variable", e.vars[v].Name(), "remaining", len(rest))
	}
	var total float64
	for val := 0; val < e.domains[v]; val++ {
		total += e.sum(ctx.extend(v, val), factors, rest)
	}
	e.branches.Add(1)
	e.store(key, total)
	return total
}

// forget drops context variables that no factor in factors mentions.
// Returns ok=false when every assigned variable is still referenced.
func (e *Engine) forget(ctx partial, factors []int) (partial, bool) {
	referenced := make([]bool, len(ctx))
	for _, fi := range factors {
		for _, v := range e.scopes[fi] {
			referenced[v] = true
		}
	}
	var out partial
	for v, val := range ctx {
		if val == unassigned || referenced[v] {
			continue
		}
		if out == nil {
			out = make(partial, len(ctx))
			copy(out, ctx)
		}
		out[v] = unassigned
	}
	return out, out != nil
}

// partitionAssigned splits factors into those whose scope is fully assigned
// in ctx and the rest. Both results preserve ascending order.
func (e *Engine) partitionAssigned(ctx partial, factors []int) (ready, rest []int) {
	for _, fi := range factors {
		full := true
		for _, v := range e.scopes[fi] {
			if !ctx.assigned(v) {
				full = false
				break
			}
		}
		if full {
			ready = append(ready, fi)
		}
	}
	if len(ready) == 0 {
		return nil, factors
	}
	rest = make([]int, 0, len(factors)-len(ready))
	j := 0
	for _, fi := range factors {
		if j < len(ready) && ready[j] == fi {
			j++
			continue
		}
		rest = append(rest, fi)
	}
	return ready, rest
}

func (e *Engine) evaluate(fi int, ctx partial) float64 {
	scope := e.scopes[fi]
	idx := make([]int, len(scope))
	for i, v := range scope {
		idx[i] = int(ctx[v])
	}
	e.evaluations.Add(1)
	return e.factors[fi].Weight(idx)
}

// nextVariable pops variables off the end of order until it finds one that
// some factor still mentions. Variables no factor mentions contribute
// nothing to the sum and are discarded.
func (e *Engine) nextVariable(ctx partial, factors []int, order []int) (int, []int) {
	free := e.freeVariables(ctx, factors)
	for i := len(order) - 1; i >= 0; i-- {
		if free[order[i]] {
			return order[i], order[:i]
		}
	}
	panic("rc: elimination order exhausted while factors have unassigned variables")
}

func (e *Engine) freeVariables(ctx partial, factors []int) []bool {
	free := make([]bool, len(ctx))
	for _, fi := range factors {
		for _, v := range e.scopes[fi] {
			if !ctx.assigned(v) {
				free[v] = true
			}
		}
	}
	return free
}

// product multiplies the independent sums of each component.
func (e *Engine) product(ctx partial, comps []component) float64 {
	results := make([]float64, len(comps))
	if e.parallel {
		var g errgroup.Group
		g.SetLimit(e.limit)
		for i, c := range comps {
			g.Go(func() error {
				results[i] = e.sum(ctx, c.factors, c.order)
				return nil
			})
		}
		_ = g.Wait() // component sums cannot fail
	} else {
		for i, c := range comps {
			results[i] = e.sum(ctx, c.factors, c.order)
			if results[i] == 0 {
				return 0
			}
		}
	}

	p := 1.0
	for _, r := range results {
		p *= r
	}
	return p
}
