package rc

// component is a maximal group of factors whose free variables overlap
// transitively, with the elimination order restricted to those variables.
type component struct {
	factors []int
	order   []int
}

// components partitions factors into connected components of the graph in
// which two factors are adjacent when they share a variable unassigned in
// ctx. Components are returned in order of their lowest factor index, each
// with ascending factor indices and order filtered to its free variables
// (relative order preserved).
func (e *Engine) components(ctx partial, factors []int, order []int) []component {
	if len(factors) < 2 {
		return nil
	}

	parent := make([]int, len(factors))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if ra < rb {
			parent[rb] = ra
		} else {
			parent[ra] = rb
		}
	}

	// owner maps a free variable to the first factor position mentioning it.
	owner := make(map[int]int)
	for pos, fi := range factors {
		for _, v := range e.scopes[fi] {
			if ctx.assigned(v) {
				continue
			}
			if first, ok := owner[v]; ok {
				union(first, pos)
			} else {
				owner[v] = pos
			}
		}
	}

	groupOf := make(map[int]int)
	var comps []component
	for pos, fi := range factors {
		root := find(pos)
		g, ok := groupOf[root]
		if !ok {
			g = len(comps)
			groupOf[root] = g
			comps = append(comps, component{})
		}
		comps[g].factors = append(comps[g].factors, fi)
	}
	if len(comps) < 2 {
		return nil
	}

	for _, v := range order {
		pos, ok := owner[v]
		if !ok {
			continue
		}
		g := groupOf[find(pos)]
		comps[g].order = append(comps[g].order, v)
	}
	return comps
}
