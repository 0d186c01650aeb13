package rc

import (
	"github.com/roach88/aigo/internal/model"
)

// Enumerate computes P(v | evidence) by brute-force enumeration of every
// assignment to the unobserved variables, with no caching, forgetting, or
// splitting. It is exponential in the number of unobserved variables and
// exists to cross-check Engine.Query on small models.
func Enumerate(m *model.Model, v *model.Variable, evidence model.Assignment) (Distribution, error) {
	order, err := checkQuery(m, v, evidence, nil)
	if err != nil {
		return Distribution{}, err
	}
	if val, observed := evidence[v]; observed {
		return oneHot(v, val), nil
	}

	factors := m.Factors()
	weights := make([]float64, v.Size())
	for i := range weights {
		ctx := evidence.Extend(v, v.Value(i))
		weights[i] = enumerate(ctx, factors, order)
	}
	return normalize(v, weights)
}

func enumerate(ctx model.Assignment, factors []model.Factor, order []*model.Variable) float64 {
	if len(order) == 0 {
		p := 1.0
		for _, f := range factors {
			// ctx is total here, so Evaluate cannot fail.
			w, _ := model.Evaluate(f, ctx)
			p *= w
		}
		return p
	}
	v := order[len(order)-1]
	var total float64
	for _, val := range v.Domain() {
		total += enumerate(ctx.Extend(v, val), factors, order[:len(order)-1])
	}
	return total
}
