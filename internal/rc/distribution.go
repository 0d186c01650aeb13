package rc

import (
	"fmt"
	"strings"

	"github.com/roach88/aigo/internal/model"
)

// Distribution is a posterior over one variable's domain.
type Distribution struct {
	Variable *model.Variable
	// Probs is aligned with Variable.Domain().
	Probs []float64
}

// Prob returns the probability of val, or 0 if val is not in the domain.
func (d Distribution) Prob(val string) float64 {
	i, ok := d.Variable.IndexOf(val)
	if !ok {
		return 0
	}
	return d.Probs[i]
}

// Map returns the distribution keyed by domain value.
func (d Distribution) Map() map[string]float64 {
	out := make(map[string]float64, len(d.Probs))
	for i, p := range d.Probs {
		out[d.Variable.Value(i)] = p
	}
	return out
}

// Sum returns the total probability mass.
func (d Distribution) Sum() float64 {
	var s float64
	for _, p := range d.Probs {
		s += p
	}
	return s
}

// String renders the distribution in domain order, e.g. "C{false:0.5, true:0.5}".
func (d Distribution) String() string {
	var b strings.Builder
	b.WriteString(d.Variable.Name())
	b.WriteByte('{')
	for i, p := range d.Probs {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s:%.6g", d.Variable.Value(i), p)
	}
	b.WriteByte('}')
	return b.String()
}

func oneHot(v *model.Variable, val string) Distribution {
	probs := make([]float64, v.Size())
	i, _ := v.IndexOf(val)
	probs[i] = 1
	return Distribution{Variable: v, Probs: probs}
}

// normalize divides weights by their total. A zero total means the evidence
// is impossible and is reported instead of producing NaN.
func normalize(v *model.Variable, weights []float64) (Distribution, error) {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return Distribution{}, newQueryError(ErrCodeZeroProbability, v.Name(),
			"cannot normalize posterior: %v", ErrZeroProbability)
	}
	probs := make([]float64, len(weights))
	for i, w := range weights {
		probs[i] = w / total
	}
	return Distribution{Variable: v, Probs: probs}, nil
}
