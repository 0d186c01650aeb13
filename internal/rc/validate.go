package rc

import (
	"github.com/roach88/aigo/internal/model"
)

// checkQuery validates a query against m and resolves the elimination order.
// A nil order selects the model's declaration order minus the evidence and
// query variables.
func checkQuery(m *model.Model, v *model.Variable, evidence model.Assignment, order []*model.Variable) ([]*model.Variable, error) {
	if v == nil {
		return nil, newQueryError(ErrCodeUnknownVariable, "", "query variable is nil")
	}
	if !m.Contains(v) {
		return nil, newQueryError(ErrCodeUnknownVariable, v.Name(), "query variable is not in model %s", m.Name())
	}
	for ev, val := range evidence {
		if ev == nil {
			return nil, newQueryError(ErrCodeUnknownVariable, "", "evidence contains a nil variable")
		}
		if !m.Contains(ev) {
			return nil, newQueryError(ErrCodeUnknownVariable, ev.Name(), "evidence variable is not in model %s", m.Name())
		}
		if _, ok := ev.IndexOf(val); !ok {
			return nil, newQueryError(ErrCodeInvalidEvidence, ev.Name(), "value %q is not in domain %v", val, ev.Domain())
		}
	}

	expected := make(map[*model.Variable]bool)
	var defaults []*model.Variable
	for _, mv := range m.Variables() {
		if _, observed := evidence[mv]; observed || mv == v {
			continue
		}
		expected[mv] = true
		defaults = append(defaults, mv)
	}
	if order == nil {
		return defaults, nil
	}

	seen := make(map[*model.Variable]bool, len(order))
	for _, ov := range order {
		switch {
		case ov == nil:
			return nil, newQueryError(ErrCodeInvalidElimOrder, "", "elimination order contains a nil variable")
		case seen[ov]:
			return nil, newQueryError(ErrCodeInvalidElimOrder, ov.Name(), "variable appears twice in elimination order")
		case !expected[ov]:
			return nil, newQueryError(ErrCodeInvalidElimOrder, ov.Name(),
				"elimination order may only name unobserved, non-query model variables")
		}
		seen[ov] = true
	}
	for _, dv := range defaults {
		if !seen[dv] {
			return nil, newQueryError(ErrCodeInvalidElimOrder, dv.Name(), "variable missing from elimination order")
		}
	}
	return order, nil
}
