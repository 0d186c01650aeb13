package model

import (
	"encoding/json"
	"fmt"
)

type canonicalModel struct {
	Name      string              `json:"name"`
	Variables []canonicalVariable `json:"variables"`
	Factors   []canonicalFactor   `json:"factors"`
}

type canonicalVariable struct {
	Name   string   `json:"name"`
	Domain []string `json:"domain"`
}

type canonicalFactor struct {
	Name   string    `json:"name"`
	Scope  []string  `json:"scope"`
	Values []float64 `json:"values"`
	Child  string    `json:"child,omitempty"`
}

// FromCanonical rebuilds a model from the canonical JSON of Canonical().
// Every factor must carry values; CPTs (those with a child) are re-validated
// as distributions. The rebuilt model has the same hash as the original.
func FromCanonical(data []byte) (*Model, error) {
	var cm canonicalModel
	if err := json.Unmarshal(data, &cm); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}

	vars := make([]*Variable, len(cm.Variables))
	byName := make(map[string]*Variable, len(cm.Variables))
	for i, cv := range cm.Variables {
		v, err := NewVariable(cv.Name, cv.Domain...)
		if err != nil {
			return nil, fmt.Errorf("decode model %s: %w", cm.Name, err)
		}
		vars[i] = v
		byName[cv.Name] = v
	}

	factors := make([]Factor, len(cm.Factors))
	for i, cf := range cm.Factors {
		if cf.Values == nil {
			return nil, fmt.Errorf("decode model %s: factor %s has no table", cm.Name, cf.Name)
		}
		scope := make([]*Variable, len(cf.Scope))
		for j, name := range cf.Scope {
			v, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("decode model %s: factor %s names unknown variable %q", cm.Name, cf.Name, name)
			}
			scope[j] = v
		}

		var (
			f   *TableFactor
			err error
		)
		if cf.Child != "" {
			if len(scope) == 0 || scope[len(scope)-1].name != cf.Child {
				return nil, fmt.Errorf("decode model %s: cpt %s must list child %s last", cm.Name, cf.Name, cf.Child)
			}
			f, err = NewCPT(scope[len(scope)-1], scope[:len(scope)-1], cf.Values)
		} else {
			f, err = NewTable(cf.Name, scope, cf.Values)
		}
		if err != nil {
			return nil, fmt.Errorf("decode model %s: %w", cm.Name, err)
		}
		factors[i] = f
	}

	return New(cm.Name, vars, factors)
}
