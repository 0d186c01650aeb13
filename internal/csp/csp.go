// Package csp represents constraint satisfaction problems over finite
// domains and solves them with generalized arc consistency and domain
// splitting.
package csp

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Constraint restricts the values its scope variables may take together.
// Holds receives one value per scope variable, in scope order.
type Constraint[T comparable] struct {
	Name  string
	Scope []string
	Holds func(vals []T) bool
}

func (c *Constraint[T]) String() string {
	if c.Name != "" {
		return c.Name
	}
	return "C(" + strings.Join(c.Scope, ",") + ")"
}

// CSP is a set of variables with finite domains and constraints over them.
// Variables fixes the order used for splitting and for reporting.
type CSP[T comparable] struct {
	Variables   []string
	Domains     map[string][]T
	Constraints []*Constraint[T]
}

// New builds a CSP whose variables are ordered as given and checks that
// every constraint mentions only known variables.
func New[T comparable](variables []string, domains map[string][]T, constraints []*Constraint[T]) (*CSP[T], error) {
	c := &CSP[T]{
		Variables:   slices.Clone(variables),
		Domains:     make(map[string][]T, len(domains)),
		Constraints: constraints,
	}
	if err := c.init(domains); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CSP[T]) init(domains map[string][]T) error {
	if len(c.Variables) == 0 {
		return errors.New("csp has no variables")
	}
	for _, v := range c.Variables {
		dom, ok := domains[v]
		if !ok {
			return fmt.Errorf("variable %s has no domain", v)
		}
		if _, dup := c.Domains[v]; dup {
			return fmt.Errorf("duplicate variable %s", v)
		}
		c.Domains[v] = slices.Clone(dom)
	}
	if len(domains) != len(c.Variables) {
		return errors.New("domains name variables that are not listed")
	}
	for _, con := range c.Constraints {
		if con.Holds == nil {
			return fmt.Errorf("constraint %s has no condition", con)
		}
		if len(con.Scope) == 0 {
			return fmt.Errorf("constraint %s has an empty scope", con)
		}
		for _, v := range con.Scope {
			if _, ok := c.Domains[v]; !ok {
				return fmt.Errorf("constraint %s: unknown variable %s", con, v)
			}
		}
	}
	return nil
}

// Consistent reports whether a total assignment satisfies every
// constraint. Missing variables make it false.
func (c *CSP[T]) Consistent(assignment map[string]T) bool {
	for _, con := range c.Constraints {
		vals := make([]T, len(con.Scope))
		for i, v := range con.Scope {
			val, ok := assignment[v]
			if !ok {
				return false
			}
			vals[i] = val
		}
		if !con.Holds(vals) {
			return false
		}
	}
	return true
}
