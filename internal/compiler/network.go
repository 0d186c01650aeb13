package compiler

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/aigo/internal/model"
)

// CompileNetwork parses a CUE value into a model.Model.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the network struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`network: chain: { ... }`)
//	m, err := CompileNetwork(v.LookupPath(cue.ParsePath("network.chain")))
//
// A network has the shape:
//
//	variables: [{name: "A"}, {name: "Season", domain: ["summer", "winter"]}]
//	cpts:      [{child: "A", table: [0.4, 0.6]}, {child: "B", parents: ["A"], table: [...]}]
//	factors:   [{name: "f", scope: ["A", "B"], values: [...]}]
//
// A variable without a domain is boolean. Factor order in the model is all
// cpts followed by all factors, each in source order.
func CompileNetwork(v cue.Value) (*model.Model, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	var name string
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		name = labels[len(labels)-1].String()
	}

	vars, byName, err := parseVariables(v)
	if err != nil {
		return nil, err
	}

	var factors []model.Factor
	cpts, err := parseCPTs(v, byName)
	if err != nil {
		return nil, err
	}
	factors = append(factors, cpts...)

	tables, err := parseTables(v, byName)
	if err != nil {
		return nil, err
	}
	factors = append(factors, tables...)

	if len(factors) == 0 {
		return nil, &CompileError{
			Field:   "factors",
			Message: "at least one cpt or factor is required",
			Pos:     v.Pos(),
		}
	}

	m, err := model.New(name, vars, factors)
	if err != nil {
		return nil, fromValidationError(err, v.Pos())
	}
	return m, nil
}

// parseVariables extracts variable declarations in source order.
func parseVariables(v cue.Value) ([]*model.Variable, map[string]*model.Variable, error) {
	varsVal := v.LookupPath(cue.ParsePath("variables"))
	if !varsVal.Exists() {
		return nil, nil, &CompileError{
			Field:   "variables",
			Message: "variables are required",
			Pos:     v.Pos(),
		}
	}

	iter, err := varsVal.List()
	if err != nil {
		return nil, nil, formatCUEError(err)
	}

	var vars []*model.Variable
	byName := make(map[string]*model.Variable)
	for iter.Next() {
		item := iter.Value()

		nameVal := item.LookupPath(cue.ParsePath("name"))
		if !nameVal.Exists() {
			return nil, nil, &CompileError{
				Field:   "variables.name",
				Message: "variable name is required",
				Pos:     item.Pos(),
			}
		}
		name, err := nameVal.String()
		if err != nil {
			return nil, nil, formatCUEError(err)
		}

		domain := []string{model.False, model.True}
		domainVal := item.LookupPath(cue.ParsePath("domain"))
		if domainVal.Exists() {
			domain, err = parseStrings(domainVal)
			if err != nil {
				return nil, nil, err
			}
		}

		mv, err := model.NewVariable(name, domain...)
		if err != nil {
			return nil, nil, fromValidationError(err, item.Pos())
		}
		if _, dup := byName[name]; dup {
			return nil, nil, &CompileError{
				Field:   "variables." + name,
				Message: "duplicate variable name",
				Pos:     item.Pos(),
			}
		}
		byName[name] = mv
		vars = append(vars, mv)
	}

	if len(vars) == 0 {
		return nil, nil, &CompileError{
			Field:   "variables",
			Message: "at least one variable is required",
			Pos:     varsVal.Pos(),
		}
	}
	return vars, byName, nil
}

// parseCPTs extracts conditional probability tables.
func parseCPTs(v cue.Value, byName map[string]*model.Variable) ([]model.Factor, error) {
	cptsVal := v.LookupPath(cue.ParsePath("cpts"))
	if !cptsVal.Exists() {
		return nil, nil
	}

	iter, err := cptsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var factors []model.Factor
	for iter.Next() {
		item := iter.Value()

		childName, err := item.LookupPath(cue.ParsePath("child")).String()
		if err != nil {
			return nil, &CompileError{
				Field:   "cpts.child",
				Message: "cpt child is required and must be a string",
				Pos:     item.Pos(),
			}
		}
		child, err := resolve(byName, childName, "cpts.child", item.Pos())
		if err != nil {
			return nil, err
		}

		var parents []*model.Variable
		parentsVal := item.LookupPath(cue.ParsePath("parents"))
		if parentsVal.Exists() {
			names, err := parseStrings(parentsVal)
			if err != nil {
				return nil, err
			}
			for _, pn := range names {
				p, err := resolve(byName, pn, "cpts.parents", parentsVal.Pos())
				if err != nil {
					return nil, err
				}
				parents = append(parents, p)
			}
		}

		tableVal := item.LookupPath(cue.ParsePath("table"))
		if !tableVal.Exists() {
			return nil, &CompileError{
				Field:   fmt.Sprintf("cpts.%s.table", childName),
				Message: "cpt table is required",
				Pos:     item.Pos(),
			}
		}
		table, err := parseNumbers(tableVal)
		if err != nil {
			return nil, err
		}

		f, err := model.NewCPT(child, parents, table)
		if err != nil {
			return nil, fromValidationError(err, tableVal.Pos())
		}
		factors = append(factors, f)
	}
	return factors, nil
}

// parseTables extracts plain (unnormalized) table factors.
func parseTables(v cue.Value, byName map[string]*model.Variable) ([]model.Factor, error) {
	factorsVal := v.LookupPath(cue.ParsePath("factors"))
	if !factorsVal.Exists() {
		return nil, nil
	}

	iter, err := factorsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var factors []model.Factor
	for iter.Next() {
		item := iter.Value()

		name, err := item.LookupPath(cue.ParsePath("name")).String()
		if err != nil {
			return nil, &CompileError{
				Field:   "factors.name",
				Message: "factor name is required and must be a string",
				Pos:     item.Pos(),
			}
		}

		scopeVal := item.LookupPath(cue.ParsePath("scope"))
		if !scopeVal.Exists() {
			return nil, &CompileError{
				Field:   fmt.Sprintf("factors.%s.scope", name),
				Message: "factor scope is required",
				Pos:     item.Pos(),
			}
		}
		names, err := parseStrings(scopeVal)
		if err != nil {
			return nil, err
		}
		scope := make([]*model.Variable, len(names))
		for i, sn := range names {
			scope[i], err = resolve(byName, sn, "factors.scope", scopeVal.Pos())
			if err != nil {
				return nil, err
			}
		}

		valuesVal := item.LookupPath(cue.ParsePath("values"))
		if !valuesVal.Exists() {
			return nil, &CompileError{
				Field:   fmt.Sprintf("factors.%s.values", name),
				Message: "factor values are required",
				Pos:     item.Pos(),
			}
		}
		values, err := parseNumbers(valuesVal)
		if err != nil {
			return nil, err
		}

		f, err := model.NewTable(name, scope, values)
		if err != nil {
			return nil, fromValidationError(err, valuesVal.Pos())
		}
		factors = append(factors, f)
	}
	return factors, nil
}

func resolve(byName map[string]*model.Variable, name, field string, pos token.Pos) (*model.Variable, error) {
	mv, ok := byName[name]
	if !ok {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("undeclared variable %q", name),
			Pos:     pos,
		}
	}
	return mv, nil
}

func parseStrings(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// parseNumbers reads a list of CUE numbers. Integer literals are accepted
// alongside floats, so [1, 0] and [1.0, 0.0] compile identically.
func parseNumbers(v cue.Value) ([]float64, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []float64
	for iter.Next() {
		elem := iter.Value()
		switch elem.IncompleteKind() {
		case cue.IntKind, cue.FloatKind, cue.NumberKind:
		default:
			return nil, &CompileError{
				Field:   "number",
				Message: fmt.Sprintf("expected a number, got %v", elem.IncompleteKind()),
				Pos:     elem.Pos(),
			}
		}
		f, err := elem.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, f)
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// fromValidationError attaches a CUE position to a model validation error.
func fromValidationError(err error, pos token.Pos) error {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return &CompileError{Field: ve.Field, Message: ve.Message, Pos: pos}
	}
	return err
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
