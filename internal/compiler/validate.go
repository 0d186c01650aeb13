package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/aigo/internal/model"
)

// Validation error codes (E200-E299)
const (
	ErrUnreferencedVariable = "E201" // variable appears in no factor
	ErrMissingCPT           = "E202" // variable has no cpt in a cpt-based network
	ErrDuplicateCPT         = "E203" // variable is the child of more than one cpt
	ErrInvalidName          = "E204" // name cannot be written as CLI evidence
	ErrAllZeroFactor        = "E205" // factor weights are all zero
)

// ValidationError represents a model lint finding.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// namePattern restricts variable names and domain values to tokens that
// survive "Name=value" evidence parsing.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.\-]*$`)

// Validate checks a compiled model against structural rules that
// model.New does not enforce. Returns all findings (does not fail-fast), in
// declaration order.
//
// Checks are skipped for CPT coverage when the model has no CPTs at all,
// since a pure factor graph (a Markov network) has no notion of a child.
func Validate(m *model.Model) []ValidationError {
	var errs []ValidationError

	referenced := make(map[*model.Variable]bool)
	cptCount := make(map[*model.Variable]int)
	anyCPT := false
	for i, f := range m.Factors() {
		for _, v := range f.Scope() {
			referenced[v] = true
		}
		tf, ok := f.(*model.TableFactor)
		if !ok {
			continue
		}
		if c := tf.Child(); c != nil {
			anyCPT = true
			cptCount[c]++
		}
		if allZero(tf.Values()) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("factors[%d]", i),
				Message: fmt.Sprintf("factor %s has only zero weights; every query would fail", tf.Name()),
				Code:    ErrAllZeroFactor,
			})
		}
	}

	for _, v := range m.Variables() {
		field := "variables." + v.Name()

		if !namePattern.MatchString(v.Name()) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid variable name %q", v.Name()),
				Code:    ErrInvalidName,
			})
		}
		for _, val := range v.Domain() {
			if !namePattern.MatchString(val) {
				errs = append(errs, ValidationError{
					Field:   field + ".domain",
					Message: fmt.Sprintf("invalid domain value %q", val),
					Code:    ErrInvalidName,
				})
			}
		}

		if !referenced[v] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "variable is not in the scope of any factor",
				Code:    ErrUnreferencedVariable,
			})
		}

		if !anyCPT {
			continue
		}
		switch n := cptCount[v]; {
		case n == 0:
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "variable has no conditional probability table",
				Code:    ErrMissingCPT,
			})
		case n > 1:
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("variable is the child of %d conditional probability tables", n),
				Code:    ErrDuplicateCPT,
			})
		}
	}

	return errs
}

func allZero(values []float64) bool {
	for _, w := range values {
		if w != 0 {
			return false
		}
	}
	return true
}
