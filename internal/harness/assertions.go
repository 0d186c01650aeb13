package harness

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/roach88/aigo/internal/model"
	"github.com/roach88/aigo/internal/rc"
	"github.com/roach88/aigo/internal/store"
)

// AssertionContext provides what assertions need beyond the trace.
type AssertionContext struct {
	Ctx    context.Context
	Store  *store.Store
	Model  *model.Model
	RunID  string
	Engine *rc.Engine
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, event := range e.Trace {
		outcome := event.ErrorCode
		if outcome == "" {
			outcome = fmt.Sprintf("%v", event.Probs)
		}
		fmt.Fprintf(&buf, "  [%d] P(%s | %v) = %s\n", i+1, event.Variable, event.Evidence, outcome)
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertMatchesEnumeration:
			err = assertMatchesEnumeration(result.Trace, a, actx.Model)
		case AssertCacheHits:
			err = assertCacheHits(result.Trace, a, actx.Engine)
		case AssertLogCount:
			err = assertLogCount(result.Trace, a, actx)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// assertMatchesEnumeration recomputes every answered query by enumeration.
func assertMatchesEnumeration(trace []TraceEvent, a Assertion, m *model.Model) error {
	tol := a.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}

	for _, event := range trace {
		if event.ErrorCode != "" {
			continue
		}
		v, evidence, err := resolveNames(m, event.Variable, event.Evidence)
		if err != nil {
			return err
		}
		want, err := rc.Enumerate(m, v, evidence)
		if err != nil {
			return &AssertionError{
				Type:     AssertMatchesEnumeration,
				Expected: fmt.Sprintf("enumeration of P(%s) to succeed", event.Variable),
				Actual:   err.Error(),
				Trace:    trace,
			}
		}
		for _, val := range v.Domain() {
			if math.Abs(want.Prob(val)-event.Probs[val]) > tol {
				return &AssertionError{
					Type:     AssertMatchesEnumeration,
					Expected: fmt.Sprintf("P(%s=%s) = %v at seq %d", event.Variable, val, want.Prob(val), event.Seq),
					Actual:   fmt.Sprintf("%v", event.Probs[val]),
					Trace:    trace,
				}
			}
		}
	}
	return nil
}

// assertCacheHits checks the engine's cumulative hit counter.
func assertCacheHits(trace []TraceEvent, a Assertion, eng *rc.Engine) error {
	hits := eng.Stats().Hits
	if hits < a.Min {
		return &AssertionError{
			Type:     AssertCacheHits,
			Expected: fmt.Sprintf("at least %d cache hits", a.Min),
			Actual:   fmt.Sprintf("%d cache hits", hits),
			Trace:    trace,
		}
	}
	return nil
}

// assertLogCount counts this run's rows in the query log.
func assertLogCount(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	records, err := actx.Store.ReadQueries(actx.Ctx, store.QueryFilter{RunID: actx.RunID})
	if err != nil {
		return fmt.Errorf("read query log: %w", err)
	}

	count := 0
	for _, rec := range records {
		if a.Variable != "" && rec.Variable != a.Variable {
			continue
		}
		if a.ErrorCode != "" && rec.ErrorCode != a.ErrorCode {
			continue
		}
		count++
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertLogCount,
			Expected: fmt.Sprintf("%d logged queries%s", a.Count, describeFilter(a)),
			Actual:   fmt.Sprintf("%d logged queries", count),
			Trace:    trace,
		}
	}
	return nil
}

func describeFilter(a Assertion) string {
	var parts []string
	if a.Variable != "" {
		parts = append(parts, "variable="+a.Variable)
	}
	if a.ErrorCode != "" {
		parts = append(parts, "error_code="+a.ErrorCode)
	}
	if len(parts) == 0 {
		return ""
	}
	return " with " + strings.Join(parts, ", ")
}

func resolveNames(m *model.Model, variable string, evidence map[string]string) (*model.Variable, model.Assignment, error) {
	v, ok := m.Lookup(variable)
	if !ok {
		return nil, nil, fmt.Errorf("variable %q not in model %s", variable, m.Name())
	}
	var asg model.Assignment
	if len(evidence) > 0 {
		asg = make(model.Assignment, len(evidence))
		for name, val := range evidence {
			ev, ok := m.Lookup(name)
			if !ok {
				return nil, nil, fmt.Errorf("evidence variable %q not in model %s", name, m.Name())
			}
			asg[ev] = val
		}
	}
	return v, asg, nil
}
