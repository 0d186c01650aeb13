package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"

	"github.com/roach88/aigo/internal/compiler"
	"github.com/roach88/aigo/internal/model"
	"github.com/roach88/aigo/internal/rc"
	"github.com/roach88/aigo/internal/session"
	"github.com/roach88/aigo/internal/store"
)

// DefaultRunID is used when a scenario does not name its run.
const DefaultRunID = "run-test-default"

// Harness is the scenario execution context.
type Harness struct {
	store   *store.Store
	session *session.Session
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Load the model from CUE or the built-in examples
// 3. Ask each query, checking its expect clause
// 4. Evaluate assertions against the trace and query log
//
// Returned errors are infrastructure failures; a failing expectation
// is reported through Result.Pass and Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with session and engine logging sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	m, err := LoadModel(scenario.Model)
	if err != nil {
		return nil, err
	}

	runID := scenario.RunID
	if runID == "" {
		runID = DefaultRunID
	}

	var engineOpts []rc.Option
	if scenario.Parallel > 0 {
		engineOpts = append(engineOpts, rc.WithParallel(scenario.Parallel))
	}

	ctx := context.Background()
	sess, err := session.New(ctx, m,
		session.WithStore(st),
		session.WithRunID(runID),
		session.WithLogger(logger),
		session.WithEngineOptions(engineOpts...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	h := &Harness{store: st, session: sess, logger: logger}

	result := NewResult()
	result.RunID = runID
	result.ModelName = m.Name()

	if err := h.executeQueries(ctx, scenario.Queries, result); err != nil {
		return nil, fmt.Errorf("failed to execute queries: %w", err)
	}

	actx := &AssertionContext{
		Ctx:    ctx,
		Store:  st,
		Model:  m,
		RunID:  runID,
		Engine: sess.Engine(),
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// LoadModel resolves a scenario model source.
func LoadModel(src ModelSource) (*model.Model, error) {
	if src.Example != "" {
		factory, ok := model.Examples()[src.Example]
		if !ok {
			return nil, fmt.Errorf("unknown example model %q", src.Example)
		}
		return factory(), nil
	}

	loaded, errs := compiler.LoadNetworks(src.Path, compiler.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to load model: %w", errors.Join(errs...))
	}
	m, ok := loaded.Lookup(src.Network)
	if !ok {
		return nil, fmt.Errorf("network %q not found in %s", src.Network, src.Path)
	}
	return m, nil
}

// executeQueries asks each query in order and validates expect clauses.
func (h *Harness) executeQueries(ctx context.Context, steps []QueryStep, result *Result) error {
	for i, step := range steps {
		ans, qerr := h.session.Ask(ctx, step.Query())
		code := rc.ErrorCode(qerr)
		if qerr != nil && code == "" {
			return fmt.Errorf("queries[%d]: %w", i, qerr)
		}

		result.Trace = append(result.Trace, TraceEvent{
			Seq:       ans.Seq,
			Variable:  step.Variable,
			Evidence:  step.Evidence,
			Order:     step.Order,
			Probs:     ans.Probs(),
			ErrorCode: string(code),
			CacheHits: ans.Stats.Hits,
		})

		h.logger.Debug("scenario query", "index", i, "variable", step.Variable, "error_code", code)

		for _, msg := range checkExpect(i, step.Expect, ans.Probs(), qerr) {
			result.AddError(msg)
		}
	}
	return nil
}

// checkExpect compares one answer with its expect clause.
func checkExpect(index int, expect *ExpectClause, probs map[string]float64, qerr error) []string {
	code := string(rc.ErrorCode(qerr))

	if expect == nil || expect.Error == "" {
		if qerr != nil {
			return []string{fmt.Sprintf("queries[%d]: unexpected error: %v", index, qerr)}
		}
	}
	if expect == nil {
		return nil
	}

	if expect.Error != "" {
		if code != expect.Error {
			actual := "success"
			if code != "" {
				actual = code
			}
			return []string{fmt.Sprintf("queries[%d]: expected error %s, got %s", index, expect.Error, actual)}
		}
		return nil
	}

	tol := expect.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}

	values := make([]string, 0, len(expect.Probs))
	for val := range expect.Probs {
		values = append(values, val)
	}
	sort.Strings(values)

	var errs []string
	for _, val := range values {
		want := expect.Probs[val]
		got, ok := probs[val]
		if !ok {
			errs = append(errs, fmt.Sprintf("queries[%d]: value %q not in posterior", index, val))
			continue
		}
		if math.Abs(got-want) > tol {
			errs = append(errs, fmt.Sprintf("queries[%d]: P(%s) expected %v, got %v (tolerance %g)", index, val, want, got, tol))
		}
	}
	return errs
}
