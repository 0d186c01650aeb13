package harness

import (
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/aigo/internal/ir"
)

// goldenPrecision is the number of decimals kept for probabilities in
// snapshots, so golden files do not depend on the last bits of a sum.
const goldenPrecision = 6

// TraceSnapshot captures the trace of a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	ModelName    string       `json:"model"`
	RunID        string       `json:"run_id"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
// Probabilities are rendered as fixed-precision strings; cache hit counts
// are left out since they depend on the elimination order.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"seq":      event.Seq,
			"variable": event.Variable,
		}
		if len(event.Evidence) > 0 {
			evidence := make(map[string]any, len(event.Evidence))
			for k, v := range event.Evidence {
				evidence[k] = v
			}
			eventMap["evidence"] = evidence
		}
		if len(event.Order) > 0 {
			order := make([]any, len(event.Order))
			for j, name := range event.Order {
				order[j] = name
			}
			eventMap["order"] = order
		}
		if event.ErrorCode != "" {
			eventMap["error_code"] = event.ErrorCode
		}
		if len(event.Probs) > 0 {
			probs := make(map[string]any, len(event.Probs))
			for val, p := range event.Probs {
				probs[val] = strconv.FormatFloat(p, 'f', goldenPrecision, 64)
			}
			eventMap["probs"] = probs
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"model":         s.ModelName,
		"run_id":        s.RunID,
		"trace":         traceList,
	}
}

// Snapshot renders result as the canonical JSON stored in golden files.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		ModelName:    result.ModelName,
		RunID:        result.RunID,
		Trace:        result.Trace,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return result, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
