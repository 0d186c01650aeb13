package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/aigo/internal/model"
	"github.com/roach88/aigo/internal/rc"
	"github.com/roach88/aigo/internal/session"
)

// Scenario defines a query scenario: a model, the queries to ask it, and
// assertions over the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Model selects the network to query.
	Model ModelSource `yaml:"model"`

	// RunID is an optional fixed run ID.
	// If empty, defaults to DefaultRunID for deterministic golden comparison.
	RunID string `yaml:"run_id,omitempty"`

	// Parallel bounds concurrent component sums; 0 runs sequentially.
	Parallel int `yaml:"parallel,omitempty"`

	// Queries are asked in order against one session.
	Queries []QueryStep `yaml:"queries"`

	// Assertions validate the final trace and query log.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ModelSource names either a CUE network or a built-in example model.
type ModelSource struct {
	// Path is a .cue file or directory, relative to the scenario file.
	Path string `yaml:"path,omitempty"`

	// Network is the name under the top-level network field.
	Network string `yaml:"network,omitempty"`

	// Example is a model.Examples key.
	Example string `yaml:"example,omitempty"`
}

// QueryStep is one query with its optional expectation.
type QueryStep struct {
	Variable string            `yaml:"variable"`
	Evidence map[string]string `yaml:"evidence,omitempty"`
	Order    []string          `yaml:"order,omitempty"`

	// Expect specifies the expected answer.
	// If nil, the query only needs to not fail.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// Query converts the step into a session query.
func (q QueryStep) Query() session.Query {
	return session.Query{Variable: q.Variable, Evidence: q.Evidence, Order: q.Order}
}

// ExpectClause specifies an expected posterior or failure.
type ExpectClause struct {
	// Probs is a subset match on the posterior, keyed by domain value.
	Probs map[string]float64 `yaml:"probs,omitempty"`

	// Tolerance bounds the absolute difference per value.
	// If zero, DefaultTolerance applies.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Error is the expected rc.QueryErrorCode.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the trace or query log after all queries ran.
type Assertion struct {
	// Type specifies the assertion type:
	// - "matches_enumeration": answered queries agree with rc.Enumerate
	// - "cache_hits": engine cache hits >= Min
	// - "log_count": logged queries == Count
	Type string `yaml:"type"`

	// Min is the lower bound (used by cache_hits).
	Min int64 `yaml:"min,omitempty"`

	// Count is the expected number of rows (used by log_count).
	Count int `yaml:"count,omitempty"`

	// Variable filters log rows by query variable (used by log_count).
	Variable string `yaml:"variable,omitempty"`

	// ErrorCode filters log rows by error code (used by log_count).
	ErrorCode string `yaml:"error_code,omitempty"`

	// Tolerance bounds the difference from enumeration (used by matches_enumeration).
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

// Assertion type constants.
const (
	AssertMatchesEnumeration = "matches_enumeration"
	AssertCacheHits          = "cache_hits"
	AssertLogCount           = "log_count"
)

// DefaultTolerance is the absolute tolerance for probability comparisons.
const DefaultTolerance = 1e-9

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative model path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Model.Path != "" && !filepath.IsAbs(scenario.Model.Path) {
		scenario.Model.Path = filepath.Join(filepath.Dir(path), scenario.Model.Path)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if err := validateModelSource(s.Model); err != nil {
		return err
	}

	if s.Parallel < 0 {
		return fmt.Errorf("parallel must be non-negative")
	}

	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}

	for i, q := range s.Queries {
		if q.Variable == "" {
			return fmt.Errorf("queries[%d]: variable is required", i)
		}
		if q.Expect == nil {
			continue
		}
		if q.Expect.Error != "" && len(q.Expect.Probs) > 0 {
			return fmt.Errorf("queries[%d].expect: probs and error are mutually exclusive", i)
		}
		if q.Expect.Error != "" && !knownErrorCode(q.Expect.Error) {
			return fmt.Errorf("queries[%d].expect: unknown error code %q", i, q.Expect.Error)
		}
		if q.Expect.Tolerance < 0 {
			return fmt.Errorf("queries[%d].expect: tolerance must be non-negative", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

func validateModelSource(src ModelSource) error {
	switch {
	case src.Example != "" && src.Path != "":
		return fmt.Errorf("model: path and example are mutually exclusive")
	case src.Example != "":
		if _, ok := model.Examples()[src.Example]; !ok {
			return fmt.Errorf("model: unknown example %q", src.Example)
		}
	case src.Path != "":
		if src.Network == "" {
			return fmt.Errorf("model: network is required with path")
		}
		if _, err := os.Stat(src.Path); os.IsNotExist(err) {
			return fmt.Errorf("model file not found: %s", src.Path)
		}
	default:
		return fmt.Errorf("model: path or example is required")
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertMatchesEnumeration:
		if a.Tolerance < 0 {
			return fmt.Errorf("assertions[%d]: tolerance must be non-negative for matches_enumeration", index)
		}
	case AssertCacheHits:
		if a.Min < 0 {
			return fmt.Errorf("assertions[%d]: min must be non-negative for cache_hits", index)
		}
	case AssertLogCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for log_count", index)
		}
		if a.ErrorCode != "" && !knownErrorCode(a.ErrorCode) {
			return fmt.Errorf("assertions[%d]: unknown error code %q", index, a.ErrorCode)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func knownErrorCode(code string) bool {
	switch rc.QueryErrorCode(code) {
	case rc.ErrCodeUnknownVariable, rc.ErrCodeInvalidEvidence,
		rc.ErrCodeInvalidElimOrder, rc.ErrCodeZeroProbability:
		return true
	}
	return false
}
