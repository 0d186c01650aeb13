package harness

// TraceEvent records one asked query and its outcome.
type TraceEvent struct {
	Seq       int64              `json:"seq"`
	Variable  string             `json:"variable"`
	Evidence  map[string]string  `json:"evidence,omitempty"`
	Order     []string           `json:"order,omitempty"`
	Probs     map[string]float64 `json:"probs,omitempty"`
	ErrorCode string             `json:"error_code,omitempty"`
	CacheHits int64              `json:"cache_hits"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions hold.
	Pass bool `json:"pass"`

	// Trace contains every query in the order it was asked.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// RunID is the run the queries were logged under.
	RunID string `json:"run_id"`

	// ModelName is the queried model.
	ModelName string `json:"model"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
