package ir

// NOTE: These are store-layer record types. IDs are content-addressed via
// QueryID and ModelHash; Seq is the store's logical clock.

// ModelRecord is a compiled model persisted by hash.
type ModelRecord struct {
	Hash      string `json:"hash"`
	Name      string `json:"name"`
	Canonical string `json:"canonical"` // canonical JSON of the model
	Seq       int64  `json:"seq"`
}

// QueryRecord is one answered (or failed) posterior query.
type QueryRecord struct {
	ID           string             `json:"id"`
	RunID        string             `json:"run_id"`
	ModelHash    string             `json:"model_hash"`
	Seq          int64              `json:"seq"`
	Variable     string             `json:"variable"`
	Evidence     map[string]string  `json:"evidence"`
	ElimOrder    []string           `json:"elim_order,omitempty"`
	Distribution map[string]float64 `json:"distribution,omitempty"`
	CacheHits    int64              `json:"cache_hits"`
	CacheSize    int64              `json:"cache_size"`
	ErrorCode    string             `json:"error_code,omitempty"`
}
