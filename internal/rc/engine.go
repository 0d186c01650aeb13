package rc

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roach88/aigo/internal/model"
)

// Engine answers posterior queries against one model by recursive
// conditioning with caching.
//
// INVARIANTS:
//   - the model, factor indices, and scopes never change after New
//   - cache entries are never overwritten with a different value and never
//     evicted
//   - the cache always holds (empty context, empty factor set) → 1
type Engine struct {
	model   *model.Model
	vars    []*model.Variable
	factors []model.Factor
	scopes  [][]int // model variable indices per factor, aligned with Factor.Scope()
	domains []int   // domain size per model variable

	mu    sync.RWMutex
	cache map[cacheKey]float64

	hits        atomic.Int64
	branches    atomic.Int64
	evaluations atomic.Int64
	forgets     atomic.Int64
	splits      atomic.Int64

	logger   *slog.Logger
	trace    bool
	parallel bool
	limit    int
	metrics  *Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for recursion tracing. Trace events are
// emitted at Debug level and skipped entirely when Debug is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithParallel sums independent components concurrently, running at most
// limit component sums at once per split. limit <= 0 uses GOMAXPROCS.
func WithParallel(limit int) Option {
	return func(e *Engine) {
		e.parallel = true
		if limit <= 0 {
			limit = runtime.GOMAXPROCS(0)
		}
		e.limit = limit
	}
}

// WithMetrics records query outcomes and cache activity in m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New creates an Engine bound to m.
func New(m *model.Model, opts ...Option) *Engine {
	vars := m.Variables()
	factors := m.Factors()

	e := &Engine{
		model:   m,
		vars:    vars,
		factors: factors,
		scopes:  make([][]int, len(factors)),
		domains: make([]int, len(vars)),
		cache:   map[cacheKey]float64{{}: 1},
		logger:  slog.Default(),
	}
	for i, v := range vars {
		e.domains[i] = v.Size()
	}
	for i, f := range factors {
		scope := f.Scope()
		idx := make([]int, len(scope))
		for j, v := range scope {
			idx[j], _ = m.Index(v)
		}
		e.scopes[i] = idx
	}

	for _, opt := range opts {
		opt(e)
	}
	e.trace = e.logger.Enabled(context.Background(), slog.LevelDebug)

	return e
}

// Model returns the model the engine is bound to.
func (e *Engine) Model() *model.Model {
	return e.model
}

// Query computes P(v | evidence).
//
// order, if non-nil, must contain exactly the model variables that are
// neither observed nor v; variables are eliminated from the end. A nil order
// uses the model's declaration order. The order changes cost, not results.
//
// If v is itself observed, the result is the one-hot distribution on the
// observed value. If the evidence is impossible the error matches
// ErrZeroProbability.
func (e *Engine) Query(v *model.Variable, evidence model.Assignment, order []*model.Variable) (Distribution, error) {
	start := time.Now()
	hitsBefore, branchesBefore := e.hits.Load(), e.branches.Load()

	dist, err := e.query(v, evidence, order)

	if e.metrics != nil {
		e.metrics.observe(err, time.Since(start), e.hits.Load()-hitsBefore, e.branches.Load()-branchesBefore)
	}
	return dist, err
}

func (e *Engine) query(v *model.Variable, evidence model.Assignment, order []*model.Variable) (Distribution, error) {
	resolved, err := checkQuery(e.model, v, evidence, order)
	if err != nil {
		return Distribution{}, err
	}
	if val, observed := evidence[v]; observed {
		return oneHot(v, val), nil
	}

	base := emptyPartial(len(e.domains))
	for ev, val := range evidence {
		vi, _ := e.model.Index(ev)
		di, _ := ev.IndexOf(val)
		base[vi] = int32(di)
	}
	elim := make([]int, len(resolved))
	for i, ov := range resolved {
		elim[i], _ = e.model.Index(ov)
	}
	all := make([]int, len(e.factors))
	for i := range all {
		all[i] = i
	}

	qi, _ := e.model.Index(v)
	weights := make([]float64, v.Size())
	for val := range weights {
		weights[val] = e.sum(base.extend(qi, val), all, elim)
	}

	if e.trace {
		e.logger.Debug("rc query", "variable", v.Name(), "weights", weights)
	}
	return normalize(v, weights)
}

// Stats reports cumulative engine activity.
type Stats struct {
	// Hits counts cache lookups that returned a stored sub-sum.
	Hits int64
	// Branches counts sub-sums computed by branching (each one is cached).
	Branches int64
	// Entries is the current number of cache entries, including the seed.
	Entries int
	// Evaluations counts individual factor evaluations.
	Evaluations int64
	// Forgets counts contexts shrunk by forgetting.
	Forgets int64
	// Splits counts decompositions into independent components.
	Splits int64
}

// Stats returns a snapshot of the engine's counters.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	entries := len(e.cache)
	e.mu.RUnlock()
	return Stats{
		Hits:        e.hits.Load(),
		Branches:    e.branches.Load(),
		Entries:     entries,
		Evaluations: e.evaluations.Load(),
		Forgets:     e.forgets.Load(),
		Splits:      e.splits.Load(),
	}
}

func (e *Engine) lookup(k cacheKey) (float64, bool) {
	e.mu.RLock()
	v, ok := e.cache[k]
	e.mu.RUnlock()
	return v, ok
}

func (e *Engine) store(k cacheKey, v float64) {
	e.mu.Lock()
	e.cache[k] = v
	e.mu.Unlock()
}
