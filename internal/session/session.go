package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/roach88/aigo/internal/ir"
	"github.com/roach88/aigo/internal/model"
	"github.com/roach88/aigo/internal/rc"
	"github.com/roach88/aigo/internal/store"
)

// DefaultRunID is used when neither WithRunID nor WithRunIDGenerator is given.
const DefaultRunID = "run-default"

// Query is a posterior query by variable name.
type Query struct {
	Variable string            `json:"variable" yaml:"variable"`
	Evidence map[string]string `json:"evidence,omitempty" yaml:"evidence,omitempty"`
	// Order is the elimination order; nil uses the model's declaration order.
	Order []string `json:"order,omitempty" yaml:"order,omitempty"`
}

// Answer is the outcome of one Ask.
type Answer struct {
	ID           string          `json:"id"`
	Seq          int64           `json:"seq"`
	Query        Query           `json:"query"`
	Distribution rc.Distribution `json:"-"`
	Stats        rc.Stats        `json:"stats"`
}

// Probs returns the posterior keyed by domain value.
func (a Answer) Probs() map[string]float64 {
	if a.Distribution.Variable == nil {
		return nil
	}
	return a.Distribution.Map()
}

// Session answers queries against one model.
//
// Thread-safety: Ask is safe for concurrent use; queries share the engine
// cache and each gets a distinct seq.
type Session struct {
	model  *model.Model
	hash   string
	engine *rc.Engine
	store  *store.Store
	runID  string
	clock  *Clock
	logger *slog.Logger

	runGen     store.RunIDGenerator
	engineOpts []rc.Option
}

// Option configures a Session.
type Option func(*Session)

// WithStore logs the model and every query to st.
func WithStore(st *store.Store) Option {
	return func(s *Session) {
		s.store = st
	}
}

// WithRunID fixes the run ID.
func WithRunID(id string) Option {
	return func(s *Session) {
		s.runID = id
	}
}

// WithRunIDGenerator draws the run ID from gen at construction.
func WithRunIDGenerator(gen store.RunIDGenerator) Option {
	return func(s *Session) {
		s.runGen = gen
	}
}

// WithLogger sets the session logger. It is also passed to the engine.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithEngineOptions forwards options to rc.New.
func WithEngineOptions(opts ...rc.Option) Option {
	return func(s *Session) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// New creates a session for m. When a store is attached the model is
// written (idempotently) and the clock resumes after the store's last seq.
func New(ctx context.Context, m *model.Model, opts ...Option) (*Session, error) {
	s := &Session{
		model:  m,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runID == "" {
		if s.runGen != nil {
			s.runID = s.runGen.Generate()
		} else {
			s.runID = DefaultRunID
		}
	}

	hash, err := m.Hash()
	if err != nil {
		return nil, fmt.Errorf("hash model %s: %w", m.Name(), err)
	}
	s.hash = hash

	engineOpts := append([]rc.Option{rc.WithLogger(s.logger)}, s.engineOpts...)
	s.engine = rc.New(m, engineOpts...)

	s.clock = NewClock()
	if s.store != nil {
		next, err := s.store.NextSeq(ctx)
		if err != nil {
			return nil, err
		}
		s.clock = NewClockAt(next - 1)

		canonical, err := ir.MarshalCanonical(m.Canonical())
		if err != nil {
			return nil, fmt.Errorf("marshal model %s: %w", m.Name(), err)
		}
		err = s.store.WriteModel(ctx, ir.ModelRecord{
			Hash:      hash,
			Name:      m.Name(),
			Canonical: string(canonical),
			Seq:       s.clock.Next(),
		})
		if err != nil {
			return nil, err
		}
	}

	s.logger.Debug("session started", "model", m.Name(), "hash", hash, "run_id", s.runID)
	return s, nil
}

// Model returns the session's model.
func (s *Session) Model() *model.Model { return s.model }

// Hash returns the model's content hash.
func (s *Session) Hash() string { return s.hash }

// RunID returns the run ID stamped on logged queries.
func (s *Session) RunID() string { return s.runID }

// Engine returns the underlying inference engine.
func (s *Session) Engine() *rc.Engine { return s.engine }

// Ask resolves q's names against the model, runs the query, and logs it.
//
// Query failures (rc.QueryError) are logged with their code and returned.
// A store write failure is returned even when the query itself succeeded.
func (s *Session) Ask(ctx context.Context, q Query) (Answer, error) {
	seq := s.clock.Next()
	ans := Answer{Seq: seq, Query: q}

	id, err := ir.QueryID(s.hash, q.Variable, q.Evidence, seq)
	if err != nil {
		return ans, fmt.Errorf("query id: %w", err)
	}
	ans.ID = id

	dist, qerr := s.ask(q)
	ans.Distribution = dist
	ans.Stats = s.engine.Stats()

	if qerr != nil {
		s.logger.Info("query failed", "id", id, "variable", q.Variable, "error", qerr)
	} else {
		s.logger.Info("query answered", "id", id, "variable", q.Variable, "posterior", dist.String())
	}

	if s.store != nil {
		if err := s.store.WriteQuery(ctx, s.record(ans, qerr)); err != nil {
			return ans, err
		}
	}
	return ans, qerr
}

func (s *Session) ask(q Query) (rc.Distribution, error) {
	v, ok := s.model.Lookup(q.Variable)
	if !ok {
		return rc.Distribution{}, unknownVariable(q.Variable, "query variable")
	}

	var evidence model.Assignment
	if len(q.Evidence) > 0 {
		evidence = make(model.Assignment, len(q.Evidence))
		names := make([]string, 0, len(q.Evidence))
		for name := range q.Evidence {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ev, ok := s.model.Lookup(name)
			if !ok {
				return rc.Distribution{}, unknownVariable(name, "evidence variable")
			}
			evidence[ev] = q.Evidence[name]
		}
	}

	var order []*model.Variable
	if q.Order != nil {
		order = make([]*model.Variable, len(q.Order))
		for i, name := range q.Order {
			ov, ok := s.model.Lookup(name)
			if !ok {
				return rc.Distribution{}, &rc.QueryError{
					Code:     rc.ErrCodeInvalidElimOrder,
					Message:  fmt.Sprintf("elimination order names unknown variable in model %s", s.model.Name()),
					Variable: name,
				}
			}
			order[i] = ov
		}
	}

	return s.engine.Query(v, evidence, order)
}

func (s *Session) record(ans Answer, qerr error) ir.QueryRecord {
	stats := ans.Stats
	return ir.QueryRecord{
		ID:           ans.ID,
		RunID:        s.runID,
		ModelHash:    s.hash,
		Seq:          ans.Seq,
		Variable:     ans.Query.Variable,
		Evidence:     ans.Query.Evidence,
		ElimOrder:    ans.Query.Order,
		Distribution: ans.Probs(),
		CacheHits:    stats.Hits,
		CacheSize:    int64(stats.Entries),
		ErrorCode:    string(rc.ErrorCode(qerr)),
	}
}

func unknownVariable(name, role string) *rc.QueryError {
	return &rc.QueryError{
		Code:     rc.ErrCodeUnknownVariable,
		Message:  role + " is not in the model",
		Variable: name,
	}
}
