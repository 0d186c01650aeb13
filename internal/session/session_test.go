package session

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/aigo/internal/ir"
	"github.com/roach88/aigo/internal/model"
	"github.com/roach88/aigo/internal/rc"
	"github.com/roach88/aigo/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestClock(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())

	resumed := NewClockAt(10)
	assert.Equal(t, int64(11), resumed.Next())
}

func TestAsk_WithoutStore(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, model.NewChain())
	require.NoError(t, err)
	assert.Equal(t, DefaultRunID, s.RunID())

	ans, err := s.Ask(ctx, Query{Variable: "C"})
	require.NoError(t, err)
	assert.InDelta(t, 0.556, ans.Probs()[model.True], 1e-9)
	assert.Equal(t, int64(1), ans.Seq)

	want := ir.MustQueryID(s.Hash(), "C", nil, 1)
	assert.Equal(t, want, ans.ID)
}

func TestAsk_ResolvesNames(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, model.NewChain())
	require.NoError(t, err)

	ans, err := s.Ask(ctx, Query{
		Variable: "A",
		Evidence: map[string]string{"C": model.True},
		Order:    []string{"B"},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.384/0.556, ans.Probs()[model.True], 1e-9)
}

func TestAsk_UnknownNames(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, model.NewChain())
	require.NoError(t, err)

	tests := []struct {
		name string
		q    Query
		code rc.QueryErrorCode
	}{
		{"variable", Query{Variable: "Z"}, rc.ErrCodeUnknownVariable},
		{"evidence", Query{Variable: "C", Evidence: map[string]string{"Z": "true"}}, rc.ErrCodeUnknownVariable},
		{"order", Query{Variable: "C", Order: []string{"A", "Z"}}, rc.ErrCodeInvalidElimOrder},
		{"value", Query{Variable: "C", Evidence: map[string]string{"A": "maybe"}}, rc.ErrCodeInvalidEvidence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Ask(ctx, tt.q)
			require.Error(t, err)
			assert.Equal(t, tt.code, rc.ErrorCode(err))
		})
	}
}

func TestAsk_LogsToStore(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	s, err := New(ctx, model.NewChain(), WithStore(st), WithRunIDGenerator(store.NewFixedGenerator("run-1")))
	require.NoError(t, err)
	assert.Equal(t, "run-1", s.RunID())

	ans, err := s.Ask(ctx, Query{Variable: "C", Evidence: map[string]string{"A": model.True}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), ans.Seq, "seq 1 is the model record")

	stored, err := st.ReadModel(ctx, s.Hash())
	require.NoError(t, err)
	assert.Equal(t, "chain", stored.Name)
	assert.Equal(t, int64(1), stored.Seq)

	logged, err := st.ReadQueries(ctx, store.QueryFilter{RunID: "run-1"})
	require.NoError(t, err)
	require.Len(t, logged, 1)
	rec := logged[0]
	assert.Equal(t, ans.ID, rec.ID)
	assert.Equal(t, s.Hash(), rec.ModelHash)
	assert.Equal(t, map[string]string{"A": model.True}, rec.Evidence)
	assert.Equal(t, ans.Probs(), rec.Distribution)
	assert.Empty(t, rec.ErrorCode)
	assert.Equal(t, int64(ans.Stats.Entries), rec.CacheSize)
}

func TestAsk_LogsFailures(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	a, b := model.Boolean("A"), model.Boolean("B")
	m := model.MustNew("deterministic", []*model.Variable{a, b}, []model.Factor{
		model.MustCPT(a, nil, []float64{1, 0}),
		model.MustCPT(b, []*model.Variable{a}, []float64{0.5, 0.5, 0.5, 0.5}),
	})

	s, err := New(ctx, m, WithStore(st))
	require.NoError(t, err)

	_, err = s.Ask(ctx, Query{Variable: "B", Evidence: map[string]string{"A": model.True}})
	require.ErrorIs(t, err, rc.ErrZeroProbability)

	logged, err := st.ReadQueries(ctx, store.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, string(rc.ErrCodeZeroProbability), logged[0].ErrorCode)
	assert.Nil(t, logged[0].Distribution)
}

func TestNew_ResumesClockFromStore(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	first, err := New(ctx, model.NewChain(), WithStore(st), WithRunID("a"))
	require.NoError(t, err)
	_, err = first.Ask(ctx, Query{Variable: "C"})
	require.NoError(t, err)

	second, err := New(ctx, model.NewChain(), WithStore(st), WithRunID("b"))
	require.NoError(t, err)
	ans, err := second.Ask(ctx, Query{Variable: "C"})
	require.NoError(t, err)

	assert.Equal(t, int64(4), ans.Seq)
	models, err := st.ReadModels(ctx)
	require.NoError(t, err)
	assert.Len(t, models, 1, "same model stored once")
}

func TestSession_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := context.Background()

	s, err := New(ctx, model.NewChain(), WithLogger(logger))
	require.NoError(t, err)
	_, err = s.Ask(ctx, Query{Variable: "C"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "query answered")
	assert.NotContains(t, buf.String(), "rc branching", "engine trace is Debug only")
}

func TestSession_EngineOptions(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, model.NewSprinkler(), WithEngineOptions(rc.WithParallel(2)))
	require.NoError(t, err)

	seq, err := New(ctx, model.NewSprinkler())
	require.NoError(t, err)

	q := Query{Variable: "Shoes_wet", Evidence: map[string]string{"Season": "winter"}}
	got, err := s.Ask(ctx, q)
	require.NoError(t, err)
	want, err := seq.Ask(ctx, q)
	require.NoError(t, err)
	assert.InDeltaMapValues(t, want.Probs(), got.Probs(), 1e-12)
}
