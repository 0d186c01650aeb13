package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/aigo/internal/ir"
	"github.com/roach88/aigo/internal/model"
	"github.com/roach88/aigo/internal/store"
)

func TestReplay_Deterministic(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	for _, build := range []func() *model.Model{model.NewChain, model.NewFireAlarm} {
		s, err := New(ctx, build(), WithStore(st))
		require.NoError(t, err)
		for _, v := range s.Model().Variables() {
			_, err := s.Ask(ctx, Query{Variable: v.Name()})
			require.NoError(t, err)
		}
	}
	s, err := New(ctx, model.NewChain(), WithStore(st))
	require.NoError(t, err)
	_, err = s.Ask(ctx, Query{Variable: "Z"})
	require.Error(t, err)

	report, err := Replay(ctx, st, store.QueryFilter{}, -1)
	require.NoError(t, err)

	assert.True(t, report.Deterministic)
	assert.Equal(t, 3+6+1, report.Queries)
	assert.Equal(t, 2, report.Models)
	assert.Empty(t, report.Mismatches)
}

func TestReplay_DetectsTampering(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	s, err := New(ctx, model.NewChain(), WithStore(st))
	require.NoError(t, err)
	_, err = s.Ask(ctx, Query{Variable: "C"})
	require.NoError(t, err)

	// Forge a second record with a wrong posterior.
	require.NoError(t, st.WriteQuery(ctx, ir.QueryRecord{
		ID:           "forged",
		RunID:        "run-x",
		ModelHash:    s.Hash(),
		Seq:          99,
		Variable:     "C",
		Distribution: map[string]float64{model.False: 0.5, model.True: 0.5},
	}))

	report, err := Replay(ctx, st, store.QueryFilter{}, 1e-9)
	require.NoError(t, err)

	assert.False(t, report.Deterministic)
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, "forged", report.Mismatches[0].QueryID)
	assert.Contains(t, report.Mismatches[0].Reason, "logged 0.5")
}

func TestReplay_ErrorCodeMismatch(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	s, err := New(ctx, model.NewChain(), WithStore(st))
	require.NoError(t, err)
	require.NoError(t, st.WriteQuery(ctx, ir.QueryRecord{
		ID:        "q",
		RunID:     "run-x",
		ModelHash: s.Hash(),
		Seq:       5,
		Variable:  "C",
		ErrorCode: "ZERO_PROBABILITY",
	}))

	report, err := Replay(ctx, st, store.QueryFilter{}, 0)
	require.NoError(t, err)
	require.Len(t, report.Mismatches, 1)
	assert.Contains(t, report.Mismatches[0].Reason, "error code")
}

func TestReplay_MissingModel(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	_, err := Replay(ctx, st, store.QueryFilter{ModelHash: "nope"}, 0)
	require.NoError(t, err, "no matching queries is not an error")
}
