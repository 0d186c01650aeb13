package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/aigo/internal/ir"
	"github.com/roach88/aigo/internal/model"
	"github.com/roach88/aigo/internal/session"
	"github.com/roach88/aigo/internal/store"
)

// seedQueryLog logs three chain queries in run-1, the last one failing,
// and returns the database path and the chain's hash.
func seedQueryLog(t *testing.T) (string, string) {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "queries.db")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	s, err := session.New(ctx, model.NewChain(), session.WithStore(st), session.WithRunID("run-1"))
	require.NoError(t, err)
	_, err = s.Ask(ctx, session.Query{Variable: "C"})
	require.NoError(t, err)
	_, err = s.Ask(ctx, session.Query{Variable: "C", Evidence: map[string]string{"A": "true"}})
	require.NoError(t, err)
	_, err = s.Ask(ctx, session.Query{Variable: "Z"})
	require.Error(t, err)

	return dbPath, s.Hash()
}

func TestReplayMissingDatabaseFlag(t *testing.T) {
	t.Setenv("AIGO_DB", "")
	_, err := execute(t, NewReplayCommand, "text")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--db is required")
}

func TestReplayDatabaseNotFound(t *testing.T) {
	_, err := execute(t, NewReplayCommand, "text", "--db", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
}

func TestReplayEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	// Create empty database
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	st.Close()

	out, err := execute(t, NewReplayCommand, "text", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No queries found in database.")
}

func TestReplayDeterministic(t *testing.T) {
	dbPath, _ := seedQueryLog(t)

	out, err := execute(t, NewReplayCommand, "text", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Replay Summary: 3 query(ies) against 1 model(s)")
	assert.Contains(t, out, "✓ All queries verified deterministic")

	out, err = execute(t, NewReplayCommand, "json", "--db", dbPath, "--parallel", "2", "--tolerance", "-1")
	require.NoError(t, err)
	var report session.ReplayReport
	resp := decodeResponse(t, out, &report)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, report.Deterministic)
	assert.Equal(t, 3, report.Queries)
	assert.Empty(t, report.Mismatches)
}

func TestReplayRunFilter(t *testing.T) {
	dbPath, _ := seedQueryLog(t)

	out, err := execute(t, NewReplayCommand, "text", "--db", dbPath, "--run", "run-other")
	require.NoError(t, err)
	assert.Contains(t, out, "No queries found in database.")
}

func TestReplayDetectsTampering(t *testing.T) {
	dbPath, hash := seedQueryLog(t)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.WriteQuery(context.Background(), ir.QueryRecord{
		ID:           "forged",
		RunID:        "run-1",
		ModelHash:    hash,
		Seq:          99,
		Variable:     "C",
		Distribution: map[string]float64{model.False: 0.5, model.True: 0.5},
	}))
	require.NoError(t, st.Close())

	out, err := execute(t, NewReplayCommand, "text", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ [99] C:")
	assert.Contains(t, out, "Determinism verification failed")

	out, err = execute(t, NewReplayCommand, "json", "--db", dbPath)
	require.Error(t, err)
	var report session.ReplayReport
	resp := decodeResponse(t, out, &report)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_DETERMINISM", resp.Error.Code)
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, "forged", report.Mismatches[0].QueryID)
}
