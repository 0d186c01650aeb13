package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/aigo/internal/model"
	"github.com/roach88/aigo/internal/store"
)

func TestQueryExample(t *testing.T) {
	out, err := execute(t, NewQueryCommand, "text", "chain", "--var", "C", "--evidence", "A=true")
	require.NoError(t, err)

	assert.Contains(t, out, "P(C | A=true) [chain]")
	assert.Contains(t, out, "false        0.360000")
	assert.Contains(t, out, "true         0.640000")
	assert.Contains(t, out, "cache:")
	assert.NotContains(t, out, "logged as")
}

func TestQueryCUEFile(t *testing.T) {
	out, err := execute(t, NewQueryCommand, "text",
		filepath.Join(networksDir, "chain.cue"), "--var", "A", "-e", "C=true", "--order", "B")
	require.NoError(t, err)
	assert.Contains(t, out, "0.690647")
}

func TestQueryDirectoryNeedsNetwork(t *testing.T) {
	out, err := execute(t, NewQueryCommand, "text", networksDir, "--var", "Fire")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "choose one with --network")

	out, err = execute(t, NewQueryCommand, "text", networksDir, "--network", "fire_alarm", "--var", "Fire", "-e", "Report=true")
	require.NoError(t, err)
	assert.Contains(t, out, "P(Fire | Report=true) [fire_alarm]")
}

func TestQueryUnknownNetwork(t *testing.T) {
	out, err := execute(t, NewQueryCommand, "text", networksDir, "--network", "nope", "--var", "A")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, `network "nope" not found`)
}

func TestQueryModelNotFound(t *testing.T) {
	out, err := execute(t, NewQueryCommand, "text", filepath.Join(t.TempDir(), "missing.cue"), "--var", "A")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "[E005]")
}

func TestQueryJSON(t *testing.T) {
	out, err := execute(t, NewQueryCommand, "json", "chain", "--var", "C")
	require.NoError(t, err)

	var result QueryResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.TraceID)

	hash, err := model.NewChain().Hash()
	require.NoError(t, err)
	assert.Equal(t, "chain", result.Model)
	assert.Equal(t, hash, result.Hash)
	assert.False(t, result.Logged)
	require.Len(t, result.Posterior, 2)
	assert.Equal(t, model.False, result.Posterior[0].Value)
	assert.InDelta(t, 0.444, result.Posterior[0].Prob, 1e-9)
	assert.Equal(t, model.True, result.Posterior[1].Value)
	assert.InDelta(t, 0.556, result.Posterior[1].Prob, 1e-9)
}

func TestQueryParallelMatchesSequential(t *testing.T) {
	var seq, par QueryResult
	out, err := execute(t, NewQueryCommand, "json", "fire_alarm", "--var", "Tampering", "-e", "Report=true", "-e", "Smoke=false")
	require.NoError(t, err)
	decodeResponse(t, out, &seq)

	out, err = execute(t, NewQueryCommand, "json", "fire_alarm", "--var", "Tampering", "-e", "Report=true", "-e", "Smoke=false", "--parallel", "4")
	require.NoError(t, err)
	decodeResponse(t, out, &par)

	require.Len(t, par.Posterior, len(seq.Posterior))
	for i := range seq.Posterior {
		assert.InDelta(t, seq.Posterior[i].Prob, par.Posterior[i].Prob, 1e-9)
	}
}

func TestQueryLogsToDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "queries.db")

	out, err := execute(t, NewQueryCommand, "json", "chain", "--var", "C", "--db", dbPath, "--run", "run-1")
	require.NoError(t, err)
	var first QueryResult
	resp := decodeResponse(t, out, &first)
	assert.Equal(t, "run-1", resp.TraceID)
	assert.True(t, first.Logged)

	out, err = execute(t, NewQueryCommand, "text", "chain", "--var", "C", "-e", "A=true", "--db", dbPath, "--run", "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "logged as seq")
	assert.Contains(t, out, "in run run-1")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	records, err := st.ReadQueries(context.Background(), store.QueryFilter{RunID: "run-1"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, first.ID, records[0].ID)
	assert.Less(t, records[0].Seq, records[1].Seq)
	assert.Equal(t, map[string]string{"A": "true"}, records[1].Evidence)
	assert.InDelta(t, 0.64, records[1].Distribution["true"], 1e-9)
}

func TestQueryFailures(t *testing.T) {
	certain := filepath.Join("..", "harness", "testdata", "models", "certain.cue")

	tests := []struct {
		name     string
		args     []string
		exitCode int
		contains string
	}{
		{"unknown variable", []string{"chain", "--var", "Z"}, ExitFailure, "[UNKNOWN_VARIABLE]"},
		{"unknown evidence value", []string{"chain", "--var", "C", "-e", "A=maybe"}, ExitFailure, "[INVALID_EVIDENCE]"},
		{"bad elimination order", []string{"chain", "--var", "C", "--order", "Q"}, ExitFailure, "[INVALID_ELIM_ORDER]"},
		{"zero probability", []string{certain, "--var", "B", "-e", "A=true"}, ExitFailure, "[ZERO_PROBABILITY]"},
		{"malformed evidence", []string{"chain", "--var", "C", "-e", "A"}, ExitCommandError, "expected Name=value"},
		{"negative parallel", []string{"chain", "--var", "C", "--parallel=-1"}, ExitCommandError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, NewQueryCommand, "text", tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.exitCode, GetExitCode(err))
			if tt.contains != "" {
				assert.Contains(t, out, tt.contains)
			}
		})
	}
}

func TestQueryFailureJSON(t *testing.T) {
	out, err := execute(t, NewQueryCommand, "json", "chain", "--var", "Z")
	require.Error(t, err)

	resp := decodeResponse(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNKNOWN_VARIABLE", resp.Error.Code)
}

func TestParseEvidence(t *testing.T) {
	ev, err := parseEvidence(nil)
	require.NoError(t, err)
	assert.Nil(t, ev)

	ev, err = parseEvidence([]string{"A=true", " B = false ", "A=true"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "true", "B": "false"}, ev)

	for _, bad := range [][]string{{"A"}, {"=true"}, {"A="}} {
		_, err := parseEvidence(bad)
		require.Error(t, err, bad)
		assert.Contains(t, err.Error(), "expected Name=value")
	}

	_, err = parseEvidence([]string{"A=true", "A=false"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "A already observed as true")
}

func TestFormatQuery(t *testing.T) {
	assert.Equal(t, "P(C)", formatQuery("C", nil))
	assert.Equal(t, "P(C | A=true, B=false)", formatQuery("C", map[string]string{"B": "false", "A": "true"}))
}
