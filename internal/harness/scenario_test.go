package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "chain_posteriors.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "chain_posteriors", s.Name)
	assert.Equal(t, "run-chain", s.RunID)
	assert.Equal(t, filepath.Join("testdata", "models", "chain.cue"), s.Model.Path)
	assert.Equal(t, "chain", s.Model.Network)
	require.Len(t, s.Queries, 5)
	assert.Equal(t, map[string]string{"A": "true"}, s.Queries[1].Evidence)
	assert.Equal(t, []string{"B"}, s.Queries[2].Order)
	assert.Equal(t, 1e-6, s.Queries[2].Expect.Tolerance)
	assert.Equal(t, "UNKNOWN_VARIABLE", s.Queries[3].Expect.Error)
	require.Len(t, s.Assertions, 4)
	assert.Equal(t, AssertLogCount, s.Assertions[1].Type)
	assert.Equal(t, "C", s.Assertions[2].Variable)
}

func TestLoadScenario_Example(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "fire_alarm_diagnosis.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "fire_alarm", s.Model.Example)
	assert.Equal(t, 4, s.Parallel)
	assert.Empty(t, s.RunID)
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "misspelled assertions"
model: { example: chain }
queries:
  - variable: A
assertion:
  - type: log_count
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\nmodel: {example: chain}\nqueries: [{variable: A}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: n\nmodel: {example: chain}\nqueries: [{variable: A}]\n",
			wantErr: "description is required",
		},
		{
			name:    "missing model",
			yaml:    "name: n\ndescription: d\nqueries: [{variable: A}]\n",
			wantErr: "path or example is required",
		},
		{
			name:    "unknown example",
			yaml:    "name: n\ndescription: d\nmodel: {example: nope}\nqueries: [{variable: A}]\n",
			wantErr: `unknown example "nope"`,
		},
		{
			name:    "path without network",
			yaml:    "name: n\ndescription: d\nmodel: {path: x.cue}\nqueries: [{variable: A}]\n",
			wantErr: "network is required",
		},
		{
			name:    "path and example",
			yaml:    "name: n\ndescription: d\nmodel: {path: x.cue, network: x, example: chain}\nqueries: [{variable: A}]\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "model file missing",
			yaml:    "name: n\ndescription: d\nmodel: {path: x.cue, network: x}\nqueries: [{variable: A}]\n",
			wantErr: "model file not found",
		},
		{
			name:    "no queries",
			yaml:    "name: n\ndescription: d\nmodel: {example: chain}\n",
			wantErr: "queries list is required",
		},
		{
			name:    "query without variable",
			yaml:    "name: n\ndescription: d\nmodel: {example: chain}\nqueries: [{evidence: {A: \"true\"}}]\n",
			wantErr: "queries[0]: variable is required",
		},
		{
			name:    "unknown error code",
			yaml:    "name: n\ndescription: d\nmodel: {example: chain}\nqueries: [{variable: A, expect: {error: BOOM}}]\n",
			wantErr: `unknown error code "BOOM"`,
		},
		{
			name:    "probs and error",
			yaml:    "name: n\ndescription: d\nmodel: {example: chain}\nqueries: [{variable: A, expect: {error: UNKNOWN_VARIABLE, probs: {\"true\": 1}}}]\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "negative parallel",
			yaml:    "name: n\ndescription: d\nmodel: {example: chain}\nparallel: -1\nqueries: [{variable: A}]\n",
			wantErr: "parallel must be non-negative",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: n\ndescription: d\nmodel: {example: chain}\nqueries: [{variable: A}]\nassertions: [{type: trace_order}]\n",
			wantErr: `unknown assertion type "trace_order"`,
		},
		{
			name:    "assertion without type",
			yaml:    "name: n\ndescription: d\nmodel: {example: chain}\nqueries: [{variable: A}]\nassertions: [{count: 1}]\n",
			wantErr: "assertions[0]: type is required",
		},
		{
			name:    "negative count",
			yaml:    "name: n\ndescription: d\nmodel: {example: chain}\nqueries: [{variable: A}]\nassertions: [{type: log_count, count: -1}]\n",
			wantErr: "count must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
