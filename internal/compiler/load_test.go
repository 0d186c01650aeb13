package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/aigo/internal/model"
)

func writeCUE(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadNetworks_File(t *testing.T) {
	result, errs := LoadNetworks(filepath.Join("testdata", "fire_alarm.cue"), LoadModeFailFast)
	require.Empty(t, errs)
	require.Len(t, result.Models, 1)
	assert.Equal(t, 1, result.FileCount)

	m, ok := result.Lookup("fire_alarm")
	require.True(t, ok)

	want, err := model.NewFireAlarm().Hash()
	require.NoError(t, err)
	got, err := m.Hash()
	require.NoError(t, err)
	assert.Equal(t, want, got, "CUE and Go renditions are the same model")
}

func TestLoadNetworks_Directory(t *testing.T) {
	result, errs := LoadNetworks("testdata", LoadModeCollectAll)
	require.Empty(t, errs)
	assert.Equal(t, 2, result.FileCount)
	assert.Len(t, result.Models, 2)

	_, ok := result.Lookup("chain")
	assert.True(t, ok)
	_, ok = result.Lookup("missing")
	assert.False(t, ok)
}

func TestLoadNetworks_NotFound(t *testing.T) {
	_, errs := LoadNetworks(filepath.Join(t.TempDir(), "nope"), LoadModeFailFast)
	require.Len(t, errs, 1)

	var le *LoadError
	require.True(t, errors.As(errs[0], &le))
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestLoadNetworks_EmptyDirectory(t *testing.T) {
	_, errs := LoadNetworks(t.TempDir(), LoadModeFailFast)
	require.Len(t, errs, 1)

	var le *LoadError
	require.True(t, errors.As(errs[0], &le))
	assert.Equal(t, ErrCodeNoFiles, le.Code)
}

func TestLoadNetworks_NotCUE(t *testing.T) {
	path := writeCUE(t, t.TempDir(), "model.txt", "hello")
	_, errs := LoadNetworks(path, LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), ErrCodeNoFiles)
}

func TestLoadNetworks_SyntaxError(t *testing.T) {
	path := writeCUE(t, t.TempDir(), "bad.cue", "network: n: {")
	_, errs := LoadNetworks(path, LoadModeFailFast)
	require.Len(t, errs, 1)

	var le *LoadError
	require.True(t, errors.As(errs[0], &le))
	assert.Equal(t, ErrCodeLoadFailed, le.Code)
}

func TestLoadNetworks_NoNetworks(t *testing.T) {
	path := writeCUE(t, t.TempDir(), "empty.cue", `other: 1`)
	_, errs := LoadNetworks(path, LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "no networks found")
}

func TestLoadNetworks_CollectAll(t *testing.T) {
	path := writeCUE(t, t.TempDir(), "mixed.cue", `
network: good: {
	variables: [{name: "A"}]
	cpts: [{child: "A", table: [0.5, 0.5]}]
}
network: bad1: {
	variables: [{name: "A"}]
	cpts: [{child: "A", table: [0.5, 0.6]}]
}
network: bad2: {
	variables: [{name: "A"}]
	cpts: [{child: "Z", table: [0.5, 0.5]}]
}
`)

	result, errs := LoadNetworks(path, LoadModeCollectAll)
	require.Len(t, errs, 2)
	require.Len(t, result.Models, 1)
	assert.Equal(t, "good", result.Models[0].Name())

	var le *LoadError
	require.True(t, errors.As(errs[0], &le))
	assert.Equal(t, ErrCodeTable, le.Code)
	assert.Contains(t, le.Message, "network.bad1")
	require.True(t, errors.As(errs[1], &le))
	assert.Equal(t, ErrCodeReference, le.Code)

	_, errs = LoadNetworks(path, LoadModeFailFast)
	assert.Len(t, errs, 1)
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := map[string]string{
		"variables":        ErrCodeVariables,
		"variables.A":      ErrCodeVariables,
		"variable.A":       ErrCodeVariables,
		"cpts.child":       ErrCodeReference,
		"cpts.parents":     ErrCodeReference,
		"factors.scope":    ErrCodeReference,
		"factors":          ErrCodeFactors,
		"cpts.A.table":     ErrCodeFactors,
		"number":           ErrCodeFactors,
		"factor.P(A)":      ErrCodeTable,
		"cue":              ErrCodeGeneric,
	}
	for field, want := range tests {
		assert.Equal(t, want, MapFieldToErrorCode(field), field)
	}
}

func TestLoadErrorFormat(t *testing.T) {
	err := &LoadError{Code: ErrCodeNotFound, Message: "path not found: x"}
	assert.Equal(t, "E005: path not found: x", err.Error())
}
