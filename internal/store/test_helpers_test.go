package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/aigo/internal/ir"
)

// createTestStore creates a new store in a per-test temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestModel writes a minimal model record and returns it.
func createTestModel(t *testing.T, s *Store, hash string, seq int64) ir.ModelRecord {
	t.Helper()
	rec := ir.ModelRecord{
		Hash:      hash,
		Name:      "test-" + hash,
		Canonical: `{"factors":[],"name":"test","variables":[]}`,
		Seq:       seq,
	}
	if err := s.WriteModel(context.Background(), rec); err != nil {
		t.Fatalf("WriteModel() failed: %v", err)
	}
	return rec
}

// createTestQuery creates a query record with minimal required fields.
func createTestQuery(id, runID, modelHash string, seq int64) ir.QueryRecord {
	return ir.QueryRecord{
		ID:           id,
		RunID:        runID,
		ModelHash:    modelHash,
		Seq:          seq,
		Variable:     "C",
		Evidence:     map[string]string{"A": "true"},
		Distribution: map[string]float64{"false": 0.25, "true": 0.75},
		CacheHits:    3,
		CacheSize:    7,
	}
}
