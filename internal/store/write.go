package store

import (
	"context"
	"fmt"

	"github.com/roach88/aigo/internal/ir"
)

// WriteModel inserts a compiled model keyed by its content hash.
// Uses ON CONFLICT(hash) DO NOTHING for idempotency - the first write wins,
// so created_seq records when the model was first seen.
func (s *Store) WriteModel(ctx context.Context, rec ir.ModelRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO models (hash, name, canonical, created_seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`,
		rec.Hash,
		rec.Name,
		rec.Canonical,
		rec.Seq,
	)
	if err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

// WriteQuery appends a query record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
//
// Note: The model referenced by ModelHash must exist (foreign key constraint).
func (s *Store) WriteQuery(ctx context.Context, rec ir.QueryRecord) error {
	evidenceJSON, err := marshalEvidence(rec.Evidence)
	if err != nil {
		return fmt.Errorf("write query: %w", err)
	}
	orderJSON, err := marshalOrder(rec.ElimOrder)
	if err != nil {
		return fmt.Errorf("write query: %w", err)
	}
	distJSON, err := marshalDistribution(rec.Distribution)
	if err != nil {
		return fmt.Errorf("write query: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO queries
		(id, run_id, model_hash, seq, variable, evidence, elim_order, distribution, cache_hits, cache_size, error_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.RunID,
		rec.ModelHash,
		rec.Seq,
		rec.Variable,
		evidenceJSON,
		orderJSON,
		distJSON,
		rec.CacheHits,
		rec.CacheSize,
		rec.ErrorCode,
	)
	if err != nil {
		return fmt.Errorf("write query: %w", err)
	}
	return nil
}
