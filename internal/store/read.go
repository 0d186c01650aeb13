package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/aigo/internal/ir"
)

// QueryFilter narrows ReadQueries. Zero values match everything.
type QueryFilter struct {
	RunID     string
	ModelHash string
	Limit     int // 0 = no limit
}

// ReadModel retrieves a model by hash.
// The error wraps sql.ErrNoRows if not found.
func (s *Store) ReadModel(ctx context.Context, hash string) (ir.ModelRecord, error) {
	var rec ir.ModelRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT hash, name, canonical, created_seq
		FROM models
		WHERE hash = ?
	`, hash).Scan(&rec.Hash, &rec.Name, &rec.Canonical, &rec.Seq)
	if err != nil {
		return ir.ModelRecord{}, fmt.Errorf("read model %s: %w", hash, err)
	}
	return rec, nil
}

// ReadModels returns every stored model ordered by first appearance.
// Returns an empty slice (not nil) for an empty store.
func (s *Store) ReadModels(ctx context.Context) ([]ir.ModelRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hash, name, canonical, created_seq
		FROM models
		ORDER BY created_seq ASC, hash COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query models: %w", err)
	}
	defer rows.Close()

	models := []ir.ModelRecord{}
	for rows.Next() {
		var rec ir.ModelRecord
		if err := rows.Scan(&rec.Hash, &rec.Name, &rec.Canonical, &rec.Seq); err != nil {
			return nil, fmt.Errorf("scan model: %w", err)
		}
		models = append(models, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate models: %w", err)
	}
	return models, nil
}

// ReadQueries returns logged queries matching f.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ReadQueries(ctx context.Context, f QueryFilter) ([]ir.QueryRecord, error) {
	var (
		where []string
		args  []any
	)
	if f.RunID != "" {
		where = append(where, "run_id = ?")
		args = append(args, f.RunID)
	}
	if f.ModelHash != "" {
		where = append(where, "model_hash = ?")
		args = append(args, f.ModelHash)
	}

	q := `
		SELECT id, run_id, model_hash, seq, variable, evidence, elim_order, distribution, cache_hits, cache_size, error_code
		FROM queries`
	if len(where) > 0 {
		q += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	q += "\n\t\tORDER BY seq ASC, id COLLATE BINARY ASC"
	if f.Limit > 0 {
		q += "\n\t\tLIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query queries: %w", err)
	}
	defer rows.Close()

	records := []ir.QueryRecord{}
	for rows.Next() {
		rec, err := scanQuery(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queries: %w", err)
	}
	return records, nil
}

// ReadQuery retrieves a single query by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadQuery(ctx context.Context, id string) (ir.QueryRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, run_id, model_hash, seq, variable, evidence, elim_order, distribution, cache_hits, cache_size, error_code
		FROM queries
		WHERE id = ?
	`, id)
	return scanQuery(row)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanQuery(sc scanner) (ir.QueryRecord, error) {
	var (
		rec                               ir.QueryRecord
		evidenceJSON, orderJSON, distJSON string
	)
	err := sc.Scan(
		&rec.ID,
		&rec.RunID,
		&rec.ModelHash,
		&rec.Seq,
		&rec.Variable,
		&evidenceJSON,
		&orderJSON,
		&distJSON,
		&rec.CacheHits,
		&rec.CacheSize,
		&rec.ErrorCode,
	)
	if err == sql.ErrNoRows {
		return ir.QueryRecord{}, err
	}
	if err != nil {
		return ir.QueryRecord{}, fmt.Errorf("scan query: %w", err)
	}

	if rec.Evidence, err = unmarshalEvidence(evidenceJSON); err != nil {
		return ir.QueryRecord{}, err
	}
	if rec.ElimOrder, err = unmarshalOrder(orderJSON); err != nil {
		return ir.QueryRecord{}, err
	}
	if rec.Distribution, err = unmarshalDistribution(distJSON); err != nil {
		return ir.QueryRecord{}, err
	}
	return rec, nil
}
