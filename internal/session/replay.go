package session

import (
	"context"
	"fmt"
	"math"

	"github.com/roach88/aigo/internal/ir"
	"github.com/roach88/aigo/internal/model"
	"github.com/roach88/aigo/internal/rc"
	"github.com/roach88/aigo/internal/store"
)

// ReplayMismatch describes a logged query whose re-answer differs.
type ReplayMismatch struct {
	QueryID  string `json:"query_id"`
	Seq      int64  `json:"seq"`
	Variable string `json:"variable"`
	Reason   string `json:"reason"`
}

// ReplayReport summarizes a replay.
type ReplayReport struct {
	Queries       int              `json:"queries"`
	Models        int              `json:"models"`
	Mismatches    []ReplayMismatch `json:"mismatches"`
	Deterministic bool             `json:"deterministic"`
}

// Replay re-answers every logged query matching f against a fresh engine
// per stored model and compares posteriors and error codes with the log.
//
// Posteriors must agree to within tolerance; a negative tolerance means
// exact equality. Nothing is written to the store.
func Replay(ctx context.Context, st *store.Store, f store.QueryFilter, tolerance float64, opts ...rc.Option) (ReplayReport, error) {
	records, err := st.ReadQueries(ctx, f)
	if err != nil {
		return ReplayReport{}, fmt.Errorf("replay: %w", err)
	}

	report := ReplayReport{Mismatches: []ReplayMismatch{}}
	sessions := make(map[string]*Session)
	for _, rec := range records {
		s, ok := sessions[rec.ModelHash]
		if !ok {
			m, err := loadModel(ctx, st, rec.ModelHash)
			if err != nil {
				return ReplayReport{}, err
			}
			s, err = New(ctx, m, WithEngineOptions(opts...))
			if err != nil {
				return ReplayReport{}, err
			}
			if s.Hash() != rec.ModelHash {
				return ReplayReport{}, fmt.Errorf("replay: model %s rebuilds with hash %s", rec.ModelHash, s.Hash())
			}
			sessions[rec.ModelHash] = s
		}

		dist, qerr := s.ask(Query{Variable: rec.Variable, Evidence: rec.Evidence, Order: rec.ElimOrder})
		report.Queries++

		if reason := compareRecord(rec, dist, qerr, tolerance); reason != "" {
			report.Mismatches = append(report.Mismatches, ReplayMismatch{
				QueryID:  rec.ID,
				Seq:      rec.Seq,
				Variable: rec.Variable,
				Reason:   reason,
			})
		}
	}
	report.Models = len(sessions)
	report.Deterministic = len(report.Mismatches) == 0
	return report, nil
}

func loadModel(ctx context.Context, st *store.Store, hash string) (*model.Model, error) {
	rec, err := st.ReadModel(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	m, err := model.FromCanonical([]byte(rec.Canonical))
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	return m, nil
}

func compareRecord(rec ir.QueryRecord, dist rc.Distribution, qerr error, tolerance float64) string {
	got := string(rc.ErrorCode(qerr))
	if qerr != nil && got == "" {
		return fmt.Sprintf("replay failed: %v", qerr)
	}
	if got != rec.ErrorCode {
		return fmt.Sprintf("error code %q, logged %q", got, rec.ErrorCode)
	}
	if qerr != nil {
		return ""
	}

	probs := dist.Map()
	if len(probs) != len(rec.Distribution) {
		return fmt.Sprintf("posterior has %d values, logged %d", len(probs), len(rec.Distribution))
	}
	for val, want := range rec.Distribution {
		p, ok := probs[val]
		if !ok {
			return fmt.Sprintf("value %q missing from posterior", val)
		}
		exact := tolerance < 0
		if (exact && p != want) || (!exact && math.Abs(p-want) > tolerance) {
			return fmt.Sprintf("P(%s=%s) = %v, logged %v", rec.Variable, val, p, want)
		}
	}
	return ""
}
