// Package session runs named posterior queries against one model and
// records them in the query log.
//
// A Session binds together:
//   - a compiled model and its content hash
//   - an rc.Engine whose cache lives as long as the session
//   - an optional store.Store that receives the model and every query
//   - a run ID and a logical clock
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// Every logged query is stamped with a seq from Clock.Next(), resumed from
// store.NextSeq when a store is attached. NEVER use wall-clock timestamps
// for ordering.
//
// Content-addressed identity:
// Query IDs come from ir.QueryID(modelHash, variable, evidence, seq), so
// the same question asked at the same logical time has the same ID.
//
// Replay re-answers logged queries from the stored canonical model and
// reports any posterior that differs from the log.
package session
