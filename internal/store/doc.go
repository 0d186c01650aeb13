// Package store provides SQLite-backed durable storage for compiled models
// and the posterior query log.
//
// The store is append-only:
//   - Models: canonical JSON of each compiled model, keyed by its
//     content hash (ir.ModelHash). Writing the same model twice is a no-op.
//   - Queries: one row per answered or failed query, keyed by
//     ir.QueryID, with the run that issued it, evidence, elimination order,
//     posterior, and cache statistics.
//
// # Critical Patterns
//
// Logical time:
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - NextSeq hands out MAX(seq)+1 across both tables
//
// Deterministic reads:
//   - All queries MUST include: ORDER BY seq ASC, id ASC COLLATE BINARY
//   - Ensures identical results across replays
//
// Float storage:
//   - Probabilities are stored as canonical JSON text, never in REAL
//     columns, so a logged posterior reads back bit-for-bit
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
