// Package harness runs YAML query scenarios against a model and checks the
// posteriors, errors, and query log they produce.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: chain_posteriors
//	description: "What this scenario validates"
//	model:
//	  path: ../models/chain.cue   # relative to the scenario file
//	  network: chain
//	run_id: run-chain
//	queries:
//	  - variable: C
//	    evidence: { A: "true" }
//	    expect:
//	      probs: { "false": 0.36, "true": 0.64 }
//	  - variable: D
//	    expect:
//	      error: UNKNOWN_VARIABLE
//	assertions:
//	  - type: matches_enumeration
//	  - type: log_count
//	    count: 2
//
// A model is either a CUE network (path plus network name) or one of the
// built-in examples (example: fire_alarm).
//
// # Assertion Types
//
//   - matches_enumeration: every answered query agrees with brute-force enumeration
//   - cache_hits: the engine recorded at least min cache hits
//   - log_count: the query log holds exactly count rows, optionally filtered
//     by variable and error_code
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory store, a fixed run ID, and a logical
// clock, so traces are identical across runs and can be compared against
// golden files.
package harness
