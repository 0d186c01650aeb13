// Package rc implements exact posterior inference over a graphical model by
// recursive conditioning.
//
// An Engine is bound to one model. Query(X, evidence, order) computes
// P(X | evidence) by summing, for each value of X, the product of all factors
// over the remaining variables, then normalizing.
//
// RECURSIVE PROCEDURE:
//
// sum(context, factors, order) is defined by the first rule that applies:
//  1. Cache hit: (context, factors) was computed before.
//  2. Forgetting: context variables that no remaining factor mentions are
//     dropped, keeping cache keys small.
//  3. Evaluation: factors whose scope is fully assigned are multiplied in
//     and removed. A zero weight ends the branch immediately.
//  4. Splitting: factors whose free variables form two or more disconnected
//     groups are summed independently and the results multiplied.
//  5. Branching: the last variable of order is assigned each domain value in
//     turn; the total is cached.
//
// CACHE:
//
// The cache key is an explicit canonical encoding of the context (ascending
// model variable index, value index pairs) and the factor set (ascending
// factor indices), so equal keys mean equal sub-problems regardless of how
// the context was built. The cache lives as long as the Engine and never
// evicts; repeated queries reuse earlier sub-sums.
//
// Thread-safety: Query may be called from multiple goroutines. With
// WithParallel, independent components are summed concurrently; the cache is
// guarded by a RWMutex and statistics use atomics.
package rc
