// Package search provides generic graph search over problems that expose a
// start node, a goal test, outgoing arcs, and a heuristic.
//
// Two searchers are provided:
//
//   - AStar: best-first on path cost plus heuristic, with multiple-path
//     pruning on node keys. Optimal for admissible heuristics.
//   - BranchAndBound: depth-first, keeping the cheapest goal path found so
//     far as the bound. Uses linear memory.
//
// Both count node expansions and stop with a LimitError once a configured
// expansion limit is exceeded.
package search
