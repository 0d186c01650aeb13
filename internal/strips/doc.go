// Package strips represents planning problems with STRIPS actions and turns
// them into search problems.
//
// A state assigns values to features. An action is applicable when every
// precondition holds, and it sets every feature named in its effects,
// leaving the rest unchanged. Boolean features use the values "true" and
// "false".
//
// Forward planning searches over states from the initial state.
// Regression planning searches over subgoals from the goal back to a
// subgoal that already holds in the initial state.
package strips
