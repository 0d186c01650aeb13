// Package model provides the graphical-model representation queried by the
// inference engine in internal/rc.
//
// A Model is an immutable set of variables and factors:
//
//   - Variable: a named random variable with a finite domain of string values.
//     Variables are compared by identity, so the *Variable pointer is the map
//     key everywhere an assignment is needed.
//   - Factor: a non-negative weight function over a fixed scope of variables,
//     evaluated only on total assignments to that scope.
//   - Model: the container. Every variable mentioned in a factor scope must
//     belong to the model (checked by New).
//
// The example networks (NewChain, NewFireAlarm, NewSprinkler) are built by
// factory functions; nothing is constructed at package load time.
package model
