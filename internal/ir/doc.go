// Package ir provides the canonical intermediate representation for aigo.
//
// Models and query records are converted to IR values and serialized with
// MarshalCanonical before hashing, so identities are stable across runs,
// platforms, and map iteration order.
//
// This package imports nothing internal. internal/model, internal/store, and
// internal/harness build on it.
//
// Key design constraints:
//   - Object keys are sorted by UTF-16 code units (RFC 8785)
//   - Strings are NFC normalized at the serialization boundary
//   - Floats are allowed but must be finite; they use the shortest
//     round-trip representation
//   - All JSON tags use snake_case
package ir
