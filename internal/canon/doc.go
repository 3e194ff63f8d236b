// Package canon defines the canonical value model used for parameter set
// identity. A parameter set is an Object mapping parameter names to scalar
// values; MarshalCanonical renders it as RFC 8785 canonical JSON and SetHash
// derives the content-addressed identity from that rendering.
//
// The canonical form is the ONLY serialization that may feed hashing:
// keys are ordered by UTF-16 code units, strings are NFC normalized, and
// floats use a fixed-precision scientific encoding so that a value hashes
// identically no matter which strategy produced it.
package canon
