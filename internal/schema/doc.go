// Package schema models the user-supplied parameter schema: an ordered
// mapping from parameter name to a specification variant (fixed value,
// sampled range, or discrete choice set).
//
// Declaration order is preserved and load-bearing: cartesian and
// one-at-a-time generation define their output ordering in terms of it.
// A Schema is validated once and immutable afterwards; generation never
// mutates it.
package schema
