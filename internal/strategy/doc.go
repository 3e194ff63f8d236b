// Package strategy implements the pluggable generation algorithms that turn
// a validated schema into a raw matrix of parameter sets: full-factorial
// cartesian product, one-at-a-time perturbation, Latin hypercube sampling,
// Sobol low-discrepancy sequences, and caller-supplied custom matrices.
//
// All strategies are deterministic: the same schema and options reproduce
// the same matrix bit for bit. Row ordering is part of each strategy's
// contract because it seeds the initial ordinal assignment downstream.
package strategy
