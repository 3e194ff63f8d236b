// Package dataset materializes a merged study as a labeled, column-oriented
// dataset and serializes it to a JSON artifact file.
//
// The dataset's primary coordinate is the parameter set, ordered by final
// ordinal. Each parameter name becomes one variable holding that parameter's
// value across all sets. The file round-trips: ReadFile followed by ToStudy
// reconstructs a study equivalent to the one materialized, which is how an
// exported artifact can seed a later merge when no lineage store is at hand.
//
// Writes are atomic. The artifact is written to a temp file in the target
// directory and renamed into place, so consumers never observe a partial
// file.
package dataset
