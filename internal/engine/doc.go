// Package engine runs the full generation pipeline: schema to strategy
// matrix, identity assignment, lineage merge, persistence, and dataset
// materialization.
//
// The pipeline is a single call, Generate. Each stage's failures surface as
// that stage's typed error (schema.Error, strategy.GenerationError,
// study.MergeError, lineage.SerializationError) so callers can match on
// errors.As without the engine re-wrapping them into its own taxonomy.
package engine
