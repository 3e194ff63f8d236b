// Package lineage persists generated studies between runs. The lineage
// record is the serialized form of a study (schema fingerprint, strategy,
// sets with hashes and ordinals) that seeds the merge engine on the next
// regeneration of the same study name.
//
// The store is SQLite with WAL mode. Every rewrite happens in a single
// transaction, so a lineage is replaced atomically or not at all, and
// removed sets are retired in place rather than deleted - pruning stale
// artifacts is the caller's decision.
//
// The store implements no locking of its own: concurrent regeneration of
// the SAME study name requires external mutual exclusion (a build system
// invocation serializes study regeneration before graph construction).
// Different study names are independent rows and may be written by
// independent processes.
package lineage
