// Package study assigns stable identity to generated parameter sets and
// reconciles regenerated studies against their previous lineage.
//
// Identity is content-addressed: a set's hash is a pure function of its
// name-to-value mapping, independent of generation order and ordinal. The
// merge engine uses that identity to keep a set's ordinal (and therefore
// its on-disk name) fixed across regenerations, which is what downstream
// incremental builds key their artifacts to.
package study
