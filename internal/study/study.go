package study

import (
	"fmt"

	"studygen/internal/canon"
	"studygen/internal/strategy"
)

// SetNamePrefix is the stem of every generated set name. The full name is
// the prefix followed by the set's ordinal, e.g. "parameter_set3", and is
// used by build systems as a subdirectory and target-namespace key.
const SetNamePrefix = "parameter_set"

// ParameterSet is one concrete point of a study: an ordered name-to-value
// mapping plus the identity attributes derived for it.
type ParameterSet struct {
	// Ordinal is the zero-based position within the study's merge lineage.
	// It is stable for a given content hash across regenerations of the
	// same study, but not across unrelated studies.
	Ordinal int

	// Hash is the content-addressed identity, derived solely from Values.
	Hash string

	// Values maps parameter names to this set's concrete values.
	Values canon.Object
}

// Name returns the human-readable set name derived from the ordinal.
func (p ParameterSet) Name() string {
	return fmt.Sprintf("%s%d", SetNamePrefix, p.Ordinal)
}

// Study is an ordered sequence of unique parameter sets together with the
// originating strategy and schema fingerprint. Sequence order is the
// canonical ordinal order; no two sets share a content hash.
type Study struct {
	// Name is the logical study name the lineage is keyed under.
	Name string

	// Strategy is the registry name of the strategy that generated the sets.
	Strategy string

	// SchemaHash fingerprints the schema the sets were generated from.
	SchemaHash string

	// Sets holds the parameter sets in canonical ordinal order.
	Sets []ParameterSet
}

// Identify turns a raw strategy matrix into a Study with content hashes and
// ordinals assigned.
//
// Duplicate rows are legitimate strategy output (one-at-a-time repeats the
// nominal set when a parameter has a single sample; cartesian degenerates
// the same way on one-valued dimensions), so rows hashing identically to an
// earlier row are dropped, keeping the first occurrence. Ordinals number
// the deduplicated sequence from zero.
func Identify(name, strategyName, schemaHash string, m *strategy.Matrix) (*Study, error) {
	st := &Study{
		Name:       name,
		Strategy:   strategyName,
		SchemaHash: schemaHash,
	}

	seen := make(map[string]bool, m.Len())
	for i := 0; i < m.Len(); i++ {
		values := m.Row(i)
		hash, err := canon.SetHash(values)
		if err != nil {
			return nil, fmt.Errorf("identify row %d: %w", i, err)
		}
		if seen[hash] {
			continue
		}
		seen[hash] = true
		st.Sets = append(st.Sets, ParameterSet{
			Ordinal: len(st.Sets),
			Hash:    hash,
			Values:  values,
		})
	}

	return st, nil
}

// Lookup returns the set with the given content hash.
func (s *Study) Lookup(hash string) (ParameterSet, bool) {
	for _, set := range s.Sets {
		if set.Hash == hash {
			return set, true
		}
	}
	return ParameterSet{}, false
}

// MaxOrdinal returns the largest ordinal in the study, or -1 when empty.
// Fresh ordinals continue from here even when higher-numbered sets have
// been removed, so a removed set's name is never recycled.
func (s *Study) MaxOrdinal() int {
	max := -1
	for _, set := range s.Sets {
		if set.Ordinal > max {
			max = set.Ordinal
		}
	}
	return max
}
