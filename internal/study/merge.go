package study

import (
	"errors"
	"fmt"
	"sort"
)

// MergeError represents an incompatible lineage/request combination.
// It is fatal: the caller must explicitly discard the previous lineage to
// proceed, the engine never does so on its own.
type MergeError struct {
	// Code identifies the error category.
	Code MergeErrorCode

	// Study is the logical study name being merged.
	Study string

	// Message is a human-readable description.
	Message string
}

// MergeErrorCode categorizes merge errors.
type MergeErrorCode string

const (
	// ErrCodeStrategyChanged indicates the new study was generated by a
	// different strategy than the lineage records. Ordinal assignments from
	// one strategy's ordering are meaningless under another's.
	ErrCodeStrategyChanged MergeErrorCode = "STRATEGY_CHANGED"

	// ErrCodeStudyMismatch indicates the lineage belongs to a different
	// logical study name.
	ErrCodeStudyMismatch MergeErrorCode = "STUDY_MISMATCH"
)

// Error implements the error interface.
func (e *MergeError) Error() string {
	return fmt.Sprintf("%s: %s (study=%s)", e.Code, e.Message, e.Study)
}

// IsMergeError reports whether err is (or wraps) a MergeError.
func IsMergeError(err error) bool {
	var me *MergeError
	return errors.As(err, &me)
}

// Report describes how a merge partitioned the new study's sets against
// the previous lineage. Removed sets are dropped from the merged study but
// reported so callers can decide whether to prune stale build artifacts;
// the engine itself never deletes anything.
type Report struct {
	Retained []ParameterSet // present in both; previous ordinals kept
	Added    []ParameterSet // new; fresh ordinals past the previous maximum
	Removed  []ParameterSet // present only in the lineage, with their old ordinals
}

// Merge reconciles a newly generated study with the previous lineage.
//
// With no lineage the new study's ordinals stand as assigned. Otherwise
// sets are partitioned by content hash: retained sets keep their previous
// ordinal and name (not the new one), added sets receive fresh ordinals
// continuing from the previous maximum in the new study's generation
// order, and removed sets are dropped but reported. The merged order is
// retained sets in their original ordinal order followed by added sets,
// which makes ordinals stable under removal: deleting a middle set never
// renumbers the survivors.
func Merge(next *Study, prev *Study) (*Study, *Report, error) {
	if prev == nil {
		report := &Report{Added: append([]ParameterSet(nil), next.Sets...)}
		return next, report, nil
	}

	if prev.Name != next.Name {
		return nil, nil, &MergeError{
			Code:    ErrCodeStudyMismatch,
			Study:   next.Name,
			Message: fmt.Sprintf("lineage belongs to study %q", prev.Name),
		}
	}
	if prev.Strategy != next.Strategy {
		return nil, nil, &MergeError{
			Code:  ErrCodeStrategyChanged,
			Study: next.Name,
			Message: fmt.Sprintf("lineage was generated by %q, new request uses %q; discard the lineage explicitly to switch",
				prev.Strategy, next.Strategy),
		}
	}

	prevByHash := make(map[string]ParameterSet, len(prev.Sets))
	for _, set := range prev.Sets {
		prevByHash[set.Hash] = set
	}
	nextHashes := make(map[string]bool, len(next.Sets))
	for _, set := range next.Sets {
		nextHashes[set.Hash] = true
	}

	report := &Report{}

	// Retained sets keep the lineage ordinal; sort restores their original
	// ordinal order regardless of where the new generation placed them.
	for _, set := range next.Sets {
		if old, ok := prevByHash[set.Hash]; ok {
			report.Retained = append(report.Retained, ParameterSet{
				Ordinal: old.Ordinal,
				Hash:    set.Hash,
				Values:  set.Values,
			})
		}
	}
	sort.Slice(report.Retained, func(i, j int) bool {
		return report.Retained[i].Ordinal < report.Retained[j].Ordinal
	})

	// Added sets continue past the previous maximum ordinal - including
	// ordinals of sets being removed in this same merge, so a dropped
	// set's name is never reassigned to different content.
	nextOrdinal := prev.MaxOrdinal() + 1
	for _, set := range next.Sets {
		if _, ok := prevByHash[set.Hash]; ok {
			continue
		}
		report.Added = append(report.Added, ParameterSet{
			Ordinal: nextOrdinal,
			Hash:    set.Hash,
			Values:  set.Values,
		})
		nextOrdinal++
	}

	for _, set := range prev.Sets {
		if !nextHashes[set.Hash] {
			report.Removed = append(report.Removed, set)
		}
	}

	merged := &Study{
		Name:       next.Name,
		Strategy:   next.Strategy,
		SchemaHash: next.SchemaHash,
		Sets:       make([]ParameterSet, 0, len(report.Retained)+len(report.Added)),
	}
	merged.Sets = append(merged.Sets, report.Retained...)
	merged.Sets = append(merged.Sets, report.Added...)

	return merged, report, nil
}
