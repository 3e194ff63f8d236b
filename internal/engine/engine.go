package engine

import (
	"context"
	"fmt"
	"log/slog"

	"studygen/internal/dataset"
	"studygen/internal/lineage"
	"studygen/internal/schema"
	"studygen/internal/strategy"
	"studygen/internal/study"
)

// Request describes one generation run.
type Request struct {
	// Schema is the validated parameter schema to generate from.
	Schema *schema.Schema

	// StudyName keys the lineage record and the output artifact.
	StudyName string

	// Strategy is the registry name passed to strategy.New.
	Strategy string

	// Options carries the strategy's per-run knobs (count, seed, skip,
	// custom matrix).
	Options strategy.Options

	// Lineage is the store holding previous runs. Nil means no lineage:
	// the run's ordinals are final as assigned and nothing is persisted.
	Lineage *lineage.Store

	// OutputPath, when non-empty, is where the materialized dataset file
	// is written.
	OutputPath string

	// DiscardLineage drops the study's existing lineage before merging.
	// This is the explicit escape hatch for strategy changes; it is never
	// implied.
	DiscardLineage bool

	// IgnoreCorruptLineage downgrades a corrupt lineage record to "no
	// previous lineage" instead of failing the run. Ordinals restart from
	// zero in that case.
	IgnoreCorruptLineage bool
}

// Result is what a completed run produced.
type Result struct {
	// Study holds the merged parameter sets in final ordinal order.
	Study *study.Study

	// Report partitions the run against the previous lineage. With no
	// previous lineage every set is Added.
	Report *study.Report

	// Dataset is the materialized form of Study, written to OutputPath
	// when one was requested.
	Dataset *dataset.Dataset
}

// Generate runs the pipeline end to end. The merged study is persisted and
// materialized only after every stage has succeeded, so a failed run leaves
// both the lineage store and any existing output file untouched.
func Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Schema == nil {
		return nil, fmt.Errorf("generate: schema is required")
	}
	if req.StudyName == "" {
		return nil, fmt.Errorf("generate: study name is required")
	}

	strat, err := strategy.New(req.Strategy)
	if err != nil {
		return nil, err
	}

	schemaHash, err := req.Schema.Hash()
	if err != nil {
		return nil, fmt.Errorf("generate: hash schema: %w", err)
	}

	matrix, err := strat.Generate(req.Schema, req.Options)
	if err != nil {
		return nil, err
	}
	slog.Debug("matrix generated",
		"study", req.StudyName,
		"strategy", strat.Name(),
		"rows", matrix.Len())

	next, err := study.Identify(req.StudyName, strat.Name(), schemaHash, matrix)
	if err != nil {
		return nil, err
	}

	prev, err := loadPrevious(ctx, req)
	if err != nil {
		return nil, err
	}

	merged, report, err := study.Merge(next, prev)
	if err != nil {
		return nil, err
	}
	slog.Info("study merged",
		"study", req.StudyName,
		"retained", len(report.Retained),
		"added", len(report.Added),
		"removed", len(report.Removed))

	if req.Lineage != nil {
		canonical, err := req.Schema.Canonical()
		if err != nil {
			return nil, fmt.Errorf("generate: canonicalize schema: %w", err)
		}
		if err := req.Lineage.SaveStudy(ctx, merged, canonical, report.Removed); err != nil {
			return nil, err
		}
	}

	ds, err := dataset.FromStudy(merged, req.Schema.Names())
	if err != nil {
		return nil, fmt.Errorf("generate: materialize: %w", err)
	}
	if req.OutputPath != "" {
		if err := dataset.WriteFile(ds, req.OutputPath); err != nil {
			return nil, err
		}
		slog.Info("dataset written", "study", req.StudyName, "path", req.OutputPath)
	}

	return &Result{Study: merged, Report: report, Dataset: ds}, nil
}

// loadPrevious resolves the study's previous lineage per the request's
// recovery flags. Returns nil when there is nothing to merge against.
func loadPrevious(ctx context.Context, req Request) (*study.Study, error) {
	if req.Lineage == nil {
		return nil, nil
	}

	if req.DiscardLineage {
		if err := req.Lineage.DeleteStudy(ctx, req.StudyName); err != nil {
			return nil, err
		}
		slog.Info("lineage discarded", "study", req.StudyName)
		return nil, nil
	}

	prev, err := req.Lineage.LoadStudy(ctx, req.StudyName)
	if err != nil {
		if lineage.IsSerializationError(err) && req.IgnoreCorruptLineage {
			slog.Warn("ignoring corrupt lineage record",
				"study", req.StudyName,
				"error", err)
			return nil, nil
		}
		return nil, err
	}
	return prev, nil
}
