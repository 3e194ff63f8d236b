package harness

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"studygen/internal/dataset"
	"studygen/internal/engine"
	"studygen/internal/lineage"
	"studygen/internal/schema"
	"studygen/internal/strategy"
	"studygen/internal/study"
)

// Result holds the outcome of the scenario's final successful run.
type Result struct {
	Study   *study.Study
	Report  *study.Report
	Dataset *dataset.Dataset
}

// Run executes a scenario's runs in order against a lineage store created
// under workDir. It fails on the first run whose outcome disagrees with its
// expect/expect_error clause.
func Run(ctx context.Context, scenario *Scenario, workDir string) (*Result, error) {
	store, err := lineage.Open(filepath.Join(workDir, "lineage.db"))
	if err != nil {
		return nil, err
	}
	defer store.Close()

	var final *Result
	for i, step := range scenario.Runs {
		res, err := runStep(ctx, scenario.Study, &step, store)

		if step.ExpectError != "" {
			if err == nil {
				return nil, fmt.Errorf("runs[%d]: expected error %s, run succeeded", i, step.ExpectError)
			}
			if code := errorCode(err); code != step.ExpectError {
				return nil, fmt.Errorf("runs[%d]: expected error %s, got %s: %w", i, step.ExpectError, code, err)
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("runs[%d]: %w", i, err)
		}
		if err := checkExpect(i, step.Expect, res); err != nil {
			return nil, err
		}
		final = res
	}

	if final == nil {
		return nil, fmt.Errorf("scenario %s has no successful run", scenario.Name)
	}
	return final, nil
}

// runStep turns one scenario step into an engine request and executes it.
func runStep(ctx context.Context, studyName string, step *RunStep, store *lineage.Store) (*Result, error) {
	schemaYAML, err := yaml.Marshal(&step.Schema)
	if err != nil {
		return nil, fmt.Errorf("re-marshal inline schema: %w", err)
	}
	s, err := schema.Parse(schemaYAML)
	if err != nil {
		return nil, err
	}

	opts := strategy.Options{Count: step.Count, Skip: step.Skip}
	if step.Seed != nil {
		opts.Seed = *step.Seed
		opts.SeedSet = true
	}

	res, err := engine.Generate(ctx, engine.Request{
		Schema:         s,
		StudyName:      studyName,
		Strategy:       step.Strategy,
		Options:        opts,
		Lineage:        store,
		DiscardLineage: step.DiscardLineage,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Study: res.Study, Report: res.Report, Dataset: res.Dataset}, nil
}

// checkExpect validates the merge report counts a step asked about.
func checkExpect(i int, expect *ExpectClause, res *Result) error {
	if expect == nil {
		return nil
	}
	if expect.Total != nil && len(res.Study.Sets) != *expect.Total {
		return fmt.Errorf("runs[%d]: expected %d total sets, got %d", i, *expect.Total, len(res.Study.Sets))
	}
	if expect.Retained != nil && len(res.Report.Retained) != *expect.Retained {
		return fmt.Errorf("runs[%d]: expected %d retained sets, got %d", i, *expect.Retained, len(res.Report.Retained))
	}
	if expect.Added != nil && len(res.Report.Added) != *expect.Added {
		return fmt.Errorf("runs[%d]: expected %d added sets, got %d", i, *expect.Added, len(res.Report.Added))
	}
	if expect.Removed != nil && len(res.Report.Removed) != *expect.Removed {
		return fmt.Errorf("runs[%d]: expected %d removed sets, got %d", i, *expect.Removed, len(res.Report.Removed))
	}
	return nil
}

// errorCode extracts the structured code from any of the pipeline's typed
// errors, for matching against a step's expect_error clause.
func errorCode(err error) string {
	var me *study.MergeError
	if errors.As(err, &me) {
		return string(me.Code)
	}
	var ge *strategy.GenerationError
	if errors.As(err, &ge) {
		return string(ge.Code)
	}
	var se *schema.Error
	if errors.As(err, &se) {
		return string(se.Code)
	}
	if lineage.IsSerializationError(err) {
		return "SERIALIZATION"
	}
	return "UNCLASSIFIED"
}
