package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a multi-run generation test against one study.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Study is the logical study name all runs share.
	Study string `yaml:"study"`

	// Runs are executed in order against one lineage store.
	Runs []RunStep `yaml:"runs"`
}

// RunStep is one generation run within a scenario.
type RunStep struct {
	// Schema is the inline parameter schema, in the same form the schema
	// loader accepts from a file.
	Schema yaml.Node `yaml:"schema"`

	// Strategy is the registry name to generate with.
	Strategy string `yaml:"strategy"`

	// Count, Seed and Skip are the strategy knobs. Seed is a pointer so an
	// explicit zero seed is distinguishable from no seed.
	Count int     `yaml:"count,omitempty"`
	Seed  *uint64 `yaml:"seed,omitempty"`
	Skip  int     `yaml:"skip,omitempty"`

	// DiscardLineage drops the study's lineage before this run.
	DiscardLineage bool `yaml:"discard_lineage,omitempty"`

	// Expect validates the run's merge report. Nil means the run only has
	// to succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// ExpectError is the error code this run must fail with, e.g.
	// "STRATEGY_CHANGED" or "MISSING_SEED". A run with ExpectError set
	// must not succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// ExpectClause validates a run's merge report. Each field is a pointer so
// only the counts a scenario mentions are checked.
type ExpectClause struct {
	Total    *int `yaml:"total,omitempty"`
	Retained *int `yaml:"retained,omitempty"`
	Added    *int `yaml:"added,omitempty"`
	Removed  *int `yaml:"removed,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so a typo like "expect_erorr" fails loudly instead of silently
// weakening the scenario.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Study == "" {
		return fmt.Errorf("study is required")
	}
	if len(s.Runs) == 0 {
		return fmt.Errorf("runs list is required and must be non-empty")
	}

	for i, run := range s.Runs {
		if run.Strategy == "" {
			return fmt.Errorf("runs[%d]: strategy is required", i)
		}
		if run.Schema.IsZero() {
			return fmt.Errorf("runs[%d]: schema is required", i)
		}
		if run.ExpectError != "" && run.Expect != nil {
			return fmt.Errorf("runs[%d]: expect and expect_error are mutually exclusive", i)
		}
	}
	return nil
}
