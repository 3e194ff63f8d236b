package harness

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"studygen/internal/dataset"
)

// datasetSnapshot is the golden-file form of a materialized dataset. Content
// hashes and the schema hash are left out: they are pinned by the identity
// tests, and keeping them out makes golden diffs readable when a scenario's
// values change.
type datasetSnapshot struct {
	Study      string                    `json:"study"`
	Strategy   string                    `json:"strategy"`
	Sets       []string                  `json:"sets"`
	Ordinals   []int                     `json:"ordinals"`
	Parameters []string                  `json:"parameters"`
	Variables  map[string]dataset.Column `json:"variables"`
}

// RunWithGolden executes a scenario and compares the final dataset against
// the golden file testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(context.Background(), scenario, t.TempDir())
	if err != nil {
		return err
	}

	snapshot := datasetSnapshot{
		Study:      result.Dataset.Study,
		Strategy:   result.Dataset.Strategy,
		Sets:       result.Dataset.Sets,
		Ordinals:   result.Dataset.Ordinals,
		Parameters: result.Dataset.Parameters,
		Variables:  result.Dataset.Variables,
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
