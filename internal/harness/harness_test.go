package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: misspelled key below
study: plate
runs:
  - strategy: cartesian
    schema:
      parameters:
        width:
          choices: [1]
    expect_erorr: STRATEGY_CHANGED
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expect_erorr")
}

func TestLoadScenario_RequiredFields(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing study",
			body: "name: x\ndescription: d\nruns:\n  - strategy: cartesian\n    schema:\n      parameters:\n        w:\n          choices: [1]\n",
			want: "study is required",
		},
		{
			name: "missing runs",
			body: "name: x\ndescription: d\nstudy: plate\n",
			want: "runs list is required",
		},
		{
			name: "missing strategy",
			body: "name: x\ndescription: d\nstudy: plate\nruns:\n  - schema:\n      parameters:\n        w:\n          choices: [1]\n",
			want: "strategy is required",
		},
		{
			name: "expect with expect_error",
			body: "name: x\ndescription: d\nstudy: plate\nruns:\n  - strategy: cartesian\n    schema:\n      parameters:\n        w:\n          choices: [1]\n    expect:\n      total: 1\n    expect_error: BAD_COUNT\n",
			want: "mutually exclusive",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_ExpectMismatchFails(t *testing.T) {
	path := writeScenario(t, `
name: wrong-count
description: the expect clause disagrees with the generator
study: plate
runs:
  - strategy: cartesian
    schema:
      parameters:
        width:
          choices: [1, 2]
    expect:
      total: 5
`)
	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	err = RunWithGolden(t, scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 5 total sets")
}
