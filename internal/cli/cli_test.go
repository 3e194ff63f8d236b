package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeSchema(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const plateYAML = `parameters:
  width:
    choices: [1, 2]
  height:
    choices: [10, 20]
`

func TestValidate_OK(t *testing.T) {
	path := writeSchema(t, plateYAML)

	out, _, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema valid: 2 parameters (2 varying)")
	assert.Contains(t, out, "schema_hash: ")
}

func TestValidate_JSONFormat(t *testing.T) {
	path := writeSchema(t, plateYAML)

	out, _, err := execute(t, "--format", "json", "validate", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidate_MissingFile(t *testing.T) {
	out, _, err := execute(t, "validate", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E001")
}

func TestValidate_BadShape(t *testing.T) {
	path := writeSchema(t, "parameters:\n  width:\n    sweep: [1, 2]\n")

	out, _, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Contains(t, out, "E003")
}

func TestGenerate_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeSchema(t, plateYAML)
	db := filepath.Join(dir, "lineage.db")
	dataset := filepath.Join(dir, "plate.json")

	out, _, err := execute(t, "generate", schemaPath,
		"--study", "plate", "--lineage", db, "--output", dataset)
	require.NoError(t, err)
	assert.Contains(t, out, "study plate: 4 sets (0 retained, 4 added, 0 removed)")
	assert.FileExists(t, dataset)

	// Extending the schema retains the original four and appends two.
	extended := writeSchema(t, `parameters:
  width:
    choices: [1, 2]
  height:
    choices: [10, 20, 30]
`)
	out, _, err = execute(t, "generate", extended,
		"--study", "plate", "--lineage", db)
	require.NoError(t, err)
	assert.Contains(t, out, "study plate: 6 sets (4 retained, 2 added, 0 removed)")
}

func TestGenerate_StrategyChangeRefused(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeSchema(t, plateYAML)
	db := filepath.Join(dir, "lineage.db")

	_, _, err := execute(t, "generate", schemaPath, "--study", "plate", "--lineage", db)
	require.NoError(t, err)

	out, _, err := execute(t, "generate", schemaPath,
		"--study", "plate", "--lineage", db, "--strategy", "one_at_a_time")
	require.Error(t, err)
	assert.Contains(t, out, "STRATEGY_CHANGED")

	out, _, err = execute(t, "generate", schemaPath,
		"--study", "plate", "--lineage", db, "--strategy", "one_at_a_time", "--discard-lineage")
	require.NoError(t, err)
	assert.Contains(t, out, "study plate: 3 sets")
}

func TestShow_ListsSets(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeSchema(t, plateYAML)
	db := filepath.Join(dir, "lineage.db")

	_, _, err := execute(t, "generate", schemaPath, "--study", "plate", "--lineage", db)
	require.NoError(t, err)

	out, _, err := execute(t, "show", "--study", "plate", "--lineage", db)
	require.NoError(t, err)
	assert.Contains(t, out, "study plate (cartesian): 4 sets")
	assert.Contains(t, out, "parameter_set0")
	assert.Contains(t, out, `"width":1`)
}

func TestShow_NoLineage(t *testing.T) {
	db := filepath.Join(t.TempDir(), "lineage.db")

	_, _, err := execute(t, "show", "--study", "ghost", "--lineage", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestPrune_ListsRetiredSets(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "lineage.db")

	full := writeSchema(t, plateYAML)
	_, _, err := execute(t, "generate", full, "--study", "plate", "--lineage", db)
	require.NoError(t, err)

	out, _, err := execute(t, "prune", "--study", "plate", "--lineage", db)
	require.NoError(t, err)
	assert.Contains(t, out, "no retired sets")

	shrunk := writeSchema(t, `parameters:
  width:
    choices: [1, 2]
  height:
    choices: [10]
`)
	_, _, err = execute(t, "generate", shrunk, "--study", "plate", "--lineage", db)
	require.NoError(t, err)

	out, _, err = execute(t, "prune", "--study", "plate", "--lineage", db)
	require.NoError(t, err)
	assert.Contains(t, out, "2 retired sets")
	assert.Contains(t, out, "parameter_set1")
	assert.Contains(t, out, "parameter_set3")
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	path := writeSchema(t, plateYAML)

	_, _, err := execute(t, "--format", "xml", "validate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
