// Package harness runs YAML-described generation scenarios and compares
// their materialized output against golden files.
//
// A scenario is a sequence of generation runs against one study sharing a
// lineage store: each run names a schema, a strategy, and either expected
// merge counts or an expected error code. Scenarios live under
// testdata/scenarios; the golden snapshots of the final dataset live under
// testdata/golden and are regenerated with
//
//	go test ./internal/harness -update
package harness
