package cli

import (
	"errors"

	"studygen/internal/lineage"
	"studygen/internal/schema"
	"studygen/internal/strategy"
	"studygen/internal/study"
)

// ErrCodeGeneric is the fallback code for errors outside the pipeline's
// structured taxonomy.
const ErrCodeGeneric = "ERROR"

// errorCodeOf maps a pipeline error to its structured code for CLI output.
func errorCodeOf(err error) string {
	var loadErr *schema.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	var schemaErr *schema.Error
	if errors.As(err, &schemaErr) {
		return string(schemaErr.Code)
	}
	var genErr *strategy.GenerationError
	if errors.As(err, &genErr) {
		return string(genErr.Code)
	}
	var mergeErr *study.MergeError
	if errors.As(err, &mergeErr) {
		return string(mergeErr.Code)
	}
	if lineage.IsSerializationError(err) {
		return "SERIALIZATION"
	}
	return ErrCodeGeneric
}

// reportFailure emits the error in the configured format and returns an
// ExitError so the process exits non-zero without double-printing.
func reportFailure(f *OutputFormatter, err error) error {
	f.Error(errorCodeOf(err), err.Error(), nil)
	return WrapExitError(ExitFailure, "command failed", err)
}
