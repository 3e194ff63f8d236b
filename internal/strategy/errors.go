package strategy

import (
	"errors"
	"fmt"
)

// GenerationError represents a strategy-specific algorithmic failure.
// It is fatal for the study being generated and never corrupts an existing
// lineage: generation fails before any lineage write happens.
type GenerationError struct {
	// Code identifies the error category.
	Code GenerationErrorCode

	// Strategy is the name of the strategy that failed.
	Strategy string

	// Param is the offending parameter name, when one is identifiable.
	Param string

	// Message is a human-readable description.
	Message string
}

// GenerationErrorCode categorizes generation errors.
type GenerationErrorCode string

const (
	// ErrCodeBadCount indicates a requested count that the strategy cannot honor.
	ErrCodeBadCount GenerationErrorCode = "BAD_COUNT"

	// ErrCodeMissingSeed indicates a randomized strategy invoked without an explicit seed.
	ErrCodeMissingSeed GenerationErrorCode = "MISSING_SEED"

	// ErrCodeUnsupportedSchema indicates a schema/strategy mismatch, e.g. a
	// discrete varying parameter handed to a continuous space-filling strategy.
	ErrCodeUnsupportedSchema GenerationErrorCode = "UNSUPPORTED_SCHEMA"

	// ErrCodeDimensionLimit indicates more varying dimensions than the Sobol
	// direction-number table supports.
	ErrCodeDimensionLimit GenerationErrorCode = "DIMENSION_LIMIT"

	// ErrCodeBadMatrix indicates an invalid caller-supplied custom matrix.
	ErrCodeBadMatrix GenerationErrorCode = "BAD_MATRIX"

	// ErrCodeEmptyDomain indicates a parameter that resolves to zero values.
	ErrCodeEmptyDomain GenerationErrorCode = "EMPTY_DOMAIN"

	// ErrCodeUnknownStrategy indicates a strategy name with no registered implementation.
	ErrCodeUnknownStrategy GenerationErrorCode = "UNKNOWN_STRATEGY"
)

// Error implements the error interface.
func (e *GenerationError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (strategy=%s, parameter=%s)", e.Code, e.Message, e.Strategy, e.Param)
	}
	return fmt.Sprintf("%s: %s (strategy=%s)", e.Code, e.Message, e.Strategy)
}

// IsGenerationError reports whether err is (or wraps) a GenerationError.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}

func newError(code GenerationErrorCode, strategy, param, message string) *GenerationError {
	return &GenerationError{Code: code, Strategy: strategy, Param: param, Message: message}
}
