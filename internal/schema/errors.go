package schema

import (
	"errors"
	"fmt"
)

// Error represents an invalid parameter schema. It is fatal: no partially
// normalized Schema is ever produced alongside one.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Param is the offending parameter name, when one is identifiable.
	Param string

	// Message is a human-readable description.
	Message string
}

// ErrorCode categorizes schema errors.
type ErrorCode string

const (
	// ErrCodeEmptyName indicates a parameter with an empty name.
	ErrCodeEmptyName ErrorCode = "EMPTY_NAME"

	// ErrCodeDuplicateName indicates two parameters sharing a name.
	ErrCodeDuplicateName ErrorCode = "DUPLICATE_NAME"

	// ErrCodeEmptySchema indicates a schema with no parameters.
	ErrCodeEmptySchema ErrorCode = "EMPTY_SCHEMA"

	// ErrCodeInvalidBounds indicates a range with low > high or non-finite bounds.
	ErrCodeInvalidBounds ErrorCode = "INVALID_BOUNDS"

	// ErrCodeInvalidCount indicates a sample count below one.
	ErrCodeInvalidCount ErrorCode = "INVALID_COUNT"

	// ErrCodeEmptyChoices indicates a choices spec with no values.
	ErrCodeEmptyChoices ErrorCode = "EMPTY_CHOICES"

	// ErrCodeInvalidValue indicates a non-finite or unsupported value.
	ErrCodeInvalidValue ErrorCode = "INVALID_VALUE"

	// ErrCodeInvalidSpec indicates a malformed specification variant.
	ErrCodeInvalidSpec ErrorCode = "INVALID_SPEC"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (parameter=%s)", e.Code, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsSchemaError reports whether err is (or wraps) a schema validation error.
func IsSchemaError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}

func newError(code ErrorCode, param, message string) *Error {
	return &Error{Code: code, Param: param, Message: message}
}
