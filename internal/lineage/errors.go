package lineage

import (
	"errors"
	"fmt"
)

// SerializationError represents a corrupt or unreadable lineage record.
// It is fatal by default; callers that explicitly opt into recovery may
// treat it as "no previous lineage" and regenerate from scratch.
type SerializationError struct {
	// Study is the logical study name whose record is damaged.
	Study string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *SerializationError) Error() string {
	if e.Study != "" {
		return fmt.Sprintf("lineage record corrupt: %s (study=%s)", e.Message, e.Study)
	}
	return fmt.Sprintf("lineage record corrupt: %s", e.Message)
}

// Unwrap returns the underlying cause.
func (e *SerializationError) Unwrap() error { return e.Err }

// IsSerializationError reports whether err is (or wraps) a SerializationError.
func IsSerializationError(err error) bool {
	var se *SerializationError
	return errors.As(err, &se)
}
