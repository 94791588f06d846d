package service

import (
	"errors"
	"fmt"
)

// ErrStoreNotConfigured indicates that no store was supplied for a format.
var ErrStoreNotConfigured = errors.New("no store configured for format")

// PersistenceServiceError wraps errors from the persistence service with context.
type PersistenceServiceError struct {
	// Operation is the operation that failed (e.g., "save_collection", "create_backup")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for PersistenceServiceError.
func (e *PersistenceServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("persistence service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("persistence service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *PersistenceServiceError) Unwrap() error {
	return e.Err
}

// NewPersistenceServiceError creates a new PersistenceServiceError.
// It returns nil when err is nil.
func NewPersistenceServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
