package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrFilesystem is returned when the canonical directory tree cannot be
	// created. It is the only fatal condition in the persistence layer.
	ErrFilesystem = errors.New("filesystem error")

	// ErrStorageIO is returned when reading or writing an existing or target
	// path fails.
	ErrStorageIO = errors.New("storage I/O error")

	// ErrSerialization is returned when a value cannot be represented in the
	// target format. Nothing is written when this error is returned.
	ErrSerialization = errors.New("serialization error")

	// ErrCorruptData is returned when stored bytes cannot be parsed. Corrupt
	// files are never repaired automatically.
	ErrCorruptData = errors.New("corrupt data")

	// ErrNoData signals that a collection has never been written. Loads that
	// can express absence directly return found=false instead of this error.
	ErrNoData = errors.New("no data")

	// ErrUnknownCollection is returned for a collection name outside the
	// fixed set.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrUnknownFormat is returned for a format outside the fixed set.
	ErrUnknownFormat = errors.New("unknown format")

	// ErrInvalidArgument is returned for out-of-range arguments such as a
	// negative retention period.
	ErrInvalidArgument = errors.New("invalid argument")
)

// IsCorruptData reports whether err was caused by unparseable stored bytes.
func IsCorruptData(err error) bool {
	return errors.Is(err, ErrCorruptData)
}

// IsSerialization reports whether err was caused by an unrepresentable value.
func IsSerialization(err error) bool {
	return errors.Is(err, ErrSerialization)
}

// IsStorageIO reports whether err was caused by a failed read or write.
func IsStorageIO(err error) bool {
	return errors.Is(err, ErrStorageIO)
}

// IsFilesystem reports whether err was caused by a failure to create the
// directory tree.
func IsFilesystem(err error) bool {
	return errors.Is(err, ErrFilesystem)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Collection CollectionName // The collection involved, if any
	Format     Format         // The format involved, if any
	Operation  string         // The operation that failed (e.g., "save", "load")
	Path       string         // The file or directory involved, if any
	Kind       error          // One of the sentinel errors above
	Err        error          // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	target := string(e.Collection)
	if target == "" {
		target = e.Path
	}
	if e.Format != "" {
		target = fmt.Sprintf("%s (%s)", target, e.Format)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %v: %v", e.Operation, target, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %v", e.Operation, target, e.Kind)
}

// Unwrap exposes both the sentinel kind and the original error to errors.Is/errors.As.
func (e *StoreError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewStoreError creates a new StoreError. kind should be one of the sentinel
// errors of this package.
func NewStoreError(kind error, operation string, name CollectionName, format Format, path string, err error) *StoreError {
	return &StoreError{
		Collection: name,
		Format:     format,
		Operation:  operation,
		Path:       path,
		Kind:       kind,
		Err:        err,
	}
}
