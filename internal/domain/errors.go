// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when a record does not have the shape an
	// entity expects.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidTaskState is returned for a state outside the known set.
	ErrInvalidTaskState = errors.New("invalid task state")

	// ErrInvalidPriority is returned for a priority outside the known set.
	ErrInvalidPriority = errors.New("invalid task priority")

	// ErrEmptyTaskID is returned when assigning an empty task ID to a user.
	ErrEmptyTaskID = errors.New("task ID cannot be empty")
)
