package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")
	// ErrInvalidReference is returned when a foreign key points at a missing record.
	ErrInvalidReference = errors.New("invalid reference")
)
