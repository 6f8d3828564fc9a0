package ingestion

import (
	"errors"
	"fmt"

	"github.com/rpattn/fleetreg/pkg/validator"
)

// ErrUnsupportedFormat is returned when an uploaded file is not supported.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// FormatError aborts a whole import: the file could not be read as a table.
type FormatError struct {
	FileName string
	Err      error
}

func (e *FormatError) Error() string {
	if e.FileName == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.FileName, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// RowValidationError is the field-indexed failure produced by the row validator.
type RowValidationError = validator.RowValidationError

// ReferenceNotFoundError reports a display name that resolved to zero or to
// several candidates.
type ReferenceNotFoundError struct {
	Row       int
	Field     string
	Name      string
	Matches   int
	Ambiguous bool
}

func (e *ReferenceNotFoundError) Error() string {
	if e.Ambiguous {
		return fmt.Sprintf("%s: %q matches %d records, expected exactly one", e.Field, e.Name, e.Matches)
	}
	return fmt.Sprintf("%s: no record matches %q", e.Field, e.Name)
}

// PersistenceError wraps a failed read or write against the store for one row.
type PersistenceError struct {
	Row int
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
