// Package errors provides error handling for the bayes-course toolkit.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Sentinel errors for the data and modeling layers
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := loadData(); err != nil {
//	    return errors.Wrap(err, "failed to load data")
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "check the column names in the CSV header")
//
//	// Check errors
//	if errors.Is(err, errors.ErrColumnNotFound) {
//	    // handle missing column
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	UnwrapOnce    = crdb.UnwrapOnce
	UnwrapAll     = crdb.UnwrapAll
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
)

// Assertions and panics
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for the dataset and modeling layers.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrColumnNotFound indicates a named column does not exist in the frame
	ErrColumnNotFound = New("column not found")

	// ErrColumnType indicates a column holds a different kind than requested
	// (e.g. asking for floats from a string column)
	ErrColumnType = New("column has wrong type")

	// ErrEmptyData indicates a frame has no rows where observations are required
	ErrEmptyData = New("no observations")

	// ErrDuplicateUnits indicates the unit-identifier column contains repeated
	// values; fitting on duplicated units would double-count observations
	ErrDuplicateUnits = New("duplicate unit identifiers")

	// ErrBadModel indicates a model specification is unusable (no parameters,
	// nil prior, unknown error family)
	ErrBadModel = New("invalid model specification")

	// ErrNotFinite indicates a log density evaluated to NaN or ±Inf where a
	// finite value is required (e.g. at the sampler's initial point)
	ErrNotFinite = New("non-finite log density")
)

// IsColumnNotFoundError checks if an error is or wraps ErrColumnNotFound
func IsColumnNotFoundError(err error) bool {
	return err != nil && Is(err, ErrColumnNotFound)
}

// IsDuplicateUnitsError checks if an error is or wraps ErrDuplicateUnits
func IsDuplicateUnitsError(err error) bool {
	return err != nil && Is(err, ErrDuplicateUnits)
}

// IsNotFiniteError checks if an error is or wraps ErrNotFinite
func IsNotFiniteError(err error) bool {
	return err != nil && Is(err, ErrNotFinite)
}

// NewColumnNotFoundError creates a column-not-found error naming the column
func NewColumnNotFoundError(column string) error {
	return Wrapf(ErrColumnNotFound, "column %q", column)
}

// NewColumnTypeError creates a column-type error naming the column and the
// kinds involved
func NewColumnTypeError(column, want, got string) error {
	return Wrapf(ErrColumnType, "column %q is %s, want %s", column, got, want)
}
