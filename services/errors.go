package services

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or out-of-range caller input. It is
// surfaced directly and never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced record that does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// ConstraintError reports an operation that would violate a data invariant,
// e.g. binding an inactive or non-ITEM BOQ row. Rejected before any write.
type ConstraintError struct {
	Message string
}

func (e *ConstraintError) Error() string { return e.Message }

// Constraintf builds a ConstraintError from a format string.
func Constraintf(format string, args ...any) *ConstraintError {
	return &ConstraintError{Message: fmt.Sprintf(format, args...)}
}

// TransactionError wraps a persistence transaction that aborted. The caller
// may retry; no retry happens here.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: transaction failed: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConstraint reports whether err is a ConstraintError.
func IsConstraint(err error) bool {
	var target *ConstraintError
	return errors.As(err, &target)
}
