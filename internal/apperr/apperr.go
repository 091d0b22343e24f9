// Package apperr holds the error taxonomy shared by the catalog and order
// services. The HTTP layer maps each type onto a status code.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or out-of-range input. It is always
// returned before any mutation happens.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Invalid(rule, format string, args ...any) error {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func NotFound(resource string, id int64) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// InsufficientStockError aborts an order placement. Available is the stock
// left for the menu at the time the offending line was checked.
type InsufficientStockError struct {
	MenuID    int64
	MenuName  string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: available %d, requested %d", e.MenuName, e.Available, e.Requested)
}

// ConflictError is returned when the same idempotency key is still being
// processed by another request.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
