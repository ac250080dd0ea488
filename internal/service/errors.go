package service

import (
	"errors"
	"fmt"
)

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrValidation is returned when input breaks a business rule
	ErrValidation = errors.New("validation failed")

	// ErrConstraint is returned when an operation would break referential integrity
	ErrConstraint = errors.New("constraint violation")

	// ErrForbidden is returned when the caller lacks the entitlement for an action
	ErrForbidden = errors.New("forbidden")

	// ErrStageNotFound is returned when a stage id does not name a stage of the tenant
	ErrStageNotFound = fmt.Errorf("stage not found: %w", ErrNotFound)

	// ErrDealNotFound is returned when a deal id does not name a deal of the tenant
	ErrDealNotFound = fmt.Errorf("deal not found: %w", ErrNotFound)

	// ErrContactNotFound is returned when a contact is missing or owned by someone else
	ErrContactNotFound = fmt.Errorf("contact not found: %w", ErrNotFound)

	// ErrStageHasDeals is returned when deleting a stage that still holds deals
	ErrStageHasDeals = fmt.Errorf("stage has deals: %w", ErrConstraint)
)

// validationError wraps ErrValidation with a human readable reason
func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
