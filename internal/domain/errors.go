package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrItemNotFound = errors.New("line item not found")

	// Validation errors, detectable before any state is touched.
	ErrReasonRequired  = errors.New("reason is required")
	ErrNoItemsSelected = errors.New("at least one item must be selected")
	ErrInvalidDecision = errors.New("invalid renter decision")

	// State conflicts. Callers recover by refetching, never by replaying the mutation.
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrDecisionAlreadyMade    = errors.New("decision already made")
	ErrDecisionNotAllowed     = errors.New("decision not allowed for sub-order status")
	ErrStaleSubOrder          = errors.New("sub-order was modified concurrently")

	ErrAvailabilityUnknown      = errors.New("availability unknown for requested dates")
	ErrInsufficientAvailability = errors.New("insufficient availability")
	ErrContractPending          = errors.New("contract generation pending")
)

// ValidationError is a user-actionable input error identified by a rule code.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Message)
}

func NewValidationError(rule, message string) *ValidationError {
	return &ValidationError{Rule: rule, Message: message}
}

// IsValidation reports whether err should be surfaced to the user without retry.
func IsValidation(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	return errors.Is(err, ErrReasonRequired) ||
		errors.Is(err, ErrNoItemsSelected) ||
		errors.Is(err, ErrInvalidDecision)
}

// IsStateConflict reports whether err means the caller's view of the sub-order is stale.
func IsStateConflict(err error) bool {
	return errors.Is(err, ErrInvalidStateTransition) ||
		errors.Is(err, ErrDecisionAlreadyMade) ||
		errors.Is(err, ErrDecisionNotAllowed) ||
		errors.Is(err, ErrStaleSubOrder)
}
