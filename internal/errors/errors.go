package errors

import "fmt"

const (
	ErrNotFound          = "NOT_FOUND"
	ErrInvalidTransition = "INVALID_TRANSITION"
	ErrConflict          = "CONFLICT"
	ErrNoCandidate       = "NO_CANDIDATE"
	ErrUnauthorized      = "UNAUTHORIZED"
	ErrForbidden         = "FORBIDDEN"
	ErrValidation        = "VALIDATION"
	ErrInternal          = "INTERNAL"
)

type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// --- Generic ---

func NewNotFound(entity, id string) *DomainError {
	return &DomainError{Code: ErrNotFound, Message: fmt.Sprintf("%s with id %s not found", entity, id)}
}

func NewInvalidTransition(from, to string) *DomainError {
	return &DomainError{Code: ErrInvalidTransition, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

func NewConflict(msg string) *DomainError {
	return &DomainError{Code: ErrConflict, Message: msg}
}

func NewNoCandidate(msg string) *DomainError {
	return &DomainError{Code: ErrNoCandidate, Message: msg}
}

func NewUnauthorized(msg string) *DomainError {
	return &DomainError{Code: ErrUnauthorized, Message: msg}
}

func NewForbidden(msg string) *DomainError {
	return &DomainError{Code: ErrForbidden, Message: msg}
}

func NewValidation(msg string) *DomainError {
	return &DomainError{Code: ErrValidation, Message: msg}
}

func NewInternal(msg string, err error) *DomainError {
	return &DomainError{Code: ErrInternal, Message: msg, Err: err}
}

// --- Delivery ---

func DeliveryNotFound(id string) *DomainError {
	return NewNotFound("delivery", id)
}

func DeliveryInvalidTransition(from, to string) *DomainError {
	return NewInvalidTransition(from, to)
}

func DeliveryAlreadyAssigned(id string) *DomainError {
	return NewConflict(fmt.Sprintf("delivery %s is already assigned to a driver", id))
}

// --- Driver ---

func DriverNotFound(id string) *DomainError {
	return NewNotFound("driver", id)
}

func DriverNotAvailable(id string) *DomainError {
	return NewConflict(fmt.Sprintf("driver %s is not available for assignment", id))
}

func DriverHasActiveDeliveries(id string) *DomainError {
	return NewConflict(fmt.Sprintf("driver %s still has active deliveries", id))
}

// --- Dispatch ---

func NoCandidateForDelivery(deliveryID string) *DomainError {
	return NewNoCandidate("no available driver for delivery " + deliveryID)
}
