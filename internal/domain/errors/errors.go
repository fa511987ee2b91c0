package errors

import (
	"errors"
	"fmt"
)

var (
	// Gateway errors
	ErrInvalidRequest  = errors.New("invalid payment request")
	ErrPaymentFailed   = errors.New("payment failed")
	ErrRefundFailed    = errors.New("refund failed")
	ErrPaymentNotFound = errors.New("payment not found")
)

// GatewayError wraps a payment processor failure with a classified kind.
// Kind is one of the sentinel errors above and matches through errors.Is;
// Err carries the original processor failure for observability. Processor
// error types never cross the gateway boundary unwrapped.
type GatewayError struct {
	Kind    error
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches its classified kind, so callers can
// check errors.Is(err, ErrPaymentFailed) without depending on GatewayError.
func (e *GatewayError) Is(target error) bool {
	return target == e.Kind
}

// NewGatewayError creates a new gateway error of the given kind.
func NewGatewayError(kind error, message string, err error) *GatewayError {
	return &GatewayError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a local precondition violation, rejected before
// any processor round-trip.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// Is makes every validation error match ErrInvalidRequest.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
