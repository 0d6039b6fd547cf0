package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeInvalidPrice       = "INVALID_PRICE"
	ErrCodeItemNotFound       = "ITEM_NOT_FOUND"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeCheckoutNotOpen    = "CHECKOUT_NOT_OPEN"
	ErrCodeSubmissionInFlight = "SUBMISSION_IN_FLIGHT"
	ErrCodeInvalidChannel     = "INVALID_CHANNEL"
	ErrCodeSubmissionRejected = "SUBMISSION_REJECTED"
	ErrCodeSubmissionFailed   = "SUBMISSION_UNREACHABLE"
	ErrCodeUnauthenticated    = "UNAUTHENTICATED"
	ErrCodeSessionNotFound    = "SESSION_NOT_FOUND"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrItemNotFound       = NewDomainError(ErrCodeItemNotFound, "Cart item not found")
	ErrEmptyCart          = NewDomainError(ErrCodeEmptyCart, "Cart is empty, nothing to checkout")
	ErrCheckoutNotOpen    = NewDomainError(ErrCodeCheckoutNotOpen, "Checkout has not been opened")
	ErrSubmissionInFlight = NewDomainError(ErrCodeSubmissionInFlight, "An order submission is already in progress")
	ErrInvalidChannel     = NewDomainError(ErrCodeInvalidChannel, "Channel must be whatsapp or direct")
	ErrSessionNotFound    = NewDomainError(ErrCodeSessionNotFound, "Session not found")
)

// Fallback messages shown when the order service gives no detail.
const (
	FallbackRejectedMessage    = "Please login to place an order."
	FallbackUnreachableMessage = "Could not reach the order service. Please try again."
)

// SubmissionErrorKind classifies a failed order submission.
type SubmissionErrorKind string

const (
	SubmissionRejected        SubmissionErrorKind = "rejected"
	SubmissionUnreachable     SubmissionErrorKind = "unreachable"
	SubmissionUnauthenticated SubmissionErrorKind = "unauthenticated"
)

// SubmissionError is returned when the order service did not accept an order.
// Message is what the customer sees.
type SubmissionError struct {
	Kind    SubmissionErrorKind
	Message string
	Status  int
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("order submission %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("order submission %s: %s", e.Kind, e.Message)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Code maps the submission failure onto an API error code.
func (e *SubmissionError) Code() string {
	switch e.Kind {
	case SubmissionUnreachable:
		return ErrCodeSubmissionFailed
	case SubmissionUnauthenticated:
		return ErrCodeUnauthenticated
	default:
		return ErrCodeSubmissionRejected
	}
}

// NewRejectedError builds a SubmissionError for a response the service refused.
// An empty message falls back to FallbackRejectedMessage.
func NewRejectedError(status int, message string) *SubmissionError {
	kind := SubmissionRejected
	if status == 401 {
		kind = SubmissionUnauthenticated
	}
	if message == "" {
		message = FallbackRejectedMessage
	}
	return &SubmissionError{Kind: kind, Message: message, Status: status}
}

// NewUnreachableError builds a SubmissionError for a transport-level failure.
func NewUnreachableError(err error) *SubmissionError {
	return &SubmissionError{Kind: SubmissionUnreachable, Message: FallbackUnreachableMessage, Err: err}
}
