package types

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure classifications used across the SDK.
// Every error that crosses a package boundary carries exactly one kind, so
// callers can branch on classification instead of matching message strings.
type ErrorKind string

const (
	// ErrValidation means the input never reached the ledger. No fee was
	// incurred and the failure was detected synchronously.
	ErrValidation ErrorKind = "VALIDATION_ERROR"
	// ErrInvalidAmount means the deposit did not survive the even-division
	// truncation against the stream duration.
	ErrInvalidAmount ErrorKind = "INVALID_AMOUNT"
	// ErrInsufficientFunds is a wallet-level submission failure.
	ErrInsufficientFunds ErrorKind = "INSUFFICIENT_FUNDS"
	// ErrUserRejected means the signer declined the transaction.
	ErrUserRejected ErrorKind = "USER_REJECTED"
	// ErrEventNotFound means the ledger response shape was unexpected, e.g.
	// a creation transaction confirmed without emitting its creation event.
	ErrEventNotFound ErrorKind = "EVENT_NOT_FOUND"
	// ErrStreamNotFound means the referenced stream does not exist.
	ErrStreamNotFound ErrorKind = "STREAM_NOT_FOUND"
	// ErrStreamFetchFailed is a transient failure reading stream state.
	ErrStreamFetchFailed ErrorKind = "STREAM_FETCH_FAILED"

	// Post-submission reverts. A fee was spent; the revert reason is embedded.
	ErrStreamCreationFailed ErrorKind = "STREAM_CREATION_FAILED"
	ErrWithdrawalFailed     ErrorKind = "WITHDRAWAL_FAILED"
	ErrCancellationFailed   ErrorKind = "CANCELLATION_FAILED"

	// ErrRateLimited means local admission control denied the action.
	ErrRateLimited ErrorKind = "RATE_LIMITED"
	// ErrSubscriptionFailed is a relay-channel subscription failure.
	ErrSubscriptionFailed ErrorKind = "SUBSCRIPTION_FAILED"
	// ErrMessageSendFailed means an outbound relay message was not delivered.
	ErrMessageSendFailed ErrorKind = "MESSAGE_SEND_FAILED"
	// ErrTimeout means a ledger or HTTP call exceeded its deadline.
	ErrTimeout ErrorKind = "TIMEOUT"
	// ErrAPI is an HTTP-surface failure carrying the response status.
	ErrAPI ErrorKind = "API_ERROR"
	// ErrUnknown is the catch-all ensuring no unstructured failure escapes
	// without a classification.
	ErrUnknown ErrorKind = "UNKNOWN_ERROR"
)

// Error is the tagged error variant used throughout the SDK. It pairs a kind
// with a human-readable message and optional structured context.
type Error struct {
	Kind    ErrorKind
	Message string
	// Reason holds the underlying revert reason for post-submission failures.
	Reason string
	// HTTPStatus is set for ErrAPI errors.
	HTTPStatus int

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NewError creates a classified error with no underlying cause.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewErrorf creates a classified error with a formatted message.
func NewErrorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError classifies an underlying error. The cause remains reachable via
// errors.Unwrap, and its text is preserved as the revert reason.
func WrapError(err error, kind ErrorKind, message string) *Error {
	var reason string
	if err != nil {
		reason = err.Error()
	}
	return &Error{Kind: kind, Message: message, Reason: reason, cause: err}
}

// NewAPIError creates an ErrAPI error carrying the HTTP response status.
func NewAPIError(status int, message string) *Error {
	return &Error{Kind: ErrAPI, Message: message, HTTPStatus: status}
}

// AsError extracts the classified error from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the classification of err, or ErrUnknown when err carries
// no classification. A nil err has no kind and returns the empty string.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return ErrUnknown
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// UserMessage returns the human-readable message for err. Raw transport
// errors are never surfaced directly.
func UserMessage(err error) string {
	if e, ok := AsError(err); ok && e.Message != "" {
		return e.Message
	}
	return "An unexpected error occurred"
}
