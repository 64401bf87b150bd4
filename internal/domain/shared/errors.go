package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError so callers can decide whether to
// retry, surface, or re-fetch.
type ErrorKind string

const (
	KindValidation             ErrorKind = "VALIDATION"
	KindInvalidStateTransition ErrorKind = "INVALID_STATE_TRANSITION"
	KindStaleAggregate         ErrorKind = "STALE_AGGREGATE"
	KindRemote                 ErrorKind = "REMOTE"
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindConflict               ErrorKind = "CONFLICT"
	KindInternal               ErrorKind = "INTERNAL"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches on code so a contextual copy of a sentinel still satisfies errors.Is
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of the error carrying a more specific message
func (e *DomainError) WithMessage(format string, args ...any) *DomainError {
	return &DomainError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: fmt.Sprintf(format, args...),
		Cause:   e.Cause,
	}
}

// NewDomainError creates a new domain error of the internal kind
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Kind:    KindInternal,
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports malformed or missing input
func NewValidationError(code, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: message}
}

// NewTransitionError reports a status precondition that was not met
func NewTransitionError(code, message string) *DomainError {
	return &DomainError{Kind: KindInvalidStateTransition, Code: code, Message: message}
}

// NewConflictError reports a business-level uniqueness violation
func NewConflictError(code, message string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: code, Message: message}
}

// NewNotFoundError reports a missing entity
func NewNotFoundError(code, message string) *DomainError {
	return &DomainError{Kind: KindNotFound, Code: code, Message: message}
}

// NewStaleAggregateError reports a failed optimistic concurrency check
func NewStaleAggregateError(message string) *DomainError {
	return &DomainError{Kind: KindStaleAggregate, Code: ErrStaleAggregate.Code, Message: message}
}

// NewRemoteError wraps a collaborator I/O failure. The cause is mandatory.
func NewRemoteError(operation string, cause error) *DomainError {
	if cause == nil {
		cause = errors.New("unknown remote failure")
	}
	return &DomainError{
		Kind:    KindRemote,
		Code:    ErrRemote.Code,
		Message: operation + " failed",
		Cause:   cause,
	}
}

// KindOf returns the kind of a DomainError anywhere in the chain, or KindInternal
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsStale reports whether err is an optimistic concurrency failure
func IsStale(err error) bool {
	return KindOf(err) == KindStaleAggregate
}

// Common domain errors
var (
	ErrNotFound       = NewNotFoundError("NOT_FOUND", "Resource not found")
	ErrInvalidInput   = NewValidationError("INVALID_INPUT", "Invalid input provided")
	ErrStaleAggregate = &DomainError{Kind: KindStaleAggregate, Code: "CONCURRENT_MODIFICATION", Message: "Resource was modified by another process"}
	ErrRemote         = &DomainError{Kind: KindRemote, Code: "REMOTE_ERROR", Message: "Remote collaborator failed"}
)
