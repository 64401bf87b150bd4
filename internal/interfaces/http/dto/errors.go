package dto

import (
	"errors"
	"net/http"

	"github.com/agence/backoffice/internal/domain/shared"
)

// Error codes produced by the HTTP layer itself. Domain errors keep the code
// of their DomainError.
const (
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
	ErrCodeRequestTooLarge  = "REQUEST_TOO_LARGE"
)

// KindHTTPStatus maps domain error kinds to HTTP status codes
var KindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation:             http.StatusBadRequest,
	shared.KindNotFound:               http.StatusNotFound,
	shared.KindStaleAggregate:         http.StatusConflict,
	shared.KindConflict:               http.StatusConflict,
	shared.KindInvalidStateTransition: http.StatusUnprocessableEntity,
	shared.KindRemote:                 http.StatusBadGateway,
	shared.KindInternal:               http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error kind.
// Unknown kinds map to 500.
func GetHTTPStatus(kind shared.ErrorKind) int {
	if status, ok := KindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromError builds the status and error body for err. Errors that are not
// DomainErrors never leak their message.
func FromError(err error) (int, *ErrorInfo) {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, &ErrorInfo{
			Code:    ErrCodeInternal,
			Kind:    string(shared.KindInternal),
			Message: "An unexpected error occurred",
		}
	}

	status := GetHTTPStatus(de.Kind)
	message := de.Message
	if status == http.StatusInternalServerError {
		message = "An unexpected error occurred"
	}
	return status, &ErrorInfo{
		Code:    de.Code,
		Kind:    string(de.Kind),
		Message: message,
	}
}
