package service

import "errors"

// ErrorCode classifies deterministic business outcomes so the transport
// layer can map them to stable status codes. Infrastructure failures are
// CodeInternal, distinct from the four caller-mistake kinds.
type ErrorCode string

// Error codes returned across the service boundary.
const (
	CodeUnauthorized ErrorCode = "unauthorized"
	CodeForbidden    ErrorCode = "forbidden"
	CodeNotFound     ErrorCode = "not_found"
	CodeValidation   ErrorCode = "validation"
	CodeConflict     ErrorCode = "conflict"
	CodeInternal     ErrorCode = "internal"
)

// Error is a coded domain error. Services never let raw infrastructure
// errors or panics cross the boundary; everything is wrapped into one of
// the codes above.
type Error struct {
	Code    ErrorCode
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NewError builds a coded error without a cause.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError builds a coded error preserving the underlying cause.
func WrapError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// CodeOf extracts the error code, defaulting to CodeInternal for anything
// that is not a coded error.
func CodeOf(err error) ErrorCode {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}
