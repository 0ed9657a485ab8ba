package usecase

import "fmt"

type ErrorCode string

const (
	ErrorValidation ErrorCode = "VALIDATION_ERROR"
	ErrorInternal   ErrorCode = "INTERNAL_ERROR"
)

// User-facing messages for each error kind.
const (
	ValidationMessage = "Message is required and must be a non-empty string."
	InternalMessage   = "An unexpected error occurred while processing your request."
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Message returns the fixed text shown to the caller for this error kind.
func (e *Error) Message() string {
	if e != nil && e.Code == ErrorValidation {
		return ValidationMessage
	}
	return InternalMessage
}

// Details describes the underlying fault. Validation errors carry none.
func (e *Error) Details() string {
	if e == nil || e.Code == ErrorValidation {
		return ""
	}
	if e.Err == nil {
		return e.Reason
	}
	return e.Err.Error()
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// Internal wraps an unexpected fault raised outside the service, such as a
// body that cannot be decoded at the transport boundary.
func Internal(reason string, err error) *Error {
	return newError(ErrorInternal, reason, err)
}
