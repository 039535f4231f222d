// Package domainerrors defines the single error taxonomy shared by the smart
// store engine, its stores and its transports.
//
// Every error carries a Code (what kind of failure), the Action that was
// attempted and a human readable Message (the reason). Callers branch on the
// code with HasCode or Is and never on message text.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	// CodeNotFound: a referenced id does not exist.
	CodeNotFound Code = "not_found"
	// CodeDuplicateEntity: provisioning with an id already present in scope.
	CodeDuplicateEntity Code = "duplicate_entity"
	// CodeInvalidState: a business rule would be violated.
	CodeInvalidState Code = "invalid_state"
	// CodeValidation: malformed input such as an unknown enum value or a missing field.
	CodeValidation Code = "validation_error"
	// CodeBadRequest: the transport could not decode the request.
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeInternal     Code = "internal_error"
)

// Error is the concrete domain error.
type Error struct {
	Code    Code
	Action  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Action != "" {
		msg = e.Action + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Reason returns the human readable reason without the action prefix.
func (e *Error) Reason() string {
	return e.Message
}

// New builds an error with no action attached.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// NewAction builds an error recording the attempted action.
func NewAction(code Code, action, reason string) error {
	return &Error{Code: code, Action: action, Message: reason}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// WithAction returns err with the action recorded. Coded errors keep their
// code and reason; anything else becomes an internal error.
func WithAction(err error, action string) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		if de.Action != "" {
			return err
		}
		cp := *de
		cp.Action = action
		return &cp
	}
	return &Error{Code: CodeInternal, Action: action, Message: "unexpected failure", Err: err}
}

// CodeOf returns the code of the first domain error in the chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether err is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias of HasCode kept for handler readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// ActionOf returns the recorded action, if any.
func ActionOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Action
	}
	return ""
}

// ToHTTPStatus maps a code to the status a transport should answer with.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicateEntity:
		return http.StatusConflict
	case CodeInvalidState:
		return http.StatusUnprocessableEntity
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
