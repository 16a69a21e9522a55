package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the gateway. Each kind maps to one HTTP status.
type Kind int

const (
	KindInternal       Kind = iota // unhandled fault, 500
	KindValidation                 // missing or malformed input, 400
	KindAuthentication             // bad credentials, 401
	KindAuthorization              // invalid or absent token, 401
	KindForbidden                  // authenticated but not allowed, 403
	KindNotFound                   // no matching record, 404
	KindState                      // operation not valid in the current state, 400
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindState:
		return "state"
	default:
		return "internal"
	}
}

// Error is an error whose Message is safe to return to a client.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func State(message string) *Error {
	return &Error{Kind: KindState, Message: message}
}

// Common errors for the EMS server
var (
	// Authentication errors
	ErrMissingCredentials = New(KindValidation, "Username and password are required")
	ErrInvalidCredentials = New(KindAuthentication, "Invalid username or password")

	// Token errors
	ErrMissingToken = New(KindAuthorization, "Missing bearer token")
	ErrInvalidToken = New(KindAuthorization, "Invalid token")
	ErrTokenExpired = New(KindAuthorization, "Token expired")
	ErrTokenRevoked = New(KindAuthorization, "Token revoked")
	ErrForbidden    = New(KindForbidden, "Insufficient permissions")

	// Record errors
	ErrIdentityNotFound = New(KindNotFound, "User not found")
	ErrEmployeeNotFound = New(KindNotFound, "Employee record not found")
	ErrEmployeeInactive = New(KindForbidden, "Employee account is inactive")
	ErrTaskNotFound     = New(KindNotFound, "Task not found")
	ErrLeaveNotFound    = New(KindNotFound, "Leave request not found")
	ErrSalaryNotFound   = New(KindNotFound, "Salary record not found")
	ErrNotFound         = New(KindNotFound, "Not found")

	// Attendance state errors
	ErrNoCheckIn         = New(KindState, "No check-in record found")
	ErrAlreadyCheckedIn  = New(KindState, "Already checked in")
	ErrAlreadyCheckedOut = New(KindState, "Already checked out")

	// Store errors
	ErrConflict = New(KindState, "Record was modified concurrently")
	ErrInternal = New(KindInternal, "Internal server error")
)

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message for err. Unclassified errors
// never leak their text.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return ErrInternal.Message
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
