package apperrors

import "errors"

// Error kinds of the realtime core. Only ErrAuth ever reaches a client;
// the others are logged and recovered where they happen.
var (
	ErrAuth          = errors.New("authentication failed")
	ErrDirectory     = errors.New("membership directory lookup failed")
	ErrStore         = errors.New("message persistence failed")
	ErrPresenceWrite = errors.New("presence write failed")
	ErrInvalidIntent = errors.New("invalid message intent")
)

// ErrPermissionDenied is returned when an authenticated caller lacks the required role
var ErrPermissionDenied = errors.New("permission denied")

// Token errors, always joined with ErrAuth
var (
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrInvalidFormat = errors.New("invalid token format")
)

// CustomError carries an error kind, the underlying cause and optional context
type CustomError struct {
	Kind    error
	Cause   error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	msg := e.Message
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if msg == "" {
		msg = "unknown error"
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As
func (e *CustomError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Wrap classifies cause under kind
func Wrap(kind, cause error, message string) *CustomError {
	return &CustomError{
		Kind:    kind,
		Cause:   cause,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}
