package services

import "errors"

// ErrorKind is the closed set of failures a client can observe. Anything
// that is not an *Error is reported as an internal error without detail.
type ErrorKind string

const (
	KindValidation   ErrorKind = "VALIDATION_ERROR"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindRateLimited  ErrorKind = "RATE_LIMITED"
	KindUnavailable  ErrorKind = "SERVICE_UNAVAILABLE"
	KindBadUpstream  ErrorKind = "AI_RESPONSE_INVALID"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string { return e.Message }

func NewValidationError(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

var (
	ErrNoSessionToken = &Error{Kind: KindUnauthorized, Message: "No session token provided"}
	ErrInvalidSession = &Error{Kind: KindUnauthorized, Message: "Invalid session token"}
	ErrSessionExpired = &Error{Kind: KindUnauthorized, Message: "Session expired"}
	ErrUserNotFound   = &Error{Kind: KindUnauthorized, Message: "User not found"}
	ErrRateLimited    = &Error{Kind: KindRateLimited, Message: "Too many requests. Please try again later."}

	ErrQuizGenerationDisabled = &Error{Kind: KindUnavailable, Message: "Quiz generation is not configured"}
	ErrQuizOutputInvalid      = &Error{Kind: KindBadUpstream, Message: "The AI model did not return usable quiz questions"}
)

// AsError unwraps err into a service error when it is one.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
