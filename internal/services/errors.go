package services

import "errors"

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorForbidden    ErrorCode = "forbidden"
	ErrorNotFound     ErrorCode = "not_found"
	ErrorUnauthorized ErrorCode = "unauthorized"
)

// ServiceError is a client-facing failure. Key names the message catalog
// entry the transport layer renders; Message is the English fallback.
type ServiceError struct {
	Code    ErrorCode
	Key     string
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(key, msg string) error {
	return &ServiceError{Code: ErrorInvalid, Key: key, Message: msg}
}

func NewNotFoundError(key, msg string) error {
	return &ServiceError{Code: ErrorNotFound, Key: key, Message: msg}
}

func NewForbiddenError(key, msg string) error {
	return &ServiceError{Code: ErrorForbidden, Key: key, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// AuthReason distinguishes authentication failures for logging. Callers
// outside the service see them collapsed into a generic response.
type AuthReason string

const (
	ReasonInvalidCredentials AuthReason = "invalid_credentials"
	ReasonMissingToken       AuthReason = "missing_token"
	ReasonInvalidToken       AuthReason = "invalid_token"
	ReasonExpiredToken       AuthReason = "expired_token"
)

// AuthError reports a failed login or token verification. Two AuthErrors
// match under errors.Is when their reasons are equal.
type AuthError struct {
	Reason AuthReason
	Err    error
}

var (
	ErrInvalidCredentials = &AuthError{Reason: ReasonInvalidCredentials}
	ErrMissingToken       = &AuthError{Reason: ReasonMissingToken}
	ErrInvalidToken       = &AuthError{Reason: ReasonInvalidToken}
	ErrExpiredToken       = &AuthError{Reason: ReasonExpiredToken}
)

func (e *AuthError) Error() string {
	msg := "auth: " + string(e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Reason == e.Reason
}

// NewAuthError wraps cause under reason.
func NewAuthError(reason AuthReason, cause error) error {
	return &AuthError{Reason: reason, Err: cause}
}

func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
