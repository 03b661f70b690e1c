package util

import (
	"errors"
	"net/http"
)

// ErrorKind classifies an AppError and decides its HTTP status.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
)

// Status maps the kind onto an HTTP status code.
func (k ErrorKind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Type is the machine readable name rendered in the error envelope.
func (k ErrorKind) Type() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindUnauthenticated:
		return "AuthenticationError"
	case KindForbidden:
		return "PermissionError"
	case KindNotFound:
		return "NotFoundError"
	case KindConflict:
		return "ConflictError"
	case KindRateLimited:
		return "RateLimitError"
	default:
		return "InternalError"
	}
}

// AppError is the error type crossing layer boundaries. Two AppErrors match under
// errors.Is when Kind and Reason are equal, so sentinels keep matching after
// WithMessage or Wrap.
type AppError struct {
	Kind    ErrorKind
	Reason  string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Reason == t.Reason
}

// WithMessage returns a copy carrying a more specific message.
func (e *AppError) WithMessage(msg string) *AppError {
	cp := *e
	cp.Message = msg
	return &cp
}

// Wrap returns a copy recording the underlying cause.
func (e *AppError) Wrap(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

func newAppError(kind ErrorKind, reason, msg string) *AppError {
	return &AppError{Kind: kind, Reason: reason, Message: msg}
}

func NewValidationError(reason, msg string) *AppError {
	return newAppError(KindValidation, reason, msg)
}

func NewUnauthenticatedError(reason, msg string) *AppError {
	return newAppError(KindUnauthenticated, reason, msg)
}

func NewForbiddenError(reason, msg string) *AppError {
	return newAppError(KindForbidden, reason, msg)
}

func NewNotFoundError(reason, msg string) *AppError {
	return newAppError(KindNotFound, reason, msg)
}

func NewConflictError(reason, msg string) *AppError {
	return newAppError(KindConflict, reason, msg)
}

func NewRateLimitedError(reason, msg string) *AppError {
	return newAppError(KindRateLimited, reason, msg)
}

// NewInternalError hides err behind a generic message.
func NewInternalError(err error) *AppError {
	return &AppError{Kind: KindInternal, Reason: "internal", Message: "internal server error", Err: err}
}

// AsAppError unwraps err into an AppError, classifying anything else as internal.
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}
