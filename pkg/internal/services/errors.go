package services

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthorized
	KindTokenExpired
	KindForbidden
	KindNotFound
	KindConflict
	KindUpload
)

func (k ErrorKind) StatusCode() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized, KindTokenExpired:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain failure. Message is safe to show to clients, Err is the underlying cause.
type Error struct {
	Kind    ErrorKind
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

func newError(kind ErrorKind, err error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func ValidationError(format string, args ...any) error {
	return newError(KindValidation, nil, format, args...)
}

func UnauthorizedError(format string, args ...any) error {
	return newError(KindUnauthorized, nil, format, args...)
}

func TokenExpiredError(format string, args ...any) error {
	return newError(KindTokenExpired, nil, format, args...)
}

func ForbiddenError(format string, args ...any) error {
	return newError(KindForbidden, nil, format, args...)
}

func NotFoundError(format string, args ...any) error {
	return newError(KindNotFound, nil, format, args...)
}

func ConflictError(format string, args ...any) error {
	return newError(KindConflict, nil, format, args...)
}

func UploadError(err error, format string, args ...any) error {
	return newError(KindUpload, err, format, args...)
}

func InternalError(err error, format string, args ...any) error {
	return newError(KindInternal, err, format, args...)
}

// KindOf returns the kind of a domain error, anything else is internal.
func KindOf(err error) ErrorKind {
	var domain *Error
	if errors.As(err, &domain) {
		return domain.Kind
	}
	return KindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// LookupError converts a failed single-row lookup into NotFound or Internal.
func LookupError(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError("%s not found", what)
	}
	return InternalError(err, "unable to load %s", what)
}
