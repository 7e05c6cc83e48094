package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure into one of the categories reported to callers.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindDelivery
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindDelivery:
		return "delivery"
	default:
		return "unknown"
	}
}

// HTTPStatus returns the status code a kind is reported with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Operational reports whether the error message may be shown to the caller.
func (k Kind) Operational() bool {
	return k != KindUnknown
}

var (
	ErrInvalidCredentials  = New(KindUnauthenticated, "INVALID_CREDENTIALS", "incorrect email or password")
	ErrNotLoggedIn         = New(KindUnauthenticated, "NOT_LOGGED_IN", "you are not logged in, please log in to get access")
	ErrInvalidToken        = New(KindUnauthenticated, "INVALID_TOKEN", "invalid token, please log in again")
	ErrTokenExpired        = New(KindUnauthenticated, "TOKEN_EXPIRED", "your token has expired, please log in again")
	ErrUserNoLongerExists  = New(KindUnauthenticated, "USER_GONE", "the user belonging to this token no longer exists")
	ErrPasswordChanged     = New(KindUnauthenticated, "PASSWORD_CHANGED", "user recently changed password, please log in again")
	ErrOneTimeTokenInvalid = New(KindValidation, "ONE_TIME_TOKEN_INVALID", "token is invalid or has expired")

	ErrInsufficientPermissions = New(KindForbidden, "FORBIDDEN", "you do not have permission to perform this action")

	ErrNotFound       = New(KindNotFound, "NOT_FOUND", "no document found with that ID")
	ErrDuplicateValue = New(KindConflict, "DUPLICATE_VALUE", "duplicate field value, please use another value")

	ErrInvalidInput     = New(KindValidation, "VALIDATION_ERROR", "invalid input data")
	ErrPasswordMismatch = New(KindValidation, "PASSWORD_MISMATCH", "passwords are not the same")
	ErrWeakPassword     = New(KindValidation, "WEAK_PASSWORD", "password must be at least 8 characters")

	ErrDelivery = New(KindDelivery, "DELIVERY_FAILED", "there was an error sending the email, try again later")
)

type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New builds a sentinel without an underlying cause.
func New(kind Kind, code, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

func NewAppError(kind Kind, code, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation wraps err as a validation failure with the given message.
func Validation(message string, err error) *AppError {
	return NewAppError(KindValidation, "VALIDATION_ERROR", message, err)
}

// Duplicate reports a unique constraint violation on field.
func Duplicate(field string, err error) *AppError {
	msg := ErrDuplicateValue.Message
	if field != "" {
		msg = fmt.Sprintf("duplicate field value for %s, please use another value", field)
	}
	return &AppError{Kind: KindConflict, Code: ErrDuplicateValue.Code, Message: msg, Err: errors.Join(ErrDuplicateValue, err)}
}

// Delivery wraps a notifier failure.
func Delivery(err error) *AppError {
	return &AppError{Kind: KindDelivery, Code: ErrDelivery.Code, Message: ErrDelivery.Message, Err: errors.Join(ErrDelivery, err)}
}

// KindOf classifies err. Anything that is not an AppError is KindUnknown.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// MessageOf returns the caller-facing message of the outermost AppError in err.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "something went very wrong"
}
