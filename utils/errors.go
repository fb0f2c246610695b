package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned by services and echoed in the response envelope.
const (
	ErrCodeInvalidArgument          = "INVALID_ARGUMENT"
	ErrCodeNotFound                 = "NOT_FOUND"
	ErrCodeAlreadyFriends           = "ALREADY_FRIENDS"
	ErrCodeRequestAlreadySentByYou  = "REQUEST_ALREADY_SENT_BY_YOU"
	ErrCodeRequestAlreadySentByThem = "REQUEST_ALREADY_SENT_BY_THEM"
	ErrCodeStorageFailure           = "STORAGE_FAILURE"
	ErrCodeUnauthorized             = "UNAUTHORIZED"
	ErrCodeRateLimited              = "RATE_LIMITED"
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports a match on code, so errors.Is(err, &AppError{Code: ErrCodeNotFound})
// works regardless of message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func NewAppError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func WrapAppError(err error, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// ErrorCode extracts the AppError code from err, or "" when err carries none.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsConflict reports whether err is one of the relationship conflict codes.
func IsConflict(err error) bool {
	switch ErrorCode(err) {
	case ErrCodeAlreadyFriends, ErrCodeRequestAlreadySentByYou, ErrCodeRequestAlreadySentByThem:
		return true
	}
	return false
}

// HTTPStatus maps an error code to its HTTP status.
func HTTPStatus(code string) int {
	switch code {
	case ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyFriends, ErrCodeRequestAlreadySentByYou, ErrCodeRequestAlreadySentByThem:
		return http.StatusConflict
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
