package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	CodeNotFound           = "NOT_FOUND"
	CodeBadRequest         = "BAD_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeConflict           = "CONFLICT"
	CodeInternal           = "INTERNAL_ERROR"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeAuthRequired       = "AUTH_REQUIRED"
	CodeResolveFailed      = "RESOLVE_FAILED"
	CodeLoadFailed         = "LOAD_FAILED"
	CodeSendFailed         = "SEND_FAILED"
	CodeSubscriptionFailed = "SUBSCRIPTION_FAILED"
)

type AppError struct {
	Code       string
	Message    string
	Status     int
	Err        error
	RetryAfter time.Duration
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

func Forbidden(message string, err error) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
		Status:  http.StatusForbidden,
		Err:     err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func Conflict(message string, err error) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Status:  http.StatusConflict,
		Err:     err,
	}
}

func TooManyRequests(message string, retryAfter time.Duration) *AppError {
	return &AppError{
		Code:       CodeTooManyRequests,
		Message:    message,
		Status:     http.StatusTooManyRequests,
		RetryAfter: retryAfter,
	}
}

// AuthRequired is returned when an action needs a signed-in user and none is present.
func AuthRequired() *AppError {
	return &AppError{
		Code:    CodeAuthRequired,
		Message: "Please sign in to continue",
		Status:  http.StatusUnauthorized,
	}
}

// ResolveFailed keeps the status of the underlying AppError when there is one,
// so a bad request stays a 400 while store failures surface as 500.
func ResolveFailed(message string, err error) *AppError {
	return chatFailure(CodeResolveFailed, message, err)
}

func LoadFailed(message string, err error) *AppError {
	return chatFailure(CodeLoadFailed, message, err)
}

func SendFailed(message string, err error) *AppError {
	return chatFailure(CodeSendFailed, message, err)
}

func SubscriptionFailed(message string, err error) *AppError {
	return chatFailure(CodeSubscriptionFailed, message, err)
}

func chatFailure(code, message string, err error) *AppError {
	status := http.StatusInternalServerError
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		status = appErr.Status
	}
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Is reports whether any AppError in err's chain carries code.
func Is(err error, code string) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Err
	}
	return false
}

// StatusOf returns the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
