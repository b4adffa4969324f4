package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Code is a stable machine-readable error identifier returned to clients.
type Code string

const (
	CodeBadRequest      Code = "BAD_REQUEST"
	CodeValidation      Code = "VALIDATION"
	CodeNotFound        Code = "NOT_FOUND"
	CodeParentNotFound  Code = "PARENT_NOT_FOUND"
	CodeSelfParent      Code = "SELF_PARENT"
	CodeCycleDetected   Code = "CYCLE_DETECTED"
	CodeHasChildren     Code = "HAS_CHILDREN"
	CodeCategoryInUse   Code = "CATEGORY_IN_USE"
	CodeDuplicateName   Code = "DUPLICATE_NAME"
	CodeDuplicateSlug   Code = "DUPLICATE_SLUG"
	CodeConflict        Code = "CONFLICT"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeTooManyRequests Code = "TOO_MANY_REQUESTS"
	CodeInternal        Code = "INTERNAL"
)

// AppError is the single error type raised by services. Status is the HTTP
// status handlers respond with.
type AppError struct {
	Status  int
	Code    Code
	Message string
	Err     error
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

func New(status int, code Code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, CodeNotFound, message)
}

func BadRequest(code Code, message string) *AppError {
	return New(http.StatusBadRequest, code, message)
}

func Conflict(code Code, message string) *AppError {
	return New(http.StatusConflict, code, message)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, CodeUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, CodeForbidden, message)
}

// Internal hides err from clients; the message is what they see.
func Internal(message string, err error) *AppError {
	return &AppError{Status: http.StatusInternalServerError, Code: CodeInternal, Message: message, Err: err}
}

// From converts any error into an AppError. Record-not-found becomes a 404,
// anything unrecognised a 500.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("Resource not found")
	}
	return Internal("Internal server error", err)
}

// IsCode reports whether err is an AppError carrying code.
func IsCode(err error, code Code) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
