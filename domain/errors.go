package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	ErrCodeInvalid  ErrorCode = "INVALID"
	ErrCodeConflict ErrorCode = "CONFLICT"
	ErrCodeStorage  ErrorCode = "STORAGE"
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrTaskNotFound     = NewError(ErrCodeNotFound, "task not found")
	ErrScheduleNotFound = NewError(ErrCodeNotFound, "no schedule effective for task")
	ErrInvalidPayload   = NewError(ErrCodeInvalid, "invalid payload")
	ErrEmptyTitle       = NewError(ErrCodeInvalid, "task title must not be empty")
	ErrEmptyWeekdayMask = NewError(ErrCodeInvalid, "weekly schedule requires at least one weekday")
	ErrMonthdayRange    = NewError(ErrCodeInvalid, "monthday must be between 1 and 28")
	ErrIntervalRange    = NewError(ErrCodeInvalid, "interval must be at least 1 day")
	ErrUnknownFrequency = NewError(ErrCodeInvalid, "unknown frequency type")
	ErrTaskLocked       = NewError(ErrCodeConflict, "task is being modified by another request")
	ErrTaskArchived     = NewError(ErrCodeConflict, "task is archived")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// StorageError classifies a persistence failure without hiding the cause.
// The engine never retries these: re-running a read-modify-write blindly
// could double-toggle a completion.
func StorageError(op string, err error) *Error {
	return WrapError(ErrCodeStorage, fmt.Sprintf("storage: %s failed", op), err)
}
