package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrConfiguration     ErrorType = "CONFIGURATION"
	ErrSourceUnavailable ErrorType = "SOURCE_UNAVAILABLE"
	ErrInvalidInput      ErrorType = "INVALID_INPUT"
	ErrInternal          ErrorType = "INTERNAL"
	ErrUnauthorized      ErrorType = "UNAUTHORIZED"
	ErrNotFound          ErrorType = "NOT_FOUND"
)

// AppError represents an application error
type AppError struct {
	Type      ErrorType
	Message   string
	Cause     error
	Timestamp time.Time
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:      errType,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// IsConfiguration checks if the error is a configuration error
func IsConfiguration(err error) bool {
	return isType(err, ErrConfiguration)
}

// IsSourceUnavailable checks if the error is an upstream source failure
func IsSourceUnavailable(err error) bool {
	return isType(err, ErrSourceUnavailable)
}

// IsInvalidInput checks if the error is an invalid input error
func IsInvalidInput(err error) bool {
	return isType(err, ErrInvalidInput)
}

// IsInternal checks if the error is an internal error
func IsInternal(err error) bool {
	return isType(err, ErrInternal)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return isType(err, ErrNotFound)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(message string, err error) *AppError {
	return New(ErrConfiguration, message, err)
}

// NewSourceUnavailableError creates a new source unavailable error
func NewSourceUnavailableError(message string, err error) *AppError {
	return New(ErrSourceUnavailable, message, err)
}

// NewValidationError creates a new validation error
func NewValidationError(message string, err error) *AppError {
	return New(ErrInvalidInput, message, err)
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string, err error) *AppError {
	return New(ErrUnauthorized, message, err)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return New(ErrInternal, message, err)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, err error) *AppError {
	return New(ErrNotFound, message, err)
}
