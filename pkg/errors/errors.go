package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Pipeline error codes. Every failure the extraction pipeline can produce
// maps to exactly one of these.
const (
	ErrInvalidInput ErrorCode = iota + 1000
	ErrConfiguration
	ErrStorage
	ErrInference
	ErrRateLimited
	ErrParse
	ErrSchema
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

// HTTPStatus maps an error code to the status the handler responds with.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrInvalidInput:
		return http.StatusBadRequest
	case ErrRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Kind returns a stable label for the error code, used in logs and metrics.
func (e *AppError) Kind() string {
	switch e.Code {
	case ErrInvalidInput:
		return "invalid_input"
	case ErrConfiguration:
		return "configuration_failure"
	case ErrStorage:
		return "storage_failure"
	case ErrInference:
		return "inference_failure"
	case ErrRateLimited:
		return "rate_limited"
	case ErrParse:
		return "parse_failure"
	case ErrSchema:
		return "schema_violation"
	default:
		return "unknown"
	}
}

// Error constructors
func NewInvalidInput(message string, err error) *AppError {
	return &AppError{
		Code:    ErrInvalidInput,
		Message: message,
		Err:     err,
	}
}

func NewConfiguration(message string, err error) *AppError {
	return &AppError{
		Code:    ErrConfiguration,
		Message: message,
		Err:     err,
	}
}

func NewStorage(message string, err error) *AppError {
	return &AppError{
		Code:    ErrStorage,
		Message: message,
		Err:     err,
	}
}

func NewInference(message string, err error) *AppError {
	return &AppError{
		Code:    ErrInference,
		Message: message,
		Err:     err,
	}
}

func NewRateLimited(message string, err error) *AppError {
	return &AppError{
		Code:    ErrRateLimited,
		Message: message,
		Err:     err,
	}
}

func NewParse(message string, err error) *AppError {
	return &AppError{
		Code:    ErrParse,
		Message: message,
		Err:     err,
	}
}

func NewSchemaViolation(message string, err error) *AppError {
	return &AppError{
		Code:    ErrSchema,
		Message: message,
		Err:     err,
	}
}

// Classify maps any failure from the pipeline to a classified error. Errors
// already classified pass through untouched; everything else becomes a
// generic inference failure.
func Classify(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInference("failed to analyze prescription", err)
}
