package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// File-level, fatal for a run
	ErrTypeInputMissing ErrorType = "INPUT_MISSING"

	// Row-level, the record is dropped and counted
	ErrTypeRequiredField ErrorType = "REQUIRED_FIELD_MISSING"
	ErrTypeDateParse     ErrorType = "DATE_PARSE"
	ErrTypeLogicalOrder  ErrorType = "LOGICAL_ORDER"
	ErrTypeDimension     ErrorType = "DIMENSION_OUT_OF_RANGE"

	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// RowScoped reports whether errors of this type only exclude a single record.
func (t ErrorType) RowScoped() bool {
	switch t {
	case ErrTypeRequiredField, ErrTypeDateParse, ErrTypeLogicalOrder, ErrTypeDimension:
		return true
	default:
		return false
	}
}

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError of the same type, so the sentinels below work with
// errors.Is regardless of message or context.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Sentinels for errors.Is
var (
	ErrInputMissing  = &AppError{Type: ErrTypeInputMissing, Message: "raw store missing or unreadable"}
	ErrRequiredField = &AppError{Type: ErrTypeRequiredField, Message: "required field missing"}
	ErrDateParse     = &AppError{Type: ErrTypeDateParse, Message: "date parse failed"}
	ErrLogicalOrder  = &AppError{Type: ErrTypeLogicalOrder, Message: "end date precedes start date"}
	ErrDimension     = &AppError{Type: ErrTypeDimension, Message: "dimension out of range"}
)

// TypeOf returns the ErrorType of the first AppError in err's chain, or "".
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// NewInputMissingError creates the fatal error raised when the raw store
// cannot be opened or is not a raw store.
func NewInputMissingError(path string, cause error) *AppError {
	return NewAppError(ErrTypeInputMissing, "raw store missing or unreadable", cause).
		WithContext("path", path)
}

// NewRequiredFieldError creates a row-level error for a missing field
func NewRequiredFieldError(field string) *AppError {
	return NewAppError(ErrTypeRequiredField, fmt.Sprintf("%s is missing", field), nil).
		WithContext("field", field)
}

// NewDateParseError creates a row-level error for an unparsable date
func NewDateParseError(field, value string, cause error) *AppError {
	return NewAppError(ErrTypeDateParse, fmt.Sprintf("%s %q is not a calendar date", field, value), cause).
		WithContext("field", field).
		WithContext("value", value)
}

// NewLogicalOrderError creates a row-level error for end_date < start_date
func NewLogicalOrderError(start, end string) *AppError {
	return NewAppError(ErrTypeLogicalOrder, fmt.Sprintf("end_date %s precedes start_date %s", end, start), nil).
		WithContext("start_date", start).
		WithContext("end_date", end)
}

// NewDimensionError creates a row-level error for a non-positive or non-finite dimension
func NewDimensionError(field string, value float64) *AppError {
	return NewAppError(ErrTypeDimension, fmt.Sprintf("%s %v is not a positive finite measurement", field, value), nil).
		WithContext("field", field).
		WithContext("value", value)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
