package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorType represents the class of an error
type ErrorType string

const (
	// ErrTypeValidation marks fatal, user-correctable input problems
	ErrTypeValidation ErrorType = "VALIDATION"
	// ErrTypeDataQuality marks advisory findings; never returned as a failure
	ErrTypeDataQuality ErrorType = "DATA_QUALITY"
	// ErrTypeModel marks forecasting lifecycle and parameter failures
	ErrTypeModel ErrorType = "MODEL"
	// ErrTypeResource marks environment failures such as unwritable paths
	ErrTypeResource ErrorType = "RESOURCE"
	ErrTypeParsing  ErrorType = "PARSING"
	ErrTypeConfig   ErrorType = "CONFIG"
	ErrTypeGraph    ErrorType = "GRAPH"
)

// Error codes
const (
	CodeEmptyData              = "EMPTY_DATA"
	CodeInsufficientRows       = "INSUFFICIENT_ROWS"
	CodeMissingColumns         = "MISSING_COLUMNS"
	CodeUnreadableEncoding     = "UNREADABLE_ENCODING"
	CodeUnsupportedFormat      = "UNSUPPORTED_FORMAT"
	CodeFileTooLarge           = "FILE_TOO_LARGE"
	CodeInsufficientData       = "INSUFFICIENT_DATA"
	CodeInvalidSplit           = "INVALID_SPLIT"
	CodeInvalidTrainingData    = "INVALID_TRAINING_DATA"
	CodeModelNotTrained        = "MODEL_NOT_TRAINED"
	CodeInvalidHorizon         = "INVALID_HORIZON"
	CodeInvalidEvaluationInput = "INVALID_EVALUATION_INPUT"
	CodeGraphGeneration        = "GRAPH_GENERATION"
	CodeOutputUnwritable       = "OUTPUT_UNWRITABLE"
	CodeStorageFailure         = "STORAGE_FAILURE"
	CodeMalformedInput         = "MALFORMED_INPUT"
	CodeInvalidConfig          = "INVALID_CONFIG"
)

// Sentinels for errors.Is. AppError.Is matches on Code, so any AppError
// carrying the same code satisfies errors.Is(err, ErrX).
var (
	ErrEmptyData              = &AppError{Type: ErrTypeValidation, Code: CodeEmptyData, Message: "data is empty"}
	ErrInsufficientRows       = &AppError{Type: ErrTypeValidation, Code: CodeInsufficientRows, Message: "insufficient rows"}
	ErrMissingColumns         = &AppError{Type: ErrTypeValidation, Code: CodeMissingColumns, Message: "missing required columns"}
	ErrUnreadableEncoding     = &AppError{Type: ErrTypeValidation, Code: CodeUnreadableEncoding, Message: "unreadable encoding"}
	ErrUnsupportedFormat      = &AppError{Type: ErrTypeValidation, Code: CodeUnsupportedFormat, Message: "unsupported file format"}
	ErrFileTooLarge           = &AppError{Type: ErrTypeValidation, Code: CodeFileTooLarge, Message: "file too large"}
	ErrInsufficientData       = &AppError{Type: ErrTypeModel, Code: CodeInsufficientData, Message: "insufficient data"}
	ErrInvalidSplit           = &AppError{Type: ErrTypeModel, Code: CodeInvalidSplit, Message: "invalid split"}
	ErrInvalidTrainingData    = &AppError{Type: ErrTypeModel, Code: CodeInvalidTrainingData, Message: "invalid training data"}
	ErrModelNotTrained        = &AppError{Type: ErrTypeModel, Code: CodeModelNotTrained, Message: "model not trained"}
	ErrInvalidHorizon         = &AppError{Type: ErrTypeModel, Code: CodeInvalidHorizon, Message: "invalid horizon"}
	ErrInvalidEvaluationInput = &AppError{Type: ErrTypeModel, Code: CodeInvalidEvaluationInput, Message: "invalid evaluation input"}
	ErrGraphGeneration        = &AppError{Type: ErrTypeGraph, Code: CodeGraphGeneration, Message: "graph generation failed"}
	ErrOutputUnwritable       = &AppError{Type: ErrTypeResource, Code: CodeOutputUnwritable, Message: "output path is not writable"}
	ErrStorageFailure         = &AppError{Type: ErrTypeResource, Code: CodeStorageFailure, Message: "storage failure"}
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Code    string
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

// Unwrap allows errors.Is and errors.As to reach the cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError with the same non-empty code
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || t.Code == "" {
		return false
	}
	return e.Code == t.Code
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
func NewAppError(errType ErrorType, code, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewValidationError creates a fatal input validation error
func NewValidationError(code, message string) *AppError {
	return NewAppError(ErrTypeValidation, code, message, nil)
}

// NewModelError creates a forecasting error
func NewModelError(code, message string) *AppError {
	return NewAppError(ErrTypeModel, code, message, nil)
}

// NewGraphError creates a chart data error
func NewGraphError(message string) *AppError {
	return NewAppError(ErrTypeGraph, CodeGraphGeneration, message, nil)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, CodeMalformedInput, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, CodeInvalidConfig, message, cause)
}

// NewResourceError translates an environment failure into a readable
// message and keeps the underlying cause
func NewResourceError(code, message string, cause error) *AppError {
	return NewAppError(ErrTypeResource, code, message, cause)
}

// NewStorageError wraps a failed read or write of path
func NewStorageError(operation, path string, cause error) *AppError {
	return NewResourceError(CodeStorageFailure,
		fmt.Sprintf("failed to %s %s", operation, path), cause).
		WithContext("path", path)
}

// JoinNames renders a column list for diagnostics
func JoinNames(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool { return stderrors.As(err, target) }

// TypeOf returns the ErrorType of err, or "" when err is not an AppError
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Type
	}
	return ""
}
