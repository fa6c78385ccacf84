package errors

import (
	stderrors "errors"
	"fmt"

	"gostreak/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeDomainError        = "DOMAIN_ERROR"
	CodeConfigurationError = "CONFIGURATION_ERROR"
	CodeNumericError       = "NUMERIC_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// Classify maps a core error onto its taxonomy code
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case core.IsDomainError(err):
		return CodeDomainError
	case core.IsConfigurationError(err):
		return CodeConfigurationError
	case core.IsNumericError(err):
		return CodeNumericError
	}
	return GetCode(err)
}

// FromCore wraps a core error in an AppError carrying its taxonomy code
func FromCore(err error, message string) error {
	if err == nil {
		return nil
	}
	code := Classify(err)
	if code == "UNKNOWN" {
		code = CodeInternalError
	}
	return &AppError{Code: code, Message: message, Cause: err}
}
