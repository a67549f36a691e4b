package errors

import (
	"fmt"
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

// Newf creates a new AppError with a formatted message
func Newf(code, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(err error, code string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err is an AppError carrying the given code
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}

// Predefined error codes
const (
	CodeConfiguration           = "CONFIGURATION"
	CodeCalibrationMismatch     = "CALIBRATION_MISMATCH"
	CodeNumericalNonConvergence = "NUMERICAL_NON_CONVERGENCE"
	CodeUnsupportedOperation    = "UNSUPPORTED_OPERATION"
	CodeNameFormat              = "NAME_FORMAT"
	CodeConfigInvalid           = "CONFIG_INVALID"
	CodeNotFound                = "NOT_FOUND"
	CodeInternalError           = "INTERNAL_ERROR"
	CodeInvalidInput            = "INVALID_INPUT"
)

// Common error constructors

// Configuration flags invalid construction arguments (ordering violations,
// non-positive scale parameters, dimension mismatches)
func Configuration(message string) *AppError {
	return New(CodeConfiguration, message)
}

// Configurationf is Configuration with a formatted message
func Configurationf(format string, args ...interface{}) *AppError {
	return Newf(CodeConfiguration, format, args...)
}

// CalibrationMismatch flags block parameters that fail to reproduce the
// requested quantiles or mode within tolerance
func CalibrationMismatch(message string) *AppError {
	return New(CodeCalibrationMismatch, message)
}

// CalibrationMismatchf is CalibrationMismatch with a formatted message
func CalibrationMismatchf(format string, args ...interface{}) *AppError {
	return Newf(CodeCalibrationMismatch, format, args...)
}

// NumericalNonConvergence flags a root solver that exhausted its iteration budget
func NumericalNonConvergence(message string) *AppError {
	return New(CodeNumericalNonConvergence, message)
}

// UnsupportedOperation flags operations a block variant does not implement
func UnsupportedOperation(message string) *AppError {
	return New(CodeUnsupportedOperation, message)
}

// NameFormat flags malformed observable name strings
func NameFormat(message string) *AppError {
	return New(CodeNameFormat, message)
}

// ConfigInvalid flags invalid process configuration
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// NotFound flags a missing resource
func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// InternalError flags an unexpected internal failure
func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

// InvalidInput flags malformed request input
func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
