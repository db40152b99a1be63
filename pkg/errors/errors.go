package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Resolution errors (recoverable, per spec entry)
	ErrResolution     ErrorCode = "RESOLUTION"
	ErrNoPatternMatch ErrorCode = "NO_PATTERN_MATCH"

	// Permission policy errors
	ErrPermissionPolicy ErrorCode = "PERMISSION_POLICY"

	// Archive errors
	ErrArchiveCreate  ErrorCode = "ARCHIVE_CREATE"
	ErrArchiveCorrupt ErrorCode = "ARCHIVE_CORRUPT"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"

	// Store errors
	ErrStoreAccess ErrorCode = "STORE_ACCESS"
)

// SaverError represents a structured error with code and details
type SaverError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SaverError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SaverError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *SaverError) Is(target error) bool {
	var targetErr *SaverError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SaverError with the given code and message
func New(code ErrorCode, message string) *SaverError {
	return &SaverError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SaverError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SaverError {
	return &SaverError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SaverError
func Wrap(err error, code ErrorCode, message string) *SaverError {
	if err == nil {
		return nil
	}
	return &SaverError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SaverError {
	if err == nil {
		return nil
	}
	return &SaverError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SaverError) WithDetail(key string, value interface{}) *SaverError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var saverErr *SaverError
	if errors.As(err, &saverErr) {
		return saverErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a SaverError
func GetErrorCode(err error) ErrorCode {
	var saverErr *SaverError
	if errors.As(err, &saverErr) {
		return saverErr.Code
	}
	return ErrUnknown
}
