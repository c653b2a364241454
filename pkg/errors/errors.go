package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeInvalidLogFileName ErrorType = "invalid_log_file_name"
	ErrorTypeFileNotFound       ErrorType = "file_not_found"
	ErrorTypeUnreadable         ErrorType = "unreadable"
	ErrorTypeDirectoryCreation  ErrorType = "directory_creation"
	ErrorTypeNetwork            ErrorType = "network"
	ErrorTypeHTTPStatus         ErrorType = "http_status"
	ErrorTypeNotFound           ErrorType = "not_found"
	ErrorTypeRateLimit          ErrorType = "rate_limit"
	ErrorTypeServerError        ErrorType = "server_error"
	ErrorTypeWrite              ErrorType = "write"
	ErrorTypeCancelled          ErrorType = "cancelled"
	ErrorTypeUnknown            ErrorType = "unknown"
)

// Error is a typed failure. Path holds the file, directory or URL involved.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Path    string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error", e.Type)
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" [%s]", e.Path)
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error without an underlying cause
func New(errorType ErrorType, path, message string) *Error {
	return &Error{Type: errorType, Path: path, Message: message}
}

// Wrap creates an Error around an underlying cause
func Wrap(errorType ErrorType, path, message string, err error) *Error {
	return &Error{Type: errorType, Path: path, Message: message, Err: err}
}

// FromStatusCode classifies a non-2xx HTTP response
func FromStatusCode(url string, statusCode int) *Error {
	errorType := ErrorTypeHTTPStatus
	switch {
	case statusCode == http.StatusNotFound:
		errorType = ErrorTypeNotFound
	case statusCode == http.StatusTooManyRequests:
		errorType = ErrorTypeRateLimit
	case statusCode >= 500:
		errorType = ErrorTypeServerError
	}
	return &Error{
		Type:    errorType,
		Message: fmt.Sprintf("unexpected status %s", http.StatusText(statusCode)),
		Code:    statusCode,
		Path:    url,
	}
}

// TypeOf returns the ErrorType of the first *Error in err's chain
func TypeOf(err error) ErrorType {
	var typed *Error
	if stderrors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries the given ErrorType
func Is(err error, errorType ErrorType) bool {
	return err != nil && TypeOf(err) == errorType
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case http.StatusTooManyRequests:
		return true
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return false
	default:
		return statusCode >= 500
	}
}
