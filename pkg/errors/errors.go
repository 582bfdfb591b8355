package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies pipeline failures and decides how they propagate:
// request-level types abort the whole run, per-item types degrade to a
// skipped item or a failed summary fragment.
type ErrorType string

const (
	// ErrorTypeConfig is a missing or invalid configuration value. Fatal
	// at startup, never produced mid-pipeline.
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeScrape means the actor run did not complete successfully.
	// Aborts the request; the scrape is never retried.
	ErrorTypeScrape ErrorType = "scrape"
	// ErrorTypeNetwork is a failed media download or upload. Per-item:
	// logged and skipped.
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeStorage is a failed persistence read or write. Aborts the
	// request; the record set cannot be trusted.
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeBackendTransient is a temporarily unavailable inference
	// backend. Retried a bounded number of times, then downgraded to a
	// per-item failure fragment.
	ErrorTypeBackendTransient ErrorType = "backend_transient"
	// ErrorTypeBackendFatal is a backend-reported permanent failure, such
	// as a video the backend marked failed. Per-item, not retried.
	ErrorTypeBackendFatal ErrorType = "backend_fatal"
	// ErrorTypeParsing covers malformed input or responses.
	ErrorTypeParsing ErrorType = "parsing"
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error is a typed pipeline error. Code carries the HTTP status when one
// is available.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// New creates a typed error.
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Newf creates a typed error with a formatted message.
func Newf(t ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...)}
}

// WithCode creates a typed error carrying an HTTP status code.
func WithCode(t ErrorType, code int, message string) *Error {
	return &Error{Type: t, Message: message, Code: code}
}

// Wrap converts an arbitrary error into a typed error, preserving its text.
func Wrap(t ErrorType, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Type: t, Message: err.Error()}
}

// IsType reports whether err is (or wraps) a typed error of the given type.
func IsType(err error, t ErrorType) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// IsRetryable checks if an error type should be retried.
func IsRetryable(t ErrorType) bool {
	switch t {
	case ErrorTypeNetwork, ErrorTypeBackendTransient:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error.
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504: // Server errors
		return true
	case 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500 // Retry all 5xx errors
	}
}
