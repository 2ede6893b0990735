package errors

import "fmt"

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	// ErrorTypeNetwork covers connection failures and timeouts
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit covers HTTP 429 rejections
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeServerError covers HTTP 5xx responses
	ErrorTypeServerError ErrorType = "server_error"
	// ErrorTypeParsing covers malformed JSON or base64 payloads
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeProtocol covers valid HTTP responses with an unexpected
	// remote response code
	ErrorTypeProtocol ErrorType = "protocol"
	// ErrorTypeNotFound covers HTTP 404 responses
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeUnknown covers everything else
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error represents an API error with type information.
// Code carries the HTTP status for transport errors and the remote
// response code for protocol errors.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// New creates a typed error
func New(errType ErrorType, code int, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	case ErrorTypeParsing, ErrorTypeProtocol, ErrorTypeNotFound:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
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
