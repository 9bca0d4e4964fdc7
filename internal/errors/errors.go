// Package errors provides custom error types for the Gemini API client.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common cases
var (
	ErrMissingCredential = errors.New("API Key not set")
	ErrInvalidRequest    = errors.New("message is empty and no files are attached")
	ErrMalformedResponse = errors.New("invalid response format")
	ErrSendInFlight      = errors.New("a message is already being sent")
)

// APIError represents a non-2xx response from the API.
// Body keeps the raw response text so callers can show it verbatim.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API Error: %d", e.StatusCode)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, body string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Body:       body,
	}
}

// NetworkError represents a transport failure before any response was read
type NetworkError struct {
	Operation string
	Endpoint  string
	Err       error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s at %s: %v", e.Operation, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation, endpoint string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Err: err}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse error at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrMalformedResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// RequestError is a request that cannot be sent as composed. It matches
// ErrInvalidRequest but carries its own reason.
type RequestError struct {
	Reason string
}

func (e *RequestError) Error() string {
	return e.Reason
}

// Is allows comparison with sentinel errors
func (e *RequestError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// NewRequestError creates a new RequestError
func NewRequestError(reason string) *RequestError {
	return &RequestError{Reason: reason}
}

// AttachmentError is returned when a file cannot be turned into an attachment
type AttachmentError struct {
	FileName string
	Message  string
	Err      error
}

func (e *AttachmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("attachment %s: %s: %v", e.FileName, e.Message, e.Err)
	}
	return fmt.Sprintf("attachment %s: %s", e.FileName, e.Message)
}

func (e *AttachmentError) Unwrap() error {
	return e.Err
}

// NewAttachmentError creates a new AttachmentError
func NewAttachmentError(fileName, message string, err error) *AttachmentError {
	return &AttachmentError{FileName: fileName, Message: message, Err: err}
}

// ConfigError reports an invalid configuration value
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewConfigError creates a new ConfigError
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// GetHTTPStatus returns the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// GetResponseBody returns the raw response body carried by err, if any
func GetResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}

// GetEndpoint returns the endpoint associated with err, if any
func GetEndpoint(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Endpoint
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Endpoint
	}
	return ""
}

// IsAPIError reports whether err is an HTTP error response
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsAuthError reports whether err is caused by a missing or rejected API key
func IsAuthError(err error) bool {
	if errors.Is(err, ErrMissingCredential) {
		return true
	}
	switch GetHTTPStatus(err) {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}

// IsRateLimitError reports whether the API rejected the call for quota reasons
func IsRateLimitError(err error) bool {
	return GetHTTPStatus(err) == http.StatusTooManyRequests
}

// IsNetworkError reports whether err is a transport failure
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsAttachmentError reports whether err came from reading an attachment
func IsAttachmentError(err error) bool {
	var attErr *AttachmentError
	return errors.As(err, &attErr)
}
