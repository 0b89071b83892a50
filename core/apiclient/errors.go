package apiclient

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingToken is returned when an authenticated call has no token.
	ErrMissingToken = errors.New("api token is not configured")
	// ErrMissingBaseURL is returned when the client has no base URL.
	ErrMissingBaseURL = errors.New("api base url is not configured")
)

// ConfigurationError reports a missing or invalid client setting.
// It is never retried.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// APIError is returned for non-2xx responses and for network failures.
// StatusCode is 0 when no response was received.
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("api %s %s failed: %v", e.Method, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("api %s %s returned %d: %s", e.Method, e.Endpoint, e.StatusCode, abbreviate(e.Body, 200))
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsClientError reports a 4xx response.
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// IsServerError reports a 5xx response.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}

// IsNetworkError reports a failure without any HTTP response.
func (e *APIError) IsNetworkError() bool {
	return e.StatusCode == 0
}

// AsAPIError attempts to unwrap err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func abbreviate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
