package model

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common cases.
// Use errors.Is() to check against these.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrUpstreamError  = errors.New("upstream error")
	ErrRateLimited    = errors.New("rate limited")
	ErrUnsupported    = errors.New("unsupported operation")
	ErrIncompatible   = errors.New("incompatible client version")
)

// APIError is a structured error shared by the remote client and the
// reference backend. Implements error and supports unwrapping.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a 404 error for missing resources.
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
		Err:        ErrNotFound,
	}
}

// NewValidationError creates a 400 error for invalid input.
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Code:       "VALIDATION_ERROR",
		Message:    fmt.Sprintf("invalid %s: %s", field, reason),
		StatusCode: http.StatusBadRequest,
		Err:        ErrInvalidRequest,
	}
}

// NewUnauthorizedError creates a 401 error for auth failures.
func NewUnauthorizedError(reason string) *APIError {
	return &APIError{
		Code:       "UNAUTHORIZED",
		Message:    reason,
		StatusCode: http.StatusUnauthorized,
		Err:        ErrUnauthorized,
	}
}

// NewUpstreamError creates a 502 error for transport or backend failures.
func NewUpstreamError(service string, err error) *APIError {
	return &APIError{
		Code:       "UPSTREAM_ERROR",
		Message:    fmt.Sprintf("%s request failed", service),
		StatusCode: http.StatusBadGateway,
		Err:        fmt.Errorf("%w: %v", ErrUpstreamError, err),
	}
}

// NewUnsupportedError creates a 405 error for operations a collection does not offer.
func NewUnsupportedError(kind Kind, op string) *APIError {
	return &APIError{
		Code:       "UNSUPPORTED",
		Message:    fmt.Sprintf("%s does not support %s", kind, op),
		StatusCode: http.StatusMethodNotAllowed,
		Err:        ErrUnsupported,
	}
}

// NewIncompatibleError creates a 400 error for a client speaking an unsupported API version.
func NewIncompatibleError(clientVersion, serverVersion string) *APIError {
	return &APIError{
		Code:       "CLIENT_VERSION_UNSUPPORTED",
		Message:    fmt.Sprintf("client version %s is not compatible with %s", clientVersion, serverVersion),
		StatusCode: http.StatusBadRequest,
		Err:        ErrIncompatible,
	}
}

// NewInternalError creates a 500 error for unexpected failures.
func NewInternalError(err error) *APIError {
	return &APIError{
		Code:       "INTERNAL_ERROR",
		Message:    "an internal error occurred",
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewRateLimitError creates a 429 error for rate limiting.
func NewRateLimitError(service string) *APIError {
	return &APIError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("%s rate limit exceeded, please retry later", service),
		StatusCode: http.StatusTooManyRequests,
		Err:        ErrRateLimited,
	}
}

// ErrorFromStatus maps a non-success HTTP status from service to an APIError.
// message is the server-provided explanation, if any.
func ErrorFromStatus(service, resource string, status int, message string) *APIError {
	switch status {
	case http.StatusNotFound:
		return NewNotFoundError(resource)
	case http.StatusUnauthorized, http.StatusForbidden:
		if message == "" {
			message = service + " authentication failed"
		}
		return NewUnauthorizedError(message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if message == "" {
			message = "invalid request"
		}
		return NewValidationError("request", message)
	case http.StatusTooManyRequests:
		return NewRateLimitError(service)
	default:
		return NewUpstreamError(service, fmt.Errorf("status %d: %s", status, message))
	}
}
