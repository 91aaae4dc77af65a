package alpaca

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error kinds shared by the REST and streaming layers. Wrapped errors carry
// the detail; match them with errors.Is.
var (
	ErrTransport   = errors.New("transport error")
	ErrDeserialize = errors.New("deserialization error")
	ErrConfig      = errors.New("configuration error")
	ErrStreaming   = errors.New("streaming error")
)

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired       = errors.New("config is required")
	ErrCredentialsRequired  = errors.New("API key ID and secret key are required")
	ErrBaseURLRequired      = errors.New("base URL is required")
	ErrNoMoreItems          = errors.New("no more items")
	ErrUnknownMessageType   = errors.New("unknown stream message type")
	ErrUnknownFeed          = errors.New("unknown market data feed")
	ErrStreamClosed         = errors.New("stream is closed")
	ErrInvalidStreamBaseURL = errors.New("trading base URL must use http or https")
)

// DefaultRetryAfterSeconds is reported when a 429 response has no usable
// retry-after header.
const DefaultRetryAfterSeconds uint64 = 1

// APIError is a completed HTTP exchange with a non-2xx status.
type APIError struct {
	StatusCode int    `json:"status_code" yaml:"status_code"`
	Body       string `json:"body"        yaml:"body"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API error (status %d)", e.StatusCode)
	}

	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// RateLimitError is returned for HTTP 429 responses.
type RateLimitError struct {
	RetryAfterSeconds uint64 `json:"retry_after_seconds" yaml:"retry_after_seconds"`
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: retry after %ds", e.RetryAfterSeconds)
}

// RetryAfter returns the suggested wait as a duration.
func (e *RateLimitError) RetryAfter() time.Duration {
	return time.Duration(e.RetryAfterSeconds) * time.Second
}

// ErrorKind identifies which member of the error taxonomy an error belongs to.
type ErrorKind int

// Error kinds.
const (
	KindUnknown ErrorKind = iota
	KindTransport
	KindAPI
	KindDeserialize
	KindRateLimited
	KindConfig
	KindStreaming
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAPI:
		return "api"
	case KindDeserialize:
		return "deserialize"
	case KindRateLimited:
		return "rate_limited"
	case KindConfig:
		return "config"
	case KindStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// KindOf classifies err. A nil error is KindUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	rateErr := &RateLimitError{}
	if errors.As(err, &rateErr) {
		return KindRateLimited
	}

	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return KindAPI
	}

	switch {
	case errors.Is(err, ErrTransport):
		return KindTransport
	case errors.Is(err, ErrDeserialize):
		return KindDeserialize
	case errors.Is(err, ErrConfig):
		return KindConfig
	case errors.Is(err, ErrStreaming):
		return KindStreaming
	default:
		return KindUnknown
	}
}

// IsRateLimited checks if the error is a rate limit error.
func IsRateLimited(err error) bool {
	rateErr := &RateLimitError{}

	return errors.As(err, &rateErr)
}

// RetryAfter returns the retry-after hint carried by a rate limit error.
func RetryAfter(err error) (time.Duration, bool) {
	rateErr := &RateLimitError{}
	if errors.As(err, &rateErr) {
		return rateErr.RetryAfter(), true
	}

	return 0, false
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is an authentication or permission error.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized) || hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, status int) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}

	return false
}
