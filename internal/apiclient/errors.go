package apiclient

import (
	"errors"
	"fmt"
)

// ErrMissingProduct reports a successful product response that carries no
// product record.
var ErrMissingProduct = errors.New("response did not include a product record")

// APIError is a non-success response from the remote API.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Message returns the text to show a user for err: the message from a
// structured API error body, else the transport error, else fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fmt.Sprintf("Request failed with status code %d", apiErr.StatusCode)
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// StatusCode returns the HTTP status carried by err, or 0 for transport errors.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
