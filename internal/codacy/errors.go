package codacy

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrCursorLoop is returned when the catalog pagination repeats a cursor.
var ErrCursorLoop = errors.New("pagination cursor repeated")

// maxErrorBody bounds the response body kept on an APIError.
const maxErrorBody = 4096

// APIError is a non-2xx response from the Codacy API.
type APIError struct {
	StatusCode int
	Status     string
	Method     string
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("codacy %s %s: %s", e.Method, e.URL, e.Status)
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ": " + body
	}
	return msg
}

// Transient reports whether the request may succeed when repeated.
func (e *APIError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// IsRetryable determines if an error should be retried. API errors are
// retried when transient; transport failures always are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	var decodeErr *DecodeError
	return !errors.As(err, &decodeErr)
}

// DecodeError is a 2xx response whose body could not be decoded.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
