package revenuecat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is returned for every failed call. StatusCode is 0 when no response was received.
type Error struct {
	Method     string
	Uri        string
	StatusCode int

	Type      string
	Message   string
	Retryable bool
	DocUrl    string

	Err error

	// network is set when the request never produced a response.
	network bool
}

type apiErrorBody struct {
	Object    string `json:"object"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	DocUrl    string `json:"doc_url"`
}

func newApiError(method, uri string, status int, body []byte) *Error {
	e := &Error{
		Method:     method,
		Uri:        uri,
		StatusCode: status,
	}

	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		e.Type = parsed.Type
		e.Message = parsed.Message
		e.Retryable = parsed.Retryable
		e.DocUrl = parsed.DocUrl
	} else if len(body) > 0 {
		e.Message = truncate(string(body), 200)
	}

	return e
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		if e.Message != "" {
			return fmt.Sprintf("revenuecat: %s %s: %s: %v", e.Method, e.Uri, e.Message, e.Err)
		}

		return fmt.Sprintf("revenuecat: %s %s: %v", e.Method, e.Uri, e.Err)
	}

	message := e.Message
	if message == "" {
		message = http.StatusText(e.StatusCode)
	}

	if e.Err != nil {
		return fmt.Sprintf("revenuecat: %s %s: status %d: %s: %v", e.Method, e.Uri, e.StatusCode, message, e.Err)
	}

	return fmt.Sprintf("revenuecat: %s %s: status %d: %s", e.Method, e.Uri, e.StatusCode, message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Temporary reports whether repeating the request may succeed.
func (e *Error) Temporary() bool {
	switch {
	case e.StatusCode == 0:
		if !e.network || e.Err == nil {
			return false
		}

		return !errors.Is(e.Err, context.Canceled) &&
			!errors.Is(e.Err, context.DeadlineExceeded) &&
			!errors.Is(e.Err, ErrCircuitOpen)
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	default:
		return e.Retryable
	}
}

func IsTemporary(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Temporary()
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}

	return 0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
