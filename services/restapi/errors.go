package restapi

import (
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the backend.
// Its message is the body's "message" field when present.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func newAPIError(req *http.Request, status int, body map[string]interface{}) *APIError {
	apiErr := &APIError{Method: req.Method, URL: req.URL.String(), StatusCode: status}
	if msg, ok := body["message"].(string); ok && strings.TrimSpace(msg) != "" {
		apiErr.Message = msg
	}
	return apiErr
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("http error: status %d", e.StatusCode)
}

// TransportError is returned when no response was received.
type TransportError struct {
	Op  string // eg. "fetch courses"
	Err error
}

func (e *TransportError) Error() string {
	return "failed to " + e.Op
}

func (e *TransportError) Unwrap() error { return e.Err }
