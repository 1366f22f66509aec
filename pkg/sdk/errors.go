package sdk

import (
	"fmt"
	"net/http"
)

// Error codes returned by the server.
const (
	CodeInvalidQuery  = "invalid_query"
	CodeInternalError = "internal_error"
)

// APIError is a non-2xx reply from the server.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("regsearch: http %d", e.StatusCode)
	}
	return fmt.Sprintf("regsearch: http %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// IsInvalidQuery reports whether the request was rejected as malformed.
func (e *APIError) IsInvalidQuery() bool {
	return e.StatusCode == http.StatusBadRequest && e.Code == CodeInvalidQuery
}

// Temporary reports whether retrying may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError
}
