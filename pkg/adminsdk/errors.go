package adminsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error kinds emitted by the service. These mirror the server's error
// taxonomy; clients switch on Code rather than status where possible.
const (
	ErrorCodeValidation      = "validation_failed"
	ErrorCodeConflict        = "conflict"
	ErrorCodeForbidden       = "forbidden"
	ErrorCodeNotFound        = "not_found"
	ErrorCodeUnauthenticated = "unauthenticated"
	ErrorCodeTransient       = "transient"
	ErrorCodeLocked          = "locked"
	ErrorCodeServerError     = "internal_error"
)

// APIError is a typed error parsed from the service's error envelope.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int `json:"-"`

	// Code is the stable error kind (e.g. "forbidden", "conflict")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Retryable reports whether the caller may safely retry the request.
func (e *APIError) Retryable() bool {
	return e.Code == ErrorCodeTransient || e.StatusCode == http.StatusServiceUnavailable
}

// parseErrorResponse turns a non-2xx response body into a typed
// APIError. Falls back to a generic error built from the status code.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
