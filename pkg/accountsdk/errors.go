package accountsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried in the "code" member of the error envelope.
const (
	ErrorCodeValidation         = "VALIDATION_ERROR"
	ErrorCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	ErrorCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrorCodeUserNotFound       = "USER_NOT_FOUND"
	ErrorCodeRateLimited        = "RATE_LIMITED"
	ErrorCodeInternal           = "INTERNAL_ERROR"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Fields     map[string]string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
}

// IsCode reports whether err is an *APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// parseErrorResponse turns an error response into an *APIError. Bodies that
// are not the standard envelope (e.g. from a proxy) get a code derived from
// the status.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Code != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       errResp.Error.Code,
			Message:    errResp.Error.Message,
			Fields:     errResp.Error.Fields,
		}
	}

	code := ErrorCodeInternal
	if resp.StatusCode == http.StatusTooManyRequests {
		code = ErrorCodeRateLimited
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       code,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
