package blogapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrSessionExpired marks a failed token refresh. Callers should treat it
// as "must re-authenticate".
var ErrSessionExpired = errors.New("session expired")

// APIError is a non-2xx response from the blog service. Fields carries
// field-level validation messages when the server returns them.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	message := e.Message
	if message == "" {
		message = http.StatusText(e.Status)
	}
	if message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, message)
}

// IsValidation reports whether the error carries field-level messages.
func (e *APIError) IsValidation() bool {
	return len(e.Fields) > 0 || e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
}

type errorPayload struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors"`
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	apiErr.Message = payload.Message
	if apiErr.Message == "" {
		apiErr.Message = payload.Error
	}
	if len(payload.Errors) > 0 {
		apiErr.Fields = payload.Errors
	}

	return apiErr
}
