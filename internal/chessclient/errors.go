package chessclient

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/park285/cheese-chess/pkg/chessdto"
)

// APIError is a non-2xx reply. Domain is zero when the body was not a DomainError.
type APIError struct {
	Status int
	Domain chessdto.DomainError
	Body   string
}

func (e *APIError) Error() string {
	if e.Domain.Code != "" {
		return fmt.Sprintf("chess api error: status=%d code=%s message=%s", e.Status, e.Domain.Code, e.Domain.Message)
	}
	return fmt.Sprintf("chess api error: status=%d body=%s", e.Status, e.Body)
}

func decodeAPIError(status int, body []byte) *APIError {
	out := &APIError{Status: status, Body: truncate(string(body), 512)}
	var wrapped chessdto.ErrorResponse
	if err := json.Unmarshal(body, &wrapped); err == nil {
		out.Domain = wrapped.Error
	}
	return out
}

// CodeOf returns the domain code carried by err, or "".
func CodeOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Domain.Code
	}
	return ""
}

// MessageOf prefers the server's user-facing message over err.Error().
func MessageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Domain.Message != "" {
		return apiErr.Domain.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
