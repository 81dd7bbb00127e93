package plaid

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error is the error body Plaid returns with every non-200 response.
type Error struct {
	StatusCode     int    `json:"-"`
	Type           string `json:"error_type"`
	Code           string `json:"error_code"`
	Message        string `json:"error_message"`
	DisplayMessage string `json:"display_message"`
	RequestID      string `json:"request_id"`
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("plaid: status %d: %s", e.StatusCode, e.Message)
	}

	return fmt.Sprintf("plaid: %s: %s", e.Code, e.Message)
}

func parseError(status int, body []byte) *Error {
	e := &Error{StatusCode: status}
	if err := json.Unmarshal(body, e); err != nil || e.Message == "" {
		e.Message = http.StatusText(status)
	}

	return e
}
