package errors

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Display       string         `json:"message"`
	InternalError string         `json:"internal_error,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

// NewErrorResponse builds the user-facing error payload: the first hint as
// display message, the internal chain, and any reportable field details.
func NewErrorResponse(err error) *ErrorResponse {
	if err == nil {
		return nil
	}

	detail := ErrorDetail{
		Display:       err.Error(),
		InternalError: err.Error(),
		Details:       reportableDetails(err),
	}
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		detail.Display = hints[0]
	}

	return &ErrorResponse{Error: detail}
}

func reportableDetails(err error) map[string]any {
	for _, payload := range errors.GetAllSafeDetails(err) {
		for _, d := range payload.SafeDetails {
			if rest, ok := strings.CutPrefix(d, "__json__:"); ok {
				var details map[string]any
				if jsonErr := json.Unmarshal([]byte(rest), &details); jsonErr == nil {
					return details
				}
			}
		}
	}
	return nil
}
