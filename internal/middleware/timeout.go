package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"marketplace-portal/internal/model"
)

const defaultRequestTimeout = 30 * time.Second

// Timeout bounds a whole portal request, including the marketplace calls it
// fans out to. Handlers that overrun answer 503 with the JSON envelope.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	message, _ := json.Marshal(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    "REQUEST_TIMEOUT",
			Message: "request timed out",
			Details: "timeout " + timeout.String(),
		},
	})

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(message))
	}
}
