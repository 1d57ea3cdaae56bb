package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/ppopeskul/wa-inbox/internal/api"
	"github.com/ppopeskul/wa-inbox/internal/metrics"
)

// Common error codes used by middleware and handlers
const (
	ErrorCodeInternal          = "INTERNAL_ERROR"
	ErrorCodeValidation        = "VALIDATION_ERROR"
	ErrorCodeUnauthorized      = "UNAUTHORIZED"
	ErrorCodeConflict          = "CONFLICT"
	ErrorCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrorCodeRequestTimeout    = "REQUEST_TIMEOUT"
)

// Common error messages used by middleware
const (
	ErrorMessageInternal          = "An internal error occurred"
	ErrorMessageUnauthorized      = "Missing or invalid bearer token"
	ErrorMessageRateLimitExceeded = "Too many requests"
	ErrorMessageRequestTimeout    = "Request timeout"
)

// reject writes the same error body the handlers use and counts the
// rejection under reason.
func reject(w http.ResponseWriter, r *http.Request, status int, reason, code, message string) {
	metrics.HTTPRejected.WithLabelValues(reason).Inc()

	now := time.Now().UTC()
	render.Status(r, status)
	render.JSON(w, r, api.ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: &now,
	})
}
