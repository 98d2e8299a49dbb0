package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vijay-prabhu/jobmatch/internal/recommend"
	"github.com/vijay-prabhu/jobmatch/internal/source"
)

// ErrorCode identifies the kind of failure in an error response
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeInvalidJSON      ErrorCode = "INVALID_JSON"
	ErrorCodeNotFound         ErrorCode = "NOT_FOUND"

	// Server Error Codes (5xx)
	ErrorCodeInternalError     ErrorCode = "INTERNAL_ERROR"
	ErrorCodeSourceUnavailable ErrorCode = "SOURCE_UNAVAILABLE"
	ErrorCodeNotifyDisabled    ErrorCode = "NOTIFY_DISABLED"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// APIError is the body of every error response
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
}

// SendError writes a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	resp := &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}

	if requestID, exists := c.Get(requestIDKey); exists {
		if id, ok := requestID.(string); ok {
			resp.RequestID = id
		}
	}

	c.JSON(statusCode, resp)
}

// sendServiceError maps recommender errors onto HTTP responses
func sendServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, source.ErrNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeNotFound, err.Error())
	case errors.Is(err, recommend.ErrNotifyDisabled):
		SendError(c, http.StatusServiceUnavailable, ErrorCodeNotifyDisabled, err.Error())
	case c.Request.Context().Err() != nil:
		SendError(c, http.StatusServiceUnavailable, ErrorCodeSourceUnavailable, "request cancelled")
	default:
		SendError(c, http.StatusBadGateway, ErrorCodeSourceUnavailable, "couldn't load jobs right now: "+err.Error())
	}
}
